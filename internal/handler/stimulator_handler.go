// internal/handler/stimulator_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stimjim-service/internal/model"
	"stimjim-service/internal/protocol"
	"stimjim-service/internal/service"
	"stimjim-service/internal/utils"
)

// StimulatorHandler handles the device link, manual triggering and the raw
// command terminal
type StimulatorHandler struct {
	stimulator       *service.StimulatorService
	discoveryService *service.DiscoveryService
	logger           *utils.ServiceLogger
}

// NewStimulatorHandler creates a new stimulator handler
func NewStimulatorHandler(stimulator *service.StimulatorService, discoveryService *service.DiscoveryService, logger *zap.Logger) *StimulatorHandler {
	return &StimulatorHandler{
		stimulator:       stimulator,
		discoveryService: discoveryService,
		logger:           utils.NewServiceLogger(logger, "stimulator-handler"),
	}
}

// RegisterRoutes registers stimulator routes
func (h *StimulatorHandler) RegisterRoutes(router *gin.RouterGroup) {
	stimulator := router.Group("/stimulator")
	{
		stimulator.GET("/status", h.GetStatus)
		stimulator.POST("/connect", h.Connect)
		stimulator.POST("/disconnect", h.Disconnect)
		stimulator.POST("/poll", h.Poll)
		stimulator.GET("/output-modes", h.GetOutputModes)

		stimulator.POST("/commands", h.SendCommand)
		stimulator.GET("/commands/history", h.GetHistory)

		stimulator.POST("/triggers/:trigger_id/fire", h.FireTrigger)
		stimulator.POST("/triggers/:trigger_id/cancel", h.CancelTrigger)
	}
}

// ConnectRequest selects how to reach the stimulator. An empty transport
// uses the configured transport and discovery.
type ConnectRequest struct {
	Transport protocol.TransportType `json:"transport"`
	Settings  map[string]interface{} `json:"settings"`
}

// FireRequest names the train a manual trigger starts
type FireRequest struct {
	TrainID *int `json:"train_id" binding:"required"`
}

// CommandRequest is a line typed into the terminal
type CommandRequest struct {
	Command string `json:"command" binding:"required"`
}

// GetStatus returns the link state
// @Summary Get connection status
// @Description Get the current transport, port and traffic statistics
// @Tags Stimulator
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.ConnectionStatus} "Status retrieved"
// @Router /stimulator/status [get]
func (h *StimulatorHandler) GetStatus(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Status retrieved", h.stimulator.Status())
}

// Connect opens the link to the stimulator
// @Summary Connect to the stimulator
// @Description Open a transport explicitly, or discover the stimulator with the configured transport when the body is empty
// @Tags Stimulator
// @Accept json
// @Produce json
// @Param request body ConnectRequest false "Transport and settings"
// @Success 200 {object} utils.APIResponse{data=service.ConnectionStatus} "Connected"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 404 {object} utils.APIResponse "No stimulator found"
// @Failure 409 {object} utils.APIResponse "Several stimulators found"
// @Failure 500 {object} utils.APIResponse "Connection failed"
// @Router /stimulator/connect [post]
func (h *StimulatorHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	var err error
	if req.Transport == "" {
		_, err = h.discoveryService.AutoConnect(c.Request.Context(), h.stimulator)
	} else {
		if req.Settings == nil {
			req.Settings = map[string]interface{}{}
		}
		if verr := protocol.ValidateConfig(req.Transport, req.Settings); verr != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid transport settings", verr)
			return
		}
		err = h.stimulator.Connect(c.Request.Context(), req.Transport, req.Settings)
	}
	if err != nil {
		h.logger.Error("Failed to connect to stimulator", zap.Error(err))
		respondError(c, "Failed to connect to stimulator", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Connected", h.stimulator.Status())
}

// Disconnect closes the link
// @Summary Disconnect from the stimulator
// @Tags Stimulator
// @Produce json
// @Success 200 {object} utils.APIResponse "Disconnected"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /stimulator/disconnect [post]
func (h *StimulatorHandler) Disconnect(c *gin.Context) {
	if err := h.stimulator.Disconnect(); err != nil {
		respondError(c, "Failed to disconnect", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Disconnected", nil)
}

// Poll drains device output immediately instead of waiting for the next tick
// @Summary Read device output
// @Description Drain pending device output. Whitespace-only output is discarded.
// @Tags Stimulator
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{text=string}} "Output read"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /stimulator/poll [post]
func (h *StimulatorHandler) Poll(c *gin.Context) {
	text, err := h.stimulator.Poll(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to read device output", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Output read", gin.H{"text": text})
}

// GetOutputModes returns the output mode catalogue
// @Summary List output modes
// @Description Units, limits and scaling of every channel output mode
// @Tags Stimulator
// @Produce json
// @Success 200 {object} utils.APIResponse "Output modes retrieved"
// @Router /stimulator/output-modes [get]
func (h *StimulatorHandler) GetOutputModes(c *gin.Context) {
	modes := make([]gin.H, 0, len(model.OutputModes()))
	for _, mode := range model.OutputModes() {
		modes = append(modes, gin.H{
			"value":            int(mode),
			"limits":           model.Limits(mode),
			"max_device_units": model.MaxDeviceUnits(mode),
		})
	}
	utils.SuccessResponse(c, http.StatusOK, "Output modes retrieved", modes)
}

// SendCommand passes a raw line to the device
// @Summary Send a raw command
// @Description Send operator text unvalidated and record it in the command history
// @Tags Stimulator
// @Accept json
// @Produce json
// @Param request body CommandRequest true "Command"
// @Success 200 {object} utils.APIResponse{data=object{history=[]string}} "Command sent"
// @Failure 400 {object} utils.APIResponse "Empty command"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /stimulator/commands [post]
func (h *StimulatorHandler) SendCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.stimulator.SendRaw(c.Request.Context(), req.Command); err != nil {
		respondError(c, "Failed to send command", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Command sent", gin.H{"history": h.stimulator.History()})
}

// GetHistory returns the raw command history
// @Summary Get command history
// @Description Raw commands, most recent first
// @Tags Stimulator
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]string} "History retrieved"
// @Router /stimulator/commands/history [get]
func (h *StimulatorHandler) GetHistory(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "History retrieved", h.stimulator.History())
}

// FireTrigger starts a train through a trigger
// @Summary Fire a trigger
// @Tags Stimulator
// @Accept json
// @Produce json
// @Param trigger_id path int true "Trigger id" Enums(0, 1)
// @Param request body FireRequest true "Train to start"
// @Success 200 {object} utils.APIResponse "Trigger fired"
// @Failure 400 {object} utils.APIResponse "Invalid trigger or train"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /stimulator/triggers/{trigger_id}/fire [post]
func (h *StimulatorHandler) FireTrigger(c *gin.Context) {
	triggerID, ok := intParam(c, "trigger_id")
	if !ok {
		return
	}

	var req FireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.stimulator.FireTrigger(c.Request.Context(), triggerID, *req.TrainID); err != nil {
		respondError(c, "Failed to fire trigger", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Trigger fired", gin.H{"trigger_id": triggerID, "train_id": *req.TrainID})
}

// CancelTrigger stops whatever a trigger is running
// @Summary Cancel a trigger
// @Tags Stimulator
// @Produce json
// @Param trigger_id path int true "Trigger id" Enums(0, 1)
// @Success 200 {object} utils.APIResponse "Trigger cancelled"
// @Failure 400 {object} utils.APIResponse "Invalid trigger"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /stimulator/triggers/{trigger_id}/cancel [post]
func (h *StimulatorHandler) CancelTrigger(c *gin.Context) {
	triggerID, ok := intParam(c, "trigger_id")
	if !ok {
		return
	}

	if err := h.stimulator.CancelTrigger(c.Request.Context(), triggerID); err != nil {
		respondError(c, "Failed to cancel trigger", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Trigger cancelled", gin.H{"trigger_id": triggerID})
}
