// internal/handler/workspace_handler.go
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stimjim-service/internal/model"
	"stimjim-service/internal/service"
	"stimjim-service/internal/utils"
)

// WorkspaceHandler handles workspace files and the simple pulse mode
type WorkspaceHandler struct {
	stimulator *service.StimulatorService
	logger     *utils.ServiceLogger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(stimulator *service.StimulatorService, logger *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		stimulator: stimulator,
		logger:     utils.NewServiceLogger(logger, "workspace-handler"),
	}
}

// RegisterRoutes registers workspace and simple mode routes
func (h *WorkspaceHandler) RegisterRoutes(router *gin.RouterGroup) {
	workspace := router.Group("/workspace")
	{
		workspace.GET("", h.ExportWorkspace)
		workspace.PUT("", h.ImportWorkspace)
		workspace.GET("/tab", h.GetTab)
		workspace.PUT("/tab", h.SetTab)
	}

	simple := router.Group("/simple/:channel")
	{
		simple.GET("", h.GetSimplePulse)
		simple.PUT("", h.ApplySimplePulse)
		simple.POST("/fire", h.FireSimple)
	}
}

// TabRequest selects the mode the operator works in
type TabRequest struct {
	Mode model.ProgramMode `json:"mode" binding:"required"`
}

// ExportWorkspace returns both programs and the current tab
// @Summary Export workspace
// @Description Download both program instances and the current tab as a workspace file
// @Tags Workspace
// @Produce json
// @Success 200 {object} service.WorkspaceRecord "Workspace file"
// @Router /workspace [get]
func (h *WorkspaceHandler) ExportWorkspace(c *gin.Context) {
	data, err := json.MarshalIndent(h.stimulator.ExportWorkspace(), "", "    ")
	if err != nil {
		respondError(c, "Failed to export workspace", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="stimjim-workspace.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ImportWorkspace loads a workspace file
// @Summary Import workspace
// @Description Load each mode of a workspace file independently. A mode that fails keeps its program and is listed in errors.
// @Tags Workspace
// @Accept json
// @Produce json
// @Param push query bool false "Transmit the loaded simple program"
// @Param request body service.WorkspaceRecord true "Workspace file"
// @Success 200 {object} utils.APIResponse{data=service.WorkspaceImportResult} "Workspace imported"
// @Failure 422 {object} utils.APIResponse "Unreadable workspace"
// @Router /workspace [put]
func (h *WorkspaceHandler) ImportWorkspace(c *gin.Context) {
	push, ok := boolQuery(c, "push")
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	result, err := h.stimulator.ImportWorkspace(c.Request.Context(), body, push)
	if err != nil {
		respondError(c, "Failed to import workspace", err)
		return
	}

	message := "Workspace imported"
	if len(result.Errors) > 0 || result.PushError != "" {
		message = "Workspace partially imported"
		h.logger.Warn(message, zap.Int("failed_modes", len(result.Errors)))
	}
	utils.SuccessResponse(c, http.StatusOK, message, result)
}

// GetTab returns the current tab
// @Summary Get current tab
// @Tags Workspace
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{mode=string}} "Tab retrieved"
// @Router /workspace/tab [get]
func (h *WorkspaceHandler) GetTab(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Tab retrieved", gin.H{"mode": h.stimulator.CurrentTab()})
}

// SetTab records the current tab
// @Summary Set current tab
// @Tags Workspace
// @Accept json
// @Produce json
// @Param request body TabRequest true "Mode"
// @Success 200 {object} utils.APIResponse "Tab updated"
// @Failure 400 {object} utils.APIResponse "Invalid mode"
// @Router /workspace/tab [put]
func (h *WorkspaceHandler) SetTab(c *gin.Context) {
	var req TabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.stimulator.SetCurrentTab(req.Mode); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid program mode", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Tab updated", gin.H{"mode": req.Mode})
}

// GetSimplePulse returns the simple pulse parameters of a channel
// @Summary Get simple pulse
// @Tags Simple Mode
// @Produce json
// @Param channel path int true "Output channel" Enums(0, 1)
// @Success 200 {object} utils.APIResponse{data=service.SimplePulseRequest} "Simple pulse retrieved"
// @Failure 400 {object} utils.APIResponse "Invalid channel"
// @Router /simple/{channel} [get]
func (h *WorkspaceHandler) GetSimplePulse(c *gin.Context) {
	channel, ok := intParam(c, "channel")
	if !ok {
		return
	}

	pulse, err := h.stimulator.SimplePulse(channel)
	if err != nil {
		respondError(c, "Failed to get simple pulse", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Simple pulse retrieved", pulse)
}

// ApplySimplePulse builds and sends the pulse train of a channel
// @Summary Apply simple pulse
// @Description Build train c and trigger c from SI parameters and send both
// @Tags Simple Mode
// @Accept json
// @Produce json
// @Param channel path int true "Output channel" Enums(0, 1)
// @Param request body service.SimplePulseRequest true "Pulse parameters"
// @Success 200 {object} utils.APIResponse{data=TrainResponse} "Simple pulse applied"
// @Failure 400 {object} utils.APIResponse "Invalid parameters"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /simple/{channel} [put]
func (h *WorkspaceHandler) ApplySimplePulse(c *gin.Context) {
	channel, ok := intParam(c, "channel")
	if !ok {
		return
	}

	var req service.SimplePulseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.Channel = channel

	train, err := h.stimulator.ApplySimplePulse(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Failed to apply simple pulse", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Simple pulse applied", newTrainResponse(train))
}

// FireSimple triggers the simple pulse train of a channel
// @Summary Fire simple pulse
// @Tags Simple Mode
// @Produce json
// @Param channel path int true "Output channel" Enums(0, 1)
// @Success 200 {object} utils.APIResponse "Simple pulse fired"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /simple/{channel}/fire [post]
func (h *WorkspaceHandler) FireSimple(c *gin.Context) {
	channel, ok := intParam(c, "channel")
	if !ok {
		return
	}

	if err := h.stimulator.FireSimple(c.Request.Context(), channel); err != nil {
		respondError(c, "Failed to fire simple pulse", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Simple pulse fired", gin.H{"channel": channel})
}
