// internal/handler/program_handler.go
package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stimjim-service/internal/model"
	"stimjim-service/internal/service"
	"stimjim-service/internal/utils"
)

// ProgramHandler edits the full and simple program instances
type ProgramHandler struct {
	stimulator *service.StimulatorService
	logger     *utils.ServiceLogger
}

// NewProgramHandler creates a new program handler
func NewProgramHandler(stimulator *service.StimulatorService, logger *zap.Logger) *ProgramHandler {
	return &ProgramHandler{
		stimulator: stimulator,
		logger:     utils.NewServiceLogger(logger, "program-handler"),
	}
}

// RegisterRoutes registers program routes
func (h *ProgramHandler) RegisterRoutes(router *gin.RouterGroup) {
	programs := router.Group("/programs/:mode")
	{
		programs.GET("", h.GetProgram)
		programs.PUT("", h.LoadProgram)
		programs.POST("/push", h.PushProgram)
		programs.GET("/export", h.ExportProgram)

		trains := programs.Group("/trains/:train_id")
		{
			trains.GET("", h.GetTrain)
			trains.PUT("", h.UpdateTrain)
			trains.POST("/send", h.SendTrain)
			trains.POST("/stages", h.AddStage)
			trains.DELETE("/stages", h.RemoveStage)
			trains.DELETE("/stages/:index", h.RemoveStage)
		}

		programs.GET("/triggers", h.GetTriggers)
		programs.PUT("/triggers/:trigger_id", h.UpdateTrigger)
		programs.POST("/triggers/send", h.SendTriggers)
	}
}

// TrainResponse is a train with its wire command
type TrainResponse struct {
	model.PulseTrainRecord
	Command string `json:"command"`
}

// TriggerRequest updates one trigger binding
type TriggerRequest struct {
	Direction   model.TriggerDirection `json:"direction"`
	TargetTrain int                    `json:"target_train"`
}

func newTrainResponse(train *model.PulseTrain) TrainResponse {
	return TrainResponse{
		PulseTrainRecord: train.Record(),
		Command:          strings.TrimRight(train.Encode(), "\n"),
	}
}

// GetProgram returns a program instance
// @Summary Get program
// @Description Get every trigger and train of a program instance
// @Tags Programs
// @Produce json
// @Param mode path string true "Program mode" Enums(full, simple)
// @Success 200 {object} utils.APIResponse{data=model.ProgramRecord} "Program retrieved"
// @Failure 400 {object} utils.APIResponse "Invalid mode"
// @Router /programs/{mode} [get]
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	mode, ok := modeParam(c)
	if !ok {
		return
	}

	program, err := h.stimulator.Program(mode)
	if err != nil {
		respondError(c, "Failed to get program", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Program retrieved", program.Serialize())
}

// LoadProgram replaces a program instance from a record
// @Summary Load program
// @Description Decode a program record into a fresh instance. The current program is kept when decoding fails.
// @Tags Programs
// @Accept json
// @Produce json
// @Param mode path string true "Program mode" Enums(full, simple)
// @Param request body model.ProgramRecord true "Program record"
// @Success 200 {object} utils.APIResponse "Program loaded"
// @Failure 400 {object} utils.APIResponse "Invalid record"
// @Failure 422 {object} utils.APIResponse "Malformed record"
// @Router /programs/{mode} [put]
func (h *ProgramHandler) LoadProgram(c *gin.Context) {
	mode, ok := modeParam(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	if err := h.stimulator.LoadProgramJSON(mode, body); err != nil {
		h.logger.Warn("Program not loaded", zap.String("mode", string(mode)), zap.Error(err))
		respondError(c, "Failed to load program", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Program loaded", nil)
}

// PushProgram sends a whole program to the device
// @Summary Push program
// @Description Send every train that has stages followed by both trigger bindings
// @Tags Programs
// @Produce json
// @Param mode path string true "Program mode" Enums(full, simple)
// @Success 200 {object} utils.APIResponse{data=object{trains_sent=int}} "Program sent"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /programs/{mode}/push [post]
func (h *ProgramHandler) PushProgram(c *gin.Context) {
	mode, ok := modeParam(c)
	if !ok {
		return
	}

	sent, err := h.stimulator.PushProgram(c.Request.Context(), mode)
	if err != nil {
		respondError(c, "Failed to send program", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Program sent", gin.H{"trains_sent": sent})
}

// ExportProgram downloads a program as a JSON file
// @Summary Export program
// @Tags Programs
// @Produce json
// @Param mode path string true "Program mode" Enums(full, simple)
// @Success 200 {object} model.ProgramRecord "Program file"
// @Router /programs/{mode}/export [get]
func (h *ProgramHandler) ExportProgram(c *gin.Context) {
	mode, ok := modeParam(c)
	if !ok {
		return
	}

	program, err := h.stimulator.Program(mode)
	if err != nil {
		respondError(c, "Failed to export program", err)
		return
	}
	data, err := program.EncodeJSON()
	if err != nil {
		respondError(c, "Failed to export program", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="stimjim-%s.json"`, mode))
	c.Data(http.StatusOK, "application/json", data)
}

// GetTrain returns one train
// @Summary Get pulse train
// @Tags Programs
// @Produce json
// @Param mode path string true "Program mode" Enums(full, simple)
// @Param train_id path int true "Train id (0-99)"
// @Success 200 {object} utils.APIResponse{data=TrainResponse} "Train retrieved"
// @Failure 400 {object} utils.APIResponse "Invalid train id"
// @Router /programs/{mode}/trains/{train_id} [get]
func (h *ProgramHandler) GetTrain(c *gin.Context) {
	mode, ok := modeParam(c)
	if !ok {
		return
	}
	trainID, ok := intParam(c, "train_id")
	if !ok {
		return
	}

	train, err := h.stimulator.Train(mode, trainID)
	if err != nil {
		respondError(c, "Failed to get train", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Train retrieved", newTrainResponse(train))
}

// UpdateTrain replaces one train
// @Summary Update pulse train
// @Description Replace a train after validating it against its channel modes. With send=true the train is transmitted.
// @Tags Programs
// @Accept json
// @Produce json
// @Param mode path string true "Program mode" Enums(full, simple)
// @Param train_id path int true "Train id (0-99)"
// @Param send query bool false "Transmit after updating"
// @Param request body model.PulseTrainRecord true "Train"
// @Success 200 {object} utils.APIResponse{data=TrainResponse} "Train updated"
// @Failure 400 {object} utils.APIResponse "Invalid train"
// @Failure 422 {object} utils.APIResponse "Malformed train"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /programs/{mode}/trains/{train_id} [put]
func (h *ProgramHandler) UpdateTrain(c *gin.Context) {
	mode, ok := modeParam(c)
	if !ok {
		return
	}
	trainID, ok := intParam(c, "train_id")
	if !ok {
		return
	}
	send, ok := boolQuery(c, "send")
	if !ok {
		return
	}

	var rec model.PulseTrainRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "Invalid request body", err)
		return
	}
	rec.TrainID = trainID

	train, err := model.DecodePulseTrain(rec)
	if err != nil {
		respondError(c, "Invalid train", err)
		return
	}

	if err := h.stimulator.UpdateTrain(c.Request.Context(), mode, train, send); err != nil {
		respondError(c, "Failed to update train", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Train updated", newTrainResponse(train))
}

// SendTrain transmits one train
// @Summary Send pulse train
// @Tags Programs
// @Produce json
// @Param mode path string true "Program mode" Enums(full, simple)
// @Param train_id path int true "Train id (0-99)"
// @Success 200 {object} utils.APIResponse "Train sent"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /programs/{mode}/trains/{train_id}/send [post]
func (h *ProgramHandler) SendTrain(c *gin.Context) {
	mode, ok := modeParam(c)
	if !ok {
		return
	}
	trainID, ok := intParam(c, "train_id")
	if !ok {
		return
	}

	if err := h.stimulator.SendTrain(c.Request.Context(), mode, trainID); err != nil {
		respondError(c, "Failed to send train", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Train sent", nil)
}

// AddStage appends a stage to a train
// @Summary Add stage
// @Description Append a stage, or a zero-amplitude 100 µs stage when the body is empty
// @Tags Programs
// @Accept json
// @Produce json
// @Param mode path string true "Program mode" Enums(full, simple)
// @Param train_id path int true "Train id (0-99)"
// @Param request body model.PulseStage false "Stage in device units"
// @Success 200 {object} utils.APIResponse{data=TrainResponse} "Stage added"
// @Failure 400 {object} utils.APIResponse "Stage limit reached or amplitude out of range"
// @Router /programs/{mode}/trains/{train_id}/stages [post]
func (h *ProgramHandler) AddStage(c *gin.Context) {
	mode, ok := modeParam(c)
	if !ok {
		return
	}
	trainID, ok := intParam(c, "train_id")
	if !ok {
		return
	}

	var stage *model.PulseStage
	if c.Request.ContentLength != 0 {
		stage = &model.PulseStage{}
		if err := c.ShouldBindJSON(stage); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	train, err := h.stimulator.AddStage(mode, trainID, stage)
	if err != nil {
		respondError(c, "Failed to add stage", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Stage added", newTrainResponse(train))
}

// RemoveStage removes a stage from a train
// @Summary Remove stage
// @Description Remove the stage at index, or the last stage when no index is given
// @Tags Programs
// @Produce json
// @Param mode path string true "Program mode" Enums(full, simple)
// @Param train_id path int true "Train id (0-99)"
// @Param index path int false "Stage index"
// @Success 200 {object} utils.APIResponse{data=TrainResponse} "Stage removed"
// @Failure 400 {object} utils.APIResponse "Index out of range"
// @Router /programs/{mode}/trains/{train_id}/stages/{index} [delete]
func (h *ProgramHandler) RemoveStage(c *gin.Context) {
	mode, ok := modeParam(c)
	if !ok {
		return
	}
	trainID, ok := intParam(c, "train_id")
	if !ok {
		return
	}

	var index []int
	if raw := c.Param("index"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid index", err)
			return
		}
		index = append(index, i)
	}

	train, err := h.stimulator.RemoveStage(mode, trainID, index...)
	if err != nil {
		respondError(c, "Failed to remove stage", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Stage removed", newTrainResponse(train))
}

// GetTriggers returns both trigger bindings
// @Summary Get triggers
// @Tags Programs
// @Produce json
// @Param mode path string true "Program mode" Enums(full, simple)
// @Success 200 {object} utils.APIResponse{data=[]model.Trigger} "Triggers retrieved"
// @Router /programs/{mode}/triggers [get]
func (h *ProgramHandler) GetTriggers(c *gin.Context) {
	mode, ok := modeParam(c)
	if !ok {
		return
	}

	program, err := h.stimulator.Program(mode)
	if err != nil {
		respondError(c, "Failed to get triggers", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Triggers retrieved", program.Triggers())
}

// UpdateTrigger replaces one trigger binding
// @Summary Update trigger
// @Description Bind a trigger to a train (-1 unbinds). With send=true the binding is transmitted.
// @Tags Programs
// @Accept json
// @Produce json
// @Param mode path string true "Program mode" Enums(full, simple)
// @Param trigger_id path int true "Trigger id" Enums(0, 1)
// @Param send query bool false "Transmit after updating"
// @Param request body TriggerRequest true "Binding"
// @Success 200 {object} utils.APIResponse{data=model.Trigger} "Trigger updated"
// @Failure 400 {object} utils.APIResponse "Invalid trigger"
// @Router /programs/{mode}/triggers/{trigger_id} [put]
func (h *ProgramHandler) UpdateTrigger(c *gin.Context) {
	mode, ok := modeParam(c)
	if !ok {
		return
	}
	triggerID, ok := intParam(c, "trigger_id")
	if !ok {
		return
	}
	send, ok := boolQuery(c, "send")
	if !ok {
		return
	}

	var req TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	trigger := model.Trigger{ID: triggerID, Direction: req.Direction, TargetTrain: req.TargetTrain}
	if err := h.stimulator.UpdateTrigger(c.Request.Context(), mode, trigger, send); err != nil {
		respondError(c, "Failed to update trigger", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Trigger updated", trigger)
}

// SendTriggers transmits both trigger bindings
// @Summary Send triggers
// @Tags Programs
// @Produce json
// @Param mode path string true "Program mode" Enums(full, simple)
// @Success 200 {object} utils.APIResponse "Triggers sent"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /programs/{mode}/triggers/send [post]
func (h *ProgramHandler) SendTriggers(c *gin.Context) {
	mode, ok := modeParam(c)
	if !ok {
		return
	}

	if err := h.stimulator.SendTriggers(c.Request.Context(), mode); err != nil {
		respondError(c, "Failed to send triggers", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Triggers sent", nil)
}
