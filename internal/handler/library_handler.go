// internal/handler/library_handler.go
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stimjim-service/internal/model"
	"stimjim-service/internal/repository"
	"stimjim-service/internal/service"
	"stimjim-service/internal/utils"
)

// LibraryHandler handles the stored program library
type LibraryHandler struct {
	programService *service.ProgramService
	logger         *utils.ServiceLogger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(programService *service.ProgramService, logger *zap.Logger) *LibraryHandler {
	return &LibraryHandler{
		programService: programService,
		logger:         utils.NewServiceLogger(logger, "library-handler"),
	}
}

// RegisterRoutes registers library routes
func (h *LibraryHandler) RegisterRoutes(router *gin.RouterGroup) {
	library := router.Group("/library")
	{
		library.POST("", h.SaveProgram)
		library.GET("", h.ListPrograms)
		library.GET("/:id", h.GetProgram)
		library.POST("/:id/load", h.LoadProgram)
		library.DELETE("/:id", h.DeleteProgram)
	}
}

// LoadRequest selects where a stored program is installed
type LoadRequest struct {
	Mode model.ProgramMode `json:"mode"`
	Push bool              `json:"push"`
}

// PaginationResult describes one page of a listing
type PaginationResult struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// SaveProgram stores the current program of a mode
// @Summary Save program
// @Description Store the current program of a mode under a name. With overwrite an existing name is replaced.
// @Tags Library
// @Accept json
// @Produce json
// @Param request body service.SaveProgramRequest true "Save request"
// @Success 201 {object} utils.APIResponse{data=model.StoredProgram} "Program saved"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 409 {object} utils.APIResponse "Name already taken"
// @Failure 503 {object} utils.APIResponse "Library disabled"
// @Router /library [post]
func (h *LibraryHandler) SaveProgram(c *gin.Context) {
	var req service.SaveProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := model.ParseProgramMode(string(req.Mode)); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid program mode", err)
		return
	}

	stored, err := h.programService.Save(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("Failed to save program", zap.Error(err))
		respondError(c, "Failed to save program", err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Program saved", stored)
}

// ListPrograms lists stored programs
// @Summary List programs
// @Tags Library
// @Produce json
// @Param mode query string false "Filter by mode" Enums(full, simple)
// @Param search query string false "Search name and description"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} utils.APIResponse{data=object{programs=[]model.StoredProgram,pagination=PaginationResult}} "Programs retrieved"
// @Failure 503 {object} utils.APIResponse "Library disabled"
// @Router /library [get]
func (h *LibraryHandler) ListPrograms(c *gin.Context) {
	filter := &repository.ProgramFilter{Page: 1, PerPage: 20}

	if raw := c.Query("mode"); raw != "" {
		mode, err := model.ParseProgramMode(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid program mode", err)
			return
		}
		filter.Mode = &mode
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 && perPage <= 100 {
		filter.PerPage = perPage
	}

	programs, total, err := h.programService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to list programs", err)
		return
	}

	totalPages := (total + filter.PerPage - 1) / filter.PerPage
	utils.SuccessResponse(c, http.StatusOK, "Programs retrieved", gin.H{
		"programs": programs,
		"pagination": PaginationResult{
			Page:       filter.Page,
			PerPage:    filter.PerPage,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// GetProgram returns a stored program
// @Summary Get stored program
// @Tags Library
// @Produce json
// @Param id path string true "Program id"
// @Success 200 {object} utils.APIResponse{data=model.StoredProgram} "Program retrieved"
// @Failure 404 {object} utils.APIResponse "Program not found"
// @Router /library/{id} [get]
func (h *LibraryHandler) GetProgram(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	stored, err := h.programService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to get program", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Program retrieved", stored)
}

// LoadProgram installs a stored program into a mode
// @Summary Load stored program
// @Description Install a stored program into a mode, its own mode when none is given. With push the program is sent.
// @Tags Library
// @Accept json
// @Produce json
// @Param id path string true "Program id"
// @Param request body LoadRequest false "Target mode"
// @Success 200 {object} utils.APIResponse{data=model.StoredProgram} "Program loaded"
// @Failure 404 {object} utils.APIResponse "Program not found"
// @Failure 422 {object} utils.APIResponse "Stored record is malformed"
// @Router /library/{id}/load [post]
func (h *LibraryHandler) LoadProgram(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req LoadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	if req.Mode != "" {
		if _, err := model.ParseProgramMode(string(req.Mode)); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid program mode", err)
			return
		}
	}

	stored, err := h.programService.Load(c.Request.Context(), id, req.Mode, req.Push)
	if err != nil {
		respondError(c, "Failed to load program", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Program loaded", stored)
}

// DeleteProgram removes a stored program
// @Summary Delete stored program
// @Tags Library
// @Produce json
// @Param id path string true "Program id"
// @Success 200 {object} utils.APIResponse "Program deleted"
// @Failure 404 {object} utils.APIResponse "Program not found"
// @Router /library/{id} [delete]
func (h *LibraryHandler) DeleteProgram(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.programService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "Failed to delete program", err)
		return
	}

	h.logger.Info("Program deleted", zap.String("id", id.String()))
	utils.SuccessResponse(c, http.StatusOK, "Program deleted", nil)
}

func (h *LibraryHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid program ID", err)
		return uuid.Nil, false
	}
	return id, true
}
