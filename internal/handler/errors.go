// internal/handler/errors.go
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stimjim-service/internal/discovery"
	"stimjim-service/internal/model"
	"stimjim-service/internal/repository"
	"stimjim-service/internal/service"
	"stimjim-service/internal/utils"
)

// statusFor extends utils.StatusForError with the errors of the service
// and storage layers
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrLibraryDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, discovery.ErrNoDevice):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicateName), errors.Is(err, discovery.ErrAmbiguousPort):
		return http.StatusConflict
	default:
		return utils.StatusForError(err)
	}
}

// respondError writes the error envelope with the status matching err
func respondError(c *gin.Context, message string, err error) {
	utils.ErrorResponse(c, statusFor(err), message, err)
}

// modeParam reads the :mode path parameter
func modeParam(c *gin.Context) (model.ProgramMode, bool) {
	mode, err := model.ParseProgramMode(c.Param("mode"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid program mode", err)
		return "", false
	}
	return mode, true
}

// intParam reads an integer path parameter
func intParam(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name), err)
		return 0, false
	}
	return value, true
}

// boolQuery reads an optional boolean query parameter
func boolQuery(c *gin.Context, name string) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return false, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name), err)
		return false, false
	}
	return value, true
}
