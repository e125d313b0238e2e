package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stimjim-service/internal/model"
	"stimjim-service/internal/protocol"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"too many stages", fmt.Errorf("train 3: %w", model.ErrTooManyStages), http.StatusBadRequest},
		{"amplitude", model.ErrAmplitudeOutOfRange, http.StatusBadRequest},
		{"empty command", protocol.ErrEmptyCommand, http.StatusBadRequest},
		{"malformed", fmt.Errorf("load: %w", model.ErrMalformedRecord), http.StatusUnprocessableEntity},
		{"not open", fmt.Errorf("send: %w", protocol.ErrNotOpen), http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func TestErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-7")

	ErrorResponse(c, http.StatusServiceUnavailable, "Failed to send command", fmt.Errorf("send: %w", protocol.ErrNotOpen))

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "req-7", resp.RequestID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "DEVICE_NOT_CONNECTED", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "transport not open")
}

func TestErrorResponseFallsBackToStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorResponse(c, http.StatusNotFound, "Program not found", errors.New("missing"))

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Empty(t, resp.RequestID)
}
