package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthWithoutDatabase(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "stimjim-service", health.Service)
	assert.Equal(t, "disabled", health.Checks["database"].Status)
	assert.Equal(t, "connected", health.Checks["stimulator"].Status)

	require.NoError(t, env.stimulator.Disconnect())
	w = env.do(t, http.MethodGet, "/health", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "disconnected", health.Checks["stimulator"].Status)

	w = env.do(t, http.MethodGet, "/health/db", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDiscoveryWithoutScanners(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/v1/discovery/scan", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		DevicesFound int `json:"devices_found"`
	}
	decodeData(t, w, &result)
	assert.Zero(t, result.DevicesFound)

	w = env.do(t, http.MethodGet, "/api/v1/discovery/scan?type=serial", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/discovery/scanners", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
