package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stimjim-service/internal/service"
)

const bipolarPulseJSON = `{
	"mode": 0,
	"amplitude": 1.5,
	"pulse_width_s": 0.001,
	"bipolar": true,
	"frequency_hz": 10,
	"pulses": 3
}`

func TestApplySimplePulse(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPut, "/api/v1/simple/0", bipolarPulseJSON)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TrainResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "S0,0,3,100000,201000;1500,0,500;-1500,0,500", resp.Command)

	lines := env.loopback.Lines()
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, []string{"S0,0,3,100000,201000;1500,0,500;-1500,0,500", "R0,0,0"}, lines[len(lines)-2:])

	w = env.do(t, http.MethodGet, "/api/v1/simple/0", nil)
	var pulse service.SimplePulseRequest
	decodeData(t, w, &pulse)
	assert.True(t, pulse.Bipolar)
	assert.Equal(t, 3, pulse.Pulses)
	assert.Equal(t, "1.5", pulse.Amplitude.String())

	t.Run("invalid channel", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/v1/simple/2", bipolarPulseJSON)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero frequency", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/v1/simple/1", `{"mode": 0, "amplitude": 1, "pulse_width_s": 0.001, "frequency_hz": 0, "pulses": 1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFireSimple(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/simple/1/fire", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "U1", lastLine(t, env.loopback))
}

func TestWorkspaceTab(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPut, "/api/v1/workspace/tab", TabRequest{Mode: "full"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/workspace/tab", nil)
	var tab struct {
		Mode string `json:"mode"`
	}
	decodeData(t, w, &tab)
	assert.Equal(t, "full", tab.Mode)

	w = env.do(t, http.MethodPut, "/api/v1/workspace/tab", TabRequest{Mode: "expert"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkspaceExportImport(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPut, "/api/v1/simple/0", bipolarPulseJSON)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/workspace", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	var file map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &file))
	assert.Contains(t, file, "CurrentTab")
	assert.Contains(t, file, "SimpleMode")
	assert.Contains(t, file, "FullMode")

	exported := w.Body.String()

	fresh := newTestEnv(t, nil)
	w = fresh.do(t, http.MethodPut, "/api/v1/workspace", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Workspace imported", decodeEnvelope(t, w).Message)

	w = fresh.do(t, http.MethodGet, "/api/v1/programs/simple/trains/0", nil)
	var resp TrainResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "S0,0,3,100000,201000;1500,0,500;-1500,0,500", resp.Command)

	t.Run("partial import", func(t *testing.T) {
		body := `{"CurrentTab": 0, "SimpleMode": {"triggers": [], "pulse_trains": []},
			"FullMode": {"triggers": [{"trig_id": 0, "trig_direction": 4, "train_target": 0}], "pulse_trains": []}}`
		w := fresh.do(t, http.MethodPut, "/api/v1/workspace", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Workspace partially imported", decodeEnvelope(t, w).Message)
	})

	t.Run("push", func(t *testing.T) {
		target := newTestEnv(t, nil)
		w := target.do(t, http.MethodPut, "/api/v1/workspace?push=true", exported)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result service.WorkspaceImportResult
		decodeData(t, w, &result)
		assert.Equal(t, 1, result.Pushed)
		assert.Contains(t, target.loopback.Lines(), "S0,0,3,100000,201000;1500,0,500;-1500,0,500")
	})

	t.Run("invalid push flag", func(t *testing.T) {
		w := fresh.do(t, http.MethodPut, "/api/v1/workspace?push=maybe", exported)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unreadable", func(t *testing.T) {
		w := fresh.do(t, http.MethodPut, "/api/v1/workspace", "not json")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
