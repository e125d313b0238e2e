package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stimjim-service/internal/service"
)

func TestStimulatorStatus(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/v1/stimulator/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status service.ConnectionStatus
	decodeData(t, w, &status)
	assert.True(t, status.Connected)
	assert.Equal(t, "loopback", string(status.Transport))
	assert.Equal(t, "loopback", status.Port)
}

func TestSendCommand(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/stimulator/commands", CommandRequest{Command: "C"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "C", lastLine(t, env.loopback))

	env.do(t, http.MethodPost, "/api/v1/stimulator/commands", CommandRequest{Command: "?"})

	w = env.do(t, http.MethodGet, "/api/v1/stimulator/commands/history", nil)
	var history []string
	decodeData(t, w, &history)
	assert.Equal(t, []string{"?", "C"}, history)

	t.Run("blank command", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/stimulator/commands", CommandRequest{Command: "   "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing command", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/stimulator/commands", "{}")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFireAndCancelTrigger(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/stimulator/triggers/1/fire", map[string]int{"train_id": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "U5", lastLine(t, env.loopback))

	w = env.do(t, http.MethodPost, "/api/v1/stimulator/triggers/0/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "T-1", lastLine(t, env.loopback))

	t.Run("unknown trigger", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/stimulator/triggers/2/fire", map[string]int{"train_id": 5})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("train required", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/stimulator/triggers/0/fire", "{}")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDisconnectedCommandsAreUnavailable(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/stimulator/disconnect", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/stimulator/commands", CommandRequest{Command: "C"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
}

func TestConnect(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.stimulator.Disconnect())

	t.Run("configured transport", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/stimulator/connect", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, env.stimulator.Status().Connected)
	})

	t.Run("explicit transport", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/stimulator/connect", ConnectRequest{Transport: "loopback"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, env.stimulator.Status().Connected)
	})

	t.Run("invalid settings", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/stimulator/connect", ConnectRequest{Transport: "serial"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPoll(t *testing.T) {
	env := newTestEnv(t, nil)

	env.loopback.Inject("stimjim ready\r\n")
	w := env.do(t, http.MethodPost, "/api/v1/stimulator/poll", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Text string `json:"text"`
	}
	decodeData(t, w, &out)
	assert.Contains(t, out.Text, "stimjim ready")

	env.loopback.Inject(" \r\n")
	w = env.do(t, http.MethodPost, "/api/v1/stimulator/poll", nil)
	decodeData(t, w, &out)
	assert.Empty(t, out.Text)
}

func TestOutputModes(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/v1/stimulator/output-modes", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var modes []map[string]interface{}
	decodeData(t, w, &modes)
	require.Len(t, modes, 4)
	assert.EqualValues(t, 0, modes[0]["value"])
}
