package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stimjim-service/internal/model"
)

const voltageTrainJSON = `{
	"train_id": 99,
	"train_period_us": 2000,
	"train_duration_us": 1000000,
	"channel_modes": [0, 3],
	"phases": [{"ch0_amp": 5000, "ch1_amp": 0, "duration": 100}]
}`

func TestGetProgram(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/v1/programs/full", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var record model.ProgramRecord
	decodeData(t, w, &record)
	assert.Len(t, record.Triggers, model.NumTriggers)

	w = env.do(t, http.MethodGet, "/api/v1/programs/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTrain(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPut, "/api/v1/programs/full/trains/3?send=true", voltageTrainJSON)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TrainResponse
	decodeData(t, w, &resp)
	assert.Equal(t, 3, resp.TrainID)
	assert.Equal(t, "S3,0,3,2000,1000000;5000,0,100", resp.Command)
	assert.Equal(t, resp.Command, lastLine(t, env.loopback))

	w = env.do(t, http.MethodGet, "/api/v1/programs/full/trains/3", nil)
	decodeData(t, w, &resp)
	assert.Equal(t, "S3,0,3,2000,1000000;5000,0,100", resp.Command)

	t.Run("without send", func(t *testing.T) {
		sent := len(env.loopback.Lines())
		w := env.do(t, http.MethodPut, "/api/v1/programs/simple/trains/3", voltageTrainJSON)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, env.loopback.Lines(), sent)
	})

	t.Run("amplitude out of range", func(t *testing.T) {
		body := `{"train_id": 3, "train_period_us": 2000, "train_duration_us": 1000000,
			"channel_modes": [1, 3], "phases": [{"ch0_amp": 5000, "ch1_amp": 0, "duration": 100}]}`
		w := env.do(t, http.MethodPut, "/api/v1/programs/full/trains/3", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "AMPLITUDE_OUT_OF_RANGE", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("missing key", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/v1/programs/full/trains/3", `{"train_id": 3}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestStages(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPut, "/api/v1/programs/full/trains/3", voltageTrainJSON)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/programs/full/trains/3/stages", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TrainResponse
	decodeData(t, w, &resp)
	assert.Len(t, resp.Phases, 2)

	w = env.do(t, http.MethodPost, "/api/v1/programs/full/trains/3/stages", model.NewPulseStage(1000, 0, 50))
	decodeData(t, w, &resp)
	assert.Len(t, resp.Phases, 3)
	assert.Equal(t, "S3,0,3,2000,1000000;5000,0,100;0,0,100;1000,0,50", resp.Command)

	t.Run("grounded channel rejects amplitude", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/programs/full/trains/3/stages", model.NewPulseStage(0, 10, 50))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	w = env.do(t, http.MethodDelete, "/api/v1/programs/full/trains/3/stages/5", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/programs/full/trains/3/stages/0", nil)
	decodeData(t, w, &resp)
	assert.Equal(t, "S3,0,3,2000,1000000;0,0,100;1000,0,50", resp.Command)

	w = env.do(t, http.MethodDelete, "/api/v1/programs/full/trains/3/stages", nil)
	decodeData(t, w, &resp)
	assert.Equal(t, "S3,0,3,2000,1000000;0,0,100", resp.Command)
}

func TestUpdateTrigger(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPut, "/api/v1/programs/full/triggers/1?send=true", TriggerRequest{
		Direction:   model.TriggerDirection(1),
		TargetTrain: 5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "R1,5,1", lastLine(t, env.loopback))

	w = env.do(t, http.MethodPut, "/api/v1/programs/full/triggers/0", TriggerRequest{Direction: 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/v1/programs/full/triggers/0?send=maybe", TriggerRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPushAndExportProgram(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPut, "/api/v1/programs/full/trains/3", voltageTrainJSON)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/programs/full/push", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, env.loopback.Lines(), "S3,0,3,2000,1000000;5000,0,100")

	w = env.do(t, http.MethodGet, "/api/v1/programs/full/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "stimjim-full.json")
	assert.Contains(t, w.Body.String(), `"pulse_trains"`)

	exported := w.Body.String()
	w = env.do(t, http.MethodPut, "/api/v1/programs/simple", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/programs/simple/trains/3", nil)
	var resp TrainResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "S3,0,3,2000,1000000;5000,0,100", resp.Command)

	w = env.do(t, http.MethodPut, "/api/v1/programs/simple", `{"triggers": [}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
