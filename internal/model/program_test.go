package model

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerEncode(t *testing.T) {
	trig := Trigger{ID: 1, Direction: TriggerFalling, TargetTrain: 5}
	assert.Equal(t, "R1,5,1", trig.Encode())

	assert.Equal(t, "R0,-1,0", NewTrigger(0).Encode())
}

func TestTriggerValidate(t *testing.T) {
	assert.NoError(t, Trigger{ID: 0, TargetTrain: CancelTarget}.Validate())
	assert.NoError(t, Trigger{ID: 1, TargetTrain: 99}.Validate())
	assert.ErrorIs(t, Trigger{ID: 2}.Validate(), ErrIndexOutOfRange)
	assert.ErrorIs(t, Trigger{ID: 0, TargetTrain: 100}.Validate(), ErrInvalidTarget)
	assert.ErrorIs(t, Trigger{ID: 0, TargetTrain: -2}.Validate(), ErrInvalidTarget)
	assert.ErrorIs(t, Trigger{ID: 0, Direction: 3}.Validate(), ErrInvalidDirection)
}

func TestParseTriggerDirection(t *testing.T) {
	dir, err := ParseTriggerDirection(1)
	require.NoError(t, err)
	assert.Equal(t, TriggerFalling, dir)

	_, err = ParseTriggerDirection(2)
	assert.ErrorIs(t, err, ErrInvalidDirection)
	_, err = ParseTriggerDirection(-1)
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestNewStimulationProgramDefaults(t *testing.T) {
	p := NewStimulationProgram()

	for i, trig := range p.Triggers() {
		assert.Equal(t, i, trig.ID)
		assert.Equal(t, TriggerRising, trig.Direction)
		assert.Equal(t, CancelTarget, trig.TargetTrain)
	}

	trains := p.Trains()
	require.Len(t, trains, MaxPulseTrains)
	for i, train := range trains {
		assert.Equal(t, i, train.ID())
		assert.Equal(t, [NumOutputs]OutputMode{OutputModeGrounded, OutputModeGrounded}, train.Modes())
		assert.Equal(t, DefaultTrainPeriodUS, train.PeriodUS())
		assert.Zero(t, train.StageCount())
		assert.NoError(t, train.Validate())
	}

	_, err := p.Train(MaxPulseTrains)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = p.Trigger(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	assert.Equal(t, "R0,-1,0\nR1,-1,0", p.EncodeTriggers())
}

func sampleProgram(t *testing.T) *StimulationProgram {
	t.Helper()

	p := NewStimulationProgram()
	require.NoError(t, p.SetTrigger(Trigger{ID: 0, Direction: TriggerRising, TargetTrain: 3}))
	require.NoError(t, p.SetTrigger(Trigger{ID: 1, Direction: TriggerFalling, TargetTrain: 42}))

	train, err := p.Train(3)
	require.NoError(t, err)
	train.SetMode(0, OutputModeVoltage)
	require.NoError(t, train.SetPeriodUS(5000))
	require.NoError(t, train.SetDurationUS(250_000))
	pos := NewPulseStage(5000, 0, 100)
	neg := NewPulseStage(-5000, 0, 100)
	require.NoError(t, train.AddStage(&pos))
	require.NoError(t, train.AddStage(&neg))

	train, err = p.Train(42)
	require.NoError(t, err)
	train.SetMode(0, OutputModeCurrent)
	train.SetMode(1, OutputModeDisconnected)
	require.NoError(t, train.AddStage(nil))

	return p
}

func encodeAll(p *StimulationProgram) []string {
	var out []string
	for _, train := range p.Trains() {
		out = append(out, train.Encode())
	}
	for _, trig := range p.Triggers() {
		out = append(out, trig.Encode())
	}
	return out
}

func TestSerializeRoundTrip(t *testing.T) {
	p := sampleProgram(t)

	record := p.Serialize()
	assert.Len(t, record.Triggers, NumTriggers)
	assert.Len(t, record.PulseTrains, MaxPulseTrains)

	decoded, err := DeserializeProgram(record)
	require.NoError(t, err)
	assert.Equal(t, encodeAll(p), encodeAll(decoded))
}

func TestJSONRoundTrip(t *testing.T) {
	p := sampleProgram(t)

	data, err := p.EncodeJSON()
	require.NoError(t, err)

	decoded, err := DecodeProgramJSON(data)
	require.NoError(t, err)
	assert.Equal(t, encodeAll(p), encodeAll(decoded))
}

func TestRecordJSONFieldNames(t *testing.T) {
	p := NewStimulationProgram()
	train, err := p.Train(0)
	require.NoError(t, err)
	stage := NewPulseStage(1, 2, 3)
	require.NoError(t, train.AddStage(&stage))

	data, err := json.Marshal(p.Serialize())
	require.NoError(t, err)

	var raw map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, map[string]interface{}{
		"trig_id": float64(0), "trig_direction": float64(0), "train_target": float64(-1),
	}, raw["triggers"][0])

	first := raw["pulse_trains"][0]
	assert.Equal(t, float64(0), first["train_id"])
	assert.Equal(t, float64(2000), first["train_period_us"])
	assert.Equal(t, float64(1_000_000), first["train_duration_us"])
	assert.Equal(t, []interface{}{float64(3), float64(3)}, first["channel_modes"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"ch0_amp": float64(1), "ch1_amp": float64(2), "duration": float64(3)},
	}, first["phases"])
}

func TestDeserializePartialRecord(t *testing.T) {
	data := []byte(`{
		"triggers": [{"trig_id": 0, "trig_direction": 1, "train_target": 0}],
		"pulse_trains": [{
			"train_id": 0, "train_period_us": 1000, "train_duration_us": 5000,
			"channel_modes": [0, 3],
			"phases": [{"ch0_amp": 2500.9, "ch1_amp": 0, "duration": 200}, {"ch0_amp": -2500}]
		}]
	}`)

	p, err := DecodeProgramJSON(data)
	require.NoError(t, err)

	assert.Equal(t, "R0,0,1\nR1,-1,0", p.EncodeTriggers())

	first, err := p.EncodeTrain(0)
	require.NoError(t, err)
	assert.Equal(t, "S0,0,3,1000,5000;2500,0,200;-2500,0,100\n", first)

	second, err := p.EncodeTrain(1)
	require.NoError(t, err)
	assert.Equal(t, NewPulseTrain(1).Encode(), second)
}

func TestDeserializeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"invalid direction", `{"triggers":[{"trig_id":0,"trig_direction":7,"train_target":-1}],"pulse_trains":[]}`, ErrInvalidDirection},
		{"not json", `{"triggers":`, ErrMalformedRecord},
		{"missing train key", `{"triggers":[],"pulse_trains":[{"train_id":0,"train_period_us":10,"channel_modes":[3,3],"phases":[]}]}`, ErrMalformedRecord},
		{"bad mode", `{"triggers":[],"pulse_trains":[{"train_id":0,"train_period_us":10,"train_duration_us":0,"channel_modes":[9,3],"phases":[]}]}`, ErrMalformedRecord},
		{"one mode", `{"triggers":[],"pulse_trains":[{"train_id":0,"train_period_us":10,"train_duration_us":0,"channel_modes":[3],"phases":[]}]}`, ErrMalformedRecord},
		{"zero period", `{"triggers":[],"pulse_trains":[{"train_id":0,"train_period_us":0,"train_duration_us":0,"channel_modes":[3,3],"phases":[]}]}`, ErrMalformedRecord},
		{"id mismatch", `{"triggers":[{"trig_id":1}],"pulse_trains":[]}`, ErrMalformedRecord},
		{"target out of range", `{"triggers":[{"trig_id":0,"train_target":100}],"pulse_trains":[]}`, ErrMalformedRecord},
		{"too many triggers", `{"triggers":[{"trig_id":0},{"trig_id":1},{"trig_id":2}],"pulse_trains":[]}`, ErrMalformedRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeProgramJSON([]byte(tt.data))
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDeserializeTooManyPhases(t *testing.T) {
	record := ProgramRecord{
		PulseTrains: []PulseTrainRecord{{
			TrainID:       0,
			TrainPeriodUS: 2000,
			ChannelModes:  []int{3, 3},
			Phases:        make([]PhaseRecord, MaxStages+1),
		}},
	}

	_, err := DeserializeProgram(record)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestFailedDeserializeLeavesProgramIntact(t *testing.T) {
	active := sampleProgram(t)
	before := encodeAll(active)

	bad := active.Serialize()
	bad.Triggers[1].TrigDirection = 7

	replacement, err := DeserializeProgram(bad)
	require.ErrorIs(t, err, ErrInvalidDirection)
	assert.Nil(t, replacement)

	assert.Equal(t, before, encodeAll(active))
	train, err := active.Train(3)
	require.NoError(t, err)
	assert.NoError(t, train.AddStage(nil))
}

func TestProgramCloneIsIndependent(t *testing.T) {
	p := sampleProgram(t)
	clone := p.Clone()

	train, err := clone.Train(3)
	require.NoError(t, err)
	train.ClearStages()
	require.NoError(t, clone.SetTrigger(NewTrigger(0)))

	original, err := p.Train(3)
	require.NoError(t, err)
	assert.Equal(t, 2, original.StageCount())
	trig, err := p.Trigger(0)
	require.NoError(t, err)
	assert.Equal(t, 3, trig.TargetTrain)
}

func TestDeserializeTruncatesFractionalAmplitudes(t *testing.T) {
	data := []byte(`{"triggers": [], "pulse_trains": [{
		"train_id": 0, "train_period_us": 2000, "train_duration_us": 0,
		"channel_modes": [0, 0],
		"phases": [{"ch0_amp": 5000.7, "ch1_amp": -5000.7, "duration": 100.9}]
	}]}`)

	p, err := DecodeProgramJSON(data)
	require.NoError(t, err)

	line, err := p.EncodeTrain(0)
	require.NoError(t, err)
	assert.Equal(t, "S0,0,0,2000,0;5000,-5000,100\n", line)
}

func TestDeserializeRejectsOutOfLimitStages(t *testing.T) {
	tests := []struct {
		name   string
		modes  string
		phases string
	}{
		{"voltage above limit", "[0, 3]", `[{"ch0_amp": 99999, "ch1_amp": 0, "duration": 100}]`},
		{"current below limit", "[3, 1]", `[{"ch0_amp": 0, "ch1_amp": -3331, "duration": 100}]`},
		{"grounded amplitude", "[3, 3]", `[{"ch0_amp": 1, "ch1_amp": 0, "duration": 100}]`},
		{"huge float", "[0, 3]", `[{"ch0_amp": 1e19, "ch1_amp": 0, "duration": 100}]`},
		{"huge negative float", "[0, 3]", `[{"ch0_amp": -1e19, "ch1_amp": 0, "duration": 100}]`},
		{"huge duration", "[3, 3]", `[{"ch0_amp": 0, "ch1_amp": 0, "duration": 1e300}]`},
		{"negative duration", "[3, 3]", `[{"ch0_amp": 0, "ch1_amp": 0, "duration": -5}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := fmt.Sprintf(`{"triggers": [], "pulse_trains": [{
				"train_id": 0, "train_period_us": 2000, "train_duration_us": 0,
				"channel_modes": %s, "phases": %s}]}`, tt.modes, tt.phases)

			p, err := DecodeProgramJSON([]byte(data))
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestDecodePulseTrainRejectsNonFinitePhase(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1 << 54} {
		rec := PulseTrainRecord{
			TrainID:       0,
			TrainPeriodUS: 2000,
			ChannelModes:  []int{0, 3},
			Phases:        []PhaseRecord{{Ch0Amp: v, Duration: 100}},
		}
		_, err := DecodePulseTrain(rec)
		assert.ErrorIs(t, err, ErrMalformedRecord, "value %g", v)
	}
}

func TestScanMissingTrainKeyIsMalformed(t *testing.T) {
	var record ProgramRecord
	err := record.Scan([]byte(`{"triggers":[],"pulse_trains":[{"train_id":0,"channel_modes":[3,3],"phases":[]}]}`))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}
