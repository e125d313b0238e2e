// internal/model/record.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
)

// maxPhaseValue bounds record phase values to integers a float64 holds exactly
const maxPhaseValue = 1 << 53

// ProgramRecord is the persisted form of a StimulationProgram
type ProgramRecord struct {
	Triggers    []TriggerRecord    `json:"triggers"`
	PulseTrains []PulseTrainRecord `json:"pulse_trains"`
}

// TriggerRecord is the persisted form of a Trigger
type TriggerRecord struct {
	TrigID        int `json:"trig_id"`
	TrigDirection int `json:"trig_direction"`
	TrainTarget   int `json:"train_target"`
}

// PulseTrainRecord is the persisted form of a PulseTrain
type PulseTrainRecord struct {
	TrainID         int           `json:"train_id"`
	TrainPeriodUS   int           `json:"train_period_us"`
	TrainDurationUS int           `json:"train_duration_us"`
	ChannelModes    []int         `json:"channel_modes"`
	Phases          []PhaseRecord `json:"phases"`
}

// PhaseRecord is the persisted form of a PulseStage. Amplitudes may have
// been stored as floats; they are truncated toward zero on decode.
type PhaseRecord struct {
	Ch0Amp   float64 `json:"ch0_amp"`
	Ch1Amp   float64 `json:"ch1_amp"`
	Duration float64 `json:"duration"`
}

// UnmarshalJSON applies trigger defaults for missing keys
func (r *TriggerRecord) UnmarshalJSON(data []byte) error {
	aux := struct {
		TrigID        *int `json:"trig_id"`
		TrigDirection *int `json:"trig_direction"`
		TrainTarget   *int `json:"train_target"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = TriggerRecord{TrigID: 0, TrigDirection: int(TriggerRising), TrainTarget: CancelTarget}
	if aux.TrigID != nil {
		r.TrigID = *aux.TrigID
	}
	if aux.TrigDirection != nil {
		r.TrigDirection = *aux.TrigDirection
	}
	if aux.TrainTarget != nil {
		r.TrainTarget = *aux.TrainTarget
	}
	return nil
}

// UnmarshalJSON requires every train key to be present
func (r *PulseTrainRecord) UnmarshalJSON(data []byte) error {
	aux := struct {
		TrainID         *int          `json:"train_id"`
		TrainPeriodUS   *int          `json:"train_period_us"`
		TrainDurationUS *int          `json:"train_duration_us"`
		ChannelModes    []int         `json:"channel_modes"`
		Phases          []PhaseRecord `json:"phases"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch {
	case aux.TrainID == nil:
		return fmt.Errorf("%w: missing train_id", ErrMalformedRecord)
	case aux.TrainPeriodUS == nil:
		return fmt.Errorf("%w: missing train_period_us", ErrMalformedRecord)
	case aux.TrainDurationUS == nil:
		return fmt.Errorf("%w: missing train_duration_us", ErrMalformedRecord)
	case aux.ChannelModes == nil:
		return fmt.Errorf("%w: missing channel_modes", ErrMalformedRecord)
	case aux.Phases == nil:
		return fmt.Errorf("%w: missing phases", ErrMalformedRecord)
	}

	*r = PulseTrainRecord{
		TrainID:         *aux.TrainID,
		TrainPeriodUS:   *aux.TrainPeriodUS,
		TrainDurationUS: *aux.TrainDurationUS,
		ChannelModes:    aux.ChannelModes,
		Phases:          aux.Phases,
	}
	return nil
}

// UnmarshalJSON applies stage defaults for missing keys
func (r *PhaseRecord) UnmarshalJSON(data []byte) error {
	aux := struct {
		Ch0Amp   *float64 `json:"ch0_amp"`
		Ch1Amp   *float64 `json:"ch1_amp"`
		Duration *float64 `json:"duration"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = PhaseRecord{Duration: DefaultStageDurationUS}
	if aux.Ch0Amp != nil {
		r.Ch0Amp = *aux.Ch0Amp
	}
	if aux.Ch1Amp != nil {
		r.Ch1Amp = *aux.Ch1Amp
	}
	if aux.Duration != nil {
		r.Duration = *aux.Duration
	}
	return nil
}

// Scan implements sql.Scanner for JSONB columns
func (r *ProgramRecord) Scan(value interface{}) error {
	if value == nil {
		*r = ProgramRecord{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported program record column type %T", value)
	}
	return json.Unmarshal(bytes, r)
}

// Value implements driver.Valuer for JSONB columns
func (r ProgramRecord) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Serialize produces the persisted record of every trigger and every train,
// including unused ones
func (p *StimulationProgram) Serialize() ProgramRecord {
	record := ProgramRecord{
		Triggers:    make([]TriggerRecord, 0, NumTriggers),
		PulseTrains: make([]PulseTrainRecord, 0, MaxPulseTrains),
	}

	for _, t := range p.triggers {
		record.Triggers = append(record.Triggers, TriggerRecord{
			TrigID:        t.ID,
			TrigDirection: int(t.Direction),
			TrainTarget:   t.TargetTrain,
		})
	}

	for _, train := range p.pulseTrains {
		record.PulseTrains = append(record.PulseTrains, serializeTrain(train))
	}

	return record
}

// Record returns the persisted form of a single train
func (t *PulseTrain) Record() PulseTrainRecord {
	return serializeTrain(t)
}

func serializeTrain(train *PulseTrain) PulseTrainRecord {
	rec := PulseTrainRecord{
		TrainID:         train.ID(),
		TrainPeriodUS:   train.PeriodUS(),
		TrainDurationUS: train.DurationUS(),
		ChannelModes:    []int{int(train.Mode(0)), int(train.Mode(1))},
		Phases:          make([]PhaseRecord, 0, train.StageCount()),
	}
	for _, stage := range train.stages {
		rec.Phases = append(rec.Phases, PhaseRecord{
			Ch0Amp:   float64(stage.ChannelAmps[0]),
			Ch1Amp:   float64(stage.ChannelAmps[1]),
			Duration: float64(stage.DurationUS),
		})
	}
	return rec
}

// DeserializeProgram builds a new program from a record. Entries replace the
// matching prefix of the fixed arrays; the rest stays at defaults. Any
// invalid entry fails the whole decode.
func DeserializeProgram(record ProgramRecord) (*StimulationProgram, error) {
	if len(record.Triggers) > NumTriggers {
		return nil, fmt.Errorf("%w: %d triggers exceed capacity %d",
			ErrMalformedRecord, len(record.Triggers), NumTriggers)
	}
	if len(record.PulseTrains) > MaxPulseTrains {
		return nil, fmt.Errorf("%w: %d pulse trains exceed capacity %d",
			ErrMalformedRecord, len(record.PulseTrains), MaxPulseTrains)
	}

	p := NewStimulationProgram()

	for i, rec := range record.Triggers {
		t, err := decodeTrigger(rec)
		if err != nil {
			return nil, fmt.Errorf("trigger entry %d: %w", i, err)
		}
		if t.ID != i {
			return nil, fmt.Errorf("%w: trigger entry %d has id %d", ErrMalformedRecord, i, t.ID)
		}
		p.triggers[i] = t
	}

	for i, rec := range record.PulseTrains {
		train, err := DecodePulseTrain(rec)
		if err != nil {
			return nil, fmt.Errorf("pulse train entry %d: %w", i, err)
		}
		if train.ID() != i {
			return nil, fmt.Errorf("%w: pulse train entry %d has id %d", ErrMalformedRecord, i, train.ID())
		}
		if err := train.Validate(); err != nil {
			return nil, fmt.Errorf("%w: pulse train entry %d: %v", ErrMalformedRecord, i, err)
		}
		p.pulseTrains[i] = train
	}

	return p, nil
}

func decodeTrigger(rec TriggerRecord) (Trigger, error) {
	direction, err := ParseTriggerDirection(rec.TrigDirection)
	if err != nil {
		return Trigger{}, err
	}

	t := Trigger{ID: rec.TrigID, Direction: direction, TargetTrain: rec.TrainTarget}
	if err := t.Validate(); err != nil {
		return Trigger{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return t, nil
}

// DecodePulseTrain reconstructs a train from its persisted record. Stages
// are built by plain field construction; amplitude limits are left to the
// caller.
func DecodePulseTrain(rec PulseTrainRecord) (*PulseTrain, error) {
	if rec.TrainID < 0 || rec.TrainID >= MaxPulseTrains {
		return nil, fmt.Errorf("%w: train id %d", ErrMalformedRecord, rec.TrainID)
	}
	if len(rec.ChannelModes) != NumOutputs {
		return nil, fmt.Errorf("%w: train %d has %d channel modes",
			ErrMalformedRecord, rec.TrainID, len(rec.ChannelModes))
	}

	train := NewPulseTrain(rec.TrainID)

	for channel, value := range rec.ChannelModes {
		mode, err := ParseOutputMode(value)
		if err != nil {
			return nil, fmt.Errorf("%w: train %d channel %d: %v", ErrMalformedRecord, rec.TrainID, channel, err)
		}
		train.SetMode(channel, mode)
	}

	if err := train.SetPeriodUS(rec.TrainPeriodUS); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := train.SetDurationUS(rec.TrainDurationUS); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	for i, phase := range rec.Phases {
		values, err := phase.integers()
		if err != nil {
			return nil, fmt.Errorf("%w: train %d stage %d: %v", ErrMalformedRecord, rec.TrainID, i, err)
		}
		stage := NewPulseStage(values[0], values[1], values[2])
		if stage.DurationUS < 0 {
			return nil, fmt.Errorf("%w: train %d stage duration %d", ErrMalformedRecord, rec.TrainID, stage.DurationUS)
		}
		if err := train.AddStage(&stage); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
	}

	return train, nil
}

// integers truncates the phase values toward zero
func (r PhaseRecord) integers() ([3]int, error) {
	var out [3]int
	for i, v := range [3]float64{r.Ch0Amp, r.Ch1Amp, r.Duration} {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxPhaseValue {
			return out, fmt.Errorf("phase value %g out of range", v)
		}
		out[i] = int(v)
	}
	return out, nil
}

// EncodeJSON returns the indented JSON record of the program
func (p *StimulationProgram) EncodeJSON() ([]byte, error) {
	return json.MarshalIndent(p.Serialize(), "", "    ")
}

// DecodeProgramJSON parses a JSON record and builds a new program from it
func DecodeProgramJSON(data []byte) (*StimulationProgram, error) {
	var record ProgramRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return DeserializeProgram(record)
}
