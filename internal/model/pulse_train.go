// internal/model/pulse_train.go
package model

import (
	"fmt"
	"strings"
)

// Default train timing
const (
	DefaultTrainPeriodUS   = 2000
	DefaultTrainDurationUS = 1_000_000
)

// PulseTrain is a numbered, repeatable program of up to MaxStages stages.
// Integer microseconds are the authoritative timing representation.
type PulseTrain struct {
	id           int
	channelModes [NumOutputs]OutputMode
	periodUS     int
	durationUS   int
	stages       []PulseStage
}

// NewPulseTrain creates an empty train with both channels grounded
func NewPulseTrain(id int) *PulseTrain {
	return &PulseTrain{
		id:           id,
		channelModes: [NumOutputs]OutputMode{DefaultOutputMode, DefaultOutputMode},
		periodUS:     DefaultTrainPeriodUS,
		durationUS:   DefaultTrainDurationUS,
		stages:       make([]PulseStage, 0, MaxStages),
	}
}

// ID returns the train id in [0, MaxPulseTrains)
func (t *PulseTrain) ID() int {
	return t.id
}

// AddStage appends a stage, or a default stage when nil
func (t *PulseTrain) AddStage(stage *PulseStage) error {
	if len(t.stages) >= MaxStages {
		return fmt.Errorf("train %d already has %d stages: %w", t.id, MaxStages, ErrTooManyStages)
	}

	if stage == nil {
		def := DefaultPulseStage()
		stage = &def
	}

	t.stages = append(t.stages, *stage)
	return nil
}

// RemoveStage removes the stage at index, the last one when no index is
// given. Negative indices count from the end.
func (t *PulseTrain) RemoveStage(index ...int) error {
	i := len(t.stages) - 1
	if len(index) > 0 {
		i = index[0]
		if i < 0 {
			i += len(t.stages)
		}
	}

	if i < 0 || i >= len(t.stages) {
		return fmt.Errorf("train %d has %d stages: %w", t.id, len(t.stages), ErrIndexOutOfRange)
	}

	t.stages = append(t.stages[:i], t.stages[i+1:]...)
	return nil
}

// SetStage replaces the stage at index
func (t *PulseTrain) SetStage(index int, stage PulseStage) error {
	if index < 0 || index >= len(t.stages) {
		return fmt.Errorf("train %d has %d stages: %w", t.id, len(t.stages), ErrIndexOutOfRange)
	}
	t.stages[index] = stage
	return nil
}

// ClearStages removes every stage
func (t *PulseTrain) ClearStages() {
	t.stages = t.stages[:0]
}

// Stages returns a copy of the stage list
func (t *PulseTrain) Stages() []PulseStage {
	out := make([]PulseStage, len(t.stages))
	copy(out, t.stages)
	return out
}

// StageCount returns the number of stages
func (t *PulseTrain) StageCount() int {
	return len(t.stages)
}

// SetMode sets the output mode of a channel. Channel must be 0 or 1.
func (t *PulseTrain) SetMode(channel int, mode OutputMode) {
	t.channelModes[channel] = mode
}

// Mode returns the output mode of a channel
func (t *PulseTrain) Mode(channel int) OutputMode {
	return t.channelModes[channel]
}

// Modes returns both channel modes
func (t *PulseTrain) Modes() [NumOutputs]OutputMode {
	return t.channelModes
}

// PeriodUS returns the train period in microseconds
func (t *PulseTrain) PeriodUS() int {
	return t.periodUS
}

// SetPeriodUS sets the train period in microseconds
func (t *PulseTrain) SetPeriodUS(value int) error {
	if value <= 0 {
		return fmt.Errorf("period %d: %w", value, ErrInvalidPeriod)
	}
	t.periodUS = value
	return nil
}

// PeriodSeconds returns the train period in seconds
func (t *PulseTrain) PeriodSeconds() float64 {
	return MicrosToSeconds(t.periodUS)
}

// SetPeriodSeconds sets the period from seconds, truncated to microseconds
func (t *PulseTrain) SetPeriodSeconds(value float64) error {
	return t.SetPeriodUS(SecondsToMicros(value))
}

// DurationUS returns the total train duration in microseconds
func (t *PulseTrain) DurationUS() int {
	return t.durationUS
}

// SetDurationUS sets the total train duration in microseconds
func (t *PulseTrain) SetDurationUS(value int) error {
	if value < 0 {
		return fmt.Errorf("train duration %d: %w", value, ErrInvalidDuration)
	}
	t.durationUS = value
	return nil
}

// DurationSeconds returns the total train duration in seconds
func (t *PulseTrain) DurationSeconds() float64 {
	return MicrosToSeconds(t.durationUS)
}

// SetDurationSeconds sets the duration from seconds, truncated to microseconds
func (t *PulseTrain) SetDurationSeconds(value float64) error {
	return t.SetDurationUS(SecondsToMicros(value))
}

// Validate checks timing, stage count and every stage against the channel modes
func (t *PulseTrain) Validate() error {
	if t.periodUS <= 0 {
		return fmt.Errorf("train %d: %w", t.id, ErrInvalidPeriod)
	}
	if t.durationUS < 0 {
		return fmt.Errorf("train %d: %w", t.id, ErrInvalidDuration)
	}
	if len(t.stages) > MaxStages {
		return fmt.Errorf("train %d: %w", t.id, ErrTooManyStages)
	}
	for channel, mode := range t.channelModes {
		if !mode.IsValid() {
			return fmt.Errorf("train %d channel %d: %w", t.id, channel, ErrInvalidOutputMode)
		}
	}

	for i, stage := range t.stages {
		if err := stage.Validate(t.channelModes); err != nil {
			return fmt.Errorf("train %d stage %d: %w", t.id, i, err)
		}
	}

	return nil
}

// Clone returns a deep copy of the train
func (t *PulseTrain) Clone() *PulseTrain {
	clone := *t
	clone.stages = make([]PulseStage, len(t.stages), MaxStages)
	copy(clone.stages, t.stages)
	return &clone
}

// Encode returns the newline-terminated "S" command programming this train:
// S<id>,<mode0>,<mode1>,<period_us>,<duration_us>[;<stage>]*
func (t *PulseTrain) Encode() string {
	var b strings.Builder

	fmt.Fprintf(&b, "S%d,%d,%d,%d,%d",
		t.id, int(t.channelModes[0]), int(t.channelModes[1]), t.periodUS, t.durationUS)

	for _, stage := range t.stages {
		b.WriteByte(';')
		b.WriteString(stage.Encode())
	}

	b.WriteByte('\n')
	return b.String()
}
