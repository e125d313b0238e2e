// internal/model/pulse_stage.go
package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultStageDurationUS is the duration of a stage added without explicit values
const DefaultStageDurationUS = 100

// PulseStage is one fixed-amplitude segment of a pulse train. Amplitudes are
// device integer units whose meaning depends on the owning train's channel
// modes; the stage itself does not know its train.
type PulseStage struct {
	ChannelAmps [NumOutputs]int `json:"channel_amps"`
	DurationUS  int             `json:"duration_us"`
}

// NewPulseStage creates a stage. No validation happens here because limits
// depend on the modes of the train the stage ends up in.
func NewPulseStage(ch0Amp, ch1Amp, durationUS int) PulseStage {
	return PulseStage{
		ChannelAmps: [NumOutputs]int{ch0Amp, ch1Amp},
		DurationUS:  durationUS,
	}
}

// DefaultPulseStage returns the zero-amplitude stage used when none is given
func DefaultPulseStage() PulseStage {
	return NewPulseStage(0, 0, DefaultStageDurationUS)
}

// NewPulseStageSI builds a stage from SI amplitudes and a duration in
// seconds, resolving units through the given channel modes
func NewPulseStageSI(modes [NumOutputs]OutputMode, amps [NumOutputs]decimal.Decimal, durationS float64) PulseStage {
	return NewPulseStage(
		ToDeviceUnits(modes[0], amps[0]),
		ToDeviceUnits(modes[1], amps[1]),
		SecondsToMicros(durationS),
	)
}

// Encode returns the wire segment "<ch0_amp>,<ch1_amp>,<duration_us>"
func (s PulseStage) Encode() string {
	return fmt.Sprintf("%d,%d,%d", s.ChannelAmps[0], s.ChannelAmps[1], s.DurationUS)
}

// Negated returns the stage with both amplitudes sign-inverted
func (s PulseStage) Negated() PulseStage {
	return NewPulseStage(-s.ChannelAmps[0], -s.ChannelAmps[1], s.DurationUS)
}

// AmplitudeSI returns the amplitude of a channel in SI units for the given mode
func (s PulseStage) AmplitudeSI(channel int, mode OutputMode) decimal.Decimal {
	return FromDeviceUnits(mode, s.ChannelAmps[channel])
}

// Validate checks the stage against the owning train's channel modes
func (s PulseStage) Validate(modes [NumOutputs]OutputMode) error {
	if s.DurationUS < 0 {
		return fmt.Errorf("stage duration %d: %w", s.DurationUS, ErrInvalidDuration)
	}

	for channel, amp := range s.ChannelAmps {
		limit := MaxDeviceUnits(modes[channel])
		if amp > limit || amp < -limit {
			return fmt.Errorf("channel %d amplitude %d exceeds %d for mode %s: %w",
				channel, amp, limit, modes[channel], ErrAmplitudeOutOfRange)
		}
	}

	return nil
}
