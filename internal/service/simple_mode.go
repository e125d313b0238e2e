// internal/service/simple_mode.go
package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"stimjim-service/internal/model"
	"stimjim-service/internal/protocol"
)

// SimplePulseRequest describes a regular pulse train on one output channel.
// Channel c always uses train c and trigger c.
type SimplePulseRequest struct {
	Channel     int              `json:"channel"`
	Mode        model.OutputMode `json:"mode"`
	Amplitude   decimal.Decimal  `json:"amplitude"`     // SI units of the mode
	PulseWidth  float64          `json:"pulse_width_s"` // whole pulse, both phases when bipolar
	Bipolar     bool             `json:"bipolar"`
	FrequencyHz float64          `json:"frequency_hz"`
	Pulses      int              `json:"pulses"`
}

// Validate checks the request fields that the train itself cannot check
func (r *SimplePulseRequest) Validate() error {
	if r.Channel < 0 || r.Channel >= model.NumOutputs {
		return fmt.Errorf("channel %d: %w", r.Channel, model.ErrIndexOutOfRange)
	}
	if !r.Mode.IsValid() {
		return fmt.Errorf("mode %d: %w", int(r.Mode), model.ErrInvalidOutputMode)
	}
	if r.FrequencyHz <= 0 {
		return fmt.Errorf("frequency %g Hz: %w", r.FrequencyHz, model.ErrInvalidPeriod)
	}
	if r.Pulses < 1 {
		return fmt.Errorf("pulse count %d must be at least 1: %w", r.Pulses, model.ErrInvalidDuration)
	}
	if r.PulseWidth < 0 {
		return fmt.Errorf("pulse width %g s: %w", r.PulseWidth, model.ErrInvalidDuration)
	}
	return nil
}

// TrainDurationSeconds is the time from the first pulse onset to the end of
// the last pulse
func (r *SimplePulseRequest) TrainDurationSeconds() float64 {
	return float64(r.Pulses-1)/r.FrequencyHz + r.PulseWidth
}

// BuildSimpleTrain derives the train and trigger of a simple pulse request
func BuildSimpleTrain(req *SimplePulseRequest) (*model.PulseTrain, model.Trigger, error) {
	if err := req.Validate(); err != nil {
		return nil, model.Trigger{}, err
	}

	train := model.NewPulseTrain(req.Channel)
	other := (req.Channel + 1) % model.NumOutputs
	train.SetMode(req.Channel, req.Mode)
	train.SetMode(other, model.OutputModeGrounded)

	period := model.DurationScalingFactor.Div(decimal.NewFromFloat(req.FrequencyHz)).IntPart()
	if err := train.SetPeriodUS(int(period)); err != nil {
		return nil, model.Trigger{}, err
	}
	if err := train.SetDurationSeconds(req.TrainDurationSeconds()); err != nil {
		return nil, model.Trigger{}, err
	}

	stageDuration := decimal.NewFromFloat(req.PulseWidth).Mul(model.DurationScalingFactor)
	if req.Bipolar {
		stageDuration = stageDuration.Div(decimal.NewFromInt(2))
	}

	var amps [model.NumOutputs]int
	amps[req.Channel] = model.ToDeviceUnits(req.Mode, req.Amplitude)

	stage := model.NewPulseStage(amps[0], amps[1], int(stageDuration.IntPart()))
	if err := train.AddStage(&stage); err != nil {
		return nil, model.Trigger{}, err
	}
	if req.Bipolar {
		negated := stage.Negated()
		if err := train.AddStage(&negated); err != nil {
			return nil, model.Trigger{}, err
		}
	}

	if err := train.Validate(); err != nil {
		return nil, model.Trigger{}, err
	}

	trigger := model.Trigger{ID: req.Channel, Direction: model.TriggerRising, TargetTrain: req.Channel}
	return train, trigger, nil
}

// DescribeSimpleTrain recovers the simple pulse parameters from train c of
// the simple program
func DescribeSimpleTrain(train *model.PulseTrain) SimplePulseRequest {
	channel := train.ID()
	req := SimplePulseRequest{
		Channel:     channel,
		Mode:        train.Mode(channel),
		Amplitude:   decimal.Zero,
		FrequencyHz: 1 / train.PeriodSeconds(),
		Pulses:      1,
	}

	stages := train.Stages()
	if len(stages) == 0 {
		return req
	}

	req.Bipolar = len(stages) > 1
	req.Amplitude = model.FromDeviceUnits(req.Mode, stages[0].ChannelAmps[channel])

	widthUS := stages[0].DurationUS
	if req.Bipolar {
		widthUS *= 2
	}
	req.PulseWidth = model.MicrosToSeconds(widthUS)

	if span := train.DurationUS() - widthUS; span > 0 {
		req.Pulses = span/train.PeriodUS() + 1
	}
	return req
}

// ApplySimplePulse installs a simple pulse train in the simple program and
// transmits its train and trigger binding as one block
func (s *StimulatorService) ApplySimplePulse(ctx context.Context, req *SimplePulseRequest) (*model.PulseTrain, error) {
	train, trigger, err := BuildSimpleTrain(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	program := s.programs[model.ProgramModeSimple]
	if err := program.ReplaceTrain(train.Clone()); err != nil {
		return nil, err
	}
	if err := program.SetTrigger(trigger); err != nil {
		return nil, err
	}
	s.listeners.programChanged(string(model.ProgramModeSimple))

	command := protocol.Terminate(protocol.JoinCommands(train.Encode(), trigger.Encode()))
	if err := s.sendLocked(ctx, command); err != nil {
		return train, err
	}
	return train, nil
}

// SimplePulse returns the simple pulse parameters of a channel
func (s *StimulatorService) SimplePulse(channel int) (SimplePulseRequest, error) {
	if channel < 0 || channel >= model.NumOutputs {
		return SimplePulseRequest{}, fmt.Errorf("channel %d: %w", channel, model.ErrIndexOutOfRange)
	}
	train, err := s.Train(model.ProgramModeSimple, channel)
	if err != nil {
		return SimplePulseRequest{}, err
	}
	return DescribeSimpleTrain(train), nil
}

// FireSimple manually triggers the simple pulse train of a channel
func (s *StimulatorService) FireSimple(ctx context.Context, channel int) error {
	if channel < 0 || channel >= model.NumOutputs {
		return fmt.Errorf("channel %d: %w", channel, model.ErrIndexOutOfRange)
	}
	return s.FireTrigger(ctx, channel, channel)
}
