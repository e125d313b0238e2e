package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stimjim-service/internal/model"
)

func bipolarRequest() *SimplePulseRequest {
	return &SimplePulseRequest{
		Channel:     0,
		Mode:        model.OutputModeVoltage,
		Amplitude:   decimal.RequireFromString("1.5"),
		PulseWidth:  0.001,
		Bipolar:     true,
		FrequencyHz: 10,
		Pulses:      3,
	}
}

func TestBuildSimpleTrain(t *testing.T) {
	train, trigger, err := BuildSimpleTrain(bipolarRequest())
	require.NoError(t, err)

	assert.Equal(t, "S0,0,3,100000,201000;1500,0,500;-1500,0,500\n", train.Encode())
	assert.Equal(t, "R0,0,0", trigger.Encode())
}

func TestBuildSimpleTrainMonophasic(t *testing.T) {
	req := &SimplePulseRequest{
		Channel:     1,
		Mode:        model.OutputModeCurrent,
		Amplitude:   decimal.RequireFromString("0.001"),
		PulseWidth:  0.0002,
		FrequencyHz: 20,
		Pulses:      1,
	}

	train, trigger, err := BuildSimpleTrain(req)
	require.NoError(t, err)

	assert.Equal(t, "S1,3,1,50000,200;0,1000,200\n", train.Encode())
	assert.Equal(t, model.Trigger{ID: 1, Direction: model.TriggerRising, TargetTrain: 1}, trigger)
}

func TestBuildSimpleTrainRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SimplePulseRequest)
		want   error
	}{
		{"channel", func(r *SimplePulseRequest) { r.Channel = 2 }, model.ErrIndexOutOfRange},
		{"frequency", func(r *SimplePulseRequest) { r.FrequencyHz = 0 }, model.ErrInvalidPeriod},
		{"pulses", func(r *SimplePulseRequest) { r.Pulses = 0 }, model.ErrInvalidDuration},
		{"mode", func(r *SimplePulseRequest) { r.Mode = model.OutputMode(9) }, model.ErrInvalidOutputMode},
		{"amplitude", func(r *SimplePulseRequest) { r.Amplitude = decimal.NewFromInt(16) }, model.ErrAmplitudeOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := bipolarRequest()
			tc.mutate(req)
			_, _, err := BuildSimpleTrain(req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDescribeSimpleTrain(t *testing.T) {
	train, _, err := BuildSimpleTrain(bipolarRequest())
	require.NoError(t, err)

	got := DescribeSimpleTrain(train)
	assert.Equal(t, 0, got.Channel)
	assert.Equal(t, model.OutputModeVoltage, got.Mode)
	assert.True(t, got.Amplitude.Equal(decimal.RequireFromString("1.5")))
	assert.InDelta(t, 0.001, got.PulseWidth, 1e-9)
	assert.True(t, got.Bipolar)
	assert.InDelta(t, 10.0, got.FrequencyHz, 1e-9)
	assert.Equal(t, 3, got.Pulses)

	empty := DescribeSimpleTrain(model.NewPulseTrain(1))
	assert.Equal(t, 1, empty.Pulses)
	assert.True(t, empty.Amplitude.IsZero())
}

func TestApplySimplePulse(t *testing.T) {
	svc, loopback, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.ApplySimplePulse(ctx, bipolarRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"S0,0,3,100000,201000;1500,0,500;-1500,0,500", "R0,0,0"}, loopback.Lines())

	described, err := svc.SimplePulse(0)
	require.NoError(t, err)
	assert.Equal(t, 3, described.Pulses)

	full, err := svc.Train(model.ProgramModeFull, 0)
	require.NoError(t, err)
	assert.Zero(t, full.StageCount())

	_, err = svc.SimplePulse(2)
	assert.ErrorIs(t, err, model.ErrIndexOutOfRange)
}

func TestFireSimple(t *testing.T) {
	svc, loopback, _ := newTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.FireSimple(ctx, 1))
	assert.ErrorIs(t, svc.FireSimple(ctx, 2), model.ErrIndexOutOfRange)
	assert.Equal(t, []string{"U1"}, loopback.Lines())
}
