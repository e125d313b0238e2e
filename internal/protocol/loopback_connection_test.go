package protocol

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stimjim-service/internal/model"
)

func TestLoopbackRequiresOpen(t *testing.T) {
	lc := NewLoopbackConnection(zap.NewNop())
	ctx := context.Background()

	assert.ErrorIs(t, lc.Write(ctx, []byte("T0\n")), ErrNotOpen)
	_, err := lc.ReadAvailable(ctx)
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestLoopbackMirrorsDevice(t *testing.T) {
	lc := NewLoopbackConnection(zap.NewNop())
	ctx := context.Background()
	require.NoError(t, lc.Open(ctx))

	require.NoError(t, lc.Write(ctx, []byte("S3,0,3,2000,1000000;5000,0,100\n")))
	require.NoError(t, lc.Write(ctx, []byte("R0,3,0\nR1,-1,1")))
	require.NoError(t, lc.Write(ctx, []byte("\nT3\nU-1\n")))

	assert.Equal(t, []string{
		"S3,0,3,2000,1000000;5000,0,100",
		"R0,3,0",
		"R1,-1,1",
		"T3",
		"U-1",
	}, lc.Lines())

	mirror := lc.Mirror()
	encoded, err := mirror.EncodeTrain(3)
	require.NoError(t, err)
	assert.Equal(t, "S3,0,3,2000,1000000;5000,0,100\n", encoded)
	assert.Equal(t, "R0,3,0\nR1,-1,1", mirror.EncodeTriggers())

	fired := lc.Fired()
	require.Len(t, fired, 2)
	assert.Equal(t, CommandFire, fired[0].Kind)
	assert.Equal(t, 3, fired[0].TrainID)
	assert.Equal(t, CommandCancel, fired[1].Kind)
	assert.Equal(t, 1, fired[1].TriggerID)

	echo, err := lc.ReadAvailable(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(echo), "T3\r\n")

	echo, err = lc.ReadAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, echo)

	stats := lc.GetStats()
	assert.True(t, stats.IsConnected)
	assert.Positive(t, stats.BytesWritten)
	assert.Positive(t, stats.BytesRead)
}

func TestLoopbackRejectsMalformed(t *testing.T) {
	lc := NewLoopbackConnection(zap.NewNop())
	ctx := context.Background()
	require.NoError(t, lc.Open(ctx))

	require.NoError(t, lc.Write(ctx, []byte("R0,1,7\n")))

	echo, err := lc.ReadAvailable(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(echo), "error:")

	trig, err := lc.Mirror().Trigger(0)
	require.NoError(t, err)
	assert.Equal(t, model.NewTrigger(0), trig)
}

func TestLoopbackInjectAndFail(t *testing.T) {
	lc := NewLoopbackConnection(zap.NewNop())
	ctx := context.Background()
	require.NoError(t, lc.Open(ctx))

	lc.Inject("\r")
	data, err := lc.ReadAvailable(ctx)
	require.NoError(t, err)
	assert.Equal(t, "\r", string(data))

	boom := errors.New("cable pulled")
	lc.FailWrites(boom)
	assert.ErrorIs(t, lc.Write(ctx, []byte("T0\n")), boom)
	assert.Equal(t, int64(1), lc.GetStats().ErrorCount)

	lc.FailWrites(nil)
	assert.NoError(t, lc.Write(ctx, []byte("T0\n")))
}

func TestLoopbackRefusesOutOfLimitTrain(t *testing.T) {
	lc := NewLoopbackConnection(zap.NewNop())
	ctx := context.Background()
	require.NoError(t, lc.Open(ctx))

	require.NoError(t, lc.Write(ctx, []byte("S0,0,3,2000,1000;99999,0,100\n")))

	echo, err := lc.ReadAvailable(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(echo), "error:")
	assert.Contains(t, string(echo), "exceeds 15000")

	encoded, err := lc.Mirror().EncodeTrain(0)
	require.NoError(t, err)
	assert.Equal(t, model.NewPulseTrain(0).Encode(), encoded)
}
