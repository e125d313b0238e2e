package serial

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"stimjim-service/internal/protocol"
)

func TestScanMatchesSignature(t *testing.T) {
	s := NewScanner(zap.NewNop(), nil)
	s.listFunc = func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyS0"},
			{Name: "/dev/ttyACM0", IsUSB: true, VID: "16c0", PID: "0483", SerialNumber: "9876540", Product: "USB Serial"},
			{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001"},
		}, nil
	}

	ports, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, ports, 1)

	port := ports[0]
	assert.Equal(t, protocol.TransportSerial, port.Transport)
	assert.Equal(t, "/dev/ttyACM0", port.Port)
	assert.Equal(t, "16C0", port.VendorID)
	assert.Equal(t, "9876540", port.SerialNumber)
	assert.Equal(t, "/dev/ttyACM0", port.ConnectionInfo["port"])
	assert.Equal(t, protocol.DefaultBaudRate, port.ConnectionInfo["baud_rate"])
}

func TestScanCustomSignature(t *testing.T) {
	s := NewScanner(zap.NewNop(), &Config{VendorID: "0x0403", ProductID: "6001"})
	s.listFunc = func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "COM3", IsUSB: true, VID: "0403", PID: "6001"},
		}, nil
	}

	ports, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, ports, 1)
}

func TestScanListFailure(t *testing.T) {
	s := NewScanner(zap.NewNop(), nil)
	s.listFunc = func() ([]*enumerator.PortDetails, error) {
		return nil, errors.New("permission denied")
	}

	_, err := s.Scan(context.Background())
	assert.ErrorContains(t, err, "permission denied")
}
