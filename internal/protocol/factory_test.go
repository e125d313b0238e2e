package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateTransport(t *testing.T) {
	logger := zap.NewNop()

	t.Run("serial", func(t *testing.T) {
		transport, err := CreateTransport(TransportSerial, map[string]interface{}{
			"port":         "/dev/ttyACM0",
			"baud_rate":    float64(115200),
			"poll_timeout": "5ms",
		}, logger)
		require.NoError(t, err)

		sc, ok := transport.(*SerialConnection)
		require.True(t, ok)
		assert.Equal(t, "/dev/ttyACM0", sc.config.Port)
		assert.Equal(t, 115200, sc.config.BaudRate)
		assert.Equal(t, 5*time.Millisecond, sc.config.PollTimeout)
		assert.False(t, transport.IsOpen())
	})

	t.Run("usb defaults", func(t *testing.T) {
		transport, err := CreateTransport(TransportUSB, map[string]interface{}{}, logger)
		require.NoError(t, err)

		uc, ok := transport.(*USBConnection)
		require.True(t, ok)
		assert.Equal(t, DefaultVendorID, uc.config.VendorID)
		assert.Equal(t, DefaultProductID, uc.config.ProductID)
		assert.Equal(t, 1, uc.config.Interface)
	})

	t.Run("tcp", func(t *testing.T) {
		transport, err := CreateTransport(TransportTCP, map[string]interface{}{
			"host": "bench-pi.local",
			"port": 3001,
		}, logger)
		require.NoError(t, err)
		assert.Equal(t, TransportTCP, transport.GetProtocolType())
	})

	t.Run("loopback", func(t *testing.T) {
		transport, err := CreateTransport(TransportLoopback, nil, logger)
		require.NoError(t, err)
		assert.Equal(t, TransportLoopback, transport.GetProtocolType())
	})
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		transport TransportType
		settings  map[string]interface{}
		wantErr   string
	}{
		{"serial missing port", TransportSerial, map[string]interface{}{}, "serial port is required"},
		{"serial bad baud", TransportSerial, map[string]interface{}{"port": "COM3", "baud_rate": 12345}, "invalid baud rate"},
		{"serial bad baud type", TransportSerial, map[string]interface{}{"port": "COM3", "baud_rate": "fast"}, "invalid baud_rate type"},
		{"usb bad vid", TransportUSB, map[string]interface{}{"vendor_id": "zz"}, "invalid USB vendor_id"},
		{"tcp missing host", TransportTCP, map[string]interface{}{}, "TCP host is required"},
		{"tcp bad port", TransportTCP, map[string]interface{}{"host": "h", "port": 70000}, "invalid port number"},
		{"unknown", TransportType("bluetooth"), nil, "unsupported transport type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.transport, tt.settings)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.NoError(t, ValidateConfig(TransportSerial, map[string]interface{}{"port": "COM3", "baud_rate": 115200}))
}

func TestParseHexID(t *testing.T) {
	id, err := ParseHexID("0x16C0")
	require.NoError(t, err)
	assert.Equal(t, 0x16C0, int(id))

	id, err = ParseHexID("0483")
	require.NoError(t, err)
	assert.Equal(t, 0x0483, int(id))

	_, err = ParseHexID("12345")
	assert.Error(t, err)
}
