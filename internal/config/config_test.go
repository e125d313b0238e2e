package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: bench\n"))
	require.NoError(t, err)

	assert.Equal(t, "bench", cfg.App.Name)
	assert.Equal(t, "serial", cfg.Device.Transport)
	assert.Equal(t, 115200, cfg.Device.BaudRate)
	assert.Equal(t, "16C0", cfg.Device.VendorID)
	assert.Equal(t, "0483", cfg.Device.ProductID)
	assert.Equal(t, 500*time.Millisecond, cfg.Device.ReadInterval)
	assert.Equal(t, 20, cfg.Device.HistorySize)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "127.0.0.1:8090", cfg.GetServerAddr())
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
device:
  transport: tcp
  read_interval: 250ms
  tcp:
    host: bench-pi.local
    port: 3001
`)
	t.Setenv("STIMJIM_DEVICE_SERIAL_LOG_PATH", "/tmp/stimjim.log")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp", cfg.Device.Transport)
	assert.Equal(t, 250*time.Millisecond, cfg.Device.ReadInterval)
	assert.Equal(t, "/tmp/stimjim.log", cfg.Device.SerialLogPath)

	settings := cfg.Device.TransportSettings()
	assert.Equal(t, "bench-pi.local", settings["host"])
	assert.Equal(t, 3001, settings["port"])
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad transport", "device:\n  transport: bluetooth\n", "device.transport"},
		{"bad level", "logging:\n  level: verbose\n", "logging.level"},
		{"bad environment", "app:\n  environment: qa\n", "app.environment"},
		{"zero interval", "device:\n  read_interval: 0s\n", "device.read_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSerialTransportSettings(t *testing.T) {
	d := DeviceConfig{Transport: "serial", Port: "/dev/ttyACM0", BaudRate: 115200}
	settings := d.TransportSettings()
	assert.Equal(t, "/dev/ttyACM0", settings["port"])
	assert.Equal(t, 115200, settings["baud_rate"])

	assert.Empty(t, (&DeviceConfig{Transport: "loopback"}).TransportSettings())
}
