// internal/protocol/connection.go
package protocol

import "time"

// Defaults for the StimJim (Teensy 4.1 USB serial)
const (
	DefaultBaudRate       = 115200
	DefaultVendorID       = "16C0"
	DefaultProductID      = "0483"
	DefaultReadBufferSize = 4096
	DefaultPollTimeout    = 20 * time.Millisecond
)

// SerialConfig represents serial connection configuration
type SerialConfig struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`
	// PollTimeout bounds a single read while draining the input buffer
	PollTimeout time.Duration `json:"poll_timeout"`
	BufferSize  int           `json:"buffer_size"`
}

// USBConfig represents a CDC-ACM data interface reached through libusb
type USBConfig struct {
	VendorID     string        `json:"vendor_id"`
	ProductID    string        `json:"product_id"`
	SerialNumber string        `json:"serial_number"`
	Config       int           `json:"config"`
	Interface    int           `json:"interface"`
	OutEndpoint  int           `json:"out_endpoint"`
	InEndpoint   int           `json:"in_endpoint"`
	PollTimeout  time.Duration `json:"poll_timeout"`
	BufferSize   int           `json:"buffer_size"`
}

// TCPConfig represents a serial-over-network bridge such as ser2net
type TCPConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	KeepAlive    bool          `json:"keep_alive"`
	BufferSize   int           `json:"buffer_size"`
	Timeout      time.Duration `json:"timeout"`
	PollTimeout  time.Duration `json:"poll_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}
