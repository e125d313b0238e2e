// internal/protocol/protocol.go
package protocol

import (
	"context"
	"errors"
	"time"
)

// TransportType identifies how the stimulator is reached
type TransportType string

const (
	TransportSerial   TransportType = "serial"
	TransportTCP      TransportType = "tcp"
	TransportUSB      TransportType = "usb"
	TransportLoopback TransportType = "loopback"
)

// ErrNotOpen is returned by every transport operation on a closed link
var ErrNotOpen = errors.New("transport not open")

// Transport represents a byte link to the stimulator
type Transport interface {
	// Connection lifecycle
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Data communication. ReadAvailable never waits for data: it returns
	// whatever has arrived since the previous call, possibly nothing.
	Write(ctx context.Context, data []byte) error
	ReadAvailable(ctx context.Context) ([]byte, error)

	// Protocol information
	GetProtocolType() TransportType
	GetStats() ProtocolStats
}

// ProtocolStats provides protocol-level statistics
type ProtocolStats struct {
	BytesWritten   int64         `json:"bytes_written"`
	BytesRead      int64         `json:"bytes_read"`
	OperationCount int64         `json:"operation_count"`
	ErrorCount     int64         `json:"error_count"`
	LastActivity   time.Time     `json:"last_activity"`
	AverageLatency time.Duration `json:"average_latency"`
	IsConnected    bool          `json:"is_connected"`
}

func (s *ProtocolStats) recordWrite(n int, latency time.Duration) {
	s.BytesWritten += int64(n)
	s.OperationCount++
	s.LastActivity = time.Now()
	if s.AverageLatency == 0 {
		s.AverageLatency = latency
	} else {
		s.AverageLatency = (s.AverageLatency + latency) / 2
	}
}

func (s *ProtocolStats) recordRead(n int) {
	if n == 0 {
		return
	}
	s.BytesRead += int64(n)
	s.OperationCount++
	s.LastActivity = time.Now()
}
