// internal/protocol/tcp_connection.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TCPConnection implements Transport for serial-over-network bridges
type TCPConnection struct {
	config *TCPConfig
	conn   net.Conn
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
	stats  ProtocolStats
}

// NewTCPConnection creates a new TCP connection
func NewTCPConnection(config *TCPConfig, logger *zap.Logger) *TCPConnection {
	return &TCPConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "tcp"),
			zap.String("host", config.Host),
			zap.Int("port", config.Port),
		),
	}
}

// Open dials the bridge
func (tc *TCPConnection) Open(ctx context.Context) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.isOpen {
		return nil
	}

	address := net.JoinHostPort(tc.config.Host, fmt.Sprint(tc.config.Port))
	tc.logger.Info("Opening TCP connection", zap.String("address", address))

	dialer := &net.Dialer{Timeout: tc.config.Timeout}
	if tc.config.KeepAlive {
		dialer.KeepAlive = 30 * time.Second
	}

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		tc.logger.Error("Failed to open TCP connection", zap.Error(err))
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	tc.conn = conn
	tc.isOpen = true
	tc.stats.IsConnected = true
	tc.stats.LastActivity = time.Now()

	tc.logger.Info("TCP connection opened successfully")
	return nil
}

// Close closes the TCP connection
func (tc *TCPConnection) Close() error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if !tc.isOpen || tc.conn == nil {
		return nil
	}

	err := tc.conn.Close()
	tc.conn = nil
	tc.isOpen = false
	tc.stats.IsConnected = false

	if err != nil {
		tc.logger.Error("Failed to close TCP connection", zap.Error(err))
		return fmt.Errorf("failed to close TCP connection: %w", err)
	}

	tc.logger.Info("TCP connection closed successfully")
	return nil
}

// IsOpen returns whether the connection is open
func (tc *TCPConnection) IsOpen() bool {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	return tc.isOpen && tc.conn != nil
}

// Write writes data to the TCP connection
func (tc *TCPConnection) Write(ctx context.Context, data []byte) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if !tc.isOpen || tc.conn == nil {
		return fmt.Errorf("tcp write: %w", ErrNotOpen)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if tc.config.WriteTimeout > 0 {
		tc.conn.SetWriteDeadline(time.Now().Add(tc.config.WriteTimeout))
	}

	startTime := time.Now()
	n, err := tc.conn.Write(data)
	if err != nil {
		tc.stats.ErrorCount++
		tc.logger.Error("TCP write failed", zap.Error(err))
		return fmt.Errorf("failed to write to TCP connection: %w", err)
	}

	tc.stats.recordWrite(n, time.Since(startTime))

	tc.logger.Debug("TCP write completed", zap.Int("bytes", n))
	return nil
}

// ReadAvailable reads until the poll deadline passes with no new data
func (tc *TCPConnection) ReadAvailable(ctx context.Context) ([]byte, error) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if !tc.isOpen || tc.conn == nil {
		return nil, fmt.Errorf("tcp read: %w", ErrNotOpen)
	}

	limit := tc.config.BufferSize
	if limit <= 0 {
		limit = DefaultReadBufferSize
	}
	poll := tc.config.PollTimeout
	if poll <= 0 {
		poll = DefaultPollTimeout
	}

	var out []byte
	buf := make([]byte, 256)
	for len(out) < limit {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		tc.conn.SetReadDeadline(time.Now().Add(poll))
		n, err := tc.conn.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				break
			}
			tc.stats.ErrorCount++
			if errors.Is(err, io.EOF) {
				tc.logger.Warn("TCP peer closed the connection")
			}
			return out, fmt.Errorf("failed to read from TCP connection: %w", err)
		}
		if n == 0 {
			break
		}
	}

	tc.stats.recordRead(len(out))
	return out, nil
}

// GetProtocolType returns the protocol type
func (tc *TCPConnection) GetProtocolType() TransportType {
	return TransportTCP
}

// GetStats returns a snapshot of the connection statistics
func (tc *TCPConnection) GetStats() ProtocolStats {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	return tc.stats
}
