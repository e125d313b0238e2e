// internal/discovery/tcp/scanner.go
package tcp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"stimjim-service/internal/discovery"
	"stimjim-service/internal/protocol"
)

// Scanner checks configured serial-over-network bridges
type Scanner struct {
	logger *zap.Logger
	config *Config
	dial   func(ctx context.Context, network, address string) (net.Conn, error)
}

// Config for TCP scanner
type Config struct {
	// Endpoints are host:port pairs of ser2net-style bridges
	Endpoints   []string      `json:"endpoints"`
	ConnTimeout time.Duration `json:"connection_timeout"`
}

// NewScanner creates a new TCP scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = &Config{}
	}
	if config.ConnTimeout == 0 {
		config.ConnTimeout = 2 * time.Second
	}

	dialer := &net.Dialer{Timeout: config.ConnTimeout}
	return &Scanner{
		logger: logger.With(zap.String("scanner", "tcp")),
		config: config,
		dial:   dialer.DialContext,
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return "tcp"
}

// IsAvailable reports whether any bridge endpoint is configured
func (s *Scanner) IsAvailable() bool {
	return len(s.config.Endpoints) > 0
}

// Scan dials every endpoint and reports those that accept a connection
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredPort, error) {
	var discovered []*discovery.DiscoveredPort

	for _, endpoint := range s.config.Endpoints {
		if err := ctx.Err(); err != nil {
			return discovered, err
		}

		host, portStr, err := net.SplitHostPort(endpoint)
		if err != nil {
			s.logger.Warn("Invalid bridge endpoint", zap.String("endpoint", endpoint), zap.Error(err))
			continue
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			s.logger.Warn("Invalid bridge port", zap.String("endpoint", endpoint), zap.Error(err))
			continue
		}

		conn, err := s.dial(ctx, "tcp", endpoint)
		if err != nil {
			s.logger.Debug("Bridge unreachable", zap.String("endpoint", endpoint), zap.Error(err))
			continue
		}
		conn.Close()

		discovered = append(discovered, &discovery.DiscoveredPort{
			Transport: protocol.TransportTCP,
			Port:      endpoint,
			ConnectionInfo: map[string]interface{}{
				"host": host,
				"port": port,
			},
			Location:   fmt.Sprintf("tcp://%s", endpoint),
			Confidence: 0.5,
		})
	}

	s.logger.Info("TCP scan completed", zap.Int("bridges_found", len(discovered)))
	return discovered, nil
}
