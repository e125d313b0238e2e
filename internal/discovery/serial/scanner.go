// internal/discovery/serial/scanner.go
package serial

import (
	"context"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"stimjim-service/internal/discovery"
	"stimjim-service/internal/protocol"
)

// Scanner finds USB serial ports whose VID:PID match the stimulator
type Scanner struct {
	logger   *zap.Logger
	config   *Config
	listFunc func() ([]*enumerator.PortDetails, error)
}

// Config for serial scanner
type Config struct {
	VendorID  string `json:"vendor_id"`
	ProductID string `json:"product_id"`
	BaudRate  int    `json:"baud_rate"`
}

// NewScanner creates a new serial scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = &Config{}
	}
	if config.VendorID == "" {
		config.VendorID = protocol.DefaultVendorID
	}
	if config.ProductID == "" {
		config.ProductID = protocol.DefaultProductID
	}
	if config.BaudRate == 0 {
		config.BaudRate = protocol.DefaultBaudRate
	}

	return &Scanner{
		logger:   logger.With(zap.String("scanner", "serial")),
		config:   config,
		listFunc: enumerator.GetDetailedPortsList,
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return "serial"
}

// IsAvailable checks if serial scanning is available
func (s *Scanner) IsAvailable() bool {
	return true
}

// Scan lists serial ports and keeps those with the configured USB signature
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredPort, error) {
	ports, err := s.listFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports: %w", err)
	}

	var discovered []*discovery.DiscoveredPort
	for _, port := range ports {
		if err := ctx.Err(); err != nil {
			return discovered, err
		}

		if !s.matches(port) {
			s.logger.Debug("Skipping serial port",
				zap.String("port", port.Name),
				zap.Bool("is_usb", port.IsUSB),
				zap.String("vid", port.VID),
				zap.String("pid", port.PID),
			)
			continue
		}

		discovered = append(discovered, &discovery.DiscoveredPort{
			Transport: protocol.TransportSerial,
			Port:      port.Name,
			ConnectionInfo: map[string]interface{}{
				"port":      port.Name,
				"baud_rate": s.config.BaudRate,
			},
			VendorID:     normalizeID(port.VID),
			ProductID:    normalizeID(port.PID),
			SerialNumber: port.SerialNumber,
			Product:      port.Product,
			Confidence:   0.9,
		})
	}

	s.logger.Info("Serial scan completed",
		zap.Int("ports_listed", len(ports)),
		zap.Int("ports_matched", len(discovered)),
	)
	return discovered, nil
}

func (s *Scanner) matches(port *enumerator.PortDetails) bool {
	return port.IsUSB &&
		normalizeID(port.VID) == normalizeID(s.config.VendorID) &&
		normalizeID(port.PID) == normalizeID(s.config.ProductID)
}

func normalizeID(id string) string {
	return strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(id)), "0X")
}
