// internal/service/discovery_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stimjim-service/internal/config"
	"stimjim-service/internal/discovery"
	"stimjim-service/internal/discovery/serial"
	"stimjim-service/internal/discovery/tcp"
	"stimjim-service/internal/discovery/usb"
	"stimjim-service/internal/protocol"
	"stimjim-service/internal/utils"
)

// DiscoveryService finds the stimulator and opens the link to it
type DiscoveryService struct {
	scannerManager *discovery.ScannerManager
	config         *config.DeviceConfig
	logger         *utils.ServiceLogger
}

// NewDiscoveryService creates a discovery service with the scanners that
// fit the device configuration
func NewDiscoveryService(cfg *config.DeviceConfig, logger *zap.Logger) *DiscoveryService {
	manager := discovery.NewScannerManager(logger)

	manager.RegisterScanner(serial.NewScanner(logger, &serial.Config{
		VendorID:  cfg.VendorID,
		ProductID: cfg.ProductID,
		BaudRate:  cfg.BaudRate,
	}))

	if usbScanner := usb.NewScanner(logger, &usb.Config{
		VendorID:  cfg.VendorID,
		ProductID: cfg.ProductID,
	}); usbScanner.IsAvailable() {
		manager.RegisterScanner(usbScanner)
	}

	manager.RegisterScanner(tcp.NewScanner(logger, &tcp.Config{
		Endpoints:   cfg.TCP.Endpoints,
		ConnTimeout: cfg.TCP.Timeout,
	}))

	return NewDiscoveryServiceWithManager(manager, cfg, logger)
}

// NewDiscoveryServiceWithManager creates a discovery service over an
// existing scanner manager
func NewDiscoveryServiceWithManager(manager *discovery.ScannerManager, cfg *config.DeviceConfig, logger *zap.Logger) *DiscoveryService {
	ds := &DiscoveryService{
		scannerManager: manager,
		config:         cfg,
		logger:         utils.NewServiceLogger(logger, "discovery-service"),
	}

	ds.logger.Info("Discovery scanners initialized",
		zap.Strings("available_scanners", manager.GetAvailableScanners()),
	)
	return ds
}

// AvailableScanners lists the scanner types that can run on this host
func (ds *DiscoveryService) AvailableScanners() []string {
	return ds.scannerManager.GetAvailableScanners()
}

// ScanDevices runs one scanner, or all of them for "all"
func (ds *DiscoveryService) ScanDevices(ctx context.Context, scanType string) ([]*discovery.DiscoveredPort, error) {
	ds.logger.Info("Starting device scan", zap.String("type", scanType))

	var (
		ports []*discovery.DiscoveredPort
		err   error
	)

	switch scanType {
	case "", "all":
		ports, err = ds.scannerManager.ScanAll(ctx)
	default:
		ports, err = ds.scannerManager.ScanByType(ctx, scanType)
	}
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	ds.logger.Info("Device scan completed",
		zap.Int("ports_found", len(ports)),
		zap.String("scan_type", scanType),
	)
	return ports, nil
}

// Resolve scans with the configured transport's scanner and picks one port.
// preferred disambiguates by port name or serial number.
func (ds *DiscoveryService) Resolve(ctx context.Context, preferred string) (*discovery.DiscoveredPort, error) {
	transport := protocol.TransportType(ds.config.Transport)
	if transport == protocol.TransportLoopback {
		return &discovery.DiscoveredPort{
			Transport:      protocol.TransportLoopback,
			Port:           "loopback",
			ConnectionInfo: map[string]interface{}{},
			Confidence:     1,
		}, nil
	}

	candidates, err := ds.ScanDevices(ctx, string(transport))
	if err != nil {
		return nil, err
	}
	return discovery.ResolvePort(candidates, preferred)
}

// ConnectionSettings merges a discovered port over the configured transport
// settings
func (ds *DiscoveryService) ConnectionSettings(port *discovery.DiscoveredPort) map[string]interface{} {
	settings := ds.config.TransportSettings()
	for key, value := range port.ConnectionInfo {
		settings[key] = value
	}
	return settings
}

// AutoConnect opens the configured port directly when one is set, otherwise
// it discovers the stimulator first
func (ds *DiscoveryService) AutoConnect(ctx context.Context, stimulator *StimulatorService) (*discovery.DiscoveredPort, error) {
	transport := protocol.TransportType(ds.config.Transport)

	var port *discovery.DiscoveredPort
	switch {
	case transport == protocol.TransportSerial && ds.config.Port != "":
		port = &discovery.DiscoveredPort{
			Transport:      transport,
			Port:           ds.config.Port,
			ConnectionInfo: map[string]interface{}{"port": ds.config.Port},
		}
	case transport == protocol.TransportTCP && ds.config.TCP.Host != "":
		port = &discovery.DiscoveredPort{
			Transport:      transport,
			Port:           fmt.Sprintf("%s:%d", ds.config.TCP.Host, ds.config.TCP.Port),
			ConnectionInfo: map[string]interface{}{},
		}
	default:
		resolved, err := ds.Resolve(ctx, ds.config.SerialNumber)
		if err != nil {
			return nil, err
		}
		port = resolved
	}

	if err := stimulator.Connect(ctx, port.Transport, ds.ConnectionSettings(port)); err != nil {
		return port, err
	}

	ds.logger.Info("Connected to stimulator",
		zap.String("transport", string(port.Transport)),
		zap.String("port", port.Port),
	)
	return port, nil
}
