// internal/discovery/scanner.go
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"stimjim-service/internal/protocol"
)

var (
	// ErrNoDevice is returned when no candidate port matches the device signature
	ErrNoDevice = errors.New("no stimulator found")
	// ErrAmbiguousPort is returned when several ports match and none was chosen
	ErrAmbiguousPort = errors.New("multiple stimulators found")
)

// DeviceScanner finds candidate links to the stimulator
type DeviceScanner interface {
	Scan(ctx context.Context) ([]*DiscoveredPort, error)
	GetScannerType() string
	IsAvailable() bool
}

// DiscoveredPort represents one candidate link to a stimulator
type DiscoveredPort struct {
	Transport      protocol.TransportType `json:"transport"`
	Port           string                 `json:"port"`
	ConnectionInfo map[string]interface{} `json:"connection_info"`
	VendorID       string                 `json:"vendor_id,omitempty"`
	ProductID      string                 `json:"product_id,omitempty"`
	SerialNumber   string                 `json:"serial_number,omitempty"`
	Product        string                 `json:"product,omitempty"`
	Location       string                 `json:"location,omitempty"`
	Confidence     float64                `json:"confidence"` // 0.0-1.0
}

// Matches reports whether name identifies this port, by path or serial number
func (p *DiscoveredPort) Matches(name string) bool {
	if name == "" {
		return false
	}
	return strings.EqualFold(p.Port, name) || (p.SerialNumber != "" && p.SerialNumber == name)
}

// ScannerManager manages all device scanners
type ScannerManager struct {
	scanners map[string]DeviceScanner
	logger   *zap.Logger
}

// NewScannerManager creates a new scanner manager
func NewScannerManager(logger *zap.Logger) *ScannerManager {
	return &ScannerManager{
		scanners: make(map[string]DeviceScanner),
		logger:   logger,
	}
}

// RegisterScanner registers a device scanner
func (sm *ScannerManager) RegisterScanner(scanner DeviceScanner) {
	scannerType := scanner.GetScannerType()
	sm.scanners[scannerType] = scanner
	sm.logger.Info("Scanner registered", zap.String("type", scannerType))
}

// ScanAll runs every available scanner. A failing scanner is logged and
// skipped; the others still contribute.
func (sm *ScannerManager) ScanAll(ctx context.Context) ([]*DiscoveredPort, error) {
	var all []*DiscoveredPort

	for _, scannerType := range sm.scannerTypes() {
		scanner := sm.scanners[scannerType]
		if !scanner.IsAvailable() {
			sm.logger.Debug("Scanner not available, skipping", zap.String("type", scannerType))
			continue
		}

		ports, err := scanner.Scan(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			sm.logger.Error("Scanner failed", zap.String("type", scannerType), zap.Error(err))
			continue
		}

		all = append(all, ports...)
		sm.logger.Info("Scanner completed",
			zap.String("type", scannerType),
			zap.Int("ports_found", len(ports)),
		)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})

	return all, nil
}

// ScanByType runs one scanner
func (sm *ScannerManager) ScanByType(ctx context.Context, scannerType string) ([]*DiscoveredPort, error) {
	scanner, exists := sm.scanners[scannerType]
	if !exists {
		return nil, fmt.Errorf("scanner type not found: %s", scannerType)
	}

	if !scanner.IsAvailable() {
		return nil, fmt.Errorf("scanner not available: %s", scannerType)
	}

	return scanner.Scan(ctx)
}

// GetAvailableScanners returns the sorted list of available scanner types
func (sm *ScannerManager) GetAvailableScanners() []string {
	var available []string
	for _, scannerType := range sm.scannerTypes() {
		if sm.scanners[scannerType].IsAvailable() {
			available = append(available, scannerType)
		}
	}
	return available
}

func (sm *ScannerManager) scannerTypes() []string {
	types := make([]string, 0, len(sm.scanners))
	for t := range sm.scanners {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ResolvePort picks the port to open. An exactly-one match is used as is;
// with several matches the preferred name must pick one.
func ResolvePort(candidates []*DiscoveredPort, preferred string) (*DiscoveredPort, error) {
	if preferred != "" {
		for _, c := range candidates {
			if c.Matches(preferred) {
				return c, nil
			}
		}
		return nil, fmt.Errorf("%w: %s is not among %d candidates", ErrNoDevice, preferred, len(candidates))
	}

	switch len(candidates) {
	case 0:
		return nil, ErrNoDevice
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.Port)
		}
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousPort, strings.Join(names, ", "))
	}
}
