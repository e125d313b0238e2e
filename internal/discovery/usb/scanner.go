// internal/discovery/usb/scanner.go
package usb

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"stimjim-service/internal/discovery"
	"stimjim-service/internal/protocol"
)

// Scanner finds stimulators on the USB bus through libusb
type Scanner struct {
	logger       *zap.Logger
	knownDevices *DeviceDatabase
	config       *Config
}

// Config for USB scanner
type Config struct {
	VendorID    string        `json:"vendor_id"`
	ProductID   string        `json:"product_id"`
	ScanTimeout time.Duration `json:"scan_timeout"`
	EnableDebug bool          `json:"enable_debug"`
}

// NewScanner creates a new USB scanner
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
	if config.ScanTimeout == 0 {
		config.ScanTimeout = 10 * time.Second
	}

	return &Scanner{
		logger:       logger.With(zap.String("scanner", "usb")),
		knownDevices: NewDeviceDatabase(),
		config:       config,
	}
}

// GetScannerType returns scanner type identifier
func (s *Scanner) GetScannerType() string {
	return "usb"
}

// IsAvailable checks if USB scanning is available on this system
func (s *Scanner) IsAvailable() bool {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		return true
	default:
		s.logger.Warn("USB scanning support unknown for OS", zap.String("os", runtime.GOOS))
		return false
	}
}

// Scan performs USB device discovery
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredPort, error) {
	startTime := time.Now()

	vendorID, err := protocol.ParseHexID(s.config.VendorID)
	if err != nil {
		return nil, fmt.Errorf("invalid vendor ID: %w", err)
	}
	productID, err := protocol.ParseHexID(s.config.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID: %w", err)
	}

	scanCtx, cancel := context.WithTimeout(ctx, s.config.ScanTimeout)
	defer cancel()

	usbCtx := gousb.NewContext()
	defer func() {
		if err := usbCtx.Close(); err != nil {
			s.logger.Warn("Failed to close USB context", zap.Error(err))
		}
	}()

	if s.config.EnableDebug {
		usbCtx.Debug(3)
	}

	devices, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return s.shouldExamineDevice(desc, vendorID, productID)
	})
	defer s.closeAllDevices(devices)
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}
	if err != nil {
		// Devices we lack permission for are reported but the rest are usable
		s.logger.Warn("Some USB devices could not be opened", zap.Error(err))
	}

	var discovered []*discovery.DiscoveredPort
	for _, device := range devices {
		if err := scanCtx.Err(); err != nil {
			return discovered, err
		}
		if port := s.processDevice(device, vendorID, productID); port != nil {
			discovered = append(discovered, port)
		}
	}

	sort.SliceStable(discovered, func(i, j int) bool {
		return discovered[i].Confidence > discovered[j].Confidence
	})

	s.logger.Info("USB scan completed",
		zap.Int("devices_found", len(discovered)),
		zap.Duration("scan_duration", time.Since(startTime)),
	)

	return discovered, nil
}

// shouldExamineDevice accepts the configured signature and any serial-capable
// entry of the device database
func (s *Scanner) shouldExamineDevice(desc *gousb.DeviceDesc, vendorID, productID gousb.ID) bool {
	if desc.Vendor == vendorID && desc.Product == productID {
		return true
	}
	info := s.knownDevices.Lookup(desc.Vendor, desc.Product)
	return info != nil && info.Serial
}

// processDevice turns an opened device into a candidate port
func (s *Scanner) processDevice(device *gousb.Device, vendorID, productID gousb.ID) *discovery.DiscoveredPort {
	desc := device.Desc
	if desc == nil {
		return nil
	}

	confidence := 0.5
	product := ""
	if info := s.knownDevices.Lookup(desc.Vendor, desc.Product); info != nil {
		confidence = info.Confidence
		product = info.Model
	}
	if desc.Vendor == vendorID && desc.Product == productID && confidence < 0.9 {
		confidence = 0.9
	}

	if name, err := device.Product(); err == nil && strings.TrimSpace(name) != "" {
		product = strings.TrimSpace(name)
	}

	serialNumber := s.getSerialNumber(device)
	location := fmt.Sprintf("usb:%d-%d", desc.Bus, desc.Address)

	s.logger.Debug("USB candidate",
		zap.String("vendor_id", desc.Vendor.String()),
		zap.String("product_id", desc.Product.String()),
		zap.String("serial_number", serialNumber),
		zap.String("location", location),
	)

	return &discovery.DiscoveredPort{
		Transport: protocol.TransportUSB,
		Port:      location,
		ConnectionInfo: map[string]interface{}{
			"vendor_id":     fmt.Sprintf("%04X", uint16(desc.Vendor)),
			"product_id":    fmt.Sprintf("%04X", uint16(desc.Product)),
			"serial_number": serialNumber,
		},
		VendorID:     fmt.Sprintf("%04X", uint16(desc.Vendor)),
		ProductID:    fmt.Sprintf("%04X", uint16(desc.Product)),
		SerialNumber: serialNumber,
		Product:      product,
		Location:     location,
		Confidence:   confidence,
	}
}

// getSerialNumber reads the serial number string descriptor, if any
func (s *Scanner) getSerialNumber(device *gousb.Device) string {
	serialNumber, err := device.SerialNumber()
	if err != nil {
		s.logger.Debug("Failed to read serial number", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(serialNumber)
}

// closeAllDevices safely closes all opened USB devices
func (s *Scanner) closeAllDevices(devices []*gousb.Device) {
	for i, device := range devices {
		if device == nil {
			continue
		}
		if err := device.Close(); err != nil {
			s.logger.Warn("Failed to close USB device",
				zap.Int("device_index", i),
				zap.Error(err),
			)
		}
	}
}
