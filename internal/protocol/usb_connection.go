// internal/protocol/usb_connection.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"
)

// CDC-ACM class request used to assert DTR/RTS on the communication interface
const (
	cdcRequestType          = 0x21
	cdcSetControlLineState  = 0x22
	cdcControlLineDTRAndRTS = 0x03
)

// USBConnection implements Transport over the bulk endpoints of a CDC-ACM
// data interface, bypassing the kernel tty layer
type USBConnection struct {
	config   *USBConfig
	ctx      *gousb.Context
	device   *gousb.Device
	cfg      *gousb.Config
	intf     *gousb.Interface
	outEndpt *gousb.OutEndpoint
	inEndpt  *gousb.InEndpoint
	logger   *zap.Logger
	mutex    sync.Mutex
	isOpen   bool
	stats    ProtocolStats
}

// NewUSBConnection creates a new USB connection
func NewUSBConnection(config *USBConfig, logger *zap.Logger) *USBConnection {
	return &USBConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "usb"),
			zap.String("vendor_id", config.VendorID),
			zap.String("product_id", config.ProductID),
		),
	}
}

// Open opens the USB connection
func (uc *USBConnection) Open(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if uc.isOpen {
		return nil
	}

	uc.logger.Info("Opening USB connection",
		zap.Int("interface", uc.config.Interface),
		zap.Int("out_endpoint", uc.config.OutEndpoint),
		zap.Int("in_endpoint", uc.config.InEndpoint),
	)

	vendorID, err := ParseHexID(uc.config.VendorID)
	if err != nil {
		return fmt.Errorf("invalid vendor ID: %w", err)
	}

	productID, err := ParseHexID(uc.config.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product ID: %w", err)
	}

	uc.ctx = gousb.NewContext()

	device, err := uc.findAndOpenDevice(vendorID, productID)
	if err != nil {
		uc.releaseLocked()
		return fmt.Errorf("failed to find USB device: %w", err)
	}
	uc.device = device

	if err := device.SetAutoDetach(true); err != nil {
		uc.logger.Warn("Failed to enable kernel driver auto-detach", zap.Error(err))
	}

	cfg, err := device.Config(uc.config.Config)
	if err != nil {
		uc.releaseLocked()
		return fmt.Errorf("failed to select configuration %d: %w", uc.config.Config, err)
	}
	uc.cfg = cfg

	intf, err := cfg.Interface(uc.config.Interface, 0)
	if err != nil {
		uc.releaseLocked()
		return fmt.Errorf("failed to claim interface %d: %w", uc.config.Interface, err)
	}
	uc.intf = intf

	if uc.outEndpt, err = intf.OutEndpoint(uc.config.OutEndpoint); err != nil {
		uc.releaseLocked()
		return fmt.Errorf("failed to get out endpoint: %w", err)
	}
	if uc.inEndpt, err = intf.InEndpoint(uc.config.InEndpoint); err != nil {
		uc.releaseLocked()
		return fmt.Errorf("failed to get in endpoint: %w", err)
	}

	// The firmware only treats the port as connected once DTR is raised
	if _, err := device.Control(cdcRequestType, cdcSetControlLineState,
		cdcControlLineDTRAndRTS, 0, nil); err != nil {
		uc.logger.Warn("Failed to set CDC control line state", zap.Error(err))
	}

	uc.isOpen = true
	uc.stats.IsConnected = true
	uc.stats.LastActivity = time.Now()

	uc.logger.Info("USB connection opened successfully")
	return nil
}

// Close closes the USB connection
func (uc *USBConnection) Close() error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen {
		return nil
	}

	uc.releaseLocked()
	uc.logger.Info("USB connection closed successfully")
	return nil
}

func (uc *USBConnection) releaseLocked() {
	if uc.intf != nil {
		uc.intf.Close()
		uc.intf = nil
	}
	if uc.cfg != nil {
		uc.cfg.Close()
		uc.cfg = nil
	}
	if uc.device != nil {
		uc.device.Close()
		uc.device = nil
	}
	if uc.ctx != nil {
		uc.ctx.Close()
		uc.ctx = nil
	}

	uc.outEndpt = nil
	uc.inEndpt = nil
	uc.isOpen = false
	uc.stats.IsConnected = false
}

// IsOpen returns whether the connection is open
func (uc *USBConnection) IsOpen() bool {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	return uc.isOpen && uc.outEndpt != nil
}

// Write writes data to the bulk OUT endpoint
func (uc *USBConnection) Write(ctx context.Context, data []byte) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen || uc.outEndpt == nil {
		return fmt.Errorf("usb write: %w", ErrNotOpen)
	}

	startTime := time.Now()
	n, err := uc.outEndpt.WriteContext(ctx, data)
	if err != nil {
		uc.stats.ErrorCount++
		uc.logger.Error("USB write failed", zap.Error(err))
		return fmt.Errorf("failed to write to USB device: %w", err)
	}

	if n != len(data) {
		uc.stats.ErrorCount++
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	uc.stats.recordWrite(n, time.Since(startTime))

	uc.logger.Debug("USB write completed", zap.Int("bytes", n))
	return nil
}

// ReadAvailable collects bulk IN transfers until one times out
func (uc *USBConnection) ReadAvailable(ctx context.Context) ([]byte, error) {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen || uc.inEndpt == nil {
		return nil, fmt.Errorf("usb read: %w", ErrNotOpen)
	}

	limit := uc.config.BufferSize
	if limit <= 0 {
		limit = DefaultReadBufferSize
	}
	poll := uc.config.PollTimeout
	if poll <= 0 {
		poll = DefaultPollTimeout
	}

	var out []byte
	packetSize := uc.inEndpt.Desc.MaxPacketSize
	if packetSize <= 0 {
		packetSize = 512
	}
	buf := make([]byte, packetSize)
	for len(out) < limit {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		readCtx, cancel := context.WithTimeout(ctx, poll)
		n, err := uc.inEndpt.ReadContext(readCtx, buf)
		cancel()

		out = append(out, buf[:n]...)
		if err != nil {
			if isTransferIdle(err) && ctx.Err() == nil {
				break
			}
			uc.stats.ErrorCount++
			uc.logger.Error("USB read failed", zap.Error(err))
			return out, fmt.Errorf("failed to read from USB device: %w", err)
		}
		if n == 0 {
			break
		}
	}

	uc.stats.recordRead(len(out))
	return out, nil
}

// GetProtocolType returns the protocol type
func (uc *USBConnection) GetProtocolType() TransportType {
	return TransportUSB
}

// GetStats returns a snapshot of the connection statistics
func (uc *USBConnection) GetStats() ProtocolStats {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	return uc.stats
}

// ParseHexID parses hex ID string (0x16C0 or 16C0)
func ParseHexID(hexStr string) (gousb.ID, error) {
	hexStr = strings.TrimPrefix(strings.TrimPrefix(hexStr, "0x"), "0X")

	id, err := strconv.ParseUint(hexStr, 16, 16)
	if err != nil {
		return 0, err
	}

	return gousb.ID(id), nil
}

// findAndOpenDevice opens the single device matching VID/PID and, when
// configured, the serial number
func (uc *USBConnection) findAndOpenDevice(vendorID, productID gousb.ID) (*gousb.Device, error) {
	devices, err := uc.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vendorID && desc.Product == productID
	})
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	var match *gousb.Device
	for _, dev := range devices {
		if match == nil && uc.serialMatches(dev) {
			match = dev
			continue
		}
		dev.Close()
	}

	if match == nil {
		return nil, fmt.Errorf("USB device not found (VID: %s, PID: %s)", vendorID, productID)
	}

	return match, nil
}

func (uc *USBConnection) serialMatches(dev *gousb.Device) bool {
	if uc.config.SerialNumber == "" {
		return true
	}
	serialNumber, err := dev.SerialNumber()
	if err != nil {
		uc.logger.Debug("Failed to read USB serial number", zap.Error(err))
		return false
	}
	return serialNumber == uc.config.SerialNumber
}

func isTransferIdle(err error) bool {
	return errors.Is(err, gousb.TransferTimedOut) ||
		errors.Is(err, gousb.TransferCancelled) ||
		errors.Is(err, context.DeadlineExceeded)
}
