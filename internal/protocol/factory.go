// internal/protocol/factory.go
package protocol

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CreateTransport creates a transport from a loosely typed settings map, as
// it arrives from configuration or a JSON request body
func CreateTransport(transportType TransportType, settings map[string]interface{}, logger *zap.Logger) (Transport, error) {
	if err := ValidateConfig(transportType, settings); err != nil {
		return nil, err
	}

	switch transportType {
	case TransportSerial:
		return createSerialTransport(settings, logger), nil
	case TransportUSB:
		return createUSBTransport(settings, logger), nil
	case TransportTCP:
		return createTCPTransport(settings, logger), nil
	case TransportLoopback:
		return NewLoopbackConnection(logger), nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transportType)
	}
}

// createSerialTransport creates a serial transport
func createSerialTransport(settings map[string]interface{}, logger *zap.Logger) Transport {
	serialConfig := &SerialConfig{
		Port:        settings["port"].(string),
		BaudRate:    DefaultBaudRate,
		DataBits:    8,
		StopBits:    1,
		Parity:      "none",
		PollTimeout: DefaultPollTimeout,
		BufferSize:  DefaultReadBufferSize,
	}

	if v, ok := intSetting(settings, "baud_rate"); ok {
		serialConfig.BaudRate = v
	}
	if v, ok := intSetting(settings, "data_bits"); ok {
		serialConfig.DataBits = v
	}
	if v, ok := intSetting(settings, "stop_bits"); ok {
		serialConfig.StopBits = v
	}
	if parity, ok := settings["parity"].(string); ok {
		serialConfig.Parity = parity
	}
	if v, ok := durationSetting(settings, "poll_timeout"); ok {
		serialConfig.PollTimeout = v
	}
	if v, ok := intSetting(settings, "buffer_size"); ok {
		serialConfig.BufferSize = v
	}

	logger.Info("Creating serial transport",
		zap.String("port", serialConfig.Port),
		zap.Int("baud_rate", serialConfig.BaudRate),
	)

	return NewSerialConnection(serialConfig, logger)
}

// createUSBTransport creates a USB transport. The defaults address the
// Teensy 4.1 USB serial data interface.
func createUSBTransport(settings map[string]interface{}, logger *zap.Logger) Transport {
	usbConfig := &USBConfig{
		VendorID:    DefaultVendorID,
		ProductID:   DefaultProductID,
		Config:      1,
		Interface:   1,
		OutEndpoint: 3,
		InEndpoint:  4,
		PollTimeout: DefaultPollTimeout,
		BufferSize:  DefaultReadBufferSize,
	}

	if vendorID, ok := settings["vendor_id"].(string); ok && vendorID != "" {
		usbConfig.VendorID = vendorID
	}
	if productID, ok := settings["product_id"].(string); ok && productID != "" {
		usbConfig.ProductID = productID
	}
	if serialNumber, ok := settings["serial_number"].(string); ok {
		usbConfig.SerialNumber = serialNumber
	}
	if v, ok := intSetting(settings, "config"); ok {
		usbConfig.Config = v
	}
	if v, ok := intSetting(settings, "interface"); ok {
		usbConfig.Interface = v
	}
	if v, ok := intSetting(settings, "out_endpoint"); ok {
		usbConfig.OutEndpoint = v
	}
	if v, ok := intSetting(settings, "in_endpoint"); ok {
		usbConfig.InEndpoint = v
	}
	if v, ok := durationSetting(settings, "poll_timeout"); ok {
		usbConfig.PollTimeout = v
	}
	if v, ok := intSetting(settings, "buffer_size"); ok {
		usbConfig.BufferSize = v
	}

	logger.Info("Creating USB transport",
		zap.String("vendor_id", usbConfig.VendorID),
		zap.String("product_id", usbConfig.ProductID),
		zap.Int("interface", usbConfig.Interface),
	)

	return NewUSBConnection(usbConfig, logger)
}

// createTCPTransport creates a TCP transport
func createTCPTransport(settings map[string]interface{}, logger *zap.Logger) Transport {
	tcpConfig := &TCPConfig{
		Host:         settings["host"].(string),
		Port:         2000, // ser2net's conventional first port
		KeepAlive:    true,
		BufferSize:   DefaultReadBufferSize,
		Timeout:      10 * time.Second,
		PollTimeout:  DefaultPollTimeout,
		WriteTimeout: 5 * time.Second,
	}

	if v, ok := intSetting(settings, "port"); ok {
		tcpConfig.Port = v
	}
	if keepAlive, ok := settings["keep_alive"].(bool); ok {
		tcpConfig.KeepAlive = keepAlive
	}
	if v, ok := intSetting(settings, "buffer_size"); ok {
		tcpConfig.BufferSize = v
	}
	if v, ok := durationSetting(settings, "timeout"); ok {
		tcpConfig.Timeout = v
	}
	if v, ok := durationSetting(settings, "poll_timeout"); ok {
		tcpConfig.PollTimeout = v
	}
	if v, ok := durationSetting(settings, "write_timeout"); ok {
		tcpConfig.WriteTimeout = v
	}

	logger.Info("Creating TCP transport",
		zap.String("host", tcpConfig.Host),
		zap.Int("port", tcpConfig.Port),
	)

	return NewTCPConnection(tcpConfig, logger)
}

// ValidateConfig validates settings for a specific transport type
func ValidateConfig(transportType TransportType, settings map[string]interface{}) error {
	switch transportType {
	case TransportSerial:
		return validateSerialConfig(settings)
	case TransportUSB:
		return validateUSBConfig(settings)
	case TransportTCP:
		return validateTCPConfig(settings)
	case TransportLoopback:
		return nil
	default:
		return fmt.Errorf("unsupported transport type: %s", transportType)
	}
}

// validateSerialConfig validates serial configuration
func validateSerialConfig(settings map[string]interface{}) error {
	if port, ok := settings["port"].(string); !ok || port == "" {
		return fmt.Errorf("serial port is required")
	}

	if _, present := settings["baud_rate"]; present {
		rate, ok := intSetting(settings, "baud_rate")
		if !ok {
			return fmt.Errorf("invalid baud_rate type")
		}

		validRates := []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}
		for _, validRate := range validRates {
			if rate == validRate {
				return nil
			}
		}
		return fmt.Errorf("invalid baud rate: %d", rate)
	}

	return nil
}

// validateUSBConfig validates USB configuration
func validateUSBConfig(settings map[string]interface{}) error {
	for _, key := range []string{"vendor_id", "product_id"} {
		value, ok := settings[key].(string)
		if !ok || value == "" {
			continue
		}
		if _, err := ParseHexID(value); err != nil {
			return fmt.Errorf("invalid USB %s %q: %w", key, value, err)
		}
	}

	return nil
}

// validateTCPConfig validates TCP configuration
func validateTCPConfig(settings map[string]interface{}) error {
	if host, ok := settings["host"].(string); !ok || host == "" {
		return fmt.Errorf("TCP host is required")
	}

	if _, present := settings["port"]; present {
		portNum, ok := intSetting(settings, "port")
		if !ok {
			return fmt.Errorf("invalid port type")
		}
		if portNum < 1 || portNum > 65535 {
			return fmt.Errorf("invalid port number: %d", portNum)
		}
	}

	return nil
}

// intSetting accepts JSON numbers (float64) as well as Go ints
func intSetting(settings map[string]interface{}, key string) (int, bool) {
	switch v := settings[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

// durationSetting accepts "250ms" strings and time.Duration values
func durationSetting(settings map[string]interface{}, key string) (time.Duration, bool) {
	switch v := settings[key].(type) {
	case string:
		dur, err := time.ParseDuration(v)
		return dur, err == nil
	case time.Duration:
		return v, true
	default:
		return 0, false
	}
}
