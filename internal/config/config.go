// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Device   DeviceConfig   `mapstructure:"device"`
	App      AppConfig      `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLS          TLSConfig     `mapstructure:"tls"`
}

// TLSConfig represents TLS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// DatabaseConfig represents the program library database. The service
// runs without it when disabled.
type DatabaseConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	DBName         string        `mapstructure:"dbname"`
	SSLMode        string        `mapstructure:"sslmode"`
	MaxOpenConns   int           `mapstructure:"max_open_conns"`
	MaxIdleConns   int           `mapstructure:"max_idle_conns"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	MigrationsPath string        `mapstructure:"migrations_path"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// DeviceConfig describes how the stimulator is reached and polled
type DeviceConfig struct {
	Transport      string        `mapstructure:"transport"`
	Port           string        `mapstructure:"port"`
	BaudRate       int           `mapstructure:"baud_rate"`
	DataBits       int           `mapstructure:"data_bits"`
	StopBits       int           `mapstructure:"stop_bits"`
	Parity         string        `mapstructure:"parity"`
	PollTimeout    time.Duration `mapstructure:"poll_timeout"`
	VendorID       string        `mapstructure:"vendor_id"`
	ProductID      string        `mapstructure:"product_id"`
	SerialNumber   string        `mapstructure:"serial_number"`
	USB            USBConfig     `mapstructure:"usb"`
	TCP            TCPConfig     `mapstructure:"tcp"`
	AutoConnect    bool          `mapstructure:"auto_connect"`
	ReadInterval   time.Duration `mapstructure:"read_interval"`
	ReadBufferSize int           `mapstructure:"read_buffer_size"`
	SerialLogPath  string        `mapstructure:"serial_log_path"`
	HistorySize    int           `mapstructure:"history_size"`
}

// USBConfig addresses the CDC data interface for direct libusb access
type USBConfig struct {
	Config      int `mapstructure:"config"`
	Interface   int `mapstructure:"interface"`
	OutEndpoint int `mapstructure:"out_endpoint"`
	InEndpoint  int `mapstructure:"in_endpoint"`
}

// TCPConfig addresses a serial-over-network bridge
type TCPConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Endpoints    []string      `mapstructure:"endpoints"`
	Timeout      time.Duration `mapstructure:"timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// Load reads configuration from path, or from config.yaml in the working
// directory or ./configs when path is empty. Environment variables prefixed
// STIMJIM_ override file values. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("STIMJIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8090")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.tls.enabled", false)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "stimjim")
	v.SetDefault("database.dbname", "stimjim")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "file://migrations")

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "logs/stimjim-service.log")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Device defaults (Teensy 4.1 USB serial)
	v.SetDefault("device.transport", "serial")
	v.SetDefault("device.port", "")
	v.SetDefault("device.baud_rate", 115200)
	v.SetDefault("device.data_bits", 8)
	v.SetDefault("device.stop_bits", 1)
	v.SetDefault("device.parity", "none")
	v.SetDefault("device.poll_timeout", "20ms")
	v.SetDefault("device.vendor_id", "16C0")
	v.SetDefault("device.product_id", "0483")
	v.SetDefault("device.usb.config", 1)
	v.SetDefault("device.usb.interface", 1)
	v.SetDefault("device.usb.out_endpoint", 3)
	v.SetDefault("device.usb.in_endpoint", 4)
	v.SetDefault("device.tcp.port", 2000)
	v.SetDefault("device.tcp.timeout", "10s")
	v.SetDefault("device.tcp.write_timeout", "5s")
	v.SetDefault("device.auto_connect", true)
	v.SetDefault("device.read_interval", "500ms")
	v.SetDefault("device.read_buffer_size", 4096)
	v.SetDefault("device.serial_log_path", "")
	v.SetDefault("device.history_size", 20)

	// App defaults
	v.SetDefault("app.name", "stimjim-service")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if config.Database.Enabled && config.Database.Host == "" {
		return fmt.Errorf("database.host is required when the database is enabled")
	}

	if !contains([]string{"development", "staging", "production", "test"}, config.App.Environment) {
		return fmt.Errorf("app.environment must be one of: development, staging, production, test")
	}

	if !contains([]string{"debug", "info", "warn", "error", "fatal"}, config.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, fatal")
	}

	if !contains([]string{"serial", "tcp", "usb", "loopback"}, config.Device.Transport) {
		return fmt.Errorf("device.transport must be one of: serial, tcp, usb, loopback")
	}
	if config.Device.ReadInterval <= 0 {
		return fmt.Errorf("device.read_interval must be positive")
	}
	if config.Device.HistorySize < 1 {
		return fmt.Errorf("device.history_size must be at least 1")
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// TransportSettings returns the settings map understood by the transport
// factory for the configured transport
func (d *DeviceConfig) TransportSettings() map[string]interface{} {
	switch d.Transport {
	case "serial":
		return map[string]interface{}{
			"port":         d.Port,
			"baud_rate":    d.BaudRate,
			"data_bits":    d.DataBits,
			"stop_bits":    d.StopBits,
			"parity":       d.Parity,
			"poll_timeout": d.PollTimeout,
			"buffer_size":  d.ReadBufferSize,
		}
	case "usb":
		return map[string]interface{}{
			"vendor_id":     d.VendorID,
			"product_id":    d.ProductID,
			"serial_number": d.SerialNumber,
			"config":        d.USB.Config,
			"interface":     d.USB.Interface,
			"out_endpoint":  d.USB.OutEndpoint,
			"in_endpoint":   d.USB.InEndpoint,
			"poll_timeout":  d.PollTimeout,
			"buffer_size":   d.ReadBufferSize,
		}
	case "tcp":
		return map[string]interface{}{
			"host":          d.TCP.Host,
			"port":          d.TCP.Port,
			"timeout":       d.TCP.Timeout,
			"write_timeout": d.TCP.WriteTimeout,
			"poll_timeout":  d.PollTimeout,
			"buffer_size":   d.ReadBufferSize,
		}
	default:
		return map[string]interface{}{}
	}
}

// DSN returns the lib/pq connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}
