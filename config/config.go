package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where LoadConfig looks when no path is given.
const DefaultPath = "config.toml"

// InterfaceConfig describes how to reach the XBee coordinator
type InterfaceConfig struct {
	// Device is a serial port (/dev/ttyUSB0, COM3) or host:port of a
	// serial-to-TCP bridge.
	Device      string        `toml:"device"`
	Baud        int           `toml:"baud"`
	ReadTimeout time.Duration `toml:"read_timeout"`
	DialTimeout time.Duration `toml:"dial_timeout"`
	ReadBuffer  int           `toml:"read_buffer"`
}

// IsTCP reports whether Device names a network address.
func (c InterfaceConfig) IsTCP() bool {
	return strings.Contains(c.Device, ":")
}

// FramerConfig toggles behaviour beyond plain API framing
type FramerConfig struct {
	VerifyChecksum bool `toml:"verify_checksum"`
	MaxPayload     int  `toml:"max_payload"`
}

// FileConfig holds rolling log file settings
type FileConfig struct {
	Filename   string `toml:"filename"`
	MaxSizeMB  int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age"`
	Compress   bool   `toml:"compress"`
}

// LoggingConfig holds log level and output settings
type LoggingConfig struct {
	Level  string     `toml:"level"`
	Format string     `toml:"format"` // json or console
	File   FileConfig `toml:"file"`
}

// HTTPConfig holds the status/metrics server settings
type HTTPConfig struct {
	Enabled      bool          `toml:"enabled"`
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	MetricsPath  string        `toml:"metrics_path"`
}

// RedisConfig holds the pub/sub publisher settings
type RedisConfig struct {
	Enabled       bool          `toml:"enabled"`
	Addr          string        `toml:"addr"`
	Password      string        `toml:"password"`
	DB            int           `toml:"db"`
	ChannelPrefix string        `toml:"channel_prefix"`
	DialTimeout   time.Duration `toml:"dial_timeout"`
	WriteTimeout  time.Duration `toml:"write_timeout"`
}

// UIConfig holds terminal UI settings
type UIConfig struct {
	Enabled   bool `toml:"enabled"`
	MaxEvents int  `toml:"max_events"`
}

// Config holds all application configuration
type Config struct {
	Interface InterfaceConfig `toml:"interface"`
	Framer    FramerConfig    `toml:"framer"`
	Logging   LoggingConfig   `toml:"logging"`
	HTTP      HTTPConfig      `toml:"http"`
	Redis     RedisConfig     `toml:"redis"`
	UI        UIConfig        `toml:"ui"`
}

// Default returns the configuration used for anything config.toml leaves out.
func Default() Config {
	return Config{
		Interface: InterfaceConfig{
			Baud:        9600,
			ReadTimeout: time.Second,
			DialTimeout: 10 * time.Second,
			ReadBuffer:  256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File: FileConfig{
				Filename:   "logs/tweetawatt.log",
				MaxSizeMB:  50,
				MaxBackups: 5,
				MaxAgeDays: 30,
			},
		},
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			MetricsPath:  "/metrics",
		},
		Redis: RedisConfig{
			Addr:          "localhost:6379",
			ChannelPrefix: "tweetawatt",
			DialTimeout:   5 * time.Second,
			WriteTimeout:  3 * time.Second,
		},
		UI: UIConfig{
			Enabled:   true,
			MaxEvents: 50,
		},
	}
}

// LoadConfig reads the configuration from path on top of Default.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}
	conf := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}

	if err := toml.Unmarshal(data, &conf); err != nil {
		return conf, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := conf.Validate(); err != nil {
		return conf, fmt.Errorf("%s: %w", path, err)
	}
	return conf, nil
}

// Validate checks settings that would otherwise fail later at connect time.
func (c Config) Validate() error {
	var errs []error
	if c.Interface.Device == "" {
		errs = append(errs, errors.New("interface.device is required (e.g. /dev/ttyUSB0, COM3 or host:port)"))
	}
	if !c.Interface.IsTCP() && c.Interface.Baud <= 0 {
		errs = append(errs, fmt.Errorf("interface.baud must be positive, got %d", c.Interface.Baud))
	}
	if c.Interface.ReadBuffer <= 0 {
		errs = append(errs, fmt.Errorf("interface.read_buffer must be positive, got %d", c.Interface.ReadBuffer))
	}
	if c.Framer.MaxPayload < 0 {
		errs = append(errs, fmt.Errorf("framer.max_payload must not be negative, got %d", c.Framer.MaxPayload))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}
	return errors.Join(errs...)
}
