// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the client configuration.
type Config struct {
	Serial    SerialConfig    `mapstructure:"serial"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SerialConfig represents the transport settings for device links.
type SerialConfig struct {
	BaudRate     int           `mapstructure:"baud_rate"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteSpacing time.Duration `mapstructure:"write_spacing"`
	ResetDelay   time.Duration `mapstructure:"reset_delay"`
}

// DiscoveryConfig represents the device discovery settings.
type DiscoveryConfig struct {
	TryPorts []string `mapstructure:"try_ports"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Load loads configuration from an optional file and environment
// variables. A missing config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.remote-client")
	}

	// Environment variable support
	v.SetEnvPrefix("REMOTE_CLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// A missing file only falls back to defaults; anything else is fatal.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
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

// Default returns the built-in configuration without consulting any file
// or the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// Defaults always decode; the error path is unreachable.
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Serial defaults match the firmware's stock UART configuration. The
	// reset delay covers boards that reboot when the port is opened.
	v.SetDefault("serial.baud_rate", 9600)
	v.SetDefault("serial.read_timeout", "50ms")
	v.SetDefault("serial.write_spacing", "50ms")
	v.SetDefault("serial.reset_delay", "2s")

	v.SetDefault("discovery.try_ports", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)
}

// validate validates the configuration.
func validate(config *Config) error {
	if config.Serial.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be positive")
	}
	if config.Serial.ReadTimeout < 0 {
		return fmt.Errorf("serial.read_timeout must not be negative")
	}
	if config.Serial.WriteSpacing < 0 {
		return fmt.Errorf("serial.write_spacing must not be negative")
	}
	if config.Serial.ResetDelay < 0 {
		return fmt.Errorf("serial.reset_delay must not be negative")
	}

	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	isValidLevel := false
	for _, level := range validLevels {
		if config.Logging.Level == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	validFormats := []string{"json", "console"}
	isValidFormat := false
	for _, format := range validFormats {
		if config.Logging.Format == format {
			isValidFormat = true
			break
		}
	}
	if !isValidFormat {
		return fmt.Errorf("logging.format must be one of: %v", validFormats)
	}

	return nil
}
