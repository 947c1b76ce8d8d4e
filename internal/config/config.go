// Package config loads tcpwatch settings from defaults, an optional YAML
// file and TCPWATCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MinInterval is the shortest interval accepted between probes.
const MinInterval = 2 * time.Millisecond

const envPrefix = "TCPWATCH"

// Output formats.
const (
	FormatColor = "color"
	FormatPlain = "plain"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var (
	ErrMissingHost       = errors.New("no target host given")
	ErrInvalidPort       = errors.New("port should be in 1..65535 range")
	ErrInvalidTimeout    = errors.New("timeout must not be negative")
	ErrInvalidInterval   = errors.New("wait interval should be more than 2 ms")
	ErrIPVersionConflict = errors.New("only one IP version can be specified")
	ErrInvalidOutput     = errors.New("unknown output format")
)

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type OutputConfig struct {
	Format        string `mapstructure:"format"`
	Pretty        bool   `mapstructure:"pretty"`
	Timestamp     bool   `mapstructure:"timestamp"`
	SourceAddress bool   `mapstructure:"source_address"`
	FailuresOnly  bool   `mapstructure:"failures_only"`
	DBPath        string `mapstructure:"db_path"`
}

type Config struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	Interval       time.Duration `mapstructure:"interval"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Count          uint          `mapstructure:"count"`
	IPv4           bool          `mapstructure:"ipv4"`
	IPv6           bool          `mapstructure:"ipv6"`
	Interface      string        `mapstructure:"interface"`
	MetricsAddr    string        `mapstructure:"metrics_addr"`
	NonInteractive bool          `mapstructure:"non_interactive"`

	Output OutputConfig  `mapstructure:"output"`
	Log    LoggingConfig `mapstructure:"log"`
}

// Load reads the configuration. An empty path skips the file and uses
// defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()

	// env overrides: TCPWATCH_INTERVAL, TCPWATCH_LOG_LEVEL etc.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Every key needs a default, otherwise AutomaticEnv cannot see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "")
	v.SetDefault("port", "")
	v.SetDefault("interval", time.Second)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("count", 0)
	v.SetDefault("ipv4", false)
	v.SetDefault("ipv6", false)
	v.SetDefault("interface", "")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("non_interactive", false)

	v.SetDefault("output.format", FormatColor)
	v.SetDefault("output.pretty", false)
	v.SetDefault("output.timestamp", false)
	v.SetDefault("output.source_address", false)
	v.SetDefault("output.failures_only", false)
	v.SetDefault("output.db_path", "")

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Validate checks the settings the probe engine depends on.
func (c *Config) Validate() error {
	if c.Host == "" {
		return ErrMissingHost
	}

	if _, err := c.PortNumber(); err != nil {
		return err
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Timeout)
	}

	if c.Interval < MinInterval {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, c.Interval)
	}

	if c.IPv4 && c.IPv6 {
		return ErrIPVersionConflict
	}

	switch c.Output.Format {
	case FormatColor, FormatPlain, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutput, c.Output.Format)
	}

	return nil
}

// PortNumber parses Port.
func (c *Config) PortNumber() (uint16, error) {
	port, err := strconv.ParseUint(c.Port, 10, 16)
	if err != nil || port < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, c.Port)
	}
	return uint16(port), nil
}
