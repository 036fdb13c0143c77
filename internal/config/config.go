package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-clock/internal/domain/clock"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/mailbox"
	"github.com/oshokin/alarm-clock/internal/tick"
)

// Config holds the settings shared by the alarm-clock binaries.
type Config struct {
	// TickPeriod is the length of one clock second.
	TickPeriod time.Duration `yaml:"tick_period"`
	// QueueCapacity bounds the mailbox between the stages and the printer.
	QueueCapacity int `yaml:"queue_capacity"`
	// Alarm is the time at which the alarm goes off.
	Alarm clock.Time `yaml:"alarm"`
	// Start is the time the clock shows after start-up.
	Start clock.Time `yaml:"start"`
	// LogLevel is the diagnostics level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// StatusAddress is the gRPC status listener; empty disables it.
	StatusAddress string `yaml:"status_addr"`
	// MetricsAddress is the Prometheus listener; empty disables it.
	MetricsAddress string `yaml:"metrics_addr"`
	// Timeout is the per-call timeout of status clients.
	Timeout time.Duration `yaml:"timeout"`
	// SingleInstance refuses to start when another alarm-clock process runs.
	SingleInstance bool `yaml:"single_instance"`
	// StateFile keeps the last shown time across restarts; empty disables it.
	StateFile string `yaml:"state_file,omitempty"`
	// AlarmCommand is started on every alarm; empty disables it.
	AlarmCommand []string `yaml:"alarm_command,omitempty"`
	// Output selects the device the clock prints to.
	Output Output `yaml:"output"`
}

// Output describes the shared output device.
type Output struct {
	// Device is a serial port path; empty means stdout.
	Device string `yaml:"device,omitempty"`
	// BaudRate is the serial line speed.
	BaudRate int `yaml:"baud_rate,omitempty"`
	// Color highlights the alarm line on terminals.
	Color bool `yaml:"color"`
}

const (
	// DefaultConfigFilename is the default filename for clock settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultTimeout is the default duration for status calls.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidTickPeriod is returned for a negative tick period.
	errInvalidTickPeriod = errors.New("tick period must not be negative")
	// errInvalidQueueCapacity is returned for a negative queue capacity.
	errInvalidQueueCapacity = errors.New("queue capacity must not be negative")
	// errInvalidLogLevel is returned for an unknown log level.
	errInvalidLogLevel = errors.New("unknown log level")
)

// Default returns the reference clock settings: one-second ticks, a three-slot
// queue and an alarm at 0:01:30.
func Default() *Config {
	return &Config{
		TickPeriod:     tick.DefaultPeriod,
		QueueCapacity:  mailbox.DefaultCapacity,
		Alarm:          clock.Time{Hour: 0, Minute: 1, Second: 30},
		LogLevel:       "info",
		Timeout:        DefaultTimeout,
		SingleInstance: true,
	}
}

// Load reads configuration from the provided path and validates it.
// Fields missing from the file keep their Default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills zero values with defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	switch {
	case settings.TickPeriod < 0:
		return fmt.Errorf("%w: %s", errInvalidTickPeriod, settings.TickPeriod)
	case settings.TickPeriod == 0:
		settings.TickPeriod = tick.DefaultPeriod
	}

	switch {
	case settings.QueueCapacity < 0:
		return fmt.Errorf("%w: %d", errInvalidQueueCapacity, settings.QueueCapacity)
	case settings.QueueCapacity == 0:
		settings.QueueCapacity = mailbox.DefaultCapacity
	}

	if err := settings.Alarm.Validate(); err != nil {
		return fmt.Errorf("alarm: %w", err)
	}

	if err := settings.Start.Validate(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, settings.LogLevel)
	}

	// Set default timeout if not specified
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	for name, address := range map[string]string{
		"status":  settings.StatusAddress,
		"metrics": settings.MetricsAddress,
	} {
		if address == "" {
			continue
		}

		if _, _, err := net.SplitHostPort(address); err != nil {
			return fmt.Errorf("invalid %s address %q: %w", name, address, err)
		}
	}

	return nil
}
