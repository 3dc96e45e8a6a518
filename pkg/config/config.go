// Package config loads countdown command configuration from YAML.
//
// Example file:
//
//	countdown:
//	  start: 60
//	  interval: 1s
//	event_log: /var/log/countdown/events.clog
//	event_log_kinds: [start, stop, error]
//	state: ~/.countdown/state.json
//	history: ~/.countdown/history.db
//	metrics_addr: ":9090"
//	http_addr: ":8080"
//	log_level: info
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/countdown-go/countdown/pkg/countdown"
	"github.com/countdown-go/countdown/pkg/log"
)

// Configuration errors.
var (
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidAddress  = errors.New("invalid listen address")
)

// Countdown holds the countdown settings.
type Countdown struct {
	Start    int           `yaml:"start"`
	Interval time.Duration `yaml:"interval"`
}

// Config is the command configuration.
type Config struct {
	Countdown Countdown `yaml:"countdown"`

	// EventLog is the .clog file receiving countdown events. Empty disables it.
	EventLog string `yaml:"event_log"`

	// EventLogKinds limits the event log to these kinds (start, tick, stop,
	// set, error). Empty records every kind.
	EventLogKinds []string `yaml:"event_log_kinds"`

	// State is the JSON snapshot file. Empty disables it.
	State string `yaml:"state"`

	// History is the SQLite run history database. Empty disables it.
	History string `yaml:"history"`

	// MetricsAddr serves /metrics when set.
	MetricsAddr string `yaml:"metrics_addr"`

	// HTTPAddr serves the HTTP API when set.
	HTTPAddr string `yaml:"http_addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Countdown: Countdown{
			Start:    countdown.DefaultStart,
			Interval: countdown.DefaultInterval,
		},
		LogLevel: "info",
	}
}

// Parse parses YAML bytes over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// CountdownConfig returns the countdown.Config for the file settings.
// Clock, logger and hooks are left for the caller.
func (c *Config) CountdownConfig() countdown.Config {
	cfg := countdown.DefaultConfig()
	cfg.Start = c.Countdown.Start
	cfg.Interval = c.Countdown.Interval
	return cfg
}

// EventLogOptions returns the file logger options for the event log.
func (c *Config) EventLogOptions() ([]log.FileLoggerOption, error) {
	opts := []log.FileLoggerOption{log.WithSyncOnStop()}
	if len(c.EventLogKinds) == 0 {
		return opts, nil
	}

	kinds := make([]log.Kind, 0, len(c.EventLogKinds))
	for _, name := range c.EventLogKinds {
		k, err := log.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("event_log_kinds: %w", err)
		}
		kinds = append(kinds, k)
	}
	return append(opts, log.WithKinds(kinds...)), nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.CountdownConfig().Validate(); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.EventLogOptions(); err != nil {
		return err
	}
	for _, addr := range []string{c.MetricsAddr, c.HTTPAddr} {
		if addr != "" && !strings.Contains(addr, ":") {
			return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
		}
	}
	if c.MetricsAddr != "" && c.MetricsAddr == c.HTTPAddr {
		return fmt.Errorf("%w: metrics and HTTP API share %q", ErrInvalidAddress, c.MetricsAddr)
	}
	return nil
}
