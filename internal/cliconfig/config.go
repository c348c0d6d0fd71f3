// Package cliconfig holds the CLI-facing configuration for mailbuf:
// defaults, validation, TOML file loading, environment overlay and the
// flag-precedence rules that tie them together.
package cliconfig

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds CLI configuration for mailbuf.
type Config struct {
	FromAddr string
	ToAddrs  []string
	Subject  string

	Host     string
	UseTLS   bool
	Username string
	Password string

	PollInterval    time.Duration
	SendInterval    time.Duration
	PollDurationMax time.Duration

	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Subject:         "mailbuf digest",
		PollInterval:    5 * time.Second,
		SendInterval:    2 * time.Minute,
		PollDurationMax: 10 * time.Second,
		Password:        os.Getenv("MAILBUF_PASSWORD"),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.FromAddr == "" {
		return fmt.Errorf("from address is required")
	}
	if len(c.ToAddrs) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.SendInterval <= 0 {
		return fmt.Errorf("send interval must be positive")
	}
	if c.PollDurationMax <= 0 {
		return fmt.Errorf("poll duration max must be positive")
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't
// been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a string slice if non-empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setStringsFromCSV splits a comma-separated string and sets the
// destination. Used for environment variables.
func (s *configSetter) setStringsFromCSV(flag, value string, dst *[]string) {
	if value == "" || s.changed[flag] {
		return
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}

// setDuration parses and sets a duration from string if valid and flag
// not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
