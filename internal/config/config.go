// Package config loads the tracker daemon's settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the on-disk settings schema. All fields are optional pointers so
// a partial file is safe: the Get* methods fall back to defaults for any
// field the JSON omits.
type Config struct {
	// DeviceSerial is the preferred device's formatted identity string,
	// as produced by the enumerator. Empty means "first available".
	DeviceSerial *string `json:"device_serial,omitempty"`

	// PollHz is the sampling rate of the polling loop.
	PollHz *int `json:"poll_hz,omitempty"`

	// Listen is the HTTP listen address.
	Listen *string `json:"listen,omitempty"`

	// EventLogPath is the sqlite lifecycle event log location.
	EventLogPath *string `json:"event_log_path,omitempty"`
}

// Load reads and validates a config file. The file must have a .json
// extension and stay under the size cap.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.PollHz != nil && (*c.PollHz < 1 || *c.PollHz > 1000) {
		return fmt.Errorf("poll_hz must be between 1 and 1000, got %d", *c.PollHz)
	}
	if c.Listen != nil && *c.Listen == "" {
		return fmt.Errorf("listen must not be empty when set")
	}
	return nil
}

// GetDeviceSerial returns the preferred device identity, empty for "first
// available".
func (c *Config) GetDeviceSerial() string {
	if c.DeviceSerial == nil {
		return ""
	}
	return *c.DeviceSerial
}

// GetPollHz returns the polling rate or the default.
func (c *Config) GetPollHz() int {
	if c.PollHz == nil {
		return 120 // default: typical tracking frame rate
	}
	return *c.PollHz
}

// GetListen returns the HTTP listen address or the default.
func (c *Config) GetListen() string {
	if c.Listen == nil {
		return ":8080"
	}
	return *c.Listen
}

// GetEventLogPath returns the event log location or the default.
func (c *Config) GetEventLogPath() string {
	if c.EventLogPath == nil {
		return "headtrack.db"
	}
	return *c.EventLogPath
}
