package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Transports accepted by Config.Transport.
const (
	TransportLog  = "log"
	TransportHTTP = "http"
	TransportNATS = "nats"
)

// Config holds all configurable reelwatch settings.
type Config struct {
	APIBaseURL  string `json:"api_base_url"`
	APIToken    string `json:"api_token"`
	Transport   string `json:"transport"` // "log" | "http" | "nats"
	NATSURL     string `json:"nats_url"`
	NATSSubject string `json:"nats_subject"`

	TrackingEnabled       *bool `json:"tracking_enabled"`
	ReportIntervalSeconds int   `json:"report_interval_seconds"`
	FlushThresholdSeconds int   `json:"flush_threshold_seconds"`
	ReportTimeoutSeconds  int   `json:"report_timeout_seconds"`

	UserID   string `json:"user_id"`
	LogLevel string `json:"log_level"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	enabled := true
	return Config{
		Transport:             TransportLog,
		NATSSubject:           "watch.reported",
		TrackingEnabled:       &enabled,
		ReportIntervalSeconds: 5,
		FlushThresholdSeconds: 5,
		ReportTimeoutSeconds:  10,
		LogLevel:              "info",
	}
}

// Enabled reports whether watch tracking is switched on.
func (c Config) Enabled() bool {
	return c.TrackingEnabled == nil || *c.TrackingEnabled
}

func (c Config) ReportInterval() time.Duration {
	return time.Duration(c.ReportIntervalSeconds) * time.Second
}

func (c Config) FlushThreshold() time.Duration {
	return time.Duration(c.FlushThresholdSeconds) * time.Second
}

func (c Config) ReportTimeout() time.Duration {
	return time.Duration(c.ReportTimeoutSeconds) * time.Second
}

// LoadGlobal reads ~/.config/reelwatch/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "reelwatch", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .reelwatchconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".reelwatchconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	apply(&result, global)
	apply(&result, project)
	return result
}

// apply copies every set field of src over dst.
func apply(dst, src *Config) {
	if src == nil {
		return
	}
	if src.APIBaseURL != "" {
		dst.APIBaseURL = src.APIBaseURL
	}
	if src.APIToken != "" {
		dst.APIToken = src.APIToken
	}
	if src.Transport != "" {
		dst.Transport = src.Transport
	}
	if src.NATSURL != "" {
		dst.NATSURL = src.NATSURL
	}
	if src.NATSSubject != "" {
		dst.NATSSubject = src.NATSSubject
	}
	if src.TrackingEnabled != nil {
		v := *src.TrackingEnabled
		dst.TrackingEnabled = &v
	}
	if src.ReportIntervalSeconds > 0 {
		dst.ReportIntervalSeconds = src.ReportIntervalSeconds
	}
	if src.FlushThresholdSeconds > 0 {
		dst.FlushThresholdSeconds = src.FlushThresholdSeconds
	}
	if src.ReportTimeoutSeconds > 0 {
		dst.ReportTimeoutSeconds = src.ReportTimeoutSeconds
	}
	if src.UserID != "" {
		dst.UserID = src.UserID
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

// ApplyEnv overrides secrets and the log level from the environment.
func ApplyEnv(c *Config) {
	if v := strings.TrimSpace(os.Getenv("REELWATCH_API_TOKEN")); v != "" {
		c.APIToken = v
	}
	if v := strings.TrimSpace(os.Getenv("REELWATCH_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
}

// Validate rejects configurations the reporter cannot be built from.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportLog:
	case TransportHTTP:
		if c.APIBaseURL == "" {
			return errors.New("transport http requires api_base_url")
		}
	case TransportNATS:
	default:
		return fmt.Errorf("unknown transport %q (want log, http or nats)", c.Transport)
	}
	return nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
