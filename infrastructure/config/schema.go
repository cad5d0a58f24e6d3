// Package config provides configuration loading and parsing for lindos.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Configuration errors.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidFormat     = errors.New("invalid config format")
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrValidationFailed  = errors.New("config validation failed")
	ErrMissingEnvVar     = errors.New("missing environment variable")
)

// Config is the root configuration for the lindos runtime.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	Engine     EngineConfig     `yaml:"engine" json:"engine"`
	Dispatcher DispatcherConfig `yaml:"dispatcher" json:"dispatcher"`
	Responder  ResponderConfig  `yaml:"responder" json:"responder"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum level emitted: trace, debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format" json:"format"`
	// Debug enables verbose boundary diagnostics at startup.
	Debug bool `yaml:"debug" json:"debug"`
}

// EngineConfig controls message validation and processing.
type EngineConfig struct {
	// MaxMessageChars is the character budget for a single message.
	MaxMessageChars int `yaml:"max_message_chars" json:"max_message_chars"`
	// MaxConcurrent bounds concurrent responder invocations.
	MaxConcurrent int `yaml:"max_concurrent" json:"max_concurrent"`
	// RetryEnabled retries transient responder failures.
	RetryEnabled bool `yaml:"retry_enabled" json:"retry_enabled"`
	// RetryAttempts is the maximum attempt count when retrying.
	RetryAttempts int `yaml:"retry_attempts" json:"retry_attempts"`
}

// DispatcherConfig controls interaction timings.
type DispatcherConfig struct {
	// DebounceMS is the quiet window for live draft validation.
	DebounceMS int `yaml:"debounce_ms" json:"debounce_ms"`
	// ErrorTimeoutMS is how long an error stays visible.
	ErrorTimeoutMS int `yaml:"error_timeout_ms" json:"error_timeout_ms"`
}

// ResponderConfig controls the built-in echo responder.
type ResponderConfig struct {
	Prefix string `yaml:"prefix" json:"prefix"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Engine: EngineConfig{
			MaxMessageChars: 1000,
			MaxConcurrent:   32,
			RetryEnabled:    true,
			RetryAttempts:   3,
		},
		Dispatcher: DispatcherConfig{
			DebounceMS:     300,
			ErrorTimeoutMS: 5000,
		},
		Responder: ResponderConfig{
			Prefix: "You said: ",
		},
	}
}

// Debounce returns the draft quiet window as a duration.
func (c DispatcherConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// ErrorTimeout returns the error visibility window as a duration.
func (c DispatcherConfig) ErrorTimeout() time.Duration {
	return time.Duration(c.ErrorTimeoutMS) * time.Millisecond
}

// Validate checks the configuration for values the runtime cannot honor.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrValidationFailed, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrValidationFailed, c.Logging.Format)
	}
	if c.Engine.MaxMessageChars < 0 {
		return fmt.Errorf("%w: max_message_chars must not be negative", ErrValidationFailed)
	}
	if c.Engine.MaxConcurrent < 0 {
		return fmt.Errorf("%w: max_concurrent must not be negative", ErrValidationFailed)
	}
	if c.Engine.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry_attempts must not be negative", ErrValidationFailed)
	}
	if c.Dispatcher.DebounceMS < 0 {
		return fmt.Errorf("%w: debounce_ms must not be negative", ErrValidationFailed)
	}
	if c.Dispatcher.ErrorTimeoutMS < 0 {
		return fmt.Errorf("%w: error_timeout_ms must not be negative", ErrValidationFailed)
	}
	return nil
}
