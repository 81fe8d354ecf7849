package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Gate   GateConfig   `mapstructure:"gate"   validate:"required"`
	LLM    LLMConfig    `mapstructure:"llm"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// MaxUploadBytes bounds the size of multipart image uploads.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"required,gt=0"`
}

// GateConfig contains the task gate settings.
type GateConfig struct {
	// DefaultTimeoutMs is the per-run deadline applied when a request does
	// not supply one. Zero disables the deadline. The upper bound is the
	// largest millisecond count a time.Duration can hold.
	DefaultTimeoutMs int64 `mapstructure:"default_timeout_ms" validate:"gte=0,lte=9223372036854"`
}

// DefaultTimeout returns DefaultTimeoutMs as a duration. A disabled
// deadline is reported as a negative duration, which the gate treats as
// "no deadline".
func (c GateConfig) DefaultTimeout() time.Duration {
	if c.DefaultTimeoutMs == 0 {
		return -1
	}
	return time.Duration(c.DefaultTimeoutMs) * time.Millisecond
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name"     validate:"required"`

	// MaxRetries is the number of retries for transient API failures.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// RetryDelaySeconds is the initial backoff between retries.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
}
