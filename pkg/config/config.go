// Package config loads client configuration from the environment into an
// explicit, statically declared struct with typed defaults, validated
// eagerly so a missing required field fails at startup.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the application configuration. Every field maps to one WW_*
// environment variable (WW_ENVIRONMENT, WW_PUBLIC_API_KEY, ...).
type Config struct {
	// Environment selects the API deployment: production, prod or staging.
	Environment string `mapstructure:"environment" validate:"required"`

	// PublicAPIKey is the bearer token for the public device/energy API.
	PublicAPIKey string `mapstructure:"public_api_key" validate:"required"`

	// OpsAPIKey is the bearer token for the ops API. Optional; ops commands
	// fail fast when it is missing.
	OpsAPIKey string `mapstructure:"ops_api_key"`

	// MaxRequestsPerSecond caps the outgoing request rate per client.
	MaxRequestsPerSecond int `mapstructure:"max_requests_per_second" validate:"gt=0"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogPretty enables human-readable console logs instead of JSON.
	LogPretty bool `mapstructure:"log_pretty"`
}

// keys lists every configuration key so each can be bound to its
// environment variable explicitly.
var keys = []string{
	"environment",
	"public_api_key",
	"ops_api_key",
	"max_requests_per_second",
	"log_level",
	"log_pretty",
}

// Load reads configuration from WW_-prefixed environment variables, applies
// defaults, and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", "production")
	v.SetDefault("max_requests_per_second", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)

	// AutomaticEnv does not surface env-only keys to Unmarshal; bind each
	// key explicitly.
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
