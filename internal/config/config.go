// Package config loads process configuration from environment variables.
//
// Configuration is read once at startup and treated as read-only afterwards.
package config

import (
	"log/slog"
	"os"
	"strconv"
)

// Config holds all environment-derived settings for mailbridge.
type Config struct {
	// LLM completion endpoint (OpenAI-compatible)
	LLMModelID string
	LLMBaseURL string
	LLMAPIKey  string

	// Composio connector platform
	ComposioAPIKey  string
	ComposioBaseURL string

	// HTTP chat server
	Port string

	// Identity token for the CLI chat loop (optional)
	IdentityToken string

	// Metrics
	MetricsEnabled bool
}

// FromEnv builds a Config from the process environment.
func FromEnv() *Config {
	return &Config{
		LLMModelID:      EnvOr("LLM_MODEL_ID", "gpt-4o-mini"),
		LLMBaseURL:      os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:       EnvOr("LLM_API_KEY", "no-need"),
		ComposioAPIKey:  os.Getenv("COMPOSIO_API_KEY"),
		ComposioBaseURL: EnvOr("COMPOSIO_BASE_URL", "https://backend.composio.dev"),
		Port:            EnvOr("PORT", "80"),
		IdentityToken:   os.Getenv("IDENTITY_TOKEN"),
		MetricsEnabled:  os.Getenv("METRICS_ENABLED") == "true",
	}
}

// EnvOr returns the environment variable value or a fallback default.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvOrInt returns an integer environment variable or a fallback default.
// Logs a warning if the value is set but not parseable.
func EnvOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer env var, using fallback", "key", key, "value", v, "fallback", fallback)
		return fallback
	}
	return n
}
