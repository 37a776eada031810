// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents the service configuration that can be loaded from a JSON
// file, environment variables, or CLI flags. All fields are optional; missing
// values use defaults.
type Config struct {
	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Backends
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty keeps everything in memory
	RedisAddr   string `json:"redis_addr,omitempty"`   // Redis address for the enrichment cache; empty uses in-process cache

	// Content providers
	GeminiAPIKey  string `json:"gemini_api_key,omitempty"`
	OpenAIAPIKey  string `json:"openai_api_key,omitempty"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`

	// Enrichment providers
	PlacesBaseURL  string `json:"places_base_url,omitempty"`
	PlacesAPIKey   string `json:"places_api_key,omitempty"`
	EventsBaseURL  string `json:"events_base_url,omitempty"`
	WeatherBaseURL string `json:"weather_base_url,omitempty"`

	// Timing; Go duration strings, e.g. "15m"
	CacheTTL        string `json:"cache_ttl,omitempty"`
	StageTimeout    string `json:"stage_timeout,omitempty"`
	PipelineTimeout string `json:"pipeline_timeout,omitempty"`
}

// Defaults are applied by MergeWithDefaults when nothing else set a value.
func Defaults() Config {
	return Config{
		Port:     8080,
		CacheTTL: "15m",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Load a .env file
// first (the CLI does) and these pick the values up.
func FromEnv() Config {
	cfg := Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		PlacesBaseURL:   os.Getenv("PLACES_BASE_URL"),
		PlacesAPIKey:    os.Getenv("PLACES_API_KEY"),
		EventsBaseURL:   os.Getenv("EVENTS_BASE_URL"),
		WeatherBaseURL:  os.Getenv("WEATHER_BASE_URL"),
		CacheTTL:        os.Getenv("CACHE_TTL"),
		StageTimeout:    os.Getenv("STAGE_TIMEOUT"),
		PipelineTimeout: os.Getenv("PIPELINE_TIMEOUT"),
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	return cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	for name, value := range map[string]string{
		"cache_ttl":        c.CacheTTL,
		"stage_timeout":    c.StageTimeout,
		"pipeline_timeout": c.PipelineTimeout,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("config error: '%s' is not a valid duration: %s", name, value)
		}
	}

	return nil
}

// Duration parses one of the duration fields, falling back to def when the
// field is empty. Call Validate first; malformed values fail there.
func Duration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}
	if result.OpenAIBaseURL == "" {
		result.OpenAIBaseURL = defaults.OpenAIBaseURL
	}
	if result.PlacesBaseURL == "" {
		result.PlacesBaseURL = defaults.PlacesBaseURL
	}
	if result.PlacesAPIKey == "" {
		result.PlacesAPIKey = defaults.PlacesAPIKey
	}
	if result.EventsBaseURL == "" {
		result.EventsBaseURL = defaults.EventsBaseURL
	}
	if result.WeatherBaseURL == "" {
		result.WeatherBaseURL = defaults.WeatherBaseURL
	}
	if result.CacheTTL == "" {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.StageTimeout == "" {
		result.StageTimeout = defaults.StageTimeout
	}
	if result.PipelineTimeout == "" {
		result.PipelineTimeout = defaults.PipelineTimeout
	}

	return result
}
