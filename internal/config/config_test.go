package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"port": 9090,
		"database_url": "postgres://localhost/tripguide",
		"redis_addr": "localhost:6379",
		"gemini_api_key": "test-key",
		"cache_ttl": "30m"
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/tripguide", cfg.DatabaseURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, "30m", cfg.CacheTTL)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate_PortRange(t *testing.T) {
	cfg := Config{Port: 70000}
	assert.Error(t, cfg.Validate())

	cfg = Config{Port: 8080}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Durations(t *testing.T) {
	cfg := Config{CacheTTL: "not-a-duration"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache_ttl")

	cfg = Config{CacheTTL: "15m", StageTimeout: "30s", PipelineTimeout: "4m"}
	assert.NoError(t, cfg.Validate())
}

func TestDuration_Fallback(t *testing.T) {
	assert.Equal(t, 15*time.Minute, Duration("", 15*time.Minute))
	assert.Equal(t, 30*time.Second, Duration("30s", 15*time.Minute))
	assert.Equal(t, 15*time.Minute, Duration("garbage", 15*time.Minute))
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Defaults()

	partial := Config{
		DatabaseURL: "postgres://localhost/custom",
		CacheTTL:    "1h",
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, "postgres://localhost/custom", merged.DatabaseURL)
	assert.Equal(t, "1h", merged.CacheTTL)

	// Default values should fill in empty fields
	assert.Equal(t, 8080, merged.Port)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{
		Port:      9000,
		RedisAddr: "localhost:6379",
	}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "localhost:6379", merged.RedisAddr)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("PLACES_BASE_URL", "https://places.example.com")

	cfg := FromEnv()

	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, "env-key", cfg.GeminiAPIKey)
	assert.Equal(t, "https://places.example.com", cfg.PlacesBaseURL)
}
