package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "impressum.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "fallback", cfg.LLM.Mode)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.LLM.AnthropicModel)
	assert.Equal(t, 12000, cfg.LLM.MaxInputChars)
	assert.InDelta(t, 2.0, cfg.LLM.RequestsPerSecond, 0.001)
	assert.InDelta(t, 0.5, cfg.LLM.ConfidenceThreshold, 0.001)
	assert.Equal(t, 15, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, int64(512*1024), cfg.Fetch.MaxBodyBytes)
	assert.Equal(t, 2, cfg.Fetch.MaxRetries)
	assert.Equal(t, 2, cfg.Discover.MaxPagesPerDomain)
	assert.True(t, cfg.Discover.ProbePaths)
	assert.True(t, cfg.Merge.ScanKontakt)
	assert.Equal(t, 3, cfg.Pipeline.DomainConcurrency)
	assert.Equal(t, 2, cfg.Pipeline.LLMConcurrency)
	assert.InDelta(t, 0.3, cfg.Pipeline.MinConfidence, 0.001)
	assert.True(t, cfg.Pipeline.CacheResults)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/impressum
log:
  level: debug
  format: console
llm:
  provider: ollama
  mode: primary
discover:
  max_pages_per_domain: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/impressum", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "primary", cfg.LLM.Mode)
	assert.Equal(t, 4, cfg.Discover.MaxPagesPerDomain)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Pipeline.DomainConcurrency)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("IMPRESSUM_STORE_DRIVER", "postgres")
	t.Setenv("IMPRESSUM_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("IMPRESSUM_SERVER_PORT", "3000")
	t.Setenv("IMPRESSUM_LLM_ANTHROPIC_KEY", "sk-ant-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "sk-ant-test", cfg.LLM.AnthropicKey)
}

// validConfig returns a Config that passes validation for tests to break.
func validConfig() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.LLM.Provider = "none"
	cfg.LLM.Mode = "fallback"
	return cfg
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MissingAnthropicKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = "anthropic"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic_key")
}

func TestValidate_MissingOpenAIKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = "openai"
	assert.Error(t, cfg.Validate())
}

func TestValidate_OllamaNeedsNoKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = "ollama"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Provider = "bard"
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadMode(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Mode = "always"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.mode")
}

func TestValidate_MissingCABundle(t *testing.T) {
	cfg := validConfig()
	cfg.Fetch.CABundlePath = filepath.Join(t.TempDir(), "missing.pem")
	assert.Error(t, cfg.Validate())
}

func TestValidate_UnknownStoreDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store driver")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
