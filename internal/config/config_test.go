package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))
	return dir
}

const validConfig = `
[watch]
symbols = ["AAPL", "MSFT"]
thresholds = ["AAPL:150:200"]

[provider]
name = "static"

[storage]
retention_days = 30
`

func TestLoadValidConfig(t *testing.T) {
	dir := writeConfig(t, validConfig)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Watch.Symbols)
	assert.Equal(t, []string{"AAPL:150:200"}, cfg.Watch.Thresholds)
	assert.Equal(t, "static", cfg.Provider.Name)
	assert.Equal(t, 30, cfg.Storage.RetentionDays)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, validConfig)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data", "market_data.db"), cfg.Storage.DatabasePath)
	assert.Equal(t, filepath.Join(dir, "data", "market_data.csv"), cfg.Storage.CSVExportPath)
	assert.Equal(t, 10*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 3, cfg.Provider.RetryAttempts)
	assert.Equal(t, 3, cfg.Storage.BusyRetries)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadCreatesTemplateWhenMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	require.Error(t, err)

	// The template exists afterwards so the user can edit it.
	_, statErr := os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, statErr)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	dir := writeConfig(t, `
[watch]
symbols = ["AAPL"]

[provider]
name = "bloomberg"
`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid provider name")
}

func TestLoadRequiresAPIKeyForAlphaVantage(t *testing.T) {
	dir := writeConfig(t, `
[watch]
symbols = ["AAPL"]

[provider]
name = "alphavantage"
`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoadRejectsEmptySymbols(t *testing.T) {
	dir := writeConfig(t, `
[watch]
symbols = []

[provider]
name = "static"
`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol")
}

func TestLoadRejectsNegativeRetention(t *testing.T) {
	dir := writeConfig(t, `
[watch]
symbols = ["AAPL"]

[provider]
name = "static"

[storage]
retention_days = -1
`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retention_days")
}

func TestLoadRejectsIncompleteEmailConfig(t *testing.T) {
	dir := writeConfig(t, `
[watch]
symbols = ["AAPL"]

[provider]
name = "static"

[notifications.email]
enabled = true
`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP")
}

func TestEnvOverrides(t *testing.T) {
	dir := writeConfig(t, validConfig)

	t.Setenv("MARKETWATCH_PROVIDER", "alphavantage")
	t.Setenv("MARKETWATCH_API_KEY", "test-key")
	t.Setenv("MARKETWATCH_DB_PATH", "/tmp/override.db")
	t.Setenv("MARKETWATCH_LOG_LEVEL", "debug")
	t.Setenv("MARKETWATCH_RETENTION_DAYS", "7")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "alphavantage", cfg.Provider.Name)
	assert.Equal(t, "test-key", cfg.Provider.APIKey)
	assert.Equal(t, "/tmp/override.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Storage.RetentionDays)
}

func TestEnsureDataDirs(t *testing.T) {
	dir := writeConfig(t, validConfig)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.EnsureDataDirs())

	info, err := os.Stat(filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
