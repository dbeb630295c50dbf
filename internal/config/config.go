// Package config provides configuration management for the market data pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Watch         WatchConfig        `mapstructure:"watch"`
	Provider      ProviderConfig     `mapstructure:"provider"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Log           LogConfig          `mapstructure:"log"`
}

// WatchConfig holds the tracked symbols and their alert bands.
type WatchConfig struct {
	Symbols []string `mapstructure:"symbols"`
	// Thresholds are band specs of the form "symbol:min:max" where either
	// bound may be empty to mean "no bound".
	Thresholds []string `mapstructure:"thresholds"`
}

// ProviderConfig holds quote provider configuration.
type ProviderConfig struct {
	Name          string        `mapstructure:"name"` // "alphavantage", "static"
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	DatabasePath  string `mapstructure:"database_path"`
	CSVExportPath string `mapstructure:"csv_export_path"`
	RetentionDays int    `mapstructure:"retention_days"`
	BusyRetries   int    `mapstructure:"busy_retries"`
}

// NotificationConfig holds alert sink configuration.
type NotificationConfig struct {
	Console bool        `mapstructure:"console"`
	Email   EmailConfig `mapstructure:"email"`
}

// EmailConfig holds email notification configuration.
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Console  bool   `mapstructure:"console"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/marketwatch"
	}
	return filepath.Join(home, ".config", "marketwatch")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyDefaults(cfg, configDir)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("watch.symbols", []string{"AAPL", "MSFT", "BTC-USD"})
	v.SetDefault("provider.name", "alphavantage")
	v.SetDefault("provider.timeout", "10s")
	v.SetDefault("provider.retry_attempts", 3)
	v.SetDefault("provider.retry_delay", "2s")
	v.SetDefault("storage.retention_days", 0)
	v.SetDefault("storage.busy_retries", 3)
	v.SetDefault("notifications.console", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.file", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(target)
}

func applyDefaults(cfg *Config, configDir string) {
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = filepath.Join(configDir, "data", "market_data.db")
	}
	if cfg.Storage.CSVExportPath == "" {
		cfg.Storage.CSVExportPath = filepath.Join(configDir, "data", "market_data.csv")
	}
	if cfg.Log.FilePath == "" {
		cfg.Log.FilePath = filepath.Join(configDir, "logs", "marketwatch.log")
	}
	if cfg.Provider.Timeout <= 0 {
		cfg.Provider.Timeout = 10 * time.Second
	}
	if cfg.Provider.RetryAttempts <= 0 {
		cfg.Provider.RetryAttempts = 3
	}
	if cfg.Provider.RetryDelay <= 0 {
		cfg.Provider.RetryDelay = 2 * time.Second
	}
	if cfg.Storage.BusyRetries <= 0 {
		cfg.Storage.BusyRetries = 3
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKETWATCH_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("MARKETWATCH_PROVIDER"); v != "" {
		cfg.Provider.Name = v
	}
	if v := os.Getenv("MARKETWATCH_DB_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv("MARKETWATCH_SMTP_PASSWORD"); v != "" {
		cfg.Notifications.Email.Password = v
	}
	if v := os.Getenv("MARKETWATCH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MARKETWATCH_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Storage.RetentionDays = days
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Watch.Symbols) == 0 {
		return fmt.Errorf("at least one symbol must be configured in watch.symbols")
	}

	switch c.Provider.Name {
	case "alphavantage", "static":
	default:
		return fmt.Errorf("invalid provider name: %s (must be 'alphavantage' or 'static')", c.Provider.Name)
	}

	if c.Provider.Name == "alphavantage" && c.Provider.APIKey == "" {
		return fmt.Errorf("provider.api_key is required for the alphavantage provider")
	}

	if c.Storage.RetentionDays < 0 {
		return fmt.Errorf("storage.retention_days must not be negative")
	}

	if c.Notifications.Email.Enabled {
		e := c.Notifications.Email
		if e.SMTPHost == "" || e.From == "" || e.To == "" {
			return fmt.Errorf("email alerts enabled but SMTP configuration is incomplete")
		}
	}

	return nil
}

// EnsureDataDirs creates the directories that hold the database, the CSV
// mirror and the log file.
func (c *Config) EnsureDataDirs() error {
	for _, p := range []string{c.Storage.DatabasePath, c.Storage.CSVExportPath, c.Log.FilePath} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", p, err)
		}
	}
	return nil
}
