// Package cli provides the command-line interface for the market watcher.
package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"marketwatch/internal/alert"
	"marketwatch/internal/config"
	"marketwatch/internal/logging"
	"marketwatch/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-01-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Registry *alert.Registry
}

// openStore opens the configured SQLite store. Callers own the returned
// store and must close it.
func (a *App) openStore() (*store.SQLiteStore, error) {
	if err := a.Config.EnsureDataDirs(); err != nil {
		return nil, err
	}
	st, err := store.NewSQLiteStore(a.Config.Storage.DatabasePath, a.Logger)
	if err != nil {
		return nil, err
	}
	st.SetBusyRetries(a.Config.Storage.BusyRetries)
	return st, nil
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "marketwatch",
		Short: "Market quote watcher with persistence and price alerts",
		Long: `Marketwatch polls market data providers for quotes, persists them in a
deduplicated SQLite store, mirrors accepted rows to a CSV file and raises
alerts when prices cross configured threshold bands.

Use 'marketwatch help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}

			// Threshold bands are part of configuration: a malformed band
			// aborts before any command runs.
			registry, err := alert.NewRegistryFromSpecs(cfg.Watch.Thresholds)
			if err != nil {
				return err
			}
			app.Registry = registry
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/marketwatch)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newLatestCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newPruneCmd(app))
	rootCmd.AddCommand(newThresholdsCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("marketwatch v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if _, err := alert.NewRegistryFromSpecs(app.Config.Watch.Thresholds); err != nil {
				output.Error("Threshold validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Show configuration file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			output.Info("Configuration file: %s", filepath.Join(config.DefaultConfigDir(), "config.toml"))
			output.Println("Edit this file to change settings.")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Watch Configuration")
	output.Printf("  Symbols:         %v\n", cfg.Watch.Symbols)
	output.Printf("  Thresholds:      %d configured\n", len(cfg.Watch.Thresholds))
	output.Println()

	output.Bold("Provider Configuration")
	output.Printf("  Name:            %s\n", cfg.Provider.Name)
	output.Printf("  Timeout:         %s\n", cfg.Provider.Timeout)
	output.Printf("  Retry Attempts:  %d\n", cfg.Provider.RetryAttempts)
	output.Println()

	output.Bold("Storage Configuration")
	output.Printf("  Database:        %s\n", cfg.Storage.DatabasePath)
	output.Printf("  CSV Mirror:      %s\n", cfg.Storage.CSVExportPath)
	output.Printf("  Retention Days:  %d\n", cfg.Storage.RetentionDays)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Console:         %v\n", cfg.Notifications.Console)
	output.Printf("  Email:           %v\n", cfg.Notifications.Email.Enabled)

	return nil
}
