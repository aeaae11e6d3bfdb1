package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ravantech1548/Face-recogn-attendance/internal/config"
	"github.com/ravantech1548/Face-recogn-attendance/internal/printer"
)

var (
	configFile string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "attendance-server",
	Short: "Staff attendance server",
	Long: `attendance-server turns manual check-ins and face-recognition sightings
into one attendance record per staff member per day.

Run without a subcommand to start the HTTP API (same as "serve").`,
	RunE: runServe,
}

// Execute runs the root command. Errors are printed by the printer package,
// so cobra's own error and usage output is silenced.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (overrides ATTENDANCE_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
}

// loadConfig reads the dotenv file (if present), then the config file and
// the environment.
func loadConfig() (config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, printer.Error(
				"failed to load env file",
				fmt.Sprintf("Error: %v", err),
				[]string{fmt.Sprintf("Fix or remove %s", envFile)},
			)
		}
	}
	if configFile != "" {
		if err := os.Setenv("ATTENDANCE_CONFIG_FILE", configFile); err != nil {
			return config.Config{}, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{"Check the ATTENDANCE_* environment variables and the config file"},
		)
	}
	return cfg, nil
}

// newLogger returns a text logger on stderr in dev and a JSON logger on
// stdout in prod.
func newLogger(cfg config.Config) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Env == "prod" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h).With("service", "attendance-server")
}
