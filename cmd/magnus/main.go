package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/magnus/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "magnus",
	Short: "Magnus is an intent-routing AI assistant daemon",
	Long: `Magnus routes user prompts to specialized handler pipelines
(translation, video search, music concepts, study guides, multi-agent
collaborations, and more) backed by the Gemini API. It serves Telegram
and HTTP surfaces and runs scheduled tasks.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath,
		"config",
		filepath.Join(os.Getenv("HOME"), ".magnus", "config.json"),
		"config file path")
}

// loadConfig loads the config file, exiting on failure. Commands that can
// work without a config should not use this.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// setupLogging installs the default slog handler at the configured level.
func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
