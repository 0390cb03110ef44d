package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/true-odds/internal/config"
	"github.com/yourusername/true-odds/internal/logger"
	"github.com/yourusername/true-odds/internal/metrics"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile  string
	logLevel    string
	metricsFile string
	log         *logrus.Logger
	cfg         *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the command")

	rootCmd.AddCommand(simulateCmd, patternsCmd, analyzeCmd, backtestCmd, stakeCmd, marketsCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "true-odds",
	Short: "Estimate true match probabilities and find value bets",
	Long: `Simulates matches, matches historical scoreline patterns and compares both
against bookmaker prices to rank value opportunities with Kelly stakes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		setupLogger()
		if cfg.Metrics.Enabled {
			metrics.InitRegistry()
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		path := metricsFile
		if path == "" {
			path = cfg.Metrics.Textfile
		}
		if !cfg.Metrics.Enabled || path == "" {
			return nil
		}
		if err := metrics.WriteTextfile(path); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		log.WithField("path", path).Debug("Metrics written")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "true-odds %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	return config.ReloadFromEnv(cfg)
}

func setupLogger() {
	level := cfg.App.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log = logger.NewLogger(level, cfg.App.LogFormat)
	log.WithFields(logrus.Fields{
		"version":     Version,
		"environment": cfg.App.Environment,
	}).Debug("Configuration loaded")
}
