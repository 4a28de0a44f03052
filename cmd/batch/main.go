package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"yield-advisor/internal/config"
	"yield-advisor/internal/infrastructure"
	"yield-advisor/pkg/logging"
)

var configPath string

// rootCmd is the offline entry point for scoring and advice
var rootCmd = &cobra.Command{
	Use:   "yield-batch",
	Short: "Offline crop yield scoring and advisory",
	Long: `Score crop yield records without running the API server.

Available subcommands:
  score  - Score a CSV of prediction records into JSON lines
  advise - Print the advisory for a yield obtained elsewhere`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.BaseConfigFile, "path to the base TOML config file")
	rootCmd.AddCommand(scoreCmd, adviseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the shared infrastructure. Logs go to
// stderr so stdout stays reserved for results.
func setup(ctx context.Context) (*infrastructure.Infrastructure, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewStructuredLogger("yield-batch", cfg.Version, cfg.Logging.LogLevel())
	logger.SetOutput(os.Stderr)

	// Batch runs do not export metrics.
	infra, err := infrastructure.New(ctx, cfg, logger, prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}
	return infra, nil
}
