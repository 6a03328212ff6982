package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slotswap-backend/config"
	"slotswap-backend/internal/logging"
)

const defaultConfigPath = "./config/config.yaml" // Default path for local development

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "slotswapd",
		Short:         "Slot swap negotiation server",
		Long:          "slotswapd serves the slot swap API: users offer slots, propose swaps, respond to them and receive notifications in real time.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", configPath, "path to the YAML configuration file (env CONFIG_PATH)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newTokenCmd(opts),
	)

	return rootCmd
}

// load reads the configuration and builds the logger for it.
func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration from %s: %w", o.configPath, err)
	}
	logger, err := logging.New(cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	logger.Info("Configuration loaded", zap.String("path", o.configPath), zap.String("environment", cfg.Environment))
	return cfg, logger, nil
}
