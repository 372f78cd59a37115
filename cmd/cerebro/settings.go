package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cerebro/internal/config"
	"github.com/jonathan/cerebro/internal/logger"
)

// loadSettings resolves the effective config: defaults, then the config file,
// then CEREBRO_* env, then explicitly set flags.
func loadSettings(cmd *cobra.Command, overrides func(cmd *cobra.Command, cfg *config.Config)) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loadedCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return config.Config{}, err
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	if overrides != nil {
		overrides(cmd, &cfg)
	}

	cfg = cfg.MergeWithDefaults(config.Default())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}
