package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cerebro/internal/catalog"
	"github.com/jonathan/cerebro/internal/config"
	"github.com/jonathan/cerebro/internal/logger"
	"github.com/jonathan/cerebro/internal/observability"
	"github.com/jonathan/cerebro/internal/pipeline"
)

var validateCatalogCommand = &cobra.Command{
	Use:   "validate-catalog",
	Short: "Check a target catalog without extracting anything",
	Long: `Loads the catalog, checks its shape and reports, per entry, whether it would run: missing issuer_id or
parser_strategy, unknown strategies and malformed sources are listed. Exits non-zero when no entry is runnable.`,
	RunE: validateCatalogCmd,
}

var (
	validateTargets      string
	validateCatalogToken string
)

func init() {
	validateCatalogCommand.Flags().StringVarP(&validateTargets, "targets", "t", "", "Catalog path or http(s) URL")
	validateCatalogCommand.Flags().StringVar(&validateCatalogToken, "catalog-token", "", "Bearer token for a remote catalog")

	rootCmd.AddCommand(validateCatalogCommand)
}

func validateCatalogCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd, func(cmd *cobra.Command, cfg *config.Config) {
		if cmd.Flags().Changed("targets") {
			cfg.Targets = validateTargets
		}
		if cmd.Flags().Changed("catalog-token") {
			cfg.CatalogToken = validateCatalogToken
		}
	})
	if err != nil {
		return err
	}

	targets, err := catalog.Load(context.Background(), cfg.Targets, catalog.Options{Token: cfg.CatalogToken, UserAgent: cfg.UserAgent})
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg, logger.NewNop())
	if err != nil {
		return err
	}

	checks := pipeline.Check(registry, targets)
	observability.NewPrinter(cmd.OutOrStdout()).PrintCatalogCheck(checks)

	for _, c := range checks {
		if c.Runnable() {
			return nil
		}
	}
	return fmt.Errorf("catalog %s has no runnable targets", cfg.Targets)
}
