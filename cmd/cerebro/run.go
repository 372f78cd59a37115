package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/cerebro/internal/catalog"
	"github.com/jonathan/cerebro/internal/config"
	"github.com/jonathan/cerebro/internal/logger"
	"github.com/jonathan/cerebro/internal/observability"
	"github.com/jonathan/cerebro/internal/pipeline"
	"github.com/jonathan/cerebro/internal/vault"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Extract benefits for every target in the catalog",
	Long: `Loads the target catalog, extracts every source of every issuer with its registered strategy and
saves each issuer's records to the vault (one JSON file per issuer, or PostgreSQL when a database URL is set).

Configuration can be loaded from a file using --config. Environment (CEREBRO_*) and command-line arguments
override config file values.`,
	RunE: runExtractionCmd,
}

var (
	runTargets      string
	runCatalogToken string
	runOutDir       string
	runDatabaseURL  string
	runDetailMode   string
	runHeadless     bool
)

func init() {
	runCommand.Flags().StringVarP(&runTargets, "targets", "t", "", "Catalog path or http(s) URL")
	runCommand.Flags().StringVar(&runCatalogToken, "catalog-token", "", "Bearer token for a remote catalog (defaults to CEREBRO_CATALOG_TOKEN)")
	runCommand.Flags().StringVarP(&runOutDir, "out", "o", "", "Vault directory for per-issuer JSON files")
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	runCommand.Flags().StringVar(&runDetailMode, "detail-mode", "", "How detail pages are retrieved: browser or http")
	runCommand.Flags().BoolVar(&runHeadless, "headless", true, "Run the browser without a window")

	rootCmd.AddCommand(runCommand)
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("targets") {
		cfg.Targets = runTargets
	}
	if cmd.Flags().Changed("catalog-token") {
		cfg.CatalogToken = runCatalogToken
	}
	if cmd.Flags().Changed("out") {
		cfg.OutDir = runOutDir
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("detail-mode") {
		cfg.DetailMode = runDetailMode
	}
	if cmd.Flags().Changed("headless") {
		headless := runHeadless
		cfg.Headless = &headless
	}
}

func runExtractionCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadSettings(cmd, applyRunFlags)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	targets, err := catalog.Load(ctx, cfg.Targets, catalog.Options{Token: cfg.CatalogToken, UserAgent: cfg.UserAgent})
	if err != nil {
		return err
	}
	log.Info("catalog loaded", logger.String("targets", cfg.Targets), logger.Int("entries", len(targets)))

	runID := uuid.New()
	store, closeStore, err := openStore(ctx, cfg, runID)
	if err != nil {
		return err
	}
	defer closeStore()

	registry, err := buildRegistry(cfg, log)
	if err != nil {
		return err
	}

	orchestrator := pipeline.New(registry, pipeline.Options{
		Store:       store,
		SourceDelay: cfg.SourceDelay.Std(),
		Logger:      log,
		RunID:       runID,
		OnProgress: func(e pipeline.ProgressEvent) {
			fields := []logger.Field{
				logger.String("issuer_id", e.IssuerID),
				logger.String("source_id", e.SourceID),
				logger.String("state", e.State),
				logger.String("message", e.Message),
			}
			if e.SourceID == "" && pipeline.TargetState(e.State).Terminal() {
				log.Info("target finished", append(fields, logger.Int("records", e.Records))...)
				return
			}
			log.Debug("progress", fields...)
		},
	})

	summary, runErr := orchestrator.Run(ctx, targets)
	if cfg.Verbose {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		printer.PrintRunSummary(summary)
		printer.PrintRunRecords(summary)
	}
	if runErr != nil {
		return fmt.Errorf("run interrupted after %d records: %w", summary.Total, runErr)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d benefit records from %d targets (run %s)\n",
		summary.Total, len(summary.Targets), summary.RunID)
	return nil
}

// openStore picks the PostgreSQL vault when a database URL is configured and
// the file vault otherwise.
func openStore(ctx context.Context, cfg config.Config, runID uuid.UUID) (pipeline.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		store, err := vault.Connect(ctx, cfg.DatabaseURL, runID)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	store, err := vault.NewFileStore(cfg.OutDir)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}
