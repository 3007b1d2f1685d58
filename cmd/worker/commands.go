package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/makerhub/innovation-wizard/config"
	"github.com/makerhub/innovation-wizard/internal/bootstrap"
	"github.com/makerhub/innovation-wizard/internal/cron"
	"github.com/makerhub/innovation-wizard/internal/logging"
	"github.com/makerhub/innovation-wizard/internal/wizard/launchlog"
)

var retention time.Duration

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the draft and launch ledger tables",
	RunE:  runMigrate,
}

var purgeCmd = &cobra.Command{
	Use:   "purge-drafts",
	Short: "Delete Postgres drafts older than the retention window",
	RunE:  runPurge,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run purge-drafts nightly until interrupted",
	RunE:  runSchedule,
}

func init() {
	purgeCmd.Flags().DurationVar(&retention, "retention", 0, "override DRAFT_RETENTION")
	scheduleCmd.Flags().DurationVar(&retention, "retention", 0, "override DRAFT_RETENTION")
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.Init(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		return nil, nil, err
	}
	if retention > 0 {
		cfg.Wizard.DraftRetention = retention
	}
	return cfg, logger, nil
}

// openPostgresDrafts refuses to run against any other backend.
func openPostgresDrafts(ctx context.Context, cfg *config.Config) (*bootstrap.Drafts, error) {
	if cfg.Wizard.DraftBackend != config.DraftBackendPostgres {
		return nil, fmt.Errorf("DRAFT_BACKEND is %q; only postgres drafts need housekeeping", cfg.Wizard.DraftBackend)
	}
	return bootstrap.OpenDrafts(ctx, cfg, nil)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	ctx := cmd.Context()

	if cfg.Wizard.DraftBackend == config.DraftBackendPostgres {
		// OpenDrafts ensures the draft table
		drafts, err := openPostgresDrafts(ctx, cfg)
		if err != nil {
			return err
		}
		_ = drafts.Close()
		logger.Info("draft table ready")
	}

	if cfg.Database.DSN == "" {
		logger.Warn("DB_DSN not set, skipping launch ledger")
		return nil
	}
	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptionsFrom(cfg.Database))
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := launchlog.New(pool).EnsureSchema(ctx); err != nil {
		return fmt.Errorf("launch ledger schema: %w", err)
	}
	logger.Info("launch ledger ready")
	return nil
}

func runPurge(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	drafts, err := openPostgresDrafts(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = drafts.Close() }()

	n, err := cron.NewScheduler(nil, drafts.Postgres, cron.Options{Retention: cfg.Wizard.DraftRetention}).PurgeDrafts(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "purged %d drafts older than %s\n", n, cfg.Wizard.DraftRetention)
	return nil
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	drafts, err := openPostgresDrafts(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = drafts.Close() }()

	scheduler := cron.NewScheduler(nil, drafts.Postgres, cron.Options{Retention: cfg.Wizard.DraftRetention})
	if err := scheduler.Start(); err != nil {
		return err
	}
	logger.Info("purge scheduled", zap.String("schedule", cron.PurgeSpec), zap.Duration("retention", cfg.Wizard.DraftRetention))

	<-ctx.Done()
	scheduler.Stop()
	return nil
}
