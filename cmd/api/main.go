package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/makerhub/innovation-wizard/config"
	"github.com/makerhub/innovation-wizard/internal/ai"
	"github.com/makerhub/innovation-wizard/internal/auth"
	authmw "github.com/makerhub/innovation-wizard/internal/auth/middleware"
	"github.com/makerhub/innovation-wizard/internal/bootstrap"
	"github.com/makerhub/innovation-wizard/internal/catalyst"
	"github.com/makerhub/innovation-wizard/internal/cron"
	"github.com/makerhub/innovation-wizard/internal/logging"
	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/projects"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
	"github.com/makerhub/innovation-wizard/internal/wizard/launchlog"
	"github.com/makerhub/innovation-wizard/internal/wizard/service"
	"github.com/makerhub/innovation-wizard/internal/wizard/taxonomy"
)

const (
	serviceName     = "innovation-wizard"
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.Init(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	bootstrap.SetGinMode(cfg.App)
	// the projects API takes the budget as a JSON number
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		rdb, err = bootstrap.OpenRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
	}

	var pool *pgxpool.Pool
	var launches service.LaunchRecorder
	if cfg.Database.DSN != "" {
		pool, err = bootstrap.OpenDB(ctx, bootstrap.DBOptionsFrom(cfg.Database))
		if err != nil {
			return err
		}
		defer pool.Close()

		ledger := launchlog.New(pool)
		if err := ledger.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("launch ledger schema: %w", err)
		}
		launches = ledger
	} else {
		logger.Warn("DB_DSN not set, launches are not recorded")
	}

	drafts, err := bootstrap.OpenDrafts(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	defer func() { _ = drafts.Close() }()

	tax := taxonomy.Default()
	if cfg.Wizard.TaxonomyPath != "" {
		if tax, err = taxonomy.Load(cfg.Wizard.TaxonomyPath); err != nil {
			return err
		}
	}

	var broker notify.Broker = notify.NewHub()
	if rdb != nil {
		broker = notify.NewRedisBroker(rdb)
	}
	notifier := notify.Fanout{broker, notify.Log{}}

	aiClient := ai.NewClient(ai.Config{
		BaseURL:   cfg.Upstream.AIBaseURL,
		Timeout:   cfg.Upstream.AITimeout,
		RateLimit: cfg.Upstream.AIRateLimit,
		Burst:     cfg.Upstream.AIRateBurst,
	})
	projectsClient := projects.NewClient(cfg.Upstream.ProjectsAPIURL, cfg.Upstream.SubmitTimeout)

	wizardSvc, err := service.New(service.Deps{
		Store:      drafts.Store,
		Classifier: aiClient,
		Teams:      aiClient,
		Submitter:  projectsClient,
		Launches:   launches,
		Notifier:   notifier,
		Taxonomy:   tax,
	}, service.Config{
		JumpPolicy:        domain.ParseJumpPolicy(cfg.Wizard.JumpPolicy),
		AITimeout:         cfg.Upstream.AITimeout,
		SubmitTimeout:     cfg.Upstream.SubmitTimeout,
		NotificationLimit: cfg.Wizard.NotificationLimit,
	})
	if err != nil {
		return err
	}
	defer wizardSvc.Shutdown()

	catalystSvc, err := catalyst.New(catalyst.Deps{
		Store:    drafts.Store,
		Analyzer: aiClient,
		Wizard:   wizardSvc,
		Notifier: notifier,
	}, catalyst.Config{
		Timeout:           cfg.Upstream.AITimeout,
		NotificationLimit: cfg.Wizard.NotificationLimit,
	})
	if err != nil {
		return err
	}
	defer catalystSvc.Shutdown()

	var verifier authmw.TokenVerifier
	if cfg.Firebase.Optional {
		logger.Warn("AUTH_OPTIONAL is set, identities are taken from X-User-Id headers")
	} else {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return err
		}
		verifier = client
	}

	var purger cron.Purger
	if drafts.Postgres != nil {
		purger = drafts.Postgres
	}
	scheduler := cron.NewScheduler(map[string]cron.Evictor{
		"wizard":   wizardSvc,
		"catalyst": catalystSvc,
	}, purger, cron.Options{
		IdleTimeout: cfg.Wizard.SessionIdleTimeout,
		Retention:   cfg.Wizard.DraftRetention,
	})
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		DB:          pool,
		Redis:       rdb,
		Verifier:    verifier,
		Wizard:      wizardSvc,
		Catalyst:    catalystSvc,
		Events:      broker,
		AIMetrics:   aiClient.Metrics(),
	})

	// request contexts end when shutdown starts so event streams let go
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelRequests)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("drafts", cfg.Wizard.DraftBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
