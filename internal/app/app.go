// Package app initializes and holds the long-lived services one
// synchronization pass depends on.
package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cirslinger/pdfmirror/internal/config"
	"github.com/cirslinger/pdfmirror/internal/extract"
	"github.com/cirslinger/pdfmirror/internal/fetch"
	"github.com/cirslinger/pdfmirror/internal/logging"
	"github.com/cirslinger/pdfmirror/internal/metrics"
	"github.com/cirslinger/pdfmirror/internal/mirror"
	"github.com/cirslinger/pdfmirror/internal/notify"
	"github.com/cirslinger/pdfmirror/internal/reconcile"
	"github.com/cirslinger/pdfmirror/internal/remote/drive"
	"github.com/cirslinger/pdfmirror/internal/remote/gcs"
	"github.com/cirslinger/pdfmirror/internal/remote/memory"
	"github.com/cirslinger/pdfmirror/internal/run"
	"github.com/cirslinger/pdfmirror/internal/sitemap"
	"github.com/cirslinger/pdfmirror/internal/stage"
)

// App wires configuration into live services. Built once per process, torn
// down by Close.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	store      mirror.Store
	publisher  mirror.Publisher
	collectors *metrics.Collectors

	metricsCancel context.CancelFunc
	closeOnce     sync.Once
}

// New builds the service container. It fails fast: any provider that cannot
// be initialized aborts startup before the pipeline ever touches the remote.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		publisher: publisher,
	}

	if cfg.Metrics.Enabled {
		collectors, err := metrics.New()
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		a.collectors = collectors

		srvCtx, cancel := context.WithCancel(context.Background())
		a.metricsCancel = cancel
		go func() {
			if err := collectors.Serve(srvCtx, cfg.Metrics.Addr); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		logger.Info("metrics endpoint enabled", zap.String("addr", cfg.Metrics.Addr))
	}

	return a, nil
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Store exposes the configured remote document store.
func (a *App) Store() mirror.Store {
	return a.store
}

// Orchestrator assembles the full pipeline for one pass.
func (a *App) Orchestrator() (*run.Orchestrator, error) {
	fetcher := fetch.NewRateLimited(
		fetch.New(fetch.Config{
			UserAgent: a.cfg.Sync.UserAgent,
			Timeout:   a.cfg.FetchTimeout(),
		}),
		a.cfg.Sync.PerHostRPS,
	)

	enumerator := sitemap.New(fetcher, a.cfg.Sitemap.LocaleFilter, a.logger)
	extractor := extract.New(fetcher, a.logger)
	stager, err := stage.New(fetcher, a.cfg.Staging.Dir, a.logger)
	if err != nil {
		return nil, fmt.Errorf("initialize staging: %w", err)
	}
	reconciler := reconcile.New(a.store, a.logger)

	return run.New(
		enumerator,
		extractor,
		stager,
		a.store,
		reconciler,
		a.publisher,
		a.collectors,
		mirror.SystemClock{},
		run.Config{
			SitemapURL:  a.cfg.Sitemap.URL,
			FolderName:  a.cfg.Remote.FolderName,
			Concurrency: a.cfg.Sync.Concurrency,
		},
		a.logger,
	), nil
}

// Close shuts the container down. Idempotent so that both the command's own
// teardown and the CLI's post-run hook may call it. Best effort; individual
// failures are logged, not returned.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.metricsCancel != nil {
			a.metricsCancel()
		}
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("closing publisher", zap.Error(err))
		}
		_ = a.logger.Sync()
	})
}

func newStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (mirror.Store, error) {
	switch cfg.Remote.Provider {
	case "drive":
		logger.Info("using Google Drive remote",
			zap.String("folder", cfg.Remote.FolderName))
		store, err := drive.NewFromToken(ctx, cfg.Remote.Drive.CredentialsFile, cfg.Remote.Drive.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("initialize drive remote: %w", err)
		}
		return store, nil
	case "gcs":
		logger.Info("using Cloud Storage remote",
			zap.String("bucket", cfg.Remote.GCS.Bucket),
			zap.String("folder", cfg.Remote.FolderName))
		store, err := gcs.New(ctx, cfg.Remote.GCS.Bucket)
		if err != nil {
			return nil, fmt.Errorf("initialize gcs remote: %w", err)
		}
		return store, nil
	case "memory":
		logger.Info("using in-memory remote; nothing leaves this process")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown remote provider: %s", cfg.Remote.Provider)
	}
}

func newPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (mirror.Publisher, error) {
	if !cfg.Notify.Enabled {
		return notify.NoOp{}, nil
	}
	logger.Info("publishing run summaries to Pub/Sub",
		zap.String("project", cfg.Notify.ProjectID),
		zap.String("topic", cfg.Notify.Topic))
	p, err := notify.NewPubSub(ctx, cfg.Notify.ProjectID, cfg.Notify.Topic)
	if err != nil {
		return nil, fmt.Errorf("initialize notifier: %w", err)
	}
	return p, nil
}
