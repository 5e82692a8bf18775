package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"NewsIngest/internal/config"
	"NewsIngest/internal/infrastructure/feed"
	"NewsIngest/internal/infrastructure/scheduler"
	"NewsIngest/internal/infrastructure/storage"
	"NewsIngest/internal/infrastructure/telegram"
	"NewsIngest/internal/infrastructure/translate"
	"NewsIngest/internal/logging"
	"NewsIngest/internal/ports"
	"NewsIngest/internal/usecase"
)

// Application wires configuration into the ingestion pipeline and its
// lifecycle.
type Application struct {
	cfg      config.Config
	db       *sql.DB
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

// New opens the database and assembles the pipeline.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := storage.NewPostgresRepository(db)
	fetcher := feed.NewFetcher(nil, cfg.Fetch.Timeout(), baseLogger.With("component", "fetcher"))

	translator := translate.NewClient(cfg.Translate, baseLogger.With("component", "translate"))
	baseLogger.Info("translation config",
		"key_present", cfg.Translate.APIKey != "",
		"target_language", cfg.Translate.TargetLanguage,
		"disabled", translator.Disabled())

	var alerter ports.Alerter
	if cfg.Alerts.Telegram.BotToken != "" && cfg.Alerts.Telegram.ChatID != "" {
		alerter = telegram.NewNotifier(cfg.Alerts.Telegram.BotToken, cfg.Alerts.Telegram.ChatID)
	}

	health := usecase.NewHealthTracker(repo, alerter, baseLogger.With("component", "health"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Catalog:         repo,
		Fetcher:         fetcher,
		Translator:      translator,
		Store:           repo,
		Health:          health,
		TargetLanguage:  cfg.Translate.TargetLanguage,
		MaxItemsPerFeed: cfg.Fetch.MaxItemsPerFeed,
		Logger:          baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, db: db, pipeline: pipeline, logger: baseLogger}, nil
}

// RunOnce performs a single ingestion pass, the one-shot worker mode.
func (a *Application) RunOnce(ctx context.Context) error {
	return a.pipeline.Run(ctx)
}

// RunDaemon keeps ingesting on the configured interval until ctx is done.
func (a *Application) RunDaemon(ctx context.Context) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval())
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("daemon started", "interval", a.cfg.Scheduler.Interval().String())

	<-ctx.Done()
	return sched.Stop(context.Background())
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
