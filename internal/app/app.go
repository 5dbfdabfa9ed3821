package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"newsdesk/internal/approval"
	"newsdesk/internal/config"
	"newsdesk/internal/infrastructure/artifacts"
	"newsdesk/internal/infrastructure/feeds"
	"newsdesk/internal/infrastructure/openai"
	"newsdesk/internal/infrastructure/scheduler"
	"newsdesk/internal/infrastructure/storage"
	"newsdesk/internal/infrastructure/wix"
	"newsdesk/internal/logging"
	"newsdesk/internal/ports"
	"newsdesk/internal/provider"
	"newsdesk/internal/server"
	"newsdesk/internal/slack"
	"newsdesk/internal/usecase"
)

// Application wires configs to adapters, pipelines, and the HTTP server.
// Chat, CMS, drafting, and artifact capabilities are optional: each stays
// nil when unconfigured and every consumer handles the absence.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	db        *sql.DB
	draft     *usecase.DraftPipeline
	titlegate *usecase.TitleGatePipeline
	publish   *usecase.PublishPipeline
	server    *server.Server
	scheduler ports.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	app := &Application{cfg: cfg, logger: baseLogger}

	var (
		store ports.ArticleStore
		runs  ports.RunLog
	)
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}

		pg := storage.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}

		app.db = db
		store, runs = pg, pg
	} else {
		baseLogger.Warn("no database configured, articles are held in memory")
		store = storage.NewMemoryStore()
	}

	registry := provider.NewRegistry()
	registry.Register(feeds.NewRSSProvider(nil, cfg.Feeds, logging.ForComponent(baseLogger, "feeds.rss")))
	if cfg.Providers.NewsAPI.Enabled {
		registry.Register(feeds.NewNewsAPIProvider(cfg.Providers.NewsAPI))
	}
	if cfg.Providers.Newscatcher.Enabled {
		registry.Register(feeds.NewNewscatcherProvider(cfg.Providers.Newscatcher))
	}
	if cfg.Providers.Mediastack.Enabled {
		registry.Register(feeds.NewMediastackProvider(cfg.Providers.Mediastack))
	}
	source := feeds.NewSource(registry, cfg.Limits, logging.ForComponent(baseLogger, "source"))

	var drafter ports.Drafter
	if cfg.OpenAI.APIKey != "" {
		drafter = openai.NewDrafter(cfg.OpenAI)
	}

	var (
		notifier ports.Notifier
		modals   ports.ModalOpener
	)
	if cfg.Slack.BotToken != "" {
		client := slack.NewClient(cfg.Slack.BotToken, cfg.Slack.ChannelID)
		notifier, modals = client, client
	}

	var publisher ports.Publisher
	if cfg.Wix.APIKey != "" {
		publisher = wix.NewPublisher(cfg.Wix)
	}

	var sink ports.ArtifactSink
	if cfg.Artifacts.Dir != "" {
		sink = artifacts.NewFSSink(cfg.Artifacts.Dir)
	}

	app.draft = usecase.NewDraftPipeline(usecase.DraftDeps{
		Source:          source,
		Store:           store,
		Drafter:         drafter,
		Runs:            runs,
		Artifacts:       sink,
		Logger:          logging.ForComponent(baseLogger, "pipeline.draft"),
		MaxItems:        cfg.Limits.MaxItemsPerDay,
		DefaultReporter: cfg.Reporter.DefaultName,
	})
	app.titlegate = usecase.NewTitleGatePipeline(store, notifier, logging.ForComponent(baseLogger, "pipeline.titlegate"))
	app.publish = usecase.NewPublishPipeline(store, publisher, notifier, logging.ForComponent(baseLogger, "pipeline.publish"))

	machine := approval.NewMachine(store, logging.ForComponent(baseLogger, "machine"))
	verifier := slack.NewVerifier(cfg.Slack.SigningSecret)
	handler := server.NewHandler(verifier, machine, modals, logging.ForComponent(baseLogger, "http"))

	app.server = server.New(cfg.Server, handler, server.Triggers{
		Draft:     app.RunDraft,
		TitleGate: app.RunTitleGate,
		Publish:   app.RunPublish,
	}, logging.ForComponent(baseLogger, "http"))

	app.scheduler = scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())

	return app, nil
}

// Serve runs the HTTP server and the cron-driven drafting job until the
// context is canceled.
func (a *Application) Serve(ctx context.Context) error {
	if a.cfg.Scheduler.CronExpression != "" {
		job := func(trigger time.Time) {
			if err := a.draft.Run(context.Background(), trigger); err != nil {
				a.logger.Error("scheduled draft run failed", "error", err)
			}
		}
		if err := a.scheduler.Start(ctx, job); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = a.scheduler.Stop(stopCtx)
		}()
	}

	return a.server.Run(ctx)
}

// RunDraft performs a single drafting pass.
func (a *Application) RunDraft(ctx context.Context) error {
	return a.draft.Run(ctx, time.Now().In(a.cfg.Scheduler.Location()))
}

// RunTitleGate posts review cards for every awaiting article.
func (a *Application) RunTitleGate(ctx context.Context) error {
	return a.titlegate.Run(ctx)
}

// RunPublish pushes approved articles to the CMS.
func (a *Application) RunPublish(ctx context.Context) error {
	return a.publish.Run(ctx)
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
