package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"JobScanner/internal/config"
	"JobScanner/internal/domain"
	"JobScanner/internal/infrastructure/cache"
	"JobScanner/internal/infrastructure/httpapi"
	"JobScanner/internal/infrastructure/parser"
	"JobScanner/internal/infrastructure/scheduler"
	"JobScanner/internal/infrastructure/storage"
	"JobScanner/internal/infrastructure/telegram"
	"JobScanner/internal/logging"
	"JobScanner/internal/ports"
	"JobScanner/internal/roles"
	"JobScanner/internal/scanner"
	"JobScanner/internal/usecase"
	"JobScanner/pkg/logger"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg          config.Config
	logger       *slog.Logger
	registry     *scanner.Registry
	store        ports.JobStore
	tracker      *roles.Tracker
	orchestrator *usecase.Orchestrator
	sweeper      *usecase.Sweeper
	closers      []func(context.Context) error
}

// New validates cfg, connects the store and optional Redis, and builds the use cases.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &Application{cfg: cfg, logger: baseLogger, tracker: roles.NewTracker()}

	client := &http.Client{Timeout: cfg.Pipeline.AdapterTimeout}
	a.registry = scanner.NewRegistry(
		parser.NewWorkdayScanner(client).WithLogger(logger.Component(baseLogger, "workday")),
		parser.NewGreenhouseScanner(client),
		parser.NewHTMLScanner(client),
	)
	if err := checkScanners(a.registry, cfg.Sites); err != nil {
		return nil, err
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.store = store

	var (
		lock  ports.CycleLock
		sinks []ports.ReportSink
	)
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		lock = cache.NewLock(rdb, cfg.Redis.LockKey, cfg.Redis.LockTTL)
		sinks = append(sinks, cache.NewReportPublisher(rdb, cfg.Redis.ReportChannel))
	}
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		sinks = append(sinks, telegram.NewNotifier(tg.BotToken, tg.ChatID))
	}

	source := parser.NewStrategySource(a.registry, cfg.Sites, logger.Component(baseLogger, "source"))
	engine := usecase.NewEngine(store, logger.Component(baseLogger, "engine"))

	a.orchestrator = usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Catalog:   source,
		Validator: roles.NewValidator(cfg.Roles.Keywords),
		Tracker:   a.tracker,
		Engine:    engine,
		Lock:      lock,
		Sinks:     sinks,
		Logger:    logger.Component(baseLogger, "orchestrator"),
	}, usecase.CycleSettings{
		Roles:          cfg.Pipeline.Roles,
		Lookback:       cfg.Pipeline.Lookback(),
		AdapterTimeout: cfg.Pipeline.AdapterTimeout,
		Concurrency:    cfg.Pipeline.Concurrency,
	})
	a.sweeper = usecase.NewSweeper(store, cfg.Pipeline.Retention(), logger.Component(baseLogger, "sweeper"))

	return a, nil
}

func (a *Application) openStore(ctx context.Context) (ports.JobStore, error) {
	db := a.cfg.Database
	switch db.Driver {
	case "memory":
		a.logger.Warn("using in-memory store, postings are lost on exit")
		return storage.NewMemoryStore(), nil
	case "mongo":
		store, err := storage.NewMongoStore(ctx, db.MongoURI, db.MongoDatabase)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		pool, err := storage.NewPostgresPool(ctx, db.DSN, db.MaxConns)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		store := storage.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	}
}

func checkScanners(reg *scanner.Registry, sites []config.SiteConfig) error {
	var errs []error
	for _, site := range sites {
		if !site.IsEnabled() {
			continue
		}
		if _, err := reg.Resolve(site.Scanner); err != nil {
			errs = append(errs, fmt.Errorf("site %s: %w", site.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Serve runs the scheduler and the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	sched := a.cfg.Scheduler
	driver := scheduler.NewCronScheduler(sched.Location(), logger.Component(a.logger, "cron"))
	runner := usecase.NewScheduler(driver, a.orchestrator, a.sweeper, usecase.ScheduleSettings{
		CycleCron:  sched.CycleCron(),
		SweepCron:  sched.SweepCron,
		RunOnStart: sched.ShouldRunOnStart(),
		Location:   sched.Location(),
	}, logger.Component(a.logger, "scheduler"))

	if err := runner.Start(ctx); err != nil {
		return err
	}

	api := httpapi.New(httpapi.Deps{
		Store:   a.store,
		Cycles:  a.orchestrator,
		Tracker: a.tracker,
		Logger:  logger.Component(a.logger, "http"),
	})
	serveErr := api.ListenAndServe(ctx, a.cfg.HTTP.Addr)

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Pipeline.AdapterTimeout)
	defer cancel()
	if err := runner.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	return serveErr
}

// RunOnce executes a single cycle in the foreground.
func (a *Application) RunOnce(ctx context.Context) (domain.CycleReport, error) {
	report, ok := a.orchestrator.RunCycle(ctx, usecase.TriggerManual)
	if !ok {
		return domain.CycleReport{}, errors.New("another cycle is running")
	}
	return report, nil
}

// Sweep runs the retention sweeper once.
func (a *Application) Sweep(ctx context.Context) (int64, error) {
	return a.sweeper.Sweep(ctx)
}

// Sites lists the configured sites and the registered scanner names.
func (a *Application) Sites() ([]config.SiteConfig, []string) {
	return a.cfg.Sites, a.registry.Names()
}

// Close releases store and Redis connections.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
