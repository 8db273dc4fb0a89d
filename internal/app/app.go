package app

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/user/speedsale-scraper/internal/adapter/chromedp_strategy"
	"github.com/user/speedsale-scraper/internal/adapter/httpfetch"
	"github.com/user/speedsale-scraper/internal/adapter/mailgun"
	"github.com/user/speedsale-scraper/internal/adapter/postgres"
	"github.com/user/speedsale-scraper/internal/adapter/redis"
	"github.com/user/speedsale-scraper/internal/adapter/static_strategy"
	"github.com/user/speedsale-scraper/internal/profile"
	"github.com/user/speedsale-scraper/internal/repository"
	"github.com/user/speedsale-scraper/internal/usecase"
	"github.com/user/speedsale-scraper/pkg/config"
)

// Options controls which optional backends New connects to.
type Options struct {
	// RequireRedis fails New when Redis is unreachable. Otherwise the app
	// runs without the job queue and the per-retailer lock.
	RequireRedis bool
}

// App holds every wired component of the service.
type App struct {
	Config   *config.Config
	DB       *postgres.DB
	Redis    *goredis.Client
	Registry *profile.Registry

	Retailers  *postgres.RetailerRepoImpl
	Strategies []repository.ExtractionStrategy
	Sender     repository.NotificationSender

	Orchestrator *usecase.Orchestrator
	Alerts       *usecase.AlertMatcher
	Health       *usecase.HealthChecker

	// Jobs and Worker are nil when Redis is not connected.
	Jobs   *usecase.JobManager
	Worker *usecase.Worker
}

// Strategies builds the static and dynamic extraction strategies from cfg.
func Strategies(cfg config.ScraperConfig) []repository.ExtractionStrategy {
	fetcher := httpfetch.New(httpfetch.Options{
		UserAgent:         cfg.UserAgent,
		RespectRobots:     cfg.RespectRobots,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Timeout:           cfg.HTTPTimeout,
		MaxRetries:        cfg.MaxRetries,
	})
	return []repository.ExtractionStrategy{
		static_strategy.New(fetcher, cfg.NavigationTimeout),
		chromedp_strategy.New(chromedp_strategy.Options{
			ExecPath:          cfg.ChromePath,
			Headless:          cfg.Headless,
			UserAgent:         cfg.UserAgent,
			NavigationTimeout: cfg.NavigationTimeout,
			PaginationTimeout: cfg.PaginationTimeout,
		}),
	}
}

// NewSender returns a Mailgun sender when credentials are configured and a
// logging sender otherwise.
func NewSender(cfg *config.Config) (repository.NotificationSender, error) {
	if !cfg.Mailgun.Enabled() {
		slog.Warn("Mailgun is not configured, emails will only be logged")
		return mailgun.LogSender{}, nil
	}
	sender, err := mailgun.New(cfg.Mailgun, cfg.Alerts.AppURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create mailgun sender: %w", err)
	}
	return sender, nil
}

// New connects to the stores and wires the use cases.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	registry, err := profile.LoadRegistry(cfg.ProfilesFile)
	if err != nil {
		return nil, err
	}

	db, err := postgres.Open(ctx, cfg.Postgres.DSN(), cfg.Postgres.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	slog.Info("PostgreSQL connection pool established")

	a := &App{Config: cfg, DB: db, Registry: registry}

	rdb, err := redis.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	switch {
	case err != nil && opts.RequireRedis:
		a.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	case err != nil:
		slog.Warn("Redis unavailable, running without job queue and lock", "addr", cfg.Redis.Addr, "error", err)
	default:
		a.Redis = rdb
		slog.Info("Redis connection established")
	}

	sender, err := NewSender(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Sender = sender

	shoes := postgres.NewShoeRepo(db.SQL)
	prices := postgres.NewPriceRepo(db.SQL)
	a.Retailers = postgres.NewRetailerRepo(db.SQL)
	watchlists := postgres.NewWatchlistRepo(db.SQL)
	a.Strategies = Strategies(cfg.Scraper)

	orchestratorOpts := []usecase.OrchestratorOption{
		usecase.WithWorkers(cfg.Scraper.Workers),
		usecase.WithJobTimeout(cfg.Scraper.JobTimeout),
	}
	if a.Redis != nil {
		orchestratorOpts = append(orchestratorOpts, usecase.WithJobLock(redis.NewLockRepo(a.Redis), cfg.Redis.LockTTL))
	}

	reconciler := usecase.NewReconciler(shoes, prices, a.Retailers, nil)
	a.Orchestrator = usecase.NewOrchestrator(registry, a.Retailers, reconciler, a.Strategies, orchestratorOpts...)
	a.Alerts = usecase.NewAlertMatcher(watchlists, prices, a.Sender, cfg.Alerts.DefaultThreshold, cfg.Alerts.AppURL)
	a.Health = usecase.NewHealthChecker(postgres.NewHealthRepo(db.SQL), a.Retailers, shoes, prices)

	if a.Redis != nil {
		queue := redis.NewQueueRepo(a.Redis)
		a.Jobs = usecase.NewJobManager(registry, queue)
		a.Worker = usecase.NewWorker(queue, a.Orchestrator)
	}
	return a, nil
}

// SyncRetailers writes every registry profile into the retailers table.
func (a *App) SyncRetailers(ctx context.Context) error {
	for _, p := range a.Registry.All() {
		if err := a.Retailers.SaveProfile(ctx, p); err != nil {
			return fmt.Errorf("sync retailer %s: %w", p.ID, err)
		}
		slog.Info("Synced retailer", "retailer_id", p.ID, "enabled", p.Enabled)
	}
	return nil
}

// Close releases the store connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
