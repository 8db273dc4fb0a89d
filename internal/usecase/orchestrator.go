package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
	"github.com/user/speedsale-scraper/pkg/metrics"
)

const (
	stageConfig    = "config"
	stageLock      = "lock"
	stageExtract   = "extract"
	stageReconcile = "reconcile"

	defaultLockTTL = 30 * time.Minute
)

// ProfileRegistry looks up retailer profiles by id.
type ProfileRegistry interface {
	Get(id string) (*entity.RetailerProfile, bool)
	All() []*entity.RetailerProfile
}

// Scraper runs scraping jobs.
type Scraper interface {
	RunJob(ctx context.Context, job entity.ScrapingJob) *entity.JobResult
	RunDue(ctx context.Context) []*entity.JobResult
	RunAll(ctx context.Context) []*entity.JobResult
}

// Orchestrator runs one job end to end: checks, extraction, reconciliation.
// It never returns an error; every failure lands in JobResult.Errors.
type Orchestrator struct {
	registry   ProfileRegistry
	retailers  repository.RetailerRepository
	strategies map[entity.StrategyKind]repository.ExtractionStrategy
	reconciler ProductReconciler

	lock       repository.JobLock
	lockTTL    time.Duration
	workers    int
	jobTimeout time.Duration
	now        func() time.Time
}

type OrchestratorOption func(*Orchestrator)

// WithJobLock serialises jobs per retailer across processes.
func WithJobLock(lock repository.JobLock, ttl time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.lock = lock
		if ttl > 0 {
			o.lockTTL = ttl
		}
	}
}

// WithWorkers bounds how many retailers RunDue and RunAll scrape at once.
func WithWorkers(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithJobTimeout bounds the total duration of one job.
func WithJobTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.jobTimeout = d }
}

func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator creates an Orchestrator over the given strategies.
func NewOrchestrator(
	registry ProfileRegistry,
	retailers repository.RetailerRepository,
	reconciler ProductReconciler,
	strategies []repository.ExtractionStrategy,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		registry:   registry,
		retailers:  retailers,
		reconciler: reconciler,
		strategies: make(map[entity.StrategyKind]repository.ExtractionStrategy, len(strategies)),
		lockTTL:    defaultLockTTL,
		workers:    1,
		now:        time.Now,
	}
	for _, s := range strategies {
		o.strategies[s.Kind()] = s
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunJob executes one scraping job and summarises it.
func (o *Orchestrator) RunJob(ctx context.Context, job entity.ScrapingJob) (result *entity.JobResult) {
	start := o.now()
	result = &entity.JobResult{RetailerID: job.RetailerID, Category: job.Category, Errors: []string{}}
	log := slog.With("retailer_id", job.RetailerID, "job_id", job.ID)

	if o.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.jobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Scraping job panicked", "panic", r)
			result.Success = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Scraping failed: %v", stageExtract, r))
		}
		elapsed := o.now().Sub(start)
		result.DurationMs = elapsed.Milliseconds()

		status := "failure"
		if result.Success {
			status = "success"
		}
		metrics.ScrapeJobsTotal.WithLabelValues(job.RetailerID, status).Inc()
		metrics.ScrapeJobDuration.WithLabelValues(job.RetailerID).Observe(elapsed.Seconds())
		log.Info("Scraping job finished",
			"success", result.Success,
			"products_found", result.ProductsFound,
			"products_saved", result.ProductsSaved,
			"errors", len(result.Errors),
			"duration_ms", result.DurationMs,
		)
	}()

	fail := func(stage, format string, args ...any) *entity.JobResult {
		msg := fmt.Sprintf(format, args...)
		log.Warn("Scraping job failed", "stage", stage, "error", msg)
		result.Errors = append(result.Errors, stage+": "+msg)
		return result
	}

	state, err := o.retailers.Get(ctx, job.RetailerID)
	switch {
	case errors.Is(err, repository.ErrRetailerNotFound):
		return fail(stageConfig, "Retailer %s is disabled in database", job.RetailerID)
	case err != nil:
		return fail(stageConfig, "Database error: %v", err)
	case !state.Enabled:
		return fail(stageConfig, "Retailer %s is disabled in database", job.RetailerID)
	}

	profile, ok := o.registry.Get(job.RetailerID)
	if !ok {
		return fail(stageConfig, "Retailer configuration not found for %s", job.RetailerID)
	}
	if !profile.Enabled {
		return fail(stageConfig, "Retailer %s is disabled in configuration", job.RetailerID)
	}

	strategy, ok := o.strategies[profile.Strategy]
	if !ok {
		return fail(stageConfig, "Unknown scraping method: %s", profile.Strategy)
	}

	category := job.Category
	if category == "" {
		category = profile.DefaultCategory
		result.Category = category
	}

	if o.lock != nil {
		acquired, err := o.lock.Acquire(ctx, job.RetailerID, o.lockTTL)
		if err != nil {
			return fail(stageLock, "Could not acquire job lock: %v", err)
		}
		if !acquired {
			return fail(stageLock, "%v: %s", repository.ErrLockNotAcquired, job.RetailerID)
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := o.lock.Release(releaseCtx, job.RetailerID); err != nil {
				log.Warn("Failed to release job lock", "error", err)
			}
		}()
	}

	log.Info("Processing scraping job", "retailer", profile.Name, "category", category, "strategy", profile.Strategy)

	products, err := strategy.Extract(ctx, profile, category)
	if err != nil {
		return fail(stageExtract, "Scraping failed: %v", err)
	}
	result.ProductsFound = len(products)
	metrics.ScrapedProducts.WithLabelValues(job.RetailerID, "found").Add(float64(len(products)))
	if len(products) == 0 {
		return fail(stageExtract, "No products found during scraping")
	}

	saved, err := o.reconciler.Reconcile(ctx, products, job.RetailerID)
	result.ProductsSaved = saved
	metrics.ScrapedProducts.WithLabelValues(job.RetailerID, "saved").Add(float64(saved))
	if err != nil {
		return fail(stageReconcile, "Database error: %v", err)
	}

	if err := o.retailers.SaveProfile(ctx, profile); err != nil {
		log.Warn("Failed to refresh scraping config", "error", err)
	}

	result.Success = true
	return result
}

// RunDue scrapes every enabled retailer whose interval has elapsed.
func (o *Orchestrator) RunDue(ctx context.Context) []*entity.JobResult {
	now := o.now()
	var jobs []entity.ScrapingJob
	var early []*entity.JobResult

	for _, p := range o.registry.All() {
		if !p.Enabled {
			continue
		}
		state, err := o.retailers.Get(ctx, p.ID)
		if err != nil {
			if errors.Is(err, repository.ErrRetailerNotFound) {
				slog.Info("Skipping retailer, disabled in database", "retailer_id", p.ID)
				continue
			}
			slog.Error("Failed to check retailer schedule", "retailer_id", p.ID, "error", err)
			early = append(early, &entity.JobResult{
				RetailerID: p.ID,
				Errors:     []string{fmt.Sprintf("%s: Database error: %v", stageConfig, err)},
			})
			continue
		}
		if !state.Enabled {
			slog.Info("Skipping retailer, disabled in database", "retailer_id", p.ID)
			continue
		}
		if !state.IsDue(now) {
			slog.Info("Skipping retailer, not due", "retailer_id", p.ID, "next_run", state.NextRun())
			continue
		}
		jobs = append(jobs, entity.ScrapingJob{RetailerID: p.ID, Priority: entity.PriorityMedium})
	}

	return append(early, o.runPool(ctx, jobs)...)
}

// RunAll scrapes every enabled retailer regardless of schedule.
func (o *Orchestrator) RunAll(ctx context.Context) []*entity.JobResult {
	var jobs []entity.ScrapingJob
	for _, p := range o.registry.All() {
		if p.Enabled {
			jobs = append(jobs, entity.ScrapingJob{RetailerID: p.ID, Priority: entity.PriorityMedium})
		}
	}
	return o.runPool(ctx, jobs)
}

// runPool runs jobs on at most o.workers goroutines. Results keep job order.
func (o *Orchestrator) runPool(ctx context.Context, jobs []entity.ScrapingJob) []*entity.JobResult {
	results := make([]*entity.JobResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = o.RunJob(gctx, job)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
