package repository

import (
	"context"
	"time"

	"github.com/user/speedsale-scraper/internal/entity"
)

// ExtractionStrategy turns a retailer's category pages into scraped products.
type ExtractionStrategy interface {
	Kind() entity.StrategyKind
	Extract(ctx context.Context, profile *entity.RetailerProfile, category string) ([]entity.ScrapedProduct, error)
}

// NotificationSender delivers alert and welcome emails. Failures are logged and reported as false.
type NotificationSender interface {
	SendPriceAlert(ctx context.Context, alert *entity.PriceAlert) bool
	SendWelcomeEmail(ctx context.Context, welcome *entity.WelcomeEmail) bool
}

// JobQueue defines the interface for pending scraping jobs.
type JobQueue interface {
	// Push enqueues a job. High priority jobs are served first.
	Push(ctx context.Context, job *entity.ScrapingJob) error
	// Pop removes the next job, or returns ErrQueueEmpty.
	Pop(ctx context.Context) (*entity.ScrapingJob, error)
	// Size returns the number of pending jobs.
	Size(ctx context.Context) (int64, error)
}

// JobLock keeps two workers from scraping the same retailer at once.
type JobLock interface {
	// Acquire reports whether the lock was taken. It expires after ttl.
	Acquire(ctx context.Context, retailerID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, retailerID string) error
}
