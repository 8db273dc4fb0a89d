package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
	"github.com/user/speedsale-scraper/pkg/metrics"
)

var ErrInvalidPriority = errors.New("invalid job priority")

// JobManager submits scraping jobs to the queue.
type JobManager struct {
	registry ProfileRegistry
	queue    repository.JobQueue
	now      func() time.Time
}

func NewJobManager(registry ProfileRegistry, queue repository.JobQueue) *JobManager {
	return &JobManager{registry: registry, queue: queue, now: time.Now}
}

// Submit enqueues a job for a known retailer and returns it.
func (m *JobManager) Submit(ctx context.Context, retailerID, category string, priority entity.JobPriority) (*entity.ScrapingJob, error) {
	if _, ok := m.registry.Get(retailerID); !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrRetailerNotFound, retailerID)
	}
	switch priority {
	case entity.PriorityHigh, entity.PriorityMedium, entity.PriorityLow:
	case "":
		priority = entity.PriorityMedium
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}

	at := m.now()
	job := &entity.ScrapingJob{
		ID:          uuid.NewString(),
		RetailerID:  retailerID,
		Category:    category,
		Priority:    priority,
		ScheduledAt: &at,
	}
	if err := m.queue.Push(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue job for %s: %w", retailerID, err)
	}
	if size, err := m.queue.Size(ctx); err == nil {
		metrics.JobQueueDepth.Set(float64(size))
	}
	return job, nil
}
