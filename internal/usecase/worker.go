package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/speedsale-scraper/internal/repository"
	"github.com/user/speedsale-scraper/pkg/metrics"
)

// Worker consumes scraping jobs from the queue.
type Worker struct {
	queue   repository.JobQueue
	scraper Scraper
}

func NewWorker(queue repository.JobQueue, scraper Scraper) *Worker {
	return &Worker{queue: queue, scraper: scraper}
}

// ProcessNext pops a single job and runs it. It reports false when the queue
// was empty.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.queue.Pop(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrQueueEmpty) {
			// Queue is empty, which is a normal state.
			return false, nil
		}
		return false, fmt.Errorf("failed to pop job from queue: %w", err)
	}
	w.reportDepth(ctx)

	slog.Info("Processing job from queue", "job_id", job.ID, "retailer_id", job.RetailerID, "priority", job.Priority)
	result := w.scraper.RunJob(ctx, *job)
	if !result.Success {
		slog.Warn("Queued job failed", "job_id", job.ID, "retailer_id", job.RetailerID, "errors", result.Errors)
	}
	return true, nil
}

// Run drains the queue, sleeping for poll whenever it is empty, until ctx ends.
func (w *Worker) Run(ctx context.Context, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		processed, err := w.ProcessNext(ctx)
		if err != nil {
			slog.Error("Worker failed to process job", "error", err)
		}
		if processed {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Worker) reportDepth(ctx context.Context) {
	size, err := w.queue.Size(ctx)
	if err != nil {
		slog.Debug("Failed to read queue depth", "error", err)
		return
	}
	metrics.JobQueueDepth.Set(float64(size))
}
