package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// ScheduledTask runs fn every Every. A run never overlaps the previous one.
type ScheduledTask struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context)
}

// Scheduler drives periodic tasks until its context ends.
type Scheduler struct {
	tasks []ScheduledTask
}

func NewScheduler(tasks ...ScheduledTask) *Scheduler {
	return &Scheduler{tasks: tasks}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range s.tasks {
		if t.Every <= 0 {
			slog.Warn("Scheduled task disabled", "task", t.Name)
			continue
		}
		slog.Info("Scheduled task", "task", t.Name, "every", t.Every.String())
		g.Go(func() error {
			ticker := time.NewTicker(t.Every)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					s.runOnce(ctx, t)
				}
			}
		})
	}
	err := g.Wait()
	slog.Info("Scheduler stopped")
	return err
}

func (s *Scheduler) runOnce(ctx context.Context, t ScheduledTask) {
	start := time.Now()
	slog.Info("Starting scheduled task", "task", t.Name)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Scheduled task panicked", "task", t.Name, "panic", r)
		}
	}()
	t.Run(ctx)
	slog.Info("Scheduled task finished", "task", t.Name, "duration_ms", time.Since(start).Milliseconds())
}
