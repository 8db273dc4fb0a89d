package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/user/speedsale-scraper/internal/app"
	"github.com/user/speedsale-scraper/internal/usecase"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run due scrapes, price alerts and health checks on their intervals",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(_ *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(ctx, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	s := usecase.NewScheduler(
		usecase.ScheduledTask{
			Name:  "scrape-due",
			Every: cfg.Schedule.ScrapeEvery,
			Run: func(ctx context.Context) {
				a.Orchestrator.RunDue(ctx)
			},
		},
		usecase.ScheduledTask{
			Name:  "analyse-prices",
			Every: cfg.Schedule.AlertsEvery,
			Run: func(ctx context.Context) {
				if _, err := a.Alerts.MatchAndNotify(ctx); err != nil {
					slog.Error("Price analysis failed", "error", err)
				}
			},
		},
		usecase.ScheduledTask{
			Name:  "health-check",
			Every: cfg.Schedule.HealthEvery,
			Run: func(ctx context.Context) {
				if report := a.Health.Check(ctx); !report.Healthy {
					slog.Error("Scheduled health check failed", "database_error", report.DatabaseError)
				}
			},
		},
	)

	slog.Info("Scheduler started")
	if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
