package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/speedsale-scraper/internal/app"
	"github.com/user/speedsale-scraper/internal/entity"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue [retailer] [category]",
	Short: "Queue a scraping job for the worker",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runEnqueue,
}

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Consume queued scraping jobs",
	Args:  cobra.NoArgs,
	RunE:  runWork,
}

func init() {
	enqueueCmd.Flags().String("priority", string(entity.PriorityMedium), "Job priority: high, medium, low")
	workCmd.Flags().Bool("once", false, "Process at most one job and exit")
	workCmd.Flags().Duration("poll", 5*time.Second, "How long to wait when the queue is empty")
	rootCmd.AddCommand(enqueueCmd, workCmd)
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	category := ""
	if len(args) > 1 {
		category = args[1]
	}
	priority, _ := cmd.Flags().GetString("priority")

	a, err := openApp(ctx, app.Options{RequireRedis: true})
	if err != nil {
		return err
	}
	defer a.Close()

	job, err := a.Jobs.Submit(ctx, args[0], category, entity.JobPriority(priority))
	if err != nil {
		return err
	}
	slog.Info("Job submitted", "job_id", job.ID, "retailer_id", job.RetailerID, "priority", job.Priority)
	return printJSON(job)
}

func runWork(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	once, _ := cmd.Flags().GetBool("once")
	poll, _ := cmd.Flags().GetDuration("poll")

	a, err := openApp(ctx, app.Options{RequireRedis: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if once {
		processed, err := a.Worker.ProcessNext(ctx)
		if err != nil {
			return err
		}
		if !processed {
			fmt.Fprintln(cmd.OutOrStdout(), "queue is empty")
		}
		return nil
	}

	slog.Info("Worker started", "poll", poll.String())
	if err := a.Worker.Run(ctx, poll); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("Worker stopped")
	return nil
}
