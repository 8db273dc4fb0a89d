package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/user/speedsale-scraper/internal/app"
	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/profile"
)

var runCmd = &cobra.Command{
	Use:   "run [retailer] [category]",
	Short: "Scrape one retailer category and save the results",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runScrape,
}

var runDueCmd = &cobra.Command{
	Use:   "run-due",
	Short: "Scrape every enabled retailer whose interval has elapsed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBatch(cmd, func(a *app.App) []*entity.JobResult {
			return a.Orchestrator.RunDue(cmd.Context())
		})
	},
}

var runAllCmd = &cobra.Command{
	Use:   "run-all",
	Short: "Scrape every enabled retailer regardless of schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBatch(cmd, func(a *app.App) []*entity.JobResult {
			return a.Orchestrator.RunAll(cmd.Context())
		})
	},
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "Extract and print products without touching the database")
	rootCmd.AddCommand(runCmd, runDueCmd, runAllCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	retailerID := args[0]
	category := ""
	if len(args) > 1 {
		category = args[1]
	}
	ctx, cancel := signalContext()
	defer cancel()

	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		return dryRun(ctx, retailerID, category)
	}

	a, err := openApp(ctx, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.Orchestrator.RunJob(ctx, entity.ScrapingJob{
		RetailerID: retailerID,
		Category:   category,
		Priority:   entity.PriorityHigh,
	})
	if err := printJSON(result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("scraping %s failed", retailerID)
	}
	return nil
}

// dryRun runs the retailer's strategy directly and prints what it found.
func dryRun(ctx context.Context, retailerID, category string) error {
	registry, err := profile.LoadRegistry(cfg.ProfilesFile)
	if err != nil {
		return err
	}
	p, ok := registry.Get(retailerID)
	if !ok {
		return fmt.Errorf("retailer configuration not found for %s", retailerID)
	}
	if category == "" {
		category = p.DefaultCategory
	}

	for _, s := range app.Strategies(cfg.Scraper) {
		if s.Kind() != p.Strategy {
			continue
		}
		slog.Info("Dry run", "retailer_id", retailerID, "category", category, "strategy", p.Strategy)
		products, err := s.Extract(ctx, p, category)
		if err != nil {
			return fmt.Errorf("scraping failed: %w", err)
		}
		return printJSON(products)
	}
	return fmt.Errorf("unknown scraping method: %s", p.Strategy)
}

func runBatch(cmd *cobra.Command, run func(a *app.App) []*entity.JobResult) error {
	ctx, cancel := signalContext()
	defer cancel()
	cmd.SetContext(ctx)

	a, err := openApp(ctx, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	results := run(a)
	if results == nil {
		results = []*entity.JobResult{}
	}
	if err := printJSON(results); err != nil {
		return err
	}

	var failed []error
	for _, r := range results {
		if !r.Success {
			failed = append(failed, fmt.Errorf("%s: %v", r.RetailerID, r.Errors))
		}
	}
	return errors.Join(failed...)
}
