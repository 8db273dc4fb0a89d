package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/speedsale-scraper/internal/adapter/mailgun"
	"github.com/user/speedsale-scraper/internal/adapter/postgres"
	"github.com/user/speedsale-scraper/internal/app"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Match watchlists against the latest prices and send alerts",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Alerts.MatchAndNotify(ctx)
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database reachability and retailer configuration",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		report := a.Health.Check(ctx)
		if err := printJSON(report); err != nil {
			return err
		}
		if !report.Healthy {
			return fmt.Errorf("health check failed")
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or inspect database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		command := "up"
		if len(args) == 1 {
			command = args[0]
		}
		db, err := postgres.Open(ctx, cfg.Postgres.DSN(), cfg.Postgres.MaxConns)
		if err != nil {
			return err
		}
		defer db.Close()
		return postgres.Migrate(db.SQL, command)
	},
}

var syncRetailersCmd = &cobra.Command{
	Use:   "sync-retailers",
	Short: "Write the retailer profiles into the retailers table",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()
		return a.SyncRetailers(ctx)
	},
}

var testEmailCmd = &cobra.Command{
	Use:   "test-email [to]",
	Short: "Send a sample price alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := app.NewSender(cfg)
		if err != nil {
			return err
		}
		if !mailgun.SendTestEmail(cmd.Context(), sender, args[0]) {
			return fmt.Errorf("failed to send test email to %s", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "test email sent to %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd, healthCmd, migrateCmd, syncRetailersCmd, testEmailCmd)
}
