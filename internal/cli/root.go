package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/speedsale-scraper/internal/app"
	"github.com/user/speedsale-scraper/pkg/config"
	"github.com/user/speedsale-scraper/pkg/logger"
	"github.com/user/speedsale-scraper/pkg/metrics"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "speedsale",
	Short:         "SpeedSale - running shoe price scraper",
	Long:          "Scrapes retailer catalogs into the shoe price ledger and sends price drop alerts.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("log-level"); v != "" {
			cfg.LogLevel = v
		}
		if v, _ := cmd.Flags().GetString("profiles"); v != "" {
			cfg.ProfilesFile = v
		}
		logger.Init(os.Stderr, logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)
		metrics.Init()
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("profiles", "", "Path to a retailer profiles file")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openApp(ctx context.Context, opts app.Options) (*app.App, error) {
	return app.New(ctx, cfg, opts)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
