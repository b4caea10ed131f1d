package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/sealevel/internal/analysis"
	"github.com/JakeFAU/sealevel/internal/app"
	"github.com/JakeFAU/sealevel/internal/config"
	"github.com/JakeFAU/sealevel/internal/crawler"
	"github.com/JakeFAU/sealevel/internal/logging"
	"github.com/JakeFAU/sealevel/internal/sealevel"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. It's a variable so tests can inject
// a fake clock or blob store.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app.App, error) {
	return app.New(ctx, cfg, logger)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "sealevel",
		Short: "Crawl, animate and analyze Hong Kong Observatory sea level data.",
		Long: `sealevel downloads the yearly tide table published by the Hong Kong
Observatory, keeps the Quarry Bay (QUB) station's annual water levels as CSV,
and turns them into a polar animation, a statistical report with figures, or
a small HTTP API over the latest dataset.`,
		SilenceUsage: true,

		// Runs before every subcommand: load config, build the logger and
		// inject the application services.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)

			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			appInstance, ok := cmd.Context().Value(appKey).(*app.App)
			if !ok || appInstance == nil {
				return
			}
			appInstance.Close()
			// Syncing stderr/stdout fails on some terminals; nothing useful to do about it.
			_ = appInstance.Logger().Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); SEALEVEL_* environment variables override it")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newAnimateCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		zap.L().Error("Command execution failed", zap.Error(err))
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// cleanExit turns "nothing to work on" conditions into a logged message and
// a nil error so the process exits zero.
func cleanExit(logger *zap.Logger, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sealevel.ErrDatasetNotFound):
		logger.Warn("Data file not found", zap.Error(err))
	case errors.Is(err, crawler.ErrStationNotFound):
		logger.Warn("Station data not found", zap.Error(err))
	case errors.Is(err, sealevel.ErrEmptyDataset), errors.Is(err, analysis.ErrInsufficientData):
		logger.Warn("No usable sea level data", zap.Error(err))
	default:
		return err
	}
	return nil
}
