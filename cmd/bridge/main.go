package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/HaliroESG/portfolio-project/internal/app"
	"github.com/HaliroESG/portfolio-project/internal/common"
)

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config file (default: BRIDGE_CONFIG or bridge.toml next to the binary)")
	portfolio := flag.String("portfolio", "", "portfolio name override")
	schedule := flag.String("schedule", "", "cron expression; when set, runs on schedule instead of once")
	flag.Parse()

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if *portfolio != "" {
		a.Config.Portfolio = *portfolio
	}

	common.PrintBanner(a.Config, a.Logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *schedule == "" {
		if err := runOnce(ctx, a); err != nil {
			os.Exit(1)
		}
		return
	}

	runScheduled(ctx, a, *schedule)
}

func runOnce(ctx context.Context, a *app.App) error {
	report, err := a.Run(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Batch run failed")
		return err
	}
	if report.Failed > 0 {
		a.Logger.Warn().Int("failed", report.Failed).Msg("Batch run completed with failures")
	}
	return nil
}

// runScheduled runs the batch on a cron schedule until interrupted.
// Overlapping runs are skipped.
func runScheduled(ctx context.Context, a *app.App, spec string) {
	running := make(chan struct{}, 1)

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		select {
		case running <- struct{}{}:
			defer func() { <-running }()
		default:
			a.Logger.Warn().Msg("Previous batch run still in progress, skipping")
			return
		}
		_ = runOnce(ctx, a)
	})
	if err != nil {
		a.Logger.Fatal().Err(err).Str("schedule", spec).Msg("Invalid cron schedule")
	}

	a.Logger.Info().Str("schedule", spec).Msg("Scheduler started")
	c.Start()

	<-ctx.Done()
	a.Logger.Info().Msg("Shutdown signal received")

	stopCtx := c.Stop()
	<-stopCtx.Done()
	a.Logger.Info().Msg("Scheduler stopped")
}
