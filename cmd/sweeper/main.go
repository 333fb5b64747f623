// Command sweeper runs one expiration sweep and exits; schedule it with cron.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/bootstrap"
	"github.com/kirillkom/contractor-compliance/internal/config"
	"github.com/kirillkom/contractor-compliance/internal/observability/logging"
)

const service = "compliance-sweeper"

func main() {
	at := flag.String("at", "", "sweep as of this RFC 3339 instant instead of now")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for the sweep")
	flag.Parse()

	cfg := config.Load()
	cfg.NotifyDriver = "none"
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

	var now time.Time
	if *at != "" {
		parsed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			logger.Error("invalid_at_flag", "value", *at, "error", err)
			os.Exit(2)
		}
		now = parsed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, service, logger, nil)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ids, err := app.SweepUC.Sweep(ctx, now)
	if err != nil {
		logger.Error("expiration_sweep_failed", "error", err)
		app.Close()
		os.Exit(1)
	}
	logger.Info("expiration_sweep_finished", "expired", len(ids))
}
