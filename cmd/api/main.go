package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/contractor-compliance/internal/adapters/http"
	"github.com/kirillkom/contractor-compliance/internal/bootstrap"
	"github.com/kirillkom/contractor-compliance/internal/config"
	"github.com/kirillkom/contractor-compliance/internal/infrastructure/report/xlsx"
	"github.com/kirillkom/contractor-compliance/internal/observability/logging"
	"github.com/kirillkom/contractor-compliance/internal/observability/metrics"
)

const service = "compliance-api"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(service)
	app, err := bootstrap.New(ctx, cfg, service, logger, httpMetrics.Registry())
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, httpadapter.Services{
		Uploader:    app.UploadUC,
		Submissions: app.SubmitUC,
		Reviews:     app.ReviewUC,
		Sweeper:     app.SweepUC,
		Folders:     app.ProvisionUC,
		Overrides:   app.OverrideUC,
		Progress:    app.ProgressUC,
		Storage:     app.Storage,
		Exporter:    xlsx.NewExporter(),
	}, httpMetrics, logger).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort, "store", cfg.StoreDriver, "notify", cfg.NotifyDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}
