package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/bootstrap"
	"github.com/kirillkom/contractor-compliance/internal/config"
	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/observability/logging"
	"github.com/kirillkom/contractor-compliance/internal/observability/metrics"
)

const service = "compliance-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(service)
	worker, err := bootstrap.NewWorker(cfg, service, logger, workerMetrics.Registry())
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer worker.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSReviewSubject, "group", cfg.NATSWorkerGroup)
	err = worker.Queue.SubscribeReviewRequests(ctx, func(handlerCtx context.Context, req domain.ReviewRequest) error {
		start := time.Now()
		if !req.SubmittedAt.IsZero() {
			workerMetrics.ObserveQueueLag(service, start.Sub(req.SubmittedAt))
		}
		workerMetrics.StartDelivery()

		deliverCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()
		err := worker.Mailer.NotifyReviewRequested(deliverCtx, req)

		workerMetrics.FinishDelivery(service, time.Since(start), err)
		if err == nil {
			logger.Info("review_request_delivered", "subfolder_id", req.SubfolderID, "recipients", len(req.Recipients))
		}
		return err
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
