package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/contractor-compliance/internal/config"
	"github.com/kirillkom/contractor-compliance/internal/core/ports"
	"github.com/kirillkom/contractor-compliance/internal/core/registry"
	"github.com/kirillkom/contractor-compliance/internal/core/usecase"
	"github.com/kirillkom/contractor-compliance/internal/infrastructure/authz"
	"github.com/kirillkom/contractor-compliance/internal/infrastructure/notify/smtp"
	"github.com/kirillkom/contractor-compliance/internal/infrastructure/queue/nats"
	"github.com/kirillkom/contractor-compliance/internal/infrastructure/repository/memory"
	"github.com/kirillkom/contractor-compliance/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/contractor-compliance/internal/infrastructure/resilience"
	"github.com/kirillkom/contractor-compliance/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/contractor-compliance/internal/infrastructure/storage/s3"
	"github.com/kirillkom/contractor-compliance/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Store    ports.Store
	Registry *registry.Registry
	Storage  ports.ObjectStorage

	UploadUC    ports.DocumentUploader
	SubmitUC    ports.SubmissionCoordinator
	ReviewUC    ports.ReviewEngine
	SweepUC     ports.ExpirationSweeper
	ProvisionUC ports.FolderProvisioner
	OverrideUC  ports.StatusOverrider
	ProgressUC  ports.ProgressReader

	closeFn func()
}

// New wires the workflow for cmd/api and cmd/sweeper. Workflow metrics are
// registered on registerer when it is not nil.
func New(ctx context.Context, cfg config.Config, service string, logger *slog.Logger, registerer prometheus.Registerer) (*App, error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*App, error) {
		closeAll()
		return nil, err
	}

	reg, err := registry.Load(cfg.CategoryConfig)
	if err != nil {
		return nil, fmt.Errorf("load category registry: %w", err)
	}
	policy, err := authz.Load(cfg.AuthzPolicyPath)
	if err != nil {
		return nil, fmt.Errorf("load authz policy: %w", err)
	}

	var store ports.Store
	switch cfg.StoreDriver {
	case "memory":
		store = memory.NewStore(policy.Users()...)
		logger.Warn("using in-memory store; data is lost on restart", "seeded_users", len(policy.Users()))
	case "postgres", "":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		if cfg.MigrateOnStart {
			if err := postgres.Migrate(ctx, db); err != nil {
				return fail(fmt.Errorf("migrate schema: %w", err))
			}
		}
		store = postgres.NewStore(db)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	var (
		recorder ports.WorkflowRecorder
		observer resilience.StateObserver
	)
	if registerer != nil {
		wf := metrics.NewWorkflowMetrics(service, registerer)
		recorder, observer = wf, wf.ObserveBreakerState
	}

	var queue *nats.Queue
	if cfg.NotifyDriver == "nats" || cfg.ChangeEventsEnabled {
		executor := resilience.NewExecutor(resilience.PublishConfig(),
			resilience.WithLogger(logger),
			resilience.WithStateObserver(observer),
		)
		queue, err = nats.NewWithOptions(cfg.NATSURL, natsSubjects(cfg), nats.Options{
			Name:               service,
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			return fail(fmt.Errorf("init message queue: %w", err))
		}
		closers = append(closers, queue.Close)
	}

	var notifier ports.NotificationDispatcher
	switch cfg.NotifyDriver {
	case "nats":
		notifier = queue
	case "smtp":
		notifier = NewMailer(cfg, logger, observer)
	case "none", "":
	default:
		return fail(fmt.Errorf("unknown NOTIFY_DRIVER %q", cfg.NotifyDriver))
	}

	var changes ports.ChangeNotifier
	if cfg.ChangeEventsEnabled {
		changes = queue
	}

	storage, err := newStorage(ctx, cfg)
	if err != nil {
		return fail(err)
	}

	deps := usecase.Deps{
		Store:      store,
		Registry:   reg,
		Authorizer: policy,
		Changes:    changes,
		Recorder:   recorder,
		Logger:     logger,
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Registry: reg,
		Storage:  storage,

		UploadUC:    usecase.NewUploadDocumentUseCase(deps),
		SubmitUC:    usecase.NewSubmitSubfolderUseCase(deps, notifier, cfg.NotifyTimeout),
		ReviewUC:    usecase.NewReviewDocumentsUseCase(deps),
		SweepUC:     usecase.NewExpirationSweepUseCase(deps),
		ProvisionUC: usecase.NewFolderProvisioningUseCase(deps),
		OverrideUC:  usecase.NewOverrideStatusUseCase(deps),
		ProgressUC:  usecase.NewProgressUseCase(store, reg),

		closeFn: closeAll,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
		a.closeFn = nil
	}
}

func newStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.StorageDriver {
	case "localfs", "":
		storage, err := localfs.New(cfg.StoragePath, cfg.StoragePublicURL)
		if err != nil {
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		return storage, nil
	case "s3":
		storage, err := s3.New(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		return storage, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

func natsSubjects(cfg config.Config) nats.Subjects {
	return nats.Subjects{
		ReviewRequested: cfg.NATSReviewSubject,
		EntityChanged:   cfg.NATSEntityChangedSubject,
		WorkerGroup:     cfg.NATSWorkerGroup,
	}
}

// NewMailer builds the SMTP dispatcher with delivery-grade retries.
func NewMailer(cfg config.Config, logger *slog.Logger, observer resilience.StateObserver) *smtp.Mailer {
	executor := resilience.NewExecutor(resilience.DeliveryConfig(),
		resilience.WithLogger(logger),
		resilience.WithStateObserver(observer),
	)
	return smtp.NewMailer(smtp.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		From:      cfg.SMTPFrom,
		ReviewURL: cfg.ReviewBaseURL,
	}, executor)
}

// Worker is the email delivery side: it consumes review requests from NATS.
type Worker struct {
	Queue  *nats.Queue
	Mailer *smtp.Mailer
}

func NewWorker(cfg config.Config, service string, logger *slog.Logger, registerer prometheus.Registerer) (*Worker, error) {
	var observer resilience.StateObserver
	if registerer != nil {
		observer = metrics.NewWorkflowMetrics(service, registerer).ObserveBreakerState
	}
	queue, err := nats.NewWithOptions(cfg.NATSURL, natsSubjects(cfg), nats.Options{
		Name:   service,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}
	return &Worker{Queue: queue, Mailer: NewMailer(cfg, logger, observer)}, nil
}

func (w *Worker) Close() {
	w.Queue.Close()
}
