package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/infrastructure/resilience"
)

// Subjects names the broker subjects used by the workflow.
type Subjects struct {
	ReviewRequested string
	EntityChanged   string
	// WorkerGroup is the queue group shared by email delivery workers.
	WorkerGroup string
}

type Options struct {
	Name                 string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

type publisher interface {
	PublishMsg(msg *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

// Queue publishes review requests and change events, and feeds review
// requests to the email worker.
type Queue struct {
	conn     *nats.Conn
	pub      publisher
	subjects Subjects
	executor *resilience.Executor
	logger   *slog.Logger
}

func NewWithOptions(url string, subjects Subjects, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	name := options.Name
	if name == "" {
		name = "contractor-compliance"
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	conn, err := nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	q := newQueue(conn, subjects, options.ResilienceExecutor, logger)
	q.conn = conn
	return q, nil
}

func newQueue(pub publisher, subjects Subjects, executor *resilience.Executor, logger *slog.Logger) *Queue {
	if subjects.WorkerGroup == "" {
		subjects.WorkerGroup = "notifiers"
	}
	return &Queue{pub: pub, subjects: subjects, executor: executor, logger: logger}
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// NotifyReviewRequested hands the request to the email workers. The message id
// lets JetStream-enabled subjects drop duplicates of the same submission.
func (q *Queue) NotifyReviewRequested(ctx context.Context, req domain.ReviewRequest) error {
	msgID := fmt.Sprintf("%s:%d", req.SubfolderID, req.SubmittedAt.UnixNano())
	return q.publishJSON(ctx, "nats.publish.review_requested", q.subjects.ReviewRequested, msgID, req)
}

func (q *Queue) EntityChanged(ctx context.Context, event domain.ChangeEvent) error {
	return q.publishJSON(ctx, "nats.publish.entity_changed", q.subjects.EntityChanged, "", event)
}

func (q *Queue) publishJSON(ctx context.Context, operation, subject, msgID string, payload any) error {
	if subject == "" {
		return fmt.Errorf("%s: subject is not configured", operation)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal payload: %w", operation, err)
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set("Content-Type", "application/json")
	if msgID != "" {
		msg.Header.Set(nats.MsgIdHdr, msgID)
	}

	call := func(callCtx context.Context) error {
		if err := q.pub.PublishMsg(msg); err != nil {
			return wrapTemporaryIfNeeded(fmt.Errorf("nats publish: %w", err))
		}
		if err := q.pub.FlushWithContext(callCtx); err != nil {
			return wrapTemporaryIfNeeded(fmt.Errorf("nats flush: %w", err))
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, operation, call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeReviewRequests blocks until ctx is done, then drains the subscription.
func (q *Queue) SubscribeReviewRequests(ctx context.Context, handler func(context.Context, domain.ReviewRequest) error) error {
	if q.conn == nil {
		return errors.New("nats subscribe: not connected")
	}
	sub, err := q.conn.QueueSubscribe(q.subjects.ReviewRequested, q.subjects.WorkerGroup, func(msg *nats.Msg) {
		if ctx.Err() != nil {
			return
		}
		q.handleReviewRequest(ctx, msg.Data, handler)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func (q *Queue) handleReviewRequest(ctx context.Context, data []byte, handler func(context.Context, domain.ReviewRequest) error) {
	var req domain.ReviewRequest
	if err := json.Unmarshal(data, &req); err != nil {
		q.logger.Error("review_request_decode_failed", "error", err, "bytes", len(data))
		return
	}
	handlerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := handler(handlerCtx, req); err != nil {
		q.logger.Error("review_request_handler_failed", "subfolder_id", req.SubfolderID, "error", err)
	}
}
