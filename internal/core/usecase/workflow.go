package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/core/ports"
	"github.com/kirillkom/contractor-compliance/internal/core/registry"
)

// Deps bundles the collaborators shared by every workflow use case.
// Changes, Recorder, Logger and Now are optional.
type Deps struct {
	Store      ports.Store
	Registry   *registry.Registry
	Authorizer ports.Authorizer
	Changes    ports.ChangeNotifier
	Recorder   ports.WorkflowRecorder
	Logger     *slog.Logger
	Now        func() time.Time
}

type workflow struct {
	store    ports.Store
	registry *registry.Registry
	authz    ports.Authorizer
	changes  ports.ChangeNotifier
	recorder ports.WorkflowRecorder
	logger   *slog.Logger
	now      func() time.Time
}

func newWorkflow(d Deps) workflow {
	w := workflow{
		store:    d.Store,
		registry: d.Registry,
		authz:    d.Authorizer,
		changes:  d.Changes,
		recorder: d.Recorder,
		logger:   d.Logger,
		now:      d.Now,
	}
	if w.changes == nil {
		w.changes = noopChanges{}
	}
	if w.recorder == nil {
		w.recorder = noopRecorder{}
	}
	if w.logger == nil {
		w.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if w.now == nil {
		w.now = func() time.Time { return time.Now().UTC() }
	}
	return w
}

func (w workflow) authorize(ctx context.Context, operation, userID string, action domain.Action) error {
	if strings.TrimSpace(userID) == "" {
		return domain.Validation(operation, "acting user id is required")
	}
	allowed, err := w.authz.CanMutate(ctx, userID, action)
	if err != nil {
		return fmt.Errorf("%s: authorize %s: %w", operation, action, err)
	}
	if !allowed {
		return domain.WrapError(domain.ErrPermissionDenied, operation, fmt.Errorf("user %s may not %s", userID, action))
	}
	return nil
}

func (w workflow) observe(operation string, start time.Time, err error) {
	w.recorder.ObserveOperation(operation, err, time.Since(start))
	if domain.IsKind(err, domain.ErrPersistence) {
		w.logger.Error("workflow_persistence_failure", "operation", operation, "error", err)
	}
}

func (w workflow) emit(ctx context.Context, event domain.ChangeEvent) {
	if event.At.IsZero() {
		event.At = w.now()
	}
	if err := w.changes.EntityChanged(context.WithoutCancel(ctx), event); err != nil {
		w.logger.Warn("entity_changed_publish_failed",
			"kind", string(event.Kind),
			"subfolder_id", event.SubfolderID,
			"startup_folder_id", event.StartupFolderID,
			"error", err,
		)
	}
}

func (w workflow) descriptor(operation string, category domain.Category) (registry.Descriptor, error) {
	d, err := w.registry.Lookup(category)
	if err != nil {
		return registry.Descriptor{}, fmt.Errorf("%s: %w", operation, err)
	}
	return d, nil
}

// inTx runs fn in one transaction, tagging untyped failures as persistence errors.
func (w workflow) inTx(ctx context.Context, operation string, fn func(ctx context.Context, tx ports.Repositories) error) error {
	err := w.store.InTx(ctx, fn)
	if err == nil || domain.Kind(err) != nil {
		return err
	}
	return domain.Persistence(operation, err)
}

func requireID(operation, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.Validation(operation, "%s is required", field)
	}
	return nil
}

// requireSingleLine refuses labels that would break a header or a CSV row.
func requireSingleLine(operation, field, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return domain.Validation(operation, "%s must be a single line", field)
	}
	return nil
}

// uniqueIDs trims, drops blanks and deduplicates while keeping order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func documentIDs(docs []domain.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

// groupBySubfolder maps subfolder id to its document ids, with stable key order.
func groupBySubfolder(docs []domain.Document) ([]string, map[string][]string) {
	groups := make(map[string][]string)
	for _, d := range docs {
		groups[d.SubfolderID] = append(groups[d.SubfolderID], d.ID)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, groups
}

type noopChanges struct{}

func (noopChanges) EntityChanged(context.Context, domain.ChangeEvent) error { return nil }

type noopRecorder struct{}

func (noopRecorder) ObserveOperation(string, error, time.Duration) {}
func (noopRecorder) ObserveExpired(int)                            {}
func (noopRecorder) ObserveNotification(error)                     {}
