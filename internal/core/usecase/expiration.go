package usecase

import (
	"context"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/core/ports"
)

type ExpirationSweepUseCase struct {
	workflow
}

func NewExpirationSweepUseCase(deps Deps) *ExpirationSweepUseCase {
	return &ExpirationSweepUseCase{workflow: newWorkflow(deps)}
}

// Sweep expires every APPROVED document whose expiration date is before now.
// Running it again with the same or a later now changes nothing further.
func (uc *ExpirationSweepUseCase) Sweep(ctx context.Context, now time.Time) (ids []string, err error) {
	const op = "expiration sweep"
	start := time.Now()
	defer func() { uc.observe("sweep", start, err) }()

	if now.IsZero() {
		now = uc.now()
	}
	var expired []domain.Document
	err = uc.inTx(ctx, op, func(ctx context.Context, tx ports.Repositories) error {
		var err error
		expired, err = tx.Documents().ExpireApproved(ctx, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.recorder.ObserveExpired(len(expired))
	subfolders, groups := groupBySubfolder(expired)
	for _, sfID := range subfolders {
		uc.emit(ctx, domain.ChangeEvent{
			Kind:        domain.ChangeDocumentsExpired,
			SubfolderID: sfID,
			DocumentIDs: groups[sfID],
			At:          now,
		})
	}
	uc.logger.Info("expiration_sweep_completed", "expired", len(expired), "subfolders", len(subfolders), "now", now)
	return documentIDs(expired), nil
}

// TriggerSweep is the on-demand variant; it is gated like any other mutation.
func (uc *ExpirationSweepUseCase) TriggerSweep(ctx context.Context, actorID string, now time.Time) ([]string, error) {
	if err := uc.authorize(ctx, "trigger expiration sweep", actorID, domain.ActionSweep); err != nil {
		uc.observe("sweep", time.Now(), err)
		return nil, err
	}
	return uc.Sweep(ctx, now)
}
