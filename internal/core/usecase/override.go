package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/core/ports"
)

type OverrideStatusUseCase struct {
	workflow
}

func NewOverrideStatusUseCase(deps Deps) *OverrideStatusUseCase {
	return &OverrideStatusUseCase{workflow: newWorkflow(deps)}
}

// OverrideStatus sets a subfolder status administratively and records who did it and why.
func (uc *OverrideStatusUseCase) OverrideStatus(ctx context.Context, cmd domain.OverrideCommand) (updated *domain.Subfolder, err error) {
	const op = "override subfolder status"
	start := time.Now()
	defer func() { uc.observe("override_status", start, err) }()

	reason := strings.TrimSpace(cmd.Reason)
	if err := requireID(op, "subfolder id", cmd.SubfolderID); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, domain.Validation(op, "reason is required")
	}
	if !cmd.Target.Valid() {
		return nil, domain.Validation(op, "unknown subfolder status %q", cmd.Target)
	}
	if err := uc.authorize(ctx, op, cmd.ActorID, domain.ActionOverrideStatus); err != nil {
		return nil, err
	}

	now := uc.now()
	var (
		out  domain.Subfolder
		from domain.SubfolderStatus
	)
	err = uc.inTx(ctx, op, func(ctx context.Context, tx ports.Repositories) error {
		sf, err := tx.Subfolders().LockByID(ctx, cmd.SubfolderID)
		if err != nil {
			return err
		}
		desc, err := uc.descriptor(op, sf.Category)
		if err != nil {
			return err
		}
		docs, err := tx.Documents().LockBySubfolder(ctx, sf.ID)
		if err != nil {
			return err
		}
		state := domain.OverrideState{Completed: IsCompleted(desc, *sf, docs)}
		for _, d := range docs {
			if d.Status == domain.StatusSubmitted || d.Status == domain.StatusApproved {
				state.LockedDocuments++
			}
		}

		from = sf.Status
		if err := sf.Override(cmd.Target, state, now); err != nil {
			return err
		}
		if err := tx.Subfolders().Update(ctx, sf, from); err != nil {
			return err
		}
		if err := tx.Audit().RecordStatusChange(ctx, domain.StatusChangeAudit{
			ID:          uuid.NewString(),
			SubfolderID: sf.ID,
			ActorID:     cmd.ActorID,
			FromStatus:  from,
			ToStatus:    sf.Status,
			Reason:      reason,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		out = *sf
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("subfolder_status_overridden",
		"subfolder_id", out.ID,
		"from", string(from),
		"to", string(out.Status),
		"actor_id", cmd.ActorID,
		"reason", reason,
	)
	uc.emit(ctx, domain.ChangeEvent{
		Kind:            domain.ChangeSubfolderOverridden,
		StartupFolderID: out.StartupFolderID,
		SubfolderID:     out.ID,
		ActorID:         cmd.ActorID,
		At:              now,
	})
	return &out, nil
}
