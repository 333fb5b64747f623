package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/core/ports"
)

type ReviewDocumentsUseCase struct {
	workflow
}

func NewReviewDocumentsUseCase(deps Deps) *ReviewDocumentsUseCase {
	return &ReviewDocumentsUseCase{workflow: newWorkflow(deps)}
}

type reviewStep func(doc *domain.Document, now time.Time) error

// subfolderGuard is checked against every owning subfolder, locked before the documents.
type subfolderGuard func(sf *domain.Subfolder) error

func (uc *ReviewDocumentsUseCase) Approve(ctx context.Context, documentID, reviewerID string) (*domain.Document, error) {
	docs, err := uc.apply(ctx, "approve", domain.ActionApprove, []string{documentID}, reviewerID, nil,
		func(doc *domain.Document, now time.Time) error { return doc.Approve(reviewerID, now) })
	if err != nil {
		return nil, err
	}
	return &docs[0], nil
}

// Reject requires non-empty notes; they are checked before anything is read.
func (uc *ReviewDocumentsUseCase) Reject(ctx context.Context, documentID, reviewerID, notes string) (*domain.Document, error) {
	if strings.TrimSpace(notes) == "" {
		err := domain.Validation("reject document", "review notes are required")
		uc.observe("reject", time.Now(), err)
		return nil, err
	}
	docs, err := uc.apply(ctx, "reject", domain.ActionReject, []string{documentID}, reviewerID, nil,
		func(doc *domain.Document, now time.Time) error { return doc.Reject(reviewerID, notes, now) })
	if err != nil {
		return nil, err
	}
	return &docs[0], nil
}

func (uc *ReviewDocumentsUseCase) ApproveBatch(ctx context.Context, documentIDs []string, reviewerID string) ([]domain.Document, error) {
	return uc.apply(ctx, "approve_batch", domain.ActionApprove, documentIDs, reviewerID, nil,
		func(doc *domain.Document, now time.Time) error { return doc.Approve(reviewerID, now) })
}

func (uc *ReviewDocumentsUseCase) MarkToUpdate(ctx context.Context, documentIDs []string, reviewerID string) ([]domain.Document, error) {
	return uc.apply(ctx, "mark_to_update", domain.ActionMarkToUpdate, documentIDs, reviewerID, nil,
		func(doc *domain.Document, now time.Time) error { return doc.MarkToUpdate(now) })
}

func (uc *ReviewDocumentsUseCase) UndoReview(ctx context.Context, documentIDs []string, reviewerID string) ([]domain.Document, error) {
	return uc.apply(ctx, "undo_review", domain.ActionUndoReview, documentIDs, reviewerID,
		func(sf *domain.Subfolder) error { return sf.CheckUndoable() },
		func(doc *domain.Document, now time.Time) error { return doc.UndoReview(now) })
}

// apply runs step over every document in one transaction. The first document
// that refuses the transition aborts the whole batch. With a guard, the owning
// subfolders are locked first, in id order, and checked before any write.
func (uc *ReviewDocumentsUseCase) apply(
	ctx context.Context,
	metric string,
	action domain.Action,
	ids []string,
	reviewerID string,
	guard subfolderGuard,
	step reviewStep,
) (out []domain.Document, err error) {
	op := "review documents: " + metric
	start := time.Now()
	defer func() { uc.observe(metric, start, err) }()

	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, domain.Validation(op, "at least one document id is required")
	}
	if err := uc.authorize(ctx, op, reviewerID, action); err != nil {
		return nil, err
	}

	now := uc.now()
	err = uc.inTx(ctx, op, func(ctx context.Context, tx ports.Repositories) error {
		if guard != nil {
			if err := lockAndGuardSubfolders(ctx, tx, ids, guard); err != nil {
				return err
			}
		}
		docs, err := tx.Documents().LockByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for i := range docs {
			before := docs[i].Status
			if err := step(&docs[i], now); err != nil {
				return err
			}
			if err := tx.Documents().Update(ctx, &docs[i], before); err != nil {
				return err
			}
		}
		out = docs
		return nil
	})
	if err != nil {
		return nil, err
	}

	subfolders, groups := groupBySubfolder(out)
	for _, sfID := range subfolders {
		uc.emit(ctx, domain.ChangeEvent{
			Kind:        domain.ChangeDocumentsReviewed,
			SubfolderID: sfID,
			DocumentIDs: groups[sfID],
			ActorID:     reviewerID,
			At:          now,
		})
	}
	uc.logger.Info("documents_reviewed", "action", string(action), "documents", len(out), "reviewer_id", reviewerID)
	return out, nil
}

func lockAndGuardSubfolders(ctx context.Context, tx ports.Repositories, documentIDs []string, guard subfolderGuard) error {
	owners := make(map[string]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		doc, err := tx.Documents().GetByID(ctx, id)
		if err != nil {
			return err
		}
		owners[doc.SubfolderID] = struct{}{}
	}
	subfolderIDs := make([]string, 0, len(owners))
	for id := range owners {
		subfolderIDs = append(subfolderIDs, id)
	}
	sort.Strings(subfolderIDs)
	for _, id := range subfolderIDs {
		sf, err := tx.Subfolders().LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := guard(sf); err != nil {
			return err
		}
	}
	return nil
}
