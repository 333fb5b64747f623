package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/core/ports"
)

const defaultNotifyTimeout = 5 * time.Second

type SubmitSubfolderUseCase struct {
	workflow
	notifier      ports.NotificationDispatcher
	notifyTimeout time.Duration
}

func NewSubmitSubfolderUseCase(deps Deps, notifier ports.NotificationDispatcher, notifyTimeout time.Duration) *SubmitSubfolderUseCase {
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	return &SubmitSubfolderUseCase{
		workflow:      newWorkflow(deps),
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
	}
}

// Submit moves an open subfolder and all of its documents into review, then
// requests a review from the category recipients. A failed notification does
// not undo the submission; it is reported through NotificationSent.
func (uc *SubmitSubfolderUseCase) Submit(ctx context.Context, cmd domain.SubmitCommand) (result *domain.SubmissionResult, err error) {
	const op = "submit subfolder"
	start := time.Now()
	defer func() { uc.observe("submit", start, err) }()

	if err := requireID(op, "subfolder id", cmd.SubfolderID); err != nil {
		return nil, err
	}
	if err := uc.authorize(ctx, op, cmd.RequesterID, domain.ActionSubmit); err != nil {
		return nil, err
	}
	if _, err := domain.MergeEmails(cmd.ExtraEmails); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	requester, err := uc.store.Users().GetUser(ctx, cmd.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("%s: resolve requester: %w", op, err)
	}

	var (
		out     domain.SubmissionResult
		request domain.ReviewRequest
	)
	err = uc.inTx(ctx, op, func(ctx context.Context, tx ports.Repositories) error {
		sf, err := tx.Subfolders().LockByID(ctx, cmd.SubfolderID)
		if err != nil {
			return err
		}
		if err := sf.CheckSubmittable(); err != nil {
			return err
		}
		desc, err := uc.descriptor(op, sf.Category)
		if err != nil {
			return err
		}
		folder, err := tx.StartupFolders().GetByID(ctx, sf.StartupFolderID)
		if err != nil {
			return err
		}
		docs, err := tx.Documents().LockBySubfolder(ctx, sf.ID)
		if err != nil {
			return err
		}

		emails, err := domain.MergeEmails(cmd.ExtraEmails, []string{requester.Email}, sf.AdditionalNotificationEmails)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		now := uc.now()
		expected := sf.Status
		if err := sf.MarkSubmitted(emails, now); err != nil {
			return err
		}
		if err := tx.Subfolders().Update(ctx, sf, expected); err != nil {
			return err
		}

		for i := range docs {
			before := docs[i].Status
			if err := docs[i].Submit(now); err != nil {
				return err
			}
			if err := tx.Documents().Update(ctx, &docs[i], before); err != nil {
				return err
			}
		}

		recipients, err := domain.MergeEmails(desc.Recipients, sf.AdditionalNotificationEmails)
		if err != nil {
			return fmt.Errorf("%s: recipients: %w", op, err)
		}
		label := desc.Label
		if sf.EntityLabel != "" {
			label = desc.Label + " - " + sf.EntityLabel
		}
		request = domain.ReviewRequest{
			SubfolderID:     sf.ID,
			StartupFolderID: folder.ID,
			Category:        sf.Category,
			CategoryLabel:   desc.Label,
			CompanyName:     folder.CompanyName,
			FolderLabel:     folder.Name + " / " + label,
			Requester:       *requester,
			Recipients:      recipients,
			SubmittedAt:     now,
		}
		out = domain.SubmissionResult{Subfolder: *sf, Documents: docs, Recipients: recipients}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("subfolder_submitted",
		"subfolder_id", out.Subfolder.ID,
		"documents", len(out.Documents),
		"recipients", len(out.Recipients),
	)
	out.NotificationSent = uc.dispatch(ctx, request)
	uc.emit(ctx, domain.ChangeEvent{
		Kind:            domain.ChangeSubfolderSubmitted,
		StartupFolderID: request.StartupFolderID,
		SubfolderID:     out.Subfolder.ID,
		DocumentIDs:     documentIDs(out.Documents),
		ActorID:         cmd.RequesterID,
		At:              request.SubmittedAt,
	})
	return &out, nil
}

// dispatch runs after commit on a context detached from the caller and bounded by notifyTimeout.
func (uc *SubmitSubfolderUseCase) dispatch(ctx context.Context, req domain.ReviewRequest) bool {
	if uc.notifier == nil || len(req.Recipients) == 0 {
		uc.logger.Warn("review_request_skipped", "subfolder_id", req.SubfolderID, "recipients", len(req.Recipients))
		return false
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.notifyTimeout)
	defer cancel()

	err := uc.notifier.NotifyReviewRequested(notifyCtx, req)
	uc.recorder.ObserveNotification(err)
	if err != nil {
		uc.logger.Warn("review_request_dispatch_failed",
			"subfolder_id", req.SubfolderID,
			"recipients", len(req.Recipients),
			"error", err,
		)
		return false
	}
	return true
}
