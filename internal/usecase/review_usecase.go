package usecase

import (
	"context"
	"errors"

	"go-contact-review-backend/internal/domain"
	"go-contact-review-backend/pkg/apperror"
	"go-contact-review-backend/pkg/logger"
)

type reviewUsecase struct {
	store     domain.SessionRepository
	enrollers map[domain.Target]domain.Enroller
}

func NewReviewUsecase(store domain.SessionRepository, enrollers ...domain.Enroller) domain.ReviewUsecase {
	byTarget := make(map[domain.Target]domain.Enroller, len(enrollers))
	for _, e := range enrollers {
		byTarget[e.Target()] = e
	}
	return &reviewUsecase{
		store:     store,
		enrollers: byTarget,
	}
}

// Review dispatches one contact to each requested target and records the
// outcomes. Dispatch is synchronous: the call returns once every requested
// remote has answered or timed out. Re-reviewing a contact re-dispatches and
// overwrites the recorded outcome for the re-requested targets only; there is
// no idempotence guard against duplicate remote enrollment.
func (u *reviewUsecase) Review(ctx context.Context, req *domain.ReviewRequest) (*domain.ReviewResult, error) {
	contact, err := u.store.GetContact(ctx, req.SessionID, req.ContactIndex)
	if err != nil {
		return nil, mapStoreError(err)
	}

	targets := make([]domain.Target, 0, 2)
	if req.AddToMailingList {
		targets = append(targets, domain.TargetMailingList)
	}
	if req.AddToCRM {
		targets = append(targets, domain.TargetCRM)
	}

	results := make(map[domain.Target]bool, len(targets))
	for _, target := range targets {
		ok := false
		if enroller := u.enrollers[target]; enroller != nil {
			ok = enroller.Enroll(ctx, contact)
		}
		results[target] = ok

		if err := u.store.RecordOutcome(ctx, req.SessionID, req.ContactIndex, target, ok); err != nil {
			// The session can expire between dispatch and write; the caller
			// still gets the outcome it paid for.
			logger.Log.Warn("failed to record dispatch outcome",
				"session_id", req.SessionID, "index", req.ContactIndex,
				"target", target, "error", err)
		}
	}

	return &domain.ReviewResult{
		Contact:   *contact,
		Results:   results,
		Processed: true,
	}, nil
}

// ListContacts returns the full validated contact list of a session
func (u *reviewUsecase) ListContacts(ctx context.Context, sessionID string) (*domain.SessionContacts, error) {
	session, err := u.store.Get(ctx, sessionID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &domain.SessionContacts{
		SessionID:     session.SessionID,
		TotalContacts: len(session.Contacts),
		Contacts:      session.Contacts,
	}, nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return apperror.NotFound("Review session not found")
	case errors.Is(err, domain.ErrContactIndex):
		return apperror.BadRequest("Invalid contact index")
	default:
		return apperror.Internal(err)
	}
}
