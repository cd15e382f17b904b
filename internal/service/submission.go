package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/repo"
)

// SubmissionService is the Submitter backed by the reservation store.
// It turns a validated draft into an immutable ReservationRecord with a
// generated confirmation code and timestamp.
type SubmissionService struct {
	reservations repo.ReservationRepo
	currency     string
	now          func() time.Time
}

// NewSubmissionService constructs a SubmissionService that records totals in
// baseCurrency.
func NewSubmissionService(r repo.ReservationRepo, baseCurrency string) *SubmissionService {
	return &SubmissionService{reservations: r, currency: baseCurrency, now: time.Now}
}

// Submit persists the reservation. Any store error is wrapped in
// domain.ErrSubmission so the workflow treats it as retryable.
func (s *SubmissionService) Submit(ctx context.Context, draft domain.ReservationDraft, quote domain.Quote) (domain.ReservationRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.ReservationRecord{}, fmt.Errorf("service.SubmissionService.Submit: %w: %w", domain.ErrSubmission, err)
	}

	rec := domain.NewReservationRecord(draft, quote, s.currency, uuid.New(), s.now().UTC())
	created, err := s.reservations.Create(ctx, rec)
	if err != nil {
		return domain.ReservationRecord{}, fmt.Errorf("service.SubmissionService.Submit: %w: %w", domain.ErrSubmission, err)
	}
	return created, nil
}

// Retract deletes a record committed for a session that was abandoned.
func (s *SubmissionService) Retract(ctx context.Context, rec domain.ReservationRecord) error {
	if err := s.reservations.Delete(ctx, rec.ID); err != nil {
		return fmt.Errorf("service.SubmissionService.Retract: %w", err)
	}
	return nil
}
