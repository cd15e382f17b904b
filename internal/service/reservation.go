package service

import (
	"context"
	"fmt"

	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/repo"
)

// CancellationNotifier is told about operator cancellations.
type CancellationNotifier interface {
	Cancelled(ctx context.Context, rec domain.ReservationRecord)
}

// ReservationService implements the admin operations on committed reservations.
type ReservationService struct {
	repo   repo.ReservationRepo
	notify CancellationNotifier
}

// NewReservationService constructs a ReservationService. notify may be nil.
func NewReservationService(r repo.ReservationRepo, notify CancellationNotifier) *ReservationService {
	return &ReservationService{repo: r, notify: notify}
}

// Get returns a single reservation by ID.
func (s *ReservationService) Get(ctx context.Context, id int64) (domain.ReservationRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ReservationRecord{}, fmt.Errorf("service.ReservationService.Get: %w", err)
	}
	return rec, nil
}

// ListPaged returns one page of reservations, newest first.
func (s *ReservationService) ListPaged(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.ReservationRecord], error) {
	recs, total, err := s.repo.ListPaged(ctx, p)
	if err != nil {
		return domain.Page[domain.ReservationRecord]{}, fmt.Errorf("service.ReservationService.ListPaged: %w", err)
	}
	return domain.NewPage(recs, p, total), nil
}

// Cancel marks a confirmed reservation cancelled. Cancelling twice is a
// validation error.
func (s *ReservationService) Cancel(ctx context.Context, id int64) (domain.ReservationRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ReservationRecord{}, fmt.Errorf("service.ReservationService.Cancel: %w", err)
	}
	if rec.Status == domain.ReservationCancelled {
		return domain.ReservationRecord{}, fmt.Errorf("service.ReservationService.Cancel: %w: reservation %d is already cancelled",
			domain.ErrValidation, id)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, domain.ReservationCancelled)
	if err != nil {
		return domain.ReservationRecord{}, fmt.Errorf("service.ReservationService.Cancel: %w", err)
	}
	if s.notify != nil {
		s.notify.Cancelled(ctx, updated)
	}
	return updated, nil
}

// Delete removes a reservation by ID.
func (s *ReservationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ReservationService.Delete: %w", err)
	}
	return nil
}
