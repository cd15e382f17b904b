package service

import (
	"context"
	"fmt"

	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/repo"
)

// ExportService assembles a flat export of every reservation.
type ExportService struct {
	reservations repo.ReservationRepo
}

// NewExportService constructs an ExportService backed by the reservation repo.
func NewExportService(r repo.ReservationRepo) *ExportService {
	return &ExportService{reservations: r}
}

// Export returns one ExportRow per reservation in insertion order.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	recs, err := s.reservations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, domain.ExportRow{
			ID:               r.ID,
			ConfirmationCode: r.ConfirmationCode.String(),
			Status:           string(r.Status),
			Flow:             string(r.Flow),
			DestinationRef:   r.DestinationRef,
			PackageRef:       r.PackageRef,
			StartDate:        r.StartDate.Format(dateLayout),
			EndDate:          r.EndDate.Format(dateLayout),
			Adults:           r.Adults,
			Children:         r.Children,
			GuestName:        guestName(r.Contact),
			Email:            r.Contact.Email,
			Phone:            r.Contact.Phone,
			Accommodation:    string(r.AddOns.Accommodation),
			Transport:        string(r.AddOns.Transport),
			TotalPrice:       r.TotalPrice,
			Currency:         r.Currency,
			PriceUnparsed:    r.PriceUnparsed,
			ConfirmedAt:      r.ConfirmedAt,
		})
	}
	return rows, nil
}
