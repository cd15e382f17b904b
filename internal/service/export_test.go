package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/service"
)

func TestExportService_Export(t *testing.T) {
	code := uuid.New()
	rec := recordFixture()
	rec.ConfirmationCode = code
	rec.AddOns = domain.AddOns{Accommodation: domain.AccommodationLuxury, Transport: domain.TransportPrivate}
	rec.ConfirmedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	svc := service.NewExportService(&mockReservationRepo{
		list: func(context.Context) ([]domain.ReservationRecord, error) {
			return []domain.ReservationRecord{rec}, nil
		},
	})

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, int64(7), r.ID)
	assert.Equal(t, code.String(), r.ConfirmationCode)
	assert.Equal(t, "confirmed", r.Status)
	assert.Equal(t, "experience", r.Flow)
	assert.Equal(t, "2026-11-01", r.StartDate)
	assert.Equal(t, "2026-11-04", r.EndDate)
	assert.Equal(t, "Ada Lovelace", r.GuestName)
	assert.Equal(t, "luxury", r.Accommodation)
	assert.Equal(t, "private", r.Transport)
	assert.Equal(t, 1465.0, r.TotalPrice)
	assert.Equal(t, rec.ConfirmedAt, r.ConfirmedAt)
}

func TestExportService_Export_Empty(t *testing.T) {
	svc := service.NewExportService(&mockReservationRepo{
		list: func(context.Context) ([]domain.ReservationRecord, error) {
			return []domain.ReservationRecord{}, nil
		},
	})

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExportService_Export_RepoError(t *testing.T) {
	svc := service.NewExportService(&mockReservationRepo{
		list: func(context.Context) ([]domain.ReservationRecord, error) {
			return nil, errors.New("db down")
		},
	})

	_, err := svc.Export(context.Background())

	assert.Error(t, err)
}
