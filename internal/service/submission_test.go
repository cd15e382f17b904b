package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/service"
)

var _ service.Submitter = (*service.SubmissionService)(nil)

func submittableDraft() domain.ReservationDraft {
	d := domain.NewDraft(pkgFixture())
	d.Trip = domain.TripWindow{StartDate: day(7), EndDate: day(10)}
	d.Party = domain.Party{Adults: 2, Children: 1}
	d.Contact = domain.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "5555550100"}
	d.Payment = domain.Payment{CardNumber: "4111111111111111", ExpiryMonthYear: "12/29", CVV: "123", CardholderName: "Ada Lovelace"}
	return d
}

func TestSubmissionService_Submit(t *testing.T) {
	var stored domain.ReservationRecord
	svc := service.NewSubmissionService(&mockReservationRepo{
		create: func(_ context.Context, rec domain.ReservationRecord) (domain.ReservationRecord, error) {
			stored = rec
			rec.ID = 1
			return rec, nil
		},
	}, "USD")

	got, err := svc.Submit(context.Background(), submittableDraft(), domain.Quote{BasePrice: 450, Total: 1465})

	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.NotEqual(t, uuid.Nil, stored.ConfirmationCode)
	assert.False(t, stored.ConfirmedAt.IsZero())
	assert.Equal(t, domain.ReservationConfirmed, stored.Status)
	assert.Equal(t, "USD", stored.Currency)
	assert.Equal(t, 1465.0, stored.TotalPrice)
	assert.Equal(t, "serengeti-3day", stored.PackageRef)
	assert.Equal(t, []string{"Tented camp"}, stored.IncludedItems)
}

func TestSubmissionService_Submit_StoreErrorIsSubmissionError(t *testing.T) {
	svc := service.NewSubmissionService(&mockReservationRepo{
		create: func(context.Context, domain.ReservationRecord) (domain.ReservationRecord, error) {
			return domain.ReservationRecord{}, errors.New("connection refused")
		},
	}, "USD")

	_, err := svc.Submit(context.Background(), submittableDraft(), domain.Quote{})

	assert.ErrorIs(t, err, domain.ErrSubmission)
}

func TestSubmissionService_Submit_CancelledContext(t *testing.T) {
	svc := service.NewSubmissionService(&mockReservationRepo{
		create: func(context.Context, domain.ReservationRecord) (domain.ReservationRecord, error) {
			t.Fatal("create must not be called after cancellation")
			return domain.ReservationRecord{}, nil
		},
	}, "USD")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Submit(ctx, submittableDraft(), domain.Quote{})

	assert.ErrorIs(t, err, domain.ErrSubmission)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubmissionService_Retract(t *testing.T) {
	var deleted int64
	svc := service.NewSubmissionService(&mockReservationRepo{
		delete: func(_ context.Context, id int64) error {
			deleted = id
			return nil
		},
	}, "USD")

	require.NoError(t, svc.Retract(context.Background(), domain.ReservationRecord{ID: 12}))
	assert.Equal(t, int64(12), deleted)
}

// The store-backed submitter keeps abandoned sessions from leaving records
// behind even when the insert wins the race against cancellation.
func TestSubmissionService_AbandonedSessionLeavesNoRecord(t *testing.T) {
	rows := map[int64]domain.ReservationRecord{}
	started := make(chan struct{})
	release := make(chan struct{})
	svc := service.NewSubmissionService(&mockReservationRepo{
		create: func(_ context.Context, rec domain.ReservationRecord) (domain.ReservationRecord, error) {
			close(started)
			<-release
			rec.ID = int64(len(rows) + 1)
			rows[rec.ID] = rec
			return rec, nil
		},
		delete: func(_ context.Context, id int64) error {
			delete(rows, id)
			return nil
		},
	}, "USD")

	wf := newWorkflow(t, svc)
	toPayment(t, wf)
	ch, err := wf.Submit(context.Background())
	require.NoError(t, err)
	<-started
	wf.Abandon()
	close(release)

	out := waitOutcome(t, ch)
	assert.ErrorIs(t, out.Err, domain.ErrAbandoned)
	assert.Empty(t, rows)
}
