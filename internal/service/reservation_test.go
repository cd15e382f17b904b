package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/repo"
	"github.com/pkordes/tourbook/internal/service"
)

// mockReservationRepo is a hand-written test double for repo.ReservationRepo.
// Each method is a function field; set only the ones your test needs.
type mockReservationRepo struct {
	create       func(ctx context.Context, rec domain.ReservationRecord) (domain.ReservationRecord, error)
	getByID      func(ctx context.Context, id int64) (domain.ReservationRecord, error)
	list         func(ctx context.Context) ([]domain.ReservationRecord, error)
	listPaged    func(ctx context.Context, p domain.PaginationParams) ([]domain.ReservationRecord, int64, error)
	updateStatus func(ctx context.Context, id int64, status domain.ReservationStatus) (domain.ReservationRecord, error)
	delete       func(ctx context.Context, id int64) error
}

func (m *mockReservationRepo) Create(ctx context.Context, rec domain.ReservationRecord) (domain.ReservationRecord, error) {
	return m.create(ctx, rec)
}
func (m *mockReservationRepo) GetByID(ctx context.Context, id int64) (domain.ReservationRecord, error) {
	return m.getByID(ctx, id)
}
func (m *mockReservationRepo) List(ctx context.Context) ([]domain.ReservationRecord, error) {
	return m.list(ctx)
}
func (m *mockReservationRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.ReservationRecord, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockReservationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (domain.ReservationRecord, error) {
	return m.updateStatus(ctx, id, status)
}
func (m *mockReservationRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

// compile-time check: mockReservationRepo must satisfy repo.ReservationRepo.
var _ repo.ReservationRepo = (*mockReservationRepo)(nil)

type fakeCancelNotifier struct {
	cancelled []domain.ReservationRecord
}

func (f *fakeCancelNotifier) Cancelled(_ context.Context, rec domain.ReservationRecord) {
	f.cancelled = append(f.cancelled, rec)
}

// ---- Get / ListPaged -------------------------------------------------------

func TestReservationService_Get(t *testing.T) {
	svc := service.NewReservationService(&mockReservationRepo{
		getByID: func(_ context.Context, id int64) (domain.ReservationRecord, error) {
			return domain.ReservationRecord{ID: id}, nil
		},
	}, nil)

	got, err := svc.Get(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
}

func TestReservationService_Get_NotFound(t *testing.T) {
	svc := service.NewReservationService(&mockReservationRepo{
		getByID: func(context.Context, int64) (domain.ReservationRecord, error) {
			return domain.ReservationRecord{}, domain.ErrNotFound
		},
	}, nil)

	_, err := svc.Get(context.Background(), 3)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservationService_ListPaged(t *testing.T) {
	var gotParams domain.PaginationParams
	svc := service.NewReservationService(&mockReservationRepo{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]domain.ReservationRecord, int64, error) {
			gotParams = p
			return []domain.ReservationRecord{{ID: 5}, {ID: 4}}, 45, nil
		},
	}, nil)

	page, err := svc.ListPaged(context.Background(), domain.NewPaginationParams(ptr(2), ptr(2)))

	require.NoError(t, err)
	assert.Equal(t, 2, gotParams.Offset())
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(45), page.Total)
	assert.Equal(t, 23, page.TotalPages)
	assert.Equal(t, 2, page.Page)
}

// ---- Cancel ----------------------------------------------------------------

func TestReservationService_Cancel(t *testing.T) {
	notify := &fakeCancelNotifier{}
	svc := service.NewReservationService(&mockReservationRepo{
		getByID: func(_ context.Context, id int64) (domain.ReservationRecord, error) {
			return domain.ReservationRecord{ID: id, Status: domain.ReservationConfirmed}, nil
		},
		updateStatus: func(_ context.Context, id int64, status domain.ReservationStatus) (domain.ReservationRecord, error) {
			return domain.ReservationRecord{ID: id, Status: status, UpdatedAt: time.Now()}, nil
		},
	}, notify)

	got, err := svc.Cancel(context.Background(), 8)

	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, got.Status)
	require.Len(t, notify.cancelled, 1)
	assert.Equal(t, int64(8), notify.cancelled[0].ID)
}

func TestReservationService_Cancel_Twice(t *testing.T) {
	notify := &fakeCancelNotifier{}
	svc := service.NewReservationService(&mockReservationRepo{
		getByID: func(_ context.Context, id int64) (domain.ReservationRecord, error) {
			return domain.ReservationRecord{ID: id, Status: domain.ReservationCancelled}, nil
		},
	}, notify)

	_, err := svc.Cancel(context.Background(), 8)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, notify.cancelled)
}

func TestReservationService_Cancel_NotFound(t *testing.T) {
	svc := service.NewReservationService(&mockReservationRepo{
		getByID: func(context.Context, int64) (domain.ReservationRecord, error) {
			return domain.ReservationRecord{}, domain.ErrNotFound
		},
	}, nil)

	_, err := svc.Cancel(context.Background(), 8)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Delete ----------------------------------------------------------------

func TestReservationService_Delete(t *testing.T) {
	var deleted int64
	svc := service.NewReservationService(&mockReservationRepo{
		delete: func(_ context.Context, id int64) error {
			deleted = id
			return nil
		},
	}, nil)

	require.NoError(t, svc.Delete(context.Background(), 11))
	assert.Equal(t, int64(11), deleted)
}

func TestReservationService_Delete_NotFound(t *testing.T) {
	svc := service.NewReservationService(&mockReservationRepo{
		delete: func(context.Context, int64) error { return domain.ErrNotFound },
	}, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), 11), domain.ErrNotFound)
}
