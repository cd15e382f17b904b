// Package repo contains all storage access logic for the reservation API.
// Each resource has its own file with an interface and a concrete implementation.
// No business logic lives here, only queries and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tourbook/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReservationRepo defines the persistence operations for committed reservations.
// Records are keyed by an incrementing integer identifier.
type ReservationRepo interface {
	// Create inserts a new reservation and returns the persisted record
	// (with DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, rec domain.ReservationRecord) (domain.ReservationRecord, error)

	// GetByID retrieves a reservation by primary key.
	// Returns domain.ErrNotFound if no reservation with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.ReservationRecord, error)

	// List returns all reservations ordered by id ascending.
	List(ctx context.Context) ([]domain.ReservationRecord, error)

	// ListPaged returns one page of reservations, newest first, and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.ReservationRecord, int64, error)

	// UpdateStatus sets the status of a reservation and returns the updated record.
	// Returns domain.ErrNotFound if no reservation with that ID exists.
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (domain.ReservationRecord, error)

	// Delete removes a reservation by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}

// pgReservationRepo is the Postgres implementation of ReservationRepo.
type pgReservationRepo struct {
	db db
}

// NewReservationRepo constructs a ReservationRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewReservationRepo(db db) ReservationRepo {
	return &pgReservationRepo{db: db}
}

const reservationColumns = `
	id, confirmation_code, flow, destination_ref, package_ref, duration_label, included_items,
	start_date, end_date, adults, children,
	first_name, last_name, email, phone,
	accommodation, transport, special_requests,
	base_price, total_price, price_unparsed, currency,
	status, confirmed_at, created_at, updated_at`

// Create inserts a reservation row and returns the full persisted record.
func (r *pgReservationRepo) Create(ctx context.Context, rec domain.ReservationRecord) (domain.ReservationRecord, error) {
	q := `
		INSERT INTO reservations (
			confirmation_code, flow, destination_ref, package_ref, duration_label, included_items,
			start_date, end_date, adults, children,
			first_name, last_name, email, phone,
			accommodation, transport, special_requests,
			base_price, total_price, price_unparsed, currency,
			status, confirmed_at)
		VALUES (
			@confirmation_code, @flow, @destination_ref, @package_ref, @duration_label, @included_items,
			@start_date, @end_date, @adults, @children,
			@first_name, @last_name, @email, @phone,
			@accommodation, @transport, @special_requests,
			@base_price, @total_price, @price_unparsed, @currency,
			@status, @confirmed_at)
		RETURNING` + reservationColumns

	included := rec.IncludedItems
	if included == nil {
		included = []string{}
	}
	args := pgx.NamedArgs{
		"confirmation_code": rec.ConfirmationCode,
		"flow":              string(rec.Flow),
		"destination_ref":   rec.DestinationRef,
		"package_ref":       rec.PackageRef,
		"duration_label":    rec.DurationLabel,
		"included_items":    included,
		"start_date":        pgtype.Date{Time: rec.StartDate, Valid: true},
		"end_date":          pgtype.Date{Time: rec.EndDate, Valid: true},
		"adults":            rec.Adults,
		"children":          rec.Children,
		"first_name":        rec.Contact.FirstName,
		"last_name":         rec.Contact.LastName,
		"email":             rec.Contact.Email,
		"phone":             rec.Contact.Phone,
		"accommodation":     string(rec.AddOns.Accommodation),
		"transport":         string(rec.AddOns.Transport),
		"special_requests":  rec.SpecialRequests,
		"base_price":        rec.BasePrice,
		"total_price":       rec.TotalPrice,
		"price_unparsed":    rec.PriceUnparsed,
		"currency":          rec.Currency,
		"status":            string(rec.Status),
		"confirmed_at":      rec.ConfirmedAt,
	}

	result, err := scanReservation(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.ReservationRecord{}, fmt.Errorf("repo.ReservationRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a reservation by primary key.
func (r *pgReservationRepo) GetByID(ctx context.Context, id int64) (domain.ReservationRecord, error) {
	q := `SELECT` + reservationColumns + ` FROM reservations WHERE id = @id`

	result, err := scanReservation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.ReservationRecord{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns every reservation in insertion order.
func (r *pgReservationRepo) List(ctx context.Context) ([]domain.ReservationRecord, error) {
	q := `SELECT` + reservationColumns + ` FROM reservations ORDER BY id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.List: %w", err)
	}
	recs, err := collectReservations(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.List: %w", err)
	}
	return recs, nil
}

// ListPaged returns one page of reservations ordered newest first.
func (r *pgReservationRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.ReservationRecord, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM reservations`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: count: %w", err)
	}

	q := `SELECT` + reservationColumns + `
		FROM reservations
		ORDER BY id DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: %w", err)
	}
	recs, err := collectReservations(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: %w", err)
	}
	return recs, total, nil
}

// UpdateStatus sets the status column and bumps updated_at.
func (r *pgReservationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (domain.ReservationRecord, error) {
	q := `
		UPDATE reservations
		SET status     = @status,
		    updated_at = now()
		WHERE id = @id
		RETURNING` + reservationColumns

	result, err := scanReservation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}))
	if err != nil {
		return domain.ReservationRecord{}, fmt.Errorf("repo.ReservationRepo.UpdateStatus: %w", err)
	}
	return result, nil
}

// Delete removes a reservation by primary key.
func (r *pgReservationRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ReservationRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ReservationRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func collectReservations(rows pgx.Rows) ([]domain.ReservationRecord, error) {
	defer rows.Close()

	recs := []domain.ReservationRecord{}
	for rows.Next() {
		rec, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return recs, nil
}

// scanReservation maps a single row into a domain.ReservationRecord.
// It handles the UUID, date and numeric conversions.
func scanReservation(s scanner) (domain.ReservationRecord, error) {
	var (
		rec           domain.ReservationRecord
		code          pgtype.UUID
		flow          string
		startDate     pgtype.Date
		endDate       pgtype.Date
		accommodation string
		transport     string
		basePrice     pgtype.Numeric
		totalPrice    pgtype.Numeric
		status        string
	)

	err := s.Scan(
		&rec.ID, &code, &flow, &rec.DestinationRef, &rec.PackageRef, &rec.DurationLabel, &rec.IncludedItems,
		&startDate, &endDate, &rec.Adults, &rec.Children,
		&rec.Contact.FirstName, &rec.Contact.LastName, &rec.Contact.Email, &rec.Contact.Phone,
		&accommodation, &transport, &rec.SpecialRequests,
		&basePrice, &totalPrice, &rec.PriceUnparsed, &rec.Currency,
		&status, &rec.ConfirmedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ReservationRecord{}, domain.ErrNotFound
		}
		return domain.ReservationRecord{}, err
	}

	rec.ConfirmationCode = uuid.UUID(code.Bytes)
	rec.Flow = domain.FlowKind(flow)
	rec.StartDate = startDate.Time
	rec.EndDate = endDate.Time
	rec.AddOns = domain.AddOns{
		Accommodation: domain.AccommodationTier(accommodation),
		Transport:     domain.TransportTier(transport),
	}
	rec.Status = domain.ReservationStatus(status)
	if rec.BasePrice, err = numericToFloat(basePrice); err != nil {
		return domain.ReservationRecord{}, fmt.Errorf("base_price: %w", err)
	}
	if rec.TotalPrice, err = numericToFloat(totalPrice); err != nil {
		return domain.ReservationRecord{}, fmt.Errorf("total_price: %w", err)
	}
	if rec.IncludedItems == nil {
		rec.IncludedItems = []string{}
	}
	return rec, nil
}

func numericToFloat(n pgtype.Numeric) (float64, error) {
	f, err := n.Float64Value()
	if err != nil {
		return 0, err
	}
	return f.Float64, nil
}
