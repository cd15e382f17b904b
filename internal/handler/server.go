// Package handler implements the HTTP handlers for the tour booking API.
// All handlers are methods on Server. Methods are split into resource files
// (health.go, catalog.go, booking.go, reservation.go, export.go) but share
// the same Server struct so they can reach its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tourbook/internal/domain"
)

// SessionServicer defines the reservation session operations the booking
// handlers depend on. Defining the interface here, in the consumer package,
// lets handler tests inject a fake without the service layer.
type SessionServicer interface {
	Start(ctx context.Context, pkg domain.PackageContext) (domain.SessionView, error)
	Get(id uuid.UUID) (domain.SessionView, error)
	Edit(id uuid.UUID, data domain.StepData) (domain.SessionView, error)
	Advance(id uuid.UUID) (domain.SessionView, error)
	Retreat(id uuid.UUID) (domain.SessionView, error)
	Submit(ctx context.Context, id uuid.UUID, key string) (domain.ReservationRecord, error)
	Abandon(id uuid.UUID) error
}

// ReservationServicer defines the admin operations on committed reservations.
type ReservationServicer interface {
	Get(ctx context.Context, id int64) (domain.ReservationRecord, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.ReservationRecord], error)
	Cancel(ctx context.Context, id int64) (domain.ReservationRecord, error)
	Delete(ctx context.Context, id int64) error
}

// ExportServicer produces the flat reservation export.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// CatalogServicer answers destination lookups.
type CatalogServicer interface {
	List() []domain.Destination
	Get(ref string) (domain.Destination, error)
}

// CurrencyFormatter converts base-currency amounts for display.
type CurrencyFormatter interface {
	Base() string
	Currencies() []string
	Format(amount float64, code string) (string, error)
}

// Services groups the Server's collaborators. A nil service leaves its
// routes unregistered.
type Services struct {
	Sessions     SessionServicer
	Reservations ReservationServicer
	Export       ExportServicer
	Catalog      CatalogServicer
	Currency     CurrencyFormatter
}

// Server implements every API endpoint.
type Server struct {
	sessions     SessionServicer
	reservations ReservationServicer
	export       ExportServicer
	catalog      CatalogServicer
	currency     CurrencyFormatter
	logger       *slog.Logger
	openapi      []byte
}

// NewServer constructs the Server with all its dependencies. openapi is the
// document served at /openapi.yaml.
func NewServer(svc Services, openapi []byte, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		sessions:     svc.Sessions,
		reservations: svc.Reservations,
		export:       svc.Export,
		catalog:      svc.Catalog,
		currency:     svc.Currency,
		logger:       logger,
		openapi:      openapi,
	}
}

// Routes returns the API router. Cross-cutting middleware (request ID,
// logging, CORS, body limits) is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	if s.openapi != nil {
		r.Get("/openapi.yaml", s.GetOpenAPI)
	}

	if s.currency != nil {
		r.Get("/currencies", s.ListCurrencies)
		r.Post("/quotes", s.CreateQuote)
	}

	if s.catalog != nil {
		r.Get("/destinations", s.ListDestinations)
		r.Get("/destinations/{ref}", s.GetDestination)
	}

	if s.sessions != nil {
		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", s.StartBooking)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetBooking)
				r.Delete("/", s.AbandonBooking)
				r.Patch("/trip", s.EditTripDetails)
				r.Patch("/personal", s.EditPersonalInfo)
				r.Patch("/payment", s.EditPayment)
				r.Post("/advance", s.AdvanceBooking)
				r.Post("/retreat", s.RetreatBooking)
				r.Post("/submit", s.SubmitBooking)
			})
		})
	}

	if s.reservations != nil {
		r.Get("/admin/reservations", s.ListReservations)
		r.Get("/admin/reservations/{id}", s.GetReservation)
		r.Post("/admin/reservations/{id}/cancel", s.CancelReservation)
		r.Delete("/admin/reservations/{id}", s.DeleteReservation)
	}
	if s.export != nil {
		r.Get("/admin/export", s.GetExport)
	}

	return r
}
