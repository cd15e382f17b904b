package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tourbook/internal/domain"
)

// ListReservations handles GET /admin/reservations.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListReservations(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	if err := queryParam(r, "page", &page); err != nil {
		requestError(w, err.Error())
		return
	}
	if err := queryParam(r, "limit", &limit); err != nil {
		requestError(w, err.Error())
		return
	}

	params := domain.NewPaginationParams(page, limit)
	result, err := s.reservations.ListPaged(r.Context(), params)
	if err != nil {
		s.writeServiceError(w, r, err, "reservation")
		return
	}

	data := make([]Reservation, len(result.Items))
	for i, rec := range result.Items {
		data[i] = reservationToResponse(rec)
	}
	writeJSON(w, http.StatusOK, ReservationList{
		Data: data,
		Pagination: Pagination{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      int(result.Total),
			TotalPages: result.TotalPages,
		},
	})
}

// GetReservation handles GET /admin/reservations/{id}.
func (s *Server) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	rec, err := s.reservations.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(rec))
}

// CancelReservation handles POST /admin/reservations/{id}/cancel.
func (s *Server) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	rec, err := s.reservations.Cancel(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(rec))
}

// DeleteReservation handles DELETE /admin/reservations/{id}.
func (s *Server) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.reservations.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, "reservation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// reservationToResponse converts a domain.ReservationRecord into its API shape.
func reservationToResponse(rec domain.ReservationRecord) Reservation {
	included := rec.IncludedItems
	if included == nil {
		included = []string{}
	}
	return Reservation{
		ID:               rec.ID,
		ConfirmationCode: rec.ConfirmationCode,
		Status:           string(rec.Status),
		Flow:             string(rec.Flow),
		DestinationRef:   rec.DestinationRef,
		PackageRef:       rec.PackageRef,
		DurationLabel:    rec.DurationLabel,
		IncludedItems:    included,
		StartDate:        openapi_types.Date{Time: rec.StartDate},
		EndDate:          openapi_types.Date{Time: rec.EndDate},
		Adults:           rec.Adults,
		Children:         rec.Children,
		Contact:          rec.Contact,
		Accommodation:    string(rec.AddOns.Accommodation),
		Transport:        string(rec.AddOns.Transport),
		SpecialRequests:  rec.SpecialRequests,
		BasePrice:        rec.BasePrice,
		TotalPrice:       rec.TotalPrice,
		PriceUnparsed:    rec.PriceUnparsed,
		Currency:         rec.Currency,
		ConfirmedAt:      rec.ConfirmedAt,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}
