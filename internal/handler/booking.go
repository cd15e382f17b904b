package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tourbook/internal/domain"
)

// StartBooking handles POST /bookings.
// A request without destination or package is redirected to /destinations.
func (s *Server) StartBooking(w http.ResponseWriter, r *http.Request) {
	var body StartBookingRequest
	if err := decodeJSON(r, &body); err != nil {
		bodyError(w, err)
		return
	}
	// A blank flow is taken from the catalog entry.
	var flow domain.FlowKind
	if strings.TrimSpace(body.Flow) != "" {
		var ok bool
		if flow, ok = domain.ParseFlowKind(body.Flow); !ok {
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "unknown flow",
				map[string]string{"flow": "Flow must be experience or destination"})
			return
		}
	}

	view, err := s.sessions.Start(r.Context(), domain.PackageContext{
		Flow:           flow,
		DestinationRef: strings.TrimSpace(body.DestinationRef),
		PackageRef:     strings.TrimSpace(body.PackageRef),
		PriceLabel:     body.PriceLabel,
		DurationLabel:  body.DurationLabel,
		IncludedItems:  body.IncludedItems,
	})
	if err != nil {
		s.writeServiceError(w, r, err, "booking")
		return
	}

	w.Header().Set("Location", "/bookings/"+view.ID.String())
	s.writeBooking(w, r, http.StatusCreated, view, "")
}

// GetBooking handles GET /bookings/{id}?currency=EUR.
func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bookingID(w, r)
	if !ok {
		return
	}
	var code string
	if err := queryParam(r, "currency", &code); err != nil {
		requestError(w, err.Error())
		return
	}

	view, err := s.sessions.Get(id)
	if err != nil {
		s.writeServiceError(w, r, err, "booking")
		return
	}
	s.writeBooking(w, r, http.StatusOK, view, code)
}

// EditTripDetails handles PATCH /bookings/{id}/trip.
func (s *Server) EditTripDetails(w http.ResponseWriter, r *http.Request) {
	var body TripDetailsRequest
	s.edit(w, r, &body, func() domain.StepData {
		data := domain.TripDetailsData{Adults: body.Adults, Children: body.Children}
		if body.StartDate != nil {
			data.StartDate = &body.StartDate.Time
		}
		if body.EndDate != nil {
			data.EndDate = &body.EndDate.Time
		}
		if body.Accommodation != nil {
			tier := domain.AccommodationTier(strings.ToLower(*body.Accommodation))
			data.Accommodation = &tier
		}
		if body.Transport != nil {
			tier := domain.TransportTier(strings.ToLower(*body.Transport))
			data.Transport = &tier
		}
		return data
	})
}

// EditPersonalInfo handles PATCH /bookings/{id}/personal.
func (s *Server) EditPersonalInfo(w http.ResponseWriter, r *http.Request) {
	var body PersonalInfoRequest
	s.edit(w, r, &body, func() domain.StepData {
		return domain.PersonalInfoData{
			FirstName:       body.FirstName,
			LastName:        body.LastName,
			Email:           body.Email,
			Phone:           body.Phone,
			SpecialRequests: body.SpecialRequests,
		}
	})
}

// EditPayment handles PATCH /bookings/{id}/payment.
func (s *Server) EditPayment(w http.ResponseWriter, r *http.Request) {
	var body PaymentRequest
	s.edit(w, r, &body, func() domain.StepData {
		return domain.PaymentData{
			CardNumber:      body.CardNumber,
			ExpiryMonthYear: body.ExpiryMonthYear,
			CVV:             body.CVV,
			CardholderName:  body.CardholderName,
		}
	})
}

// AdvanceBooking handles POST /bookings/{id}/advance.
func (s *Server) AdvanceBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bookingID(w, r)
	if !ok {
		return
	}
	view, err := s.sessions.Advance(id)
	if err != nil {
		s.writeServiceError(w, r, err, "booking")
		return
	}
	s.writeBooking(w, r, http.StatusOK, view, "")
}

// RetreatBooking handles POST /bookings/{id}/retreat.
func (s *Server) RetreatBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bookingID(w, r)
	if !ok {
		return
	}
	view, err := s.sessions.Retreat(id)
	if err != nil {
		s.writeServiceError(w, r, err, "booking")
		return
	}
	s.writeBooking(w, r, http.StatusOK, view, "")
}

// SubmitBooking handles POST /bookings/{id}/submit.
// The optional Idempotency-Key header makes retries return the first result.
func (s *Server) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bookingID(w, r)
	if !ok {
		return
	}
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))

	rec, err := s.sessions.Submit(r.Context(), id, key)
	if err != nil {
		s.writeServiceError(w, r, err, "booking")
		return
	}
	writeJSON(w, http.StatusCreated, reservationToResponse(rec))
}

// AbandonBooking handles DELETE /bookings/{id}.
func (s *Server) AbandonBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bookingID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Abandon(id); err != nil {
		s.writeServiceError(w, r, err, "booking")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ----------------------------------------------------------------

func (s *Server) bookingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := pathUUID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// edit decodes a step patch into body, converts it with toData and applies it.
func (s *Server) edit(w http.ResponseWriter, r *http.Request, body any, toData func() domain.StepData) {
	id, ok := s.bookingID(w, r)
	if !ok {
		return
	}
	if err := decodeJSON(r, body); err != nil {
		bodyError(w, err)
		return
	}
	view, err := s.sessions.Edit(id, toData())
	if err != nil {
		s.writeServiceError(w, r, err, "booking")
		return
	}
	s.writeBooking(w, r, http.StatusOK, view, "")
}

func (s *Server) writeBooking(w http.ResponseWriter, r *http.Request, status int, v domain.SessionView, code string) {
	resp, err := s.bookingToResponse(v, code)
	if err != nil {
		s.writeServiceError(w, r, err, "currency")
		return
	}
	writeJSON(w, status, resp)
}

func (s *Server) bookingToResponse(v domain.SessionView, code string) (Booking, error) {
	quote, err := s.quoteResponse(v.Quote, code)
	if err != nil {
		return Booking{}, err
	}
	resp := Booking{
		ID:      v.ID,
		State:   string(v.State),
		Step:    int(v.State.Step()),
		Status:  string(v.Status),
		Package: v.Package,
		Trip: TripDetails{
			StartDate:     optionalDate(v.Trip.StartDate),
			EndDate:       optionalDate(v.Trip.EndDate),
			Adults:        v.Party.Adults,
			Children:      v.Party.Children,
			Accommodation: string(v.AddOns.Accommodation),
			Transport:     string(v.AddOns.Transport),
		},
		Contact:         v.Contact,
		SpecialRequests: v.SpecialRequests,
		Payment:         v.Payment,
		Errors:          v.Errors,
		LastError:       v.LastError,
		Quote:           quote,
	}
	if v.Record != nil {
		rec := reservationToResponse(*v.Record)
		resp.Reservation = &rec
	}
	return resp, nil
}

// optionalDate returns nil for a date that has not been entered yet.
func optionalDate(t time.Time) *openapi_types.Date {
	if t.IsZero() {
		return nil
	}
	return &openapi_types.Date{Time: t}
}
