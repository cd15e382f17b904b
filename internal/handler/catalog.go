package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/service"
)

// ListDestinations handles GET /destinations.
func (s *Server) ListDestinations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.List())
}

// GetDestination handles GET /destinations/{ref}.
func (s *Server) GetDestination(w http.ResponseWriter, r *http.Request) {
	dest, err := s.catalog.Get(chi.URLParam(r, "ref"))
	if err != nil {
		s.writeServiceError(w, r, err, "destination")
		return
	}
	writeJSON(w, http.StatusOK, dest)
}

// ListCurrencies handles GET /currencies.
func (s *Server) ListCurrencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CurrenciesResponse{Base: s.currency.Base(), Currencies: s.currency.Currencies()})
}

// CreateQuote handles POST /quotes: a one-off price quote without a session.
// An unparseable price label quotes a base price of 0 with price_unparsed set.
func (s *Server) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var body QuoteRequest
	if err := decodeJSON(r, &body); err != nil {
		bodyError(w, err)
		return
	}

	in := domain.QuoteInput{
		Adults:        body.Adults,
		Children:      body.Children,
		Accommodation: domain.AccommodationTier(strings.ToLower(body.Accommodation)),
		Transport:     domain.TransportTier(strings.ToLower(body.Transport)),
	}
	if errs := service.ValidateQuoteInput(in); len(errs) > 0 {
		s.writeServiceError(w, r, errs, "quote")
		return
	}

	q, err := service.QuoteLabel(body.PriceLabel, in)
	if err != nil {
		s.logger.WarnContext(r.Context(), "quote for unparseable price label", "price_label", body.PriceLabel)
	}
	resp, err := s.quoteResponse(q, body.Currency)
	if err != nil {
		s.writeServiceError(w, r, err, "currency")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// quoteResponse renders q with its total formatted in code, or in the base
// currency when code is empty.
func (s *Server) quoteResponse(q domain.Quote, code string) (QuoteResponse, error) {
	resp := QuoteResponse{
		BasePrice:              q.BasePrice,
		AdultsSubtotal:         q.AdultsSubtotal,
		ChildrenSubtotal:       q.ChildrenSubtotal,
		AccommodationSurcharge: q.AccommodationSurcharge,
		TransportSurcharge:     q.TransportSurcharge,
		Total:                  q.Total,
		PriceUnparsed:          q.PriceUnparsed,
	}
	if s.currency == nil {
		return resp, nil
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = s.currency.Base()
	}
	display, err := s.currency.Format(q.Total, code)
	if err != nil {
		return QuoteResponse{}, err
	}
	resp.Currency = code
	resp.DisplayTotal = display
	return resp, nil
}
