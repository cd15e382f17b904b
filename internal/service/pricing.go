package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkordes/tourbook/internal/domain"
)

// ParsePriceLabel extracts the amount from a display label such as
// "$1,250 / person" by dropping every character except digits and '.'.
// Returns domain.ErrPriceLabel when nothing parseable remains.
func ParsePriceLabel(label string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, label)
	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q", domain.ErrPriceLabel, label)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrPriceLabel, label)
	}
	return v, nil
}

// CalculateQuote prices a party and its add-ons in the base currency:
//
//	total = base×adults + base×0.7×children + accommodation + transport
//
// It is pure: identical input always yields an identical Quote.
// Subtotals and the total are rounded to cents, matching the stored NUMERIC(12,2).
// Unknown tiers price as zero; validation rejects them before submission.
func CalculateQuote(in domain.QuoteInput) domain.Quote {
	q := domain.Quote{
		BasePrice:              in.BasePrice,
		AdultsSubtotal:         toCents(in.BasePrice * float64(in.Adults)),
		ChildrenSubtotal:       toCents(in.BasePrice * domain.ChildRateFactor * float64(in.Children)),
		AccommodationSurcharge: toCents(domain.AccommodationSurcharges[accommodationOrDefault(in.Accommodation)]),
		TransportSurcharge:     toCents(domain.TransportSurcharges[transportOrDefault(in.Transport)]),
	}
	q.Total = toCents(q.AdultsSubtotal + q.ChildrenSubtotal + q.AccommodationSurcharge + q.TransportSurcharge)
	return q
}

func toCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// QuoteLabel parses label and prices the rest of the input with it. A label
// that cannot be parsed prices as 0 and marks the quote PriceUnparsed; the
// parse error is returned alongside for logging but the quote stays usable.
func QuoteLabel(label string, in domain.QuoteInput) (domain.Quote, error) {
	base, err := ParsePriceLabel(label)
	in.BasePrice = base
	q := CalculateQuote(in)
	q.PriceUnparsed = err != nil
	return q, err
}

// quoteInputFor collects the calculator inputs from a draft.
func quoteInputFor(d domain.ReservationDraft) domain.QuoteInput {
	return domain.QuoteInput{
		Adults:        d.Party.Adults,
		Children:      d.Party.Children,
		Accommodation: d.AddOns.Accommodation,
		Transport:     d.AddOns.Transport,
	}
}

// ValidateQuoteInput checks the party and add-on fields of an ad-hoc quote.
func ValidateQuoteInput(in domain.QuoteInput) domain.FieldErrors {
	errs := domain.FieldErrors{}
	if in.Adults < 1 {
		errs[domain.FieldAdults] = "At least 1 adult is required"
	}
	if in.Children < 0 {
		errs[domain.FieldChildren] = "Children cannot be negative"
	}
	if _, ok := domain.AccommodationSurcharges[accommodationOrDefault(in.Accommodation)]; !ok {
		errs[domain.FieldAccommodation] = "Accommodation must be one of standard, premium, luxury"
	}
	if _, ok := domain.TransportSurcharges[transportOrDefault(in.Transport)]; !ok {
		errs[domain.FieldTransport] = "Transport must be one of shared, private"
	}
	return errs
}
