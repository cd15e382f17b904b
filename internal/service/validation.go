package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/tourbook/internal/domain"
)

var (
	emailPattern  = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern  = regexp.MustCompile(`^\+?\d{10,}$`)
	phoneSeps     = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	cardPattern   = regexp.MustCompile(`^\d{16}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

// ValidateStep runs every rule of step against d and returns the field
// errors. An empty map means the step is valid. No rule mutates d.
func ValidateStep(step domain.Step, d domain.ReservationDraft, rules domain.FlowRules, now time.Time) domain.FieldErrors {
	switch step {
	case domain.StepTripDetails:
		return ValidateTripDetails(d, rules, now)
	case domain.StepPersonalInfo:
		return ValidatePersonalInfo(d)
	case domain.StepPayment:
		return ValidatePayment(d, now)
	default:
		return domain.FieldErrors{}
	}
}

// ValidateTripDetails checks the trip window, party size and add-on tiers.
// Dates are compared as calendar dates; "today" is the date of now.
func ValidateTripDetails(d domain.ReservationDraft, rules domain.FlowRules, now time.Time) domain.FieldErrors {
	errs := domain.FieldErrors{}
	today := domain.DateOf(now)
	start, end := d.Trip.StartDate, d.Trip.EndDate

	switch {
	case start.IsZero():
		errs[domain.FieldStartDate] = "Start date is required"
	case domain.DateOf(start).Before(today):
		errs[domain.FieldStartDate] = "Start date cannot be in the past"
	}

	switch {
	case end.IsZero():
		errs[domain.FieldEndDate] = "End date is required"
	case start.IsZero():
		// Ordering and span need a start date; the start error already covers it.
	case !domain.DateOf(end).After(domain.DateOf(start)):
		errs[domain.FieldEndDate] = "End date must be after start date"
	case rules.MaxTripDays > 0 && d.Trip.Days() > rules.MaxTripDays:
		errs[domain.FieldEndDate] = "Trip cannot exceed " + strconv.Itoa(rules.MaxTripDays) + " days"
	}

	switch {
	case d.Party.Adults < 1:
		errs[domain.FieldAdults] = "At least 1 adult is required"
	case rules.MaxGroupSize > 0 && d.Party.Adults > rules.MaxGroupSize:
		errs[domain.FieldAdults] = "Maximum " + strconv.Itoa(rules.MaxGroupSize) + " adults allowed"
	}

	if d.Party.Children < 0 {
		errs[domain.FieldChildren] = "Children cannot be negative"
	}

	if _, ok := domain.AccommodationSurcharges[accommodationOrDefault(d.AddOns.Accommodation)]; !ok {
		errs[domain.FieldAccommodation] = "Accommodation must be one of standard, premium, luxury"
	}
	if _, ok := domain.TransportSurcharges[transportOrDefault(d.AddOns.Transport)]; !ok {
		errs[domain.FieldTransport] = "Transport must be one of shared, private"
	}

	return errs
}

// ValidatePersonalInfo checks the contact fields.
func ValidatePersonalInfo(d domain.ReservationDraft) domain.FieldErrors {
	errs := domain.FieldErrors{}
	c := d.Contact

	checkName(errs, domain.FieldFirstName, "First name", c.FirstName, 2)
	checkName(errs, domain.FieldLastName, "Last name", c.LastName, 2)

	email := strings.TrimSpace(c.Email)
	switch {
	case email == "":
		errs[domain.FieldEmail] = "Email is required"
	case !emailPattern.MatchString(email):
		errs[domain.FieldEmail] = "Email is invalid"
	}

	phone := strings.TrimSpace(c.Phone)
	switch {
	case phone == "":
		errs[domain.FieldPhone] = "Phone number is required"
	case !phonePattern.MatchString(phoneSeps.Replace(phone)):
		errs[domain.FieldPhone] = "Phone number must contain at least 10 digits"
	}

	return errs
}

// ValidatePayment checks card data shape only. A card is usable through the
// last day of its expiry month.
func ValidatePayment(d domain.ReservationDraft, now time.Time) domain.FieldErrors {
	errs := domain.FieldErrors{}
	p := d.Payment

	card := strings.ReplaceAll(p.CardNumber, " ", "")
	switch {
	case card == "":
		errs[domain.FieldCardNumber] = "Card number is required"
	case !cardPattern.MatchString(card):
		errs[domain.FieldCardNumber] = "Card number must be 16 digits"
	}

	expiry := strings.TrimSpace(p.ExpiryMonthYear)
	if expiry == "" {
		errs[domain.FieldExpiry] = "Expiry date is required"
	} else if m := expiryPattern.FindStringSubmatch(expiry); m == nil {
		errs[domain.FieldExpiry] = "Expiry date must be in MM/YY format"
	} else if cardExpired(m[1], m[2], now) {
		errs[domain.FieldExpiry] = "Card has expired"
	}

	cvv := strings.TrimSpace(p.CVV)
	switch {
	case cvv == "":
		errs[domain.FieldCVV] = "CVV is required"
	case !cvvPattern.MatchString(cvv):
		errs[domain.FieldCVV] = "CVV must be 3 or 4 digits"
	}

	checkName(errs, domain.FieldCardholderName, "Cardholder name", p.CardholderName, 3)

	return errs
}

func checkName(errs domain.FieldErrors, field, label, value string, min int) {
	v := strings.TrimSpace(value)
	switch {
	case v == "":
		errs[field] = label + " is required"
	case len([]rune(v)) < min:
		errs[field] = label + " must be at least " + strconv.Itoa(min) + " characters"
	}
}

// cardExpired reports whether the month mm/yy ended before now.
func cardExpired(mm, yy string, now time.Time) bool {
	month, _ := strconv.Atoi(mm)
	year, _ := strconv.Atoi(yy)
	year += 2000
	// First instant after the expiry month, in now's location.
	endOfMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	return !now.Before(endOfMonth)
}

func accommodationOrDefault(t domain.AccommodationTier) domain.AccommodationTier {
	if t == "" {
		return domain.AccommodationStandard
	}
	return t
}

func transportOrDefault(t domain.TransportTier) domain.TransportTier {
	if t == "" {
		return domain.TransportShared
	}
	return t
}
