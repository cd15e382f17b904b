package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Step identifies one page of the reservation form.
type Step int

const (
	StepTripDetails  Step = 1
	StepPersonalInfo Step = 2
	StepPayment      Step = 3
)

func (s Step) String() string {
	switch s {
	case StepTripDetails:
		return "trip_details"
	case StepPersonalInfo:
		return "personal_info"
	case StepPayment:
		return "payment"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// State is the position of a workflow in its state machine.
type State string

const (
	StateTripDetails  State = "trip_details"
	StatePersonalInfo State = "personal_info"
	StatePayment      State = "payment"
	StateSubmitting   State = "submitting"
	StateSubmitted    State = "submitted"
	StateAbandoned    State = "abandoned"
)

// StateForStep returns the state in which step s is active.
func StateForStep(s Step) State {
	switch s {
	case StepTripDetails:
		return StateTripDetails
	case StepPersonalInfo:
		return StatePersonalInfo
	case StepPayment:
		return StatePayment
	default:
		return ""
	}
}

// Step returns the active form step, or 0 when the state is not a form step.
func (s State) Step() Step {
	switch s {
	case StateTripDetails:
		return StepTripDetails
	case StatePersonalInfo:
		return StepPersonalInfo
	case StatePayment:
		return StepPayment
	default:
		return 0
	}
}

// DraftStatus tracks how far a draft has progressed.
type DraftStatus string

const (
	StatusDraft     DraftStatus = "draft"
	StatusValidated DraftStatus = "validated"
	StatusSubmitted DraftStatus = "submitted"
	StatusConfirmed DraftStatus = "confirmed"
	StatusFailed    DraftStatus = "failed"
)

// AccommodationTier is a selectable add-on with a fixed surcharge.
type AccommodationTier string

const (
	AccommodationStandard AccommodationTier = "standard"
	AccommodationPremium  AccommodationTier = "premium"
	AccommodationLuxury   AccommodationTier = "luxury"
)

// TransportTier is a selectable add-on with a fixed surcharge.
type TransportTier string

const (
	TransportShared  TransportTier = "shared"
	TransportPrivate TransportTier = "private"
)

// TripWindow holds calendar dates. Zero values mean "not entered yet".
type TripWindow struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Days is the number of nights between start and end.
func (w TripWindow) Days() int {
	return int(DateOf(w.EndDate).Sub(DateOf(w.StartDate)).Hours() / 24)
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type Party struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

type Contact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type AddOns struct {
	Accommodation AccommodationTier `json:"accommodation"`
	Transport     TransportTier     `json:"transport"`
}

// Payment is card data captured for shape validation only. It lives in the
// session and is never written to a store.
type Payment struct {
	CardNumber      string
	ExpiryMonthYear string
	CVV             string
	CardholderName  string
}

// PaymentView is the display-safe projection of Payment.
type PaymentView struct {
	CardLast4       string `json:"card_last4,omitempty"`
	ExpiryMonthYear string `json:"expiry_month_year,omitempty"`
	CardholderName  string `json:"cardholder_name,omitempty"`
	CVVProvided     bool   `json:"cvv_provided"`
}

// View masks everything but the last four card digits.
func (p Payment) View() PaymentView {
	digits := strings.ReplaceAll(p.CardNumber, " ", "")
	v := PaymentView{
		ExpiryMonthYear: p.ExpiryMonthYear,
		CardholderName:  p.CardholderName,
		CVVProvided:     p.CVV != "",
	}
	if len(digits) >= 4 {
		v.CardLast4 = digits[len(digits)-4:]
	}
	return v
}

// ReservationDraft is the in-progress reservation owned by one workflow.
type ReservationDraft struct {
	Package         PackageContext
	Trip            TripWindow
	Party           Party
	Contact         Contact
	AddOns          AddOns
	Payment         Payment
	SpecialRequests string
	Status          DraftStatus
	ValidatedStep   Step
	Errors          FieldErrors
}

// NewDraft seeds a draft from the entry context with one adult and default add-ons.
func NewDraft(pkg PackageContext) ReservationDraft {
	return ReservationDraft{
		Package: pkg,
		Party:   Party{Adults: 1},
		AddOns:  AddOns{Accommodation: AccommodationStandard, Transport: TransportShared},
		Status:  StatusDraft,
	}
}

// FieldErrors maps a field name to a human-readable message. An empty map
// means the checked step is valid. It satisfies errors.Is(err, ErrValidation).
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// StepData is one step's partial form input. Nil pointer fields are left
// untouched. Implementations are TripDetailsData, PersonalInfoData and PaymentData.
type StepData interface {
	Step() Step
	// Apply writes the non-nil fields into d and returns the names of the
	// fields it touched.
	Apply(d *ReservationDraft) []string
}

type TripDetailsData struct {
	StartDate     *time.Time
	EndDate       *time.Time
	Adults        *int
	Children      *int
	Accommodation *AccommodationTier
	Transport     *TransportTier
}

func (TripDetailsData) Step() Step { return StepTripDetails }

func (t TripDetailsData) Apply(d *ReservationDraft) []string {
	var touched []string
	if t.StartDate != nil {
		d.Trip.StartDate = DateOf(*t.StartDate)
		touched = append(touched, FieldStartDate)
	}
	if t.EndDate != nil {
		d.Trip.EndDate = DateOf(*t.EndDate)
		touched = append(touched, FieldEndDate)
	}
	if t.Adults != nil {
		d.Party.Adults = *t.Adults
		touched = append(touched, FieldAdults)
	}
	if t.Children != nil {
		d.Party.Children = *t.Children
		touched = append(touched, FieldChildren)
	}
	if t.Accommodation != nil {
		d.AddOns.Accommodation = *t.Accommodation
		touched = append(touched, FieldAccommodation)
	}
	if t.Transport != nil {
		d.AddOns.Transport = *t.Transport
		touched = append(touched, FieldTransport)
	}
	return touched
}

type PersonalInfoData struct {
	FirstName       *string
	LastName        *string
	Email           *string
	Phone           *string
	SpecialRequests *string
}

func (PersonalInfoData) Step() Step { return StepPersonalInfo }

func (p PersonalInfoData) Apply(d *ReservationDraft) []string {
	var touched []string
	if p.FirstName != nil {
		d.Contact.FirstName = *p.FirstName
		touched = append(touched, FieldFirstName)
	}
	if p.LastName != nil {
		d.Contact.LastName = *p.LastName
		touched = append(touched, FieldLastName)
	}
	if p.Email != nil {
		d.Contact.Email = *p.Email
		touched = append(touched, FieldEmail)
	}
	if p.Phone != nil {
		d.Contact.Phone = *p.Phone
		touched = append(touched, FieldPhone)
	}
	if p.SpecialRequests != nil {
		d.SpecialRequests = *p.SpecialRequests
		touched = append(touched, FieldSpecialRequests)
	}
	return touched
}

type PaymentData struct {
	CardNumber      *string
	ExpiryMonthYear *string
	CVV             *string
	CardholderName  *string
}

func (PaymentData) Step() Step { return StepPayment }

func (p PaymentData) Apply(d *ReservationDraft) []string {
	var touched []string
	if p.CardNumber != nil {
		d.Payment.CardNumber = *p.CardNumber
		touched = append(touched, FieldCardNumber)
	}
	if p.ExpiryMonthYear != nil {
		d.Payment.ExpiryMonthYear = *p.ExpiryMonthYear
		touched = append(touched, FieldExpiry)
	}
	if p.CVV != nil {
		d.Payment.CVV = *p.CVV
		touched = append(touched, FieldCVV)
	}
	if p.CardholderName != nil {
		d.Payment.CardholderName = *p.CardholderName
		touched = append(touched, FieldCardholderName)
	}
	return touched
}

// Field names used as FieldErrors keys. They match the JSON request fields.
const (
	FieldStartDate       = "start_date"
	FieldEndDate         = "end_date"
	FieldAdults          = "adults"
	FieldChildren        = "children"
	FieldAccommodation   = "accommodation"
	FieldTransport       = "transport"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldSpecialRequests = "special_requests"
	FieldCardNumber      = "card_number"
	FieldExpiry          = "expiry_month_year"
	FieldCVV             = "cvv"
	FieldCardholderName  = "cardholder_name"
)
