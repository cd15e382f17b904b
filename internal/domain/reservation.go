package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle of a committed reservation.
type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// ParseReservationStatus returns the status for s and whether it is known.
func ParseReservationStatus(s string) (ReservationStatus, bool) {
	switch ReservationStatus(s) {
	case ReservationConfirmed, ReservationCancelled:
		return ReservationStatus(s), true
	default:
		return "", false
	}
}

// ReservationRecord is the immutable result of a successful submission.
// ID is the store's incrementing key; ConfirmationCode is shown to the guest.
// Payment data is deliberately absent.
type ReservationRecord struct {
	ID               int64             `json:"id"`
	ConfirmationCode uuid.UUID         `json:"confirmation_code"`
	Flow             FlowKind          `json:"flow"`
	DestinationRef   string            `json:"destination_ref"`
	PackageRef       string            `json:"package_ref"`
	DurationLabel    string            `json:"duration_label,omitempty"`
	IncludedItems    []string          `json:"included_items"`
	StartDate        time.Time         `json:"start_date"`
	EndDate          time.Time         `json:"end_date"`
	Adults           int               `json:"adults"`
	Children         int               `json:"children"`
	Contact          Contact           `json:"contact"`
	AddOns           AddOns            `json:"add_ons"`
	SpecialRequests  string            `json:"special_requests,omitempty"`
	BasePrice        float64           `json:"base_price"`
	TotalPrice       float64           `json:"total_price"`
	PriceUnparsed    bool              `json:"price_unparsed"`
	Currency         string            `json:"currency"`
	Status           ReservationStatus `json:"status"`
	ConfirmedAt      time.Time         `json:"confirmed_at"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewReservationRecord converts a validated draft and its quote into a record
// ready to be stored. The store assigns ID, CreatedAt and UpdatedAt.
func NewReservationRecord(d ReservationDraft, q Quote, currency string, code uuid.UUID, at time.Time) ReservationRecord {
	included := d.Package.IncludedItems
	if included == nil {
		included = []string{}
	}
	return ReservationRecord{
		ConfirmationCode: code,
		Flow:             d.Package.Flow,
		DestinationRef:   d.Package.DestinationRef,
		PackageRef:       d.Package.PackageRef,
		DurationLabel:    d.Package.DurationLabel,
		IncludedItems:    included,
		StartDate:        d.Trip.StartDate,
		EndDate:          d.Trip.EndDate,
		Adults:           d.Party.Adults,
		Children:         d.Party.Children,
		Contact:          d.Contact,
		AddOns:           d.AddOns,
		SpecialRequests:  d.SpecialRequests,
		BasePrice:        q.BasePrice,
		TotalPrice:       q.Total,
		PriceUnparsed:    q.PriceUnparsed,
		Currency:         currency,
		Status:           ReservationConfirmed,
		ConfirmedAt:      at,
	}
}
