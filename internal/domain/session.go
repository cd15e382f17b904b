package domain

import "github.com/google/uuid"

// SessionView is a read-only snapshot of a reservation workflow for display.
// Payment data appears only in masked form.
type SessionView struct {
	ID              uuid.UUID          `json:"id"`
	State           State              `json:"state"`
	Status          DraftStatus        `json:"status"`
	Package         PackageContext     `json:"package"`
	Trip            TripWindow         `json:"trip"`
	Party           Party              `json:"party"`
	Contact         Contact            `json:"contact"`
	AddOns          AddOns             `json:"add_ons"`
	Payment         PaymentView        `json:"payment"`
	SpecialRequests string             `json:"special_requests,omitempty"`
	Errors          FieldErrors        `json:"errors,omitempty"`
	LastError       string             `json:"last_error,omitempty"`
	Quote           Quote              `json:"quote"`
	Record          *ReservationRecord `json:"record,omitempty"`
}

// SubmitOutcome is the single result of one submit() call: exactly one of
// Record or Err is set.
type SubmitOutcome struct {
	Record *ReservationRecord
	Err    error
}
