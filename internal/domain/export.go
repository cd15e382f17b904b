package domain

import "time"

// ExportRow is a single row in the reservations export.
// It is a flat, denormalized view of one ReservationRecord.
type ExportRow struct {
	ID               int64
	ConfirmationCode string
	Status           string
	Flow             string
	DestinationRef   string
	PackageRef       string
	StartDate        string // "2006-01-02" formatted date
	EndDate          string
	Adults           int
	Children         int
	GuestName        string
	Email            string
	Phone            string
	Accommodation    string
	Transport        string
	TotalPrice       float64
	Currency         string
	PriceUnparsed    bool
	ConfirmedAt      time.Time
}
