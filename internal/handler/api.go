package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tourbook/internal/domain"
)

// The request and response shapes below mirror the schemas in spec/openapi.yaml.

// ErrorDetail is the body of every non-2xx response.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse wraps ErrorDetail as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type CurrenciesResponse struct {
	Base       string   `json:"base"`
	Currencies []string `json:"currencies"`
}

type QuoteRequest struct {
	PriceLabel    string `json:"price_label"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	Accommodation string `json:"accommodation"`
	Transport     string `json:"transport"`
	Currency      string `json:"currency"`
}

type QuoteResponse struct {
	BasePrice              float64 `json:"base_price"`
	AdultsSubtotal         float64 `json:"adults_subtotal"`
	ChildrenSubtotal       float64 `json:"children_subtotal"`
	AccommodationSurcharge float64 `json:"accommodation_surcharge"`
	TransportSurcharge     float64 `json:"transport_surcharge"`
	Total                  float64 `json:"total"`
	PriceUnparsed          bool    `json:"price_unparsed"`
	Currency               string  `json:"currency"`
	DisplayTotal           string  `json:"display_total"`
}

type StartBookingRequest struct {
	Flow           string   `json:"flow"`
	DestinationRef string   `json:"destination_ref"`
	PackageRef     string   `json:"package_ref"`
	PriceLabel     string   `json:"price_label"`
	DurationLabel  string   `json:"duration_label"`
	IncludedItems  []string `json:"included_items"`
}

// TripDetailsRequest is a partial edit: absent fields are left unchanged.
type TripDetailsRequest struct {
	StartDate     *openapi_types.Date `json:"start_date"`
	EndDate       *openapi_types.Date `json:"end_date"`
	Adults        *int                `json:"adults"`
	Children      *int                `json:"children"`
	Accommodation *string             `json:"accommodation"`
	Transport     *string             `json:"transport"`
}

type PersonalInfoRequest struct {
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	SpecialRequests *string `json:"special_requests"`
}

type PaymentRequest struct {
	CardNumber      *string `json:"card_number"`
	ExpiryMonthYear *string `json:"expiry_month_year"`
	CVV             *string `json:"cvv"`
	CardholderName  *string `json:"cardholder_name"`
}

type TripDetails struct {
	StartDate     *openapi_types.Date `json:"start_date,omitempty"`
	EndDate       *openapi_types.Date `json:"end_date,omitempty"`
	Adults        int                 `json:"adults"`
	Children      int                 `json:"children"`
	Accommodation string              `json:"accommodation"`
	Transport     string              `json:"transport"`
}

type Booking struct {
	ID              openapi_types.UUID    `json:"id"`
	State           string                `json:"state"`
	Step            int                   `json:"step,omitempty"`
	Status          string                `json:"status"`
	Package         domain.PackageContext `json:"package"`
	Trip            TripDetails           `json:"trip"`
	Contact         domain.Contact        `json:"contact"`
	SpecialRequests string                `json:"special_requests,omitempty"`
	Payment         domain.PaymentView    `json:"payment"`
	Errors          map[string]string     `json:"errors,omitempty"`
	LastError       string                `json:"last_error,omitempty"`
	Quote           QuoteResponse         `json:"quote"`
	Reservation     *Reservation          `json:"reservation,omitempty"`
}

type Reservation struct {
	ID               int64              `json:"id"`
	ConfirmationCode openapi_types.UUID `json:"confirmation_code"`
	Status           string             `json:"status"`
	Flow             string             `json:"flow"`
	DestinationRef   string             `json:"destination_ref"`
	PackageRef       string             `json:"package_ref"`
	DurationLabel    string             `json:"duration_label,omitempty"`
	IncludedItems    []string           `json:"included_items"`
	StartDate        openapi_types.Date `json:"start_date"`
	EndDate          openapi_types.Date `json:"end_date"`
	Adults           int                `json:"adults"`
	Children         int                `json:"children"`
	Contact          domain.Contact     `json:"contact"`
	Accommodation    string             `json:"accommodation"`
	Transport        string             `json:"transport"`
	SpecialRequests  string             `json:"special_requests,omitempty"`
	BasePrice        float64            `json:"base_price"`
	TotalPrice       float64            `json:"total_price"`
	PriceUnparsed    bool               `json:"price_unparsed"`
	Currency         string             `json:"currency"`
	ConfirmedAt      time.Time          `json:"confirmed_at"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type ReservationList struct {
	Data       []Reservation `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

type ExportRow struct {
	ID               int64     `json:"id"`
	ConfirmationCode string    `json:"confirmation_code"`
	Status           string    `json:"status"`
	Flow             string    `json:"flow"`
	DestinationRef   string    `json:"destination_ref"`
	PackageRef       string    `json:"package_ref"`
	StartDate        string    `json:"start_date"`
	EndDate          string    `json:"end_date"`
	Adults           int       `json:"adults"`
	Children         int       `json:"children"`
	GuestName        string    `json:"guest_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Accommodation    string    `json:"accommodation"`
	Transport        string    `json:"transport"`
	TotalPrice       float64   `json:"total_price"`
	Currency         string    `json:"currency"`
	PriceUnparsed    bool      `json:"price_unparsed"`
	ConfirmedAt      time.Time `json:"confirmed_at"`
}
