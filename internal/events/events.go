// Package events publishes reservation lifecycle events for downstream
// consumers such as the operations dashboard and the CRM sync.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects.
const (
	ReservationConfirmed = "reservation.confirmed"
	ReservationCancelled = "reservation.cancelled"
)

// Publisher sends a JSON-encoded payload on a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
	Close() error
}

// ReservationConfirmedEvent is published once a booking is committed.
type ReservationConfirmedEvent struct {
	ReservationID    int64     `json:"reservation_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	Flow             string    `json:"flow"`
	DestinationRef   string    `json:"destination_ref"`
	PackageRef       string    `json:"package_ref"`
	GuestEmail       string    `json:"guest_email"`
	GuestName        string    `json:"guest_name"`
	StartDate        string    `json:"start_date"`
	EndDate          string    `json:"end_date"`
	Adults           int       `json:"adults"`
	Children         int       `json:"children"`
	TotalPrice       float64   `json:"total_price"`
	Currency         string    `json:"currency"`
	PriceUnparsed    bool      `json:"price_unparsed"`
	ConfirmedAt      time.Time `json:"confirmed_at"`
}

// ReservationCancelledEvent is published when an operator cancels a booking.
type ReservationCancelledEvent struct {
	ReservationID    int64     `json:"reservation_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	GuestEmail       string    `json:"guest_email"`
	CancelledAt      time.Time `json:"cancelled_at"`
}

// NATSPublisher publishes over a core NATS connection.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("tourbook-api"))
	if err != nil {
		return nil, fmt.Errorf("events.NewNATSPublisher: %w", err)
	}
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("events.NATSPublisher.Publish: marshal: %w", err)
	}
	n.logger.DebugContext(ctx, "publishing event", "subject", subject, "bytes", len(payload))
	if err := n.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("events.NATSPublisher.Publish: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (n *NATSPublisher) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return fmt.Errorf("events.NATSPublisher.Close: %w", err)
	}
	return nil
}

// LogPublisher writes events to the log instead of a broker. It is used when
// NATS_URL is not configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher returns a LogPublisher writing to logger.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (l *LogPublisher) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("events.LogPublisher.Publish: marshal: %w", err)
	}
	l.logger.InfoContext(ctx, "event", "subject", subject, "payload", string(payload))
	return nil
}

func (l *LogPublisher) Close() error { return nil }
