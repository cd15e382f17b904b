package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/events"
	"github.com/pkordes/tourbook/internal/mailer"
)

// EventPublisher publishes reservation lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

// MailSender delivers guest e-mail.
type MailSender interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

// PriceFormatter renders a base-currency amount in a display currency.
type PriceFormatter interface {
	Format(amount float64, code string) (string, error)
}

// Notifier fans a reservation change out to the event bus and the guest's
// inbox. Failures are logged and never returned: a booking is not undone
// because a notification could not be sent.
type Notifier struct {
	events EventPublisher
	mail   MailSender
	prices PriceFormatter
	logger *slog.Logger
}

// NewNotifier constructs a Notifier.
func NewNotifier(pub EventPublisher, mail MailSender, prices PriceFormatter, logger *slog.Logger) *Notifier {
	return &Notifier{events: pub, mail: mail, prices: prices, logger: logger}
}

// Confirmed announces a newly committed reservation.
func (n *Notifier) Confirmed(ctx context.Context, rec domain.ReservationRecord) {
	event := events.ReservationConfirmedEvent{
		ReservationID:    rec.ID,
		ConfirmationCode: rec.ConfirmationCode.String(),
		Flow:             string(rec.Flow),
		DestinationRef:   rec.DestinationRef,
		PackageRef:       rec.PackageRef,
		GuestEmail:       rec.Contact.Email,
		GuestName:        guestName(rec.Contact),
		StartDate:        rec.StartDate.Format(dateLayout),
		EndDate:          rec.EndDate.Format(dateLayout),
		Adults:           rec.Adults,
		Children:         rec.Children,
		TotalPrice:       rec.TotalPrice,
		Currency:         rec.Currency,
		PriceUnparsed:    rec.PriceUnparsed,
		ConfirmedAt:      rec.ConfirmedAt,
	}
	if err := n.events.Publish(ctx, events.ReservationConfirmed, event); err != nil {
		n.logger.ErrorContext(ctx, "failed to publish reservation event",
			"subject", events.ReservationConfirmed, "reservation_id", rec.ID, "error", err)
	}

	total, err := n.prices.Format(rec.TotalPrice, rec.Currency)
	if err != nil {
		total = fmt.Sprintf("%.2f %s", rec.TotalPrice, rec.Currency)
	}
	msg := mailer.Message{
		ToEmail: rec.Contact.Email,
		ToName:  guestName(rec.Contact),
		Subject: "Your reservation is confirmed",
		Text: fmt.Sprintf(
			"Hi %s,\n\nyour booking for %s (%s) from %s to %s is confirmed.\nConfirmation code: %s\nTotal: %s\n",
			rec.Contact.FirstName, rec.PackageRef, rec.DestinationRef,
			rec.StartDate.Format(dateLayout), rec.EndDate.Format(dateLayout),
			rec.ConfirmationCode, total),
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>your booking for <b>%s</b> from %s to %s is confirmed.</p><p>Confirmation code: <b>%s</b><br>Total: %s</p>",
			rec.Contact.FirstName, rec.PackageRef,
			rec.StartDate.Format(dateLayout), rec.EndDate.Format(dateLayout),
			rec.ConfirmationCode, total),
	}
	if _, err := n.mail.Send(ctx, msg); err != nil {
		n.logger.ErrorContext(ctx, "failed to send confirmation e-mail", "reservation_id", rec.ID, "error", err)
	}
}

// Cancelled announces an operator cancellation.
func (n *Notifier) Cancelled(ctx context.Context, rec domain.ReservationRecord) {
	event := events.ReservationCancelledEvent{
		ReservationID:    rec.ID,
		ConfirmationCode: rec.ConfirmationCode.String(),
		GuestEmail:       rec.Contact.Email,
		CancelledAt:      rec.UpdatedAt,
	}
	if err := n.events.Publish(ctx, events.ReservationCancelled, event); err != nil {
		n.logger.ErrorContext(ctx, "failed to publish reservation event",
			"subject", events.ReservationCancelled, "reservation_id", rec.ID, "error", err)
	}
}

const dateLayout = "2006-01-02"

func guestName(c domain.Contact) string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
