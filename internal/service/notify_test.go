package service_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/events"
	"github.com/pkordes/tourbook/internal/mailer"
	"github.com/pkordes/tourbook/internal/service"
)

type published struct {
	subject string
	data    any
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, subject string, data any) error {
	f.sent = append(f.sent, published{subject: subject, data: data})
	return f.err
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	f.sent = append(f.sent, msg)
	return "msg-1", f.err
}

type fakeFormatter struct{}

func (fakeFormatter) Format(amount float64, code string) (string, error) {
	if code != "USD" {
		return "", domain.ErrValidation
	}
	return "$" + strconv.FormatFloat(amount, 'f', -1, 64), nil
}

var (
	_ service.EventPublisher = (*fakePublisher)(nil)
	_ service.MailSender     = (*fakeMailer)(nil)
	_ service.PriceFormatter = fakeFormatter{}
)

func recordFixture() domain.ReservationRecord {
	return domain.ReservationRecord{
		ID:               7,
		ConfirmationCode: uuid.MustParse("6f1c2a8e-8d7a-4c77-9a55-0b8d5d6f0e11"),
		Flow:             domain.FlowExperience,
		DestinationRef:   "serengeti",
		PackageRef:       "serengeti-3day",
		StartDate:        time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2026, 11, 4, 0, 0, 0, 0, time.UTC),
		Adults:           2,
		Children:         1,
		Contact:          domain.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "+15555550100"},
		TotalPrice:       1465,
		Currency:         "USD",
		Status:           domain.ReservationConfirmed,
	}
}

func TestNotifier_Confirmed(t *testing.T) {
	pub := &fakePublisher{}
	mail := &fakeMailer{}
	n := service.NewNotifier(pub, mail, fakeFormatter{}, slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))

	n.Confirmed(context.Background(), recordFixture())

	require.Len(t, pub.sent, 1)
	assert.Equal(t, events.ReservationConfirmed, pub.sent[0].subject)
	ev, ok := pub.sent[0].data.(events.ReservationConfirmedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(7), ev.ReservationID)
	assert.Equal(t, "Ada Lovelace", ev.GuestName)
	assert.Equal(t, "2026-11-01", ev.StartDate)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "ada@example.com", mail.sent[0].ToEmail)
	assert.Contains(t, mail.sent[0].Text, "6f1c2a8e-8d7a-4c77-9a55-0b8d5d6f0e11")
	assert.Contains(t, mail.sent[0].Text, "$1465")
}

func TestNotifier_Confirmed_FailuresAreLoggedNotReturned(t *testing.T) {
	var logs bytes.Buffer
	pub := &fakePublisher{err: errors.New("nats down")}
	mail := &fakeMailer{err: errors.New("smtp down")}
	n := service.NewNotifier(pub, mail, fakeFormatter{}, slog.New(slog.NewJSONHandler(&logs, nil)))

	rec := recordFixture()
	rec.Currency = "XYZ"
	n.Confirmed(context.Background(), rec)

	assert.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0].Text, "1465.00 XYZ")
	assert.Contains(t, logs.String(), "nats down")
	assert.Contains(t, logs.String(), "smtp down")
}

func TestNotifier_Cancelled(t *testing.T) {
	pub := &fakePublisher{}
	mail := &fakeMailer{}
	n := service.NewNotifier(pub, mail, fakeFormatter{}, slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)))

	n.Cancelled(context.Background(), recordFixture())

	require.Len(t, pub.sent, 1)
	assert.Equal(t, events.ReservationCancelled, pub.sent[0].subject)
	assert.Empty(t, mail.sent)
}
