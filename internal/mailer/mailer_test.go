package mailer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tourbook/internal/mailer"
)

var _ mailer.Sender = (*mailer.MailerSend)(nil)
var _ mailer.Sender = (*mailer.LogSender)(nil)

func TestLogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	s := mailer.NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	id, err := s.Send(context.Background(), mailer.Message{
		ToEmail: "ada@example.com",
		Subject: "Your reservation is confirmed",
		Text:    "See you soon",
	})

	require.NoError(t, err)
	assert.Empty(t, id)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ada@example.com", entry["to"])
	assert.Equal(t, "Your reservation is confirmed", entry["subject"])
}
