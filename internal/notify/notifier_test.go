package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/smakolyk/internal/config"
	"github.com/mmynk/smakolyk/internal/models"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testUser() *models.User {
	return &models.User{
		EntityMeta: models.EntityMeta{ID: "u1"},
		Email:      "petro@example.com",
		Profile:    models.Profile{FirstName: "Petro", LastName: "Ivanenko"},
	}
}

func mailConfig() config.MailConfig {
	return config.MailConfig{Accountant: "accountant@example.com", OrdersReceiver: "kitchen@example.com"}
}

func TestOversum(t *testing.T) {
	outbox := &Outbox{}
	n := NewNotifier(outbox, mailConfig(), discard)

	date := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	require.NoError(t, n.Oversum(context.Background(), testUser(), date, 20))

	sent := outbox.Sent()
	require.Len(t, sent, 2)

	assert.Equal(t, []string{"petro@example.com"}, sent[0].To)
	assert.Equal(t, "Oversum", sent[0].Subject)
	assert.Equal(t,
		"Dear Petro Ivanenko,\nyou did 20 ₴ oversum for 2026-10-21. The difference will be deducted from your salary.",
		sent[0].Body)

	assert.Equal(t, []string{"accountant@example.com"}, sent[1].To)
	assert.Equal(t, "Petro Ivanenko\n-> 20 ₴ oversum.", sent[1].Body)
}

func TestOversum_SenderFailure(t *testing.T) {
	outbox := &Outbox{Err: errors.New("relay down")}
	n := NewNotifier(outbox, mailConfig(), discard)

	err := n.Oversum(context.Background(), testUser(), time.Now(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify user")
	assert.Contains(t, err.Error(), "notify accountant")
}

func TestWeeklyOrders(t *testing.T) {
	outbox := &Outbox{}
	n := NewNotifier(outbox, mailConfig(), discard)

	require.NoError(t, n.WeeklyOrders(context.Background(), "/tmp/orders.xlsx"))

	sent := outbox.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Orders", sent[0].Subject)
	assert.Equal(t, "Orders for current week:", sent[0].Body)
	assert.Equal(t, []string{"/tmp/orders.xlsx"}, sent[0].Attachments)
	assert.Equal(t, []string{"kitchen@example.com"}, sent[0].To)

	missing := NewNotifier(outbox, config.MailConfig{}, discard)
	assert.Error(t, missing.WeeklyOrders(context.Background(), "/tmp/orders.xlsx"))
}
