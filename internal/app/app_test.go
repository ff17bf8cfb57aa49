package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/smakolyk/internal/config"
	"github.com/mmynk/smakolyk/internal/notify"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestOpenStore(t *testing.T) {
	cfg := config.Default().DB
	cfg.Path = filepath.Join(t.TempDir(), "nested", "smakolyk.db")

	store, err := OpenStore(context.Background(), cfg, discard)
	require.NoError(t, err)
	defer store.Close()

	menu, err := store.GetMenu(context.Background())
	require.NoError(t, err)
	assert.Empty(t, menu.Items)

	cfg.Driver = "mysql"
	_, err = OpenStore(context.Background(), cfg, discard)
	assert.ErrorContains(t, err, "unsupported")
}

func TestNewSender(t *testing.T) {
	cfg := config.Default().Mail
	assert.IsType(t, &notify.Outbox{}, NewSender(cfg, discard))

	cfg.Username = "kitchen@example.com"
	assert.IsType(t, &notify.SMTPSender{}, NewSender(cfg, discard))
}
