package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/smakolyk/internal/config"
	"github.com/mmynk/smakolyk/internal/metrics"
	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/notify"
	"github.com/mmynk/smakolyk/internal/storage"
	"github.com/mmynk/smakolyk/internal/storage/sqlite"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func seed(t *testing.T, store *sqlite.SQLiteStore, n int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.ReplaceMenu(ctx, []models.MenuItem{{Category: models.FirstCourse, Name: "Borscht", Price: 25}}))

	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		user := models.NewUser(
			string(rune('a'+i))+"@example.com", "hash",
			models.Profile{
				Username:  "user" + string(rune('a'+i)),
				FirstName: "First",
				LastName:  "Last" + string(rune('A'+i)),
				Phone:     "+38050000000" + string(rune('0'+i)),
			},
		)
		require.NoError(t, store.CreateUser(ctx, user))

		var orders []*models.PendingOrder
		for d := 0; d < 5; d++ {
			o := &models.PendingOrder{UserID: user.ID, Date: monday.AddDate(0, 0, d)}
			o.Selections[models.FirstCourse] = models.NewSelection("Borscht", 1)
			for _, c := range models.Categories[1:] {
				o.Selections[c] = models.NewSelection("", 0)
			}
			orders = append(orders, o)
		}
		_, err := store.SubmitOrders(ctx, storage.Week{From: monday, To: monday.AddDate(0, 0, 4)}, orders)
		require.NoError(t, err)
	}
}

func newStore(t *testing.T) *sqlite.SQLiteStore {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRun(t *testing.T) {
	store := newStore(t)
	seed(t, store, 3)

	outbox := &notify.Outbox{}
	notifier := notify.NewNotifier(outbox, config.MailConfig{OrdersReceiver: "kitchen@example.com"}, discard)
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	agg := New(store, notifier, path, metrics.New(), discard)

	report, err := agg.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, report.Orders)

	n, err := store.CountPendingOrders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "pending orders are drained")

	history, err := store.ListHistory(context.Background(), storage.HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, history, 15, "history is untouched")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	assert.Len(t, rows, 16)

	sent := outbox.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Orders", sent[0].Subject)
	assert.Equal(t, []string{path}, sent[0].Attachments)
}

func TestRun_NothingPending(t *testing.T) {
	store := newStore(t)
	outbox := &notify.Outbox{}
	notifier := notify.NewNotifier(outbox, config.MailConfig{OrdersReceiver: "kitchen@example.com"}, discard)
	agg := New(store, notifier, filepath.Join(t.TempDir(), "orders.xlsx"), nil, discard)

	report, err := agg.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Orders)
	assert.Len(t, outbox.Sent(), 1, "an empty export is still sent")
}

func TestRun_MailFailure(t *testing.T) {
	store := newStore(t)
	seed(t, store, 1)

	outbox := &notify.Outbox{Err: errors.New("smtp down")}
	notifier := notify.NewNotifier(outbox, config.MailConfig{OrdersReceiver: "kitchen@example.com"}, discard)
	agg := New(store, notifier, filepath.Join(t.TempDir(), "orders.xlsx"), nil, discard)

	report, err := agg.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 5, report.Orders)
}
