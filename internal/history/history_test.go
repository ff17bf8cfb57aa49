package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/schedule"
	"github.com/mmynk/smakolyk/internal/storage"
)

type fakeStore struct {
	records []*models.HistoryRecord
	filters []storage.HistoryFilter
}

func (f *fakeStore) ListHistory(_ context.Context, filter storage.HistoryFilter) ([]*models.HistoryRecord, error) {
	f.filters = append(f.filters, filter)
	var out []*models.HistoryRecord
	for _, r := range f.records {
		if r.UserID == filter.UserID && !r.Date.Before(filter.From) && !r.Date.After(filter.To) {
			out = append(out, r)
		}
	}
	return out, nil
}

var window = schedule.Window{CutoffWeekday: time.Friday, CutoffHour: 18, Location: time.UTC, Days: 5}

func date(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC)
}

func TestWeek(t *testing.T) {
	store := &fakeStore{records: []*models.HistoryRecord{
		{UserID: "u1", Date: date(21), Total: 120},
		{UserID: "u1", Date: date(19), Total: 80},
		{UserID: "u2", Date: date(19), Total: 999},
	}}
	svc := NewService(store, window)

	week, err := svc.Week(context.Background(), "u1", date(23))
	require.NoError(t, err)

	require.True(t, week.DateExists)
	require.Len(t, week.Days, 5)
	assert.Equal(t, "Monday", week.Days[0].Name)
	assert.Equal(t, int64(80), week.Days[0].Total())
	assert.Nil(t, week.Days[1].Record)
	assert.Equal(t, int64(120), week.Days[2].Total())
	assert.Equal(t, int64(200), week.Total())

	assert.Equal(t, storage.HistoryFilter{UserID: "u1", From: date(19), To: date(23)}, store.filters[0])
}

func TestWeek_DefaultsToUpcomingWeek(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, window)
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }

	week, err := svc.Week(context.Background(), "u1", time.Time{})
	require.NoError(t, err)
	assert.False(t, week.DateExists)
	assert.True(t, week.Days[0].Date.Equal(date(19)))
	assert.Zero(t, week.Total())
}
