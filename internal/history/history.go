// Package history presents the History Ledger one week at a time.
package history

import (
	"context"
	"time"

	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/schedule"
	"github.com/mmynk/smakolyk/internal/storage"
)

// Store reads the ledger.
type Store interface {
	ListHistory(ctx context.Context, filter storage.HistoryFilter) ([]*models.HistoryRecord, error)
}

// Day is one working day of a history week. Record is nil when nothing was ordered.
type Day struct {
	Date   time.Time
	Name   string
	Record *models.HistoryRecord
}

// Total is the day total (0 without a record).
func (d Day) Total() int64 {
	if d.Record == nil {
		return 0
	}
	return d.Record.Total
}

// Week is a user's history for the working days of one week.
type Week struct {
	Days []Day
	// DateExists reports whether any record falls in the week.
	DateExists bool
}

// Total is the sum of the day totals.
func (w *Week) Total() int64 {
	var t int64
	for _, d := range w.Days {
		t += d.Total()
	}
	return t
}

// Service answers history queries.
type Service struct {
	store  Store
	window schedule.Window
	now    func() time.Time
}

// NewService creates a history service using window for week boundaries.
func NewService(store Store, window schedule.Window) *Service {
	return &Service{store: store, window: window, now: time.Now}
}

// WithClock replaces the clock used to find the upcoming week.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Week returns the user's history for the week containing date.
// A zero date means the upcoming week.
func (s *Service) Week(ctx context.Context, userID string, date time.Time) (*Week, error) {
	var dates []time.Time
	if date.IsZero() {
		dates = s.window.UpcomingWeek(s.now())
	} else {
		dates = s.window.WeekOf(date)
	}
	from, to := schedule.WeekRange(dates)

	records, err := s.store.ListHistory(ctx, storage.HistoryFilter{UserID: userID, From: from, To: to})
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*models.HistoryRecord, len(records))
	for _, r := range records {
		// Newest first: keep the first record seen for a date.
		key := r.Date.Format(models.DateLayout)
		if _, ok := byDate[key]; !ok {
			byDate[key] = r
		}
	}

	week := &Week{Days: make([]Day, len(dates)), DateExists: len(records) > 0}
	for i, d := range dates {
		week.Days[i] = Day{Date: d, Name: d.Weekday().String(), Record: byDate[d.Format(models.DateLayout)]}
	}
	return week, nil
}

// List returns the records matching filter, newest first.
func (s *Service) List(ctx context.Context, filter storage.HistoryFilter) ([]*models.HistoryRecord, error) {
	return s.store.ListHistory(ctx, filter)
}
