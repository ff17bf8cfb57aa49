// Package schedule implements the weekly ordering calendar: the upcoming week's
// working days, the submission cutoff and the delay of deferred menu imports.
package schedule

import (
	"fmt"
	"time"

	"github.com/mmynk/smakolyk/internal/config"
	"github.com/mmynk/smakolyk/internal/models"
)

// Window is the weekly submission window. Orders for the upcoming week are accepted
// until CutoffHour on CutoffWeekday; from then until the end of the week they are refused.
type Window struct {
	CutoffWeekday time.Weekday
	CutoffHour    int
	Location      *time.Location

	// Days is the number of working days (starting Monday) offered for ordering.
	Days int
}

// FromConfig builds the window of cfg.
func FromConfig(cfg config.OrderingConfig) Window {
	return Window{
		CutoffWeekday: cfg.CutoffWeekday,
		CutoffHour:    cfg.CutoffHour,
		Location:      cfg.Location,
		Days:          cfg.DaysPerWeek,
	}
}

// mondayIndex maps a weekday to 0 (Monday) .. 6 (Sunday).
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func (w Window) local(now time.Time) time.Time {
	if w.Location == nil {
		return now
	}
	return now.In(w.Location)
}

// PastCutoff reports whether now is after the cutoff weekday, or on the cutoff weekday
// at or after the cutoff hour.
func (w Window) PastCutoff(now time.Time) bool {
	n := w.local(now)
	day, cutoff := mondayIndex(n.Weekday()), mondayIndex(w.CutoffWeekday)
	if day > cutoff {
		return true
	}
	return day == cutoff && n.Hour() >= w.CutoffHour
}

// Allows reports whether a submission made at now is inside the window.
func (w Window) Allows(now time.Time) bool {
	return !w.PastCutoff(now)
}

// Cutoff returns the cutoff moment of the week containing now.
func (w Window) Cutoff(now time.Time) time.Time {
	n := w.local(now)
	offset := mondayIndex(w.CutoffWeekday) - mondayIndex(n.Weekday())
	y, m, d := n.Date()
	return time.Date(y, m, d+offset, w.CutoffHour, 0, 0, 0, n.Location())
}

// Countdown is the delay of a deferred task invoked at now: zero once the cutoff of the
// current week has passed, otherwise the time left until that cutoff.
func (w Window) Countdown(now time.Time) time.Duration {
	if w.PastCutoff(now) {
		return 0
	}
	d := w.Cutoff(now).Sub(w.local(now))
	if d < 0 {
		return 0
	}
	return d
}

// CronSpec is the cron expression firing at the cutoff every week.
func (w Window) CronSpec() string {
	return fmt.Sprintf("0 %d * * %d", w.CutoffHour, int(w.CutoffWeekday))
}

// UpcomingWeek returns the working days of the week after the one containing now.
func (w Window) UpcomingWeek(now time.Time) []time.Time {
	n := w.local(now)
	monday := models.Date(n).AddDate(0, 0, 7-mondayIndex(n.Weekday()))
	return w.days(monday)
}

// WeekOf returns the working days of the week containing date.
func (w Window) WeekOf(date time.Time) []time.Time {
	monday := models.Date(date).AddDate(0, 0, -mondayIndex(date.Weekday()))
	return w.days(monday)
}

func (w Window) days(monday time.Time) []time.Time {
	n := w.Days
	if n <= 0 {
		n = 5
	}
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i)
	}
	return dates
}

// WeekRange returns the first and last date of a week as returned by UpcomingWeek or WeekOf.
func WeekRange(dates []time.Time) (from, to time.Time) {
	if len(dates) == 0 {
		return time.Time{}, time.Time{}
	}
	return dates[0], dates[len(dates)-1]
}
