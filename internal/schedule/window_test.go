package schedule

import (
	"testing"
	"time"
)

var window = Window{
	CutoffWeekday: time.Friday,
	CutoffHour:    18,
	Location:      time.UTC,
	Days:          5,
}

func at(day, hour, minute int) time.Time {
	// 2026-10-12 is a Monday.
	return time.Date(2026, 10, 12+day, hour, minute, 0, 0, time.UTC)
}

func TestPastCutoff(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"monday morning", at(0, 9, 0), false},
		{"thursday evening", at(3, 23, 59), false},
		{"friday before cutoff", at(4, 17, 59), false},
		{"friday at cutoff", at(4, 18, 0), true},
		{"friday late", at(4, 22, 0), true},
		{"saturday", at(5, 8, 0), true},
		{"sunday", at(6, 12, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := window.PastCutoff(tt.now); got != tt.want {
				t.Errorf("PastCutoff(%s) = %v, want %v", tt.now.Format(time.RFC1123), got, tt.want)
			}
			if window.Allows(tt.now) == tt.want {
				t.Errorf("Allows(%s) should be the negation of PastCutoff", tt.now.Format(time.RFC1123))
			}
		})
	}
}

func TestCountdown(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{"monday nine o'clock waits until friday 18:00", at(0, 9, 0), 4*24*time.Hour + 9*time.Hour},
		{"friday 17:30 waits half an hour", at(4, 17, 30), 30 * time.Minute},
		{"friday at cutoff runs immediately", at(4, 18, 0), 0},
		{"saturday runs immediately", at(5, 10, 0), 0},
		{"sunday runs immediately", at(6, 23, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := window.Countdown(tt.now); got != tt.want {
				t.Errorf("Countdown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCountdown_HonoursLocation(t *testing.T) {
	kyiv := time.FixedZone("EET", 2*60*60)
	w := window
	w.Location = kyiv

	// 15:30 UTC on Friday is 17:30 in the office.
	now := time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC)
	if got := w.Countdown(now); got != 30*time.Minute {
		t.Errorf("Countdown() = %v, want 30m", got)
	}
	// 16:00 UTC is already 18:00 locally.
	if !w.PastCutoff(time.Date(2026, 10, 16, 16, 0, 0, 0, time.UTC)) {
		t.Error("expected cutoff to be evaluated in the configured location")
	}
}

func TestUpcomingWeek(t *testing.T) {
	for day := 0; day < 7; day++ {
		dates := window.UpcomingWeek(at(day, 12, 0))
		if len(dates) != 5 {
			t.Fatalf("expected 5 dates, got %d", len(dates))
		}
		want := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
		if !dates[0].Equal(want) {
			t.Errorf("day %d: week starts %s, want %s", day, dates[0].Format("2006-01-02"), want.Format("2006-01-02"))
		}
		if dates[4].Weekday() != time.Friday {
			t.Errorf("day %d: last day is %s, want Friday", day, dates[4].Weekday())
		}
	}
}

func TestWeekOf(t *testing.T) {
	wednesday := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	dates := window.WeekOf(wednesday)

	from, to := WeekRange(dates)
	if from.Format("2006-01-02") != "2026-10-19" {
		t.Errorf("from = %s, want 2026-10-19", from.Format("2006-01-02"))
	}
	if to.Format("2006-01-02") != "2026-10-23" {
		t.Errorf("to = %s, want 2026-10-23", to.Format("2006-01-02"))
	}

	sunday := time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)
	if got := window.WeekOf(sunday)[0]; !got.Equal(from) {
		t.Errorf("sunday belongs to week starting %s, want %s", got.Format("2006-01-02"), from.Format("2006-01-02"))
	}
}

func TestCronSpec(t *testing.T) {
	if got := window.CronSpec(); got != "0 18 * * 5" {
		t.Errorf("CronSpec() = %q, want %q", got, "0 18 * * 5")
	}
}
