package timecalc

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used for shifts and day files.
const DateLayout = "2006-01-02"

// GenerateID creates a unique shift ID prefixed with the shift date so IDs
// sort roughly chronologically in the local cache.
func GenerateID(date string) string {
	compact := date
	if d, err := time.Parse(DateLayout, date); err == nil {
		compact = d.Format("20060102")
	}
	return fmt.Sprintf("%s-%s", compact, uuid.NewString()[:8])
}

// FormatHours formats a duration as "8h" or "7h 30m".
func FormatHours(d time.Duration) string {
	h := int64(d.Hours())
	m := int64(d.Minutes()) % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	sunday := EndOfDay(monday.AddDate(0, 0, 6))
	return monday, sunday
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// InRange reports whether the date string falls in [from, to] by calendar
// day. Malformed dates are never in range.
func InRange(date string, from, to time.Time) bool {
	d, err := time.ParseInLocation(DateLayout, date, from.Location())
	if err != nil {
		return false
	}
	return !d.Before(StartOfDay(from)) && !d.After(StartOfDay(to))
}

// DaysBetween returns the whole number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
