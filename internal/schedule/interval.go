// Package schedule holds the shift reconciliation primitives: turning a
// shift into a concrete interval, deciding whether two shifts overlap and
// reducing a mixed-provenance list to a conflict-free one.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/timecalc"
)

var (
	// ErrInvalidTimeFormat is returned for start/end values that are not
	// 24-hour "HH:MM" strings.
	ErrInvalidTimeFormat = errors.New("invalid time format, want HH:MM")
	// ErrInvalidDate is returned for dates that are not "YYYY-MM-DD".
	ErrInvalidDate = errors.New("invalid date, want YYYY-MM-DD")
)

// ParseClock parses a strict 24-hour "HH:MM" wall-clock string.
func ParseClock(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' || !isDigit(s[0]) || !isDigit(s[1]) || !isDigit(s[3]) || !isDigit(s[4]) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return hour, minute, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Interval returns the concrete [start, end) instants of s in loc (UTC when
// nil). When the end clock is at or before the start clock the end moves to
// the next calendar day, so equal start and end describe a 24-hour shift.
func Interval(s model.Shift, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(timecalc.DateLayout, s.Date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s.Date)
	}
	sh, sm, err := ParseClock(s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("shift %s start: %w", s.ID, err)
	}
	eh, em, err := ParseClock(s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("shift %s end: %w", s.ID, err)
	}

	y, m, d := day.Date()
	start := time.Date(y, m, d, sh, sm, 0, 0, loc)
	end := time.Date(y, m, d, eh, em, 0, 0, loc)
	if !end.After(start) {
		end = time.Date(y, m, d+1, eh, em, 0, 0, loc)
	}
	return start, end, nil
}

// Duration is the length of s after the overnight rule is applied.
func Duration(s model.Shift, loc *time.Location) (time.Duration, error) {
	start, end, err := Interval(s, loc)
	if err != nil {
		return 0, err
	}
	return end.Sub(start), nil
}

// Validate reports whether s has a well-formed date and times.
func Validate(s model.Shift) error {
	_, _, err := Interval(s, time.UTC)
	return err
}
