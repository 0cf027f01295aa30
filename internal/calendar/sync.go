package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/schedule"
)

const (
	DefaultEventPrefix     = "Work Shift: "
	ReminderPrefix         = "Shift Reminder: "
	DefaultSyncBuffer      = time.Hour
	DefaultReminderBuffer  = 6 * time.Hour
	DefaultReminderMinutes = 30

	reminderLength = 15 * time.Minute
)

// Google Calendar color IDs.
const (
	colorBlue   = "1"
	colorYellow = "5"
	colorPurple = "9"
)

// ColorFor picks the event color from keywords in the shift title.
func ColorFor(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "night"):
		return colorPurple
	case strings.Contains(t, "afternoon"), strings.Contains(t, "evening"):
		return colorYellow
	default:
		return colorBlue
	}
}

// SyncOptions configures pushing shifts as calendar events.
type SyncOptions struct {
	Prefix string
	Buffer time.Duration
	Loc    *time.Location
}

func (o SyncOptions) withDefaults() SyncOptions {
	if o.Prefix == "" {
		o.Prefix = DefaultEventPrefix
	}
	if o.Buffer <= 0 {
		o.Buffer = DefaultSyncBuffer
	}
	if o.Loc == nil {
		o.Loc = time.UTC
	}
	return o
}

// ReminderOptions configures reminder events.
type ReminderOptions struct {
	Minutes int
	Buffer  time.Duration
	Loc     *time.Location
}

func (o ReminderOptions) withDefaults() ReminderOptions {
	if o.Minutes <= 0 {
		o.Minutes = DefaultReminderMinutes
	}
	if o.Buffer <= 0 {
		o.Buffer = DefaultReminderBuffer
	}
	if o.Loc == nil {
		o.Loc = time.UTC
	}
	return o
}

// ShiftTarget builds the calendar event covering the shift interval.
func ShiftTarget(s model.Shift, opts SyncOptions) (Target, error) {
	opts = opts.withDefaults()
	start, end, err := schedule.Interval(s, opts.Loc)
	if err != nil {
		return Target{}, err
	}
	return Target{
		Event: Event{
			Summary:     opts.Prefix + s.Title,
			Description: "Work shift created by shiftsync",
			Start:       eventTime(start, opts.Loc),
			End:         eventTime(end, opts.Loc),
			ColorID:     ColorFor(s.Title),
		},
		Text: s.Title,
		From: start.Add(-opts.Buffer),
		To:   end.Add(opts.Buffer),
	}, nil
}

// ReminderTarget builds a short event at the shift start with a popup
// reminder ahead of it.
func ReminderTarget(s model.Shift, opts ReminderOptions) (Target, error) {
	opts = opts.withDefaults()
	start, _, err := schedule.Interval(s, opts.Loc)
	if err != nil {
		return Target{}, err
	}
	return Target{
		Event: Event{
			Summary:     ReminderPrefix + s.Title,
			Description: "Reminder for your upcoming shift: " + s.Title,
			Start:       eventTime(start, opts.Loc),
			End:         eventTime(start.Add(reminderLength), opts.Loc),
			Reminders: &Reminders{
				Overrides: []ReminderOverride{{Method: "popup", Minutes: opts.Minutes}},
			},
		},
		Text: s.Title,
		From: start.Add(-opts.Buffer),
		To:   start.Add(opts.Buffer),
	}, nil
}

// SyncShift makes sure the shift appears exactly once in the calendar.
func SyncShift(ctx context.Context, r *Reconciler, s model.Shift, opts SyncOptions) (Outcome, error) {
	t, err := ShiftTarget(s, opts)
	if err != nil {
		return Outcome{}, fmt.Errorf("shift %s: %w", s.ID, err)
	}
	return r.Ensure(ctx, t)
}

// SetupReminder makes sure the shift has exactly one reminder event.
func SetupReminder(ctx context.Context, r *Reconciler, s model.Shift, opts ReminderOptions) (Outcome, error) {
	t, err := ReminderTarget(s, opts)
	if err != nil {
		return Outcome{}, fmt.Errorf("shift %s: %w", s.ID, err)
	}
	return r.Ensure(ctx, t)
}

func eventTime(t time.Time, loc *time.Location) EventTime {
	et := EventTime{DateTime: t.Format(time.RFC3339)}
	if name := loc.String(); name != "Local" {
		et.TimeZone = name
	}
	return et
}
