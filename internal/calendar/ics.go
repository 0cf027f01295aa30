package calendar

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/schedule"
)

// WriteICS renders shifts as an iCalendar feed for calendar apps that
// subscribe to or import .ics files. An empty prefix selects
// DefaultEventPrefix.
func WriteICS(w io.Writer, shifts []model.Shift, prefix string, loc *time.Location) error {
	if prefix == "" {
		prefix = DefaultEventPrefix
	}
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//shiftsync//shift export//EN")

	stamp := time.Now().UTC()
	for _, s := range shifts {
		start, end, err := schedule.Interval(s, loc)
		if err != nil {
			return fmt.Errorf("shift %s: %w", s.ID, err)
		}
		ev := cal.AddEvent(s.ID + "@shiftsync")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(prefix + s.Title)
		ev.SetDescription("Work shift created by shiftsync")
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}
