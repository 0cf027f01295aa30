package calendar_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Tiliavir/shiftsync/internal/calendar"
)

func TestClassify(t *testing.T) {
	a := calendar.Event{ID: "a", Summary: "Work Shift: Night"}
	b := calendar.Event{ID: "b", Summary: "Work Shift: Night"}
	near := calendar.Event{ID: "n", Summary: "Work Shift: Night cover"}
	other := calendar.Event{ID: "o", Summary: "Dentist"}

	tests := []struct {
		name   string
		events []calendar.Event
		want   calendar.Match
	}{
		{"empty", nil, calendar.NoMatch{}},
		{"only near misses", []calendar.Event{near, other}, calendar.NoMatch{}},
		{"one", []calendar.Event{other, a, near}, calendar.OneMatch{Event: a}},
		{"many keeps query order", []calendar.Event{b, near, a}, calendar.ManyMatches{Events: []calendar.Event{b, a}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calendar.Classify(tt.events, "Work Shift: Night")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
