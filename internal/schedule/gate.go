package schedule

import (
	"fmt"
	"time"

	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/timecalc"
)

// Insertion is the result of AddWithOverlapCheck. When Inserted is false the
// Shifts slice is the untouched existing list and Conflicts names the
// entries that blocked the candidate.
type Insertion struct {
	Inserted  bool
	Shifts    []model.Shift
	Conflicts []model.Shift
}

// Message is a user-facing description of a rejected insertion.
func (i Insertion) Message() string {
	if i.Inserted || len(i.Conflicts) == 0 {
		return ""
	}
	label := i.Conflicts[0].Date
	if d, err := time.Parse(timecalc.DateLayout, label); err == nil {
		label = d.Format("January 2")
	}
	return fmt.Sprintf("You already have %d shift(s) on %s that would overlap with this one.", len(i.Conflicts), label)
}

// AddWithOverlapCheck appends candidate to existing unless it overlaps a
// shift on the same date. A conflict is a normal outcome, not an error; only
// malformed times produce an error.
func AddWithOverlapCheck(candidate model.Shift, existing []model.Shift, loc *time.Location) (Insertion, error) {
	cs, ce, err := Interval(candidate, loc)
	if err != nil {
		return Insertion{}, err
	}

	var conflicts []model.Shift
	for _, e := range existing {
		if e.Date != candidate.Date {
			continue
		}
		es, ee, err := Interval(e, loc)
		if err != nil {
			return Insertion{}, err
		}
		if intersects(cs, ce, es, ee) {
			conflicts = append(conflicts, e)
		}
	}
	if len(conflicts) > 0 {
		return Insertion{Shifts: existing, Conflicts: conflicts}, nil
	}

	out := make([]model.Shift, 0, len(existing)+1)
	out = append(out, existing...)
	out = append(out, candidate)
	return Insertion{Inserted: true, Shifts: out}, nil
}
