package schedule

import (
	"sort"
	"time"

	"github.com/Tiliavir/shiftsync/internal/model"
)

// Dropped is a shift the reducer rejected, together with the accepted shift
// it collided with.
type Dropped struct {
	Shift         model.Shift
	ConflictsWith model.Shift
}

// MergeResult is the outcome of a merge: the conflict-free survivors in
// priority order and everything that was dropped.
type MergeResult struct {
	Kept    []model.Shift
	Dropped []Dropped
}

type span struct {
	shift      model.Shift
	start, end time.Time
}

// Merge reduces shifts from mixed sources to a pairwise non-overlapping list.
// Synced shifts win over local ones and, within the same provenance, the
// earlier start wins. Shifts are never modified, only dropped.
func Merge(shifts []model.Shift, loc *time.Location) ([]model.Shift, error) {
	res, err := MergeReport(shifts, loc)
	if err != nil {
		return nil, err
	}
	return res.Kept, nil
}

// MergeReport is Merge with the list of rejected shifts.
func MergeReport(shifts []model.Shift, loc *time.Location) (MergeResult, error) {
	spans := make([]span, 0, len(shifts))
	for _, s := range shifts {
		start, end, err := Interval(s, loc)
		if err != nil {
			return MergeResult{}, err
		}
		spans = append(spans, span{shift: s, start: start, end: end})
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return outranks(spans[i], spans[j])
	})

	res := MergeResult{Kept: make([]model.Shift, 0, len(spans))}
	accepted := make([]span, 0, len(spans))
	for _, c := range spans {
		if hit, ok := firstOverlap(c, accepted); ok {
			res.Dropped = append(res.Dropped, Dropped{Shift: c.shift, ConflictsWith: hit.shift})
			continue
		}
		accepted = append(accepted, c)
		res.Kept = append(res.Kept, c.shift)
	}
	return res, nil
}

// outranks is the reconciliation priority: synced first, then earlier start.
func outranks(a, b span) bool {
	if a.shift.Synced != b.shift.Synced {
		return a.shift.Synced
	}
	return a.start.Before(b.start)
}

func firstOverlap(c span, accepted []span) (span, bool) {
	for _, a := range accepted {
		if intersects(c.start, c.end, a.start, a.end) {
			return a, true
		}
	}
	return span{}, false
}
