package schedule

import (
	"time"

	"github.com/Tiliavir/shiftsync/internal/model"
)

// Overlaps reports whether a and b share a non-empty stretch of time.
// Intervals are half-open, so a shift ending exactly when another starts
// does not overlap it. Comparison is done on instants, which makes an
// overnight shift overlap an early shift on the following date.
func Overlaps(a, b model.Shift, loc *time.Location) (bool, error) {
	as, ae, err := Interval(a, loc)
	if err != nil {
		return false, err
	}
	bs, be, err := Interval(b, loc)
	if err != nil {
		return false, err
	}
	return intersects(as, ae, bs, be), nil
}

func intersects(as, ae, bs, be time.Time) bool {
	return as.Before(be) && bs.Before(ae)
}
