package calendar

// Match classifies the events found for one expected title.
// It is one of NoMatch, OneMatch or ManyMatches.
type Match interface {
	isMatch()
}

// NoMatch means no event carries the expected title.
type NoMatch struct{}

// OneMatch is the single event carrying the expected title.
type OneMatch struct {
	Event Event
}

// ManyMatches holds every event carrying the expected title, in query order.
// The first one is kept.
type ManyMatches struct {
	Events []Event
}

func (NoMatch) isMatch()     {}
func (OneMatch) isMatch()    {}
func (ManyMatches) isMatch() {}

// Classify keeps the events whose summary equals title exactly. Free-text
// search returns near misses, so the comparison is done here.
func Classify(events []Event, title string) Match {
	var same []Event
	for _, ev := range events {
		if ev.Summary == title {
			same = append(same, ev)
		}
	}
	switch len(same) {
	case 0:
		return NoMatch{}
	case 1:
		return OneMatch{Event: same[0]}
	default:
		return ManyMatches{Events: same}
	}
}
