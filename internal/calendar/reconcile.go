package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Action is what Ensure did to the calendar.
type Action string

const (
	ActionCreated Action = "created"
	ActionSkipped Action = "skipped"
	ActionPruned  Action = "pruned"
)

// Target describes the one event that should exist.
type Target struct {
	// Event is created when no event with Event.Summary is found.
	Event Event
	// Text is the free-text search term sent with the query.
	Text string
	From time.Time
	To   time.Time
}

// Outcome reports what Ensure did.
type Outcome struct {
	Action Action
	// EventID is the created or kept event.
	EventID string
	Deleted int
	// QueryErr is set when the lookup failed and Ensure fell back to creating.
	QueryErr error
	// DeleteErrs holds failures while pruning duplicates.
	DeleteErrs []error
}

// Reconciler makes sure exactly one event exists per target.
type Reconciler struct {
	API    EventAPI
	Logger *log.Logger
}

func (r *Reconciler) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

// Ensure creates the target event unless one with the same summary already
// exists in the window. When several exist the first is kept and the rest
// are deleted. The returned error is non-nil only when creation fails.
func (r *Reconciler) Ensure(ctx context.Context, t Target) (Outcome, error) {
	title := t.Event.Summary
	var out Outcome

	var match Match = NoMatch{}
	events, err := r.API.ListEvents(ctx, Query{TimeMin: t.From, TimeMax: t.To, Text: t.Text})
	if err != nil {
		r.logger().Warn("calendar lookup failed, creating event anyway", "title", title, "err", err)
		out.QueryErr = err
	} else {
		match = Classify(events, title)
	}

	switch m := match.(type) {
	case NoMatch:
		created, err := r.API.CreateEvent(ctx, t.Event)
		if err != nil {
			return out, fmt.Errorf("creating %q: %w", title, err)
		}
		out.Action = ActionCreated
		out.EventID = created.ID
		r.logger().Debug("calendar event created", "title", title, "id", created.ID)

	case OneMatch:
		out.Action = ActionSkipped
		out.EventID = m.Event.ID
		r.logger().Debug("calendar event already exists", "title", title, "id", m.Event.ID)

	case ManyMatches:
		out.Action = ActionPruned
		out.EventID = m.Events[0].ID
		for _, dup := range m.Events[1:] {
			if err := r.API.DeleteEvent(ctx, dup.ID); err != nil {
				r.logger().Warn("removing duplicate calendar event failed", "title", title, "id", dup.ID, "err", err)
				out.DeleteErrs = append(out.DeleteErrs, err)
				continue
			}
			out.Deleted++
		}
		r.logger().Info("removed duplicate calendar events", "title", title, "deleted", out.Deleted, "kept", out.EventID)
	}
	return out, nil
}
