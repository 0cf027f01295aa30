package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftsync/internal/calendar"
	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/schedule"
	"github.com/Tiliavir/shiftsync/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current or next shift and connection state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustApp(ctx)
	defer a.Close()
	now := time.Now().In(a.loc)

	shifts, err := a.repo.View(ctx, a.cfg.UserID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cur, next := currentAndNext(shifts, now, a.loc)
	switch {
	case cur != nil:
		_, end, _ := schedule.Interval(*cur, a.loc)
		fmt.Println("On shift:")
		fmt.Printf("  %s  %s–%s\n", cur.Title, cur.StartTime, cur.EndTime)
		fmt.Printf("  Ends in: %s\n", timecalc.FormatHours(end.Sub(now)))
	case next != nil:
		start, _, _ := schedule.Interval(*next, a.loc)
		fmt.Println("Next shift:")
		fmt.Printf("  %s  %s %s–%s\n", next.Title, next.Date, next.StartTime, next.EndTime)
		fmt.Printf("  Starts in: %s\n", timecalc.FormatHours(start.Sub(now)))
	default:
		fmt.Println("No upcoming shifts.")
	}

	fmt.Println()
	switch {
	case a.cfg.DatabaseURL == "":
		fmt.Println("Remote store:    not configured")
	case a.remote == nil:
		fmt.Println("Remote store:    unavailable")
	default:
		fmt.Println("Remote store:    connected")
	}

	tok, err := a.tokens.Load(ctx, a.cfg.UserID)
	switch {
	case errors.Is(err, calendar.ErrNotConnected):
		fmt.Println("Google Calendar: not connected")
	case err != nil:
		fmt.Printf("Google Calendar: error (%v)\n", err)
	case tok.Valid(now) || tok.Refreshable():
		fmt.Println("Google Calendar: connected")
	default:
		fmt.Println("Google Calendar: token expired")
	}
	return nil
}

// currentAndNext returns the shift in progress at now, if any, and the
// earliest shift starting after now.
func currentAndNext(shifts []model.Shift, now time.Time, loc *time.Location) (cur, next *model.Shift) {
	var nextStart time.Time
	for i := range shifts {
		start, end, err := schedule.Interval(shifts[i], loc)
		if err != nil {
			continue
		}
		if !now.Before(start) && now.Before(end) {
			cur = &shifts[i]
		}
		if start.After(now) && (next == nil || start.Before(nextStart)) {
			next = &shifts[i]
			nextStart = start
		}
	}
	return cur, next
}
