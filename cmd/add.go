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

var (
	addDate  string
	addTitle string
)

var addCmd = &cobra.Command{
	Use:   "add <start> <end>",
	Short: "Add a shift, e.g. 'add 22:00 06:00 --title Night'",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "Shift date (YYYY-MM-DD); defaults to today")
	addCmd.Flags().StringVar(&addTitle, "title", "Shift", "Shift title")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustApp(ctx)
	defer a.Close()

	date := addDate
	if date == "" {
		date = time.Now().In(a.loc).Format(timecalc.DateLayout)
	}
	s := model.Shift{
		ID:        timecalc.GenerateID(date),
		Date:      date,
		StartTime: args[0],
		EndTime:   args[1],
		Title:     addTitle,
	}
	if err := schedule.Validate(s); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	res, err := a.repo.Add(ctx, a.cfg.UserID, s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if !res.Inserted {
		fmt.Fprintln(os.Stderr, res.Message())
		for _, c := range res.Conflicts {
			fmt.Fprintf(os.Stderr, "  %s  %s–%s  %s\n", c.ID, c.StartTime, c.EndTime, c.Title)
		}
		os.Exit(1)
	}

	dur, _ := schedule.Duration(s, a.loc)
	fmt.Printf("Added shift %s on %s, %s–%s (%s)\n", s.ID, s.Date, s.StartTime, s.EndTime, timecalc.FormatHours(dur))
	if res.RemoteErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: saved locally only, run 'shiftsync sync' later: %v\n", res.RemoteErr)
	}

	if a.cfg.Calendar.AutoSync {
		pushAfterAdd(ctx, a, res.Stored)
	}
	return nil
}

// pushAfterAdd sends a freshly added shift to Google Calendar when an account
// is connected. Failures only warn; the shift itself is already stored.
func pushAfterAdd(ctx context.Context, a *app, s model.Shift) {
	r, err := a.reconciler(ctx)
	if errors.Is(err, calendar.ErrNotConnected) {
		a.logger.Debug("google calendar not connected, skipping sync")
		return
	}
	if err != nil {
		a.logger.Debug("calendar sync unavailable", "err", err)
		return
	}
	out, err := calendar.SyncShift(ctx, r, s, a.syncOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not add shift to Google Calendar: %v\n", err)
		return
	}
	s.SyncedToCalendar = true
	if err := a.repo.Update(ctx, a.cfg.UserID, s); err != nil {
		a.logger.Warn("could not mark shift as synced to calendar", "id", s.ID, "err", err)
	}
	fmt.Println(describeOutcome(s, out))
}
