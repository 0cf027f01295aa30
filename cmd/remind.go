package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftsync/internal/calendar"
	"github.com/Tiliavir/shiftsync/internal/model"
)

var remindMinutes int

var remindCmd = &cobra.Command{
	Use:   "remind <id>",
	Short: "Create a Google Calendar reminder for a shift",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemind,
}

func init() {
	remindCmd.Flags().IntVar(&remindMinutes, "minutes", 0, "Minutes before the shift to notify (default from config, 30)")
}

func runRemind(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustApp(ctx)
	defer a.Close()

	shifts, err := a.repo.View(ctx, a.cfg.UserID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	s, ok := findShift(shifts, args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "No shift with id %q.\n", args[0])
		os.Exit(1)
	}

	r, err := a.reconciler(ctx)
	if err != nil {
		if errors.Is(err, calendar.ErrNotConnected) {
			fmt.Fprintln(os.Stderr, "Google Calendar is not connected. Run 'shiftsync calendar connect' first.")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	opts := a.reminderOptions(remindMinutes)
	out, err := calendar.SetupReminder(ctx, r, s, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	switch out.Action {
	case calendar.ActionCreated:
		fmt.Printf("Reminder set %d minutes before %q on %s at %s.\n", opts.Minutes, s.Title, s.Date, s.StartTime)
	case calendar.ActionPruned:
		fmt.Printf("Reminder already set; removed %d duplicate(s).\n", out.Deleted)
	default:
		fmt.Println("Reminder already set.")
	}
	return nil
}

func findShift(shifts []model.Shift, id string) (model.Shift, bool) {
	for _, s := range shifts {
		if s.ID == id {
			return s, true
		}
	}
	return model.Shift{}, false
}
