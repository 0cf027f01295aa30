package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftsync/internal/calendar"
	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/timecalc"
)

var (
	connectCode string

	pushFrom string
	pushTo   string
	pushDate string
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Google Calendar integration",
}

var calendarConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a Google account",
	Long: `Without --code, prints the Google consent URL. After approving access,
run the command again with the code Google returned.`,
	Args: cobra.NoArgs,
	RunE: runCalendarConnect,
}

var calendarDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the stored Google token",
	Args:  cobra.NoArgs,
	RunE:  runCalendarDisconnect,
}

var calendarPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push shifts to Google Calendar without creating duplicates",
	Args:  cobra.NoArgs,
	RunE:  runCalendarPush,
}

func init() {
	calendarConnectCmd.Flags().StringVar(&connectCode, "code", "", "Authorization code returned by Google")

	calendarPushCmd.Flags().StringVar(&pushFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	calendarPushCmd.Flags().StringVar(&pushTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	calendarPushCmd.Flags().StringVar(&pushDate, "date", "", "Push a specific date (YYYY-MM-DD)")

	calendarCmd.AddCommand(calendarConnectCmd)
	calendarCmd.AddCommand(calendarDisconnectCmd)
	calendarCmd.AddCommand(calendarPushCmd)
}

func runCalendarConnect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustApp(ctx)
	defer a.Close()

	oc, err := a.oauthConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if connectCode == "" {
		fmt.Println()
		fmt.Println("To connect Google Calendar, open this page in a web browser:")
		fmt.Printf("  %s\n", calendar.AuthCodeURL(oc, newState()))
		fmt.Println()
		fmt.Println("Then run: shiftsync calendar connect --code <code>")
		return nil
	}

	if _, err := calendar.Exchange(ctx, oc, a.tokens, a.cfg.UserID, connectCode); err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Google Calendar connected.")
	return nil
}

func runCalendarDisconnect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustApp(ctx)
	defer a.Close()

	if err := a.tokens.Delete(ctx, a.cfg.UserID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Println("Google Calendar disconnected.")
	return nil
}

func runCalendarPush(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustApp(ctx)
	defer a.Close()

	from, to, err := parseRange(pushDate, pushFrom, pushTo, time.Now().In(a.loc))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
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

	shifts, err := a.repo.View(ctx, a.cfg.UserID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	shifts = filterRange(shifts, from, to)

	fmt.Printf("Pushing shifts (%s → %s)...\n", from.Format(timecalc.DateLayout), to.Format(timecalc.DateLayout))
	fmt.Println()

	res := pushShifts(ctx, a, r, shifts)

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d created\n", res.created)
	fmt.Printf("  %d already present\n", res.skipped)
	fmt.Printf("  %d duplicates removed\n", res.deleted)
	if res.errors > 0 {
		fmt.Printf("  %d errors\n", res.errors)
		os.Exit(2)
	}
	return nil
}

type pushResult struct {
	created, skipped, deleted, errors int
}

// pushShifts ensures each shift has exactly one calendar event and records
// SyncedToCalendar on success.
func pushShifts(ctx context.Context, a *app, r *calendar.Reconciler, shifts []model.Shift) pushResult {
	var res pushResult
	for _, s := range shifts {
		out, err := calendar.SyncShift(ctx, r, s, a.syncOptions())
		if err != nil {
			fmt.Printf("  ! Error pushing %q on %s: %v\n", s.Title, s.Date, err)
			res.errors++
			continue
		}
		switch out.Action {
		case calendar.ActionCreated:
			res.created++
		default:
			res.skipped++
		}
		res.deleted += out.Deleted
		res.errors += len(out.DeleteErrs)
		fmt.Println(describeOutcome(s, out))

		if !s.SyncedToCalendar {
			s.SyncedToCalendar = true
			if err := a.repo.Update(ctx, a.cfg.UserID, s); err != nil {
				a.logger.Warn("could not mark shift as synced to calendar", "id", s.ID, "err", err)
			}
		}
	}
	return res
}

func describeOutcome(s model.Shift, out calendar.Outcome) string {
	label := fmt.Sprintf("%s %s %s–%s", s.Title, s.Date, s.StartTime, s.EndTime)
	switch out.Action {
	case calendar.ActionCreated:
		return "  ✓ Created:  " + label
	case calendar.ActionPruned:
		return fmt.Sprintf("  – Kept:     %s (removed %d duplicate(s))", label, out.Deleted)
	default:
		return fmt.Sprintf("  – Skipped:  %s (already on calendar)", label)
	}
}

// parseRange resolves the --date / --from / --to flags into an inclusive
// day range. With no flags set the range is today.
func parseRange(date, fromStr, toStr string, now time.Time) (time.Time, time.Time, error) {
	loc := now.Location()
	switch {
	case date != "":
		d, err := time.ParseInLocation(timecalc.DateLayout, date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date value %q: %w", date, err)
		}
		return timecalc.StartOfDay(d), timecalc.EndOfDay(d), nil

	case fromStr != "" || toStr != "":
		if fromStr == "" {
			return time.Time{}, time.Time{}, errors.New("--from is required when --to is specified")
		}
		from, err := time.ParseInLocation(timecalc.DateLayout, fromStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from value %q: %w", fromStr, err)
		}
		to := now
		if toStr != "" {
			to, err = time.ParseInLocation(timecalc.DateLayout, toStr, loc)
			if err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("invalid --to value %q: %w", toStr, err)
			}
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, errors.New("--to is before --from")
		}
		return timecalc.StartOfDay(from), timecalc.EndOfDay(to), nil

	default:
		return timecalc.StartOfDay(now), timecalc.EndOfDay(now), nil
	}
}

func newState() string {
	return uuid.NewString()
}
