package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/schedule"
	"github.com/Tiliavir/shiftsync/internal/timecalc"
)

var (
	listToday bool
	listWeek  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List shifts",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listToday, "today", false, "Show today's shifts")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Show this week's shifts")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustApp(ctx)
	defer a.Close()

	shifts, err := a.repo.View(ctx, a.cfg.UserID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	now := time.Now().In(a.loc)
	switch {
	case listToday:
		shifts = filterRange(shifts, timecalc.StartOfDay(now), timecalc.EndOfDay(now))
	case listWeek:
		from, to := timecalc.WeekRange(now)
		shifts = filterRange(shifts, from, to)
	}

	printList(cmd.OutOrStdout(), shifts, a.loc)
	return nil
}

// filterRange keeps shifts dated within [from, to], sorted by date and start.
func filterRange(shifts []model.Shift, from, to time.Time) []model.Shift {
	out := []model.Shift{}
	for _, s := range shifts {
		if timecalc.InRange(s.Date, from, to) {
			out = append(out, s)
		}
	}
	sortByDate(out)
	return out
}

// printList groups shifts by date and prints them.
func printList(w io.Writer, shifts []model.Shift, loc *time.Location) {
	if len(shifts) == 0 {
		fmt.Fprintln(w, "No shifts found.")
		return
	}
	shifts = append([]model.Shift(nil), shifts...)
	sortByDate(shifts)

	var currentDay string
	for _, s := range shifts {
		if s.Date != currentDay {
			fmt.Fprintln(w, s.Date)
			currentDay = s.Date
		}

		durStr := ""
		if d, err := schedule.Duration(s, loc); err == nil {
			durStr = fmt.Sprintf(" (%s)", timecalc.FormatHours(d))
		}
		marks := ""
		if !s.Synced {
			marks += " [local]"
		}
		if s.SyncedToCalendar {
			marks += " [calendar]"
		}
		fmt.Fprintf(w, "  %s–%s  %s%s  %s%s\n", s.StartTime, s.EndTime, s.Title, durStr, s.ID, marks)
	}
}

func sortByDate(shifts []model.Shift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		if shifts[i].Date != shifts[j].Date {
			return shifts[i].Date < shifts[j].Date
		}
		return shifts[i].StartTime < shifts[j].StartTime
	})
}
