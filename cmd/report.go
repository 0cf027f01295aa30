package cmd

import (
	"context"
	"encoding/json"
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

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show hours worked this week by shift title",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

type titleTotal struct {
	Title   string `json:"title"`
	Shifts  int    `json:"shifts"`
	Minutes int64  `json:"duration_minutes"`
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustApp(ctx)
	defer a.Close()
	now := time.Now().In(a.loc)

	shifts, err := a.repo.View(ctx, a.cfg.UserID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	from, to := timecalc.WeekRange(now)
	shifts = filterRange(shifts, from, to)

	writeReport(cmd.OutOrStdout(), timecalc.ISOWeekLabel(now), aggregate(shifts, a.loc), reportFormat)
	return nil
}

// aggregate totals shift time per title, sorted by title. Malformed shifts
// are skipped.
func aggregate(shifts []model.Shift, loc *time.Location) []titleTotal {
	byTitle := map[string]*titleTotal{}
	for _, s := range shifts {
		d, err := schedule.Duration(s, loc)
		if err != nil {
			continue
		}
		t, ok := byTitle[s.Title]
		if !ok {
			t = &titleTotal{Title: s.Title}
			byTitle[s.Title] = t
		}
		t.Shifts++
		t.Minutes += int64(d / time.Minute)
	}
	out := make([]titleTotal, 0, len(byTitle))
	for _, t := range byTitle {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func writeReport(w io.Writer, week string, totals []titleTotal, format string) {
	var grand int64
	for _, t := range totals {
		grand += t.Minutes
	}

	switch format {
	case "csv":
		fmt.Fprintln(w, "title,shifts,duration_minutes")
		for _, t := range totals {
			fmt.Fprintf(w, "%s,%d,%d\n", csvEscape(t.Title), t.Shifts, t.Minutes)
		}
	case "json":
		data, _ := json.MarshalIndent(struct {
			Week    string       `json:"week"`
			Titles  []titleTotal `json:"titles"`
			Minutes int64        `json:"total_minutes"`
		}{week, totals, grand}, "", "  ")
		fmt.Fprintln(w, string(data))
	default: // md
		fmt.Fprintf(w, "Week %s\n", week)
		fmt.Fprintln(w, "--------------------------------")
		for _, t := range totals {
			fmt.Fprintf(w, "%-20s%s\n", t.Title, timecalc.FormatHours(time.Duration(t.Minutes)*time.Minute))
		}
		fmt.Fprintln(w, "--------------------------------")
		fmt.Fprintf(w, "%-20s%s\n", "Total", timecalc.FormatHours(time.Duration(grand)*time.Minute))
	}
}
