package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/shiftsync/internal/calendar"
	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/schedule"
	"github.com/Tiliavir/shiftsync/internal/timecalc"
)

var (
	exportFormat string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export shifts to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md, ics")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every shift instead of this week's")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustApp(ctx)
	defer a.Close()

	shifts, err := a.repo.View(ctx, a.cfg.UserID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if exportAll {
		sortByDate(shifts)
	} else {
		from, to := timecalc.WeekRange(time.Now().In(a.loc))
		shifts = filterRange(shifts, from, to)
	}

	w := cmd.OutOrStdout()
	switch exportFormat {
	case "json":
		data, err := json.MarshalIndent(shifts, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Fprintln(w, string(data))
	case "md":
		printList(w, shifts, a.loc)
	case "ics":
		if err := calendar.WriteICS(w, shifts, a.cfg.Calendar.EventPrefix, a.loc); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	case "csv":
		printCSV(w, shifts, a.loc)
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (want csv, json, md or ics)\n", exportFormat)
		os.Exit(1)
	}
	return nil
}

func printCSV(w io.Writer, shifts []model.Shift, loc *time.Location) {
	fmt.Fprintln(w, "id,date,title,start,end,duration_minutes,synced")
	for _, s := range shifts {
		startStr, endStr := s.StartTime, s.EndTime
		durMin := int64(0)
		if start, end, err := schedule.Interval(s, loc); err == nil {
			startStr = start.Format(time.RFC3339)
			endStr = end.Format(time.RFC3339)
			durMin = int64(end.Sub(start) / time.Minute)
		}
		fmt.Fprintf(w, "%s,%s,%s,%s,%s,%d,%t\n",
			csvEscape(s.ID),
			csvEscape(s.Date),
			csvEscape(s.Title),
			csvEscape(startStr),
			csvEscape(endStr),
			durMin,
			s.Synced,
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
