package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/Tiliavir/shiftsync/internal/model"
)

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := csvEscape(tt.input)
		if got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPrintCSV(t *testing.T) {
	shifts := []model.Shift{
		{ID: "s1", Date: "2026-02-27", StartTime: "22:00", EndTime: "06:00", Title: "Night, ward 3", Synced: true},
	}
	var buf bytes.Buffer
	printCSV(&buf, shifts, time.UTC)

	want := "id,date,title,start,end,duration_minutes,synced\n" +
		"s1,2026-02-27,\"Night, ward 3\",2026-02-27T22:00:00Z,2026-02-28T06:00:00Z,480,true\n"
	if buf.String() != want {
		t.Errorf("printCSV =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPrintList(t *testing.T) {
	shifts := []model.Shift{
		{ID: "b", Date: "2026-02-28", StartTime: "09:00", EndTime: "17:00", Title: "Day", Synced: true},
		{ID: "a", Date: "2026-02-27", StartTime: "22:00", EndTime: "06:00", Title: "Night", SyncedToCalendar: true},
	}
	var buf bytes.Buffer
	printList(&buf, shifts, time.UTC)

	want := "2026-02-27\n" +
		"  22:00–06:00  Night (8h)  a [local] [calendar]\n" +
		"2026-02-28\n" +
		"  09:00–17:00  Day (8h)  b\n"
	if buf.String() != want {
		t.Errorf("printList =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPrintListEmpty(t *testing.T) {
	var buf bytes.Buffer
	printList(&buf, nil, time.UTC)
	if buf.String() != "No shifts found.\n" {
		t.Errorf("printList(nil) = %q", buf.String())
	}
}

func TestParseRange(t *testing.T) {
	now := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name             string
		date, from, to   string
		wantFrom, wantTo time.Time
		wantErr          bool
	}{
		{name: "default today", wantFrom: day(2026, 3, 4), wantTo: day(2026, 3, 4)},
		{name: "single date", date: "2026-02-27", wantFrom: day(2026, 2, 27), wantTo: day(2026, 2, 27)},
		{name: "from only", from: "2026-03-01", wantFrom: day(2026, 3, 1), wantTo: day(2026, 3, 4)},
		{name: "from and to", from: "2026-03-01", to: "2026-03-10", wantFrom: day(2026, 3, 1), wantTo: day(2026, 3, 10)},
		{name: "to without from", to: "2026-03-10", wantErr: true},
		{name: "bad date", date: "03/04/2026", wantErr: true},
		{name: "reversed", from: "2026-03-10", to: "2026-03-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := parseRange(tt.date, tt.from, tt.to, now)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRange: %v", err)
			}
			if !from.Equal(tt.wantFrom) {
				t.Errorf("from = %v, want %v", from, tt.wantFrom)
			}
			if got := to.Format("2006-01-02"); got != tt.wantTo.Format("2006-01-02") {
				t.Errorf("to = %v, want day %v", to, tt.wantTo)
			}
		})
	}
}
