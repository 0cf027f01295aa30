// Package insights derives rule-based lifestyle recommendations from a
// user's shift history.
package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/Tiliavir/shiftsync/internal/model"
	"github.com/Tiliavir/shiftsync/internal/schedule"
	"github.com/Tiliavir/shiftsync/internal/timecalc"
)

const (
	standardWeek    = 40.0
	heavyWeek       = 50.0
	nightShare      = 30.0
	weekendShare    = 25.0
	longShiftShare  = 30.0
	earlyStartShare = 30.0
	streakThreshold = 5
	longShiftHours  = 8.0
	minInsights     = 3
)

// stats aggregates the schedule features the rules look at.
type stats struct {
	shifts      int
	totalHours  float64
	dayHours    [7]float64
	dayCount    [7]int
	weeklyHours map[string]float64
	night       int
	long        int
	early       int
	weekend     int
	longestRun  int
}

func collect(shifts []model.Shift, loc *time.Location) stats {
	st := stats{weeklyHours: map[string]float64{}}
	dates := map[string]time.Time{}

	for _, s := range shifts {
		start, end, err := schedule.Interval(s, loc)
		if err != nil {
			continue
		}
		hours := end.Sub(start).Hours()
		day, _ := time.ParseInLocation(timecalc.DateLayout, s.Date, loc)
		wd := day.Weekday()

		st.shifts++
		st.totalHours += hours
		st.dayHours[wd] += hours
		st.dayCount[wd]++
		st.weeklyHours[timecalc.ISOWeekLabel(day)] += hours

		if start.Hour() < 6 || end.Hour() >= 22 || !sameDay(start, end) {
			st.night++
		}
		if hours > longShiftHours {
			st.long++
		}
		if start.Hour() < 7 {
			st.early++
		}
		if wd == time.Saturday || wd == time.Sunday {
			st.weekend++
		}
		dates[s.Date] = day
	}
	st.longestRun = longestRun(dates)
	return st
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// longestRun is the length of the longest streak of consecutive working dates.
func longestRun(dates map[string]time.Time) int {
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	best, run := 0, 0
	for i, d := range days {
		if i > 0 && timecalc.DaysBetween(days[i-1], d) == 1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

func (st stats) share(n int) float64 {
	if st.shifts == 0 {
		return 0
	}
	return float64(n) / float64(st.shifts) * 100
}

// Generate returns the insights for the given shifts. Shifts that cannot be
// parsed are ignored. The result always holds at least one insight.
func Generate(shifts []model.Shift, profile model.Profile, now time.Time, loc *time.Location) []model.Insight {
	if loc == nil {
		loc = time.UTC
	}
	st := collect(shifts, loc)

	var out []model.Insight
	add := func(title, desc, typ, prio string, genderSpecific bool) {
		out = append(out, model.Insight{
			UserID:         profile.UserID,
			Date:           now,
			Title:          title,
			Description:    desc,
			Type:           typ,
			Priority:       prio,
			GenderSpecific: genderSpecific,
		})
	}

	if st.shifts == 0 {
		add("No Work Data Available",
			"Add your work schedule to get personalized insights about your work patterns.",
			model.InsightProductivity, model.PriorityMedium, false)
		return out
	}

	if day, avg, ok := st.busiestDay(); ok {
		add(fmt.Sprintf("%s is Your Busiest Day", day),
			fmt.Sprintf("You work the most hours on %ss, averaging %.1f hours. Consider planning easier meals or activities for this day of the week.", day, avg),
			model.InsightProductivity, model.PriorityMedium, false)
	}

	if weekly := st.totalHours / float64(len(st.weeklyHours)); weekly > 0 {
		desc := fmt.Sprintf("You work an average of %.1f hours per week.", weekly)
		prio := model.PriorityLow
		switch {
		case weekly > heavyWeek:
			desc += " This is significantly above the standard 40-hour workweek. Consider evaluating your work-life balance."
			prio = model.PriorityHigh
		case weekly > standardWeek:
			desc += " This is above the standard 40-hour workweek. Make sure you're taking time for yourself."
			prio = model.PriorityMedium
		}
		add("Weekly Hours Analysis", desc, model.InsightBalance, prio, false)
	}

	if pct := st.share(st.night); pct > nightShare {
		add("Night Shift Impact",
			fmt.Sprintf("%.0f%% of your shifts are at night. Consider blackout curtains and consistent sleep schedules to mitigate circadian rhythm disruption.", pct),
			model.InsightSleep, model.PriorityHigh, false)
	}

	if st.longestRun >= streakThreshold {
		add("Extended Work Streaks",
			fmt.Sprintf("You've worked up to %d consecutive days. Extended work periods without days off can lead to burnout. Try to schedule at least one day off every 5-6 days.", st.longestRun),
			model.InsightHealth, model.PriorityHigh, false)
	}

	if pct := st.share(st.weekend); pct > weekendShare {
		add("Weekend Work Balance",
			fmt.Sprintf("You work %.0f%% of your shifts on weekends. Consider scheduling important personal activities during your weekday off times to maintain social connections.", pct),
			model.InsightBalance, model.PriorityMedium, false)
	}

	if pct := st.share(st.long); pct > longShiftShare {
		add("Long Shift Management",
			fmt.Sprintf("%.0f%% of your shifts exceed 8 hours. During long shifts, try to take short breaks every 2 hours and stay hydrated to maintain productivity.", pct),
			model.InsightHealth, model.PriorityMedium, false)
	}

	if pct := st.share(st.early); pct > earlyStartShare {
		add("Early Shift Sleep Recommendation",
			fmt.Sprintf("%.0f%% of your shifts start before 7 AM. For optimal performance, aim to sleep 7-8 hours by going to bed before 10 PM on nights before early shifts.", pct),
			model.InsightSleep, model.PriorityMedium, false)
	}

	if profile.Gender == "female" {
		if st.night > 0 {
			add("Women's Health: Night Shift Impact",
				"Night shifts can affect menstrual regularity. Consider tracking your cycle to identify any patterns. Prioritize quality sleep between shifts to help regulate hormones.",
				model.InsightCycle, model.PriorityMedium, true)
		}
		if st.long > 0 {
			add("Women's Health: Energy Management",
				"Energy levels fluctuate with your menstrual cycle. During the luteal phase (week before your period), you may need extra breaks and hydration during long shifts.",
				model.InsightCycle, model.PriorityMedium, true)
		}
	}

	if len(out) < minInsights {
		add("Productivity Optimization",
			"Taking short 5-minute breaks every 90 minutes can boost productivity. Try the Pomodoro technique during your shifts.",
			model.InsightProductivity, model.PriorityLow, false)
		add("Sleep Quality Improvement",
			"Consistent sleep and wake times, even on days off, can improve overall sleep quality and energy levels during work hours.",
			model.InsightSleep, model.PriorityLow, false)
	}
	return out
}

// busiestDay returns the weekday with the most total hours and the average
// shift length on it. Ties go to the earlier weekday, Sunday first.
func (st stats) busiestDay() (time.Weekday, float64, bool) {
	best := -1
	for d := 0; d < 7; d++ {
		if st.dayCount[d] == 0 {
			continue
		}
		if best < 0 || st.dayHours[d] > st.dayHours[best] {
			best = d
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return time.Weekday(best), st.dayHours[best] / float64(st.dayCount[best]), true
}
