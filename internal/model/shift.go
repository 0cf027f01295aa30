package model

import "time"

// Shift is a single work period anchored to a calendar date. StartTime and
// EndTime are "HH:MM" wall-clock strings without a zone; an end at or before
// the start means the shift ends on the following day.
type Shift struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id,omitempty"`
	Date             string `json:"date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	Title            string `json:"title"`
	Synced           bool   `json:"synced"`
	SyncedToCalendar bool   `json:"synced_to_calendar,omitempty"`
}

// DayFile is the top-level structure stored in each daily JSON file of the
// local cache.
type DayFile struct {
	Date   string  `json:"date"`
	Shifts []Shift `json:"shifts"`
}

// Insight types.
const (
	InsightProductivity = "productivity"
	InsightBalance      = "balance"
	InsightSleep        = "sleep"
	InsightHealth       = "health"
	InsightCycle        = "cycle"
)

// Insight priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Insight is a lifestyle recommendation derived from a user's schedule.
type Insight struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Date           time.Time `json:"date"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Type           string    `json:"type"`
	Priority       string    `json:"priority"`
	GenderSpecific bool      `json:"gender_specific"`
}

// Profile holds the user fields the schedule logic consumes.
type Profile struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Timezone string `json:"timezone"`
}
