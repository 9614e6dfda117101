package models

import "time"

type DashboardStats struct {
	TotalSessions   int        `json:"totalSessions"`
	MinutesThisWeek int64      `json:"minutesThisWeek"`
	AverageMood     float64    `json:"averageMood"`
	CheckinStreak   int        `json:"checkinStreak"`
	LastCheckin     *time.Time `json:"lastCheckin,omitempty"`
}

// Activity types on the dashboard feed.
const (
	ActivityCall        = "call"
	ActivityMoodCheckin = "mood_checkin"
)

type ActivityItem struct {
	Type  string    `json:"type"`
	ID    string    `json:"id"`
	Title string    `json:"title"`
	At    time.Time `json:"at"`
}
