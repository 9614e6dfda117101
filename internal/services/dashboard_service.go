package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"soulcare/internal/models"
	"soulcare/internal/repository"
	"soulcare/pkg/apperrors"
)

type DashboardService struct {
	calls repository.CallRepository
	moods repository.MoodRepository
	loc   *time.Location
	now   Clock
}

func NewDashboardService(calls repository.CallRepository, moods repository.MoodRepository, loc *time.Location, now Clock) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &DashboardService{calls: calls, moods: moods, loc: loc, now: now}
}

// Stats summarises the user's sessions and mood for the dashboard cards.
func (s *DashboardService) Stats(ctx context.Context, uid string) (*models.DashboardStats, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, apperrors.Validation("User ID is required")
	}
	now := s.now()
	weekAgo := now.AddDate(0, 0, -7)

	calls, err := s.calls.ListByParticipantSince(ctx, uid, time.Time{})
	if err != nil {
		return nil, apperrors.Internal("Failed to load dashboard", err)
	}
	checkins, err := s.moods.ListByUserSince(ctx, uid, now.AddDate(0, 0, -maxHistoryDays), 0)
	if err != nil {
		return nil, apperrors.Internal("Failed to load dashboard", err)
	}

	stats := &models.DashboardStats{}
	var weekSeconds int64
	for _, c := range calls {
		if c.Status != models.CallStatusEnded {
			continue
		}
		stats.TotalSessions++
		if !c.StartTime.Before(weekAgo) {
			weekSeconds += c.Duration
		}
	}
	stats.MinutesThisWeek = weekSeconds / 60

	var sum float64
	var n int
	for _, m := range checkins {
		if !m.Timestamp.Before(weekAgo) {
			sum += m.MoodRating
			n++
		}
	}
	if n > 0 {
		stats.AverageMood = sum / float64(n)
	}
	if len(checkins) > 0 {
		last := checkins[0].Timestamp
		stats.LastCheckin = &last
	}
	stats.CheckinStreak = CheckinStreak(checkins, now.In(s.loc))

	return stats, nil
}

// CheckinStreak counts consecutive calendar days with a check-in, ending
// today or, if today has none yet, yesterday.
func CheckinStreak(checkins []models.MoodCheckin, today time.Time) int {
	days := make(map[string]bool, len(checkins))
	for _, m := range checkins {
		days[m.Date] = true
	}

	day := today
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// Activity merges recent calls and check-ins, newest first.
func (s *DashboardService) Activity(ctx context.Context, uid string, limit int) ([]models.ActivityItem, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, apperrors.Validation("User ID is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	since := s.now().AddDate(0, 0, -30)

	calls, err := s.calls.ListByParticipantSince(ctx, uid, since)
	if err != nil {
		return nil, apperrors.Internal("Failed to load activity", err)
	}
	checkins, err := s.moods.ListByUserSince(ctx, uid, since, limit)
	if err != nil {
		return nil, apperrors.Internal("Failed to load activity", err)
	}

	items := make([]models.ActivityItem, 0, len(calls)+len(checkins))
	for _, c := range calls {
		items = append(items, models.ActivityItem{
			Type:  models.ActivityCall,
			ID:    c.ID.Hex(),
			Title: callTitle(c),
			At:    c.StartTime,
		})
	}
	for _, m := range checkins {
		items = append(items, models.ActivityItem{
			Type:  models.ActivityMoodCheckin,
			ID:    m.ID.Hex(),
			Title: "Mood check-in (" + m.TimeOfDay + ")",
			At:    m.Timestamp,
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].At.After(items[j].At) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func callTitle(c models.Call) string {
	kind := c.CallType
	if kind == "" {
		kind = models.DefaultCallType
	}
	switch c.Status {
	case models.CallStatusEnded:
		return strings.ToUpper(kind[:1]) + kind[1:] + " call completed"
	case models.CallStatusActive:
		return strings.ToUpper(kind[:1]) + kind[1:] + " call in progress"
	default:
		return strings.ToUpper(kind[:1]) + kind[1:] + " call waiting"
	}
}
