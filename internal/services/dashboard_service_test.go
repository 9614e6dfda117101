package services

import (
	"context"
	"testing"
	"time"

	"soulcare/internal/models"
	"soulcare/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStatsAndActivity(t *testing.T) {
	repos := memory.New().Repositories()
	ctx := context.Background()

	end := fixedNow.Add(-2 * time.Hour)
	old := fixedNow.AddDate(0, 0, -20)
	require.NoError(t, repos.Calls.Create(ctx, &models.Call{
		Participants: []string{"u1"}, Status: models.CallStatusEnded, CallType: "support",
		StartTime: end.Add(-30 * time.Minute), EndTime: &end, Duration: 1800,
	}))
	require.NoError(t, repos.Calls.Create(ctx, &models.Call{
		Participants: []string{"u1"}, Status: models.CallStatusEnded, CallType: "support",
		StartTime: old, EndTime: &old, Duration: 600,
	}))
	require.NoError(t, repos.Calls.Create(ctx, &models.Call{
		Participants: []string{"u1"}, Status: models.CallStatusWaiting, CallType: "support",
		StartTime: fixedNow.Add(-time.Minute),
	}))

	for _, d := range []int{0, 1, 2, 5} {
		at := fixedNow.AddDate(0, 0, -d)
		mood := NewMoodService(repos.Moods, time.UTC, func() time.Time { return at })
		_, err := mood.Submit(ctx, MoodInput{UserID: "u1", MoodRating: rating(float64(4 + d))})
		require.NoError(t, err)
	}

	svc := NewDashboardService(repos.Calls, repos.Moods, time.UTC, fixedClock)

	stats, err := svc.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, int64(30), stats.MinutesThisWeek)
	assert.InDelta(t, 6.0, stats.AverageMood, 0.001)
	assert.Equal(t, 3, stats.CheckinStreak)
	require.NotNil(t, stats.LastCheckin)
	assert.Equal(t, fixedNow, *stats.LastCheckin)

	items, err := svc.Activity(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, models.ActivityMoodCheckin, items[0].Type)
	assert.Equal(t, "Support call waiting", items[1].Title)
	assert.Equal(t, "Support call completed", items[2].Title)
}

func TestCheckinStreakStartsYesterdayWhenTodayMissing(t *testing.T) {
	today := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	checkins := []models.MoodCheckin{{Date: "2025-03-13"}, {Date: "2025-03-12"}, {Date: "2025-03-10"}}

	assert.Equal(t, 2, CheckinStreak(checkins, today))
	assert.Equal(t, 0, CheckinStreak(nil, today))
}
