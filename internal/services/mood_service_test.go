package services

import (
	"context"
	"testing"
	"time"

	"soulcare/internal/models"
	"soulcare/internal/repository/memory"
	"soulcare/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rating(v float64) *float64 { return &v }

func TestTimeOfDayBuckets(t *testing.T) {
	cases := map[int]string{
		0: "night", 4: "night", 5: "morning", 11: "morning", 12: "afternoon",
		16: "afternoon", 17: "evening", 20: "evening", 21: "night", 23: "night",
	}
	for hour, want := range cases {
		assert.Equal(t, want, models.TimeOfDay(hour), "hour %d", hour)
	}
}

func TestSubmitMoodDerivesLocalTimeFields(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	// 03:30 UTC on the 14th is 19:30 on the 13th in loc.
	now := time.Date(2025, 3, 14, 3, 30, 0, 0, time.UTC)
	svc := NewMoodService(memory.New().Repositories().Moods, loc, func() time.Time { return now })

	checkin, err := svc.Submit(context.Background(), MoodInput{UserID: "u1", MoodRating: rating(7)})
	require.NoError(t, err)
	assert.Equal(t, "evening", checkin.TimeOfDay)
	assert.Equal(t, "2025-03-13", checkin.Date)
	assert.Equal(t, 7.0, checkin.MoodRating)
	assert.Equal(t, []string{}, checkin.EmotionKeywords)
	assert.Equal(t, now, checkin.Timestamp)
}

func TestSubmitMoodRequiresUserAndRating(t *testing.T) {
	svc := NewMoodService(memory.New().Repositories().Moods, time.UTC, fixedClock)
	ctx := context.Background()

	_, err := svc.Submit(ctx, MoodInput{MoodRating: rating(3)})
	assertKind(t, err, apperrors.KindValidation, "userId and mood_rating are required")

	_, err = svc.Submit(ctx, MoodInput{UserID: "u1"})
	assertKind(t, err, apperrors.KindValidation, "userId and mood_rating are required")

	// Zero is a valid rating.
	_, err = svc.Submit(ctx, MoodInput{UserID: "u1", MoodRating: rating(0)})
	assert.NoError(t, err)
}

func TestMoodHistoryWindow(t *testing.T) {
	repos := memory.New().Repositories()
	ctx := context.Background()

	for _, daysAgo := range []int{0, 3, 10, 40} {
		at := fixedNow.AddDate(0, 0, -daysAgo)
		svc := NewMoodService(repos.Moods, time.UTC, func() time.Time { return at })
		_, err := svc.Submit(ctx, MoodInput{UserID: "u1", MoodRating: rating(float64(daysAgo))})
		require.NoError(t, err)
	}
	svc := NewMoodService(repos.Moods, time.UTC, fixedClock)

	week, err := svc.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.Equal(t, 0.0, week[0].MoodRating)
	assert.Equal(t, 3.0, week[1].MoodRating)

	all, err := svc.History(ctx, "u1", 365)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = svc.History(ctx, "", 7)
	assertKind(t, err, apperrors.KindValidation, "User ID is required")
}
