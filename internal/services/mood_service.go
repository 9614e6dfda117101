package services

import (
	"context"
	"strings"
	"time"

	"soulcare/internal/models"
	"soulcare/internal/repository"
	"soulcare/pkg/apperrors"
	"soulcare/pkg/logger"
)

const (
	defaultHistoryDays = 7
	maxHistoryDays     = 90
)

type MoodService struct {
	moods repository.MoodRepository
	loc   *time.Location
	now   Clock
}

// NewMoodService derives time_of_day and date in loc.
func NewMoodService(moods repository.MoodRepository, loc *time.Location, now Clock) *MoodService {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &MoodService{moods: moods, loc: loc, now: now}
}

type MoodInput struct {
	UserID            string   `json:"userId"`
	MoodRating        *float64 `json:"mood_rating"`
	MoodReason        string   `json:"mood_reason"`
	EmotionKeywords   []string `json:"emotion_keywords"`
	EnergyLevel       string   `json:"energy_level"`
	SleepQuality      string   `json:"sleep_quality"`
	StressLevel       string   `json:"stress_level"`
	StressReason      string   `json:"stress_reason"`
	MotivationLevel   string   `json:"motivation_level"`
	SocialInteraction string   `json:"social_interaction"`
	ActivityInterest  string   `json:"activity_interest"`
	ClarityOfThought  string   `json:"clarity_of_thought"`
}

// Submit appends one check-in stamped with the local time of day.
func (s *MoodService) Submit(ctx context.Context, in MoodInput) (*models.MoodCheckin, error) {
	if strings.TrimSpace(in.UserID) == "" || in.MoodRating == nil {
		return nil, apperrors.Validation("userId and mood_rating are required")
	}

	now := s.now().In(s.loc)
	keywords := in.EmotionKeywords
	if keywords == nil {
		keywords = []string{}
	}

	checkin := &models.MoodCheckin{
		UserID:            in.UserID,
		MoodRating:        *in.MoodRating,
		MoodReason:        in.MoodReason,
		EmotionKeywords:   keywords,
		EnergyLevel:       in.EnergyLevel,
		SleepQuality:      in.SleepQuality,
		StressLevel:       in.StressLevel,
		StressReason:      in.StressReason,
		MotivationLevel:   in.MotivationLevel,
		SocialInteraction: in.SocialInteraction,
		ActivityInterest:  in.ActivityInterest,
		ClarityOfThought:  in.ClarityOfThought,
		Timestamp:         now.UTC(),
		TimeOfDay:         models.TimeOfDay(now.Hour()),
		Date:              now.Format("2006-01-02"),
	}
	if err := s.moods.Create(ctx, checkin); err != nil {
		return nil, apperrors.Internal("Failed to submit mood check-in", err)
	}

	logger.LogUserAction(in.UserID, "mood_checkin", map[string]interface{}{
		"time_of_day": checkin.TimeOfDay,
	})
	return checkin, nil
}

// History lists the user's check-ins from the last days, newest first.
func (s *MoodService) History(ctx context.Context, uid string, days int) ([]models.MoodCheckin, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, apperrors.Validation("User ID is required")
	}
	if days <= 0 {
		days = defaultHistoryDays
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}

	since := s.now().AddDate(0, 0, -days)
	checkins, err := s.moods.ListByUserSince(ctx, uid, since, 0)
	if err != nil {
		return nil, apperrors.Internal("Failed to get mood history", err)
	}
	return checkins, nil
}
