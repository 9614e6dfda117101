package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MoodCheckin struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            string             `bson:"userId" json:"userId"`
	MoodRating        float64            `bson:"mood_rating" json:"mood_rating"`
	MoodReason        string             `bson:"mood_reason" json:"mood_reason"`
	EmotionKeywords   []string           `bson:"emotion_keywords" json:"emotion_keywords"`
	EnergyLevel       string             `bson:"energy_level" json:"energy_level"`
	SleepQuality      string             `bson:"sleep_quality" json:"sleep_quality"`
	StressLevel       string             `bson:"stress_level" json:"stress_level"`
	StressReason      string             `bson:"stress_reason" json:"stress_reason"`
	MotivationLevel   string             `bson:"motivation_level" json:"motivation_level"`
	SocialInteraction string             `bson:"social_interaction" json:"social_interaction"`
	ActivityInterest  string             `bson:"activity_interest" json:"activity_interest"`
	ClarityOfThought  string             `bson:"clarity_of_thought" json:"clarity_of_thought"`
	Timestamp         time.Time          `bson:"timestamp" json:"timestamp"`
	TimeOfDay         string             `bson:"time_of_day" json:"time_of_day"`
	Date              string             `bson:"date" json:"date"` // YYYY-MM-DD
}

// TimeOfDay buckets an hour of the day: 5-11 morning, 12-16 afternoon,
// 17-20 evening, otherwise night.
func TimeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 21:
		return "evening"
	default:
		return "night"
	}
}
