package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Call status values. Transitions only move forward.
const (
	CallStatusWaiting = "waiting"
	CallStatusActive  = "active"
	CallStatusEnded   = "ended"
)

// Call update actions.
const (
	CallActionJoin        = "join"
	CallActionEnd         = "end"
	CallActionUpdateNotes = "update_notes"
	CallActionRate        = "rate"
)

const DefaultCallType = "support"

type Call struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Participants []string           `bson:"participants" json:"participants"`
	Usernames    []string           `bson:"usernames" json:"usernames"`
	Status       string             `bson:"status" json:"status"`
	CallType     string             `bson:"callType" json:"callType"`
	StartTime    time.Time          `bson:"startTime" json:"startTime"`
	EndTime      *time.Time         `bson:"endTime" json:"endTime"`
	Duration     int64              `bson:"duration" json:"duration"` // seconds
	CreatedBy    string             `bson:"createdBy" json:"createdBy"`
	Notes        string             `bson:"notes" json:"notes"`
	Rating       *float64           `bson:"rating" json:"rating"`
	// Open mirrors IsOpen and backs the one-open-call-per-participant index.
	Open bool `bson:"open" json:"-"`
	// Version is bumped on every write and guards compare-and-swap updates.
	Version int64 `bson:"version" json:"-"`
}

// IsOpen reports whether the call still counts against its participants.
func (c *Call) IsOpen() bool {
	return c.Status == CallStatusWaiting || c.Status == CallStatusActive
}

func (c *Call) HasParticipant(uid string) bool {
	for _, p := range c.Participants {
		if p == uid {
			return true
		}
	}
	return false
}

// CallFeedback is appended under a call by the voice agent or the client.
type CallFeedback struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	CallID    string                 `bson:"callId" json:"callId"`
	Data      map[string]interface{} `bson:"data" json:"data"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}
