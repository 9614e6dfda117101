package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text          string             `bson:"text" json:"text"`
	Sender        string             `bson:"sender" json:"sender"`
	SenderID      string             `bson:"senderId" json:"senderId"`
	Timestamp     time.Time          `bson:"timestamp" json:"timestamp"`
	Likes         int                `bson:"likes" json:"likes"`
	LikedBy       []string           `bson:"likedBy" json:"likedBy"`
	Replies       []string           `bson:"replies" json:"replies"`
	ReplyTo       *string            `bson:"replyTo" json:"replyTo"`
	ReplyToText   string             `bson:"replyToText,omitempty" json:"replyToText,omitempty"`
	ReplyToSender string             `bson:"replyToSender,omitempty" json:"replyToSender,omitempty"`
}

// Reaction actions accepted on a message.
const (
	ActionLike   = "like"
	ActionUnlike = "unlike"
)

// LikedByUser reports whether uid is in the liked-by set.
func (m *Message) LikedByUser(uid string) bool {
	for _, id := range m.LikedBy {
		if id == uid {
			return true
		}
	}
	return false
}
