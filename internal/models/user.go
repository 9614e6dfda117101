package models

import (
	"encoding/json"
	"time"
)

// User is the profile document. The uid doubles as the document id.
type User struct {
	UID       string      `bson:"_id" json:"uid"`
	Email     string      `bson:"email" json:"email,omitempty"`
	Username  string      `bson:"username" json:"username"`
	CreatedAt time.Time   `bson:"createdAt" json:"createdAt"`
	LastSeen  time.Time   `bson:"lastSeen" json:"lastSeen"`
	UpdatedAt *time.Time  `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	Profile   UserProfile `bson:"profile" json:"profile"`
}

type UserProfile struct {
	Bio         string          `bson:"bio" json:"bio"`
	Avatar      string          `bson:"avatar" json:"avatar"`
	Preferences UserPreferences `bson:"preferences" json:"preferences"`
}

type UserPreferences struct {
	Notifications bool   `bson:"notifications" json:"notifications"`
	Privacy       string `bson:"privacy" json:"privacy"` // public, private
}

// NewUser builds the profile created at signup.
func NewUser(uid, email, username string, now time.Time) *User {
	return &User{
		UID:       uid,
		Email:     email,
		Username:  username,
		CreatedAt: now,
		LastSeen:  now,
		Profile: UserProfile{
			Preferences: UserPreferences{
				Notifications: true,
				Privacy:       "public",
			},
		},
	}
}

// Public returns a copy without the email address.
func (u *User) Public() *User {
	out := *u
	out.Email = ""
	return &out
}

// Credential is the sign-in record owned by the identity provider.
type Credential struct {
	UID          string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Disabled     bool      `bson:"disabled"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// ProfileUpdate is the closed set of writable profile fields.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Username    *string          `json:"username,omitempty"`
	Bio         *string          `json:"profile.bio,omitempty"`
	Avatar      *string          `json:"profile.avatar,omitempty"`
	Preferences *UserPreferences `json:"profile.preferences,omitempty"`
}

// Empty reports whether no allowed field is present.
func (p ProfileUpdate) Empty() bool {
	return p.Username == nil && p.Bio == nil && p.Avatar == nil && p.Preferences == nil
}

// UnmarshalJSON accepts both dotted keys ("profile.bio") and a nested
// "profile" object. Keys outside the allow-list are dropped.
func (p *ProfileUpdate) UnmarshalJSON(data []byte) error {
	var raw struct {
		Username    *string          `json:"username"`
		Bio         *string          `json:"profile.bio"`
		Avatar      *string          `json:"profile.avatar"`
		Preferences *UserPreferences `json:"profile.preferences"`
		Profile     *struct {
			Bio         *string          `json:"bio"`
			Avatar      *string          `json:"avatar"`
			Preferences *UserPreferences `json:"preferences"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = ProfileUpdate{
		Username:    raw.Username,
		Bio:         raw.Bio,
		Avatar:      raw.Avatar,
		Preferences: raw.Preferences,
	}
	if nested := raw.Profile; nested != nil {
		if p.Bio == nil {
			p.Bio = nested.Bio
		}
		if p.Avatar == nil {
			p.Avatar = nested.Avatar
		}
		if p.Preferences == nil {
			p.Preferences = nested.Preferences
		}
	}
	return nil
}
