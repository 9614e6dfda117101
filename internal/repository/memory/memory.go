// Package memory is an in-process implementation of the repository
// interfaces with the same conditional-write semantics as MongoDB.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"soulcare/internal/models"
	"soulcare/internal/repository"
	"soulcare/pkg/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection behind one lock.
type Store struct {
	mu          sync.RWMutex
	users       map[string]models.User
	credentials map[string]models.Credential // by uid
	messages    map[primitive.ObjectID]models.Message
	calls       map[primitive.ObjectID]models.Call
	moods       []models.MoodCheckin
	feedback    []models.CallFeedback

	// FailNextUserCreate makes the next Users().Create fail, to exercise signup compensation.
	FailNextUserCreate error
}

func New() *Store {
	return &Store{
		users:       make(map[string]models.User),
		credentials: make(map[string]models.Credential),
		messages:    make(map[primitive.ObjectID]models.Message),
		calls:       make(map[primitive.ObjectID]models.Call),
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Users:       userRepo{s},
		Credentials: credentialRepo{s},
		Messages:    messageRepo{s},
		Calls:       callRepo{s},
		Moods:       moodRepo{s},
		Feedback:    feedbackRepo{s},
	}
}

// CredentialCount is used by tests asserting signup rollback.
func (s *Store) CredentialCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.credentials)
}

// DisableCredential marks the account for email as disabled.
func (s *Store) DisableCredential(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uid, c := range s.credentials {
		if c.Email == email {
			c.Disabled = true
			s.credentials[uid] = c
		}
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrNotFound
	}
	return oid, nil
}

// ---- users ----

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.FailNextUserCreate; err != nil {
		r.s.FailNextUserCreate = nil
		return err
	}
	if _, ok := r.s.users[user.UID]; ok {
		return apperrors.ErrDuplicate
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return apperrors.ErrDuplicate
		}
	}
	r.s.users[user.UID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, uid string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[uid]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) UpdateProfile(_ context.Context, uid string, update models.ProfileUpdate, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[uid]
	if !ok {
		return apperrors.ErrNotFound
	}
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Bio != nil {
		u.Profile.Bio = *update.Bio
	}
	if update.Avatar != nil {
		u.Profile.Avatar = *update.Avatar
	}
	if update.Preferences != nil {
		u.Profile.Preferences = *update.Preferences
	}
	u.UpdatedAt = &at
	r.s.users[uid] = u
	return nil
}

func (r userRepo) TouchLastSeen(_ context.Context, uid string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[uid]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.LastSeen = at
	r.s.users[uid] = u
	return nil
}

// ---- credentials ----

type credentialRepo struct{ s *Store }

func (r credentialRepo) Create(_ context.Context, cred *models.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.credentials {
		if c.Email == cred.Email {
			return apperrors.ErrDuplicate
		}
	}
	r.s.credentials[cred.UID] = *cred
	return nil
}

func (r credentialRepo) GetByEmail(_ context.Context, email string) (*models.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.credentials {
		if c.Email == email {
			c := c
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r credentialRepo) Delete(_ context.Context, uid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.credentials, uid)
	return nil
}

// ---- messages ----

type messageRepo struct{ s *Store }

func (r messageRepo) Create(_ context.Context, msg *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	stored := *msg
	stored.LikedBy = append([]string{}, msg.LikedBy...)
	r.s.messages[msg.ID] = stored
	return nil
}

func (r messageRepo) GetByID(_ context.Context, id string) (*models.Message, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.messages[oid]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	m.LikedBy = append([]string{}, m.LikedBy...)
	return &m, nil
}

func (r messageRepo) ListRecent(_ context.Context, limit int) ([]models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Message, 0, len(r.s.messages))
	for _, m := range r.s.messages {
		m.LikedBy = append([]string{}, m.LikedBy...)
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r messageRepo) Like(_ context.Context, id, uid string) (bool, error) {
	return r.react(id, func(m *models.Message) bool {
		if m.LikedByUser(uid) {
			return false
		}
		m.LikedBy = append(m.LikedBy, uid)
		m.Likes++
		return true
	})
}

func (r messageRepo) Unlike(_ context.Context, id, uid string) (bool, error) {
	return r.react(id, func(m *models.Message) bool {
		if !m.LikedByUser(uid) {
			return false
		}
		kept := m.LikedBy[:0:0]
		for _, u := range m.LikedBy {
			if u != uid {
				kept = append(kept, u)
			}
		}
		m.LikedBy = kept
		m.Likes--
		return true
	})
}

func (r messageRepo) react(id string, apply func(*models.Message) bool) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[oid]
	if !ok {
		return false, apperrors.ErrNotFound
	}
	m.LikedBy = append([]string{}, m.LikedBy...)
	changed := apply(&m)
	r.s.messages[oid] = m
	return changed, nil
}

// ---- calls ----

type callRepo struct{ s *Store }

// openConflict reports whether any participant of call already sits in
// another open call. Mirrors the partial unique index.
func (s *Store) openConflict(call *models.Call) bool {
	if !call.IsOpen() {
		return false
	}
	for id, other := range s.calls {
		if id == call.ID || !other.IsOpen() {
			continue
		}
		for _, p := range call.Participants {
			if other.HasParticipant(p) {
				return true
			}
		}
	}
	return false
}

func copyCall(c models.Call) models.Call {
	c.Participants = append([]string{}, c.Participants...)
	c.Usernames = append([]string{}, c.Usernames...)
	return c
}

func (r callRepo) Create(_ context.Context, call *models.Call) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if call.ID.IsZero() {
		call.ID = primitive.NewObjectID()
	}
	call.Open = call.IsOpen()
	if r.s.openConflict(call) {
		return apperrors.ErrDuplicate
	}
	r.s.calls[call.ID] = copyCall(*call)
	return nil
}

func (r callRepo) GetByID(_ context.Context, id string) (*models.Call, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.calls[oid]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c = copyCall(c)
	return &c, nil
}

func (r callRepo) ListOpenByParticipant(_ context.Context, uid string) ([]models.Call, error) {
	return r.list(func(c models.Call) bool { return c.IsOpen() && c.HasParticipant(uid) }), nil
}

func (r callRepo) ListByParticipantSince(_ context.Context, uid string, since time.Time) ([]models.Call, error) {
	return r.list(func(c models.Call) bool { return c.HasParticipant(uid) && !c.StartTime.Before(since) }), nil
}

func (r callRepo) list(match func(models.Call) bool) []models.Call {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Call{}
	for _, c := range r.s.calls {
		if match(c) {
			out = append(out, copyCall(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out
}

func (r callRepo) CompareAndSwap(_ context.Context, call *models.Call) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.calls[call.ID]
	if !ok || stored.Version != call.Version {
		return apperrors.ErrStale
	}
	if r.s.openConflict(call) {
		return apperrors.ErrDuplicate
	}
	call.Version++
	call.Open = call.IsOpen()
	r.s.calls[call.ID] = copyCall(*call)
	return nil
}

// ---- mood ----

type moodRepo struct{ s *Store }

func (r moodRepo) Create(_ context.Context, checkin *models.MoodCheckin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if checkin.ID.IsZero() {
		checkin.ID = primitive.NewObjectID()
	}
	r.s.moods = append(r.s.moods, *checkin)
	return nil
}

func (r moodRepo) ListByUserSince(_ context.Context, uid string, since time.Time, limit int) ([]models.MoodCheckin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.MoodCheckin{}
	for _, m := range r.s.moods {
		if m.UserID == uid && !m.Timestamp.Before(since) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- feedback ----

type feedbackRepo struct{ s *Store }

func (r feedbackRepo) Create(_ context.Context, fb *models.CallFeedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if fb.ID.IsZero() {
		fb.ID = primitive.NewObjectID()
	}
	r.s.feedback = append(r.s.feedback, *fb)
	return nil
}

func (r feedbackRepo) ListByCall(_ context.Context, callID string) ([]models.CallFeedback, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.CallFeedback{}
	for _, fb := range r.s.feedback {
		if fb.CallID == callID {
			out = append(out, fb)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
