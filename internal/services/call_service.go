package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"soulcare/internal/models"
	"soulcare/internal/repository"
	"soulcare/pkg/apperrors"
	"soulcare/pkg/logger"
)

var (
	errActiveCall    = apperrors.Conflict("You already have an active call")
	errCallEnded     = apperrors.Conflict("Call has already ended")
	errCallContended = apperrors.Conflict("Call was modified concurrently, please retry")
)

type CallService struct {
	calls    repository.CallRepository
	users    repository.UserRepository
	notifier Notifier
	limiter  RateLimiter
	now      Clock
}

func NewCallService(calls repository.CallRepository, users repository.UserRepository,
	notifier Notifier, limiter RateLimiter, now Clock) *CallService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	return &CallService{calls: calls, users: users, notifier: notifier, limiter: limiter, now: now}
}

type StartCallInput struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	CallType string `json:"callType"`
}

// CallUpdateData carries the action specific payload.
type CallUpdateData struct {
	Username string      `json:"username"`
	Notes    string      `json:"notes"`
	Rating   interface{} `json:"rating"`
}

type UpdateCallInput struct {
	CallID string         `json:"callId"`
	Action string         `json:"action"`
	UserID string         `json:"userId"`
	Data   CallUpdateData `json:"data"`
}

// Get loads one call by id.
func (s *CallService) Get(ctx context.Context, callID string) (*models.Call, error) {
	call, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		return nil, storeError(err, "Call not found", "Failed to get calls")
	}
	return call, nil
}

// ListOpen returns the waiting or active calls uid takes part in.
func (s *CallService) ListOpen(ctx context.Context, uid string) ([]models.Call, error) {
	calls, err := s.calls.ListOpenByParticipant(ctx, uid)
	if err != nil {
		return nil, apperrors.Internal("Failed to get calls", err)
	}
	return calls, nil
}

// Start opens a waiting call with the caller as its only participant.
func (s *CallService) Start(ctx context.Context, in StartCallInput) (*models.Call, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.UserID == "" || in.Username == "" {
		return nil, apperrors.Validation("User ID and username are required")
	}
	if in.CallType == "" {
		in.CallType = models.DefaultCallType
	}

	open, err := s.calls.ListOpenByParticipant(ctx, in.UserID)
	if err != nil {
		return nil, apperrors.Internal("Failed to start call", err)
	}
	if len(open) > 0 {
		return nil, errActiveCall
	}
	if err := allow(ctx, s.limiter, in.UserID, "You are starting calls too quickly"); err != nil {
		return nil, err
	}

	call := &models.Call{
		Participants: []string{in.UserID},
		Usernames:    []string{in.Username},
		Status:       models.CallStatusWaiting,
		CallType:     in.CallType,
		StartTime:    s.now().UTC(),
		Duration:     0,
		CreatedBy:    in.UserID,
		Notes:        "",
		Version:      1,
	}
	if err := s.calls.Create(ctx, call); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, errActiveCall
		}
		return nil, apperrors.Internal("Failed to start call", err)
	}

	logger.LogUserAction(in.UserID, "call_start", map[string]interface{}{
		"call_id":   call.ID.Hex(),
		"call_type": call.CallType,
	})
	s.notifier.CallUpdated(call)
	return call, nil
}

// Update applies one lifecycle action as a compare-and-swap on the
// call's version.
func (s *CallService) Update(ctx context.Context, in UpdateCallInput) (*models.Call, error) {
	if in.CallID == "" || in.Action == "" {
		return nil, apperrors.Validation("Call ID and action are required")
	}
	switch in.Action {
	case models.CallActionJoin, models.CallActionEnd, models.CallActionUpdateNotes, models.CallActionRate:
	default:
		return nil, apperrors.InvalidAction("Invalid action")
	}
	if in.UserID == "" {
		return nil, apperrors.Validation("User ID is required")
	}

	call, err := s.Get(ctx, in.CallID)
	if err != nil {
		return nil, err
	}

	changed, err := s.apply(ctx, call, in)
	if err != nil {
		return nil, err
	}
	if !changed {
		return call, nil
	}

	if err := s.calls.CompareAndSwap(ctx, call); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrStale):
			return nil, errCallContended
		case errors.Is(err, apperrors.ErrDuplicate):
			return nil, errActiveCall
		default:
			return nil, apperrors.Internal("Failed to update call", err)
		}
	}

	logger.LogUserAction(in.UserID, "call_"+in.Action, map[string]interface{}{
		"call_id": call.ID.Hex(),
		"status":  call.Status,
	})
	s.notifier.CallUpdated(call)
	return call, nil
}

// apply mutates call in memory. It reports false for idempotent no-ops.
func (s *CallService) apply(ctx context.Context, call *models.Call, in UpdateCallInput) (bool, error) {
	if in.Action != models.CallActionJoin && !call.HasParticipant(in.UserID) {
		return false, apperrors.Forbidden("You are not a participant in this call")
	}

	switch in.Action {
	case models.CallActionJoin:
		if call.Status == models.CallStatusEnded {
			return false, errCallEnded
		}
		if call.HasParticipant(in.UserID) {
			return false, nil
		}
		open, err := s.calls.ListOpenByParticipant(ctx, in.UserID)
		if err != nil {
			return false, apperrors.Internal("Failed to update call", err)
		}
		if len(open) > 0 {
			return false, errActiveCall
		}
		call.Participants = append(call.Participants, in.UserID)
		call.Usernames = append(call.Usernames, s.joinUsername(ctx, in))
		call.Status = models.CallStatusActive

	case models.CallActionEnd:
		if call.Status == models.CallStatusEnded {
			return false, errCallEnded
		}
		end := s.now().UTC()
		call.Status = models.CallStatusEnded
		call.EndTime = &end
		call.Duration = CallDuration(call.StartTime, end)

	case models.CallActionUpdateNotes:
		call.Notes = in.Data.Notes

	case models.CallActionRate:
		rating, ok := in.Data.Rating.(float64)
		if !ok || rating < 1 || rating > 5 {
			return false, apperrors.Validation("Rating must be a number between 1 and 5")
		}
		call.Rating = &rating
	}
	return true, nil
}

func (s *CallService) joinUsername(ctx context.Context, in UpdateCallInput) string {
	if name := strings.TrimSpace(in.Data.Username); name != "" {
		return name
	}
	if s.users == nil {
		return ""
	}
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return ""
	}
	return user.Username
}

// CallDuration is the whole number of seconds from start to end, never negative.
func CallDuration(start, end time.Time) int64 {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
