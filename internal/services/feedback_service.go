package services

import (
	"context"
	"strings"
	"time"

	"soulcare/internal/models"
	"soulcare/internal/repository"
	"soulcare/pkg/apperrors"
)

type FeedbackService struct {
	feedback repository.FeedbackRepository
	now      Clock
}

func NewFeedbackService(feedback repository.FeedbackRepository, now Clock) *FeedbackService {
	if now == nil {
		now = time.Now
	}
	return &FeedbackService{feedback: feedback, now: now}
}

// Submit appends payload under callID. The call's state is not consulted.
func (s *FeedbackService) Submit(ctx context.Context, callID string, payload map[string]interface{}) (*models.CallFeedback, error) {
	if strings.TrimSpace(callID) == "" {
		return nil, apperrors.Validation("Call ID is required")
	}
	if len(payload) == 0 {
		return nil, apperrors.Validation("Feedback data is required")
	}

	fb := &models.CallFeedback{
		CallID:    callID,
		Data:      payload,
		CreatedAt: s.now().UTC(),
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, apperrors.Internal("Failed to submit feedback", err)
	}
	return fb, nil
}

func (s *FeedbackService) List(ctx context.Context, callID string) ([]models.CallFeedback, error) {
	if strings.TrimSpace(callID) == "" {
		return nil, apperrors.Validation("Call ID is required")
	}
	items, err := s.feedback.ListByCall(ctx, callID)
	if err != nil {
		return nil, apperrors.Internal("Failed to get feedback", err)
	}
	return items, nil
}
