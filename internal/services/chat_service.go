package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"soulcare/internal/config"
	"soulcare/internal/models"
	"soulcare/internal/repository"
	"soulcare/pkg/apperrors"
	"soulcare/pkg/logger"
)

type ChatService struct {
	messages repository.MessageRepository
	notifier Notifier
	limiter  RateLimiter
	cfg      config.ChatConfig
	now      Clock
}

func NewChatService(messages repository.MessageRepository, notifier Notifier, limiter RateLimiter,
	cfg config.ChatConfig, now Clock) *ChatService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	return &ChatService{messages: messages, notifier: notifier, limiter: limiter, cfg: cfg, now: now}
}

type CreateMessageInput struct {
	Text    string  `json:"text"`
	Sender  string  `json:"sender"`
	ReplyTo *string `json:"replyTo"`
}

type ReactInput struct {
	MessageID string `json:"messageId"`
	Action    string `json:"action"`
	UserID    string `json:"userId"`
}

// ClampLimit applies the default and the ceiling to a requested page size.
func (s *ChatService) ClampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

// List returns the most recent messages in chronological order.
func (s *ChatService) List(ctx context.Context, limit int) ([]models.Message, error) {
	messages, err := s.messages.ListRecent(ctx, s.ClampLimit(limit))
	if err != nil {
		return nil, apperrors.Internal("Failed to get messages", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Create stores a new message from senderID.
func (s *ChatService) Create(ctx context.Context, senderID string, in CreateMessageInput) (*models.Message, error) {
	if in.Text == "" || strings.TrimSpace(in.Sender) == "" {
		return nil, apperrors.Validation("Text and sender are required")
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperrors.Validation("Message cannot be empty")
	}
	if s.cfg.MaxTextLen > 0 && utf8.RuneCountInString(text) > s.cfg.MaxTextLen {
		return nil, apperrors.Validation("Message is too long")
	}
	if err := allow(ctx, s.limiter, senderID, "You are sending messages too quickly"); err != nil {
		return nil, err
	}

	msg := &models.Message{
		Text:      text,
		Sender:    strings.TrimSpace(in.Sender),
		SenderID:  senderID,
		Timestamp: s.now().UTC(),
		Likes:     0,
		LikedBy:   []string{},
		Replies:   []string{},
	}

	if in.ReplyTo != nil && *in.ReplyTo != "" {
		parent, err := s.messages.GetByID(ctx, *in.ReplyTo)
		if err != nil {
			return nil, storeError(err, "Message not found", "Failed to create message")
		}
		replyTo := parent.ID.Hex()
		msg.ReplyTo = &replyTo
		msg.ReplyToText = parent.Text
		msg.ReplyToSender = parent.Sender
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.Internal("Failed to create message", err)
	}

	logger.LogChatEvent("message_created", msg.ID.Hex(), senderID, nil)
	s.notifier.MessageCreated(msg)
	return msg, nil
}

// React applies a like or unlike. Repeating either is a no-op.
func (s *ChatService) React(ctx context.Context, in ReactInput) (*models.Message, error) {
	if in.MessageID == "" || in.Action == "" || in.UserID == "" {
		return nil, apperrors.Validation("Message ID, action, and user ID are required")
	}

	var (
		changed bool
		err     error
	)
	switch in.Action {
	case models.ActionLike:
		changed, err = s.messages.Like(ctx, in.MessageID, in.UserID)
	case models.ActionUnlike:
		changed, err = s.messages.Unlike(ctx, in.MessageID, in.UserID)
	default:
		return nil, apperrors.InvalidAction("Invalid action")
	}
	if err != nil {
		return nil, storeError(err, "Message not found", "Failed to update message")
	}

	msg, err := s.messages.GetByID(ctx, in.MessageID)
	if err != nil {
		return nil, storeError(err, "Message not found", "Failed to update message")
	}

	if changed {
		logger.LogChatEvent("message_"+in.Action, in.MessageID, in.UserID, map[string]interface{}{"likes": msg.Likes})
		s.notifier.MessageUpdated(msg)
	}
	return msg, nil
}
