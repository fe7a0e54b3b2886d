package services

import (
	"context"
	"fmt"
	"time"

	"couply-backend/internal/models"
	"couply-backend/internal/moderation"
	"couply-backend/internal/push"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// reaction payloads are fixed, user text never reaches them
var reactionContent = map[string]string{
	models.MessageTypeHug:  "🤗",
	models.MessageTypeKiss: "💋",
}

type messageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByCoupleID(ctx context.Context, coupleID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, messageID, coupleID string) error
}

type contentGate interface {
	Check(ctx context.Context, content, contentType, profileID string) error
}

// MessageService handles couple chat: text messages and reactions
type MessageService struct {
	messages messageStore
	gate     contentGate
	hub      *WSHub
	push     notifier
}

// NewMessageService creates a new message service
func NewMessageService(messages messageStore, gate contentGate, hub *WSHub, push notifier) *MessageService {
	return &MessageService{
		messages: messages,
		gate:     gate,
		hub:      hub,
		push:     push,
	}
}

// Send stores a chat message and delivers it to the partner. Text goes
// through the moderation gate; hug and kiss reactions carry a fixed payload
// and skip it.
func (s *MessageService) Send(ctx context.Context, sender *models.Profile, couple *models.CoupleDetail, messageType, content string) (*models.Message, error) {
	switch messageType {
	case models.MessageTypeText:
		if err := s.gate.Check(ctx, content, moderation.ClassMessage, sender.ID); err != nil {
			return nil, err
		}
	case models.MessageTypeHug, models.MessageTypeKiss:
		content = reactionContent[messageType]
	default:
		return nil, fmt.Errorf("unknown message type %q", messageType)
	}

	msg := &models.Message{
		ID:          uuid.New().String(),
		CoupleID:    couple.ID,
		SenderID:    sender.ID,
		MessageType: messageType,
		Content:     &content,
		CreatedAt:   time.Now(),
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	msg.Sender = sender

	s.deliver(ctx, sender, couple, msg)
	return msg, nil
}

func (s *MessageService) deliver(ctx context.Context, sender *models.Profile, couple *models.CoupleDetail, msg *models.Message) {
	partner := couple.Partner1
	if partner != nil && partner.ID == sender.ID {
		partner = couple.Partner2
	}
	if partner == nil {
		return
	}

	s.hub.NotifyMessageCreated(partner.UserID, msg)

	if !s.hub.IsOnline(partner.UserID) {
		s.push.Notify(ctx, partner.UserID, push.EventNewMessage, sender.Name, map[string]interface{}{
			"message_id": msg.ID,
			"couple_id":  couple.ID,
		})
	}

	log.Debug().
		Str("message_id", msg.ID).
		Str("couple_id", couple.ID).
		Str("type", msg.MessageType).
		Msg("Message delivered")
}

// List returns the couple's chat history, oldest first
func (s *MessageService) List(ctx context.Context, coupleID string) ([]*models.Message, error) {
	msgs, err := s.messages.ListByCoupleID(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// MarkRead marks one of the couple's messages as read. A message id from
// another couple is a miss, not an update.
func (s *MessageService) MarkRead(ctx context.Context, messageID, coupleID string) error {
	if err := s.messages.MarkRead(ctx, messageID, coupleID); err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}
