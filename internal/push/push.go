// Package push delivers best-effort APNs notifications for app events.
package push

import (
	"context"
	"fmt"

	"couply-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// Event identifies a notification template
type Event string

const (
	EventNewMessage    Event = "new_message"
	EventNewPost       Event = "new_post"
	EventNewComment    Event = "new_comment"
	EventNewLike       Event = "new_like"
	EventPartnerLinked Event = "partner_linked"
)

// Notification is a rendered title/body pair for one event
type Notification struct {
	Title string
	Body  string
}

// ForEvent renders the notification template for an event. The sender name
// is optional; templates fall back to a generic subject.
func ForEvent(event Event, senderName string) (Notification, bool) {
	switch event {
	case EventNewMessage:
		if senderName == "" {
			senderName = "Your partner"
		}
		return Notification{Title: "New Message", Body: senderName + " sent you a message"}, true
	case EventNewPost:
		if senderName == "" {
			senderName = "Someone"
		}
		return Notification{Title: "New Post", Body: senderName + " shared a new post"}, true
	case EventNewComment:
		if senderName == "" {
			senderName = "Someone"
		}
		return Notification{Title: "New Comment", Body: senderName + " commented on a post"}, true
	case EventNewLike:
		if senderName == "" {
			senderName = "Someone"
		}
		return Notification{Title: "New Like", Body: senderName + " liked your post"}, true
	case EventPartnerLinked:
		return Notification{Title: "Partner Linked!", Body: "You are now connected with your partner on Couply"}, true
	}
	return Notification{}, false
}

// TokenStore provides the device tokens registered by a user
type TokenStore interface {
	GetDeviceTokens(ctx context.Context, userID string) ([]string, error)
	DeleteDeviceToken(ctx context.Context, userID, token string) error
}

// Service sends APNs notifications. A service built without APNs credentials
// is a no-op, so callers never need to care whether push is configured.
type Service struct {
	client *apns2.Client
	topic  string
	tokens TokenStore
}

// NewService creates a push service from APNs config. An empty key path
// yields an unconfigured (no-op) service.
func NewService(cfg config.APNsConfig, tokens TokenStore) (*Service, error) {
	s := &Service{topic: cfg.Topic, tokens: tokens}

	if cfg.KeyPath == "" {
		return s, nil
	}

	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}
	s.client = client

	return s, nil
}

// Configured returns true if APNs credentials were provided
func (s *Service) Configured() bool {
	return s.client != nil
}

// Notify sends an event notification to every device a user has registered.
// Delivery is best-effort: failures are logged, never returned, and dead
// tokens are pruned.
func (s *Service) Notify(ctx context.Context, userID string, event Event, senderName string, data map[string]interface{}) {
	if !s.Configured() {
		return
	}

	n, ok := ForEvent(event, senderName)
	if !ok {
		log.Error().Str("event", string(event)).Msg("Unknown notification event")
		return
	}

	deviceTokens, err := s.tokens.GetDeviceTokens(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load device tokens")
		return
	}

	p := payload.NewPayload().AlertTitle(n.Title).AlertBody(n.Body).Custom("event", string(event))
	for k, v := range data {
		p.Custom(k, v)
	}

	for _, dt := range deviceTokens {
		res, err := s.client.PushWithContext(ctx, &apns2.Notification{
			DeviceToken: dt,
			Topic:       s.topic,
			Payload:     p,
		})
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to send push")
			continue
		}
		if res.Reason == apns2.ReasonUnregistered || res.Reason == apns2.ReasonBadDeviceToken {
			if err := s.tokens.DeleteDeviceToken(ctx, userID, dt); err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("Failed to prune device token")
			}
			continue
		}
		if !res.Sent() {
			log.Error().
				Str("user_id", userID).
				Int("status", res.StatusCode).
				Str("reason", res.Reason).
				Msg("Push rejected")
		}
	}
}
