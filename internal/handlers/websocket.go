package handlers

import (
	"encoding/json"
	"net/http"

	"couply-backend/internal/middleware"
	"couply-backend/internal/relationship"
	"couply-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // clients are mobile apps, origin is meaningless
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *services.WSHub
	authService    *services.AuthService
	stateService   *services.StateService
	messageService *services.MessageService
	store          *relationship.Store
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	authService *services.AuthService,
	stateService *services.StateService,
	messageService *services.MessageService,
	store *relationship.Store,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		authService:    authService,
		stateService:   stateService,
		messageService: messageService,
		store:          store,
	}
}

// HandleWebSocket handles WebSocket connections
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.ValidateWebSocketToken(r.URL.Query().Get("token"), h.authService)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}
	userID := identity.UserID

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID)

	ctx := r.Context()

	// resolve and send the current state; snapshot replacements follow on
	// the same connection. An incomplete resolution derives to loading and
	// the client retries through its normal state fetch.
	snap, err := h.stateService.Resolve(ctx, identity)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to resolve state")
	}
	h.hub.NotifyStateChanged(userID, snap)

	// tell the partner we are online, and again when we drop
	if partnerUserID := partnerOf(snap, userID); partnerUserID != "" {
		h.hub.NotifyPartnerStatus(partnerUserID, true)
		defer h.hub.NotifyPartnerStatus(partnerUserID, false)
	}

	snapshots, cancel := h.store.Subscribe(userID)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case snap := <-snapshots:
				h.hub.NotifyStateChanged(userID, snap)
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendError(userID, "Invalid message format")
			continue
		}

		if err := h.handleMessage(r, identity, msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to handle message")
			h.sendError(userID, err.Error())
		}
	}
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(r *http.Request, identity *relationship.Identity, msg services.WSMessage) error {
	switch msg.Type {
	case "ping":
		return h.hub.SendToUser(identity.UserID, services.WSMessage{Type: "pong"})
	case "send_message":
		return h.handleSendMessage(r, identity, msg)
	default:
		return h.hub.SendToUser(identity.UserID, services.WSMessage{
			Type:    "error",
			Message: "Unknown message type",
		})
	}
}

// handleSendMessage sends a chat message submitted over the socket
func (h *WebSocketHandler) handleSendMessage(r *http.Request, identity *relationship.Identity, msg services.WSMessage) error {
	ctx := r.Context()

	profile, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		return err
	}

	payload := struct {
		MessageType string `json:"message_type"`
		Content     string `json:"content"`
	}{}
	raw, err := json.Marshal(msg.Data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}

	created, err := h.messageService.Send(ctx, profile, couple, payload.MessageType, payload.Content)
	if err != nil {
		return err
	}

	return h.hub.SendToUser(identity.UserID, services.WSMessage{
		Type: "message_created",
		Data: created,
	})
}

// sendError sends an error message to a user
func (h *WebSocketHandler) sendError(userID, message string) {
	if err := h.hub.SendToUser(userID, services.WSMessage{
		Type:    "error",
		Message: message,
	}); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("Failed to send error message")
	}
}

// partnerOf returns the partner's user ID from a linked snapshot
func partnerOf(snap relationship.Snapshot, userID string) string {
	if snap.Couple == nil {
		return ""
	}
	if snap.Couple.Partner1 != nil && snap.Couple.Partner1.UserID != userID {
		return snap.Couple.Partner1.UserID
	}
	if snap.Couple.Partner2 != nil && snap.Couple.Partner2.UserID != userID {
		return snap.Couple.Partner2.UserID
	}
	return ""
}
