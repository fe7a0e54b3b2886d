package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"couply-backend/internal/models"
	"couply-backend/internal/relationship"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Online  *bool       `json:"online,omitempty"`
	State   string      `json:"state,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// wsClient pairs a connection with a write lock. gorilla/websocket allows a
// single writer per connection, and a user's socket is written to from the
// read loop, the snapshot forwarder and partner HTTP requests.
type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*wsClient),
	}
}

// Register registers a new WebSocket connection for a user
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Close existing connection if any
	if existing, exists := h.connections[userID]; exists {
		existing.conn.Close()
	}

	h.connections[userID] = &wsClient{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a WebSocket connection for a user
func (h *WSHub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.connections[userID]; exists {
		client.conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.write(data); err != nil {
		h.Unregister(userID)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// NotifyPartnerStatus notifies the partner about online/offline status
func (h *WSHub) NotifyPartnerStatus(partnerUserID string, online bool) {
	if partnerUserID == "" {
		return
	}

	message := WSMessage{
		Type:   "partner_status",
		Online: &online,
	}

	if err := h.SendToUser(partnerUserID, message); err != nil {
		log.Debug().
			Err(err).
			Str("user_id", partnerUserID).
			Msg("Partner not reachable for status update")
	}
}

// NotifyMessageCreated pushes a new chat message to the partner's feed
func (h *WSHub) NotifyMessageCreated(partnerUserID string, msg *models.Message) {
	message := WSMessage{
		Type: "message_created",
		Data: msg,
	}

	if err := h.SendToUser(partnerUserID, message); err != nil {
		log.Debug().
			Err(err).
			Str("user_id", partnerUserID).
			Msg("Partner not reachable for message event")
	}
}

// NotifyCoupleLinked notifies a user that their couple became active
func (h *WSHub) NotifyCoupleLinked(userID string, couple *models.CoupleDetail) {
	message := WSMessage{
		Type: "couple_linked",
		Data: couple,
	}

	if err := h.SendToUser(userID, message); err != nil {
		log.Debug().
			Err(err).
			Str("user_id", userID).
			Msg("User not reachable for couple event")
	}
}

// NotifyCoupleUnlinked notifies a user that their couple was dissolved
func (h *WSHub) NotifyCoupleUnlinked(userID string) {
	message := WSMessage{
		Type: "couple_unlinked",
	}

	if err := h.SendToUser(userID, message); err != nil {
		log.Debug().
			Err(err).
			Str("user_id", userID).
			Msg("User not reachable for couple event")
	}
}

// NotifyStateChanged pushes a derived state replacement to a user
func (h *WSHub) NotifyStateChanged(userID string, snap relationship.Snapshot) {
	message := WSMessage{
		Type:  "state_changed",
		State: string(relationship.Derive(snap)),
	}

	if err := h.SendToUser(userID, message); err != nil {
		log.Debug().
			Err(err).
			Str("user_id", userID).
			Msg("User not reachable for state event")
	}
}
