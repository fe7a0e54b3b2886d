package handlers

import (
	"net/http"

	"couply-backend/internal/middleware"
	"couply-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MessageHandler handles couple chat HTTP requests
type MessageHandler struct {
	messageService *services.MessageService
	stateService   *services.StateService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService *services.MessageService, stateService *services.StateService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		stateService:   stateService,
	}
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	MessageType string `json:"message_type" validate:"required,oneof=text hug kiss"`
	Content     string `json:"content" validate:"max=2000"`
}

// Send handles POST /api/v1/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	var req SendMessageRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	msg, err := h.messageService.Send(ctx, profile, couple, req.MessageType, req.Content)
	if err != nil {
		log.Error().Err(err).Str("profile_id", profile.ID).Msg("Failed to send message")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}

// List handles GET /api/v1/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	_, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	msgs, err := h.messageService.List(ctx, couple.ID)
	if err != nil {
		log.Error().Err(err).Str("couple_id", couple.ID).Msg("Failed to list messages")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, msgs)
}

// MarkRead handles POST /api/v1/messages/{message_id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)
	messageID := chi.URLParam(r, "message_id")

	_, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.messageService.MarkRead(ctx, messageID, couple.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
