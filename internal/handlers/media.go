package handlers

import (
	"net/http"

	"couply-backend/internal/middleware"
	"couply-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// MediaHandler handles media upload HTTP requests
type MediaHandler struct {
	mediaService *services.MediaService
	stateService *services.StateService
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService *services.MediaService, stateService *services.StateService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		stateService: stateService,
	}
}

// UploadURLRequest represents the request body for an upload URL
type UploadURLRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

// GetUploadURL handles POST /api/v1/media/upload-url
func (h *MediaHandler) GetUploadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	var req UploadURLRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	_, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp, err := h.mediaService.GetUploadURL(ctx, couple.ID, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("couple_id", couple.ID).Msg("Failed to generate upload URL")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
