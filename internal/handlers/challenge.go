package handlers

import (
	"net/http"

	"couply-backend/internal/middleware"
	"couply-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ChallengeHandler handles community challenge HTTP requests
type ChallengeHandler struct {
	challengeService *services.ChallengeService
	stateService     *services.StateService
}

// NewChallengeHandler creates a new challenge handler
func NewChallengeHandler(challengeService *services.ChallengeService, stateService *services.StateService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
		stateService:     stateService,
	}
}

// List handles GET /api/v1/challenges
func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.challengeService.ListActive(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list challenges")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, challenges)
}

// SubmitRequest represents the request body for a challenge submission
type SubmitRequest struct {
	Content   string   `json:"content" validate:"required,max=5000"`
	MediaURLs []string `json:"media_urls" validate:"omitempty,dive,url"`
}

// Submit handles POST /api/v1/challenges/{challenge_id}/submissions
func (h *ChallengeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)
	challengeID := chi.URLParam(r, "challenge_id")

	var req SubmitRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	sub, err := h.challengeService.Submit(ctx, profile, couple.ID, challengeID, req.Content, req.MediaURLs)
	if err != nil {
		log.Error().Err(err).Str("challenge_id", challengeID).Msg("Failed to submit to challenge")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, sub)
}

// Submissions handles GET /api/v1/challenges/{challenge_id}/submissions
func (h *ChallengeHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	challengeID := chi.URLParam(r, "challenge_id")

	subs, err := h.challengeService.Submissions(r.Context(), challengeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, subs)
}
