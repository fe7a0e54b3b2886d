package handlers

import (
	"net/http"

	"couply-backend/internal/middleware"
	"couply-backend/internal/relationship"
	"couply-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile and state HTTP requests
type ProfileHandler struct {
	profileService *services.ProfileService
	stateService   *services.StateService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService, stateService *services.StateService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		stateService:   stateService,
	}
}

// StateResponse is the derived state with the snapshot data behind it
type StateResponse struct {
	State    relationship.State     `json:"state"`
	Identity *relationship.Identity `json:"identity,omitempty"`
	Profile  interface{}            `json:"profile,omitempty"`
	Couple   interface{}            `json:"couple,omitempty"`
}

// GetState handles GET /api/v1/state. It resolves session, profile and
// couple fresh and returns the derived state.
func (h *ProfileHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	snap, err := h.stateService.Resolve(ctx, identity)
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve state")
		respondServiceError(w, err)
		return
	}

	resp := StateResponse{
		State:    relationship.Derive(snap),
		Identity: snap.Identity,
	}
	if snap.Profile != nil {
		resp.Profile = snap.Profile
	}
	if snap.Couple != nil {
		resp.Couple = snap.Couple
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetProfile handles GET /api/v1/profile. The profile is created on first
// fetch for a verified account.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	profile, err := h.profileService.Resolve(ctx, identity)
	if err != nil {
		log.Error().Err(err).Str("user_id", identity.UserID).Msg("Failed to resolve profile")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/v1/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	var req services.UpdateProfileRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.profileService.Update(ctx, identity.UserID, req)
	if err != nil {
		log.Error().Err(err).Str("user_id", identity.UserID).Msg("Failed to update profile")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
