package handlers

import (
	"net/http"

	"couply-backend/internal/middleware"
	"couply-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// CoupleHandler handles couple pairing HTTP requests
type CoupleHandler struct {
	coupleService *services.CoupleService
	stateService  *services.StateService
	wsHub         *services.WSHub
}

// NewCoupleHandler creates a new couple handler
func NewCoupleHandler(coupleService *services.CoupleService, stateService *services.StateService, wsHub *services.WSHub) *CoupleHandler {
	return &CoupleHandler{
		coupleService: coupleService,
		stateService:  stateService,
		wsHub:         wsHub,
	}
}

// GetCouple handles GET /api/v1/couple
func (h *CoupleHandler) GetCouple(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	profile, err := h.stateService.RequireProfile(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	couple, err := h.coupleService.GetForProfile(ctx, profile.ID)
	if err != nil {
		log.Error().Err(err).Str("profile_id", profile.ID).Msg("Failed to get couple")
		respondServiceError(w, err)
		return
	}
	if couple == nil {
		respondError(w, "no active couple", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, couple)
}

// InviteRequest represents the request body for inviting a partner
type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Invite handles POST /api/v1/couple/invite
func (h *CoupleHandler) Invite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	var req InviteRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.stateService.RequireProfile(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	inv, err := h.coupleService.Invite(ctx, profile, req.Email)
	if err != nil {
		log.Error().Err(err).Str("profile_id", profile.ID).Msg("Failed to create invitation")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, inv)
}

// GetInvitation handles GET /api/v1/couple/invite
func (h *CoupleHandler) GetInvitation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	profile, err := h.stateService.RequireProfile(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	inv, err := h.coupleService.PendingInvitation(ctx, profile.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if inv == nil {
		respondError(w, "no pending invitation", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, inv)
}

// AcceptRequest represents the request body for accepting an invitation
type AcceptRequest struct {
	Token string `json:"token" validate:"required"`
}

// Accept handles POST /api/v1/couple/accept
func (h *CoupleHandler) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	var req AcceptRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.stateService.RequireProfile(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	couple, err := h.coupleService.Accept(ctx, profile, identity.Email, req.Token)
	if err != nil {
		log.Error().Err(err).Str("profile_id", profile.ID).Msg("Failed to accept invitation")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("couple_id", couple.ID).Msg("Invitation accepted")

	// realtime link events for whoever is connected
	if couple.Partner1 != nil && h.wsHub.IsOnline(couple.Partner1.UserID) {
		h.wsHub.NotifyCoupleLinked(couple.Partner1.UserID, couple)
	}
	if couple.Partner2 != nil && h.wsHub.IsOnline(couple.Partner2.UserID) {
		h.wsHub.NotifyCoupleLinked(couple.Partner2.UserID, couple)
	}

	respondJSON(w, http.StatusOK, couple)
}

// UpdateCouple handles PATCH /api/v1/couple
func (h *CoupleHandler) UpdateCouple(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	var req services.UpdateCoupleRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.stateService.RequireProfile(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	couple, err := h.coupleService.Update(ctx, profile, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, couple)
}

// Unlink handles DELETE /api/v1/couple
func (h *CoupleHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	profile, err := h.stateService.RequireProfile(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	couple, err := h.coupleService.GetForProfile(ctx, profile.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.coupleService.Unlink(ctx, profile); err != nil {
		log.Error().Err(err).Str("profile_id", profile.ID).Msg("Failed to unlink couple")
		respondServiceError(w, err)
		return
	}

	if couple != nil {
		if couple.Partner1 != nil && h.wsHub.IsOnline(couple.Partner1.UserID) {
			h.wsHub.NotifyCoupleUnlinked(couple.Partner1.UserID)
		}
		if couple.Partner2 != nil && h.wsHub.IsOnline(couple.Partner2.UserID) {
			h.wsHub.NotifyCoupleUnlinked(couple.Partner2.UserID)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
