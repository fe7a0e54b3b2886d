package handlers

import (
	"net/http"

	"couply-backend/internal/middleware"
	"couply-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// GroupHandler handles community group HTTP requests
type GroupHandler struct {
	groupService *services.GroupService
	stateService *services.StateService
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *services.GroupService, stateService *services.StateService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		stateService: stateService,
	}
}

// Discover handles GET /api/v1/groups
func (h *GroupHandler) Discover(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.Discover(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list groups")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, groups)
}

// Memberships handles GET /api/v1/groups/mine
func (h *GroupHandler) Memberships(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	_, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	members, err := h.groupService.Memberships(ctx, couple.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, members)
}

// Join handles POST /api/v1/groups/{group_id}/join
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)
	groupID := chi.URLParam(r, "group_id")

	_, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	member, err := h.groupService.Join(ctx, groupID, couple.ID)
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("Failed to join group")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, member)
}

// Leave handles DELETE /api/v1/groups/{group_id}/join
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)
	groupID := chi.URLParam(r, "group_id")

	_, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.groupService.Leave(ctx, groupID, couple.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GroupPostRequest represents the request body for posting into a group
type GroupPostRequest struct {
	Content   string   `json:"content" validate:"required,max=5000"`
	MediaURLs []string `json:"media_urls" validate:"omitempty,dive,url"`
}

// Post handles POST /api/v1/groups/{group_id}/posts
func (h *GroupHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)
	groupID := chi.URLParam(r, "group_id")

	var req GroupPostRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	post, err := h.groupService.Post(ctx, profile, couple.ID, groupID, req.Content, req.MediaURLs)
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("Failed to create group post")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, post)
}

// Posts handles GET /api/v1/groups/{group_id}/posts
func (h *GroupHandler) Posts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)
	groupID := chi.URLParam(r, "group_id")

	_, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	posts, err := h.groupService.Posts(ctx, groupID, couple.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, posts)
}
