package handlers

import (
	"net/http"

	"couply-backend/internal/middleware"
	"couply-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PostHandler handles community feed HTTP requests
type PostHandler struct {
	postService  *services.PostService
	stateService *services.StateService
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *services.PostService, stateService *services.StateService) *PostHandler {
	return &PostHandler{
		postService:  postService,
		stateService: stateService,
	}
}

// Feed handles GET /api/v1/posts
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.Feed(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load feed")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, posts)
}

// CreatePostRequest represents the request body for creating a post
type CreatePostRequest struct {
	Content   string   `json:"content" validate:"required,max=5000"`
	PostType  string   `json:"post_type" validate:"omitempty,max=50"`
	MediaURLs []string `json:"media_urls" validate:"omitempty,dive,url"`
}

// Create handles POST /api/v1/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	var req CreatePostRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PostType == "" {
		req.PostType = "moment"
	}

	profile, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	post, err := h.postService.Create(ctx, profile, couple, req.Content, req.PostType, req.MediaURLs)
	if err != nil {
		log.Error().Err(err).Str("profile_id", profile.ID).Msg("Failed to create post")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, post)
}

// CommentRequest represents the request body for commenting
type CommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// Comment handles POST /api/v1/posts/{post_id}/comments
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)
	postID := chi.URLParam(r, "post_id")

	var req CommentRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.stateService.RequireProfile(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	comment, err := h.postService.Comment(ctx, profile, postID, req.Content)
	if err != nil {
		log.Error().Err(err).Str("post_id", postID).Msg("Failed to add comment")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, comment)
}

// Comments handles GET /api/v1/posts/{post_id}/comments
func (h *PostHandler) Comments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "post_id")

	comments, err := h.postService.Comments(r.Context(), postID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, comments)
}

// LikeResponse reports the like state after a toggle
type LikeResponse struct {
	Liked bool `json:"liked"`
}

// ToggleLike handles POST /api/v1/posts/{post_id}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)
	postID := chi.URLParam(r, "post_id")

	profile, err := h.stateService.RequireProfile(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	liked, err := h.postService.ToggleLike(ctx, profile, postID)
	if err != nil {
		log.Error().Err(err).Str("post_id", postID).Msg("Failed to toggle like")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, LikeResponse{Liked: liked})
}
