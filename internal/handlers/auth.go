package handlers

import (
	"net/http"

	"couply-backend/internal/middleware"
	"couply-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles account and session HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// SignUpRequest represents the request body for sign-up
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
}

// SignUp handles POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SignUpRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.authService.SignUp(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to sign up")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User signed up")
	respondJSON(w, http.StatusCreated, user)
}

// SignInRequest represents the request body for sign-in
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInResponse carries the session token with the account
type SignInResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// SignIn handles POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SignInRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.authService.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User signed in")
	respondJSON(w, http.StatusOK, SignInResponse{Token: token, User: user})
}

// SignOut handles POST /api/v1/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	h.authService.SignOut(r.Context(), identity.UserID)

	log.Info().Str("user_id", identity.UserID).Msg("User signed out")
	w.WriteHeader(http.StatusNoContent)
}

// VerifyEmailRequest represents the request body for email verification
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// VerifyEmail handles POST /api/v1/auth/verify
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req VerifyEmailRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.authService.VerifyEmail(ctx, req.Token)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// a fresh token carries the verified claim
	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, SignInResponse{Token: token, User: user})
}

// ResendRequest represents the request body for resending verification
type ResendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResendVerification handles POST /api/v1/auth/resend
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ResendRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.ResendVerification(ctx, req.Email); err != nil {
		log.Error().Err(err).Msg("Failed to resend verification")
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RegisterDeviceRequest represents the request body for device registration
type RegisterDeviceRequest struct {
	Token string `json:"token" validate:"required"`
}

// RegisterDevice handles POST /api/v1/devices
func (h *AuthHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	var req RegisterDeviceRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.RegisterDevice(ctx, identity.UserID, req.Token); err != nil {
		log.Error().Err(err).Str("user_id", identity.UserID).Msg("Failed to register device")
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
