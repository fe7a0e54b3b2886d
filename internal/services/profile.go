package services

import (
	"context"
	"fmt"
	"time"

	"couply-backend/internal/models"
	"couply-backend/internal/relationship"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type profileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
}

type profileUserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ProfileService resolves and maintains user profiles
type ProfileService struct {
	profiles profileStore
	users    profileUserStore
}

// NewProfileService creates a new profile service
func NewProfileService(profiles profileStore, users profileUserStore) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		users:    users,
	}
}

// Resolve fetches the profile for an identity, creating it on first contact.
// Unverified identities never get a profile.
func (s *ProfileService) Resolve(ctx context.Context, identity *relationship.Identity) (*models.Profile, error) {
	if identity == nil || !identity.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	profile, err := s.profiles.GetByUserID(ctx, identity.UserID)
	if err == nil {
		return profile, nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	name := "User"
	if user, err := s.users.GetByID(ctx, identity.UserID); err == nil && user.Name != "" {
		name = user.Name
	}

	profile = &models.Profile{
		ID:        uuid.New().String(),
		UserID:    identity.UserID,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if isUniqueViolation(err) {
			// lost a create race, the winner's row is the profile
			return s.profiles.GetByUserID(ctx, identity.UserID)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	log.Info().Str("user_id", identity.UserID).Str("profile_id", profile.ID).Msg("Profile created")
	return profile, nil
}

// Get returns a profile by id
func (s *ProfileService) Get(ctx context.Context, profileID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// GetByUserID returns the profile owned by a user
func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// UpdateProfileRequest carries the mutable profile fields
type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// Update applies a partial update to the caller's profile
func (s *ProfileService) Update(ctx context.Context, userID string, req UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = req.AvatarURL
	}
	profile.UpdatedAt = time.Now()

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}
