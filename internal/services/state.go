package services

import (
	"context"
	"fmt"

	"couply-backend/internal/models"
	"couply-backend/internal/relationship"

	"github.com/rs/zerolog/log"
)

type coupleLookup interface {
	GetActiveByProfileID(ctx context.Context, profileID string) (*models.CoupleDetail, error)
}

// StateService resolves the full relationship snapshot for an identity and
// publishes it to the snapshot store
type StateService struct {
	profiles *ProfileService
	couples  coupleLookup
	store    *relationship.Store
}

// NewStateService creates a new state service
func NewStateService(profiles *ProfileService, couples coupleLookup, store *relationship.Store) *StateService {
	return &StateService{
		profiles: profiles,
		couples:  couples,
		store:    store,
	}
}

// Resolve runs the session, profile and couple checks in order and publishes
// the resulting snapshot. A profile failure still completes the couple check
// flag so the snapshot never derives to loading. A transient couple-lookup
// failure is returned as an error and leaves the stored snapshot untouched;
// deriving it to onboarding would misroute a linked user.
func (s *StateService) Resolve(ctx context.Context, identity *relationship.Identity) (relationship.Snapshot, error) {
	snap := relationship.Snapshot{
		SessionChecked: true,
		Identity:       identity,
	}

	if identity == nil || !identity.EmailVerified {
		snap.ProfileChecked = true
		snap.CoupleChecked = true
		if identity != nil {
			s.store.Publish(identity.UserID, snap)
		}
		return snap, nil
	}

	profile, err := s.profiles.Resolve(ctx, identity)
	snap.ProfileChecked = true
	if err != nil {
		log.Error().Err(err).Str("user_id", identity.UserID).Msg("Failed to resolve profile")
		snap.ProfileFailed = true
		snap.CoupleChecked = true
		s.store.Publish(identity.UserID, snap)
		return snap, nil
	}
	snap.Profile = profile

	couple, err := s.couples.GetActiveByProfileID(ctx, profile.ID)
	switch {
	case err == nil:
		snap.Couple = couple
	case isNoRows(err):
		// no active couple: onboarding
	default:
		log.Error().Err(err).Str("profile_id", profile.ID).Msg("Failed to resolve couple")
		return snap, fmt.Errorf("failed to resolve couple: %w", err)
	}
	snap.CoupleChecked = true

	s.store.Publish(identity.UserID, snap)
	return snap, nil
}

// Refresh re-resolves the snapshot for a user from the identity already in
// the store. It is called after anything that changes couple membership;
// a resolution failure keeps the previous snapshot and is already logged.
func (s *StateService) Refresh(ctx context.Context, userID string) {
	snap := s.store.Get(userID)
	if snap.Identity == nil {
		return
	}
	_, _ = s.Resolve(ctx, snap.Identity)
}

// Current returns the stored snapshot with its derived state
func (s *StateService) Current(userID string) (relationship.Snapshot, relationship.State) {
	snap := s.store.Get(userID)
	return snap, relationship.Derive(snap)
}

// RequireLinked returns the caller's profile and active couple, resolving
// them fresh. Callers that need couple-scoped data use this as their guard.
func (s *StateService) RequireLinked(ctx context.Context, identity *relationship.Identity) (*models.Profile, *models.CoupleDetail, error) {
	snap, err := s.Resolve(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	if relationship.Derive(snap) != relationship.StateLinked {
		return nil, nil, ErrNotLinked
	}
	return snap.Profile, snap.Couple, nil
}

// RequireProfile returns the caller's profile, resolving it fresh
func (s *StateService) RequireProfile(ctx context.Context, identity *relationship.Identity) (*models.Profile, error) {
	snap, err := s.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if identity == nil || !identity.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	if snap.ProfileFailed || snap.Profile == nil {
		return nil, fmt.Errorf("profile unavailable")
	}
	return snap.Profile, nil
}
