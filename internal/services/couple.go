package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"couply-backend/internal/models"
	"couply-backend/internal/push"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const invitationTTL = 7 * 24 * time.Hour

type coupleStore interface {
	Create(ctx context.Context, couple *models.Couple) error
	GetByID(ctx context.Context, id string) (*models.Couple, error)
	GetActiveByProfileID(ctx context.Context, profileID string) (*models.CoupleDetail, error)
	ProfileHasCouple(ctx context.Context, profileID string) (bool, error)
	Update(ctx context.Context, couple *models.Couple) error
	Delete(ctx context.Context, id string) error
}

type invitationStore interface {
	Create(ctx context.Context, inv *models.Invitation) error
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	GetPendingByInviter(ctx context.Context, inviterID string) (*models.Invitation, error)
	Accept(ctx context.Context, invitationID, coupleID string, at time.Time) error
	MarkExpired(ctx context.Context, invitationID string) error
}

type accountLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type notifier interface {
	Notify(ctx context.Context, userID string, event push.Event, senderName string, data map[string]interface{})
}

// CoupleService manages pairing: invitations, acceptance, couple settings
// and unlinking
type CoupleService struct {
	couples     coupleStore
	invitations invitationStore
	users       accountLookup
	profiles    *ProfileService
	state       *StateService
	push        notifier
}

// NewCoupleService creates a new couple service
func NewCoupleService(couples coupleStore, invitations invitationStore, users accountLookup, profiles *ProfileService, state *StateService, push notifier) *CoupleService {
	return &CoupleService{
		couples:     couples,
		invitations: invitations,
		users:       users,
		profiles:    profiles,
		state:       state,
		push:        push,
	}
}

// GetForProfile returns the active couple for a profile, or nil when the
// profile is not linked
func (s *CoupleService) GetForProfile(ctx context.Context, profileID string) (*models.CoupleDetail, error) {
	couple, err := s.couples.GetActiveByProfileID(ctx, profileID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}
	return couple, nil
}

// Invite creates a pending couple with the invitee and an invitation token.
// The invitee must already have an account; both sides must be uncoupled.
func (s *CoupleService) Invite(ctx context.Context, inviter *models.Profile, inviteeEmail string) (*models.Invitation, error) {
	inviteeEmail = strings.ToLower(strings.TrimSpace(inviteeEmail))

	taken, err := s.couples.ProfileHasCouple(ctx, inviter.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check inviter couple: %w", err)
	}
	if taken {
		return nil, ErrAlreadyLinked
	}

	inviteeUser, err := s.users.GetByEmail(ctx, inviteeEmail)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("failed to look up invitee: %w", err)
	}
	if inviteeUser.ID == inviter.UserID {
		return nil, ErrSelfPair
	}

	invitee, err := s.profiles.GetByUserID(ctx, inviteeUser.ID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}

	taken, err = s.couples.ProfileHasCouple(ctx, invitee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check invitee couple: %w", err)
	}
	if taken {
		return nil, ErrPartnerAlreadyLinked
	}

	now := time.Now()
	couple := &models.Couple{
		ID:         uuid.New().String(),
		Partner1ID: inviter.ID,
		Partner2ID: invitee.ID,
		Status:     models.CoupleStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.couples.Create(ctx, couple); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyLinked
		}
		return nil, fmt.Errorf("failed to create couple: %w", err)
	}

	inv := &models.Invitation{
		ID:           uuid.New().String(),
		Token:        uuid.New().String(),
		CoupleID:     couple.ID,
		InviterID:    inviter.ID,
		InviteeEmail: inviteeEmail,
		Status:       models.InvitationStatusPending,
		ExpiresAt:    now.Add(invitationTTL),
		CreatedAt:    now,
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	log.Info().
		Str("inviter_id", inviter.ID).
		Str("invitee_id", invitee.ID).
		Str("couple_id", couple.ID).
		Msg("Invitation created")
	return inv, nil
}

// PendingInvitation returns the inviter's outstanding invitation, or nil
func (s *CoupleService) PendingInvitation(ctx context.Context, inviterID string) (*models.Invitation, error) {
	inv, err := s.invitations.GetPendingByInviter(ctx, inviterID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// Accept consumes an invitation token and activates the pending couple.
// Only the invited account may accept; expired invitations are marked as
// such on first touch.
func (s *CoupleService) Accept(ctx context.Context, invitee *models.Profile, inviteeEmail, token string) (*models.CoupleDetail, error) {
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrInviteNotPending
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	if inv.Status != models.InvitationStatusPending {
		return nil, ErrInviteNotPending
	}
	if time.Now().After(inv.ExpiresAt) {
		if err := s.invitations.MarkExpired(ctx, inv.ID); err != nil {
			log.Error().Err(err).Str("invitation_id", inv.ID).Msg("Failed to mark invitation expired")
		}
		return nil, ErrInviteExpired
	}
	if !strings.EqualFold(inv.InviteeEmail, inviteeEmail) {
		return nil, ErrNotInvitee
	}

	couple, err := s.couples.GetByID(ctx, inv.CoupleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}
	if couple.Partner2ID != invitee.ID {
		return nil, ErrNotInvitee
	}

	if err := s.invitations.Accept(ctx, inv.ID, couple.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	detail, err := s.couples.GetActiveByProfileID(ctx, invitee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}

	s.notifyLinked(ctx, detail, invitee)
	s.refreshBoth(ctx, detail)

	log.Info().Str("couple_id", couple.ID).Msg("Couple activated")
	return detail, nil
}

func (s *CoupleService) notifyLinked(ctx context.Context, detail *models.CoupleDetail, accepter *models.Profile) {
	for _, p := range []*models.Profile{detail.Partner1, detail.Partner2} {
		if p == nil {
			continue
		}
		s.push.Notify(ctx, p.UserID, push.EventPartnerLinked, accepter.Name, map[string]interface{}{
			"couple_id": detail.ID,
		})
	}
}

func (s *CoupleService) refreshBoth(ctx context.Context, detail *models.CoupleDetail) {
	for _, p := range []*models.Profile{detail.Partner1, detail.Partner2} {
		if p != nil {
			s.state.Refresh(ctx, p.UserID)
		}
	}
}

// UpdateCoupleRequest carries the mutable couple settings
type UpdateCoupleRequest struct {
	CoupleName      *string    `json:"couple_name" validate:"omitempty,max=100"`
	CoupleBio       *string    `json:"couple_bio" validate:"omitempty,max=500"`
	CoupleAvatarURL *string    `json:"couple_avatar_url" validate:"omitempty,url"`
	AnniversaryDate *time.Time `json:"anniversary_date"`
	IsPrivateMode   *bool      `json:"is_private_mode"`
}

// Update applies couple settings; either partner may edit
func (s *CoupleService) Update(ctx context.Context, profile *models.Profile, req UpdateCoupleRequest) (*models.CoupleDetail, error) {
	detail, err := s.couples.GetActiveByProfileID(ctx, profile.ID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotLinked
		}
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}

	couple := &detail.Couple
	if req.CoupleName != nil {
		couple.CoupleName = req.CoupleName
	}
	if req.CoupleBio != nil {
		couple.CoupleBio = req.CoupleBio
	}
	if req.CoupleAvatarURL != nil {
		couple.CoupleAvatarURL = req.CoupleAvatarURL
	}
	if req.AnniversaryDate != nil {
		couple.AnniversaryDate = req.AnniversaryDate
	}
	if req.IsPrivateMode != nil {
		couple.IsPrivateMode = *req.IsPrivateMode
	}
	couple.UpdatedAt = time.Now()

	if err := s.couples.Update(ctx, couple); err != nil {
		return nil, fmt.Errorf("failed to update couple: %w", err)
	}
	return detail, nil
}

// Unlink dissolves the caller's active couple. Both partners drop back to
// onboarding.
func (s *CoupleService) Unlink(ctx context.Context, profile *models.Profile) error {
	detail, err := s.couples.GetActiveByProfileID(ctx, profile.ID)
	if err != nil {
		if isNoRows(err) {
			return ErrNotLinked
		}
		return fmt.Errorf("failed to get couple: %w", err)
	}

	if err := s.couples.Delete(ctx, detail.ID); err != nil {
		return fmt.Errorf("failed to delete couple: %w", err)
	}

	s.refreshBoth(ctx, detail)
	log.Info().Str("couple_id", detail.ID).Msg("Couple unlinked")
	return nil
}
