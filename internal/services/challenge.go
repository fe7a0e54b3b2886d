package services

import (
	"context"
	"fmt"
	"time"

	"couply-backend/internal/models"
	"couply-backend/internal/moderation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type challengeStore interface {
	GetByID(ctx context.Context, id string) (*models.Challenge, error)
	ListActive(ctx context.Context) ([]*models.Challenge, error)
	CreateSubmission(ctx context.Context, sub *models.ChallengeSubmission) error
	ListSubmissions(ctx context.Context, challengeID string) ([]*models.ChallengeSubmission, error)
}

// ChallengeService lists community challenges and accepts couple submissions
type ChallengeService struct {
	challenges challengeStore
	gate       contentGate
}

// NewChallengeService creates a new challenge service
func NewChallengeService(challenges challengeStore, gate contentGate) *ChallengeService {
	return &ChallengeService{
		challenges: challenges,
		gate:       gate,
	}
}

// ListActive returns the currently running challenges
func (s *ChallengeService) ListActive(ctx context.Context) ([]*models.Challenge, error) {
	challenges, err := s.challenges.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

// Submit records a couple's entry for a challenge. One entry per couple per
// challenge; the entry text passes the moderation gate as a post.
func (s *ChallengeService) Submit(ctx context.Context, author *models.Profile, coupleID, challengeID, content string, mediaURLs []string) (*models.ChallengeSubmission, error) {
	challenge, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	if !challenge.IsActive {
		return nil, fmt.Errorf("challenge %s is not active", challengeID)
	}
	if challenge.EndDate != nil && time.Now().After(*challenge.EndDate) {
		return nil, fmt.Errorf("challenge %s has ended", challengeID)
	}

	if err := s.gate.Check(ctx, content, moderation.ClassPost, author.ID); err != nil {
		return nil, err
	}

	sub := &models.ChallengeSubmission{
		ID:          uuid.New().String(),
		ChallengeID: challengeID,
		CoupleID:    coupleID,
		Content:     &content,
		MediaURLs:   mediaURLs,
		CreatedAt:   time.Now(),
	}

	if err := s.challenges.CreateSubmission(ctx, sub); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("couple already submitted to challenge %s", challengeID)
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	log.Info().Str("challenge_id", challengeID).Str("couple_id", coupleID).Msg("Challenge submission created")
	return sub, nil
}

// Submissions lists all entries for a challenge
func (s *ChallengeService) Submissions(ctx context.Context, challengeID string) ([]*models.ChallengeSubmission, error) {
	subs, err := s.challenges.ListSubmissions(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}
