package repository

import (
	"context"
	"fmt"

	"couply-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChallengeRepository handles database operations for challenges
type ChallengeRepository struct {
	db *pgxpool.Pool
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *pgxpool.Pool) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

const challengeColumns = `id, title, description, challenge_type, start_date, end_date, is_active, created_at`

// GetByID retrieves a challenge by ID
func (r *ChallengeRepository) GetByID(ctx context.Context, id string) (*models.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`
	var c models.Challenge
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Description, &c.ChallengeType,
		&c.StartDate, &c.EndDate, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("challenge not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return &c, nil
}

// ListActive retrieves challenges currently open for submissions
func (r *ChallengeRepository) ListActive(ctx context.Context) ([]*models.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE is_active
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*models.Challenge
	for rows.Next() {
		var c models.Challenge
		err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.ChallengeType,
			&c.StartDate, &c.EndDate, &c.IsActive, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating challenges: %w", err)
	}
	return challenges, nil
}

// CreateSubmission creates a couple's entry for a challenge
func (r *ChallengeRepository) CreateSubmission(ctx context.Context, sub *models.ChallengeSubmission) error {
	query := `
		INSERT INTO challenge_submissions (id, challenge_id, couple_id, content, media_urls, votes_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		sub.ID, sub.ChallengeID, sub.CoupleID, sub.Content, sub.MediaURLs,
		sub.VotesCount, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// ListSubmissions retrieves a challenge's entries newest first
func (r *ChallengeRepository) ListSubmissions(ctx context.Context, challengeID string) ([]*models.ChallengeSubmission, error) {
	query := `
		SELECT id, challenge_id, couple_id, content, media_urls, votes_count, created_at
		FROM challenge_submissions
		WHERE challenge_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []*models.ChallengeSubmission
	for rows.Next() {
		var s models.ChallengeSubmission
		err := rows.Scan(
			&s.ID, &s.ChallengeID, &s.CoupleID, &s.Content, &s.MediaURLs,
			&s.VotesCount, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return subs, nil
}
