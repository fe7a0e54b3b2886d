package repository

import (
	"context"
	"fmt"

	"couply-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CoupleRepository handles database operations for couples
type CoupleRepository struct {
	db *pgxpool.Pool
}

// NewCoupleRepository creates a new couple repository
func NewCoupleRepository(db *pgxpool.Pool) *CoupleRepository {
	return &CoupleRepository{db: db}
}

const coupleColumns = `id, partner1_id, partner2_id, status, anniversary_date,
	couple_name, couple_bio, couple_avatar_url, is_private_mode, created_at, updated_at`

func scanCouple(row pgx.Row) (*models.Couple, error) {
	var c models.Couple
	err := row.Scan(
		&c.ID, &c.Partner1ID, &c.Partner2ID, &c.Status, &c.AnniversaryDate,
		&c.CoupleName, &c.CoupleBio, &c.CoupleAvatarURL, &c.IsPrivateMode,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create creates a new couple
func (r *CoupleRepository) Create(ctx context.Context, couple *models.Couple) error {
	query := `
		INSERT INTO couples (id, partner1_id, partner2_id, status, anniversary_date,
			couple_name, couple_bio, couple_avatar_url, is_private_mode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		couple.ID, couple.Partner1ID, couple.Partner2ID, couple.Status,
		couple.AnniversaryDate, couple.CoupleName, couple.CoupleBio,
		couple.CoupleAvatarURL, couple.IsPrivateMode, couple.CreatedAt, couple.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create couple: %w", err)
	}
	return nil
}

// GetByID retrieves a couple by ID
func (r *CoupleRepository) GetByID(ctx context.Context, id string) (*models.Couple, error) {
	query := `SELECT ` + coupleColumns + ` FROM couples WHERE id = $1`
	couple, err := scanCouple(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("couple not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}
	return couple, nil
}

// GetActiveByProfileID retrieves the active couple a profile belongs to,
// with both partner profiles embedded. Returns pgx.ErrNoRows (wrapped) when
// the profile is not linked.
func (r *CoupleRepository) GetActiveByProfileID(ctx context.Context, profileID string) (*models.CoupleDetail, error) {
	query := `
		SELECT c.id, c.partner1_id, c.partner2_id, c.status, c.anniversary_date,
			c.couple_name, c.couple_bio, c.couple_avatar_url, c.is_private_mode,
			c.created_at, c.updated_at,
			p1.id, p1.user_id, p1.name, p1.bio, p1.avatar_url, p1.phone, p1.created_at, p1.updated_at,
			p2.id, p2.user_id, p2.name, p2.bio, p2.avatar_url, p2.phone, p2.created_at, p2.updated_at
		FROM couples c
		JOIN profiles p1 ON p1.id = c.partner1_id
		JOIN profiles p2 ON p2.id = c.partner2_id
		WHERE (c.partner1_id = $1 OR c.partner2_id = $1) AND c.status = 'active'
		LIMIT 1
	`
	var d models.CoupleDetail
	var p1, p2 models.Profile
	err := r.db.QueryRow(ctx, query, profileID).Scan(
		&d.ID, &d.Partner1ID, &d.Partner2ID, &d.Status, &d.AnniversaryDate,
		&d.CoupleName, &d.CoupleBio, &d.CoupleAvatarURL, &d.IsPrivateMode,
		&d.CreatedAt, &d.UpdatedAt,
		&p1.ID, &p1.UserID, &p1.Name, &p1.Bio, &p1.AvatarURL, &p1.Phone, &p1.CreatedAt, &p1.UpdatedAt,
		&p2.ID, &p2.UserID, &p2.Name, &p2.Bio, &p2.AvatarURL, &p2.Phone, &p2.CreatedAt, &p2.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("couple not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get couple by profile id: %w", err)
	}
	d.Partner1 = &p1
	d.Partner2 = &p2
	return &d, nil
}

// ProfileHasCouple checks if a profile is in any pending or active couple
func (r *CoupleRepository) ProfileHasCouple(ctx context.Context, profileID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM couples
			WHERE (partner1_id = $1 OR partner2_id = $1) AND status IN ('pending', 'active')
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, profileID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check if profile has couple: %w", err)
	}
	return exists, nil
}

// Update updates the couple's editable fields
func (r *CoupleRepository) Update(ctx context.Context, couple *models.Couple) error {
	query := `
		UPDATE couples
		SET anniversary_date = $1, couple_name = $2, couple_bio = $3,
			couple_avatar_url = $4, is_private_mode = $5, updated_at = now()
		WHERE id = $6
	`
	result, err := r.db.Exec(ctx, query,
		couple.AnniversaryDate, couple.CoupleName, couple.CoupleBio,
		couple.CoupleAvatarURL, couple.IsPrivateMode, couple.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update couple: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("couple not found")
	}
	return nil
}

// Delete removes a couple and everything cascading from it
func (r *CoupleRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM couples WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete couple: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("couple not found")
	}
	return nil
}
