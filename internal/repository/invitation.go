package repository

import (
	"context"
	"fmt"
	"time"

	"couply-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InvitationRepository handles database operations for couple invitations
type InvitationRepository struct {
	db *pgxpool.Pool
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{db: db}
}

const invitationColumns = `id, token, couple_id, inviter_id, invitee_email,
	status, expires_at, accepted_at, created_at`

func scanInvitation(row pgx.Row) (*models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(
		&inv.ID, &inv.Token, &inv.CoupleID, &inv.InviterID, &inv.InviteeEmail,
		&inv.Status, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create creates a new invitation
func (r *InvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	query := `
		INSERT INTO invitations (id, token, couple_id, inviter_id, invitee_email,
			status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		inv.ID, inv.Token, inv.CoupleID, inv.InviterID, inv.InviteeEmail,
		inv.Status, inv.ExpiresAt, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// GetByToken retrieves an invitation by its token
func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	inv, err := scanInvitation(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("invitation not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// GetPendingByInviter retrieves the inviter's outstanding invitation, if any
func (r *InvitationRepository) GetPendingByInviter(ctx context.Context, inviterID string) (*models.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE inviter_id = $1 AND status = 'pending' AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1
	`
	inv, err := scanInvitation(r.db.QueryRow(ctx, query, inviterID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("invitation not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get pending invitation: %w", err)
	}
	return inv, nil
}

// Accept marks the invitation accepted and activates its couple in one
// transaction, so a crash cannot leave the pairing half linked.
func (r *InvitationRepository) Accept(ctx context.Context, invitationID, coupleID string, at time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx,
		`UPDATE invitations SET status = 'accepted', accepted_at = $1 WHERE id = $2 AND status = 'pending'`,
		at, invitationID,
	)
	if err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("invitation not pending")
	}

	result, err = tx.Exec(ctx,
		`UPDATE couples SET status = 'active', updated_at = $1 WHERE id = $2 AND status = 'pending'`,
		at, coupleID,
	)
	if err != nil {
		return fmt.Errorf("failed to activate couple: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("couple not pending")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// MarkExpired flags an invitation whose expiry has passed
func (r *InvitationRepository) MarkExpired(ctx context.Context, invitationID string) error {
	query := `UPDATE invitations SET status = 'expired' WHERE id = $1 AND status = 'pending'`
	_, err := r.db.Exec(ctx, query, invitationID)
	if err != nil {
		return fmt.Errorf("failed to mark invitation expired: %w", err)
	}
	return nil
}
