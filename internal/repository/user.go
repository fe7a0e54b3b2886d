package repository

import (
	"context"
	"fmt"
	"time"

	"couply-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for auth accounts and their
// verification and device tokens
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new account
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, email_verified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Email, user.Name, user.PasswordHash, user.EmailVerifiedAt, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, name, password_hash, email_verified_at, created_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.EmailVerifiedAt, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail retrieves an account by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, name, password_hash, email_verified_at, created_at
		FROM users
		WHERE email = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.EmailVerifiedAt, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// MarkVerified records the time the account's email was confirmed
func (r *UserRepository) MarkVerified(ctx context.Context, userID string, at time.Time) error {
	query := `UPDATE users SET email_verified_at = $1 WHERE id = $2 AND email_verified_at IS NULL`
	_, err := r.db.Exec(ctx, query, at, userID)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

// CreateVerificationToken stores a new email verification token
func (r *UserRepository) CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, token.Token, token.UserID, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}
	return nil
}

// GetVerificationToken retrieves a verification token
func (r *UserRepository) GetVerificationToken(ctx context.Context, token string) (*models.VerificationToken, error) {
	query := `
		SELECT token, user_id, expires_at, used_at, created_at
		FROM verification_tokens
		WHERE token = $1
	`
	var vt models.VerificationToken
	err := r.db.QueryRow(ctx, query, token).Scan(
		&vt.Token, &vt.UserID, &vt.ExpiresAt, &vt.UsedAt, &vt.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("verification token not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get verification token: %w", err)
	}
	return &vt, nil
}

// MarkTokenUsed records that a verification token has been consumed
func (r *UserRepository) MarkTokenUsed(ctx context.Context, token string, at time.Time) error {
	query := `UPDATE verification_tokens SET used_at = $1 WHERE token = $2`
	_, err := r.db.Exec(ctx, query, at, token)
	if err != nil {
		return fmt.Errorf("failed to mark token used: %w", err)
	}
	return nil
}

// UpsertDeviceToken registers an APNs device token for a user
func (r *UserRepository) UpsertDeviceToken(ctx context.Context, dt *models.DeviceToken) error {
	query := `
		INSERT INTO device_tokens (id, user_id, token, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, token) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, dt.ID, dt.UserID, dt.Token, dt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert device token: %w", err)
	}
	return nil
}

// GetDeviceTokens retrieves all APNs tokens registered by a user
func (r *UserRepository) GetDeviceTokens(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT token FROM device_tokens WHERE user_id = $1`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device tokens: %w", err)
	}
	return tokens, nil
}

// DeleteDeviceToken removes an APNs token that is no longer valid
func (r *UserRepository) DeleteDeviceToken(ctx context.Context, userID, token string) error {
	query := `DELETE FROM device_tokens WHERE user_id = $1 AND token = $2`
	_, err := r.db.Exec(ctx, query, userID, token)
	if err != nil {
		return fmt.Errorf("failed to delete device token: %w", err)
	}
	return nil
}
