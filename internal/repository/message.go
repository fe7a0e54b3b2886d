package repository

import (
	"context"
	"fmt"

	"couply-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles database operations for couple chat messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create creates a new message
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, couple_id, sender_id, content, message_type, media_url, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		msg.ID, msg.CoupleID, msg.SenderID, msg.Content, msg.MessageType,
		msg.MediaURL, msg.IsRead, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByCoupleID retrieves a couple's messages ordered oldest first, with
// sender name and avatar embedded
func (r *MessageRepository) ListByCoupleID(ctx context.Context, coupleID string) ([]*models.Message, error) {
	query := `
		SELECT m.id, m.couple_id, m.sender_id, m.content, m.message_type,
			m.media_url, m.is_read, m.created_at,
			p.id, p.user_id, p.name, p.bio, p.avatar_url, p.phone, p.created_at, p.updated_at
		FROM messages m
		JOIN profiles p ON p.id = m.sender_id
		WHERE m.couple_id = $1
		ORDER BY m.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, coupleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var m models.Message
		var sender models.Profile
		err := rows.Scan(
			&m.ID, &m.CoupleID, &m.SenderID, &m.Content, &m.MessageType,
			&m.MediaURL, &m.IsRead, &m.CreatedAt,
			&sender.ID, &sender.UserID, &sender.Name, &sender.Bio,
			&sender.AvatarURL, &sender.Phone, &sender.CreatedAt, &sender.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Sender = &sender
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// MarkRead flags a message as read. The couple filter keeps one couple from
// touching another couple's messages.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID, coupleID string) error {
	query := `UPDATE messages SET is_read = true WHERE id = $1 AND couple_id = $2`
	result, err := r.db.Exec(ctx, query, messageID, coupleID)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("message not found")
	}
	return nil
}
