package repository

import (
	"context"
	"fmt"

	"couply-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository handles database operations for calendar events
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, couple_id, title, description, event_type, start_date, end_date, is_recurring, created_at`

// Create creates a new calendar event
func (r *EventRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (id, couple_id, title, description, event_type,
			start_date, end_date, is_recurring, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		event.ID, event.CoupleID, event.Title, event.Description, event.EventType,
		event.StartDate, event.EndDate, event.IsRecurring, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE id = $1`
	var e models.CalendarEvent
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.CoupleID, &e.Title, &e.Description, &e.EventType,
		&e.StartDate, &e.EndDate, &e.IsRecurring, &e.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("event not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &e, nil
}

// ListByCoupleID retrieves a couple's events ordered by start date
func (r *EventRepository) ListByCoupleID(ctx context.Context, coupleID string) ([]*models.CalendarEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM calendar_events
		WHERE couple_id = $1
		ORDER BY start_date ASC
	`
	rows, err := r.db.Query(ctx, query, coupleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.CalendarEvent
	for rows.Next() {
		var e models.CalendarEvent
		err := rows.Scan(
			&e.ID, &e.CoupleID, &e.Title, &e.Description, &e.EventType,
			&e.StartDate, &e.EndDate, &e.IsRecurring, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// Update updates an event's fields
func (r *EventRepository) Update(ctx context.Context, event *models.CalendarEvent) error {
	query := `
		UPDATE calendar_events
		SET title = $1, description = $2, event_type = $3, start_date = $4,
			end_date = $5, is_recurring = $6
		WHERE id = $7
	`
	result, err := r.db.Exec(ctx, query,
		event.Title, event.Description, event.EventType, event.StartDate,
		event.EndDate, event.IsRecurring, event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("event not found")
	}
	return nil
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM calendar_events WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("event not found")
	}
	return nil
}
