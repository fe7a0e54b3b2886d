package services

import (
	"context"
	"fmt"
	"time"

	"couply-backend/internal/models"

	"github.com/google/uuid"
)

type eventStore interface {
	Create(ctx context.Context, event *models.CalendarEvent) error
	GetByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	ListByCoupleID(ctx context.Context, coupleID string) ([]*models.CalendarEvent, error)
	Update(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, id string) error
}

// EventService manages a couple's shared calendar
type EventService struct {
	events eventStore
}

// NewEventService creates a new event service
func NewEventService(events eventStore) *EventService {
	return &EventService{events: events}
}

// CreateEventRequest carries the fields of a new calendar event
type CreateEventRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	EventType   *string    `json:"event_type" validate:"omitempty,max=50"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	IsRecurring bool       `json:"is_recurring"`
}

// Create adds an event to the couple's calendar
func (s *EventService) Create(ctx context.Context, coupleID string, req CreateEventRequest) (*models.CalendarEvent, error) {
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("event end date precedes start date")
	}

	event := &models.CalendarEvent{
		ID:          uuid.New().String(),
		CoupleID:    coupleID,
		Title:       req.Title,
		Description: req.Description,
		EventType:   req.EventType,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsRecurring: req.IsRecurring,
		CreatedAt:   time.Now(),
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// List returns the couple's events ordered by start date
func (s *EventService) List(ctx context.Context, coupleID string) ([]*models.CalendarEvent, error) {
	events, err := s.events.ListByCoupleID(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Update edits an event owned by the couple
func (s *EventService) Update(ctx context.Context, coupleID, eventID string, req CreateEventRequest) (*models.CalendarEvent, error) {
	event, err := s.getOwned(ctx, coupleID, eventID)
	if err != nil {
		return nil, err
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("event end date precedes start date")
	}

	event.Title = req.Title
	event.Description = req.Description
	event.EventType = req.EventType
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	event.IsRecurring = req.IsRecurring

	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// Delete removes an event owned by the couple
func (s *EventService) Delete(ctx context.Context, coupleID, eventID string) error {
	if _, err := s.getOwned(ctx, coupleID, eventID); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (s *EventService) getOwned(ctx context.Context, coupleID, eventID string) (*models.CalendarEvent, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event.CoupleID != coupleID {
		return nil, ErrNotMember
	}
	return event, nil
}
