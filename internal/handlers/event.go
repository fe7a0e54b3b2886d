package handlers

import (
	"net/http"

	"couply-backend/internal/middleware"
	"couply-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// EventHandler handles shared calendar HTTP requests
type EventHandler struct {
	eventService *services.EventService
	stateService *services.StateService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService, stateService *services.StateService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		stateService: stateService,
	}
}

// Create handles POST /api/v1/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	var req services.CreateEventRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	_, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	event, err := h.eventService.Create(ctx, couple.ID, req)
	if err != nil {
		log.Error().Err(err).Str("couple_id", couple.ID).Msg("Failed to create event")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

// List handles GET /api/v1/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	_, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	events, err := h.eventService.List(ctx, couple.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, events)
}

// Update handles PUT /api/v1/events/{event_id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)
	eventID := chi.URLParam(r, "event_id")

	var req services.CreateEventRequest
	if err := decodeValid(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	_, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	event, err := h.eventService.Update(ctx, couple.ID, eventID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /api/v1/events/{event_id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)
	eventID := chi.URLParam(r, "event_id")

	_, couple, err := h.stateService.RequireLinked(ctx, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.eventService.Delete(ctx, couple.ID, eventID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
