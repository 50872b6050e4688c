package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hearthhq/hearth/internal/model"
	"github.com/hearthhq/hearth/internal/server/middleware"
	"github.com/hearthhq/hearth/internal/store"
)

// EventHandler serves the community-event CRUD endpoints.
type EventHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(st *store.Store, logger *slog.Logger) *EventHandler {
	return &EventHandler{store: st, logger: logger}
}

// List returns all events, newest first.
// GET /events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.ListEvents(r.Context())
	if err != nil {
		h.logger.Error("list events failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	data := make([]interface{}, len(events))
	for i := range events {
		data[i] = events[i]
	}
	writeJSON(w, http.StatusOK, model.ListResponse{
		Data: data,
		Meta: &model.ResponseMeta{Count: len(data)},
	})
}

// Get returns a single event by id.
// GET /events/{eventId}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventId")

	ev, err := h.store.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event does not exist.")
			return
		}
		h.logger.Error("get event failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": ev})
}

type createEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Create posts a new event under the caller's account.
// POST /events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	var req createEventRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Title == "" || req.Description == "" {
		writeError(w, http.StatusBadRequest, "Title and description are required.")
		return
	}

	ev := &model.Event{
		ID:          uuid.NewString(),
		AccountID:   principal.AccountID,
		Username:    principal.Username,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
	}
	if err := h.store.CreateEvent(r.Context(), ev); err != nil {
		h.logger.Error("create event failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"data": ev})
}

// Update applies a partial update to an event.
// PUT /events/{eventId}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventId")

	var upd model.EventUpdate
	if err := readJSON(r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if upd.IsEmpty() {
		writeError(w, http.StatusBadRequest, "No fields provided for update.")
		return
	}

	ev, err := h.store.UpdateEvent(r.Context(), id, upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event does not exist.")
			return
		}
		h.logger.Error("update event failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": ev})
}

// Delete removes an event by id.
// DELETE /events/{eventId}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventId")

	if err := h.store.DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event does not exist.")
			return
		}
		h.logger.Error("delete event failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Event deleted successfully."})
}
