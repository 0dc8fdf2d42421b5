package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"notes-api/middleware"
	"notes-api/models"
	"notes-api/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NoteHandler serves the note CRUD endpoints. All state lives in the injected
// store; handlers hold no mutable state of their own.
type NoteHandler struct {
	store  store.NoteStore
	logger *zap.Logger
}

func NewNoteHandler(s store.NoteStore, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{store: s, logger: logger}
}

// Root handles GET /.
func (h *NoteHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Notes API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Health handles GET /health with a store probe.
func (h *NoteHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("Health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Service unhealthy")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"services": map[string]string{
			"note_store": "connected",
			"auth":       "configured",
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetNotes handles GET /notes, returning all of the caller's notes ordered
// most recently updated first.
func (h *NoteHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	notes, err := h.store.ListByUser(r.Context(), uid)
	if err != nil {
		h.logger.Error("Error fetching notes", zap.Error(err), zap.String("user_id", uid))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve notes")
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// CreateNote handles POST /notes.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if msgs := models.Validate(req); msgs != nil {
		writeError(w, http.StatusUnprocessableEntity, strings.Join(msgs, "; "))
		return
	}

	now := time.Now().UTC()
	note := models.Note{
		Title:     req.Title,
		Content:   *req.Content,
		UserID:    uid,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := h.store.Insert(r.Context(), note)
	if err != nil {
		h.logger.Error("Error creating note", zap.Error(err), zap.String("user_id", uid))
		writeError(w, http.StatusInternalServerError, "Failed to create note")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetNote handles GET /notes/{id}.
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	noteID := chi.URLParam(r, "id")

	note, ok := h.fetchOwned(w, r, noteID, uid)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PUT /notes/{id}. Only supplied fields change; updated_at
// always refreshes, and the authoritative post-update document is returned.
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	noteID := chi.URLParam(r, "id")

	var req models.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if msgs := models.Validate(req); msgs != nil {
		writeError(w, http.StatusUnprocessableEntity, strings.Join(msgs, "; "))
		return
	}

	if _, ok := h.fetchOwned(w, r, noteID, uid); !ok {
		return
	}

	fields := store.UpdateFields{Title: req.Title, Content: req.Content}
	if err := h.store.Update(r.Context(), noteID, fields, time.Now().UTC()); err != nil {
		h.logger.Error("Error updating note", zap.Error(err), zap.String("note_id", noteID))
		writeError(w, http.StatusInternalServerError, "Failed to update note")
		return
	}

	updated, err := h.store.Get(r.Context(), noteID)
	if err != nil {
		h.logger.Error("Error re-reading note after update", zap.Error(err), zap.String("note_id", noteID))
		writeError(w, http.StatusInternalServerError, "Failed to update note")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteNote handles DELETE /notes/{id}.
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	noteID := chi.URLParam(r, "id")

	if _, ok := h.fetchOwned(w, r, noteID, uid); !ok {
		return
	}

	if err := h.store.Delete(r.Context(), noteID); err != nil {
		h.logger.Error("Error deleting note", zap.Error(err), zap.String("note_id", noteID))
		writeError(w, http.StatusInternalServerError, "Failed to delete note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fetchOwned performs the point lookup and ownership check shared by get,
// update and delete. Not-found and forbidden are deliberately distinct: the
// API does not hide a note's existence from non-owners.
func (h *NoteHandler) fetchOwned(w http.ResponseWriter, r *http.Request, noteID, uid string) (models.Note, bool) {
	note, err := h.store.Get(r.Context(), noteID)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			writeError(w, http.StatusNotFound, "Note not found")
		} else {
			h.logger.Error("Error fetching note", zap.Error(err), zap.String("note_id", noteID))
			writeError(w, http.StatusInternalServerError, "Failed to retrieve note")
		}
		return models.Note{}, false
	}
	if note.UserID != uid {
		writeError(w, http.StatusForbidden, "Access denied. This note doesn't belong to you.")
		return models.Note{}, false
	}
	return note, true
}
