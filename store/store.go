// Package store persists notes in the external document database.
package store

import (
	"context"
	"errors"
	"time"

	"notes-api/models"
)

// ErrNoteNotFound is returned when no document exists for the given id.
var ErrNoteNotFound = errors.New("note not found")

// UpdateFields carries the fields of a partial update. Nil fields are left
// untouched in the stored document.
type UpdateFields struct {
	Title   *string
	Content *string
}

// NoteStore is the document-database contract the handlers depend on. The
// store assigns ids at insert and is the sole source of truth for notes.
type NoteStore interface {
	// Insert persists a new note, assigning its id, and returns the stored
	// note.
	Insert(ctx context.Context, note models.Note) (models.Note, error)

	// Get performs a point lookup by id.
	Get(ctx context.Context, id string) (models.Note, error)

	// ListByUser returns all notes owned by uid, most recently updated
	// first.
	ListByUser(ctx context.Context, uid string) ([]models.Note, error)

	// Update applies the supplied fields to the document and refreshes its
	// updated_at timestamp.
	Update(ctx context.Context, id string, fields UpdateFields, updatedAt time.Time) error

	// Delete removes the document. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// Ping probes the store with a write/delete round-trip.
	Ping(ctx context.Context) error
}
