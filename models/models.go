package models

import "time"

// Note is the persisted record, owned by exactly one user.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `json:"user_id"`
}

// CreateNoteRequest is the POST /notes payload. Content is a pointer so that
// an explicit empty string passes "required" while an omitted field does not.
type CreateNoteRequest struct {
	Title   string  `json:"title" validate:"required,min=1,max=255"`
	Content *string `json:"content" validate:"required"`
}

// UpdateNoteRequest is the PUT /notes/{id} payload. Both fields are optional;
// omitted fields are left untouched by the update.
type UpdateNoteRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string `json:"content"`
}
