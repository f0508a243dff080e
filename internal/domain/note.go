package domain

import "time"

type Note struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Details string    `json:"details"`
	UserID  string    `json:"user_id"`
	Date    time.Time `json:"date"`
}

// NoteForm is the submitted add/edit note form.
type NoteForm struct {
	Title   string `form:"title" validate:"required"`
	Details string `form:"details" validate:"required"`
}

type NoteOp string

const (
	NoteCreated NoteOp = "created"
	NoteUpdated NoteOp = "updated"
	NoteDeleted NoteOp = "deleted"
)
