// Package note holds the note collection, its recency ordering and its
// persistence bridge to a slot.
package note

import (
	"errors"
	"time"
)

const (
	// DefaultTitle is given to freshly created notes.
	DefaultTitle = "New Note"

	seedTitle   = "Welcome Note"
	seedContent = "Welcome to Scribble AI! Write your thoughts here and use the AI tools on the right to refine them."
)

var (
	// ErrNotFound means an operation referenced a missing note id.
	ErrNotFound = errors.New("note not found")
	// ErrPersist wraps slot write failures. The in-memory change is kept.
	ErrPersist = errors.New("persist notes")
)

// Note is a single note. UpdatedAt is unix milliseconds.
type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Updated returns UpdatedAt as a time.
func (n Note) Updated() time.Time {
	return time.UnixMilli(n.UpdatedAt)
}
