package domain

import (
	"strings"
	"time"
)

// Tag is a user-owned label attached to notes.
// Name uniqueness is enforced case-insensitively per user at the
// application level, not by the store. The stored name preserves the
// casing of first creation.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"` // empty = no color assigned
	CreatedAt time.Time `json:"createdAt"`

	// NoteCount is derived from the loaded notes set on each tag fetch.
	// Never persisted.
	NoteCount int `json:"noteCount,omitempty"`
}

// NameEquals reports whether name matches this tag's name under the
// case-insensitive comparison used for deduplication.
func (t *Tag) NameEquals(name string) bool {
	return strings.EqualFold(t.Name, name)
}
