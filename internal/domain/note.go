package domain

import (
	"cmp"
	"strings"
	"time"
)

// TagRef is the persisted form of a note-to-tag link. Notes store only
// the tag id; the full tag is joined in client-side after fetch.
type TagRef struct {
	ID string `json:"id"`
}

// NoteTag is a tag reference materialized for display. When the
// referenced tag is absent from the loaded tag set, Placeholder is true
// and the embedded Tag carries the raw id as its name. Placeholders are
// a display fallback and are never persisted.
type NoteTag struct {
	Tag
	Placeholder bool `json:"-"`
}

// PlaceholderTag builds the display fallback for a reference that could
// not be resolved against the loaded tag set.
func PlaceholderTag(id, userID string, now time.Time) NoteTag {
	return NoteTag{
		Tag: Tag{
			ID:        id,
			UserID:    userID,
			Name:      id,
			CreatedAt: now,
		},
		Placeholder: true,
	}
}

// Note is a user-owned note. Tags holds the materialized form of the
// persisted tag references.
type Note struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	IsArchived bool      `json:"isArchived"`
	IsFavorite bool      `json:"isFavorite"`
	Tags       []NoteTag `json:"tags,omitempty"`
}

// HasTag reports whether the note references the given tag id.
func (n *Note) HasTag(tagID string) bool {
	for _, t := range n.Tags {
		if t.ID == tagID {
			return true
		}
	}
	return false
}

// HasAllTags reports whether the note's tags are a superset of the
// given tag ids. An empty id list is trivially satisfied.
func (n *Note) HasAllTags(tagIDs []string) bool {
	for _, id := range tagIDs {
		if !n.HasTag(id) {
			return false
		}
	}
	return true
}

// TagRefsWithout returns the persisted reference list with the given
// tag id removed.
func (n *Note) TagRefsWithout(tagID string) []TagRef {
	refs := make([]TagRef, 0, len(n.Tags))
	for _, t := range n.Tags {
		if t.ID != tagID {
			refs = append(refs, TagRef{ID: t.ID})
		}
	}
	return refs
}

// MatchesQuery reports whether the free-text query matches the note's
// title or content, case-insensitively. An empty query matches.
func (n *Note) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(n.Title), q) {
		return true
	}
	return n.Content != "" && strings.Contains(strings.ToLower(n.Content), q)
}

// MatchesTagQuery reports whether any attached tag's name contains the
// query, case-insensitively. An empty query matches; a note without
// tags never matches a non-empty query.
func (n *Note) MatchesTagQuery(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t.Name), q) {
			return true
		}
	}
	return false
}

// NoteSortKey selects the field notes are ordered by.
type NoteSortKey string

// Note sort keys.
const (
	NoteSortCreatedAt NoteSortKey = "createdAt"
	NoteSortUpdatedAt NoteSortKey = "updatedAt"
	NoteSortTitle     NoteSortKey = "title"
)

// SortOrder is the direction of a derived-view sort.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Compare orders two notes by the given key, ascending. Title
// comparison is case-insensitive. Equal keys return 0; callers use a
// stable sort so ties keep their prior order.
func (n *Note) Compare(other *Note, key NoteSortKey) int {
	switch key {
	case NoteSortTitle:
		return cmp.Compare(strings.ToLower(n.Title), strings.ToLower(other.Title))
	case NoteSortCreatedAt:
		return n.CreatedAt.Compare(other.CreatedAt)
	default:
		return n.UpdatedAt.Compare(other.UpdatedAt)
	}
}
