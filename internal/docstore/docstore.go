// Package docstore defines the document store abstraction the data
// layer is written against: per-collection CRUD, filtered and ordered
// queries, and an atomic batch primitive.
//
// Three implementations exist: memstore (in-memory, for tests),
// badgerstore (embedded BadgerDB), and mongostore (remote MongoDB).
// The atomicity contracts of the service layer (tag deletion cascade,
// multi-tag creation) hold on any backend that honors Apply's
// all-or-nothing semantics.
package docstore

import (
	"context"
	"errors"
)

// Collections owned by this module.
const (
	CollectionUsers = "users"
	CollectionNotes = "notes"
	CollectionTags  = "tags"
	CollectionTasks = "tasks"
)

// ErrNotFound is returned by GetByID when no document has the given id.
var ErrNotFound = errors.New("document not found")

// Document is the raw wire form of an entity. Values are limited to
// JSON-compatible types plus time.Time; implementations may widen
// timestamps to their native instant type but must hand back values the
// helpers in values.go can read.
type Document map[string]any

// Filter is an equality constraint on a top-level document field.
type Filter struct {
	Field string
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// OrderBy sorts query results by a single top-level field.
type OrderBy struct {
	Field string
	Desc  bool
}

// Store is the document store client. All methods issue one round trip;
// no retry or timeout policy is applied at this layer.
type Store interface {
	// QueryAll returns every document matching all filters, optionally
	// ordered. Returned documents carry their id under the "id" key.
	QueryAll(ctx context.Context, collection string, filters []Filter, order *OrderBy) ([]Document, error)

	// GetByID returns one document or ErrNotFound.
	GetByID(ctx context.Context, collection, id string) (Document, error)

	// Create stores a new document and returns its store-assigned id.
	Create(ctx context.Context, collection string, fields Document) (string, error)

	// Set creates or replaces the document with the given id. Used for
	// documents whose id is assigned externally (the users collection,
	// keyed by the auth provider's uid).
	Set(ctx context.Context, collection, id string, fields Document) error

	// Update patches only the supplied fields of an existing document.
	// A nil field value clears the field.
	Update(ctx context.Context, collection, id string, fields Document) error

	// Delete removes a document. Deleting an absent id is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Apply runs a batch atomically: either every operation in it is
	// applied or none is.
	Apply(ctx context.Context, batch *Batch) error

	// Close releases the underlying client or database.
	Close() error
}
