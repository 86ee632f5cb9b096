// Package memstore is an in-memory docstore.Store used by tests and
// the seed tool's dry-run mode. It supports injecting failures to
// exercise the callers' error paths and batch atomicity contracts.
package memstore

import (
	"context"
	"maps"
	"sync"

	"github.com/notevaultapp/notevault-core/internal/docstore"
)

// Store is an in-memory document store. Safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]docstore.Document
	failNext    error
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{collections: make(map[string]map[string]docstore.Document)}
}

// FailNext makes the next store operation (read or write) return err
// without touching any data. Batches fail as a whole.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// takeFailure consumes a pending injected failure. Callers hold mu.
func (s *Store) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *Store) coll(name string) map[string]docstore.Document {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]docstore.Document)
		s.collections[name] = c
	}
	return c
}

// QueryAll implements docstore.Store.
func (s *Store) QueryAll(_ context.Context, collection string, filters []docstore.Filter, order *docstore.OrderBy) ([]docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	var out []docstore.Document
	for id, doc := range s.coll(collection) {
		if !docstore.MatchesFilters(doc, filters) {
			continue
		}
		clone := maps.Clone(doc)
		clone["id"] = id
		out = append(out, clone)
	}
	docstore.SortDocuments(out, order)
	return out, nil
}

// GetByID implements docstore.Store.
func (s *Store) GetByID(_ context.Context, collection, id string) (docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	doc, ok := s.coll(collection)[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	clone := maps.Clone(doc)
	clone["id"] = id
	return clone, nil
}

// Create implements docstore.Store.
func (s *Store) Create(_ context.Context, collection string, fields docstore.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return "", err
	}

	id := docstore.AssignID(collection)
	s.coll(collection)[id] = maps.Clone(fields)
	return id, nil
}

// Set implements docstore.Store.
func (s *Store) Set(_ context.Context, collection, id string, fields docstore.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	s.coll(collection)[id] = maps.Clone(fields)
	return nil
}

// Update implements docstore.Store.
func (s *Store) Update(_ context.Context, collection, id string, fields docstore.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	return s.applyUpdate(collection, id, fields)
}

func (s *Store) applyUpdate(collection, id string, fields docstore.Document) error {
	doc, ok := s.coll(collection)[id]
	if !ok {
		return docstore.ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

// Delete implements docstore.Store.
func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	delete(s.coll(collection), id)
	return nil
}

// Apply implements docstore.Store. The batch is validated first, then
// applied under one lock hold, so a failure leaves every document
// unchanged.
func (s *Store) Apply(_ context.Context, batch *docstore.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	// Validate before mutating anything.
	for _, op := range batch.Ops() {
		if op.Kind == docstore.OpUpdate {
			if _, ok := s.coll(op.Collection)[op.ID]; !ok {
				return docstore.ErrNotFound
			}
		}
	}

	for _, op := range batch.Ops() {
		switch op.Kind {
		case docstore.OpCreate:
			s.coll(op.Collection)[op.ID] = maps.Clone(op.Fields)
		case docstore.OpUpdate:
			if err := s.applyUpdate(op.Collection, op.ID, op.Fields); err != nil {
				return err
			}
		case docstore.OpDelete:
			delete(s.coll(op.Collection), op.ID)
		}
	}
	return nil
}

// Close implements docstore.Store.
func (s *Store) Close() error {
	return nil
}

// Count reports the number of documents in a collection. Test helper.
func (s *Store) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.coll(collection))
}
