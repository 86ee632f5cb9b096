// Package badgerstore implements docstore.Store on an embedded
// BadgerDB. Documents are stored as JSON under "collection/id" keys;
// queries scan the collection prefix and evaluate filters client-side.
// Batches run inside a single Badger transaction, which gives the
// all-or-nothing semantics the service layer's cascades rely on.
package badgerstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/dgraph-io/badger/v4"

	"github.com/notevaultapp/notevault-core/internal/docstore"
	"github.com/notevaultapp/notevault-core/internal/logger"
)

// Store is a badger-backed document store.
type Store struct {
	db  *badger.DB
	log *logger.Logger
}

// Open opens (or creates) a badger database at path.
func Open(path string, log *logger.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil      // Disable Badger's internal logging
	opts.SyncWrites = true // Sync writes to disk to survive crashes

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	if log != nil {
		log.Info("badger store opened", "path", path)
	}
	return &Store{db: db, log: log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

// QueryAll implements docstore.Store.
func (s *Store) QueryAll(_ context.Context, collection string, filters []docstore.Filter, order *docstore.OrderBy) ([]docstore.Document, error) {
	prefix := []byte(collection + "/")
	var out []docstore.Document

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := string(bytes.TrimPrefix(item.Key(), prefix))
			err := item.Value(func(val []byte) error {
				var doc docstore.Document
				if err := json.Unmarshal(val, &doc); err != nil {
					return fmt.Errorf("unmarshal %s/%s: %w", collection, id, err)
				}
				if !docstore.MatchesFilters(doc, filters) {
					return nil
				}
				doc["id"] = id
				out = append(out, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	docstore.SortDocuments(out, order)
	return out, nil
}

// GetByID implements docstore.Store.
func (s *Store) GetByID(_ context.Context, collection, id string) (docstore.Document, error) {
	var doc docstore.Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(collection, id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc["id"] = id
	return doc, nil
}

// Create implements docstore.Store.
func (s *Store) Create(_ context.Context, collection string, fields docstore.Document) (string, error) {
	id := docstore.AssignID(collection)
	err := s.db.Update(func(txn *badger.Txn) error {
		return setDoc(txn, collection, id, fields)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Set implements docstore.Store.
func (s *Store) Set(_ context.Context, collection, id string, fields docstore.Document) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return setDoc(txn, collection, id, fields)
	})
}

// Update implements docstore.Store.
func (s *Store) Update(_ context.Context, collection, id string, fields docstore.Document) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return patchDoc(txn, collection, id, fields)
	})
}

// Delete implements docstore.Store.
func (s *Store) Delete(_ context.Context, collection, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(collection, id))
	})
}

// Apply implements docstore.Store. All operations share one
// transaction; an error on any of them rolls back the whole batch.
func (s *Store) Apply(_ context.Context, batch *docstore.Batch) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, op := range batch.Ops() {
			var err error
			switch op.Kind {
			case docstore.OpCreate:
				err = setDoc(txn, op.Collection, op.ID, op.Fields)
			case docstore.OpUpdate:
				err = patchDoc(txn, op.Collection, op.ID, op.Fields)
			case docstore.OpDelete:
				err = txn.Delete(key(op.Collection, op.ID))
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func setDoc(txn *badger.Txn, collection, id string, fields docstore.Document) error {
	stored := maps.Clone(fields)
	delete(stored, "id") // the id lives in the key
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	return txn.Set(key(collection, id), data)
}

func patchDoc(txn *badger.Txn, collection, id string, fields docstore.Document) error {
	item, err := txn.Get(key(collection, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return err
	}

	var doc docstore.Document
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	}); err != nil {
		return err
	}

	for k, v := range fields {
		doc[k] = v
	}
	return setDoc(txn, collection, id, doc)
}
