// Package mongostore implements docstore.Store on a remote MongoDB.
// Filters and ordering are pushed to the server; batches run inside a
// session transaction so they commit all-or-nothing (requires a replica
// set, as Mongo transactions do).
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/notevaultapp/notevault-core/internal/docstore"
	"github.com/notevaultapp/notevault-core/internal/logger"
)

// Store is a MongoDB-backed document store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *logger.Logger
}

// Connect dials the MongoDB deployment and pings it.
func Connect(ctx context.Context, uri, dbName string, log *logger.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if log != nil {
		log.Info("mongo store connected", "database", dbName)
	}
	return &Store{client: client, db: client.Database(dbName), log: log}, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// QueryAll implements docstore.Store.
func (s *Store) QueryAll(ctx context.Context, collection string, filters []docstore.Filter, order *docstore.OrderBy) ([]docstore.Document, error) {
	filter := bson.M{}
	for _, f := range filters {
		filter[f.Field] = f.Value
	}

	opts := options.Find()
	if order != nil {
		dir := 1
		if order.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: order.Field, Value: dir}})
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	out := make([]docstore.Document, 0, len(raw))
	for _, m := range raw {
		out = append(out, fromBSON(m))
	}
	return out, nil
}

// GetByID implements docstore.Store.
func (s *Store) GetByID(ctx context.Context, collection, id string) (docstore.Document, error) {
	var m bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return fromBSON(m), nil
}

// Create implements docstore.Store.
func (s *Store) Create(ctx context.Context, collection string, fields docstore.Document) (string, error) {
	id := docstore.AssignID(collection)
	if err := s.insert(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

// Set implements docstore.Store.
func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Document) error {
	doc := storedFields(fields)
	_, err := s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update implements docstore.Store.
func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Document) error {
	return s.update(ctx, collection, id, fields)
}

// Delete implements docstore.Store.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Apply implements docstore.Store. Operations share one transaction.
func (s *Store) Apply(ctx context.Context, batch *docstore.Batch) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		for _, op := range batch.Ops() {
			var err error
			switch op.Kind {
			case docstore.OpCreate:
				err = s.insert(sc, op.Collection, op.ID, op.Fields)
			case docstore.OpUpdate:
				err = s.update(sc, op.Collection, op.ID, op.Fields)
			case docstore.OpDelete:
				err = s.Delete(sc, op.Collection, op.ID)
			}
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func (s *Store) insert(ctx context.Context, collection, id string, fields docstore.Document) error {
	doc := storedFields(fields)
	doc["_id"] = id
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, collection, id string, fields docstore.Document) error {
	res, err := s.db.Collection(collection).UpdateByID(ctx, id, bson.M{"$set": storedFields(fields)})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func storedFields(fields docstore.Document) bson.M {
	doc := bson.M(maps.Clone(fields))
	delete(doc, "id") // the id lives in _id
	return doc
}

// fromBSON normalizes a decoded document to the canonical value types
// the docstore helpers read: _id becomes "id", BSON datetimes become
// time.Time, nested arrays and maps are widened recursively.
func fromBSON(m bson.M) docstore.Document {
	doc := make(docstore.Document, len(m))
	for k, v := range m {
		if k == "_id" {
			if id, ok := v.(string); ok {
				doc["id"] = id
			}
			continue
		}
		doc[k] = normalize(v)
	}
	return doc
}

func normalize(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time()
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	default:
		return v
	}
}
