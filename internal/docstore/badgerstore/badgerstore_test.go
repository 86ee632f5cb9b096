package badgerstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notevaultapp/notevault-core/internal/docstore"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := s.Create(ctx, docstore.CollectionNotes, docstore.Document{
		"userId":     "u1",
		"title":      "hello",
		"isArchived": false,
		"createdAt":  created,
		"tags":       []any{map[string]any{"id": "tag-1"}},
	})
	require.NoError(t, err)

	doc, err := s.GetByID(ctx, docstore.CollectionNotes, id)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.String("title"))
	assert.False(t, doc.Bool("isArchived"))
	// Timestamps survive the JSON round trip via RFC3339 strings.
	assert.True(t, doc.TimeOr("createdAt", time.Time{}).Equal(created))
	require.Len(t, doc.List("tags"), 1)
}

func TestQueryAll_ScopedAndOrdered(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, owner := range []string{"u1", "u1", "u2"} {
		_, err := s.Create(ctx, docstore.CollectionTasks, docstore.Document{
			"userId":    owner,
			"title":     string(rune('a' + i)),
			"createdAt": base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	docs, err := s.QueryAll(ctx, docstore.CollectionTasks,
		[]docstore.Filter{docstore.Eq("userId", "u1")},
		&docstore.OrderBy{Field: "createdAt", Desc: true})
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].String("title"))
	assert.Equal(t, "a", docs[1].String("title"))
}

func TestUpdate_Patch(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, docstore.CollectionTags, docstore.Document{
		"name":  "Work",
		"color": "#ff0000",
	})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, docstore.CollectionTags, id, docstore.Document{
		"name": "Office",
	}))

	doc, err := s.GetByID(ctx, docstore.CollectionTags, id)
	require.NoError(t, err)
	assert.Equal(t, "Office", doc.String("name"))
	assert.Equal(t, "#ff0000", doc.String("color"))

	err = s.Update(ctx, docstore.CollectionTags, "tag-missing", docstore.Document{"name": "x"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestApply_RollsBackOnFailure(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	tagID, err := s.Create(ctx, docstore.CollectionTags, docstore.Document{"name": "Work"})
	require.NoError(t, err)

	batch := docstore.NewBatch()
	batch.Delete(docstore.CollectionTags, tagID)
	batch.Update(docstore.CollectionNotes, "note-missing", docstore.Document{"title": "x"})

	err = s.Apply(ctx, batch)
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	// The delete staged before the failing update was rolled back.
	_, err = s.GetByID(ctx, docstore.CollectionTags, tagID)
	assert.NoError(t, err)
}

func TestApply_Commits(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	batch := docstore.NewBatch()
	a := batch.Create(docstore.CollectionTags, docstore.Document{"name": "A"})
	b := batch.Create(docstore.CollectionTags, docstore.Document{"name": "B"})
	require.NoError(t, s.Apply(ctx, batch))

	for _, id := range []string{a, b} {
		_, err := s.GetByID(ctx, docstore.CollectionTags, id)
		assert.NoError(t, err)
	}
}

func TestSet_Upsert(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, docstore.CollectionUsers, "uid-1", docstore.Document{
		"username": "ada",
	}))
	require.NoError(t, s.Set(ctx, docstore.CollectionUsers, "uid-1", docstore.Document{
		"username": "ada.l",
	}))

	doc, err := s.GetByID(ctx, docstore.CollectionUsers, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "ada.l", doc.String("username"))
}
