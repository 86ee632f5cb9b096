package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notevaultapp/notevault-core/internal/docstore"
	"github.com/notevaultapp/notevault-core/internal/domain"
	"github.com/notevaultapp/notevault-core/internal/errors"
	"github.com/notevaultapp/notevault-core/internal/identity"
)

func TestNoteCreate_PersistsAndResolvesTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.notes.Create(ctx, NoteCreate{
		Title:   "Meeting notes",
		Content: "discuss roadmap",
		Tags:    []string{"work", "work", "planning"},
	})
	require.NoError(t, err)

	note, ok := env.notes.FindByID(id)
	require.True(t, ok)
	assert.Equal(t, "Meeting notes", note.Title)
	assert.Equal(t, "discuss roadmap", note.Content)
	assert.False(t, note.IsArchived)
	assert.False(t, note.IsFavorite)

	require.Len(t, note.Tags, 3, "duplicate names resolve to the same tag, refs are kept as given")
	assert.Equal(t, note.Tags[0].ID, note.Tags[1].ID)
	assert.Equal(t, 2, env.store.Count(docstore.CollectionTags))
	assert.False(t, note.Tags[0].Placeholder)
}

func TestNoteCreate_RequiresTitle(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.notes.Create(context.Background(), NoteCreate{Title: ""})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestNoteCreate_RequiresUser(t *testing.T) {
	env := newTestEnvFor(t, identity.StaticSource(""))

	_, err := env.notes.Create(context.Background(), NoteCreate{Title: "x"})
	assert.True(t, errors.Is(err, errors.ErrNotAuthenticated))
}

func TestNoteFetch_UnresolvedTagRefBecomesPlaceholder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.store.Create(ctx, docstore.CollectionNotes, docstore.Document{
		"userId":    testUser,
		"title":     "orphan",
		"createdAt": env.now,
		"updatedAt": env.now,
		"tags":      []any{map[string]any{"id": "tag-gone"}},
	})
	require.NoError(t, err)

	require.NoError(t, env.notes.Fetch(ctx))

	note := env.notes.Notes()[0]
	require.Len(t, note.Tags, 1)
	assert.True(t, note.Tags[0].Placeholder)
	assert.Equal(t, "tag-gone", note.Tags[0].ID)
	assert.Equal(t, "tag-gone", note.Tags[0].Name)
}

func TestNoteFetch_AcceptsBareStringTagRefs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.store.Create(ctx, docstore.CollectionNotes, docstore.Document{
		"userId":    testUser,
		"title":     "legacy",
		"createdAt": env.now,
		"updatedAt": env.now,
		"tags":      []any{"tag-old"},
	})
	require.NoError(t, err)

	require.NoError(t, env.notes.Fetch(ctx))
	require.Len(t, env.notes.Notes()[0].Tags, 1)
	assert.Equal(t, "tag-old", env.notes.Notes()[0].Tags[0].ID)
}

func TestNoteFetch_NoUserClearsState(t *testing.T) {
	env := newTestEnvFor(t, identity.StaticSource(""))
	env.notes.notes = []domain.Note{{ID: "stale"}}

	require.NoError(t, env.notes.Fetch(context.Background()))
	assert.Empty(t, env.notes.Notes())
}

func TestNoteUpdate_StampsUpdatedAtAndPatchesFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.notes.Create(ctx, NoteCreate{Title: "before", Content: "body"})
	require.NoError(t, err)
	created := mustFindNote(t, env, id)

	env.tick()
	require.NoError(t, env.notes.Update(ctx, id, NoteUpdate{Title: Some("after")}))

	note := mustFindNote(t, env, id)
	assert.Equal(t, "after", note.Title)
	assert.Equal(t, "body", note.Content, "unsupplied fields are untouched")
	assert.True(t, note.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, note.CreatedAt.Equal(created.CreatedAt))
}

func TestNoteUpdate_ReplacesTagList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.notes.Create(ctx, NoteCreate{Title: "n", Tags: []string{"a", "b"}})
	require.NoError(t, err)

	require.NoError(t, env.notes.Update(ctx, id, NoteUpdate{Tags: Some([]string{"b", "c"})}))

	note := mustFindNote(t, env, id)
	names := make([]string, 0, len(note.Tags))
	for _, tag := range note.Tags {
		names = append(names, tag.Name)
	}
	assert.Equal(t, []string{"b", "c"}, names)
	assert.Equal(t, 3, env.store.Count(docstore.CollectionTags), "detached tags are not deleted")
}

func TestNoteDelete_RemovesNoteOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.notes.Create(ctx, NoteCreate{Title: "n", Tags: []string{"t"}})
	require.NoError(t, err)

	require.NoError(t, env.notes.Delete(ctx, id))

	assert.Equal(t, 0, env.store.Count(docstore.CollectionNotes))
	assert.Equal(t, 1, env.store.Count(docstore.CollectionTags))
}

func TestNoteToggles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.notes.Create(ctx, NoteCreate{Title: "n"})
	require.NoError(t, err)

	require.NoError(t, env.notes.ToggleFavorite(ctx, id))
	assert.True(t, mustFindNote(t, env, id).IsFavorite)
	require.NoError(t, env.notes.ToggleFavorite(ctx, id))
	assert.False(t, mustFindNote(t, env, id).IsFavorite)

	require.NoError(t, env.notes.ToggleArchive(ctx, id))
	assert.True(t, mustFindNote(t, env, id).IsArchived)

	assert.NoError(t, env.notes.ToggleFavorite(ctx, "note-missing"), "unknown id is a no-op")
}

func TestNoteFiltered_ComposesPredicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.notes.Create(ctx, NoteCreate{Title: "Grocery list", Tags: []string{"home"}})
	require.NoError(t, err)
	workID, err := env.notes.Create(ctx, NoteCreate{Title: "Work plan", Content: "ship the thing", Tags: []string{"work"}})
	require.NoError(t, err)
	archivedID, err := env.notes.Create(ctx, NoteCreate{Title: "Old work log", Tags: []string{"work"}})
	require.NoError(t, err)
	require.NoError(t, env.notes.ToggleArchive(ctx, archivedID))

	var workTagID string
	for _, tag := range env.tags.Tags() {
		if tag.Name == "work" {
			workTagID = tag.ID
		}
	}

	got := env.notes.Filtered(NoteFilter{Query: "work", SelectedTags: []string{workTagID}})
	require.Len(t, got, 1, "archived notes are excluded by default")
	assert.Equal(t, workID, got[0].ID)

	got = env.notes.Filtered(NoteFilter{ShowArchived: true})
	require.Len(t, got, 3, "show archived adds archived notes without hiding active ones")

	got = env.notes.Filtered(NoteFilter{TagQuery: "hom"})
	require.Len(t, got, 1)
	assert.Equal(t, "Grocery list", got[0].Title)

	got = env.notes.Filtered(NoteFilter{Query: "ship"})
	require.Len(t, got, 1, "query matches content too")
	assert.Equal(t, workID, got[0].ID)
}

func TestNoteFiltered_ShowArchivedIncludesActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	activeID, err := env.notes.Create(ctx, NoteCreate{Title: "active"})
	require.NoError(t, err)
	archivedID, err := env.notes.Create(ctx, NoteCreate{Title: "archived"})
	require.NoError(t, err)
	require.NoError(t, env.notes.ToggleArchive(ctx, archivedID))

	got := env.notes.Filtered(NoteFilter{ShowArchived: true})
	require.Len(t, got, 2)
	ids := []string{got[0].ID, got[1].ID}
	assert.Contains(t, ids, activeID)
	assert.Contains(t, ids, archivedID)

	got = env.notes.Filtered(NoteFilter{})
	require.Len(t, got, 1)
	assert.Equal(t, activeID, got[0].ID)
}

func TestNoteFiltered_ShowFavorites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	favID, err := env.notes.Create(ctx, NoteCreate{Title: "fav"})
	require.NoError(t, err)
	_, err = env.notes.Create(ctx, NoteCreate{Title: "plain"})
	require.NoError(t, err)
	require.NoError(t, env.notes.ToggleFavorite(ctx, favID))

	got := env.notes.Filtered(NoteFilter{ShowFavorites: true})
	require.Len(t, got, 1)
	assert.Equal(t, favID, got[0].ID)
}

func TestNoteFiltered_SortingIsStableOnTies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Same timestamp for all three, so every createdAt comparison ties.
	for _, title := range []string{"b-note", "a-note", "c-note"} {
		_, err := env.notes.Create(ctx, NoteCreate{Title: title})
		require.NoError(t, err)
	}

	byTitle := env.notes.Filtered(NoteFilter{SortBy: domain.NoteSortTitle, Order: domain.SortAsc})
	require.Len(t, byTitle, 3)
	assert.Equal(t, "a-note", byTitle[0].Title)
	assert.Equal(t, "c-note", byTitle[2].Title)

	tied := env.notes.Filtered(NoteFilter{SortBy: domain.NoteSortCreatedAt, Order: domain.SortAsc})
	tiedAgain := env.notes.Filtered(NoteFilter{SortBy: domain.NoteSortCreatedAt, Order: domain.SortAsc})
	require.Len(t, tied, 3)
	for i := range tied {
		assert.Equal(t, tied[i].ID, tiedAgain[i].ID, "tied order is deterministic across runs")
	}
}

func TestNoteFiltered_DefaultsToUpdatedAtDesc(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	oldID, err := env.notes.Create(ctx, NoteCreate{Title: "old"})
	require.NoError(t, err)
	env.tick()
	newID, err := env.notes.Create(ctx, NoteCreate{Title: "new"})
	require.NoError(t, err)

	got := env.notes.Filtered(NoteFilter{})
	require.Len(t, got, 2)
	assert.Equal(t, newID, got[0].ID)
	assert.Equal(t, oldID, got[1].ID)
}

func TestFavoriteNotes_ExcludesArchived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	favID, err := env.notes.Create(ctx, NoteCreate{Title: "fav"})
	require.NoError(t, err)
	bothID, err := env.notes.Create(ctx, NoteCreate{Title: "fav+archived"})
	require.NoError(t, err)
	require.NoError(t, env.notes.ToggleFavorite(ctx, favID))
	require.NoError(t, env.notes.ToggleFavorite(ctx, bothID))
	require.NoError(t, env.notes.ToggleArchive(ctx, bothID))

	got := env.notes.FavoriteNotes()
	require.Len(t, got, 1)
	assert.Equal(t, favID, got[0].ID)
}

func mustFindNote(t *testing.T, env *testEnv, id string) domain.Note {
	t.Helper()
	note, ok := env.notes.FindByID(id)
	require.True(t, ok)
	return note
}
