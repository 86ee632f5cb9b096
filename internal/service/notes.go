package service

import (
	"context"
	"slices"
	"time"

	"github.com/notevaultapp/notevault-core/internal/docstore"
	"github.com/notevaultapp/notevault-core/internal/domain"
	"github.com/notevaultapp/notevault-core/internal/errors"
	"github.com/notevaultapp/notevault-core/internal/identity"
	"github.com/notevaultapp/notevault-core/internal/logger"
	"github.com/notevaultapp/notevault-core/internal/validation"
)

// NoteService owns the loaded notes set and the derived filtered view.
// Filtering and sorting run entirely client-side over the loaded set;
// the store is only consulted on fetch and mutation.
type NoteService struct {
	store     docstore.Store
	identity  identity.Source
	tags      *TagService
	validator *validation.Validator
	log       *logger.Logger
	now       func() time.Time

	notes []domain.Note
}

// NewNoteService creates a note service bound to the tag registry.
func NewNoteService(store docstore.Store, identity identity.Source, tags *TagService, validator *validation.Validator, log *logger.Logger) *NoteService {
	return &NoteService{
		store:     store,
		identity:  identity,
		tags:      tags,
		validator: validator,
		log:       log,
		now:       time.Now,
	}
}

// Notes returns the loaded notes set, newest-updated first.
func (s *NoteService) Notes() []domain.Note {
	return s.notes
}

// FindByID looks a note up in the loaded set.
func (s *NoteService) FindByID(id string) (domain.Note, bool) {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return s.notes[i], true
		}
	}
	return domain.Note{}, false
}

// FavoriteNotes returns the loaded notes marked favorite, excluding
// archived ones, in loaded order.
func (s *NoteService) FavoriteNotes() []domain.Note {
	var out []domain.Note
	for i := range s.notes {
		if s.notes[i].IsFavorite && !s.notes[i].IsArchived {
			out = append(out, s.notes[i])
		}
	}
	return out
}

// Fetch reloads the notes set for the current user and materializes
// each note's tag references against the loaded tag set. References
// that do not resolve become placeholders rather than disappearing.
// Without a signed-in user the set is empty. A store failure leaves
// the previously loaded set untouched.
func (s *NoteService) Fetch(ctx context.Context) error {
	uid, ok := s.identity.CurrentUserID()
	if !ok {
		s.notes = nil
		return nil
	}

	docs, err := s.store.QueryAll(ctx, docstore.CollectionNotes,
		[]docstore.Filter{docstore.Eq("userId", uid)},
		&docstore.OrderBy{Field: "updatedAt", Desc: true})
	if err != nil {
		s.log.WithError(err).Error("failed to fetch notes", "user_id", uid)
		return errors.StoreFailed(err, "fetch notes")
	}

	notes := make([]domain.Note, 0, len(docs))
	for _, doc := range docs {
		notes = append(notes, s.noteFromDoc(doc))
	}
	s.notes = notes
	return nil
}

func (s *NoteService) noteFromDoc(doc docstore.Document) domain.Note {
	now := s.now()
	n := domain.Note{
		ID:         doc.String("id"),
		UserID:     doc.String("userId"),
		Title:      doc.String("title"),
		Content:    doc.String("content"),
		CreatedAt:  doc.TimeOr("createdAt", now),
		UpdatedAt:  doc.TimeOr("updatedAt", now),
		IsArchived: doc.Bool("isArchived"),
		IsFavorite: doc.Bool("isFavorite"),
	}

	for _, raw := range doc.List("tags") {
		id := tagRefID(raw)
		if id == "" {
			continue
		}
		if tag, ok := s.tags.FindByID(id); ok {
			n.Tags = append(n.Tags, domain.NoteTag{Tag: tag})
		} else {
			n.Tags = append(n.Tags, domain.PlaceholderTag(id, n.UserID, now))
		}
	}
	return n
}

// tagRefID extracts the tag id from a persisted reference, which older
// documents store as a bare string and newer ones as an {id} object.
func tagRefID(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		id, _ := v["id"].(string)
		return id
	case docstore.Document:
		id, _ := v["id"].(string)
		return id
	default:
		return ""
	}
}

// NoteFilter selects and orders a view over the loaded notes set. Zero
// values mean "no constraint"; an empty sort key defaults to the
// last-modified ordering.
type NoteFilter struct {
	Query        string
	TagQuery     string
	SelectedTags []string
	// ShowArchived includes archived notes, which are otherwise dropped.
	ShowArchived  bool
	ShowFavorites bool
	SortBy        domain.NoteSortKey
	Order         domain.SortOrder
}

// Filtered applies the filter to the loaded set and returns a new
// slice. Predicates compose as a conjunction; the sort is stable, so
// notes comparing equal keep their fetched order.
func (s *NoteService) Filtered(f NoteFilter) []domain.Note {
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = domain.NoteSortUpdatedAt
	}
	order := f.Order
	if order == "" {
		order = domain.SortDesc
	}

	out := make([]domain.Note, 0, len(s.notes))
	for i := range s.notes {
		n := &s.notes[i]
		if !f.ShowArchived && n.IsArchived {
			continue
		}
		if f.ShowFavorites && !n.IsFavorite {
			continue
		}
		if !n.MatchesQuery(f.Query) {
			continue
		}
		if !n.MatchesTagQuery(f.TagQuery) {
			continue
		}
		if !n.HasAllTags(f.SelectedTags) {
			continue
		}
		out = append(out, *n)
	}

	slices.SortStableFunc(out, func(a, b domain.Note) int {
		c := a.Compare(&b, sortBy)
		if order == domain.SortDesc {
			return -c
		}
		return c
	})
	return out
}

// NoteCreate is the input for creating a note. Tags holds free-text
// names resolved through the tag registry.
type NoteCreate struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// Create resolves the tag names, persists the note, and reloads both
// the notes and tag sets. It returns the new note's id.
func (s *NoteService) Create(ctx context.Context, in NoteCreate) (string, error) {
	uid, ok := s.identity.CurrentUserID()
	if !ok {
		return "", errors.NotAuthenticated("create note requires a signed-in user")
	}
	if err := s.validator.Validate(in); err != nil {
		return "", err
	}

	tagIDs, err := s.tags.EnsureTags(ctx, in.Tags)
	if err != nil {
		return "", err
	}

	now := s.now()
	doc := docstore.Document{
		"userId":     uid,
		"title":      in.Title,
		"createdAt":  now,
		"updatedAt":  now,
		"isArchived": false,
		"isFavorite": false,
		"tags":       tagRefsValue(tagIDs),
	}
	if in.Content == "" {
		doc["content"] = nil
	} else {
		doc["content"] = in.Content
	}

	id, err := s.store.Create(ctx, docstore.CollectionNotes, doc)
	if err != nil {
		s.log.WithError(err).Error("failed to create note", "user_id", uid)
		return "", errors.StoreFailed(err, "create note")
	}
	s.log.Info("note created", "note_id", id, "user_id", uid)

	if err := s.Fetch(ctx); err != nil {
		return "", err
	}
	return id, s.tags.Fetch(ctx)
}

// NoteUpdate is a partial-field note patch. Supplying Tags replaces
// the full reference list after resolving the names.
type NoteUpdate struct {
	Title      Optional[string]
	Content    Optional[string]
	IsArchived Optional[bool]
	IsFavorite Optional[bool]
	Tags       Optional[[]string]
}

// Update patches only the supplied fields, always stamping the
// modification time, then reloads the notes set. Supplying an empty
// Content clears it.
func (s *NoteService) Update(ctx context.Context, id string, upd NoteUpdate) error {
	if _, ok := s.identity.CurrentUserID(); !ok {
		return errors.NotAuthenticated("update note requires a signed-in user")
	}

	fields := docstore.Document{"updatedAt": s.now()}
	if title, ok := upd.Title.Get(); ok {
		fields["title"] = title
	}
	if content, ok := upd.Content.Get(); ok {
		if content == "" {
			fields["content"] = nil
		} else {
			fields["content"] = content
		}
	}
	if archived, ok := upd.IsArchived.Get(); ok {
		fields["isArchived"] = archived
	}
	if favorite, ok := upd.IsFavorite.Get(); ok {
		fields["isFavorite"] = favorite
	}
	if names, ok := upd.Tags.Get(); ok {
		tagIDs, err := s.tags.EnsureTags(ctx, names)
		if err != nil {
			return err
		}
		fields["tags"] = tagRefsValue(tagIDs)
	}

	if err := s.store.Update(ctx, docstore.CollectionNotes, id, fields); err != nil {
		s.log.WithError(err).Error("failed to update note", "note_id", id)
		return errors.StoreFailed(err, "update note")
	}

	if err := s.Fetch(ctx); err != nil {
		return err
	}
	return s.tags.Fetch(ctx)
}

// Delete removes a note and reloads the notes and tag sets.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	if _, ok := s.identity.CurrentUserID(); !ok {
		return errors.NotAuthenticated("delete note requires a signed-in user")
	}

	if err := s.store.Delete(ctx, docstore.CollectionNotes, id); err != nil {
		s.log.WithError(err).Error("failed to delete note", "note_id", id)
		return errors.StoreFailed(err, "delete note")
	}
	s.log.Info("note deleted", "note_id", id)

	if err := s.Fetch(ctx); err != nil {
		return err
	}
	return s.tags.Fetch(ctx)
}

// ToggleFavorite flips the favorite flag. An id absent from the loaded
// set is a no-op.
func (s *NoteService) ToggleFavorite(ctx context.Context, id string) error {
	note, ok := s.FindByID(id)
	if !ok {
		return nil
	}
	return s.Update(ctx, id, NoteUpdate{IsFavorite: Some(!note.IsFavorite)})
}

// ToggleArchive flips the archived flag. An id absent from the loaded
// set is a no-op.
func (s *NoteService) ToggleArchive(ctx context.Context, id string) error {
	note, ok := s.FindByID(id)
	if !ok {
		return nil
	}
	return s.Update(ctx, id, NoteUpdate{IsArchived: Some(!note.IsArchived)})
}
