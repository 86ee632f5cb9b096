package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/notevaultapp/notevault-core/internal/docstore"
	"github.com/notevaultapp/notevault-core/internal/domain"
	"github.com/notevaultapp/notevault-core/internal/errors"
	"github.com/notevaultapp/notevault-core/internal/identity"
	"github.com/notevaultapp/notevault-core/internal/logger"
)

// NoteSource provides the loaded notes set for derived tag data
// (note counts) and the delete cascade. NoteService implements it; the
// binding is set after construction to break the constructor cycle.
type NoteSource interface {
	Notes() []domain.Note
	Fetch(ctx context.Context) error
}

// TagService is the tag registry: it resolves free-text tag names to
// stable ids, deduplicating case-insensitively per user, and owns
// cross-entity consistency when tags are deleted.
//
// Loaded state is mutated in place by whichever fetch completes last;
// concurrent invocations are not coordinated at this layer.
type TagService struct {
	store    docstore.Store
	identity identity.Source
	notes    NoteSource
	log      *logger.Logger
	now      func() time.Time

	tags []domain.Tag
}

// NewTagService creates a tag service. Call SetNoteSource before use.
func NewTagService(store docstore.Store, identity identity.Source, log *logger.Logger) *TagService {
	return &TagService{
		store:    store,
		identity: identity,
		log:      log,
		now:      time.Now,
	}
}

// SetNoteSource binds the loaded-notes view. Set after construction
// because NoteService and TagService reference each other.
func (s *TagService) SetNoteSource(notes NoteSource) {
	s.notes = notes
}

// Tags returns the loaded tag set, newest first.
func (s *TagService) Tags() []domain.Tag {
	return s.tags
}

// FindByID looks a tag up in the loaded set.
func (s *TagService) FindByID(id string) (domain.Tag, bool) {
	for _, t := range s.tags {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Tag{}, false
}

// findByName matches case-insensitively against the loaded set.
func (s *TagService) findByName(name string) (domain.Tag, bool) {
	for _, t := range s.tags {
		if t.NameEquals(name) {
			return t, true
		}
	}
	return domain.Tag{}, false
}

// Fetch reloads the tag set for the current user, orders it by
// creation time descending, and recomputes the derived note counts
// from the loaded notes set. Without a signed-in user the set is
// empty. A store failure leaves the previously loaded set untouched.
func (s *TagService) Fetch(ctx context.Context) error {
	uid, ok := s.identity.CurrentUserID()
	if !ok {
		s.tags = nil
		return nil
	}

	docs, err := s.store.QueryAll(ctx, docstore.CollectionTags,
		[]docstore.Filter{docstore.Eq("userId", uid)}, nil)
	if err != nil {
		s.log.WithError(err).Error("failed to fetch tags", "user_id", uid)
		return errors.StoreFailed(err, "fetch tags")
	}

	tags := make([]domain.Tag, 0, len(docs))
	for _, doc := range docs {
		tags = append(tags, s.tagFromDoc(doc))
	}

	// The query is index-free; order client-side, newest first.
	slices.SortStableFunc(tags, func(a, b domain.Tag) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if s.notes != nil {
		notes := s.notes.Notes()
		for i := range tags {
			tags[i].NoteCount = countNotesWithTag(notes, tags[i].ID)
		}
	}

	s.tags = tags
	return nil
}

func countNotesWithTag(notes []domain.Note, tagID string) int {
	count := 0
	for i := range notes {
		if notes[i].HasTag(tagID) {
			count++
		}
	}
	return count
}

func (s *TagService) tagFromDoc(doc docstore.Document) domain.Tag {
	return domain.Tag{
		ID:        doc.String("id"),
		UserID:    doc.String("userId"),
		Name:      doc.String("name"),
		Color:     doc.String("color"),
		CreatedAt: doc.TimeOr("createdAt", s.now()),
	}
}

// EnsureTags resolves tag names to ids, creating the missing ones in a
// single atomic batch. Names are trimmed; blank names are silently
// skipped and produce no output element. Existing tags are matched
// case-insensitively against the set as loaded before this call;
// duplicates within one call are deduplicated through call-local
// bookkeeping, not a second round trip. The returned ids correspond
// 1:1 to the non-blank input names.
func (s *TagService) EnsureTags(ctx context.Context, names []string) ([]string, error) {
	uid, ok := s.identity.CurrentUserID()
	if !ok {
		return nil, errors.NotAuthenticated("ensure tags requires a signed-in user")
	}

	ids := make([]string, 0, len(names))
	staged := make(map[string]string) // lowercased trimmed name -> staged id
	batch := docstore.NewBatch()

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		if existing, ok := s.findByName(name); ok {
			ids = append(ids, existing.ID)
			continue
		}

		key := strings.ToLower(name)
		if stagedID, ok := staged[key]; ok {
			ids = append(ids, stagedID)
			continue
		}

		newID := batch.Create(docstore.CollectionTags, docstore.Document{
			"userId":    uid,
			"name":      name,
			"color":     nil,
			"createdAt": s.now(),
		})
		staged[key] = newID
		ids = append(ids, newID)
	}

	if batch.Len() > 0 {
		if err := s.store.Apply(ctx, batch); err != nil {
			s.log.WithError(err).Error("failed to create tags", "count", batch.Len())
			return nil, errors.StoreFailed(err, "create tags")
		}
		s.log.Info("tags created", "count", batch.Len(), "user_id", uid)
		if err := s.Fetch(ctx); err != nil {
			return nil, err
		}
	}

	return ids, nil
}

// TagUpdate is a partial-field tag patch. Supplying an empty Color
// clears it.
type TagUpdate struct {
	Name  Optional[string]
	Color Optional[string]
}

// UpdateTag patches only the supplied fields, then refetches the tag
// set.
func (s *TagService) UpdateTag(ctx context.Context, id string, upd TagUpdate) error {
	if _, ok := s.identity.CurrentUserID(); !ok {
		return errors.NotAuthenticated("update tag requires a signed-in user")
	}

	fields := docstore.Document{}
	if name, ok := upd.Name.Get(); ok {
		fields["name"] = name
	}
	if color, ok := upd.Color.Get(); ok {
		if color == "" {
			fields["color"] = nil
		} else {
			fields["color"] = color
		}
	}
	if len(fields) == 0 {
		return nil
	}

	if err := s.store.Update(ctx, docstore.CollectionTags, id, fields); err != nil {
		s.log.WithError(err).Error("failed to update tag", "tag_id", id)
		return errors.StoreFailed(err, "update tag")
	}
	return s.Fetch(ctx)
}

// DeleteTag removes the tag and strips its reference from every loaded
// note holding it. The note updates and the tag deletion are one
// atomic batch: a failure leaves all entities unchanged. Both
// collections are refetched afterwards.
func (s *TagService) DeleteTag(ctx context.Context, id string) error {
	if _, ok := s.identity.CurrentUserID(); !ok {
		return errors.NotAuthenticated("delete tag requires a signed-in user")
	}

	batch := docstore.NewBatch()
	stripped := 0
	if s.notes != nil {
		for _, note := range s.notes.Notes() {
			if !note.HasTag(id) {
				continue
			}
			batch.Update(docstore.CollectionNotes, note.ID, docstore.Document{
				"tags": tagRefsValue(refIDs(note.TagRefsWithout(id))),
			})
			stripped++
		}
	}
	batch.Delete(docstore.CollectionTags, id)

	if err := s.store.Apply(ctx, batch); err != nil {
		s.log.WithError(err).Error("failed to delete tag", "tag_id", id)
		return errors.StoreFailed(err, "delete tag")
	}
	s.log.Info("tag deleted", "tag_id", id, "notes_updated", stripped)

	if s.notes != nil {
		if err := s.notes.Fetch(ctx); err != nil {
			return err
		}
	}
	return s.Fetch(ctx)
}

// tagRefsValue builds the wire form of a tag-reference list: a list of
// {id} objects.
func tagRefsValue(ids []string) []any {
	refs := make([]any, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, map[string]any{"id": id})
	}
	return refs
}

func refIDs(refs []domain.TagRef) []string {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}
