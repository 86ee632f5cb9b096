package docstore

import "github.com/notevaultapp/notevault-core/internal/id"

// OpKind discriminates batch operations.
type OpKind int

// Batch operation kinds.
const (
	OpCreate OpKind = iota
	OpUpdate
	OpDelete
)

// Op is a single mutation inside a batch.
type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Fields     Document // full document for creates, patch for updates
}

// Batch collects mutations that Apply commits atomically. Creates are
// assigned their id when staged, so callers can reference the new
// document before the batch commits.
type Batch struct {
	ops []Op
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Create stages a document creation and returns the pre-assigned id.
func (b *Batch) Create(collection string, fields Document) string {
	docID := id.MustGenerate(idPrefix(collection))
	b.ops = append(b.ops, Op{Kind: OpCreate, Collection: collection, ID: docID, Fields: fields})
	return docID
}

// Update stages a partial-field patch.
func (b *Batch) Update(collection, docID string, fields Document) {
	b.ops = append(b.ops, Op{Kind: OpUpdate, Collection: collection, ID: docID, Fields: fields})
}

// Delete stages a document deletion.
func (b *Batch) Delete(collection, docID string) {
	b.ops = append(b.ops, Op{Kind: OpDelete, Collection: collection, ID: docID})
}

// Len reports the number of staged operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Ops returns the staged operations in staging order.
func (b *Batch) Ops() []Op {
	return b.ops
}

// idPrefix maps a collection to its entity id prefix.
func idPrefix(collection string) string {
	switch collection {
	case CollectionNotes:
		return id.PrefixNote
	case CollectionTags:
		return id.PrefixTag
	case CollectionTasks:
		return id.PrefixTask
	case CollectionUsers:
		return id.PrefixUser
	default:
		return "doc"
	}
}

// AssignID generates a fresh id for a plain (non-batch) create.
func AssignID(collection string) string {
	return id.MustGenerate(idPrefix(collection))
}
