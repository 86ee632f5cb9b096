package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notevaultapp/notevault-core/internal/docstore"
	"github.com/notevaultapp/notevault-core/internal/docstore/memstore"
	"github.com/notevaultapp/notevault-core/internal/logger"
)

func TestInit_CreatesUserDocumentOnFirstSignIn(t *testing.T) {
	store := memstore.New()
	c := NewContext(NewStatic("uid-1", "ada@example.com"), store, logger.Discard())

	require.NoError(t, c.Init(context.Background()))

	uid, ok := c.CurrentUserID()
	assert.True(t, ok)
	assert.Equal(t, "uid-1", uid)

	user, ok := c.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "ada", user.Username, "username derives from the email local part")

	doc, err := store.GetByID(context.Background(), docstore.CollectionUsers, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "ada", doc.String("username"))
}

func TestInit_LoadsExistingUserDocument(t *testing.T) {
	store := memstore.New()
	created := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set(context.Background(), docstore.CollectionUsers, "uid-2", docstore.Document{
		"username":  "grace",
		"createdAt": created,
	}))

	c := NewContext(NewStatic("uid-2", "grace@example.com"), store, logger.Discard())
	require.NoError(t, c.Init(context.Background()))

	user, ok := c.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "grace", user.Username)
	assert.True(t, user.CreatedAt.Equal(created))
}

func TestInit_SignedOutStream(t *testing.T) {
	ch := make(chan Change, 1)
	ch <- Change{} // signed out
	c := NewContext(providerFunc(ch), memstore.New(), logger.Discard())

	require.NoError(t, c.Init(context.Background()))

	_, ok := c.CurrentUserID()
	assert.False(t, ok)
}

func TestInit_ContextCanceledBeforeFirstChange(t *testing.T) {
	ch := make(chan Change)
	c := NewContext(providerFunc(ch), memstore.New(), logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, c.Init(ctx))
}

func TestNewStatic_GeneratesUserID(t *testing.T) {
	s := NewStatic("", "x@example.com")

	change := <-s.Changes()
	assert.Contains(t, change.UserID, "user-")
}

func TestStaticSource(t *testing.T) {
	uid, ok := StaticSource("u1").CurrentUserID()
	assert.True(t, ok)
	assert.Equal(t, "u1", uid)

	_, ok = StaticSource("").CurrentUserID()
	assert.False(t, ok)
}

type providerFunc chan Change

func (p providerFunc) Changes() <-chan Change { return p }
