// Package identity maintains the current-user context the data layer
// scopes every store operation by. Authentication itself (tokens,
// credentials) is delegated to an external provider; this package only
// consumes its state-change stream and keeps the users collection in
// step.
package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/notevaultapp/notevault-core/internal/docstore"
	"github.com/notevaultapp/notevault-core/internal/domain"
	"github.com/notevaultapp/notevault-core/internal/errors"
	"github.com/notevaultapp/notevault-core/internal/logger"
)

// Change is one emission of the provider's auth-state stream. An empty
// UserID means signed out.
type Change struct {
	UserID string
	Email  string
}

// Provider is the external identity provider. Changes yields the
// authentication state, starting with the state current at
// subscription time.
type Provider interface {
	Changes() <-chan Change
}

// Source answers the current user id. Services take this interface so
// tests can substitute a fixed user.
type Source interface {
	CurrentUserID() (string, bool)
}

// StaticSource is a Source fixed to one user id. The empty string
// means signed out.
type StaticSource string

// CurrentUserID implements Source.
func (s StaticSource) CurrentUserID() (string, bool) {
	return string(s), s != ""
}

// Context tracks the signed-in user. It must be initialized before any
// store operation is attempted.
type Context struct {
	provider Provider
	store    docstore.Store
	log      *logger.Logger
	now      func() time.Time

	mu   sync.RWMutex
	user *domain.User
}

// NewContext creates an identity context over the given provider and
// store.
func NewContext(provider Provider, store docstore.Store, log *logger.Logger) *Context {
	return &Context{
		provider: provider,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

// Init consumes the provider's first state change, blocking until it
// arrives, then follows the stream in the background. The first change
// resolves (or creates) the user document, so callers can rely on the
// context being settled when Init returns.
func (c *Context) Init(ctx context.Context) error {
	changes := c.provider.Changes()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case change, ok := <-changes:
		if !ok {
			return errors.Internal("auth state stream closed before first change")
		}
		c.apply(ctx, change)
	}

	go func() {
		for change := range changes {
			c.apply(context.Background(), change)
		}
	}()
	return nil
}

// CurrentUserID implements Source.
func (c *Context) CurrentUserID() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return "", false
	}
	return c.user.ID, true
}

// CurrentUser returns the signed-in user, if any.
func (c *Context) CurrentUser() (domain.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return domain.User{}, false
	}
	return *c.user, true
}

func (c *Context) apply(ctx context.Context, change Change) {
	if change.UserID == "" {
		c.mu.Lock()
		c.user = nil
		c.mu.Unlock()
		c.log.Info("signed out")
		return
	}

	user, err := c.resolveUser(ctx, change)
	if err != nil {
		// Leave the context signed out rather than half-resolved.
		c.log.WithError(err).Error("failed to resolve user document", "user_id", change.UserID)
		c.mu.Lock()
		c.user = nil
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()
	c.log.Info("signed in", "user_id", user.ID, "username", user.Username)
}

// resolveUser loads the user document, creating it on first sign-in
// with a username derived from the email's local part.
func (c *Context) resolveUser(ctx context.Context, change Change) (*domain.User, error) {
	doc, err := c.store.GetByID(ctx, docstore.CollectionUsers, change.UserID)
	if err == nil {
		return &domain.User{
			ID:        change.UserID,
			Username:  doc.String("username"),
			CreatedAt: doc.TimeOr("createdAt", c.now()),
		}, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return nil, errors.StoreFailed(err, "load user document")
	}

	username := usernameFromEmail(change.Email)
	now := c.now()
	err = c.store.Set(ctx, docstore.CollectionUsers, change.UserID, docstore.Document{
		"username":  username,
		"createdAt": now,
	})
	if err != nil {
		return nil, errors.StoreFailed(err, "create user document")
	}
	return &domain.User{ID: change.UserID, Username: username, CreatedAt: now}, nil
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "user"
	}
	return local
}

// Static is a Provider that emits a single signed-in state. Used by
// the seed tool and tests.
type Static struct {
	ch chan Change
}

// NewStatic creates a static provider for the given user. An empty
// userID gets a generated one.
func NewStatic(userID, email string) *Static {
	if userID == "" {
		userID = "user-" + uuid.NewString()
	}
	ch := make(chan Change, 1)
	ch <- Change{UserID: userID, Email: email}
	return &Static{ch: ch}
}

// Changes implements Provider.
func (s *Static) Changes() <-chan Change {
	return s.ch
}
