package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"

	"github.com/notevaultapp/notevault-core/internal/config"
	"github.com/notevaultapp/notevault-core/internal/docstore"
	"github.com/notevaultapp/notevault-core/internal/docstore/badgerstore"
	"github.com/notevaultapp/notevault-core/internal/docstore/mongostore"
	"github.com/notevaultapp/notevault-core/internal/identity"
	"github.com/notevaultapp/notevault-core/internal/logger"
)

const connectTimeout = 10 * time.Second

// StoreHandle wraps the document store with shutdown capability.
type StoreHandle struct {
	docstore.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the document store selected by configuration.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		store docstore.Store
		err   error
	)
	switch cfg.Store.Backend {
	case config.StoreBackendBadger:
		store, err = badgerstore.Open(cfg.Store.BadgerPath, log)
	case config.StoreBackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		store, err = mongostore.Connect(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase, log)
	default:
		err = fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Document store initialized", "backend", cfg.Store.Backend)
	return &StoreHandle{Store: store}, nil
}

// IdentityHandle exposes the initialized identity context.
type IdentityHandle struct {
	*identity.Context
}

// ProvideIdentity provides the identity context, blocking until the
// provider's first auth state lands.
func ProvideIdentity(i do.Injector) (*IdentityHandle, error) {
	provider := do.MustInvoke[identity.Provider](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	c := identity.NewContext(provider, storeHandle.Store, log)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return &IdentityHandle{Context: c}, nil
}
