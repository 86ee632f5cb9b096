// Package di provides dependency injection configuration for the
// NoteVault data layer.
package di

import (
	"github.com/samber/do/v2"

	"github.com/notevaultapp/notevault-core/internal/config"
	"github.com/notevaultapp/notevault-core/internal/di/providers"
	"github.com/notevaultapp/notevault-core/internal/identity"
	"github.com/notevaultapp/notevault-core/internal/logger"
	"github.com/notevaultapp/notevault-core/internal/service"
	"github.com/notevaultapp/notevault-core/internal/validation"
)

// NewContainer creates and configures the DI container. The identity
// provider is supplied by the embedding application, which owns the
// actual authentication flow.
func NewContainer(provider identity.Provider) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, provider)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideIdentity)

	// Data services
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideNoteService)
	do.Provide(injector, providers.ProvideTaskService)

	return injector
}

// Bootstrap triggers lazy initialization of all services and returns
// the resolved service set.
func Bootstrap(injector *do.RootScope) (*providers.Services, error) {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*validation.Validator](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.IdentityHandle](injector); err != nil {
		return nil, err
	}

	tags, err := do.Invoke[*service.TagService](injector)
	if err != nil {
		return nil, err
	}
	notes, err := do.Invoke[*service.NoteService](injector)
	if err != nil {
		return nil, err
	}
	tasks, err := do.Invoke[*service.TaskService](injector)
	if err != nil {
		return nil, err
	}

	return &providers.Services{Tags: tags, Notes: notes, Tasks: tasks}, nil
}
