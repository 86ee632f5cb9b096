package providers

import (
	"github.com/samber/do/v2"

	"github.com/notevaultapp/notevault-core/internal/logger"
	"github.com/notevaultapp/notevault-core/internal/service"
	"github.com/notevaultapp/notevault-core/internal/validation"
)

// Services is the resolved data-service set handed to the embedding
// application.
type Services struct {
	Tags  *service.TagService
	Notes *service.NoteService
	Tasks *service.TaskService
}

// ProvideTagService provides the tag registry. Its note source is
// wired by ProvideNoteService, which depends on it.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	ident := do.MustInvoke[*IdentityHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, ident, log), nil
}

// ProvideNoteService provides the note service and closes the
// tag-to-note loop.
func ProvideNoteService(i do.Injector) (*service.NoteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	ident := do.MustInvoke[*IdentityHandle](i)
	tags := do.MustInvoke[*service.TagService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	notes := service.NewNoteService(storeHandle.Store, ident, tags, v, log)
	tags.SetNoteSource(notes)
	return notes, nil
}

// ProvideTaskService provides the task service.
func ProvideTaskService(i do.Injector) (*service.TaskService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	ident := do.MustInvoke[*IdentityHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTaskService(storeHandle.Store, ident, v, log), nil
}
