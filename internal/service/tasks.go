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

// TaskFilterMode selects which completion/due bucket of tasks to show.
type TaskFilterMode string

// Task filter modes. Day buckets are evaluated against the current
// time, midnight-to-midnight in local time.
const (
	TaskFilterAll       TaskFilterMode = "all"
	TaskFilterCompleted TaskFilterMode = "completed"
	TaskFilterPending   TaskFilterMode = "pending"
	TaskFilterToday     TaskFilterMode = "today"
	TaskFilterUpcoming  TaskFilterMode = "upcoming"
	TaskFilterOverdue   TaskFilterMode = "overdue"
)

// TaskFilter selects and orders a view over the loaded task set. A
// zero Mode means all; an empty sort key defaults to due date
// ascending.
type TaskFilter struct {
	Mode   TaskFilterMode
	SortBy domain.TaskSortKey
	Order  domain.SortOrder
}

// TaskService owns the loaded task set and its aggregate stats. The
// stats always cover the full loaded set, never a filtered view.
type TaskService struct {
	store     docstore.Store
	identity  identity.Source
	validator *validation.Validator
	log       *logger.Logger
	now       func() time.Time

	tasks []domain.Task
	stats domain.TaskStats
}

// NewTaskService creates a task service.
func NewTaskService(store docstore.Store, identity identity.Source, validator *validation.Validator, log *logger.Logger) *TaskService {
	return &TaskService{
		store:     store,
		identity:  identity,
		validator: validator,
		log:       log,
		now:       time.Now,
	}
}

// Tasks returns the loaded task set, newest first.
func (s *TaskService) Tasks() []domain.Task {
	return s.tasks
}

// Stats returns the aggregate counts as of the last fetch or refresh.
func (s *TaskService) Stats() domain.TaskStats {
	return s.stats
}

// Fetch reloads the task set for the current user and recomputes the
// stats. Without a signed-in user the set and stats are empty. A store
// failure leaves the previously loaded state untouched.
func (s *TaskService) Fetch(ctx context.Context) error {
	uid, ok := s.identity.CurrentUserID()
	if !ok {
		s.tasks = nil
		s.stats = domain.TaskStats{}
		return nil
	}

	docs, err := s.store.QueryAll(ctx, docstore.CollectionTasks,
		[]docstore.Filter{docstore.Eq("userId", uid)},
		&docstore.OrderBy{Field: "createdAt", Desc: true})
	if err != nil {
		s.log.WithError(err).Error("failed to fetch tasks", "user_id", uid)
		return errors.StoreFailed(err, "fetch tasks")
	}

	tasks := make([]domain.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, s.taskFromDoc(doc))
	}
	s.tasks = tasks
	s.stats = domain.ComputeTaskStats(tasks, s.now())
	return nil
}

// FetchByNote returns the tasks linked to a note without touching the
// loaded set. Without a signed-in user it returns nothing.
func (s *TaskService) FetchByNote(ctx context.Context, noteID string) ([]domain.Task, error) {
	uid, ok := s.identity.CurrentUserID()
	if !ok {
		return nil, nil
	}

	docs, err := s.store.QueryAll(ctx, docstore.CollectionTasks,
		[]docstore.Filter{docstore.Eq("userId", uid), docstore.Eq("noteId", noteID)},
		&docstore.OrderBy{Field: "createdAt", Desc: true})
	if err != nil {
		s.log.WithError(err).Error("failed to fetch tasks for note", "note_id", noteID)
		return nil, errors.StoreFailed(err, "fetch tasks for note")
	}

	tasks := make([]domain.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, s.taskFromDoc(doc))
	}
	return tasks, nil
}

// RefreshStats recomputes the aggregate counts over the loaded set at
// the current time, without a store round trip. Day buckets shift as
// time passes even when no task changed.
func (s *TaskService) RefreshStats() domain.TaskStats {
	s.stats = domain.ComputeTaskStats(s.tasks, s.now())
	return s.stats
}

func (s *TaskService) taskFromDoc(doc docstore.Document) domain.Task {
	now := s.now()
	return domain.Task{
		ID:                doc.String("id"),
		UserID:            doc.String("userId"),
		Title:             doc.String("title"),
		Description:       doc.String("description"),
		Completed:         doc.Bool("completed"),
		DueDate:           doc.TimePtr("dueDate"),
		Priority:          priorityOr(doc.String("priority"), domain.PriorityMedium),
		NoteID:            doc.String("noteId"),
		NoteTitle:         doc.String("noteTitle"),
		RecurringType:     recurringOr(doc.String("recurringType"), domain.RecurringNone),
		RecurringInterval: doc.IntOr("recurringInterval", 1),
		Reminder:          doc.TimePtr("reminder"),
		CreatedAt:         doc.TimeOr("createdAt", now),
		UpdatedAt:         doc.TimeOr("updatedAt", now),
	}
}

func priorityOr(v string, fallback domain.Priority) domain.Priority {
	if v == "" {
		return fallback
	}
	return domain.Priority(v)
}

func recurringOr(v string, fallback domain.RecurringType) domain.RecurringType {
	if v == "" {
		return fallback
	}
	return domain.RecurringType(v)
}

// Filtered applies the filter to the loaded set and returns a new
// slice. The sort is stable, so tasks comparing equal keep their
// fetched order.
func (s *TaskService) Filtered(f TaskFilter) []domain.Task {
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = domain.TaskSortDueDate
	}
	order := f.Order
	if order == "" {
		order = domain.SortAsc
	}
	now := s.now()

	out := make([]domain.Task, 0, len(s.tasks))
	for i := range s.tasks {
		t := &s.tasks[i]
		if taskMatchesMode(t, f.Mode, now) {
			out = append(out, *t)
		}
	}

	slices.SortStableFunc(out, func(a, b domain.Task) int {
		c := a.Compare(&b, sortBy)
		if order == domain.SortDesc {
			return -c
		}
		return c
	})
	return out
}

func taskMatchesMode(t *domain.Task, mode TaskFilterMode, now time.Time) bool {
	switch mode {
	case TaskFilterCompleted:
		return t.Completed
	case TaskFilterPending:
		return !t.Completed
	case TaskFilterToday:
		return t.DueToday(now)
	case TaskFilterUpcoming:
		return t.Upcoming(now)
	case TaskFilterOverdue:
		return t.Overdue(now)
	default:
		return true
	}
}

// TaskCreate is the input for creating a task.
type TaskCreate struct {
	Title             string               `json:"title" validate:"required"`
	Description       string               `json:"description"`
	DueDate           *time.Time           `json:"dueDate"`
	Priority          domain.Priority      `json:"priority" validate:"oneof=low medium high"`
	NoteID            string               `json:"noteId"`
	RecurringType     domain.RecurringType `json:"recurringType" validate:"oneof=none daily weekly monthly"`
	RecurringInterval int                  `json:"recurringInterval" validate:"min=1"`
	Reminder          *time.Time           `json:"reminder"`
}

// Create persists a new incomplete task and reloads the set. It
// returns the new task's id.
func (s *TaskService) Create(ctx context.Context, in TaskCreate) (string, error) {
	uid, ok := s.identity.CurrentUserID()
	if !ok {
		return "", errors.NotAuthenticated("create task requires a signed-in user")
	}
	if err := s.validator.Validate(in); err != nil {
		return "", err
	}

	now := s.now()
	doc := docstore.Document{
		"userId":            uid,
		"title":             in.Title,
		"description":       in.Description,
		"completed":         false,
		"dueDate":           docstore.NullableTime(in.DueDate),
		"priority":          string(in.Priority),
		"noteId":            in.NoteID,
		"noteTitle":         nil,
		"recurringType":     string(in.RecurringType),
		"recurringInterval": in.RecurringInterval,
		"reminder":          docstore.NullableTime(in.Reminder),
		"createdAt":         now,
		"updatedAt":         now,
	}

	id, err := s.store.Create(ctx, docstore.CollectionTasks, doc)
	if err != nil {
		s.log.WithError(err).Error("failed to create task", "user_id", uid)
		return "", errors.StoreFailed(err, "create task")
	}
	s.log.Info("task created", "task_id", id, "user_id", uid)

	return id, s.Fetch(ctx)
}

// TaskUpdate is a partial-field task patch. For the nullable
// timestamps, Some with a nil pointer clears the field. Supplying an
// empty NoteID unlinks the task from its note.
type TaskUpdate struct {
	Title             Optional[string]
	Description       Optional[string]
	Completed         Optional[bool]
	DueDate           Optional[*time.Time]
	Priority          Optional[domain.Priority]
	NoteID            Optional[string]
	RecurringType     Optional[domain.RecurringType]
	RecurringInterval Optional[int]
	Reminder          Optional[*time.Time]
}

// Update patches only the supplied fields, always stamping the
// modification time, then reloads the task set.
func (s *TaskService) Update(ctx context.Context, id string, upd TaskUpdate) error {
	if _, ok := s.identity.CurrentUserID(); !ok {
		return errors.NotAuthenticated("update task requires a signed-in user")
	}

	fields := docstore.Document{"updatedAt": s.now()}
	if title, ok := upd.Title.Get(); ok {
		fields["title"] = title
	}
	if desc, ok := upd.Description.Get(); ok {
		fields["description"] = desc
	}
	if completed, ok := upd.Completed.Get(); ok {
		fields["completed"] = completed
	}
	if due, ok := upd.DueDate.Get(); ok {
		fields["dueDate"] = docstore.NullableTime(due)
	}
	if priority, ok := upd.Priority.Get(); ok {
		fields["priority"] = string(priority)
	}
	if noteID, ok := upd.NoteID.Get(); ok {
		fields["noteId"] = noteID
	}
	if rt, ok := upd.RecurringType.Get(); ok {
		fields["recurringType"] = string(rt)
	}
	if interval, ok := upd.RecurringInterval.Get(); ok {
		fields["recurringInterval"] = interval
	}
	if reminder, ok := upd.Reminder.Get(); ok {
		fields["reminder"] = docstore.NullableTime(reminder)
	}

	if err := s.store.Update(ctx, docstore.CollectionTasks, id, fields); err != nil {
		s.log.WithError(err).Error("failed to update task", "task_id", id)
		return errors.StoreFailed(err, "update task")
	}
	return s.Fetch(ctx)
}

// Toggle flips the completion flag. An id absent from the loaded set
// is a no-op.
func (s *TaskService) Toggle(ctx context.Context, id string) error {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return s.Update(ctx, id, TaskUpdate{Completed: Some(!s.tasks[i].Completed)})
		}
	}
	return nil
}

// Delete removes a task and reloads the set.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if _, ok := s.identity.CurrentUserID(); !ok {
		return errors.NotAuthenticated("delete task requires a signed-in user")
	}

	if err := s.store.Delete(ctx, docstore.CollectionTasks, id); err != nil {
		s.log.WithError(err).Error("failed to delete task", "task_id", id)
		return errors.StoreFailed(err, "delete task")
	}
	s.log.Info("task deleted", "task_id", id)

	return s.Fetch(ctx)
}
