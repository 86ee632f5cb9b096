package domain

import (
	"cmp"
	"strings"
	"time"
)

// Priority is the urgency level of a task.
type Priority string

// Task priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank returns the numeric ordering of a priority: high sorts above
// medium, medium above low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// RecurringType describes how a task repeats.
type RecurringType string

// Recurrence kinds.
const (
	RecurringNone    RecurringType = "none"
	RecurringDaily   RecurringType = "daily"
	RecurringWeekly  RecurringType = "weekly"
	RecurringMonthly RecurringType = "monthly"
)

// Task is a user-owned task, optionally linked back to a note.
type Task struct {
	ID                string        `json:"id"`
	UserID            string        `json:"userId"`
	Title             string        `json:"title"`
	Description       string        `json:"description,omitempty"`
	Completed         bool          `json:"completed"`
	DueDate           *time.Time    `json:"dueDate,omitempty"`
	Priority          Priority      `json:"priority"`
	NoteID            string        `json:"noteId,omitempty"`
	NoteTitle         string        `json:"noteTitle,omitempty"`
	RecurringType     RecurringType `json:"recurringType"`
	RecurringInterval int           `json:"recurringInterval"`
	Reminder          *time.Time    `json:"reminder,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// StartOfDay returns midnight of t's calendar day in t's location.
// Day buckets are midnight-to-midnight in local time.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DueToday reports whether the task is incomplete and due within
// [midnight-today, midnight-tomorrow). Tasks without a due date never
// fall in a day bucket.
func (t *Task) DueToday(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	today := StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	return !t.DueDate.Before(today) && t.DueDate.Before(tomorrow)
}

// Overdue reports whether the task is incomplete and due before
// midnight-today.
func (t *Task) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(StartOfDay(now))
}

// Upcoming reports whether the task is incomplete and due at or after
// midnight-tomorrow.
func (t *Task) Upcoming(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	tomorrow := StartOfDay(now).AddDate(0, 0, 1)
	return !t.DueDate.Before(tomorrow)
}

// TaskSortKey selects the field tasks are ordered by.
type TaskSortKey string

// Task sort keys.
const (
	TaskSortDueDate   TaskSortKey = "dueDate"
	TaskSortPriority  TaskSortKey = "priority"
	TaskSortCreatedAt TaskSortKey = "createdAt"
	TaskSortTitle     TaskSortKey = "title"
)

// Compare orders two tasks by the given key, ascending. A missing due
// date compares as the Unix epoch, so undated tasks sort before all
// dated ones ascending. Equal keys return 0; callers use a stable sort
// so ties keep their prior order.
func (t *Task) Compare(other *Task, key TaskSortKey) int {
	switch key {
	case TaskSortTitle:
		return cmp.Compare(strings.ToLower(t.Title), strings.ToLower(other.Title))
	case TaskSortPriority:
		return cmp.Compare(t.Priority.Rank(), other.Priority.Rank())
	case TaskSortCreatedAt:
		return t.CreatedAt.Compare(other.CreatedAt)
	default:
		return cmp.Compare(dueMillis(t.DueDate), dueMillis(other.DueDate))
	}
}

func dueMillis(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixMilli()
}

// TaskStats are aggregate counts over the full loaded task set, not
// the filtered view. Completed tasks are excluded from the day buckets
// by definition.
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	DueToday  int `json:"dueToday"`
	Overdue   int `json:"overdue"`
	Upcoming  int `json:"upcoming"`
}

// ComputeTaskStats recomputes the aggregate counts for a task set at
// the given evaluation time.
func ComputeTaskStats(tasks []Task, now time.Time) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	for i := range tasks {
		t := &tasks[i]
		if t.Completed {
			stats.Completed++
			continue
		}
		switch {
		case t.DueToday(now):
			stats.DueToday++
		case t.Overdue(now):
			stats.Overdue++
		case t.Upcoming(now):
			stats.Upcoming++
		}
	}
	return stats
}
