// Package models defines the core domain types for todo.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the stored state of a task.
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusDone    TaskStatus = "done"

	// TaskStatusBlocked is derived for display and never persisted.
	TaskStatusBlocked TaskStatus = "blocked"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Order returns the sort rank of the priority; lower sorts first.
func (p Priority) Order() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Letter returns the single-letter label used in tables.
func (p Priority) Letter() string {
	switch p {
	case PriorityHigh:
		return "H"
	case PriorityMedium:
		return "M"
	case PriorityLow:
		return "L"
	default:
		return "?"
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Order() < 3
}

// ParsePriority parses a case-insensitive priority name.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q (want high, medium or low)", s)
	}
	return p, nil
}

// Recurrence is the repeat policy of a task. The zero value means none.
type Recurrence string

const (
	RecurrenceNone    Recurrence = ""
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Valid reports whether r is a repeating policy.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Task represents a single todo item.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Text        string     `json:"text" yaml:"text"`
	Status      TaskStatus `json:"status" yaml:"status"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	Tags        []string   `json:"tags" yaml:"tags,omitempty"`
	Project     string     `json:"project,omitempty" yaml:"project,omitempty"`
	DueDate     *Date      `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Recurrence  Recurrence `json:"recurrence,omitempty" yaml:"recurrence,omitempty"`
	ParentID    *string    `json:"parent_id" yaml:"parent_id,omitempty"`
	DependsOn   []string   `json:"depends_on" yaml:"depends_on,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// NewID returns a fresh task identifier.
func NewID() string {
	return uuid.New().String()
}

// ShortID returns the display form of a task id.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// Ref renders an id the way users type it back in.
func Ref(id string) string {
	return "#" + ShortID(id)
}

// Ref is the display reference of the task.
func (t Task) Ref() string {
	return Ref(t.ID)
}

// IsDone reports whether the task has been completed.
func (t *Task) IsDone() bool {
	return t.Status == TaskStatusDone
}

// MarkDone transitions the task to done.
func (t *Task) MarkDone(now time.Time) {
	t.Status = TaskStatusDone
	t.CompletedAt = &now
	t.UpdatedAt = now
}

// MarkPending transitions the task back to pending.
func (t *Task) MarkPending(now time.Time) {
	t.Status = TaskStatusPending
	t.CompletedAt = nil
	t.UpdatedAt = now
}

// Touch bumps updated_at.
func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = now
}

// IsOverdue reports whether a pending task's due date is before today.
func (t *Task) IsOverdue(today Date) bool {
	return !t.IsDone() && t.DueDate != nil && t.DueDate.Before(today)
}

// IsDueSoon reports whether a pending task is due within the next days.
func (t *Task) IsDueSoon(today Date, days int) bool {
	if t.IsDone() || t.DueDate == nil {
		return false
	}
	until := today.DaysUntil(*t.DueDate)
	return until >= 0 && until <= days
}

// HasTag reports whether the task carries tag.
func (t *Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// DependsOnID reports whether id is one of the task's direct dependencies.
func (t *Task) DependsOnID(id string) bool {
	for _, dep := range t.DependsOn {
		if dep == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	c.Tags = append([]string(nil), t.Tags...)
	c.DependsOn = append([]string(nil), t.DependsOn...)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.ParentID != nil {
		p := *t.ParentID
		c.ParentID = &p
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return c
}

// CloneAll deep-copies a task collection.
func CloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}

// Find returns a pointer into tasks for id, or nil.
func Find(tasks []Task, id string) *Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}
