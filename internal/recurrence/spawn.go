package recurrence

import (
	"time"

	"github.com/fentz26/todo/internal/models"
)

// Matcher reports whether the next instance of source already exists in tasks.
type Matcher func(source *models.Task, tasks []models.Task) bool

// ByParent finds an instance linked to source through parent_id.
func ByParent(source *models.Task, tasks []models.Task) bool {
	for i := range tasks {
		if p := tasks[i].ParentID; p != nil && *p == source.ID {
			return true
		}
	}
	return false
}

// ByTextLegacy finds a pending task with the same text and frequency.
// Documents written before parent_id existed have no lineage pointers;
// this matcher can go once every stored task carries one.
func ByTextLegacy(source *models.Task, tasks []models.Task) bool {
	for i := range tasks {
		t := &tasks[i]
		if t.ID == source.ID || t.IsDone() {
			continue
		}
		if t.Text == source.Text && t.Recurrence == source.Recurrence {
			return true
		}
	}
	return false
}

// DefaultMatchers is the dedup chain used by OnTaskCompleted, in order.
var DefaultMatchers = []Matcher{ByParent, ByTextLegacy}

// OnTaskCompleted returns the next instance of a completed recurring task,
// or nil if the task does not recur or its next instance already exists.
// The caller inserts the returned task; tasks is not modified.
func OnTaskCompleted(source *models.Task, tasks []models.Task, now time.Time) *models.Task {
	return Spawn(source, tasks, now, DefaultMatchers...)
}

// Spawn is OnTaskCompleted with an explicit matcher chain.
func Spawn(source *models.Task, tasks []models.Task, now time.Time, matchers ...Matcher) *models.Task {
	if !source.Recurrence.Valid() {
		return nil
	}
	for _, exists := range matchers {
		if exists(source, tasks) {
			return nil
		}
	}

	parent := source.ID
	return &models.Task{
		ID:         models.NewID(),
		Text:       source.Text,
		Status:     models.TaskStatusPending,
		Priority:   source.Priority,
		Tags:       append([]string{}, source.Tags...),
		Project:    source.Project,
		DueDate:    NextDueDate(source.DueDate, source.Recurrence),
		Recurrence: source.Recurrence,
		ParentID:   &parent,
		DependsOn:  []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Lineage returns the chain of ancestors of id through parent_id, nearest
// first. Ancestors that no longer exist end the walk.
func Lineage(id string, tasks []models.Task) []models.Task {
	var chain []models.Task
	seen := map[string]bool{id: true}
	cur := models.Find(tasks, id)
	for cur != nil && cur.ParentID != nil && !seen[*cur.ParentID] {
		seen[*cur.ParentID] = true
		cur = models.Find(tasks, *cur.ParentID)
		if cur != nil {
			chain = append(chain, cur.Clone())
		}
	}
	return chain
}
