package tasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fentz26/todo/internal/deps"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/store"
	"github.com/fentz26/todo/internal/tags"
)

// EditInput is a partial update. Nil pointers and empty slices leave the
// corresponding field alone. Clear flags win over the matching setter.
type EditInput struct {
	Text         *string  `json:"text,omitempty"`
	Priority     *string  `json:"priority,omitempty"`
	Project      *string  `json:"project,omitempty"`
	ClearProject bool     `json:"clear_project,omitempty"`
	Due          *string  `json:"due,omitempty"`
	ClearDue     bool     `json:"clear_due,omitempty"`
	AddTags      []string `json:"add_tags,omitempty"`
	RemoveTags   []string `json:"remove_tags,omitempty"`
	ClearTags    bool     `json:"clear_tags,omitempty"`
	AddDeps      []string `json:"add_deps,omitempty"`
	RemoveDeps   []string `json:"remove_deps,omitempty"`
	ClearDeps    bool     `json:"clear_deps,omitempty"`
}

// Change is one applied field update.
type Change struct {
	Field  string
	Detail string
}

func (c Change) String() string {
	return c.Field + " -> " + c.Detail
}

// EditResult is the updated task and what changed. An empty Changes
// means nothing was written.
type EditResult struct {
	Task       models.Task
	Changes    []Change
	TagChanges []tags.Change
}

// Edit applies a partial update. Any failing part rejects the whole edit.
func (s *Service) Edit(ref string, in EditInput) (*EditResult, error) {
	var res EditResult
	err := s.repo.Update(func(all []models.Task) ([]models.Task, error) {
		task, err := resolve(all, ref)
		if err != nil {
			return nil, err
		}
		e := &editor{svc: s, all: all, task: task}
		if err := e.apply(in); err != nil {
			return nil, err
		}

		res.Changes = e.changes
		res.TagChanges = e.tagChanges
		if len(e.changes) == 0 {
			res.Task = task.Clone()
			return nil, store.ErrUnchanged
		}
		task.Touch(s.Now())
		res.Task = task.Clone()
		return all, nil
	})
	s.record("task.edit", in, res.Task.ID, err)
	if err != nil {
		return nil, err
	}
	if len(res.Changes) > 0 {
		s.logger.Debug("task edited", "id", res.Task.Ref(), "changes", len(res.Changes))
	}
	return &res, nil
}

// editor mutates task, which points into all.
type editor struct {
	svc        *Service
	all        []models.Task
	task       *models.Task
	changes    []Change
	tagChanges []tags.Change
}

func (e *editor) note(field, format string, args ...interface{}) {
	e.changes = append(e.changes, Change{Field: field, Detail: fmt.Sprintf(format, args...)})
}

func (e *editor) apply(in EditInput) error {
	steps := []func(EditInput) error{
		e.text,
		e.priority,
		e.project,
		e.tags,
		e.due,
		e.deps,
	}
	for _, step := range steps {
		if err := step(in); err != nil {
			return err
		}
	}
	return nil
}

func (e *editor) text(in EditInput) error {
	if in.Text == nil {
		return nil
	}
	text, err := validateText(*in.Text)
	if err != nil {
		return err
	}
	if text != e.task.Text {
		e.task.Text = text
		e.note("text", "%s", text)
	}
	return nil
}

func (e *editor) priority(in EditInput) error {
	if in.Priority == nil {
		return nil
	}
	p, err := models.ParsePriority(*in.Priority)
	if err != nil {
		return err
	}
	if p != e.task.Priority {
		e.task.Priority = p
		e.note("priority", "%s", p.Letter())
	}
	return nil
}

func (e *editor) project(in EditInput) error {
	if in.ClearProject {
		if e.task.Project != "" {
			e.note("project", "cleared (was %s)", e.task.Project)
			e.task.Project = ""
		}
		return nil
	}
	if in.Project == nil {
		return nil
	}
	name, err := validateProject(*in.Project)
	if err != nil {
		return err
	}
	if name != e.task.Project {
		e.task.Project = name
		e.note("project", "%s", name)
	}
	return nil
}

func (e *editor) tags(in EditInput) error {
	if in.ClearTags {
		if len(e.task.Tags) > 0 {
			e.note("tags", "cleared (was %s)", strings.Join(e.task.Tags, ", "))
			e.task.Tags = []string{}
		}
		return nil
	}

	if len(in.RemoveTags) > 0 {
		drop := make(map[string]bool, len(in.RemoveTags))
		for _, t := range in.RemoveTags {
			drop[strings.ToLower(strings.TrimSpace(t))] = true
		}
		var kept, removed []string
		for _, t := range e.task.Tags {
			if drop[t] {
				removed = append(removed, t)
				continue
			}
			kept = append(kept, t)
		}
		if len(removed) == 0 {
			return fmt.Errorf("%w: none of [%s] are on %s", ErrTagNotOnTask, strings.Join(in.RemoveTags, ", "), e.task.Ref())
		}
		if kept == nil {
			kept = []string{}
		}
		e.task.Tags = kept
		e.note("removed tags", "%s", strings.Join(removed, ", "))
	}

	if len(in.AddTags) > 0 {
		if err := tags.Validate(in.AddTags); err != nil {
			return err
		}
		normalized, changes := tags.Normalize(in.AddTags, tags.Collect(e.all), e.svc.opts.FuzzyTags)
		e.tagChanges = append(e.tagChanges, changes...)
		var added []string
		for _, t := range normalized {
			if !e.task.HasTag(t) {
				e.task.Tags = append(e.task.Tags, t)
				added = append(added, t)
			}
		}
		if len(added) > 0 {
			e.note("added tags", "%s", strings.Join(added, ", "))
		}
	}
	return nil
}

func (e *editor) due(in EditInput) error {
	if in.ClearDue {
		if e.task.DueDate == nil {
			return nil
		}
		if e.task.Recurrence.Valid() {
			return fmt.Errorf("%w: run 'todo norecur %s' first", ErrRecurrenceRequiresDue, e.task.Ref())
		}
		e.task.DueDate = nil
		e.note("due date", "cleared")
		return nil
	}
	if in.Due == nil {
		return nil
	}
	d, err := e.svc.ParseDue(*in.Due)
	if err != nil {
		return err
	}
	if e.task.DueDate == nil || !e.task.DueDate.Equal(d) {
		e.task.DueDate = &d
		e.note("due date", "%s", d)
	}
	return nil
}

// deps clears, then removes, then adds. Removal never needs a cycle check;
// every addition is validated against the graph as it stands after the
// previous step.
func (e *editor) deps(in EditInput) error {
	if in.ClearDeps {
		if removed := deps.ClearEdges(e.task); len(removed) > 0 {
			e.note("dependencies", "cleared (was %s)", refs(removed))
		}
	}

	var removed []string
	for _, ref := range in.RemoveDeps {
		id, err := matchID(e.task.DependsOn, ref)
		if errors.Is(err, ErrTaskNotFound) {
			return fmt.Errorf("%w: %s does not depend on #%s", ErrDependencyNotFound, e.task.Ref(), normalizeRef(ref))
		}
		if err != nil {
			return err
		}
		if err := deps.RemoveEdge(e.task, id); err != nil {
			return err
		}
		removed = append(removed, id)
	}
	if len(removed) > 0 {
		e.note("removed deps", "%s", refs(removed))
	}

	var added []string
	for _, ref := range in.AddDeps {
		dep, err := resolveDependency(e.all, ref)
		if err != nil {
			return err
		}
		if err := deps.AddEdge(e.all, e.task.ID, dep.ID); err != nil {
			if errors.Is(err, deps.ErrDuplicateEdge) {
				return fmt.Errorf("%w: %s already depends on %s", err, e.task.Ref(), dep.Ref())
			}
			return err
		}
		added = append(added, dep.ID)
	}
	if len(added) > 0 {
		e.note("added deps", "%s", refs(added))
	}
	return nil
}

func refs(ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = models.Ref(id)
	}
	return strings.Join(out, ", ")
}
