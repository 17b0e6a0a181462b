// Package tasks provides the service layer behind every todo command.
package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fentz26/todo/internal/audit"
	"github.com/fentz26/todo/internal/dates"
	"github.com/fentz26/todo/internal/deps"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/recurrence"
	"github.com/fentz26/todo/internal/store"
	"github.com/fentz26/todo/internal/tags"
)

const (
	maxTextLength    = 500
	maxProjectLength = 100
)

// Options tune service behaviour; they come from the config file.
type Options struct {
	DefaultPriority models.Priority
	DueSoonDays     int
	FuzzyTags       bool
}

// DefaultOptions returns the options used without a config file.
func DefaultOptions() Options {
	return Options{
		DefaultPriority: models.PriorityMedium,
		DueSoonDays:     7,
		FuzzyTags:       true,
	}
}

// Service provides the task business logic. Every mutation runs as one
// load-mutate-save cycle through the repository, so a rejected operation
// leaves the stored collection untouched.
type Service struct {
	repo     store.Repository
	recorder *audit.Recorder
	logger   *log.Logger
	dates    *dates.Parser
	opts     Options

	// Now is the service clock.
	Now func() time.Time
}

// NewService creates a new task service.
func NewService(repo store.Repository, rec *audit.Recorder, logger *log.Logger, opts Options) *Service {
	return &Service{
		repo:     repo,
		recorder: rec,
		logger:   logger,
		dates:    dates.NewParser(),
		opts:     opts,
		Now:      time.Now,
	}
}

// Options returns the active options.
func (s *Service) Options() Options {
	return s.opts
}

func (s *Service) today() models.Date {
	return models.DateOf(s.Now())
}

// ParseDue resolves a date phrase relative to the service clock.
func (s *Service) ParseDue(input string) (models.Date, error) {
	d, err := s.dates.Parse(input, s.Now())
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid due date: %w", err)
	}
	return d, nil
}

func (s *Service) record(action string, inputs interface{}, taskID string, err error) {
	outcome, details := audit.OutcomeSuccess, ""
	if err != nil {
		outcome, details = audit.OutcomeRejected, err.Error()
	}
	s.recorder.Record(action, inputs, outcome, taskID, details)
}

// --- Create ---

// AddInput is the raw user input for a new task.
type AddInput struct {
	Text       string   `json:"text"`
	Priority   string   `json:"priority,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Project    string   `json:"project,omitempty"`
	Due        string   `json:"due,omitempty"`
	Recurrence string   `json:"recurrence,omitempty"`
	DependsOn  []string `json:"depends_on,omitempty"`
}

// AddResult is the created task plus any tags folded onto existing ones.
type AddResult struct {
	Task       models.Task
	TagChanges []tags.Change
}

// Add validates the input and appends a new pending task.
func (s *Service) Add(in AddInput) (*AddResult, error) {
	var res AddResult
	err := s.repo.Update(func(all []models.Task) ([]models.Task, error) {
		task, changes, err := s.newTask(in, all)
		if err != nil {
			return nil, err
		}
		res = AddResult{Task: task.Clone(), TagChanges: changes}
		return append(all, task), nil
	})
	s.record("task.add", in, res.Task.ID, err)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("task added", "id", res.Task.Ref(), "priority", res.Task.Priority, "deps", len(res.Task.DependsOn))
	return &res, nil
}

func (s *Service) newTask(in AddInput, all []models.Task) (models.Task, []tags.Change, error) {
	text, err := validateText(in.Text)
	if err != nil {
		return models.Task{}, nil, err
	}

	priority := s.opts.DefaultPriority
	if in.Priority != "" {
		if priority, err = models.ParsePriority(in.Priority); err != nil {
			return models.Task{}, nil, err
		}
	}

	if err := tags.Validate(in.Tags); err != nil {
		return models.Task{}, nil, err
	}
	tagList, changes := tags.Normalize(in.Tags, tags.Collect(all), s.opts.FuzzyTags)
	if tagList == nil {
		tagList = []string{}
	}

	var project string
	if in.Project != "" {
		if project, err = validateProject(in.Project); err != nil {
			return models.Task{}, nil, err
		}
	}

	var due *models.Date
	if in.Due != "" {
		d, err := s.ParseDue(in.Due)
		if err != nil {
			return models.Task{}, nil, err
		}
		if d.Before(s.today()) {
			return models.Task{}, nil, fmt.Errorf("%w: %s", ErrDueInPast, d)
		}
		due = &d
	}

	now := s.Now()
	task := models.Task{
		ID:        models.NewID(),
		Text:      text,
		Status:    models.TaskStatusPending,
		Priority:  priority,
		Tags:      tagList,
		Project:   project,
		DueDate:   due,
		DependsOn: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if in.Recurrence != "" {
		freq, err := recurrence.Parse(in.Recurrence)
		if err != nil {
			return models.Task{}, nil, err
		}
		if due == nil {
			return models.Task{}, nil, ErrRecurrenceRequiresDue
		}
		if err := recurrence.SetRecurrence(&task, freq); err != nil {
			return models.Task{}, nil, err
		}
	}

	for _, ref := range in.DependsOn {
		dep, err := resolveDependency(all, ref)
		if err != nil {
			return models.Task{}, nil, err
		}
		if task.DependsOnID(dep.ID) {
			return models.Task{}, nil, fmt.Errorf("%w: %s", ErrDuplicateDependency, dep.Ref())
		}
		if err := deps.ValidateAddEdge(task.ID, dep.ID, all); err != nil {
			return models.Task{}, nil, err
		}
		task.DependsOn = append(task.DependsOn, dep.ID)
	}

	return task, changes, nil
}

// resolveDependency maps an unknown reference onto DanglingError so the
// caller sees the dependency kind of failure.
func resolveDependency(all []models.Task, ref string) (*models.Task, error) {
	dep, err := resolve(all, ref)
	if errors.Is(err, ErrTaskNotFound) {
		return nil, &deps.DanglingError{ID: normalizeRef(ref)}
	}
	return dep, err
}

func validateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyText
	}
	if len(trimmed) > maxTextLength {
		return "", fmt.Errorf("%w (max: %d characters, actual: %d)", ErrTextTooLong, maxTextLength, len(trimmed))
	}
	return trimmed, nil
}

func validateProject(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyProject
	}
	if len(trimmed) > maxProjectLength {
		return "", fmt.Errorf("%w (max: %d characters, actual: %d)", ErrProjectTooLong, maxProjectLength, len(trimmed))
	}
	return trimmed, nil
}

// --- Status transitions ---

// DoneResult is the completed task and, for recurring tasks, the next
// instance created by the completion.
type DoneResult struct {
	Task models.Task
	Next *models.Task
}

// Done marks a task completed. Blocked tasks are rejected with
// *deps.BlockedError.
func (s *Service) Done(ref string) (*DoneResult, error) {
	var (
		res DoneResult
		id  string
	)
	err := s.repo.Update(func(all []models.Task) ([]models.Task, error) {
		task, err := resolve(all, ref)
		if err != nil {
			return nil, err
		}
		id = task.ID
		if task.IsDone() {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyDone, task.Ref())
		}
		if err := deps.AssertCompletable(task.ID, all); err != nil {
			return nil, err
		}

		now := s.Now()
		task.MarkDone(now)
		res.Task = task.Clone()

		if next := recurrence.OnTaskCompleted(task, all, now); next != nil {
			c := next.Clone()
			res.Next = &c
			all = append(all, *next)
		}
		return all, nil
	})
	s.record("task.done", map[string]string{"ref": ref}, id, err)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("task completed", "id", res.Task.Ref())
	if res.Next != nil {
		s.record("recurrence.spawn", map[string]string{"parent_id": res.Task.ID}, res.Next.ID, nil)
		s.logger.Debug("recurrence generated", "parent", res.Task.Ref(), "id", res.Next.Ref(), "due", res.Next.DueDate)
	}
	return &res, nil
}

// Undone moves a completed task back to pending.
func (s *Service) Undone(ref string) (*models.Task, error) {
	var (
		out models.Task
		id  string
	)
	err := s.repo.Update(func(all []models.Task) ([]models.Task, error) {
		task, err := resolve(all, ref)
		if err != nil {
			return nil, err
		}
		id = task.ID
		if !task.IsDone() {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyPending, task.Ref())
		}
		task.MarkPending(s.Now())
		out = task.Clone()
		return all, nil
	})
	s.record("task.undone", map[string]string{"ref": ref}, id, err)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("task reopened", "id", out.Ref())
	return &out, nil
}

// --- Removal ---

// RemoveResult is the deleted task and the tasks whose dependency on it
// is now dangling.
type RemoveResult struct {
	Task       models.Task
	Dependents []models.Task
}

// Remove deletes a task. Edges pointing at it stay in place and keep
// blocking their owners until removed.
func (s *Service) Remove(ref string) (*RemoveResult, error) {
	var res RemoveResult
	err := s.repo.Update(func(all []models.Task) ([]models.Task, error) {
		task, err := resolve(all, ref)
		if err != nil {
			return nil, err
		}
		res.Task = task.Clone()

		kept := make([]models.Task, 0, len(all)-1)
		for i := range all {
			if all[i].ID == res.Task.ID {
				continue
			}
			if all[i].DependsOnID(res.Task.ID) {
				res.Dependents = append(res.Dependents, all[i].Clone())
			}
			kept = append(kept, all[i])
		}
		return kept, nil
	})
	s.record("task.remove", map[string]string{"ref": ref}, res.Task.ID, err)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("task removed", "id", res.Task.Ref(), "dependents", len(res.Dependents))
	return &res, nil
}

// Clear removes every task and returns how many were deleted. The count
// comes from the same locked read that empties the collection.
func (s *Service) Clear() (int, error) {
	var n int
	err := s.repo.Update(func(all []models.Task) ([]models.Task, error) {
		n = len(all)
		if n == 0 {
			return nil, store.ErrUnchanged
		}
		return nil, nil
	})
	s.record("task.clear", map[string]int{"count": n}, "", err)
	if err != nil {
		return 0, fmt.Errorf("clear tasks: %w", err)
	}
	s.logger.Debug("tasks cleared", "count", n)
	return n, nil
}

// --- Recurrence ---

// RecurResult reports a recurrence change.
type RecurResult struct {
	Task     models.Task
	Previous models.Recurrence
}

// Changed reports whether the frequency actually changed.
func (r RecurResult) Changed() bool {
	return r.Previous != r.Task.Recurrence
}

// Recur sets the frequency of a task. The task must have a due date.
func (s *Service) Recur(ref, freq string) (*RecurResult, error) {
	var res RecurResult
	err := func() error {
		r, err := recurrence.Parse(freq)
		if err != nil {
			return err
		}
		return s.repo.Update(func(all []models.Task) ([]models.Task, error) {
			task, err := resolve(all, ref)
			if err != nil {
				return nil, err
			}
			if task.DueDate == nil {
				return nil, fmt.Errorf("%w: set one with 'todo edit %s --due <date>'", ErrRecurrenceRequiresDue, task.Ref())
			}
			res.Previous = task.Recurrence
			res.Task = task.Clone()
			if task.Recurrence == r {
				return nil, store.ErrUnchanged
			}
			if err := recurrence.SetRecurrence(task, r); err != nil {
				return nil, err
			}
			task.Touch(s.Now())
			res.Task = task.Clone()
			return all, nil
		})
	}()
	s.record("task.recur", map[string]string{"ref": ref, "frequency": freq}, res.Task.ID, err)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ClearRecur stops a task from recurring. Instances already created and
// their parent links are kept.
func (s *Service) ClearRecur(ref string) (*RecurResult, error) {
	var res RecurResult
	err := s.repo.Update(func(all []models.Task) ([]models.Task, error) {
		task, err := resolve(all, ref)
		if err != nil {
			return nil, err
		}
		res.Previous = recurrence.ClearRecurrence(task)
		if res.Previous == models.RecurrenceNone {
			res.Task = task.Clone()
			return nil, store.ErrUnchanged
		}
		task.Touch(s.Now())
		res.Task = task.Clone()
		return all, nil
	})
	s.record("task.norecur", map[string]string{"ref": ref}, res.Task.ID, err)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// --- Lookups ---

// Get resolves a reference to a task.
func (s *Service) Get(ref string) (*models.Task, error) {
	all, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	task, err := resolve(all, ref)
	if err != nil {
		return nil, err
	}
	c := task.Clone()
	return &c, nil
}

// Detail is everything known about one task.
type Detail struct {
	Task        models.Task
	Blocked     bool
	BlockingIDs []string
	// Lineage lists earlier instances of a recurring task, nearest first.
	Lineage []models.Task
	// Spawned lists instances created from this task.
	Spawned []models.Task
}

// Show returns the detail view of a task.
func (s *Service) Show(ref string) (*Detail, error) {
	all, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	task, err := resolve(all, ref)
	if err != nil {
		return nil, err
	}

	d := &Detail{
		Task:        task.Clone(),
		BlockingIDs: deps.BlockingIDs(task, all),
		Lineage:     recurrence.Lineage(task.ID, all),
	}
	d.Blocked = len(d.BlockingIDs) > 0
	for i := range all {
		if p := all[i].ParentID; p != nil && *p == task.ID {
			d.Spawned = append(d.Spawned, all[i].Clone())
		}
	}
	return d, nil
}

// Deps returns the dependency view of a task.
func (s *Service) Deps(ref string) (*deps.View, error) {
	all, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	task, err := resolve(all, ref)
	if err != nil {
		return nil, err
	}
	return deps.DependencyView(task.ID, all)
}

// Info describes the backing data file.
func (s *Service) Info() (store.Info, error) {
	return s.repo.Info()
}
