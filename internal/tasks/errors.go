package tasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fentz26/todo/internal/deps"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/recurrence"
)

// Sentinel errors for task operations.
var (
	ErrTaskNotFound          = deps.ErrTaskNotFound
	ErrTaskBlocked           = deps.ErrBlocked
	ErrSelfDependency        = deps.ErrSelfDependency
	ErrDuplicateDependency   = deps.ErrDuplicateEdge
	ErrDependencyNotFound    = deps.ErrEdgeNotFound
	ErrInvalidRecurrence     = recurrence.ErrInvalidFrequency
	ErrAmbiguousID           = errors.New("ambiguous task id")
	ErrIDTooShort            = errors.New("task id prefix too short")
	ErrEmptyText             = errors.New("task text cannot be empty")
	ErrTextTooLong           = errors.New("task text too long")
	ErrEmptyProject          = errors.New("project name cannot be empty")
	ErrProjectTooLong        = errors.New("project name too long")
	ErrDueInPast             = errors.New("due date cannot be in the past")
	ErrRecurrenceRequiresDue = errors.New("recurring tasks must have a due date")
	ErrAlreadyDone           = errors.New("task is already completed")
	ErrAlreadyPending        = errors.New("task is already pending")
	ErrTagNotOnTask          = errors.New("tag not present on task")
	ErrTagNotFound           = errors.New("tag not found in any task")
	ErrProjectNotFound       = errors.New("project not found in any task")
	ErrNoTasksFound          = errors.New("no tasks found matching the specified filters")
	ErrNoSearchResults       = errors.New("search returned no results")
	ErrNoTagsFound           = errors.New("no tags found in any task")
	ErrNoProjectsFound       = errors.New("no projects found in any task")
	ErrUnsupportedFormat     = errors.New("unsupported export format")
)

// AmbiguousError lists the tasks a short id prefix matches.
type AmbiguousError struct {
	Prefix  string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	refs := make([]string, len(e.Matches))
	for i, id := range e.Matches {
		refs[i] = models.Ref(id)
	}
	return fmt.Sprintf("ambiguous task id %q matches %s (type more characters)", e.Prefix, strings.Join(refs, ", "))
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguousID }
