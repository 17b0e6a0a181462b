package deps

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fentz26/todo/internal/models"
)

// Sentinel errors for dependency operations.
var (
	ErrCycle          = errors.New("dependency cycle detected")
	ErrDangling       = errors.New("dependency does not exist")
	ErrBlocked        = errors.New("task is blocked by pending dependencies")
	ErrSelfDependency = errors.New("task cannot depend on itself")
	ErrDuplicateEdge  = errors.New("dependency already exists")
	ErrEdgeNotFound   = errors.New("dependency not found")
	ErrTaskNotFound   = errors.New("task not found")
)

// CycleError reports the path an added edge would close.
// Path starts and ends with the same id.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycle, joinRefs(e.Path, " -> "))
}

func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// DanglingError reports a dependency id with no task behind it.
type DanglingError struct {
	ID string
}

func (e *DanglingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDangling, models.Ref(e.ID))
}

func (e *DanglingError) Is(target error) bool { return target == ErrDangling }

// BlockedError lists the dependencies preventing completion.
type BlockedError struct {
	TaskID      string
	BlockingIDs []string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("task %s is blocked by: %s", models.Ref(e.TaskID), joinRefs(e.BlockingIDs, ", "))
}

func (e *BlockedError) Is(target error) bool { return target == ErrBlocked }

func joinRefs(ids []string, sep string) string {
	refs := make([]string, len(ids))
	for i, id := range ids {
		refs[i] = models.Ref(id)
	}
	return strings.Join(refs, sep)
}
