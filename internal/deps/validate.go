package deps

import (
	"github.com/fentz26/todo/internal/models"
)

// ValidateAddEdge checks that taskID -> depID may be added to tasks.
//
// depID must name an existing task and differ from taskID. If taskID is
// reachable from depID the new edge would close a cycle and a *CycleError
// naming taskID -> depID -> ... -> taskID is returned. taskID itself need
// not exist yet, so the check also covers tasks being created.
func ValidateAddEdge(taskID, depID string, tasks []models.Task) error {
	if taskID == depID {
		return ErrSelfDependency
	}
	if models.Find(tasks, depID) == nil {
		return &DanglingError{ID: depID}
	}

	path := Build(tasks).PathTo(depID, taskID)
	if path == nil {
		return nil
	}
	return &CycleError{Path: append([]string{taskID}, path...)}
}

// AddEdge validates and then appends depID to the task's depends_on.
// tasks is left untouched on error.
func AddEdge(tasks []models.Task, taskID, depID string) error {
	task := models.Find(tasks, taskID)
	if task == nil {
		return ErrTaskNotFound
	}
	if task.DependsOnID(depID) {
		return ErrDuplicateEdge
	}
	if err := ValidateAddEdge(taskID, depID, tasks); err != nil {
		return err
	}
	task.DependsOn = append(task.DependsOn, depID)
	return nil
}

// RemoveEdge drops depID from the task's depends_on. Removing edges cannot
// create a cycle, so no graph search happens.
func RemoveEdge(task *models.Task, depID string) error {
	for i, id := range task.DependsOn {
		if id == depID {
			task.DependsOn = append(task.DependsOn[:i:i], task.DependsOn[i+1:]...)
			return nil
		}
	}
	return ErrEdgeNotFound
}

// ClearEdges removes every dependency of the task and returns what was removed.
func ClearEdges(task *models.Task) []string {
	removed := task.DependsOn
	task.DependsOn = []string{}
	return removed
}

// BlockingIDs lists the task's dependencies that are not done, including
// ids with no task behind them. Done tasks are never blocked.
func BlockingIDs(task *models.Task, tasks []models.Task) []string {
	if task.IsDone() {
		return nil
	}
	var blocking []string
	for _, id := range task.DependsOn {
		dep := models.Find(tasks, id)
		if dep == nil || !dep.IsDone() {
			blocking = append(blocking, id)
		}
	}
	return blocking
}

// ComputeBlocked reports whether a pending task has any unresolved dependency.
func ComputeBlocked(task *models.Task, tasks []models.Task) bool {
	return len(BlockingIDs(task, tasks)) > 0
}

// AssertCompletable fails with *BlockedError if taskID may not be marked done.
func AssertCompletable(taskID string, tasks []models.Task) error {
	task := models.Find(tasks, taskID)
	if task == nil {
		return ErrTaskNotFound
	}
	if blocking := BlockingIDs(task, tasks); len(blocking) > 0 {
		return &BlockedError{TaskID: taskID, BlockingIDs: blocking}
	}
	return nil
}

// EdgeState is the resolution of one dependency edge.
type EdgeState string

const (
	EdgePending EdgeState = "pending"
	EdgeDone    EdgeState = "done"
	EdgeMissing EdgeState = "missing"
)

// Edge is one annotated entry of a dependency view.
type Edge struct {
	ID    string
	State EdgeState
	Task  *models.Task // nil when missing
}

// View is the neighbourhood of one task in the dependency graph.
type View struct {
	Task        models.Task
	DependsOn   []Edge
	RequiredBy  []models.Task
	Blocked     bool
	BlockingIDs []string
}

// DependencyView returns the direct dependencies of taskID with their
// state and every task that depends on it.
func DependencyView(taskID string, tasks []models.Task) (*View, error) {
	task := models.Find(tasks, taskID)
	if task == nil {
		return nil, ErrTaskNotFound
	}

	v := &View{Task: task.Clone()}
	for _, id := range task.DependsOn {
		e := Edge{ID: id, State: EdgeMissing}
		if dep := models.Find(tasks, id); dep != nil {
			c := dep.Clone()
			e.Task = &c
			e.State = EdgePending
			if dep.IsDone() {
				e.State = EdgeDone
			}
		}
		v.DependsOn = append(v.DependsOn, e)
	}

	for i := range tasks {
		if tasks[i].ID != taskID && tasks[i].DependsOnID(taskID) {
			v.RequiredBy = append(v.RequiredBy, tasks[i].Clone())
		}
	}

	v.BlockingIDs = BlockingIDs(task, tasks)
	v.Blocked = len(v.BlockingIDs) > 0
	return v, nil
}
