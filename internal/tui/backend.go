package tui

import (
	"errors"

	"github.com/fentz26/todo/internal/deps"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/tasks"
)

// Backend is the subset of the task service the browser needs.
// *tasks.Service satisfies it.
type Backend interface {
	List(f tasks.Filter) ([]tasks.Item, error)
	Done(ref string) (*tasks.DoneResult, error)
	Undone(ref string) (*models.Task, error)
	Show(ref string) (*tasks.Detail, error)
	Deps(ref string) (*deps.View, error)
}

var _ Backend = (*tasks.Service)(nil)

// loadItems lists tasks, treating an empty result as an empty list
// rather than an error.
func loadItems(b Backend, f tasks.Filter) ([]tasks.Item, error) {
	items, err := b.List(f)
	if errors.Is(err, tasks.ErrNoTasksFound) {
		return nil, nil
	}
	return items, err
}

// toggle flips the completion state of the task with id and returns a
// status line describing what happened.
func toggle(b Backend, it tasks.Item) (string, error) {
	ref := it.Task.ID
	if it.Task.IsDone() {
		t, err := b.Undone(ref)
		if err != nil {
			return "", err
		}
		return "Reopened " + t.Ref(), nil
	}
	res, err := b.Done(ref)
	if err != nil {
		return "", err
	}
	msg := "Completed " + res.Task.Ref()
	if res.Next != nil {
		msg += ", next due " + res.Next.DueDate.String()
	}
	return msg, nil
}

type tasksLoadedMsg struct {
	items []tasks.Item
}

type detailLoadedMsg struct {
	detail *tasks.Detail
	view   *deps.View
}

type toggledMsg struct {
	status string
}

type errMsg struct {
	err error
}

func (e errMsg) Error() string { return e.err.Error() }
