package store

import (
	"errors"
	"sync"

	"github.com/fentz26/todo/internal/models"
)

// Memory is an in-process Repository. The TUI tests and service tests
// use it in place of a data file.
type Memory struct {
	mu    sync.Mutex
	tasks []models.Task
	saves int
}

var _ Repository = (*Memory)(nil)

// NewMemory returns a Memory seeded with a copy of tasks.
func NewMemory(tasks ...models.Task) *Memory {
	return &Memory{tasks: models.CloneAll(tasks)}
}

// Load implements Repository.
func (m *Memory) Load() ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.CloneAll(m.tasks), nil
}

// Update implements Repository.
func (m *Memory) Update(fn func(tasks []models.Task) ([]models.Task, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(models.CloneAll(m.tasks))
	if errors.Is(err, ErrUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	m.tasks = models.CloneAll(next)
	m.saves++
	return nil
}

// Clear implements Repository.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = nil
	m.saves++
	return nil
}

// Location implements Repository.
func (m *Memory) Location() string {
	return "memory"
}

// Info implements Repository.
func (m *Memory) Info() (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Info{Path: "memory", Exists: true, Tasks: len(m.tasks)}, nil
}

// Saves returns how many writes have been committed.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
