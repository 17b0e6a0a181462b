// Package store persists the task collection as a single JSON document.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fentz26/todo/internal/models"
	"github.com/gofrs/flock"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DocumentVersion is written into every saved document.
const DocumentVersion = 1

// Repository is the persistence boundary used by the service layer.
type Repository interface {
	// Load returns every task in stored order.
	Load() ([]models.Task, error)
	// Update loads the collection, applies fn and saves the result while
	// holding the store lock. When fn fails nothing is written.
	Update(fn func(tasks []models.Task) ([]models.Task, error)) error
	// Clear deletes every task.
	Clear() error
	// Location describes where the data lives.
	Location() string
	// Info reports metadata about the backing file.
	Info() (Info, error)
}

// Info describes the data file.
type Info struct {
	Path     string
	Exists   bool
	Size     int64
	Modified time.Time
	Tasks    int
}

// Store provides access to the JSON data file.
type Store struct {
	path   string
	lock   *flock.Flock
	schema *jsonschema.Schema

	// afterRead runs between the unlocked read of Load and its migration
	// write. Tests use it to interleave another writer.
	afterRead func()
}

var _ Repository = (*Store)(nil)

// New creates a Store for path. The parent directory is created if needed;
// the file itself is only written on the first save.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		schema: schema,
	}, nil
}

// Location returns the data file path.
func (s *Store) Location() string {
	return s.path
}

// Load reads all tasks. A missing file is an empty collection. Tasks
// without an id are assigned one and the document is rewritten so the
// ids stay stable across loads.
func (s *Store) Load() ([]models.Task, error) {
	tasks, migrated, err := s.read()
	if err != nil {
		return nil, err
	}
	if !migrated {
		return tasks, nil
	}
	if s.afterRead != nil {
		s.afterRead()
	}

	// Another writer may have committed since the unlocked read, so the
	// migration is redone on what is on disk under the lock.
	err = s.withLock(func() error {
		fresh, stillMigrated, err := s.read()
		if err != nil {
			return err
		}
		tasks = fresh
		if !stillMigrated {
			return nil
		}
		return s.write(fresh)
	})
	if err != nil {
		return nil, fmt.Errorf("save migrated ids: %w", err)
	}
	return tasks, nil
}

// Update implements Repository.
func (s *Store) Update(fn func(tasks []models.Task) ([]models.Task, error)) error {
	return s.withLock(func() error {
		tasks, _, err := s.read()
		if err != nil {
			return err
		}
		next, err := fn(tasks)
		if errors.Is(err, ErrUnchanged) {
			return nil
		}
		if err != nil {
			return err
		}
		return s.write(next)
	})
}

// Save replaces the stored collection.
func (s *Store) Save(tasks []models.Task) error {
	return s.withLock(func() error { return s.write(tasks) })
}

// Clear implements Repository.
func (s *Store) Clear() error {
	return s.Save(nil)
}

// Info implements Repository.
func (s *Store) Info() (Info, error) {
	info := Info{Path: s.path}
	st, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("stat data file: %w", err)
	}
	info.Exists = true
	info.Size = st.Size()
	info.Modified = st.ModTime()

	tasks, _, err := s.read()
	if err != nil {
		return info, err
	}
	info.Tasks = len(tasks)
	return info, nil
}

// Validate checks the data file against the document schema without
// decoding it into tasks. A missing file has no problems.
func (s *Store) Validate() ([]Problem, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return validateDocument(s.schema, data)
}

func (s *Store) withLock(fn func() error) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock data file: %w", err)
	}
	defer s.lock.Unlock()
	return fn()
}

func (s *Store) read() ([]models.Task, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Task{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read data file %s: %w", s.path, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []models.Task{}, false, nil
	}

	problems, err := validateDocument(s.schema, data)
	if err != nil {
		return nil, false, err
	}
	if len(problems) > 0 {
		return nil, false, corruptError(problems)
	}

	stored, err := decodeDocument(data)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	tasks := make([]models.Task, 0, len(stored))
	migrated := false
	for i := range stored {
		task, fresh := stored[i].toTask()
		migrated = migrated || fresh
		tasks = append(tasks, task)
	}
	return tasks, migrated, nil
}

func (s *Store) write(tasks []models.Task) error {
	doc := document{Version: DocumentVersion, Tasks: make([]models.Task, len(tasks))}
	for i, t := range tasks {
		if t.Tags == nil {
			t.Tags = []string{}
		}
		if t.DependsOn == nil {
			t.DependsOn = []string{}
		}
		doc.Tasks[i] = t
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func corruptError(problems []Problem) error {
	const shown = 3
	msgs := make([]string, 0, shown)
	for i, p := range problems {
		if i == shown {
			msgs = append(msgs, fmt.Sprintf("and %d more", len(problems)-shown))
			break
		}
		msgs = append(msgs, p.String())
	}
	return fmt.Errorf("%w: %s (run 'todo check' for details)", ErrCorrupt, strings.Join(msgs, "; "))
}
