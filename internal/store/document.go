package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fentz26/todo/internal/models"
)

type document struct {
	Version int           `json:"version"`
	Tasks   []models.Task `json:"tasks"`
}

// storedTask accepts both the current layout and older files that carry
// "uuid" instead of "id", a "completed" flag instead of "status" and
// date-only timestamps.
type storedTask struct {
	models.Task
	UUID        string    `json:"uuid,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	CreatedAt   flexTime  `json:"created_at"`
	UpdatedAt   flexTime  `json:"updated_at"`
	CompletedAt *flexTime `json:"completed_at"`
}

func decodeDocument(data []byte) ([]storedTask, error) {
	if data[0] == '[' {
		var legacy []storedTask
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("decode task list: %w", err)
		}
		return legacy, nil
	}

	var doc struct {
		Version int          `json:"version"`
		Tasks   []storedTask `json:"tasks"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("document version %d is newer than supported version %d", doc.Version, DocumentVersion)
	}
	return doc.Tasks, nil
}

// toTask converts the stored form. The bool reports whether a new id
// had to be generated.
func (st storedTask) toTask() (models.Task, bool) {
	t := st.Task
	t.CreatedAt = st.CreatedAt.Time
	t.UpdatedAt = st.UpdatedAt.Time
	if st.CompletedAt != nil && !st.CompletedAt.IsZero() {
		ts := st.CompletedAt.Time
		t.CompletedAt = &ts
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}

	if t.Status == "" {
		t.Status = models.TaskStatusPending
		if st.Completed != nil && *st.Completed {
			t.Status = models.TaskStatusDone
		}
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.DependsOn == nil {
		t.DependsOn = []string{}
	}
	if t.ParentID != nil && *t.ParentID == "" {
		t.ParentID = nil
	}

	migrated := false
	if t.ID == "" {
		t.ID = st.UUID
	}
	if t.ID == "" {
		t.ID = models.NewID()
		migrated = true
	}
	return t, migrated
}

// flexTime decodes RFC 3339 timestamps and plain YYYY-MM-DD dates.
type flexTime struct {
	time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", models.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			f.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}
