package tasks

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fentz26/todo/internal/deps"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/store"
	"gopkg.in/yaml.v3"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses an export format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q (want json or yaml)", ErrUnsupportedFormat, s)
}

type exportDoc struct {
	Version int           `json:"version" yaml:"version"`
	Tasks   []models.Task `json:"tasks" yaml:"tasks"`
}

// Export writes every task to w and returns how many were written.
func (s *Service) Export(w io.Writer, format Format) (int, error) {
	all, err := s.repo.Load()
	if err != nil {
		return 0, err
	}
	for i := range all {
		if all[i].Tags == nil {
			all[i].Tags = []string{}
		}
		if all[i].DependsOn == nil {
			all[i].DependsOn = []string{}
		}
	}
	doc := exportDoc{Version: store.DocumentVersion, Tasks: all}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return 0, fmt.Errorf("encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return 0, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return 0, fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return len(all), nil
}

// Severity grades a Check issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding of Check.
type Issue struct {
	Severity Severity
	TaskID   string
	Message  string
}

// Report is the result of Check.
type Report struct {
	Tasks  int
	Issues []Issue
}

// OK reports whether the report has no errors. Warnings are allowed.
func (r *Report) OK() bool {
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			return false
		}
	}
	return true
}

func (r *Report) add(sev Severity, taskID, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{Severity: sev, TaskID: taskID, Message: fmt.Sprintf(format, args...)})
}

// validator is implemented by repositories that can check their raw
// document before decoding it.
type validator interface {
	Validate() ([]store.Problem, error)
}

// Check inspects the data file for schema violations and for graph
// states that the service never produces itself: duplicate ids,
// self-dependencies, cycles and recurring tasks without a due date.
// Dangling dependencies are reported as warnings since removing a task
// legitimately leaves them behind.
func (s *Service) Check() (*Report, error) {
	r := &Report{}

	if v, ok := s.repo.(validator); ok {
		problems, err := v.Validate()
		if err != nil {
			return nil, err
		}
		for _, p := range problems {
			r.add(SeverityError, "", "schema: %s", p)
		}
		if len(problems) > 0 {
			return r, nil
		}
	}

	all, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	r.Tasks = len(all)

	seen := make(map[string]bool, len(all))
	for i := range all {
		t := &all[i]
		if seen[t.ID] {
			r.add(SeverityError, t.ID, "duplicate id %s", t.ID)
		}
		seen[t.ID] = true

		for _, dep := range t.DependsOn {
			switch {
			case dep == t.ID:
				r.add(SeverityError, t.ID, "%s depends on itself", t.Ref())
			case models.Find(all, dep) == nil:
				r.add(SeverityWarning, t.ID, "%s depends on missing task %s", t.Ref(), models.Ref(dep))
			}
		}
		if t.Recurrence.Valid() && t.DueDate == nil {
			r.add(SeverityError, t.ID, "%s recurs %s but has no due date", t.Ref(), t.Recurrence)
		}
	}

	if cycle := deps.FindCycle(all); cycle != nil {
		err := &deps.CycleError{Path: cycle}
		r.add(SeverityError, cycle[0], "%v", err)
	}

	s.logger.Debug("check finished", "tasks", r.Tasks, "issues", len(r.Issues))
	return r, nil
}
