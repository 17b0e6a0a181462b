package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fentz26/todo/internal/deps"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/tasks"
	"github.com/stretchr/testify/assert"
)

var today = models.MustDate("2026-02-13")

func TestDueText(t *testing.T) {
	date := func(s string) *models.Date {
		d := models.MustDate(s)
		return &d
	}
	assert.Equal(t, "", DueText(nil, today))
	assert.Equal(t, "due today", DueText(date("2026-02-13"), today))
	assert.Equal(t, "in 1 day", DueText(date("2026-02-14"), today))
	assert.Equal(t, "in 5 days", DueText(date("2026-02-18"), today))
	assert.Equal(t, "late 1 day", DueText(date("2026-02-12"), today))
	assert.Equal(t, "late 13 days", DueText(date("2026-01-31"), today))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestTasks(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, today, 7)

	due := models.MustDate("2026-02-10")
	items := []tasks.Item{
		{Task: models.Task{ID: "0123456789ab", Text: "Pay rent", Status: models.TaskStatusPending, Priority: models.PriorityHigh, Tags: []string{"home"}, DueDate: &due}},
		{Task: models.Task{ID: "abcdef012345", Text: "Buy milk", Status: models.TaskStatusDone, Priority: models.PriorityLow}},
		{Task: models.Task{ID: "fedcba987654", Text: "Ship it", Status: models.TaskStatusPending, Priority: models.PriorityMedium}, Blocked: true},
	}
	p.Tasks("All tasks", items)

	out := buf.String()
	assert.Contains(t, out, "All tasks")
	assert.Contains(t, out, "#01234567")
	assert.Contains(t, out, "late 3 days")
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "[~]")
	assert.Contains(t, out, "3 tasks (2 pending, 1 done)")
}

func TestDeps(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, today, 7)

	dep := models.Task{ID: "aaaaaaaa-1", Text: "design", Status: models.TaskStatusDone}
	p.Deps(&deps.View{
		Task: models.Task{ID: "bbbbbbbb-2", Text: "build", Status: models.TaskStatusPending},
		DependsOn: []deps.Edge{
			{ID: dep.ID, State: deps.EdgeDone, Task: &dep},
			{ID: "cccccccc-3", State: deps.EdgeMissing},
		},
		Blocked:     true,
		BlockingIDs: []string{"cccccccc-3"},
	})

	out := buf.String()
	assert.Contains(t, out, "#aaaaaaaa")
	assert.Contains(t, out, "(missing)")
	assert.Contains(t, out, "Blocked by:")
	assert.True(t, strings.Contains(out, "#cccccccc"))
}

func TestCountsAndReport(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, today, 7)

	p.Counts("Tags", []tasks.Count{{Name: "home", Total: 2, Pending: 1}})
	p.Report(&tasks.Report{Tasks: 4})

	out := buf.String()
	assert.Contains(t, out, "home")
	assert.Contains(t, out, "4 tasks checked, no problems found")
}
