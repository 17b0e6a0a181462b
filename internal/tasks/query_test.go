package tasks

import (
	"testing"
	"time"

	"github.com/fentz26/todo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listFixture() []models.Task {
	overdue := seedTask(id1, "Pay rent")
	d1 := models.MustDate("2026-02-10")
	overdue.DueDate = &d1
	overdue.Priority = models.PriorityHigh
	overdue.Tags = []string{"home"}
	overdue.Project = "Household"
	overdue.CreatedAt = clock.Add(-3 * time.Hour)

	soon := seedTask(id3, "Review PR", id1)
	d2 := models.MustDate("2026-02-15")
	soon.DueDate = &d2
	soon.Priority = models.PriorityLow
	soon.Tags = []string{"work"}
	soon.Recurrence = models.RecurrenceWeekly
	soon.CreatedAt = clock.Add(-1 * time.Hour)

	done := seedTask(id5, "Buy milk")
	done.Status = models.TaskStatusDone
	completed := clock.Add(-24 * time.Hour)
	done.CompletedAt = &completed
	done.Tags = []string{"home"}
	done.Project = "household"
	done.CreatedAt = clock.Add(-2 * time.Hour)

	return []models.Task{overdue, soon, done}
}

func texts(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Task.Text
	}
	return out
}

func TestList_Filters(t *testing.T) {
	svc, _, _ := newTestService(t, listFixture()...)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"Pay rent", "Review PR", "Buy milk"}},
		{"pending", Filter{Status: models.StatusPending}, []string{"Pay rent", "Review PR"}},
		{"done", Filter{Status: models.StatusDone}, []string{"Buy milk"}},
		{"blocked", Filter{Status: models.StatusBlocked}, []string{"Review PR"}},
		{"priority", Filter{Priority: models.PriorityHigh}, []string{"Pay rent"}},
		{"overdue", Filter{Due: models.DueOverdue}, []string{"Pay rent"}},
		{"soon", Filter{Due: models.DueSoon}, []string{"Review PR"}},
		{"no due", Filter{Due: models.DueNoDue}, []string{"Buy milk"}},
		{"tag", Filter{Tag: "HOME"}, []string{"Pay rent", "Buy milk"}},
		{"project ignores case", Filter{Project: "HOUSEHOLD"}, []string{"Pay rent", "Buy milk"}},
		{"recurring", Filter{Recurrence: models.RecurRecurring}, []string{"Review PR"}},
		{"sort priority", Filter{Sort: models.SortPriority}, []string{"Pay rent", "Buy milk", "Review PR"}},
		{"sort due", Filter{Sort: models.SortDue}, []string{"Pay rent", "Review PR", "Buy milk"}},
		{"sort created", Filter{Sort: models.SortCreated}, []string{"Pay rent", "Buy milk", "Review PR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := svc.List(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts(items))
		})
	}
}

func TestList_Errors(t *testing.T) {
	svc, _, _ := newTestService(t, listFixture()...)

	_, err := svc.List(Filter{Tag: "garden"})
	assert.ErrorIs(t, err, ErrTagNotFound)

	_, err = svc.List(Filter{Project: "Work"})
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = svc.List(Filter{Status: models.StatusDone, Due: models.DueOverdue})
	assert.ErrorIs(t, err, ErrNoTasksFound)

	empty, _, _ := newTestService(t)
	_, err = empty.List(Filter{})
	assert.ErrorIs(t, err, ErrNoTasksFound)
}

func TestItemStatus(t *testing.T) {
	svc, _, _ := newTestService(t, listFixture()...)
	items, err := svc.List(Filter{})
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusPending, items[0].Status())
	assert.Equal(t, models.TaskStatusBlocked, items[1].Status())
	assert.Equal(t, models.TaskStatusDone, items[2].Status())
}

func TestSearch(t *testing.T) {
	svc, _, _ := newTestService(t, listFixture()...)

	items, err := svc.Search("RENT", Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pay rent"}, texts(items))

	items, err = svc.Search("r", Filter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pay rent", "Review PR"}, texts(items))

	_, err = svc.Search("dentist", Filter{})
	assert.ErrorIs(t, err, ErrNoSearchResults)
}

func TestTagsAndProjects(t *testing.T) {
	svc, _, _ := newTestService(t, listFixture()...)

	tags, err := svc.Tags()
	require.NoError(t, err)
	assert.Equal(t, []Count{{Name: "home", Total: 2, Pending: 1}, {Name: "work", Total: 1, Pending: 1}}, tags)

	projects, err := svc.Projects()
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	empty, _, _ := newTestService(t, seedTask(id1, "bare"))
	_, err = empty.Tags()
	assert.ErrorIs(t, err, ErrNoTagsFound)
	_, err = empty.Projects()
	assert.ErrorIs(t, err, ErrNoProjectsFound)
}

func TestStats(t *testing.T) {
	svc, _, _ := newTestService(t, listFixture()...)

	st, err := svc.Stats()
	require.NoError(t, err)

	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Completed)
	assert.Equal(t, 2, st.Pending)
	assert.Equal(t, 1, st.Overdue)
	assert.Equal(t, 1, st.DueSoon)
	assert.Equal(t, 1, st.Blocked)
	assert.Equal(t, 33, st.CompletionPercent())
	assert.Equal(t, 1, st.NoProject)

	require.Len(t, st.ByPriority, 3)
	assert.Equal(t, models.PriorityHigh, st.ByPriority[0].Priority)

	require.Len(t, st.Activity, ActivityDays)
	assert.Equal(t, "2026-02-07", st.Activity[0].Date.String())
	assert.Equal(t, "2026-02-13", st.Activity[6].Date.String())
	assert.Equal(t, 1, st.Activity[5].Completed)
}
