package tasks

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fentz26/todo/internal/audit"
	"github.com/fentz26/todo/internal/deps"
	"github.com/fentz26/todo/internal/logging"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var clock = time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, seed ...models.Task) (*Service, *store.Memory, *audit.Recorder) {
	t.Helper()
	repo := store.NewMemory(seed...)
	logger := logging.Discard()
	rec := audit.NewRecorder(logger)
	svc := NewService(repo, rec, logger, DefaultOptions())
	svc.Now = func() time.Time { return clock }
	return svc, repo, rec
}

func seedTask(id, text string, dependsOn ...string) models.Task {
	if dependsOn == nil {
		dependsOn = []string{}
	}
	return models.Task{
		ID:        id,
		Text:      text,
		Status:    models.TaskStatusPending,
		Priority:  models.PriorityMedium,
		Tags:      []string{},
		DependsOn: dependsOn,
		CreatedAt: clock.Add(-time.Hour),
		UpdatedAt: clock.Add(-time.Hour),
	}
}

const (
	id1 = "11111111-0000-4000-8000-000000000001"
	id3 = "33333333-0000-4000-8000-000000000003"
	id5 = "55555555-0000-4000-8000-000000000005"
)

func TestAdd(t *testing.T) {
	svc, repo, rec := newTestService(t)

	res, err := svc.Add(AddInput{
		Text:       "  Write report  ",
		Tags:       []string{"Work", "urgent"},
		Project:    "Q1",
		Due:        "tomorrow",
		Recurrence: "weekly",
	})
	require.NoError(t, err)

	task := res.Task
	assert.Equal(t, "Write report", task.Text)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, []string{"work", "urgent"}, task.Tags)
	assert.Equal(t, "2026-02-14", task.DueDate.String())
	assert.Equal(t, models.RecurrenceWeekly, task.Recurrence)
	assert.Nil(t, task.ParentID)
	assert.Equal(t, []string{}, task.DependsOn)
	assert.Equal(t, clock, task.CreatedAt)

	stored, _ := repo.Load()
	require.Len(t, stored, 1)
	assert.Equal(t, task.ID, stored[0].ID)

	entries := rec.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "task.add", entries[0].Action)
	assert.Equal(t, audit.OutcomeSuccess, entries[0].Outcome)
}

func TestAdd_FoldsTagsOntoExisting(t *testing.T) {
	existing := seedTask(id1, "a")
	existing.Tags = []string{"backend"}
	svc, _, _ := newTestService(t, existing)

	res, err := svc.Add(AddInput{Text: "b", Tags: []string{"bakend"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"backend"}, res.Task.Tags)
	require.Len(t, res.TagChanges, 1)
	assert.Equal(t, "bakend", res.TagChanges[0].From)
}

func TestAdd_Rejections(t *testing.T) {
	seed := seedTask(id1, "existing")

	tests := []struct {
		name string
		in   AddInput
		want error
	}{
		{"empty text", AddInput{Text: "   "}, ErrEmptyText},
		{"long text", AddInput{Text: strings.Repeat("x", 501)}, ErrTextTooLong},
		{"bad priority", AddInput{Text: "x", Priority: "urgent"}, nil},
		{"bad tag", AddInput{Text: "x", Tags: []string{"no spaces"}}, nil},
		{"empty project", AddInput{Text: "x", Project: "  "}, ErrEmptyProject},
		{"past due", AddInput{Text: "x", Due: "2026-02-12"}, ErrDueInPast},
		{"recur without due", AddInput{Text: "x", Recurrence: "daily"}, ErrRecurrenceRequiresDue},
		{"bad recurrence", AddInput{Text: "x", Due: "tomorrow", Recurrence: "hourly"}, ErrInvalidRecurrence},
		{"dangling dep", AddInput{Text: "x", DependsOn: []string{"deadbeef"}}, deps.ErrDangling},
		{"duplicate dep", AddInput{Text: "x", DependsOn: []string{"1111", "#11111111"}}, ErrDuplicateDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, rec := newTestService(t, seed)
			_, err := svc.Add(tt.in)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}

			stored, _ := repo.Load()
			assert.Len(t, stored, 1, "rejected add must not persist")
			assert.Equal(t, audit.OutcomeRejected, rec.Entries()[0].Outcome)
		})
	}
}

func TestAdd_DanglingCarriesID(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Add(AddInput{Text: "x", DependsOn: []string{"#cafebabe"}})

	var dangling *deps.DanglingError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, "cafebabe", dangling.ID)
}

func TestResolve(t *testing.T) {
	all := []models.Task{
		seedTask("aaaa1111-0000-4000-8000-000000000000", "one"),
		seedTask("aaaa2222-0000-4000-8000-000000000000", "two"),
	}

	got, err := resolve(all, "#aaaa1")
	require.NoError(t, err)
	assert.Equal(t, "one", got.Text)

	got, err = resolve(all, "AAAA2222-0000-4000-8000-000000000000")
	require.NoError(t, err)
	assert.Equal(t, "two", got.Text)

	_, err = resolve(all, "aaaa")
	var amb *AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.Len(t, amb.Matches, 2)
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = resolve(all, "aa")
	assert.ErrorIs(t, err, ErrIDTooShort)

	_, err = resolve(all, "bbbb")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestEdit(t *testing.T) {
	svc, _, _ := newTestService(t, seedTask(id1, "old"))

	text, prio, project := "new", "high", "Home"
	res, err := svc.Edit(id1[:8], EditInput{
		Text:     &text,
		Priority: &prio,
		Project:  &project,
		AddTags:  []string{"errand"},
	})
	require.NoError(t, err)

	assert.Equal(t, "new", res.Task.Text)
	assert.Equal(t, models.PriorityHigh, res.Task.Priority)
	assert.Equal(t, "Home", res.Task.Project)
	assert.Equal(t, []string{"errand"}, res.Task.Tags)
	assert.Equal(t, clock, res.Task.UpdatedAt)
	assert.Len(t, res.Changes, 4)
}

func TestEdit_NoChangesSkipsSave(t *testing.T) {
	svc, repo, _ := newTestService(t, seedTask(id1, "same"))

	text := "same"
	res, err := svc.Edit(id1, EditInput{Text: &text})
	require.NoError(t, err)
	assert.Empty(t, res.Changes)
	assert.Equal(t, 0, repo.Saves())
}

func TestEdit_CycleRejectedWithoutMutation(t *testing.T) {
	a := seedTask(id1, "a", id3)
	b := seedTask(id3, "b", id5)
	c := seedTask(id5, "c")
	svc, repo, _ := newTestService(t, a, b, c)

	_, err := svc.Edit(id5, EditInput{AddDeps: []string{id1[:8]}})

	var cycle *deps.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{id5, id1, id3, id5}, cycle.Path)

	stored, _ := repo.Load()
	assert.Empty(t, models.Find(stored, id5).DependsOn)
	assert.Equal(t, 0, repo.Saves())
}

func TestEdit_Dependencies(t *testing.T) {
	svc, _, _ := newTestService(t, seedTask(id1, "a", "99999999-dead"), seedTask(id3, "b"), seedTask(id5, "c"))

	res, err := svc.Edit(id1, EditInput{
		RemoveDeps: []string{"9999"},
		AddDeps:    []string{id3, id5},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{id3, id5}, res.Task.DependsOn)

	_, err = svc.Edit(id1, EditInput{RemoveDeps: []string{"99999999"}})
	assert.ErrorIs(t, err, ErrDependencyNotFound)

	_, err = svc.Edit(id1, EditInput{AddDeps: []string{id3}})
	assert.ErrorIs(t, err, ErrDuplicateDependency)

	_, err = svc.Edit(id1, EditInput{AddDeps: []string{id1}})
	assert.ErrorIs(t, err, ErrSelfDependency)

	res, err = svc.Edit(id1, EditInput{ClearDeps: true})
	require.NoError(t, err)
	assert.Empty(t, res.Task.DependsOn)
}

func TestEdit_TagsAndDue(t *testing.T) {
	task := seedTask(id1, "a")
	task.Tags = []string{"home", "garden"}
	due := models.MustDate("2026-02-20")
	task.DueDate = &due
	task.Recurrence = models.RecurrenceDaily
	svc, _, _ := newTestService(t, task)

	res, err := svc.Edit(id1, EditInput{RemoveTags: []string{"HOME"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"garden"}, res.Task.Tags)

	_, err = svc.Edit(id1, EditInput{RemoveTags: []string{"office"}})
	assert.ErrorIs(t, err, ErrTagNotOnTask)

	_, err = svc.Edit(id1, EditInput{ClearDue: true})
	assert.ErrorIs(t, err, ErrRecurrenceRequiresDue)

	past := "2026-01-01"
	res, err = svc.Edit(id1, EditInput{Due: &past})
	require.NoError(t, err, "editing may set a past due date")
	assert.Equal(t, "2026-01-01", res.Task.DueDate.String())
}

func TestDone_BlockedScenario(t *testing.T) {
	svc, repo, _ := newTestService(t, seedTask(id3, "three"), seedTask(id5, "five", id3))

	_, err := svc.Done(id5)
	var blocked *deps.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []string{id3}, blocked.BlockingIDs)

	stored, _ := repo.Load()
	assert.False(t, models.Find(stored, id5).IsDone(), "blocked completion must not change status")

	_, err = svc.Done(id3)
	require.NoError(t, err)
	res, err := svc.Done(id5)
	require.NoError(t, err)
	assert.True(t, res.Task.IsDone())
	assert.Nil(t, res.Next)
}

func TestDone_DanglingDependencyBlocks(t *testing.T) {
	svc, _, _ := newTestService(t, seedTask(id1, "a", "77777777-gone"))
	_, err := svc.Done(id1)
	assert.ErrorIs(t, err, deps.ErrBlocked)
}

func TestDone_RecurringScenario(t *testing.T) {
	task := seedTask(id1, "standup")
	due := models.MustDate("2026-02-13")
	task.DueDate = &due
	task.Recurrence = models.RecurrenceDaily
	svc, repo, rec := newTestService(t, task)

	res, err := svc.Done(id1)
	require.NoError(t, err)
	require.NotNil(t, res.Next)
	assert.Equal(t, id1, *res.Next.ParentID)
	assert.Equal(t, "2026-02-14", res.Next.DueDate.String())
	assert.Equal(t, models.TaskStatusPending, res.Next.Status)
	assert.Equal(t, clock, *res.Task.CompletedAt)

	_, err = svc.Done(id1)
	assert.ErrorIs(t, err, ErrAlreadyDone)

	_, err = svc.Undone(id1)
	require.NoError(t, err)
	res, err = svc.Done(id1)
	require.NoError(t, err)
	assert.Nil(t, res.Next, "existing child must not be duplicated")

	stored, _ := repo.Load()
	assert.Len(t, stored, 2)

	var spawns int
	for _, e := range rec.Entries() {
		if e.Action == "recurrence.spawn" {
			spawns++
		}
	}
	assert.Equal(t, 1, spawns)
}

func TestUndone(t *testing.T) {
	svc, _, _ := newTestService(t, seedTask(id1, "a"))

	_, err := svc.Undone(id1)
	assert.ErrorIs(t, err, ErrAlreadyPending)

	_, err = svc.Done(id1)
	require.NoError(t, err)
	task, err := svc.Undone(id1)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Nil(t, task.CompletedAt)
}

func TestRemove_LeavesDanglingEdges(t *testing.T) {
	svc, _, _ := newTestService(t, seedTask(id3, "dep"), seedTask(id5, "owner", id3))

	res, err := svc.Remove(id3)
	require.NoError(t, err)
	require.Len(t, res.Dependents, 1)
	assert.Equal(t, id5, res.Dependents[0].ID)

	view, err := svc.Deps(id5)
	require.NoError(t, err)
	assert.True(t, view.Blocked)
	require.Len(t, view.DependsOn, 1)
	assert.Equal(t, deps.EdgeMissing, view.DependsOn[0].State)
}

func TestClear(t *testing.T) {
	svc, repo, _ := newTestService(t, seedTask(id1, "a"), seedTask(id3, "b"))
	n, err := svc.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	stored, _ := repo.Load()
	assert.Empty(t, stored)
}

// staleLoadRepo answers Load with an outdated snapshot while Update sees
// the current collection, as when another process writes in between.
type staleLoadRepo struct {
	*store.Memory
}

func (staleLoadRepo) Load() ([]models.Task, error) { return []models.Task{}, nil }

func TestClear_CountsCollectionItEmpties(t *testing.T) {
	repo := store.NewMemory(seedTask(id1, "a"), seedTask(id3, "b"), seedTask(id5, "c"))
	logger := logging.Discard()
	svc := NewService(staleLoadRepo{repo}, audit.NewRecorder(logger), logger, DefaultOptions())
	svc.Now = func() time.Time { return clock }

	n, err := svc.Clear()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	stored, _ := repo.Load()
	assert.Empty(t, stored)
}

func TestClear_EmptySkipsSave(t *testing.T) {
	svc, repo, _ := newTestService(t)
	n, err := svc.Clear()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, repo.Saves())
}

func TestRecurAndClearRecur(t *testing.T) {
	noDue := seedTask(id1, "no due")
	withDue := seedTask(id3, "with due")
	due := models.MustDate("2026-03-01")
	withDue.DueDate = &due
	svc, _, _ := newTestService(t, noDue, withDue)

	_, err := svc.Recur(id1, "daily")
	assert.ErrorIs(t, err, ErrRecurrenceRequiresDue)

	_, err = svc.Recur(id3, "yearly")
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	res, err := svc.Recur(id3, "Monthly")
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.Equal(t, models.RecurrenceMonthly, res.Task.Recurrence)

	res, err = svc.Recur(id3, "monthly")
	require.NoError(t, err)
	assert.False(t, res.Changed())

	res, err = svc.ClearRecur(id3)
	require.NoError(t, err)
	assert.Equal(t, models.RecurrenceMonthly, res.Previous)
	assert.Equal(t, models.RecurrenceNone, res.Task.Recurrence)

	res, err = svc.ClearRecur(id3)
	require.NoError(t, err)
	assert.False(t, res.Changed())
}

func TestShow_Lineage(t *testing.T) {
	first := seedTask(id1, "water plants")
	first.Status = models.TaskStatusDone
	second := seedTask(id3, "water plants")
	parent := id1
	second.ParentID = &parent
	svc, _, _ := newTestService(t, first, second)

	d, err := svc.Show(id3)
	require.NoError(t, err)
	require.Len(t, d.Lineage, 1)
	assert.Equal(t, id1, d.Lineage[0].ID)

	d, err = svc.Show(id1)
	require.NoError(t, err)
	require.Len(t, d.Spawned, 1)
	assert.Equal(t, id3, d.Spawned[0].ID)
}

func TestExport(t *testing.T) {
	task := seedTask(id1, "export me")
	due := models.MustDate("2026-03-01")
	task.DueDate = &due
	svc, _, _ := newTestService(t, task)

	var buf bytes.Buffer
	n, err := svc.Export(&buf, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var doc struct {
		Version int `yaml:"version"`
		Tasks   []struct {
			ID      string `yaml:"id"`
			Text    string `yaml:"text"`
			DueDate string `yaml:"due_date"`
		} `yaml:"tasks"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "export me", doc.Tasks[0].Text)
	assert.Equal(t, "2026-03-01", doc.Tasks[0].DueDate)

	buf.Reset()
	_, err = svc.Export(&buf, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"due_date": "2026-03-01"`)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCheck(t *testing.T) {
	a := seedTask(id1, "a", id3)
	b := seedTask(id3, "b", id1)
	c := seedTask(id5, "c", "88888888-gone")
	c.Recurrence = models.RecurrenceDaily
	svc, _, _ := newTestService(t, a, b, c)

	r, err := svc.Check()
	require.NoError(t, err)
	assert.False(t, r.OK())
	assert.Equal(t, 3, r.Tasks)

	var cycle, dangling, noDue bool
	for _, is := range r.Issues {
		switch {
		case strings.Contains(is.Message, "cycle"):
			cycle = true
		case strings.Contains(is.Message, "missing task"):
			dangling = is.Severity == SeverityWarning
		case strings.Contains(is.Message, "no due date"):
			noDue = true
		}
	}
	assert.True(t, cycle)
	assert.True(t, dangling)
	assert.True(t, noDue)
}

func TestCheck_Clean(t *testing.T) {
	svc, _, _ := newTestService(t, seedTask(id1, "a"))
	r, err := svc.Check()
	require.NoError(t, err)
	assert.True(t, r.OK())
	assert.Empty(t, r.Issues)
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrAlreadyDone, ErrAlreadyPending))
	assert.True(t, errors.Is(ErrTaskNotFound, deps.ErrTaskNotFound))
}
