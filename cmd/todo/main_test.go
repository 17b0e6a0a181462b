package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fentz26/todo/internal/deps"
	"github.com/fentz26/todo/internal/tasks"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so that tests sharing
// the package-level command tree do not leak values into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

type cli struct {
	t    *testing.T
	dir  string
	data string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv("TODO_DATA_FILE", "")
	t.Setenv("TODO_LOG_LEVEL", "")
	dir := t.TempDir()
	return &cli{t: t, dir: dir, data: filepath.Join(dir, "todos.json")}
}

// run executes the command line with stdin and returns stdout.
func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(c.dir, "config.toml"), "--file", c.data}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (c *cli) must(args ...string) string {
	c.t.Helper()
	out, err := c.run("", args...)
	require.NoError(c.t, err, "todo %s", strings.Join(args, " "))
	return out
}

var refPattern = regexp.MustCompile(`#[0-9a-f]{8}`)

// add creates a task and returns its short reference.
func (c *cli) add(args ...string) string {
	c.t.Helper()
	out := c.must(append([]string{"add"}, args...)...)
	ref := refPattern.FindString(out)
	require.NotEmpty(c.t, ref, "no task reference in %q", out)
	return ref
}

func (c *cli) stored() []map[string]interface{} {
	c.t.Helper()
	data, err := os.ReadFile(c.data)
	require.NoError(c.t, err)
	var doc struct {
		Tasks []map[string]interface{} `json:"tasks"`
	}
	require.NoError(c.t, json.Unmarshal(data, &doc))
	return doc.Tasks
}

func TestAddAndList(t *testing.T) {
	c := newCLI(t)

	ref := c.add("Write", "report", "--priority", "high", "-t", "work,Urgent", "-p", "Q1")
	out := c.must("list")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, ref)
	assert.Contains(t, out, "1 task (1 pending, 0 done)")

	stored := c.stored()
	require.Len(t, stored, 1)
	assert.Equal(t, "high", stored[0]["priority"])
	assert.Equal(t, []interface{}{"work", "urgent"}, stored[0]["tags"])
	assert.Equal(t, "Q1", stored[0]["project"])
}

func TestListEmptyIsNotAnError(t *testing.T) {
	c := newCLI(t)
	out := c.must("ls")
	assert.Contains(t, out, "No tasks found.")
}

func TestListRejectsBadFilter(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "list", "--status", "later")
	assert.Error(t, err)
}

func TestDependencyBlocksCompletion(t *testing.T) {
	c := newCLI(t)
	first := c.add("Design schema")
	second := c.add("Write migrations", "--depends-on", first)

	_, err := c.run("", "done", second)
	require.Error(t, err)
	assert.ErrorIs(t, err, deps.ErrBlocked)
	assert.Contains(t, err.Error(), first)

	out := c.must("deps", second)
	assert.Contains(t, out, "Blocked by:")

	c.must("done", first)
	out = c.must("complete", second)
	assert.Contains(t, out, "marked as done")
}

func TestDoneSpawnsNextOccurrence(t *testing.T) {
	c := newCLI(t)
	ref := c.add("Water plants", "--due", "2099-03-01", "--recurrence", "weekly")

	out := c.must("done", ref)
	assert.Contains(t, out, "Next weekly occurrence created")
	assert.Contains(t, out, "2099-03-08")
	assert.Len(t, c.stored(), 2)

	c.must("undone", ref)
	c.must("done", ref)
	assert.Len(t, c.stored(), 2, "completing again must not spawn a duplicate")
}

func TestRemoveConfirmation(t *testing.T) {
	c := newCLI(t)
	ref := c.add("Old idea")

	out, err := c.run("n\n", "remove", ref)
	require.NoError(t, err)
	assert.Contains(t, out, "Removal cancelled.")
	assert.Len(t, c.stored(), 1)

	out, err = c.run("y\n", "rm", ref)
	require.NoError(t, err)
	assert.Contains(t, out, "Task removed: Old idea")
	assert.Empty(t, c.stored())
}

func TestRemoveLeavesDanglingDependency(t *testing.T) {
	c := newCLI(t)
	first := c.add("First")
	second := c.add("Second", "--depends-on", first)

	out := c.must("remove", "--yes", first)
	assert.Contains(t, out, second)

	out = c.must("deps", second)
	assert.Contains(t, out, "(missing)")

	out, err := c.run("", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "warning")
}

func TestEdit(t *testing.T) {
	c := newCLI(t)
	ref := c.add("Draft", "-t", "work")

	out := c.must("edit", ref, "--text", "Final draft", "--add-tag", "review", "--project", "Docs")
	assert.Contains(t, out, "updated")

	stored := c.stored()[0]
	assert.Equal(t, "Final draft", stored["text"])
	assert.Equal(t, []interface{}{"work", "review"}, stored["tags"])
	assert.Equal(t, "Docs", stored["project"])

	out = c.must("edit", ref, "--text", "Final draft")
	assert.Contains(t, out, "No changes made")

	_, err := c.run("", "edit", ref, "--project", "X", "--clear-project")
	assert.Error(t, err)
}

func TestEditRejectsCycle(t *testing.T) {
	c := newCLI(t)
	a := c.add("A")
	b := c.add("B", "--depends-on", a)

	_, err := c.run("", "edit", a, "--add-dep", b)
	require.Error(t, err)
	assert.ErrorIs(t, err, deps.ErrCycle)
}

func TestRecurCommands(t *testing.T) {
	c := newCLI(t)
	ref := c.add("Standup", "--due", "2099-01-05")

	out := c.must("recur", ref, "daily")
	assert.Contains(t, out, "now repeats daily")
	out = c.must("recur", ref, "daily")
	assert.Contains(t, out, "already repeats daily")

	_, err := c.run("", "recur", ref, "hourly")
	assert.ErrorIs(t, err, tasks.ErrInvalidRecurrence)

	out = c.must("norecur", ref)
	assert.Contains(t, out, "Recurrence removed")
	out = c.must("clear-recur", ref)
	assert.Contains(t, out, "does not repeat")
}

func TestClear(t *testing.T) {
	c := newCLI(t)
	c.add("One")
	c.add("Two")

	out, err := c.run("no\n", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Clear cancelled.")
	assert.Len(t, c.stored(), 2)

	out = c.must("reset", "--yes")
	assert.Contains(t, out, "Removed 2 tasks")
	assert.Empty(t, c.stored())
}

func TestExport(t *testing.T) {
	c := newCLI(t)
	c.add("Export me", "-t", "io")

	out := c.must("export", "--format", "yaml")
	assert.Contains(t, out, "version: 1")
	assert.Contains(t, out, "text: Export me")

	target := filepath.Join(c.dir, "backup.json")
	out = c.must("export", "-o", target)
	assert.Contains(t, out, "Exported 1 tasks")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"text": "Export me"`)

	_, err = c.run("", "export", "--format", "csv")
	assert.ErrorIs(t, err, tasks.ErrUnsupportedFormat)
}

func TestQueriesOnEmptyStore(t *testing.T) {
	c := newCLI(t)
	assert.Contains(t, c.must("tags"), "No tags found.")
	assert.Contains(t, c.must("projects"), "No projects found.")
	assert.Contains(t, c.must("stats"), "No tasks yet.")
	assert.Contains(t, c.must("search", "anything"), "No tasks match")
	assert.Contains(t, c.must("info"), "not created yet")
}

func TestCheckReportsCorruptFile(t *testing.T) {
	c := newCLI(t)
	require.NoError(t, os.WriteFile(c.data, []byte(`{"version":1,"tasks":[{"id":"x","text":"t","priority":"urgent"}]}`), 0o644))

	out, err := c.run("", "check")
	require.Error(t, err)
	assert.Contains(t, out, "schema")
}

func TestUnknownTask(t *testing.T) {
	c := newCLI(t)
	c.add("Only task")

	_, err := c.run("", "show", "ffffffff")
	assert.ErrorIs(t, err, tasks.ErrTaskNotFound)

	_, err = c.run("", "done", "ab")
	assert.ErrorIs(t, err, tasks.ErrIDTooShort)
}
