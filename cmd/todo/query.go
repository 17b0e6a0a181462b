package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/tasks"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List and filter tasks",
	Example: `  todo list --project Backend --status pending
  todo list --recurrence daily
  todo list --status pending --priority high --sort due`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Aliases: []string{"find"},
	Short:   "Search task descriptions",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSearch,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show every field of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var depsCmd = &cobra.Command{
	Use:   "deps <id>",
	Short: "Show the dependency graph around a task",
	Long: `Show the dependency graph around a task: the tasks it depends on
with their completion state, the tasks that depend on it, and whether it
is currently blocked.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeps,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags with task counts",
	Args:  cobra.NoArgs,
	RunE:  runTags,
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects with task counts",
	Long: `List every project used across tasks with its pending and total
counts. Use 'todo list --project <name>' to see the tasks of one project.`,
	Args: cobra.NoArgs,
	RunE: runProjects,
}

// filterFlags are the list flags shared by list and search.
type filterFlags struct {
	status     string
	priority   string
	due        string
	sort       string
	tag        string
	project    string
	recurrence string
}

var (
	listFlags   filterFlags
	searchFlags filterFlags
)

func init() {
	f := listCmd.Flags()
	f.StringVar(&listFlags.status, "status", "all", "all, pending, done or blocked")
	f.StringVar(&listFlags.priority, "priority", "", "high, medium or low")
	f.StringVar(&listFlags.due, "due", "", "overdue, soon, with-due or no-due")
	f.StringVarP(&listFlags.sort, "sort", "s", "", "priority, due or created")
	f.StringVarP(&listFlags.tag, "tag", "t", "", "only tasks with this tag")
	f.StringVarP(&listFlags.project, "project", "p", "", "only tasks in this project")
	f.StringVarP(&listFlags.recurrence, "recurrence", "r", "", "daily, weekly, monthly, recurring or non-recurring")

	f = searchCmd.Flags()
	f.StringVar(&searchFlags.status, "status", "all", "all, pending, done or blocked")
	f.StringVarP(&searchFlags.tag, "tag", "t", "", "only tasks with this tag")
	f.StringVarP(&searchFlags.project, "project", "p", "", "only tasks in this project")
}

func (ff filterFlags) filter() (tasks.Filter, error) {
	var (
		f   tasks.Filter
		err error
	)
	if f.Status, err = models.ParseStatusFilter(ff.status); err != nil {
		return f, err
	}
	if ff.priority != "" {
		if f.Priority, err = models.ParsePriority(ff.priority); err != nil {
			return f, err
		}
	}
	if f.Due, err = models.ParseDueFilter(ff.due); err != nil {
		return f, err
	}
	if f.Sort, err = models.ParseSortBy(ff.sort); err != nil {
		return f, err
	}
	if f.Recurrence, err = models.ParseRecurrenceFilter(ff.recurrence); err != nil {
		return f, err
	}
	f.Tag = ff.tag
	f.Project = ff.project
	return f, nil
}

func listTitle(f tasks.Filter) string {
	var parts []string
	if f.Status != models.StatusAll {
		parts = append(parts, string(f.Status))
	}
	if f.Priority != "" {
		parts = append(parts, string(f.Priority)+" priority")
	}
	if f.Due != models.DueAny {
		parts = append(parts, string(f.Due))
	}
	if f.Recurrence != models.RecurAny {
		parts = append(parts, string(f.Recurrence))
	}
	if f.Tag != "" {
		parts = append(parts, "#"+f.Tag)
	}
	if f.Project != "" {
		parts = append(parts, "@"+f.Project)
	}
	if len(parts) == 0 {
		return "Tasks"
	}
	return "Tasks (" + strings.Join(parts, ", ") + ")"
}

func runList(cmd *cobra.Command, args []string) error {
	f, err := listFlags.filter()
	if err != nil {
		return err
	}
	items, err := env.svc.List(f)
	if errors.Is(err, tasks.ErrNoTasksFound) {
		env.out.Note("No tasks found.")
		return nil
	}
	if err != nil {
		return err
	}
	env.out.Tasks(listTitle(f), items)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	f, err := searchFlags.filter()
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")
	items, err := env.svc.Search(query, f)
	if errors.Is(err, tasks.ErrNoSearchResults) {
		env.out.Note("No tasks match %q.", query)
		return nil
	}
	if err != nil {
		return err
	}
	env.out.Tasks(fmt.Sprintf("Search results for %q", query), items)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	d, err := env.svc.Show(args[0])
	if err != nil {
		return err
	}
	env.out.Detail(d)
	return nil
}

func runDeps(cmd *cobra.Command, args []string) error {
	v, err := env.svc.Deps(args[0])
	if err != nil {
		return err
	}
	env.out.Deps(v)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := env.svc.Stats()
	if err != nil {
		return err
	}
	if st.Total == 0 {
		env.out.Note("No tasks yet. Add one with: todo add <description>")
		return nil
	}
	env.out.Stats(st)
	return nil
}

func runTags(cmd *cobra.Command, args []string) error {
	counts, err := env.svc.Tags()
	if errors.Is(err, tasks.ErrNoTagsFound) {
		env.out.Note("No tags found.")
		return nil
	}
	if err != nil {
		return err
	}
	env.out.Counts("Tags", counts)
	return nil
}

func runProjects(cmd *cobra.Command, args []string) error {
	counts, err := env.svc.Projects()
	if errors.Is(err, tasks.ErrNoProjectsFound) {
		env.out.Note("No projects found.")
		return nil
	}
	if err != nil {
		return err
	}
	env.out.Counts("Projects", counts)
	return nil
}
