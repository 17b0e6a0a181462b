package main

import (
	"strings"

	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/tags"
	"github.com/fentz26/todo/internal/tasks"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:     "add <description>",
	Aliases: []string{"a"},
	Short:   "Add a new task",
	Long: `Add a new task to the list.

Due dates accept natural language or strict YYYY-MM-DD:
  todo add "Meeting" --due tomorrow
  todo add "Deploy" --due "next friday"
  todo add "Report" --due "in 3 days"

Use --recurrence to repeat the task when it is completed and
--depends-on to block it until other tasks are done.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var doneCmd = &cobra.Command{
	Use:     "done <id>",
	Aliases: []string{"complete"},
	Short:   "Mark a task as completed",
	Args:    cobra.ExactArgs(1),
	RunE:    runDone,
}

var undoneCmd = &cobra.Command{
	Use:     "undone <id>",
	Aliases: []string{"undo"},
	Short:   "Mark a completed task as pending again",
	Args:    cobra.ExactArgs(1),
	RunE:    runUndone,
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

var editCmd = &cobra.Command{
	Use:     "edit <id>",
	Aliases: []string{"e"},
	Short:   "Edit an existing task",
	Long: `Edit an existing task. Only the given fields change.

  todo edit 3fa2 --due "next monday"
  todo edit 3fa2 --add-tag urgent,critical --remove-tag team
  todo edit 3fa2 --project Backend
  todo edit 3fa2 --add-dep 9c01 --remove-dep 77be`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var clearCmd = &cobra.Command{
	Use:     "clear",
	Aliases: []string{"reset"},
	Short:   "Remove all tasks",
	Args:    cobra.NoArgs,
	RunE:    runClear,
}

var recurCmd = &cobra.Command{
	Use:       "recur <id> <daily|weekly|monthly>",
	Short:     "Make a task repeat",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"daily", "weekly", "monthly"},
	RunE:      runRecur,
}

var clearRecurCmd = &cobra.Command{
	Use:     "clear-recur <id>",
	Aliases: []string{"norecur"},
	Short:   "Stop a task from repeating",
	Args:    cobra.ExactArgs(1),
	RunE:    runClearRecur,
}

var (
	addPriority   string
	addTags       []string
	addProject    string
	addDue        string
	addRecurrence string
	addDependsOn  []string

	removeYes bool
	clearYes  bool

	editText         string
	editPriority     string
	editProject      string
	editClearProject bool
	editDue          string
	editClearDue     bool
	editAddTags      []string
	editRemoveTags   []string
	editClearTags    bool
	editAddDeps      []string
	editRemoveDeps   []string
	editClearDeps    bool
)

func init() {
	f := addCmd.Flags()
	f.StringVar(&addPriority, "priority", "", "priority: high, medium or low (default from config)")
	f.StringSliceVarP(&addTags, "tag", "t", nil, "tags, comma separated or repeated")
	f.StringVarP(&addProject, "project", "p", "", "project name")
	f.StringVar(&addDue, "due", "", "due date (YYYY-MM-DD or an expression like \"next friday\")")
	f.StringVar(&addRecurrence, "recurrence", "", "repeat: daily, weekly or monthly (needs --due)")
	f.StringSliceVar(&addDependsOn, "depends-on", nil, "ids of tasks that must be done first")

	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "skip the confirmation prompt")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")

	f = editCmd.Flags()
	f.StringVar(&editText, "text", "", "new description")
	f.StringVar(&editPriority, "priority", "", "new priority")
	f.StringVarP(&editProject, "project", "p", "", "assign to a project")
	f.BoolVar(&editClearProject, "clear-project", false, "remove the project")
	f.StringVar(&editDue, "due", "", "new due date")
	f.BoolVar(&editClearDue, "clear-due", false, "remove the due date")
	f.StringSliceVar(&editAddTags, "add-tag", nil, "tags to add")
	f.StringSliceVar(&editRemoveTags, "remove-tag", nil, "tags to remove")
	f.BoolVar(&editClearTags, "clear-tags", false, "remove every tag")
	f.StringSliceVar(&editAddDeps, "add-dep", nil, "dependencies to add")
	f.StringSliceVar(&editRemoveDeps, "remove-dep", nil, "dependencies to remove")
	f.BoolVar(&editClearDeps, "clear-deps", false, "remove every dependency")
	editCmd.MarkFlagsMutuallyExclusive("project", "clear-project")
	editCmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	editCmd.MarkFlagsMutuallyExclusive("add-tag", "clear-tags")
	editCmd.MarkFlagsMutuallyExclusive("remove-tag", "clear-tags")
	editCmd.MarkFlagsMutuallyExclusive("add-dep", "clear-deps")
	editCmd.MarkFlagsMutuallyExclusive("remove-dep", "clear-deps")
}

func printTagChanges(changes []tags.Change) {
	for _, c := range changes {
		env.out.Warn("Tag normalized: %s", c)
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	res, err := env.svc.Add(tasks.AddInput{
		Text:       strings.Join(args, " "),
		Priority:   addPriority,
		Tags:       addTags,
		Project:    addProject,
		Due:        addDue,
		Recurrence: addRecurrence,
		DependsOn:  addDependsOn,
	})
	if err != nil {
		return err
	}

	printTagChanges(res.TagChanges)
	t := res.Task
	if t.Recurrence != models.RecurrenceNone {
		env.out.Success("Added task %s with %s recurrence", t.Ref(), t.Recurrence)
	} else {
		env.out.Success("Added task %s", t.Ref())
	}
	if len(t.DependsOn) > 0 {
		env.out.Note("  depends on %s", refs(t.DependsOn))
	}
	return nil
}

func refs(ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = models.Ref(id)
	}
	return strings.Join(out, ", ")
}

func runDone(cmd *cobra.Command, args []string) error {
	res, err := env.svc.Done(args[0])
	if err != nil {
		return err
	}
	env.out.Success("Task %s marked as done", res.Task.Ref())
	if next := res.Next; next != nil {
		env.out.Success("Next %s occurrence created: %s (due %s)", next.Recurrence, next.Ref(), next.DueDate)
	}
	return nil
}

func runUndone(cmd *cobra.Command, args []string) error {
	t, err := env.svc.Undone(args[0])
	if err != nil {
		return err
	}
	env.out.Success("Task %s marked as pending", t.Ref())
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	t, err := env.svc.Get(args[0])
	if err != nil {
		return err
	}
	if !removeYes {
		env.out.Warn("%s %s", t.Ref(), t.Text)
		ok, err := confirm(cmd, "Are you sure?")
		if err != nil {
			return err
		}
		if !ok {
			env.out.Note("Removal cancelled.")
			return nil
		}
	}

	res, err := env.svc.Remove(t.ID)
	if err != nil {
		return err
	}
	env.out.Success("Task removed: %s", res.Task.Text)
	if len(res.Dependents) > 0 {
		ids := make([]string, len(res.Dependents))
		for i, d := range res.Dependents {
			ids[i] = d.ID
		}
		env.out.Warn("Still depended on by %s; those stay blocked until the dependency is removed", refs(ids))
	}
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	in := tasks.EditInput{
		ClearProject: editClearProject,
		ClearDue:     editClearDue,
		AddTags:      editAddTags,
		RemoveTags:   editRemoveTags,
		ClearTags:    editClearTags,
		AddDeps:      editAddDeps,
		RemoveDeps:   editRemoveDeps,
		ClearDeps:    editClearDeps,
	}
	if f.Changed("text") {
		in.Text = &editText
	}
	if f.Changed("priority") {
		in.Priority = &editPriority
	}
	if f.Changed("project") {
		in.Project = &editProject
	}
	if f.Changed("due") {
		in.Due = &editDue
	}

	res, err := env.svc.Edit(args[0], in)
	if err != nil {
		return err
	}
	printTagChanges(res.TagChanges)
	env.out.Changes(res.Task, res.Changes)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	info, err := env.svc.Info()
	if err != nil {
		return err
	}
	if info.Tasks == 0 {
		env.out.Note("No tasks to remove.")
		return nil
	}
	if !clearYes {
		env.out.Warn("This will permanently delete all %d tasks.", info.Tasks)
		ok, err := confirm(cmd, "Are you sure?")
		if err != nil {
			return err
		}
		if !ok {
			env.out.Note("Clear cancelled.")
			return nil
		}
	}

	n, err := env.svc.Clear()
	if err != nil {
		return err
	}
	env.out.Success("Removed %d tasks", n)
	return nil
}

func runRecur(cmd *cobra.Command, args []string) error {
	res, err := env.svc.Recur(args[0], args[1])
	if err != nil {
		return err
	}
	if !res.Changed() {
		env.out.Note("Task %s already repeats %s.", res.Task.Ref(), res.Task.Recurrence)
		return nil
	}
	env.out.Success("Task %s now repeats %s", res.Task.Ref(), res.Task.Recurrence)
	return nil
}

func runClearRecur(cmd *cobra.Command, args []string) error {
	res, err := env.svc.ClearRecur(args[0])
	if err != nil {
		return err
	}
	if !res.Changed() {
		env.out.Note("Task %s does not repeat.", res.Task.Ref())
		return nil
	}
	env.out.Success("Recurrence removed from task %s (was %s)", res.Task.Ref(), res.Previous)
	return nil
}
