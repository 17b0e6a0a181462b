package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/todo/internal/display"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/tasks"
)

var (
	listTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusPending = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	statusBlocked = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	statusDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	dueLate       = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// TaskItem implements list.Item for the task list.
type TaskItem struct {
	tasks.Item
	today models.Date
}

func (i TaskItem) FilterValue() string {
	return i.Task.Text + " " + strings.Join(i.Task.Tags, " ") + " " + i.Task.Project
}

func (i TaskItem) Title() string {
	return fmt.Sprintf("%s %s", i.Task.Priority.Letter(), i.Task.Text)
}

func (i TaskItem) Description() string {
	parts := []string{i.Task.Ref(), formatStatus(i.Status())}
	if i.Task.DueDate != nil {
		due := display.DueText(i.Task.DueDate, i.today)
		if i.Task.IsOverdue(i.today) {
			due = dueLate.Render(due)
		}
		parts = append(parts, due)
	}
	if i.Task.Recurrence != models.RecurrenceNone {
		parts = append(parts, "↻ "+string(i.Task.Recurrence))
	}
	if i.Task.Project != "" {
		parts = append(parts, "@"+i.Task.Project)
	}
	if len(i.Task.Tags) > 0 {
		parts = append(parts, strings.Join(i.Task.Tags, ", "))
	}
	return strings.Join(parts, " • ")
}

func formatStatus(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusPending:
		return statusPending.Render("● pending")
	case models.TaskStatusBlocked:
		return statusBlocked.Render("● blocked")
	case models.TaskStatusDone:
		return statusDone.Render("● done")
	default:
		return string(status)
	}
}

var filters = []models.StatusFilter{
	models.StatusAll,
	models.StatusPending,
	models.StatusBlocked,
	models.StatusDone,
}

// TaskListModel manages the task list screen.
type TaskListModel struct {
	backend     Backend
	list        list.Model
	today       models.Date
	filterIndex int
	sort        models.SortBy
	loading     bool
}

// NewTaskListModel creates a new task list model.
func NewTaskListModel(backend Backend, today models.Date) *TaskListModel {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 80, 20)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = listTitleStyle

	m := &TaskListModel{backend: backend, list: l, today: today, sort: models.SortPriority}
	m.setTitle()
	return m
}

func (m *TaskListModel) setTitle() {
	m.list.Title = fmt.Sprintf("Tasks [%s]", filters[m.filterIndex])
}

// Init initializes the task list.
func (m *TaskListModel) Init() tea.Cmd {
	return m.Refresh()
}

// SetSize sets the list dimensions.
func (m *TaskListModel) SetSize(w, h int) {
	m.list.SetSize(w, h)
}

// Filter returns the active status filter.
func (m *TaskListModel) Filter() models.StatusFilter {
	return filters[m.filterIndex]
}

// SelectedTask returns the currently selected task.
func (m *TaskListModel) SelectedTask() *TaskItem {
	if item := m.list.SelectedItem(); item != nil {
		task := item.(TaskItem)
		return &task
	}
	return nil
}

// Filtering reports whether the user is typing a fuzzy filter, in
// which case keys belong to the list.
func (m *TaskListModel) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// CycleFilter cycles through status filters.
func (m *TaskListModel) CycleFilter() {
	m.filterIndex = (m.filterIndex + 1) % len(filters)
	m.setTitle()
}

// Refresh loads tasks from the backend.
func (m *TaskListModel) Refresh() tea.Cmd {
	m.loading = true
	f := tasks.Filter{Status: m.Filter(), Sort: m.sort}
	return func() tea.Msg {
		items, err := loadItems(m.backend, f)
		if err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{items}
	}
}

// Len returns the number of tasks shown.
func (m *TaskListModel) Len() int {
	return len(m.list.Items())
}

// Update handles messages.
func (m *TaskListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		m.loading = false
		items := make([]list.Item, len(msg.items))
		for i, it := range msg.items {
			items[i] = TaskItem{Item: it, today: m.today}
		}
		return m, m.list.SetItems(items)
	case errMsg:
		m.loading = false
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the task list.
func (m *TaskListModel) View() string {
	if m.loading && len(m.list.Items()) == 0 {
		return "Loading tasks..."
	}
	return m.list.View()
}
