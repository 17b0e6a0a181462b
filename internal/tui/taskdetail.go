package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/todo/internal/deps"
	"github.com/fentz26/todo/internal/display"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/tasks"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginTop(1)
)

// TaskDetailModel shows one task with its dependency neighbourhood.
type TaskDetailModel struct {
	backend Backend
	today   models.Date
	taskID  string
	detail  *tasks.Detail
	view    *deps.View
	height  int
	loading bool
	scroll  int
}

// NewTaskDetailModel creates a new task detail model.
func NewTaskDetailModel(backend Backend, today models.Date) *TaskDetailModel {
	return &TaskDetailModel{backend: backend, today: today}
}

// Init initializes the task detail model.
func (m *TaskDetailModel) Init() tea.Cmd {
	return nil
}

// SetTask sets the task to display.
func (m *TaskDetailModel) SetTask(id string) {
	m.taskID = id
	m.detail = nil
	m.view = nil
	m.scroll = 0
}

// SetSize sets the dimensions.
func (m *TaskDetailModel) SetSize(_, h int) {
	m.height = h
}

// Refresh loads the task and its dependencies.
func (m *TaskDetailModel) Refresh() tea.Cmd {
	m.loading = true
	id := m.taskID
	return func() tea.Msg {
		detail, err := m.backend.Show(id)
		if err != nil {
			return errMsg{err}
		}
		view, err := m.backend.Deps(id)
		if err != nil {
			return errMsg{err}
		}
		return detailLoadedMsg{detail, view}
	}
}

// Update handles messages.
func (m *TaskDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		m.loading = false
		m.detail = msg.detail
		m.view = msg.view
		return m, nil

	case errMsg:
		m.loading = false

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			m.scroll++
		case "k", "up":
			if m.scroll > 0 {
				m.scroll--
			}
		case "r":
			return m, m.Refresh()
		}
	}
	return m, nil
}

// View renders the task detail.
func (m *TaskDetailModel) View() string {
	if m.loading || m.detail == nil {
		return "Loading task details..."
	}
	t := &m.detail.Task

	var b strings.Builder
	b.WriteString(headerStyle.Render(t.Ref() + " " + t.Text))
	b.WriteString("\n\n")

	status := formatStatus(t.Status)
	if m.detail.Blocked {
		status = formatStatus(models.TaskStatusBlocked)
	}
	b.WriteString(renderField("ID", t.ID))
	b.WriteString(renderField("Status", status))
	b.WriteString(renderField("Priority", string(t.Priority)))
	if t.Project != "" {
		b.WriteString(renderField("Project", t.Project))
	}
	if len(t.Tags) > 0 {
		b.WriteString(renderField("Tags", strings.Join(t.Tags, ", ")))
	}
	if t.DueDate != nil {
		b.WriteString(renderField("Due", fmt.Sprintf("%s (%s)", t.DueDate, display.DueText(t.DueDate, m.today))))
	}
	if t.Recurrence != models.RecurrenceNone {
		b.WriteString(renderField("Repeats", string(t.Recurrence)))
	}
	b.WriteString(renderField("Created", t.CreatedAt.Format("2006-01-02 15:04")))
	if t.CompletedAt != nil {
		b.WriteString(renderField("Completed", t.CompletedAt.Format("2006-01-02 15:04")))
	}

	if m.view != nil {
		b.WriteString(sectionStyle.Render("Depends on"))
		b.WriteString("\n")
		if len(m.view.DependsOn) == 0 {
			b.WriteString("  (none)\n")
		}
		for _, e := range m.view.DependsOn {
			switch e.State {
			case deps.EdgeDone:
				b.WriteString(fmt.Sprintf("  %s %s  %s\n", statusDone.Render("✓"), models.Ref(e.ID), e.Task.Text))
			case deps.EdgePending:
				b.WriteString(fmt.Sprintf("  %s %s  %s\n", statusPending.Render("○"), models.Ref(e.ID), e.Task.Text))
			default:
				b.WriteString(fmt.Sprintf("  %s %s  (missing)\n", statusBlocked.Render("✗"), models.Ref(e.ID)))
			}
		}

		b.WriteString(sectionStyle.Render("Required by"))
		b.WriteString("\n")
		if len(m.view.RequiredBy) == 0 {
			b.WriteString("  (none)\n")
		}
		for _, r := range m.view.RequiredBy {
			b.WriteString(fmt.Sprintf("  → %s  %s\n", r.Ref(), r.Text))
		}
	}

	if len(m.detail.Lineage) > 0 || len(m.detail.Spawned) > 0 {
		b.WriteString(sectionStyle.Render("Recurrence chain"))
		b.WriteString("\n")
		for _, prev := range m.detail.Lineage {
			b.WriteString(fmt.Sprintf("  ← %s  %s\n", prev.Ref(), dueOf(prev)))
		}
		for _, next := range m.detail.Spawned {
			b.WriteString(fmt.Sprintf("  → %s  %s\n", next.Ref(), dueOf(next)))
		}
	}

	lines := strings.Split(b.String(), "\n")
	if m.scroll >= len(lines) {
		m.scroll = len(lines) - 1
	}
	visible := lines[m.scroll:]
	if m.height > 0 && len(visible) > m.height {
		visible = visible[:m.height]
	}
	return strings.Join(visible, "\n")
}

func dueOf(t models.Task) string {
	if t.DueDate == nil {
		return "no due date"
	}
	return "due " + t.DueDate.String()
}

func renderField(label, value string) string {
	return fmt.Sprintf("%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}
