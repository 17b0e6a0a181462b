// Package tui is an interactive task browser built on bubbletea.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/todo/internal/models"
)

var (
	successColor = lipgloss.Color("#10B981")
	errorColor   = lipgloss.Color("#EF4444")
	fgColor      = lipgloss.Color("#F9FAFB")

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	messageStyle = lipgloss.NewStyle().Foreground(successColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
)

type mode int

const (
	modeList mode = iota
	modeDetail
)

// App is the main TUI application model.
type App struct {
	backend Backend
	list    *TaskListModel
	detail  *TaskDetailModel
	mode    mode
	width   int
	height  int
	message string
	err     error
}

// New creates a browser over backend. today anchors relative due dates.
func New(backend Backend, today models.Date) *App {
	return &App{
		backend: backend,
		list:    NewTaskListModel(backend, today),
		detail:  NewTaskDetailModel(backend, today),
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.list.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetSize(msg.Width, msg.Height-2)
		a.detail.SetSize(msg.Width, msg.Height-2)
		return a, nil

	case errMsg:
		a.err = msg.err
		a.message = ""
		a.list.Update(msg)
		a.detail.Update(msg)
		return a, nil

	case toggledMsg:
		a.err = nil
		a.message = msg.status
		return a, a.list.Refresh()

	case tasksLoadedMsg:
		_, cmd := a.list.Update(msg)
		return a, cmd

	case detailLoadedMsg:
		_, cmd := a.detail.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.mode == modeDetail {
			return a.updateDetail(msg)
		}
		if !a.list.Filtering() {
			if model, cmd, ok := a.handleListKey(msg); ok {
				return model, cmd
			}
		}
	}

	if a.mode == modeDetail {
		_, cmd := a.detail.Update(msg)
		return a, cmd
	}
	_, cmd := a.list.Update(msg)
	return a, cmd
}

func (a *App) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return a, tea.Quit, true
	case "f":
		a.list.CycleFilter()
		return a, a.list.Refresh(), true
	case "r":
		a.message, a.err = "", nil
		return a, a.list.Refresh(), true
	case "enter", " ":
		sel := a.list.SelectedTask()
		if sel == nil {
			return a, nil, true
		}
		item := sel.Item
		return a, func() tea.Msg {
			status, err := toggle(a.backend, item)
			if err != nil {
				return errMsg{err}
			}
			return toggledMsg{status}
		}, true
	case "d", "tab":
		sel := a.list.SelectedTask()
		if sel == nil {
			return a, nil, true
		}
		a.mode = modeDetail
		a.detail.SetTask(sel.Task.ID)
		return a, a.detail.Refresh(), true
	}
	return a, nil, false
}

func (a *App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "d", "tab":
		a.mode = modeList
		return a, a.list.Refresh()
	}
	_, cmd := a.detail.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	switch a.mode {
	case modeDetail:
		b.WriteString(a.detail.View())
	default:
		b.WriteString(a.list.View())
	}
	b.WriteString("\n")

	switch {
	case a.err != nil:
		b.WriteString(errorStyle.Render("Error: " + a.err.Error()))
	case a.message != "":
		b.WriteString(messageStyle.Render(a.message))
	}
	b.WriteString("\n")

	var status string
	switch a.mode {
	case modeDetail:
		status = " ↑↓:scroll | r:refresh | Esc:back | Ctrl+C:quit"
	default:
		status = fmt.Sprintf(" %d tasks [%s] | Enter:toggle done | d:details | f:filter | /:search | r:refresh | q:quit",
			a.list.Len(), a.list.Filter())
	}
	b.WriteString(statusBarStyle.Width(a.width).Render(status))
	return b.String()
}
