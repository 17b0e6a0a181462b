// Package display renders service results for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/tasks"
)

const (
	maxTaskWidth = 40
	maxTagsWidth = 20
	maxDueWidth  = 20
)

type styles struct {
	title   lipgloss.Style
	dim     lipgloss.Style
	text    lipgloss.Style
	done    lipgloss.Style
	tag     lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	danger  lipgloss.Style
	accent  lipgloss.Style
	section lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		dim:     r.NewStyle().Faint(true),
		text:    r.NewStyle().Foreground(lipgloss.Color("15")),
		done:    r.NewStyle().Foreground(lipgloss.Color("2")),
		tag:     r.NewStyle().Foreground(lipgloss.Color("6")),
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		danger:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		accent:  r.NewStyle().Foreground(lipgloss.Color("4")),
		section: r.NewStyle().Bold(true).Underline(true),
	}
}

// Printer writes styled output to w. Colors are dropped automatically
// when w is not a terminal.
type Printer struct {
	w        io.Writer
	s        styles
	today    models.Date
	soonDays int
}

// New creates a Printer. today anchors relative due-date text.
func New(w io.Writer, today models.Date, soonDays int) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{w: w, s: newStyles(r), today: today, soonDays: soonDays}
}

func (p *Printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format, args...)
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...interface{}) {
	p.printf("%s %s\n", p.s.success.Render("✓"), fmt.Sprintf(format, args...))
}

// Note prints a dimmed informational line.
func (p *Printer) Note(format string, args ...interface{}) {
	p.printf("%s\n", p.s.dim.Render(fmt.Sprintf(format, args...)))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...interface{}) {
	p.printf("%s %s\n", p.s.warn.Render("!"), fmt.Sprintf(format, args...))
}

// Bullet prints an indented list entry.
func (p *Printer) Bullet(format string, args ...interface{}) {
	p.printf("  • %s\n", fmt.Sprintf(format, args...))
}

// DueText renders a due date relative to today: "late 2 days",
// "due today" or "in 3 days".
func DueText(due *models.Date, today models.Date) string {
	if due == nil {
		return ""
	}
	days := today.DaysUntil(*due)
	switch {
	case days < 0:
		return "late " + plural(-days, "day")
	case days == 0:
		return "due today"
	default:
		return "in " + plural(days, "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func (p *Printer) dueStyle(t *models.Task) lipgloss.Style {
	if t.IsDone() || t.DueDate == nil {
		return p.s.dim
	}
	days := p.today.DaysUntil(*t.DueDate)
	switch {
	case days < 0:
		return p.s.danger
	case days == 0:
		return p.s.warn.Bold(true)
	case days <= p.soonDays:
		return p.s.warn
	default:
		return p.s.tag
	}
}

func checkbox(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusDone:
		return "[x]"
	case models.TaskStatusBlocked:
		return "[~]"
	default:
		return "[ ]"
	}
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

type layout struct {
	task, tags, due int
}

func newLayout(items []tasks.Item, today models.Date) layout {
	l := layout{task: 10, tags: 4, due: 3}
	for _, it := range items {
		l.task = max(l.task, len([]rune(it.Task.Text)))
		l.tags = max(l.tags, len([]rune(strings.Join(it.Task.Tags, ", "))))
		l.due = max(l.due, len(DueText(it.Task.DueDate, today)))
	}
	l.task = min(l.task, maxTaskWidth)
	l.tags = min(l.tags, maxTagsWidth)
	l.due = min(l.due, maxDueWidth)
	return l
}

func (l layout) width() int {
	// id + priority + status + three gaps of two
	return 9 + 1 + 3 + l.task + l.tags + l.due + 12
}

// Tasks prints items as a table under title, followed by a summary.
func (p *Printer) Tasks(title string, items []tasks.Item) {
	l := newLayout(items, p.today)

	p.printf("\n%s\n\n", p.s.title.Render(title))
	p.printf("%s  %s  %s  %s  %s  %s\n",
		p.s.dim.Render(pad("ID", 9)),
		p.s.dim.Render("P"),
		p.s.dim.Render(pad("S", 3)),
		p.s.dim.Render(pad("Task", l.task)),
		p.s.dim.Render(pad("Tags", l.tags)),
		p.s.dim.Render("Due"),
	)
	p.printf("%s\n", p.s.dim.Render(strings.Repeat("─", l.width())))

	var done int
	for _, it := range items {
		t := &it.Task
		if t.IsDone() {
			done++
		}

		text := pad(truncate(t.Text, l.task), l.task)
		tags := pad(truncate(strings.Join(t.Tags, ", "), l.tags), l.tags)
		textStyle, tagStyle := p.s.text, p.s.tag
		if t.IsDone() {
			textStyle, tagStyle = p.s.done, p.s.dim
		}

		p.printf("%s  %s  %s  %s  %s  %s\n",
			p.s.dim.Render(pad(t.Ref(), 9)),
			t.Priority.Letter(),
			checkbox(it.Status()),
			textStyle.Render(text),
			tagStyle.Render(tags),
			p.dueStyle(t).Render(DueText(t.DueDate, p.today)),
		)
	}

	p.printf("\n%s\n\n", p.s.dim.Render(fmt.Sprintf("%s (%d pending, %d done)",
		plural(len(items), "task"), len(items)-done, done)))
}
