package display

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fentz26/todo/internal/deps"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/store"
	"github.com/fentz26/todo/internal/tasks"
)

const barWidth = 10

func (p *Printer) field(label, value string) {
	p.printf("  %s %s\n", p.s.dim.Render(pad(label+":", 12)), value)
}

// Detail prints the full view of one task.
func (p *Printer) Detail(d *tasks.Detail) {
	t := &d.Task
	p.printf("\n%s %s\n\n", p.s.title.Render(t.Ref()), p.s.text.Render(t.Text))

	p.field("ID", t.ID)
	status := string(t.Status)
	if d.Blocked {
		status = p.s.warn.Render("blocked")
	}
	p.field("Status", status)
	p.field("Priority", string(t.Priority))
	if len(t.Tags) > 0 {
		p.field("Tags", p.s.tag.Render(strings.Join(t.Tags, ", ")))
	}
	if t.Project != "" {
		p.field("Project", t.Project)
	}
	if t.DueDate != nil {
		p.field("Due", fmt.Sprintf("%s (%s)", t.DueDate, p.dueStyle(t).Render(DueText(t.DueDate, p.today))))
	}
	if t.Recurrence != models.RecurrenceNone {
		p.field("Repeats", string(t.Recurrence))
	}
	p.field("Created", t.CreatedAt.Format("2006-01-02 15:04"))
	if t.CompletedAt != nil {
		p.field("Completed", t.CompletedAt.Format("2006-01-02 15:04"))
	}
	if len(t.DependsOn) > 0 {
		p.field("Depends on", refList(t.DependsOn))
	}
	if d.Blocked {
		p.field("Blocked by", p.s.warn.Render(refList(d.BlockingIDs)))
	}
	if len(d.Lineage) > 0 {
		p.printf("\n  %s\n", p.s.section.Render("Previous instances"))
		for _, prev := range d.Lineage {
			p.printf("    %s  %s  %s\n", prev.Ref(), dateOrDash(prev.DueDate), checkbox(prev.Status))
		}
	}
	if len(d.Spawned) > 0 {
		p.printf("\n  %s\n", p.s.section.Render("Next instances"))
		for _, next := range d.Spawned {
			p.printf("    %s  %s  %s\n", next.Ref(), dateOrDash(next.DueDate), checkbox(next.Status))
		}
	}
	p.printf("\n")
}

func dateOrDash(d *models.Date) string {
	if d == nil {
		return "----------"
	}
	return d.String()
}

func refList(ids []string) string {
	refs := make([]string, len(ids))
	for i, id := range ids {
		refs[i] = models.Ref(id)
	}
	return strings.Join(refs, ", ")
}

// Deps prints the dependency neighbourhood of a task.
func (p *Printer) Deps(v *deps.View) {
	p.printf("\n%s %s\n\n", p.s.title.Render("Dependencies of "+v.Task.Ref()), v.Task.Text)

	p.printf("  %s\n", p.s.section.Render("Depends on"))
	if len(v.DependsOn) == 0 {
		p.printf("    %s\n", p.s.dim.Render("(none)"))
	}
	for _, e := range v.DependsOn {
		switch e.State {
		case deps.EdgeDone:
			p.printf("    %s %s  %s\n", p.s.done.Render("✓"), models.Ref(e.ID), p.s.dim.Render(e.Task.Text))
		case deps.EdgePending:
			p.printf("    %s %s  %s\n", p.s.warn.Render("○"), models.Ref(e.ID), e.Task.Text)
		default:
			p.printf("    %s %s  %s\n", p.s.danger.Render("✗"), models.Ref(e.ID), p.s.danger.Render("(missing)"))
		}
	}

	p.printf("\n  %s\n", p.s.section.Render("Required by"))
	if len(v.RequiredBy) == 0 {
		p.printf("    %s\n", p.s.dim.Render("(none)"))
	}
	for _, t := range v.RequiredBy {
		p.printf("    %s %s  %s\n", p.s.accent.Render("→"), t.Ref(), t.Text)
	}

	p.printf("\n")
	if v.Blocked {
		p.printf("  %s %s\n\n", p.s.warn.Render("Blocked by:"), refList(v.BlockingIDs))
	} else if !v.Task.IsDone() {
		p.printf("  %s\n\n", p.s.success.Render("Ready to complete"))
	}
}

// Stats prints collection statistics.
func (p *Printer) Stats(st *tasks.Stats) {
	p.printf("\n%s\n\n", p.s.title.Render("Todo Statistics"))

	p.printf("%s\n\n", p.s.section.Render("Overview"))
	p.stat("Total tasks", fmt.Sprint(st.Total))
	p.stat("Completed", fmt.Sprintf("%d (%d%%)", st.Completed, st.CompletionPercent()))
	p.stat("Pending", fmt.Sprint(st.Pending))
	if st.Overdue > 0 {
		p.stat("Overdue", p.s.danger.Render(fmt.Sprint(st.Overdue)))
	}
	if st.DueSoon > 0 {
		p.stat("Due soon", p.s.warn.Render(fmt.Sprint(st.DueSoon)))
	}
	if st.Blocked > 0 {
		p.stat("Blocked", p.s.warn.Render(fmt.Sprint(st.Blocked)))
	}

	if len(st.ByPriority) > 0 {
		p.printf("\n%s\n\n", p.s.section.Render("By Priority"))
		for _, ps := range st.ByPriority {
			label := strings.ToUpper(string(ps.Priority[:1])) + string(ps.Priority[1:])
			p.printf("  %s %s  (%d pending, %d done)\n", pad(label, 8), p.s.tag.Render(fmt.Sprint(ps.Pending+ps.Done)), ps.Pending, ps.Done)
		}
	}

	if len(st.ByProject) > 0 {
		p.printf("\n%s\n\n", p.s.section.Render("By Project"))
		for _, pj := range st.ByProject {
			p.printf("  %s %s  (%d%% done)\n", pad(pj.Name, 24), p.s.tag.Render(plural(pj.Total, "task")), tasks.Percent(pj.Done, pj.Total))
		}
		if st.NoProject > 0 {
			p.printf("  %s %s\n", p.s.dim.Render(pad("(no project)", 24)), p.s.dim.Render(plural(st.NoProject, "task")))
		}
	}

	p.printf("\n%s\n\n", p.s.section.Render(fmt.Sprintf("Activity, last %d days", len(st.Activity))))
	peak := 1
	for _, day := range st.Activity {
		peak = max(peak, day.Completed)
	}
	for _, day := range st.Activity {
		filled := day.Completed * barWidth / peak
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		label := day.Date.Time().Format("Jan 02")
		if day.Completed == 0 {
			p.printf("  %s  %s  %s\n", p.s.dim.Render(label), p.s.dim.Render(bar), p.s.dim.Render("0 completed"))
			continue
		}
		p.printf("  %s  %s  %d completed\n", p.s.dim.Render(label), p.s.done.Render(bar), day.Completed)
	}
	p.printf("\n")
}

func (p *Printer) stat(label, value string) {
	p.printf("  %s %s\n", pad(label, 14), value)
}

// Counts prints tag or project counts as an aligned table.
func (p *Printer) Counts(title string, counts []tasks.Count) {
	p.printf("\n%s\n\n", p.s.title.Render(title))
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tTASKS\tPENDING")
	for _, c := range counts {
		fmt.Fprintf(w, "  %s\t%d\t%d\n", c.Name, c.Total, c.Pending)
	}
	w.Flush()
	p.printf("\n")
}

// Info prints data file metadata.
func (p *Printer) Info(info store.Info) {
	p.printf("\n%s\n\n", p.s.title.Render("Storage"))
	p.field("Data file", info.Path)
	if !info.Exists {
		p.field("Status", p.s.dim.Render("not created yet"))
		p.printf("\n")
		return
	}
	p.field("Size", fmt.Sprintf("%d bytes", info.Size))
	if !info.Modified.IsZero() {
		p.field("Modified", info.Modified.Format("2006-01-02 15:04:05"))
	}
	p.field("Tasks", fmt.Sprint(info.Tasks))
	p.printf("\n")
}

// Report prints the result of an integrity check.
func (p *Printer) Report(r *tasks.Report) {
	if len(r.Issues) == 0 {
		p.Success("%s checked, no problems found", plural(r.Tasks, "task"))
		return
	}
	for _, is := range r.Issues {
		label := p.s.warn.Render("warning")
		if is.Severity == tasks.SeverityError {
			label = p.s.danger.Render("error  ")
		}
		p.printf("%s  %s\n", label, is.Message)
	}
}

// Changes prints the field updates of an edit.
func (p *Printer) Changes(task models.Task, changes []tasks.Change) {
	if len(changes) == 0 {
		p.Note("No changes made (values are already set).")
		return
	}
	p.Success("Task %s updated:", task.Ref())
	for _, c := range changes {
		p.Bullet("%s", c)
	}
}
