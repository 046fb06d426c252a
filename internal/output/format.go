// Package output provides formatters for CLI output.
package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todo/internal/agenda"
	"todo/internal/cache"
	"todo/internal/dates"
	"todo/internal/focus"
	"todo/internal/service"
)

// Printer writes styled output to one writer. Styles collapse to plain
// text when the writer is not a terminal.
type Printer struct {
	w io.Writer

	project lipgloss.Style
	section lipgloss.Style
	overdue lipgloss.Style
	today   lipgloss.Style
	faint   lipgloss.Style
	warn    lipgloss.Style
}

// New returns a Printer bound to w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		project: r.NewStyle().Bold(true),
		section: r.NewStyle().Underline(true),
		overdue: r.NewStyle().Foreground(lipgloss.Color("9")),
		today:   r.NewStyle().Foreground(lipgloss.Color("11")),
		faint:   r.NewStyle().Faint(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("208")),
	}
}

// Groups prints grouped tasks. Open tasks are numbered from 1 in print
// order; completed tasks are marked with "x" and not numbered. Returns the
// number of open tasks printed.
func (p *Printer) Groups(groups []agenda.Group, today dates.Date) int {
	num := 0
	lastProject := "\x00"
	for _, g := range groups {
		if g.ProjectID != lastProject {
			fmt.Fprintln(p.w, p.project.Render(normalizeName(g.ProjectName)))
			lastProject = g.ProjectID
		}
		indent := ""
		if g.SectionID != "" {
			fmt.Fprintf(p.w, "  %s\n", p.section.Render(normalizeName(g.SectionName)))
			indent = "  "
		}
		for _, t := range g.Tasks {
			if t.Completed {
				fmt.Fprintf(p.w, "%s%4s  %s\n", indent, "x", p.faint.Render(normalizeTitle(t.Name)))
				continue
			}
			num++
			fmt.Fprintf(p.w, "%s%4d  %s%s\n", indent, num, normalizeTitle(t.Name), p.due(t, today))
		}
	}
	return num
}

// Summary prints open tasks bucketed by due date. Empty buckets are
// skipped after the count line.
func (p *Printer) Summary(b agenda.Buckets, today dates.Date) {
	fmt.Fprintf(p.w, "%d overdue, %d due today, %d due this week\n",
		len(b.Overdue), len(b.Today), len(b.ThisWeek))

	sections := []struct {
		title string
		tasks []service.Task
	}{
		{"Overdue", b.Overdue},
		{"Today", b.Today},
		{"This week", b.ThisWeek},
		{"Later", b.Later},
		{"No due date", b.NoDue},
	}
	for _, s := range sections {
		if len(s.tasks) == 0 {
			continue
		}
		fmt.Fprintf(p.w, "%s (%d)\n", p.project.Render(s.title), len(s.tasks))
		for _, t := range s.tasks {
			fmt.Fprintf(p.w, "  %s%s\n", normalizeTitle(t.Name), p.due(t, today))
		}
	}
}

// Status prints one line for status bars: the urgent counts, then the
// state of today's focus entry when a focus project is selected.
func (p *Printer) Status(b agenda.Buckets, day focus.FocusDay, found, selected bool) {
	line := "nothing due"
	if b.Urgent() > 0 {
		line = fmt.Sprintf("%s overdue, %s today",
			p.count(p.overdue, len(b.Overdue)), p.count(p.today, len(b.Today)))
	}
	switch {
	case found && day.Task.Completed:
		line += ", focus done"
	case found:
		line += ", focus open"
	case selected:
		line += ", no focus entry"
	}
	fmt.Fprintln(p.w, line)
}

func (p *Printer) count(style lipgloss.Style, n int) string {
	if n == 0 {
		return "0"
	}
	return style.Render(fmt.Sprint(n))
}

// Selection prints the resolved workspace and focus project.
func (p *Printer) Selection(snap *cache.Snapshot, sel focus.Selection) {
	wsName := sel.WorkspaceID
	projectName := sel.ProjectID
	if snap != nil {
		if ws, ok := snap.Workspace(sel.WorkspaceID); ok {
			wsName = ws.Name
		}
		if pr, ok := snap.Project(sel.ProjectID); ok {
			projectName = pr.Name
		}
	}
	fmt.Fprintf(p.w, "workspace: %s (%s)\n", normalizeName(wsName), sel.WorkspaceID)
	fmt.Fprintf(p.w, "focus project: %s (%s) %s\n", normalizeName(projectName), sel.ProjectID,
		p.faint.Render("["+sel.Provenance.String()+"]"))
}

// FocusDay prints the focus entry for a date, or where it was expected.
func (p *Printer) FocusDay(day focus.FocusDay, ok bool, date dates.Date) {
	if !ok {
		fmt.Fprintf(p.w, "today: no %q in %q\n", focus.DayTaskName(date), focus.WeekSectionName(date))
		return
	}
	state := "open"
	if day.Task.Completed {
		state = "done"
	}
	fmt.Fprintf(p.w, "today: %s %s\n", day.Task.Name, p.faint.Render("["+state+"]"))
}

// Projects prints the cached workspaces and their projects, marking the
// selected project with "*" and focus candidates with "(focus)".
func (p *Printer) Projects(snap *cache.Snapshot, sel focus.Selection) {
	for _, ws := range snap.Workspaces {
		fmt.Fprintln(p.w, p.project.Render(normalizeName(ws.Name)))
		for _, pr := range snap.ProjectsIn(ws.ID) {
			mark := " "
			if pr.ID == sel.ProjectID {
				mark = "*"
			}
			line := fmt.Sprintf("  %s %s  %s", mark, normalizeName(pr.Name), p.faint.Render(pr.ID))
			if pr.FocusCandidate {
				line += " (focus)"
			}
			fmt.Fprintln(p.w, line)
		}
	}
}

// Candidates prints the choices of an ambiguous selection.
func (p *Printer) Candidates(amb *focus.AmbiguousError) {
	for _, c := range amb.Candidates {
		fmt.Fprintf(p.w, "  %s  %s\n", c.ID, normalizeName(c.Name))
	}
}

// Warning prints a non-fatal problem.
func (p *Printer) Warning(err error) {
	fmt.Fprintf(p.w, "%s %v\n", p.warn.Render("warning:"), err)
}

// Error prints a fatal problem, followed by the candidates of an
// ambiguous selection.
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.w, "error: %v\n", err)
	var amb *focus.AmbiguousError
	if errors.As(err, &amb) {
		fmt.Fprintf(p.w, "choose a %s with --%s:\n", amb.Kind, flagFor(amb.Kind))
		p.Candidates(amb)
	}
}

func flagFor(kind string) string {
	if kind == "workspace" {
		return "workspace"
	}
	return "project"
}

func (p *Printer) due(t service.Task, today dates.Date) string {
	if !t.HasDue() || t.Completed {
		return ""
	}
	switch {
	case t.Due.Before(today):
		return "  " + p.overdue.Render("(overdue "+t.Due.String()+")")
	case t.Due == today:
		return "  " + p.today.Render("(today)")
	case t.Due == today.AddDays(1):
		return "  (tomorrow)"
	default:
		return "  (" + t.Due.String() + ")"
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeName normalizes a project, section or workspace name.
func normalizeName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}
