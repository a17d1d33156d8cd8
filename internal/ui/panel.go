package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/tasks"
)

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel frames lines in the current theme's border.
func Panel(lines []string) string {
	t := Current()
	border := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

// CountsLine is the "Total / To Do / In Progress / Done" header.
func CountsLine(c tasks.Counts) string {
	t := Current()
	return fmt.Sprintf("%s %d   %s %d   %s %d   %s %d",
		t.Accent.Render("Total"), c.Total,
		t.Status[model.StatusTodo].Render("To Do"), c.Todo,
		t.Status[model.StatusInProgress].Render("In Progress"), c.InProgress,
		t.Status[model.StatusDone].Render("Done"), c.Done,
	)
}

// FilterBar shows every status filter with its count, highlighting the active one.
func FilterBar(active tasks.StatusFilter, c tasks.Counts) string {
	t := Current()
	parts := make([]string, 0, len(tasks.StatusFilters))
	for _, f := range tasks.StatusFilters {
		label := fmt.Sprintf("%s (%d)", f.Label(), c.For(f))
		if f == active {
			parts = append(parts, t.Selected.Render(" "+label+" "))
		} else {
			parts = append(parts, t.Muted.Render(" "+label+" "))
		}
	}
	return strings.Join(parts, " ")
}

// DueLabel formats a due date, flagging open tasks that are due today or
// already overdue.
func DueLabel(task model.Task, today model.Date) string {
	if task.DueDate == nil {
		return ""
	}
	t := Current()
	label := "due " + task.DueDate.Time().Format("Jan 2, 2006")
	if task.Status == model.StatusDone {
		return t.Muted.Render(label)
	}
	switch {
	case task.DueDate.Before(today):
		return t.Error.Render(label + " (overdue)")
	case *task.DueDate == today:
		return t.Pending.Render(label + " (today)")
	}
	return t.Muted.Render(label)
}

// TaskLine renders one task on a single line: box, title, badges.
func TaskLine(task model.Task, today model.Date, maxTitle int) string {
	t := Current()
	title := task.Title
	if maxTitle > 3 && len([]rune(title)) > maxTitle {
		title = string([]rune(title)[:maxTitle-3]) + "..."
	}
	box := t.Status[task.Status].Render(t.Box(task.Status))
	if task.Status == model.StatusDone {
		title = t.Done.Render(title)
	}
	parts := []string{
		box,
		title,
		t.Priority[task.Priority].Render("[" + task.Priority.Label() + "]"),
		t.Status[task.Status].Render(task.Status.Label()),
	}
	if due := DueLabel(task, today); due != "" {
		parts = append(parts, due)
	}
	return strings.Join(parts, " ")
}

// ShortID is the prefix shown next to tasks in plain listings.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Today is the local calendar date.
func Today() model.Date {
	return model.DateOf(time.Now())
}
