package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/ui"
)

type field int

const (
	fieldTitle field = iota
	fieldDesc
	fieldDue
	fieldPriority
	fieldStatus
	fieldCount
)

var fieldNames = [fieldCount]string{"title", "description", "due_date", "priority", "status"}

var fieldLabels = [fieldCount]string{"Title", "Description", "Due date", "Priority", "Status"}

// form is the create/edit dialog. Text fields use textinput; priority and
// status are cycled in place.
type form struct {
	orig   *model.Task // nil when creating
	inputs [fieldPriority]textinput.Model

	priority model.Priority
	status   model.Status
	focus    field
	errs     map[string]string
}

func newForm(orig *model.Task, mode cursor.Mode) (form, tea.Cmd) {
	f := form{orig: orig, priority: model.PriorityMedium, status: model.StatusTodo}

	limits := [fieldPriority]int{model.MaxTitleLen, model.MaxDescriptionLen, len(model.DateLayout)}
	placeholders := [fieldPriority]string{"Enter task title", "Optional description", "YYYY-MM-DD"}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = limits[i]
		ti.Placeholder = placeholders[i]
		ti.Cursor.SetMode(mode)
		f.inputs[i] = ti
	}

	if orig != nil {
		f.inputs[fieldTitle].SetValue(orig.Title)
		if orig.Description != nil {
			f.inputs[fieldDesc].SetValue(*orig.Description)
		}
		if orig.DueDate != nil {
			f.inputs[fieldDue].SetValue(orig.DueDate.String())
		}
		f.priority, f.status = orig.Priority, orig.Status
	}
	cmd := f.focusOn(fieldTitle)
	return f, cmd
}

func (f *form) focusOn(target field) tea.Cmd {
	f.focus = target
	var cmd tea.Cmd
	for i := range f.inputs {
		if field(i) == target {
			f.inputs[i].CursorEnd()
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func cycle[T comparable](all []T, cur T, step int) T {
	for i, v := range all {
		if v == cur {
			return all[(i+step+len(all))%len(all)]
		}
	}
	return all[0]
}

// update handles every key except submit and cancel.
func (f form) update(msg tea.KeyMsg) (form, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		cmd := f.focusOn((f.focus + 1) % fieldCount)
		return f, cmd
	case "shift+tab", "up":
		cmd := f.focusOn((f.focus + fieldCount - 1) % fieldCount)
		return f, cmd
	}

	switch f.focus {
	case fieldPriority, fieldStatus:
		step := 0
		switch msg.String() {
		case "right", " ", "l":
			step = 1
		case "left", "h":
			step = -1
		}
		if step != 0 {
			if f.focus == fieldPriority {
				f.priority = cycle(model.Priorities, f.priority, step)
			} else {
				f.status = cycle(model.Statuses, f.status, step)
			}
		}
		return f, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) value(i field) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f form) due() (*model.Date, bool) {
	s := f.value(fieldDue)
	if s == "" {
		return nil, true
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, false
	}
	return &d, true
}

func (f *form) fail(v model.Violations) {
	f.errs = map[string]string{}
	for _, x := range v {
		if _, seen := f.errs[x.Field]; !seen {
			f.errs[x.Field] = x.Message
		}
	}
}

// createInput returns ok=false and records the messages when the form is
// not a valid new task.
func (f *form) createInput() (model.CreateInput, bool) {
	in := model.CreateInput{
		Title:       f.value(fieldTitle),
		Description: f.value(fieldDesc),
		Priority:    f.priority,
		Status:      f.status,
	}
	v := model.ValidateCreate(in)
	due, ok := f.due()
	if !ok {
		v = append(v, model.Violation{Field: "due_date", Message: "Due date must be YYYY-MM-DD"})
	}
	if len(v) > 0 {
		f.fail(v)
		return model.CreateInput{}, false
	}
	in.DueDate = due
	return in, true
}

// updateInput carries only the fields that differ from the task being
// edited. An empty patch means nothing changed.
func (f *form) updateInput() (model.UpdateInput, bool) {
	var patch model.UpdateInput
	orig := f.orig

	if title := f.value(fieldTitle); title != orig.Title {
		patch.Title = &title
	}
	desc := f.value(fieldDesc)
	switch {
	case desc == "" && orig.Description != nil:
		patch.Description = model.Clear[string]()
	case desc != "" && (orig.Description == nil || *orig.Description != desc):
		patch.Description = model.Set(desc)
	}
	due, ok := f.due()
	if !ok {
		f.fail(model.Violations{{Field: "due_date", Message: "Due date must be YYYY-MM-DD"}})
		return model.UpdateInput{}, false
	}
	switch {
	case due == nil && orig.DueDate != nil:
		patch.DueDate = model.Clear[model.Date]()
	case due != nil && (orig.DueDate == nil || *orig.DueDate != *due):
		patch.DueDate = model.Set(*due)
	}
	if f.priority != orig.Priority {
		patch.Priority = model.Ptr(f.priority)
	}
	if f.status != orig.Status {
		patch.Status = model.Ptr(f.status)
	}

	if patch.Empty() {
		return patch, true
	}
	if v := model.ValidateUpdate(patch.Normalize()); v != nil {
		f.fail(v)
		return model.UpdateInput{}, false
	}
	return patch, true
}

func (f form) err(i field) string {
	return f.errs[fieldNames[i]]
}

func (f form) view() string {
	t := ui.Current()
	title := "Create New Task"
	if f.orig != nil {
		title = "Edit Task"
	}
	lines := []string{t.Title.Render(title)}
	for i := field(0); i < fieldCount; i++ {
		label := fieldLabels[i] + ":"
		if i == f.focus {
			label = t.Selected.Render(label)
		} else {
			label = t.Muted.Render(label)
		}
		var value string
		switch i {
		case fieldPriority:
			value = t.Priority[f.priority].Render("< " + f.priority.Label() + " >")
		case fieldStatus:
			value = t.Status[f.status].Render("< " + f.status.Label() + " >")
		default:
			value = f.inputs[i].View()
		}
		lines = append(lines, label+" "+value)
		if msg := f.err(i); msg != "" {
			lines = append(lines, "  "+t.Error.Render(msg))
		}
	}
	lines = append(lines, t.Help.Render("tab next field • ←/→ change • enter save • esc cancel"))

	box := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
	return box.Render(strings.Join(lines, "\n"))
}
