// Package tui is the interactive dashboard. Backend calls run as tea.Cmds;
// their results come back as messages and the list is rebuilt from the
// session's store each time.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/tasks"
	"github.com/Makepad-fr/tasktracker/internal/ui"
)

// listItem adapts a task to bubbles/list.Item
type listItem struct {
	task model.Task
}

func (i listItem) FilterValue() string { return i.task.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct {
	today model.Date
	width int
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	maxTitle := d.width - 40
	if maxTitle < 20 {
		maxTitle = 20
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.Current().Selected.Render(">") + " "
	}
	line := prefix + ui.TaskLine(it.task, d.today, maxTitle)
	if desc := it.task.Description; desc != nil {
		line += "  " + ui.Muted(truncate(*desc, maxTitle/2))
	}
	fmt.Fprint(w, line)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

type mode int

const (
	browsing mode = iota
	searching
	adding
	editing
)

type (
	// loadedMsg ends a refresh or sign-out; failTitle heads the status
	// line when err was not already reported by the store.
	loadedMsg struct {
		failTitle string
		err       error
	}
	opDoneMsg struct{ err error }
	notifyMsg tasks.Notification
)

// Notifier forwards store notifications into the running program.
type Notifier struct {
	ch chan tasks.Notification
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan tasks.Notification, 16)}
}

// Notify drops the notification rather than block when nobody is reading.
func (n *Notifier) Notify(x tasks.Notification) {
	select {
	case n.ch <- x:
	default:
	}
}

func (n *Notifier) wait() tea.Cmd {
	return func() tea.Msg { return notifyMsg(<-n.ch) }
}

var (
	addBind      = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind     = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	statusBind   = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "status"))
	priorityBind = key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority"))
	deleteBind   = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	searchBind   = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search"))
	filterBind   = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "filter"))
	refreshBind  = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	signOutBind  = key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign out"))
)

type Model struct {
	ctx   context.Context
	sess  *tasks.Session
	notes *Notifier

	list   list.Model
	search textinput.Model
	form   form
	mode   mode
	query  string

	filter  tasks.StatusFilter
	last    *tasks.Notification
	loading bool
	today   model.Date

	// cursorMode applies to every text input the model creates
	cursorMode cursor.Mode

	width, height int
}

// New builds the dashboard. notes must be the Notifier the session's
// stores were created with.
func New(ctx context.Context, sess *tasks.Session, notes *Notifier) Model {
	today := ui.Today()
	l := list.New(nil, itemDelegate{today: today, width: 80}, 78, 16)
	l.SetShowTitle(false)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.HelpStyle = ui.Current().Help
	l.Styles.PaginationStyle = ui.Current().Help
	l.KeyMap.Quit.SetEnabled(false)
	extra := func() []key.Binding {
		return []key.Binding{addBind, editBind, statusBind, priorityBind, deleteBind, searchBind, filterBind, refreshBind, signOutBind}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search tasks..."

	return Model{
		ctx:        ctx,
		sess:       sess,
		notes:      notes,
		list:       l,
		search:     search,
		filter:     tasks.All,
		loading:    true,
		today:      today,
		cursorMode: cursor.CursorBlink,
		width:      80,
		height:     24,
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctx context.Context, sess *tasks.Session, notes *Notifier) error {
	p := tea.NewProgram(New(ctx, sess, notes), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.notes.wait())
}

func (m Model) refreshCmd() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return loadedMsg{failTitle: "Error fetching tasks", err: sess.Refresh(ctx)}
	}
}

func (m Model) signOutCmd() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return loadedMsg{failTitle: "Error signing out", err: sess.SignOut(ctx)}
	}
}

func (m Model) createCmd(in model.CreateInput) tea.Cmd {
	st, ctx := m.sess.Store(), m.ctx
	return func() tea.Msg {
		_, err := st.Create(ctx, in)
		return opDoneMsg{err: err}
	}
}

func (m Model) updateCmd(id string, patch model.UpdateInput) tea.Cmd {
	st, ctx := m.sess.Store(), m.ctx
	return func() tea.Msg {
		_, err := st.Update(ctx, id, patch)
		return opDoneMsg{err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	st, ctx := m.sess.Store(), m.ctx
	return func() tea.Msg { return opDoneMsg{err: st.Delete(ctx, id)} }
}

// visible is the filtered view of the store, in store order.
func (m Model) visible() []model.Task {
	return tasks.Filter(m.sess.Store().Tasks(), m.query, m.filter)
}

func (m *Model) sync() tea.Cmd {
	vis := m.visible()
	items := make([]list.Item, 0, len(vis))
	for _, t := range vis {
		items = append(items, listItem{task: t})
	}
	return m.list.SetItems(items)
}

func (m Model) selected() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

func (m *Model) resize() {
	m.list.SetDelegate(itemDelegate{today: m.today, width: m.width})
	listHeight := m.height - 8
	if m.mode == adding || m.mode == editing {
		listHeight -= int(fieldCount) + 4
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-4, listHeight)
}

// reportErr shows an error the store did not already notify about.
func (m *Model) reportErr(title string, err error) {
	var remote *tasks.RemoteError
	if err == nil || errors.As(err, &remote) {
		return
	}
	m.last = &tasks.Notification{Title: title, Description: err.Error(), Variant: tasks.VariantDestructive}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		m.loading = false
		m.reportErr(msg.failTitle, msg.err)
		return m, m.sync()

	case opDoneMsg:
		m.reportErr("Error", msg.err)
		return m, m.sync()

	case notifyMsg:
		n := tasks.Notification(msg)
		m.last = &n
		return m, m.notes.wait()

	case tea.KeyMsg:
		switch m.mode {
		case searching:
			return m.updateSearch(msg)
		case adding, editing:
			return m.updateForm(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = browsing
		m.search.Blur()
		return m, nil
	case "esc":
		m.mode = browsing
		m.query = ""
		m.search.SetValue("")
		m.search.Blur()
		return m, m.sync()
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.search.Value()
	return m, tea.Batch(cmd, m.sync())
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil
	case "enter":
		if m.mode == adding {
			in, ok := m.form.createInput()
			if !ok {
				return m, nil
			}
			m.closeForm()
			return m, m.createCmd(in)
		}
		patch, ok := m.form.updateInput()
		if !ok {
			return m, nil
		}
		id := m.form.orig.ID
		m.closeForm()
		if patch.Empty() {
			return m, nil
		}
		return m, m.updateCmd(id, patch)
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m *Model) openForm(orig *model.Task) tea.Cmd {
	var cmd tea.Cmd
	m.form, cmd = newForm(orig, m.cursorMode)
	if orig == nil {
		m.mode = adding
	} else {
		m.mode = editing
	}
	m.resize()
	return cmd
}

func (m *Model) closeForm() {
	m.mode = browsing
	m.form = form{}
	m.resize()
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.query != "" {
			m.query = ""
			m.search.SetValue("")
			return m, m.sync()
		}
		return m, tea.Quit
	case "/":
		m.mode = searching
		m.search.Cursor.SetMode(m.cursorMode)
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case "tab":
		m.filter = m.filter.Next()
		return m, m.sync()
	case "r":
		m.loading = true
		return m, m.refreshCmd()
	case "L":
		m.loading = true
		return m, m.signOutCmd()
	case "a":
		if m.sess.Store().User() == nil {
			return m, nil
		}
		return m, m.openForm(nil)
	case "e":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.openForm(&t)
	case " ":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.updateCmd(t.ID, model.UpdateInput{Status: model.Ptr(t.Status.Next())})
	case "p":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.updateCmd(t.ID, model.UpdateInput{Priority: model.Ptr(t.Priority.Next())})
	case "d":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.deleteCmd(t.ID)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	t := ui.Current()
	st := m.sess.Store()
	user := st.User()

	header := t.Title.Render("TaskTracker")
	if user != nil && user.Email != "" {
		header += "  " + t.Muted.Render(user.Email)
	}
	all := st.Tasks()
	counts := tasks.Count(all)

	lines := []string{header, ui.CountsLine(counts), ui.FilterBar(m.filter, counts)}
	if m.mode == searching {
		lines = append(lines, m.search.View())
	} else if m.query != "" {
		lines = append(lines, t.Muted.Render("search: "+m.query+"  (esc to clear)"))
	}
	lines = append(lines, "")

	switch {
	case user == nil && !m.loading:
		lines = append(lines, t.Muted.Render("Not signed in. Run `tasktracker auth login`, then press r."))
	case m.loading:
		lines = append(lines, t.Muted.Render("Loading tasks..."))
	case len(m.list.Items()) == 0:
		if m.query != "" || m.filter != tasks.All {
			lines = append(lines, t.Title.Render("No tasks found"), t.Muted.Render("Try adjusting your search or filters"))
		} else {
			lines = append(lines, t.Title.Render("No tasks yet"), t.Muted.Render("Press a to create your first task"))
		}
	default:
		lines = append(lines, m.list.View())
	}

	if m.mode == adding || m.mode == editing {
		lines = append(lines, m.form.view())
	}

	if m.last != nil {
		msg := m.last.Title
		if m.last.Description != "" {
			msg += ": " + m.last.Description
		}
		if m.last.Variant == tasks.VariantDestructive {
			lines = append(lines, t.Error.Render(t.SymFail+" "+msg))
		} else {
			lines = append(lines, t.Success.Render(t.SymOK+" "+msg))
		}
	}
	return ui.Panel(lines)
}
