package tui

import (
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tasktracker/internal/auth"
	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/store/memstore"
	"github.com/Makepad-fr/tasktracker/internal/tasks"
)

func newModel(t *testing.T) (Model, *tasks.Session) {
	return newModelWith(t, auth.NewStatic(&auth.User{ID: "u1", Email: "ada@example.com"}))
}

func newModelWith(t *testing.T, ids auth.Provider) (Model, *tasks.Session) {
	notes := NewNotifier()
	sess := tasks.NewSession(memstore.New(), ids, tasks.WithNotifier(notes))
	m := New(context.Background(), sess, notes)
	m.cursorMode = cursor.CursorStatic

	// load synchronously instead of through Init
	m = step(t, m, loadedMsg{err: sess.Refresh(context.Background())})
	return m, sess
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// press sends a key and runs the command it returns, feeding a resulting
// store message back in.
func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case opDoneMsg, loadedMsg:
		m = step(t, m, msg)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	return press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func TestEmptyDashboard(t *testing.T) {
	m, _ := newModel(t)
	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "No tasks yet")
	assert.Contains(t, m.View(), "ada@example.com")
}

func TestAddCycleAndDelete(t *testing.T) {
	m, sess := newModel(t)

	m = press(t, m, runeKey('a'))
	require.Equal(t, adding, m.mode)
	m = typeText(t, m, "Buy milk")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, browsing, m.mode)
	require.Len(t, sess.Store().Tasks(), 1)
	assert.Len(t, m.list.Items(), 1)
	assert.Contains(t, m.View(), "Buy milk")

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, model.StatusInProgress, sess.Store().Tasks()[0].Status)

	m = press(t, m, runeKey('p'))
	assert.Equal(t, model.PriorityHigh, sess.Store().Tasks()[0].Priority)

	m = press(t, m, runeKey('d'))
	assert.Empty(t, sess.Store().Tasks())
	assert.Contains(t, m.View(), "No tasks yet")
}

func TestAddRejectsEmptyTitle(t *testing.T) {
	m, sess := newModel(t)

	m = press(t, m, runeKey('a'))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, adding, m.mode)
	assert.Equal(t, "Title is required", m.form.err(fieldTitle))
	assert.Contains(t, m.View(), "Title is required")
	assert.Empty(t, sess.Store().Tasks())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, browsing, m.mode)
}

func TestSearchAndFilter(t *testing.T) {
	m, sess := newModel(t)
	ctx := context.Background()
	_, err := sess.Store().Create(ctx, model.CreateInput{Title: "Buy milk"})
	require.NoError(t, err)
	_, err = sess.Store().Create(ctx, model.CreateInput{Title: "Call mom", Status: model.StatusDone})
	require.NoError(t, err)
	m = step(t, m, opDoneMsg{})
	require.Len(t, m.list.Items(), 2)

	m = press(t, m, runeKey('/'))
	m = typeText(t, m, "MILK")
	assert.Len(t, m.list.Items(), 1)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "MILK", m.query)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.query)
	assert.Len(t, m.list.Items(), 2)

	// all -> todo -> in_progress
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tasks.StatusFilter(model.StatusTodo), m.filter)
	assert.Len(t, m.list.Items(), 1)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Empty(t, m.list.Items())
	assert.Contains(t, m.View(), "No tasks found")
}

func TestNotificationStatusLine(t *testing.T) {
	m, _ := newModel(t)
	m = step(t, m, notifyMsg(tasks.Notification{Title: "Error deleting task", Description: "boom", Variant: tasks.VariantDestructive}))
	require.NotNil(t, m.last)
	assert.Contains(t, m.View(), "Error deleting task: boom")
}

func TestSignOutClearsTasks(t *testing.T) {
	m, sess := newModel(t)
	_, err := sess.Store().Create(context.Background(), model.CreateInput{Title: "Buy milk"})
	require.NoError(t, err)
	m = step(t, m, opDoneMsg{})

	m = press(t, m, runeKey('L'))
	assert.Nil(t, sess.Store().User())
	assert.Empty(t, m.list.Items())
	assert.Contains(t, m.View(), "Not signed in")
}

// envProvider is signed in through the environment, so it cannot sign out.
type envProvider struct{}

func (envProvider) CurrentUser() *auth.User { return &auth.User{ID: "u1", Email: "ada@example.com"} }
func (envProvider) SignOut() error          { return auth.ErrEnvToken }

func TestSignOutFailureIsShown(t *testing.T) {
	m, sess := newModelWith(t, envProvider{})
	_, err := sess.Store().Create(context.Background(), model.CreateInput{Title: "Buy milk"})
	require.NoError(t, err)
	m = step(t, m, opDoneMsg{})

	m = press(t, m, runeKey('L'))
	assert.False(t, m.loading)
	require.NotNil(t, m.last)
	assert.Equal(t, tasks.VariantDestructive, m.last.Variant)

	view := m.View()
	assert.Contains(t, view, "Error signing out")
	assert.Contains(t, view, auth.TokenEnv)
	assert.Contains(t, view, "Buy milk")
}

func TestAddWithAllFields(t *testing.T) {
	m, sess := newModel(t)
	tab := tea.KeyMsg{Type: tea.KeyTab}
	right := tea.KeyMsg{Type: tea.KeyRight}

	m = press(t, m, runeKey('a'))
	m = typeText(t, m, "Pay rent")
	m = press(t, m, tab)
	m = typeText(t, m, "ask landlord")
	m = press(t, m, tab)
	m = typeText(t, m, "2025-03-01")
	m = press(t, m, tab)
	m = press(t, m, right)
	m = press(t, m, tab)
	m = press(t, m, right)
	assert.Contains(t, m.View(), "< High >")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, browsing, m.mode)
	list := sess.Store().Tasks()
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, "Pay rent", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "ask landlord", *got.Description)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, model.Date{Year: 2025, Month: time.March, Day: 1}, *got.DueDate)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Contains(t, m.View(), "ask landlord")
}

func TestAddRejectsBadDueDate(t *testing.T) {
	m, sess := newModel(t)
	tab := tea.KeyMsg{Type: tea.KeyTab}

	m = press(t, m, runeKey('a'))
	m = typeText(t, m, "Pay rent")
	m = press(t, m, tab)
	m = press(t, m, tab)
	m = typeText(t, m, "tomorrow")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, adding, m.mode)
	assert.Equal(t, "Due date must be YYYY-MM-DD", m.form.err(fieldDue))
	assert.Empty(t, sess.Store().Tasks())
}

func TestEditSendsOnlyChangedFields(t *testing.T) {
	m, sess := newModel(t)
	created, err := sess.Store().Create(context.Background(), model.CreateInput{Title: "Pay rent", Description: "ask landlord"})
	require.NoError(t, err)
	m = step(t, m, opDoneMsg{})

	// nothing changed: the form closes without a backend call
	m = press(t, m, runeKey('e'))
	require.Equal(t, editing, m.mode)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, browsing, m.mode)

	m = press(t, m, runeKey('e'))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "2025-04-01")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, browsing, m.mode)
	got := sess.Store().Tasks()[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Pay rent", got.Title)
	assert.Nil(t, got.Description)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, model.Date{Year: 2025, Month: time.April, Day: 1}, *got.DueDate)
}
