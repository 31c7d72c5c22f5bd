package ui

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/scribble/internal/ai"
	"github.com/gravitrone/scribble/internal/controller"
	"github.com/gravitrone/scribble/internal/note"
	"github.com/gravitrone/scribble/internal/slot"
)

type fakeGateway struct {
	mu       sync.Mutex
	reply    string
	err      error
	title    string
	calls    int
	received string
}

func (g *fakeGateway) RunAction(_ context.Context, content string, _ ai.Action) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.received = content
	return g.reply, g.err
}

func (g *fakeGateway) GenerateTitle(_ context.Context, content string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.received = content
	return g.title
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type testEnv struct {
	app  App
	ctrl *controller.Controller
	slot *slot.Memory
	gw   *fakeGateway
}

// newTestEnv opens a store holding "older" (updatedAt 100) and "newer"
// (updatedAt 200).
func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	data, err := note.Encode([]note.Note{
		{ID: "older", Title: "Groceries", Content: "eggs and milk for the week", UpdatedAt: 100},
		{ID: "newer", Title: "Ideas", Content: "a terminal notebook with AI help", UpdatedAt: 200},
	})
	require.NoError(t, err)

	ms := int64(1000)
	mem := slot.NewMemoryWith(slot.DefaultName, data)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	store := note.Open(mem, note.WithLogger(logger), note.WithClock(func() time.Time {
		ms++
		return time.UnixMilli(ms)
	}))
	gw := &fakeGateway{}
	ctrl := controller.New(store, gw, logger)

	opts = append([]Option{WithLogger(logger)}, opts...)
	app := NewApp(ctrl, opts...)
	app.render = func(md string, _ int) (string, error) { return "RENDERED:" + md, nil }
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &testEnv{app: m.(App), ctrl: ctrl, slot: mem, gw: gw}
}

// drain runs cmd and every command it produces, feeding job and clipboard
// results back into the app. Commands that block longer than a short
// timeout, like toast timers, are abandoned.
func drain(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		done := make(chan tea.Msg, 1)
		go func() { done <- next() }()

		var msg tea.Msg
		select {
		case msg = <-done:
		case <-time.After(200 * time.Millisecond):
			continue
		}

		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case aiDoneMsg, clipboardDoneMsg:
			m, c := a.Update(msg)
			a = m.(App)
			queue = append(queue, c)
		}
	}
	return a
}

// press sends a key and drains the resulting commands.
func (e *testEnv) press(t *testing.T, keys ...tea.KeyMsg) {
	t.Helper()
	for _, k := range keys {
		m, cmd := e.app.Update(k)
		e.app = drain(t, m.(App), cmd)
	}
}

func (e *testEnv) activeNote(t *testing.T) note.Note {
	t.Helper()
	n, ok := e.ctrl.Active()
	require.True(t, ok)
	return n
}

func keyType(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func TestNewAppLoadsMostRecentNote(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, "newer", e.ctrl.State().ActiveID)
	assert.Equal(t, "Ideas", e.app.title.Value())
	assert.Equal(t, "a terminal notebook with AI help", e.app.editor.Value())
	assert.Equal(t, []string{"newer", "older"}, e.app.list.Items)
	assert.Equal(t, focusList, e.app.focus)
}

func TestListNavigationSelectsNote(t *testing.T) {
	e := newTestEnv(t)

	e.press(t, runeKey('j'))
	assert.Equal(t, "older", e.ctrl.State().ActiveID)
	assert.Equal(t, "Groceries", e.app.title.Value())

	e.press(t, keyType(tea.KeyUp))
	assert.Equal(t, "newer", e.ctrl.State().ActiveID)
}

func TestNewNoteFocusesTitle(t *testing.T) {
	e := newTestEnv(t)

	e.press(t, runeKey('n'))
	require.Equal(t, 3, e.ctrl.Len())
	n := e.activeNote(t)
	assert.Equal(t, note.DefaultTitle, n.Title)
	assert.Equal(t, focusTitle, e.app.focus)
	assert.Equal(t, n.ID, e.app.list.Items[0], "new note sorts first")

	e.press(t, runeKey('!'))
	assert.Equal(t, note.DefaultTitle+"!", e.activeNote(t).Title)
}

func TestTitleTypingAppendsAfterSwitchingNotes(t *testing.T) {
	e := newTestEnv(t)

	e.press(t, runeKey('j'), keyType(tea.KeyTab))
	require.Equal(t, focusTitle, e.app.focus)

	e.press(t, runeKey('!'))
	assert.Equal(t, "Groceries!", e.activeNote(t).Title)
	assert.Equal(t, "Groceries!", e.app.title.Value())
}

func TestEditorTypingUpdatesContentAndRecency(t *testing.T) {
	e := newTestEnv(t)

	e.press(t, runeKey('j'), keyType(tea.KeyEnter))
	require.Equal(t, focusEditor, e.app.focus)

	e.press(t, runeKey('s'))
	n := e.activeNote(t)
	assert.Equal(t, "older", n.ID)
	assert.Equal(t, "eggs and milk for the weeks", n.Content)
	assert.Equal(t, []string{"older", "newer"}, e.app.list.Items)

	// Digits type into the editor instead of triggering actions.
	e.press(t, runeKey('1'))
	assert.Equal(t, 0, e.gw.callCount())
	assert.True(t, strings.HasSuffix(e.activeNote(t).Content, "1"))

	e.press(t, keyType(tea.KeyEsc))
	assert.Equal(t, focusList, e.app.focus)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	e := newTestEnv(t)

	e.press(t, runeKey('d'))
	assert.Equal(t, "newer", e.app.confirmDelete)
	assert.Contains(t, e.app.View(), "Delete Note")

	e.press(t, runeKey('n'))
	assert.Empty(t, e.app.confirmDelete)
	assert.Equal(t, 2, e.ctrl.Len())

	e.press(t, runeKey('d'), runeKey('y'))
	assert.Equal(t, 1, e.ctrl.Len())
	assert.Equal(t, "older", e.ctrl.State().ActiveID)
	assert.Equal(t, "Groceries", e.app.title.Value())
}

func TestDeleteLastNoteIsIgnored(t *testing.T) {
	e := newTestEnv(t)
	e.press(t, runeKey('d'), runeKey('y'))
	require.Equal(t, 1, e.ctrl.Len())

	e.press(t, runeKey('d'))
	assert.Empty(t, e.app.confirmDelete)
	assert.Equal(t, 1, e.ctrl.Len())
}

func TestActionReplacesContent(t *testing.T) {
	e := newTestEnv(t)
	e.gw.reply = "- terminal notebook"

	e.press(t, runeKey('1'))
	assert.Equal(t, 1, e.gw.callCount())
	assert.Equal(t, "a terminal notebook with AI help", e.gw.received)
	assert.Equal(t, "- terminal notebook", e.activeNote(t).Content)
	assert.Equal(t, "- terminal notebook", e.app.editor.Value())
	assert.False(t, e.ctrl.Busy())
	assert.Contains(t, e.app.View(), "Summarize applied")
}

func TestBrainstormAppendsFromEditor(t *testing.T) {
	e := newTestEnv(t)
	e.gw.reply = "1. sync\n2. themes"

	e.press(t, keyType(tea.KeyEnter), altKey('3'))
	want := "a terminal notebook with AI help" + ai.AppendSeparator + "1. sync\n2. themes"
	assert.Equal(t, want, e.activeNote(t).Content)
	assert.Equal(t, want, e.app.editor.Value())
}

func TestActionWhileBusyIsRejected(t *testing.T) {
	e := newTestEnv(t)
	e.gw.reply = "short"

	m, first := e.app.Update(runeKey('5'))
	e.app = m.(App)
	require.NotNil(t, first)
	assert.True(t, e.ctrl.Busy())
	assert.Contains(t, e.app.View(), busyLabel)

	m, _ = e.app.Update(runeKey('6'))
	e.app = m.(App)
	assert.Equal(t, "warning", e.app.toast.level)

	// Editing stays locked while the job runs.
	m, _ = e.app.Update(keyType(tea.KeyEnter))
	e.app = m.(App)
	m, _ = e.app.Update(runeKey('x'))
	e.app = m.(App)
	assert.Equal(t, "a terminal notebook with AI help", e.activeNote(t).Content)

	e.app = drain(t, e.app, first)
	assert.False(t, e.ctrl.Busy())
	assert.Equal(t, 1, e.gw.callCount())
	assert.Equal(t, "short", e.activeNote(t).Content)
}

func TestActionErrorShowsUntilDismissed(t *testing.T) {
	e := newTestEnv(t)
	e.gw.err = &ai.ServiceError{Cause: errors.New("dial tcp: refused")}

	e.press(t, runeKey('2'))
	assert.Equal(t, "Failed to connect to the AI service. Please check your connection.", e.ctrl.LastError())
	assert.Contains(t, e.app.View(), "Attention")
	assert.Equal(t, "a terminal notebook with AI help", e.activeNote(t).Content)

	e.press(t, keyType(tea.KeyEsc))
	assert.Empty(t, e.ctrl.LastError())
	assert.NotContains(t, e.app.View(), "Attention")
}

func TestBlankContentSkipsAI(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, e.ctrl.EditContent("   "))

	m, cmd := e.app.Update(runeKey('1'))
	e.app = m.(App)
	assert.Nil(t, cmd)
	assert.False(t, e.ctrl.Busy())
	assert.Equal(t, 0, e.gw.callCount())
}

func TestAutoTitle(t *testing.T) {
	e := newTestEnv(t)
	e.gw.title = "Terminal Notebook Plan"

	e.press(t, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, "Terminal Notebook Plan", e.activeNote(t).Title)
	assert.Equal(t, "Terminal Notebook Plan", e.app.title.Value())
	assert.Contains(t, e.app.View(), "Title updated")
}

func TestResultLandsOnCapturedNote(t *testing.T) {
	e := newTestEnv(t)
	e.gw.reply = "rewritten"

	m, cmd := e.app.Update(runeKey('2'))
	e.app = m.(App)

	// Switching is allowed while busy; the result still targets "newer".
	e.press(t, runeKey('j'))
	require.Equal(t, "older", e.ctrl.State().ActiveID)

	e.app = drain(t, e.app, cmd)
	assert.Equal(t, "eggs and milk for the week", e.app.editor.Value(), "editor keeps the active note")
	n := noteByID(t, e.ctrl, "newer")
	assert.Equal(t, "rewritten", n.Content)
}

func noteByID(t *testing.T, c *controller.Controller, id string) note.Note {
	t.Helper()
	for n := range c.Notes() {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("note %s not found", id)
	return note.Note{}
}

func TestCopyUsesClipboard(t *testing.T) {
	var copied string
	e := newTestEnv(t, WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	e.press(t, runeKey('y'))
	assert.Equal(t, "a terminal notebook with AI help", copied)
	assert.Contains(t, e.app.View(), "copied")
}

func TestCopyFailureShowsError(t *testing.T) {
	e := newTestEnv(t, WithClipboard(func(string) error { return errors.New("no display") }))

	e.press(t, runeKey('y'))
	require.NotNil(t, e.app.toast)
	assert.Equal(t, "error", e.app.toast.level)
}

func TestPreviewRendersMarkdown(t *testing.T) {
	e := newTestEnv(t)

	e.press(t, runeKey('p'))
	assert.True(t, e.app.previewOpen)
	assert.Contains(t, e.app.View(), "RENDERED:# Ideas")

	e.press(t, keyType(tea.KeyEsc))
	assert.False(t, e.app.previewOpen)
}

func TestPreviewFallsBackOnRenderError(t *testing.T) {
	e := newTestEnv(t)
	e.app.render = func(string, int) (string, error) { return "", errors.New("bad style") }

	e.press(t, runeKey('p'))
	assert.Contains(t, e.app.View(), "# Ideas")
}

func TestHelpOverlay(t *testing.T) {
	e := newTestEnv(t)

	e.press(t, runeKey('?'))
	view := e.app.View()
	assert.Contains(t, view, "Help")
	assert.Contains(t, view, "Fix & Refine")

	e.press(t, keyType(tea.KeyEsc))
	assert.False(t, e.app.helpOpen)
}

func TestPersistFailureShowsToast(t *testing.T) {
	e := newTestEnv(t)
	e.slot.FailSaves(errors.New("disk full"))

	e.press(t, keyType(tea.KeyEnter), runeKey('!'))
	assert.True(t, strings.HasSuffix(e.activeNote(t).Content, "!"), "in-memory change stands")
	require.NotNil(t, e.app.toast)
	assert.Contains(t, e.app.toast.text, "could not be saved")
}

func TestKeyMissingToast(t *testing.T) {
	e := newTestEnv(t, WithKeyMissing(true))
	assert.Contains(t, e.app.View(), "scribble login")
	assert.NotNil(t, e.app.Init())

	m, _ := e.app.Update(clearToastMsg{})
	e.app = m.(App)
	assert.Nil(t, e.app.toast)
}

func TestQuitKeys(t *testing.T) {
	e := newTestEnv(t)

	_, cmd := e.app.Update(runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m, _ := e.app.Update(keyType(tea.KeyEnter))
	_, cmd = m.(App).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestNarrowLayoutStacks(t *testing.T) {
	e := newTestEnv(t)
	m, _ := e.app.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	view := m.(App).View()
	assert.Contains(t, view, "Notes (2)")
	assert.Contains(t, view, "Editor")
	assert.Contains(t, view, "AI Tools")
}

func TestWrapJoin(t *testing.T) {
	assert.Equal(t, "aa bb\ncc", wrapJoin([]string{"aa", "bb", "cc"}, " ", 5))
	assert.Equal(t, "", wrapJoin(nil, " ", 5))
}
