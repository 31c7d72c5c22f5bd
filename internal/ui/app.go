package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/scribble/internal/ai"
	"github.com/gravitrone/scribble/internal/controller"
	"github.com/gravitrone/scribble/internal/note"
	"github.com/gravitrone/scribble/internal/ui/components"
)

// --- Focus ---

type focusArea int

const (
	focusList focusArea = iota
	focusTitle
	focusEditor
)

const (
	untitledLabel     = "Untitled Note"
	emptyContentLabel = "No content yet..."
	snippetRunes      = 60
	busyLabel         = "AI is thinking..."

	listWidth     = 34
	wideThreshold = 100
	toastDuration = 2500 * time.Millisecond
)

// --- Messages ---

type aiDoneMsg struct{ res controller.Result }
type clipboardDoneMsg struct{ err error }
type clearToastMsg struct{}

type appToast struct {
	level string
	text  string
}

// --- App Model ---

// App is the root TUI model: a note list, the editor for the active note,
// and the AI action panel.
type App struct {
	ctrl       *controller.Controller
	logger     *slog.Logger
	keyMissing bool

	width  int
	height int
	focus  focusArea

	list    *components.List
	title   textinput.Model
	editor  textarea.Model
	spinner spinner.Model

	helpOpen      bool
	previewOpen   bool
	confirmDelete string // id of the note awaiting delete confirmation
	toast         *appToast

	copy   func(string) error
	render markdownRenderer
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithKeyMissing shows a login hint on startup.
func WithKeyMissing(missing bool) Option {
	return func(a *App) { a.keyMissing = missing }
}

// WithClipboard overrides the clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(a *App) { a.copy = write }
}

// NewApp creates the root application model.
func NewApp(ctrl *controller.Controller, opts ...Option) App {
	title := textinput.New()
	title.Placeholder = untitledLabel
	title.Prompt = ""
	title.CharLimit = 120

	editor := textarea.New()
	editor.Placeholder = "Start writing..."
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.Prompt = ""

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = AccentStyle

	a := App{
		ctrl:    ctrl,
		logger:  slog.Default(),
		focus:   focusList,
		list:    components.NewList(10),
		title:   title,
		editor:  editor,
		spinner: spin,
		copy:    clipboard.WriteAll,
		render:  renderGlamour,
	}
	for _, opt := range opts {
		opt(&a)
	}
	if a.keyMissing {
		a.toast = &appToast{level: "warning", text: "No API key configured. Run 'scribble login' to enable AI tools."}
	}
	a.refreshList()
	a.loadActive()
	return a
}

func (a App) Init() tea.Cmd {
	if a.toast != nil {
		return clearToastAfter()
	}
	return nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case spinner.TickMsg:
		if !a.ctrl.Busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case aiDoneMsg:
		return a.finishJob(msg.res)

	case clipboardDoneMsg:
		if msg.err != nil {
			a.logger.Warn("clipboard write failed", "err", msg.err)
			cmd := a.setToast("error", "Could not copy to clipboard")
			return a, cmd
		}
		cmd := a.setToast("success", "Note copied to clipboard")
		return a, cmd

	case clearToastMsg:
		a.toast = nil
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	cmd := a.forwardToFocused(msg)
	return a, cmd
}

// --- Key Handling ---

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isForceQuit(msg) {
		return a, tea.Quit
	}

	switch {
	case a.confirmDelete != "":
		return a.handleConfirmKeys(msg)
	case a.helpOpen:
		if isBack(msg) || isKey(msg, "?", "q") {
			a.helpOpen = false
		}
		return a, nil
	case a.previewOpen:
		if isBack(msg) || isKey(msg, "p") {
			a.previewOpen = false
		} else if isKey(msg, "q") {
			return a, tea.Quit
		}
		return a, nil
	}

	if action, ok := actionForKey(msg, true); ok {
		return a.startJob(controller.JobAction, action)
	}
	if isAutoTitle(msg) {
		return a.startJob(controller.JobTitle, "")
	}

	switch a.focus {
	case focusTitle:
		return a.handleTitleKeys(msg)
	case focusEditor:
		return a.handleEditorKeys(msg)
	default:
		return a.handleListKeys(msg)
	}
}

func (a App) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if action, ok := actionForKey(msg, false); ok {
		return a.startJob(controller.JobAction, action)
	}

	switch {
	case isQuit(msg):
		return a, tea.Quit
	case isUp(msg):
		a.list.Up()
		a.selectCursor()
	case isDown(msg):
		a.list.Down()
		a.selectCursor()
	case isEnter(msg):
		cmd := a.setFocus(focusEditor)
		return a, cmd
	case isFocusNext(msg):
		cmd := a.setFocus(focusTitle)
		return a, cmd
	case isKey(msg, "n"):
		if _, err := a.ctrl.CreateNote(); err != nil {
			cmd := a.persistError(err)
			return a, cmd
		}
		a.refreshList()
		a.loadActive()
		cmd := a.setFocus(focusTitle)
		return a, cmd
	case isKey(msg, "d"):
		if a.ctrl.Len() <= 1 {
			return a, nil
		}
		if n, ok := a.ctrl.Active(); ok {
			a.confirmDelete = n.ID
		}
	case isKey(msg, "p"):
		a.previewOpen = true
	case isKey(msg, "y"):
		cmd := a.copyActive()
		return a, cmd
	case isKey(msg, "?"):
		a.helpOpen = true
	case isBack(msg):
		a.ctrl.ClearError()
	}
	return a, nil
}

func (a App) handleTitleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isBack(msg):
		cmd := a.setFocus(focusList)
		return a, cmd
	case isEnter(msg), isFocusNext(msg):
		cmd := a.setFocus(focusEditor)
		return a, cmd
	}

	var cmd tea.Cmd
	a.title, cmd = a.title.Update(msg)
	if err := a.syncTitle(); err != nil {
		perr := a.persistError(err)
		return a, tea.Batch(cmd, perr)
	}
	return a, cmd
}

func (a App) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isBack(msg), isFocusNext(msg):
		cmd := a.setFocus(focusList)
		return a, cmd
	}
	if a.ctrl.Busy() {
		return a, nil
	}

	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	if err := a.syncContent(); err != nil {
		perr := a.persistError(err)
		return a, tea.Batch(cmd, perr)
	}
	return a, cmd
}

func (a App) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isKey(msg, "y"):
		id := a.confirmDelete
		a.confirmDelete = ""
		deleted, err := a.ctrl.DeleteNote(id)
		a.refreshList()
		a.loadActive()
		if err != nil {
			cmd := a.persistError(err)
			return a, cmd
		}
		if deleted {
			cmd := a.setToast("success", "Note deleted")
			return a, cmd
		}
	case isKey(msg, "n"), isBack(msg):
		a.confirmDelete = ""
	}
	return a, nil
}

func (a *App) forwardToFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.focus {
	case focusTitle:
		a.title, cmd = a.title.Update(msg)
	case focusEditor:
		a.editor, cmd = a.editor.Update(msg)
	}
	return cmd
}

// --- AI Jobs ---

func (a App) startJob(kind controller.JobKind, action ai.Action) (tea.Model, tea.Cmd) {
	job, err := a.ctrl.Begin(kind, action)
	if errors.Is(err, controller.ErrBusy) {
		cmd := a.setToast("warning", "Wait for the current AI request to finish")
		return a, cmd
	}
	if err != nil {
		cmd := a.setToast("error", err.Error())
		return a, cmd
	}
	if job == nil {
		return a, nil
	}

	a.logger.Debug("ai job started", "kind", kind.String(), "action", string(action), "note", job.NoteID)
	gw := a.ctrl.Gateway()
	run := func() tea.Msg {
		return aiDoneMsg{res: job.Run(context.Background(), gw)}
	}
	return a, tea.Batch(a.spinner.Tick, run)
}

func (a App) finishJob(res controller.Result) (tea.Model, tea.Cmd) {
	err := a.ctrl.Finish(res)
	a.refreshList()
	if res.Job != nil {
		if active, ok := a.ctrl.Active(); ok && active.ID == res.Job.NoteID {
			a.loadActive()
		}
	}
	if err != nil {
		cmd := a.persistError(err)
		return a, cmd
	}
	if a.ctrl.LastError() != "" || res.Job == nil {
		return a, nil
	}
	if res.Job.Kind == controller.JobTitle {
		cmd := a.setToast("success", "Title updated")
		return a, cmd
	}
	cmd := a.setToast("success", res.Job.Action.Label()+" applied")
	return a, cmd
}

// --- State Sync ---

// refreshList rebuilds the list in recency order with the cursor on the
// active note.
func (a *App) refreshList() {
	var ids []string
	for n := range a.ctrl.Notes() {
		ids = append(ids, n.ID)
	}
	a.list.Reset(ids, a.ctrl.State().ActiveID)
}

// loadActive copies the active note into the title and editor fields.
func (a *App) loadActive() {
	n, ok := a.ctrl.Active()
	if !ok {
		a.title.SetValue("")
		a.editor.SetValue("")
		return
	}
	a.title.SetValue(n.Title)
	a.title.CursorEnd()
	a.editor.SetValue(n.Content)
}

func (a *App) selectCursor() {
	id, ok := a.list.Current()
	if !ok || id == a.ctrl.State().ActiveID {
		return
	}
	if err := a.ctrl.SelectNote(id); err != nil {
		a.logger.Warn("select note", "note", id, "err", err)
		return
	}
	a.loadActive()
}

func (a *App) syncTitle() error {
	n, ok := a.ctrl.Active()
	if !ok || n.Title == a.title.Value() {
		return nil
	}
	err := a.ctrl.EditTitle(a.title.Value())
	a.refreshList()
	return err
}

func (a *App) syncContent() error {
	n, ok := a.ctrl.Active()
	if !ok || n.Content == a.editor.Value() {
		return nil
	}
	err := a.ctrl.EditContent(a.editor.Value())
	a.refreshList()
	return err
}

func (a *App) setFocus(f focusArea) tea.Cmd {
	a.focus = f
	a.title.Blur()
	a.editor.Blur()
	switch f {
	case focusTitle:
		return a.title.Focus()
	case focusEditor:
		return a.editor.Focus()
	}
	return nil
}

func (a *App) resize() {
	bodyHeight := max(a.height-14, 6)
	a.list.SetPageSize(max(bodyHeight/3, 1))

	editorWidth := a.width - 4
	if a.width >= wideThreshold {
		editorWidth = a.width - listWidth - 6
	}
	editorWidth = max(editorWidth, 20)
	a.title.Width = editorWidth - 4
	a.editor.SetWidth(editorWidth - 4)
	a.editor.SetHeight(max(bodyHeight-8, 3))
}

// --- Side Effects ---

func (a App) copyActive() tea.Cmd {
	n, ok := a.ctrl.Active()
	if !ok {
		return nil
	}
	write := a.copy
	content := n.Content
	return func() tea.Msg {
		return clipboardDoneMsg{err: write(content)}
	}
}

func (a *App) persistError(err error) tea.Cmd {
	a.logger.Warn("note change not saved", "err", err)
	if errors.Is(err, note.ErrPersist) {
		return a.setToast("error", "Changes could not be saved to disk")
	}
	return a.setToast("error", err.Error())
}

func (a *App) setToast(level, text string) tea.Cmd {
	a.toast = &appToast{
		level: level,
		text:  components.SanitizeOneLine(text),
	}
	return clearToastAfter()
}

func clearToastAfter() tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

// --- View ---

func (a App) View() string {
	banner := centerBlockUniform(RenderBanner(), a.width)

	var content string
	switch {
	case a.confirmDelete != "":
		content = a.renderDeleteConfirm()
	case a.helpOpen:
		content = a.renderHelp()
	case a.previewOpen:
		content = a.renderPreview()
	default:
		content = a.renderBody()
	}
	content = centerBlockUniform(content, a.width)

	hints := components.StatusBar(a.statusHints(), a.width)

	feedback := ""
	if msg := a.ctrl.LastError(); msg != "" {
		feedback = "\n\n" + centerBlockUniform(components.ErrorBox("Attention", msg, a.width), a.width)
	} else if a.toast != nil {
		feedback = "\n\n" + centerBlockUniform(a.renderToast(), a.width)
	}

	return fmt.Sprintf("%s\n%s\n\n%s%s", banner, content, hints, feedback)
}

func (a App) renderBody() string {
	if a.width >= wideThreshold {
		right := lipgloss.JoinVertical(lipgloss.Left, a.renderEditor(a.width-listWidth-2), a.renderActions(a.width-listWidth-2))
		return lipgloss.JoinHorizontal(lipgloss.Top, a.renderList(listWidth), "  ", right)
	}
	width := max(a.width, 40)
	return lipgloss.JoinVertical(lipgloss.Left, a.renderList(width), a.renderEditor(width), a.renderActions(width))
}

func (a App) renderList(width int) string {
	inner := max(width-4, 10)
	activeID := a.ctrl.State().ActiveID

	byID := make(map[string]note.Note, len(a.list.Items))
	for n := range a.ctrl.Notes() {
		byID[n.ID] = n
	}

	var rows []string
	for i, id := range a.list.Visible() {
		n := byID[id]
		title := strings.TrimSpace(n.Title)
		if title == "" {
			title = untitledLabel
		}
		snippet := components.Snippet(n.Content, snippetRunes, emptyContentLabel)

		marker := "  "
		titleStyle := NormalStyle
		if id == activeID {
			marker = "▸ "
			titleStyle = SelectedStyle
		}
		rows = append(rows,
			titleStyle.Render(marker+components.ClampTextWidth(title, inner-2)),
			MutedStyle.Render("  "+components.ClampTextWidth(snippet, inner-2)),
		)
		if a.list.RelToAbs(i) < len(a.list.Items)-1 {
			rows = append(rows, "")
		}
	}

	header := fmt.Sprintf("Notes (%d)", len(a.list.Items))
	return components.Panel(header, strings.Join(rows, "\n"), width, a.focus == focusList)
}

func (a App) renderEditor(width int) string {
	label := FieldLabelStyle.Render("Title")
	if n, ok := a.ctrl.Active(); ok {
		label += MutedStyle.Render("  updated " + n.Updated().Format("Jan 2 15:04"))
	}
	body := label + "\n" + a.title.View() + "\n\n" + a.editor.View()
	return components.Panel("Editor", body, width, a.focus != focusList)
}

func (a App) renderActions(width int) string {
	busy := a.ctrl.Busy()
	parts := make([]string, 0, len(ai.Actions()))
	for i, action := range ai.Actions() {
		key := fmt.Sprintf("%d", i+1)
		if busy {
			parts = append(parts, ActionKeyDisabledStyle.Render(key)+" "+MutedStyle.Render(action.Label()))
			continue
		}
		parts = append(parts, ActionKeyStyle.Render(key)+" "+NormalStyle.Render(action.Label()))
	}

	rows := []string{wrapJoin(parts, "   ", max(width-4, 10))}
	if busy {
		rows = append(rows, "", a.spinner.View()+" "+AccentStyle.Render(busyLabel))
	}
	return components.Panel("AI Tools", strings.Join(rows, "\n"), width, false)
}

// wrapJoin joins parts with sep, breaking onto a new line before exceeding
// width.
func wrapJoin(parts []string, sep string, width int) string {
	var lines []string
	line := ""
	for _, p := range parts {
		candidate := p
		if line != "" {
			candidate = line + sep + p
		}
		if line != "" && lipgloss.Width(candidate) > width {
			lines = append(lines, line)
			line = p
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a App) renderDeleteConfirm() string {
	title := untitledLabel
	if n, ok := a.ctrl.Active(); ok && strings.TrimSpace(n.Title) != "" {
		title = n.Title
	}
	body := fmt.Sprintf("Delete %q? This cannot be undone.", components.ClampTextWidth(title, 30))
	return components.Indent(components.ConfirmDialog("Delete Note", body), 1)
}

func (a App) renderHelp() string {
	lines := []string{MutedStyle.Render("esc to close"), ""}
	for _, hint := range a.helpHints() {
		lines = append(lines, "  "+hint)
	}
	return components.Indent(components.TitledBox("Help", strings.Join(lines, "\n"), a.width), 1)
}

func (a App) helpHints() []string {
	hints := []string{
		components.Hint("↑/↓", "Select note"),
		components.Hint("n", "New note"),
		components.Hint("d", "Delete note"),
		components.Hint("tab", "Next field"),
		components.Hint("esc", "Back to list / dismiss error"),
		components.Hint("ctrl+t", "Auto-title"),
		components.Hint("p", "Markdown preview"),
		components.Hint("y", "Copy note"),
		components.Hint("q", "Quit"),
	}
	for i, action := range ai.Actions() {
		hints = append(hints, components.Hint(fmt.Sprintf("%d / alt+%d", i+1, i+1), action.Label()))
	}
	return hints
}

func (a App) statusHints() []string {
	switch {
	case a.confirmDelete != "":
		return []string{components.Hint("y", "Delete"), components.Hint("n", "Cancel")}
	case a.helpOpen, a.previewOpen:
		return []string{components.Hint("esc", "Close")}
	}

	aiHint := components.Hint("1-6", "AI")
	if a.focus != focusList {
		aiHint = components.Hint("alt+1-6", "AI")
	}
	if a.ctrl.Busy() {
		aiHint = components.DisabledHint("1-6", "AI")
	}

	switch a.focus {
	case focusTitle, focusEditor:
		return []string{
			components.Hint("esc", "List"),
			components.Hint("tab", "Next"),
			aiHint,
			components.Hint("ctrl+t", "Title"),
		}
	default:
		return []string{
			components.Hint("↑/↓", "Select"),
			components.Hint("enter", "Edit"),
			components.Hint("n", "New"),
			components.Hint("d", "Delete"),
			aiHint,
			components.Hint("?", "Help"),
			components.Hint("q", "Quit"),
		}
	}
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	switch a.toast.level {
	case "success":
		return components.TitledBox("Success", SuccessStyle.Render(a.toast.text), a.width)
	case "warning":
		return components.TitledBox("Warning", WarningStyle.Render(a.toast.text), a.width)
	case "error":
		return components.ErrorBox("Error", a.toast.text, a.width)
	}
	return components.TitledBox("Info", a.toast.text, a.width)
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, lipgloss.Width(line))
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	pad := (width - maxWidth) / 2
	if pad <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
