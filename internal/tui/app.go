// internal/tui/app.go
//
// This is the interactive planner. It uses bubbletea, which follows The Elm
// Architecture:
//
// 1. Model: the App, wrapping a calculator.Session
// 2. Update: key presses become session operations
// 3. View: the form and the results card rendered from a session snapshot
//
// Every edit goes through the session, so the results panel always shows the
// estimate for exactly what is on screen.

package tui

import (
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/swp-planner/internal/calculator"
	"github.com/kingrea/swp-planner/internal/config"
	"github.com/kingrea/swp-planner/internal/logbook"
	"github.com/kingrea/swp-planner/internal/summary"
)

const logPanelLines = 4

// ClipboardWriter copies text to the system clipboard.
type ClipboardWriter func(string) error

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithSession runs the form against an existing session.
func WithSession(s *calculator.Session) AppOption {
	return func(a *App) {
		if s != nil {
			a.session = s
		}
	}
}

// WithLogbook records edits and actions in the given journal.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithClipboard overrides the clipboard used by the copy action.
func WithClipboard(w ClipboardWriter) AppOption {
	return func(a *App) {
		if w != nil {
			a.clipboard = w
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config    *config.Config
	session   *calculator.Session
	logbook   *logbook.Logbook
	clipboard ClipboardWriter

	fields    []formField
	focus     int
	input     textinput.Model
	editStart string

	statusMsg string
	err       error

	width  int
	height int
}

// NewApp creates the planner. cfg may be nil, in which case the stock
// defaults are used and the default mode cannot be saved.
func NewApp(cfg *config.Config, opts ...AppOption) *App {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 64
	input.Width = 24

	a := &App{
		config:    cfg,
		clipboard: clipboard.WriteAll,
		input:     input,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.session == nil {
		var sessionOpts []calculator.Option
		if cfg != nil {
			sessionOpts = cfg.SessionOptions()
		}
		a.session = calculator.NewSession(sessionOpts...)
	}
	a.fields = buildFields(a.session)
	a.focusField(0)
	a.logbook.SetContext(a.resultLine)
	a.logInfo("Session opened · mode: %s", a.session.Mode())
	return a
}

// Session exposes the underlying session, mainly for tests and callers that
// want the final estimate after the program exits.
func (a *App) Session() *calculator.Session {
	return a.session
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		field := a.current()
		switch msg.String() {
		case "ctrl+c", "esc":
			a.leaveField()
			a.logInfo("Session closed")
			return a, tea.Quit
		case "tab", "down":
			return a, a.moveFocus(1)
		case "shift+tab", "up":
			return a, a.moveFocus(-1)
		case "ctrl+t":
			return a, a.toggleMode()
		case "ctrl+y":
			a.copySummary()
			return a, nil
		case "ctrl+e":
			a.exportStub()
			return a, nil
		case "ctrl+s":
			a.saveDefaultMode()
			return a, nil
		case "enter":
			switch field.kind {
			case kindToggle:
				a.apply(field.toggle)
			case kindChoice:
				a.apply(func(s *calculator.Session) { field.step(s, 1) })
			default:
				return a, a.moveFocus(1)
			}
			return a, nil
		case " ", "space":
			if field.kind == kindToggle {
				a.apply(field.toggle)
				return a, nil
			}
		case "left", "h":
			if field.kind == kindChoice {
				a.apply(func(s *calculator.Session) { field.step(s, -1) })
				return a, nil
			}
		case "right", "l":
			if field.kind == kindChoice {
				a.apply(func(s *calculator.Session) { field.step(s, 1) })
				return a, nil
			}
		}
		if field.kind == kindText {
			return a, a.updateInput(msg)
		}
		return a, nil
	}

	if a.current().kind == kindText {
		return a, a.updateInput(msg)
	}
	return a, nil
}

func (a *App) current() formField {
	if len(a.fields) == 0 {
		return formField{}
	}
	return a.fields[a.focus]
}

// updateInput forwards a message to the text box and commits the new value
// straight away so the results follow every keystroke.
func (a *App) updateInput(msg tea.Msg) tea.Cmd {
	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if after := a.input.Value(); after != before {
		field := a.current()
		if field.commit != nil {
			field.commit(a.session, after)
			a.statusMsg = ""
		}
	}
	return cmd
}

// apply runs a non-text edit and rebuilds the form, since toggles and cohort
// changes add or remove rows.
func (a *App) apply(op func(*calculator.Session)) {
	if op == nil {
		return
	}
	field := a.current()
	before := field.value(a.session)
	op(a.session)
	after := field.value(a.session)
	if before != after {
		a.logInfo("Edit · %s: %s → %s", field.label, before, after)
	}
	a.rebuild(field.id)
}

func (a *App) moveFocus(delta int) tea.Cmd {
	if len(a.fields) == 0 {
		return nil
	}
	a.leaveField()
	id := a.current().id
	a.rebuild(id)
	next := (a.focus + delta + len(a.fields)) % len(a.fields)
	return a.focusField(next)
}

// leaveField logs a text edit once, when focus moves away from it.
func (a *App) leaveField() {
	field := a.current()
	if field.kind != kindText || field.value == nil {
		return
	}
	if now := field.value(a.session); now != a.editStart {
		a.logInfo("Edit · %s: %q → %q", strings.TrimSpace(field.label), a.editStart, now)
		a.editStart = now
	}
}

func (a *App) focusField(idx int) tea.Cmd {
	if len(a.fields) == 0 {
		return nil
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(a.fields) {
		idx = len(a.fields) - 1
	}
	a.focus = idx
	field := a.fields[idx]
	if field.kind != kindText {
		a.input.Blur()
		a.editStart = ""
		return nil
	}
	a.editStart = field.value(a.session)
	a.input.SetValue(a.editStart)
	a.input.CursorEnd()
	return a.input.Focus()
}

// rebuild regenerates the field list and keeps focus on the field with the
// given id, or the nearest position if it disappeared.
func (a *App) rebuild(focusID string) {
	a.fields = buildFields(a.session)
	for i, f := range a.fields {
		if f.id == focusID {
			a.focus = i
			return
		}
	}
	if a.focus >= len(a.fields) {
		a.focus = len(a.fields) - 1
	}
	a.focusField(a.focus)
}

func (a *App) toggleMode() tea.Cmd {
	a.leaveField()
	next := calculator.ModeDetailed
	if a.session.Mode() == calculator.ModeDetailed {
		next = calculator.ModeQuick
	}
	a.session.SetMode(next)
	a.logInfo("Mode · %s", next)
	a.statusMsg = "Switched to " + string(next) + " mode"
	id := a.current().id
	a.fields = buildFields(a.session)
	for i, f := range a.fields {
		if f.id == id {
			return a.focusField(i)
		}
	}
	return a.focusField(a.focus)
}

func (a *App) copySummary() {
	snap := a.session.Snapshot()
	text := summary.Text(snap.Results, snap.Assumptions.Currency, snap.Inputs.ClientName)
	if err := a.clipboard(text); err != nil {
		a.err = err
		a.statusMsg = "Copy failed: " + err.Error()
		a.logError("Copy failed: %v", err)
		return
	}
	a.err = nil
	a.statusMsg = "Copied to clipboard · estimate summary copied successfully"
	a.logInfo("Copy · summary")
}

// exportStub acknowledges the export action. Document generation is not
// implemented.
func (a *App) exportStub() {
	a.statusMsg = "Export started · generating PPT one-pager..."
	a.logInfo("Export requested")
}

func (a *App) saveDefaultMode() {
	if a.config == nil {
		a.statusMsg = "No project config loaded; run `swp-planner init` first"
		return
	}
	if err := a.config.SetDefaultMode(a.session.Mode()); err != nil {
		a.err = err
		a.statusMsg = "Save failed: " + err.Error()
		a.logError("Save default mode failed: %v", err)
		return
	}
	a.err = nil
	a.statusMsg = "Saved " + string(a.session.Mode()) + " as the default mode"
	a.logInfo("Config · default mode set to %s", a.session.Mode())
}

func (a *App) resultLine() string {
	snap := a.session.Snapshot()
	return summary.Money(snap.Results.TotalCost, snap.Assumptions.Currency) +
		" · " + strconv.Itoa(snap.Results.TotalWeeks) + " weeks · " +
		summary.FTE(snap.Results.FTEEquivalent) + " FTE · " + string(snap.Results.ConfidenceLevel)
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}
