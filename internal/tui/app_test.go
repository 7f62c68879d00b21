package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/swp-planner/internal/calculator"
	"github.com/kingrea/swp-planner/internal/config"
	"github.com/kingrea/swp-planner/internal/logbook"
	"github.com/kingrea/swp-planner/internal/summary"
)

type clipboardStub struct {
	text string
	err  error
}

func (c *clipboardStub) write(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func newTestApp(t *testing.T, opts ...AppOption) (*App, *clipboardStub) {
	t.Helper()
	clip := &clipboardStub{}
	opts = append([]AppOption{WithClipboard(clip.write)}, opts...)
	return NewApp(nil, opts...), clip
}

func send(app *App, msgs ...tea.Msg) *App {
	for _, msg := range msgs {
		model, _ := app.Update(msg)
		app = model.(*App)
	}
	return app
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func focusOn(t *testing.T, app *App, id string) {
	t.Helper()
	for i, f := range app.fields {
		if f.id == id {
			app.focusField(i)
			return
		}
	}
	t.Fatalf("field %s not on the form", id)
}

func hasField(app *App, id string) bool {
	for _, f := range app.fields {
		if f.id == id {
			return true
		}
	}
	return false
}

func TestNewAppShowsDefaultEstimate(t *testing.T) {
	app, _ := newTestApp(t)
	if got := app.Session().Results().TotalCost; got != 49834 {
		t.Fatalf("total cost = %d, want 49834", got)
	}
	if app.current().id != "client" {
		t.Fatalf("expected focus on client name, got %s", app.current().id)
	}
	view := app.View()
	for _, want := range []string{"$49,834", "5 weeks", "1.5 FTE", "Medium Confidence"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestTypingRecomputesOnEveryKeystroke(t *testing.T) {
	app, _ := newTestApp(t)
	app = send(app, key(tea.KeyTab))
	if app.current().id != "roles" {
		t.Fatalf("tab should move to roles, got %s", app.current().id)
	}
	app = send(app, key(tea.KeyBackspace), key(tea.KeyBackspace), key(tea.KeyBackspace))
	if got := app.Session().Inputs().RolesToMap; got != 1 {
		t.Fatalf("empty roles should fall back to 1, got %d", got)
	}
	app = send(app, runes("6"), runes("0"), runes("0"))
	if got := app.Session().Inputs().RolesToMap; got != 600 {
		t.Fatalf("roles = %d, want 600", got)
	}
	if got := app.Session().Results().ConfidenceLevel; got != "low" {
		t.Fatalf("confidence = %s, want low", got)
	}
}

func TestLeavingTextFieldShowsCoercedValue(t *testing.T) {
	app, _ := newTestApp(t)
	focusOn(t, app, "families")
	app = send(app, key(tea.KeyBackspace), key(tea.KeyBackspace), runes("abc"))
	if got := app.Session().Inputs().JobFamilies; got != 1 {
		t.Fatalf("invalid families should fall back to 1, got %d", got)
	}
	app = send(app, key(tea.KeyShiftTab), key(tea.KeyTab))
	if got := app.input.Value(); got != "1" {
		t.Fatalf("input should reload the coerced value, got %q", got)
	}
}

func TestChoiceFieldsStepWithArrows(t *testing.T) {
	app, _ := newTestApp(t)
	focusOn(t, app, "complexity")
	app = send(app, key(tea.KeyRight), key(tea.KeyRight), key(tea.KeyRight))
	if got := app.Session().Inputs().Complexity; got != 5 {
		t.Fatalf("complexity should clamp at 5, got %d", got)
	}
	app = send(app, key(tea.KeyLeft))
	if got := app.Session().ComplexityLabel(); got != "High" {
		t.Fatalf("complexity label = %q, want High", got)
	}
}

func TestCohortCountAddsCohortRows(t *testing.T) {
	app, _ := newTestApp(t)
	if hasField(app, "cohort-name:1") {
		t.Fatalf("single cohort should not show cohort rows")
	}
	focusOn(t, app, "cohort-count")
	app = send(app, key(tea.KeyRight), key(tea.KeyRight))
	in := app.Session().Inputs()
	if in.CohortCount != 3 || len(in.Cohorts) != 3 {
		t.Fatalf("expected 3 cohorts, got %+v", in.Cohorts)
	}
	for _, id := range []string{"cohort-name:1", "cohort-share:2", "cohort-start:3"} {
		if !hasField(app, id) {
			t.Fatalf("missing field %s", id)
		}
	}
	if app.current().id != "cohort-count" {
		t.Fatalf("focus should stay on cohort count, got %s", app.current().id)
	}
}

func TestShareWarningWhenSharesDrift(t *testing.T) {
	app, _ := newTestApp(t)
	focusOn(t, app, "cohort-count")
	app = send(app, key(tea.KeyRight))
	if strings.Contains(app.View(), "Cohort shares total") {
		t.Fatalf("balanced shares should not warn")
	}
	focusOn(t, app, "cohort-share:1")
	app = send(app, key(tea.KeyBackspace), key(tea.KeyBackspace), runes("70"))
	if got := app.Session().Inputs().Cohorts[1].RolesShare; got != 50 {
		t.Fatalf("other cohort must not be rebalanced, got %d", got)
	}
	if !strings.Contains(app.View(), "Cohort shares total 120%") {
		t.Fatalf("expected share warning in view")
	}
}

func TestToggleAddOnWithEnter(t *testing.T) {
	app, _ := newTestApp(t)
	focusOn(t, app, "addon:training")
	before := app.Session().Results().TotalCost
	app = send(app, key(tea.KeyEnter))
	if app.Session().Results().TotalCost >= before {
		t.Fatalf("disabling training should lower the cost")
	}
	if got := app.current().value(app.Session()); got != "[ ]" {
		t.Fatalf("toggle should read unchecked, got %s", got)
	}
}

func TestModeToggleRevealsAdvancedSettings(t *testing.T) {
	app, _ := newTestApp(t)
	if hasField(app, "rate-implementation") || hasField(app, "addon-hours:training") {
		t.Fatalf("quick mode should hide advanced fields")
	}
	before := app.Session().Results()
	app = send(app, key(tea.KeyCtrlT))
	if app.Session().Mode() != calculator.ModeDetailed {
		t.Fatalf("mode = %s, want detailed", app.Session().Mode())
	}
	for _, id := range []string{"rate-implementation", "fx", "working-days", "addon-hours:training"} {
		if !hasField(app, id) {
			t.Fatalf("detailed mode missing %s", id)
		}
	}
	if app.Session().Results() != before {
		t.Fatalf("switching mode must not change results")
	}
	if app.current().id != "client" {
		t.Fatalf("focus should survive a mode switch, got %s", app.current().id)
	}
	app = send(app, key(tea.KeyCtrlT))
	if hasField(app, "fx") {
		t.Fatalf("quick mode should hide fx again")
	}
}

func TestCurrencyChoiceChangesSymbol(t *testing.T) {
	app, _ := newTestApp(t)
	app = send(app, key(tea.KeyCtrlT))
	focusOn(t, app, "currency")
	app = send(app, key(tea.KeyRight))
	if got := app.Session().Assumptions().Currency; got != "EUR" {
		t.Fatalf("currency = %s, want EUR", got)
	}
	if !strings.Contains(app.View(), "€49,834") {
		t.Fatalf("view should use the euro symbol")
	}
}

func TestCopyWritesSummary(t *testing.T) {
	app, clip := newTestApp(t)
	app = send(app, key(tea.KeyCtrlY))
	snap := app.Session().Snapshot()
	want := summary.Text(snap.Results, snap.Assumptions.Currency, snap.Inputs.ClientName)
	if clip.text != want {
		t.Fatalf("clipboard = %q, want %q", clip.text, want)
	}
	if !strings.HasPrefix(app.statusMsg, "Copied to clipboard") {
		t.Fatalf("status = %q", app.statusMsg)
	}
}

func TestCopyFailureIsReported(t *testing.T) {
	app, clip := newTestApp(t)
	clip.err = errors.New("no clipboard")
	app = send(app, key(tea.KeyCtrlY))
	if app.err == nil || !strings.Contains(app.statusMsg, "no clipboard") {
		t.Fatalf("expected copy failure, status = %q", app.statusMsg)
	}
}

func TestExportIsAcknowledged(t *testing.T) {
	app, _ := newTestApp(t)
	before := app.Session().Snapshot()
	app = send(app, key(tea.KeyCtrlE))
	if !strings.HasPrefix(app.statusMsg, "Export started") {
		t.Fatalf("status = %q", app.statusMsg)
	}
	if app.Session().Results() != before.Results {
		t.Fatalf("export must not change the estimate")
	}
}

func TestEditsAreJournaled(t *testing.T) {
	lb, err := logbook.New(filepath.Join(t.TempDir(), "logs", "planner.log"))
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	app, _ := newTestApp(t, WithLogbook(lb))
	app = send(app, runes("Acme"), key(tea.KeyTab))
	app = send(app, key(tea.KeyCtrlY))
	entries, _ := lb.Tail(10)
	var lines []string
	for _, e := range entries {
		lines = append(lines, e.String())
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"Session opened", `Edit · Client name: "" → "Acme"`, "Copy · summary | $49,834 · 5 weeks · 1.5 FTE · medium"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("log missing %q:\n%s", want, joined)
		}
	}
	if !strings.Contains(app.View(), "LOG · planner.log") {
		t.Fatalf("view should show the log panel")
	}
}

func TestSaveDefaultModePersists(t *testing.T) {
	projectDir := t.TempDir()
	if err := config.InitProjectDir(projectDir); err != nil {
		t.Fatalf("init project dir: %v", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	app := NewApp(cfg, WithClipboard(func(string) error { return nil }))
	app = send(app, key(tea.KeyCtrlT), key(tea.KeyCtrlS))
	if app.err != nil {
		t.Fatalf("save failed: %v", app.err)
	}
	reloaded, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if reloaded.DefaultMode() != calculator.ModeDetailed {
		t.Fatalf("default mode = %s, want detailed", reloaded.DefaultMode())
	}
	if NewApp(reloaded).Session().Mode() != calculator.ModeDetailed {
		t.Fatalf("new app should start in the saved mode")
	}
}

func TestSaveWithoutConfigExplains(t *testing.T) {
	app, _ := newTestApp(t)
	app = send(app, key(tea.KeyCtrlS))
	if !strings.Contains(app.statusMsg, "swp-planner init") {
		t.Fatalf("status = %q", app.statusMsg)
	}
}

func TestQuitKeys(t *testing.T) {
	app, _ := newTestApp(t)
	_, cmd := app.Update(key(tea.KeyEsc))
	if cmd == nil {
		t.Fatalf("esc should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("esc should quit")
	}
}
