package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/swp-planner/internal/calculator"
	"github.com/kingrea/swp-planner/internal/estimate"
	"github.com/kingrea/swp-planner/internal/logbook"
	"github.com/kingrea/swp-planner/internal/summary"
)

var (
	accentColor  = lipgloss.Color("#5B8DEF")
	mutedColor   = lipgloss.Color("#AAAAAA")
	borderColor  = lipgloss.Color("#444444")
	brandColor   = lipgloss.Color("#FF6B6B")
	footerColor  = lipgloss.Color("#888888")
	warningColor = lipgloss.Color("#F5A623")
)

var confidenceColors = map[estimate.Confidence]lipgloss.Color{
	estimate.ConfidenceHigh:   lipgloss.Color("#4CAF50"),
	estimate.ConfidenceMedium: warningColor,
	estimate.ConfidenceLow:    brandColor,
}

// View renders the form beside the results card. Narrow terminals get the
// card stacked under the form.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(34, width/3)
	leftWidth := width - rightWidth - 4
	stacked := leftWidth < 40
	if stacked {
		leftWidth = max(20, width-4)
		rightWidth = leftWidth
	}

	snap := a.session.Snapshot()
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(brandColor).
		MarginBottom(1).
		Render(fmt.Sprintf("⬡ SWP PLANNER · %s mode", snap.Mode))

	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(leftWidth).
		Render(a.renderForm(leftWidth - 4))
	rightBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Width(rightWidth).
		Render(renderResults(snap, rightWidth-4))

	var body string
	if stacked {
		body = lipgloss.JoinVertical(lipgloss.Left, leftBox, rightBox)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	}

	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	hint := lipgloss.NewStyle().
		Foreground(mutedColor).
		Render("Tab/↑↓ move · ←→ change · Space toggle · ctrl+t mode · ctrl+y copy · ctrl+e export · ctrl+s save mode · Esc quit")
	sections = append(sections, hint)
	if a.statusMsg != "" {
		color := footerColor
		if a.err != nil {
			color = brandColor
		}
		sections = append(sections, lipgloss.NewStyle().Foreground(color).Render(a.statusMsg))
	}
	return strings.Join(sections, "\n")
}

func (a *App) renderForm(width int) string {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	labelWidth := 22
	var lines []string
	current := ""
	for i, f := range a.fields {
		if f.section != current {
			if current != "" {
				lines = append(lines, "")
			}
			current = f.section
			lines = append(lines, sectionStyle.Render(f.section))
			if f.section == sectionCohorts {
				if warn := shareWarning(a.session.Inputs()); warn != "" {
					lines = append(lines, lipgloss.NewStyle().Foreground(warningColor).Render(warn))
				}
			}
		}
		focused := i == a.focus
		lines = append(lines, a.renderField(f, focused, labelWidth))
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderField(f formField, focused bool, labelWidth int) string {
	cursor := "  "
	labelStyle := lipgloss.NewStyle().Width(labelWidth)
	if focused {
		cursor = "▸ "
		labelStyle = labelStyle.Bold(true).Foreground(accentColor)
	}
	var value string
	switch {
	case focused && f.kind == kindText:
		value = a.input.View()
	case f.kind == kindChoice:
		value = "‹ " + f.value(a.session) + " ›"
	default:
		value = f.value(a.session)
	}
	if f.kind == kindText && !focused && value == "" {
		value = lipgloss.NewStyle().Foreground(footerColor).Render("—")
	}
	return cursor + labelStyle.Render(f.label) + value
}

// shareWarning flags cohort shares that do not add up to 100. Shares are never
// rebalanced automatically.
func shareWarning(in estimate.Inputs) string {
	if in.CohortCount <= 1 {
		return ""
	}
	total := 0
	for _, c := range in.Cohorts {
		total += c.RolesShare
	}
	if total == 100 {
		return ""
	}
	return "⚠ Cohort shares total " + strconv.Itoa(total) + "%, not 100%"
}

func renderResults(snap calculator.Snapshot, width int) string {
	res := snap.Results
	currency := snap.Assumptions.Currency
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Estimate")
	total := lipgloss.NewStyle().Bold(true).Render(summary.Money(res.TotalCost, currency))
	badge := lipgloss.NewStyle().
		Bold(true).
		Foreground(confidenceColors[res.ConfidenceLevel]).
		Render("● " + res.ConfidenceLevel.Label())
	muted := lipgloss.NewStyle().Foreground(mutedColor)

	lines := []string{
		title,
		"",
		muted.Render("Total Cost"),
		total,
		"",
		fmt.Sprintf("Timeline   %d weeks", res.TotalWeeks),
		fmt.Sprintf("Team Size  %s FTE", summary.FTE(res.FTEEquivalent)),
		fmt.Sprintf("Complexity %s", snap.ComplexityLabel),
		badge,
		"",
		muted.Render("Cost Breakdown"),
	}
	for _, line := range summary.BreakdownLines(res.Breakdown) {
		lines = append(lines, fmt.Sprintf("• %-15s %s", line.Label, summary.Money(line.Amount, currency)))
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	entries, total := a.logbook.Tail(logPanelLines)
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, logPanelLine(e))
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		Render(fmt.Sprintf("LOG · %s (%d entries)", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(mutedColor).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func logPanelLine(e logbook.Entry) string {
	if e.Time.IsZero() {
		return e.Message
	}
	line := fmt.Sprintf("%s %-5s %s", e.Time.Local().Format("15:04:05"), e.Level, e.Message)
	if e.Estimate != "" {
		line += " (" + e.Estimate + ")"
	}
	return line
}
