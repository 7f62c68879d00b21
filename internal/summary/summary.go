// Package summary renders an estimate as the plain-text block users paste
// into emails and proposals.
package summary

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kingrea/swp-planner/internal/estimate"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// Amounts are always grouped the English way, whatever the host locale.
var printer = message.NewPrinter(language.English)

// Text formats results in the fixed clipboard layout.
func Text(res estimate.Results, currency estimate.Currency, clientName string) string {
	client := strings.TrimSpace(clientName)
	if client == "" {
		client = "Client"
	}
	var b strings.Builder
	b.WriteString("SWP Estimate for " + client + "\n")
	b.WriteString(rule + "\n")
	b.WriteString("Total Cost: " + Money(res.TotalCost, currency) + "\n")
	b.WriteString("Timeline: " + strconv.Itoa(res.TotalWeeks) + " weeks\n")
	b.WriteString("Team Size: " + FTE(res.FTEEquivalent) + " FTE\n")
	b.WriteString("Confidence: " + res.ConfidenceLevel.Label() + "\n")
	b.WriteString("\n")
	b.WriteString("Cost Breakdown:\n")
	for _, line := range BreakdownLines(res.Breakdown) {
		b.WriteString("• " + line.Label + ": " + Money(line.Amount, currency) + "\n")
	}
	return strings.TrimSpace(b.String())
}

// Line is one labelled pool of the breakdown.
type Line struct {
	Label  string
	Amount int64
}

// BreakdownLines lists the pools in display order.
func BreakdownLines(b estimate.Breakdown) []Line {
	return []Line{
		{Label: "Implementation", Amount: b.Implementation},
		{Label: "Enablement", Amount: b.Enablement},
		{Label: "Research", Amount: b.Research},
		{Label: "External", Amount: b.External},
	}
}

// Money prefixes the currency symbol and groups thousands, e.g. "€49,834".
func Money(amount int64, currency estimate.Currency) string {
	return currency.Symbol() + groupThousands(amount)
}

// FTE prints a one-decimal figure without a trailing ".0".
func FTE(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func groupThousands(n int64) string {
	return printer.Sprintf("%d", n)
}
