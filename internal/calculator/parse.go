package calculator

import (
	"strconv"
	"strings"
	"time"
)

// Fallbacks used when text entry cannot be parsed.
const (
	FallbackCount        = 1
	FallbackHoursPerRole = 1.0
	FallbackProductivity = 0.85
	FallbackWorkingDays  = 5
	FallbackFXRate       = 1.0
)

// DateLayout is the accepted format for target and cohort start dates.
const DateLayout = "2006-01-02"

// ParseCount reads a whole number such as roles to map. Bad input yields the
// fallback of one.
func ParseCount(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return FallbackCount
	}
	return max(FallbackCount, n)
}

// ParseIntOr reads a whole number, returning fallback on failure.
func ParseIntOr(text string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return fallback
	}
	return n
}

// ParseFloatOr reads a decimal number, returning fallback on failure or when
// the value is not finite.
func ParseFloatOr(text string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || !finite(v) {
		return fallback
	}
	return v
}

// ParseHours reads an add-on effort. Bad or negative input yields zero.
func ParseHours(text string) float64 {
	return nonNegative(ParseFloatOr(text, 0))
}

// ParseRate reads an hourly rate. Bad or negative input yields zero.
func ParseRate(text string) float64 {
	return nonNegative(ParseFloatOr(text, 0))
}

// ParseShare reads a cohort roles share, clamped to 0..100.
func ParseShare(text string) int {
	return clamp(ParseIntOr(text, 0), 0, 100)
}

// ParseDate normalizes an ISO date. Anything unparseable clears the date.
func ParseDate(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	t, err := time.Parse(DateLayout, text)
	if err != nil {
		return ""
	}
	return t.Format(DateLayout)
}
