package core

import "strings"

// Severity is the display level a client uses to order and color an alert.
type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Classify maps an alert message to its display severity by substring match
// on the rendered text. A message containing "exceeded" is danger, one
// containing "90%" is warning, everything else is info. The 80% message
// matches neither and therefore lands on info; that quirk is kept on purpose
// so existing clients keep their coloring.
func Classify(message string) Severity {
	switch {
	case strings.Contains(message, "exceeded"):
		return SeverityDanger
	case strings.Contains(message, "90%"):
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// RenderRatio returns the progress bar width for a category as a percent
// clamped to [0, 100]. A zero limit renders as 0 so bars stay drawable.
func RenderRatio(spent, limit Money) float64 {
	if limit.Cents <= 0 {
		return 0
	}
	percent := PercentSpent(spent, limit)
	if percent > 100 {
		return 100
	}
	return percent
}

// DisplayOrder returns a copy of the stored notification backlog with the most
// recently generated entry first.
func DisplayOrder(notifications []string) []string {
	out := make([]string, len(notifications))
	for i, n := range notifications {
		out[len(notifications)-1-i] = n
	}
	return out
}
