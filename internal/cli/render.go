package cli

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"budgetly/internal/core"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	dangerStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	infoStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)
)

const barWidth = 20

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// FormatAmount formats a euro amount with two decimals.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// severityStyle maps an alert message to the style used to print it.
func severityStyle(message string) lipgloss.Style {
	switch core.Classify(message) {
	case core.SeverityDanger:
		return dangerStyle
	case core.SeverityWarning:
		return warningStyle
	default:
		return infoStyle
	}
}

// RenderProgressBar renders a usage bar for one category. The fill ratio is
// clamped to the bar width even when the category is over its limit.
func RenderProgressBar(spent, limit float64) string {
	ratio := core.RenderRatio(toMoney(spent), toMoney(limit))
	filled := int(ratio / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}

	color := ColorGreen
	switch {
	case ratio >= 100:
		color = ColorRed
	case ratio >= 80:
		color = ColorOrange
	}
	barStyle := lipgloss.NewStyle().Foreground(color)

	return barStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barWidth-filled))
}

// RenderProgressReport renders the full progress view: one bar per category
// in alphabetical order, then the alert backlog newest first.
func RenderProgressReport(r ProgressReport) string {
	var b strings.Builder

	names := make([]string, 0, len(r.Categories))
	nameWidth := 0
	for name := range r.Categories {
		names = append(names, name)
		if len(name) > nameWidth {
			nameWidth = len(name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		cp := r.Categories[name]
		label := fmt.Sprintf("  %-*s ", nameWidth, name)
		amounts := fmt.Sprintf(" %s / %s", FormatAmount(cp.Spent), FormatAmount(cp.Limit))
		b.WriteString(headerStyle.Render(label))
		b.WriteString(RenderProgressBar(cp.Spent, cp.Limit))
		b.WriteString(mutedStyle.Render(amounts))
		b.WriteString("\n")
	}

	alerts := core.DisplayOrder(r.Notifications)
	if len(alerts) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("  Alerts"))
		b.WriteString("\n")
		for _, msg := range alerts {
			b.WriteString("  ")
			b.WriteString(severityStyle(msg).Render(msg))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// RenderTransactions renders a transaction listing as aligned rows.
func RenderTransactions(transactions []Transaction) string {
	if len(transactions) == 0 {
		return mutedStyle.Render("  nothing recorded yet") + "\n"
	}

	var b strings.Builder
	for _, t := range transactions {
		line := fmt.Sprintf("  %4d  %s  %-12s %10s", t.ID, t.Date, t.Category, FormatAmount(t.Amount))
		b.WriteString(valueStyle.Render(line))
		if t.Title != "" {
			b.WriteString(mutedStyle.Render("  " + t.Title))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func toMoney(amount float64) core.Money {
	return core.Money{Cents: int64(math.Round(amount * 100))}
}
