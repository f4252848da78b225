package cli

import (
	"strings"
	"testing"
)

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name       string
		spent      float64
		limit      float64
		wantFilled int
	}{
		{"empty", 0, 100, 0},
		{"half", 50, 100, 10},
		{"full", 100, 100, 20},
		{"overspent clamps", 250, 100, 20},
		{"zero limit stays empty", 40, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := RenderProgressBar(tt.spent, tt.limit)
			if got := countRune(bar, '█'); got != tt.wantFilled {
				t.Errorf("filled cells = %d, want %d", got, tt.wantFilled)
			}
			if got := countRune(bar, '░'); got != barWidth-tt.wantFilled {
				t.Errorf("empty cells = %d, want %d", got, barWidth-tt.wantFilled)
			}
		})
	}
}

func TestRenderProgressReport(t *testing.T) {
	out := RenderProgressReport(ProgressReport{
		Categories: map[string]CategoryProgress{
			"Groceries": {Limit: 500, Spent: 460},
			"Medical":   {Limit: 200, Spent: 0},
		},
		Notifications: []string{
			`Attention: You have spent 80% of your set amount limit in "Groceries"!`,
			`Warning: You have spent 90% of your set amount limit in "Groceries"!`,
		},
	})

	for _, want := range []string{"Groceries", "Medical", "460.00", "500.00", "Alerts"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// Newest alert prints first.
	warnIdx := strings.Index(out, "Warning:")
	attnIdx := strings.Index(out, "Attention:")
	if warnIdx == -1 || attnIdx == -1 || warnIdx > attnIdx {
		t.Errorf("alerts not in newest-first order (warning at %d, attention at %d)", warnIdx, attnIdx)
	}
}

func TestRenderTransactions(t *testing.T) {
	out := RenderTransactions([]Transaction{
		{ID: 1, Date: "2026-08-02", Category: "Groceries", Amount: 12.5, Title: "market"},
	})
	for _, want := range []string{"2026-08-02", "Groceries", "12.50", "market"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	if got := RenderTransactions(nil); !strings.Contains(got, "nothing recorded") {
		t.Errorf("empty listing = %q", got)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(1234.5); got != "1234.50" {
		t.Errorf("FormatAmount = %q", got)
	}
}
