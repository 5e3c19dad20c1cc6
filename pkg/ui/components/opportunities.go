// Package components provides reusable dashboard widgets.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// OpportunityRow is one line of the opportunity feed.
type OpportunityRow struct {
	Time         string
	Pair         string
	Chain        string
	Direction    string
	SpreadPct    float64
	NetProfitUSD float64
	Score        float64
	Validated    bool
}

// OpportunityFeed renders the most recent qualified opportunities.
type OpportunityFeed struct {
	rows    []OpportunityRow
	maxRows int
}

func NewOpportunityFeed(maxRows int) *OpportunityFeed {
	return &OpportunityFeed{maxRows: maxRows}
}

// Add prepends a row, trimming the feed to its capacity.
func (f *OpportunityFeed) Add(row OpportunityRow) {
	f.rows = append([]OpportunityRow{row}, f.rows...)
	if len(f.rows) > f.maxRows {
		f.rows = f.rows[:f.maxRows]
	}
}

// Clear empties the feed.
func (f *OpportunityFeed) Clear() {
	f.rows = nil
}

// View renders the feed as a fixed-width table.
func (f *OpportunityFeed) View() string {
	if len(f.rows) == 0 {
		return "No opportunities yet..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	profitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	bearStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	result := headerStyle.Render(fmt.Sprintf("OPPORTUNITIES (last %d)", f.maxRows)) + "\n"
	result += fmt.Sprintf("%-9s %-14s %-10s %-8s %8s %10s %6s %s\n",
		"Time", "Pair", "Chain", "Dir", "Spread", "Net", "Score", "")

	for _, row := range f.rows {
		dirStyle := profitStyle
		if row.Direction == "bearish" {
			dirStyle = bearStyle
		}
		check := ""
		if row.Validated {
			check = "✓"
		}
		result += fmt.Sprintf("%-9s %-14s %-10s %-8s %7.2f%% %10s %6.1f %s\n",
			row.Time,
			truncate(row.Pair, 14),
			truncate(row.Chain, 10),
			dirStyle.Render(row.Direction),
			row.SpreadPct,
			fmt.Sprintf("$%.2f", row.NetProfitUSD),
			row.Score,
			check,
		)
	}
	return result
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
