package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Stats holds the running scan counters.
type Stats struct {
	ScanCycles    int64
	Opportunities int64
	MultiLeg      int64
	LastScan      time.Duration
	Errors        int64
}

// StatsPanel renders the scan counters.
type StatsPanel struct {
	stats Stats
}

func NewStatsPanel() *StatsPanel {
	return &StatsPanel{}
}

// Update replaces the displayed stats.
func (s *StatsPanel) Update(stats Stats) {
	s.stats = stats
}

// View renders the stats panel.
func (s *StatsPanel) View() string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	errorsDisplay := value.Render(fmt.Sprintf("%d", s.stats.Errors))
	if s.stats.Errors > 0 {
		errorsDisplay = errStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	}

	return label.Render("STATS") + "\n" +
		fmt.Sprintf("Cycles: %s  │  Opportunities: %s  │  Multi-leg: %s\n",
			value.Render(fmt.Sprintf("%d", s.stats.ScanCycles)),
			value.Render(fmt.Sprintf("%d", s.stats.Opportunities)),
			value.Render(fmt.Sprintf("%d", s.stats.MultiLeg)),
		) +
		fmt.Sprintf("Last scan: %s  │  Errors: %s",
			value.Render(s.stats.LastScan.Round(time.Millisecond).String()),
			errorsDisplay,
		)
}
