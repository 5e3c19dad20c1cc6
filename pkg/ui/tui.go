package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dexpulse/arbscan/pkg/ui/components"
)

const (
	maxFeedRows = 15
	maxLogLines = 8
)

// Model is the root Bubble Tea model for the scanner dashboard.
type Model struct {
	keys KeyMap
	help help.Model

	feed  *components.OpportunityFeed
	stats *components.StatsPanel

	counters components.Stats
	logs     []string

	scanning   bool
	paused     bool
	showHelp   bool
	lastChains []string
	width      int
	height     int
	started    time.Time
}

// NewModel creates the dashboard model.
func NewModel() Model {
	return Model{
		keys:    DefaultKeyMap(),
		help:    help.New(),
		feed:    components.NewOpportunityFeed(maxFeedRows),
		stats:   components.NewStatsPanel(),
		started: time.Now(),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Init starts the periodic clock tick.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles incoming messages and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Clear):
			m.feed.Clear()
			m.logs = nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		}
		return m, nil

	case TickMsg:
		return m, tickCmd()

	case ScanStartedMsg:
		m.scanning = true
		m.lastChains = msg.Chains
		return m, nil

	case ScanFinishedMsg:
		m.scanning = false
		m.counters.ScanCycles++
		m.counters.LastScan = msg.Elapsed
		m.stats.Update(m.counters)
		return m, nil

	case OpportunityMsg:
		m.counters.Opportunities++
		m.stats.Update(m.counters)
		if !m.paused {
			m.feed.Add(components.OpportunityRow{
				Time:         msg.Time.Format("15:04:05"),
				Pair:         msg.Pair,
				Chain:        msg.Chain,
				Direction:    msg.Direction,
				SpreadPct:    msg.SpreadPct,
				NetProfitUSD: msg.NetProfitUSD,
				Score:        msg.Score,
				Validated:    msg.Validated,
			})
		}
		return m, nil

	case MultiLegMsg:
		m.counters.MultiLeg++
		m.stats.Update(m.counters)
		if !m.paused {
			m.appendLog("info", fmt.Sprintf("cycle %s nets $%.2f (%d swaps, %s)",
				msg.Path, msg.NetProfitUSD, msg.NumSwaps, msg.Chain))
		}
		return m, nil

	case LogMsg:
		if msg.Level == "error" {
			m.counters.Errors++
			m.stats.Update(m.counters)
		}
		if !m.paused {
			m.appendLog(msg.Level, msg.Message)
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) appendLog(level, message string) {
	line := fmt.Sprintf("[%s] %-5s %s", time.Now().Format("15:04:05"), level, message)
	m.logs = append(m.logs, line)
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("ARBSCAN"))
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	b.WriteString(BoxStyle.Render(m.feed.View()))
	b.WriteString("\n")
	b.WriteString(BoxStyle.Render(m.stats.View()))
	b.WriteString("\n")

	if len(m.logs) > 0 {
		b.WriteString(BoxStyle.Render(HeaderStyle.Render("ACTIVITY") + "\n" +
			MutedValue.Render(strings.Join(m.logs, "\n"))))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(HelpStyle.Render(m.help.FullHelpView(m.keys.FullHelp())))
	} else {
		b.WriteString(HelpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) statusLine() string {
	uptime := time.Since(m.started).Round(time.Second)

	var status string
	switch {
	case m.paused:
		status = PausedStyle.Render("⏸ paused")
	case m.scanning:
		status = ScanningStyle.Render("● scanning " + strings.Join(m.lastChains, ","))
	default:
		status = IdleStyle.Render("● idle")
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		status,
		MutedValue.Render(fmt.Sprintf("  up %s", uptime)),
	)
}
