package infra

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	arbdomain "github.com/dexpulse/arbscan/business/arbitrage/domain"
	momentumapp "github.com/dexpulse/arbscan/business/momentum/app"
	validationdomain "github.com/dexpulse/arbscan/business/validation/domain"
	"github.com/dexpulse/arbscan/pkg/ui"
)

// TUIReporter implements Reporter on top of the Bubble Tea dashboard.
type TUIReporter struct {
	program *tea.Program
	done    chan struct{}
}

func NewTUIReporter() *TUIReporter {
	return &TUIReporter{
		done: make(chan struct{}),
	}
}

// Start launches the dashboard event loop in the background.
func (r *TUIReporter) Start(ctx context.Context) error {
	r.program = tea.NewProgram(ui.NewModel(), tea.WithAltScreen(), tea.WithContext(ctx))
	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()
	return nil
}

// Done is closed when the dashboard event loop exits, including when the
// user quits with a key press.
func (r *TUIReporter) Done() <-chan struct{} {
	return r.done
}

// ReportOpportunity forwards a qualified opportunity to the dashboard feed.
func (r *TUIReporter) ReportOpportunity(opp *arbdomain.Opportunity, assessment momentumapp.Assessment, validation *validationdomain.Result) {
	r.program.Send(ui.OpportunityMsg{
		Time:         opp.Timestamp,
		Pair:         opp.PairName,
		Chain:        opp.ChainName,
		Direction:    string(opp.Direction),
		SpreadPct:    opp.GrossSpreadPct,
		NetProfitUSD: opp.NetProfitUSD,
		Score:        assessment.Score.Value,
		Validated:    validation != nil && validation.Validated && validation.Passed,
	})
}

// ReportMultiLeg forwards a profitable cycle to the dashboard activity feed.
func (r *TUIReporter) ReportMultiLeg(opp *arbdomain.MultiLegOpportunity) {
	r.program.Send(ui.MultiLegMsg{
		Time:         time.Now(),
		Chain:        opp.ChainName,
		Path:         strings.Join(opp.CyclePath, "->"),
		NumSwaps:     opp.NumSwaps,
		NetProfitUSD: opp.NetProfitUSD,
	})
}

// ScanStarted marks the dashboard as scanning.
func (r *TUIReporter) ScanStarted(chains, tokens []string) {
	r.program.Send(ui.ScanStartedMsg{Chains: chains, Tokens: tokens})
}

// ScanFinished marks the dashboard as idle.
func (r *TUIReporter) ScanFinished(found int, elapsed time.Duration) {
	r.program.Send(ui.ScanFinishedMsg{Found: found, Elapsed: elapsed})
}

// Stop quits the dashboard and waits for the event loop to drain.
func (r *TUIReporter) Stop() error {
	if r.program == nil {
		return nil
	}
	r.program.Quit()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
	}
	return nil
}
