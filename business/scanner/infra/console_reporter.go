// Package infra contains infrastructure adapters for the scanner context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	arbdomain "github.com/dexpulse/arbscan/business/arbitrage/domain"
	momentumapp "github.com/dexpulse/arbscan/business/momentum/app"
	validationdomain "github.com/dexpulse/arbscan/business/validation/domain"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Arbitrage Scanner Started")
	fmt.Fprintln(r.out, "=========================")
	return nil
}

// ReportOpportunity outputs a qualified opportunity to the console.
func (r *ConsoleReporter) ReportOpportunity(opp *arbdomain.Opportunity, assessment momentumapp.Assessment, validation *validationdomain.Result) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "%s OPPORTUNITY DETECTED\n", strings.ToUpper(string(opp.Direction)))
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Timestamp:      %s\n", opp.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Pair:           %s (%s)\n", opp.PairName, opp.ChainName)
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "PRICES")
	fmt.Fprintf(r.out, "  Buy  (%s):  $%.6f\n", opp.BuyVenue, opp.BuyPrice)
	fmt.Fprintf(r.out, "  Sell (%s):  $%.6f\n", opp.SellVenue, opp.SellPrice)
	fmt.Fprintf(r.out, "  Spread:         %.2f%%\n", opp.GrossSpreadPct)
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "TRADE DETAILS")
	fmt.Fprintf(r.out, "  Size:           $%.2f\n", opp.EffectiveVolumeUSD)
	fmt.Fprintf(r.out, "  Price Impact:   %.3f%%\n", opp.PriceImpactPct)
	fmt.Fprintf(r.out, "  Gas Cost:       $%.2f (%.1f gwei)\n", opp.GasCostUSD, opp.GasPriceGwei)
	fmt.Fprintf(r.out, "  DEX Fees:       $%.2f\n", opp.DexFeeCostUSD)
	if opp.EarlyMomentum {
		fmt.Fprintln(r.out, "  Qualification:  early momentum")
	}
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "PROFIT")
	fmt.Fprintf(r.out, "  Gross:          $%.2f\n", opp.GrossProfitUSD)
	fmt.Fprintf(r.out, "  Net:            $%.2f\n", opp.NetProfitUSD)
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "MOMENTUM")
	fmt.Fprintf(r.out, "  %s\n", assessment.Score.Interpretation)
	fmt.Fprintf(r.out, "  Persistence:    %d sightings\n", assessment.PersistenceCount)
	fmt.Fprintf(r.out, "  RSI:            %.1f\n", assessment.RSIValue)
	if validation != nil {
		fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
		fmt.Fprintln(r.out, "ON-CHAIN CHECK")
		switch {
		case validation.Validated && validation.Passed:
			fmt.Fprintf(r.out, "  Confirmed at block #%d", validation.BlockNumber)
			if validation.HasDiff {
				fmt.Fprintf(r.out, " (%.2f%% off quote)", validation.DiffPct)
			}
			fmt.Fprintln(r.out, "")
		case validation.Validated:
			fmt.Fprintf(r.out, "  Rejected: %s\n", validation.Err)
		default:
			fmt.Fprintf(r.out, "  Inconclusive: %s\n", validation.Err)
		}
	}
	fmt.Fprintln(r.out, "================================================================================")
}

// ReportMultiLeg outputs a profitable trading cycle to the console.
func (r *ConsoleReporter) ReportMultiLeg(opp *arbdomain.MultiLegOpportunity) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "MULTI-LEG CYCLE DETECTED (%d swaps, %s)\n", opp.NumSwaps, opp.ChainName)
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Path:           %s\n", strings.Join(opp.CyclePath, " -> "))
	fmt.Fprintf(r.out, "Size:           $%.2f\n", opp.TradeVolumeUSD)
	fmt.Fprintf(r.out, "Gross:          $%.2f\n", opp.GrossProfitUSD)
	fmt.Fprintf(r.out, "Gas:            $%.2f\n", opp.GasCostUSD)
	fmt.Fprintf(r.out, "Net:            $%.2f\n", opp.NetProfitUSD)
	fmt.Fprintln(r.out, "================================================================================")
}

// ScanStarted outputs the start of a scan cycle.
func (r *ConsoleReporter) ScanStarted(chains, tokens []string) {
	fmt.Fprintf(r.out, "[%s] scanning %d tokens across %s\n",
		time.Now().Format("15:04:05"), len(tokens), strings.Join(chains, ", "))
}

// ScanFinished outputs the end of a scan cycle.
func (r *ConsoleReporter) ScanFinished(found int, elapsed time.Duration) {
	fmt.Fprintf(r.out, "[%s] scan complete: %d opportunities in %s\n",
		time.Now().Format("15:04:05"), found, elapsed.Round(time.Millisecond))
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Arbitrage Scanner Stopped")
	return nil
}
