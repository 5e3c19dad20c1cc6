// Package app contains the scan orchestration service and its ports.
package app

import (
	"context"
	"time"

	arbdomain "github.com/dexpulse/arbscan/business/arbitrage/domain"
	momentumapp "github.com/dexpulse/arbscan/business/momentum/app"
	momentumdomain "github.com/dexpulse/arbscan/business/momentum/domain"
	validationapp "github.com/dexpulse/arbscan/business/validation/app"
	validationdomain "github.com/dexpulse/arbscan/business/validation/domain"
)

// Reporter receives scan progress and qualified opportunities for display.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// ReportOpportunity delivers a two-venue opportunity that passed every
	// gate, with its momentum assessment and optional validation outcome.
	ReportOpportunity(opp *arbdomain.Opportunity, assessment momentumapp.Assessment, validation *validationdomain.Result)

	// ReportMultiLeg delivers a profitable trading cycle.
	ReportMultiLeg(opp *arbdomain.MultiLegOpportunity)

	// ScanStarted signals the beginning of a scan cycle.
	ScanStarted(chains, tokens []string)

	// ScanFinished signals the end of a scan cycle with the number of
	// opportunities reported.
	ScanFinished(found int, elapsed time.Duration)

	// Stop gracefully shuts down the reporter.
	Stop() error
}

// AlertCache suppresses repeat alerts for the same opportunity key within a
// cooldown window.
type AlertCache interface {
	// ShouldAlert reports whether the key is outside its cooldown and, when
	// it is, records the new alert time.
	ShouldAlert(ctx context.Context, key string, cooldown time.Duration) (bool, error)
}

// ScanRecorder persists scan cycles and emitted alerts.
type ScanRecorder interface {
	RecordScanCycleStart(ctx context.Context, chains, tokens []string) (int64, error)
	RecordScanCycleFinish(ctx context.Context, scanCycleID int64, opportunitiesFound int) error
	RecordAlert(ctx context.Context, alert momentumdomain.AlertRecord, snap momentumdomain.Snapshot) (int64, error)
}

// PriceValidator re-checks a quoted price against on-chain state.
type PriceValidator interface {
	ValidatePairPrice(ctx context.Context, req validationapp.Request) validationdomain.Result
}
