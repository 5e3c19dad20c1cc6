package infra

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	arbdomain "github.com/dexpulse/arbscan/business/arbitrage/domain"
	momentumapp "github.com/dexpulse/arbscan/business/momentum/app"
	scannerapp "github.com/dexpulse/arbscan/business/scanner/app"
	validationdomain "github.com/dexpulse/arbscan/business/validation/domain"
)

// MetricsReporter decorates another Reporter with OpenTelemetry counters and
// a scan-duration histogram.
type MetricsReporter struct {
	next scannerapp.Reporter

	scanCycles    metric.Int64Counter
	opportunities metric.Int64Counter
	multiLegs     metric.Int64Counter
	scanDuration  metric.Float64Histogram
}

// NewMetricsReporter wraps next, registering instruments on the given meter.
func NewMetricsReporter(meter metric.Meter, next scannerapp.Reporter) (*MetricsReporter, error) {
	scanCycles, err := meter.Int64Counter("arbscan.scan_cycles",
		metric.WithDescription("Completed scan cycles"))
	if err != nil {
		return nil, err
	}
	opportunities, err := meter.Int64Counter("arbscan.opportunities",
		metric.WithDescription("Qualified two-venue opportunities reported"))
	if err != nil {
		return nil, err
	}
	multiLegs, err := meter.Int64Counter("arbscan.multi_leg_cycles",
		metric.WithDescription("Profitable trading cycles reported"))
	if err != nil {
		return nil, err
	}
	scanDuration, err := meter.Float64Histogram("arbscan.scan_duration_seconds",
		metric.WithDescription("Wall time of a full scan cycle"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &MetricsReporter{
		next:          next,
		scanCycles:    scanCycles,
		opportunities: opportunities,
		multiLegs:     multiLegs,
		scanDuration:  scanDuration,
	}, nil
}

func (r *MetricsReporter) Start(ctx context.Context) error { return r.next.Start(ctx) }
func (r *MetricsReporter) Stop() error                     { return r.next.Stop() }

func (r *MetricsReporter) ReportOpportunity(opp *arbdomain.Opportunity, assessment momentumapp.Assessment, validation *validationdomain.Result) {
	r.opportunities.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("chain", opp.ChainName),
		attribute.String("direction", string(opp.Direction)),
	))
	r.next.ReportOpportunity(opp, assessment, validation)
}

func (r *MetricsReporter) ReportMultiLeg(opp *arbdomain.MultiLegOpportunity) {
	r.multiLegs.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("chain", opp.ChainName),
	))
	r.next.ReportMultiLeg(opp)
}

func (r *MetricsReporter) ScanStarted(chains, tokens []string) {
	r.next.ScanStarted(chains, tokens)
}

func (r *MetricsReporter) ScanFinished(found int, elapsed time.Duration) {
	r.scanCycles.Add(context.Background(), 1)
	r.scanDuration.Record(context.Background(), elapsed.Seconds())
	r.next.ScanFinished(found, elapsed)
}
