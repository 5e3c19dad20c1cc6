package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	arbapp "github.com/dexpulse/arbscan/business/arbitrage/app"
	arbdomain "github.com/dexpulse/arbscan/business/arbitrage/domain"
	marketdata "github.com/dexpulse/arbscan/business/marketdata/domain"
	momentumapp "github.com/dexpulse/arbscan/business/momentum/app"
	momentumdomain "github.com/dexpulse/arbscan/business/momentum/domain"
	validationapp "github.com/dexpulse/arbscan/business/validation/app"
	validationdomain "github.com/dexpulse/arbscan/business/validation/domain"
	"github.com/dexpulse/arbscan/internal/logger"
)

type fakeMarket struct {
	pairs       map[string][]marketdata.Pair
	nativePrice float64
	gasGwei     float64
	gasErr      error
}

func (f *fakeMarket) Search(_ context.Context, query string) ([]marketdata.Pair, error) {
	return f.pairs[query], nil
}

func (f *fakeMarket) PairByAddress(_ context.Context, _, _ string) (*marketdata.Pair, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMarket) NativeTokenPriceUSD(_ context.Context, _ string) (float64, error) {
	return f.nativePrice, nil
}

func (f *fakeMarket) GasPriceGwei(_ context.Context, _ string) (float64, error) {
	return f.gasGwei, f.gasErr
}

type fakeReporter struct {
	mu       sync.Mutex
	opps     []*arbdomain.Opportunity
	cycles   []*arbdomain.MultiLegOpportunity
	started  int
	finished int
}

func (f *fakeReporter) Start(context.Context) error { return nil }
func (f *fakeReporter) Stop() error                 { return nil }

func (f *fakeReporter) ReportOpportunity(opp *arbdomain.Opportunity, _ momentumapp.Assessment, _ *validationdomain.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opps = append(f.opps, opp)
}

func (f *fakeReporter) ReportMultiLeg(opp *arbdomain.MultiLegOpportunity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cycles = append(f.cycles, opp)
}

func (f *fakeReporter) ScanStarted(_, _ []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
}

func (f *fakeReporter) ScanFinished(int, time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished++
}

type fakeRecorder struct {
	cycleStarts   int
	cycleFinishes int
	lastFound     int
	alerts        []momentumdomain.AlertRecord
}

func (f *fakeRecorder) RecordScanCycleStart(context.Context, []string, []string) (int64, error) {
	f.cycleStarts++
	return 42, nil
}

func (f *fakeRecorder) RecordScanCycleFinish(_ context.Context, _ int64, found int) error {
	f.cycleFinishes++
	f.lastFound = found
	return nil
}

func (f *fakeRecorder) RecordAlert(_ context.Context, alert momentumdomain.AlertRecord, _ momentumdomain.Snapshot) (int64, error) {
	f.alerts = append(f.alerts, alert)
	return int64(len(f.alerts)), nil
}

type fakeAlerts struct{ allow bool }

func (f *fakeAlerts) ShouldAlert(context.Context, string, time.Duration) (bool, error) {
	return f.allow, nil
}

type fakeValidator struct {
	result validationdomain.Result
	calls  int
}

func (f *fakeValidator) ValidatePairPrice(context.Context, validationapp.Request) validationdomain.Result {
	f.calls++
	return f.result
}

func venuePair(dex string, priceUsd string, liqUSD, vol24 float64) marketdata.Pair {
	return marketdata.Pair{
		ChainID:     "ethereum",
		DexID:       dex,
		PairAddress: "0xpool" + dex,
		BaseToken:   marketdata.Token{Address: "0xalpha", Symbol: "ALPHA"},
		QuoteToken:  marketdata.Token{Address: "0xusdc", Symbol: "USDC"},
		PriceNative: "0.03",
		PriceUsd:    priceUsd,
		Txns:        marketdata.Txns{H1: marketdata.TxnSummary{Buys: 10, Sells: 10}},
		Volume:      marketdata.Volume{H24: vol24},
		Liquidity:   &marketdata.Liquidity{USD: liqUSD},
	}
}

func newTestScanner(t *testing.T, cfg Config, market *fakeMarket, deps *Deps) (*Scanner, *fakeReporter) {
	t.Helper()
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	analyzer := arbapp.NewAnalyzer(arbapp.AnalyzerConfig{
		TradeVolumeUSD:           500,
		DexFeePct:                0.3,
		SlippagePct:              0.5,
		MinBullishProfitPct:      1.0,
		MinBearishDiscrepancyPct: 1.0,
		MinLiquidityUSD:          10_000,
		MinVolume24hUSD:          10_000,
		MinTxnsH1:                1,
	}, log)

	momentum := momentumapp.NewService(momentumapp.Config{
		MinScoreBullish:   0,
		MinScoreBearish:   0,
		HistoryLimit:      10,
		RSIPeriod:         14,
		PersistenceWindow: 10 * time.Minute,
	}, nil, nil, log)

	reporter := &fakeReporter{}
	d := Deps{
		Pairs:     market,
		GasPrices: market,
		Analyzer:  analyzer,
		Momentum:  momentum,
		Reporter:  reporter,
		Log:       log,
	}
	if deps != nil {
		d.Cycles = deps.Cycles
		d.Validator = deps.Validator
		d.Recorder = deps.Recorder
		d.Alerts = deps.Alerts
	}
	return NewScanner(cfg, d), reporter
}

func scanConfig() Config {
	return Config{
		Chains:        []string{"ethereum"},
		Tokens:        []string{"ALPHA"},
		ScanInterval:  time.Hour,
		AlertCooldown: time.Minute,
	}
}

func TestScanner_CycleReportsOpportunity(t *testing.T) {
	market := &fakeMarket{
		pairs: map[string][]marketdata.Pair{
			"ALPHA": {
				venuePair("dexa", "100", 400_000, 400_000),
				venuePair("dexb", "105", 100_000, 100_000),
			},
		},
		nativePrice: 3000,
		gasGwei:     10,
	}
	recorder := &fakeRecorder{}
	s, reporter := newTestScanner(t, scanConfig(), market, &Deps{Recorder: recorder})

	s.scanCycle(context.Background())

	require.Len(t, reporter.opps, 1)
	opp := reporter.opps[0]
	assert.Equal(t, "dexa", opp.BuyVenue)
	assert.Equal(t, "dexb", opp.SellVenue)
	assert.Equal(t, arbdomain.DirectionBullish, opp.Direction)

	assert.Equal(t, 1, reporter.started)
	assert.Equal(t, 1, reporter.finished)

	assert.Equal(t, 1, recorder.cycleStarts)
	assert.Equal(t, 1, recorder.cycleFinishes)
	assert.Equal(t, 1, recorder.lastFound)
	require.Len(t, recorder.alerts, 1)
	assert.Equal(t, int64(42), recorder.alerts[0].ScanCycleID)
	assert.Equal(t, "ALPHA", recorder.alerts[0].Token)
}

func TestScanner_CooldownSuppressesRepeat(t *testing.T) {
	market := &fakeMarket{
		pairs: map[string][]marketdata.Pair{
			"ALPHA": {
				venuePair("dexa", "100", 400_000, 400_000),
				venuePair("dexb", "105", 100_000, 100_000),
			},
		},
		nativePrice: 3000,
		gasGwei:     10,
	}
	s, reporter := newTestScanner(t, scanConfig(), market, &Deps{Alerts: &fakeAlerts{allow: false}})

	s.scanCycle(context.Background())

	assert.Empty(t, reporter.opps)
	assert.Equal(t, 1, reporter.finished)
}

func TestScanner_ValidationRejectionBlocksAlert(t *testing.T) {
	market := &fakeMarket{
		pairs: map[string][]marketdata.Pair{
			"ALPHA": {
				venuePair("dexa", "100", 400_000, 400_000),
				venuePair("dexb", "105", 100_000, 100_000),
			},
		},
		nativePrice: 3000,
		gasGwei:     10,
	}
	validator := &fakeValidator{result: validationdomain.Result{
		Validated: true,
		Passed:    false,
		Err:       validationdomain.ErrPriceMismatch,
	}}
	cfg := scanConfig()
	cfg.ValidationEnabled = true
	s, reporter := newTestScanner(t, cfg, market, &Deps{Validator: validator})

	s.scanCycle(context.Background())

	assert.Empty(t, reporter.opps)
	assert.Equal(t, 1, validator.calls)
}

func TestScanner_InconclusiveValidationStillAlerts(t *testing.T) {
	market := &fakeMarket{
		pairs: map[string][]marketdata.Pair{
			"ALPHA": {
				venuePair("dexa", "100", 400_000, 400_000),
				venuePair("dexb", "105", 100_000, 100_000),
			},
		},
		nativePrice: 3000,
		gasGwei:     10,
	}
	validator := &fakeValidator{result: validationdomain.Result{
		Validated: false,
		Err:       validationdomain.ErrReserveFetch,
	}}
	cfg := scanConfig()
	cfg.ValidationEnabled = true
	s, reporter := newTestScanner(t, cfg, market, &Deps{Validator: validator})

	s.scanCycle(context.Background())

	assert.Len(t, reporter.opps, 1)
}

func TestScanner_GasPriceErrorSkipsChain(t *testing.T) {
	market := &fakeMarket{
		pairs: map[string][]marketdata.Pair{
			"ALPHA": {
				venuePair("dexa", "100", 400_000, 400_000),
				venuePair("dexb", "105", 100_000, 100_000),
			},
		},
		nativePrice: 3000,
		gasErr:      errors.New("oracle down"),
	}
	s, reporter := newTestScanner(t, scanConfig(), market, nil)

	s.scanCycle(context.Background())

	assert.Empty(t, reporter.opps)
	assert.Equal(t, 1, reporter.finished)
}

func TestScanner_MultiLegCyclesReported(t *testing.T) {
	triangle := func(dex, baseSym, baseAddr, quoteSym, quoteAddr, priceNative, priceUsd string) marketdata.Pair {
		return marketdata.Pair{
			ChainID:     "ethereum",
			DexID:       dex,
			PairAddress: "0xpool" + baseSym + quoteSym,
			BaseToken:   marketdata.Token{Address: baseAddr, Symbol: baseSym},
			QuoteToken:  marketdata.Token{Address: quoteAddr, Symbol: quoteSym},
			PriceNative: priceNative,
			PriceUsd:    priceUsd,
			Liquidity:   &marketdata.Liquidity{USD: 500_000},
		}
	}
	market := &fakeMarket{
		pairs: map[string][]marketdata.Pair{
			"AAA": {
				triangle("dex1", "AAA", "0xaaa", "BBB", "0xbbb", "2", "10"),
				triangle("dex2", "BBB", "0xbbb", "CCC", "0xccc", "3", "5"),
				triangle("dex3", "CCC", "0xccc", "AAA", "0xaaa", "0.2", "1.6667"),
			},
		},
		nativePrice: 3000,
		gasGwei:     10,
	}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	cycles := arbapp.NewCycleFinder(arbapp.CycleFinderConfig{
		MaxCycleLength:  4,
		MinNetProfitUSD: 10,
		MinLiquidityUSD: 1_000,
		TradeVolumeUSD:  500,
		DexFeePct:       0.3,
		SlippagePct:     0.5,
	}, log)

	cfg := scanConfig()
	cfg.Tokens = []string{"AAA"}
	cfg.MultiLegEnabled = true
	s, reporter := newTestScanner(t, cfg, market, &Deps{Cycles: cycles})

	s.scanCycle(context.Background())

	require.Len(t, reporter.cycles, 1)
	assert.Equal(t, 3, reporter.cycles[0].NumSwaps)
	assert.Equal(t, "AAA", reporter.cycles[0].CyclePath[0])
}

func TestScanner_FetchDepthWidensCycleGraph(t *testing.T) {
	triangle := func(dex, baseSym, baseAddr, quoteSym, quoteAddr, priceNative, priceUsd string) marketdata.Pair {
		return marketdata.Pair{
			ChainID:     "ethereum",
			DexID:       dex,
			PairAddress: "0xpool" + baseSym + quoteSym,
			BaseToken:   marketdata.Token{Address: baseAddr, Symbol: baseSym},
			QuoteToken:  marketdata.Token{Address: quoteAddr, Symbol: quoteSym},
			PriceNative: priceNative,
			PriceUsd:    priceUsd,
			Liquidity:   &marketdata.Liquidity{USD: 500_000},
		}
	}
	// Only the AAA leg is configured; BBB and CCC legs surface through
	// frontier searches at depths 2 and 3.
	market := &fakeMarket{
		pairs: map[string][]marketdata.Pair{
			"AAA": {triangle("dex1", "AAA", "0xaaa", "BBB", "0xbbb", "2", "10")},
			"BBB": {triangle("dex2", "BBB", "0xbbb", "CCC", "0xccc", "3", "5")},
			"CCC": {triangle("dex3", "CCC", "0xccc", "AAA", "0xaaa", "0.2", "1.6667")},
		},
		nativePrice: 3000,
		gasGwei:     10,
	}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	cycles := arbapp.NewCycleFinder(arbapp.CycleFinderConfig{
		MaxCycleLength:  4,
		MinNetProfitUSD: 10,
		MinLiquidityUSD: 1_000,
		TradeVolumeUSD:  500,
		DexFeePct:       0.3,
		SlippagePct:     0.5,
	}, log)

	cfg := scanConfig()
	cfg.Tokens = []string{"AAA"}
	cfg.MultiLegEnabled = true
	cfg.MultiLegFetchDepth = 3
	s, reporter := newTestScanner(t, cfg, market, &Deps{Cycles: cycles})

	s.scanCycle(context.Background())

	require.Len(t, reporter.cycles, 1)
	assert.Equal(t, 3, reporter.cycles[0].NumSwaps)
}

func TestScanner_StartStop(t *testing.T) {
	market := &fakeMarket{
		pairs:       map[string][]marketdata.Pair{},
		nativePrice: 3000,
		gasGwei:     10,
	}
	s, reporter := newTestScanner(t, scanConfig(), market, nil)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())

	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	assert.GreaterOrEqual(t, reporter.started, 1)
}
