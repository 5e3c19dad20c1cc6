package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	arbapp "github.com/dexpulse/arbscan/business/arbitrage/app"
	arbdomain "github.com/dexpulse/arbscan/business/arbitrage/domain"
	marketdataapp "github.com/dexpulse/arbscan/business/marketdata/app"
	marketdata "github.com/dexpulse/arbscan/business/marketdata/domain"
	momentumapp "github.com/dexpulse/arbscan/business/momentum/app"
	momentumdomain "github.com/dexpulse/arbscan/business/momentum/domain"
	validationapp "github.com/dexpulse/arbscan/business/validation/app"
	validationdomain "github.com/dexpulse/arbscan/business/validation/domain"
	"github.com/dexpulse/arbscan/internal/apm"
	"github.com/dexpulse/arbscan/internal/logger"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds the scan-loop settings.
type Config struct {
	Chains             []string
	Tokens             []string
	ScanInterval       time.Duration
	AlertCooldown      time.Duration
	MultiLegEnabled    bool
	MultiLegFetchDepth int // >1 also searches tokens discovered in first-pass pairs
	ValidationEnabled  bool
}

// Scanner drives the detection pipeline: it pulls market data, runs the
// analyzers, gates candidates on momentum and on-chain validation, and hands
// survivors to the reporter.
type Scanner struct {
	cfg       Config
	pairs     marketdataapp.PairSource
	gasPrices marketdataapp.GasPriceSource
	analyzer  *arbapp.Analyzer
	cycles    *arbapp.CycleFinder
	momentum  *momentumapp.Service
	validator PriceValidator
	recorder  ScanRecorder
	alerts    AlertCache
	reporter  Reporter
	tracer    apm.Tracer
	log       *logger.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// Deps bundles the scanner's collaborators. Validator, Recorder and Alerts
// may be nil; the corresponding step is skipped.
type Deps struct {
	Pairs     marketdataapp.PairSource
	GasPrices marketdataapp.GasPriceSource
	Analyzer  *arbapp.Analyzer
	Cycles    *arbapp.CycleFinder
	Momentum  *momentumapp.Service
	Validator PriceValidator
	Recorder  ScanRecorder
	Alerts    AlertCache
	Reporter  Reporter
	Tracer    apm.Tracer
	Log       *logger.Logger
}

func NewScanner(cfg Config, deps Deps) *Scanner {
	return &Scanner{
		cfg:       cfg,
		pairs:     deps.Pairs,
		gasPrices: deps.GasPrices,
		analyzer:  deps.Analyzer,
		cycles:    deps.Cycles,
		momentum:  deps.Momentum,
		validator: deps.Validator,
		recorder:  deps.Recorder,
		alerts:    deps.Alerts,
		reporter:  deps.Reporter,
		tracer:    deps.Tracer,
		log:       deps.Log,
	}
}

// Start launches the periodic scan loop. It returns after the reporter is
// running and the first cycle has been scheduled.
func (s *Scanner) Start(ctx context.Context) error {
	if err := s.reporter.Start(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)
	return nil
}

// Stop halts the scan loop and shuts down the reporter.
func (s *Scanner) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return s.reporter.Stop()
}

func (s *Scanner) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	s.scanCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scanCycle(ctx)
		}
	}
}

// scanCycle runs one full pass over every configured chain and token.
func (s *Scanner) scanCycle(ctx context.Context) {
	started := time.Now()
	if s.tracer != nil {
		var span apm.Span
		ctx, span = s.tracer.StartSpanFromContext(ctx, "scanner.cycle")
		span.SetAttributes(
			attribute.Int("chains", len(s.cfg.Chains)),
			attribute.Int("tokens", len(s.cfg.Tokens)),
		)
		defer span.End()
	}
	s.reporter.ScanStarted(s.cfg.Chains, s.cfg.Tokens)

	var cycleID int64
	if s.recorder != nil {
		id, err := s.recorder.RecordScanCycleStart(ctx, s.cfg.Chains, s.cfg.Tokens)
		if err != nil {
			s.log.Warn(ctx, "scan cycle not recorded", "error", err)
		} else {
			cycleID = id
		}
	}

	found := 0
	for _, chainName := range s.cfg.Chains {
		if ctx.Err() != nil {
			return
		}
		found += s.scanChain(ctx, chainName, cycleID)
	}

	if s.recorder != nil && cycleID != 0 {
		if err := s.recorder.RecordScanCycleFinish(ctx, cycleID, found); err != nil {
			s.log.Warn(ctx, "scan cycle finish not recorded", "error", err)
		}
	}
	s.reporter.ScanFinished(found, time.Since(started))
}

func (s *Scanner) scanChain(ctx context.Context, chainName string, cycleID int64) int {
	nativePrice, err := s.pairs.NativeTokenPriceUSD(ctx, chainName)
	if err != nil {
		s.log.Warn(ctx, "native price unavailable, skipping chain", "chain", chainName, "error", err)
		return 0
	}

	gasPrice, err := s.gasPrices.GasPriceGwei(ctx, chainName)
	if err != nil {
		s.log.Warn(ctx, "gas price unavailable, skipping chain", "chain", chainName, "error", err)
		return 0
	}

	found := 0
	var chainPairs []marketdata.Pair
	var opps []scoredOpportunity

	for _, token := range s.cfg.Tokens {
		if ctx.Err() != nil {
			return found
		}
		pairs, err := s.pairs.Search(ctx, token)
		if err != nil {
			s.log.Warn(ctx, "pair search failed", "chain", chainName, "token", token, "error", err)
			continue
		}
		for _, p := range pairs {
			if strings.EqualFold(p.ChainID, chainName) {
				chainPairs = append(chainPairs, p)
			}
		}

		candidates := s.analyzer.Analyze(ctx, arbapp.AnalyzeRequest{
			ChainName:      chainName,
			TargetSymbol:   token,
			Pairs:          pairs,
			NativePriceUSD: nativePrice,
			GasPriceGwei:   gasPrice,
		})

		for i := range candidates {
			opp := &candidates[i]
			assessment := s.momentum.Assess(ctx, opp)
			if !assessment.Passed {
				continue
			}
			opps = append(opps, scoredOpportunity{opp: opp, assessment: assessment})
		}
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].opp.NetProfitUSD > opps[j].opp.NetProfitUSD
	})

	for _, cand := range opps {
		if s.dispatch(ctx, cand, nativePrice, cycleID) {
			found++
		}
	}

	if s.cfg.MultiLegEnabled && s.cycles != nil {
		if s.cfg.MultiLegFetchDepth > 1 {
			chainPairs = s.expandPairs(ctx, chainName, chainPairs)
		}
		legs := s.cycles.Find(ctx, arbapp.CycleRequest{
			ChainName:      chainName,
			Pairs:          chainPairs,
			NativePriceUSD: nativePrice,
			GasPriceGwei:   gasPrice,
		})
		for i := range legs {
			s.reporter.ReportMultiLeg(&legs[i])
			found++
		}
	}
	return found
}

// expandPairs widens the cycle-finder's graph: each extra depth level
// searches the token symbols discovered in the previous level's pairs.
func (s *Scanner) expandPairs(ctx context.Context, chainName string, pairs []marketdata.Pair) []marketdata.Pair {
	searched := make(map[string]bool, len(s.cfg.Tokens))
	for _, token := range s.cfg.Tokens {
		searched[strings.ToUpper(token)] = true
	}

	for depth := 1; depth < s.cfg.MultiLegFetchDepth; depth++ {
		var frontier []string
		for _, p := range pairs {
			for _, sym := range []string{p.BaseToken.Symbol, p.QuoteToken.Symbol} {
				if sym == "" || searched[strings.ToUpper(sym)] {
					continue
				}
				searched[strings.ToUpper(sym)] = true
				frontier = append(frontier, sym)
			}
		}
		if len(frontier) == 0 {
			break
		}

		for _, sym := range frontier {
			if ctx.Err() != nil {
				return pairs
			}
			found, err := s.pairs.Search(ctx, sym)
			if err != nil {
				s.log.Warn(ctx, "pair search failed", "chain", chainName, "token", sym, "error", err)
				continue
			}
			for _, p := range found {
				if strings.EqualFold(p.ChainID, chainName) {
					pairs = append(pairs, p)
				}
			}
		}
	}
	return pairs
}

type scoredOpportunity struct {
	opp        *arbdomain.Opportunity
	assessment momentumapp.Assessment
}

// dispatch runs the post-scoring gates and reports the opportunity. It
// returns true when the opportunity reached the reporter.
func (s *Scanner) dispatch(ctx context.Context, cand scoredOpportunity, nativePrice float64, cycleID int64) bool {
	opp := cand.opp

	validation := s.validate(ctx, opp, nativePrice)
	if validation != nil && validation.Validated && !validation.Passed {
		s.log.Info(ctx, "opportunity rejected by on-chain validation",
			"pair", opp.PairName, "chain", opp.ChainName, "code", validation.Err)
		return false
	}

	if s.alerts != nil {
		fresh, err := s.alerts.ShouldAlert(ctx, opp.Key(), s.cfg.AlertCooldown)
		if err != nil {
			s.log.Warn(ctx, "alert cooldown check failed", "error", err)
		} else if !fresh {
			return false
		}
	}

	s.reporter.ReportOpportunity(opp, cand.assessment, validation)
	s.recordAlert(ctx, cand, cycleID)
	return true
}

// validate re-checks the buy-side quote on chain. A nil result means the
// check was disabled or could not run; that never blocks an alert.
func (s *Scanner) validate(ctx context.Context, opp *arbdomain.Opportunity, nativePrice float64) *validationdomain.Result {
	if !s.cfg.ValidationEnabled || s.validator == nil {
		return nil
	}
	res := s.validator.ValidatePairPrice(ctx, validationapp.Request{
		ChainName:           opp.ChainName,
		PairAddress:         opp.BuyPairAddress,
		TargetTokenAddress:  opp.BaseTokenAddress,
		CounterTokenAddress: opp.QuoteTokenAddr,
		QuotedPriceUSD:      opp.BuyPrice,
		NativePriceUSD:      nativePrice,
	})
	return &res
}

func (s *Scanner) recordAlert(ctx context.Context, cand scoredOpportunity, cycleID int64) {
	if s.recorder == nil {
		return
	}
	opp := cand.opp
	alert := momentumdomain.AlertRecord{
		ScanCycleID:    cycleID,
		Chain:          opp.ChainName,
		Token:          opp.TargetSymbol(),
		Direction:      string(opp.Direction),
		NetProfitUSD:   opp.NetProfitUSD,
		GrossProfitUSD: opp.GrossProfitUSD,
		MomentumScore:  cand.assessment.Score.Value,
		AlertSentAt:    time.Now().UTC(),
		OpportunityKey: opp.Key(),
	}
	snap := momentumdomain.Snapshot{
		VolumeDivergence:      cand.assessment.VolumeDivergence,
		PersistenceCount:      cand.assessment.PersistenceCount,
		RSIValue:              cand.assessment.RSIValue,
		DominantHasLowerPrice: opp.DominantIsBuySide,
	}
	if _, err := s.recorder.RecordAlert(ctx, alert, snap); err != nil {
		s.log.Warn(ctx, "alert not persisted", "error", err)
	}
}
