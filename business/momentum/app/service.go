package app

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	arbdomain "github.com/dexpulse/arbscan/business/arbitrage/domain"
	"github.com/dexpulse/arbscan/business/momentum/domain"
	"github.com/dexpulse/arbscan/internal/logger"
)

// Config holds the momentum service thresholds.
type Config struct {
	MinScoreBullish   float64
	MinScoreBearish   float64
	HistoryLimit      int
	RSIPeriod         int
	PersistenceWindow time.Duration
}

// Service turns a detected opportunity into a gated momentum assessment. It
// tracks per-opportunity sighting times across scans and smooths RSI readings
// with the persisted history so one noisy fetch cannot whip the score around.
type Service struct {
	cfg     Config
	history HistoryRepo
	rsi     RSIProvider
	log     *logger.Logger

	mu        sync.Mutex
	sightings map[string][]time.Time

	now func() time.Time
}

// NewService creates a momentum Service. rsi may be nil when no external
// price source is configured; assessments then rely on persisted history.
func NewService(cfg Config, history HistoryRepo, rsi RSIProvider, log *logger.Logger) *Service {
	return &Service{
		cfg:       cfg,
		history:   history,
		rsi:       rsi,
		log:       log,
		sightings: make(map[string][]time.Time),
		now:       time.Now,
	}
}

// Assessment is the outcome of scoring one opportunity.
type Assessment struct {
	Score            domain.MomentumScore
	PersistenceCount int
	RSIValue         float64 // reading fed to the scorer before blending
	BlendedRSI       float64
	VolumeDivergence float64
	Passed           bool
}

// Assess scores the opportunity and applies the per-direction minimum-score
// gate. History or RSI fetch failures degrade to neutral defaults; they never
// fail the assessment.
func (s *Service) Assess(ctx context.Context, opp *arbdomain.Opportunity) Assessment {
	count := s.recordSighting(opp.Key())
	volDiv := opp.DominantVolumeRatio
	symbol := strings.ToUpper(opp.TargetSymbol())

	var records []domain.HistoryRecord
	if s.history != nil {
		var err error
		records, err = s.history.RecentHistory(ctx, symbol, string(opp.Direction), s.cfg.HistoryLimit)
		if err != nil {
			s.log.Warn(ctx, "momentum history unavailable", "token", symbol, "err", err)
			records = nil
		}
	}

	lastKnown := firstKnownRSI(records)
	emaRSI := smoothedRSI(records, lastKnown)

	rsiValue := 50.0
	if s.rsi != nil {
		if v, ok, err := s.rsi.TokenRSI(ctx, symbol, s.cfg.RSIPeriod); err == nil && ok {
			rsiValue = v
		} else {
			if err != nil {
				s.log.Warn(ctx, "rsi fetch failed", "token", symbol, "err", err)
			}
			if lastKnown != nil {
				rsiValue = *lastKnown
			}
		}
	} else if lastKnown != nil {
		rsiValue = *lastKnown
	}

	baseRSI := rsiValue
	if emaRSI != nil {
		baseRSI = *emaRSI
	}

	// Flow bias nudges the RSI up to ±5 points toward what the venue flow
	// itself suggests, so thin history does not leave the score blind.
	volumeNorm := 1.0
	if !math.IsInf(volDiv, 0) && !math.IsNaN(volDiv) {
		volumeNorm = math.Min(volDiv, 5) / 5
	}
	persistenceNorm := math.Min(float64(count), 5) / 5
	flowBias := (volumeNorm + persistenceNorm) / 2

	blended := baseRSI + (flowBias-0.5)*10
	blended = math.Max(0, math.Min(100, blended))

	score := domain.ComputeScore(volDiv, count, blended, opp.DominantIsBuySide)

	passed := true
	switch opp.Direction {
	case arbdomain.DirectionBullish:
		passed = score.Value >= s.cfg.MinScoreBullish
	case arbdomain.DirectionBearish:
		passed = score.Value >= s.cfg.MinScoreBearish
	}

	return Assessment{
		Score:            score,
		PersistenceCount: count,
		RSIValue:         rsiValue,
		BlendedRSI:       blended,
		VolumeDivergence: volDiv,
		Passed:           passed,
	}
}

// recordSighting appends a sighting for the key and prunes entries older than
// the persistence window, returning the surviving count.
func (s *Service) recordSighting(key string) int {
	now := s.now()
	cutoff := now.Add(-s.cfg.PersistenceWindow)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sightings[key][:0]
	for _, t := range s.sightings[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	s.sightings[key] = kept
	return len(kept)
}

// firstKnownRSI returns the newest non-nil RSI value in the history.
func firstKnownRSI(records []domain.HistoryRecord) *float64 {
	for _, r := range records {
		if r.RSIValue != nil {
			return r.RSIValue
		}
	}
	return nil
}

// smoothedRSI folds the history's RSI values into an EMA seeded from the
// newest known reading. The alpha shortens with thin history so a handful of
// records still produces a stable value.
func smoothedRSI(records []domain.HistoryRecord, seed *float64) *float64 {
	if len(records) == 0 || seed == nil {
		return nil
	}

	span := len(records)
	if span > 5 {
		span = 5
	}
	alpha := 2.0 / float64(span+1)

	ema := *seed
	for _, r := range records[1:] {
		if r.RSIValue == nil {
			continue
		}
		ema = *r.RSIValue*alpha + ema*(1-alpha)
	}
	return &ema
}
