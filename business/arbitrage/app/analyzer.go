// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dexpulse/arbscan/business/arbitrage/domain"
	marketdata "github.com/dexpulse/arbscan/business/marketdata/domain"
	"github.com/dexpulse/arbscan/internal/chain"
	"github.com/dexpulse/arbscan/internal/logger"
)

// Early-momentum qualification floors and impact ceilings. These are tunable
// policy, not invariants: they calibrate how aggressively thin-but-heating
// pools are admitted past the standard liquidity/volume gates.
const (
	earlyMinLiquidityUSD  = 200_000
	earlyMinVolume24hUSD  = 300_000
	earlyMinVolume5mUSD   = 25_000
	earlyMinTxns5m        = 3
	earlyVolumeRatioFloor = 0.035

	impactCeilingEarlyPct    = 2.0
	impactCeilingStandardPct = 1.5

	standardSizeCapFrac = 0.005 // 0.5% of each leg's liquidity
	earlySizeCapFrac    = 0.002 // 0.2% of the thinner leg on early-momentum pairs

	minTradeSizeUSD = 1.0

	// A bearish read needs the expensive venue to clearly own the flow.
	bearishDominanceFloor = 1.2
)

// AnalyzerConfig holds the tunable thresholds of the pairwise analyzer.
type AnalyzerConfig struct {
	TradeVolumeUSD           float64
	DexFeePct                float64
	SlippagePct              float64
	MinBullishProfitPct      float64
	MinBearishDiscrepancyPct float64
	MinLiquidityUSD          float64
	MinVolume24hUSD          float64
	MinTxnsH1                int
}

// Analyzer turns raw pair listings for one token into cost-adjusted two-venue
// opportunities. It is pure: no I/O, no state between calls, safe to invoke
// concurrently.
type Analyzer struct {
	cfg AnalyzerConfig
	log *logger.Logger
}

// NewAnalyzer creates a pairwise Analyzer.
func NewAnalyzer(cfg AnalyzerConfig, log *logger.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, log: log}
}

// AnalyzeRequest is one scan's snapshot input for a single chain and token.
type AnalyzeRequest struct {
	ChainName      string
	TargetSymbol   string
	Pairs          []marketdata.Pair
	NativePriceUSD float64
	GasPriceGwei   float64
}

// Analyze runs the full filtering and costing pipeline and returns every
// qualifying opportunity. Pair-name groups are processed in sorted order so
// output is deterministic for a given snapshot.
func (a *Analyzer) Analyze(ctx context.Context, req AnalyzeRequest) []domain.Opportunity {
	groups := a.collectQuotes(req)

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var opps []domain.Opportunity
	for _, name := range names {
		quotes := groups[name]
		if len(quotes) < 2 {
			continue
		}
		for i := 0; i < len(quotes); i++ {
			for j := i + 1; j < len(quotes); j++ {
				if opp, ok := a.evaluate(req, quotes[i], quotes[j]); ok {
					opps = append(opps, opp)
				}
			}
		}
	}

	a.log.Debug(ctx, "pairwise analysis complete",
		"chain", req.ChainName,
		"token", req.TargetSymbol,
		"pairs_in", len(req.Pairs),
		"groups", len(groups),
		"opportunities", len(opps))

	return opps
}

// collectQuotes filters raw pairs down to usable quotes of the target token,
// grouped by pair name. Sub-threshold and malformed records are dropped
// silently: the input is third-party data and gaps are routine.
func (a *Analyzer) collectQuotes(req AnalyzeRequest) map[string][]domain.PairQuote {
	groups := make(map[string][]domain.PairQuote)

	for i := range req.Pairs {
		p := &req.Pairs[i]
		if !strings.EqualFold(p.ChainID, req.ChainName) {
			continue
		}

		liq := p.LiquidityUSD()
		vol24 := p.Volume.H24
		vol5m := p.Volume.M5
		txnsH1 := p.Txns.H1.Total()
		txns5m := p.Txns.M5.Total()

		standard := liq >= a.cfg.MinLiquidityUSD &&
			vol24 >= a.cfg.MinVolume24hUSD &&
			(a.cfg.MinTxnsH1 <= 0 || txnsH1 >= a.cfg.MinTxnsH1)

		early := false
		if !standard {
			early = liq >= earlyMinLiquidityUSD &&
				vol24 >= earlyMinVolume24hUSD &&
				vol5m >= earlyMinVolume5mUSD &&
				txns5m >= earlyMinTxns5m &&
				vol24 > 0 && vol5m/vol24 >= earlyVolumeRatioFloor
			if !early {
				continue
			}
		}

		if p.DexID == "" || p.BaseToken.Symbol == "" || p.QuoteToken.Symbol == "" {
			continue
		}
		priceUSD, ok := p.PriceUsdFloat()
		if !ok {
			continue
		}
		priceNative, ok := p.PriceNativeFloat()
		if !ok {
			continue
		}

		// Resolve the target token's USD price in this pool.
		var targetPrice float64
		var targetAddr, counterAddr string
		switch {
		case strings.EqualFold(p.BaseToken.Symbol, req.TargetSymbol):
			targetPrice = priceUSD
			targetAddr = p.BaseToken.Address
			counterAddr = p.QuoteToken.Address
		case strings.EqualFold(p.QuoteToken.Symbol, req.TargetSymbol):
			if priceNative == 0 {
				continue
			}
			targetPrice = priceUSD / priceNative
			targetAddr = p.QuoteToken.Address
			counterAddr = p.BaseToken.Address
		default:
			continue
		}

		name := p.BaseToken.Symbol + "/" + p.QuoteToken.Symbol
		groups[name] = append(groups[name], domain.PairQuote{
			Venue:            p.DexID,
			PairName:         name,
			PriceUSD:         targetPrice,
			LiquidityUSD:     liq,
			Volume24hUSD:     vol24,
			Volume5mUSD:      vol5m,
			TxnsH1:           txnsH1,
			Txns5m:           txns5m,
			PriceChangeH1:    p.PriceChange.H1,
			PairAddress:      p.PairAddress,
			BaseTokenAddress: targetAddr,
			QuoteTokenAddr:   counterAddr,
			EarlyMomentum:    early,
		})
	}

	return groups
}

// evaluate runs the costing model on one unordered venue combination.
func (a *Analyzer) evaluate(req AnalyzeRequest, q1, q2 domain.PairQuote) (domain.Opportunity, bool) {
	if q1.Venue == q2.Venue {
		return domain.Opportunity{}, false
	}
	if q1.PriceUSD <= 0 || q2.PriceUSD <= 0 || q1.PriceUSD == q2.PriceUSD {
		return domain.Opportunity{}, false
	}

	buy, sell := q1, q2
	if sell.PriceUSD < buy.PriceUSD {
		buy, sell = sell, buy
	}

	// The venue with strictly more 24h volume is dominant; on an exact tie
	// the cheaper venue takes it.
	dominantIsBuy := buy.Volume24hUSD >= sell.Volume24hUSD
	direction := domain.DirectionBullish
	if !dominantIsBuy {
		direction = domain.DirectionBearish
	}

	spreadPct := (sell.PriceUSD - buy.PriceUSD) / buy.PriceUSD * 100
	if spreadPct <= 0 {
		return domain.Opportunity{}, false
	}

	domVol, otherVol := buy.Volume24hUSD, sell.Volume24hUSD
	if !dominantIsBuy {
		domVol, otherVol = sell.Volume24hUSD, buy.Volume24hUSD
	}
	domRatio := math.Inf(1)
	if otherVol > 0 {
		domRatio = domVol / otherVol
	}

	if direction == domain.DirectionBearish {
		if spreadPct < a.cfg.MinBearishDiscrepancyPct {
			return domain.Opportunity{}, false
		}
		if domRatio < bearishDominanceFloor {
			return domain.Opportunity{}, false
		}
	}

	early := buy.EarlyMomentum || sell.EarlyMomentum

	size := math.Min(a.cfg.TradeVolumeUSD,
		math.Min(standardSizeCapFrac*buy.LiquidityUSD, standardSizeCapFrac*sell.LiquidityUSD))
	if early {
		size = math.Min(size, earlySizeCapFrac*math.Min(buy.LiquidityUSD, sell.LiquidityUSD))
	}
	if size < minTradeSizeUSD {
		return domain.Opportunity{}, false
	}

	impactPct := domain.PriceImpactPct(size, buy.LiquidityUSD, sell.LiquidityUSD)
	ceiling := impactCeilingStandardPct
	if early {
		ceiling = impactCeilingEarlyPct
	}
	if math.IsInf(impactPct, 1) || impactPct > ceiling {
		return domain.Opportunity{}, false
	}

	gas := domain.NewGasCost(req.GasPriceGwei, chain.GasUnitsPerSwap(req.ChainName), 2, req.NativePriceUSD)
	costs := domain.TradeCosts{
		GasUSD:         gas.USDFloat(),
		DexFeeUSD:      2 * size * a.cfg.DexFeePct / 100,
		SlippageUSD:    size * a.cfg.SlippagePct / 100,
		PriceImpactUSD: size * impactPct / 100,
		PriceImpactPct: impactPct,
	}

	grossProfit := spreadPct / 100 * size
	netProfit := grossProfit - costs.Total()
	if netProfit <= 0 {
		return domain.Opportunity{}, false
	}

	if direction == domain.DirectionBullish && spreadPct < a.cfg.MinBullishProfitPct {
		return domain.Opportunity{}, false
	}

	return domain.Opportunity{
		PairName:    buy.PairName,
		TargetToken: strings.ToUpper(req.TargetSymbol),
		ChainName:   req.ChainName,
		Direction:   direction,
		Timestamp:   time.Now().UTC(),

		BuyVenue:  buy.Venue,
		BuyPrice:  buy.PriceUSD,
		SellVenue: sell.Venue,
		SellPrice: sell.PriceUSD,

		GrossSpreadPct:     spreadPct,
		EffectiveVolumeUSD: size,

		GrossProfitUSD:  grossProfit,
		NetProfitUSD:    netProfit,
		GasCostUSD:      costs.GasUSD,
		DexFeeCostUSD:   costs.DexFeeUSD,
		SlippageCostUSD: costs.SlippageUSD,
		PriceImpactCost: costs.PriceImpactUSD,
		PriceImpactPct:  costs.PriceImpactPct,
		GasPriceGwei:    req.GasPriceGwei,

		BuyVolume24hUSD:     buy.Volume24hUSD,
		SellVolume24hUSD:    sell.Volume24hUSD,
		DominantIsBuySide:   dominantIsBuy,
		DominantVolumeRatio: domRatio,

		ShortTermVolumeRatio: domain.ShortTermVolumeRatio(buy, sell),
		ShortTermTxnsTotal:   buy.Txns5m + sell.Txns5m,
		EarlyMomentum:        early,

		BuyPriceChangeH1:  buy.PriceChangeH1,
		SellPriceChangeH1: sell.PriceChangeH1,

		BaseTokenAddress: buy.BaseTokenAddress,
		BuyPairAddress:   buy.PairAddress,
		SellPairAddress:  sell.PairAddress,
		QuoteTokenAddr:   buy.QuoteTokenAddr,
	}, true
}
