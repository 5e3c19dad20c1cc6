package app

import (
	"context"
	"io"
	"math"
	"strconv"
	"testing"

	"github.com/dexpulse/arbscan/business/arbitrage/domain"
	marketdata "github.com/dexpulse/arbscan/business/marketdata/domain"
	"github.com/dexpulse/arbscan/internal/logger"
)

func testAnalyzer(cfg AnalyzerConfig) *Analyzer {
	return NewAnalyzer(cfg, logger.New(io.Discard, logger.LevelError, "test", nil))
}

func defaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		TradeVolumeUSD:           500,
		DexFeePct:                0.3,
		SlippagePct:              0.5,
		MinBullishProfitPct:      1.0,
		MinBearishDiscrepancyPct: 1.0,
		MinLiquidityUSD:          10_000,
		MinVolume24hUSD:          10_000,
		MinTxnsH1:                1,
	}
}

// listing builds a TKN/USDC pair record on ethereum with sane defaults.
func listing(dex string, priceUSD, vol24, liqUSD float64) marketdata.Pair {
	return marketdata.Pair{
		ChainID:     "ethereum",
		DexID:       dex,
		PairAddress: "0xpool" + dex,
		BaseToken:   marketdata.Token{Address: "0xtkn", Symbol: "TKN"},
		QuoteToken:  marketdata.Token{Address: "0xusdc", Symbol: "USDC"},
		PriceUsd:    strconv.FormatFloat(priceUSD, 'f', -1, 64),
		PriceNative: "1",
		Liquidity:   &marketdata.Liquidity{USD: liqUSD},
		Volume:      marketdata.Volume{H24: vol24, M5: vol24 / 288},
		Txns: marketdata.Txns{
			H1: marketdata.TxnSummary{Buys: 10, Sells: 10},
			M5: marketdata.TxnSummary{Buys: 2, Sells: 2},
		},
		PriceChange: marketdata.PriceChange{H1: 1.5},
	}
}

func defaultRequest(pairs ...marketdata.Pair) AnalyzeRequest {
	return AnalyzeRequest{
		ChainName:      "ethereum",
		TargetSymbol:   "TKN",
		Pairs:          pairs,
		NativePriceUSD: 3000,
		GasPriceGwei:   10,
	}
}

func TestAnalyzer_BullishOpportunity(t *testing.T) {
	a := testAnalyzer(defaultAnalyzerConfig())

	// Cheap venue owns the volume: accumulation, so BULLISH.
	opps := a.Analyze(context.Background(), defaultRequest(
		listing("alpha", 100, 80_000, 500_000),
		listing("beta", 105, 20_000, 500_000),
	))

	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	opp := opps[0]

	if opp.Direction != domain.DirectionBullish {
		t.Errorf("Direction = %s, want BULLISH", opp.Direction)
	}
	if opp.BuyVenue != "alpha" || opp.SellVenue != "beta" {
		t.Errorf("buy=%s sell=%s, want buy=alpha sell=beta", opp.BuyVenue, opp.SellVenue)
	}
	if opp.BuyPrice >= opp.SellPrice {
		t.Errorf("buy price %v not below sell price %v", opp.BuyPrice, opp.SellPrice)
	}
	if !opp.DominantIsBuySide {
		t.Error("dominant venue should be the buy side")
	}
	if math.Abs(opp.GrossSpreadPct-5) > 1e-9 {
		t.Errorf("GrossSpreadPct = %v, want 5", opp.GrossSpreadPct)
	}
	if opp.NetProfitUSD <= 0 {
		t.Errorf("NetProfitUSD = %v, want > 0", opp.NetProfitUSD)
	}

	// size = min(500, 0.5% of each leg) = 500; gross = 5% * 500 = 25.
	if math.Abs(opp.EffectiveVolumeUSD-500) > 1e-9 {
		t.Errorf("EffectiveVolumeUSD = %v, want 500", opp.EffectiveVolumeUSD)
	}
	if math.Abs(opp.GrossProfitUSD-25) > 1e-9 {
		t.Errorf("GrossProfitUSD = %v, want 25", opp.GrossProfitUSD)
	}
	// gas = 10 gwei * 150k units * 2 swaps * $3000 = $9.
	if math.Abs(opp.GasCostUSD-9) > 1e-9 {
		t.Errorf("GasCostUSD = %v, want 9", opp.GasCostUSD)
	}
}

func TestAnalyzer_BearishOpportunity(t *testing.T) {
	a := testAnalyzer(defaultAnalyzerConfig())

	// Pricier venue owns the volume 4:1: distribution, so BEARISH.
	opps := a.Analyze(context.Background(), defaultRequest(
		listing("alpha", 105, 80_000, 500_000),
		listing("beta", 100, 20_000, 500_000),
	))

	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	opp := opps[0]

	if opp.Direction != domain.DirectionBearish {
		t.Errorf("Direction = %s, want BEARISH", opp.Direction)
	}
	if opp.BuyVenue != "beta" || opp.SellVenue != "alpha" {
		t.Errorf("buy=%s sell=%s, want buy=beta sell=alpha", opp.BuyVenue, opp.SellVenue)
	}
	if opp.DominantIsBuySide {
		t.Error("dominant venue should be the sell side")
	}
	if math.Abs(opp.DominantVolumeRatio-4) > 1e-9 {
		t.Errorf("DominantVolumeRatio = %v, want 4", opp.DominantVolumeRatio)
	}
	if opp.NetProfitUSD <= 0 {
		t.Errorf("NetProfitUSD = %v, want > 0", opp.NetProfitUSD)
	}
}

func TestAnalyzer_BearishWeakDominanceDropped(t *testing.T) {
	a := testAnalyzer(defaultAnalyzerConfig())

	// Dominance ratio 22/20 = 1.1 < 1.2: not a tradable bearish cue.
	opps := a.Analyze(context.Background(), defaultRequest(
		listing("alpha", 105, 22_000, 500_000),
		listing("beta", 100, 20_000, 500_000),
	))

	if len(opps) != 0 {
		t.Fatalf("got %d opportunities, want 0", len(opps))
	}
}

func TestAnalyzer_VolumeTieBreaksBullish(t *testing.T) {
	a := testAnalyzer(defaultAnalyzerConfig())

	opps := a.Analyze(context.Background(), defaultRequest(
		listing("alpha", 100, 50_000, 500_000),
		listing("beta", 105, 50_000, 500_000),
	))

	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if opps[0].Direction != domain.DirectionBullish {
		t.Errorf("Direction = %s, want BULLISH on volume tie", opps[0].Direction)
	}
	if !opps[0].DominantIsBuySide {
		t.Error("tie should make the cheaper venue dominant")
	}
}

func TestAnalyzer_SingleVenueYieldsNothing(t *testing.T) {
	a := testAnalyzer(defaultAnalyzerConfig())

	opps := a.Analyze(context.Background(), defaultRequest(
		listing("alpha", 100, 80_000, 500_000),
	))

	if len(opps) != 0 {
		t.Fatalf("got %d opportunities, want 0", len(opps))
	}
}

func TestAnalyzer_SkipsOtherChains(t *testing.T) {
	a := testAnalyzer(defaultAnalyzerConfig())

	foreign := listing("beta", 105, 20_000, 500_000)
	foreign.ChainID = "polygon"

	opps := a.Analyze(context.Background(), defaultRequest(
		listing("alpha", 100, 80_000, 500_000),
		foreign,
	))

	if len(opps) != 0 {
		t.Fatalf("got %d opportunities, want 0", len(opps))
	}
}

func TestAnalyzer_SameVenueSkipped(t *testing.T) {
	a := testAnalyzer(defaultAnalyzerConfig())

	opps := a.Analyze(context.Background(), defaultRequest(
		listing("alpha", 100, 80_000, 500_000),
		listing("alpha", 105, 20_000, 500_000),
	))

	if len(opps) != 0 {
		t.Fatalf("got %d opportunities, want 0", len(opps))
	}
}

func TestAnalyzer_EarlyMomentumQualification(t *testing.T) {
	cfg := defaultAnalyzerConfig()
	// Standard gates far above what the pools offer.
	cfg.MinLiquidityUSD = 1_000_000
	cfg.MinVolume24hUSD = 5_000_000
	a := testAnalyzer(cfg)

	hot := func(dex string, priceUSD, vol24 float64) marketdata.Pair {
		p := listing(dex, priceUSD, vol24, 250_000)
		p.Volume.M5 = 25_000 // 5m volume hugely out of proportion to 24h
		return p
	}

	opps := a.Analyze(context.Background(), defaultRequest(
		hot("alpha", 100, 400_000),
		hot("beta", 105, 400_000),
	))

	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	opp := opps[0]
	if !opp.EarlyMomentum {
		t.Error("opportunity should carry the early-momentum flag")
	}
	// Early cap: 0.2% of the thinner leg = 0.002 * 250000 = 500.
	if opp.EffectiveVolumeUSD > 500+1e-9 {
		t.Errorf("EffectiveVolumeUSD = %v, want ≤ 500", opp.EffectiveVolumeUSD)
	}
}

func TestAnalyzer_TargetAsQuoteToken(t *testing.T) {
	a := testAnalyzer(defaultAnalyzerConfig())

	// WETH/TKN pool quoting the target as the quote token: the target's USD
	// price is priceUsd / priceNative = 3000 / 30 = 100.
	inverted := marketdata.Pair{
		ChainID:     "ethereum",
		DexID:       "gamma",
		PairAddress: "0xpoolgamma",
		BaseToken:   marketdata.Token{Address: "0xweth", Symbol: "WETH"},
		QuoteToken:  marketdata.Token{Address: "0xtkn", Symbol: "TKN"},
		PriceUsd:    "3000",
		PriceNative: "30",
		Liquidity:   &marketdata.Liquidity{USD: 500_000},
		Volume:      marketdata.Volume{H24: 80_000, M5: 300},
		Txns: marketdata.Txns{
			H1: marketdata.TxnSummary{Buys: 10, Sells: 10},
			M5: marketdata.TxnSummary{Buys: 2, Sells: 2},
		},
	}

	groups := a.collectQuotes(defaultRequest(inverted))
	quotes := groups["WETH/TKN"]
	if len(quotes) != 1 {
		t.Fatalf("got %d quotes, want 1", len(quotes))
	}
	if math.Abs(quotes[0].PriceUSD-100) > 1e-9 {
		t.Errorf("resolved price = %v, want 100", quotes[0].PriceUSD)
	}
	if quotes[0].BaseTokenAddress != "0xtkn" {
		t.Errorf("target address = %s, want 0xtkn", quotes[0].BaseTokenAddress)
	}
}

func TestAnalyzer_TargetSymbolSurvivesQuoteSidePools(t *testing.T) {
	a := testAnalyzer(defaultAnalyzerConfig())

	// The target trades only as the quote token of WETH pools, so the pair
	// name leads with WETH. The emitted opportunity must still identify TKN
	// as the scanned token: momentum history and persistence key off it.
	pool := func(dex, priceNative string, vol24 float64) marketdata.Pair {
		return marketdata.Pair{
			ChainID:     "ethereum",
			DexID:       dex,
			PairAddress: "0xpool" + dex,
			BaseToken:   marketdata.Token{Address: "0xweth", Symbol: "WETH"},
			QuoteToken:  marketdata.Token{Address: "0xtkn", Symbol: "TKN"},
			PriceUsd:    "3000",
			PriceNative: priceNative,
			Liquidity:   &marketdata.Liquidity{USD: 500_000},
			Volume:      marketdata.Volume{H24: vol24, M5: vol24 / 288},
			Txns: marketdata.Txns{
				H1: marketdata.TxnSummary{Buys: 10, Sells: 10},
				M5: marketdata.TxnSummary{Buys: 2, Sells: 2},
			},
		}
	}

	// Target price per pool: 3000/30 = 100 on gamma, 3000/28.5 ≈ 105.26 on delta.
	opps := a.Analyze(context.Background(), defaultRequest(
		pool("gamma", "30", 80_000),
		pool("delta", "28.5", 20_000),
	))

	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	opp := opps[0]

	if opp.PairName != "WETH/TKN" {
		t.Errorf("PairName = %s, want WETH/TKN", opp.PairName)
	}
	if got := opp.TargetSymbol(); got != "TKN" {
		t.Errorf("TargetSymbol() = %s, want TKN", got)
	}
	if opp.BaseTokenAddress != "0xtkn" {
		t.Errorf("BaseTokenAddress = %s, want 0xtkn", opp.BaseTokenAddress)
	}
}

func TestAnalyzer_MalformedPriceDropped(t *testing.T) {
	a := testAnalyzer(defaultAnalyzerConfig())

	bad := listing("beta", 105, 20_000, 500_000)
	bad.PriceUsd = "not-a-number"

	opps := a.Analyze(context.Background(), defaultRequest(
		listing("alpha", 100, 80_000, 500_000),
		bad,
	))

	if len(opps) != 0 {
		t.Fatalf("got %d opportunities, want 0", len(opps))
	}
}
