package app

import (
	"context"

	"github.com/dexpulse/arbscan/business/arbitrage/domain"
	marketdata "github.com/dexpulse/arbscan/business/marketdata/domain"
	"github.com/dexpulse/arbscan/internal/chain"
	"github.com/dexpulse/arbscan/internal/logger"
)

// CycleFinderConfig holds the tunable thresholds of the multi-leg finder.
type CycleFinderConfig struct {
	MaxCycleLength  int
	MinNetProfitUSD float64
	MinLiquidityUSD float64
	TradeVolumeUSD  float64
	DexFeePct       float64
	SlippagePct     float64
}

// CycleFinder locates profitable closed trading loops in the token-exchange
// graph built from one chain's pair listings. Like the pairwise analyzer it is
// pure and safe for concurrent use.
type CycleFinder struct {
	cfg CycleFinderConfig
	log *logger.Logger
}

// NewCycleFinder creates a multi-leg CycleFinder.
func NewCycleFinder(cfg CycleFinderConfig, log *logger.Logger) *CycleFinder {
	return &CycleFinder{cfg: cfg, log: log}
}

// CycleRequest is one scan's snapshot input for a single chain.
type CycleRequest struct {
	ChainName      string
	Pairs          []marketdata.Pair
	NativePriceUSD float64
	GasPriceGwei   float64
}

// Find builds the exchange graph, enumerates simple cycles of 3 or more legs,
// and returns every cycle whose net profit clears the configured minimum.
func (f *CycleFinder) Find(ctx context.Context, req CycleRequest) []domain.MultiLegOpportunity {
	gd := domain.BuildGraph(req.Pairs, f.cfg.MinLiquidityUSD)
	cycles := gd.Graph.SimpleCycles(3, f.cfg.MaxCycleLength)

	gasPerSwapUSD := domain.NewGasCost(
		req.GasPriceGwei, chain.GasUnitsPerSwap(req.ChainName), 1, req.NativePriceUSD,
	).USDFloat()

	var opps []domain.MultiLegOpportunity
	for _, cycle := range cycles {
		// Negative weight sum means the compounded rate exceeds 1: a
		// theoretically profitable loop before costs.
		weight, ok := gd.Graph.CycleWeight(cycle)
		if !ok || weight >= 0 {
			continue
		}

		startPrice := gd.PriceUSD[cycle[0]]
		if startPrice <= 0 {
			continue
		}

		qty := f.cfg.TradeVolumeUSD / startPrice
		for i := range cycle {
			edge, ok := gd.Graph.Edge(cycle[i], cycle[(i+1)%len(cycle)])
			if !ok {
				qty = 0
				break
			}
			qty *= edge.Rate * (1 - f.cfg.DexFeePct/100) * (1 - f.cfg.SlippagePct/100)
		}
		if qty <= 0 {
			continue
		}

		finalUSD := qty * startPrice
		grossProfit := finalUSD - f.cfg.TradeVolumeUSD
		gasCost := gasPerSwapUSD * float64(len(cycle))
		netProfit := grossProfit - gasCost
		if netProfit <= f.cfg.MinNetProfitUSD {
			continue
		}

		path := make([]string, 0, len(cycle)+1)
		for _, addr := range cycle {
			path = append(path, gd.SymbolFor(addr))
		}
		path = append(path, path[0])

		opps = append(opps, domain.MultiLegOpportunity{
			ChainName:      req.ChainName,
			CyclePath:      path,
			TradeVolumeUSD: f.cfg.TradeVolumeUSD,
			GrossProfitUSD: grossProfit,
			NetProfitUSD:   netProfit,
			GasCostUSD:     gasCost,
			NumSwaps:       len(cycle),
		})
	}

	f.log.Debug(ctx, "cycle search complete",
		"chain", req.ChainName,
		"nodes", len(gd.Graph.Nodes()),
		"edges", gd.Graph.NumEdges(),
		"cycles_examined", len(cycles),
		"profitable", len(opps))

	return opps
}
