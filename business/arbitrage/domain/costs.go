// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

var gweiPerNative = decimal.NewFromInt(1_000_000_000)

// GasCost is the modeled gas spend for executing swaps on one chain.
type GasCost struct {
	GasPriceGwei decimal.Decimal
	GasUnits     uint64 // per-swap gas estimate for the chain
	Swaps        int
	Native       decimal.Decimal // total cost in native token units
	USD          decimal.Decimal
}

// NewGasCost models the cost of `swaps` swaps at the given gas price.
func NewGasCost(gasPriceGwei float64, gasUnits uint64, swaps int, nativePriceUSD float64) GasCost {
	gwei := decimal.NewFromFloat(gasPriceGwei)
	units := decimal.NewFromUint64(gasUnits)

	native := gwei.Div(gweiPerNative).
		Mul(units).
		Mul(decimal.NewFromInt(int64(swaps)))

	return GasCost{
		GasPriceGwei: gwei,
		GasUnits:     gasUnits,
		Swaps:        swaps,
		Native:       native,
		USD:          native.Mul(decimal.NewFromFloat(nativePriceUSD)),
	}
}

// USDFloat returns the USD cost as a float64 for the analyzer's cost model.
func (g GasCost) USDFloat() float64 {
	return g.USD.InexactFloat64()
}

// TradeCosts itemizes the modeled costs of a two-leg arbitrage trade.
type TradeCosts struct {
	GasUSD         float64
	DexFeeUSD      float64
	SlippageUSD    float64
	PriceImpactUSD float64
	PriceImpactPct float64
}

// Total returns the sum of all cost components.
func (c TradeCosts) Total() float64 {
	return c.GasUSD + c.DexFeeUSD + c.SlippageUSD + c.PriceImpactUSD
}

// PriceImpactPct models the percentage price impact of pushing sizeUSD
// through both legs' liquidity. Returns +Inf when either side has no
// liquidity.
func PriceImpactPct(sizeUSD, buyLiquidityUSD, sellLiquidityUSD float64) float64 {
	if buyLiquidityUSD <= 0 || sellLiquidityUSD <= 0 {
		return math.Inf(1)
	}
	return (sizeUSD/buyLiquidityUSD + sizeUSD/sellLiquidityUSD) * 100
}
