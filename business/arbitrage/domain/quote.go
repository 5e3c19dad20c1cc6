// Package domain contains the core domain types for the arbitrage context.
package domain

// PairQuote is one venue's quote for the target token, produced by the
// analyzer's parsing step from a raw pair record and consumed within the same
// scan. It is never persisted.
type PairQuote struct {
	Venue            string  // dexId of the quoting pool
	PairName         string  // "BASE/QUOTE" grouping key
	PriceUSD         float64 // target token price in USD
	LiquidityUSD     float64
	Volume24hUSD     float64
	Volume5mUSD      float64
	TxnsH1           int
	Txns5m           int
	PriceChangeH1    float64
	PairAddress      string
	BaseTokenAddress string // address of the target token in this pool
	QuoteTokenAddr   string // address of the counter token in this pool
	EarlyMomentum    bool   // qualified via the relaxed early-momentum floors
}

// ShortTermVolumeRatio returns the combined 5-minute/24-hour volume ratio for
// two legs, capped at 1. Returns 0 when there is no 24h volume.
func ShortTermVolumeRatio(buy, sell PairQuote) float64 {
	denom := buy.Volume24hUSD + sell.Volume24hUSD
	if denom <= 0 {
		return 0
	}
	ratio := (buy.Volume5mUSD + sell.Volume5mUSD) / denom
	if ratio > 1 {
		return 1
	}
	return ratio
}
