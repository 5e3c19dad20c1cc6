// Package domain contains the core domain types for the arbitrage context.
package domain

import "time"

// Opportunity is a detected two-venue arbitrage opportunity. Instances are
// immutable after creation: scoring and notification read them, nothing
// mutates them.
type Opportunity struct {
	PairName    string
	TargetToken string // symbol of the scanned token, which may be either side of the pair
	ChainName   string
	Direction   Direction
	Timestamp   time.Time

	BuyVenue  string
	BuyPrice  float64
	SellVenue string
	SellPrice float64

	GrossSpreadPct     float64 // (sell - buy) / buy * 100
	EffectiveVolumeUSD float64 // cost-model trade size

	GrossProfitUSD    float64
	NetProfitUSD      float64
	GasCostUSD        float64
	DexFeeCostUSD     float64
	SlippageCostUSD   float64
	PriceImpactCost   float64
	PriceImpactPct    float64
	GasPriceGwei      float64

	BuyVolume24hUSD     float64
	SellVolume24hUSD    float64
	DominantIsBuySide   bool
	DominantVolumeRatio float64 // dominant venue volume / other venue volume

	ShortTermVolumeRatio float64
	ShortTermTxnsTotal   int
	EarlyMomentum        bool

	BuyPriceChangeH1  float64
	SellPriceChangeH1 float64

	BaseTokenAddress string
	BuyPairAddress   string
	SellPairAddress  string
	QuoteTokenAddr   string
}

// Key identifies the opportunity for cooldown and persistence tracking.
func (o *Opportunity) Key() string {
	return o.ChainName + "-" + o.PairName + "-" + o.BuyVenue + "-" + o.SellVenue
}

// TargetSymbol returns the symbol of the scanned token. The pair name alone
// cannot answer this: the token may sit on the quote side of every pool it
// trades in.
func (o *Opportunity) TargetSymbol() string {
	return o.TargetToken
}

// MultiLegOpportunity is a profitable closed trading loop of three or more
// swaps found in the exchange graph.
type MultiLegOpportunity struct {
	ChainName      string
	CyclePath      []string // token symbols, first symbol repeated at the end
	TradeVolumeUSD float64
	GrossProfitUSD float64
	NetProfitUSD   float64
	GasCostUSD     float64
	NumSwaps       int
}
