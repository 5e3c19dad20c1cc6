// Package domain contains the raw market-data payload types consumed by the
// analysis engine. The shapes mirror the DexScreener pair schema; numeric
// price fields arrive as strings and are parsed downstream.
package domain

import (
	"github.com/shopspring/decimal"
)

// SearchResponse is the top-level payload of a DexScreener search.
type SearchResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// Pair is one raw trading-pair record.
type Pair struct {
	ChainID     string      `json:"chainId"`
	DexID       string      `json:"dexId"`
	URL         string      `json:"url"`
	PairAddress string      `json:"pairAddress"`
	BaseToken   Token       `json:"baseToken"`
	QuoteToken  Token       `json:"quoteToken"`
	PriceNative string      `json:"priceNative"`
	PriceUsd    string      `json:"priceUsd"`
	Txns        Txns        `json:"txns"`
	Volume      Volume      `json:"volume"`
	PriceChange PriceChange `json:"priceChange"`
	Liquidity   *Liquidity  `json:"liquidity"`
	FDV         float64     `json:"fdv"`
	MarketCap   float64     `json:"marketCap"`
}

// Token identifies one side of a pair.
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Liquidity holds pool liquidity figures.
type Liquidity struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// Txns holds transaction counts per window.
type Txns struct {
	M5  TxnSummary `json:"m5"`
	H1  TxnSummary `json:"h1"`
	H6  TxnSummary `json:"h6"`
	H24 TxnSummary `json:"h24"`
}

// TxnSummary contains buy and sell counts for one window.
type TxnSummary struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// Total returns buys plus sells.
func (t TxnSummary) Total() int { return t.Buys + t.Sells }

// Volume holds traded USD volume per window.
type Volume struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

// PriceChange holds price change percentages per window.
type PriceChange struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

// LiquidityUSD returns the pool's USD liquidity, tolerating a null object.
func (p *Pair) LiquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.USD
}

// PriceUsdFloat parses the priceUsd string. ok is false when the field is
// missing or not numeric.
func (p *Pair) PriceUsdFloat() (float64, bool) {
	return parsePrice(p.PriceUsd)
}

// PriceNativeFloat parses the priceNative string. ok is false when the field
// is missing or not numeric.
func (p *Pair) PriceNativeFloat() (float64, bool) {
	return parsePrice(p.PriceNative)
}

func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
