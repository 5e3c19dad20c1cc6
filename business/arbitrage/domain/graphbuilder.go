package domain

import (
	"strings"

	marketdata "github.com/dexpulse/arbscan/business/marketdata/domain"
)

// GraphData bundles an exchange graph with the token metadata collected while
// building it.
type GraphData struct {
	Graph    *ExchangeGraph
	PriceUSD map[string]float64 // token address → last observed USD price
	Symbols  map[string]string  // token address → display symbol
}

// BuildGraph constructs a token-exchange graph from raw pair listings.
// Pairs with missing token addresses or no usable exchange rate are skipped
// silently: the input is third-party data and partial coverage is expected.
// minLiquidityUSD is an optional data-quality floor for callers that want to
// keep dust pools out of the graph; 0 admits every pair.
func BuildGraph(pairs []marketdata.Pair, minLiquidityUSD float64) *GraphData {
	gd := &GraphData{
		Graph:    NewExchangeGraph(),
		PriceUSD: make(map[string]float64),
		Symbols:  make(map[string]string),
	}

	// First pass: collect per-token USD prices. The base token price comes
	// straight from the listing; the quote token price follows from the
	// native rate where one is quoted.
	for _, p := range pairs {
		base := strings.ToLower(p.BaseToken.Address)
		quote := strings.ToLower(p.QuoteToken.Address)
		if base == "" || quote == "" {
			continue
		}
		if usd, ok := p.PriceUsdFloat(); ok && usd > 0 {
			gd.PriceUSD[base] = usd
			if native, ok := p.PriceNativeFloat(); ok && native > 0 {
				gd.PriceUSD[quote] = usd / native
			}
		}
		if p.BaseToken.Symbol != "" {
			gd.Symbols[base] = p.BaseToken.Symbol
		}
		if p.QuoteToken.Symbol != "" {
			gd.Symbols[quote] = p.QuoteToken.Symbol
		}
	}

	// Second pass: add edges.
	for _, p := range pairs {
		base := strings.ToLower(p.BaseToken.Address)
		quote := strings.ToLower(p.QuoteToken.Address)
		if base == "" || quote == "" || base == quote {
			continue
		}
		if p.LiquidityUSD() < minLiquidityUSD {
			continue
		}

		rate, ok := p.PriceNativeFloat()
		if !ok || rate <= 0 {
			// Fall back to the ratio of USD prices when both sides are known.
			baseUSD, quoteUSD := gd.PriceUSD[base], gd.PriceUSD[quote]
			if baseUSD <= 0 || quoteUSD <= 0 {
				continue
			}
			rate = baseUSD / quoteUSD
		}

		gd.Graph.AddPair(base, quote, rate, p)
	}

	return gd
}

// SymbolFor returns the display symbol for a token address, falling back to a
// truncated address when the symbol is unknown.
func (gd *GraphData) SymbolFor(addr string) string {
	if sym, ok := gd.Symbols[strings.ToLower(addr)]; ok && sym != "" {
		return sym
	}
	if len(addr) > 10 {
		return addr[:6] + "…" + addr[len(addr)-4:]
	}
	return addr
}
