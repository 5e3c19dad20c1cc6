package app

import (
	"context"

	"github.com/dexpulse/arbscan/internal/chain"
	"github.com/dexpulse/arbscan/internal/logger"
)

// EthSpotSource supplies an exchange-wide ETH reference price.
type EthSpotSource interface {
	EthPriceUSD(ctx context.Context) (float64, error)
}

// NativePriceFallback decorates a PairSource so that chains whose native token
// is ETH can fall back to a spot source when the reference-pool lookup fails.
// Other chains see the primary source's error unchanged.
type NativePriceFallback struct {
	PairSource
	spot EthSpotSource
	log  *logger.Logger
}

// WithNativePriceFallback wraps primary with an ETH spot-price fallback.
func WithNativePriceFallback(primary PairSource, spot EthSpotSource, log *logger.Logger) *NativePriceFallback {
	return &NativePriceFallback{PairSource: primary, spot: spot, log: log}
}

// NativeTokenPriceUSD tries the primary source first and falls back to the
// spot source for ETH-native chains.
func (f *NativePriceFallback) NativeTokenPriceUSD(ctx context.Context, chainName string) (float64, error) {
	price, err := f.PairSource.NativeTokenPriceUSD(ctx, chainName)
	if err == nil {
		return price, nil
	}

	info, ok := chain.Lookup(chainName)
	if !ok || info.NativeSymbol != "ETH" || f.spot == nil {
		return 0, err
	}

	spot, spotErr := f.spot.EthPriceUSD(ctx)
	if spotErr != nil {
		// Surface the primary failure; the fallback miss is secondary.
		f.log.Warn(ctx, "eth spot fallback failed", "chain", chainName, "error", spotErr)
		return 0, err
	}

	f.log.Warn(ctx, "native price from spot fallback", "chain", chainName, "price_usd", spot)
	return spot, nil
}
