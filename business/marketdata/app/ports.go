// Package app defines the ports through which market data enters the scanner.
package app

import (
	"context"

	"github.com/dexpulse/arbscan/business/marketdata/domain"
)

// PairSource supplies raw trading-pair listings and reference prices.
type PairSource interface {
	// Search returns all pairs matching a token symbol across chains.
	Search(ctx context.Context, query string) ([]domain.Pair, error)

	// PairByAddress fetches one specific pool's listing.
	PairByAddress(ctx context.Context, chainName, pairAddress string) (*domain.Pair, error)

	// NativeTokenPriceUSD returns the chain's native token price from its
	// reference pool.
	NativeTokenPriceUSD(ctx context.Context, chainName string) (float64, error)
}

// GasPriceSource supplies current gas prices per chain.
type GasPriceSource interface {
	GasPriceGwei(ctx context.Context, chainName string) (float64, error)
}
