// Package app implements the on-chain price validator.
package app

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/dexpulse/arbscan/business/validation/domain"
	"github.com/dexpulse/arbscan/internal/cache"
	"github.com/dexpulse/arbscan/internal/chain"
	"github.com/dexpulse/arbscan/internal/logger"
)

// Uniswap-V2-style pair function selectors.
const (
	selToken0      = "0x0dfe1681"
	selToken1      = "0xd21220a7"
	selGetReserves = "0x0902f1ac"
	selDecimals    = "0x313ce567"
)

// RPCClient is the JSON-RPC transport the validator calls through.
type RPCClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	EthCall(ctx context.Context, to, data, block string) (string, error)
}

// Config holds the validator's tolerance and caching policy.
type Config struct {
	MaxDiffPct    float64
	BlockCacheTTL time.Duration
}

type pairTokens struct {
	token0 string
	token1 string
}

type reserveSet struct {
	reserve0  *big.Int
	reserve1  *big.Int
	timestamp uint64
}

// Validator independently re-derives a pool's spot price from raw contract
// storage and flags divergence from the quoted price. All failure paths
// produce a Result with an error code; validation is advisory, never fatal
// to a scan. The caches are safe for concurrent validations.
type Validator struct {
	cfg Config
	rpc RPCClient
	log *logger.Logger

	blocks   *cache.Cache[string, uint64]     // "latest" with a short TTL
	tokens   *cache.Cache[string, pairTokens] // per pair address, no expiry
	reserves *cache.Cache[string, reserveSet] // per (pair, block)
	decimals *cache.Cache[string, int]        // per token address, no expiry
}

// NewValidator creates a Validator. Call Close when done to stop the cache
// janitors.
func NewValidator(cfg Config, rpc RPCClient, log *logger.Logger) *Validator {
	return &Validator{
		cfg:      cfg,
		rpc:      rpc,
		log:      log,
		blocks:   cache.New[string, uint64](time.Minute),
		tokens:   cache.New[string, pairTokens](time.Minute),
		reserves: cache.New[string, reserveSet](time.Minute),
		decimals: cache.New[string, int](time.Minute),
	}
}

// Close releases the validator's cache resources.
func (v *Validator) Close() {
	v.blocks.Close()
	v.tokens.Close()
	v.reserves.Close()
	v.decimals.Close()
}

// Request identifies one pool price to validate.
type Request struct {
	ChainName           string
	PairAddress         string
	TargetTokenAddress  string
	CounterTokenAddress string
	QuotedPriceUSD      float64
	NativePriceUSD      float64
}

// ValidatePairPrice re-derives the pool's spot price for the target token
// from on-chain reserves and compares it with the quoted USD price.
func (v *Validator) ValidatePairPrice(ctx context.Context, req Request) domain.Result {
	if req.PairAddress == "" || req.TargetTokenAddress == "" {
		return domain.Failure(domain.ErrMissingPairMetadata, 0)
	}

	pairAddr := normalizeAddress(req.PairAddress)
	targetAddr := normalizeAddress(req.TargetTokenAddress)

	blockNumber, err := v.latestBlock(ctx)
	if err != nil {
		v.log.Warn(ctx, "block number fetch failed", "err", err)
		return domain.Failure(domain.ErrBlockNumber, 0)
	}

	toks, err := v.pairTokens(ctx, pairAddr)
	if err != nil {
		return domain.Failure(domain.ErrTokenResolution, blockNumber)
	}
	if toks.token0 == "" || toks.token1 == "" {
		return domain.Failure(domain.ErrTokenResolutionEmpty, blockNumber)
	}

	var targetIsToken0 bool
	switch targetAddr {
	case toks.token0:
		targetIsToken0 = true
	case toks.token1:
		targetIsToken0 = false
	default:
		return domain.Failure(domain.ErrTargetNotInPair, blockNumber)
	}

	counterAddr := toks.token0
	if targetIsToken0 {
		counterAddr = toks.token1
	}
	if req.CounterTokenAddress != "" {
		// Trust the caller's counter address when it disagrees: pools
		// occasionally report proxy token contracts.
		if norm := normalizeAddress(req.CounterTokenAddress); norm != counterAddr {
			counterAddr = norm
		}
	}

	res, err := v.reservesAt(ctx, pairAddr, blockNumber)
	if err != nil {
		return domain.Failure(domain.ErrReserveFetch, blockNumber)
	}

	reserveTarget, reserveCounter := res.reserve0, res.reserve1
	if !targetIsToken0 {
		reserveTarget, reserveCounter = res.reserve1, res.reserve0
	}
	if reserveTarget.Sign() == 0 || reserveCounter.Sign() == 0 {
		return domain.Failure(domain.ErrEmptyReserves, blockNumber)
	}

	targetDecimals, err := v.tokenDecimals(ctx, targetAddr)
	if err != nil {
		return domain.Failure(domain.ErrDecimals, blockNumber)
	}
	counterDecimals, err := v.tokenDecimals(ctx, counterAddr)
	if err != nil {
		return domain.Failure(domain.ErrDecimals, blockNumber)
	}

	targetUnits := humanUnits(reserveTarget, targetDecimals)
	counterUnits := humanUnits(reserveCounter, counterDecimals)
	if targetUnits <= 0 {
		return domain.Failure(domain.ErrInvalidReserveRatio, blockNumber)
	}

	priceInCounter := counterUnits / targetUnits
	priceUSD, ok := v.counterToUSD(req.ChainName, counterAddr, priceInCounter, req.NativePriceUSD)
	if !ok {
		return domain.Failure(domain.ErrUnsupportedQuoteToken, blockNumber)
	}

	result := domain.Result{
		Validated:   true,
		PriceUSD:    priceUSD,
		BlockNumber: blockNumber,
	}
	if req.QuotedPriceUSD > 0 {
		result.DiffPct = math.Abs(priceUSD-req.QuotedPriceUSD) / req.QuotedPriceUSD * 100
		result.HasDiff = true
		result.Passed = result.DiffPct <= v.cfg.MaxDiffPct
		if !result.Passed {
			result.Err = domain.ErrPriceMismatch
		}
	}
	return result
}

func (v *Validator) latestBlock(ctx context.Context) (uint64, error) {
	if n, ok := v.blocks.Get(ctx, "latest"); ok {
		return n, nil
	}
	n, err := v.rpc.BlockNumber(ctx)
	if err != nil {
		return 0, err
	}
	v.blocks.Set(ctx, "latest", n, v.cfg.BlockCacheTTL)
	return n, nil
}

func (v *Validator) pairTokens(ctx context.Context, pairAddr string) (pairTokens, error) {
	if toks, ok := v.tokens.Get(ctx, pairAddr); ok {
		return toks, nil
	}

	token0Hex, err := v.rpc.EthCall(ctx, pairAddr, selToken0, "latest")
	if err != nil {
		return pairTokens{}, err
	}
	token1Hex, err := v.rpc.EthCall(ctx, pairAddr, selToken1, "latest")
	if err != nil {
		return pairTokens{}, err
	}

	toks := pairTokens{
		token0: decodeAddressWord(token0Hex),
		token1: decodeAddressWord(token1Hex),
	}
	v.tokens.Set(ctx, pairAddr, toks, 0)
	return toks, nil
}

func (v *Validator) reservesAt(ctx context.Context, pairAddr string, blockNumber uint64) (reserveSet, error) {
	key := fmt.Sprintf("%s:%d", pairAddr, blockNumber)
	if res, ok := v.reserves.Get(ctx, key); ok {
		return res, nil
	}

	raw, err := v.rpc.EthCall(ctx, pairAddr, selGetReserves, fmt.Sprintf("0x%x", blockNumber))
	if err != nil {
		return reserveSet{}, err
	}

	// getReserves packs reserve0, reserve1, and the last update timestamp
	// into three 32-byte words.
	reserve0, err := decodeWord(raw, 0)
	if err != nil {
		return reserveSet{}, err
	}
	reserve1, err := decodeWord(raw, 1)
	if err != nil {
		return reserveSet{}, err
	}
	ts, err := decodeWord(raw, 2)
	if err != nil {
		return reserveSet{}, err
	}

	res := reserveSet{reserve0: reserve0, reserve1: reserve1, timestamp: ts.Uint64()}
	v.reserves.Set(ctx, key, res, 10*time.Minute)
	return res, nil
}

func (v *Validator) tokenDecimals(ctx context.Context, tokenAddr string) (int, error) {
	tokenAddr = normalizeAddress(tokenAddr)
	if d, ok := v.decimals.Get(ctx, tokenAddr); ok {
		return d, nil
	}

	raw, err := v.rpc.EthCall(ctx, tokenAddr, selDecimals, "latest")
	if err != nil {
		return 0, err
	}
	word, err := decodeWord(raw, 0)
	if err != nil {
		return 0, err
	}

	d := int(word.Int64())
	v.decimals.Set(ctx, tokenAddr, d, 0)
	return d, nil
}

// counterToUSD converts a price denominated in the counter token into USD.
// Stablecoins pass through as-is; wrapped-native tokens scale by the native
// USD price; anything else cannot produce a USD figure.
func (v *Validator) counterToUSD(chainName, counterAddr string, priceInCounter, nativePriceUSD float64) (float64, bool) {
	if chain.IsStablecoin(chainName, counterAddr) {
		return priceInCounter, true
	}
	if nativePriceUSD > 0 && chain.IsWrappedNative(chainName, counterAddr) {
		return priceInCounter * nativePriceUSD, true
	}
	return 0, false
}

// humanUnits scales a raw reserve down by the token's decimals.
func humanUnits(reserve *big.Int, decimals int) float64 {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	out, _ := new(big.Float).Quo(
		new(big.Float).SetInt(reserve),
		new(big.Float).SetInt(scale),
	).Float64()
	return out
}

func normalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimPrefix(addr, "0x"))
	return "0x" + addr
}

// decodeAddressWord extracts an address from a 32-byte-word hex result.
// Returns "" for short or empty results.
func decodeAddressWord(raw string) string {
	if len(raw) < 66 {
		return ""
	}
	return "0x" + strings.ToLower(raw[len(raw)-40:])
}

// decodeWord parses the i-th 32-byte word of an eth_call result.
func decodeWord(raw string, i int) (*big.Int, error) {
	hex := strings.TrimPrefix(raw, "0x")
	start, end := i*64, (i+1)*64
	if len(hex) < end {
		return nil, fmt.Errorf("result too short for word %d: %d hex chars", i, len(hex))
	}
	word, ok := new(big.Int).SetString(hex[start:end], 16)
	if !ok {
		return nil, fmt.Errorf("malformed word %d", i)
	}
	return word, nil
}
