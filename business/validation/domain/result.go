// Package domain defines the on-chain validation result and its error codes.
package domain

// Validation error codes. A validation never fails its caller: every failure
// path produces a Result carrying one of these codes instead.
const (
	ErrMissingPairMetadata   = "missing_pair_metadata"
	ErrBlockNumber           = "block_number_error"
	ErrTokenResolution       = "token_resolution_error"
	ErrTokenResolutionEmpty  = "token_resolution_missing"
	ErrTargetNotInPair       = "target_not_in_pair"
	ErrReserveFetch          = "reserve_fetch_error"
	ErrEmptyReserves         = "empty_reserves"
	ErrDecimals              = "decimals_error"
	ErrInvalidReserveRatio   = "invalid_reserve_ratio"
	ErrUnsupportedQuoteToken = "unsupported_quote_token"
	ErrPriceMismatch         = "price_mismatch"
)

// Result is the outcome of one pool-price validation. Validated reports
// whether on-chain data was successfully retrieved; Passed whether the quoted
// and on-chain prices agree within tolerance.
type Result struct {
	Validated   bool
	Passed      bool
	PriceUSD    float64 // on-chain implied price; zero when not derivable
	DiffPct     float64
	HasDiff     bool // DiffPct is meaningful only when a quoted price was supplied
	BlockNumber uint64
	Err         string // one of the Err* codes, empty on success
}

// Failure builds a failed Result with the given error code.
func Failure(code string, blockNumber uint64) Result {
	return Result{BlockNumber: blockNumber, Err: code}
}
