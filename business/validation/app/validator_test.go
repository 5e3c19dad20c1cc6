package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dexpulse/arbscan/business/validation/domain"
	"github.com/dexpulse/arbscan/internal/logger"
)

const (
	pairAddr   = "0x1111111111111111111111111111111111111111"
	targetAddr = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	// Mainnet USDC and WETH, which the per-chain tables know.
	usdcAddr = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	wethAddr = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	// A counter token no table knows.
	unknownAddr = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

type fakeRPC struct {
	block    uint64
	blockErr error
	results  map[string]string
	errs     map[string]error
	calls    map[string]int
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		block:   123456,
		results: make(map[string]string),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (f *fakeRPC) BlockNumber(ctx context.Context) (uint64, error) {
	if f.blockErr != nil {
		return 0, f.blockErr
	}
	return f.block, nil
}

func (f *fakeRPC) EthCall(ctx context.Context, to, data, block string) (string, error) {
	key := to + ":" + data
	f.calls[key]++
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	res, ok := f.results[key]
	if !ok {
		return "", errors.New("unexpected call " + key)
	}
	return res, nil
}

func addrWord(addr string) string {
	return "0x" + strings.Repeat("0", 24) + strings.TrimPrefix(addr, "0x")
}

func uintWord(n uint64) string {
	return fmt.Sprintf("%064x", n)
}

func reservesResult(r0, r1, ts uint64) string {
	return "0x" + uintWord(r0) + uintWord(r1) + uintWord(ts)
}

// wirePair scripts a pool whose token0 is the target and token1 the counter.
func wirePair(f *fakeRPC, counter string, reserveTarget, reserveCounter uint64, targetDec, counterDec uint64) {
	f.results[pairAddr+":"+selToken0] = addrWord(targetAddr)
	f.results[pairAddr+":"+selToken1] = addrWord(counter)
	f.results[pairAddr+":"+selGetReserves] = reservesResult(reserveTarget, reserveCounter, 1_700_000_000)
	f.results[targetAddr+":"+selDecimals] = "0x" + uintWord(targetDec)
	f.results[counter+":"+selDecimals] = "0x" + uintWord(counterDec)
}

func testValidator(rpc RPCClient) *Validator {
	return NewValidator(Config{
		MaxDiffPct:    5,
		BlockCacheTTL: time.Second,
	}, rpc, logger.New(io.Discard, logger.LevelError, "test", nil))
}

func baseRequest(quoted float64) Request {
	return Request{
		ChainName:          "ethereum",
		PairAddress:        pairAddr,
		TargetTokenAddress: targetAddr,
		QuotedPriceUSD:     quoted,
		NativePriceUSD:     3000,
	}
}

func TestValidator_PassWithinTolerance(t *testing.T) {
	rpc := newFakeRPC()
	// 1000 target tokens (6 decimals) against 100_000 USDC: $100 each.
	wirePair(rpc, usdcAddr, 1_000_000_000, 100_000_000_000, 6, 6)

	v := testValidator(rpc)
	defer v.Close()

	got := v.ValidatePairPrice(context.Background(), baseRequest(100))

	if !got.Validated {
		t.Fatalf("Validated = false, err=%s", got.Err)
	}
	if !got.Passed {
		t.Errorf("Passed = false, diff=%v", got.DiffPct)
	}
	if got.DiffPct > 1e-9 {
		t.Errorf("DiffPct = %v, want ≈0", got.DiffPct)
	}
	if got.PriceUSD != 100 {
		t.Errorf("PriceUSD = %v, want 100", got.PriceUSD)
	}
	if got.BlockNumber != 123456 {
		t.Errorf("BlockNumber = %d, want 123456", got.BlockNumber)
	}
	if got.Err != "" {
		t.Errorf("Err = %q, want empty", got.Err)
	}
}

func TestValidator_WrappedNativeConversion(t *testing.T) {
	rpc := newFakeRPC()
	// 1000 target tokens against 10 WETH: 0.01 WETH each, $30 at ETH=$3000.
	wirePair(rpc, wethAddr, 1_000_000_000, 10_000_000_000_000_000_000, 6, 18)

	v := testValidator(rpc)
	defer v.Close()

	got := v.ValidatePairPrice(context.Background(), baseRequest(30))

	if !got.Validated || !got.Passed {
		t.Fatalf("validated=%v passed=%v err=%s", got.Validated, got.Passed, got.Err)
	}
	if diff := got.PriceUSD - 30; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("PriceUSD = %v, want 30", got.PriceUSD)
	}
}

func TestValidator_PriceMismatch(t *testing.T) {
	rpc := newFakeRPC()
	wirePair(rpc, usdcAddr, 1_000_000_000, 100_000_000_000, 6, 6) // on-chain $100

	v := testValidator(rpc)
	defer v.Close()

	got := v.ValidatePairPrice(context.Background(), baseRequest(120))

	if !got.Validated {
		t.Fatal("Validated = false, want true: data was retrievable")
	}
	if got.Passed {
		t.Error("Passed = true, want false")
	}
	if got.Err != domain.ErrPriceMismatch {
		t.Errorf("Err = %q, want %q", got.Err, domain.ErrPriceMismatch)
	}
}

func TestValidator_UnsupportedQuoteToken(t *testing.T) {
	rpc := newFakeRPC()
	wirePair(rpc, unknownAddr, 1_000_000_000, 100_000_000_000, 6, 6)

	v := testValidator(rpc)
	defer v.Close()

	got := v.ValidatePairPrice(context.Background(), baseRequest(100))

	if got.Validated {
		t.Error("Validated = true, want false")
	}
	if got.Err != domain.ErrUnsupportedQuoteToken {
		t.Errorf("Err = %q, want %q", got.Err, domain.ErrUnsupportedQuoteToken)
	}
}

func TestValidator_TargetNotInPair(t *testing.T) {
	rpc := newFakeRPC()
	rpc.results[pairAddr+":"+selToken0] = addrWord(usdcAddr)
	rpc.results[pairAddr+":"+selToken1] = addrWord(wethAddr)

	v := testValidator(rpc)
	defer v.Close()

	got := v.ValidatePairPrice(context.Background(), baseRequest(100))

	if got.Validated {
		t.Error("Validated = true, want false")
	}
	if got.Err != domain.ErrTargetNotInPair {
		t.Errorf("Err = %q, want %q", got.Err, domain.ErrTargetNotInPair)
	}
}

func TestValidator_EmptyReserves(t *testing.T) {
	rpc := newFakeRPC()
	wirePair(rpc, usdcAddr, 0, 100_000_000_000, 6, 6)

	v := testValidator(rpc)
	defer v.Close()

	got := v.ValidatePairPrice(context.Background(), baseRequest(100))

	if got.Err != domain.ErrEmptyReserves {
		t.Errorf("Err = %q, want %q", got.Err, domain.ErrEmptyReserves)
	}
}

func TestValidator_BlockNumberError(t *testing.T) {
	rpc := newFakeRPC()
	rpc.blockErr = errors.New("endpoint down")

	v := testValidator(rpc)
	defer v.Close()

	got := v.ValidatePairPrice(context.Background(), baseRequest(100))

	if got.Validated || got.Passed {
		t.Error("failure must not validate or pass")
	}
	if got.Err != domain.ErrBlockNumber {
		t.Errorf("Err = %q, want %q", got.Err, domain.ErrBlockNumber)
	}
}

func TestValidator_MissingMetadata(t *testing.T) {
	v := testValidator(newFakeRPC())
	defer v.Close()

	got := v.ValidatePairPrice(context.Background(), Request{ChainName: "ethereum"})

	if got.Err != domain.ErrMissingPairMetadata {
		t.Errorf("Err = %q, want %q", got.Err, domain.ErrMissingPairMetadata)
	}
}

func TestValidator_ReserveFetchError(t *testing.T) {
	rpc := newFakeRPC()
	wirePair(rpc, usdcAddr, 1_000_000_000, 100_000_000_000, 6, 6)
	rpc.errs[pairAddr+":"+selGetReserves] = errors.New("execution reverted")

	v := testValidator(rpc)
	defer v.Close()

	got := v.ValidatePairPrice(context.Background(), baseRequest(100))

	if got.Err != domain.ErrReserveFetch {
		t.Errorf("Err = %q, want %q", got.Err, domain.ErrReserveFetch)
	}
}

func TestValidator_CachesAcrossCalls(t *testing.T) {
	rpc := newFakeRPC()
	wirePair(rpc, usdcAddr, 1_000_000_000, 100_000_000_000, 6, 6)

	v := testValidator(rpc)
	defer v.Close()

	ctx := context.Background()
	req := baseRequest(100)
	v.ValidatePairPrice(ctx, req)
	v.ValidatePairPrice(ctx, req)

	// token0/token1, reserves at the same block, and both decimals resolve
	// from cache on the second call.
	for _, key := range []string{
		pairAddr + ":" + selToken0,
		pairAddr + ":" + selToken1,
		pairAddr + ":" + selGetReserves,
		targetAddr + ":" + selDecimals,
		usdcAddr + ":" + selDecimals,
	} {
		if got := rpc.calls[key]; got != 1 {
			t.Errorf("calls[%s] = %d, want 1", key, got)
		}
	}
}
