package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/dexpulse/arbscan/business/marketdata/domain"
	"github.com/dexpulse/arbscan/internal/logger"
)

type fakePairs struct {
	price float64
	err   error
	calls int
}

func (f *fakePairs) Search(context.Context, string) ([]domain.Pair, error) { return nil, nil }

func (f *fakePairs) PairByAddress(context.Context, string, string) (*domain.Pair, error) {
	return nil, nil
}

func (f *fakePairs) NativeTokenPriceUSD(context.Context, string) (float64, error) {
	f.calls++
	return f.price, f.err
}

type fakeSpot struct {
	price float64
	err   error
	calls int
}

func (f *fakeSpot) EthPriceUSD(context.Context) (float64, error) {
	f.calls++
	return f.price, f.err
}

func testLog() *logger.Logger {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func TestNativePriceFallback_PrimaryWins(t *testing.T) {
	spot := &fakeSpot{price: 2900}
	src := WithNativePriceFallback(&fakePairs{price: 3000}, spot, testLog())

	price, err := src.NativeTokenPriceUSD(context.Background(), "ethereum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 3000 {
		t.Errorf("price = %v, want 3000", price)
	}
	if spot.calls != 0 {
		t.Errorf("spot source called %d times, want 0", spot.calls)
	}
}

func TestNativePriceFallback_SpotCoversEthChains(t *testing.T) {
	primaryErr := errors.New("reference pool unavailable")
	spot := &fakeSpot{price: 2900}
	src := WithNativePriceFallback(&fakePairs{err: primaryErr}, spot, testLog())

	price, err := src.NativeTokenPriceUSD(context.Background(), "base")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 2900 {
		t.Errorf("price = %v, want 2900", price)
	}
	if spot.calls != 1 {
		t.Errorf("spot source called %d times, want 1", spot.calls)
	}
}

func TestNativePriceFallback_NonEthChainKeepsPrimaryError(t *testing.T) {
	primaryErr := errors.New("reference pool unavailable")
	spot := &fakeSpot{price: 2900}
	src := WithNativePriceFallback(&fakePairs{err: primaryErr}, spot, testLog())

	_, err := src.NativeTokenPriceUSD(context.Background(), "polygon")
	if !errors.Is(err, primaryErr) {
		t.Fatalf("err = %v, want primary error", err)
	}
	if spot.calls != 0 {
		t.Errorf("spot source called %d times, want 0", spot.calls)
	}
}

func TestNativePriceFallback_SpotFailureKeepsPrimaryError(t *testing.T) {
	primaryErr := errors.New("reference pool unavailable")
	spot := &fakeSpot{err: errors.New("spot unavailable")}
	src := WithNativePriceFallback(&fakePairs{err: primaryErr}, spot, testLog())

	_, err := src.NativeTokenPriceUSD(context.Background(), "ethereum")
	if !errors.Is(err, primaryErr) {
		t.Fatalf("err = %v, want primary error", err)
	}
}
