package domain

import (
	"math"
	"testing"
)

func TestRSI_StrictlyIncreasingSeries(t *testing.T) {
	// 15 points, every change positive: avg loss stays zero.
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	got, ok := RSI(prices, 14)
	if !ok {
		t.Fatal("expected ok for 15-point series with period 14")
	}
	if got != 100 {
		t.Errorf("RSI = %v, want 100", got)
	}
}

func TestRSI_StrictlyDecreasingSeries(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 - float64(i)
	}

	got, ok := RSI(prices, 14)
	if !ok {
		t.Fatal("expected ok")
	}
	if got != 0 {
		t.Errorf("RSI = %v, want 0", got)
	}
}

func TestRSI_FlatSeries(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 42
	}

	got, ok := RSI(prices, 14)
	if !ok {
		t.Fatal("expected ok")
	}
	if got != 50 {
		t.Errorf("RSI = %v, want 50 for flat series", got)
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	prices := []float64{1, 2, 3}
	if _, ok := RSI(prices, 14); ok {
		t.Error("expected ok=false with fewer than period+1 prices")
	}
	// Exactly period+1 points is the minimum.
	prices = make([]float64, 15)
	if _, ok := RSI(prices, 14); !ok {
		t.Error("expected ok=true with exactly period+1 prices")
	}
}

func TestRSI_NonPositivePeriodPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for period 0")
		}
	}()
	RSI([]float64{1, 2, 3}, 0)
}

func TestRSI_WilderSmoothingIsOrderDependent(t *testing.T) {
	// A known vector: mixed gains/losses, RSI must land strictly between
	// 0 and 100 and differ when the tail order changes.
	base := []float64{44, 44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08, 45.89, 46.03, 45.61, 46.28}
	v1, ok := RSI(base, 14)
	if !ok {
		t.Fatal("expected ok")
	}
	if v1 <= 0 || v1 >= 100 {
		t.Fatalf("RSI = %v, want strictly inside (0, 100)", v1)
	}

	// Extend with a gain then a loss, and with the same two changes swapped:
	// Wilder smoothing weights recency, so the results differ.
	up := append(append([]float64{}, base...), 47.0, 46.5)
	down := append(append([]float64{}, base...), 45.78, 46.5)
	v2, _ := RSI(up, 14)
	v3, _ := RSI(down, 14)
	if math.Abs(v2-v3) < 1e-9 {
		t.Errorf("expected order-dependent results, got %v and %v", v2, v3)
	}
}
