// Package domain implements the momentum scoring primitives: Wilder's RSI
// and the bounded momentum score.
package domain

// RSI computes Wilder's smoothed Relative Strength Index over a chronological
// price series. The seed averages are simple means of the first `period`
// changes; subsequent changes fold in with Wilder smoothing, so the result is
// order-dependent and reproducible for a fixed input vector.
//
// ok is false when fewer than period+1 prices are supplied. Panics on a
// non-positive period: that is a programming error, not a data condition.
func RSI(prices []float64, period int) (value float64, ok bool) {
	if period <= 0 {
		panic("momentum: rsi period must be positive")
	}
	if len(prices) < period+1 {
		return 0, false
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	switch {
	case avgGain == 0 && avgLoss == 0:
		return 50, true // flat series carries no directional information
	case avgLoss == 0:
		return 100, true
	case avgGain == 0:
		return 0, true
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}
