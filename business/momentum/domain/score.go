package domain

import (
	"fmt"
	"math"
)

// Score components and bounds. The floor keeps any emitted signal visibly
// non-zero; the per-component ceilings keep one hot axis from saturating the
// scale on its own.
const (
	scoreFloor = 1.3

	volumeComponentMax      = 4.0
	volumeDivergenceCeiling = 50.0

	persistenceComponentMax = 3.0
	persistenceCountCeiling = 12

	consistencyBonusMax = 2.0

	rsiDeadBand = 0.15
	rsiScale    = 2.0
)

// MomentumScore is the bounded score plus its one-line interpretation.
type MomentumScore struct {
	Value          float64 // in [0, 10]
	Interpretation string
}

// ComputeScore converts arbitrage-derived signals into a continuous momentum
// score in [0,10].
//
// volumeDivergence is the dominant/other venue volume ratio; a non-finite or
// non-positive ratio reads as maximal divergence. persistenceCount is how many
// recent scans re-detected the opportunity. rsiValue is the asset's RSI, and
// dominantHasLowerPrice carries the direction read from the venue comparison.
func ComputeScore(volumeDivergence float64, persistenceCount int, rsiValue float64, dominantHasLowerPrice bool) MomentumScore {
	direction := "Upward"
	if !dominantHasLowerPrice {
		direction = "Downward"
	}

	// Volume component, 0–4, log-shaped so early divergence counts most.
	var volumeComponent float64
	if math.IsInf(volumeDivergence, 0) || math.IsNaN(volumeDivergence) || volumeDivergence <= 0 {
		volumeComponent = volumeComponentMax
	} else {
		capped := math.Min(volumeDivergence, volumeDivergenceCeiling)
		volumeComponent = math.Log1p(capped) / math.Log1p(volumeDivergenceCeiling) * volumeComponentMax
	}

	// Persistence component, 0–3, saturating exponential.
	count := persistenceCount
	if count < 0 {
		count = 0
	} else if count > persistenceCountCeiling {
		count = persistenceCountCeiling
	}
	persistenceComponent := (1 - math.Exp(-float64(count)/2)) * persistenceComponentMax

	// Consistency bonus, 0–2: rewards being strong on both axes, not one.
	consistency := math.Min(
		volumeComponent/volumeComponentMax,
		persistenceComponent/persistenceComponentMax,
	) * consistencyBonusMax

	// RSI alignment: an oversold reading supports upward momentum, an
	// overbought one supports downward. Small readings near 50 are noise
	// and contribute nothing.
	rsi := math.Max(0, math.Min(100, rsiValue))
	alignment := (50 - rsi) / 50
	if direction == "Downward" {
		alignment = -alignment
	}
	var rsiComponent float64
	if math.Abs(alignment) > rsiDeadBand {
		magnitude := math.Abs(alignment) - rsiDeadBand
		rsiComponent = math.Copysign(magnitude, alignment) * rsiScale
	}

	score := scoreFloor + volumeComponent + persistenceComponent + consistency + rsiComponent
	score = math.Max(0, math.Min(10, score))

	return MomentumScore{
		Value:          score,
		Interpretation: interpret(score, direction),
	}
}

func interpret(score float64, direction string) string {
	s := fmt.Sprintf("Score: %.1f/10 - ", score)
	switch {
	case score >= 8:
		return s + fmt.Sprintf("Very High %s Momentum. Potential strong signal.", direction)
	case score >= 6:
		return s + fmt.Sprintf("High %s Momentum. Worth monitoring.", direction)
	case score >= 4:
		return s + fmt.Sprintf("Moderate %s Momentum.", direction)
	case score >= 2:
		return s + fmt.Sprintf("Low %s Momentum.", direction)
	default:
		return s + fmt.Sprintf("Negligible %s Momentum.", direction)
	}
}
