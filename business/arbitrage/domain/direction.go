// Package domain contains the core domain types for the arbitrage context.
package domain

// Direction classifies what a cross-venue price discrepancy implies.
type Direction string

const (
	// DirectionBullish means the dominant-volume venue is the cheaper one:
	// volume concentrating below the market reads as accumulation.
	DirectionBullish Direction = "BULLISH"

	// DirectionBearish means the dominant-volume venue is the pricier one:
	// volume concentrating above the market reads as distribution.
	DirectionBearish Direction = "BEARISH"
)

// String returns a human-readable description of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionBullish:
		return "BULLISH (volume concentrated on the cheaper venue)"
	case DirectionBearish:
		return "BEARISH (volume concentrated on the pricier venue)"
	default:
		return "Unknown"
	}
}
