// Package app contains the momentum application service and its ports.
package app

import (
	"context"

	"github.com/dexpulse/arbscan/business/momentum/domain"
)

// HistoryRepo reads and writes persisted momentum history.
type HistoryRepo interface {
	// RecentHistory returns up to limit records for a token and direction,
	// newest first.
	RecentHistory(ctx context.Context, token, direction string, limit int) ([]domain.HistoryRecord, error)

	// RecordAlert persists an emitted alert with its momentum snapshot and
	// returns the alert id.
	RecordAlert(ctx context.Context, alert domain.AlertRecord, snap domain.Snapshot) (int64, error)
}

// RSIProvider supplies an RSI reading for a token symbol from an external
// price series. ok is false when the provider has no series for the token.
type RSIProvider interface {
	TokenRSI(ctx context.Context, symbol string, period int) (value float64, ok bool, err error)
}
