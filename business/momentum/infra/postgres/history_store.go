package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	momentumapp "github.com/dexpulse/arbscan/business/momentum/app"
	"github.com/dexpulse/arbscan/business/momentum/domain"
)

// HistoryStore implements the momentum history port on PostgreSQL.
type HistoryStore struct {
	pool *Pool
}

// NewHistoryStore creates a HistoryStore.
func NewHistoryStore(pool *Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

// Compile-time interface check.
var _ momentumapp.HistoryRepo = (*HistoryStore)(nil)

// RecordScanCycleStart inserts a scan cycle row and returns its id.
func (s *HistoryStore) RecordScanCycleStart(ctx context.Context, chains, tokens []string) (int64, error) {
	query := `
		INSERT INTO scan_cycle (started_at, chains, tokens)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	if err := s.pool.QueryRow(ctx, query, time.Now().UTC(), chains, tokens).Scan(&id); err != nil {
		return 0, fmt.Errorf("record scan cycle start: %w", err)
	}
	return id, nil
}

// RecordScanCycleFinish stamps a cycle as finished with its opportunity count.
func (s *HistoryStore) RecordScanCycleFinish(ctx context.Context, scanCycleID int64, opportunitiesFound int) error {
	query := `
		UPDATE scan_cycle
		SET finished_at = $1, opportunities_found = $2
		WHERE id = $3
	`
	if _, err := s.pool.Exec(ctx, query, time.Now().UTC(), opportunitiesFound, scanCycleID); err != nil {
		return fmt.Errorf("record scan cycle finish: %w", err)
	}
	return nil
}

// RecordAlert persists an emitted alert and its momentum snapshot in one
// transaction and returns the alert id.
func (s *HistoryStore) RecordAlert(ctx context.Context, alert domain.AlertRecord, snap domain.Snapshot) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin alert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var scanCycleID *int64
	if alert.ScanCycleID > 0 {
		scanCycleID = &alert.ScanCycleID
	}

	var alertID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO opportunity_alert (
			scan_cycle_id, chain, token, direction,
			net_profit_usd, gross_profit_usd, momentum_score,
			alert_sent_at, opportunity_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		scanCycleID,
		alert.Chain,
		strings.ToUpper(alert.Token),
		alert.Direction,
		alert.NetProfitUSD,
		alert.GrossProfitUSD,
		alert.MomentumScore,
		alert.AlertSentAt.UTC(),
		alert.OpportunityKey,
	).Scan(&alertID)
	if err != nil {
		return 0, fmt.Errorf("insert opportunity alert: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO momentum_snapshot (
			alert_id, volume_divergence, persistence_count,
			rsi_value, dominant_has_lower_price
		) VALUES ($1, $2, $3, $4, $5)
	`,
		alertID,
		snap.VolumeDivergence,
		snap.PersistenceCount,
		snap.RSIValue,
		snap.DominantHasLowerPrice,
	)
	if err != nil {
		return 0, fmt.Errorf("insert momentum snapshot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit alert tx: %w", err)
	}
	return alertID, nil
}

// RecentHistory returns up to limit alert+snapshot records for a token and
// direction, newest first. Empty token or direction matches all.
func (s *HistoryStore) RecentHistory(ctx context.Context, token, direction string, limit int) ([]domain.HistoryRecord, error) {
	query := `
		SELECT
			oa.alert_sent_at,
			oa.chain,
			oa.token,
			oa.direction,
			oa.net_profit_usd,
			oa.gross_profit_usd,
			oa.momentum_score,
			oa.opportunity_key,
			ms.volume_divergence,
			ms.persistence_count,
			ms.rsi_value
		FROM opportunity_alert oa
		LEFT JOIN momentum_snapshot ms ON ms.alert_id = oa.id
		WHERE ($1 = '' OR oa.token = $1)
		  AND ($2 = '' OR oa.direction = $2)
		ORDER BY oa.alert_sent_at DESC
		LIMIT $3
	`

	rows, err := s.pool.Query(ctx, query, strings.ToUpper(token), direction, limit)
	if err != nil {
		return nil, fmt.Errorf("query momentum history: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var r domain.HistoryRecord
		if err := rows.Scan(
			&r.AlertSentAt,
			&r.Chain,
			&r.Token,
			&r.Direction,
			&r.NetProfitUSD,
			&r.GrossProfitUSD,
			&r.MomentumScore,
			&r.OpportunityKey,
			&r.VolumeDivergence,
			&r.PersistenceCount,
			&r.RSIValue,
		); err != nil {
			return nil, fmt.Errorf("scan momentum history row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate momentum history: %w", err)
	}
	return records, nil
}
