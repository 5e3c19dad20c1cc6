package domain

import "time"

// HistoryRecord is one persisted alert joined with its momentum snapshot,
// newest first when returned in a series. Snapshot fields are pointers since
// early alerts may predate snapshot capture.
type HistoryRecord struct {
	AlertSentAt      time.Time
	Chain            string
	Token            string
	Direction        string
	NetProfitUSD     float64
	GrossProfitUSD   float64
	MomentumScore    float64
	OpportunityKey   string
	VolumeDivergence *float64
	PersistenceCount *int
	RSIValue         *float64
}

// AlertRecord captures an alert that was actually emitted.
type AlertRecord struct {
	ScanCycleID    int64
	Chain          string
	Token          string
	Direction      string
	NetProfitUSD   float64
	GrossProfitUSD float64
	MomentumScore  float64
	AlertSentAt    time.Time
	OpportunityKey string
}

// Snapshot is the momentum input state recorded alongside an alert, used to
// seed RSI smoothing on later scans.
type Snapshot struct {
	VolumeDivergence      float64
	PersistenceCount      int
	RSIValue              float64
	DominantHasLowerPrice bool
}
