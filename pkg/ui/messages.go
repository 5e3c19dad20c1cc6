package ui

import "time"

// Message types for dashboard updates. All values arrive pre-computed; the
// UI never derives financial figures itself.

// OpportunityMsg is sent when a qualified two-venue opportunity is found.
type OpportunityMsg struct {
	Time         time.Time
	Pair         string
	Chain        string
	Direction    string
	SpreadPct    float64
	NetProfitUSD float64
	Score        float64
	Validated    bool
}

// MultiLegMsg is sent when a profitable trading cycle is found.
type MultiLegMsg struct {
	Time         time.Time
	Chain        string
	Path         string
	NumSwaps     int
	NetProfitUSD float64
}

// ScanStartedMsg is sent at the beginning of a scan cycle.
type ScanStartedMsg struct {
	Chains []string
	Tokens []string
}

// ScanFinishedMsg is sent at the end of a scan cycle.
type ScanFinishedMsg struct {
	Found   int
	Elapsed time.Duration
}

// LogMsg displays a log line in the activity feed.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// TickMsg is sent periodically for clock updates.
type TickMsg struct{}
