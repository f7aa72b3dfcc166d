// Package storage defines persistence for completed simulation runs.
//
// Archived runs are immutable outputs: nothing reads them back into a live
// simulation. The archive exists for reporting and comparison across runs.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/ratinglab/internal/simulation/storage/filter"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// RunRecord is the durable description of one completed run.
type RunRecord struct {
	ID             string
	Seed           int64
	NumPlayers     int
	NumMatches     int
	InitialRating  float64
	RatingRangePct float64
	KFactor        float64
	Elapsed        time.Duration
	CreatedAt      time.Time
}

// RunPlayerRecord is one player's final standing within a run, with the
// aggregates derived from its rating history.
type RunPlayerRecord struct {
	RunID         string
	PlayerIndex   int
	FinalRating   float64
	MatchesPlayed int
	PeakRating    float64
	FloorRating   float64
	Volatility    float64
}

// RunRoundRecord is one match of a run's round log.
type RunRoundRecord struct {
	RunID    string
	Round    int
	Subject  int
	Opponent int
	Winner   string
}

// TelemetryEvent is one operational telemetry record.
type TelemetryEvent struct {
	ID        int64
	Severity  string
	EventName string
	RunID     string
	Message   string
	Timestamp time.Time
}

// RunStore persists completed runs and their per-player aggregates.
type RunStore interface {
	SaveRun(ctx context.Context, run RunRecord, players []RunPlayerRecord, rounds []RunRoundRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	ListRunPlayers(ctx context.Context, runID string, condition filter.SQLCondition, limit int) ([]RunPlayerRecord, error)
}

// TelemetryStore persists operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, event TelemetryEvent) error
}
