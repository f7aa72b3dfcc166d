// Package sqlite implements the run archive on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/ratinglab/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/ratinglab/internal/simulation/storage"
	"github.com/louisbranch/ratinglab/internal/simulation/storage/filter"
	"github.com/louisbranch/ratinglab/internal/simulation/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed run archival.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the archive at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRun persists one completed run with its players and optional round
// log in a single transaction.
func (s *Store) SaveRun(ctx context.Context, run storage.RunRecord, players []storage.RunPlayerRecord, rounds []storage.RunRoundRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	run.ID = strings.TrimSpace(run.ID)
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if len(players) == 0 {
		return fmt.Errorf("run players are required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (
	id,
	seed,
	num_players,
	num_matches,
	initial_rating,
	rating_range_pct,
	k_factor,
	elapsed_ms,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		run.ID,
		run.Seed,
		run.NumPlayers,
		run.NumMatches,
		run.InitialRating,
		run.RatingRangePct,
		run.KFactor,
		run.Elapsed.Milliseconds(),
		run.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	playerStmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_players (
	run_id,
	player_index,
	final_rating,
	matches_played,
	peak_rating,
	floor_rating,
	volatility
) VALUES (?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return fmt.Errorf("prepare player insert: %w", err)
	}
	defer playerStmt.Close()

	for _, player := range players {
		if _, err := playerStmt.ExecContext(ctx,
			run.ID,
			player.PlayerIndex,
			player.FinalRating,
			player.MatchesPlayed,
			player.PeakRating,
			player.FloorRating,
			player.Volatility,
		); err != nil {
			return fmt.Errorf("insert run player %d: %w", player.PlayerIndex, err)
		}
	}

	if len(rounds) > 0 {
		roundStmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_rounds (
	run_id,
	round_number,
	subject_index,
	opponent_index,
	winner
) VALUES (?, ?, ?, ?, ?)
`)
		if err != nil {
			return fmt.Errorf("prepare round insert: %w", err)
		}
		defer roundStmt.Close()

		for _, round := range rounds {
			if _, err := roundStmt.ExecContext(ctx,
				run.ID,
				round.Round,
				round.Subject,
				round.Opponent,
				round.Winner,
			); err != nil {
				return fmt.Errorf("insert run round %d: %w", round.Round, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}
	return nil
}

// GetRun fetches one archived run by id.
func (s *Store) GetRun(ctx context.Context, id string) (storage.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RunRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RunRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.RunRecord{}, fmt.Errorf("run id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT
	id,
	seed,
	num_players,
	num_matches,
	initial_rating,
	rating_range_pct,
	k_factor,
	elapsed_ms,
	created_at
FROM runs
WHERE id = ?
`, id)

	record, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.RunRecord{}, fmt.Errorf("run %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return storage.RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	return record, nil
}

// ListRuns lists newest-first archived runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	id,
	seed,
	num_players,
	num_matches,
	initial_rating,
	rating_range_pct,
	k_factor,
	elapsed_ms,
	created_at
FROM runs
ORDER BY created_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	records := make([]storage.RunRecord, 0, limit)
	for rows.Next() {
		record, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}

// ListRunPlayers lists a run's players, best rating first, optionally
// narrowed by a filter condition.
func (s *Store) ListRunPlayers(ctx context.Context, runID string, condition filter.SQLCondition, limit int) ([]storage.RunPlayerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, fmt.Errorf("run id is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	query := `
SELECT
	run_id,
	player_index,
	final_rating,
	matches_played,
	peak_rating,
	floor_rating,
	volatility
FROM run_players
WHERE run_id = ?
`
	params := []any{runID}
	if condition.Clause != "" {
		query += "AND " + condition.Clause + "\n"
		params = append(params, condition.Params...)
	}
	query += "ORDER BY final_rating DESC, player_index ASC\nLIMIT ?"
	params = append(params, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("list run players: %w", err)
	}
	defer rows.Close()

	records := make([]storage.RunPlayerRecord, 0, limit)
	for rows.Next() {
		var record storage.RunPlayerRecord
		if err := rows.Scan(
			&record.RunID,
			&record.PlayerIndex,
			&record.FinalRating,
			&record.MatchesPlayed,
			&record.PeakRating,
			&record.FloorRating,
			&record.Volatility,
		); err != nil {
			return nil, fmt.Errorf("scan run player: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run players: %w", err)
	}
	return records, nil
}

// AppendTelemetryEvent persists one operational telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, event storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	event.Severity = strings.TrimSpace(event.Severity)
	event.EventName = strings.TrimSpace(event.EventName)
	if event.Severity == "" {
		return fmt.Errorf("severity is required")
	}
	if event.EventName == "" {
		return fmt.Errorf("event name is required")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO telemetry_events (
	severity,
	event_name,
	run_id,
	message,
	created_at
) VALUES (?, ?, ?, ?, ?)
`,
		event.Severity,
		event.EventName,
		event.RunID,
		event.Message,
		event.Timestamp.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}

func scanRun(scan func(dest ...any) error) (storage.RunRecord, error) {
	var record storage.RunRecord
	var elapsedMs int64
	var createdAt int64
	if err := scan(
		&record.ID,
		&record.Seed,
		&record.NumPlayers,
		&record.NumMatches,
		&record.InitialRating,
		&record.RatingRangePct,
		&record.KFactor,
		&elapsedMs,
		&createdAt,
	); err != nil {
		return storage.RunRecord{}, err
	}
	record.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	record.CreatedAt = time.UnixMilli(createdAt).UTC()
	return record, nil
}

var (
	_ storage.RunStore       = (*Store)(nil)
	_ storage.TelemetryStore = (*Store)(nil)
)
