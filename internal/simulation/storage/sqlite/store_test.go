package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/ratinglab/internal/simulation/storage"
	"github.com/louisbranch/ratinglab/internal/simulation/storage/filter"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ratinglab.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func sampleRun(id string, createdAt time.Time) (storage.RunRecord, []storage.RunPlayerRecord, []storage.RunRoundRecord) {
	run := storage.RunRecord{
		ID:             id,
		Seed:           42,
		NumPlayers:     3,
		NumMatches:     2,
		InitialRating:  1500,
		RatingRangePct: 0.2,
		KFactor:        32,
		Elapsed:        1200 * time.Millisecond,
		CreatedAt:      createdAt,
	}
	players := []storage.RunPlayerRecord{
		{RunID: id, PlayerIndex: 0, FinalRating: 1516, MatchesPlayed: 2, PeakRating: 1516, FloorRating: 1500, Volatility: 7.5},
		{RunID: id, PlayerIndex: 1, FinalRating: 1484, MatchesPlayed: 1, PeakRating: 1500, FloorRating: 1484, Volatility: 8.0},
		{RunID: id, PlayerIndex: 2, FinalRating: 1500, MatchesPlayed: 1, PeakRating: 1500, FloorRating: 1500, Volatility: 0},
	}
	rounds := []storage.RunRoundRecord{
		{RunID: id, Round: 0, Subject: 0, Opponent: 1, Winner: "player_one"},
		{RunID: id, Round: 1, Subject: 2, Opponent: 0, Winner: "player_two"},
	}
	return run, players, rounds
}

func TestSaveAndGetRun(t *testing.T) {
	store := openTempStore(t)
	createdAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	run, players, rounds := sampleRun("run-1", createdAt)

	if err := store.SaveRun(context.Background(), run, players, rounds); err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, err := store.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Seed != 42 || got.NumPlayers != 3 || got.NumMatches != 2 {
		t.Fatalf("unexpected run record: %+v", got)
	}
	if got.Elapsed != 1200*time.Millisecond {
		t.Fatalf("expected elapsed 1.2s, got %v", got.Elapsed)
	}
	if !got.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created at %v, got %v", createdAt, got.CreatedAt)
	}
}

func TestGetRunNotFound(t *testing.T) {
	store := openTempStore(t)

	if _, err := store.GetRun(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTempStore(t)
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-old", "run-new"} {
		run, players, _ := sampleRun(id, base.Add(time.Duration(i)*time.Hour))
		if err := store.SaveRun(context.Background(), run, players, nil); err != nil {
			t.Fatalf("save run %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs len = %d, want 2", len(runs))
	}
	if runs[0].ID != "run-new" || runs[1].ID != "run-old" {
		t.Fatalf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestListRunPlayersOrdersByRating(t *testing.T) {
	store := openTempStore(t)
	run, players, _ := sampleRun("run-1", time.Now().UTC())

	if err := store.SaveRun(context.Background(), run, players, nil); err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, err := store.ListRunPlayers(context.Background(), "run-1", filter.SQLCondition{}, 10)
	if err != nil {
		t.Fatalf("list run players: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("players len = %d, want 3", len(got))
	}
	if got[0].PlayerIndex != 0 || got[1].PlayerIndex != 2 || got[2].PlayerIndex != 1 {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestListRunPlayersWithFilter(t *testing.T) {
	store := openTempStore(t)
	run, players, _ := sampleRun("run-1", time.Now().UTC())

	if err := store.SaveRun(context.Background(), run, players, nil); err != nil {
		t.Fatalf("save run: %v", err)
	}

	condition, err := filter.ParsePlayerFilter("final_rating >= 1500.0 AND matches_played >= 2")
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}

	got, err := store.ListRunPlayers(context.Background(), "run-1", condition, 10)
	if err != nil {
		t.Fatalf("list run players: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("players len = %d, want 1", len(got))
	}
	if got[0].PlayerIndex != 0 {
		t.Fatalf("expected player 0, got %+v", got[0])
	}
}

func TestSaveRunPersistsRounds(t *testing.T) {
	store := openTempStore(t)
	run, players, rounds := sampleRun("run-1", time.Now().UTC())

	if err := store.SaveRun(context.Background(), run, players, rounds); err != nil {
		t.Fatalf("save run: %v", err)
	}

	var count int
	if err := store.sqlDB.QueryRow("SELECT COUNT(*) FROM run_rounds WHERE run_id = ?", "run-1").Scan(&count); err != nil {
		t.Fatalf("count rounds: %v", err)
	}
	if count != len(rounds) {
		t.Fatalf("expected %d rounds, got %d", len(rounds), count)
	}
}

func TestSaveRunValidation(t *testing.T) {
	store := openTempStore(t)

	if err := store.SaveRun(context.Background(), storage.RunRecord{}, nil, nil); err == nil {
		t.Fatal("expected validation error for empty run")
	}

	run, _, _ := sampleRun("run-1", time.Now().UTC())
	if err := store.SaveRun(context.Background(), run, nil, nil); err == nil {
		t.Fatal("expected validation error for missing players")
	}
}

func TestSaveRunDuplicateIDFails(t *testing.T) {
	store := openTempStore(t)
	run, players, _ := sampleRun("run-1", time.Now().UTC())

	if err := store.SaveRun(context.Background(), run, players, nil); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.SaveRun(context.Background(), run, players, nil); err == nil {
		t.Fatal("expected duplicate run id to fail")
	}
}

func TestAppendTelemetryEvent(t *testing.T) {
	store := openTempStore(t)

	err := store.AppendTelemetryEvent(context.Background(), storage.TelemetryEvent{
		Severity:  "INFO",
		EventName: "run_completed",
		RunID:     "run-1",
		Message:   "ok",
	})
	if err != nil {
		t.Fatalf("append telemetry event: %v", err)
	}

	var count int
	if err := store.sqlDB.QueryRow("SELECT COUNT(*) FROM telemetry_events").Scan(&count); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 event, got %d", count)
	}
}

func TestAppendTelemetryEventValidation(t *testing.T) {
	store := openTempStore(t)

	if err := store.AppendTelemetryEvent(context.Background(), storage.TelemetryEvent{}); err == nil {
		t.Fatal("expected validation error for empty event")
	}
}
