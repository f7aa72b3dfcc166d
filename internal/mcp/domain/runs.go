package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/ratinglab/internal/simulation/storage"
	"github.com/louisbranch/ratinglab/internal/simulation/storage/filter"
)

const (
	// DefaultListLimit bounds archive queries when the caller does not set one.
	DefaultListLimit = 20
	// MaxListLimit caps archive queries regardless of the request.
	MaxListLimit = 200
)

// RunListInput represents the MCP tool input for listing archived runs.
type RunListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return (default 20, max 200)"`
}

// RunSummary represents one archived run for MCP output.
type RunSummary struct {
	RunID          string  `json:"run_id" jsonschema:"archive id of the run"`
	Seed           int64   `json:"seed" jsonschema:"seed the run used"`
	NumPlayers     int     `json:"num_players" jsonschema:"number of players simulated"`
	NumMatches     int     `json:"num_matches" jsonschema:"number of matches simulated"`
	InitialRating  float64 `json:"initial_rating" jsonschema:"rating every player started from"`
	RatingRangePct float64 `json:"rating_range_pct" jsonschema:"matchmaking band fraction"`
	KFactor        float64 `json:"k_factor" jsonschema:"rating K-factor"`
	ElapsedMs      int64   `json:"elapsed_ms" jsonschema:"wall-clock duration of the run in milliseconds"`
	CreatedAt      string  `json:"created_at" jsonschema:"archive timestamp in RFC 3339"`
}

// RunListResult represents the MCP tool output for listing archived runs.
type RunListResult struct {
	Runs []RunSummary `json:"runs" jsonschema:"archived runs, newest first"`
}

// RunGetInput represents the MCP tool input for reading one archived run.
type RunGetInput struct {
	RunID  string `json:"run_id" jsonschema:"archive id of the run"`
	Filter string `json:"filter,omitempty" jsonschema:"AIP-160 filter over players (final_rating, matches_played, peak_rating, floor_rating, volatility, player_index)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of players to return (default 20, max 200)"`
}

// ArchivedPlayer represents one player's archived standing for MCP output.
type ArchivedPlayer struct {
	PlayerIndex   int     `json:"player_index" jsonschema:"index of the player in the population"`
	FinalRating   float64 `json:"final_rating" jsonschema:"final rating"`
	MatchesPlayed int     `json:"matches_played" jsonschema:"number of matches the player appeared in"`
	PeakRating    float64 `json:"peak_rating" jsonschema:"highest rating across the history"`
	FloorRating   float64 `json:"floor_rating" jsonschema:"lowest rating across the history"`
	Volatility    float64 `json:"volatility" jsonschema:"population standard deviation of the rating history"`
}

// RunGetResult represents the MCP tool output for reading one archived run.
type RunGetResult struct {
	Run     RunSummary       `json:"run" jsonschema:"archived run parameters"`
	Players []ArchivedPlayer `json:"players" jsonschema:"archived players, best rating first"`
}

// RunListTool defines the MCP tool schema for listing archived runs.
func RunListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "run_list",
		Description: "Lists archived simulation runs, newest first",
	}
}

// RunGetTool defines the MCP tool schema for reading one archived run.
func RunGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "run_get",
		Description: "Reads one archived run and its players, with an optional player filter",
	}
}

// RunListHandler lists archived runs.
func RunListHandler(store storage.RunStore) mcp.ToolHandlerFor[RunListInput, RunListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RunListInput) (*mcp.CallToolResult, RunListResult, error) {
		if store == nil {
			return nil, RunListResult{}, fmt.Errorf("run archive is not configured")
		}

		runs, err := store.ListRuns(ctx, clampLimit(input.Limit))
		if err != nil {
			return nil, RunListResult{}, fmt.Errorf("list runs: %w", err)
		}

		result := RunListResult{Runs: make([]RunSummary, len(runs))}
		for i, run := range runs {
			result.Runs[i] = toRunSummary(run)
		}
		return nil, result, nil
	}
}

// RunGetHandler reads one archived run and its players.
func RunGetHandler(store storage.RunStore) mcp.ToolHandlerFor[RunGetInput, RunGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RunGetInput) (*mcp.CallToolResult, RunGetResult, error) {
		if store == nil {
			return nil, RunGetResult{}, fmt.Errorf("run archive is not configured")
		}
		if strings.TrimSpace(input.RunID) == "" {
			return nil, RunGetResult{}, fmt.Errorf("run_id is required")
		}

		condition, err := filter.ParsePlayerFilter(input.Filter)
		if err != nil {
			return nil, RunGetResult{}, fmt.Errorf("parse filter: %w", err)
		}

		run, err := store.GetRun(ctx, input.RunID)
		if err != nil {
			return nil, RunGetResult{}, fmt.Errorf("get run: %w", err)
		}

		players, err := store.ListRunPlayers(ctx, input.RunID, condition, clampLimit(input.Limit))
		if err != nil {
			return nil, RunGetResult{}, fmt.Errorf("list run players: %w", err)
		}

		result := RunGetResult{Run: toRunSummary(run), Players: make([]ArchivedPlayer, len(players))}
		for i, player := range players {
			result.Players[i] = ArchivedPlayer{
				PlayerIndex:   player.PlayerIndex,
				FinalRating:   player.FinalRating,
				MatchesPlayed: player.MatchesPlayed,
				PeakRating:    player.PeakRating,
				FloorRating:   player.FloorRating,
				Volatility:    player.Volatility,
			}
		}
		return nil, result, nil
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func toRunSummary(run storage.RunRecord) RunSummary {
	return RunSummary{
		RunID:          run.ID,
		Seed:           run.Seed,
		NumPlayers:     run.NumPlayers,
		NumMatches:     run.NumMatches,
		InitialRating:  run.InitialRating,
		RatingRangePct: run.RatingRangePct,
		KFactor:        run.KFactor,
		ElapsedMs:      run.Elapsed.Milliseconds(),
		CreatedAt:      run.CreatedAt.UTC().Format(time.RFC3339),
	}
}
