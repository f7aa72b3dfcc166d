package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/ratinglab/internal/observability"
	"github.com/louisbranch/ratinglab/internal/platform/id"
	"github.com/louisbranch/ratinglab/internal/rating"
	"github.com/louisbranch/ratinglab/internal/report"
	"github.com/louisbranch/ratinglab/internal/simulation"
	"github.com/louisbranch/ratinglab/internal/simulation/storage"
)

// Caps on in-process runs so a single tool call cannot exhaust the host.
const (
	MaxRunPlayers = 10000
	MaxRunMatches = 1000000
)

// SimulationRunInput represents the MCP tool input for running a simulation.
type SimulationRunInput struct {
	NumPlayers     int     `json:"num_players,omitempty" jsonschema:"number of players in the population (default 1000)"`
	NumMatches     int     `json:"num_matches,omitempty" jsonschema:"number of matches to simulate (default 100000)"`
	InitialRating  float64 `json:"initial_rating,omitempty" jsonschema:"rating every player starts from (default 1500)"`
	RatingRangePct float64 `json:"rating_range_pct,omitempty" jsonschema:"matchmaking band as a fraction of the subject rating (default 0.2)"`
	KFactor        float64 `json:"k_factor,omitempty" jsonschema:"rating K-factor (default 32)"`
	Seed           int64   `json:"seed,omitempty" jsonschema:"rng seed; 0 generates one"`
	TopN           int     `json:"top_n,omitempty" jsonschema:"ranking depth for the result (default 5)"`
}

// RatingSummary represents aggregate final-rating statistics for MCP output.
type RatingSummary struct {
	Count  int     `json:"count" jsonschema:"number of players"`
	Mean   float64 `json:"mean" jsonschema:"mean final rating"`
	Median float64 `json:"median" jsonschema:"median final rating"`
	StdDev float64 `json:"std_dev" jsonschema:"population standard deviation of final ratings"`
	Min    float64 `json:"min" jsonschema:"lowest final rating"`
	Max    float64 `json:"max" jsonschema:"highest final rating"`
}

// PlayerRanking represents one ranked player for MCP output.
type PlayerRanking struct {
	PlayerIndex   int     `json:"player_index" jsonschema:"index of the player in the population"`
	Rating        float64 `json:"rating" jsonschema:"final rating"`
	MatchesPlayed int     `json:"matches_played" jsonschema:"number of matches the player appeared in"`
}

// SimulationRunResult represents the MCP tool output for a simulation run.
type SimulationRunResult struct {
	RunID         string          `json:"run_id,omitempty" jsonschema:"archive id when the run was persisted"`
	Seed          int64           `json:"seed" jsonschema:"seed the run used"`
	NumPlayers    int             `json:"num_players" jsonschema:"number of players simulated"`
	NumMatches    int             `json:"num_matches" jsonschema:"number of matches simulated"`
	ElapsedMs     int64           `json:"elapsed_ms" jsonschema:"wall-clock duration of the run in milliseconds"`
	Summary       RatingSummary   `json:"summary" jsonschema:"aggregate final-rating statistics"`
	TopPlayers    []PlayerRanking `json:"top_players" jsonschema:"highest rated players"`
	BottomPlayers []PlayerRanking `json:"bottom_players" jsonschema:"lowest rated players"`
}

// ExpectedScoreInput represents the MCP tool input for win probabilities.
type ExpectedScoreInput struct {
	RatingA float64 `json:"rating_a" jsonschema:"rating of the first player"`
	RatingB float64 `json:"rating_b" jsonschema:"rating of the second player"`
	KFactor float64 `json:"k_factor,omitempty" jsonschema:"rating K-factor for the deltas (default 32)"`
}

// ExpectedScoreResult represents the MCP tool output for win probabilities.
type ExpectedScoreResult struct {
	ExpectedScoreA float64 `json:"expected_score_a" jsonschema:"win probability for the first player"`
	ExpectedScoreB float64 `json:"expected_score_b" jsonschema:"win probability for the second player"`
	DeltaAOnWin    float64 `json:"delta_a_on_win" jsonschema:"rating change for the first player after a win"`
	DeltaAOnLoss   float64 `json:"delta_a_on_loss" jsonschema:"rating change for the first player after a loss"`
}

// SimulationRunTool defines the MCP tool schema for running a simulation.
func SimulationRunTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "simulation_run",
		Description: "Runs a rating simulation and returns summary statistics and rankings",
	}
}

// ExpectedScoreTool defines the MCP tool schema for win probabilities.
func ExpectedScoreTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "expected_score",
		Description: "Computes the win probability and rating deltas for a hypothetical pairing",
	}
}

// SimulationRunHandler executes a bounded in-process simulation. The run is
// archived when a store is attached; telemetry is best effort.
func SimulationRunHandler(store storage.RunStore, emitter *observability.Emitter) mcp.ToolHandlerFor[SimulationRunInput, SimulationRunResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SimulationRunInput) (*mcp.CallToolResult, SimulationRunResult, error) {
		cfg := simulation.DefaultConfig()
		if input.NumPlayers != 0 {
			cfg.NumPlayers = input.NumPlayers
		}
		if input.NumMatches != 0 {
			cfg.NumMatches = input.NumMatches
		}
		if input.InitialRating != 0 {
			cfg.InitialRating = input.InitialRating
		}
		if input.RatingRangePct != 0 {
			cfg.RatingRangePct = input.RatingRangePct
		}
		if input.KFactor != 0 {
			cfg.KFactor = input.KFactor
		}
		cfg.Seed = input.Seed

		if cfg.NumPlayers > MaxRunPlayers {
			return nil, SimulationRunResult{}, fmt.Errorf("num_players %d exceeds the cap of %d", cfg.NumPlayers, MaxRunPlayers)
		}
		if cfg.NumMatches > MaxRunMatches {
			return nil, SimulationRunResult{}, fmt.Errorf("num_matches %d exceeds the cap of %d", cfg.NumMatches, MaxRunMatches)
		}

		runner, err := simulation.NewRunner(cfg)
		if err != nil {
			return nil, SimulationRunResult{}, fmt.Errorf("configure simulation: %w", err)
		}
		cfg.Seed = runner.Seed()

		runID, err := id.NewID()
		if err != nil {
			return nil, SimulationRunResult{}, fmt.Errorf("generate run id: %w", err)
		}

		_ = emitter.Emit(ctx, observability.NewRunEvent(observability.SeverityInfo, observability.EventRunStarted, runID,
			fmt.Sprintf("players=%d matches=%d seed=%d", cfg.NumPlayers, cfg.NumMatches, cfg.Seed)))

		result, err := runner.Run(ctx)
		if err != nil {
			_ = emitter.Emit(ctx, observability.NewRunEvent(observability.SeverityError, observability.EventRunFailed, runID, err.Error()))
			return nil, SimulationRunResult{}, fmt.Errorf("run simulation: %w", err)
		}

		runResult := SimulationRunResult{
			Seed:       result.Seed,
			NumPlayers: cfg.NumPlayers,
			NumMatches: cfg.NumMatches,
			ElapsedMs:  result.Elapsed.Milliseconds(),
			Summary:    toRatingSummary(report.Summarize(result.Players)),
		}

		topN := input.TopN
		if topN <= 0 {
			topN = report.DefaultTopN
		}
		runResult.TopPlayers = toPlayerRankings(report.TopPlayers(result.Players, topN))
		runResult.BottomPlayers = toPlayerRankings(report.BottomPlayers(result.Players, topN))

		if store != nil {
			run, players, rounds := storage.NewRunSnapshot(runID, cfg, result, time.Now(), false)
			if err := store.SaveRun(ctx, run, players, rounds); err != nil {
				_ = emitter.Emit(ctx, observability.NewRunEvent(observability.SeverityError, observability.EventRunFailed, runID,
					fmt.Sprintf("archive run: %v", err)))
				return nil, SimulationRunResult{}, fmt.Errorf("archive run: %w", err)
			}
			runResult.RunID = runID
		}

		_ = emitter.Emit(ctx, observability.NewRunEvent(observability.SeverityInfo, observability.EventRunCompleted, runID,
			fmt.Sprintf("elapsed=%s", result.Elapsed)))

		return nil, runResult, nil
	}
}

// ExpectedScoreHandler evaluates the rating model without touching any state.
func ExpectedScoreHandler() mcp.ToolHandlerFor[ExpectedScoreInput, ExpectedScoreResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ExpectedScoreInput) (*mcp.CallToolResult, ExpectedScoreResult, error) {
		k := input.KFactor
		if k == 0 {
			k = rating.DefaultKFactor
		}
		if k < 0 {
			return nil, ExpectedScoreResult{}, fmt.Errorf("k_factor must be positive")
		}

		expectedA := rating.ExpectedScore(input.RatingA, input.RatingB)
		result := ExpectedScoreResult{
			ExpectedScoreA: expectedA,
			ExpectedScoreB: 1 - expectedA,
			DeltaAOnWin:    rating.Delta(expectedA, rating.ScoreWin, k),
			DeltaAOnLoss:   rating.Delta(expectedA, rating.ScoreLoss, k),
		}
		return nil, result, nil
	}
}

func toRatingSummary(summary report.Summary) RatingSummary {
	return RatingSummary{
		Count:  summary.Count,
		Mean:   summary.Mean,
		Median: summary.Median,
		StdDev: summary.StdDev,
		Min:    summary.Min,
		Max:    summary.Max,
	}
}

func toPlayerRankings(rankings []report.Ranking) []PlayerRanking {
	out := make([]PlayerRanking, len(rankings))
	for i, r := range rankings {
		out[i] = PlayerRanking{
			PlayerIndex:   r.PlayerIndex,
			Rating:        r.Rating,
			MatchesPlayed: r.MatchesPlayed,
		}
	}
	return out
}
