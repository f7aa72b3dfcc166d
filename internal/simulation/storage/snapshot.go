package storage

import (
	"time"

	"github.com/louisbranch/ratinglab/internal/report"
	"github.com/louisbranch/ratinglab/internal/simulation"
)

// NewRunSnapshot derives the durable records for a finished run. Per-player
// aggregates (peak, floor, volatility) are computed from each rating
// history; the round log is included only when includeRounds is set.
func NewRunSnapshot(id string, cfg simulation.Config, result simulation.Result, createdAt time.Time, includeRounds bool) (RunRecord, []RunPlayerRecord, []RunRoundRecord) {
	run := RunRecord{
		ID:             id,
		Seed:           result.Seed,
		NumPlayers:     cfg.NumPlayers,
		NumMatches:     cfg.NumMatches,
		InitialRating:  cfg.InitialRating,
		RatingRangePct: cfg.RatingRangePct,
		KFactor:        cfg.KFactor,
		Elapsed:        result.Elapsed,
		CreatedAt:      createdAt.UTC(),
	}

	players := make([]RunPlayerRecord, len(result.Players))
	for i, p := range result.Players {
		peak, floor := p.History[0], p.History[0]
		for _, r := range p.History {
			if r > peak {
				peak = r
			}
			if r < floor {
				floor = r
			}
		}
		players[i] = RunPlayerRecord{
			RunID:         id,
			PlayerIndex:   i,
			FinalRating:   p.Rating,
			MatchesPlayed: p.MatchesPlayed,
			PeakRating:    peak,
			FloorRating:   floor,
			Volatility:    report.Volatility(p),
		}
	}

	var rounds []RunRoundRecord
	if includeRounds {
		rounds = make([]RunRoundRecord, len(result.Rounds))
		for i, round := range result.Rounds {
			rounds[i] = RunRoundRecord{
				RunID:    id,
				Round:    i,
				Subject:  round.Subject,
				Opponent: round.Opponent,
				Winner:   round.Winner.String(),
			}
		}
	}

	return run, players, rounds
}
