package simulation

import (
	"errors"
	"fmt"

	"github.com/louisbranch/ratinglab/internal/rating"
	"github.com/louisbranch/ratinglab/internal/simulation/matchmaking"
)

// Configuration errors reported by Validate.
var (
	// ErrInvalidPlayerCount indicates a non-positive population size.
	ErrInvalidPlayerCount = errors.New("number of players must be positive")
	// ErrInvalidMatchCount indicates a non-positive match count.
	ErrInvalidMatchCount = errors.New("number of matches must be positive")
	// ErrInvalidKFactor indicates a non-positive K-factor.
	ErrInvalidKFactor = errors.New("k-factor must be positive")
)

// Config describes one simulation run.
type Config struct {
	// NumPlayers is the population size.
	NumPlayers int
	// NumMatches is the number of rounds to simulate.
	NumMatches int
	// InitialRating is the baseline rating assigned to every player.
	InitialRating float64
	// RatingRangePct is the matchmaking band half-width, as a fraction of
	// the subject's current rating.
	RatingRangePct float64
	// KFactor scales per-match rating movement.
	KFactor float64
	// Seed selects the random stream. Zero requests a generated seed; the
	// seed actually used is reported on the Result.
	Seed int64
}

// DefaultConfig returns the reference run configuration: a thousand players
// at 1500 playing a hundred thousand matches with K=32 and a 20% band.
func DefaultConfig() Config {
	return Config{
		NumPlayers:     1000,
		NumMatches:     100000,
		InitialRating:  rating.DefaultInitialRating,
		RatingRangePct: matchmaking.DefaultRatingRangePct,
		KFactor:        rating.DefaultKFactor,
	}
}

// Validate reports the first configuration error, or nil.
func (c Config) Validate() error {
	if c.NumPlayers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPlayerCount, c.NumPlayers)
	}
	if c.NumMatches <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMatchCount, c.NumMatches)
	}
	if c.RatingRangePct <= 0 {
		return fmt.Errorf("%w: %v", matchmaking.ErrInvalidRatingRange, c.RatingRangePct)
	}
	if c.KFactor <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidKFactor, c.KFactor)
	}
	return nil
}
