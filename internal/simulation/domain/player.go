// Package domain holds the entities of a simulated rating ecosystem.
package domain

import (
	"errors"
	"fmt"

	"github.com/louisbranch/ratinglab/internal/rating"
)

// ErrInvalidPopulationSize indicates a non-positive population size.
var ErrInvalidPopulationSize = errors.New("population size must be positive")

// Player is a participant in the rating ecosystem. Rating is the current
// skill estimate; History records the trajectory, starting with the initial
// rating and growing by one entry per completed match, so
// len(History) == MatchesPlayed+1 always holds.
//
// A Player is mutated only through ApplyResult. Identity is pointer
// identity; two players with equal ratings are still distinct.
type Player struct {
	Rating        float64
	History       []float64
	MatchesPlayed int
}

// NewPlayer creates a player at the initial rating with a one-entry history.
func NewPlayer(initialRating float64) *Player {
	return &Player{
		Rating:  initialRating,
		History: []float64{initialRating},
	}
}

// ApplyResult adjusts the player's rating for one completed match against an
// opponent whose pre-match rating was opponentRating. actual is
// rating.ScoreWin or rating.ScoreLoss. The new rating is appended to
// History, MatchesPlayed is incremented, and the applied delta is returned.
func (p *Player) ApplyResult(opponentRating, actual, kFactor float64) float64 {
	expected := rating.ExpectedScore(p.Rating, opponentRating)
	delta := rating.Delta(expected, actual, kFactor)
	p.Rating += delta
	p.History = append(p.History, p.Rating)
	p.MatchesPlayed++
	return delta
}

// Population is the ordered, fixed-size set of players in one simulation
// run. The slice is created once and never resized; consumers identify
// players by index or pointer.
type Population []*Player

// NewPopulation creates n players, all at the initial rating.
func NewPopulation(n int, initialRating float64) (Population, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPopulationSize, n)
	}
	players := make(Population, n)
	for i := range players {
		players[i] = NewPlayer(initialRating)
	}
	return players, nil
}

// Ratings returns the current rating of every player in population order.
func (p Population) Ratings() []float64 {
	ratings := make([]float64, len(p))
	for i, player := range p {
		ratings[i] = player.Rating
	}
	return ratings
}
