// Package matchmaking selects opponents by rating proximity.
package matchmaking

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/louisbranch/ratinglab/internal/simulation/domain"
)

// DefaultRatingRangePct is the half-width of the preferred rating band as a
// fraction of the subject's current rating.
const DefaultRatingRangePct = 0.2

var (
	// ErrPopulationTooSmall indicates matchmaking over fewer than two players.
	ErrPopulationTooSmall = errors.New("matchmaking requires at least two players")
	// ErrInvalidRatingRange indicates a non-positive rating range percentage.
	ErrInvalidRatingRange = errors.New("rating range percentage must be positive")
)

// Matchmaker pairs a subject with an opponent whose rating falls inside a
// band around the subject's own. The band is relative to the signed rating:
// for percentage pct and subject rating r it spans [r*(1-pct), r*(1+pct)],
// so a negative rating inverts the band, which then matches nobody and the
// fallback applies. When no other player is in band, selection falls back
// to the whole population, so a pairing always exists once the population
// holds two players.
//
// The matchmaker borrows the population: it observes rating changes made
// between calls and never mutates players.
type Matchmaker struct {
	players        domain.Population
	ratingRangePct float64
}

// New creates a matchmaker over players.
func New(players domain.Population, ratingRangePct float64) (*Matchmaker, error) {
	if ratingRangePct <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRatingRange, ratingRangePct)
	}
	return &Matchmaker{players: players, ratingRangePct: ratingRangePct}, nil
}

// FindMatch selects an opponent for subject, uniformly from the preferred
// band or uniformly from the rest of the population when the band is empty.
// The subject is excluded by identity, never by rating, so equal-rated
// players remain eligible. FindMatch consumes exactly one draw from rng.
func (m *Matchmaker) FindMatch(rng *rand.Rand, subject *domain.Player) (*domain.Player, error) {
	if len(m.players) < 2 {
		return nil, ErrPopulationTooSmall
	}

	minRating := subject.Rating * (1 - m.ratingRangePct)
	maxRating := subject.Rating * (1 + m.ratingRangePct)

	candidates := make([]*domain.Player, 0, len(m.players)-1)
	for _, p := range m.players {
		if p == subject {
			continue
		}
		if p.Rating >= minRating && p.Rating <= maxRating {
			candidates = append(candidates, p)
		}
	}

	if len(candidates) == 0 {
		for _, p := range m.players {
			if p != subject {
				candidates = append(candidates, p)
			}
		}
	}

	return candidates[rng.Intn(len(candidates))], nil
}
