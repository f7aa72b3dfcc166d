// Package report derives summary statistics from finished simulations.
//
// Everything here is a read-only view over the final population; nothing
// feeds back into a running simulation.
package report

import (
	"math"
	"sort"

	"github.com/louisbranch/ratinglab/internal/simulation/domain"
)

// DefaultTopN is the ranking table size used when none is requested.
const DefaultTopN = 5

// Summary aggregates the final rating distribution.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// Ranking is one player's standing in the final distribution.
type Ranking struct {
	PlayerIndex   int
	Rating        float64
	MatchesPlayed int
}

// MatchLoad summarizes how evenly matches spread across the population.
type MatchLoad struct {
	Min  int
	Max  int
	Mean float64
}

// Summarize computes distribution statistics over the final ratings.
func Summarize(players domain.Population) Summary {
	if len(players) == 0 {
		return Summary{}
	}

	ratings := players.Ratings()
	min, max := ratings[0], ratings[0]
	for _, r := range ratings {
		if r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}

	return Summary{
		Count:  len(ratings),
		Mean:   mean(ratings),
		Median: median(ratings),
		StdDev: stdDev(ratings),
		Min:    min,
		Max:    max,
	}
}

// TopPlayers returns the n highest-rated players, best first. Ties keep the
// lower player index first.
func TopPlayers(players domain.Population, n int) []Ranking {
	return rank(players, n, func(a, b Ranking) bool {
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.PlayerIndex < b.PlayerIndex
	})
}

// BottomPlayers returns the n lowest-rated players, worst first. Ties keep
// the lower player index first.
func BottomPlayers(players domain.Population, n int) []Ranking {
	return rank(players, n, func(a, b Ranking) bool {
		if a.Rating != b.Rating {
			return a.Rating < b.Rating
		}
		return a.PlayerIndex < b.PlayerIndex
	})
}

func rank(players domain.Population, n int, less func(a, b Ranking) bool) []Ranking {
	if n <= 0 {
		n = DefaultTopN
	}

	rankings := make([]Ranking, len(players))
	for i, p := range players {
		rankings[i] = Ranking{
			PlayerIndex:   i,
			Rating:        p.Rating,
			MatchesPlayed: p.MatchesPlayed,
		}
	}
	sort.Slice(rankings, func(i, j int) bool { return less(rankings[i], rankings[j]) })

	if n > len(rankings) {
		n = len(rankings)
	}
	return rankings[:n]
}

// Volatility is the population standard deviation of a player's full rating
// history, including the initial rating.
func Volatility(p *domain.Player) float64 {
	return stdDev(p.History)
}

// VolatilityStats reports the mean per-player volatility and the most
// volatile player.
func VolatilityStats(players domain.Population) (meanVolatility, peak float64, peakIndex int) {
	if len(players) == 0 {
		return 0, 0, -1
	}

	total := 0.0
	peakIndex = 0
	for i, p := range players {
		v := Volatility(p)
		total += v
		if v > peak {
			peak = v
			peakIndex = i
		}
	}
	return total / float64(len(players)), peak, peakIndex
}

// Matches summarizes the matches-played distribution.
func Matches(players domain.Population) MatchLoad {
	if len(players) == 0 {
		return MatchLoad{}
	}

	load := MatchLoad{Min: players[0].MatchesPlayed, Max: players[0].MatchesPlayed}
	total := 0
	for _, p := range players {
		m := p.MatchesPlayed
		total += m
		if m < load.Min {
			load.Min = m
		}
		if m > load.Max {
			load.Max = m
		}
	}
	load.Mean = float64(total) / float64(len(players))
	return load
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(values)))
}
