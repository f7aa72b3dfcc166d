package simulation

import (
	"math/rand"

	"github.com/louisbranch/ratinglab/internal/rating"
	"github.com/louisbranch/ratinglab/internal/simulation/domain"
)

// PlayMatch simulates one match between two players and applies both rating
// updates. The winner is drawn from the rating model: player one wins with
// probability equal to its expected score against player two.
//
// Both updates use the opponent's pre-match rating, player one's update
// first, so the final ratings do not depend on which participant is
// designated player one. PlayMatch consumes exactly one draw from rng.
func PlayMatch(rng *rand.Rand, one, two *domain.Player, kFactor float64) domain.Winner {
	expectedOne := rating.ExpectedScore(one.Rating, two.Rating)

	oneRating := one.Rating
	twoRating := two.Rating

	if rng.Float64() < expectedOne {
		one.ApplyResult(twoRating, rating.ScoreWin, kFactor)
		two.ApplyResult(oneRating, rating.ScoreLoss, kFactor)
		return domain.WinnerPlayerOne
	}

	one.ApplyResult(twoRating, rating.ScoreLoss, kFactor)
	two.ApplyResult(oneRating, rating.ScoreWin, kFactor)
	return domain.WinnerPlayerTwo
}
