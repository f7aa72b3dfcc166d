// Package rating implements the Elo rating model.
//
// The model is two pure functions: an expected-score formula giving the
// probability that one rating beats another, and a post-match adjustment
// scaled by a K-factor. All rating state lives with the callers.
package rating

import "math"

// Default parameters for rating ecosystems.
const (
	// DefaultInitialRating is the baseline rating assigned to new players.
	DefaultInitialRating = 1500.0

	// DefaultKFactor controls how far a single match moves a rating.
	DefaultKFactor = 32.0
)

// Actual-score values for match outcomes. Draws are not modeled.
const (
	ScoreWin  = 1.0
	ScoreLoss = 0.0
)

// ExpectedScore returns the probability that a player rated ratingA beats a
// player rated ratingB under the logistic Elo model.
//
// The result is strictly between 0 and 1 and complements symmetrically:
// ExpectedScore(a, b) + ExpectedScore(b, a) == 1 for any finite pair.
// Extreme differentials saturate toward 0 or 1 without overflow.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// Delta returns the rating adjustment for a player whose win probability was
// expected and whose actual score was ScoreWin or ScoreLoss, scaled by
// kFactor. Positive when the player overperformed, negative otherwise.
func Delta(expected, actual, kFactor float64) float64 {
	return kFactor * (actual - expected)
}
