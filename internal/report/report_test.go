package report

import (
	"math"
	"testing"

	"github.com/louisbranch/ratinglab/internal/simulation/domain"
)

func populationWithRatings(ratings ...float64) domain.Population {
	players := make(domain.Population, len(ratings))
	for i, r := range ratings {
		players[i] = domain.NewPlayer(r)
	}
	return players
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		ratings []float64
		want    Summary
	}{
		{
			name:    "single player",
			ratings: []float64{1500},
			want:    Summary{Count: 1, Mean: 1500, Median: 1500, StdDev: 0, Min: 1500, Max: 1500},
		},
		{
			name:    "odd count",
			ratings: []float64{1400, 1600, 1500},
			want: Summary{
				Count: 3, Mean: 1500, Median: 1500,
				StdDev: math.Sqrt(20000.0 / 3.0), Min: 1400, Max: 1600,
			},
		},
		{
			name:    "even count",
			ratings: []float64{1, 2, 3, 4},
			want: Summary{
				Count: 4, Mean: 2.5, Median: 2.5,
				StdDev: math.Sqrt(1.25), Min: 1, Max: 4,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(populationWithRatings(tt.ratings...))

			if got.Count != tt.want.Count {
				t.Fatalf("count: expected %d, got %d", tt.want.Count, got.Count)
			}
			fields := []struct {
				name string
				got  float64
				want float64
			}{
				{"mean", got.Mean, tt.want.Mean},
				{"median", got.Median, tt.want.Median},
				{"stddev", got.StdDev, tt.want.StdDev},
				{"min", got.Min, tt.want.Min},
				{"max", got.Max, tt.want.Max},
			}
			for _, f := range fields {
				if math.Abs(f.got-f.want) > 1e-9 {
					t.Fatalf("%s: expected %v, got %v", f.name, f.want, f.got)
				}
			}
		})
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", got)
	}
}

func TestTopPlayers(t *testing.T) {
	players := populationWithRatings(1500, 1700, 1300, 1700, 1600)
	players[1].MatchesPlayed = 12

	top := TopPlayers(players, 3)

	if len(top) != 3 {
		t.Fatalf("expected 3 rankings, got %d", len(top))
	}
	// The tied 1700s keep index order.
	if top[0].PlayerIndex != 1 || top[1].PlayerIndex != 3 || top[2].PlayerIndex != 4 {
		t.Fatalf("unexpected ranking order: %+v", top)
	}
	if top[0].MatchesPlayed != 12 {
		t.Fatalf("expected matches played carried over, got %+v", top[0])
	}
}

func TestBottomPlayers(t *testing.T) {
	players := populationWithRatings(1500, 1700, 1300, 1300)

	bottom := BottomPlayers(players, 2)

	if len(bottom) != 2 {
		t.Fatalf("expected 2 rankings, got %d", len(bottom))
	}
	if bottom[0].PlayerIndex != 2 || bottom[1].PlayerIndex != 3 {
		t.Fatalf("unexpected ranking order: %+v", bottom)
	}
}

func TestRankingsClampToPopulation(t *testing.T) {
	players := populationWithRatings(1500, 1600)

	if got := len(TopPlayers(players, 10)); got != 2 {
		t.Fatalf("expected rankings clamped to population, got %d", got)
	}
	if got := len(TopPlayers(players, 0)); got != 2 {
		t.Fatalf("expected default top-n clamped to population, got %d", got)
	}
}

func TestVolatility(t *testing.T) {
	p := domain.NewPlayer(1500)
	p.History = []float64{1500, 1516, 1500}

	got := Volatility(p)
	want := math.Sqrt(1536.0 / 27.0)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected volatility %v, got %v", want, got)
	}
}

func TestVolatilityFreshPlayerIsZero(t *testing.T) {
	if got := Volatility(domain.NewPlayer(1500)); got != 0 {
		t.Fatalf("expected zero volatility for unplayed player, got %v", got)
	}
}

func TestVolatilityStats(t *testing.T) {
	calm := domain.NewPlayer(1500)
	wild := domain.NewPlayer(1500)
	wild.History = []float64{1500, 1620, 1380}

	meanVol, peak, peakIndex := VolatilityStats(domain.Population{calm, wild})

	wantPeak := Volatility(wild)
	if math.Abs(peak-wantPeak) > 1e-9 {
		t.Fatalf("expected peak %v, got %v", wantPeak, peak)
	}
	if peakIndex != 1 {
		t.Fatalf("expected peak at player 1, got %d", peakIndex)
	}
	if math.Abs(meanVol-wantPeak/2) > 1e-9 {
		t.Fatalf("expected mean %v, got %v", wantPeak/2, meanVol)
	}
}

func TestMatches(t *testing.T) {
	players := populationWithRatings(1500, 1500, 1500)
	players[0].MatchesPlayed = 10
	players[1].MatchesPlayed = 20
	players[2].MatchesPlayed = 60

	load := Matches(players)

	if load.Min != 10 || load.Max != 60 {
		t.Fatalf("expected min 10 max 60, got %+v", load)
	}
	if math.Abs(load.Mean-30) > 1e-9 {
		t.Fatalf("expected mean 30, got %v", load.Mean)
	}
}
