package report

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/ratinglab/internal/simulation"
)

// Options control report rendering.
type Options struct {
	// TopN bounds the ranking tables. Zero uses DefaultTopN.
	TopN int
}

// Render writes the plain-text report for a finished run.
func Render(w io.Writer, result simulation.Result, opts Options) error {
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	p := message.NewPrinter(language.English)
	summary := Summarize(result.Players)

	if _, err := p.Fprintf(w, "Simulated %d matches across %d players (seed %d) in %s\n\n",
		len(result.Rounds), summary.Count, result.Seed, result.Elapsed.Round(time.Millisecond)); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	p.Fprintf(w, "Final ratings:\n")
	p.Fprintf(w, "  mean   %10.2f\n", summary.Mean)
	p.Fprintf(w, "  median %10.2f\n", summary.Median)
	p.Fprintf(w, "  stddev %10.2f\n", summary.StdDev)
	p.Fprintf(w, "  min    %10.2f\n", summary.Min)
	p.Fprintf(w, "  max    %10.2f\n", summary.Max)

	p.Fprintf(w, "\nTop %d players:\n", topN)
	for _, r := range TopPlayers(result.Players, topN) {
		p.Fprintf(w, "  #%-5d %10.2f  (%d matches)\n", r.PlayerIndex, r.Rating, r.MatchesPlayed)
	}

	p.Fprintf(w, "\nBottom %d players:\n", topN)
	for _, r := range BottomPlayers(result.Players, topN) {
		p.Fprintf(w, "  #%-5d %10.2f  (%d matches)\n", r.PlayerIndex, r.Rating, r.MatchesPlayed)
	}

	meanVol, peakVol, peakIndex := VolatilityStats(result.Players)
	p.Fprintf(w, "\nVolatility: mean %.2f, peak %.2f (player #%d)\n", meanVol, peakVol, peakIndex)

	load := Matches(result.Players)
	p.Fprintf(w, "Match load: min %d, mean %.1f, max %d\n", load.Min, load.Mean, load.Max)

	return nil
}
