// Package report parses report command flags and renders archived runs.
package report

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	entrypoint "github.com/louisbranch/ratinglab/internal/platform/cmd"
	"github.com/louisbranch/ratinglab/internal/simulation/storage"
	"github.com/louisbranch/ratinglab/internal/simulation/storage/filter"
	"github.com/louisbranch/ratinglab/internal/simulation/storage/sqlite"
)

// Config holds report command configuration.
type Config struct {
	DBPath string `env:"RATINGLAB_DB_PATH"`
	List   bool   `env:"RATINGLAB_REPORT_LIST"`
	RunID  string `env:"RATINGLAB_REPORT_RUN"`
	Filter string `env:"RATINGLAB_REPORT_FILTER"`
	Limit  int    `env:"RATINGLAB_REPORT_LIMIT" envDefault:"20"`
	TopN   int    `env:"RATINGLAB_REPORT_TOP"   envDefault:"10"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the sqlite archive")
	fs.BoolVar(&cfg.List, "list", cfg.List, "list archived runs")
	fs.StringVar(&cfg.RunID, "run", cfg.RunID, "archived run id to render")
	fs.StringVar(&cfg.Filter, "filter", cfg.Filter, "AIP-160 player filter, e.g. final_rating >= 1600.0")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "maximum runs to list")
	fs.IntVar(&cfg.TopN, "top", cfg.TopN, "maximum players to render for a run")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the report command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.DBPath == "" {
		return errors.New("db path is required")
	}
	if cfg.RunID == "" && !cfg.List {
		return errors.New("either -list or -run is required")
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceReport, func(ctx context.Context) error {
		return run(ctx, cfg, out)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer store.Close()

	p := message.NewPrinter(language.English)
	if cfg.RunID != "" {
		return renderRun(ctx, p, out, store, cfg)
	}
	return renderList(ctx, p, out, store, cfg.Limit)
}

func renderList(ctx context.Context, p *message.Printer, out io.Writer, store storage.RunStore, limit int) error {
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		p.Fprintf(out, "No archived runs.\n")
		return nil
	}

	p.Fprintf(out, "Archived runs:\n")
	for _, run := range runs {
		p.Fprintf(out, "  %s  %s  %d players, %d matches, seed %d  (%s)\n",
			run.ID,
			run.CreatedAt.UTC().Format(time.RFC3339),
			run.NumPlayers,
			run.NumMatches,
			run.Seed,
			run.Elapsed.Round(time.Millisecond),
		)
	}
	return nil
}

func renderRun(ctx context.Context, p *message.Printer, out io.Writer, store storage.RunStore, cfg Config) error {
	condition, err := filter.ParsePlayerFilter(cfg.Filter)
	if err != nil {
		return fmt.Errorf("parse filter: %w", err)
	}

	run, err := store.GetRun(ctx, cfg.RunID)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	players, err := store.ListRunPlayers(ctx, run.ID, condition, cfg.TopN)
	if err != nil {
		return fmt.Errorf("list run players: %w", err)
	}

	p.Fprintf(out, "Run %s (%s)\n", run.ID, run.CreatedAt.UTC().Format(time.RFC3339))
	p.Fprintf(out, "Simulated %d matches across %d players (seed %d) in %s\n",
		run.NumMatches, run.NumPlayers, run.Seed, run.Elapsed.Round(time.Millisecond))
	p.Fprintf(out, "Initial rating %.2f, range pct %.2f, K %.2f\n",
		run.InitialRating, run.RatingRangePct, run.KFactor)

	p.Fprintf(out, "\nPlayers:\n")
	if len(players) == 0 {
		p.Fprintf(out, "  (no players matched)\n")
		return nil
	}
	for _, player := range players {
		p.Fprintf(out, "  #%-5d %10.2f  (%d matches)  peak %.2f  floor %.2f  volatility %.2f\n",
			player.PlayerIndex,
			player.FinalRating,
			player.MatchesPlayed,
			player.PeakRating,
			player.FloorRating,
			player.Volatility,
		)
	}
	return nil
}
