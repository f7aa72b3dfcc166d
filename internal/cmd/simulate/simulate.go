// Package simulate parses simulate command flags and runs a simulation.
package simulate

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/louisbranch/ratinglab/internal/observability"
	entrypoint "github.com/louisbranch/ratinglab/internal/platform/cmd"
	"github.com/louisbranch/ratinglab/internal/platform/id"
	"github.com/louisbranch/ratinglab/internal/platform/random"
	"github.com/louisbranch/ratinglab/internal/report"
	"github.com/louisbranch/ratinglab/internal/scenario"
	"github.com/louisbranch/ratinglab/internal/simulation"
	"github.com/louisbranch/ratinglab/internal/simulation/storage"
	"github.com/louisbranch/ratinglab/internal/simulation/storage/sqlite"
)

// Config holds simulate command configuration.
type Config struct {
	NumPlayers     int     `env:"RATINGLAB_NUM_PLAYERS"      envDefault:"1000"`
	NumMatches     int     `env:"RATINGLAB_NUM_MATCHES"      envDefault:"100000"`
	InitialRating  float64 `env:"RATINGLAB_INITIAL_RATING"   envDefault:"1500"`
	RatingRangePct float64 `env:"RATINGLAB_RATING_RANGE_PCT" envDefault:"0.2"`
	KFactor        float64 `env:"RATINGLAB_K_FACTOR"         envDefault:"32"`
	Seed           int64   `env:"RATINGLAB_SEED"`
	Scenario       string  `env:"RATINGLAB_SCENARIO_FILE"`
	DBPath         string  `env:"RATINGLAB_DB_PATH"`
	StoreRounds    bool    `env:"RATINGLAB_STORE_ROUNDS"`
	TopN           int     `env:"RATINGLAB_TOP_N"            envDefault:"5"`
	Quiet          bool    `env:"RATINGLAB_QUIET"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.NumPlayers, "players", cfg.NumPlayers, "number of players in the population")
	fs.IntVar(&cfg.NumMatches, "matches", cfg.NumMatches, "number of matches to simulate")
	fs.Float64Var(&cfg.InitialRating, "initial-rating", cfg.InitialRating, "rating every player starts from")
	fs.Float64Var(&cfg.RatingRangePct, "rating-range-pct", cfg.RatingRangePct, "matchmaking band as a fraction of the subject rating")
	fs.Float64Var(&cfg.KFactor, "k", cfg.KFactor, "rating K-factor")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "rng seed (0 generates one)")
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to a scenario lua file (overrides the simulation flags)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the sqlite archive (empty disables archiving)")
	fs.BoolVar(&cfg.StoreRounds, "store-rounds", cfg.StoreRounds, "archive the per-round match log")
	fs.IntVar(&cfg.TopN, "top-n", cfg.TopN, "ranking table size in the report")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "suppress progress messages on stderr")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the simulate command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSimulate, func(ctx context.Context) error {
		return run(ctx, cfg, out, errOut)
	})
}

func run(ctx context.Context, cfg Config, out, errOut io.Writer) error {
	simCfg, err := simulationConfig(cfg)
	if err != nil {
		return err
	}

	seed, err := random.EnsureSeed(simCfg.Seed, !cfg.Quiet)
	if err != nil {
		return fmt.Errorf("resolve seed: %w", err)
	}
	simCfg.Seed = seed

	runner, err := simulation.NewRunner(simCfg)
	if err != nil {
		return err
	}

	var (
		store   *sqlite.Store
		emitter *observability.Emitter
		runID   string
	)
	if cfg.DBPath != "" {
		store, err = sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer store.Close()
		emitter = observability.NewEmitter(store)

		runID, err = id.NewID()
		if err != nil {
			return fmt.Errorf("generate run id: %w", err)
		}
	}

	_ = emitter.Emit(ctx, observability.NewRunEvent(observability.SeverityInfo, observability.EventRunStarted, runID,
		fmt.Sprintf("players=%d matches=%d seed=%d", simCfg.NumPlayers, simCfg.NumMatches, simCfg.Seed)))

	result, err := runner.Run(ctx)
	if err != nil {
		_ = emitter.Emit(ctx, observability.NewRunEvent(observability.SeverityError, observability.EventRunFailed, runID, err.Error()))
		return err
	}

	if store != nil {
		run, players, rounds := storage.NewRunSnapshot(runID, simCfg, result, time.Now(), cfg.StoreRounds)
		if err := store.SaveRun(ctx, run, players, rounds); err != nil {
			_ = emitter.Emit(ctx, observability.NewRunEvent(observability.SeverityError, observability.EventRunFailed, runID,
				fmt.Sprintf("archive run: %v", err)))
			return fmt.Errorf("archive run: %w", err)
		}
		if !cfg.Quiet {
			fmt.Fprintf(errOut, "Archived run %s\n", runID)
		}
	}

	_ = emitter.Emit(ctx, observability.NewRunEvent(observability.SeverityInfo, observability.EventRunCompleted, runID,
		fmt.Sprintf("elapsed=%s", result.Elapsed)))

	if err := report.Render(out, result, report.Options{TopN: cfg.TopN}); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// simulationConfig resolves the simulation parameters. A scenario file
// defines the run when present; a nonzero seed flag still wins so archived
// scenarios can be replayed.
func simulationConfig(cfg Config) (simulation.Config, error) {
	if cfg.Scenario != "" {
		loaded, err := scenario.Load(cfg.Scenario)
		if err != nil {
			return simulation.Config{}, fmt.Errorf("load scenario: %w", err)
		}
		simCfg := loaded.Config()
		if cfg.Seed != 0 {
			simCfg.Seed = cfg.Seed
		}
		return simCfg, nil
	}

	return simulation.Config{
		NumPlayers:     cfg.NumPlayers,
		NumMatches:     cfg.NumMatches,
		InitialRating:  cfg.InitialRating,
		RatingRangePct: cfg.RatingRangePct,
		KFactor:        cfg.KFactor,
		Seed:           cfg.Seed,
	}, nil
}
