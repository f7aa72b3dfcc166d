// Package mcp parses MCP command flags and serves the tools over stdio.
package mcp

import (
	"context"
	"flag"
	"fmt"

	"github.com/louisbranch/ratinglab/internal/mcp/service"
	entrypoint "github.com/louisbranch/ratinglab/internal/platform/cmd"
	"github.com/louisbranch/ratinglab/internal/simulation/storage/sqlite"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath string `env:"RATINGLAB_DB_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the sqlite archive (empty serves without one)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run serves the MCP tools on stdio. The run archive tools report an
// unconfigured archive unless a db path is set.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		stores := service.Stores{}
		if cfg.DBPath != "" {
			store, err := sqlite.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer store.Close()
			stores.Runs = store
			stores.Telemetry = store
		}
		return service.Run(ctx, stores)
	})
}
