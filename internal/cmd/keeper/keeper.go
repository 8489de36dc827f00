// Package keeper parses keeper command flags and runs the campaign engine
// behind an MCP transport.
package keeper

import (
	"context"
	"flag"
	"fmt"

	keepersvc "github.com/louisbranch/worldkeeper/internal/keeper"
	mcpservice "github.com/louisbranch/worldkeeper/internal/mcp/service"
	platformcmd "github.com/louisbranch/worldkeeper/internal/platform/cmd"
	"github.com/louisbranch/worldkeeper/internal/platform/config"
	"github.com/louisbranch/worldkeeper/internal/storage/sqlite"
)

// Config holds keeper command configuration.
type Config struct {
	// StoragePath is the campaign SQLite file. Empty keeps the campaign in
	// memory only.
	StoragePath string `env:"WORLDKEEPER_STORAGE_PATH"`
	HTTPAddr    string `env:"WORLDKEEPER_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport   string `env:"WORLDKEEPER_MCP_TRANSPORT" envDefault:"stdio"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "campaign SQLite file (empty for in-memory)")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the keeper service and serves it over MCP until the context
// ends.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceKeeper, func(ctx context.Context) error {
		service := keepersvc.New(nil)
		if cfg.StoragePath != "" {
			store, err := sqlite.Open(cfg.StoragePath)
			if err != nil {
				return fmt.Errorf("open campaign storage: %w", err)
			}
			defer func() { _ = store.Close() }()
			service = keepersvc.New(store)
		}
		if err := service.Load(ctx); err != nil {
			return fmt.Errorf("load campaign: %w", err)
		}

		return mcpservice.Run(ctx, service, mcpservice.Config{
			Transport: mcpservice.TransportKind(cfg.Transport),
			HTTPAddr:  cfg.HTTPAddr,
		})
	})
}
