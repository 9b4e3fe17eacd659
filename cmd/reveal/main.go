// Command reveal resolves typed locators against pluggable adapters.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/reveal-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/reveal-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/reveal-cli/internal/connectors"
	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

func main() {
	os.Exit(run())
}

func run() int {
	configDir := os.Getenv("REVEAL_CONFIG_DIR")
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open settings: %v\n", err)
		return domain.ExitFailure
	}

	cli.SetVersion(version)
	cli.Configure(services.NewSettingsService(store), newServices)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx)
}

// newServices registers the built-in adapters and builds the engine.
func newServices(settings domain.Settings) (*cli.Services, error) {
	registry, err := services.NewAdapterRegistry(connectors.Builtins(settings)...)
	if err != nil {
		return nil, fmt.Errorf("register adapters: %w", err)
	}

	query := services.NewQueryService(registry, settings.QueryTimeout, settings.DefaultBudget)
	return &cli.Services{
		Query:   query,
		Batch:   services.NewBatchService(query, settings.BatchWorkers),
		Schemes: registry,
	}, nil
}
