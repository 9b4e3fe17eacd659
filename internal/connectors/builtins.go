package connectors

import (
	"github.com/custodia-labs/reveal-cli/internal/connectors/document"
	"github.com/custodia-labs/reveal-cli/internal/connectors/env"
	"github.com/custodia-labs/reveal-cli/internal/connectors/github"
	"github.com/custodia-labs/reveal-cli/internal/connectors/markdown"
	"github.com/custodia-labs/reveal-cli/internal/connectors/nmap"
	"github.com/custodia-labs/reveal-cli/internal/connectors/sqlite"
	"github.com/custodia-labs/reveal-cli/internal/connectors/ssl"
	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
)

// Builtins returns one instance of every built-in adapter, configured
// from settings. The result is passed to services.NewAdapterRegistry.
func Builtins(settings domain.Settings) []driven.Adapter {
	adapters := []driven.Adapter{
		env.New(),
		sqlite.New(settings.SQLiteMaxRows),
		ssl.New(settings.SSLTimeout),
		github.New(settings.GitHub),
		markdown.New(),
		nmap.New(settings.NmapPorts),
	}
	for _, doc := range document.All() {
		adapters = append(adapters, doc)
	}
	return adapters
}
