package driven

import "github.com/custodia-labs/reveal-cli/internal/core/domain"

// AdapterRegistry maps schemes to adapters.
// It is built once at startup and read-only afterwards.
type AdapterRegistry interface {
	// Get returns the adapter for scheme, or an UnknownSchemeError.
	Get(scheme string) (Adapter, error)

	// List returns every adapter's capabilities, sorted by scheme.
	List() []domain.Capabilities
}
