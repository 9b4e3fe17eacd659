package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driving"
)

// Ensure AdapterRegistry implements both the dispatch and listing ports.
var (
	_ driven.AdapterRegistry  = (*AdapterRegistry)(nil)
	_ driving.SchemeRegistry = (*AdapterRegistry)(nil)
)

// AdapterRegistry maps locator schemes to adapters.
type AdapterRegistry struct {
	mu       sync.RWMutex
	adapters map[string]driven.Adapter
}

// NewAdapterRegistry creates a registry holding the given adapters.
// Two adapters claiming one scheme is an error.
func NewAdapterRegistry(adapters ...driven.Adapter) (*AdapterRegistry, error) {
	r := &AdapterRegistry{adapters: make(map[string]driven.Adapter)}
	for _, a := range adapters {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an adapter under its scheme.
func (r *AdapterRegistry) Register(adapter driven.Adapter) error {
	scheme := strings.ToLower(adapter.Scheme())
	if scheme == "" {
		return fmt.Errorf("%w: adapter has an empty scheme", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[scheme]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateScheme, scheme)
	}
	r.adapters[scheme] = adapter
	return nil
}

// Get returns the adapter for a scheme.
func (r *AdapterRegistry) Get(scheme string) (driven.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[strings.ToLower(scheme)]
	if !ok {
		return nil, &domain.UnknownSchemeError{Scheme: scheme}
	}
	return adapter, nil
}

// List returns every adapter's capabilities, sorted by scheme.
func (r *AdapterRegistry) List() []domain.Capabilities {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps := make([]domain.Capabilities, 0, len(r.adapters))
	for _, a := range r.adapters {
		caps = append(caps, a.DescribeCapabilities())
	}
	sort.Slice(caps, func(i, j int) bool {
		return caps[i].Scheme < caps[j].Scheme
	})
	return caps
}

// Describe returns the capabilities of one scheme.
func (r *AdapterRegistry) Describe(scheme string) (*domain.Capabilities, error) {
	adapter, err := r.Get(scheme)
	if err != nil {
		return nil, err
	}
	caps := adapter.DescribeCapabilities()
	return &caps, nil
}
