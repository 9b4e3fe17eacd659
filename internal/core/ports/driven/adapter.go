package driven

import (
	"context"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

// Adapter translates a locator into domain data for one resource kind.
// Each scheme (ssl, sqlite, github, etc.) implements this interface.
//
// Adapters only produce raw results. Filtering, sorting, pagination,
// projection and budgets are applied by the query service.
type Adapter interface {
	// Scheme returns the locator scheme this adapter serves.
	Scheme() string

	// ResolveStructure returns the resource's primary view.
	ResolveStructure(ctx context.Context, loc domain.Locator) (domain.AdapterResult, error)

	// ResolveElement returns the named sub-resource.
	// A nil result with a nil error means the element does not exist.
	ResolveElement(ctx context.Context, loc domain.Locator, name string) (*domain.AdapterResult, error)

	// DescribeCapabilities returns the adapter's descriptor.
	DescribeCapabilities() domain.Capabilities

	// ListAvailableElements enumerates addressable elements.
	// Adapters with free-form element names return an empty list.
	ListAvailableElements(ctx context.Context, loc domain.Locator) ([]domain.ElementInfo, error)
}

// OptionsProvider is implemented by adapters that tune comparisons per field.
// Adapters without it get domain.DefaultComparisonOptions.
type OptionsProvider interface {
	ComparisonOptions(field string) domain.ComparisonOptions
}

// FilterResolver is implemented by adapters that evaluate some conditions
// themselves: extension operators, or a custom meaning for flag filters.
type FilterResolver interface {
	// ResolveFilter evaluates cond against item.
	// handled is false when the adapter defers to the comparison engine.
	ResolveFilter(cond domain.FilterCondition, item *domain.Object) (matched, handled bool, err error)
}

// LocatorNormalizer is implemented by adapters whose element continues a
// hierarchical path (file-backed schemes). NormalizeLocator re-splits the
// locator so Resource names the resource and Element only what lies inside
// it. It runs before dispatch; errors are adapter failures.
type LocatorNormalizer interface {
	NormalizeLocator(loc domain.Locator) (domain.Locator, error)
}
