package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockAdapter implements driven.Adapter for testing.
type mockAdapter struct {
	mu sync.Mutex

	scheme   string
	caps     domain.Capabilities
	result   domain.AdapterResult
	elements map[string]domain.AdapterResult
	listed   []domain.ElementInfo

	structureErr error
	elementErr   error
	listErr      error

	// block makes resolve calls wait for context cancellation.
	block bool

	structureCalls []domain.Locator
	elementCalls   []string
	listCalls      int
}

var _ driven.Adapter = (*mockAdapter)(nil)

func newMockAdapter(scheme string) *mockAdapter {
	return &mockAdapter{
		scheme: scheme,
		caps: domain.Capabilities{
			Scheme:    scheme,
			Structure: true,
			Element:   true,
		},
		result: domain.SequenceResult(nil),
	}
}

func (m *mockAdapter) Scheme() string {
	return m.scheme
}

func (m *mockAdapter) ResolveStructure(ctx context.Context, loc domain.Locator) (domain.AdapterResult, error) {
	m.mu.Lock()
	m.structureCalls = append(m.structureCalls, loc)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return domain.AdapterResult{}, ctx.Err()
	}
	if m.structureErr != nil {
		return domain.AdapterResult{}, m.structureErr
	}
	return m.result, nil
}

func (m *mockAdapter) ResolveElement(ctx context.Context, _ domain.Locator, name string) (*domain.AdapterResult, error) {
	m.mu.Lock()
	m.elementCalls = append(m.elementCalls, name)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.elementErr != nil {
		return nil, m.elementErr
	}
	res, ok := m.elements[name]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (m *mockAdapter) DescribeCapabilities() domain.Capabilities {
	return m.caps
}

func (m *mockAdapter) ListAvailableElements(_ context.Context, _ domain.Locator) ([]domain.ElementInfo, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listed, nil
}

func (m *mockAdapter) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.structureCalls) + len(m.elementCalls) + m.listCalls
}

// mockResolvingAdapter adds an extension operator and tuned options.
type mockResolvingAdapter struct {
	*mockAdapter
	opts      domain.ComparisonOptions
	resolveFn func(cond domain.FilterCondition, item *domain.Object) (bool, bool, error)
}

var (
	_ driven.FilterResolver  = (*mockResolvingAdapter)(nil)
	_ driven.OptionsProvider = (*mockResolvingAdapter)(nil)
)

func (m *mockResolvingAdapter) ComparisonOptions(_ string) domain.ComparisonOptions {
	return m.opts
}

func (m *mockResolvingAdapter) ResolveFilter(cond domain.FilterCondition, item *domain.Object) (bool, bool, error) {
	if m.resolveFn == nil {
		return false, false, nil
	}
	return m.resolveFn(cond, item)
}

// mockQueryService implements driving.QueryService for batch tests.
type mockQueryService struct {
	fn func(ctx context.Context, raw string) (*domain.Envelope, error)
}

func (m *mockQueryService) Query(ctx context.Context, raw string) (*domain.Envelope, error) {
	return m.fn(ctx, raw)
}

// item builds an object from alternating keys and values.
func item(kv ...any) *domain.Object {
	obj := domain.NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		obj.Set(kv[i].(string), kv[i+1])
	}
	return obj
}

func names(items []*domain.Object) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		v, _ := it.Get("name")
		s, _ := v.(string)
		out = append(out, s)
	}
	return out
}

func mustLocator(raw string) domain.Locator {
	loc, err := domain.ParseLocator(raw)
	if err != nil {
		panic(err)
	}
	return loc
}
