package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

func newTestQueryService(t *testing.T, adapters ...*mockAdapter) *QueryService {
	t.Helper()
	registry, err := NewAdapterRegistry()
	require.NoError(t, err)
	for _, a := range adapters {
		require.NoError(t, registry.Register(a))
	}
	return NewQueryService(registry, time.Second, domain.BudgetSpec{})
}

func TestQueryService_FilterSortLimit(t *testing.T) {
	adapter := newMockAdapter("mock")
	adapter.result = domain.SequenceResult([]*domain.Object{
		item("name", "a", "n", 5),
		item("name", "b", "n", 50),
		item("name", "c", "n", 20),
	})
	svc := newTestQueryService(t, adapter)

	env, err := svc.Query(context.Background(), "mock://r?n>10&sort=-n&limit=1")

	require.NoError(t, err)
	assert.Nil(t, env.Meta)
	out, err := env.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"items":[{"name":"b","n":50}]}`, string(out))
}

func TestQueryService_MaxItemsTruncation(t *testing.T) {
	adapter := newMockAdapter("mock")
	adapter.result = domain.SequenceResult(numberedItems(150))
	svc := newTestQueryService(t, adapter)

	env, err := svc.Query(context.Background(), "mock://r?max-items=50")

	require.NoError(t, err)
	assert.Len(t, env.Result.Items, 50)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 150, env.Meta.TotalAvailable)
	assert.Equal(t, 50, env.Meta.Returned)
	assert.Equal(t, domain.ReasonMaxItems, env.Meta.Reason)
	assert.Equal(t, "offset=50", env.Meta.NextCursor)
}

func TestQueryService_CursorFollowsOffset(t *testing.T) {
	adapter := newMockAdapter("mock")
	adapter.result = domain.SequenceResult(numberedItems(150))
	svc := newTestQueryService(t, adapter)

	env, err := svc.Query(context.Background(), "mock://r?offset=50&max-items=50")

	require.NoError(t, err)
	assert.Equal(t, "item-050", names(env.Result.Items)[0])
	assert.Equal(t, 100, env.Meta.TotalAvailable)
	assert.Equal(t, "offset=100", env.Meta.NextCursor)
}

func TestQueryService_DefaultBudget(t *testing.T) {
	adapter := newMockAdapter("mock")
	adapter.result = domain.SequenceResult(numberedItems(10))
	registry, err := NewAdapterRegistry(adapter)
	require.NoError(t, err)
	svc := NewQueryService(registry, 0, domain.BudgetSpec{MaxItems: domain.IntPtr(4)})

	env, err := svc.Query(context.Background(), "mock://r")
	require.NoError(t, err)
	assert.Len(t, env.Result.Items, 4)

	// The locator overrides the default.
	env, err = svc.Query(context.Background(), "mock://r?max-items=8")
	require.NoError(t, err)
	assert.Len(t, env.Result.Items, 8)
}

func TestQueryService_ElementDispatch(t *testing.T) {
	adapter := newMockAdapter("ssl")
	adapter.elements = map[string]domain.AdapterResult{
		"san": domain.SequenceResult([]*domain.Object{item("name", "example.com")}),
	}
	svc := newTestQueryService(t, adapter)

	env, err := svc.Query(context.Background(), "ssl://example.com/san")

	require.NoError(t, err)
	assert.Equal(t, []string{"san"}, adapter.elementCalls)
	assert.Empty(t, adapter.structureCalls)
	assert.Equal(t, []string{"example.com"}, names(env.Result.Items))
}

func TestQueryService_ElementNotFound(t *testing.T) {
	adapter := newMockAdapter("ssl")
	svc := newTestQueryService(t, adapter)

	_, err := svc.Query(context.Background(), "ssl://example.com/nope")

	assert.ErrorIs(t, err, domain.ErrElementNotFound)
	assert.Equal(t, domain.ExitFailure, domain.ClassifyError("", err).ExitCode)
}

func TestQueryService_ElementWithoutElementSupportUsesStructure(t *testing.T) {
	adapter := newMockAdapter("file")
	adapter.caps.Element = false
	svc := newTestQueryService(t, adapter)

	_, err := svc.Query(context.Background(), "file:///etc/hosts")

	require.NoError(t, err)
	require.Len(t, adapter.structureCalls, 1)
	assert.Equal(t, "/etc/hosts", adapter.structureCalls[0].Path())
}

func TestQueryService_UnknownSchemeMakesNoCalls(t *testing.T) {
	adapter := newMockAdapter("ssl")
	svc := newTestQueryService(t, adapter)

	_, err := svc.Query(context.Background(), "foo://bar")

	var unknown *domain.UnknownSchemeError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, domain.ExitUsage, domain.ClassifyError("foo://bar", err).ExitCode)
	assert.Zero(t, adapter.totalCalls())
}

func TestQueryService_MalformedLocator(t *testing.T) {
	svc := newTestQueryService(t)

	_, err := svc.Query(context.Background(), "no-scheme-here")

	assert.ErrorIs(t, err, domain.ErrMalformedLocator)
}

func TestQueryService_InvalidControlFailsBeforeAdapter(t *testing.T) {
	adapter := newMockAdapter("mock")
	svc := newTestQueryService(t, adapter)

	for _, q := range []string{"limit=-1", "max-depth=0", "x[glob]=y"} {
		_, err := svc.Query(context.Background(), "mock://r?"+q)
		require.Error(t, err, q)
		assert.Equal(t, domain.ExitUsage, domain.ClassifyError("", err).ExitCode, q)
	}
	assert.Zero(t, adapter.totalCalls())
}

func TestQueryService_InvalidRegexMatchesNothing(t *testing.T) {
	adapter := newMockAdapter("mock")
	adapter.result = domain.SequenceResult([]*domain.Object{item("name", "(unclosed")})
	svc := newTestQueryService(t, adapter)

	env, err := svc.Query(context.Background(), "mock://r?name~=(unclosed")

	require.NoError(t, err)
	assert.Empty(t, env.Result.Items)
}

func TestQueryService_FiltersOnSingleObject(t *testing.T) {
	adapter := newMockAdapter("ssl")
	adapter.result = domain.SingleResult(item("subject", "CN=example.com"))
	svc := newTestQueryService(t, adapter)

	_, err := svc.Query(context.Background(), "ssl://example.com?subject=x")
	assert.ErrorIs(t, err, domain.ErrFilterNotApplicable)

	// Projection and budgets still apply to single objects.
	env, err := svc.Query(context.Background(), "ssl://example.com?fields=subject&max-snippet-chars=2")
	require.NoError(t, err)
	out, err := env.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"subject":"CN…"}`, string(out))
}

func TestQueryService_AdapterError(t *testing.T) {
	adapter := newMockAdapter("mock")
	adapter.structureErr = errors.New("connection refused")
	svc := newTestQueryService(t, adapter)

	_, err := svc.Query(context.Background(), "mock://r")

	var execErr *domain.AdapterExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.False(t, execErr.Timeout)
	assert.Equal(t, "mock", execErr.Scheme)
	assert.Equal(t, domain.KindAdapterError, domain.ClassifyError("", err).Kind)
}

func TestQueryService_Timeout(t *testing.T) {
	adapter := newMockAdapter("mock")
	adapter.block = true
	registry, err := NewAdapterRegistry(adapter)
	require.NoError(t, err)
	svc := NewQueryService(registry, 20*time.Millisecond, domain.BudgetSpec{})

	_, err = svc.Query(context.Background(), "mock://r")

	var execErr *domain.AdapterExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.True(t, execErr.Timeout)
	assert.Equal(t, domain.KindTimeout, domain.ClassifyError("", err).Kind)
}

func TestQueryService_ElementDiscovery(t *testing.T) {
	adapter := newMockAdapter("github")
	adapter.caps.AvailableElements = true
	adapter.result = domain.SingleResult(item("name", "repo"))
	adapter.listed = []domain.ElementInfo{{Name: "commits"}, {Name: "issues"}}
	svc := newTestQueryService(t, adapter)

	env, err := svc.Query(context.Background(), "github://owner")
	require.NoError(t, err)
	assert.Len(t, env.AvailableElements, 2)

	out, err := env.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"name":"repo","availableElements":[{"name":"commits"},{"name":"issues"}]}`, string(out))
}

func TestQueryService_ElementDiscoveryFailureIgnored(t *testing.T) {
	adapter := newMockAdapter("github")
	adapter.caps.AvailableElements = true
	adapter.result = domain.SingleResult(item("name", "repo"))
	adapter.listErr = fmt.Errorf("rate limited")
	svc := newTestQueryService(t, adapter)

	env, err := svc.Query(context.Background(), "github://owner")

	require.NoError(t, err)
	assert.Empty(t, env.AvailableElements)
}

func TestQueryService_NoDiscoveryWhenElementAddressed(t *testing.T) {
	adapter := newMockAdapter("github")
	adapter.caps.AvailableElements = true
	adapter.elements = map[string]domain.AdapterResult{"commits": domain.SequenceResult(nil)}
	svc := newTestQueryService(t, adapter)

	_, err := svc.Query(context.Background(), "github://owner/commits")

	require.NoError(t, err)
	assert.Zero(t, adapter.listCalls)
}

func TestQueryService_ProjectionAfterSort(t *testing.T) {
	adapter := newMockAdapter("mock")
	adapter.result = domain.SequenceResult([]*domain.Object{
		item("name", "a", "n", 2),
		item("name", "b", "n", 1),
	})
	svc := newTestQueryService(t, adapter)

	env, err := svc.Query(context.Background(), "mock://r?sort=n&fields=name")

	require.NoError(t, err)
	out, err := env.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"items":[{"name":"b"},{"name":"a"}]}`, string(out))
}
