package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

func TestParseFilters_Operators(t *testing.T) {
	tests := []struct {
		query string
		want  domain.FilterCondition
	}{
		{"n>10", domain.FilterCondition{Field: "n", Operator: domain.OpGt, Operand: "10"}},
		{"n>=10", domain.FilterCondition{Field: "n", Operator: domain.OpGe, Operand: "10"}},
		{"n<10", domain.FilterCondition{Field: "n", Operator: domain.OpLt, Operand: "10"}},
		{"n<=10", domain.FilterCondition{Field: "n", Operator: domain.OpLe, Operand: "10"}},
		{"state!=closed", domain.FilterCondition{Field: "state", Operator: domain.OpNe, Operand: "closed"}},
		{"name~=^feat", domain.FilterCondition{Field: "name", Operator: domain.OpRegex, Operand: "^feat"}},
		{"name=alice", domain.FilterCondition{Field: "name", Operator: domain.OpEq, Operand: "alice"}},
		{"n=1..5", domain.FilterCondition{Field: "n", Operator: domain.OpEq, Operand: "1..5"}},
		{"n[range]=1..5", domain.FilterCondition{Field: "n", Operator: domain.OpRange, Operand: "1..5"}},
		{"archived", domain.FilterCondition{Field: "archived", Operator: domain.OpFlag}},
		{"expr=a=b", domain.FilterCondition{Field: "expr", Operator: domain.OpEq, Operand: "a=b"}},
		{"author.name=bob", domain.FilterCondition{Field: "author.name", Operator: domain.OpEq, Operand: "bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			loc := mustLocator("mock://r?" + tt.query)
			conds, err := ParseFilters(loc, domain.Capabilities{})
			require.NoError(t, err)
			require.Len(t, conds, 1)
			assert.Equal(t, tt.want, conds[0])
		})
	}
}

func TestParseFilters_SkipsReservedKeys(t *testing.T) {
	loc := mustLocator("mock://r?sort=-n&limit=5&offset=1&fields=a&format=json&max-items=3&n>1")

	conds, err := ParseFilters(loc, domain.Capabilities{})

	require.NoError(t, err)
	require.Len(t, conds, 1)
	assert.Equal(t, "n", conds[0].Field)
}

func TestParseFilters_PreservesOrder(t *testing.T) {
	loc := mustLocator("mock://r?b=2&a=1&c>3")

	conds, err := ParseFilters(loc, domain.Capabilities{})

	require.NoError(t, err)
	require.Len(t, conds, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{conds[0].Field, conds[1].Field, conds[2].Field})
}

func TestParseFilters_EmptyField(t *testing.T) {
	loc := mustLocator("mock://r?%3E5")

	_, err := ParseFilters(loc, domain.Capabilities{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedLocator)
}

func TestParseFilters_ExtensionOperator(t *testing.T) {
	loc := mustLocator("mock://r?href[glob]=*.md")

	_, err := ParseFilters(loc, domain.Capabilities{})
	var unsupported *domain.UnsupportedOperatorError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "href", unsupported.Field)
	assert.Equal(t, domain.OperatorKind("glob"), unsupported.Operator)

	caps := domain.Capabilities{Operators: []domain.OperatorKind{"glob"}}
	conds, err := ParseFilters(loc, caps)
	require.NoError(t, err)
	assert.Equal(t, domain.FilterCondition{Field: "href", Operator: "glob", Operand: "*.md"}, conds[0])
}

func TestFilterItems_LogicalAnd(t *testing.T) {
	items := []*domain.Object{
		item("name", "a", "n", 5, "state", "open"),
		item("name", "b", "n", 50, "state", "open"),
		item("name", "c", "n", 20, "state", "closed"),
	}
	conds := []domain.FilterCondition{
		{Field: "n", Operator: domain.OpGt, Operand: "10"},
		{Field: "state", Operator: domain.OpEq, Operand: "open"},
	}

	got, err := FilterItems(items, conds, newMockAdapter("mock"), NewComparator())

	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names(got))
}

func TestFilterItems_Flag(t *testing.T) {
	items := []*domain.Object{
		item("name", "a", "archived", true),
		item("name", "b", "archived", false),
		item("name", "c"),
	}
	conds := []domain.FilterCondition{{Field: "archived", Operator: domain.OpFlag}}

	got, err := FilterItems(items, conds, newMockAdapter("mock"), NewComparator())

	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(got))
}

func TestFilterItems_NestedAndSnakeCaseFields(t *testing.T) {
	items := []*domain.Object{
		item("name", "a", "author", item("login", "octo"), "created_at", "2024-01-01"),
		item("name", "b", "author", item("login", "bob"), "created_at", "2023-01-01"),
	}
	conds := []domain.FilterCondition{
		{Field: "author.login", Operator: domain.OpEq, Operand: "OCTO"},
		{Field: "createdAt", Operator: domain.OpGe, Operand: "2024"},
	}

	got, err := FilterItems(items, conds, newMockAdapter("mock"), NewComparator())

	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(got))
}

func TestFilterItems_AdapterResolverAndOptions(t *testing.T) {
	adapter := &mockResolvingAdapter{
		mockAdapter: newMockAdapter("mock"),
		opts:        domain.ComparisonOptions{CaseSensitive: true, CoerceNumeric: true, AllowListAny: true},
		resolveFn: func(cond domain.FilterCondition, it *domain.Object) (bool, bool, error) {
			if cond.Operator != "glob" {
				return false, false, nil
			}
			v, _ := it.Get("name")
			return v == "keep.md", true, nil
		},
	}
	items := []*domain.Object{
		item("name", "keep.md", "kind", "Doc"),
		item("name", "drop.txt", "kind", "Doc"),
		item("name", "keep.md", "kind", "doc"),
	}
	conds := []domain.FilterCondition{
		{Field: "name", Operator: "glob", Operand: "*.md"},
		{Field: "kind", Operator: domain.OpEq, Operand: "Doc"},
	}

	got, err := FilterItems(items, conds, adapter, NewComparator())

	require.NoError(t, err)
	require.Len(t, got, 1)
	kind, _ := got[0].Get("kind")
	assert.Equal(t, "Doc", kind)
}

func TestFilterItems_UnresolvedExtensionFails(t *testing.T) {
	items := []*domain.Object{item("name", "a")}
	conds := []domain.FilterCondition{{Field: "name", Operator: "glob", Operand: "*"}}

	_, err := FilterItems(items, conds, newMockAdapter("mock"), NewComparator())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperator)
}

func TestFilterItems_ResolverError(t *testing.T) {
	adapter := &mockResolvingAdapter{
		mockAdapter: newMockAdapter("mock"),
		resolveFn: func(domain.FilterCondition, *domain.Object) (bool, bool, error) {
			return false, true, errors.New("bad glob")
		},
	}

	_, err := FilterItems([]*domain.Object{item("name", "a")},
		[]domain.FilterCondition{{Field: "name", Operator: "glob", Operand: "["}}, adapter, NewComparator())

	assert.EqualError(t, err, "bad glob")
}

func TestFilterItems_NoConditions(t *testing.T) {
	items := []*domain.Object{item("name", "a")}

	got, err := FilterItems(items, nil, newMockAdapter("mock"), NewComparator())

	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestLookupField(t *testing.T) {
	obj := item(
		"name", "x",
		"author", item("display_name", "Octo"),
		"labels", []any{"bug", item("id", 7)},
		"meta", map[string]any{"size": 3},
	)

	tests := []struct {
		path  string
		want  any
		found bool
	}{
		{"name", "x", true},
		{"author.display_name", "Octo", true},
		{"author.displayName", "Octo", true},
		{"labels.0", "bug", true},
		{"labels.1.id", 7, true},
		{"labels.9", nil, false},
		{"meta.size", 3, true},
		{"missing", nil, false},
		{"name.deeper", nil, false},
		{"", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := LookupField(obj, tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
