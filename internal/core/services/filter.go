package services

import (
	"strings"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
)

type operatorToken struct {
	token string
	op    domain.OperatorKind
}

// Two-character operators are tried before one-character ones at each
// position, so "a>=1" is ge rather than gt with operand "=1".
var (
	twoCharOperators = []operatorToken{
		{">=", domain.OpGe},
		{"<=", domain.OpLe},
		{"!=", domain.OpNe},
		{"~=", domain.OpRegex},
	}
	oneCharOperators = []operatorToken{
		{">", domain.OpGt},
		{"<", domain.OpLt},
		{"=", domain.OpEq},
	}
)

// ParseFilters turns a locator's non-reserved query parameters into filter
// conditions. Operators the adapter does not declare fail the whole query.
func ParseFilters(loc domain.Locator, caps domain.Capabilities) ([]domain.FilterCondition, error) {
	var conds []domain.FilterCondition

	for _, p := range loc.Query {
		if domain.IsReservedKey(p.Key) {
			continue
		}

		cond, err := parseCondition(loc.Raw, p.Raw())
		if err != nil {
			return nil, err
		}
		if !caps.SupportsOperator(cond.Operator) {
			return nil, &domain.UnsupportedOperatorError{Field: cond.Field, Operator: cond.Operator}
		}
		conds = append(conds, cond)
	}

	return conds, nil
}

// parseCondition scans a "field<op>operand" expression. The leftmost operator
// wins. "field[name]=operand" spells an operator by name, and a bare field
// with no operator becomes a flag condition.
func parseCondition(locator, expr string) (domain.FilterCondition, error) {
	for i := 0; i < len(expr); i++ {
		if expr[i] == '[' {
			if end := strings.Index(expr[i:], "]="); end > 1 {
				return newCondition(locator, expr[:i], domain.OperatorKind(strings.ToLower(expr[i+1:i+end])), expr[i+end+2:])
			}
		}
		for _, t := range twoCharOperators {
			if strings.HasPrefix(expr[i:], t.token) {
				return newCondition(locator, expr[:i], t.op, expr[i+len(t.token):])
			}
		}
		for _, t := range oneCharOperators {
			if expr[i] == t.token[0] {
				return newCondition(locator, expr[:i], t.op, expr[i+1:])
			}
		}
	}

	return newCondition(locator, expr, domain.OpFlag, "")
}

func newCondition(locator, field string, op domain.OperatorKind, operand string) (domain.FilterCondition, error) {
	if field == "" {
		return domain.FilterCondition{}, &domain.LocatorError{
			Locator: locator,
			Reason:  "filter has no field name",
		}
	}
	if op == "" {
		return domain.FilterCondition{}, &domain.LocatorError{
			Locator: locator,
			Reason:  "empty operator name on field \"" + field + "\"",
		}
	}
	return domain.FilterCondition{Field: field, Operator: op, Operand: operand}, nil
}

// FilterItems keeps the items that satisfy every condition (logical AND).
// The adapter may resolve conditions itself via driven.FilterResolver and
// tune comparisons via driven.OptionsProvider.
func FilterItems(
	items []*domain.Object,
	conds []domain.FilterCondition,
	adapter driven.Adapter,
	cmp *Comparator,
) ([]*domain.Object, error) {
	if len(conds) == 0 {
		return items, nil
	}

	resolver, _ := adapter.(driven.FilterResolver)
	provider, _ := adapter.(driven.OptionsProvider)

	kept := make([]*domain.Object, 0, len(items))
	for _, item := range items {
		ok, err := matchAll(item, conds, resolver, provider, cmp)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

func matchAll(
	item *domain.Object,
	conds []domain.FilterCondition,
	resolver driven.FilterResolver,
	provider driven.OptionsProvider,
	cmp *Comparator,
) (bool, error) {
	for _, cond := range conds {
		if resolver != nil {
			matched, handled, err := resolver.ResolveFilter(cond, item)
			if err != nil {
				return false, err
			}
			if handled {
				if !matched {
					return false, nil
				}
				continue
			}
		}

		value, found := LookupField(item, cond.Field)

		if cond.Operator == domain.OpFlag {
			if !found || !Truthy(value) {
				return false, nil
			}
			continue
		}

		opts := domain.DefaultComparisonOptions()
		if provider != nil {
			opts = provider.ComparisonOptions(cond.Field)
		}

		matched, err := cmp.Compare(value, cond.Operator, cond.Operand, opts)
		if err != nil {
			// The comparator only fails on operators it does not evaluate.
			return false, &domain.UnsupportedOperatorError{Field: cond.Field, Operator: cond.Operator}
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}
