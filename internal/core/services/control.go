package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

// ParseResultControl reads sort, limit and offset from the locator.
func ParseResultControl(loc domain.Locator) (domain.ResultControl, error) {
	var ctl domain.ResultControl

	if p, ok := loc.Param(domain.KeySort); ok {
		field := p.Value
		if strings.HasPrefix(field, "-") {
			ctl.Descending = true
			field = field[1:]
		}
		if !p.HasValue || field == "" {
			return ctl, &domain.LocatorError{Locator: loc.Raw, Reason: "sort requires a field name"}
		}
		ctl.SortField = field
	}

	if p, ok := loc.Param(domain.KeyLimit); ok {
		n, err := parseNonNegative(loc, p)
		if err != nil {
			return ctl, err
		}
		ctl.Limit = &n
	}

	if p, ok := loc.Param(domain.KeyOffset); ok {
		n, err := parseNonNegative(loc, p)
		if err != nil {
			return ctl, err
		}
		ctl.Offset = n
	}

	return ctl, nil
}

// parseNonNegative reads an integer control value that must be >= 0.
func parseNonNegative(loc domain.Locator, p domain.QueryParam) (int, error) {
	return parseAtLeast(loc, p, 0)
}

func parseAtLeast(loc domain.Locator, p domain.QueryParam, min int) (int, error) {
	if !p.HasValue {
		return 0, &domain.LocatorError{Locator: loc.Raw, Reason: p.Key + " requires a value"}
	}
	n, err := strconv.Atoi(strings.TrimSpace(p.Value))
	if err != nil {
		return 0, &domain.LocatorError{
			Locator: loc.Raw,
			Reason:  fmt.Sprintf("%s must be an integer, got %q", p.Key, p.Value),
		}
	}
	if n < min {
		return 0, &domain.LocatorError{
			Locator: loc.Raw,
			Reason:  fmt.Sprintf("%s must be >= %d, got %d", p.Key, min, n),
		}
	}
	return n, nil
}

// ApplyResultControl sorts, then skips Offset items, then keeps Limit items.
// The sort is stable. Items missing the sort field go last in both
// directions.
func ApplyResultControl(items []*domain.Object, ctl domain.ResultControl) []*domain.Object {
	out := make([]*domain.Object, len(items))
	copy(out, items)

	if ctl.HasSort() {
		sort.SliceStable(out, func(i, j int) bool {
			a, aok := sortKey(out[i], ctl.SortField)
			b, bok := sortKey(out[j], ctl.SortField)
			switch {
			case !aok:
				return false
			case !bok:
				return true
			}
			c := compareSortKeys(a, b)
			if ctl.Descending {
				return c > 0
			}
			return c < 0
		})
	}

	if ctl.Offset >= len(out) {
		return []*domain.Object{}
	}
	out = out[ctl.Offset:]

	if ctl.Limit != nil && *ctl.Limit < len(out) {
		out = out[:*ctl.Limit]
	}
	return out
}

func sortKey(item *domain.Object, field string) (any, bool) {
	v, ok := LookupField(item, field)
	if !ok || isAbsent(v) {
		return nil, false
	}
	return v, true
}

// compareSortKeys orders numerically when both keys are numbers and
// case-insensitively as strings otherwise.
func compareSortKeys(a, b any) int {
	an, aok := toNumber(a)
	bn, bok := toNumber(b)
	if aok && bok {
		return compareFloats(an, bn)
	}
	return compareStrings(stringify(a), stringify(b), false)
}
