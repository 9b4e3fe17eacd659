package services

import (
	"fmt"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

// ParseBudget reads the budget keys from the locator.
// Item and byte ceilings accept zero; depth and snippet length must be positive.
func ParseBudget(loc domain.Locator) (domain.BudgetSpec, error) {
	var spec domain.BudgetSpec

	fields := []struct {
		key    string
		min    int
		target **int
	}{
		{domain.KeyMaxItems, 0, &spec.MaxItems},
		{domain.KeyMaxBytes, 0, &spec.MaxBytes},
		{domain.KeyMaxDepth, 1, &spec.MaxDepth},
		{domain.KeyMaxSnippetChars, 1, &spec.MaxSnippetChars},
	}

	for _, f := range fields {
		p, ok := loc.Param(f.key)
		if !ok {
			continue
		}
		n, err := parseAtLeast(loc, p, f.min)
		if err != nil {
			return domain.BudgetSpec{}, err
		}
		*f.target = &n
	}

	return spec, nil
}

// EnforceBudget shapes values and then trims items to the item and byte
// ceilings. baseOffset is the offset already applied, so the continuation
// cursor points past the returned items. Meta is nil when nothing was cut.
func EnforceBudget(result domain.AdapterResult, spec domain.BudgetSpec, baseOffset int) (domain.AdapterResult, *domain.TruncationMeta, error) {
	shaper := valueShaper{maxDepth: spec.MaxDepth, maxSnippet: spec.MaxSnippetChars}

	if !result.IsSequence() {
		return domain.SingleResult(shaper.shapeItem(result.Object)), nil, nil
	}

	items := make([]*domain.Object, len(result.Items))
	for i, item := range result.Items {
		items[i] = shaper.shapeItem(item)
	}

	total := len(items)
	keep := total
	var reason domain.TruncationReason

	if spec.MaxItems != nil && *spec.MaxItems < keep {
		keep = *spec.MaxItems
		reason = domain.ReasonMaxItems
	}

	if spec.MaxBytes != nil {
		fit, err := itemsWithinBytes(items, *spec.MaxBytes)
		if err != nil {
			return domain.AdapterResult{}, nil, err
		}
		if fit < keep {
			keep = fit
			reason = domain.ReasonMaxBytes
		}
	}

	if keep == total {
		return domain.SequenceResult(items), nil, nil
	}

	meta := &domain.TruncationMeta{
		Truncated:      true,
		Reason:         reason,
		TotalAvailable: total,
		Returned:       keep,
		NextCursor:     domain.CursorFor(baseOffset + keep),
	}
	return domain.SequenceResult(items[:keep]), meta, nil
}

// itemsWithinBytes counts the leading items whose compact JSON array
// encoding stays within maxBytes.
func itemsWithinBytes(items []*domain.Object, maxBytes int) (int, error) {
	size := len("[]")
	if size > maxBytes {
		return 0, nil
	}

	for i, item := range items {
		b, err := domain.MarshalCompact(item)
		if err != nil {
			return 0, fmt.Errorf("measure item %d: %w", i, err)
		}
		add := len(b)
		if i > 0 {
			add++ // comma
		}
		if size+add > maxBytes {
			return i, nil
		}
		size += add
	}
	return len(items), nil
}

// valueShaper applies the depth and snippet ceilings. Items are copied;
// adapter data is never modified.
type valueShaper struct {
	maxDepth   *int
	maxSnippet *int
}

func (s valueShaper) active() bool {
	return s.maxDepth != nil || s.maxSnippet != nil
}

// shapeItem treats the item itself as depth 1.
func (s valueShaper) shapeItem(item *domain.Object) *domain.Object {
	if !s.active() || item == nil {
		return item
	}
	out := domain.NewObject()
	item.Range(func(k string, v any) bool {
		out.Set(k, s.shape(v, 2))
		return true
	})
	return out
}

func (s valueShaper) tooDeep(level int) bool {
	return s.maxDepth != nil && level > *s.maxDepth
}

func (s valueShaper) shape(v any, level int) any {
	switch val := v.(type) {
	case *domain.Object:
		if val == nil {
			return val
		}
		if s.tooDeep(level) {
			return domain.DepthMarkerObject
		}
		out := domain.NewObject()
		val.Range(func(k string, child any) bool {
			out.Set(k, s.shape(child, level+1))
			return true
		})
		return out
	case map[string]any:
		if s.tooDeep(level) {
			return domain.DepthMarkerObject
		}
		return s.shape(domain.ObjectFromMap(val), level)
	case []any:
		if s.tooDeep(level) {
			return domain.DepthMarkerList
		}
		out := make([]any, len(val))
		for i, el := range val {
			out[i] = s.shape(el, level+1)
		}
		return out
	case []string:
		if s.tooDeep(level) {
			return domain.DepthMarkerList
		}
		out := make([]any, len(val))
		for i, el := range val {
			out[i] = s.snippet(el)
		}
		return out
	case string:
		return s.snippet(val)
	}
	return v
}

// snippet cuts a string to maxSnippet runes plus a marker.
func (s valueShaper) snippet(str string) string {
	if s.maxSnippet == nil {
		return str
	}
	runes := []rune(str)
	if len(runes) <= *s.maxSnippet {
		return str
	}
	return string(runes[:*s.maxSnippet]) + domain.SnippetSuffix
}
