package services

import (
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

// LookupField resolves a dotted path ("author.name", "labels.0") against an
// item. A segment that misses is retried in snake_case, so "createdAt"
// finds a "created_at" field.
func LookupField(item *domain.Object, path string) (any, bool) {
	if item == nil || path == "" {
		return nil, false
	}

	var current any = item
	for _, seg := range strings.Split(path, ".") {
		next, ok := lookupSegment(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func lookupSegment(container any, seg string) (any, bool) {
	switch c := container.(type) {
	case *domain.Object:
		if v, ok := c.Get(seg); ok {
			return v, true
		}
		if snake := strcase.ToSnake(seg); snake != seg {
			return c.Get(snake)
		}
	case map[string]any:
		if v, ok := c[seg]; ok {
			return v, true
		}
		if snake := strcase.ToSnake(seg); snake != seg {
			v, ok := c[snake]
			return v, ok
		}
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	}
	return nil, false
}
