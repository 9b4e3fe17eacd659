package services

import (
	"strings"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

// ParseFields reads the comma-separated fields projection.
// Nil means no projection.
func ParseFields(loc domain.Locator) []string {
	p, ok := loc.Param(domain.KeyFields)
	if !ok {
		return nil
	}

	var fields []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(p.Value, ",") {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		fields = append(fields, f)
	}
	return fields
}

// Project keeps only the requested dotted paths, in requested order.
// Paths that resolve to nothing are omitted. Projection is idempotent.
func Project(result domain.AdapterResult, fields []string) domain.AdapterResult {
	if len(fields) == 0 {
		return result
	}

	if !result.IsSequence() {
		return domain.SingleResult(projectObject(result.Object, fields))
	}

	items := make([]*domain.Object, len(result.Items))
	for i, item := range result.Items {
		items[i] = projectObject(item, fields)
	}
	return domain.SequenceResult(items)
}

func projectObject(item *domain.Object, fields []string) *domain.Object {
	out := domain.NewObject()
	// Objects created here; anything else came from the adapter and is shared.
	owned := map[*domain.Object]bool{out: true}

	for _, path := range fields {
		value, ok := LookupField(item, path)
		if !ok {
			continue
		}
		setPath(out, strings.Split(path, "."), value, owned)
	}
	return out
}

func setPath(dst *domain.Object, segs []string, value any, owned map[*domain.Object]bool) {
	current := dst
	for _, seg := range segs[:len(segs)-1] {
		existing, ok := current.Get(seg)
		if !ok {
			child := domain.NewObject()
			owned[child] = true
			current.Set(seg, child)
			current = child
			continue
		}
		child, isObj := existing.(*domain.Object)
		if !isObj || !owned[child] {
			// A parent path was projected whole and already contains this value.
			return
		}
		current = child
	}
	current.Set(segs[len(segs)-1], value)
}
