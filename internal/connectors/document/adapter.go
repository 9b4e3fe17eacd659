// Package document provides the json://, yaml:// and toml:// adapters.
//
// The locator path names a file; anything after the file is a path inside
// the document, one segment per key or array index:
//
//	json://./package.json/scripts
//	yaml:///etc/app/config.yaml/servers/0
package document

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/custodia-labs/reveal-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
)

// Format selects the document syntax.
type Format string

// Supported formats. Each is also the adapter's scheme.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// AllFormats returns every supported format.
func AllFormats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTOML}
}

// Ensure Adapter implements the interfaces.
var (
	_ driven.Adapter           = (*Adapter)(nil)
	_ driven.LocatorNormalizer = (*Adapter)(nil)
)

// Adapter exposes a structured document file.
type Adapter struct {
	format Format
	decode func([]byte) (any, error)
}

// New creates an adapter for the given format.
func New(format Format) (*Adapter, error) {
	a := &Adapter{format: format}
	switch format {
	case FormatJSON:
		a.decode = DecodeJSON
	case FormatYAML:
		a.decode = DecodeYAML
	case FormatTOML:
		a.decode = DecodeTOML
	default:
		return nil, fmt.Errorf("%w: document format %q", domain.ErrInvalidInput, format)
	}
	return a, nil
}

// All creates one adapter per supported format.
func All() []*Adapter {
	adapters := make([]*Adapter, 0, len(AllFormats()))
	for _, f := range AllFormats() {
		a, _ := New(f)
		adapters = append(adapters, a)
	}
	return adapters
}

// Scheme returns the format name.
func (a *Adapter) Scheme() string {
	return string(a.format)
}

// DescribeCapabilities returns the adapter's descriptor.
func (a *Adapter) DescribeCapabilities() domain.Capabilities {
	scheme := a.Scheme()
	return domain.Capabilities{
		Scheme:            scheme,
		Description:       fmt.Sprintf("%s documents; the element is a path inside the file", a.format.label()),
		Structure:         true,
		Element:           true,
		AvailableElements: true,
		Schema: []domain.FieldSchema{
			{Name: "value", Type: "any", Description: "Wraps scalar values and non-object array entries"},
		},
		Examples: []string{
			scheme + "://./config." + scheme,
			scheme + "://./config." + scheme + "/servers?port>=8000&sort=name",
			scheme + "://./config." + scheme + "/servers/0?fields=name,port",
		},
	}
}

func (f Format) label() string {
	switch f {
	case FormatJSON:
		return "JSON"
	case FormatYAML:
		return "YAML"
	case FormatTOML:
		return "TOML"
	default:
		return string(f)
	}
}

// NormalizeLocator splits the file from the in-document path.
func (a *Adapter) NormalizeLocator(loc domain.Locator) (domain.Locator, error) {
	return filesystem.Normalize(loc)
}

// ResolveStructure returns the document root.
func (a *Adapter) ResolveStructure(ctx context.Context, loc domain.Locator) (domain.AdapterResult, error) {
	root, err := a.load(ctx, loc)
	if err != nil {
		return domain.AdapterResult{}, err
	}
	return toResult(root), nil
}

// ResolveElement walks name through the document. Object segments match
// keys exactly and array segments are zero-based indexes.
func (a *Adapter) ResolveElement(ctx context.Context, loc domain.Locator, name string) (*domain.AdapterResult, error) {
	root, err := a.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	value, ok := Walk(root, filesystem.SplitElement(name))
	if !ok {
		return nil, nil
	}
	result := toResult(value)
	return &result, nil
}

// ListAvailableElements returns the root's keys, or nothing for a non-object root.
func (a *Adapter) ListAvailableElements(ctx context.Context, loc domain.Locator) ([]domain.ElementInfo, error) {
	root, err := a.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	obj, ok := root.(*domain.Object)
	if !ok {
		return []domain.ElementInfo{}, nil
	}

	elements := make([]domain.ElementInfo, 0, obj.Len())
	obj.Range(func(key string, value any) bool {
		elements = append(elements, domain.ElementInfo{
			Name:        key,
			Description: TypeName(value),
			Example:     loc.Scheme + "://" + loc.Resource + "/" + key,
		})
		return true
	})
	return elements, nil
}

func (a *Adapter) load(ctx context.Context, loc domain.Locator) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(loc.Resource)
	if err != nil {
		return nil, err
	}
	root, err := a.decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s as %s: %w", loc.Resource, a.format, err)
	}
	return root, nil
}

// Walk follows path through nested objects and arrays.
func Walk(value any, path []string) (any, bool) {
	for _, seg := range path {
		switch v := value.(type) {
		case *domain.Object:
			next, ok := v.Get(seg)
			if !ok {
				return nil, false
			}
			value = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			value = v[idx]
		default:
			return nil, false
		}
	}
	return value, true
}

// toResult maps objects to a single result and arrays to a sequence.
// Scalars and non-object array entries are wrapped under "value".
func toResult(value any) domain.AdapterResult {
	switch v := value.(type) {
	case *domain.Object:
		return domain.SingleResult(v)
	case []any:
		items := make([]*domain.Object, 0, len(v))
		for _, entry := range v {
			if obj, ok := entry.(*domain.Object); ok {
				items = append(items, obj)
				continue
			}
			items = append(items, domain.NewObject().Set("value", entry))
		}
		return domain.SequenceResult(items)
	default:
		return domain.SingleResult(domain.NewObject().Set("value", v))
	}
}

// TypeName names a decoded value's kind.
func TypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case *domain.Object:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, uint64, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}
