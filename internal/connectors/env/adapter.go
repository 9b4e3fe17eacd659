// Package env provides the env:// adapter over environment variables.
//
// env:// lists the process environment and env://HOME addresses one
// variable. When the locator path names an existing file it is read as a
// dotenv file instead: env://./.env and env://./.env/DATABASE_URL.
package env

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/reveal-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
)

// Scheme is the locator scheme served by this adapter.
const Scheme = "env"

// Ensure Adapter implements the interfaces.
var (
	_ driven.Adapter           = (*Adapter)(nil)
	_ driven.LocatorNormalizer = (*Adapter)(nil)
	_ driven.OptionsProvider   = (*Adapter)(nil)
)

// sensitiveMarkers flag variable names whose values are masked.
var sensitiveMarkers = []string{
	"TOKEN", "SECRET", "PASSWORD", "PASSWD", "API_KEY", "APIKEY",
	"PRIVATE", "CREDENTIAL", "AUTH",
}

// Adapter reads the process environment or a dotenv file.
type Adapter struct {
	environ func() []string
}

// New creates an env adapter over the process environment.
func New() *Adapter {
	return &Adapter{environ: os.Environ}
}

// Scheme returns "env".
func (a *Adapter) Scheme() string {
	return Scheme
}

// DescribeCapabilities returns the adapter's descriptor.
func (a *Adapter) DescribeCapabilities() domain.Capabilities {
	return domain.Capabilities{
		Scheme:      Scheme,
		Description: "Environment variables from the process or a dotenv file",
		Structure:   true,
		Element:     true,
		Schema: []domain.FieldSchema{
			{Name: "name", Type: "string", Description: "Variable name"},
			{Name: "value", Type: "string", Description: "Value, masked when sensitive"},
			{Name: "sensitive", Type: "bool", Description: "Name looks like a credential"},
		},
		Examples: []string{
			"env://",
			"env://HOME",
			"env://?name~=^GO&fields=name,value",
			"env://./.env/DATABASE_URL",
		},
	}
}

// NormalizeLocator moves the whole path into the element unless it names a
// dotenv file, in which case the file becomes the resource.
func (a *Adapter) NormalizeLocator(loc domain.Locator) (domain.Locator, error) {
	path := loc.Path()
	if path == "" {
		return loc, nil
	}
	if file, rest, err := filesystem.Split(filesystem.ExpandHome(path)); err == nil {
		out := loc.WithElement(rest)
		out.Resource = file
		return out, nil
	}
	out := loc.WithElement(path)
	out.Resource = ""
	return out, nil
}

// ResolveStructure lists every variable sorted by name.
func (a *Adapter) ResolveStructure(ctx context.Context, loc domain.Locator) (domain.AdapterResult, error) {
	vars, err := a.load(ctx, loc)
	if err != nil {
		return domain.AdapterResult{}, err
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]*domain.Object, 0, len(names))
	for _, name := range names {
		items = append(items, variable(name, vars[name]))
	}
	return domain.SequenceResult(items), nil
}

// ResolveElement returns one variable. Names are matched exactly.
func (a *Adapter) ResolveElement(ctx context.Context, loc domain.Locator, name string) (*domain.AdapterResult, error) {
	vars, err := a.load(ctx, loc)
	if err != nil {
		return nil, err
	}
	value, ok := vars[name]
	if !ok {
		return nil, nil
	}
	result := domain.SingleResult(variable(name, value))
	return &result, nil
}

// ListAvailableElements returns nothing; variable names are free-form.
func (a *Adapter) ListAvailableElements(_ context.Context, _ domain.Locator) ([]domain.ElementInfo, error) {
	return []domain.ElementInfo{}, nil
}

// ComparisonOptions makes name comparisons case-sensitive, as variable
// names are on every platform reveal targets.
func (a *Adapter) ComparisonOptions(field string) domain.ComparisonOptions {
	opts := domain.DefaultComparisonOptions()
	if field == "name" {
		opts.CaseSensitive = true
	}
	return opts
}

func (a *Adapter) load(ctx context.Context, loc domain.Locator) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if loc.Resource != "" {
		return godotenv.Read(loc.Resource)
	}

	vars := make(map[string]string)
	for _, kv := range a.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = value
	}
	return vars, nil
}

func variable(name, value string) *domain.Object {
	sensitive := IsSensitive(name)
	if sensitive {
		value = Mask(value)
	}
	return domain.NewObject().
		Set("name", name).
		Set("value", value).
		Set("sensitive", sensitive)
}

// IsSensitive reports whether a variable name looks like a credential.
func IsSensitive(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// Mask hides a secret, keeping the last four characters of long values.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
