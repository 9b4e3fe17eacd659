// Package markdown provides the markdown:// adapter over markdown files.
//
// markdown://./README.md summarises a document; the elements headings,
// links, code and frontmatter list its parts. Links and the other element
// items also accept the glob extension operator:
//
//	markdown://./README.md/links?url[glob]=*.png
package markdown

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/custodia-labs/reveal-cli/internal/connectors/document"
	"github.com/custodia-labs/reveal-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
)

// Scheme is the locator scheme served by this adapter.
const Scheme = "markdown"

// OpGlob matches a field against a shell-style pattern.
// "*" matches any run of characters including "/", "?" one character.
const OpGlob domain.OperatorKind = "glob"

// Element names.
const (
	ElementHeadings    = "headings"
	ElementLinks       = "links"
	ElementCode        = "code"
	ElementFrontMatter = "frontmatter"
)

var elementInfos = []domain.ElementInfo{
	{Name: ElementHeadings, Description: "Headings with level, line and anchor"},
	{Name: ElementLinks, Description: "Links, images, autolinks and reference definitions"},
	{Name: ElementCode, Description: "Fenced code blocks"},
	{Name: ElementFrontMatter, Description: "YAML front matter"},
}

// Ensure Adapter implements the interfaces.
var (
	_ driven.Adapter           = (*Adapter)(nil)
	_ driven.LocatorNormalizer = (*Adapter)(nil)
	_ driven.FilterResolver    = (*Adapter)(nil)
)

// Adapter reads markdown documents.
type Adapter struct{}

// New creates a markdown adapter.
func New() *Adapter {
	return &Adapter{}
}

// Scheme returns "markdown".
func (a *Adapter) Scheme() string {
	return Scheme
}

// DescribeCapabilities returns the adapter's descriptor.
func (a *Adapter) DescribeCapabilities() domain.Capabilities {
	return domain.Capabilities{
		Scheme:            Scheme,
		Description:       "Markdown documents: headings, links, code blocks and front matter",
		Structure:         true,
		Element:           true,
		AvailableElements: true,
		Schema: []domain.FieldSchema{
			{Name: "level", Type: "int", Description: "headings: 1 to 6"},
			{Name: "text", Type: "string", Description: "headings and links"},
			{Name: "anchor", Type: "string", Description: "headings: fragment id"},
			{Name: "kind", Type: "string", Description: "links: inline, image, autolink or reference"},
			{Name: "url", Type: "string", Description: "links"},
			{Name: "external", Type: "bool", Description: "links: absolute URL"},
			{Name: "language", Type: "string", Description: "code: fence info string"},
			{Name: "line", Type: "int", Description: "1-based source line"},
		},
		Operators: []domain.OperatorKind{OpGlob},
		Examples: []string{
			"markdown://./README.md",
			"markdown://./README.md/headings?level<=2",
			"markdown://./README.md/links?external&url[glob]=*github.com*",
			"markdown://./README.md/code?language=go&fields=line,lines",
		},
	}
}

// NormalizeLocator splits the markdown file from the element.
func (a *Adapter) NormalizeLocator(loc domain.Locator) (domain.Locator, error) {
	return filesystem.Normalize(loc)
}

// ResolveStructure summarises the document.
func (a *Adapter) ResolveStructure(ctx context.Context, loc domain.Locator) (domain.AdapterResult, error) {
	doc, err := load(ctx, loc.Resource)
	if err != nil {
		return domain.AdapterResult{}, err
	}

	title := doc.Title()
	if meta, err := frontMatterObject(doc); err == nil {
		if t, ok := meta.Get("title"); ok {
			title = fmt.Sprint(t)
		}
	}

	return domain.SingleResult(domain.NewObject().
		Set("file", loc.Resource).
		Set("title", title).
		Set("headings", len(doc.Headings)).
		Set("links", len(doc.Links)).
		Set("codeBlocks", len(doc.Code)).
		Set("words", doc.Words).
		Set("frontmatter", doc.FrontMatter != nil)), nil
}

// ResolveElement lists one kind of document part.
func (a *Adapter) ResolveElement(ctx context.Context, loc domain.Locator, name string) (*domain.AdapterResult, error) {
	switch name {
	case ElementHeadings, ElementLinks, ElementCode, ElementFrontMatter:
	default:
		return nil, nil
	}

	doc, err := load(ctx, loc.Resource)
	if err != nil {
		return nil, err
	}

	var result domain.AdapterResult
	switch name {
	case ElementHeadings:
		items := make([]*domain.Object, 0, len(doc.Headings))
		for _, h := range doc.Headings {
			items = append(items, domain.NewObject().
				Set("level", h.Level).
				Set("text", h.Text).
				Set("anchor", h.Anchor).
				Set("line", h.Line))
		}
		result = domain.SequenceResult(items)
	case ElementLinks:
		items := make([]*domain.Object, 0, len(doc.Links))
		for _, l := range doc.Links {
			obj := domain.NewObject().
				Set("kind", l.Kind).
				Set("text", l.Text).
				Set("url", l.URL).
				Set("external", isExternal(l.URL)).
				Set("line", l.Line)
			if l.Title != "" {
				obj.Set("title", l.Title)
			}
			items = append(items, obj)
		}
		result = domain.SequenceResult(items)
	case ElementCode:
		items := make([]*domain.Object, 0, len(doc.Code))
		for _, c := range doc.Code {
			items = append(items, domain.NewObject().
				Set("language", c.Language).
				Set("line", c.Line).
				Set("lines", c.Lines).
				Set("content", c.Content))
		}
		result = domain.SequenceResult(items)
	case ElementFrontMatter:
		meta, err := frontMatterObject(doc)
		if err != nil {
			return nil, err
		}
		result = domain.SingleResult(meta)
	}
	return &result, nil
}

// ListAvailableElements returns the fixed element set.
func (a *Adapter) ListAvailableElements(_ context.Context, loc domain.Locator) ([]domain.ElementInfo, error) {
	out := make([]domain.ElementInfo, len(elementInfos))
	for i, e := range elementInfos {
		e.Example = Scheme + "://" + loc.Resource + "/" + e.Name
		out[i] = e
	}
	return out, nil
}

// ResolveFilter evaluates glob conditions; everything else goes to the
// comparison engine. A malformed pattern matches nothing.
func (a *Adapter) ResolveFilter(cond domain.FilterCondition, item *domain.Object) (bool, bool, error) {
	if cond.Operator != OpGlob {
		return false, false, nil
	}
	value, ok := item.Get(cond.Field)
	if !ok || value == nil {
		return false, true, nil
	}
	re, err := globRegexp(cond.Operand)
	if err != nil {
		return false, true, nil
	}
	return re.MatchString(fmt.Sprint(value)), true, nil
}

func load(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data), nil
}

func frontMatterObject(doc *Document) (*domain.Object, error) {
	if doc.FrontMatter == nil {
		return domain.NewObject(), nil
	}
	v, err := document.DecodeYAML(doc.FrontMatter)
	if err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	obj, ok := v.(*domain.Object)
	if !ok {
		return domain.NewObject(), nil
	}
	return obj, nil
}

func isExternal(url string) bool {
	lower := strings.ToLower(url)
	for _, prefix := range []string{"http://", "https://", "ftp://", "mailto:", "//"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// globRegexp compiles a case-insensitive glob. Bracket classes pass through.
func globRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?is)^")
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unclosed [ in glob %q", pattern)
			}
			class := pattern[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i += end + 1
		case '\\':
			if i+1 < len(pattern) {
				i++
				b.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
			}
		default:
			b.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
