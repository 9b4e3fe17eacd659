package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/reveal-cli/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

// printer renders engine output in one format.
type printer struct {
	out    io.Writer
	format domain.OutputFormat
	styles *styles.Styles

	// documents counts YAML documents written, for "---" separators.
	documents int
}

// newPrinter resolves auto to text on a terminal and JSON otherwise.
// Text is only coloured on a terminal.
func newPrinter(out io.Writer, format domain.OutputFormat) *printer {
	tty := isTerminal(out)
	if format == "" || format == domain.FormatAuto {
		format = domain.FormatJSON
		if tty {
			format = domain.FormatText
		}
	}

	st := styles.Plain()
	if tty {
		st = styles.DefaultStyles()
	}
	return &printer{out: out, format: format, styles: st}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Envelope renders one query result.
func (p *printer) Envelope(env *domain.Envelope) error {
	switch p.format {
	case domain.FormatText:
		return p.write(p.envelopeText(env))
	default:
		return p.structured(env.ToObject(), false)
	}
}

// Error renders one failed locator.
func (p *printer) Error(rec domain.ErrorRecord) error {
	if p.format == domain.FormatText {
		return p.write(p.errorText(rec) + "\n")
	}
	return p.structured(domain.NewObject().Set("error", errorObject(rec)), false)
}

// Record renders one batch record. Structured formats emit one compact
// JSON line or one YAML document per record.
func (p *printer) Record(rec domain.BatchRecord) error {
	if p.format != domain.FormatText {
		return p.structured(rec.ToObject(), true)
	}

	var b strings.Builder
	header := fmt.Sprintf("[%d] %s", rec.Index, rec.Locator)
	if rec.OK() {
		b.WriteString(p.styles.Success.Render("ok") + " " + p.styles.Title.Render(header) + "\n")
		b.WriteString(p.envelopeText(rec.Envelope))
	} else {
		b.WriteString(p.styles.Error.Render("failed") + " " + p.styles.Title.Render(header) + "\n")
		b.WriteString("  " + p.errorText(*rec.Error) + "\n")
	}
	b.WriteString("\n")
	return p.write(b.String())
}

// Summary renders the batch summary after every record.
func (p *printer) Summary(s domain.BatchSummary) error {
	if p.format != domain.FormatText {
		obj := domain.NewObject().Set("summary", domain.NewObject().
			Set("runId", s.RunID).
			Set("total", s.Total).
			Set("succeeded", s.Succeeded).
			Set("failed", s.Failed).
			Set("exitCode", s.ExitCode))
		return p.structured(obj, true)
	}

	status := p.styles.Success.Render(fmt.Sprintf("%d succeeded", s.Succeeded))
	if s.Failed > 0 {
		status += ", " + p.styles.Error.Render(fmt.Sprintf("%d failed", s.Failed))
	}
	return p.write(fmt.Sprintf("%s %s %s\n",
		p.styles.Title.Render(fmt.Sprintf("%d locators:", s.Total)),
		status,
		p.styles.Muted.Render("(run "+s.RunID+")")))
}

// Object renders a plain object, such as a capability descriptor.
func (p *printer) Object(obj *domain.Object) error {
	if p.format == domain.FormatText {
		var b strings.Builder
		p.objectText(&b, obj, 0)
		return p.write(b.String())
	}
	return p.structured(obj, false)
}

// Table renders rows as aligned columns in text mode and as an items list
// otherwise. Every row must carry the same keys as columns.
func (p *printer) Table(columns []string, rows []*domain.Object) error {
	if p.format != domain.FormatText {
		items := make([]any, len(rows))
		for i, row := range rows {
			items[i] = row
		}
		return p.structured(domain.NewObject().Set(domain.EnvelopeItems, items), false)
	}

	widths := make([]int, len(columns))
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(columns))
		for c, col := range columns {
			v, _ := row.Get(col)
			cells[r][c] = scalarText(v)
			widths[c] = max(widths[c], len(cells[r][c]))
		}
	}

	var b strings.Builder
	for _, line := range cells {
		for c, cell := range line {
			style := p.styles.Value
			if c == 0 {
				style = p.styles.Key
			}
			if c < len(line)-1 {
				cell += strings.Repeat(" ", widths[c]-len(cell)+2)
			}
			b.WriteString(style.Render(cell))
		}
		b.WriteString("\n")
	}
	return p.write(b.String())
}

func (p *printer) structured(obj *domain.Object, stream bool) error {
	switch p.format {
	case domain.FormatYAML:
		node, err := yamlNode(obj)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(node)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if stream && p.documents > 0 {
			data = append([]byte("---\n"), data...)
		}
		p.documents++
		return p.write(string(data))
	default:
		data, err := obj.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		if !stream {
			var indented bytes.Buffer
			if err := json.Indent(&indented, data, "", "  "); err != nil {
				return fmt.Errorf("encode json: %w", err)
			}
			data = indented.Bytes()
		}
		return p.write(string(data) + "\n")
	}
}

func (p *printer) write(s string) error {
	_, err := io.WriteString(p.out, s)
	return err
}

func (p *printer) envelopeText(env *domain.Envelope) string {
	var b strings.Builder

	if env.Result.IsSequence() {
		if len(env.Result.Items) == 0 {
			b.WriteString(p.styles.Muted.Render("no items") + "\n")
		}
		for i, item := range env.Result.Items {
			b.WriteString(p.styles.Muted.Render(fmt.Sprintf("[%d]", i)) + "\n")
			p.objectText(&b, item, 1)
		}
	} else {
		p.objectText(&b, env.Result.Object, 0)
	}

	if len(env.AvailableElements) > 0 {
		b.WriteString("\n" + p.styles.Title.Render("Elements") + "\n")
		width := 0
		for _, el := range env.AvailableElements {
			width = max(width, len(el.Name))
		}
		for _, el := range env.AvailableElements {
			line := "  " + p.styles.Key.Render(el.Name+strings.Repeat(" ", width-len(el.Name)))
			if el.Description != "" {
				line += "  " + p.styles.Value.Render(el.Description)
			}
			if el.Example != "" {
				line += "  " + p.styles.Muted.Render(el.Example)
			}
			b.WriteString(line + "\n")
		}
	}

	if env.Meta != nil {
		notice := fmt.Sprintf("truncated: %d of %d items (%s)",
			env.Meta.Returned, env.Meta.TotalAvailable, env.Meta.Reason)
		if env.Meta.NextCursor != "" {
			notice += "; continue with " + env.Meta.NextCursor
		}
		b.WriteString(p.styles.Warning.Render(notice) + "\n")
	}

	return b.String()
}

func (p *printer) errorText(rec domain.ErrorRecord) string {
	return p.styles.Error.Render("error") + " " + p.styles.Muted.Render("["+rec.Kind+"]") + " " + rec.Message
}

func (p *printer) objectText(b *strings.Builder, obj *domain.Object, indent int) {
	obj.Range(func(key string, value any) bool {
		p.fieldText(b, key, value, indent)
		return true
	})
}

func (p *printer) fieldText(b *strings.Builder, key string, value any, indent int) {
	pad := strings.Repeat("  ", indent)
	label := pad + p.styles.Key.Render(key) + ":"

	switch v := value.(type) {
	case map[string]any:
		p.fieldText(b, key, domain.ObjectFromMap(v), indent)
	case *domain.Object:
		if v.Len() == 0 {
			b.WriteString(label + " " + p.styles.Muted.Render("{}") + "\n")
			return
		}
		b.WriteString(label + "\n")
		p.objectText(b, v, indent+1)
	case []any:
		if len(v) == 0 {
			b.WriteString(label + " " + p.styles.Muted.Render("[]") + "\n")
			return
		}
		if allScalars(v) {
			parts := make([]string, len(v))
			for i, el := range v {
				parts[i] = scalarText(el)
			}
			b.WriteString(label + " " + p.styles.Value.Render(strings.Join(parts, ", ")) + "\n")
			return
		}
		b.WriteString(label + "\n")
		for i, el := range v {
			p.fieldText(b, fmt.Sprintf("[%d]", i), el, indent+1)
		}
	case nil:
		b.WriteString(label + " " + p.styles.Muted.Render("null") + "\n")
	default:
		b.WriteString(label + " " + p.styles.Value.Render(scalarText(v)) + "\n")
	}
}

func allScalars(values []any) bool {
	for _, v := range values {
		switch v.(type) {
		case *domain.Object, map[string]any, []any:
			return false
		}
	}
	return true
}

func scalarText(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func errorObject(rec domain.ErrorRecord) *domain.Object {
	return domain.NewObject().
		Set("locator", rec.Locator).
		Set("kind", rec.Kind).
		Set("message", rec.Message).
		Set("exitCode", rec.ExitCode)
}

// capabilitiesObject renders a descriptor with stable field order.
func capabilitiesObject(caps *domain.Capabilities) *domain.Object {
	schema := make([]any, len(caps.Schema))
	for i, f := range caps.Schema {
		field := domain.NewObject().Set("name", f.Name).Set("type", f.Type)
		if f.Description != "" {
			field.Set("description", f.Description)
		}
		schema[i] = field
	}

	operators := make([]any, len(caps.Operators))
	for i, op := range caps.Operators {
		operators[i] = string(op)
	}

	examples := make([]any, len(caps.Examples))
	for i, ex := range caps.Examples {
		examples[i] = ex
	}

	return domain.NewObject().
		Set("scheme", caps.Scheme).
		Set("description", caps.Description).
		Set("structure", caps.Structure).
		Set("element", caps.Element).
		Set("availableElements", caps.AvailableElements).
		Set("schema", schema).
		Set("operators", operators).
		Set("examples", examples)
}

// yamlNode converts a value into a yaml.Node tree that keeps Object key
// order.
func yamlNode(value any) (*yaml.Node, error) {
	switch v := value.(type) {
	case *domain.Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		v.Range(func(key string, item any) bool {
			var child *yaml.Node
			if child, err = yamlNode(item); err != nil {
				return false
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
			return true
		})
		return node, err
	case map[string]any:
		return yamlNode(domain.ObjectFromMap(v))
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v {
			child, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(v); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return node, nil
	}
}
