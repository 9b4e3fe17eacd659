package domain

import (
	"net/url"
	"strings"
)

// schemeSeparator splits the scheme from the rest of a locator.
const schemeSeparator = "://"

// QueryParam is one key/value pair from a locator's query string.
type QueryParam struct {
	// Key is the percent-decoded text before the first '='.
	Key string

	// Value is the percent-decoded text after the first '='.
	// Empty when HasValue is false.
	Value string

	// HasValue is false for bare keys ("?verbose"), which are flags.
	HasValue bool
}

// Raw reassembles the pair as it appeared in the query string.
func (p QueryParam) Raw() string {
	if !p.HasValue {
		return p.Key
	}
	return p.Key + "=" + p.Value
}

// Locator is a parsed scheme://resource[/element][?query] string.
// A Locator is immutable once returned from ParseLocator.
type Locator struct {
	// Scheme selects the adapter. Always non-empty and lowercase.
	Scheme string

	// Resource is the resource root (host, file path prefix, etc).
	Resource string

	// Element is everything after the first '/' following the resource root.
	// Empty when no element was given.
	Element string

	// Query holds the query parameters in their original order.
	Query []QueryParam

	// Raw is the input string.
	Raw string
}

// ParseLocator parses a raw locator string.
// The parser never interprets the element; adapters decide whether it names
// a sub-resource or continues a hierarchical path.
func ParseLocator(raw string) (Locator, error) {
	idx := strings.Index(raw, schemeSeparator)
	if idx < 0 {
		return Locator{}, &LocatorError{Locator: raw, Reason: "missing \"://\" separator"}
	}

	scheme := strings.TrimSpace(raw[:idx])
	if scheme == "" {
		return Locator{}, &LocatorError{Locator: raw, Reason: "empty scheme"}
	}

	loc := Locator{
		Scheme: strings.ToLower(scheme),
		Raw:    raw,
	}

	rest := raw[idx+len(schemeSeparator):]
	path, query, hasQuery := strings.Cut(rest, "?")

	loc.Resource, loc.Element = splitResourcePath(path)

	if hasQuery {
		params, err := parseQuery(raw, query)
		if err != nil {
			return Locator{}, err
		}
		loc.Query = params
	}

	return loc, nil
}

// splitResourcePath splits "host/elem/sub" into ("host", "elem/sub").
// Leading slashes belong to the resource so absolute paths keep their root.
func splitResourcePath(path string) (string, string) {
	start := 0
	for start < len(path) && path[start] == '/' {
		start++
	}
	slash := strings.IndexByte(path[start:], '/')
	if slash < 0 {
		return path, ""
	}
	cut := start + slash
	return path[:cut], path[cut+1:]
}

// unescape percent-decodes s. A '%' that does not start a valid escape is
// kept as literal text, so values such as "50%" or the regex "^a%b" parse.
func unescape(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}

func parseQuery(raw, query string) ([]QueryParam, error) {
	var params []QueryParam
	seen := make(map[string]bool)

	for _, piece := range strings.Split(query, "&") {
		if piece == "" {
			continue
		}

		rawKey, rawValue, hasValue := strings.Cut(piece, "=")

		key, value := unescape(rawKey), unescape(rawValue)

		if key == "" {
			return nil, &LocatorError{Locator: raw, Reason: "empty query key in " + quote(piece)}
		}
		if seen[key] {
			return nil, &LocatorError{Locator: raw, Reason: "duplicate query key " + quote(key)}
		}
		seen[key] = true

		params = append(params, QueryParam{Key: key, Value: value, HasValue: hasValue})
	}

	return params, nil
}

// Path rejoins resource and element. File-backed adapters use it to recover
// the full hierarchical path.
func (l Locator) Path() string {
	if l.Element == "" {
		return l.Resource
	}
	return l.Resource + "/" + l.Element
}

// HasElement reports whether an element was addressed.
func (l Locator) HasElement() bool {
	return l.Element != ""
}

// Param returns the query parameter with the given key.
func (l Locator) Param(key string) (QueryParam, bool) {
	for _, p := range l.Query {
		if p.Key == key {
			return p, true
		}
	}
	return QueryParam{}, false
}

// WithElement returns a copy of the locator addressing another element.
func (l Locator) WithElement(element string) Locator {
	l.Element = element
	l.Query = append([]QueryParam(nil), l.Query...)
	return l
}

// String renders the locator in canonical form.
func (l Locator) String() string {
	var b strings.Builder
	b.WriteString(l.Scheme)
	b.WriteString(schemeSeparator)
	b.WriteString(l.Path())
	for i, p := range l.Query {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p.Raw())
	}
	return b.String()
}

func quote(s string) string {
	return "\"" + s + "\""
}
