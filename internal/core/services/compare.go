package services

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

// rangeSeparator splits the bounds of a range operand ("1..10").
const rangeSeparator = ".."

// Comparator evaluates core filter operators against field values.
// It caches compiled regular expressions and is safe for concurrent use.
type Comparator struct {
	mu      sync.Mutex
	regexes map[regexKey]*regexp.Regexp
}

type regexKey struct {
	pattern       string
	caseSensitive bool
}

// NewComparator creates a comparator with an empty regex cache.
func NewComparator() *Comparator {
	return &Comparator{regexes: make(map[regexKey]*regexp.Regexp)}
}

// Compare evaluates one condition with a throwaway comparator.
func Compare(value any, op domain.OperatorKind, operand string, opts domain.ComparisonOptions) (bool, error) {
	return NewComparator().Compare(value, op, operand, opts)
}

// Compare reports whether value satisfies "value op operand".
//
// An absent value (nil) matches nothing except ne, which follows
// opts.NoneMatchesNotEqual. Non-core operators return an
// UnsupportedOperatorError; adapters must resolve those themselves.
func (c *Comparator) Compare(value any, op domain.OperatorKind, operand string, opts domain.ComparisonOptions) (bool, error) {
	if !op.IsCore() {
		return false, &domain.UnsupportedOperatorError{Operator: op}
	}

	if isAbsent(value) {
		return op == domain.OpNe && opts.NoneMatchesNotEqual, nil
	}

	switch op {
	case domain.OpRange:
		return anyOf(value, opts, func(v any) bool { return matchRange(v, operand, opts) }), nil
	case domain.OpRegex:
		re := c.regex(operand, opts.CaseSensitive)
		if re == nil {
			return false, nil
		}
		return anyOf(value, opts, func(v any) bool { return re.MatchString(stringify(v)) }), nil
	case domain.OpGt, domain.OpLt, domain.OpGe, domain.OpLe:
		return anyOf(value, opts, func(v any) bool { return matchOrdered(v, op, operand, opts) }), nil
	case domain.OpEq:
		return equals(value, operand, opts), nil
	case domain.OpNe:
		return !equals(value, operand, opts), nil
	}

	return false, &domain.UnsupportedOperatorError{Operator: op}
}

// regex returns the compiled pattern, or nil if it does not compile.
// Failures are cached too so a bad pattern is compiled once per query.
func (c *Comparator) regex(pattern string, caseSensitive bool) *regexp.Regexp {
	key := regexKey{pattern: pattern, caseSensitive: caseSensitive}

	c.mu.Lock()
	defer c.mu.Unlock()

	if re, ok := c.regexes[key]; ok {
		return re
	}

	expr := pattern
	if !caseSensitive {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		re = nil
	}
	c.regexes[key] = re
	return re
}

// equals handles eq. An operand containing ".." is treated as a range.
func equals(value any, operand string, opts domain.ComparisonOptions) bool {
	if strings.Contains(operand, rangeSeparator) {
		return anyOf(value, opts, func(v any) bool { return matchRange(v, operand, opts) })
	}
	return anyOf(value, opts, func(v any) bool { return scalarEquals(v, operand, opts) })
}

// anyOf applies pred to value, or to each list element when list-any is on.
func anyOf(value any, opts domain.ComparisonOptions, pred func(any) bool) bool {
	list, ok := asList(value)
	if !ok || !opts.AllowListAny {
		return pred(value)
	}
	for _, el := range list {
		if !isAbsent(el) && pred(el) {
			return true
		}
	}
	return false
}

func scalarEquals(v any, operand string, opts domain.ComparisonOptions) bool {
	if opts.CoerceNumeric {
		a, aok := toNumber(v)
		b, bok := parseNumber(operand)
		if aok && bok {
			return a == b
		}
	}
	return compareStrings(stringify(v), operand, opts.CaseSensitive) == 0
}

func matchOrdered(v any, op domain.OperatorKind, operand string, opts domain.ComparisonOptions) bool {
	var cmp int
	a, aok := toNumber(v)
	b, bok := parseNumber(operand)
	if opts.CoerceNumeric && aok && bok {
		cmp = compareFloats(a, b)
	} else {
		cmp = compareStrings(stringify(v), operand, opts.CaseSensitive)
	}

	switch op {
	case domain.OpGt:
		return cmp > 0
	case domain.OpLt:
		return cmp < 0
	case domain.OpGe:
		return cmp >= 0
	case domain.OpLe:
		return cmp <= 0
	}
	return false
}

// matchRange checks lo <= v <= hi. Either bound may be empty for an open
// range, but not both: a bare ".." matches nothing. Numeric bounds compare numerically and require a numeric value;
// otherwise the bounds compare as strings.
func matchRange(v any, operand string, opts domain.ComparisonOptions) bool {
	lo, hi, ok := strings.Cut(operand, rangeSeparator)
	if !ok || (lo == "" && hi == "") {
		return false
	}

	loNum, loOK := parseNumber(lo)
	hiNum, hiOK := parseNumber(hi)
	numeric := (lo == "" || loOK) && (hi == "" || hiOK) && (lo != "" || hi != "")

	if numeric {
		n, ok := toNumber(v)
		if !ok {
			return false
		}
		if lo != "" && n < loNum {
			return false
		}
		if hi != "" && n > hiNum {
			return false
		}
		return true
	}

	s := stringify(v)
	if lo != "" && compareStrings(s, lo, opts.CaseSensitive) < 0 {
		return false
	}
	if hi != "" && compareStrings(s, hi, opts.CaseSensitive) > 0 {
		return false
	}
	return true
}

func compareStrings(a, b string, caseSensitive bool) int {
	if !caseSensitive {
		a, b = strings.ToLower(a), strings.ToLower(b)
	}
	return strings.Compare(a, b)
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Truthy is the default meaning of a flag filter.
func Truthy(v any) bool {
	if isAbsent(v) {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "", "false", "0", "no", "off":
			return false
		}
		return true
	case *domain.Object:
		return val.Len() > 0
	}
	if n, ok := toNumber(v); ok {
		return n != 0
	}
	if list, ok := asList(v); ok {
		return len(list) > 0
	}
	return true
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// asList returns the elements of any slice except byte slices.
func asList(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []byte:
		return nil, false
	case []string:
		out := make([]any, len(val))
		for i := range val {
			out[i] = val[i]
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toNumber converts native numbers and numeric strings.
func toNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, !math.IsNaN(val)
	case json.Number:
		return parseNumber(val.String())
	case string:
		return parseNumber(val)
	}
	return 0, false
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// stringify renders a value for string comparison and regex matching.
// Containers render as compact JSON.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case json.Number:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	case *domain.Object, map[string]any, []any:
		b, err := domain.MarshalCompact(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}
