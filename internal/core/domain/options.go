package domain

// ComparisonOptions controls how the comparison engine treats one field.
// Adapters supply them per comparison; the engine never mutates them.
type ComparisonOptions struct {
	// AllowListAny makes list-valued fields match when any element matches.
	AllowListAny bool

	// CaseSensitive disables case folding for string comparisons and regex.
	CaseSensitive bool

	// CoerceNumeric compares numerically when both sides parse as numbers.
	CoerceNumeric bool

	// NoneMatchesNotEqual is the result of "ne" against an absent value.
	NoneMatchesNotEqual bool
}

// DefaultComparisonOptions returns the options used when an adapter
// does not provide its own: list-any, case-insensitive, numeric coercion,
// and absent values count as "not equal".
func DefaultComparisonOptions() ComparisonOptions {
	return ComparisonOptions{
		AllowListAny:        true,
		CaseSensitive:       false,
		CoerceNumeric:       true,
		NoneMatchesNotEqual: true,
	}
}
