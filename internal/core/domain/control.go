package domain

// Reserved query keys consumed by the core. They are never filters.
const (
	KeySort            = "sort"
	KeyLimit           = "limit"
	KeyOffset          = "offset"
	KeyFields          = "fields"
	KeyFormat          = "format"
	KeyMaxItems        = "max-items"
	KeyMaxBytes        = "max-bytes"
	KeyMaxDepth        = "max-depth"
	KeyMaxSnippetChars = "max-snippet-chars"
)

// IsReservedKey reports whether key is a control key rather than a filter.
func IsReservedKey(key string) bool {
	switch key {
	case KeySort, KeyLimit, KeyOffset, KeyFields, KeyFormat,
		KeyMaxItems, KeyMaxBytes, KeyMaxDepth, KeyMaxSnippetChars:
		return true
	default:
		return false
	}
}

// ResultControl holds sort and pagination settings for one query.
type ResultControl struct {
	// SortField is a dotted field path. Empty means keep adapter order.
	SortField string

	// Descending is set by a leading '-' on the sort key.
	Descending bool

	// Limit caps the number of items after Offset. Nil means unbounded.
	Limit *int

	// Offset drops that many items from the front.
	Offset int
}

// HasSort reports whether a sort field was requested.
func (c ResultControl) HasSort() bool {
	return c.SortField != ""
}
