package domain

import "strconv"

// Markers substituted for values cut by the depth and snippet ceilings.
const (
	DepthMarkerObject = "{…}"
	DepthMarkerList   = "[…]"
	SnippetSuffix     = "…"
)

// BudgetSpec bounds output size. A nil field means unbounded.
type BudgetSpec struct {
	MaxItems        *int
	MaxBytes        *int
	MaxDepth        *int
	MaxSnippetChars *int
}

// IsZero reports whether no dimension is bounded.
func (b BudgetSpec) IsZero() bool {
	return b.MaxItems == nil && b.MaxBytes == nil && b.MaxDepth == nil && b.MaxSnippetChars == nil
}

// WithDefaults fills unset dimensions from defaults.
func (b BudgetSpec) WithDefaults(defaults BudgetSpec) BudgetSpec {
	if b.MaxItems == nil {
		b.MaxItems = defaults.MaxItems
	}
	if b.MaxBytes == nil {
		b.MaxBytes = defaults.MaxBytes
	}
	if b.MaxDepth == nil {
		b.MaxDepth = defaults.MaxDepth
	}
	if b.MaxSnippetChars == nil {
		b.MaxSnippetChars = defaults.MaxSnippetChars
	}
	return b
}

// TruncationReason says which ceiling removed items.
type TruncationReason string

// Truncation reasons.
const (
	ReasonMaxItems TruncationReason = "max_items_exceeded"
	ReasonMaxBytes TruncationReason = "max_bytes_exceeded"
)

// TruncationMeta reports that a budget ceiling removed items.
// It is attached to the envelope only when something was cut.
type TruncationMeta struct {
	Truncated      bool             `json:"truncated"`
	Reason         TruncationReason `json:"reason,omitempty"`
	TotalAvailable int              `json:"totalAvailable"`
	Returned       int              `json:"returned"`
	NextCursor     string           `json:"nextCursor,omitempty"`
}

// CursorFor builds the opaque continuation hint for a given offset.
func CursorFor(offset int) string {
	return KeyOffset + "=" + strconv.Itoa(offset)
}

// IntPtr is a convenience for building optional ints.
func IntPtr(v int) *int {
	return &v
}
