package domain

// ResultKind tags the shape of an AdapterResult.
type ResultKind int

// Result kinds.
const (
	// ResultSingle is one object (a certificate summary, a repository).
	ResultSingle ResultKind = iota

	// ResultSequence is an ordered, finite list of items.
	ResultSequence
)

// String returns the kind name.
func (k ResultKind) String() string {
	switch k {
	case ResultSingle:
		return "single"
	case ResultSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// AdapterResult is the raw payload an adapter returns for one invocation.
// Exactly one of Object or Items is meaningful, selected by Kind.
type AdapterResult struct {
	Kind   ResultKind
	Object *Object
	Items  []*Object
}

// SingleResult wraps one object.
func SingleResult(obj *Object) AdapterResult {
	if obj == nil {
		obj = NewObject()
	}
	return AdapterResult{Kind: ResultSingle, Object: obj}
}

// SequenceResult wraps an ordered list of items.
func SequenceResult(items []*Object) AdapterResult {
	if items == nil {
		items = []*Object{}
	}
	return AdapterResult{Kind: ResultSequence, Items: items}
}

// IsSequence reports whether the result is an item list.
func (r AdapterResult) IsSequence() bool {
	return r.Kind == ResultSequence
}

// Len returns the item count, or 1 for a single object.
func (r AdapterResult) Len() int {
	if r.Kind == ResultSequence {
		return len(r.Items)
	}
	return 1
}
