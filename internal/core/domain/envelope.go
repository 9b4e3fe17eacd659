package domain

// Envelope keys added by the pipeline around adapter fields.
const (
	EnvelopeItems             = "items"
	EnvelopeAvailableElements = "availableElements"
	EnvelopeMeta              = "meta"

	// EnvelopeResult holds a single object's fields when one of them is
	// named like an envelope key.
	EnvelopeResult = "result"
)

// reservedSingleKeys are envelope keys a single object's fields are
// rendered beside.
var reservedSingleKeys = []string{EnvelopeAvailableElements, EnvelopeMeta, EnvelopeResult}

// Envelope is the post-pipeline output for one locator.
type Envelope struct {
	// Locator is the raw locator string the envelope answers.
	Locator string

	// Result is the filtered, ordered, projected and budgeted payload.
	Result AdapterResult

	// AvailableElements is set when the adapter enumerated its elements.
	AvailableElements []ElementInfo

	// Meta is non-nil only when a budget ceiling removed items.
	Meta *TruncationMeta
}

// ToObject flattens the envelope into its output shape:
// single-object fields inline, or an "items" list, followed by
// availableElements and meta when present. A single object with a field
// named availableElements, meta or result is nested under "result"
// instead, so adapter data never mixes with pipeline keys.
func (e *Envelope) ToObject() *Object {
	out := NewObject()

	if e.Result.IsSequence() {
		items := make([]any, len(e.Result.Items))
		for i, item := range e.Result.Items {
			items[i] = item
		}
		out.Set(EnvelopeItems, items)
	} else if collidesWithEnvelope(e.Result.Object) {
		out.Set(EnvelopeResult, e.Result.Object)
	} else {
		e.Result.Object.Range(func(k string, v any) bool {
			out.Set(k, v)
			return true
		})
	}

	if len(e.AvailableElements) > 0 {
		elems := make([]any, len(e.AvailableElements))
		for i, el := range e.AvailableElements {
			obj := NewObject().Set("name", el.Name)
			if el.Description != "" {
				obj.Set("description", el.Description)
			}
			if el.Example != "" {
				obj.Set("example", el.Example)
			}
			elems[i] = obj
		}
		out.Set(EnvelopeAvailableElements, elems)
	}

	if e.Meta != nil {
		meta := NewObject().
			Set("truncated", e.Meta.Truncated).
			Set("reason", string(e.Meta.Reason)).
			Set("totalAvailable", e.Meta.TotalAvailable).
			Set("returned", e.Meta.Returned)
		if e.Meta.NextCursor != "" {
			meta.Set("nextCursor", e.Meta.NextCursor)
		}
		out.Set(EnvelopeMeta, meta)
	}

	return out
}

// MarshalJSON encodes the envelope in its output shape.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	return e.ToObject().MarshalJSON()
}

func collidesWithEnvelope(obj *Object) bool {
	if obj == nil {
		return false
	}
	for _, key := range reservedSingleKeys {
		if obj.Has(key) {
			return true
		}
	}
	return false
}
