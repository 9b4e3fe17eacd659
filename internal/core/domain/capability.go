package domain

// FieldSchema describes one field an adapter emits.
type FieldSchema struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ElementInfo describes one addressable sub-resource.
type ElementInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Example     string `json:"example,omitempty"`
}

// Capabilities is the descriptor an adapter publishes about itself.
type Capabilities struct {
	// Scheme is the locator scheme the adapter serves.
	Scheme string `json:"scheme"`

	// Description is a one-line summary for listings.
	Description string `json:"description"`

	// Structure indicates ResolveStructure is supported.
	Structure bool `json:"structure"`

	// Element indicates ResolveElement is supported.
	Element bool `json:"element"`

	// AvailableElements indicates elements can be enumerated.
	// False for adapters whose element names are free-form.
	AvailableElements bool `json:"availableElements"`

	// Schema lists the fields the adapter's items carry.
	Schema []FieldSchema `json:"schema,omitempty"`

	// Operators lists extension operators the adapter resolves itself.
	Operators []OperatorKind `json:"operators,omitempty"`

	// Examples are sample locators.
	Examples []string `json:"examples,omitempty"`
}

// SupportsOperator reports whether op may appear in a filter for this adapter.
func (c Capabilities) SupportsOperator(op OperatorKind) bool {
	if op.IsCore() || op == OpFlag {
		return true
	}
	for _, ext := range c.Operators {
		if ext == op {
			return true
		}
	}
	return false
}
