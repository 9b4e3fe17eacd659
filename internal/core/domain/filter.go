package domain

// OperatorKind names a filter operator.
// The core kinds are evaluated by the comparison engine; any other value is
// an adapter extension operator and is only meaningful to that adapter.
type OperatorKind string

// Core operators.
const (
	OpEq    OperatorKind = "eq"
	OpNe    OperatorKind = "ne"
	OpGt    OperatorKind = "gt"
	OpLt    OperatorKind = "lt"
	OpGe    OperatorKind = "ge"
	OpLe    OperatorKind = "le"
	OpRegex OperatorKind = "regex"
	OpRange OperatorKind = "range"
)

// OpFlag is produced for bare query keys ("?archived").
// Its default meaning is "field is present and truthy"; adapters may
// reinterpret it through a FilterResolver.
const OpFlag OperatorKind = "flag"

// CoreOperators lists the operators the comparison engine evaluates.
func CoreOperators() []OperatorKind {
	return []OperatorKind{OpEq, OpNe, OpGt, OpLt, OpGe, OpLe, OpRegex, OpRange}
}

// IsCore reports whether the comparison engine evaluates this operator.
func (k OperatorKind) IsCore() bool {
	switch k {
	case OpEq, OpNe, OpGt, OpLt, OpGe, OpLe, OpRegex, OpRange:
		return true
	default:
		return false
	}
}

// Symbol returns the query-string spelling of a core operator,
// or the bracketed form for anything else.
func (k OperatorKind) Symbol() string {
	switch k {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpGe:
		return ">="
	case OpLe:
		return "<="
	case OpRegex:
		return "~="
	case OpFlag:
		return ""
	default:
		return "[" + string(k) + "]="
	}
}

// String returns the operator name.
func (k OperatorKind) String() string {
	return string(k)
}

// FilterCondition is one field/operator/operand triple.
type FilterCondition struct {
	Field    string
	Operator OperatorKind
	Operand  string
}

// String renders the condition in query syntax.
func (c FilterCondition) String() string {
	if c.Operator == OpFlag {
		return c.Field
	}
	return c.Field + c.Operator.Symbol() + c.Operand
}
