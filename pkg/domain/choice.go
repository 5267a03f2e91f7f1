package domain

// Comparison operator names supported by Choice rules. The set mirrors the
// typed comparisons of the Amazon States Language subset this engine
// implements. Operators outside this set are a DefinitionError, detected when
// the rule is evaluated.
const (
	OpNumericEquals            = "NumericEquals"
	OpNumericLessThan          = "NumericLessThan"
	OpNumericGreaterThan       = "NumericGreaterThan"
	OpNumericLessThanEquals    = "NumericLessThanEquals"
	OpNumericGreaterThanEquals = "NumericGreaterThanEquals"
	OpStringEquals             = "StringEquals"
	OpStringLessThan           = "StringLessThan"
	OpStringGreaterThan        = "StringGreaterThan"
	OpStringLessThanEquals     = "StringLessThanEquals"
	OpStringGreaterThanEquals  = "StringGreaterThanEquals"
	OpBooleanEquals            = "BooleanEquals"
)

// ChoiceRule is one ordered branch condition of a Choice state: read Variable
// from the event, compare it to Value with Operator, and on the first match
// transition to Next.
type ChoiceRule struct {
	Variable string `json:"Variable"`
	Operator string `json:"Operator"`
	Value    any    `json:"Value"`
	Next     string `json:"Next"`
}
