package runtime

import (
	"fmt"

	"github.com/stepmill/stepmill/internal/jsonpath"
	"github.com/stepmill/stepmill/pkg/domain"
)

// execChoice evaluates the state's rules in declared order against the event
// and returns the target of the first rule that matches. A rule whose
// variable is absent from the event is skipped, not an error. With no match,
// the default target is used; with no default either, the scope ends.
func (x *execution) execChoice(name string, state *domain.State, event any) (string, error) {
	for i, rule := range state.Choices {
		value, found, err := jsonpath.Get(event, rule.Variable)
		if err != nil {
			return "", fmt.Errorf("choice state '%s' rule %d: %w", name, i, err)
		}
		if !found {
			continue
		}

		match, err := evalRule(name, rule, value)
		if err != nil {
			return "", err
		}
		if match {
			x.logger.Debug("choice rule matched", "state", name, "rule", i, "next", rule.Next)
			return rule.Next, nil
		}
	}

	if state.Default != "" {
		x.logger.Debug("no choice rule matched, taking default", "state", name, "next", state.Default)
		return state.Default, nil
	}

	x.logger.Warn("no choice rule matched and no default declared; ending scope", "state", name)
	return "", nil
}

// evalRule applies one typed comparison. A type mismatch between the event
// value and the rule's literal makes the rule not match; only an operator
// outside the supported set is an error.
func evalRule(stateName string, rule domain.ChoiceRule, value any) (bool, error) {
	switch rule.Operator {
	case domain.OpNumericEquals, domain.OpNumericLessThan, domain.OpNumericGreaterThan,
		domain.OpNumericLessThanEquals, domain.OpNumericGreaterThanEquals:
		left, lok := toFloat(value)
		right, rok := toFloat(rule.Value)
		if !lok || !rok {
			return false, nil
		}
		return compareNumeric(rule.Operator, left, right), nil

	case domain.OpStringEquals, domain.OpStringLessThan, domain.OpStringGreaterThan,
		domain.OpStringLessThanEquals, domain.OpStringGreaterThanEquals:
		left, lok := value.(string)
		right, rok := rule.Value.(string)
		if !lok || !rok {
			return false, nil
		}
		return compareString(rule.Operator, left, right), nil

	case domain.OpBooleanEquals:
		left, lok := value.(bool)
		right, rok := rule.Value.(bool)
		if !lok || !rok {
			return false, nil
		}
		return left == right, nil

	default:
		return false, &domain.DefinitionError{
			StateName: stateName,
			Reason:    fmt.Sprintf("unsupported choice operator '%s'", rule.Operator),
		}
	}
}

func compareNumeric(op string, left, right float64) bool {
	switch op {
	case domain.OpNumericEquals:
		return left == right
	case domain.OpNumericLessThan:
		return left < right
	case domain.OpNumericGreaterThan:
		return left > right
	case domain.OpNumericLessThanEquals:
		return left <= right
	case domain.OpNumericGreaterThanEquals:
		return left >= right
	}
	return false
}

func compareString(op string, left, right string) bool {
	switch op {
	case domain.OpStringEquals:
		return left == right
	case domain.OpStringLessThan:
		return left < right
	case domain.OpStringGreaterThan:
		return left > right
	case domain.OpStringLessThanEquals:
		return left <= right
	case domain.OpStringGreaterThanEquals:
		return left >= right
	}
	return false
}

// toFloat coerces the numeric types that JSON and YAML decoding produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
