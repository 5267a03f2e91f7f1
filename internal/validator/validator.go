// Package validator performs static whole-definition validation ahead of
// execution. The runtime keeps its lazy, evaluation-time errors; this package
// exists for callers that want earlier failure (e.g. the validate command).
package validator

import (
	"fmt"
	"strings"

	"github.com/stepmill/stepmill/pkg/domain"
)

// Validate walks every scope of the definition (main flow, Parallel branches,
// Map iterators) and reports structural problems: dangling Next/Default/
// Choice targets, Wait states without exactly one duration field, Parallel
// states without branches and Map states without an iterator.
func Validate(sm *domain.StateMachine) error {
	var errs []string
	validateScope(sm, "", &errs)

	if len(errs) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(errs, "\n- "))
	}
	return nil
}

func validateScope(sm *domain.StateMachine, scope string, errs *[]string) {
	report := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		if scope != "" {
			msg = fmt.Sprintf("%s: %s", scope, msg)
		}
		*errs = append(*errs, msg)
	}

	if sm == nil {
		report("missing sub-definition")
		return
	}
	if sm.StartAt == "" {
		report("StartAt is required")
	} else if _, ok := sm.States[sm.StartAt]; !ok {
		report("StartAt references unknown state '%s'", sm.StartAt)
	}

	checkTarget := func(from, label, target string) {
		if target == "" {
			return
		}
		if _, ok := sm.States[target]; !ok {
			report("state '%s': %s references unknown state '%s'", from, label, target)
		}
	}

	for name, state := range sm.States {
		checkTarget(name, "Next", state.Next)
		checkTarget(name, "Default", state.Default)
		for i, rule := range state.Choices {
			checkTarget(name, fmt.Sprintf("choice rule %d", i), rule.Next)
		}

		switch state.Type {
		case domain.StateWait:
			fields := 0
			if state.Seconds != nil {
				fields++
			}
			for _, f := range []string{state.SecondsPath, state.Timestamp, state.TimestampPath} {
				if f != "" {
					fields++
				}
			}
			if fields != 1 {
				report("state '%s': Wait requires exactly one of Seconds, SecondsPath, Timestamp, TimestampPath (found %d)", name, fields)
			}
		case domain.StateParallel:
			if len(state.Branches) == 0 {
				report("state '%s': Parallel declares no branches", name)
			}
			for i, branch := range state.Branches {
				validateScope(branch, fmt.Sprintf("%s/branch[%d]", name, i), errs)
			}
		case domain.StateMap:
			if state.Iterator == nil {
				report("state '%s': Map declares no iterator", name)
			} else {
				validateScope(state.Iterator, fmt.Sprintf("%s/iterator", name), errs)
			}
		case domain.StateChoice:
			if len(state.Choices) == 0 && state.Default == "" {
				report("state '%s': Choice declares no rules and no default", name)
			}
		}
	}
}
