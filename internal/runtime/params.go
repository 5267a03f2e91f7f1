package runtime

import (
	"fmt"
	"strings"

	"github.com/stepmill/stepmill/internal/jsonpath"
	"github.com/stepmill/stepmill/pkg/domain"
)

// Context-object references available inside Map iterator parameters.
const (
	mapItemValueRef = "$$.Map.Item.Value"
	mapItemIndexRef = "$$.Map.Item.Index"
)

// mapItem carries the current element and position while resolving a Map
// state's parameters.
type mapItem struct {
	value any
	index int
}

// resolveParameters builds a payload from a Parameters block. Keys suffixed
// with ".$" are templated: their string values reference either the current
// Map item ($$.Map.Item.Value, $$.Map.Item.Index) or a path into the event
// ($.foo.bar). A referenced path that is absent resolves to nil rather than
// failing, matching the event's tolerance for missing keys. Plain keys are
// copied as-is, recursing into nested objects.
func (x *execution) resolveParameters(stateName string, params map[string]any, event any, item *mapItem) (map[string]any, error) {
	out := make(map[string]any, len(params))

	for key, value := range params {
		if !strings.HasSuffix(key, ".$") {
			if nested, ok := value.(map[string]any); ok {
				resolved, err := x.resolveParameters(stateName, nested, event, item)
				if err != nil {
					return nil, err
				}
				out[key] = resolved
				continue
			}
			out[key] = value
			continue
		}

		ref, ok := value.(string)
		if !ok {
			return nil, &domain.DefinitionError{
				StateName: stateName,
				Reason:    fmt.Sprintf("parameter '%s' must reference a path, got %T", key, value),
			}
		}

		resolved, err := x.resolveReference(stateName, key, ref, event, item)
		if err != nil {
			return nil, err
		}
		out[strings.TrimSuffix(key, ".$")] = resolved
	}

	return out, nil
}

func (x *execution) resolveReference(stateName, key, ref string, event any, item *mapItem) (any, error) {
	switch {
	case ref == mapItemValueRef || ref == mapItemIndexRef || strings.HasPrefix(ref, mapItemValueRef+"."):
		if item == nil {
			return nil, &domain.DefinitionError{
				StateName: stateName,
				Reason:    fmt.Sprintf("parameter '%s' references the Map item outside a Map state", key),
			}
		}
		if ref == mapItemIndexRef {
			return item.index, nil
		}
		if ref == mapItemValueRef {
			return item.value, nil
		}
		value, _, err := jsonpath.Get(item.value, strings.TrimPrefix(ref, mapItemValueRef+"."))
		if err != nil {
			return nil, fmt.Errorf("parameter '%s' of state '%s': %w", key, stateName, err)
		}
		return value, nil

	case strings.HasPrefix(ref, "$"):
		value, _, err := jsonpath.Get(event, ref)
		if err != nil {
			return nil, fmt.Errorf("parameter '%s' of state '%s': %w", key, stateName, err)
		}
		return value, nil

	default:
		return nil, &domain.DefinitionError{
			StateName: stateName,
			Reason:    fmt.Sprintf("parameter '%s' has unsupported reference '%s'", key, ref),
		}
	}
}
