package runtime

import (
	"context"
	"fmt"

	"github.com/stepmill/stepmill/internal/jsonpath"
	"github.com/stepmill/stepmill/pkg/domain"
)

// execMap iterates the iterator sub-definition once per element of the array
// at ItemsPath, sequentially and in array order, and collects the iteration
// results in item order. A missing items array means zero iterations, not an
// error. The results accumulator is local to this call frame, so nested Map
// states cannot interfere with each other.
func (x *execution) execMap(ctx context.Context, name string, state *domain.State, event any) (any, error) {
	if state.Iterator == nil {
		return nil, &domain.DefinitionError{
			StateName: name,
			Reason:    "Map state declares no iterator",
		}
	}

	itemsPath := state.ItemsPath
	if itemsPath == "" {
		itemsPath = "$"
	}

	items, err := resolveItems(name, itemsPath, event)
	if err != nil {
		return nil, err
	}

	x.logger.Debug("starting map iterations", "state", name, "items", len(items))

	results := make([]any, 0, len(items))
	for i, item := range items {
		input := item
		if state.Parameters != nil {
			resolved, err := x.resolveParameters(name, state.Parameters, event, &mapItem{value: item, index: i})
			if err != nil {
				return nil, err
			}
			input = resolved
		}

		snapshot, err := jsonpath.Clone(input)
		if err != nil {
			return nil, &domain.DefinitionError{StateName: name, Reason: err.Error()}
		}

		res, err := x.runScope(ctx, state.Iterator, snapshot)
		if err != nil {
			return nil, fmt.Errorf("map state '%s' iteration %d: %w", name, i, err)
		}
		results = append(results, res)
	}

	return routeResult(name, state, event, results)
}

func resolveItems(name, itemsPath string, event any) ([]any, error) {
	raw, found, err := jsonpath.Get(event, itemsPath)
	if err != nil {
		return nil, fmt.Errorf("map state '%s': %w", name, err)
	}
	if !found || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &domain.DefinitionError{
			StateName: name,
			Reason:    fmt.Sprintf("ItemsPath '%s' does not resolve to an array", itemsPath),
		}
	}
	return items, nil
}
