// Package jsonpath resolves dotted-path references (e.g. "$.order.total")
// against the JSON-like event payload threaded through an execution, and
// writes results back in place.
package jsonpath

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Normalize strips the "$." / "$" prefix from a path reference, leaving the
// bare dotted form ("order.total"). "$" alone normalizes to the empty string,
// which addresses the whole event.
func Normalize(path string) string {
	p := strings.TrimPrefix(path, "$")
	return strings.TrimPrefix(p, ".")
}

// Get resolves a dotted path against the event. It returns the value and
// whether the path was present. Missing intermediate keys are not an error:
// the path is simply absent.
func Get(event any, path string) (any, bool, error) {
	p := Normalize(path)
	if p == "" {
		return event, true, nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, false, fmt.Errorf("event is not JSON-encodable: %w", err)
	}

	res := gjson.GetBytes(data, p)
	if !res.Exists() {
		return nil, false, nil
	}
	return res.Value(), true, nil
}

// Set writes value at a dotted path inside the event, creating intermediate
// maps as needed. The event root must be a map for a non-root path.
func Set(event map[string]any, path string, value any) error {
	p := Normalize(path)
	if p == "" {
		return fmt.Errorf("cannot set the event root in place; path must name a key")
	}
	if event == nil {
		return fmt.Errorf("cannot set path '%s' on a nil event", path)
	}

	segments := strings.Split(p, ".")
	current := event
	for _, key := range segments[:len(segments)-1] {
		if existing, ok := current[key]; ok {
			nested, ok := existing.(map[string]any)
			if !ok {
				return fmt.Errorf("cannot traverse path '%s': segment '%s' is %T, not an object", path, key, existing)
			}
			current = nested
			continue
		}
		nested := make(map[string]any)
		current[key] = nested
		current = nested
	}

	current[segments[len(segments)-1]] = value
	return nil
}

// Clone deep-copies a JSON-like value by round-tripping it through JSON.
// Used to snapshot the event before handing it to an independent scope.
func Clone(event any) (any, error) {
	if event == nil {
		return nil, nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("event is not JSON-encodable: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
