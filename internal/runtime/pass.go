package runtime

import (
	"github.com/stepmill/stepmill/internal/jsonpath"
	"github.com/stepmill/stepmill/pkg/domain"
)

// execPass forwards the event, optionally substituting a static Result (or a
// templated Parameters payload) and optionally writing it at ResultPath
// instead of replacing the event. With neither Result nor ResultPath it is a
// pure identity pass-through.
func (x *execution) execPass(name string, state *domain.State, event any) (any, error) {
	payload := state.Result
	if payload == nil && state.Parameters != nil {
		resolved, err := x.resolveParameters(name, state.Parameters, event, nil)
		if err != nil {
			return nil, err
		}
		payload = resolved
	}

	if state.ResultPath == "" {
		if payload != nil {
			return payload, nil
		}
		return event, nil
	}

	// With a ResultPath but no declared result, the whole input event is
	// written at the path.
	if payload == nil {
		snapshot, err := jsonpath.Clone(event)
		if err != nil {
			return nil, &domain.DefinitionError{StateName: name, Reason: err.Error()}
		}
		payload = snapshot
	}

	return routeResult(name, state, event, payload)
}
