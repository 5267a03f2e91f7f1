package runtime

import (
	"context"
	"time"

	"github.com/stepmill/stepmill/internal/jsonpath"
	"github.com/stepmill/stepmill/pkg/domain"
)

// execTask resolves the handler bound to the state's resource, invokes it
// with the event (or resolved Parameters) and a fresh task context, and
// suspends the scope until the handler signals completion. No timeout is
// imposed: a handler that never signals hangs the run, which is acceptable
// for a local tool and can only be broken by cancelling ctx.
func (x *execution) execTask(ctx context.Context, name string, state *domain.State, event any) (any, error) {
	if x.engine.resolver == nil {
		return nil, &domain.HandlerNotFoundError{StateName: name, Resource: state.Resource}
	}
	handler, ok := x.engine.resolver.Resolve(state.Resource)
	if !ok {
		return nil, &domain.HandlerNotFoundError{StateName: name, Resource: state.Resource}
	}

	input := event
	if state.Parameters != nil {
		resolved, err := x.resolveParameters(name, state.Parameters, event, nil)
		if err != nil {
			return nil, err
		}
		input = resolved
	}

	tc := newTaskContext(x.taskEnv(state.Environment), x.logger)

	x.emitTaskInvoke(ctx, name, state.Resource)
	started := time.Now()

	go handler(ctx, input, tc)

	var res taskResult
	select {
	case res = <-tc.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	x.emitTaskReturn(ctx, name, state.Resource, res.err != nil, time.Since(started))

	if res.err != nil {
		return nil, &domain.TaskFailedError{StateName: name, Err: res.err}
	}

	return routeResult(name, state, event, res.result)
}

// routeResult applies the result-merging rules shared by Task and Map: with
// a ResultPath the result is written into the event in place; without one a
// non-nil result replaces the event.
func routeResult(name string, state *domain.State, event any, result any) (any, error) {
	if state.ResultPath == "" {
		if result != nil {
			return result, nil
		}
		return event, nil
	}

	target, ok := event.(map[string]any)
	if !ok {
		return nil, &domain.DefinitionError{
			StateName: name,
			Reason:    "ResultPath requires the event to be an object",
		}
	}
	if err := jsonpath.Set(target, state.ResultPath, result); err != nil {
		return nil, &domain.DefinitionError{StateName: name, Reason: err.Error()}
	}
	return target, nil
}

func (x *execution) emitTaskInvoke(ctx context.Context, name, resource string) {
	x.logger.Debug("invoking task handler", "state", name, "resource", resource)
	if hook := x.engine.hooks.OnTaskInvoke; hook != nil {
		hook(ctx, &domain.TaskEvent{
			EventBase: x.eventBase(domain.EventTaskInvoke),
			StateName: name,
			Resource:  resource,
		})
	}
}

func (x *execution) emitTaskReturn(ctx context.Context, name, resource string, isError bool, elapsed time.Duration) {
	x.logger.Debug("task handler returned", "state", name, "resource", resource, "is_error", isError, "elapsed", elapsed)
	if hook := x.engine.hooks.OnTaskReturn; hook != nil {
		hook(ctx, &domain.TaskEvent{
			EventBase: x.eventBase(domain.EventTaskReturn),
			StateName: name,
			Resource:  resource,
			IsError:   isError,
			Duration:  elapsed,
		})
	}
}
