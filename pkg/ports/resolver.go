package ports

import "context"

// TaskHandler is the unit of work bound to a Task state. It receives the
// current event and a TaskContext, and signals completion exclusively through
// the context — never via a return value. A handler that never signals hangs
// its run.
type TaskHandler func(ctx context.Context, event any, tc TaskContext)

// TaskContext is the callback bundle handed to a handler for one Task
// invocation. The first completion call wins; later calls are ignored.
type TaskContext interface {
	// Complete signals completion with an optional error and result.
	Complete(err error, result any)

	// Succeed is shorthand for Complete(nil, result).
	Succeed(result any)

	// Fail is shorthand for Complete(err, nil).
	Fail(err error)

	// Env returns the effective environment for this invocation: the
	// engine's captured baseline overlaid with the state's declared
	// overrides. The map is a private copy; mutating it has no effect on
	// other invocations.
	Env() map[string]string
}

// HandlerResolver maps a Task state's resource identifier to an invocable
// handler, or reports that none is bound.
type HandlerResolver interface {
	Resolve(resource string) (TaskHandler, bool)
}
