package runtime

import (
	"log/slog"
	"sync"
)

// taskResult is what a handler delivers through its TaskContext.
type taskResult struct {
	err    error
	result any
}

// taskContext implements ports.TaskContext for one Task invocation. The
// first completion call resolves the done channel; later calls are ignored
// with a warning so a misbehaving handler cannot advance the flow twice.
type taskContext struct {
	env    map[string]string
	logger *slog.Logger
	once   sync.Once
	done   chan taskResult
}

func newTaskContext(env map[string]string, logger *slog.Logger) *taskContext {
	return &taskContext{
		env:    env,
		logger: logger,
		done:   make(chan taskResult, 1),
	}
}

func (c *taskContext) Complete(err error, result any) {
	fired := false
	c.once.Do(func() {
		fired = true
		c.done <- taskResult{err: err, result: result}
	})
	if !fired {
		c.logger.Warn("task signalled completion more than once; ignoring")
	}
}

func (c *taskContext) Succeed(result any) {
	c.Complete(nil, result)
}

func (c *taskContext) Fail(err error) {
	c.Complete(err, nil)
}

func (c *taskContext) Env() map[string]string {
	out := make(map[string]string, len(c.env))
	for k, v := range c.env {
		out[k] = v
	}
	return out
}
