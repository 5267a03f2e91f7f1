package domain

import "fmt"

// DefinitionError reports a malformed or inconsistent state machine
// definition: a dangling Next/Choice target, an unsupported Wait field, an
// unsupported Choice operator. Always fatal for the whole run.
type DefinitionError struct {
	StateName string
	Reason    string
}

func (e *DefinitionError) Error() string {
	if e.StateName == "" {
		return fmt.Sprintf("invalid state machine definition: %s", e.Reason)
	}
	return fmt.Sprintf("invalid state machine definition at state '%s': %s", e.StateName, e.Reason)
}

// HandlerNotFoundError reports a Task state whose resource did not resolve to
// an invocable handler.
type HandlerNotFoundError struct {
	StateName string
	Resource  string
}

func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("no handler found for resource '%s' (state '%s')", e.Resource, e.StateName)
}

// TaskFailedError reports a Task handler that signalled completion with an
// error. It is an execution fault, distinct from a workflow-declared Fail.
type TaskFailedError struct {
	StateName string
	Err       error
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("task '%s' failed: %v", e.StateName, e.Err)
}

func (e *TaskFailedError) Unwrap() error { return e.Err }
