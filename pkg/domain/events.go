package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventStateEnter   EventType = "state_enter"
	EventStateExit    EventType = "state_exit"
	EventTaskInvoke   EventType = "task_invoke"
	EventTaskReturn   EventType = "task_return"
	EventExecutionEnd EventType = "execution_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	ExecutionID string    `json:"execution_id"`
}

// StateEvent represents entry into or exit from a state.
type StateEvent struct {
	EventBase
	StateName string    `json:"state_name"`
	StateType StateType `json:"state_type"`

	// Duration is set on exit events only.
	Duration time.Duration `json:"duration,omitempty"`
}

// TaskEvent represents a task handler invocation or its completion.
type TaskEvent struct {
	EventBase
	StateName string `json:"state_name"`
	Resource  string `json:"resource"`

	// Set on return events only.
	IsError  bool          `json:"is_error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// ExecutionEvent represents the end of a whole run.
type ExecutionEvent struct {
	EventBase
	Status ExecutionStatus `json:"status"`
}

// LifecycleHooks defines callbacks for engine observability. Any field may be
// nil; hooks run synchronously on the executing scope's goroutine and should
// be fast.
type LifecycleHooks struct {
	OnStateEnter   func(context.Context, *StateEvent)
	OnStateExit    func(context.Context, *StateEvent)
	OnTaskInvoke   func(context.Context, *TaskEvent)
	OnTaskReturn   func(context.Context, *TaskEvent)
	OnExecutionEnd func(context.Context, *ExecutionEvent)
}
