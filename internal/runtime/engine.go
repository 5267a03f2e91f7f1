// Package runtime is the core interpreter: it drives a state machine
// definition from its start state to a terminal outcome, dispatching each
// state to its type-specific strategy and threading the event payload
// through every scope.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stepmill/stepmill/internal/logging"
	"github.com/stepmill/stepmill/pkg/domain"
	"github.com/stepmill/stepmill/pkg/ports"
)

// Engine executes a single state machine definition. It is safe to call
// Execute concurrently; each call runs in its own execution frame.
type Engine struct {
	def      *domain.StateMachine
	resolver ports.HandlerResolver
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	detailed bool
	baseEnv  map[string]string
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithDetailedLogging enables per-state start/finish log lines.
func WithDetailedLogging(enabled bool) EngineOption {
	return func(e *Engine) {
		e.detailed = enabled
	}
}

// WithBaseEnvironment replaces the captured process environment used as the
// per-task baseline. Mainly useful in tests.
func WithBaseEnvironment(env map[string]string) EngineOption {
	return func(e *Engine) {
		e.baseEnv = env
	}
}

// NewEngine creates an engine for one definition. The resolver supplies task
// handlers; it may be nil if the definition has no Task states.
func NewEngine(def *domain.StateMachine, resolver ports.HandlerResolver, opts ...EngineOption) *Engine {
	e := &Engine{
		def:      def,
		resolver: resolver,
		logger:   logging.NewNop(),
		baseEnv:  captureEnviron(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// workflowFailure carries a Fail state's payload up through nested scopes.
// It unwinds like an error but is converted into a failed Outcome at the top
// of Execute, so callers can tell "the workflow says it failed" apart from
// "the interpreter broke".
type workflowFailure struct {
	stateName string
	failure   domain.Failure
}

func (e *workflowFailure) Error() string {
	return fmt.Sprintf("workflow failed at state '%s': %s (%s)", e.stateName, e.failure.Error, e.failure.Cause)
}

// Execute runs the definition against an initial event and returns the
// terminal outcome. A Fail state yields a failed Outcome and a nil error;
// definition faults, unresolvable handlers and handler errors yield a nil
// Outcome and a typed error.
func (e *Engine) Execute(ctx context.Context, input any) (*domain.Outcome, error) {
	run := &execution{
		engine: e,
		id:     uuid.NewString(),
	}
	run.logger = e.logger.With("execution", run.id)

	if input == nil {
		input = map[string]any{}
	}

	run.logger.Debug("execution started", "startAt", e.def.StartAt)

	output, err := run.runScope(ctx, e.def, input)
	if err != nil {
		var failure *workflowFailure
		if errors.As(err, &failure) {
			run.logger.Debug("execution failed by workflow",
				"state", failure.stateName,
				"error", failure.failure.Error,
				"cause", failure.failure.Cause)
			run.emitExecutionEnd(ctx, domain.StatusFailed)
			return &domain.Outcome{
				Status:  domain.StatusFailed,
				Failure: &failure.failure,
			}, nil
		}
		run.logger.Debug("execution aborted", "error", err)
		run.emitExecutionEnd(ctx, domain.StatusAborted)
		return nil, err
	}

	run.logger.Debug("execution succeeded")
	run.emitExecutionEnd(ctx, domain.StatusSucceeded)
	return &domain.Outcome{
		Status: domain.StatusSucceeded,
		Output: output,
	}, nil
}

// execution is the per-run frame: the engine's static configuration plus the
// run's identity and enriched logger. Scope-local data (current state, map
// and parallel accumulators) lives in the strategy call frames, never here,
// so concurrent scopes cannot share it.
type execution struct {
	engine *Engine
	id     string
	logger *slog.Logger
}

// runScope drives one scope (main flow, one Parallel branch, one Map
// iteration) from startAt to its terminal state. It returns the scope's
// final event.
func (x *execution) runScope(ctx context.Context, sm *domain.StateMachine, event any) (any, error) {
	name := sm.StartAt

	for name != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		state, ok := sm.States[name]
		if !ok {
			return nil, &domain.DefinitionError{
				StateName: name,
				Reason:    "transition references a state that does not exist",
			}
		}

		started := time.Now()
		x.emitStateEnter(ctx, name, state)

		next, out, err := x.execState(ctx, sm, name, state, event)

		x.emitStateExit(ctx, name, state, time.Since(started))
		if err != nil {
			return nil, err
		}

		event = out
		name = next
	}

	return event, nil
}

// execState dispatches a state to its strategy and returns the successor
// state name (empty means the scope ends) and the outgoing event.
func (x *execution) execState(ctx context.Context, sm *domain.StateMachine, name string, state *domain.State, event any) (string, any, error) {
	switch state.Type {
	case domain.StateTask:
		out, err := x.execTask(ctx, name, state, event)
		return state.Next, out, err
	case domain.StateChoice:
		next, err := x.execChoice(name, state, event)
		return next, event, err
	case domain.StateWait:
		err := x.execWait(ctx, name, state, event)
		return state.Next, event, err
	case domain.StateParallel:
		out, err := x.execParallel(ctx, name, state, event)
		return state.Next, out, err
	case domain.StateMap:
		out, err := x.execMap(ctx, name, state, event)
		return state.Next, out, err
	case domain.StatePass:
		out, err := x.execPass(name, state, event)
		return state.Next, out, err
	case domain.StateSucceed:
		x.logger.Debug("succeed state reached", "state", name)
		return "", event, nil
	case domain.StateFail:
		x.logger.Debug("fail state reached", "state", name, "error", state.Error, "cause", state.Cause)
		return "", nil, &workflowFailure{
			stateName: name,
			failure:   domain.Failure{Error: state.Error, Cause: state.Cause},
		}
	default:
		return "", nil, &domain.DefinitionError{
			StateName: name,
			Reason:    fmt.Sprintf("unsupported state type '%s'", state.Type),
		}
	}
}

func (x *execution) emitStateEnter(ctx context.Context, name string, state *domain.State) {
	if x.engine.detailed {
		x.logger.Info("state started", "state", name, "type", state.Type)
	}
	if hook := x.engine.hooks.OnStateEnter; hook != nil {
		hook(ctx, &domain.StateEvent{
			EventBase: x.eventBase(domain.EventStateEnter),
			StateName: name,
			StateType: state.Type,
		})
	}
}

func (x *execution) emitStateExit(ctx context.Context, name string, state *domain.State, elapsed time.Duration) {
	if x.engine.detailed {
		x.logger.Info("state finished", "state", name, "type", state.Type, "elapsed", elapsed)
	}
	if hook := x.engine.hooks.OnStateExit; hook != nil {
		hook(ctx, &domain.StateEvent{
			EventBase: x.eventBase(domain.EventStateExit),
			StateName: name,
			StateType: state.Type,
			Duration:  elapsed,
		})
	}
}

func (x *execution) emitExecutionEnd(ctx context.Context, status domain.ExecutionStatus) {
	if hook := x.engine.hooks.OnExecutionEnd; hook != nil {
		hook(ctx, &domain.ExecutionEvent{
			EventBase: x.eventBase(domain.EventExecutionEnd),
			Status:    status,
		})
	}
}

func (x *execution) eventBase(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp:   time.Now(),
		Type:        t,
		ExecutionID: x.id,
	}
}
