package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepmill/stepmill/pkg/domain"
	"github.com/stepmill/stepmill/pkg/ports"
)

// resolverFunc is a minimal HandlerResolver for tests.
type resolverFunc map[string]ports.TaskHandler

func (r resolverFunc) Resolve(resource string) (ports.TaskHandler, bool) {
	h, ok := r[resource]
	return h, ok
}

func TestExecute_PassThenSucceed(t *testing.T) {
	def := &domain.StateMachine{
		StartAt: "A",
		States: map[string]*domain.State{
			"A": {Type: domain.StatePass, Result: map[string]any{"x": 1}, Next: "B"},
			"B": {Type: domain.StateSucceed},
		},
	}

	engine := NewEngine(def, nil)
	outcome, err := engine.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSucceeded, outcome.Status)
	assert.Equal(t, map[string]any{"x": 1}, outcome.Output)
	assert.Nil(t, outcome.Failure)
}

func TestExecute_PassIdentity(t *testing.T) {
	def := &domain.StateMachine{
		StartAt: "A",
		States: map[string]*domain.State{
			"A": {Type: domain.StatePass},
		},
	}

	input := map[string]any{"keep": "me"}
	engine := NewEngine(def, nil)
	outcome, err := engine.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, input, outcome.Output)
}

func TestExecute_FailState(t *testing.T) {
	def := &domain.StateMachine{
		StartAt: "Boom",
		States: map[string]*domain.State{
			"Boom": {Type: domain.StateFail, Error: "OrderRejected", Cause: "total too low"},
		},
	}

	engine := NewEngine(def, nil)
	outcome, err := engine.Execute(context.Background(), nil)
	require.NoError(t, err, "a Fail state is a normal terminal outcome, not an engine fault")

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, "OrderRejected", outcome.Failure.Error)
	assert.Equal(t, "total too low", outcome.Failure.Cause)
}

func TestExecute_DanglingNextIsFatal(t *testing.T) {
	def := &domain.StateMachine{
		StartAt: "A",
		States: map[string]*domain.State{
			"A": {Type: domain.StatePass, Next: "Ghost"},
		},
	}

	engine := NewEngine(def, nil)
	_, err := engine.Execute(context.Background(), nil)

	var defErr *domain.DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, "Ghost", defErr.StateName)
}

func TestExecute_UnsupportedStateType(t *testing.T) {
	def := &domain.StateMachine{
		StartAt: "A",
		States: map[string]*domain.State{
			"A": {Type: "Teleport"},
		},
	}

	engine := NewEngine(def, nil)
	_, err := engine.Execute(context.Background(), nil)

	var defErr *domain.DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Contains(t, defErr.Reason, "Teleport")
}

func TestExecute_ChoiceEndToEnd(t *testing.T) {
	def := &domain.StateMachine{
		StartAt: "Decide",
		States: map[string]*domain.State{
			"Decide": {
				Type: domain.StateChoice,
				Choices: []domain.ChoiceRule{
					{Variable: "$.n", Operator: domain.OpNumericGreaterThan, Value: 5, Next: "Big"},
				},
				Default: "Small",
			},
			"Big":   {Type: domain.StatePass, Result: "big"},
			"Small": {Type: domain.StatePass, Result: "small"},
		},
	}
	engine := NewEngine(def, nil)

	t.Run("greater than threshold goes to Big", func(t *testing.T) {
		outcome, err := engine.Execute(context.Background(), map[string]any{"n": 10})
		require.NoError(t, err)
		assert.Equal(t, "big", outcome.Output)
	})

	t.Run("below threshold falls to default", func(t *testing.T) {
		outcome, err := engine.Execute(context.Background(), map[string]any{"n": 1})
		require.NoError(t, err)
		assert.Equal(t, "small", outcome.Output)
	})
}

func TestExecute_LifecycleHooks(t *testing.T) {
	var entered, exited []string
	var endStatus domain.ExecutionStatus

	hooks := domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) {
			entered = append(entered, e.StateName)
		},
		OnStateExit: func(_ context.Context, e *domain.StateEvent) {
			exited = append(exited, e.StateName)
		},
		OnExecutionEnd: func(_ context.Context, e *domain.ExecutionEvent) {
			endStatus = e.Status
		},
	}

	def := &domain.StateMachine{
		StartAt: "A",
		States: map[string]*domain.State{
			"A": {Type: domain.StatePass, Next: "B"},
			"B": {Type: domain.StateSucceed},
		},
	}

	engine := NewEngine(def, nil, WithLifecycleHooks(hooks))
	_, err := engine.Execute(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, entered)
	assert.Equal(t, []string{"A", "B"}, exited)
	assert.Equal(t, domain.StatusSucceeded, endStatus)
}

func TestExecute_HooksSeeAbortedRuns(t *testing.T) {
	var endStatus domain.ExecutionStatus
	hooks := domain.LifecycleHooks{
		OnExecutionEnd: func(_ context.Context, e *domain.ExecutionEvent) {
			endStatus = e.Status
		},
	}

	def := &domain.StateMachine{
		StartAt: "A",
		States: map[string]*domain.State{
			"A": {Type: domain.StatePass, Next: "Ghost"},
		},
	}

	engine := NewEngine(def, nil, WithLifecycleHooks(hooks))
	_, err := engine.Execute(context.Background(), nil)
	require.Error(t, err)

	assert.Equal(t, domain.StatusAborted, endStatus,
		"engine faults must still reach OnExecutionEnd")
}

func TestExecute_ContextCancellation(t *testing.T) {
	def := &domain.StateMachine{
		StartAt: "A",
		States: map[string]*domain.State{
			"A": {Type: domain.StatePass, Next: "A"}, // deliberate loop
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(def, nil)
	_, err := engine.Execute(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}
