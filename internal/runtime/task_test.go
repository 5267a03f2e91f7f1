package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepmill/stepmill/pkg/domain"
	"github.com/stepmill/stepmill/pkg/ports"
)

func taskDef(state *domain.State) *domain.StateMachine {
	return &domain.StateMachine{
		StartAt: "Work",
		States:  map[string]*domain.State{"Work": state},
	}
}

func TestTask_HandlerNotFound(t *testing.T) {
	def := taskDef(&domain.State{Type: domain.StateTask, Resource: "missing"})

	t.Run("nil resolver", func(t *testing.T) {
		engine := NewEngine(def, nil)
		_, err := engine.Execute(context.Background(), nil)

		var notFound *domain.HandlerNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "missing", notFound.Resource)
	})

	t.Run("resolver without the resource", func(t *testing.T) {
		engine := NewEngine(def, resolverFunc{})
		_, err := engine.Execute(context.Background(), nil)
		require.ErrorAs(t, err, new(*domain.HandlerNotFoundError))
	})
}

func TestTask_ResultReplacesEvent(t *testing.T) {
	def := taskDef(&domain.State{Type: domain.StateTask, Resource: "double"})
	resolver := resolverFunc{
		"double": func(_ context.Context, event any, tc ports.TaskContext) {
			n := event.(map[string]any)["n"].(int)
			tc.Succeed(map[string]any{"n": n * 2})
		},
	}

	engine := NewEngine(def, resolver)
	outcome, err := engine.Execute(context.Background(), map[string]any{"n": 21})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": 42}, outcome.Output)
}

func TestTask_ResultPathWritesIntoEvent(t *testing.T) {
	def := taskDef(&domain.State{
		Type:       domain.StateTask,
		Resource:   "score",
		ResultPath: "$.result.score",
	})
	resolver := resolverFunc{
		"score": func(_ context.Context, _ any, tc ports.TaskContext) {
			tc.Succeed(99)
		},
	}

	engine := NewEngine(def, resolver)
	outcome, err := engine.Execute(context.Background(), map[string]any{"order": "o-1"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"order":  "o-1",
		"result": map[string]any{"score": 99},
	}, outcome.Output)
}

func TestTask_NilResultKeepsEvent(t *testing.T) {
	def := taskDef(&domain.State{Type: domain.StateTask, Resource: "noop"})
	resolver := resolverFunc{
		"noop": func(_ context.Context, _ any, tc ports.TaskContext) {
			tc.Succeed(nil)
		},
	}

	input := map[string]any{"keep": true}
	engine := NewEngine(def, resolver)
	outcome, err := engine.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, input, outcome.Output)
}

func TestTask_HandlerError(t *testing.T) {
	def := taskDef(&domain.State{Type: domain.StateTask, Resource: "broken"})
	boom := errors.New("downstream unavailable")
	resolver := resolverFunc{
		"broken": func(_ context.Context, _ any, tc ports.TaskContext) {
			tc.Fail(boom)
		},
	}

	engine := NewEngine(def, resolver)
	_, err := engine.Execute(context.Background(), nil)

	var taskErr *domain.TaskFailedError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "Work", taskErr.StateName)
	assert.ErrorIs(t, err, boom)
}

func TestTask_EnvironmentOverlay(t *testing.T) {
	def := taskDef(&domain.State{
		Type:        domain.StateTask,
		Resource:    "env",
		Environment: map[string]string{"STAGE": "task-local", "EXTRA": "yes"},
	})

	var seen map[string]string
	resolver := resolverFunc{
		"env": func(_ context.Context, _ any, tc ports.TaskContext) {
			seen = tc.Env()
			tc.Succeed(nil)
		},
	}

	engine := NewEngine(def, resolver, WithBaseEnvironment(map[string]string{
		"STAGE": "baseline",
		"HOME":  "/home/u",
	}))
	_, err := engine.Execute(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "task-local", seen["STAGE"], "state override wins over baseline")
	assert.Equal(t, "yes", seen["EXTRA"])
	assert.Equal(t, "/home/u", seen["HOME"], "baseline entries survive the overlay")
}

func TestTask_EnvironmentDoesNotLeakBetweenTasks(t *testing.T) {
	def := &domain.StateMachine{
		StartAt: "First",
		States: map[string]*domain.State{
			"First": {
				Type:        domain.StateTask,
				Resource:    "record",
				Environment: map[string]string{"ONLY_FIRST": "1"},
				Next:        "Second",
			},
			"Second": {Type: domain.StateTask, Resource: "record"},
		},
	}

	var envs []map[string]string
	resolver := resolverFunc{
		"record": func(_ context.Context, _ any, tc ports.TaskContext) {
			envs = append(envs, tc.Env())
			tc.Succeed(nil)
		},
	}

	engine := NewEngine(def, resolver, WithBaseEnvironment(map[string]string{"STAGE": "base"}))
	_, err := engine.Execute(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, envs, 2)
	assert.Equal(t, "1", envs[0]["ONLY_FIRST"])
	_, leaked := envs[1]["ONLY_FIRST"]
	assert.False(t, leaked, "first task's override must not persist into the second")
}

func TestTask_ParametersReplaceHandlerInput(t *testing.T) {
	def := taskDef(&domain.State{
		Type:     domain.StateTask,
		Resource: "inspect",
		Parameters: map[string]any{
			"static":    "value",
			"total.$":   "$.order.total",
			"missing.$": "$.not.there",
		},
	})

	var input any
	resolver := resolverFunc{
		"inspect": func(_ context.Context, event any, tc ports.TaskContext) {
			input = event
			tc.Succeed(nil)
		},
	}

	engine := NewEngine(def, resolver)
	_, err := engine.Execute(context.Background(), map[string]any{
		"order": map[string]any{"total": 12.5},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"static":  "value",
		"total":   12.5,
		"missing": nil,
	}, input)
}

func TestTaskContext_CompletionIsExactlyOnce(t *testing.T) {
	def := taskDef(&domain.State{Type: domain.StateTask, Resource: "eager"})
	resolver := resolverFunc{
		"eager": func(_ context.Context, _ any, tc ports.TaskContext) {
			tc.Succeed(map[string]any{"call": 1})
			tc.Succeed(map[string]any{"call": 2})
			tc.Fail(errors.New("too late"))
		},
	}

	engine := NewEngine(def, resolver)
	outcome, err := engine.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"call": 1}, outcome.Output, "only the first completion counts")
}

func TestTask_AsyncCompletion(t *testing.T) {
	def := taskDef(&domain.State{Type: domain.StateTask, Resource: "later"})
	resolver := resolverFunc{
		"later": func(_ context.Context, _ any, tc ports.TaskContext) {
			go func() {
				tc.Succeed("done")
			}()
		},
	}

	engine := NewEngine(def, resolver)
	outcome, err := engine.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "done", outcome.Output)
}
