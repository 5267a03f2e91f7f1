package stepmill

import (
	"context"
	"io"
	"log/slog"

	"github.com/stepmill/stepmill/internal/compiler"
	"github.com/stepmill/stepmill/internal/runtime"
	"github.com/stepmill/stepmill/pkg/domain"
	"github.com/stepmill/stepmill/pkg/ports"
	"github.com/stepmill/stepmill/pkg/registry"
)

// Engine is the high-level entry point for the stepmill library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime  *runtime.Engine
	resolver ports.HandlerResolver
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	detailed bool
	baseEnv  map[string]string
	Name     string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithResolver injects a custom handler resolver, bypassing the default
// in-memory registry.
func WithResolver(r ports.HandlerResolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithHandlers builds an in-memory registry from the given resource map.
func WithHandlers(handlers map[string]ports.TaskHandler) Option {
	return func(e *Engine) {
		reg := registry.New()
		for resource, handler := range handlers {
			reg.Register(resource, handler)
		}
		e.resolver = reg
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDetailedLogging enables per-state start/finish log lines.
func WithDetailedLogging(enabled bool) Option {
	return func(e *Engine) {
		e.detailed = enabled
	}
}

// WithName sets a label used to enrich every log line for this engine.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// WithBaseEnvironment replaces the captured process environment used as the
// per-task baseline.
func WithBaseEnvironment(env map[string]string) Option {
	return func(e *Engine) {
		e.baseEnv = env
	}
}

// New initializes an Engine for one state machine definition.
// By default tasks resolve against an empty registry; provide handlers with
// WithHandlers or WithResolver.
func New(def *domain.StateMachine, opts ...Option) (*Engine, error) {
	if def == nil {
		return nil, &domain.DefinitionError{Reason: "definition is required"}
	}

	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.resolver == nil {
		eng.resolver = registry.New()
	}

	// Ensure logger is initialized (so we don't pass nil to runtime, which
	// would overwrite its default).
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("workflow", eng.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithDetailedLogging(eng.detailed),
	}
	if eng.baseEnv != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithBaseEnvironment(eng.baseEnv))
	}

	eng.runtime = runtime.NewEngine(def, eng.resolver, runtimeOpts...)

	return eng, nil
}

// Execute runs the definition against an initial event and returns the
// terminal outcome. A Fail state yields a failed Outcome and a nil error;
// definition faults and handler errors yield a nil Outcome and a typed error.
func (e *Engine) Execute(ctx context.Context, input any) (*domain.Outcome, error) {
	return e.runtime.Execute(ctx, input)
}

// Parse decodes a JSON or YAML state machine definition.
func Parse(data []byte) (*domain.StateMachine, error) {
	return compiler.NewParser().Parse(data)
}
