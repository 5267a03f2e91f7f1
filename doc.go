// Package stepmill is a local workflow interpreter. It executes state machine
// definitions (Task, Choice, Wait, Parallel, Map, Pass, Succeed, Fail) against
// an in-process registry of task handlers, with no cloud dependency.
//
// A minimal run:
//
//	def, err := stepmill.Parse(definitionBytes)
//	if err != nil { ... }
//
//	eng, err := stepmill.New(def, stepmill.WithHandlers(map[string]ports.TaskHandler{
//		"greet": func(ctx context.Context, event any, tc ports.TaskContext) {
//			tc.Succeed(map[string]any{"hello": "world"})
//		},
//	}))
//	if err != nil { ... }
//
//	outcome, err := eng.Execute(ctx, map[string]any{"name": "ada"})
package stepmill
