package runtime

import (
	"os"
	"strings"
)

// captureEnviron snapshots the process environment once, at engine build
// time. Tasks never see later process-level changes, and task overrides
// never leak back into the process or into each other.
func captureEnviron() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}
	return env
}

// taskEnv builds the effective environment for one Task invocation: a fresh
// copy of the baseline with the state's declared overrides applied on top.
func (x *execution) taskEnv(overrides map[string]string) map[string]string {
	env := make(map[string]string, len(x.engine.baseEnv)+len(overrides))
	for k, v := range x.engine.baseEnv {
		env[k] = v
	}
	for k, v := range overrides {
		env[k] = v
	}
	return env
}
