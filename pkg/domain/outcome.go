package domain

// ExecutionStatus is the terminal status of a run.
type ExecutionStatus string

const (
	StatusSucceeded ExecutionStatus = "succeeded"
	StatusFailed    ExecutionStatus = "failed"

	// StatusAborted marks a run that ended in an engine fault (definition
	// error, unresolvable handler, handler error, cancellation) rather than
	// a workflow outcome. It never appears in an Outcome; it is only seen
	// by OnExecutionEnd hooks.
	StatusAborted ExecutionStatus = "aborted"
)

// Failure is the payload of a workflow-declared Fail state. It is a normal
// terminal outcome, not an engine fault.
type Failure struct {
	Error string `json:"error,omitempty"`
	Cause string `json:"cause,omitempty"`
}

// Outcome is the terminal result of an execution. On success Output holds the
// final event; on a Fail state Failure holds the declared error/cause and
// Output is nil. Engine-internal faults are reported as Go errors instead of
// an Outcome.
type Outcome struct {
	Status  ExecutionStatus `json:"status"`
	Output  any             `json:"output,omitempty"`
	Failure *Failure        `json:"failure,omitempty"`
}
