package domain

// StateType identifies the control-flow behavior of a state.
type StateType string

const (
	StateTask     StateType = "Task"
	StateChoice   StateType = "Choice"
	StateWait     StateType = "Wait"
	StateParallel StateType = "Parallel"
	StateMap      StateType = "Map"
	StatePass     StateType = "Pass"
	StateSucceed  StateType = "Succeed"
	StateFail     StateType = "Fail"
)

// StateMachine is a validated, read-only state machine definition.
// Parallel branches and Map iterators reuse the same shape as independent
// sub-definitions with their own name scope.
type StateMachine struct {
	Comment string            `json:"Comment,omitempty"`
	StartAt string            `json:"StartAt"`
	States  map[string]*State `json:"States"`
}

// State is one node of the machine. It is a tagged variant: Type selects
// which of the optional field groups is meaningful.
type State struct {
	Type    StateType `json:"Type"`
	Comment string    `json:"Comment,omitempty"`

	// Next names the successor state. Empty (or End) means the state is
	// terminal for its scope.
	Next string `json:"Next,omitempty"`
	End  bool   `json:"End,omitempty"`

	// ResultPath is a dotted path into the event where the state's result is
	// written in place. Empty means the result replaces the event.
	ResultPath string `json:"ResultPath,omitempty"`

	// Parameters is a static/templated payload resolved at run time.
	// Keys suffixed with ".$" reference paths into the event (or, inside a
	// Map iterator, the current item).
	Parameters map[string]any `json:"Parameters,omitempty"`

	// Task fields.
	Resource    string            `json:"Resource,omitempty"`
	Environment map[string]string `json:"Environment,omitempty"`

	// Choice fields.
	Choices []ChoiceRule `json:"Choices,omitempty"`
	Default string       `json:"Default,omitempty"`

	// Wait fields. Exactly one must be set.
	Seconds       *int   `json:"Seconds,omitempty"`
	SecondsPath   string `json:"SecondsPath,omitempty"`
	Timestamp     string `json:"Timestamp,omitempty"`
	TimestampPath string `json:"TimestampPath,omitempty"`

	// Parallel fields.
	Branches []*StateMachine `json:"Branches,omitempty"`

	// Map fields.
	ItemsPath string        `json:"ItemsPath,omitempty"`
	Iterator  *StateMachine `json:"Iterator,omitempty"`

	// Pass fields.
	Result any `json:"Result,omitempty"`

	// Fail fields.
	Error string `json:"Error,omitempty"`
	Cause string `json:"Cause,omitempty"`
}

// IsTerminal reports whether the state ends its scope when it completes.
func (s *State) IsTerminal() bool {
	switch s.Type {
	case StateSucceed, StateFail:
		return true
	case StateChoice:
		// Choice terminality depends on rule evaluation, not declaration.
		return false
	default:
		return s.Next == ""
	}
}
