// Package compiler converts raw state machine definitions (JSON or YAML
// bytes, or already-decoded maps) into the typed domain model.
package compiler

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/stepmill/stepmill/pkg/domain"
)

// machineDTO mirrors the wire shape of a definition. Choice rules, branches
// and iterators are kept raw here because they need custom conversion.
type machineDTO struct {
	Comment string              `mapstructure:"Comment"`
	StartAt string              `mapstructure:"StartAt"`
	States  map[string]stateDTO `mapstructure:"States"`
}

type stateDTO struct {
	Type       string         `mapstructure:"Type"`
	Comment    string         `mapstructure:"Comment"`
	Next       string         `mapstructure:"Next"`
	End        bool           `mapstructure:"End"`
	ResultPath string         `mapstructure:"ResultPath"`
	Parameters map[string]any `mapstructure:"Parameters"`

	Resource    string            `mapstructure:"Resource"`
	Environment map[string]string `mapstructure:"Environment"`

	Choices []map[string]any `mapstructure:"Choices"`
	Default string           `mapstructure:"Default"`

	Seconds       *int   `mapstructure:"Seconds"`
	SecondsPath   string `mapstructure:"SecondsPath"`
	Timestamp     string `mapstructure:"Timestamp"`
	TimestampPath string `mapstructure:"TimestampPath"`

	Branches []map[string]any `mapstructure:"Branches"`

	ItemsPath string         `mapstructure:"ItemsPath"`
	Iterator  map[string]any `mapstructure:"Iterator"`

	Result any `mapstructure:"Result"`

	Error string `mapstructure:"Error"`
	Cause string `mapstructure:"Cause"`
}

// Parser converts raw definitions into domain.StateMachine values.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes definition bytes. YAML is a superset of JSON, so a single
// decode path accepts both formats.
func (p *Parser) Parse(data []byte) (*domain.StateMachine, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}
	return p.Decode(raw)
}

// Decode converts an already-parsed definition map into the typed model and
// performs load-time validation: StartAt must name an existing state, and
// every Choice rule must carry exactly one comparison operator.
func (p *Parser) Decode(raw map[string]any) (*domain.StateMachine, error) {
	var dto machineDTO
	if err := mapstructure.Decode(raw, &dto); err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}

	sm := &domain.StateMachine{
		Comment: dto.Comment,
		StartAt: dto.StartAt,
		States:  make(map[string]*domain.State, len(dto.States)),
	}

	for name, sd := range dto.States {
		state, err := p.decodeState(name, sd)
		if err != nil {
			return nil, err
		}
		sm.States[name] = state
	}

	if sm.StartAt == "" {
		return nil, &domain.DefinitionError{Reason: "StartAt is required"}
	}
	if _, ok := sm.States[sm.StartAt]; !ok {
		return nil, &domain.DefinitionError{
			Reason: fmt.Sprintf("StartAt references unknown state '%s'", sm.StartAt),
		}
	}

	return sm, nil
}

func (p *Parser) decodeState(name string, sd stateDTO) (*domain.State, error) {
	state := &domain.State{
		Type:          domain.StateType(sd.Type),
		Comment:       sd.Comment,
		Next:          sd.Next,
		End:           sd.End,
		ResultPath:    sd.ResultPath,
		Parameters:    sd.Parameters,
		Resource:      sd.Resource,
		Environment:   sd.Environment,
		Default:       sd.Default,
		Seconds:       sd.Seconds,
		SecondsPath:   sd.SecondsPath,
		Timestamp:     sd.Timestamp,
		TimestampPath: sd.TimestampPath,
		ItemsPath:     sd.ItemsPath,
		Result:        sd.Result,
		Error:         sd.Error,
		Cause:         sd.Cause,
	}

	if state.Type == "" {
		return nil, &domain.DefinitionError{StateName: name, Reason: "state is missing a Type"}
	}

	for i, rawRule := range sd.Choices {
		rule, err := decodeChoiceRule(name, i, rawRule)
		if err != nil {
			return nil, err
		}
		state.Choices = append(state.Choices, rule)
	}

	for i, rawBranch := range sd.Branches {
		branch, err := p.Decode(rawBranch)
		if err != nil {
			return nil, fmt.Errorf("branch %d of state '%s': %w", i, name, err)
		}
		state.Branches = append(state.Branches, branch)
	}

	if sd.Iterator != nil {
		iterator, err := p.Decode(sd.Iterator)
		if err != nil {
			return nil, fmt.Errorf("iterator of state '%s': %w", name, err)
		}
		state.Iterator = iterator
	}

	return state, nil
}

// decodeChoiceRule splits a raw rule map into its known fields (Variable,
// Next) and the single remaining key, which is the comparison operator.
// Whether the operator name is supported is deliberately left to evaluation
// time; only the exactly-one-operator shape is enforced here.
func decodeChoiceRule(stateName string, index int, raw map[string]any) (domain.ChoiceRule, error) {
	rule := domain.ChoiceRule{}

	var operators []string
	for key, value := range raw {
		switch key {
		case "Variable":
			rule.Variable, _ = value.(string)
		case "Next":
			rule.Next, _ = value.(string)
		default:
			operators = append(operators, key)
			rule.Operator = key
			rule.Value = value
		}
	}

	if len(operators) != 1 {
		sort.Strings(operators)
		return rule, &domain.DefinitionError{
			StateName: stateName,
			Reason: fmt.Sprintf("choice rule %d must declare exactly one comparison operator, found %d %v",
				index, len(operators), operators),
		}
	}
	if rule.Variable == "" {
		return rule, &domain.DefinitionError{
			StateName: stateName,
			Reason:    fmt.Sprintf("choice rule %d is missing Variable", index),
		}
	}
	if rule.Next == "" {
		return rule, &domain.DefinitionError{
			StateName: stateName,
			Reason:    fmt.Sprintf("choice rule %d is missing Next", index),
		}
	}

	return rule, nil
}
