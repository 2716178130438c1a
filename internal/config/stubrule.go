package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// StubGeneration is the shape of a generated operation handler.
type StubGeneration int

const (
	// StandaloneFunction emits a package-level HandleX function taking the
	// application context as its last argument.
	StandaloneFunction StubGeneration = iota
	// FunctionWithinContext emits HandleX as a method on the application context.
	FunctionWithinContext
)

func (s StubGeneration) String() string {
	switch s {
	case StandaloneFunction:
		return "standaloneFunction"
	case FunctionWithinContext:
		return "functionWithinContext"
	default:
		return fmt.Sprintf("StubGeneration(%d)", int(s))
	}
}

// OperationStubGenerationRule decides the StubGeneration of every operation.
// The set of rules is closed: AllStandaloneFunctions, AllFunctionsWithinContext
// and their two exception variants.
type OperationStubGenerationRule interface {
	StubGeneration(operation string) StubGeneration
	ruleName() string
	exceptions() []string
}

// AllStandaloneFunctions generates every operation as a standalone function.
type AllStandaloneFunctions struct{}

// AllFunctionsWithinContext generates every operation as a context method.
type AllFunctionsWithinContext struct{}

// StandaloneExceptWithinContextFor generates standalone functions except for
// the listed operations.
type StandaloneExceptWithinContextFor struct {
	Exceptions []string
}

// WithinContextExceptStandaloneFor generates context methods except for the
// listed operations.
type WithinContextExceptStandaloneFor struct {
	Exceptions []string
}

func (AllStandaloneFunctions) StubGeneration(string) StubGeneration { return StandaloneFunction }

func (AllFunctionsWithinContext) StubGeneration(string) StubGeneration {
	return FunctionWithinContext
}

func (r StandaloneExceptWithinContextFor) StubGeneration(operation string) StubGeneration {
	if slices.Contains(r.Exceptions, operation) {
		return FunctionWithinContext
	}
	return StandaloneFunction
}

func (r WithinContextExceptStandaloneFor) StubGeneration(operation string) StubGeneration {
	if slices.Contains(r.Exceptions, operation) {
		return StandaloneFunction
	}
	return FunctionWithinContext
}

const (
	ruleAllStandalone           = "allStandaloneFunctions"
	ruleAllWithinContext        = "allFunctionsWithinContext"
	ruleStandaloneExceptContext = "allStandaloneFunctionsExceptFunctionsWithinContextFor"
	ruleContextExceptStandalone = "allFunctionsWithinContextExceptStandaloneFunctionsFor"
)

func (AllStandaloneFunctions) ruleName() string { return ruleAllStandalone }
func (AllFunctionsWithinContext) ruleName() string { return ruleAllWithinContext }
func (StandaloneExceptWithinContextFor) ruleName() string { return ruleStandaloneExceptContext }
func (WithinContextExceptStandaloneFor) ruleName() string { return ruleContextExceptStandalone }
func (AllStandaloneFunctions) exceptions() []string { return nil }
func (AllFunctionsWithinContext) exceptions() []string { return nil }
func (r StandaloneExceptWithinContextFor) exceptions() []string { return r.Exceptions }
func (r WithinContextExceptStandaloneFor) exceptions() []string { return r.Exceptions }

// DefaultStubGenerationRule is used when no rule is configured.
func DefaultStubGenerationRule() OperationStubGenerationRule { return AllStandaloneFunctions{} }

// StubRule wraps an OperationStubGenerationRule for JSON encoding. Rules are
// encoded as a single-key object naming the variant, e.g.
//
//	{"allFunctionsWithinContextExceptStandaloneFunctionsFor": {"exceptions": ["Ping"]}}
//
// A bare string naming a variant without exceptions is accepted as well.
type StubRule struct {
	OperationStubGenerationRule
}

// Rule returns the wrapped rule, or the default when none is set.
func (r StubRule) Rule() OperationStubGenerationRule {
	if r.OperationStubGenerationRule == nil {
		return DefaultStubGenerationRule()
	}
	return r.OperationStubGenerationRule
}

type ruleBody struct {
	Exceptions []string `json:"exceptions,omitempty"`
}

func (r StubRule) MarshalJSON() ([]byte, error) {
	rule := r.Rule()
	return json.Marshal(map[string]ruleBody{rule.ruleName(): {Exceptions: rule.exceptions()}})
}

func (r *StubRule) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		rule, err := newStubRule(name, nil)
		if err != nil {
			return err
		}
		r.OperationStubGenerationRule = rule
		return nil
	}
	var obj map[string]ruleBody
	if err := json.Unmarshal(data, &obj); err != nil {
		return configError("operation stub generation rule: %v", err)
	}
	if len(obj) != 1 {
		return configError("operation stub generation rule must name exactly one variant, got %d", len(obj))
	}
	for name, body := range obj {
		rule, err := newStubRule(name, body.Exceptions)
		if err != nil {
			return err
		}
		r.OperationStubGenerationRule = rule
	}
	return nil
}

func newStubRule(name string, exceptions []string) (OperationStubGenerationRule, error) {
	switch name {
	case ruleAllStandalone:
		return AllStandaloneFunctions{}, nil
	case ruleAllWithinContext:
		return AllFunctionsWithinContext{}, nil
	case ruleStandaloneExceptContext:
		return StandaloneExceptWithinContextFor{Exceptions: exceptions}, nil
	case ruleContextExceptStandalone:
		return WithinContextExceptStandaloneFor{Exceptions: exceptions}, nil
	default:
		return nil, configError("unknown operation stub generation rule %q", name)
	}
}
