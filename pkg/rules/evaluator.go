package rules

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/diegoholiveira/jsonlogic"
)

// Violation describes the first rule a value failed.
type Violation struct {
	Field   string
	Value   float64
	Message string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("rules: %s %s", v.Field, v.Message)
}

// Evaluator runs rule sets through the JSON Logic engine.
type Evaluator struct{}

// NewEvaluator returns an evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Check evaluates every rule registered for field. It returns a *Violation
// for the first failing rule, or an ErrInvalidRule wrapped error when a rule
// cannot be evaluated.
func (e *Evaluator) Check(set *Set, field string, value float64) error {
	for _, rule := range set.For(field) {
		ok, err := e.Eval(rule, map[string]any{"field": field, "value": value})
		if err != nil {
			return err
		}
		if !ok {
			return &Violation{Field: field, Value: value, Message: rule.Message}
		}
	}
	return nil
}

// Eval applies a single rule to data and reports whether the result is truthy.
func (e *Evaluator) Eval(rule Rule, data map[string]any) (bool, error) {
	logic, err := json.Marshal(rule.Logic)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrInvalidRule, rule.Field, err)
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("rules: encode data: %w", err)
	}

	var out bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(logic), bytes.NewReader(payload), &out); err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrInvalidRule, rule.Field, err)
	}

	trimmed := bytes.TrimSpace(out.Bytes())
	if len(trimmed) == 0 {
		return false, nil
	}
	var result any
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return false, fmt.Errorf("%w: %s: decode result: %w", ErrInvalidRule, rule.Field, err)
	}
	return truthy(result), nil
}

func truthy(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case float64:
		return typed != 0
	case string:
		return typed != ""
	case []any:
		return len(typed) > 0
	default:
		return true
	}
}
