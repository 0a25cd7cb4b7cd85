// Package rules evaluates numeric field constraints expressed as JSON Logic.
// Declared bounds compile into range rules; operators can append further
// rules from a YAML file without touching code.
package rules

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRule reports a rule that cannot be evaluated.
var ErrInvalidRule = errors.New("rules: invalid rule")

// Rule is a single JSON Logic expression evaluated against
// {"field": <name>, "value": <number>}. A truthy result passes.
type Rule struct {
	Field   string         `yaml:"field" json:"field"`
	Logic   map[string]any `yaml:"logic" json:"logic"`
	Message string         `yaml:"message" json:"message"`
}

// Set groups rules by field. The zero value is not usable; use NewSet.
type Set struct {
	mu    sync.RWMutex
	rules map[string][]Rule
}

// NewSet creates a set seeded with rules.
func NewSet(rules ...Rule) *Set {
	s := &Set{rules: make(map[string][]Rule)}
	s.Add(rules...)
	return s
}

// Add appends rules, skipping entries without a field or logic.
func (s *Set) Add(rules ...Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rule := range rules {
		field := strings.TrimSpace(rule.Field)
		if field == "" || len(rule.Logic) == 0 {
			continue
		}
		rule.Field = field
		s.rules[field] = append(s.rules[field], rule)
	}
}

// For returns the rules registered for field in insertion order.
func (s *Set) For(field string) []Rule {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Rule(nil), s.rules[field]...)
}

// Fields lists fields with at least one rule, sorted.
func (s *Set) Fields() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.rules))
	for field := range s.rules {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Range builds the rule enforcing min <= value (<= max when max is set).
func Range(field string, min float64, max *float64) Rule {
	atLeast := map[string]any{">=": []any{map[string]any{"var": "value"}, min}}
	if max == nil {
		return Rule{
			Field:   field,
			Logic:   atLeast,
			Message: "must be at least " + formatNumber(min),
		}
	}
	atMost := map[string]any{"<=": []any{map[string]any{"var": "value"}, *max}}
	return Rule{
		Field:   field,
		Logic:   map[string]any{"and": []any{atLeast, atMost}},
		Message: fmt.Sprintf("must be between %s and %s", formatNumber(min), formatNumber(*max)),
	}
}

type document struct {
	Rules []Rule `yaml:"rules"`
}

// Parse decodes a YAML (or JSON) rules document of the form
//
//	rules:
//	  - field: kms_driven
//	    logic: {"<=": [{"var": "value"}, 1000000]}
//	    message: must be at most 1,000,000 km
func Parse(data []byte) ([]Rule, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rules: decode: %w", err)
	}
	for i, rule := range doc.Rules {
		if strings.TrimSpace(rule.Field) == "" {
			return nil, fmt.Errorf("%w: rule %d has no field", ErrInvalidRule, i)
		}
		if len(rule.Logic) == 0 {
			return nil, fmt.Errorf("%w: rule %d (%s) has no logic", ErrInvalidRule, i, rule.Field)
		}
		if strings.TrimSpace(rule.Message) == "" {
			doc.Rules[i].Message = "is not allowed"
		}
	}
	return doc.Rules, nil
}

// LoadFile reads and parses a rules document from disk.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	return Parse(data)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
