package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-carprice/pkg/form"
	"github.com/goliatone/go-carprice/pkg/model"
	"github.com/goliatone/go-carprice/pkg/orchestrator"
)

// Engine is what a Session needs from the orchestrator.
type Engine interface {
	Controller() *form.Controller
	Model(s form.State) (model.FormModel, error)
	Predict(ctx context.Context, s form.State) orchestrator.Outcome
}

var _ Engine = (*orchestrator.Orchestrator)(nil)

// Session walks a user through the form in the terminal, one field at a
// time, then asks for an estimate.
type Session struct {
	engine Engine
	cfg    config
}

// NewSession binds a session to engine.
func NewSession(engine Engine, options ...Option) (*Session, error) {
	if engine == nil {
		return nil, errors.New("tui: engine is required")
	}
	return &Session{engine: engine, cfg: newConfig(options...)}, nil
}

// Run prompts for every field, predicts, and repeats while the user asks for
// another estimate. It returns the last outcome.
func (s *Session) Run(ctx context.Context) (orchestrator.Outcome, error) {
	state, err := s.engine.Controller().Initial()
	if err != nil {
		return orchestrator.Outcome{}, err
	}

	var last orchestrator.Outcome
	for {
		state, err = s.Collect(ctx, state)
		if err != nil {
			return last, err
		}

		last = s.engine.Predict(ctx, state)
		if err := s.cfg.driver.Info(ctx, s.resultLine(last)); err != nil {
			return last, err
		}

		again, err := s.cfg.driver.Confirm(ctx, ConfirmConfig{
			Message: "Estimate another car?",
			Default: !last.OK(),
		})
		if err != nil {
			return last, err
		}
		if !again {
			return last, nil
		}
		state = last.State
	}
}

// Collect prompts for each field in layout order, starting from state.
func (s *Session) Collect(ctx context.Context, state form.State) (form.State, error) {
	fm, err := s.engine.Model(state)
	if err != nil {
		return state, err
	}

	for _, section := range fm.Sections {
		if err := s.cfg.driver.Info(ctx, s.cfg.theme.SectionPrefix+section.Title); err != nil {
			return state, err
		}
		for _, layoutField := range section.Fields {
			// the model list depends on the brand picked a moment ago
			current, err := s.engine.Model(state)
			if err != nil {
				return state, err
			}
			field, ok := current.Field(layoutField.Name)
			if !ok {
				continue
			}
			state, err = s.prompt(ctx, state, field)
			if err != nil {
				return state, err
			}
		}
	}
	return state, nil
}

func (s *Session) prompt(ctx context.Context, state form.State, field model.Field) (form.State, error) {
	if field.Kind == model.FieldKindSelect && len(field.Options) == 0 {
		msg := fmt.Sprintf("%sNo %s options available", s.cfg.theme.InfoPrefix, strings.ToLower(field.Label))
		if field.DependsOn != "" {
			msg += " for " + state.Value(field.DependsOn)
		}
		return state, s.cfg.driver.Info(ctx, msg)
	}

	for attempt := 1; ; attempt++ {
		raw, err := s.ask(ctx, field)
		if err != nil {
			return state, err
		}

		next, errs := s.engine.Controller().Apply(state, map[string]string{field.Name: raw})
		if len(errs) == 0 {
			return next, nil
		}

		msg := fmt.Sprintf("%sInvalid %s: %v", s.cfg.theme.ErrorPrefix, field.Label, reason(errs[0]))
		if err := s.cfg.driver.Info(ctx, msg); err != nil {
			return state, err
		}
		if s.cfg.maxAttempts > 0 && attempt >= s.cfg.maxAttempts {
			return state, fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Name)
		}
	}
}

func (s *Session) ask(ctx context.Context, field model.Field) (string, error) {
	if field.Kind == model.FieldKindSelect {
		values := make([]string, len(field.Options))
		selected := 0
		for i, option := range field.Options {
			values[i] = option.Label
			if option.Selected {
				selected = i
			}
		}
		idx, err := s.cfg.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      values,
			DefaultIndex: selected,
			PageSize:     10,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(field.Options) {
			return "", fmt.Errorf("tui: selection %d out of range for %s", idx, field.Name)
		}
		return field.Options[idx].Value, nil
	}

	return s.cfg.driver.Input(ctx, InputConfig{
		Message:   field.Label,
		Default:   field.Value,
		Help:      boundsHelp(field),
		Validator: numberValidator,
	})
}

func (s *Session) resultLine(out orchestrator.Outcome) string {
	if out.OK() {
		return s.cfg.theme.InfoPrefix + out.Output.Text
	}
	return s.cfg.theme.ErrorPrefix + out.Output.Text
}

func numberValidator(raw string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
		return errors.New("enter a number")
	}
	return nil
}

func boundsHelp(field model.Field) string {
	switch {
	case field.Min != nil && field.Max != nil:
		return fmt.Sprintf("Between %s and %s", model.FormatBound(field.Min), model.FormatBound(field.Max))
	case field.Min != nil:
		return "At least " + model.FormatBound(field.Min)
	}
	return ""
}

func reason(err error) string {
	var fieldErr *form.FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr.Reason
	}
	return err.Error()
}
