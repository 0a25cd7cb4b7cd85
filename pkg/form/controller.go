package form

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-carprice/pkg/dataset"
	"github.com/goliatone/go-carprice/pkg/rules"
)

// Domains is the reference data the controller validates against.
// *dataset.Dataset satisfies it.
type Domains interface {
	Domain(field string) ([]string, error)
	DependentDomain(brand string) []string
}

var _ Domains = (*dataset.Dataset)(nil)

// Option configures a Controller.
type Option func(*Controller)

// WithRules appends extra numeric rules evaluated after the declared bounds.
func WithRules(extra ...rules.Rule) Option {
	return func(c *Controller) {
		c.extra = append(c.extra, extra...)
	}
}

// WithBound overrides the declared bound for a numeric field.
func WithBound(bound Bound) Option {
	return func(c *Controller) {
		if bound.Field != "" {
			c.overrides = append(c.overrides, bound)
		}
	}
}

// Controller enforces domain membership, the brand to model cascade, and
// numeric bounds. It holds no session state.
type Controller struct {
	domains   Domains
	options   map[string][]string
	seats     []int
	bounds    map[string]Bound
	rules     *rules.Set
	evaluator *rules.Evaluator

	extra     []rules.Rule
	overrides []Bound
}

// NewController snapshots the categorical domains and compiles numeric rules.
func NewController(domains Domains, opts ...Option) (*Controller, error) {
	if domains == nil {
		return nil, errors.New("form: domains are required")
	}
	c := &Controller{
		domains:   domains,
		options:   make(map[string][]string, len(CategoricalFields)),
		bounds:    make(map[string]Bound, len(NumericFields)),
		evaluator: rules.NewEvaluator(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	for _, field := range CategoricalFields {
		values, err := domains.Domain(field)
		if err != nil {
			return nil, fmt.Errorf("form: load %s options: %w", field, err)
		}
		c.options[field] = values
	}

	seatValues, err := domains.Domain(FieldSeats)
	if err != nil {
		return nil, fmt.Errorf("form: load seat options: %w", err)
	}
	for _, raw := range seatValues {
		seats, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("form: seat option %q: %w", raw, err)
		}
		c.seats = append(c.seats, seats)
	}
	sort.Ints(c.seats)

	for _, bound := range DefaultBounds() {
		c.bounds[bound.Field] = bound
	}
	c.bounds[FieldSeats] = seatBound(c.seats)
	for _, bound := range c.overrides {
		if _, ok := c.bounds[bound.Field]; ok {
			c.bounds[bound.Field] = bound
		}
	}

	c.rules = rules.NewSet()
	for _, field := range NumericFields {
		c.rules.Add(c.bounds[field].Rule())
	}
	c.rules.Add(c.extra...)

	return c, nil
}

// Initial returns the starting state: the first brand with its first model,
// the first option of every other select, and numeric minimums.
func (c *Controller) Initial() (State, error) {
	brands := c.options[dataset.FieldBrand]
	if len(brands) == 0 {
		return State{}, fmt.Errorf("%w: no brands available", dataset.ErrDataUnavailable)
	}

	var s State
	for _, field := range CategoricalFields {
		if field == dataset.FieldBrand || field == dataset.FieldModel {
			continue
		}
		if values := c.options[field]; len(values) > 0 {
			s = s.withCategorical(field, values[0])
		}
	}
	for _, field := range NumericFields {
		s = s.withNumeric(field, c.bounds[field].Min)
	}
	return c.SelectBrand(s, brands[0])
}

// SelectBrand sets the brand and cascades the model: a model still legal for
// the new brand is kept, otherwise the first legal model (or none) is taken.
func (c *Controller) SelectBrand(s State, value string) (State, error) {
	if !contains(c.options[dataset.FieldBrand], value) {
		return s, fieldError(dataset.FieldBrand, value, ErrInvalidOption, "is not a known brand")
	}
	next := s
	next.Brand = value

	models := c.domains.DependentDomain(value)
	if !contains(models, next.Model) {
		next.Model = ""
		if len(models) > 0 {
			next.Model = models[0]
		}
	}
	return next, nil
}

// SelectField sets a categorical field. Model selections are checked against
// the models of the current brand.
func (c *Controller) SelectField(s State, field, value string) (State, error) {
	switch field {
	case dataset.FieldBrand:
		return c.SelectBrand(s, value)
	case dataset.FieldModel:
		if !contains(c.domains.DependentDomain(s.Brand), value) {
			return s, fieldError(field, value, ErrInvalidOption, fmt.Sprintf("is not available for %s", s.Brand))
		}
		return s.withCategorical(field, value), nil
	}

	options, ok := c.options[field]
	if !ok {
		return s, fieldError(field, value, ErrUnknownField, "is not a selectable field")
	}
	if !contains(options, value) {
		return s, fieldError(field, value, ErrInvalidOption, "is not a known option")
	}
	return s.withCategorical(field, value), nil
}

// SetNumeric sets a numeric field. Out-of-range or non-integral input is
// rejected and the prior state returned unchanged.
func (c *Controller) SetNumeric(s State, field string, value float64) (State, error) {
	bound, ok := c.bounds[field]
	if !ok {
		return s, fieldError(field, formatValue(value), ErrUnknownField, "is not a numeric field")
	}
	raw := formatValue(value)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return s, fieldError(field, raw, ErrOutOfRange, "must be a finite number")
	}
	if bound.Integer && value != math.Trunc(value) {
		return s, fieldError(field, raw, ErrOutOfRange, "must be a whole number")
	}
	if bound.Integer && math.Abs(value) > maxWholeNumber {
		return s, fieldError(field, raw, ErrOutOfRange, "must be at most "+formatValue(maxWholeNumber))
	}

	if err := c.evaluator.Check(c.rules, field, value); err != nil {
		var violation *rules.Violation
		if errors.As(err, &violation) {
			return s, fieldError(field, raw, ErrOutOfRange, violation.Message)
		}
		return s, err
	}

	if field == FieldSeats && !containsInt(c.seats, int(value)) {
		return s, fieldError(field, raw, ErrInvalidOption, "must be one of "+joinInts(c.seats))
	}
	return s.withNumeric(field, value), nil
}

// Apply runs a whole submission through the controller: brand, model, the
// other selects, then numbers. Absent or blank entries keep their value and
// every rejection is returned. A model left over from a previous brand is
// dropped silently in favour of the cascade.
func (c *Controller) Apply(s State, values map[string]string) (State, []error) {
	var errs []error
	lookup := func(field string) (string, bool) {
		raw, ok := values[field]
		if !ok {
			for alias, target := range fieldAliases {
				if target == field {
					raw, ok = values[alias]
					break
				}
			}
		}
		raw = strings.TrimSpace(raw)
		return raw, ok && raw != ""
	}

	brandChanged := false
	if raw, ok := lookup(dataset.FieldBrand); ok {
		next, err := c.SelectBrand(s, raw)
		if err != nil {
			errs = append(errs, err)
		} else {
			brandChanged = next.Brand != s.Brand
			s = next
		}
	}

	if raw, ok := lookup(dataset.FieldModel); ok {
		next, err := c.SelectField(s, dataset.FieldModel, raw)
		switch {
		case err == nil:
			s = next
		case !brandChanged:
			errs = append(errs, err)
		}
	}

	for _, field := range CategoricalFields[2:] {
		raw, ok := lookup(field)
		if !ok {
			continue
		}
		next, err := c.SelectField(s, field, raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s = next
	}

	for _, field := range NumericFields {
		raw, ok := lookup(field)
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fieldError(field, raw, ErrOutOfRange, "must be a number"))
			continue
		}
		next, err := c.SetNumeric(s, field, value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s = next
	}

	return s, errs
}

// ModelOptions returns the legal models for the state's brand.
func (c *Controller) ModelOptions(s State) []string {
	return c.domains.DependentDomain(s.Brand)
}

// Options returns the legal values of a categorical field or of seats.
func (c *Controller) Options(field string) ([]string, error) {
	if field == FieldSeats {
		out := make([]string, len(c.seats))
		for i, seats := range c.seats {
			out[i] = strconv.Itoa(seats)
		}
		return out, nil
	}
	values, ok := c.options[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return append([]string{}, values...), nil
}

// Bound returns the bound of a numeric field.
func (c *Controller) Bound(field string) (Bound, bool) {
	b, ok := c.bounds[field]
	return b, ok
}

// Bounds returns every numeric bound in display order.
func (c *Controller) Bounds() []Bound {
	out := make([]Bound, 0, len(NumericFields))
	for _, field := range NumericFields {
		out = append(out, c.bounds[field])
	}
	return out
}

// fieldAliases maps wire names onto form fields.
var fieldAliases = map[string]string{
	"mileage_numeric": FieldMileage,
}

func contains(values []string, value string) bool {
	if value == "" {
		return false
	}
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// maxWholeNumber caps integer fields without a declared maximum so the
// value always fits the state's int fields.
const maxWholeNumber = math.MaxInt32

func containsInt(values []int, value int) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
