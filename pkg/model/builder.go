package model

import (
	"net/http"
	"strconv"

	"github.com/goliatone/go-carprice/pkg/dataset"
	"github.com/goliatone/go-carprice/pkg/form"
)

const (
	DefaultTitle  = "Car Price Predictor 🚗"
	DefaultIntro  = "Fill in the details below to get a price estimate for your car."
	DefaultSubmit = "Predict Price"
)

// DefaultSections is the field layout: car details, technical specs, then
// ownership and condition.
func DefaultSections() []SectionLayout {
	return []SectionLayout{
		{ID: "car-details", Title: "Car Details", Fields: []string{
			dataset.FieldBrand, dataset.FieldModel, dataset.FieldCity,
		}},
		{ID: "technical-specs", Title: "Technical Specs", Fields: []string{
			form.FieldCarAge, form.FieldKmsDriven, form.FieldEngineCapacity, form.FieldMileage, form.FieldSeats,
		}},
		{ID: "ownership", Title: "Ownership & Condition", Fields: []string{
			dataset.FieldFuelType, dataset.FieldTransmissionType, dataset.FieldOwnerType, dataset.FieldInsurance,
		}},
	}
}

// SectionLayout assigns fields to a section.
type SectionLayout struct {
	ID     string
	Title  string
	Fields []string
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithTitle overrides the page title.
func WithTitle(title string) BuilderOption {
	return func(b *Builder) {
		if title != "" {
			b.title = title
		}
	}
}

// WithIntro overrides the intro text. Renderers may treat it as markdown.
func WithIntro(intro string) BuilderOption {
	return func(b *Builder) {
		if intro != "" {
			b.intro = intro
		}
	}
}

// WithEndpoint sets the form action.
func WithEndpoint(endpoint string) BuilderOption {
	return func(b *Builder) {
		b.endpoint = endpoint
	}
}

// WithLabel overrides a single field label.
func WithLabel(field, label string) BuilderOption {
	return func(b *Builder) {
		b.labels[field] = label
	}
}

// WithLayout replaces the section layout.
func WithLayout(sections ...SectionLayout) BuilderOption {
	return func(b *Builder) {
		if len(sections) > 0 {
			b.layout = sections
		}
	}
}

// WithDecorators registers decorators that run after Build.
func WithDecorators(decorators ...Decorator) BuilderOption {
	return func(b *Builder) {
		b.decorators = append(b.decorators, decorators...)
	}
}

// Builder produces FormModels for a controller.
type Builder struct {
	ctrl       *form.Controller
	title      string
	intro      string
	endpoint   string
	labels     map[string]string
	layout     []SectionLayout
	decorators []Decorator
}

// NewBuilder constructs a Builder over ctrl.
func NewBuilder(ctrl *form.Controller, opts ...BuilderOption) *Builder {
	b := &Builder{
		ctrl:     ctrl,
		title:    DefaultTitle,
		intro:    DefaultIntro,
		endpoint: "/",
		labels:   make(map[string]string, len(DefaultLabels)),
		layout:   DefaultSections(),
	}
	for field, label := range DefaultLabels {
		b.labels[field] = label
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build renders s into a FormModel. Model options follow the selected brand.
func (b *Builder) Build(s form.State) (FormModel, error) {
	m := FormModel{
		Title:    b.title,
		Intro:    b.intro,
		Endpoint: b.endpoint,
		Method:   http.MethodPost,
		Submit:   DefaultSubmit,
	}

	for _, layout := range b.layout {
		section := Section{ID: layout.ID, Title: layout.Title}
		for _, name := range layout.Fields {
			field, err := b.field(s, name)
			if err != nil {
				return FormModel{}, err
			}
			section.Fields = append(section.Fields, field)
		}
		m.Sections = append(m.Sections, section)
	}

	for _, decorator := range b.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(&m); err != nil {
			return FormModel{}, err
		}
	}
	return m, nil
}

func (b *Builder) field(s form.State, name string) (Field, error) {
	field := Field{
		Name:     name,
		Label:    b.label(name),
		Value:    s.Value(name),
		Required: true,
	}

	if name == form.FieldSeats {
		values, err := b.ctrl.Options(name)
		if err != nil {
			return Field{}, err
		}
		field.Kind = FieldKindSelect
		field.Integer = true
		field.Options = options(values, field.Value)
		return field, nil
	}

	if bound, ok := b.ctrl.Bound(name); ok {
		field.Kind = FieldKindNumber
		min := bound.Min
		field.Min = &min
		if bound.HasMax {
			max := bound.Max
			field.Max = &max
		}
		field.Step = bound.Step
		field.Integer = bound.Integer
		return field, nil
	}

	var values []string
	if name == dataset.FieldModel {
		values = b.ctrl.ModelOptions(s)
		field.DependsOn = dataset.FieldBrand
	} else {
		var err error
		values, err = b.ctrl.Options(name)
		if err != nil {
			return Field{}, err
		}
	}
	field.Kind = FieldKindSelect
	field.Options = options(values, field.Value)
	return field, nil
}

func (b *Builder) label(name string) string {
	if label, ok := b.labels[name]; ok && label != "" {
		return label
	}
	return DefaultLabeler(name)
}

func options(values []string, selected string) []Option {
	out := make([]Option, 0, len(values))
	for _, value := range values {
		out = append(out, Option{Value: value, Label: value, Selected: value == selected})
	}
	return out
}

// FormatBound renders a bound value the way inputs expect it.
func FormatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
