package model_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-carprice/pkg/model"
	"github.com/goliatone/go-carprice/pkg/testsupport"
)

func TestBuilder_Layout(t *testing.T) {
	ctrl := testsupport.MustController(t)
	m, err := model.NewBuilder(ctrl).Build(testsupport.ScenarioState())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if m.Title != model.DefaultTitle || m.Submit != "Predict Price" || m.Method != "POST" {
		t.Fatalf("unexpected header %#v", m)
	}

	var titles []string
	var names []string
	for _, section := range m.Sections {
		titles = append(titles, section.Title)
		for _, field := range section.Fields {
			names = append(names, field.Name)
		}
	}
	if diff := cmp.Diff([]string{"Car Details", "Technical Specs", "Ownership & Condition"}, titles); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	wantNames := []string{
		"brand", "model", "city",
		"car_age", "kms_driven", "engine_capacity", "mileage", "seats",
		"fuel_type", "transmission_type", "owner_type", "insurance",
	}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_ModelOptionsFollowBrand(t *testing.T) {
	ctrl := testsupport.MustController(t)
	b := model.NewBuilder(ctrl)

	m, err := b.Build(testsupport.ScenarioState())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	field, ok := m.Field("model")
	if !ok {
		t.Fatalf("model field missing")
	}
	want := []model.Option{
		{Value: "City", Label: "City", Selected: true},
		{Value: "Civic", Label: "Civic"},
	}
	if diff := cmp.Diff(want, field.Options); diff != "" {
		t.Fatalf("model options mismatch (-want +got):\n%s", diff)
	}
	if field.DependsOn != "brand" {
		t.Fatalf("expected model to depend on brand, got %q", field.DependsOn)
	}

	state, err := ctrl.SelectBrand(testsupport.ScenarioState(), "Tata")
	if err != nil {
		t.Fatalf("select brand: %v", err)
	}
	m, err = b.Build(state)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	field, _ = m.Field("model")
	if len(field.Options) != 0 || field.Value != "" {
		t.Fatalf("expected empty model field for Tata, got %#v", field)
	}
}

func TestBuilder_NumericFields(t *testing.T) {
	m, err := model.NewBuilder(testsupport.MustController(t)).Build(testsupport.ScenarioState())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	engine, _ := m.Field("engine_capacity")
	if engine.Kind != model.FieldKindNumber || engine.Label != "Engine Capacity (CC)" {
		t.Fatalf("unexpected engine field %#v", engine)
	}
	if model.FormatBound(engine.Min) != "600" || model.FormatBound(engine.Max) != "6000" || engine.Step != 100 {
		t.Fatalf("unexpected engine bounds %v..%v step %v", engine.Min, engine.Max, engine.Step)
	}
	if engine.Value != "1500" {
		t.Fatalf("unexpected engine value %q", engine.Value)
	}

	kms, _ := m.Field("kms_driven")
	if kms.Max != nil {
		t.Fatalf("expected open upper bound for kms, got %v", *kms.Max)
	}

	mileage, _ := m.Field("mileage")
	if mileage.Integer || mileage.Step != 0.5 {
		t.Fatalf("unexpected mileage field %#v", mileage)
	}

	seats, _ := m.Field("seats")
	if seats.Kind != model.FieldKindSelect || seats.Label != "Number of Seats" {
		t.Fatalf("unexpected seats field %#v", seats)
	}
	var values []string
	for _, opt := range seats.Options {
		values = append(values, opt.Value)
	}
	if diff := cmp.Diff([]string{"2", "5", "7"}, values); diff != "" {
		t.Fatalf("seat options mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_OptionsAndDecorators(t *testing.T) {
	b := model.NewBuilder(testsupport.MustController(t),
		model.WithTitle("Resale"),
		model.WithLabel("city", "Registration City"),
		model.WithEndpoint("/estimate"),
		model.WithDecorators(model.DecoratorFunc(func(m *model.FormModel) error {
			m.Intro = "decorated"
			return nil
		})),
	)
	m, err := b.Build(testsupport.ScenarioState())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	city, _ := m.Field("city")
	if m.Title != "Resale" || m.Intro != "decorated" || m.Endpoint != "/estimate" || city.Label != "Registration City" {
		t.Fatalf("options not applied: %#v", m)
	}

	boom := errors.New("boom")
	_, err = model.NewBuilder(testsupport.MustController(t),
		model.WithDecorators(model.DecoratorFunc(func(*model.FormModel) error { return boom })),
	).Build(testsupport.ScenarioState())
	if !errors.Is(err, boom) {
		t.Fatalf("expected decorator error, got %v", err)
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"body_type":      "Body Type",
		"fuel-type":      "Fuel Type",
		"registration":   "Registration",
		" service_year ": "Service Year",
	}
	for in, want := range cases {
		if got := model.DefaultLabeler(in); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", in, got, want)
		}
	}
}
