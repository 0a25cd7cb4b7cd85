package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/goliatone/go-carprice/pkg/form"
	"github.com/goliatone/go-carprice/pkg/orchestrator"
	"github.com/goliatone/go-carprice/pkg/prediction"
	"github.com/goliatone/go-carprice/pkg/predictor"
	"github.com/goliatone/go-carprice/pkg/present"
	"github.com/goliatone/go-carprice/pkg/testsupport"
)

func newOrchestrator(t *testing.T, p predictor.Predictor, opts ...orchestrator.Option) *orchestrator.Orchestrator {
	t.Helper()

	base := []orchestrator.Option{
		orchestrator.WithController(testsupport.MustController(t)),
		orchestrator.WithPredictor(p),
		orchestrator.WithTracerProvider(tracenoop.NewTracerProvider()),
		orchestrator.WithMeterProvider(metricnoop.NewMeterProvider()),
		orchestrator.WithIDGenerator(func() string { return "01TESTATTEMPT" }),
	}
	orch, err := orchestrator.New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return orch
}

func TestNew_RequiresControllerAndPredictor(t *testing.T) {
	if _, err := orchestrator.New(orchestrator.WithPredictor(&testsupport.StubPredictor{})); err == nil {
		t.Fatalf("expected error without controller")
	}
	if _, err := orchestrator.New(orchestrator.WithController(testsupport.MustController(t))); err == nil {
		t.Fatalf("expected error without predictor")
	}
}

func TestNew_DefaultRegistry(t *testing.T) {
	orch := newOrchestrator(t, &testsupport.StubPredictor{})
	if diff := cmp.Diff([]string{"html", "json"}, orch.Registry().List()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
}

func TestPredict_ScenarioWithArtifact(t *testing.T) {
	artifact, err := predictor.ParseArtifact(testsupport.ModelArtifact())
	if err != nil {
		t.Fatalf("parse artifact: %v", err)
	}
	orch := newOrchestrator(t, artifact)
	state := testsupport.ScenarioState()

	out := orch.Predict(context.Background(), state)
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err)
	}
	if math.Abs(out.Result.Price-7.49) > 1e-9 {
		t.Fatalf("expected 7.49, got %v", out.Result.Price)
	}
	if out.Output.Text != "Estimated Price: ₹ 7.49 Lakhs" {
		t.Fatalf("unexpected output %q", out.Output.Text)
	}
	if out.ID != "01TESTATTEMPT" {
		t.Fatalf("unexpected attempt id %q", out.ID)
	}
	if out.Record == nil || out.Record.MileageNumeric != 18 {
		t.Fatalf("expected record with mileage_numeric 18, got %+v", out.Record)
	}
	if diff := cmp.Diff(state, out.State); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
}

func TestPredict_StubReceivesRecord(t *testing.T) {
	stub := &testsupport.StubPredictor{Price: 4.2}
	orch := newOrchestrator(t, stub)

	out := orch.Predict(context.Background(), testsupport.ScenarioState())
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err)
	}
	records := stub.Records()
	if len(records) != 1 {
		t.Fatalf("expected one predictor call, got %d", len(records))
	}
	if records[0].Brand != "Honda" || records[0].Model != "City" || records[0].EngineCapacity != 1500 {
		t.Fatalf("unexpected record %+v", records[0])
	}
	if out.Output.Kind != present.KindSuccess {
		t.Fatalf("expected success kind, got %q", out.Output.Kind)
	}
}

func TestPredict_IncompleteNeverCallsPredictor(t *testing.T) {
	stub := &testsupport.StubPredictor{Price: 1}
	orch := newOrchestrator(t, stub)
	ctrl := orch.Controller()

	state, err := orch.Initial()
	if err != nil {
		t.Fatalf("initial: %v", err)
	}
	state, err = ctrl.SelectBrand(state, "Tata")
	if err != nil {
		t.Fatalf("select brand: %v", err)
	}

	out := orch.Predict(context.Background(), state)
	if !out.Incomplete() {
		t.Fatalf("expected incomplete outcome, got %v", out.Err)
	}
	if out.OK() {
		t.Fatalf("incomplete outcome must not be OK")
	}
	if stub.Calls() != 0 {
		t.Fatalf("predictor must not be called, got %d calls", stub.Calls())
	}
	if out.Output.Kind != present.KindIncomplete || !strings.Contains(out.Output.Text, "model") {
		t.Fatalf("unexpected output %+v", out.Output)
	}
	if out.Record != nil {
		t.Fatalf("no record expected for incomplete state")
	}
}

func TestPredict_ContractIssuesAreReportedAsInvalid(t *testing.T) {
	stub := &testsupport.StubPredictor{Price: 1}
	orch := newOrchestrator(t, stub)

	state := testsupport.ScenarioState()
	state.KmsDriven = -5

	out := orch.Predict(context.Background(), state)
	if !out.Incomplete() {
		t.Fatalf("expected incomplete outcome, got %v", out.Err)
	}
	if stub.Calls() != 0 {
		t.Fatalf("predictor must not be called, got %d calls", stub.Calls())
	}
	if got, want := out.Output.Text, "Cannot predict yet: invalid kms_driven"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestPredict_FailureKeepsState(t *testing.T) {
	stub := &testsupport.StubPredictor{Err: testsupport.ErrStub}
	orch := newOrchestrator(t, stub)
	state := testsupport.ScenarioState()

	out := orch.Predict(context.Background(), state)
	if out.OK() {
		t.Fatalf("expected failure")
	}
	if !errors.Is(out.Err, predictor.ErrPredictionFailure) {
		t.Fatalf("expected ErrPredictionFailure, got %v", out.Err)
	}
	want := "An error occurred during prediction: " + testsupport.ErrStub.Error()
	if out.Output.Text != want {
		t.Fatalf("output mismatch\nwant %q\n got %q", want, out.Output.Text)
	}
	if diff := cmp.Diff(state, out.State); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}

	retry := orch.Predict(context.Background(), out.State)
	if retry.OK() || stub.Calls() != 2 {
		t.Fatalf("expected retry to reach predictor again, calls=%d", stub.Calls())
	}
}

func TestPredict_PanickingPredictor(t *testing.T) {
	orch := newOrchestrator(t, predictor.Func(func(context.Context, prediction.Record) (float64, error) {
		panic("boom")
	}))

	out := orch.Predict(context.Background(), testsupport.ScenarioState())
	if out.OK() || out.Output.Kind != present.KindError {
		t.Fatalf("expected error output, got %+v", out.Output)
	}
	if !strings.Contains(out.Output.Text, "boom") {
		t.Fatalf("expected panic message in output, got %q", out.Output.Text)
	}
}

func TestGenerate_HTML(t *testing.T) {
	orch := newOrchestrator(t, &testsupport.StubPredictor{Price: 7.49})
	state := testsupport.ScenarioState()
	out := orch.Predict(context.Background(), state)

	page, err := orch.Generate(context.Background(), orchestrator.Request{State: state, Outcome: &out})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if got := strings.TrimSpace(doc.Find(".result h2").Text()); got != "Estimated Price: ₹ 7.49 Lakhs" {
		t.Fatalf("unexpected result text %q", got)
	}
	if id, _ := doc.Find(".result").Attr("data-request-id"); id != "01TESTATTEMPT" {
		t.Fatalf("unexpected request id %q", id)
	}
	if got, _ := doc.Find(`select[name="model"] option[selected]`).Attr("value"); got != "City" {
		t.Fatalf("expected City selected, got %q", got)
	}
}

func TestGenerate_JSONWithErrors(t *testing.T) {
	orch := newOrchestrator(t, &testsupport.StubPredictor{})
	ctrl := orch.Controller()
	state, _ := orch.Initial()
	state, _ = ctrl.SelectBrand(state, "Tata")
	out := orch.Predict(context.Background(), state)

	_, errs := orch.Apply(state, map[string]string{"engine_capacity": "100"})
	if len(errs) == 0 {
		t.Fatalf("expected apply errors")
	}

	body, err := orch.Generate(context.Background(), orchestrator.Request{
		State:    state,
		Renderer: "JSON",
		Errors:   errs,
		Outcome:  &out,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var payload struct {
		Errors map[string][]string `json:"errors"`
		Result present.Output      `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Errors["engine_capacity"]) == 0 {
		t.Fatalf("expected engine_capacity error, got %v", payload.Errors)
	}
	if diff := cmp.Diff([]string{"is required"}, payload.Errors["model"]); diff != "" {
		t.Fatalf("model errors mismatch (-want +got):\n%s", diff)
	}
	if payload.Result.Kind != present.KindIncomplete {
		t.Fatalf("expected incomplete result, got %q", payload.Result.Kind)
	}
}

func TestGenerate_UnknownRenderer(t *testing.T) {
	orch := newOrchestrator(t, &testsupport.StubPredictor{})
	_, err := orch.Generate(context.Background(), orchestrator.Request{State: form.State{}, Renderer: "pdf"})
	if err == nil || !strings.Contains(err.Error(), "pdf") {
		t.Fatalf("expected unknown renderer error, got %v", err)
	}
}
