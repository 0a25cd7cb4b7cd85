package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-carprice/pkg/orchestrator"
	"github.com/goliatone/go-carprice/pkg/testsupport"
)

func newEngine(t *testing.T, stub *testsupport.StubPredictor) *orchestrator.Orchestrator {
	t.Helper()

	orch, err := orchestrator.New(
		orchestrator.WithController(testsupport.MustController(t)),
		orchestrator.WithPredictor(stub),
	)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return orch
}

func scenarioDriver() *stubDriver {
	return &stubDriver{
		selects: map[string]string{
			"Brand":           "Honda",
			"Model":           "City",
			"City":            "Pune",
			"Number of Seats": "5",
			"Fuel Type":       "Petrol",
			"Transmission":    "Manual",
			"Owner Type":      "First",
			"Insurance Type":  "Comprehensive",
		},
		inputs: map[string][]string{
			"Car Age (in years)":   {"5"},
			"Kilometres Driven":    {"45000"},
			"Engine Capacity (CC)": {"1500"},
			"Mileage (kmpl)":       {"18"},
		},
	}
}

func containsMessage(messages []string, substr string) bool {
	for _, msg := range messages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestSession_Scenario(t *testing.T) {
	stub := &testsupport.StubPredictor{Price: 7.49}
	driver := scenarioDriver()
	session, err := NewSession(newEngine(t, stub), WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	out, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err)
	}
	if diff := cmp.Diff(testsupport.ScenarioState(), out.State); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	if stub.Calls() != 1 {
		t.Fatalf("expected one predictor call, got %d", stub.Calls())
	}
	if !containsMessage(driver.infos, "Estimated Price: ₹ 7.49 Lakhs") {
		t.Fatalf("expected price message, got %v", driver.infos)
	}

	wantOrder := []string{
		"Brand", "Model", "City",
		"Car Age (in years)", "Kilometres Driven", "Engine Capacity (CC)", "Mileage (kmpl)", "Number of Seats",
		"Fuel Type", "Transmission", "Owner Type", "Insurance Type",
		"Estimate another car?",
	}
	if diff := cmp.Diff(wantOrder, driver.prompted); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"== Car Details", "== Technical Specs", "== Ownership & Condition"}, driver.infos[:3]); diff != "" {
		t.Fatalf("section headers mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_InvalidNumberReprompts(t *testing.T) {
	stub := &testsupport.StubPredictor{Price: 7.49}
	driver := scenarioDriver()
	driver.inputs["Engine Capacity (CC)"] = []string{"100", "abc", "1500"}
	session, _ := NewSession(newEngine(t, stub), WithPromptDriver(driver))

	out, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.State.EngineCapacity != 1500 {
		t.Fatalf("expected engine capacity 1500, got %d", out.State.EngineCapacity)
	}
	if !containsMessage(driver.infos, "! Invalid Engine Capacity (CC): ") {
		t.Fatalf("expected invalid message, got %v", driver.infos)
	}
	if !containsMessage(driver.infos, "must be a number") {
		t.Fatalf("expected number message, got %v", driver.infos)
	}
}

func TestSession_TooManyAttempts(t *testing.T) {
	stub := &testsupport.StubPredictor{Price: 1}
	driver := scenarioDriver()
	driver.inputs["Mileage (kmpl)"] = []string{"2", "99"}
	session, _ := NewSession(newEngine(t, stub), WithPromptDriver(driver), WithMaxAttempts(2))

	_, err := session.Run(context.Background())
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if stub.Calls() != 0 {
		t.Fatalf("predictor must not be called, got %d", stub.Calls())
	}
}

func TestSession_BrandWithoutModels(t *testing.T) {
	stub := &testsupport.StubPredictor{Price: 1}
	driver := scenarioDriver()
	driver.selects["Brand"] = "Tata"
	session, _ := NewSession(newEngine(t, stub), WithPromptDriver(driver))

	out, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !out.Incomplete() {
		t.Fatalf("expected incomplete outcome, got %v", out.Err)
	}
	if stub.Calls() != 0 {
		t.Fatalf("predictor must not be called, got %d", stub.Calls())
	}
	if !containsMessage(driver.infos, "No model options available for Tata") {
		t.Fatalf("expected empty model notice, got %v", driver.infos)
	}
	if !containsMessage(driver.infos, "! Cannot predict yet: missing model") {
		t.Fatalf("expected incomplete message, got %v", driver.infos)
	}
	for _, prompt := range driver.prompted {
		if prompt == "Model" {
			t.Fatalf("model must not be prompted without options")
		}
	}
}

func TestSession_FailureThenRetry(t *testing.T) {
	stub := &testsupport.StubPredictor{Err: testsupport.ErrStub}
	driver := scenarioDriver()
	driver.confirm = []bool{true, false}
	session, _ := NewSession(newEngine(t, stub), WithPromptDriver(driver))

	out, err := session.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.OK() {
		t.Fatalf("expected failure outcome")
	}
	if stub.Calls() != 2 {
		t.Fatalf("expected two attempts, got %d", stub.Calls())
	}
	if !containsMessage(driver.infos, "! An error occurred during prediction: pipeline rejected input") {
		t.Fatalf("expected failure message, got %v", driver.infos)
	}
	if diff := cmp.Diff(testsupport.ScenarioState(), out.State); diff != "" {
		t.Fatalf("state mismatch after retry (-want +got):\n%s", diff)
	}
}

func TestSession_Aborted(t *testing.T) {
	driver := scenarioDriver()
	driver.failOn = "City"
	session, _ := NewSession(newEngine(t, &testsupport.StubPredictor{}), WithPromptDriver(driver))

	if _, err := session.Run(context.Background()); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestNewSession_RequiresEngine(t *testing.T) {
	if _, err := NewSession(nil); err == nil {
		t.Fatalf("expected error for nil engine")
	}
}
