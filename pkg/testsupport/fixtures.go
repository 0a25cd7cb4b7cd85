// Package testsupport bundles fixtures shared by package tests: a small
// reference dataset, a linear model artifact, and predictor stubs.
package testsupport

import (
	"context"
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goliatone/go-carprice/pkg/dataset"
	"github.com/goliatone/go-carprice/pkg/form"
	"github.com/goliatone/go-carprice/pkg/prediction"
)

//go:embed testdata/cars.csv
var carsCSV []byte

//go:embed testdata/model.yaml
var modelYAML []byte

// CarsCSV returns a copy of the reference dataset fixture.
func CarsCSV() []byte {
	return append([]byte(nil), carsCSV...)
}

// ModelArtifact returns a copy of the linear model artifact fixture.
func ModelArtifact() []byte {
	return append([]byte(nil), modelYAML...)
}

// MustDataset parses the reference dataset fixture.
func MustDataset(t testing.TB) *dataset.Dataset {
	t.Helper()

	ds, err := dataset.Parse(dataset.SourceFromFS("cars.csv"), CarsCSV())
	if err != nil {
		t.Fatalf("parse dataset fixture: %v", err)
	}
	return ds
}

// MustController builds a controller over the dataset fixture.
func MustController(t testing.TB, opts ...form.Option) *form.Controller {
	t.Helper()

	ctrl, err := form.NewController(MustDataset(t), opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return ctrl
}

// WriteFile writes data under a fresh temp dir and returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// ScenarioState is the reference Honda City submission: 5 years, 45000 km,
// 1500 cc, 18 kmpl, 5 seats, Petrol, Manual, First owner, Comprehensive,
// Pune.
func ScenarioState() form.State {
	return form.State{
		Brand:            "Honda",
		Model:            "City",
		City:             "Pune",
		FuelType:         "Petrol",
		TransmissionType: "Manual",
		OwnerType:        "First",
		Insurance:        "Comprehensive",
		CarAge:           5,
		KmsDriven:        45000,
		EngineCapacity:   1500,
		Mileage:          18.0,
		Seats:            5,
	}
}

// StubPredictor returns a fixed price or error and records every call.
type StubPredictor struct {
	Price float64
	Err   error

	mu      sync.Mutex
	records []prediction.Record
}

// Predict records rec and returns the configured outcome.
func (s *StubPredictor) Predict(ctx context.Context, rec prediction.Record) (float64, error) {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Price, nil
}

// Calls reports how many times Predict ran.
func (s *StubPredictor) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns the records Predict received.
func (s *StubPredictor) Records() []prediction.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]prediction.Record(nil), s.records...)
}

// ErrStub is a canned predictor failure.
var ErrStub = errors.New("pipeline rejected input: unknown category 'City' in column model")
