package carprice

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-carprice/pkg/testsupport"
)

func fixtureSettings(t *testing.T) Settings {
	t.Helper()
	return Settings{
		Dataset:   testsupport.WriteFile(t, "cars.csv", testsupport.CarsCSV()),
		Predictor: testsupport.WriteFile(t, "model.yaml", testsupport.ModelArtifact()),
	}
}

func TestBootstrap_Scenario(t *testing.T) {
	app, err := Bootstrap(context.Background(), fixtureSettings(t))
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if diff := cmp.Diff([]string{"City", "Civic"}, app.Dataset.DependentDomain("Honda")); diff != "" {
		t.Fatalf("honda models mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"html", "json", "tui"}, app.Orchestrator.Registry().List()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}

	out := app.Orchestrator.Predict(context.Background(), testsupport.ScenarioState())
	if !out.OK() {
		t.Fatalf("expected success, got %v", out.Err)
	}
	if math.Abs(out.Result.Price-7.49) > 1e-9 {
		t.Fatalf("expected 7.49, got %v", out.Result.Price)
	}
}

func TestBootstrap_RemoteDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write(testsupport.CarsCSV())
	}))
	defer srv.Close()

	settings := fixtureSettings(t)
	settings.Dataset = srv.URL + "/cars.csv"
	app, err := Bootstrap(context.Background(), settings)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if app.Dataset.Rows() == 0 {
		t.Fatalf("expected rows from remote dataset")
	}
}

func TestBootstrap_MissingFiles(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")

	settings := fixtureSettings(t)
	settings.Dataset = missing + ".csv"
	if _, err := Bootstrap(context.Background(), settings); !IsDataUnavailable(err) {
		t.Fatalf("expected data unavailable for dataset, got %v", err)
	}

	settings = fixtureSettings(t)
	settings.Predictor = missing + ".yaml"
	if _, err := Bootstrap(context.Background(), settings); !IsDataUnavailable(err) {
		t.Fatalf("expected data unavailable for artifact, got %v", err)
	}
}

func TestBootstrap_RulesAndIntro(t *testing.T) {
	settings := fixtureSettings(t)
	settings.RulesFile = testsupport.WriteFile(t, "rules.yaml", []byte(
		"rules:\n"+
			"  - field: kms_driven\n"+
			"    logic: {\"<=\": [{\"var\": \"value\"}, 500000]}\n"+
			"    message: must be at most 500000 km\n"))
	settings.IntroFile = testsupport.WriteFile(t, "intro.md", []byte("Prices are **estimates**."))

	app, err := Bootstrap(context.Background(), settings)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	state := testsupport.ScenarioState()
	if _, err := app.Orchestrator.Controller().SetNumeric(state, "kms_driven", 900000); err == nil {
		t.Fatalf("expected rules file to reject 900000 km")
	}
	fm, err := app.Orchestrator.Model(state)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	if fm.Intro != "Prices are **estimates**." {
		t.Fatalf("unexpected intro %q", fm.Intro)
	}
}
