package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-carprice"
	"github.com/goliatone/go-carprice/pkg/renderers/tui"
	"github.com/goliatone/go-carprice/pkg/testsupport"
)

type fixture struct {
	dataset   string
	predictor string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return fixture{
		dataset:   testsupport.WriteFile(t, "cars.csv", testsupport.CarsCSV()),
		predictor: testsupport.WriteFile(t, "model.yaml", testsupport.ModelArtifact()),
	}
}

func (f fixture) args(args ...string) []string {
	base := []string{
		"--env-file=",
		"--log-level=error",
		"--dataset", f.dataset,
		"--predictor", f.predictor,
	}
	return append(base, args...)
}

func execute(t *testing.T, opts *rootOptions, args []string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if opts == nil {
		return Run(context.Background(), args, &stdout, &stderr), stdout.String(), stderr.String()
	}
	opts.out, opts.errOut = &stdout, &stderr
	root := newRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		stderr.WriteString(err.Error())
		return 1, stdout.String(), stderr.String()
	}
	return 0, stdout.String(), stderr.String()
}

var scenarioFlags = []string{
	"predict",
	"--brand", "Honda", "--model", "City", "--city", "Pune",
	"--car-age", "5", "--kms-driven", "45000", "--engine-capacity", "1500",
	"--mileage", "18", "--seats", "5",
	"--fuel-type", "Petrol", "--transmission", "Manual",
	"--owner-type", "First", "--insurance", "Comprehensive",
}

func TestPredict_Scenario(t *testing.T) {
	f := newFixture(t)

	code, stdout, stderr := execute(t, nil, f.args(append(scenarioFlags, "--output", "json")...))
	require.Equal(t, 0, code, stderr)

	var payload struct {
		Values map[string]string `json:"values"`
		Result struct {
			Kind string `json:"kind"`
			Text string `json:"text"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "success", payload.Result.Kind)
	assert.Equal(t, "Estimated Price: ₹ 7.49 Lakhs", payload.Result.Text)
	assert.Equal(t, "City", payload.Values["model"])
}

func TestPredict_PrettyOutput(t *testing.T) {
	f := newFixture(t)

	code, stdout, _ := execute(t, nil, f.args(scenarioFlags...))
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "== Car Details")
	assert.True(t, strings.HasSuffix(stdout, "Estimated Price: ₹ 7.49 Lakhs\n"), stdout)
}

func TestPredict_BrandWithoutModels(t *testing.T) {
	f := newFixture(t)

	code, stdout, _ := execute(t, nil, f.args("predict", "--brand", "Tata"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Cannot predict yet: missing model")
}

func TestPredict_InvalidInput(t *testing.T) {
	f := newFixture(t)

	code, stdout, _ := execute(t, nil, f.args("predict", "--engine-capacity", "9000"))
	assert.Equal(t, 1, code)
	assert.NotContains(t, stdout, "Estimated Price")

	code, stdout, _ = execute(t, nil, f.args("predict", "--brand", "Honda", "--model", "Swift"))
	assert.Equal(t, 1, code)
	assert.NotContains(t, stdout, "Estimated Price")

	code, _, stderr := execute(t, nil, f.args("predict", "--output", "xml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown output format")
}

func TestPredict_MissingFiles(t *testing.T) {
	f := newFixture(t)
	f.predictor = f.predictor + ".missing"

	code, _, stderr := execute(t, nil, f.args(scenarioFlags...))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, carprice.MissingFilesMessage)
}

func TestOptions(t *testing.T) {
	f := newFixture(t)

	code, stdout, _ := execute(t, nil, f.args("options", "model", "--brand", "Honda"))
	require.Equal(t, 0, code)
	assert.Equal(t, "City\nCivic\n", stdout)

	code, stdout, _ = execute(t, nil, f.args("options", "seats"))
	require.Equal(t, 0, code)
	assert.Equal(t, "2\n5\n7\n", stdout)

	code, _, stderr := execute(t, nil, f.args("options", "model"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--brand is required")

	code, _, _ = execute(t, nil, f.args("options", "colour"))
	assert.Equal(t, 1, code)
}

func TestOptions_PredictorNotRequired(t *testing.T) {
	f := newFixture(t)
	args := []string{"--env-file=", "--dataset", f.dataset, "options", "city"}

	code, stdout, stderr := execute(t, nil, args)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Pune\n")
}

func TestLint(t *testing.T) {
	good := testsupport.WriteFile(t, "good.yaml", []byte(`rules:
  - field: kms_driven
    logic: {"<=": [{"var": "value"}, 500000]}
    message: must be at most 500000 km
`))
	bad := testsupport.WriteFile(t, "bad.yaml", []byte(`rules:
  - field: mileage_numeric
    logic: {"<=": [{"var": "value"}, 30]}
  - field: colour
    logic: {"==": [{"var": "value"}, 1]}
`))

	code, stdout, _ := execute(t, nil, []string{"lint", good})
	require.Equal(t, 0, code)
	assert.Equal(t, "1 file(s) ok\n", stdout)

	code, _, stderr := execute(t, nil, []string{"lint", good, bad})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, bad+": rules > 0 > mileage_numeric -> unsupported field")
	assert.Contains(t, stderr, "rules use the form name mileage")
	assert.Contains(t, stderr, "rules > 1 > colour -> unsupported field")
}

// acceptDriver takes every default and declines another estimate.
type acceptDriver struct {
	infos []string
}

func (d *acceptDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	return cfg.Default, nil
}

func (d *acceptDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return false, nil
}

func (d *acceptDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	return cfg.DefaultIndex, nil
}

func (d *acceptDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func TestTUI_AcceptDefaults(t *testing.T) {
	f := newFixture(t)
	driver := &acceptDriver{}

	code, _, stderr := execute(t, &rootOptions{driver: driver}, f.args("tui"))
	require.Equal(t, 0, code, stderr)
	require.NotEmpty(t, driver.infos)
	assert.Contains(t, driver.infos[len(driver.infos)-1], "Estimated Price: ₹ ")
}
