// Package carprice wires the reference dataset, form controller, model
// predictor and renderers into a ready-to-serve car resale price estimator.
package carprice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/goliatone/go-carprice/pkg/dataset"
	"github.com/goliatone/go-carprice/pkg/form"
	"github.com/goliatone/go-carprice/pkg/model"
	"github.com/goliatone/go-carprice/pkg/orchestrator"
	"github.com/goliatone/go-carprice/pkg/predictor"
	"github.com/goliatone/go-carprice/pkg/render"
	"github.com/goliatone/go-carprice/pkg/renderers/html"
	"github.com/goliatone/go-carprice/pkg/renderers/tui"
	"github.com/goliatone/go-carprice/pkg/rules"
)

// MissingFilesMessage is shown when the dataset or the model artifact cannot
// be loaded at startup.
const MissingFilesMessage = "Required files are not found. Make sure the dataset (CARPRICE_DATASET) and the model artifact (CARPRICE_PREDICTOR) are available."

// Settings selects the data and model backends.
type Settings struct {
	// Dataset is a CSV file path or an http(s) URL.
	Dataset        string
	DatasetTimeout time.Duration
	// Predictor is an artifact path, a file:// URL or an http(s) base URL.
	Predictor        string
	PredictorTimeout time.Duration
	// PingPredictor checks remote backends before serving.
	PingPredictor bool
	RulesFile     string
	IntroFile     string
	// ModelsEndpoint enables the browser model refresh on the HTML page.
	ModelsEndpoint string
	HTTPClient     *http.Client
	Logger         *zap.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// App is a bootstrapped estimator.
type App struct {
	Dataset      *dataset.Dataset
	Orchestrator *orchestrator.Orchestrator
}

// IsDataUnavailable reports whether err means a required file or endpoint
// could not be loaded.
func IsDataUnavailable(err error) bool {
	return errors.Is(err, dataset.ErrDataUnavailable) || errors.Is(err, predictor.ErrArtifactUnavailable)
}

// Bootstrap loads the dataset, opens the predictor and assembles the
// orchestrator with the html, json and tui renderers registered.
func Bootstrap(ctx context.Context, settings Settings) (*App, error) {
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ds, err := LoadDataset(ctx, settings.Dataset, settings.DatasetTimeout, settings.HTTPClient)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded",
		zap.String("source", ds.Source().Location()),
		zap.Int("rows", ds.Rows()),
	)

	var formOpts []form.Option
	if settings.RulesFile != "" {
		extra, err := rules.LoadFile(settings.RulesFile)
		if err != nil {
			return nil, err
		}
		formOpts = append(formOpts, form.WithRules(extra...))
		logger.Info("rules loaded", zap.String("path", settings.RulesFile), zap.Int("count", len(extra)))
	}
	ctrl, err := form.NewController(ds, formOpts...)
	if err != nil {
		return nil, err
	}

	p, err := predictor.DefaultRegistry().Open(ctx, settings.Predictor, predictor.OpenConfig{
		Timeout:    settings.PredictorTimeout,
		HTTPClient: settings.HTTPClient,
		Logger:     logger.Named("predictor"),
	})
	if err != nil {
		return nil, err
	}
	if pinger, ok := p.(predictor.Pinger); ok && settings.PingPredictor {
		if err := pinger.Ping(ctx); err != nil {
			return nil, err
		}
	}

	var modelOpts []model.BuilderOption
	if settings.IntroFile != "" {
		intro, err := os.ReadFile(settings.IntroFile)
		if err != nil {
			return nil, fmt.Errorf("carprice: read intro %s: %w", settings.IntroFile, err)
		}
		modelOpts = append(modelOpts, model.WithIntro(string(intro)))
	}

	registry, err := NewRegistry(settings.ModelsEndpoint)
	if err != nil {
		return nil, err
	}

	opts := []orchestrator.Option{
		orchestrator.WithController(ctrl),
		orchestrator.WithPredictor(p),
		orchestrator.WithModelBuilder(model.NewBuilder(ctrl, modelOpts...)),
		orchestrator.WithRegistry(registry),
		orchestrator.WithLogger(logger.Named("orchestrator")),
	}
	if settings.TracerProvider != nil {
		opts = append(opts, orchestrator.WithTracerProvider(settings.TracerProvider))
	}
	if settings.MeterProvider != nil {
		opts = append(opts, orchestrator.WithMeterProvider(settings.MeterProvider))
	}
	orch, err := orchestrator.New(opts...)
	if err != nil {
		return nil, err
	}
	return &App{Dataset: ds, Orchestrator: orch}, nil
}

// LoadDataset reads the reference dataset from a path or an http(s) URL.
func LoadDataset(ctx context.Context, raw string, timeout time.Duration, client *http.Client) (*dataset.Dataset, error) {
	src, err := dataset.ParseSource(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dataset.ErrDataUnavailable, err)
	}
	loaderOpts := []dataset.LoaderOption{dataset.WithHTTPFallback(timeout)}
	if client != nil {
		loaderOpts = append(loaderOpts, dataset.WithHTTPClient(client))
	}
	return dataset.Load(ctx, NewDatasetLoader(loaderOpts...), src)
}

// NewRegistry returns a renderer registry with the html, json and tui
// renderers. A non-empty modelsEndpoint enables the page script.
func NewRegistry(modelsEndpoint string) (*render.Registry, error) {
	page, err := html.New(html.WithModelsEndpoint(modelsEndpoint))
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	for _, renderer := range []render.Renderer{
		page,
		render.NewJSONRenderer(false),
		tui.New(tui.WithOutputFormat(tui.OutputFormatPrettyText)),
	} {
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
