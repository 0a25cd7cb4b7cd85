package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/goliatone/go-carprice/pkg/form"
	"github.com/goliatone/go-carprice/pkg/model"
	"github.com/goliatone/go-carprice/pkg/prediction"
	"github.com/goliatone/go-carprice/pkg/predictor"
	"github.com/goliatone/go-carprice/pkg/present"
	"github.com/goliatone/go-carprice/pkg/render"
	"github.com/goliatone/go-carprice/pkg/renderers/html"
)

const (
	defaultRendererName = "html"
	instrumentationName = "github.com/goliatone/go-carprice/pkg/orchestrator"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithController sets the form controller. Required.
func WithController(ctrl *form.Controller) Option {
	return func(o *Orchestrator) {
		o.controller = ctrl
	}
}

// WithPredictor sets the model predictor. Required.
func WithPredictor(p predictor.Predictor) Option {
	return func(o *Orchestrator) {
		o.predictor = p
	}
}

// WithRecordBuilder injects a prediction record builder.
func WithRecordBuilder(b *prediction.Builder) Option {
	return func(o *Orchestrator) {
		o.records = b
	}
}

// WithPresenter injects a result presenter.
func WithPresenter(p *present.Presenter) Option {
	return func(o *Orchestrator) {
		o.presenter = p
	}
}

// WithModelBuilder injects a form model builder.
func WithModelBuilder(b *model.Builder) Option {
	return func(o *Orchestrator) {
		o.models = b
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits one.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Orchestrator) {
		o.meterProvider = mp
	}
}

// WithIDGenerator overrides attempt ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newID = fn
	}
}

// Orchestrator coordinates a prediction attempt end to end. It is immutable
// after New and safe for concurrent use.
type Orchestrator struct {
	controller      *form.Controller
	predictor       predictor.Predictor
	records         *prediction.Builder
	presenter       *present.Presenter
	models          *model.Builder
	registry        *render.Registry
	defaultRenderer string
	logger          *zap.Logger
	tracerProvider  trace.TracerProvider
	meterProvider   metric.MeterProvider
	newID           func() string

	tracer         trace.Tracer
	latency        metric.Float64Histogram
	latencyEnabled bool
	attempts       metric.Int64Counter
	attemptsOn     bool
}

// New constructs an Orchestrator applying any provided options. Missing
// collaborators other than the controller and predictor get built-in
// defaults.
func New(options ...Option) (*Orchestrator, error) {
	o := &Orchestrator{defaultRenderer: defaultRendererName}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if err := o.applyDefaults(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Orchestrator) applyDefaults() error {
	if o.controller == nil {
		return errors.New("orchestrator: form controller is required")
	}
	if o.predictor == nil {
		return errors.New("orchestrator: predictor is required")
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.records == nil {
		b, err := prediction.NewBuilder()
		if err != nil {
			return fmt.Errorf("orchestrator: record builder: %w", err)
		}
		o.records = b
	}
	if o.presenter == nil {
		o.presenter = present.New()
	}
	if o.models == nil {
		o.models = model.NewBuilder(o.controller)
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		page, err := html.New()
		if err != nil {
			return fmt.Errorf("orchestrator: html renderer: %w", err)
		}
		o.registry.MustRegister(page)
		o.registry.MustRegister(render.NewJSONRenderer(false))
	}
	if o.newID == nil {
		o.newID = func() string { return ulid.Make().String() }
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	o.tracer = o.tracerProvider.Tracer(instrumentationName)

	meter := o.meterProvider.Meter(instrumentationName)
	latency, err := meter.Float64Histogram(
		"carprice.prediction.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds of model predictor calls"),
	)
	if err != nil {
		o.logger.Warn("orchestrator: unable to register latency metric", zap.Error(err))
	}
	o.latency, o.latencyEnabled = latency, err == nil

	attempts, err := meter.Int64Counter(
		"carprice.prediction.attempts",
		metric.WithDescription("Count of prediction attempts by outcome"),
	)
	if err != nil {
		o.logger.Warn("orchestrator: unable to register attempts metric", zap.Error(err))
	}
	o.attempts, o.attemptsOn = attempts, err == nil
	return nil
}

// Controller exposes the form controller.
func (o *Orchestrator) Controller() *form.Controller {
	return o.controller
}

// Registry exposes the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Predictor exposes the configured predictor.
func (o *Orchestrator) Predictor() predictor.Predictor {
	return o.predictor
}

// Initial returns the starting form state.
func (o *Orchestrator) Initial() (form.State, error) {
	return o.controller.Initial()
}

// Apply applies submitted values to s. See form.Controller.Apply.
func (o *Orchestrator) Apply(s form.State, values map[string]string) (form.State, []error) {
	return o.controller.Apply(s, values)
}

// Outcome is the result of one prediction attempt. State is always the state
// the attempt was made with, so a failed attempt can be retried as is.
type Outcome struct {
	ID     string             `json:"id"`
	State  form.State         `json:"state"`
	Record *prediction.Record `json:"record,omitempty"`
	Result predictor.Result   `json:"-"`
	Output present.Output     `json:"output"`
	Err    error              `json:"-"`
}

// OK reports whether the attempt produced a price.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Result.OK()
}

// Incomplete reports whether the attempt was blocked before the predictor.
func (o Outcome) Incomplete() bool {
	return errors.Is(o.Err, prediction.ErrIncompleteState)
}

// Predict builds a record from s and, when complete, asks the predictor for a
// price. The predictor is never called for an incomplete state.
func (o *Orchestrator) Predict(ctx context.Context, s form.State) Outcome {
	out := Outcome{ID: o.newID(), State: s}

	ctx, span := o.tracer.Start(ctx, "carprice.predict",
		trace.WithAttributes(
			attribute.String("carprice.attempt_id", out.ID),
			attribute.String("carprice.brand", s.Brand),
			attribute.String("carprice.model", s.Model),
		),
	)
	defer span.End()

	logger := o.logger.With(zap.String("attempt_id", out.ID))

	rec, err := o.records.Build(s)
	if err != nil {
		out.Err = err
		out.Output = o.presenter.Incomplete(incompleteFields(err))
		span.SetAttributes(attribute.String("carprice.outcome", "incomplete"))
		o.countAttempt(ctx, "incomplete")
		logger.Info("prediction blocked", zap.Error(err))
		return out
	}
	out.Record = &rec

	start := time.Now()
	res := predictor.Invoke(ctx, o.predictor, rec)
	elapsed := time.Since(start)

	out.Result = res
	out.Output = o.presenter.Render(res)

	outcome := "success"
	if !res.OK() {
		outcome = "failure"
		if predictor.IsTimeout(res.Err()) {
			outcome = "timeout"
		}
		out.Err = res.Err()
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, res.Failure.Reason)
		logger.Warn("prediction failed",
			zap.String("reason", res.Failure.Reason),
			zap.Duration("latency", elapsed),
		)
	} else {
		logger.Info("prediction succeeded",
			zap.Float64("price_lakhs", res.Price),
			zap.Duration("latency", elapsed),
		)
	}
	span.SetAttributes(attribute.String("carprice.outcome", outcome))
	o.recordLatency(ctx, elapsed, outcome)
	o.countAttempt(ctx, outcome)
	return out
}

// incompleteFields splits a build error into empty fields and fields the
// contract rejected.
func incompleteFields(err error) (missing, invalid []string) {
	var incomplete *prediction.IncompleteStateError
	if !errors.As(err, &incomplete) {
		return nil, nil
	}
	missing = append(missing, incomplete.Missing...)
	seen := make(map[string]bool)
	for _, issue := range incomplete.Issues {
		field := issue.Field
		if field == "" {
			field = "record"
		}
		if !seen[field] {
			seen[field] = true
			invalid = append(invalid, field)
		}
	}
	return missing, invalid
}

func (o *Orchestrator) recordLatency(ctx context.Context, d time.Duration, outcome string) {
	if !o.latencyEnabled {
		return
	}
	o.latency.Record(ctx, float64(d)/float64(time.Millisecond),
		metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (o *Orchestrator) countAttempt(ctx context.Context, outcome string) {
	if !o.attemptsOn {
		return
	}
	o.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Request captures everything needed to render the form once.
type Request struct {
	// State is the form state to render.
	State form.State
	// Renderer names the registered renderer. Empty uses the default.
	Renderer string
	// Errors are rejected mutations from the last submission.
	Errors []error
	// Outcome is the last prediction attempt, if any.
	Outcome *Outcome
}

// Generate builds the form model for req.State and renders it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	renderer, err := o.renderer(req.Renderer)
	if err != nil {
		return nil, err
	}
	formModel, err := o.models.Build(req.State)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build form model: %w", err)
	}
	return renderer.Render(ctx, formModel, o.RenderOptions(req))
}

// RenderOptions derives renderer options from req.
func (o *Orchestrator) RenderOptions(req Request) render.RenderOptions {
	errs := append([]error{}, req.Errors...)
	var opts render.RenderOptions
	if req.Outcome != nil {
		if req.Outcome.Incomplete() {
			errs = append(errs, req.Outcome.Err)
		}
		output := req.Outcome.Output
		opts.Result = &output
		opts.RequestID = req.Outcome.ID
	}
	mapping := render.MapErrors(errs...)
	opts.Errors = mapping.Fields
	opts.FormErrors = mapping.Form
	return opts
}

// Model builds the form model for s without rendering it.
func (o *Orchestrator) Model(s form.State) (model.FormModel, error) {
	return o.models.Build(s)
}

func (o *Orchestrator) renderer(name string) (render.Renderer, error) {
	if name == "" {
		name = o.defaultRenderer
	}
	renderer, err := o.registry.Get(name)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}
