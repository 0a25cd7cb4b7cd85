package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/goliatone/go-carprice/components/models"
	"github.com/goliatone/go-carprice/internal/observability"
	"github.com/goliatone/go-carprice/pkg/dataset"
	"github.com/goliatone/go-carprice/pkg/orchestrator"
	"github.com/goliatone/go-carprice/pkg/renderers/html"
)

const (
	defaultTimeout        = 60 * time.Second
	defaultRenderer       = "html"
	modelsRoute           = "/models"
	maxFormBodyBytes      = 1 << 20
	errorNotFoundCode     = "route_not_found"
	errorMethodNotAllowed = "method_not_allowed"
)

// ModelsPath is where the model cascade endpoint is mounted.
const ModelsPath = "/api" + modelsRoute

// Option customises the router.
type Option func(*routerConfig)

type routerConfig struct {
	logger         *zap.Logger
	tracerProvider trace.TracerProvider
	timeout        time.Duration
	middlewares    []func(http.Handler) http.Handler
}

// WithLogger sets the base request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *routerConfig) {
		cfg.logger = logger
	}
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *routerConfig) {
		cfg.tracerProvider = tp
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *routerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithMiddlewares appends additional global middleware.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// NewRouter builds the chi router serving the form page, the JSON API, the
// model cascade endpoint, static assets and health checks.
func NewRouter(orch *orchestrator.Orchestrator, ds *dataset.Dataset, opts ...Option) (chi.Router, error) {
	if orch == nil {
		return nil, errors.New("server: orchestrator is required")
	}
	if ds == nil {
		return nil, errors.New("server: dataset is required")
	}

	cfg := routerConfig{timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	h := &handlers{orch: orch, dataset: ds, logger: cfg.logger}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		observability.Trace(cfg.tracerProvider),
		observability.InjectLogger(cfg.logger),
		observability.RequestLogger,
		observability.Recovery(cfg.logger),
		middleware.Timeout(cfg.timeout),
	)
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(req.Context(), w, NewError(errorNotFoundCode, fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(req.Context(), w, NewError(errorMethodNotAllowed, fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", h.healthz)
	r.Get("/", h.page)
	r.Post("/", h.submit)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(html.AssetsFS()))))

	var mountErr error
	r.Route("/api", func(api chi.Router) {
		api.Get("/options/{field}", h.options)
		api.Post("/predict", h.predict)
		_, mountErr = models.RegisterRoutes(api, "", models.WithRoutePath(modelsRoute), models.WithSource(ds))
	})
	if mountErr != nil {
		return nil, mountErr
	}
	return r, nil
}
