package predictor

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OpenConfig carries the knobs shared by backend factories.
type OpenConfig struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Factory opens a predictor for target.
type Factory func(ctx context.Context, target string, cfg OpenConfig) (Predictor, error)

// Registry stores backend factories by URL scheme.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with the http, https and file backends.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister("http", openHTTP)
	r.MustRegister("https", openHTTP)
	r.MustRegister("file", openArtifact)
	return r
}

// Register adds a factory for scheme. Duplicate schemes return an error.
func (r *Registry) Register(scheme string, factory Factory) error {
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	if scheme == "" {
		return fmt.Errorf("predictor: scheme is required")
	}
	if factory == nil {
		return fmt.Errorf("predictor: factory for %q is required", scheme)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[scheme]; exists {
		return fmt.Errorf("predictor: backend %q already registered", scheme)
	}
	r.factories[scheme] = factory
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(scheme string, factory Factory) {
	if err := r.Register(scheme, factory); err != nil {
		panic(err)
	}
}

// Get retrieves the factory for scheme.
func (r *Registry) Get(scheme string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[strings.ToLower(scheme)]
	if !ok {
		return nil, fmt.Errorf("%w: backend %q not found", ErrUnsupportedTarget, scheme)
	}
	return factory, nil
}

// List returns the registered schemes, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether scheme is registered.
func (r *Registry) Has(scheme string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[strings.ToLower(scheme)]
	return ok
}

// Open resolves target to a backend. Targets without a scheme are artifact
// file paths.
func (r *Registry) Open(ctx context.Context, target string, cfg OpenConfig) (Predictor, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("%w: predictor target is required", ErrArtifactUnavailable)
	}
	factory, err := r.Get(schemeOf(target))
	if err != nil {
		return nil, err
	}
	return factory(ctx, target, cfg)
}

func schemeOf(target string) string {
	if idx := strings.Index(target, "://"); idx > 0 {
		return strings.ToLower(target[:idx])
	}
	return "file"
}

func openHTTP(_ context.Context, target string, cfg OpenConfig) (Predictor, error) {
	return NewHTTP(target,
		WithHTTPClient(cfg.HTTPClient),
		WithTimeout(cfg.Timeout),
		WithLogger(cfg.Logger),
	)
}

func openArtifact(ctx context.Context, target string, _ OpenConfig) (Predictor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadArtifact(strings.TrimPrefix(target, "file://"))
}
