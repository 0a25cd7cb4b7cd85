package models

import (
	"errors"
	"net/http"
	"path"
	"strings"
)

// Mux is anything the models endpoint can be mounted on, such as
// *http.ServeMux or a chi.Router.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath reports where RegisterRoutes would serve brand models under
// basePath, without registering anything.
func MountPath(basePath string, fns ...OptionFn) string {
	return joinRoute(basePath, NewOptions(fns...).RoutePath)
}

// RegisterRoutes mounts the brand models endpoint and returns its pattern.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (string, error) {
	return RegisterRoutesWithOptions(mux, basePath, NewOptions(fns...))
}

// RegisterRoutesWithOptions refuses to mount without a Source, since every
// brand would then answer 500.
func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) (string, error) {
	switch {
	case mux == nil:
		return "", errors.New("models: no mux to mount the brand models endpoint on")
	case opts.Source == nil:
		return "", errors.New("models: no source of brand models")
	}
	route := joinRoute(basePath, opts.RoutePath)
	mux.Handle(route, HandlerWithOptions(opts))
	return route, nil
}

// joinRoute always yields an absolute, slash-cleaned pattern.
func joinRoute(basePath, routePath string) string {
	base := strings.Trim(strings.TrimSpace(basePath), "/")
	route := strings.Trim(strings.TrimSpace(routePath), "/")
	return path.Clean("/" + base + "/" + route)
}
