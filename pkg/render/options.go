package render

import "github.com/goliatone/go-carprice/pkg/present"

// RenderOptions carry per-request data that renderers surface alongside the
// form model.
type RenderOptions struct {
	// Errors holds field-level messages keyed by field name.
	Errors map[string][]string
	// FormErrors holds messages that belong to no single field.
	FormErrors []string
	// Result is the outcome of the last prediction attempt, if any.
	Result *present.Output
	// RequestID tags the attempt that produced Result.
	RequestID string
}
