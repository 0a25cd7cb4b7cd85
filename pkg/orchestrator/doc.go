// Package orchestrator wires the form controller, record builder, model
// predictor and result presenter into a single entry point, and renders the
// form model through a renderer registry. Each prediction attempt is traced,
// timed and tagged with a ULID.
package orchestrator
