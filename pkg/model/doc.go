// Package model builds the renderer-neutral view of the price form: sections,
// fields, options and bounds derived from a form.Controller and the current
// form.State.
package model
