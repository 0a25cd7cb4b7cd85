// Package models provides a small net/http handler that returns the legal
// car models of a brand as JSON options, so browser forms can refresh the
// model select when the brand changes.
//
// The handler responds to GET and HEAD requests. The brand, query and limit
// parameters filter results; an empty query returns the first models of the
// brand unless EmptySearchMode is EmptySearchNone.
package models
