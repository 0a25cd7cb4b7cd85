// Package form holds the car form state and the controller that mutates it.
//
// State is a plain value: every mutation takes the current state and returns
// the next one, so callers decide where a session's state lives (a request,
// a terminal loop, a hidden form field). The controller only reads the
// reference domains and declared numeric bounds and can be shared freely.
package form
