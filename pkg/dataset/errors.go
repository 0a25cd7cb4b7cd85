package dataset

import "errors"

var (
	// ErrDataUnavailable reports that the reference dataset could not be read
	// or is unusable. Callers treat it as fatal.
	ErrDataUnavailable = errors.New("dataset: data unavailable")
	// ErrUnknownField is returned when a query names a field the dataset does
	// not expose.
	ErrUnknownField = errors.New("dataset: unknown field")
)
