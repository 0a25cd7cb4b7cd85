package predictor

import "errors"

var (
	// ErrPredictionFailure matches every *Failure. The session stays usable.
	ErrPredictionFailure = errors.New("predictor: prediction failed")
	// ErrArtifactUnavailable reports a missing or corrupt model artifact.
	// Callers treat it as fatal at startup.
	ErrArtifactUnavailable = errors.New("predictor: model artifact unavailable")
	// ErrUnsupportedTarget is returned when no backend handles a target.
	ErrUnsupportedTarget = errors.New("predictor: unsupported target")
)
