// Package predictor wraps the external price model. The model is a black
// box: it receives a prediction.Record and returns a price in lakhs or an
// error, and Invoke turns that into a typed Result.
package predictor

import (
	"context"

	"github.com/goliatone/go-carprice/pkg/prediction"
)

// Predictor scores a single record.
type Predictor interface {
	Predict(ctx context.Context, rec prediction.Record) (float64, error)
}

// Pinger is implemented by backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Func adapts a function to the Predictor interface.
type Func func(ctx context.Context, rec prediction.Record) (float64, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, rec prediction.Record) (float64, error) {
	return f(ctx, rec)
}

var _ Predictor = Func(nil)
