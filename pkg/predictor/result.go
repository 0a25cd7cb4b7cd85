package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/goliatone/go-carprice/pkg/prediction"
)

// Failure is the reason a prediction attempt failed.
type Failure struct {
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	return "predictor: " + f.Reason
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

func (f *Failure) Is(target error) bool {
	return target == ErrPredictionFailure
}

// Result is either a price estimate or a Failure.
type Result struct {
	Price   float64
	Failure *Failure
}

// Success wraps a price.
func Success(price float64) Result {
	return Result{Price: price}
}

// Failed wraps err into a failed Result.
func Failed(err error) Result {
	if err == nil {
		err = errors.New("unknown error")
	}
	var failure *Failure
	if errors.As(err, &failure) {
		return Result{Failure: failure}
	}
	return Result{Failure: &Failure{Reason: err.Error(), Err: err}}
}

// OK reports whether the result carries a price.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Invoke runs p and converts every failure mode into a Result: returned
// errors, non-finite or negative estimates, and panics.
func Invoke(ctx context.Context, p Predictor, rec prediction.Record) (res Result) {
	if p == nil {
		return Failed(errors.New("no predictor configured"))
	}
	if err := ctx.Err(); err != nil {
		return Failed(err)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			res = Failed(fmt.Errorf("predictor panicked: %v", recovered))
		}
	}()

	price, err := p.Predict(ctx, rec)
	if err != nil {
		return Failed(err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return Failed(errors.New("model returned a non-finite estimate"))
	}
	if price < 0 {
		return Failed(fmt.Errorf("model returned a negative estimate (%.2f)", price))
	}
	return Success(price)
}
