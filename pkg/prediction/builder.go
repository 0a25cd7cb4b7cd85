// Package prediction assembles the typed feature record the model predictor
// consumes and validates it against the predictor contract.
package prediction

import (
	"github.com/goliatone/go-carprice/pkg/form"
)

// Builder turns a form state into a Record.
type Builder struct {
	contract *Contract
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithContract validates records against c instead of the embedded contract.
func WithContract(c *Contract) BuilderOption {
	return func(b *Builder) {
		if c != nil {
			b.contract = c
		}
	}
}

// NewBuilder constructs a Builder backed by the embedded contract unless
// overridden.
func NewBuilder(opts ...BuilderOption) (*Builder, error) {
	b := &Builder{}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.contract == nil {
		c, err := DefaultContract()
		if err != nil {
			return nil, err
		}
		b.contract = c
	}
	return b, nil
}

// Build assembles a record from s. It fails with *IncompleteStateError when
// a selection is missing or the record breaks the contract; a partially
// built record is never returned.
func (b *Builder) Build(s form.State) (Record, error) {
	if missing := s.Missing(); len(missing) > 0 {
		return Record{}, &IncompleteStateError{Missing: missing}
	}

	rec := recordFromState(s)
	if issues := b.contract.ValidateRecord(rec); len(issues) > 0 {
		return Record{}, &IncompleteStateError{Issues: issues}
	}
	return rec, nil
}

// Contract returns the contract records are validated against.
func (b *Builder) Contract() *Contract {
	return b.contract
}
