// Package present turns prediction outcomes into user-facing messages.
package present

import (
	"fmt"
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-carprice/pkg/predictor"
)

// Kind classifies an Output.
type Kind string

const (
	KindSuccess    Kind = "success"
	KindError      Kind = "error"
	KindIncomplete Kind = "incomplete"
)

const (
	successFormat    = "Estimated Price: ₹ %.2f Lakhs"
	failurePrefix    = "An error occurred during prediction: "
	incompletePrefix = "Cannot predict yet: "

	// DefaultReasonLimit caps failure reasons, in runes.
	DefaultReasonLimit = 160
)

// Output is the rendered result of one prediction attempt.
type Output struct {
	Kind  Kind     `json:"kind"`
	Text  string   `json:"text"`
	Price *float64 `json:"price,omitempty"`
}

// Presenter formats results.
type Presenter struct {
	reasonLimit int
}

// Option customises a Presenter.
type Option func(*Presenter)

// WithReasonLimit overrides the failure reason length. Values below 1 are
// ignored.
func WithReasonLimit(limit int) Option {
	return func(p *Presenter) {
		if limit > 0 {
			p.reasonLimit = limit
		}
	}
}

// New constructs a Presenter.
func New(opts ...Option) *Presenter {
	p := &Presenter{reasonLimit: DefaultReasonLimit}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Render formats res.
func (p *Presenter) Render(res predictor.Result) Output {
	if res.OK() {
		price := res.Price
		return Output{
			Kind:  KindSuccess,
			Text:  FormatPrice(price),
			Price: &price,
		}
	}
	return Output{
		Kind: KindError,
		Text: failurePrefix + p.Reason(res.Failure.Reason),
	}
}

// Incomplete formats a blocked attempt. missing lists empty fields, invalid
// lists fields whose value the predictor contract rejected.
func (p *Presenter) Incomplete(missing, invalid []string) Output {
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(invalid, ", "))
	}
	if len(parts) == 0 {
		parts = append(parts, "missing required fields")
	}
	return Output{Kind: KindIncomplete, Text: incompletePrefix + strings.Join(parts, "; ")}
}

// Reason sanitises a raw failure reason: first line only, markup stripped,
// whitespace collapsed, length capped.
func (p *Presenter) Reason(raw string) string {
	line := raw
	if idx := strings.IndexAny(line, "\r\n"); idx >= 0 {
		line = line[:idx]
	}
	line = html.UnescapeString(strictPolicy().Sanitize(line))
	line = strings.Join(strings.Fields(line), " ")
	if line == "" {
		return "unknown error"
	}
	return truncate(line, p.reasonLimit)
}

// FormatPrice renders a price in lakhs with two decimals.
func FormatPrice(price float64) string {
	return fmt.Sprintf(successFormat, price)
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}
