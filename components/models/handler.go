package models

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// GuardError lets a Guard reject a models lookup with a specific status,
// for example 401 when the caller must sign in before browsing a brand.
type GuardError struct {
	Code int
	Err  error
}

func (e GuardError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode())
}

func (e GuardError) Unwrap() error { return e.Err }

// StatusCode defaults to 403.
func (e GuardError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusForbidden
	}
	return e.Code
}

// brandModels is the JSON body: the brand echoed back and the models it
// offers, possibly empty.
type brandModels struct {
	Brand string   `json:"brand"`
	Data  []Option `json:"data"`
}

// NewHandler serves the models of ?brand= from the configured Source.
func NewHandler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions is NewHandler for a prepared Options value. Unset
// fields fall back to their defaults.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
		default:
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				rejectLookup(w, err)
				return
			}
		}
		if opts.Source == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		body := lookupModels(r, opts)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(body)
	})
}

// lookupModels answers a blank brand with no models rather than an error so
// the page can clear its model select.
func lookupModels(r *http.Request, opts Options) brandModels {
	query := r.URL.Query()
	body := brandModels{
		Brand: strings.TrimSpace(query.Get(opts.BrandParam)),
		Data:  []Option{},
	}
	if body.Brand == "" {
		return body
	}
	limit, _ := strconv.Atoi(query.Get(opts.LimitParam))
	if found := SearchOptions(opts.Source.DependentDomain(body.Brand), query.Get(opts.SearchParam), limit, opts); found != nil {
		body.Data = found
	}
	return body
}

func rejectLookup(w http.ResponseWriter, err error) {
	code := http.StatusForbidden
	var guardErr interface{ StatusCode() int }
	if errors.As(err, &guardErr) {
		code = guardErr.StatusCode()
	}
	http.Error(w, http.StatusText(code), code)
}
