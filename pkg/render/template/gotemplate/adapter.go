// Package gotemplate is the pongo2 engine behind the HTML price page.
package gotemplate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	rendertemplate "github.com/goliatone/go-carprice/pkg/render/template"
)

const defaultExtension = ".tpl"

type Option func(*Engine)

// WithFS sets the bundle templates are loaded from.
func WithFS(files fs.FS) Option {
	return func(e *Engine) {
		e.files = files
	}
}

// WithExtension sets the suffix appended to bare template names.
func WithExtension(ext string) Option {
	return func(e *Engine) {
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		e.ext = ext
	}
}

// Engine loads page templates from an fs.FS and keeps them parsed.
type Engine struct {
	files fs.FS
	ext   string
	set   *pongo2.TemplateSet

	mu      sync.RWMutex
	globals pongo2.Context
}

var _ rendertemplate.TemplateRenderer = (*Engine)(nil)

// New builds an engine. A template bundle is required.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{ext: defaultExtension, globals: pongo2.Context{}}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.files == nil {
		return nil, errors.New("gotemplate: a template bundle is required (WithFS)")
	}
	e.set = pongo2.NewSet("carprice", pongo2.NewFSLoader(e.files))
	return e, nil
}

// RenderTemplate renders name with data. Structs are flattened through
// their json tags so templates address fields by snake_case keys.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}
	tmpl, err := e.set.FromCache(name)
	if err != nil {
		return "", fmt.Errorf("gotemplate: load %s: %w", name, err)
	}

	values, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: %s data: %w", name, err)
	}

	ctx := pongo2.Context{}
	e.mu.RLock()
	ctx.Update(e.globals)
	e.mu.RUnlock()
	ctx.Update(values)

	rendered, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %s: %w", name, err)
	}
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return rendered, fmt.Errorf("gotemplate: write %s: %w", name, err)
		}
	}
	return rendered, nil
}

// GlobalContext merges data into the values shared by every render.
func (e *Engine) GlobalContext(data any) error {
	values, err := toContext(data)
	if err != nil {
		return fmt.Errorf("gotemplate: global context: %w", err)
	}
	e.mu.Lock()
	e.globals.Update(values)
	e.mu.Unlock()
	return nil
}

var filtersMu sync.Mutex

// RegisterFilter adds a pongo2 filter. pongo2 keeps filters in one process
// wide table, so a second registration of name fails with
// template.ErrFilterExists.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("gotemplate: filter name is required")
	}
	if fn == nil {
		return fmt.Errorf("gotemplate: filter %s has no function", name)
	}

	filtersMu.Lock()
	defer filtersMu.Unlock()
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: %s: %w", name, rendertemplate.ErrFilterExists)
	}
	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		result, err := fn(in.Interface(), param.Interface())
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("expected an object, got %T", data)
	}
	return pongo2.Context(values), nil
}
