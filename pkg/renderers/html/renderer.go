// Package html renders the price form as a server-side HTML page using the
// pongo2 template engine. The intro text is treated as markdown.
package html

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/goliatone/go-carprice/pkg/model"
	"github.com/goliatone/go-carprice/pkg/render"
	rendertemplate "github.com/goliatone/go-carprice/pkg/render/template"
	"github.com/goliatone/go-carprice/pkg/render/template/gotemplate"
)

const (
	pageTemplate = "page"
	priceUnit    = "Lakhs"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	markdown         goldmark.Markdown
	modelsEndpoint   string
	inlineScript     bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithMarkdown overrides the markdown converter used for the intro.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(cfg *config) {
		if md != nil {
			cfg.markdown = md
		}
	}
}

// WithModelsEndpoint enables in-page model refreshes against endpoint.
// Without it the page relies on the "Update options" submit.
func WithModelsEndpoint(endpoint string) Option {
	return func(cfg *config) {
		cfg.modelsEndpoint = endpoint
	}
}

// WithInlineScript toggles the embedded cascade script.
func WithInlineScript(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineScript = enabled
	}
}

// Renderer renders full HTML pages.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	markdown  goldmark.Markdown
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:   TemplatesFS(),
		markdown:     goldmark.New(),
		inlineScript: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	globals := map[string]any{
		"price_unit":      priceUnit,
		"models_endpoint": cfg.modelsEndpoint,
	}
	if cfg.inlineScript && cfg.modelsEndpoint != "" {
		script, err := fs.ReadFile(AssetsFS(), CascadeScriptName)
		if err != nil {
			return nil, fmt.Errorf("html renderer: read %s: %w", CascadeScriptName, err)
		}
		globals["cascade_script"] = string(script)
	}
	if err := renderer.GlobalContext(globals); err != nil {
		return nil, fmt.Errorf("html renderer: page globals: %w", err)
	}
	if err := renderer.RegisterFilter("lakhs", lakhs); err != nil && !errors.Is(err, rendertemplate.ErrFilterExists) {
		return nil, fmt.Errorf("html renderer: register lakhs filter: %w", err)
	}

	return &Renderer{templates: renderer, markdown: cfg.markdown}, nil
}

// lakhs prints a price already expressed in lakhs with two decimals.
func lakhs(input any, _ any) (any, error) {
	switch v := input.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', 2, 64), nil
	case int:
		return strconv.FormatFloat(float64(v), 'f', 2, 64), nil
	case nil:
		return "", nil
	default:
		return nil, fmt.Errorf("lakhs: unsupported value %T", input)
	}
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render renders form with the errors and result carried by options.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	intro, err := r.introHTML(form.Intro)
	if err != nil {
		return nil, fmt.Errorf("html renderer: convert intro: %w", err)
	}

	result, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"page": r.view(form, options, intro),
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) introHTML(source string) (string, error) {
	if source == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return introPolicy().Sanitize(buf.String()), nil
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func introPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
	})
	return policy
}

type pageView struct {
	Title      string        `json:"title"`
	IntroHTML  string        `json:"intro_html"`
	Endpoint   string        `json:"endpoint"`
	Method     string        `json:"method"`
	Submit     string        `json:"submit"`
	Sections   []sectionView `json:"sections"`
	FormErrors []string      `json:"form_errors,omitempty"`
	Result     *resultView   `json:"result,omitempty"`
	RequestID  string        `json:"request_id,omitempty"`
}

type sectionView struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Fields []fieldView `json:"fields"`
}

// fieldView carries every attribute as a string so templates print values
// exactly as submitted.
type fieldView struct {
	Name      string       `json:"name"`
	Label     string       `json:"label"`
	Kind      string       `json:"kind"`
	Value     string       `json:"value"`
	Required  bool         `json:"required"`
	DependsOn string       `json:"depends_on,omitempty"`
	Min       string       `json:"min,omitempty"`
	Max       string       `json:"max,omitempty"`
	Step      string       `json:"step,omitempty"`
	Options   []optionView `json:"options,omitempty"`
	Errors    []string     `json:"errors,omitempty"`
}

type optionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type resultView struct {
	Kind  string   `json:"kind"`
	Text  string   `json:"text"`
	Price *float64 `json:"price,omitempty"`
}

func (r *Renderer) view(form model.FormModel, options render.RenderOptions, intro string) pageView {
	page := pageView{
		Title:      form.Title,
		IntroHTML:  intro,
		Endpoint:   form.Endpoint,
		Method:     form.Method,
		Submit:     form.Submit,
		FormErrors: options.FormErrors,
		RequestID:  options.RequestID,
	}
	if options.Result != nil {
		page.Result = &resultView{
			Kind:  string(options.Result.Kind),
			Text:  options.Result.Text,
			Price: options.Result.Price,
		}
	}

	for _, section := range form.Sections {
		sv := sectionView{ID: section.ID, Title: section.Title}
		for _, field := range section.Fields {
			fv := fieldView{
				Name:      field.Name,
				Label:     field.Label,
				Kind:      string(field.Kind),
				Value:     field.Value,
				Required:  field.Required,
				DependsOn: field.DependsOn,
				Min:       model.FormatBound(field.Min),
				Max:       model.FormatBound(field.Max),
				Errors:    options.Errors[field.Name],
			}
			if field.Step > 0 {
				fv.Step = strconv.FormatFloat(field.Step, 'f', -1, 64)
			}
			for _, opt := range field.Options {
				fv.Options = append(fv.Options, optionView{Value: opt.Value, Label: opt.Label, Selected: opt.Selected})
			}
			sv.Fields = append(sv.Fields, fv)
		}
		page.Sections = append(page.Sections, sv)
	}
	return page
}
