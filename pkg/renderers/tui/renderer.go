package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-carprice/pkg/model"
	"github.com/goliatone/go-carprice/pkg/render"
)

// Renderer implements render.Renderer for terminals: it prints the current
// form values and the last result as a summary rather than prompting.
type Renderer struct {
	outputFormat OutputFormat
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a summary renderer (pretty text by default).
func New(options ...Option) *Renderer {
	cfg := newConfig(options...)
	return &Renderer{outputFormat: cfg.outputFormat, theme: cfg.theme}
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Render serialises the form values, field errors and result.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(form, opts)), nil
	case OutputFormatJSON:
		return jsonBytes(form, opts)
	default:
		return []byte(r.prettyPrint(form, opts)), nil
	}
}

func flattenForm(form model.FormModel, opts render.RenderOptions) string {
	out := url.Values{}
	for _, field := range form.Fields() {
		out.Set(field.Name, field.Value)
	}
	for name, messages := range opts.Errors {
		for _, message := range messages {
			out.Add("errors."+name+"[]", message)
		}
	}
	if opts.Result != nil {
		out.Set("result.kind", string(opts.Result.Kind))
		out.Set("result.text", opts.Result.Text)
	}
	if opts.RequestID != "" {
		out.Set("request_id", opts.RequestID)
	}
	return out.Encode()
}

func (r *Renderer) prettyPrint(form model.FormModel, opts render.RenderOptions) string {
	var b strings.Builder
	for _, section := range form.Sections {
		fmt.Fprintf(&b, "%s%s\n", r.theme.SectionPrefix, section.Title)
		for _, field := range section.Fields {
			value := field.Value
			if value == "" {
				value = "-"
			}
			fmt.Fprintf(&b, "  %s: %s\n", field.Label, value)
			for _, message := range opts.Errors[field.Name] {
				fmt.Fprintf(&b, "  %s%s\n", r.theme.ErrorPrefix, message)
			}
		}
	}
	for _, message := range opts.FormErrors {
		fmt.Fprintf(&b, "%s%s\n", r.theme.ErrorPrefix, message)
	}
	if opts.Result != nil {
		b.WriteString("\n")
		b.WriteString(opts.Result.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func jsonBytes(form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	values := make(map[string]string)
	for _, field := range form.Fields() {
		values[field.Name] = field.Value
	}
	payload := map[string]any{"values": values}
	if len(opts.Errors) > 0 {
		payload["errors"] = opts.Errors
	}
	if len(opts.FormErrors) > 0 {
		payload["form_errors"] = opts.FormErrors
	}
	if opts.Result != nil {
		payload["result"] = opts.Result
	}
	if opts.RequestID != "" {
		payload["request_id"] = opts.RequestID
	}
	return json.Marshal(payload)
}
