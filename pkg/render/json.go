package render

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-carprice/pkg/model"
	"github.com/goliatone/go-carprice/pkg/present"
)

// JSONRenderer serialises the form model and render options. API clients use
// it to drive their own form.
type JSONRenderer struct {
	indent bool
}

var _ Renderer = JSONRenderer{}

// NewJSONRenderer returns a JSON renderer; indent pretty-prints the output.
func NewJSONRenderer(indent bool) JSONRenderer {
	return JSONRenderer{indent: indent}
}

func (JSONRenderer) Name() string { return "json" }

func (JSONRenderer) ContentType() string { return "application/json" }

type jsonPayload struct {
	Form       model.FormModel     `json:"form"`
	Errors     map[string][]string `json:"errors,omitempty"`
	FormErrors []string            `json:"form_errors,omitempty"`
	Result     *present.Output     `json:"result,omitempty"`
	RequestID  string              `json:"request_id,omitempty"`
}

func (r JSONRenderer) Render(ctx context.Context, form model.FormModel, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload := jsonPayload{
		Form:       form,
		Errors:     options.Errors,
		FormErrors: options.FormErrors,
		Result:     options.Result,
		RequestID:  options.RequestID,
	}

	var (
		out []byte
		err error
	)
	if r.indent {
		out, err = json.MarshalIndent(payload, "", "  ")
	} else {
		out, err = json.Marshal(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("render: encode json: %w", err)
	}
	return out, nil
}
