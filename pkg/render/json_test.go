package render_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/goliatone/go-carprice/pkg/model"
	"github.com/goliatone/go-carprice/pkg/present"
	"github.com/goliatone/go-carprice/pkg/render"
	"github.com/goliatone/go-carprice/pkg/testsupport"
)

func TestJSONRenderer(t *testing.T) {
	form, err := model.NewBuilder(testsupport.MustController(t)).Build(testsupport.ScenarioState())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out := present.New().Incomplete([]string{"model"}, nil)

	raw, err := render.NewJSONRenderer(false).Render(context.Background(), form, render.RenderOptions{
		Errors:    map[string][]string{"model": {"is required"}},
		Result:    &out,
		RequestID: "01J0000000000000000000000",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var payload struct {
		Form struct {
			Title    string `json:"title"`
			Sections []struct {
				Title string `json:"title"`
			} `json:"sections"`
		} `json:"form"`
		Errors    map[string][]string `json:"errors"`
		Result    present.Output      `json:"result"`
		RequestID string              `json:"request_id"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Form.Title != model.DefaultTitle || len(payload.Form.Sections) != 3 {
		t.Fatalf("unexpected form %#v", payload.Form)
	}
	if payload.Errors["model"][0] != "is required" || payload.Result.Kind != present.KindIncomplete {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if payload.RequestID == "" {
		t.Fatalf("expected request id")
	}
}
