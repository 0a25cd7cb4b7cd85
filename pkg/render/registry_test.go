package render_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-carprice/pkg/model"
	"github.com/goliatone/go-carprice/pkg/render"
)

type stubRenderer struct {
	name        string
	contentType string
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return s.contentType }
func (s stubRenderer) Render(context.Context, model.FormModel, render.RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister(stubRenderer{name: "html", contentType: "text/html; charset=utf-8"})
	reg.MustRegister(stubRenderer{name: "json", contentType: "application/json"})

	if err := reg.Register(stubRenderer{name: "HTML"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := reg.Register(stubRenderer{}); err == nil {
		t.Fatalf("expected missing name error")
	}
	if diff := cmp.Diff([]string{"html", "json"}, reg.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if !reg.Has("JSON") {
		t.Fatalf("expected case-insensitive lookup")
	}
	if _, err := reg.Get("tui"); err == nil {
		t.Fatalf("expected missing renderer error")
	}
}

func TestRegistry_ForAccept(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister(stubRenderer{name: "html", contentType: "text/html; charset=utf-8"})
	reg.MustRegister(stubRenderer{name: "json", contentType: "application/json"})

	cases := map[string]string{
		"":                                "html",
		"*/*":                             "html",
		"application/json":                "json",
		"text/html,application/xhtml+xml": "html",
		"application/xml;q=0.9, application/json": "json",
	}
	for accept, want := range cases {
		renderer, err := reg.ForAccept(accept, "html")
		if err != nil {
			t.Fatalf("%q: %v", accept, err)
		}
		if renderer.Name() != want {
			t.Fatalf("%q: expected %s, got %s", accept, want, renderer.Name())
		}
	}
}
