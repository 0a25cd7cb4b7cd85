package models

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type staticSource map[string][]string

func (s staticSource) DependentDomain(brand string) []string {
	return append([]string{}, s[brand]...)
}

var testSource = staticSource{
	"Honda":  {"Amaze", "City", "Civic", "Jazz"},
	"Maruti": {"Baleno", "Ertiga", "Swift"},
	"Tata":   {},
}

type handlerResponse struct {
	Brand string   `json:"brand"`
	Data  []Option `json:"data"`
}

func serve(t *testing.T, h http.Handler, method, target string) (*http.Response, handlerResponse) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	var payload handlerResponse
	if method == http.MethodGet && res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return res, payload
}

func TestHandler_BrandModels(t *testing.T) {
	h := NewHandler(WithSource(testSource))

	res, payload := serve(t, h, http.MethodGet, "/api/models?brand=Honda")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	if payload.Brand != "Honda" || len(payload.Data) != 4 {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if payload.Data[1].Value != "City" || payload.Data[1].Label != "City" {
		t.Fatalf("unexpected option %#v", payload.Data[1])
	}
}

func TestHandler_SearchAndLimit(t *testing.T) {
	h := NewHandler(WithSource(testSource), WithMaxLimit(1))

	_, payload := serve(t, h, http.MethodGet, "/api/models?brand=Honda&q=c&limit=10")
	if len(payload.Data) != 1 || payload.Data[0].Value != "City" {
		t.Fatalf("expected only City, got %#v", payload.Data)
	}
}

func TestHandler_EmptyResults(t *testing.T) {
	h := NewHandler(WithSource(testSource))

	for _, target := range []string{"/api/models", "/api/models?brand=Tata", "/api/models?brand=Unknown"} {
		_, payload := serve(t, h, http.MethodGet, target)
		if payload.Data == nil || len(payload.Data) != 0 {
			t.Fatalf("%s: expected empty data array, got %#v", target, payload.Data)
		}
	}

	h = NewHandler(WithSource(testSource), WithEmptySearchMode(EmptySearchNone))
	_, payload := serve(t, h, http.MethodGet, "/api/models?brand=Honda")
	if len(payload.Data) != 0 {
		t.Fatalf("expected no results without a query, got %#v", payload.Data)
	}
}

func TestHandler_MethodsAndGuard(t *testing.T) {
	h := NewHandler(WithSource(testSource))
	res, _ := serve(t, h, http.MethodPost, "/api/models?brand=Honda")
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.StatusCode)
	}

	res, _ = serve(t, h, http.MethodHead, "/api/models?brand=Honda")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for HEAD, got %d", res.StatusCode)
	}

	guarded := NewHandler(WithSource(testSource), WithGuard(func(*http.Request) error {
		return GuardError{Code: http.StatusUnauthorized, Err: errors.New("login required")}
	}))
	res, _ = serve(t, guarded, http.MethodGet, "/api/models?brand=Honda")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	res, _ = serve(t, NewHandler(), http.MethodGet, "/api/models?brand=Honda")
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 without source, got %d", res.StatusCode)
	}
}

func TestHandler_GuardDefaultsToForbidden(t *testing.T) {
	for name, guardErr := range map[string]error{
		"plain error":      errors.New("brand browsing disabled"),
		"zero guard error": GuardError{},
	} {
		guarded := NewHandler(WithSource(testSource), WithGuard(func(*http.Request) error { return guardErr }))
		res, _ := serve(t, guarded, http.MethodGet, "/api/models?brand=Maruti")
		if res.StatusCode != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", name, res.StatusCode)
		}
	}
}

func TestSearch_PrefixFirst(t *testing.T) {
	got := Search([]string{"Creta", "i20", "Accent", "Xcent"}, "cent", 0, NewOptions())
	if len(got) != 2 || got[0] != "Accent" || got[1] != "Xcent" {
		t.Fatalf("unexpected order %#v", got)
	}

	got = Search([]string{"Grand i10", "i10", "i20"}, "i1", 0, NewOptions())
	if len(got) != 2 || got[0] != "i10" || got[1] != "Grand i10" {
		t.Fatalf("expected prefix match first, got %#v", got)
	}
}
