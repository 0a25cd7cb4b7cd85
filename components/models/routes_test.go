package models

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := MountPath("/v1"); got != "/v1/api/models" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("v1/", WithRoutePath("models")); got != "/v1/models" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath(""); got != "/api/models" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath(" /v1// ", WithRoutePath("/brands/models/")); got != "/v1/brands/models" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}

func TestRegisterRoutes_RegistersHandler(t *testing.T) {
	mux := http.NewServeMux()
	pattern, err := New(WithSource(testSource)).RegisterRoutes(mux, "/")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pattern != "/api/models" {
		t.Fatalf("unexpected registered pattern: %q", pattern)
	}

	req := httptest.NewRequest(http.MethodGet, pattern+"?brand=Maruti", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if _, err := RegisterRoutes(mux, "/other"); err == nil {
		t.Fatalf("expected missing source error")
	}
	if _, err := RegisterRoutes(nil, "/", WithSource(testSource)); err == nil {
		t.Fatalf("expected missing mux error")
	}
}
