package loader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-carprice/internal/dataset/loader"
	"github.com/goliatone/go-carprice/pkg/dataset"
	"github.com/goliatone/go-carprice/pkg/testsupport"
)

func TestLoader_File(t *testing.T) {
	path := testsupport.WriteFile(t, "cars.csv", testsupport.CarsCSV())

	l := loader.New(dataset.NewLoaderOptions())
	ds, err := dataset.Load(context.Background(), l, dataset.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"City", "Civic"}, ds.DependentDomain("Honda")); diff != "" {
		t.Fatalf("honda models mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_FS(t *testing.T) {
	files := fstest.MapFS{"data/cars.csv": &fstest.MapFile{Data: testsupport.CarsCSV()}}

	l := loader.New(dataset.NewLoaderOptions(dataset.WithFileSystem(files)))
	ds, err := dataset.Load(context.Background(), l, dataset.SourceFromFS("data/cars.csv"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Source().Kind() != dataset.SourceKindFS {
		t.Fatalf("expected fs source, got %s", ds.Source().Kind())
	}
}

func TestLoader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cars.csv" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write(testsupport.CarsCSV())
	}))
	defer srv.Close()

	l := loader.New(dataset.NewLoaderOptions(dataset.WithHTTPClient(srv.Client())))
	if _, err := dataset.Load(context.Background(), l, dataset.SourceFromURL(srv.URL+"/cars.csv")); err != nil {
		t.Fatalf("load: %v", err)
	}

	_, err := dataset.Load(context.Background(), l, dataset.SourceFromURL(srv.URL+"/missing.csv"))
	if !errors.Is(err, dataset.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for 404, got %v", err)
	}
}

func TestLoader_HTTPDisabled(t *testing.T) {
	l := loader.New(dataset.NewLoaderOptions())
	_, err := l.Load(context.Background(), dataset.SourceFromURL("https://example.com/cars.csv"))
	if err == nil {
		t.Fatalf("expected http disabled error")
	}
}

func TestLoader_HTTPFallbackTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	l := loader.New(dataset.NewLoaderOptions(dataset.WithHTTPFallback(20 * time.Millisecond)))
	_, err := dataset.Load(context.Background(), l, dataset.SourceFromURL(srv.URL))
	if !errors.Is(err, dataset.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	l := loader.New(dataset.NewLoaderOptions())
	_, err := dataset.Load(context.Background(), l, dataset.SourceFromFile(t.TempDir()+"/cars.csv"))
	if !errors.Is(err, dataset.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	path := testsupport.WriteFile(t, "cars.csv", testsupport.CarsCSV())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.New(dataset.NewLoaderOptions()).Load(ctx, dataset.SourceFromFile(path))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
