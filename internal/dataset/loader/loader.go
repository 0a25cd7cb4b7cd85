package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-carprice/pkg/dataset"
)

// Loader implements dataset.Loader by delegating to file, fs.FS, or HTTP
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

var _ dataset.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options dataset.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches the raw CSV bytes for src.
func (l *Loader) Load(ctx context.Context, src dataset.Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("dataset loader: source is nil")
	}

	switch src.Kind() {
	case dataset.SourceKindFile:
		return loadFile(ctx, src.Location())
	case dataset.SourceKindFS:
		return loadFromFS(ctx, l.fs, src.Location())
	case dataset.SourceKindURL:
		if !l.allowHTTP {
			return nil, errors.New("dataset loader: http support disabled")
		}
		return loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		return nil, errors.New("dataset loader: unsupported source kind")
	}
}
