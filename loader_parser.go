package carprice

import (
	internalLoader "github.com/goliatone/go-carprice/internal/dataset/loader"
	"github.com/goliatone/go-carprice/pkg/dataset"
)

// NewDatasetLoader constructs a dataset loader using the internal
// implementation while keeping the concrete type hidden from consumers.
func NewDatasetLoader(options ...dataset.LoaderOption) dataset.Loader {
	cfg := dataset.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}
