package carprice

import (
	"io/fs"

	"github.com/goliatone/go-carprice/pkg/renderers/html"
)

// RuntimeAssetsFS exposes the browser script that refreshes the model list
// when the brand changes, so applications can serve it next to the page.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(carprice.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return html.AssetsFS()
}

// EmbeddedTemplates exposes the built-in page templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
