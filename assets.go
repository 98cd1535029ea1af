package tablegen

import (
	"io/fs"

	"github.com/goliatone/go-tablegen/pkg/renderers/vanilla"
)

// AssetsFS exposes the stylesheet shipped with the HTML renderer so
// applications can serve it without a build step.
//
// Typical mount:
//
//	mux.Handle("/tablegen/",
//	  http.StripPrefix("/tablegen/",
//	    http.FileServerFS(tablegen.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}
