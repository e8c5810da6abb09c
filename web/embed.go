// Package web embeds the browser client and serves it as a single-page
// application.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/comigor/nexucore/internal/logger"
)

//go:embed all:static
var staticFS embed.FS

// Handler serves the embedded client. Paths that do not name a file fall
// back to index.html.
func Handler() http.Handler {
	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}

	fileServer := http.FileServer(http.FS(subFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}

		if f, err := subFS.Open(path); err == nil {
			if closeErr := f.Close(); closeErr != nil {
				logger.L.Debug("Failed to close embedded file", "path", path, "error", closeErr)
			}
			fileServer.ServeHTTP(w, r)
			return
		}

		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
