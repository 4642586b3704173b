package server

import (
	"io/fs"
	"net/http"
	"strings"
)

// uiFS holds the embedded UI filesystem. Set via SetUI before creating the server.
var uiFS fs.FS

// SetUI sets the embedded filesystem for serving the UI.
func SetUI(fsys fs.FS) {
	uiFS = fsys
}

// spaHandler serves the memory browser from the embedded FS. Unknown paths
// fall back to index.html for client-side routing.
func spaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if uiFS == nil {
			http.Error(w, "UI not embedded in this binary", http.StatusNotFound)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}

		if f, err := uiFS.Open(path); err != nil {
			path = "index.html"
		} else {
			f.Close()
		}

		http.ServeFileFS(w, r, uiFS, path)
	}
}
