// ABOUTME: Embedded static assets for the dashboard
// ABOUTME: Serves the stylesheet with revalidation-friendly cache headers

package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*.css
var staticFS embed.FS

// staticHandler serves the embedded static files. The filenames carry no
// content hashes, so responses get no-cache headers and browsers
// revalidate after a deploy.
func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: failed to create static sub filesystem: " + err.Error())
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		fileServer.ServeHTTP(w, r)
	})
}
