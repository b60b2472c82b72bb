// Package web holds the embedded html templates.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed templates
var files embed.FS

// Templates returns the template tree rooted at templates/.
func Templates() http.FileSystem {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
