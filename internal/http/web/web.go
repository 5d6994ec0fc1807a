// Package web embeds the HTML templates and the one browser script.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page. Page templates are addressed by file name,
// e.g. "login.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"datetime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
	}).ParseFS(templateFS, "templates/*.html")
}

// Static serves the files under static/ rooted at "/".
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
