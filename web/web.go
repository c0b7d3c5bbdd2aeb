// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Funcs are available to every template.
var Funcs = template.FuncMap{
	// "In Progress" -> "in-progress"
	"statusClass": func(s interface{}) string {
		return strings.ReplaceAll(strings.ToLower(fmt.Sprint(s)), " ", "-")
	},
}

// Templates parses every page. Each page is addressed by its file name,
// e.g. "dashboard.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}

// Static is the asset tree served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
