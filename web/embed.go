// Package web ships the HTML templates compiled into the binary.
package web

import (
	"embed"
	"html/template"
)

//go:embed template/*.html
var templateFS embed.FS

// Templates parses every page template with the given helper functions.
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "template/*.html")
}
