package server

import (
	"embed"
	"html/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.New("dashboard").Funcs(sprig.HtmlFuncMap()).ParseFS(templateFS, "templates/*.html")
}
