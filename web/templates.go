package web

import (
	"errors"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

// TemplateRegistry maps template names to parsed page templates, all of
// which extend base.html.
type TemplateRegistry struct {
	templates map[string]*template.Template
}

func NewTemplateRegistry(dir string, pages ...string) *TemplateRegistry {
	t := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t[page] = template.Must(template.ParseFiles(dir+"/"+page, dir+"/base.html"))
	}
	return &TemplateRegistry{templates: t}
}

func (t *TemplateRegistry) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		return errors.New("template not found: " + name)
	}
	return tmpl.ExecuteTemplate(w, "base.html", data)
}
