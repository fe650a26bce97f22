package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("slip.html").ParseFS(templatesFS, "templates/slip.html")
	if err != nil {
		return nil, fmt.Errorf("parse slip template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes doc as a self-contained HTML page.
func (r *Renderer) Render(w io.Writer, doc Document) error {
	if err := r.tmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("render slip: %w", err)
	}
	return nil
}
