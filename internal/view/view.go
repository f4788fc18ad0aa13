// Package view renders named page templates from a plain data payload.
// No other package builds HTML.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/memberboard/memberboard-go/internal/model"
)

//go:embed templates
var templateFS embed.FS

// Data is the payload handed to a page template. Handlers fill only the
// fields the page uses.
type Data struct {
	Title       string
	CurrentUser *model.User
	Errors      map[string]string
	Form        map[string]string
	Messages    []model.Message
	ShowAuthors bool
	Alert       string
	Status      int
}

// Renderer holds the parsed template set, one per page, each paired with
// the shared base layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every embedded page template against the base
// layout. Parse failures are programmer errors and surface at startup.
func NewRenderer() (*Renderer, error) {
	entries, err := fs.ReadDir(templateFS, "templates/pages")
	if err != nil {
		return nil, fmt.Errorf("reading page templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".html")
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/pages/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", entry.Name(), err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render writes the named page with the given status. The page is
// buffered first so a template failure can still become a clean 500
// instead of a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data Data) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("executing template %q: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
