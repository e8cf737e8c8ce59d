package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"beleske/middleware"
	"beleske/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutFile   = "templates/layout.html"
	partialsFile = "templates/partials.html"
)

// View is what every page template receives.
type View struct {
	User     *middleware.Identity
	Accounts bool
	Data     any
}

// Renderer executes the page templates, each wrapped in the shared layout.
type Renderer struct {
	pages    map[string]*template.Template
	accounts bool
}

func NewRenderer(accounts bool) (*Renderer, error) {
	funcs := template.FuncMap{
		"shorten": func(s string) string {
			r := []rune(s)
			if len(r) > 100 {
				return string(r[:100]) + "..."
			}
			return s
		},
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template)
	for _, file := range files {
		if file == layoutFile || file == partialsFile {
			continue
		}
		tmpl, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(templateFS, layoutFile, partialsFile, file)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
		pages[path.Base(file)] = tmpl
	}
	return &Renderer{pages: pages, accounts: accounts}, nil
}

// Render writes the named page with status. The page is rendered into a
// buffer first so a template error never produces half a page.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, ok := rd.pages[name]
	if !ok {
		logger.Sugar.Errorf("Unknown template %s", name)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	view := View{Accounts: rd.accounts, Data: data}
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		view.User = &id
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, path.Base(layoutFile), view); err != nil {
		logger.Sugar.Errorf("Error executing template %s: %v", name, err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// NotFound renders the 404 page.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, http.StatusNotFound, "not-found.html", nil)
}
