package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"forget-me-not/internal/domain"
)

//go:embed templates
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page names.
const (
	Index         = "index"
	About         = "about"
	NotesIndex    = "notes/index"
	NotesAdd      = "notes/add"
	NotesEdit     = "notes/edit"
	UsersLogin    = "users/login"
	UsersRegister = "users/register"
	NotFound      = "errors/404"
	NotAllowed    = "errors/405"
	ServerError   = "errors/500"
)

// Page is everything a template can see.
type Page struct {
	Title  string
	User   *domain.User
	Flash  map[string][]string
	Errors []string
	Data   map[string]interface{}
}

type Renderer interface {
	Render(w io.Writer, name string, page *Page) error
}

type TemplateRenderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format("Mon Jan 2 2006 15:04")
	},
}

// NewTemplateRenderer parses every page under templates/ together with the
// shared layout.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	r := &TemplateRenderer{pages: make(map[string]*template.Template)}

	err = fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || p == layoutFile || path.Ext(p) != ".html" {
			return nil
		}

		t, err := layout.Clone()
		if err != nil {
			return err
		}
		if _, err := t.ParseFS(templateFS, p); err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}

		name := strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), ".html")
		r.pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Render executes into a buffer first so a failing template never leaves a
// half-written page.
func (r *TemplateRenderer) Render(w io.Writer, name string, page *Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	_, err := buf.WriteTo(w)
	return err
}
