// Package render fills the artifact templates.
//
// Rendering is a pure function of the template name and its context. The
// generator only depends on the Renderer interface; Templates is the
// implementation backed by the embedded text/template sources.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/template"
)

//go:embed templates/*.rb.tmpl
var templateFS embed.FS

// Template names.
const (
	Section          = "section"
	Entry            = "entry"
	StaticValidation = "static_validation"
	Group            = "group"
	Suite            = "suite"
)

// ErrUnknownTemplate is returned for a template name that was never loaded.
var ErrUnknownTemplate = errors.New("unknown template")

// Renderer turns a named template and its context into artifact text.
type Renderer interface {
	Render(name string, data any) ([]byte, error)
}

// Templates is a Renderer over the embedded templates.
type Templates struct {
	tmpl *template.Template
}

// funcs are available to every template.
var funcs = template.FuncMap{
	"quote": RubyQuote,
	"join":  strings.Join,
}

// NewTemplates parses the embedded templates. A template is named after its
// file without the .rb.tmpl extension.
func NewTemplates() (*Templates, error) {
	tmpl := template.New("").Funcs(funcs)

	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".rb.tmpl") {
			return nil
		}

		content, err := templateFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", path, err)
		}

		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".rb.tmpl")
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing template %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return &Templates{tmpl: tmpl}, nil
}

// MustTemplates is like NewTemplates but panics on error. The embedded
// templates are fixed at build time, so an error is a programming mistake.
func MustTemplates() *Templates {
	t, err := NewTemplates()
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns the loaded template names, sorted.
func (t *Templates) Names() []string {
	var names []string
	for _, tmpl := range t.tmpl.Templates() {
		if tmpl.Name() != "" {
			names = append(names, tmpl.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Has reports whether a template called name is loaded.
func (t *Templates) Has(name string) bool {
	return name != "" && t.tmpl.Lookup(name) != nil
}

// Render executes the template called name with data.
func (t *Templates) Render(name string, data any) ([]byte, error) {
	if !t.Has(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// RubyQuote returns s as a single-quoted Ruby string literal.
func RubyQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
