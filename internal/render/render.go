// Package render turns an assembled build context into the final
// artifact via named templates on disk.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/starford/ansuz/internal/models"
)

// Renderer renders a named template against a build context.
type Renderer interface {
	Render(name string, ctx map[string]interface{}) (string, error)
}

// TemplateNotFoundError reports a manifest naming a template that does
// not exist in the templates directory.
type TemplateNotFoundError struct {
	Name string
	Dir  string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template %q not found in %s", e.Name, e.Dir)
}

// RenderError wraps a template execution failure.
type RenderError struct {
	Name string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render template %q: %v", e.Name, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Text renders templates from a directory. Template names map to
// <name>.html.tmpl files. Any reference to a missing context key fails
// the render rather than printing a zero value.
type Text struct {
	dir string
}

// NewText creates a renderer over the given templates directory.
func NewText(dir string) *Text {
	return &Text{dir: dir}
}

// Render implements Renderer.
func (t *Text) Render(name string, ctx map[string]interface{}) (string, error) {
	path := filepath.Join(t.dir, name+".html.tmpl")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &TemplateNotFoundError{Name: name, Dir: t.dir}
		}
		return "", fmt.Errorf("read template %q: %w", name, err)
	}

	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(template.FuncMap{"formatDate": FormatDate}).
		Parse(string(data))
	if err != nil {
		return "", &RenderError{Name: name, Err: err}
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, ctx); err != nil {
		return "", &RenderError{Name: name, Err: err}
	}
	return b.String(), nil
}

// FormatDate renders a canonical date value for display: "2021-03"
// becomes "Mar 2021", the open-ended marker passes through unchanged,
// and anything unparseable is returned as is.
func FormatDate(value string) string {
	if value == models.Present || value == "" {
		return value
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return value
	}
	return t.Format("Jan 2006")
}
