package render

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemplate(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name+".html.tmpl"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRenderBasic(t *testing.T) {
	dir := writeTemplate(t, "default", "<h1>{{ .profile.name }}</h1>")
	r := NewText(dir)
	out, err := r.Render("default", map[string]interface{}{
		"profile": map[string]interface{}{"name": "Ada"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "<h1>Ada</h1>" {
		t.Errorf("out = %q", out)
	}
}

func TestRenderMissingTemplate(t *testing.T) {
	r := NewText(t.TempDir())
	_, err := r.Render("ghost", nil)
	var tnf *TemplateNotFoundError
	if !errors.As(err, &tnf) {
		t.Fatalf("expected TemplateNotFoundError, got %v", err)
	}
}

func TestRenderMissingKeyFails(t *testing.T) {
	dir := writeTemplate(t, "default", "{{ .profile.ghost }}")
	r := NewText(dir)
	_, err := r.Render("default", map[string]interface{}{
		"profile": map[string]interface{}{"name": "Ada"},
	})
	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("expected RenderError for missing key, got %v", err)
	}
}

func TestRenderFormatDateFunc(t *testing.T) {
	dir := writeTemplate(t, "default", "{{ formatDate .start }} to {{ formatDate .end }}")
	r := NewText(dir)
	out, err := r.Render("default", map[string]interface{}{
		"start": "2021-03",
		"end":   "Present",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "Mar 2021 to Present" {
		t.Errorf("out = %q", out)
	}
}

func TestFormatDate(t *testing.T) {
	cases := map[string]string{
		"2021-03": "Mar 2021",
		"1999-12": "Dec 1999",
		"Present": "Present",
		"":        "",
		"oops":    "oops",
	}
	for in, want := range cases {
		if got := FormatDate(in); got != want {
			t.Errorf("FormatDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderParseErrorWrapped(t *testing.T) {
	dir := writeTemplate(t, "default", "{{ .unclosed")
	r := NewText(dir)
	_, err := r.Render("default", nil)
	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if !strings.Contains(re.Error(), "default") {
		t.Errorf("error should name the template: %v", re)
	}
}
