// Package testutil provides shared test helpers for building content
// trees on disk.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/storage"
)

// WriteTree materializes files (path relative to a fresh temp root,
// slash-separated) and returns the root.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// TestTree writes files and returns the root plus an FS over it.
func TestTree(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	root := WriteTree(t, files)
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// ValidTree is a minimal complete content tree that passes validation:
// one profile, skills, education, one experience entry with three
// highlights, one project, and a manifest selecting two of the three
// bullets.
func ValidTree() map[string]string {
	return map[string]string{
		"data/profile.yaml": `name: Ada Example
email: ada@example.com
phone: "+1 555 0100"
location: Portland, OR
github: https://github.com/ada
`,
		"data/skills.yaml": `languages:
  - go
  - python
frameworks:
  - chi
databases:
  - postgres
tools:
  - docker
platforms:
  - aws
methodologies:
  - agile
other: []
`,
		"data/education.yaml": `entries:
  - id: osu-bs-cs
    institution: Oregon State University
    degree: B.S. Computer Science
    start_date: 2010-09
    end_date: 2014-06
`,
		"content/experience/google.yaml": `entries:
  - id: google-staff-swe
    company: Google
    role: Staff Software Engineer
    location: Sunnyvale, CA
    start_date: 2018-03
    end_date: Present
    highlights:
      - id: arch
        text: Led service architecture overhaul
        tags: [go, kubernetes]
      - id: migration
        text: Migrated storage layer to spanner
        tags: [spanner]
      - id: oncall
        text: Ran the oncall rotation revamp
`,
		"content/projects/ansuz.yaml": `entries:
  - id: side-project
    name: Side Project
    description: A resume toolchain written in Go
    technologies: [go, yaml]
    highlights:
      - id: pipeline
        text: Built the render pipeline
        tags: [go]
`,
		"config/resume.yaml": `template: default
profile: default
include_experience:
  - id: google-staff-swe
    bullets: [arch, migration]
include_projects:
  - id: side-project
    bullets: null
`,
		"templates/default.html.tmpl": `<html><body>
<h1>{{ .profile.name }}</h1>
{{ range .experience }}<section>{{ .company }} {{ formatDate .start_date }}-{{ formatDate .end_date }}
{{ range .highlights }}<li>{{ .text }}</li>
{{ end }}</section>{{ end }}
{{ range .projects }}<p>{{ .name }}: {{ .description }}</p>{{ end }}
<footer>{{ .build_meta.timestamp }} {{ .build_meta.git_hash }}</footer>
</body></html>
`,
	}
}
