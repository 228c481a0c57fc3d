package resolver

import (
	"errors"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/testutil"
)

func contentTree() map[string]string {
	return map[string]string{
		"content/experience/google.yaml": `entries:
  - id: google-staff-swe
    company: Google
    role: Staff Software Engineer
    location: Sunnyvale, CA
    start_date: 2018-03
    end_date: Present
    highlights:
      - id: b1
        text: first bullet
      - id: b2
        text: second bullet
      - id: b3
        text: third bullet
`,
		"content/projects/oss.yaml": `entries:
  - id: oss-tool
    name: OSS Tool
    description: Command line tooling
    highlights:
      - id: p1
        text: project bullet
`,
	}
}

func newResolver(t *testing.T, files map[string]string) *Resolver {
	t.Helper()
	_, store := testutil.TestTree(t, files)
	return New(store)
}

func TestResolveNilBulletsKeepsAllHighlights(t *testing.T) {
	r := newResolver(t, contentTree())
	entry, err := r.ResolveExperience(models.ManifestEntry{ID: "google-staff-swe"})
	if err != nil {
		t.Fatalf("ResolveExperience: %v", err)
	}
	ids := entry.HighlightIDs()
	if len(ids) != 3 || ids[0] != "b1" || ids[1] != "b2" || ids[2] != "b3" {
		t.Errorf("highlights = %v", ids)
	}
}

func TestResolveBulletFilterReorders(t *testing.T) {
	r := newResolver(t, contentTree())
	entry, err := r.ResolveExperience(models.ManifestEntry{
		ID:      "google-staff-swe",
		Bullets: []models.ID{"b2", "b1"},
	})
	if err != nil {
		t.Fatalf("ResolveExperience: %v", err)
	}
	ids := entry.HighlightIDs()
	if len(ids) != 2 || ids[0] != "b2" || ids[1] != "b1" {
		t.Errorf("highlights = %v, want [b2 b1]", ids)
	}
}

func TestResolveDuplicateBulletAppearsTwice(t *testing.T) {
	r := newResolver(t, contentTree())
	entry, err := r.ResolveExperience(models.ManifestEntry{
		ID:      "google-staff-swe",
		Bullets: []models.ID{"b1", "b1"},
	})
	if err != nil {
		t.Fatalf("ResolveExperience: %v", err)
	}
	ids := entry.HighlightIDs()
	if len(ids) != 2 || ids[0] != "b1" || ids[1] != "b1" {
		t.Errorf("highlights = %v, want [b1 b1]", ids)
	}
}

func TestResolveUnknownBulletListsAvailable(t *testing.T) {
	r := newResolver(t, contentTree())
	_, err := r.ResolveExperience(models.ManifestEntry{
		ID:      "google-staff-swe",
		Bullets: []models.ID{"b1", "nope"},
	})
	var bnf *apperr.BulletNotFoundError
	if !errors.As(err, &bnf) {
		t.Fatalf("expected BulletNotFoundError, got %v", err)
	}
	if bnf.BulletID != "nope" {
		t.Errorf("bullet = %q", bnf.BulletID)
	}
	if len(bnf.Available) != 3 || bnf.Available[0] != "b1" {
		t.Errorf("available = %v", bnf.Available)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Error("must match the not-found sentinel")
	}
}

func TestResolveUnknownEntry(t *testing.T) {
	r := newResolver(t, contentTree())
	_, err := r.ResolveExperience(models.ManifestEntry{ID: "missing"})
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestResolveDoesNotMutateIndex(t *testing.T) {
	r := newResolver(t, contentTree())
	if _, err := r.ResolveExperience(models.ManifestEntry{
		ID:      "google-staff-swe",
		Bullets: []models.ID{"b3"},
	}); err != nil {
		t.Fatal(err)
	}
	entry, err := r.ResolveExperience(models.ManifestEntry{ID: "google-staff-swe"})
	if err != nil {
		t.Fatal(err)
	}
	if len(entry.Highlights) != 3 {
		t.Errorf("index mutated: %v", entry.HighlightIDs())
	}
}

func TestCrossFileDuplicateEntryID(t *testing.T) {
	files := contentTree()
	files["content/experience/other.yaml"] = `entries:
  - id: google-staff-swe
    company: Other Corp
    role: Engineer
    location: Remote
    start_date: 2015-01
    highlights:
      - id: x
        text: bullet
`
	r := newResolver(t, files)
	_, err := r.ResolveExperience(models.ManifestEntry{ID: "google-staff-swe"})
	var dup *apperr.DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateIDError, got %v", err)
	}
	if dup.Scope != apperr.ScopeCollection {
		t.Errorf("scope = %q", dup.Scope)
	}
	if dup.FirstFile != "content/experience/google.yaml" || dup.OtherFile != "content/experience/other.yaml" {
		t.Errorf("files = %q, %q", dup.FirstFile, dup.OtherFile)
	}
}

func TestResolveManifestOrderFollowsManifest(t *testing.T) {
	r := newResolver(t, contentTree())
	m := models.Manifest{
		Template: "default",
		Profile:  "default",
		IncludeExperience: []models.ManifestEntry{
			{ID: "google-staff-swe", Bullets: []models.ID{"b3"}},
		},
		IncludeProjects: []models.ManifestEntry{
			{ID: "oss-tool"},
		},
	}
	experience, projects, err := r.ResolveManifest(m)
	if err != nil {
		t.Fatalf("ResolveManifest: %v", err)
	}
	if len(experience) != 1 || len(projects) != 1 {
		t.Fatalf("counts = %d, %d", len(experience), len(projects))
	}
	if ids := experience[0].HighlightIDs(); len(ids) != 1 || ids[0] != "b3" {
		t.Errorf("highlights = %v", ids)
	}
	if projects[0].Name != "OSS Tool" {
		t.Errorf("project = %q", projects[0].Name)
	}
}

func TestResolveManifestFailFast(t *testing.T) {
	r := newResolver(t, contentTree())
	m := models.Manifest{
		Template:          "default",
		Profile:           "default",
		IncludeExperience: []models.ManifestEntry{{ID: "missing"}},
		IncludeProjects:   []models.ManifestEntry{{ID: "oss-tool"}},
	}
	experience, projects, err := r.ResolveManifest(m)
	if err == nil {
		t.Fatal("expected error")
	}
	if experience != nil || projects != nil {
		t.Error("no partial result on failure")
	}
}
