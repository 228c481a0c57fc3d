package registry

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
)

const root = "/tree"

func TestResolveSingletons(t *testing.T) {
	r := New()
	cases := map[string]Kind{
		"data/profile.yaml":   KindProfile,
		"data/skills.yaml":    KindSkills,
		"data/education.yaml": KindEducation,
	}
	for rel, want := range cases {
		kind, err := r.Resolve(root, filepath.Join(root, rel))
		if err != nil {
			t.Fatalf("Resolve(%s): %v", rel, err)
		}
		if kind != want {
			t.Errorf("Resolve(%s) = %v, want %v", rel, kind, want)
		}
	}
}

func TestResolveCollections(t *testing.T) {
	r := New()
	cases := map[string]Kind{
		"content/experience/google.yaml":   KindExperienceFile,
		"content/experience/sub/deep.yaml": KindExperienceFile,
		"content/projects/oss.yaml":        KindProjectFile,
		"config/resume.yaml":               KindManifest,
		"config/clients/acme.yaml":         KindManifest,
	}
	for rel, want := range cases {
		kind, err := r.Resolve(root, filepath.Join(root, rel))
		if err != nil {
			t.Fatalf("Resolve(%s): %v", rel, err)
		}
		if kind != want {
			t.Errorf("Resolve(%s) = %v, want %v", rel, kind, want)
		}
	}
}

func TestResolveOutsideRoot(t *testing.T) {
	r := New()
	_, err := r.Resolve(root, "/elsewhere/data/profile.yaml")
	var ue *apperr.UnknownPathError
	if !errors.As(err, &ue) || ue.Reason != apperr.PathOutsideRoot {
		t.Fatalf("expected outside-root error, got %v", err)
	}
}

func TestResolveTooShallow(t *testing.T) {
	r := New()
	_, err := r.Resolve(root, filepath.Join(root, "loose.yaml"))
	var ue *apperr.UnknownPathError
	if !errors.As(err, &ue) || ue.Reason != apperr.PathTooShallow {
		t.Fatalf("expected too-shallow error, got %v", err)
	}
}

func TestResolveUnmatched(t *testing.T) {
	r := New()
	_, err := r.Resolve(root, filepath.Join(root, "data/unknown.yaml"))
	var ue *apperr.UnknownPathError
	if !errors.As(err, &ue) || ue.Reason != apperr.PathUnmatched {
		t.Fatalf("expected unmatched error, got %v", err)
	}
	if !errors.Is(err, apperr.ErrUnknownPath) {
		t.Error("unknown-path errors must match the sentinel")
	}
}

func TestLookupNonStrict(t *testing.T) {
	r := New()
	if _, ok := r.Lookup(root, filepath.Join(root, "data/unknown.yaml")); ok {
		t.Error("Lookup must report no schema instead of failing")
	}
	kind, ok := r.Lookup(root, filepath.Join(root, "data/skills.yaml"))
	if !ok || kind != KindSkills {
		t.Errorf("Lookup = %v, %v", kind, ok)
	}
}
