// Package registry maps a file's location in the content tree to the
// schema that governs it. The schema set is fixed and finite, so kinds
// are a closed enum rather than anything dynamically dispatched.
package registry

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
)

// Kind identifies one of the six record schemas.
type Kind int

const (
	KindUnknown Kind = iota
	KindProfile
	KindSkills
	KindEducation
	KindExperienceFile
	KindProjectFile
	KindManifest
)

func (k Kind) String() string {
	switch k {
	case KindProfile:
		return "Profile"
	case KindSkills:
		return "Skills"
	case KindEducation:
		return "Education"
	case KindExperienceFile:
		return "ExperienceFile"
	case KindProjectFile:
		return "ProjectFile"
	case KindManifest:
		return "Manifest"
	default:
		return "Unknown"
	}
}

// Registry holds two rule tables: exact-filename singleton rules and
// directory-prefix collection rules. Collection rules are checked from
// the most specific (longest) prefix down.
type Registry struct {
	singletons  map[string]Kind
	collections map[string]Kind
}

// New returns a registry with the default content-tree rules.
func New() *Registry {
	return &Registry{
		singletons: map[string]Kind{
			"data/profile.yaml":   KindProfile,
			"data/skills.yaml":    KindSkills,
			"data/education.yaml": KindEducation,
		},
		collections: map[string]Kind{
			"content/experience": KindExperienceFile,
			"content/projects":   KindProjectFile,
			"config":             KindManifest,
		},
	}
}

// Resolve maps a file to its schema kind. file may be absolute or
// relative; root is the content tree root. Three distinct failures:
// the file lies outside the root, the path is too shallow (fewer than
// two segments under the root), or no rule matches.
func (r *Registry) Resolve(root, file string) (Kind, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return KindUnknown, &apperr.UnknownPathError{Path: file, Reason: apperr.PathOutsideRoot}
	}
	rel = filepath.ToSlash(rel)

	parts := strings.Split(rel, "/")
	if len(parts) < 2 {
		return KindUnknown, &apperr.UnknownPathError{Path: file, Reason: apperr.PathTooShallow}
	}

	if kind, ok := r.singletons[rel]; ok {
		return kind, nil
	}

	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if kind, ok := r.collections[dir]; ok {
			return kind, nil
		}
	}

	return KindUnknown, &apperr.UnknownPathError{Path: file, Reason: apperr.PathUnmatched}
}

// Lookup is the non-strict variant: it reports no schema instead of
// failing, for callers that silently skip ungoverned files.
func (r *Registry) Lookup(root, file string) (Kind, bool) {
	kind, err := r.Resolve(root, file)
	if err != nil {
		return KindUnknown, false
	}
	return kind, true
}
