// Package resolver maps manifest references onto the content graph,
// producing fully-resolved, order-preserving entry lists.
package resolver

import (
	"fmt"
	"sync"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/loader"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/storage"
)

// Content subdirectories relative to the tree root.
const (
	ExperienceDir = "content/experience"
	ProjectsDir   = "content/projects"
)

// Resolver indexes experience and project entries by ID and resolves
// manifest entries against them, filtering and reordering highlights
// per the manifest.
//
// The indexes are built lazily on first use and are read-only after
// that; the once guard keeps a future concurrent caller from loading
// twice.
type Resolver struct {
	store *storage.FS

	once       sync.Once
	loadErr    error
	experience map[models.ID]models.ExperienceEntry
	projects   map[models.ID]models.ProjectEntry
}

// New creates a resolver over the given content tree. Nothing is read
// until the first resolution.
func New(store *storage.FS) *Resolver {
	return &Resolver{store: store}
}

// load builds both indexes. Files are read in filename-sorted order so
// duplicate detection is deterministic.
func (r *Resolver) load() error {
	r.experience = make(map[models.ID]models.ExperienceEntry)
	r.projects = make(map[models.ID]models.ProjectEntry)

	expSources := make(map[models.ID]string)
	files, err := r.store.ListYAML(ExperienceDir)
	if err != nil {
		return fmt.Errorf("resolver: list experience: %w", err)
	}
	for _, file := range files {
		abs, err := r.store.Abs(file)
		if err != nil {
			return err
		}
		var ef models.ExperienceFile
		if err := loader.Load(abs, &ef); err != nil {
			return fmt.Errorf("resolver: load experience file: %w", err)
		}
		for _, entry := range ef.Entries {
			if first, ok := expSources[entry.ID]; ok {
				return &apperr.DuplicateIDError{
					ID:        string(entry.ID),
					Scope:     apperr.ScopeCollection,
					FirstFile: first,
					OtherFile: file,
				}
			}
			expSources[entry.ID] = file
			r.experience[entry.ID] = entry
		}
	}

	projSources := make(map[models.ID]string)
	files, err = r.store.ListYAML(ProjectsDir)
	if err != nil {
		return fmt.Errorf("resolver: list projects: %w", err)
	}
	for _, file := range files {
		abs, err := r.store.Abs(file)
		if err != nil {
			return err
		}
		var pf models.ProjectFile
		if err := loader.Load(abs, &pf); err != nil {
			return fmt.Errorf("resolver: load project file: %w", err)
		}
		for _, entry := range pf.Entries {
			if first, ok := projSources[entry.ID]; ok {
				return &apperr.DuplicateIDError{
					ID:        string(entry.ID),
					Scope:     apperr.ScopeCollection,
					FirstFile: first,
					OtherFile: file,
				}
			}
			projSources[entry.ID] = file
			r.projects[entry.ID] = entry
		}
	}

	return nil
}

func (r *Resolver) ensureLoaded() error {
	r.once.Do(func() { r.loadErr = r.load() })
	return r.loadErr
}

// ResolveExperience resolves one manifest entry against the experience
// index. With a nil bullet filter the indexed record is returned as
// is; callers must treat it as immutable. With a filter, a new record
// is built whose highlights are the requested bullets in the
// manifest's order — the manifest, not the original highlight order,
// determines output order.
func (r *Resolver) ResolveExperience(me models.ManifestEntry) (models.ExperienceEntry, error) {
	if err := r.ensureLoaded(); err != nil {
		return models.ExperienceEntry{}, err
	}
	original, ok := r.experience[me.ID]
	if !ok {
		return models.ExperienceEntry{}, &apperr.NotFoundError{Kind: "experience", ID: string(me.ID)}
	}
	if me.Bullets == nil {
		return original, nil
	}
	filtered, err := filterHighlights("experience", original.ID, original.Highlights, me.Bullets)
	if err != nil {
		return models.ExperienceEntry{}, err
	}
	return original.WithHighlights(filtered), nil
}

// ResolveProject is the project-side counterpart of ResolveExperience.
func (r *Resolver) ResolveProject(me models.ManifestEntry) (models.ProjectEntry, error) {
	if err := r.ensureLoaded(); err != nil {
		return models.ProjectEntry{}, err
	}
	original, ok := r.projects[me.ID]
	if !ok {
		return models.ProjectEntry{}, &apperr.NotFoundError{Kind: "project", ID: string(me.ID)}
	}
	if me.Bullets == nil {
		return original, nil
	}
	filtered, err := filterHighlights("project", original.ID, original.Highlights, me.Bullets)
	if err != nil {
		return models.ProjectEntry{}, err
	}
	return original.WithHighlights(filtered), nil
}

// ResolveManifest resolves every manifest reference in declaration
// order. The first unresolvable reference aborts the whole resolution;
// no partial result is returned.
func (r *Resolver) ResolveManifest(m models.Manifest) ([]models.ExperienceEntry, []models.ProjectEntry, error) {
	experience := make([]models.ExperienceEntry, 0, len(m.IncludeExperience))
	for _, me := range m.IncludeExperience {
		entry, err := r.ResolveExperience(me)
		if err != nil {
			return nil, nil, err
		}
		experience = append(experience, entry)
	}

	projects := make([]models.ProjectEntry, 0, len(m.IncludeProjects))
	for _, me := range m.IncludeProjects {
		entry, err := r.ResolveProject(me)
		if err != nil {
			return nil, nil, err
		}
		projects = append(projects, entry)
	}

	return experience, projects, nil
}

// filterHighlights returns the highlights named by bullets, in bullet
// order. A bullet requested twice appears twice. A bullet the entry
// does not have fails with the full set of valid alternatives.
func filterHighlights(kind string, entryID models.ID, highlights []models.Highlight, bullets []models.ID) ([]models.Highlight, error) {
	byID := make(map[models.ID]models.Highlight, len(highlights))
	for _, h := range highlights {
		byID[h.ID] = h
	}

	out := make([]models.Highlight, 0, len(bullets))
	for _, id := range bullets {
		h, ok := byID[id]
		if !ok {
			return nil, &apperr.BulletNotFoundError{
				Kind:      kind,
				EntryID:   string(entryID),
				BulletID:  string(id),
				Available: highlightIDStrings(highlights),
			}
		}
		out = append(out, h)
	}
	return out, nil
}

func highlightIDStrings(hs []models.Highlight) []string {
	ids := make([]string, len(hs))
	for i, h := range hs {
		ids[i] = string(h.ID)
	}
	return ids
}
