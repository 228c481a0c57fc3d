// Package builder runs the full build pipeline: manifest to rendered
// artifact. Stages are strictly ordered and fail-fast; a build either
// produces a complete artifact or touches nothing.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/loader"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/resolver"
	"github.com/starford/ansuz/internal/storage"
)

// Fixed metadata for reproducible builds.
const (
	reproducibleTimestamp = "1970-01-01T00:00:00Z"
	reproducibleHash      = "0000000"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// Builder assembles one artifact from a manifest and the content tree.
type Builder struct {
	store        *storage.FS
	renderer     render.Renderer
	logger       *slog.Logger
	outDir       string
	now          func() time.Time
	vcsHash      func(context.Context) string
	reproducible bool
}

// New creates a builder over the given content tree.
func New(store *storage.FS, opts ...Option) *Builder {
	b := &Builder{
		store:  store,
		logger: slog.Default(),
		outDir: "out",
		now:    time.Now,
	}
	b.renderer = render.NewText(filepath.Join(store.Root(), "templates"))
	b.vcsHash = b.gitHash
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the pipeline for one manifest, given as a path relative
// to the tree root. It returns the root-relative path of the written
// artifact.
func (b *Builder) Build(ctx context.Context, manifestRel string) (string, error) {
	started := b.now()

	manifestAbs, err := b.store.Abs(manifestRel)
	if err != nil {
		return "", err
	}
	var manifest models.Manifest
	if err := loader.Load(manifestAbs, &manifest); err != nil {
		return "", fmt.Errorf("load manifest: %w", err)
	}
	b.logger.Debug("manifest loaded", "manifest", manifestRel, "template", manifest.Template)

	profile, skills, education, err := b.loadStatic(manifest.Profile)
	if err != nil {
		return "", err
	}

	res := resolver.New(b.store)
	experience, projects, err := res.ResolveManifest(manifest)
	if err != nil {
		return "", fmt.Errorf("resolve manifest: %w", err)
	}
	b.logger.Debug("content resolved",
		"experience", len(experience), "projects", len(projects))

	buildCtx := b.assembleContext(ctx, profile, skills, education, experience, projects)

	output, err := b.renderer.Render(manifest.Template, buildCtx)
	if err != nil {
		return "", err
	}

	outRel := path.Join(b.outDir, artifactStem(manifestRel)+".html")
	if err := b.store.WriteFile(outRel, []byte(output)); err != nil {
		return "", err
	}

	b.logger.Info("build complete",
		"manifest", manifestRel,
		"artifact", outRel,
		"bytes", len(output),
		"elapsed", b.now().Sub(started).Round(time.Millisecond))
	return outRel, nil
}

// loadStatic loads the three singleton data files. The profile key
// "default" maps to data/profile.yaml, any other key to data/<key>.yaml.
func (b *Builder) loadStatic(profileKey string) (models.Profile, models.Skills, models.Education, error) {
	var (
		profile   models.Profile
		skills    models.Skills
		education models.Education
	)

	profileRel := "data/profile.yaml"
	if profileKey != "default" {
		profileRel = "data/" + profileKey + ".yaml"
	}
	abs, err := b.store.Abs(profileRel)
	if err != nil {
		return profile, skills, education, err
	}
	if err := loader.Load(abs, &profile); err != nil {
		return profile, skills, education, fmt.Errorf("load profile: %w", err)
	}

	abs, err = b.store.Abs("data/skills.yaml")
	if err != nil {
		return profile, skills, education, err
	}
	if err := loader.Load(abs, &skills); err != nil {
		return profile, skills, education, fmt.Errorf("load skills: %w", err)
	}

	abs, err = b.store.Abs("data/education.yaml")
	if err != nil {
		return profile, skills, education, err
	}
	if err := loader.Load(abs, &education); err != nil {
		return profile, skills, education, fmt.Errorf("load education: %w", err)
	}

	return profile, skills, education, nil
}

// assembleContext flattens the typed records into the map the template
// layer consumes. Entry order follows the manifest; skills within a
// category are sorted case-insensitively.
func (b *Builder) assembleContext(
	ctx context.Context,
	profile models.Profile,
	skills models.Skills,
	education models.Education,
	experience []models.ExperienceEntry,
	projects []models.ProjectEntry,
) map[string]interface{} {
	skillMap := skills.ByCategory()
	for _, items := range skillMap {
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i]) < strings.ToLower(items[j])
		})
	}

	educationList := make([]map[string]interface{}, len(education.Entries))
	for i, e := range education.Entries {
		educationList[i] = educationContext(e)
	}
	experienceList := make([]map[string]interface{}, len(experience))
	for i, e := range experience {
		experienceList[i] = experienceContext(e)
	}
	projectList := make([]map[string]interface{}, len(projects))
	for i, p := range projects {
		projectList[i] = projectContext(p)
	}

	return map[string]interface{}{
		"profile":    profileContext(profile),
		"skills":     skillMap,
		"education":  educationList,
		"experience": experienceList,
		"projects":   projectList,
		"build_meta": b.buildMeta(ctx),
	}
}

// buildMeta stamps the artifact. Reproducible builds use fixed values
// so output bytes depend only on content.
func (b *Builder) buildMeta(ctx context.Context) map[string]interface{} {
	if b.reproducible {
		return map[string]interface{}{
			"timestamp": reproducibleTimestamp,
			"git_hash":  reproducibleHash,
		}
	}
	return map[string]interface{}{
		"timestamp": b.now().UTC().Format(timestampLayout),
		"git_hash":  b.vcsHash(ctx),
	}
}

// gitHash asks git for the short HEAD hash of the content tree. Any
// failure, including the tree not being a repository, yields "unknown".
func (b *Builder) gitHash(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--short", "HEAD")
	cmd.Dir = b.store.Root()
	out, err := cmd.Output()
	if err != nil {
		b.logger.Debug("git hash unavailable", "error", err)
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func profileContext(p models.Profile) map[string]interface{} {
	links := make([]map[string]interface{}, len(p.Links))
	for i, l := range p.Links {
		links[i] = map[string]interface{}{"label": l.Label, "url": l.URL}
	}
	return map[string]interface{}{
		"name":     p.Name,
		"email":    p.Email,
		"phone":    p.Phone,
		"location": p.Location,
		"linkedin": p.LinkedIn,
		"github":   p.GitHub,
		"website":  p.Website,
		"links":    links,
	}
}

func educationContext(e models.EducationEntry) map[string]interface{} {
	return map[string]interface{}{
		"id":             string(e.ID),
		"institution":    e.Institution,
		"degree":         e.Degree,
		"field_of_study": e.FieldOfStudy,
		"location":       e.Location,
		"start_date":     e.StartDate.String(),
		"end_date":       optionalDate(e.EndDate),
		"gpa":            e.GPA,
		"honors":         stringList(e.Honors),
		"coursework":     stringList(e.Coursework),
	}
}

func experienceContext(e models.ExperienceEntry) map[string]interface{} {
	return map[string]interface{}{
		"id":         string(e.ID),
		"company":    e.Company,
		"role":       e.Role,
		"location":   e.Location,
		"start_date": e.StartDate.String(),
		"end_date":   optionalDate(e.EndDate),
		"team":       e.Team,
		"department": e.Department,
		"highlights": highlightContexts(e.Highlights),
	}
}

func projectContext(p models.ProjectEntry) map[string]interface{} {
	return map[string]interface{}{
		"id":           string(p.ID),
		"name":         p.Name,
		"description":  p.Description,
		"start_date":   optionalDate(p.StartDate),
		"end_date":     optionalDate(p.EndDate),
		"url":          p.URL,
		"repository":   p.Repository,
		"technologies": tagList(p.Technologies),
		"role":         p.Role,
		"organization": p.Organization,
		"highlights":   highlightContexts(p.Highlights),
	}
}

func highlightContexts(hs []models.Highlight) []map[string]interface{} {
	out := make([]map[string]interface{}, len(hs))
	for i, h := range hs {
		out[i] = map[string]interface{}{
			"id":     string(h.ID),
			"text":   h.Text,
			"tags":   tagList(h.Tags),
			"impact": h.Impact,
		}
	}
	return out
}

func optionalDate(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func tagList(tags []models.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func stringList(in []string) []string {
	return append([]string(nil), in...)
}

// artifactStem derives the output filename stem from the manifest
// path: config/resume.yaml builds out/resume.html.
func artifactStem(manifestRel string) string {
	base := filepath.Base(manifestRel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
