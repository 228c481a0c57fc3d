// Package validator checks an entire content tree: every governed file
// against its schema, then the repository-wide invariants that no
// single file can establish on its own.
package validator

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/loader"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/registry"
	"github.com/starford/ansuz/internal/storage"
)

// Result categories.
const (
	TypeUnknownPath     = "unknown_path"
	TypeLoadError       = "load_error"
	TypeSchema          = "schema"
	TypeDuplicateID     = "duplicate_id"
	TypeBrokenReference = "broken_reference"
)

// Directories scanned for governed files, relative to the tree root.
var scanDirs = []string{"config", "content", "data"}

// Result is one validation failure, addressed by file and, where it
// applies, by dotted field path and source line.
type Result struct {
	File      string `json:"file"`
	Type      string `json:"type"`
	FieldPath string `json:"field_path,omitempty"`
	Message   string `json:"message"`
	Line      int    `json:"line,omitempty"`
}

// Report is the outcome of one full validation run.
type Report struct {
	Results      []Result
	FilesChecked int
}

// OK reports whether the run found no failures.
func (r *Report) OK() bool { return len(r.Results) == 0 }

func (r *Report) add(file, typ, fieldPath, message string, line int) {
	r.Results = append(r.Results, Result{
		File:      file,
		Type:      typ,
		FieldPath: fieldPath,
		Message:   message,
		Line:      line,
	})
}

// Run validates the content tree rooted at root. A non-nil error means
// the run itself could not happen (root missing or not a directory);
// validation failures live in the report, never in the error.
func Run(root string) (*Report, error) {
	store, err := storage.NewFS(root)
	if err != nil {
		return nil, err
	}

	report := &Report{}

	files, err := discover(store)
	if err != nil {
		return nil, err
	}
	report.FilesChecked = len(files)

	reg := registry.New()
	for _, file := range files {
		checkFile(report, store, reg, file)
	}

	checkGlobal(report, store, files, reg)

	sortResults(report.Results)
	return report, nil
}

// discover lists every YAML file under the governed directories, fully
// sorted. Directories that do not exist contribute nothing.
func discover(store *storage.FS) ([]string, error) {
	var all []string
	for _, dir := range scanDirs {
		files, err := store.ListYAML(dir)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	sort.Strings(all)
	return all, nil
}

// checkFile validates one file in isolation: schema assignment first,
// then the full strict load against the assigned schema.
func checkFile(report *Report, store *storage.FS, reg *registry.Registry, file string) {
	abs, err := store.Abs(file)
	if err != nil {
		report.add(file, TypeLoadError, "", err.Error(), 0)
		return
	}

	kind, resolveErr := reg.Resolve(store.Root(), abs)
	if resolveErr != nil {
		// Ungoverned files are reported once and not inspected further.
		report.add(file, TypeUnknownPath, "", resolveErr.Error(), 0)
		return
	}

	if err := loadByKind(kind, abs); err != nil {
		recordLoadFailure(report, file, err)
	}
}

// loadByKind loads and validates a file against the schema its path
// assigned it.
func loadByKind(kind registry.Kind, path string) error {
	switch kind {
	case registry.KindProfile:
		var v models.Profile
		return loader.Load(path, &v)
	case registry.KindSkills:
		var v models.Skills
		return loader.Load(path, &v)
	case registry.KindEducation:
		var v models.Education
		return loader.Load(path, &v)
	case registry.KindExperienceFile:
		var v models.ExperienceFile
		return loader.Load(path, &v)
	case registry.KindProjectFile:
		var v models.ProjectFile
		return loader.Load(path, &v)
	case registry.KindManifest:
		var v models.Manifest
		return loader.Load(path, &v)
	default:
		return fmt.Errorf("no loader for kind %s", kind)
	}
}

// recordLoadFailure fans a loader error out into report results: one
// per field for schema violations, one for everything else.
func recordLoadFailure(report *Report, file string, err error) {
	var se *apperr.SchemaError
	if errors.As(err, &se) {
		for _, f := range se.Fields {
			report.add(file, TypeSchema, f.Path, f.Message, 0)
		}
		return
	}
	var le *apperr.LoadError
	if errors.As(err, &le) {
		report.add(file, TypeLoadError, "", loadMessage(le), le.Line)
		return
	}
	report.add(file, TypeLoadError, "", err.Error(), 0)
}

func loadMessage(le *apperr.LoadError) string {
	msg := le.Reason
	if le.Detail != "" {
		msg += ": " + le.Detail
	}
	return msg
}

// checkGlobal builds the repository-wide ID index and then verifies
// every manifest reference against it. Files that failed to load are
// skipped here; their failures are already on the report.
func checkGlobal(report *Report, store *storage.FS, files []string, reg *registry.Registry) {
	index := buildIndex(report, store, files, reg)

	for _, file := range files {
		abs, err := store.Abs(file)
		if err != nil {
			continue
		}
		kind, ok := reg.Lookup(store.Root(), abs)
		if !ok || kind != registry.KindManifest {
			continue
		}
		var m models.Manifest
		if err := loader.Load(abs, &m); err != nil {
			continue
		}
		checkManifest(report, store, file, m, index)
	}
}

// buildIndex loads every content entry into one flat ID-to-source-file
// map that also holds nested highlight IDs. Any recurrence across the
// whole repository is a finding, even across the
// experience/project/education boundary (an experience highlight ID
// colliding with a project entry ID counts); the second occurrence is
// the one reported.
func buildIndex(report *Report, store *storage.FS, files []string, reg *registry.Registry) map[models.ID]string {
	index := make(map[models.ID]string)

	claim := func(file string, id models.ID) {
		if first, ok := index[id]; ok {
			dup := &apperr.DuplicateIDError{
				ID:        string(id),
				Scope:     apperr.ScopeRepository,
				FirstFile: first,
				OtherFile: file,
			}
			report.add(file, TypeDuplicateID, "", dup.Error(), 0)
			return
		}
		index[id] = file
	}

	register := func(file string, id models.ID, highlights []models.Highlight) {
		claim(file, id)
		for _, h := range highlights {
			claim(file, h.ID)
		}
	}

	for _, file := range files {
		abs, err := store.Abs(file)
		if err != nil {
			continue
		}
		kind, ok := reg.Lookup(store.Root(), abs)
		if !ok {
			continue
		}
		switch kind {
		case registry.KindExperienceFile:
			var ef models.ExperienceFile
			if err := loader.Load(abs, &ef); err != nil {
				continue
			}
			for _, e := range ef.Entries {
				register(file, e.ID, e.Highlights)
			}
		case registry.KindProjectFile:
			var pf models.ProjectFile
			if err := loader.Load(abs, &pf); err != nil {
				continue
			}
			for _, e := range pf.Entries {
				register(file, e.ID, e.Highlights)
			}
		case registry.KindEducation:
			var ed models.Education
			if err := loader.Load(abs, &ed); err != nil {
				continue
			}
			for _, e := range ed.Entries {
				register(file, e.ID, nil)
			}
		}
	}

	return index
}

// checkManifest verifies one manifest's outbound references: the
// profile file it names, and every entry and bullet it includes. Both
// checks are plain membership tests against the flat index; whether a
// bullet actually belongs to the entry it is listed under is settled
// at build time by the resolver.
func checkManifest(report *Report, store *storage.FS, file string, m models.Manifest, index map[models.ID]string) {
	profilePath := profileFile(m.Profile)
	if abs, err := store.Abs(profilePath); err == nil {
		if _, statErr := os.Stat(abs); statErr != nil {
			report.add(file, TypeBrokenReference, "profile",
				fmt.Sprintf("profile %q resolves to missing file %s", m.Profile, profilePath), 0)
		}
	}

	checkSection(report, file, "include_experience", "experience", m.IncludeExperience, index)
	checkSection(report, file, "include_projects", "project", m.IncludeProjects, index)
}

func checkSection(report *Report, file, section, wantKind string, entries []models.ManifestEntry, index map[models.ID]string) {
	for i, me := range entries {
		base := fmt.Sprintf("%s.%d", section, i)
		if _, ok := index[me.ID]; !ok {
			report.add(file, TypeBrokenReference, base+".id",
				(&apperr.NotFoundError{Kind: wantKind, ID: string(me.ID)}).Error(), 0)
			continue
		}
		for j, bullet := range me.Bullets {
			if _, ok := index[bullet]; !ok {
				report.add(file, TypeBrokenReference, fmt.Sprintf("%s.bullets.%d", base, j),
					fmt.Sprintf("bullet %q not found in content index", bullet), 0)
			}
		}
	}
}

// profileFile maps a manifest's profile key to its file: the default
// key reads data/profile.yaml, anything else data/<key>.yaml.
func profileFile(key string) string {
	if key == "default" {
		return "data/profile.yaml"
	}
	return "data/" + key + ".yaml"
}

func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].File != results[j].File {
			return results[i].File < results[j].File
		}
		if results[i].FieldPath != results[j].FieldPath {
			return results[i].FieldPath < results[j].FieldPath
		}
		return results[i].Message < results[j].Message
	})
}

const (
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)

// Format renders the report for the terminal: failures grouped by file
// in alphabetical order, then a summary line. colorize adds ANSI color
// to the status markers only.
func (r *Report) Format(colorize bool) string {
	if r.OK() {
		pass := "[PASS]"
		if colorize {
			pass = ansiGreen + pass + ansiReset
		}
		return fmt.Sprintf("%s %d files checked, 0 errors found.\n", pass, r.FilesChecked)
	}

	fail := "[FAIL]"
	if colorize {
		fail = ansiRed + fail + ansiReset
	}

	var b strings.Builder
	current := ""
	for _, res := range r.Results {
		if res.File != current {
			if current != "" {
				b.WriteString("\n")
			}
			current = res.File
			fmt.Fprintf(&b, "%s\n", res.File)
		}
		label := res.FieldPath
		if label == "" {
			label = "file"
		}
		if res.Line > 0 {
			fmt.Fprintf(&b, "  %s %s (line %d) - %s\n", fail, label, res.Line, res.Message)
		} else {
			fmt.Fprintf(&b, "  %s %s - %s\n", fail, label, res.Message)
		}
	}
	fmt.Fprintf(&b, "\n%d files checked, %d errors found.\n", r.FilesChecked, len(r.Results))
	return b.String()
}
