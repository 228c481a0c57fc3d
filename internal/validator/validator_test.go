package validator

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/testutil"
)

func run(t *testing.T, files map[string]string) *Report {
	t.Helper()
	root := testutil.WriteTree(t, files)
	report, err := Run(root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return report
}

func hasResult(report *Report, typ, fragment string) bool {
	for _, r := range report.Results {
		if r.Type == typ && strings.Contains(r.Message, fragment) {
			return true
		}
	}
	return false
}

func TestRunMissingTarget(t *testing.T) {
	if _, err := Run(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing target")
	}
}

func TestEmptyTreePasses(t *testing.T) {
	report := run(t, map[string]string{})
	if !report.OK() || report.FilesChecked != 0 {
		t.Errorf("report = %+v", report)
	}
	got := report.Format(false)
	if got != "[PASS] 0 files checked, 0 errors found.\n" {
		t.Errorf("Format = %q", got)
	}
}

func TestValidTreePasses(t *testing.T) {
	report := run(t, testutil.ValidTree())
	if !report.OK() {
		t.Fatalf("unexpected findings: %+v", report.Results)
	}
	if report.FilesChecked != 6 {
		t.Errorf("FilesChecked = %d", report.FilesChecked)
	}
}

func TestSchemaViolationReported(t *testing.T) {
	files := testutil.ValidTree()
	files["data/profile.yaml"] = "name: Ada\nemail: not-an-email\n"
	report := run(t, files)
	if report.OK() {
		t.Fatal("expected findings")
	}
	found := false
	for _, r := range report.Results {
		if r.File == "data/profile.yaml" && r.Type == TypeSchema && r.FieldPath == "email" {
			found = true
		}
	}
	if !found {
		t.Errorf("results = %+v", report.Results)
	}
}

func TestSyntaxErrorReported(t *testing.T) {
	files := testutil.ValidTree()
	files["data/skills.yaml"] = "languages: [go\n"
	report := run(t, files)
	if !hasResult(report, TypeLoadError, "syntax") {
		t.Errorf("results = %+v", report.Results)
	}
}

func TestUnknownPathReported(t *testing.T) {
	files := testutil.ValidTree()
	files["data/extra.yaml"] = "name: x\n"
	report := run(t, files)
	if !hasResult(report, TypeUnknownPath, "no schema registered") {
		t.Errorf("results = %+v", report.Results)
	}
	if report.FilesChecked != 7 {
		t.Errorf("unmapped files still count as checked; FilesChecked = %d", report.FilesChecked)
	}
}

func TestUnknownPathReportedOnce(t *testing.T) {
	files := testutil.ValidTree()
	files["data/extra.yaml"] = "name: [broken\n"
	report := run(t, files)
	var got []Result
	for _, r := range report.Results {
		if r.File == "data/extra.yaml" {
			got = append(got, r)
		}
	}
	if len(got) != 1 || got[0].Type != TypeUnknownPath {
		t.Errorf("want a single unknown_path result; got %+v", got)
	}
}

func TestRepoGlobalDuplicateID(t *testing.T) {
	files := testutil.ValidTree()
	files["content/projects/clash.yaml"] = `entries:
  - id: google-staff-swe
    name: Clashing Project
    description: Same id as an experience entry
`
	report := run(t, files)
	if !hasResult(report, TypeDuplicateID, `duplicate id "google-staff-swe"`) {
		t.Errorf("results = %+v", report.Results)
	}
}

func TestHighlightIDCollidesRepoWide(t *testing.T) {
	files := testutil.ValidTree()
	files["content/projects/collide.yaml"] = `entries:
  - id: another-project
    name: Another
    description: Reuses an experience highlight id
    highlights:
      - id: arch
        text: clashing bullet
`
	report := run(t, files)
	if !hasResult(report, TypeDuplicateID, `duplicate id "arch"`) {
		t.Errorf("results = %+v", report.Results)
	}
}

func TestBrokenEntryReference(t *testing.T) {
	files := testutil.ValidTree()
	files["config/resume.yaml"] = `template: default
profile: default
include_experience:
  - id: nobody
`
	report := run(t, files)
	found := false
	for _, r := range report.Results {
		if r.Type == TypeBrokenReference && r.FieldPath == "include_experience.0.id" {
			found = true
		}
	}
	if !found {
		t.Errorf("results = %+v", report.Results)
	}
}

func TestBrokenBulletReference(t *testing.T) {
	files := testutil.ValidTree()
	files["config/resume.yaml"] = `template: default
profile: default
include_experience:
  - id: google-staff-swe
    bullets: [arch, ghost]
`
	report := run(t, files)
	found := false
	for _, r := range report.Results {
		if r.Type == TypeBrokenReference && r.FieldPath == "include_experience.0.bullets.1" {
			found = true
		}
	}
	if !found {
		t.Errorf("results = %+v", report.Results)
	}
}

func TestBulletReferencesUseGlobalIndex(t *testing.T) {
	files := testutil.ValidTree()
	// pipeline lives under a project entry; the bullet check only asks
	// whether the id exists somewhere in the repository.
	files["config/resume.yaml"] = `template: default
profile: default
include_experience:
  - id: google-staff-swe
    bullets: [arch, pipeline]
`
	report := run(t, files)
	if !report.OK() {
		t.Errorf("unexpected findings: %+v", report.Results)
	}
}

func TestBrokenProfileReference(t *testing.T) {
	files := testutil.ValidTree()
	files["config/resume.yaml"] = `template: default
profile: consulting
include_experience:
  - id: google-staff-swe
`
	report := run(t, files)
	if !hasResult(report, TypeBrokenReference, "data/consulting.yaml") {
		t.Errorf("results = %+v", report.Results)
	}
}

func TestManifestChecksSkipUnloadableContent(t *testing.T) {
	files := testutil.ValidTree()
	files["content/experience/google.yaml"] = "entries: [broken\n"
	report := run(t, files)
	// The broken file is reported once as a load failure; the manifest
	// reference to its entry then fails too.
	if !hasResult(report, TypeLoadError, "syntax") {
		t.Errorf("results = %+v", report.Results)
	}
	if !hasResult(report, TypeBrokenReference, "google-staff-swe") {
		t.Errorf("results = %+v", report.Results)
	}
}

func TestFormatFailure(t *testing.T) {
	files := testutil.ValidTree()
	files["data/profile.yaml"] = "name: Ada\nemail: not-an-email\n"
	report := run(t, files)

	out := report.Format(false)
	if !strings.Contains(out, "data/profile.yaml") {
		t.Errorf("output missing file header: %q", out)
	}
	if !strings.Contains(out, "[FAIL] email - ") {
		t.Errorf("output missing failure line: %q", out)
	}
	if !strings.HasSuffix(out, "6 files checked, 1 errors found.\n") {
		t.Errorf("output missing summary: %q", out)
	}
}

func TestResultsAreDeterministic(t *testing.T) {
	files := testutil.ValidTree()
	files["data/profile.yaml"] = "name: \"\"\nemail: not-an-email\n"
	a := run(t, files).Format(false)
	b := run(t, files).Format(false)
	if a != b {
		t.Error("report output must be stable across runs")
	}
}
