package models

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ManifestEntry references an experience or project entry, optionally
// narrowed to specific bullets. Bullets nil means "all highlights, in
// their original order". A present-but-empty list is invalid: the
// author must write null to mean "all". When present, the list defines
// both the filter and the output order; a bullet requested twice
// appears twice in the output (no uniqueness at this layer).
type ManifestEntry struct {
	ID      ID   `yaml:"id"`
	Bullets []ID `yaml:"bullets"`
}

// Validate implements validation.Validatable.
func (m ManifestEntry) Validate() error {
	if err := validation.ValidateStruct(&m,
		validation.Field(&m.ID),
		validation.Field(&m.Bullets),
	); err != nil {
		return err
	}
	if m.Bullets != nil && len(m.Bullets) == 0 {
		return validation.Errors{
			"bullets": errors.New("cannot be empty; use null to include all highlights"),
		}
	}
	return nil
}

// Manifest is one build configuration: a template, a profile key, and
// ordered entry selections for one output artifact.
type Manifest struct {
	Template          string          `yaml:"template"`
	Profile           string          `yaml:"profile"`
	IncludeExperience []ManifestEntry `yaml:"include_experience"`
	IncludeProjects   []ManifestEntry `yaml:"include_projects"`
}

// Validate implements validation.Validatable.
func (m Manifest) Validate() error {
	if err := validation.ValidateStruct(&m,
		validation.Field(&m.Template, validation.Required.Error("cannot be blank"), validation.RuneLength(1, 100)),
		validation.Field(&m.Profile, validation.Required.Error("cannot be blank"), validation.RuneLength(1, 100)),
		validation.Field(&m.IncludeExperience),
		validation.Field(&m.IncludeProjects),
	); err != nil {
		return err
	}

	// The same ID may appear once in each section, but not twice in one.
	errs := validation.Errors{}
	if dup := duplicateManifestID(m.IncludeExperience); dup != "" {
		errs["include_experience"] = fmt.Errorf("duplicate experience entry id %q in manifest", dup)
	}
	if dup := duplicateManifestID(m.IncludeProjects); dup != "" {
		errs["include_projects"] = fmt.Errorf("duplicate project entry id %q in manifest", dup)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func duplicateManifestID(entries []ManifestEntry) string {
	seen := make(map[ID]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			return string(e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return ""
}
