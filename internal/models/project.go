package models

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/ansuz/internal/apperr"
)

// ProjectEntry is one portfolio item. Same shape as an experience
// entry with name/description in place of company/role; dates are
// optional and the highlight list may be empty.
type ProjectEntry struct {
	ID           ID          `yaml:"id"`
	Name         string      `yaml:"name"`
	Description  string      `yaml:"description"`
	StartDate    *Date       `yaml:"start_date"`
	EndDate      *Date       `yaml:"end_date"`
	URL          string      `yaml:"url"`
	Repository   string      `yaml:"repository"`
	Technologies []Tag       `yaml:"technologies"`
	Highlights   []Highlight `yaml:"highlights"`
	Role         string      `yaml:"role"`
	Organization string      `yaml:"organization"`
}

// Validate checks field constraints, then the cross-field invariants
// once every field parsed.
func (p ProjectEntry) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.ID),
		validation.Field(&p.Name, validation.Required.Error("cannot be blank"), validation.RuneLength(1, 200)),
		validation.Field(&p.Description, validation.Required.Error("cannot be blank"), validation.RuneLength(1, 1000)),
		validation.Field(&p.StartDate),
		validation.Field(&p.EndDate),
		validation.Field(&p.URL, is.URL),
		validation.Field(&p.Repository, is.URL),
		validation.Field(&p.Technologies),
		validation.Field(&p.Highlights),
		validation.Field(&p.Role, validation.RuneLength(0, 200)),
		validation.Field(&p.Organization, validation.RuneLength(0, 200)),
	); err != nil {
		return err
	}

	errs := validation.Errors{}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		errs["end_date"] = fmt.Errorf("end_date (%s) cannot be before start_date (%s)", p.EndDate, p.StartDate)
	}
	if dup := duplicateHighlightIDs(p.Highlights); len(dup) > 0 {
		errs["highlights"] = fmt.Errorf("duplicate highlight ids within project %q: %s", p.ID, strings.Join(dup, ", "))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// WithHighlights returns a copy of the project with only the
// highlights list replaced; the receiver is never mutated.
func (p ProjectEntry) WithHighlights(hs []Highlight) ProjectEntry {
	p.Highlights = hs
	return p
}

// HighlightIDs returns the project's highlight IDs in original order.
func (p ProjectEntry) HighlightIDs() []string {
	return highlightIDs(p.Highlights)
}

// ProjectFile is the root of one project YAML file.
type ProjectFile struct {
	Entries []ProjectEntry `yaml:"entries"`
}

// Validate implements validation.Validatable.
func (f ProjectFile) Validate() error {
	if err := validation.ValidateStruct(&f,
		validation.Field(&f.Entries, validation.Required.Error("must contain at least one entry")),
	); err != nil {
		return err
	}
	ids := make([]ID, len(f.Entries))
	for i, e := range f.Entries {
		ids[i] = e.ID
	}
	if dup := duplicateEntryID(ids); dup != "" {
		return validation.Errors{"entries": &apperr.DuplicateIDError{ID: dup, Scope: apperr.ScopeFile}}
	}
	return nil
}
