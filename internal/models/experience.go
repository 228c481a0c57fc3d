package models

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/apperr"
)

// Highlight is one addressable achievement bullet within an entry. Its
// identity is scoped to the owning entry: two entries may reuse a
// highlight ID, the same entry may not.
type Highlight struct {
	ID     ID     `yaml:"id"`
	Text   string `yaml:"text"`
	Tags   []Tag  `yaml:"tags"`
	Impact string `yaml:"impact"`
}

// Validate implements validation.Validatable.
func (h Highlight) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.ID),
		validation.Field(&h.Text, validation.Required.Error("cannot be blank"), validation.RuneLength(1, 1000)),
		validation.Field(&h.Tags),
		validation.Field(&h.Impact, validation.RuneLength(0, 500)),
	)
}

// ExperienceEntry is one position held: company, role, date range, and
// at least one highlight.
type ExperienceEntry struct {
	ID         ID          `yaml:"id"`
	Company    string      `yaml:"company"`
	Role       string      `yaml:"role"`
	Location   string      `yaml:"location"`
	StartDate  Date        `yaml:"start_date"`
	EndDate    *Date       `yaml:"end_date"`
	Highlights []Highlight `yaml:"highlights"`
	Team       string      `yaml:"team"`
	Department string      `yaml:"department"`
}

// Validate checks field constraints first; the cross-field invariants
// (date range, highlight uniqueness) run only once every field parsed,
// since they need fully-assembled siblings.
func (e ExperienceEntry) Validate() error {
	if err := validation.ValidateStruct(&e,
		validation.Field(&e.ID),
		validation.Field(&e.Company, validation.Required.Error("cannot be blank"), validation.RuneLength(1, 200)),
		validation.Field(&e.Role, validation.Required.Error("cannot be blank"), validation.RuneLength(1, 200)),
		validation.Field(&e.Location, validation.Required.Error("cannot be blank"), validation.RuneLength(1, 100)),
		validation.Field(&e.StartDate),
		validation.Field(&e.EndDate),
		validation.Field(&e.Highlights, validation.Required.Error("must contain at least one highlight")),
		validation.Field(&e.Team, validation.RuneLength(0, 200)),
		validation.Field(&e.Department, validation.RuneLength(0, 200)),
	); err != nil {
		return err
	}

	errs := validation.Errors{}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		errs["end_date"] = fmt.Errorf("end_date (%s) cannot be before start_date (%s)", e.EndDate, e.StartDate)
	}
	if dup := duplicateHighlightIDs(e.Highlights); len(dup) > 0 {
		errs["highlights"] = fmt.Errorf("duplicate highlight ids within entry %q: %s", e.ID, strings.Join(dup, ", "))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// WithHighlights returns a copy of the entry with only the highlights
// list replaced. The receiver is never mutated; fields added to the
// record later are carried over automatically.
func (e ExperienceEntry) WithHighlights(hs []Highlight) ExperienceEntry {
	e.Highlights = hs
	return e
}

// HighlightIDs returns the entry's highlight IDs in original order.
func (e ExperienceEntry) HighlightIDs() []string {
	return highlightIDs(e.Highlights)
}

// ExperienceFile is the root of one experience YAML file: a list of one
// or more entries whose IDs are unique within the file. Cross-file
// uniqueness is the resolver's concern, not this layer's.
type ExperienceFile struct {
	Entries []ExperienceEntry `yaml:"entries"`
}

// Validate implements validation.Validatable.
func (f ExperienceFile) Validate() error {
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

func duplicateHighlightIDs(hs []Highlight) []string {
	seen := make(map[ID]struct{}, len(hs))
	var dup []string
	for _, h := range hs {
		if _, ok := seen[h.ID]; ok {
			dup = append(dup, string(h.ID))
			continue
		}
		seen[h.ID] = struct{}{}
	}
	return dup
}

func highlightIDs(hs []Highlight) []string {
	ids := make([]string, len(hs))
	for i, h := range hs {
		ids[i] = string(h.ID)
	}
	return ids
}

// duplicateEntryID returns the first recurring ID, or "".
func duplicateEntryID(ids []ID) string {
	seen := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return string(id)
		}
		seen[id] = struct{}{}
	}
	return ""
}
