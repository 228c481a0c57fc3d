package models

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/apperr"
)

// EducationEntry is one academic credential.
type EducationEntry struct {
	ID           ID       `yaml:"id"`
	Institution  string   `yaml:"institution"`
	Degree       string   `yaml:"degree"`
	FieldOfStudy string   `yaml:"field_of_study"`
	Location     string   `yaml:"location"`
	StartDate    Date     `yaml:"start_date"`
	EndDate      *Date    `yaml:"end_date"`
	GPA          string   `yaml:"gpa"`
	Honors       []string `yaml:"honors"`
	Coursework   []string `yaml:"coursework"`
}

// Validate implements validation.Validatable.
func (e EducationEntry) Validate() error {
	if err := validation.ValidateStruct(&e,
		validation.Field(&e.ID),
		validation.Field(&e.Institution, validation.Required.Error("cannot be blank"), validation.RuneLength(1, 200)),
		validation.Field(&e.Degree, validation.Required.Error("cannot be blank"), validation.RuneLength(1, 200)),
		validation.Field(&e.FieldOfStudy, validation.RuneLength(0, 200)),
		validation.Field(&e.Location, validation.RuneLength(0, 100)),
		validation.Field(&e.StartDate),
		validation.Field(&e.EndDate),
		validation.Field(&e.GPA, validation.RuneLength(0, 20)),
	); err != nil {
		return err
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return validation.Errors{
			"end_date": fmt.Errorf("end_date (%s) cannot be before start_date (%s)", e.EndDate, e.StartDate),
		}
	}
	return nil
}

// Education is the education.yaml singleton: every credential, with
// IDs unique within the file.
type Education struct {
	Entries []EducationEntry `yaml:"entries"`
}

// Validate implements validation.Validatable.
func (ed Education) Validate() error {
	if err := validation.ValidateStruct(&ed,
		validation.Field(&ed.Entries, validation.Required.Error("must contain at least one entry")),
	); err != nil {
		return err
	}
	ids := make([]ID, len(ed.Entries))
	for i, e := range ed.Entries {
		ids[i] = e.ID
	}
	if dup := duplicateEntryID(ids); dup != "" {
		return validation.Errors{"entries": &apperr.DuplicateIDError{ID: dup, Scope: apperr.ScopeFile}}
	}
	return nil
}
