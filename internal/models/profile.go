package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Link is a labeled professional URL.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Validate implements validation.Validatable.
func (l Link) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Label, validation.Required.Error("cannot be blank"), validation.RuneLength(1, 50)),
		validation.Field(&l.URL, validation.Required.Error("cannot be blank"), is.URL),
	)
}

// Profile is the identity/contact singleton (data/profile.yaml).
type Profile struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
	Location string `yaml:"location"`
	LinkedIn string `yaml:"linkedin"`
	GitHub   string `yaml:"github"`
	Website  string `yaml:"website"`
	Links    []Link `yaml:"links"`
}

// Validate implements validation.Validatable.
func (p Profile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required.Error("cannot be blank"), validation.RuneLength(1, 100)),
		validation.Field(&p.Email, validation.Required.Error("cannot be blank"), is.EmailFormat),
		validation.Field(&p.Phone, validation.RuneLength(0, 30)),
		validation.Field(&p.Location, validation.RuneLength(0, 100)),
		validation.Field(&p.LinkedIn, is.URL),
		validation.Field(&p.GitHub, is.URL),
		validation.Field(&p.Website, is.URL),
		validation.Field(&p.Links),
	)
}
