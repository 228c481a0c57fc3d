// Package models defines the record schemas for the resume content
// tree and the scalar value types they are built from. Every record is
// an immutable value object once validated; invariants live here and
// nowhere else.
package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

func init() {
	// Field names in validation errors follow the YAML keys, so dotted
	// paths like entries.0.end_date match what the user wrote.
	validation.ErrorTag = "yaml"
}

// Value-level parse failures. Field-scoped; aggregated into schema
// errors by the loader.
var (
	ErrInvalidID   = errors.New("invalid identifier")
	ErrInvalidTag  = errors.New("invalid tech tag")
	ErrInvalidDate = errors.New("invalid date format")
)

var (
	idPattern  = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	tagPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
)

// ID is the primary key for every addressable entity: experience and
// project entries, highlights, and education entries. Lowercase
// alphanumeric with hyphens/underscores, not starting with a separator.
// Unlike Tag, an ID is never normalized: uppercase input is rejected.
type ID string

// ParseID validates s as an identifier.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("%w: cannot be empty", ErrInvalidID)
	}
	if !idPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q must be lowercase alphanumeric with hyphens or underscores, starting with a letter or digit", ErrInvalidID, s)
	}
	return ID(s), nil
}

// Validate implements validation.Validatable.
func (id ID) Validate() error {
	_, err := ParseID(string(id))
	return err
}

func (id ID) String() string { return string(id) }

// Tag is a technology tag. Input is lowercased and trimmed before the
// character-class check, so "Python" and " python " are the same tag.
type Tag string

// ParseTag normalizes and validates s as a technology tag.
func ParseTag(s string) (Tag, error) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// Validate implements validation.Validatable. The value is expected to
// be normalized already (UnmarshalYAML does so).
func (t Tag) Validate() error {
	if t == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidTag)
	}
	if !tagPattern.MatchString(string(t)) {
		return fmt.Errorf("%w: %q must be lowercase alphanumeric with hyphens, underscores, or dots, starting with a letter or digit", ErrInvalidTag, t)
	}
	return nil
}

// UnmarshalYAML lowercases and trims the scalar so later validation and
// comparisons always see the canonical form.
func (t *Tag) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	*t = Tag(strings.ToLower(strings.TrimSpace(s)))
	return nil
}

func (t Tag) String() string { return string(t) }
