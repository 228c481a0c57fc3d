package models

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SkillCategories lists the seven fixed categories in report order.
var SkillCategories = []string{
	"languages",
	"frameworks",
	"databases",
	"tools",
	"platforms",
	"methodologies",
	"other",
}

// Skills is the skills.yaml singleton: seven fixed categories, each a
// list with no case-insensitive duplicates. The same skill may appear
// in two different categories.
type Skills struct {
	Languages     []Tag    `yaml:"languages"`
	Frameworks    []Tag    `yaml:"frameworks"`
	Databases     []Tag    `yaml:"databases"`
	Tools         []Tag    `yaml:"tools"`
	Platforms     []Tag    `yaml:"platforms"`
	Methodologies []string `yaml:"methodologies"`
	Other         []string `yaml:"other"`
}

// Validate implements validation.Validatable.
func (s Skills) Validate() error {
	if err := validation.ValidateStruct(&s,
		validation.Field(&s.Languages),
		validation.Field(&s.Frameworks),
		validation.Field(&s.Databases),
		validation.Field(&s.Tools),
		validation.Field(&s.Platforms),
	); err != nil {
		return err
	}

	errs := validation.Errors{}
	for _, cat := range SkillCategories {
		items := s.category(cat)
		seen := make(map[string]struct{}, len(items))
		for _, item := range items {
			key := strings.ToLower(item)
			if _, ok := seen[key]; ok {
				errs[cat] = fmt.Errorf("duplicate item %q in category %q (case-insensitive)", item, cat)
				break
			}
			seen[key] = struct{}{}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s Skills) category(name string) []string {
	switch name {
	case "languages":
		return tagStrings(s.Languages)
	case "frameworks":
		return tagStrings(s.Frameworks)
	case "databases":
		return tagStrings(s.Databases)
	case "tools":
		return tagStrings(s.Tools)
	case "platforms":
		return tagStrings(s.Platforms)
	case "methodologies":
		return s.Methodologies
	default:
		return s.Other
	}
}

// ByCategory returns every category mapped to a fresh copy of its
// items, in source order.
func (s Skills) ByCategory() map[string][]string {
	out := make(map[string][]string, len(SkillCategories))
	for _, cat := range SkillCategories {
		items := s.category(cat)
		out[cat] = append([]string(nil), items...)
	}
	return out
}

// All returns a flat list of every skill across all categories.
func (s Skills) All() []string {
	var out []string
	for _, cat := range SkillCategories {
		out = append(out, s.category(cat)...)
	}
	return out
}

func tagStrings(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
