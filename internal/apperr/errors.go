// Package apperr defines the error taxonomy shared by the loader,
// resolver, and validator.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound reports a manifest reference to an unknown entry ID.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID reports an ID collision where uniqueness is required.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnknownPath reports a file that maps to no registered schema.
	ErrUnknownPath = errors.New("unknown path")
)

// Load failure reasons, one per rung of the strict loader's ladder.
const (
	LoadNotUTF8   = "not UTF-8"
	LoadSyntax    = "syntax error"
	LoadEmpty     = "empty"
	LoadRootShape = "wrong root shape"
)

// FileNotFoundError reports a missing file, distinct from read failures.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// LoadError reports a file that could be located but not turned into a
// parsed document: undecodable bytes, YAML syntax errors, empty or null
// content, or a root node of the wrong kind.
type LoadError struct {
	Path   string
	Reason string // one of the Load* constants
	Line   int    // 1-based source line for syntax errors, 0 if unknown
	Detail string
	Err    error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load %s: %s", e.Path, e.Reason)
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// FieldError is a single field-level constraint failure, addressed by
// its dotted path within the record (e.g. "entries.0.end_date").
type FieldError struct {
	Path    string
	Message string
}

func (e FieldError) String() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// SchemaError aggregates every field- and record-level failure found
// while validating one document.
type SchemaError struct {
	Path   string // source file
	Schema string // schema name, e.g. "ExperienceFile"
	Fields []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s: validation against %s failed: %s", e.Path, e.Schema, strings.Join(parts, "; "))
}

// Sort orders field errors by dotted path so repeated runs report
// identically.
func (e *SchemaError) Sort() {
	sort.Slice(e.Fields, func(i, j int) bool {
		if e.Fields[i].Path != e.Fields[j].Path {
			return e.Fields[i].Path < e.Fields[j].Path
		}
		return e.Fields[i].Message < e.Fields[j].Message
	})
}

// Uniqueness scopes for DuplicateIDError.
const (
	ScopeFile       = "within-file"
	ScopeCollection = "within-collection"
	ScopeRepository = "repo-global"
)

// DuplicateIDError reports an identifier collision. Scope names which
// uniqueness check raised it.
type DuplicateIDError struct {
	ID        string
	Scope     string
	FirstFile string
	OtherFile string
}

func (e *DuplicateIDError) Error() string {
	if e.FirstFile != "" && e.OtherFile != "" {
		return fmt.Sprintf("duplicate id %q (%s): found in %s and %s", e.ID, e.Scope, e.FirstFile, e.OtherFile)
	}
	return fmt.Sprintf("duplicate id %q (%s)", e.ID, e.Scope)
}

func (e *DuplicateIDError) Is(target error) bool { return target == ErrDuplicateID }

// Reasons an UnknownPathError may carry.
const (
	PathOutsideRoot = "outside root"
	PathTooShallow  = "too shallow"
	PathUnmatched   = "no matching rule"
)

// UnknownPathError reports a file that the registry cannot map to a
// schema. Reason distinguishes the three causes.
type UnknownPathError struct {
	Path   string
	Reason string
}

func (e *UnknownPathError) Error() string {
	switch e.Reason {
	case PathOutsideRoot:
		return fmt.Sprintf("path %s is outside the content root", e.Path)
	case PathTooShallow:
		return fmt.Sprintf("path %s must be in a subdirectory of the content root", e.Path)
	default:
		return fmt.Sprintf("no schema registered for path %s", e.Path)
	}
}

func (e *UnknownPathError) Is(target error) bool { return target == ErrUnknownPath }

// NotFoundError reports a manifest reference to an entry ID absent from
// the content index. Kind is "experience" or "project".
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s entry %q not found in content", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// BulletNotFoundError reports a bullet filter naming a highlight its
// entry does not have. Available lists the entry's actual highlight IDs
// in original order.
type BulletNotFoundError struct {
	Kind      string
	EntryID   string
	BulletID  string
	Available []string
}

func (e *BulletNotFoundError) Error() string {
	return fmt.Sprintf("bullet %q not found in %s entry %q (available: %s)",
		e.BulletID, e.Kind, e.EntryID, strings.Join(e.Available, ", "))
}

func (e *BulletNotFoundError) Is(target error) bool { return target == ErrNotFound }
