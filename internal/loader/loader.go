// Package loader reads a YAML file and validates it against a record
// schema, producing either a validated record or a categorized
// failure. Failures are checked in a fixed order: missing file, bad
// encoding, syntax error, empty document, wrong root shape, schema
// violation.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/ansuz/internal/apperr"
)

var yamlLineRe = regexp.MustCompile(`line (\d+):`)

// Load reads path and decodes it into out, which must be a pointer to
// a mapping-rooted record type. Unknown fields are rejected. If out
// implements validation.Validatable, every field and record invariant
// is checked and all failures are aggregated into one SchemaError.
func Load(path string, out interface{}) error {
	data, doc, err := parseFile(path)
	if err != nil {
		return err
	}
	if doc.Kind != yaml.MappingNode {
		return &apperr.LoadError{
			Path:   path,
			Reason: apperr.LoadRootShape,
			Detail: fmt.Sprintf("root must be a mapping, got %s", kindName(doc.Kind)),
		}
	}
	if err := decodeStrict(data, out); err != nil {
		return schemaErrorFromDecode(path, out, err)
	}
	return validate(path, out)
}

// LoadList reads path, whose root must be a sequence, and decodes each
// element into a fresh value of out's element type, validating each
// independently. Errors are tagged with the element index; the first
// non-mapping element aborts with its index reported.
func LoadList[T any](path string) ([]T, error) {
	_, doc, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	if doc.Kind != yaml.SequenceNode {
		return nil, &apperr.LoadError{
			Path:   path,
			Reason: apperr.LoadRootShape,
			Detail: fmt.Sprintf("root must be a sequence, got %s", kindName(doc.Kind)),
		}
	}

	out := make([]T, 0, len(doc.Content))
	for i, elem := range doc.Content {
		if elem.Kind != yaml.MappingNode {
			return nil, &apperr.LoadError{
				Path:   path,
				Reason: apperr.LoadRootShape,
				Detail: fmt.Sprintf("element %d must be a mapping, got %s", i, kindName(elem.Kind)),
			}
		}
		raw, err := yaml.Marshal(elem)
		if err != nil {
			return nil, &apperr.LoadError{Path: path, Reason: apperr.LoadSyntax, Detail: err.Error(), Err: err}
		}
		var item T
		if err := decodeStrict(raw, &item); err != nil {
			se := schemaErrorFromDecode(path, &item, err)
			return nil, prefixSchemaError(se, strconv.Itoa(i))
		}
		if err := validate(path, &item); err != nil {
			return nil, prefixSchemaError(err, strconv.Itoa(i))
		}
		out = append(out, item)
	}
	return out, nil
}

// parseFile runs the shared front half of the ladder: existence,
// UTF-8, syntax, emptiness. It returns the raw bytes and the document
// root node.
func parseFile(path string) ([]byte, *yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, &apperr.FileNotFoundError{Path: path}
		}
		return nil, nil, &apperr.LoadError{Path: path, Reason: apperr.LoadSyntax, Detail: err.Error(), Err: err}
	}
	if !utf8.Valid(data) {
		return nil, nil, &apperr.LoadError{Path: path, Reason: apperr.LoadNotUTF8}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, &apperr.LoadError{
			Path:   path,
			Reason: apperr.LoadSyntax,
			Line:   yamlErrorLine(err),
			Detail: err.Error(),
			Err:    err,
		}
	}

	doc := documentNode(&root)
	if doc == nil {
		return nil, nil, &apperr.LoadError{Path: path, Reason: apperr.LoadEmpty, Detail: "file is empty or contains only null"}
	}
	return data, doc, nil
}

// documentNode unwraps the document wrapper and returns nil for empty
// or null-only content.
func documentNode(root *yaml.Node) *yaml.Node {
	if root.Kind == 0 {
		return nil
	}
	node := root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	return node
}

// decodeStrict decodes data into out rejecting unknown fields.
func decodeStrict(data []byte, out interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// validate runs the record's own Validate and converts the aggregated
// ozzo error map into a SchemaError with dotted field paths.
func validate(path string, out interface{}) error {
	v, ok := out.(validation.Validatable)
	if !ok {
		return nil
	}
	err := v.Validate()
	if err == nil {
		return nil
	}
	se := &apperr.SchemaError{
		Path:   path,
		Schema: schemaName(out),
		Fields: Flatten("", err),
	}
	se.Sort()
	return se
}

// Flatten converts a (possibly nested) ozzo error map into a flat list
// of dotted-path field errors.
func Flatten(prefix string, err error) []apperr.FieldError {
	var out []apperr.FieldError
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return []apperr.FieldError{{Path: prefix, Message: err.Error()}}
	}
	for _, key := range sortedKeys(errs) {
		sub := errs[key]
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		out = append(out, Flatten(path, sub)...)
	}
	return out
}

func sortedKeys(errs validation.Errors) []string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	// Numeric keys (slice indexes) sort numerically so entries.10 does
	// not land before entries.2.
	sort.Slice(keys, func(i, j int) bool {
		ai, aerr := strconv.Atoi(keys[i])
		bi, berr := strconv.Atoi(keys[j])
		if aerr == nil && berr == nil {
			return ai < bi
		}
		return keys[i] < keys[j]
	})
	return keys
}

// schemaErrorFromDecode maps strict-decode failures (unknown fields,
// type mismatches) onto the schema violation kind. yaml.TypeError
// carries one message per offending field.
func schemaErrorFromDecode(path string, out interface{}, err error) error {
	se := &apperr.SchemaError{Path: path, Schema: schemaName(out)}
	var te *yaml.TypeError
	if errors.As(err, &te) {
		for _, msg := range te.Errors {
			se.Fields = append(se.Fields, apperr.FieldError{Message: msg})
		}
	} else {
		se.Fields = append(se.Fields, apperr.FieldError{Message: err.Error()})
	}
	se.Sort()
	return se
}

// prefixSchemaError re-roots a SchemaError's field paths under an
// element index for list loading. Non-schema errors pass through.
func prefixSchemaError(err error, prefix string) error {
	var se *apperr.SchemaError
	if !errors.As(err, &se) {
		return err
	}
	for i, f := range se.Fields {
		if f.Path == "" {
			se.Fields[i].Path = prefix
		} else {
			se.Fields[i].Path = prefix + "." + f.Path
		}
	}
	se.Schema = se.Schema + "[" + prefix + "]"
	return se
}

func schemaName(out interface{}) string {
	t := reflect.TypeOf(out)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	return t.Name()
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "unknown"
	}
}

// yamlErrorLine extracts the 1-based source line from a yaml.v3 error
// message, or 0 when the parser did not report one.
func yamlErrorLine(err error) int {
	m := yamlLineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0
	}
	return n
}
