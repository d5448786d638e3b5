package jsonskema

import (
	"fmt"
	"strings"

	"github.com/reoring/jsonskema/uri"
	"github.com/reoring/jsonskema/value"
)

// Draft07 is the only accepted $schema value.
const Draft07 = "http://json-schema.org/draft-07/schema#"

// Implementation is the compiled behavior of a schema.
type Implementation interface {
	// Call returns the canonical form of a valid value or rejects it.
	Call(v any) (any, error)
	// Cast is Call for values that may be in a lexical form.
	Cast(v any) (any, error)
	// Debug evaluates every assertion, records each into r and reports
	// whether v is valid. It never fails.
	Debug(v any, r *Results) bool
}

// Schema is a node of a schema graph: the root document or any subschema in
// it. A Schema is usable once its graph is defined.
type Schema struct {
	root *RootSchema
	spec any
	ids  *Identifiers
	impl Implementation
}

func newSchema(root *RootSchema, spec any, ids *Identifiers, isRoot bool) (*Schema, error) {
	s := &Schema{root: root, spec: spec, ids: ids}
	obj, isObj := value.AsMap(spec)
	if _, isBool := spec.(bool); !isObj && !isBool {
		return nil, &SchemaError{Pointer: ids.Pointer(), Err: fmt.Errorf("%w: %T", ErrNotSchema, spec)}
	}
	if isObj {
		s.spec = obj
		if version, ok := obj["$schema"]; ok {
			if !isRoot {
				return nil, &SchemaError{Pointer: ids.Pointer(), Keyword: "$schema", Err: fmt.Errorf("%w: only allowed in the root schema", ErrUnsupportedDraft)}
			}
			if version != Draft07 {
				return nil, &SchemaError{Pointer: ids.Pointer(), Keyword: "$schema", Err: fmt.Errorf("%w: %v", ErrUnsupportedDraft, version)}
			}
		}
	}
	id, err := s.id()
	if err != nil {
		return nil, &SchemaError{Pointer: ids.Pointer(), Keyword: "$id", Err: err}
	}
	if err := ids.define(id, isRoot, root.support); err != nil {
		return nil, &SchemaError{Pointer: ids.Pointer(), Keyword: "$id", Err: err}
	}
	return s, nil
}

func (s *Schema) id() (string, error) {
	raw, ok := s.member("$id")
	if !ok {
		return "", nil
	}
	id, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: $id is %T, not a string", ErrInvalidIdentifier, raw)
	}
	return id, nil
}

// member returns a keyword of an object schema.
func (s *Schema) member(keyword string) (any, bool) {
	obj, ok := s.spec.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := obj[keyword]
	return v, ok
}

func (s *Schema) stringMember(keyword string) (string, bool) {
	v, ok := s.member(keyword)
	str, isStr := v.(string)
	return str, ok && isStr
}

func (s *Schema) Root() *RootSchema { return s.root }
func (s *Schema) IsRoot() bool      { return s.root != nil && s == s.root.Schema }

// Spec returns the schema document: a bool or a map[string]any.
func (s *Schema) Spec() any { return s.spec }

func (s *Schema) Identifiers() *Identifiers { return s.ids }
func (s *Schema) KeyPath() uri.KeyPath      { return s.ids.KeyPath() }
func (s *Schema) Pointer() string           { return s.ids.Pointer() }
func (s *Schema) BaseURI() string           { return s.ids.BaseURI() }
func (s *Schema) URI() string               { return s.ids.URI() }

// Ref is the fragment reference to this schema within its root document.
func (s *Schema) Ref() string { return "#" + s.Pointer() }

// AbsoluteRef is the fragment reference to the element at keys below this
// schema, relative to the root document.
func (s *Schema) AbsoluteRef(keys ...string) string {
	return "#" + uri.Pointer(s.KeyPath().Append(keys...))
}

// RelativeRef is the fragment reference to other, a descendant of s,
// relative to s.
func (s *Schema) RelativeRef(other *Schema) (string, error) {
	if !other.KeyPath().HasPrefix(s.KeyPath()) {
		return "", fmt.Errorf("jsonskema: %s is not below %s", other.Ref(), s.Ref())
	}
	return "#" + uri.Pointer(other.KeyPath()[len(s.KeyPath()):]), nil
}

// Title returns the title annotation.
func (s *Schema) Title() (string, bool) { return s.stringMember("title") }

// Description returns the description annotation.
func (s *Schema) Description() (string, bool) { return s.stringMember("description") }

// Default returns the default annotation.
func (s *Schema) Default() (any, bool) { return s.member("default") }

// Implementation returns the compiled implementation, or nil before define.
func (s *Schema) Implementation() Implementation { return s.impl }

func (s *Schema) Call(v any) (any, error) {
	if s.impl == nil {
		return nil, schemaErr(s, "", ErrUndefined)
	}
	return s.impl.Call(v)
}

func (s *Schema) Cast(v any) (any, error) {
	if s.impl == nil {
		return nil, schemaErr(s, "", ErrUndefined)
	}
	return s.impl.Cast(v)
}

func (s *Schema) Debug(v any, r *Results) bool {
	if s.impl == nil {
		return false
	}
	return s.impl.Debug(v, r)
}

// Valid reports whether v is accepted.
func (s *Schema) Valid(v any) bool {
	_, err := s.Call(v)
	return err == nil
}

// Validate returns nil when v is accepted. A rejected value is reported as
// Issues collected by a debug evaluation; other failures are returned as
// they are.
func (s *Schema) Validate(v any) error {
	_, err := s.Call(v)
	if err == nil {
		return nil
	}
	if !value.Rejected(err) {
		return err
	}
	r := NewResults()
	s.Debug(v, r)
	if iss := r.Issues(); len(iss) > 0 {
		return iss
	}
	code := CodeInvalid
	if s.spec == false {
		code = CodeSchemaFalse
	}
	return Issues{newIssue("", s.URI(), "", code, err)}
}

// Encode casts v and encodes the canonical value.
func (s *Schema) Encode(v any) ([]byte, error) {
	canonical, err := s.Cast(v)
	if err != nil {
		return nil, err
	}
	return s.root.encoder.Encode(canonical)
}

// Decode decodes data and casts the lexical value.
func (s *Schema) Decode(data []byte) (any, error) {
	lexical, err := s.root.encoder.Decode(data)
	if err != nil {
		return nil, err
	}
	return s.Cast(lexical)
}

func (s *Schema) String() string {
	if u := s.URI(); u != "" {
		return u
	}
	return s.Ref()
}

// trueImpl and falseImpl implement the boolean schemas.
type trueImpl struct{}

func (trueImpl) Call(v any) (any, error)  { return v, nil }
func (trueImpl) Cast(v any) (any, error)  { return v, nil }
func (trueImpl) Debug(any, *Results) bool { return true }

type falseImpl struct{}

func (falseImpl) Call(v any) (any, error)  { return nil, value.Violation(v, "schema is false") }
func (falseImpl) Cast(v any) (any, error)  { return nil, value.Violation(v, "schema is false") }
func (falseImpl) Debug(any, *Results) bool { return false }

func trimFragmentMarker(s string) string { return strings.TrimRight(s, "#") }
