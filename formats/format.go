// Package formats provides semantic validation for the format and
// contentEncoding keywords. The default set covers the draft-07 formats that
// can be checked without network access, plus uuid and the base64 encoding.
package formats

import (
	"fmt"
	"regexp"
	"sort"
)

// Primitive type names a format may validate.
const (
	Null    = "null"
	Boolean = "boolean"
	Integer = "integer"
	Number  = "number"
	String  = "string"
	Array   = "array"
	Object  = "object"
)

// Format is a named semantic check for values of some primitive types.
type Format interface {
	Name() string
	// Validates reports whether the format applies to values of primitive.
	Validates(primitive string) bool
	// Check reports whether v is semantically valid.
	Check(v any) bool
}

// Encoding is a named check that a string was produced by some encoding.
type Encoding interface {
	Name() string
	Check(v any) bool
}

type format struct {
	name       string
	primitives []string
	check      func(any) bool
}

func (f *format) Name() string     { return f.name }
func (f *format) Check(v any) bool { return f.check(v) }

func (f *format) Validates(primitive string) bool {
	for _, p := range f.primitives {
		if p == primitive {
			return true
		}
	}
	return false
}

// New returns a Format applying check to values of the given primitives.
// Without primitives the format applies to strings.
func New(name string, check func(any) bool, primitives ...string) Format {
	if len(primitives) == 0 {
		primitives = []string{String}
	}
	return &format{name: name, primitives: primitives, check: check}
}

// Strings returns a string Format from a predicate over strings. Non-string
// values fail.
func Strings(name string, check func(string) bool) Format {
	return New(name, func(v any) bool {
		s, ok := v.(string)
		return ok && check(s)
	})
}

// Regexp returns a string Format accepting strings matched by expr. The
// expression is searched, not anchored.
func Regexp(name, expr string) (Format, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("formats: %s: %w", name, err)
	}
	return Strings(name, re.MatchString), nil
}

func mustMatch(expr string) func(string) bool {
	return regexp.MustCompile(expr).MatchString
}

// Disabled returns a Format that validates no primitive. Supplying it in
// place of a default switches that format off.
func Disabled(name string) Format {
	return &format{name: name, check: func(any) bool { return true }}
}

// Defaults returns the default formats keyed by name.
func Defaults() map[string]Format {
	out := make(map[string]Format)
	for _, f := range []Format{
		LocationIndependentID(),
		DateTime(), Date(), Time(),
		Email(), IdnEmail(),
		Hostname(),
		IPv4(), IPv6(),
		URI(), URIReference(),
		JSONPointer(), RelativeJSONPointer(),
		Regex(),
		UUID(),
	} {
		out[f.Name()] = f
	}
	return out
}

// DefaultEncodings returns the default encodings keyed by name.
func DefaultEncodings() map[string]Encoding {
	return map[string]Encoding{Base64().Name(): Base64()}
}

// Names lists the keys of a format or encoding map in sorted order.
func Names[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
