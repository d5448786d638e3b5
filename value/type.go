// Package value implements the value-type and constraint algebra: a closed
// set of value kinds, each with check, call (canonicalize), cast (lexical to
// canonical) and outcasts, plus composable constraints.
package value

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Kind enumerates the value-type variants.
type Kind uint8

const (
	KindAny Kind = iota
	KindNull
	KindBoolean
	KindInteger
	KindNumber
	KindString
	KindSequence
	KindSequenceOf
	KindMapping
	KindMappingOf
	KindEnum
	KindConstrained
	KindChoice
)

var kindNames = [...]string{
	KindAny:         "any",
	KindNull:        "null",
	KindBoolean:     "boolean",
	KindInteger:     "integer",
	KindNumber:      "number",
	KindString:      "string",
	KindSequence:    "sequence",
	KindSequenceOf:  "sequence_of",
	KindMapping:     "mapping",
	KindMappingOf:   "mapping_of",
	KindEnum:        "enum",
	KindConstrained: "constrained",
	KindChoice:      "choice",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Tri is the three-valued result of a type compatibility check.
type Tri int8

const (
	// Defer leaves the decision to Call.
	Defer Tri = iota
	Yes
	No
)

func tri(b bool) Tri {
	if b {
		return Yes
	}
	return No
}

// Outcast converts a canonical but not commonly serializable value of Type
// into a substitute an encoder can handle.
type Outcast struct {
	Type    reflect.Type
	Convert func(any) any
}

// Type is a value type. The zero value is not usable; build types with the
// constructors in this package.
type Type struct {
	kind        Kind
	inner       *Type
	alts        []*Type
	types       map[string]*Type
	mandatory   []string
	allowed     []any
	constraints []Constraint
	outcasts    []Outcast
}

var (
	anyType     = &Type{kind: KindAny}
	nullType    = &Type{kind: KindNull}
	booleanType = &Type{kind: KindBoolean}
	integerType = &Type{kind: KindInteger}
	numberType  = &Type{kind: KindNumber}
	stringType  = &Type{kind: KindString}
	seqType     = &Type{kind: KindSequence}
	mapType     = &Type{kind: KindMapping}
)

func Any() *Type      { return anyType }
func Null() *Type     { return nullType }
func Boolean() *Type  { return booleanType }
func Integer() *Type  { return integerType }
func Number() *Type   { return numberType }
func String() *Type   { return stringType }
func Sequence() *Type { return seqType }
func Mapping() *Type  { return mapType }

// SequenceOf accepts sequences whose every item conforms to item.
func SequenceOf(item *Type) *Type {
	return &Type{kind: KindSequenceOf, inner: item}
}

// MappingOf accepts mappings that have a value at every mandatory key, may
// have values at optional keys and have no other keys. When a key appears in
// both, the mandatory type is used.
func MappingOf(mandatory, optional map[string]*Type) *Type {
	t := &Type{kind: KindMappingOf, types: make(map[string]*Type, len(mandatory)+len(optional))}
	for k, vt := range optional {
		t.types[k] = vt
	}
	for k, vt := range mandatory {
		t.types[k] = vt
		t.mandatory = append(t.mandatory, k)
	}
	sort.Strings(t.mandatory)
	return t
}

// Enum accepts only the allowed values.
func Enum(allowed []any, outcasts ...Outcast) *Type {
	return &Type{kind: KindEnum, allowed: append([]any(nil), allowed...), outcasts: outcasts}
}

// Constrained accepts values of inner that pass every constraint.
func Constrained(inner *Type, constraints ...Constraint) *Type {
	return &Type{kind: KindConstrained, inner: inner, constraints: constraints}
}

// Choice accepts the values of any alternative. Alternatives are tried in
// order, so earlier ones win where they overlap.
func Choice(alts ...*Type) *Type {
	return &Type{kind: KindChoice, alts: alts}
}

func (t *Type) Kind() Kind { return t.kind }

// Allowed returns the canonical values of an Enum type.
func (t *Type) Allowed() []any { return append([]any(nil), t.allowed...) }

// Check reports whether the kind of v, but not necessarily its value, is
// acceptable.
func (t *Type) Check(v any) Tri {
	switch t.kind {
	case KindAny:
		return Yes
	case KindNull:
		return tri(v == nil)
	case KindBoolean:
		_, ok := v.(bool)
		return tri(ok)
	case KindInteger:
		return tri(IsInteger(v))
	case KindNumber:
		return tri(IsNumber(v))
	case KindString:
		_, ok := v.(string)
		return tri(ok)
	case KindSequence, KindSequenceOf:
		_, ok := AsSlice(v)
		return tri(ok)
	case KindMapping, KindMappingOf:
		_, ok := AsMap(v)
		return tri(ok)
	case KindEnum:
		rt := reflect.TypeOf(v)
		for _, a := range t.allowed {
			if reflect.TypeOf(a) == rt {
				return Yes
			}
		}
		return No
	case KindConstrained:
		return t.inner.Check(v)
	case KindChoice:
		res := No
		for _, alt := range t.alts {
			switch alt.Check(v) {
			case Yes:
				return Yes
			case Defer:
				res = Defer
			}
		}
		return res
	}
	return Defer
}

// Call returns the canonical value for v, or a *Error tagged KindMismatch or
// ValueViolation.
func (t *Type) Call(v any) (any, error) {
	switch t.kind {
	case KindNull:
		if v != nil {
			return nil, Violation(v, "not null")
		}
		return nil, nil
	case KindSequenceOf:
		items, ok := AsSlice(v)
		if !ok {
			return nil, Mismatch(v, "not a sequence")
		}
		for i, item := range items {
			if _, err := t.inner.Call(item); err != nil {
				return nil, wrapItem(err, fmt.Sprintf("#%d", i))
			}
		}
		return v, nil
	case KindMappingOf:
		m, ok := AsMap(v)
		if !ok {
			return nil, Mismatch(v, "not a mapping")
		}
		for _, k := range t.mandatory {
			if _, ok := m[k]; !ok {
				return nil, Violation(v, "missing "+k)
			}
		}
		for k, item := range m {
			vt, ok := t.types[k]
			if !ok {
				return nil, Violation(v, "unexpected "+k)
			}
			if _, err := vt.Call(item); err != nil {
				return nil, wrapItem(err, k)
			}
		}
		return v, nil
	case KindEnum:
		for _, a := range t.allowed {
			if Equal(a, v) {
				return v, nil
			}
		}
		return nil, Violation(v, "not an allowed value")
	case KindConstrained:
		out, err := t.inner.Call(v)
		if err != nil {
			return nil, err
		}
		for _, c := range t.constraints {
			if !c(out) {
				return nil, Violation(v, "constraint not satisfied")
			}
		}
		return out, nil
	case KindChoice:
		for _, alt := range t.alts {
			out, err := alt.Call(v)
			if err == nil {
				return out, nil
			}
			if !Rejected(err) {
				return nil, err
			}
		}
		return nil, Violation(v, "no alternative accepts value")
	}
	if t.Check(v) == Yes {
		return v, nil
	}
	return nil, Mismatch(v, "not "+article(t.kind))
}

// Cast maps a lexical value to its canonical value. Constrained casts through
// its inner type before re-validating; Choice casts through each alternative.
func (t *Type) Cast(v any) (any, error) {
	switch t.kind {
	case KindConstrained:
		out, err := t.inner.Cast(v)
		if err != nil {
			return nil, err
		}
		return t.Call(out)
	case KindChoice:
		for _, alt := range t.alts {
			out, err := alt.Cast(v)
			if err == nil {
				return out, nil
			}
			if !Rejected(err) {
				return nil, err
			}
		}
		return nil, Violation(v, "no alternative accepts value")
	}
	return t.Call(v)
}

// Outcasts returns the conversions that make canonical values of t commonly
// serializable.
func (t *Type) Outcasts() []Outcast {
	switch t.kind {
	case KindNumber:
		return numberOutcasts
	case KindSequenceOf, KindConstrained:
		return t.inner.Outcasts()
	case KindMappingOf:
		keys := make([]string, 0, len(t.types))
		for k := range t.types {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []Outcast
		for _, k := range keys {
			out = append(out, t.types[k].Outcasts()...)
		}
		return out
	case KindChoice:
		var out []Outcast
		for _, alt := range t.alts {
			out = append(out, alt.Outcasts()...)
		}
		return out
	case KindEnum:
		return t.outcasts
	}
	return nil
}

func wrapItem(err error, at string) error {
	if ve, ok := err.(*Error); ok {
		cp := *ve
		if cp.Reason != "" {
			cp.Reason = "bad value at " + at + ": " + cp.Reason
		} else {
			cp.Reason = "bad value at " + at
		}
		return &cp
	}
	return err
}

func article(k Kind) string {
	name := strings.ReplaceAll(k.String(), "_", " ")
	switch name[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + name
	}
	return "a " + name
}
