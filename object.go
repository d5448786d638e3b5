package jsonskema

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/reoring/jsonskema/enforce"
	"github.com/reoring/jsonskema/formats"
	"github.com/reoring/jsonskema/value"
)

type patternSchema struct {
	re     *regexp.Regexp
	schema *Schema
}

// objectModel forms the members of an object schema and screens every
// mutation of the enforce.Mapping containers it backs.
type objectModel struct {
	schema     *Schema
	pairs      pairs
	required   map[string]bool
	minProps   int
	maxProps   int // negative is unbounded
	properties map[string]*Schema
	patterns   []patternSchema
	additional *Schema
	names      *Schema
	depSchemas map[string]*Schema
	depKeys    map[string][]string
	policy     enforce.Policy
}

func (o *objectModel) Policy() enforce.Policy { return o.policy }

func (o *objectModel) geMin(m map[string]any, dec int) bool { return o.minProps <= len(m)-dec }

func (o *objectModel) leMax(m map[string]any, inc int) bool {
	return o.maxProps < 0 || len(m)+inc <= o.maxProps
}

func (o *objectModel) hasDependencies() bool { return len(o.depSchemas) > 0 || len(o.depKeys) > 0 }

// formPair forms the value at key through properties, every matching
// pattern and, when neither applies, additionalProperties. A key rejected by
// propertyNames is a *enforce.KeyError.
func (o *objectModel) formPair(key string, v any) (any, error) {
	applied := false
	if sub, ok := o.properties[key]; ok {
		out, err := sub.Call(v)
		if err != nil {
			return nil, err
		}
		v, applied = out, true
	}
	for _, p := range o.patterns {
		if !p.re.MatchString(key) {
			continue
		}
		out, err := p.schema.Call(v)
		if err != nil {
			return nil, err
		}
		v, applied = out, true
	}
	if !applied && o.additional != nil {
		out, err := o.additional.Call(v)
		if err != nil {
			return nil, err
		}
		v = out
	}
	if o.names != nil {
		if _, err := o.names.Call(key); err != nil {
			return nil, &enforce.KeyError{Key: key, Reason: "rejected by propertyNames"}
		}
	}
	return v, nil
}

func (o *objectModel) Form(raw map[string]any) (map[string]any, error) {
	if err := o.pairs.call(raw); err != nil {
		return nil, err
	}
	formed := make(map[string]any, len(raw))
	for _, k := range sortedKeys(raw) {
		out, err := o.formPair(k, raw[k])
		if err != nil {
			if errors.Is(err, enforce.ErrKey) {
				return nil, &value.Error{Failure: value.ValueViolation, Keyword: "propertyNames", Value: raw, Reason: fmt.Sprintf("key %q not allowed", k), Err: err}
			}
			return nil, itemErr(err, raw, fmt.Sprintf("key %q", k))
		}
		formed[k] = out
	}
	for _, k := range sortedKeys(formed) {
		if dep, ok := o.depSchemas[k]; ok {
			if _, err := dep.Call(formed); err != nil {
				if !value.Rejected(err) {
					return nil, err
				}
				return nil, &value.Error{Failure: value.ValueViolation, Keyword: "dependencies", Value: raw, Reason: fmt.Sprintf("dependency of %q not satisfied", k), Err: err}
			}
		}
	}
	for _, k := range sortedKeys(formed) {
		for _, need := range o.depKeys[k] {
			if _, ok := formed[need]; !ok {
				return nil, violation("dependencies", raw, fmt.Sprintf("%q requires %q", k, need))
			}
		}
	}
	return formed, nil
}

// invalid reports whether the prospective contents are rejected.
func (o *objectModel) invalid(m map[string]any, other map[string]any, remove string) bool {
	next := make(map[string]any, len(m)+len(other))
	for k, v := range m {
		next[k] = v
	}
	for k, v := range other {
		next[k] = v
	}
	if remove != "" {
		delete(next, remove)
	}
	_, err := o.Form(next)
	return err != nil
}

// Default prefers the properties default, then the default of the single
// matching pattern, then the additionalProperties default.
func (o *objectModel) Default(key string) (any, error) {
	if sub, ok := o.properties[key]; ok {
		if d, ok := sub.Default(); ok {
			return d, nil
		}
	}
	var defaults []any
	for _, p := range o.patterns {
		if !p.re.MatchString(key) {
			continue
		}
		if d, ok := p.schema.Default(); ok {
			defaults = append(defaults, d)
			if len(defaults) > 1 {
				return nil, &enforce.KeyError{Key: key, Reason: "ambiguous default"}
			}
		}
	}
	if len(defaults) == 1 {
		return defaults[0], nil
	}
	if o.additional != nil {
		if d, ok := o.additional.Default(); ok {
			return d, nil
		}
	}
	return nil, &enforce.KeyError{Key: key, Reason: "no default"}
}

func (o *objectModel) ScreenSet(m map[string]any, key string, v any) (any, error) {
	out, err := o.formPair(key, v)
	if err != nil {
		return nil, err
	}
	if !o.leMax(m, 1) {
		return nil, &enforce.KeyError{Key: key, Reason: "maxProperties reached"}
	}
	if o.hasDependencies() && o.invalid(m, map[string]any{key: out}, "") {
		return nil, &enforce.KeyError{Key: key, Reason: "dependencies not satisfied"}
	}
	return out, nil
}

func (o *objectModel) ScreenModify(m map[string]any, key string, v any) (any, error) {
	out, err := o.formPair(key, v)
	if err != nil {
		return nil, err
	}
	if o.hasDependencies() && o.invalid(m, map[string]any{key: out}, "") {
		return nil, &enforce.KeyError{Key: key, Reason: "dependencies not satisfied"}
	}
	return out, nil
}

func (o *objectModel) ScreenDelete(m map[string]any, key string) error {
	if _, ok := m[key]; !ok {
		return nil
	}
	if o.required[key] {
		return &enforce.KeyError{Key: key, Reason: "required"}
	}
	if !o.geMin(m, 1) {
		return &enforce.KeyError{Key: key, Reason: "minProperties reached"}
	}
	if o.hasDependencies() && o.invalid(m, nil, key) {
		return &enforce.KeyError{Key: key, Reason: "dependencies not satisfied"}
	}
	return nil
}

func (o *objectModel) ScreenUpdate(m map[string]any, other map[string]any) (map[string]any, error) {
	formed := make(map[string]any, len(other))
	added := 0
	for _, k := range sortedKeys(other) {
		out, err := o.formPair(k, other[k])
		if err != nil {
			return nil, &value.Error{Failure: value.ValueViolation, Value: other, Reason: fmt.Sprintf("update rejected at key %q", k), Err: err}
		}
		formed[k] = out
		if _, ok := m[k]; !ok {
			added++
		}
	}
	if !o.leMax(m, added) {
		return nil, violation("maxProperties", other, "update exceeds maxProperties")
	}
	if o.hasDependencies() && o.invalid(m, formed, "") {
		return nil, violation("dependencies", other, "update breaks dependencies")
	}
	return formed, nil
}

// FreeKeys are the optional keys, or none when removing them all would
// breach minProperties or the object has dependencies.
func (o *objectModel) FreeKeys(m map[string]any) []string {
	var free []string
	for k := range m {
		if !o.required[k] {
			free = append(free, k)
		}
	}
	if !o.geMin(m, len(free)) || o.hasDependencies() {
		return nil
	}
	sort.Strings(free)
	return free
}

func (o *objectModel) debug(v any, r *Results) bool {
	m, ok := value.AsMap(v)
	if !ok {
		return false
	}
	valid := o.pairs.debug(o.schema, m, r)
	kValid := map[string]bool{}
	note := func(keyword string, ok bool) {
		prev, seen := kValid[keyword]
		kValid[keyword] = ok && (!seen || prev)
	}
	for _, k := range sortedKeys(m) {
		r.PushKey(k)
		applied := false
		if sub, ok := o.properties[k]; ok {
			note("properties", sub.Debug(m[k], r))
			applied = true
		}
		for _, p := range o.patterns {
			if p.re.MatchString(k) {
				note("patternProperties", p.schema.Debug(m[k], r))
				applied = true
			}
		}
		if !applied && o.additional != nil {
			note("additionalProperties", o.additional.Debug(m[k], r))
		}
		if o.names != nil {
			note("propertyNames", o.names.Debug(k, r))
		}
		r.PopKey()
		if dep, ok := o.depSchemas[k]; ok {
			note("dependencies", dep.Debug(m, r))
		}
		if need, ok := o.depKeys[k]; ok {
			present := true
			for _, n := range need {
				if _, ok := m[n]; !ok {
					present = false
				}
			}
			note("dependencies", present)
		}
	}
	for _, kw := range sortedKeys(kValid) {
		r.Assertion(o.schema, kw, kValid[kw])
		valid = valid && kValid[kw]
	}
	return valid
}

// objectValidator forms objects into enforce.Mapping containers.
type objectValidator struct {
	typ   *enforce.MappingType
	model *objectModel
}

func (o *objectValidator) Check(v any) bool {
	_, ok := value.AsMap(v)
	return ok
}

func (o *objectValidator) Call(v any) (any, error)      { return o.typ.Call(v) }
func (o *objectValidator) Cast(v any) (any, error)      { return o.typ.Call(v) }
func (o *objectValidator) Debug(v any, r *Results) bool { return o.model.debug(v, r) }

func (r *RootSchema) buildObject(s *Schema) (typeValidator, error) {
	m := &objectModel{
		schema:     s,
		required:   map[string]bool{},
		maxProps:   -1,
		properties: map[string]*Schema{},
		depSchemas: map[string]*Schema{},
		depKeys:    map[string][]string{},
		policy:     enforce.MustUnderstand,
	}
	var err error
	if m.pairs, err = r.buildPairs(s, formats.Object, objectBuilders); err != nil {
		return nil, err
	}
	if arg, ok := s.member("required"); ok {
		names, _ := value.AsSlice(arg)
		for _, n := range names {
			m.required[n.(string)] = true
		}
	}
	if arg, ok := s.member("minProperties"); ok {
		if m.minProps, err = count(arg); err != nil {
			return nil, schemaErr(s, "minProperties", fmt.Errorf("%w: %v", ErrSchemaKeyword, err))
		}
	}
	if arg, ok := s.member("maxProperties"); ok {
		if m.maxProps, err = count(arg); err != nil {
			return nil, schemaErr(s, "maxProperties", fmt.Errorf("%w: %v", ErrSchemaKeyword, err))
		}
	}
	props, _ := value.AsMap(s.members("properties"))
	for _, k := range sortedKeys(props) {
		if sub, ok := r.subschema(s, "properties", k); ok {
			m.properties[k] = sub
		}
	}
	patterns, _ := value.AsMap(s.members("patternProperties"))
	for _, k := range sortedKeys(patterns) {
		sub, ok := r.subschema(s, "patternProperties", k)
		if !ok {
			continue
		}
		re, err := regexp.Compile(k)
		if err != nil {
			return nil, schemaErr(s, "patternProperties", fmt.Errorf("%w: %v", ErrSchemaKeyword, err))
		}
		m.patterns = append(m.patterns, patternSchema{re: re, schema: sub})
	}
	m.additional, _ = r.subschema(s, "additionalProperties")
	m.names, _ = r.subschema(s, "propertyNames")
	deps, _ := value.AsMap(s.members("dependencies"))
	for _, k := range sortedKeys(deps) {
		if isSchemaValue(deps[k]) {
			if sub, ok := r.subschema(s, "dependencies", k); ok {
				m.depSchemas[k] = sub
			}
			continue
		}
		names, _ := value.AsSlice(deps[k])
		for _, n := range names {
			m.depKeys[k] = append(m.depKeys[k], n.(string))
		}
	}
	if additional, ok := s.member("additionalProperties"); !ok || additional == true {
		m.policy = enforce.MustAccept
	}
	mt := enforce.DeclareMapping(s.URI())
	if err := mt.Bind(m, r.support.Traits(s.URI())...); err != nil {
		return nil, schemaErr(s, "", err)
	}
	return &objectValidator{typ: mt, model: m}, nil
}

var objectBuilders = []builder{
	{"minProperties", lengthBuilder(func(n int) [][]int { return [][]int{{n, math.MaxInt}} })},
	{"maxProperties", lengthBuilder(func(n int) [][]int { return [][]int{{0, n}} })},
	{"required", func(arg any) (func(any) bool, error) {
		names, _ := value.AsSlice(arg)
		if len(names) == 0 {
			return nil, nil
		}
		return func(v any) bool {
			m, ok := value.AsMap(v)
			if !ok {
				return false
			}
			for _, n := range names {
				if _, ok := m[n.(string)]; !ok {
					return false
				}
			}
			return true
		}, nil
	}},
}

// members returns the value of keyword, or nil.
func (s *Schema) members(keyword string) any {
	v, _ := s.member(keyword)
	return v
}
