package jsonskema

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"

	"github.com/reoring/jsonskema/formats"
	"github.com/reoring/jsonskema/value"
)

// typeOrder is the order in which type validators are tried.
var typeOrder = []string{
	formats.Null, formats.Boolean, formats.Integer, formats.Number,
	formats.String, formats.Array, formats.Object,
}

var semanticKeywords = []string{"format", "contentEncoding", "contentMediaType"}

var numberKeywords = []string{"multipleOf", "maximum", "exclusiveMaximum", "minimum", "exclusiveMinimum"}

// typeKeywords are the keywords that include a type when the schema declares
// no type.
var typeKeywords = map[string][]string{
	formats.Integer: append(numberKeywords, semanticKeywords...),
	formats.Number:  append(numberKeywords, semanticKeywords...),
	formats.String:  append([]string{"maxLength", "minLength", "pattern"}, semanticKeywords...),
	formats.Array: append([]string{
		"items", "additionalItems", "maxItems", "minItems", "uniqueItems", "contains",
	}, semanticKeywords...),
	formats.Object: append([]string{
		"maxProperties", "minProperties", "required", "properties", "patternProperties",
		"additionalProperties", "dependencies", "propertyNames",
	}, semanticKeywords...),
}

var (
	schemaType    = value.Choice(value.Mapping(), value.Boolean())
	schemaArray   = value.Constrained(value.SequenceOf(schemaType), mustConstraint(value.LengthYang("1..max")))
	schemaOrArray = value.Choice(schemaType, value.SequenceOf(schemaType))
	stringArray   = value.SequenceOf(value.String())
	nonNegative   = value.Constrained(value.Integer(), func(v any) bool {
		c, ok := value.Compare(v, 0)
		return ok && c >= 0
	})
	positive = value.Constrained(value.Number(), func(v any) bool {
		c, ok := value.Compare(v, 0)
		return ok && c > 0
	})
)

// keywordModels type the value of every keyword with a model. Members of the
// keywords in memberModels are typed individually.
var keywordModels = map[string]*value.Type{
	"multipleOf":           positive,
	"maximum":              value.Number(),
	"exclusiveMaximum":     value.Number(),
	"minimum":              value.Number(),
	"exclusiveMinimum":     value.Number(),
	"maxLength":            nonNegative,
	"minLength":            nonNegative,
	"pattern":              value.String(),
	"items":                schemaOrArray,
	"additionalItems":      schemaType,
	"maxItems":             nonNegative,
	"minItems":             nonNegative,
	"uniqueItems":          value.Boolean(),
	"contains":             schemaType,
	"maxProperties":        nonNegative,
	"minProperties":        nonNegative,
	"required":             stringArray,
	"properties":           value.Mapping(),
	"patternProperties":    value.Mapping(),
	"additionalProperties": schemaType,
	"dependencies":         value.Mapping(),
	"propertyNames":        schemaType,
	"format":               value.String(),
	"contentEncoding":      value.String(),
	"contentMediaType":     value.String(),
	"enum":                 value.Sequence(),
	"if":                   schemaType,
	"then":                 schemaType,
	"else":                 schemaType,
	"allOf":                schemaArray,
	"anyOf":                schemaArray,
	"oneOf":                schemaArray,
	"not":                  schemaType,
}

var memberModels = map[string]*value.Type{
	"properties":        schemaType,
	"patternProperties": schemaType,
	"dependencies":      value.Choice(schemaType, stringArray),
}

func mustConstraint(c value.Constraint, err error) value.Constraint {
	if err != nil {
		panic(err)
	}
	return c
}

// checkKeywords types every modelled keyword of s, whatever types s
// declares.
func checkKeywords(s *Schema) error {
	obj := s.spec.(map[string]any)
	for _, kw := range sortedKeys(obj) {
		model, ok := keywordModels[kw]
		if !ok {
			continue
		}
		arg := obj[kw]
		if _, err := model.Call(arg); err != nil {
			return schemaErr(s, kw, fmt.Errorf("%w: %v", ErrSchemaKeyword, err))
		}
		if mm, ok := memberModels[kw]; ok {
			members, _ := value.AsMap(arg)
			for _, k := range sortedKeys(members) {
				if _, err := mm.Call(members[k]); err != nil {
					return schemaErr(s, kw, fmt.Errorf("%w: member %q: %v", ErrSchemaKeyword, k, err))
				}
			}
		}
	}
	if p, ok := obj["pattern"].(string); ok {
		if _, err := regexp.Compile(p); err != nil {
			return schemaErr(s, "pattern", fmt.Errorf("%w: %v", ErrSchemaKeyword, err))
		}
	}
	if pp, ok := value.AsMap(obj["patternProperties"]); ok {
		for _, p := range sortedKeys(pp) {
			if _, err := regexp.Compile(p); err != nil {
				return schemaErr(s, "patternProperties", fmt.Errorf("%w: %v", ErrSchemaKeyword, err))
			}
		}
	}
	return nil
}

// schemaTypes returns the declared type names, or nil when type is absent.
func schemaTypes(s *Schema) ([]string, error) {
	raw, ok := s.member("type")
	if !ok {
		return nil, nil
	}
	var names []string
	if name, ok := raw.(string); ok {
		names = []string{name}
	} else {
		items, ok := value.AsSlice(raw)
		if !ok {
			return nil, schemaErr(s, "type", fmt.Errorf("%w: type is %T", ErrSchemaKeyword, raw))
		}
		for _, item := range items {
			name, ok := item.(string)
			if !ok {
				return nil, schemaErr(s, "type", fmt.Errorf("%w: type name %v is not a string", ErrSchemaKeyword, item))
			}
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, schemaErr(s, "type", fmt.Errorf("%w: no types", ErrSchemaKeyword))
	}
	for _, n := range names {
		if !contains(typeOrder, n) {
			return nil, schemaErr(s, "type", fmt.Errorf("%w: unknown type %q", ErrSchemaKeyword, n))
		}
	}
	return names, nil
}

// compile builds the implementation of an object schema.
func (r *RootSchema) compile(s *Schema) (Implementation, error) {
	if err := checkKeywords(s); err != nil {
		return nil, err
	}
	types, err := schemaTypes(s)
	if err != nil {
		return nil, err
	}
	r.warnUnknown(s)
	c := &compiled{schema: s, explicit: len(types) > 0}
	for _, prim := range typeOrder {
		if c.explicit {
			if !contains(types, prim) {
				continue
			}
		} else if !s.hasAny(typeKeywords[prim]) {
			continue
		}
		tv, err := r.buildType(s, prim)
		if err != nil {
			return nil, err
		}
		c.types = append(c.types, tv)
	}
	c.others, err = r.buildOthers(s)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *RootSchema) warnUnknown(s *Schema) {
	if name, ok := s.stringMember("format"); ok {
		if _, found := r.support.Format(name); !found {
			r.log.Warn().Str("uri", s.URI()).Str("format", name).Msg("ignoring unknown format")
		}
	}
	if name, ok := s.stringMember("contentEncoding"); ok {
		if _, found := r.support.Encoding(name); !found {
			r.log.Warn().Str("uri", s.URI()).Str("encoding", name).Msg("ignoring unknown content encoding")
		}
	}
}

func (r *RootSchema) buildType(s *Schema, prim string) (typeValidator, error) {
	switch prim {
	case formats.Null:
		return r.primitive(s, prim, value.Null(), nil)
	case formats.Boolean:
		return r.primitive(s, prim, value.Boolean(), nil)
	case formats.Integer:
		return r.primitive(s, prim, value.Integer(), numberBuilders)
	case formats.Number:
		return r.primitive(s, prim, value.Number(), numberBuilders)
	case formats.String:
		return r.primitive(s, prim, value.String(), stringBuilders)
	case formats.Array:
		return r.buildArray(s)
	}
	return r.buildObject(s)
}

func (r *RootSchema) primitive(s *Schema, prim string, vt *value.Type, builders []builder) (typeValidator, error) {
	ps, err := r.buildPairs(s, prim, builders)
	if err != nil {
		return nil, err
	}
	return &primitiveValidator{schema: s, vt: vt, pairs: ps}, nil
}

var numberBuilders = []builder{
	{"multipleOf", func(arg any) (func(any) bool, error) {
		d, ok := decimalRat(arg)
		if !ok {
			return nil, fmt.Errorf("multipleOf %v is not a number", arg)
		}
		return func(v any) bool {
			n, ok := decimalRat(v)
			if !ok {
				return false
			}
			return new(big.Rat).Quo(n, d).IsInt()
		}, nil
	}},
	{"maximum", compareBuilder(func(c int) bool { return c <= 0 })},
	{"exclusiveMaximum", compareBuilder(func(c int) bool { return c < 0 })},
	{"minimum", compareBuilder(func(c int) bool { return c >= 0 })},
	{"exclusiveMinimum", compareBuilder(func(c int) bool { return c > 0 })},
}

// compareBuilder tests value.Compare(v, bound) with accept.
func compareBuilder(accept func(c int) bool) func(any) (func(any) bool, error) {
	return func(bound any) (func(any) bool, error) {
		return func(v any) bool {
			c, ok := value.Compare(v, bound)
			return ok && accept(c)
		}, nil
	}
}

// decimalRat is value.ToRat except that floats convert through their
// shortest decimal representation, so 0.1 is exactly 1/10.
func decimalRat(v any) (*big.Rat, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	default:
		return value.ToRat(v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
}

var stringBuilders = []builder{
	{"maxLength", lengthBuilder(func(n int) [][]int { return [][]int{{0, n}} })},
	{"minLength", lengthBuilder(func(n int) [][]int { return [][]int{{n, math.MaxInt}} })},
	{"pattern", func(arg any) (func(any) bool, error) {
		c, err := value.Pattern(arg.(string))
		if err != nil {
			return nil, err
		}
		return c, nil
	}},
}

// lengthBuilder builds a value.Length test from a non-negative count.
func lengthBuilder(rules func(n int) [][]int) func(any) (func(any) bool, error) {
	return func(arg any) (func(any) bool, error) {
		n, err := count(arg)
		if err != nil {
			return nil, err
		}
		c, err := value.Length(rules(n))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// count converts a non-negative integer keyword value to an int, clamping
// values beyond the int range.
func count(arg any) (int, error) {
	r, ok := value.ToRat(arg)
	if !ok || !r.IsInt() || r.Sign() < 0 {
		return 0, fmt.Errorf("%v is not a non-negative integer", arg)
	}
	if !r.Num().IsInt64() || r.Num().Int64() > math.MaxInt {
		return math.MaxInt, nil
	}
	return int(r.Num().Int64()), nil
}

// buildOthers builds the type-independent validators in keyword order.
func (r *RootSchema) buildOthers(s *Schema) ([]Implementation, error) {
	var out []Implementation
	if arg, ok := s.member("enum"); ok {
		allowed, _ := value.AsSlice(arg)
		out = append(out, &pairsValidator{schema: s, pairs: pairs{{keyword: "enum", test: func(v any) bool {
			for _, a := range allowed {
				if Equal(v, a) {
					return true
				}
			}
			return false
		}}}})
	}
	if arg, ok := s.member("const"); ok {
		out = append(out, &pairsValidator{schema: s, pairs: pairs{{keyword: "const", test: func(v any) bool {
			return Equal(arg, v)
		}}}})
	}
	if ifSchema, ok := r.subschema(s, "if"); ok {
		cond := &conditional{schema: s, ifSchema: ifSchema}
		cond.thenSchema, _ = r.subschema(s, "then")
		cond.elseSchema, _ = r.subschema(s, "else")
		out = append(out, cond)
	}
	for _, kw := range []string{"allOf", "anyOf", "oneOf"} {
		arg, ok := s.member(kw)
		if !ok {
			continue
		}
		items, _ := value.AsSlice(arg)
		subs := make([]*Schema, len(items))
		for i := range items {
			sub, ok := r.subschema(s, kw, strconv.Itoa(i))
			if !ok {
				return nil, schemaErr(s, kw, fmt.Errorf("%w: %s", ErrSchemaNotFound, s.AbsoluteRef(kw, strconv.Itoa(i))))
			}
			subs[i] = sub
		}
		switch kw {
		case "allOf":
			out = append(out, &allOf{schema: s, subs: subs})
		case "anyOf":
			out = append(out, &anyOf{schema: s, subs: subs})
		case "oneOf":
			out = append(out, &oneOf{schema: s, subs: subs})
		}
	}
	if sub, ok := r.subschema(s, "not"); ok {
		out = append(out, &not{schema: s, sub: sub})
	}
	return out, nil
}

func (s *Schema) hasAny(keywords []string) bool {
	for _, kw := range keywords {
		if _, ok := s.member(kw); ok {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
