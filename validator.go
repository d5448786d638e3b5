package jsonskema

import (
	"fmt"

	"github.com/reoring/jsonskema/value"
)

// pair is a keyword assertion.
type pair struct {
	keyword string
	test    func(v any) bool
}

// pairs run in order; Call stops at the first failure while Debug records
// every outcome.
type pairs []pair

func (ps pairs) call(v any) error {
	for _, p := range ps {
		if !p.test(v) {
			return &value.Error{Failure: value.ValueViolation, Keyword: p.keyword, Value: v, Reason: p.keyword + " not satisfied"}
		}
	}
	return nil
}

func (ps pairs) debug(s *Schema, v any, r *Results) bool {
	valid := true
	for _, p := range ps {
		ok := p.test(v)
		r.Assertion(s, p.keyword, ok)
		valid = ok && valid
	}
	return valid
}

// builder makes the test for a keyword from its value. A nil test means the
// keyword asserts nothing.
type builder struct {
	keyword string
	build   func(arg any) (func(v any) bool, error)
}

// buildPairs builds the pairs for the keywords of s that have a builder,
// followed by format and contentEncoding when primitive is set and Support
// provides them.
func (r *RootSchema) buildPairs(s *Schema, primitive string, builders []builder) (pairs, error) {
	var out pairs
	for _, b := range builders {
		arg, ok := s.member(b.keyword)
		if !ok {
			continue
		}
		test, err := b.build(arg)
		if err != nil {
			return nil, schemaErr(s, b.keyword, fmt.Errorf("%w: %v", ErrSchemaKeyword, err))
		}
		if test != nil {
			out = append(out, pair{keyword: b.keyword, test: test})
		}
	}
	if primitive == "" {
		return out, nil
	}
	if name, ok := s.stringMember("format"); ok {
		if f, found := r.support.Format(name); found && f.Validates(primitive) {
			out = append(out, pair{keyword: "format", test: f.Check})
		}
	}
	if name, ok := s.stringMember("contentEncoding"); ok && primitive == "string" {
		if e, found := r.support.Encoding(name); found {
			out = append(out, pair{keyword: "contentEncoding", test: e.Check})
		}
	}
	return out, nil
}

// typeValidator applies to values of one primitive type.
type typeValidator interface {
	Implementation
	Check(v any) bool
}

// compiled is the implementation of an object schema: at most one type
// validator, the first whose check passes, then every other validator. With
// explicit types a value no type validator checks is a kind mismatch.
type compiled struct {
	schema   *Schema
	explicit bool
	types    []typeValidator
	others   []Implementation
}

func (c *compiled) apply(v any, cast bool) (any, error) {
	matched := false
	for _, t := range c.types {
		if !t.Check(v) {
			continue
		}
		var err error
		if cast {
			v, err = t.Cast(v)
		} else {
			v, err = t.Call(v)
		}
		if err != nil {
			return nil, err
		}
		matched = true
		break
	}
	if c.explicit && !matched {
		return nil, &value.Error{Failure: value.KindMismatch, Keyword: "type", Value: v, Reason: "type not allowed"}
	}
	for _, o := range c.others {
		var err error
		if cast {
			v, err = o.Cast(v)
		} else {
			v, err = o.Call(v)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (c *compiled) Call(v any) (any, error) { return c.apply(v, false) }
func (c *compiled) Cast(v any) (any, error) { return c.apply(v, true) }

func (c *compiled) Debug(v any, r *Results) bool {
	valid := true
	matched := false
	for _, t := range c.types {
		if t.Check(v) {
			matched = true
			valid = t.Debug(v, r) && valid
			break
		}
	}
	if c.explicit {
		valid = matched && valid
		r.Assertion(c.schema, "type", matched)
	}
	for _, o := range c.others {
		valid = o.Debug(v, r) && valid
	}
	return valid
}

// pairsValidator asserts its pairs and passes the value through.
type pairsValidator struct {
	schema *Schema
	pairs  pairs
}

func (p *pairsValidator) Call(v any) (any, error) {
	if err := p.pairs.call(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (p *pairsValidator) Cast(v any) (any, error)      { return p.Call(v) }
func (p *pairsValidator) Debug(v any, r *Results) bool { return p.pairs.debug(p.schema, v, r) }

// primitiveValidator checks a scalar type then its pairs.
type primitiveValidator struct {
	schema *Schema
	vt     *value.Type
	pairs  pairs
}

func (p *primitiveValidator) Check(v any) bool { return p.vt.Check(v) == value.Yes }

func (p *primitiveValidator) Call(v any) (any, error) {
	out, err := p.vt.Call(v)
	if err != nil {
		return nil, err
	}
	if err := p.pairs.call(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *primitiveValidator) Cast(v any) (any, error) {
	out, err := p.vt.Cast(v)
	if err != nil {
		return nil, err
	}
	return p.Call(out)
}

func (p *primitiveValidator) Debug(v any, r *Results) bool { return p.pairs.debug(p.schema, v, r) }
