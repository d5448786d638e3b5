package jsonskema

import "github.com/reoring/jsonskema/value"

// call applies s, casting when cast is set.
func call(s *Schema, v any, cast bool) (any, error) {
	if cast {
		return s.Cast(v)
	}
	return s.Call(v)
}

func violation(keyword string, v any, reason string) *value.Error {
	return &value.Error{Failure: value.ValueViolation, Keyword: keyword, Value: v, Reason: reason}
}

type allOf struct {
	schema *Schema
	subs   []*Schema
}

func (a *allOf) apply(v any, cast bool) (any, error) {
	for _, sub := range a.subs {
		var err error
		if v, err = call(sub, v, cast); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (a *allOf) Call(v any) (any, error) { return a.apply(v, false) }
func (a *allOf) Cast(v any) (any, error) { return a.apply(v, true) }

func (a *allOf) Debug(v any, r *Results) bool {
	valid := true
	for _, sub := range a.subs {
		valid = sub.Debug(v, r) && valid
	}
	r.Assertion(a.schema, "allOf", valid)
	return valid
}

type anyOf struct {
	schema *Schema
	subs   []*Schema
}

func (a *anyOf) apply(v any, cast bool) (any, error) {
	for _, sub := range a.subs {
		out, err := call(sub, v, cast)
		if err == nil {
			return out, nil
		}
		if !value.Rejected(err) {
			return nil, err
		}
	}
	return nil, violation("anyOf", v, "no subschema accepts value")
}

func (a *anyOf) Call(v any) (any, error) { return a.apply(v, false) }
func (a *anyOf) Cast(v any) (any, error) { return a.apply(v, true) }

// Debug evaluates every branch.
func (a *anyOf) Debug(v any, r *Results) bool {
	valid := false
	for _, sub := range a.subs {
		valid = sub.Debug(v, r) || valid
	}
	r.Assertion(a.schema, "anyOf", valid)
	return valid
}

type oneOf struct {
	schema *Schema
	subs   []*Schema
}

func (o *oneOf) apply(v any, cast bool) (any, error) {
	var accepted any
	n := 0
	for _, sub := range o.subs {
		out, err := call(sub, v, cast)
		if err != nil {
			if !value.Rejected(err) {
				return nil, err
			}
			continue
		}
		n++
		if n > 1 {
			return nil, violation("oneOf", v, "more than one subschema accepts value")
		}
		accepted = out
	}
	if n == 0 {
		return nil, violation("oneOf", v, "no subschema accepts value")
	}
	return accepted, nil
}

func (o *oneOf) Call(v any) (any, error) { return o.apply(v, false) }
func (o *oneOf) Cast(v any) (any, error) { return o.apply(v, true) }

// Debug evaluates every branch.
func (o *oneOf) Debug(v any, r *Results) bool {
	n := 0
	for _, sub := range o.subs {
		if sub.Debug(v, r) {
			n++
		}
	}
	valid := n == 1
	r.Assertion(o.schema, "oneOf", valid)
	return valid
}

type not struct {
	schema *Schema
	sub    *Schema
}

func (n *not) Call(v any) (any, error) {
	_, err := n.sub.Call(v)
	if err == nil {
		return nil, violation("not", v, "subschema accepts value")
	}
	if !value.Rejected(err) {
		return nil, err
	}
	return v, nil
}

func (n *not) Cast(v any) (any, error) { return n.Call(v) }

func (n *not) Debug(v any, r *Results) bool {
	valid := !n.sub.Debug(v, r)
	r.Assertion(n.schema, "not", valid)
	return valid
}

// conditional applies then to values if accepts and else to the others.
// Either may be nil.
type conditional struct {
	schema     *Schema
	ifSchema   *Schema
	thenSchema *Schema
	elseSchema *Schema
}

func (c *conditional) apply(v any, cast bool) (any, error) {
	out, err := call(c.ifSchema, v, cast)
	if err != nil {
		if !value.Rejected(err) {
			return nil, err
		}
		if c.elseSchema == nil {
			return v, nil
		}
		return call(c.elseSchema, v, cast)
	}
	if c.thenSchema == nil {
		return out, nil
	}
	return call(c.thenSchema, out, cast)
}

func (c *conditional) Call(v any) (any, error) { return c.apply(v, false) }
func (c *conditional) Cast(v any) (any, error) { return c.apply(v, true) }

func (c *conditional) Debug(v any, r *Results) bool {
	valid := c.ifSchema.Debug(v, r)
	r.Assertion(c.schema, "if", valid)
	if valid {
		if c.thenSchema != nil {
			valid = c.thenSchema.Debug(v, r)
			r.Assertion(c.schema, "then", valid)
		}
		return valid
	}
	valid = true
	if c.elseSchema != nil {
		valid = c.elseSchema.Debug(v, r)
		r.Assertion(c.schema, "else", valid)
	}
	return valid
}
