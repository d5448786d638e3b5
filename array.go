package jsonskema

import (
	"fmt"
	"math"
	"strconv"

	"github.com/reoring/jsonskema/enforce"
	"github.com/reoring/jsonskema/formats"
	"github.com/reoring/jsonskema/value"
)

// arrayModel forms the items of an array schema. Items are formed by the
// head schemas positionally, then by the tail schema; without a tail the
// policy decides.
type arrayModel struct {
	schema      *Schema
	pairs       pairs
	head        []*Schema
	tail        *Schema
	tailKeyword string
	contains    *Schema
	policy      enforce.Policy
}

func (a *arrayModel) Policy() enforce.Policy { return a.policy }

func (a *arrayModel) Form(items []any) ([]any, error) {
	if err := a.pairs.call(items); err != nil {
		return nil, err
	}
	if a.contains != nil && !a.anyContained(items) {
		return nil, violation("contains", items, "no item accepted by contains")
	}
	formed := make([]any, 0, len(items))
	for i, item := range items {
		var sub *Schema
		switch {
		case i < len(a.head):
			sub = a.head[i]
		case a.tail != nil:
			sub = a.tail
		case a.policy == enforce.MustAccept:
			formed = append(formed, item)
			continue
		default:
			return nil, violation(a.tailKeyword, items, fmt.Sprintf("unexpected item #%d", i))
		}
		out, err := sub.Call(item)
		if err != nil {
			return nil, itemErr(err, items, "#"+strconv.Itoa(i))
		}
		formed = append(formed, out)
	}
	return formed, nil
}

func (a *arrayModel) anyContained(items []any) bool {
	for _, item := range items {
		if a.contains.Valid(item) {
			return true
		}
	}
	return false
}

func (a *arrayModel) debug(v any, r *Results) bool {
	items, ok := value.AsSlice(v)
	if !ok {
		return false
	}
	valid := a.pairs.debug(a.schema, items, r)
	cont := false
	head := true
	i := 0
	for ; i < len(items) && i < len(a.head); i++ {
		r.PushIndex(i)
		head = a.head[i].Debug(items[i], r) && head
		if a.contains != nil {
			cont = a.contains.Debug(items[i], r) || cont
		}
		r.PopKey()
	}
	if i > 0 {
		r.Assertion(a.schema, "items", head)
	}
	valid = valid && head
	debugTail := false
	tail := true
	for ; i < len(items); i++ {
		r.PushIndex(i)
		if a.tail != nil {
			debugTail = true
			tail = a.tail.Debug(items[i], r) && tail
		} else if a.policy == enforce.MustUnderstand {
			debugTail = true
			tail = false
		}
		if a.contains != nil {
			cont = a.contains.Debug(items[i], r) || cont
		}
		r.PopKey()
	}
	if debugTail {
		r.Assertion(a.schema, a.tailKeyword, tail)
	}
	valid = valid && tail
	if a.contains != nil {
		r.Assertion(a.schema, "contains", cont)
		valid = valid && cont
	}
	return valid
}

// arrayValidator forms arrays into enforce.Sequence containers.
type arrayValidator struct {
	typ   *enforce.SequenceType
	model *arrayModel
}

func (a *arrayValidator) Check(v any) bool {
	_, ok := value.AsSlice(v)
	return ok
}

func (a *arrayValidator) Call(v any) (any, error)      { return a.typ.Call(v) }
func (a *arrayValidator) Cast(v any) (any, error)      { return a.typ.Call(v) }
func (a *arrayValidator) Debug(v any, r *Results) bool { return a.model.debug(v, r) }

func (r *RootSchema) buildArray(s *Schema) (typeValidator, error) {
	ps, err := r.buildPairs(s, formats.Array, arrayBuilders)
	if err != nil {
		return nil, err
	}
	m := &arrayModel{schema: s, pairs: ps, tailKeyword: "additionalItems"}
	items, hasItems := s.member("items")
	switch {
	case !hasItems:
		m.policy = enforce.MustAccept
	case isSchemaValue(items):
		m.tailKeyword = "items"
		m.tail, _ = r.subschema(s, "items")
		m.policy = enforce.MustUnderstand
	default:
		list, _ := value.AsSlice(items)
		for i := range list {
			sub, ok := r.subschema(s, "items", strconv.Itoa(i))
			if !ok {
				return nil, schemaErr(s, "items", fmt.Errorf("%w: %s", ErrSchemaNotFound, s.AbsoluteRef("items", strconv.Itoa(i))))
			}
			m.head = append(m.head, sub)
		}
		additional, ok := s.member("additionalItems")
		switch {
		case !ok || additional == true:
			m.policy = enforce.MustAccept
		case additional == false:
			m.policy = enforce.MustUnderstand
		default:
			m.tail, _ = r.subschema(s, "additionalItems")
			m.policy = enforce.MustUnderstand
		}
	}
	m.contains, _ = r.subschema(s, "contains")
	st := enforce.DeclareSequence(s.URI())
	if err := st.Bind(m, r.support.Traits(s.URI())...); err != nil {
		return nil, schemaErr(s, "", err)
	}
	return &arrayValidator{typ: st, model: m}, nil
}

var arrayBuilders = []builder{
	{"minItems", lengthBuilder(func(n int) [][]int { return [][]int{{n, math.MaxInt}} })},
	{"maxItems", lengthBuilder(func(n int) [][]int { return [][]int{{0, n}} })},
	{"uniqueItems", func(arg any) (func(any) bool, error) {
		if arg != true {
			return nil, nil
		}
		return uniqueItems, nil
	}},
}

func uniqueItems(v any) bool {
	items, ok := value.AsSlice(v)
	if !ok {
		return false
	}
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			if Equal(items[i], items[j]) {
				return false
			}
		}
	}
	return true
}

// isSchemaValue reports whether v can be a schema: an object or a bool.
func isSchemaValue(v any) bool {
	if _, ok := v.(bool); ok {
		return true
	}
	_, ok := value.AsMap(v)
	return ok
}

// itemErr wraps the rejection of a member or item of whole.
func itemErr(err error, whole any, at string) error {
	f, ok := value.FailureOf(err)
	if !ok {
		return err
	}
	return &value.Error{Failure: f, Value: whole, Reason: "bad value at " + at, Err: err}
}
