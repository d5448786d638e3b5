package value

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Constraint is a boolean predicate over a single value.
type Constraint func(v any) bool

// And passes values passing both a and b.
func And(a, b Constraint) Constraint {
	return func(v any) bool { return a(v) && b(v) }
}

// Or passes values passing a or b.
func Or(a, b Constraint) Constraint {
	return func(v any) bool { return a(v) || b(v) }
}

var (
	ErrNoAcceptRules = errors.New("value: no accept rules")
	ErrAcceptRule    = errors.New("value: accept rule needs one or two numeric bounds")
	ErrRangeSyntax   = errors.New("value: malformed range")
)

// Length passes values whose length is accepted by one of the rules. A rule
// with one bound is an exact length; with two it is an inclusive range.
// Values without a length are a non-match.
func Length(rules [][]int) (Constraint, error) {
	anyRules := make([][]any, len(rules))
	for i, r := range rules {
		anyRules[i] = make([]any, len(r))
		for j, b := range r {
			anyRules[i][j] = b
		}
	}
	test, err := buildTest(anyRules)
	if err != nil {
		return nil, err
	}
	return func(v any) bool {
		n, ok := lengthOf(v)
		return ok && test(n)
	}, nil
}

// Range passes numeric values accepted by one of the rules. Bounds may be
// any numeric value. Non-numeric values are a non-match.
func Range(rules [][]any) (Constraint, error) {
	return buildTest(rules)
}

// Pattern passes strings containing a match for expr anywhere; the
// expression is not implicitly anchored.
func Pattern(expr string) (Constraint, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("value: pattern %q: %w", expr, err)
	}
	return func(v any) bool {
		s, ok := v.(string)
		return ok && re.MatchString(s)
	}, nil
}

// LengthYang builds a Length constraint from a range grammar string where
// min is zero and max is the largest int.
func LengthYang(spec string) (Constraint, error) {
	rules, err := ParseYangRange(spec, 0, math.MaxInt)
	if err != nil {
		return nil, err
	}
	return Length(rules)
}

// RangeYang builds a Range constraint from a range grammar string where min
// and max are the smallest and largest int.
func RangeYang(spec string) (Constraint, error) {
	rules, err := ParseYangRange(spec, math.MinInt, math.MaxInt)
	if err != nil {
		return nil, err
	}
	anyRules := make([][]any, len(rules))
	for i, r := range rules {
		anyRules[i] = make([]any, len(r))
		for j, b := range r {
			anyRules[i][j] = b
		}
	}
	return Range(anyRules)
}

// ParseYangRange parses `bound ('..' bound)? ('|' ...)*`. A bound is an
// integer literal in any base Go accepts, or min or max, which take the
// values of the given sentinels.
func ParseYangRange(spec string, min, max int) ([][]int, error) {
	parts := strings.Split(spec, "|")
	out := make([][]int, 0, len(parts))
	for _, part := range parts {
		bounds := strings.SplitN(strings.TrimSpace(part), "..", 2)
		rule := make([]int, 0, len(bounds))
		for _, b := range bounds {
			n, err := parseBound(strings.TrimSpace(b), min, max)
			if err != nil {
				return nil, err
			}
			rule = append(rule, n)
		}
		out = append(out, rule)
	}
	return out, nil
}

func parseBound(s string, min, max int) (int, error) {
	switch s {
	case "min":
		return min, nil
	case "max":
		return max, nil
	}
	n, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("%w: bound %q", ErrRangeSyntax, s)
	}
	return int(n), nil
}

func buildTest(rules [][]any) (Constraint, error) {
	var test Constraint
	for _, r := range rules {
		var lo, hi any
		switch len(r) {
		case 1:
			lo, hi = r[0], r[0]
		case 2:
			lo, hi = r[0], r[1]
		default:
			return nil, fmt.Errorf("%w: %v", ErrAcceptRule, r)
		}
		if !IsNumber(lo) || !IsNumber(hi) {
			return nil, fmt.Errorf("%w: %v", ErrAcceptRule, r)
		}
		one := And(ge(lo), le(hi))
		if test == nil {
			test = one
		} else {
			test = Or(test, one)
		}
	}
	if test == nil {
		return nil, ErrNoAcceptRules
	}
	return test, nil
}

func ge(ref any) Constraint {
	return func(v any) bool {
		c, ok := Compare(v, ref)
		return ok && c >= 0
	}
}

func le(ref any) Constraint {
	return func(v any) bool {
		c, ok := Compare(v, ref)
		return ok && c <= 0
	}
}

func lengthOf(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	if items, ok := AsSlice(v); ok {
		return len(items), true
	}
	if m, ok := AsMap(v); ok {
		return len(m), true
	}
	return 0, false
}
