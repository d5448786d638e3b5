package value

import (
	"math"
	"math/big"
	"reflect"

	json "github.com/goccy/go-json"
)

// IsInteger reports whether v is an integer value: any Go integer kind, a
// non-nil *big.Int, or a json.Number without fraction or exponent. Booleans
// and floats are never integers.
func IsInteger(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case *big.Int:
		return n != nil
	case json.Number:
		_, ok := new(big.Int).SetString(string(n), 10)
		return ok
	}
	return false
}

// IsNumber reports whether v is numeric. Booleans are not numbers.
func IsNumber(v any) bool {
	if IsInteger(v) {
		return true
	}
	switch n := v.(type) {
	case float32, float64:
		return true
	case *big.Float:
		return n != nil
	case *big.Rat:
		return n != nil
	case json.Number:
		_, ok := new(big.Rat).SetString(string(n))
		return ok
	}
	return false
}

// ToRat converts a finite numeric value to an exact rational.
func ToRat(v any) (*big.Rat, bool) {
	switch n := v.(type) {
	case int:
		return new(big.Rat).SetInt64(int64(n)), true
	case int8:
		return new(big.Rat).SetInt64(int64(n)), true
	case int16:
		return new(big.Rat).SetInt64(int64(n)), true
	case int32:
		return new(big.Rat).SetInt64(int64(n)), true
	case int64:
		return new(big.Rat).SetInt64(n), true
	case uint:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint8:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Rat).SetUint64(n), true
	case float32:
		return floatRat(float64(n))
	case float64:
		return floatRat(n)
	case *big.Int:
		if n == nil {
			return nil, false
		}
		return new(big.Rat).SetInt(n), true
	case *big.Float:
		if n == nil || n.IsInf() {
			return nil, false
		}
		r, _ := n.Rat(nil)
		return r, r != nil
	case *big.Rat:
		if n == nil {
			return nil, false
		}
		return new(big.Rat).Set(n), true
	case json.Number:
		return new(big.Rat).SetString(string(n))
	}
	return nil, false
}

func floatRat(f float64) (*big.Rat, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return new(big.Rat).SetFloat64(f), true
}

// ToFloat converts a numeric value to float64, possibly losing precision.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case *big.Float:
		if n == nil {
			return 0, false
		}
		f, _ := n.Float64()
		return f, true
	}
	r, ok := ToRat(v)
	if !ok {
		return 0, false
	}
	f, _ := r.Float64()
	return f, true
}

// Compare orders two numeric values. ok is false if either value is not
// numeric or the pair is unordered (NaN).
func Compare(a, b any) (c int, ok bool) {
	if !IsNumber(a) || !IsNumber(b) {
		return 0, false
	}
	ra, oka := ToRat(a)
	rb, okb := ToRat(b)
	if oka && okb {
		return ra.Cmp(rb), true
	}
	fa, _ := ToFloat(a)
	fb, _ := ToFloat(b)
	switch {
	case math.IsNaN(fa) || math.IsNaN(fb):
		return 0, false
	case fa < fb:
		return -1, true
	case fa > fb:
		return 1, true
	}
	return 0, true
}

// AsSlice returns the items of a sequence value. It accepts []any, any other
// slice or array kind, and containers exposing ToSlice.
func AsSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case interface{ ToSlice() []any }:
		return s.ToSlice(), true
	case nil, string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// AsMap returns the members of a mapping value. It accepts map[string]any,
// any other map keyed by strings, and containers exposing ToMap.
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case interface{ ToMap() map[string]any }:
		return m.ToMap(), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// Equal is the JSON-primitive-aware equality used by enum, const and
// uniqueItems. Numbers compare numerically, booleans never equal numbers,
// structured values of the same kind compare member-wise and no other
// cross-kind equality holds.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ab, aBool := a.(bool)
	bb, bBool := b.(bool)
	if aBool || bBool {
		return aBool && bBool && ab == bb
	}
	if IsNumber(a) || IsNumber(b) {
		c, ok := Compare(a, b)
		return ok && c == 0
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	if am, ok := AsMap(a); ok {
		bm, ok := AsMap(b)
		if !ok || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	if as, ok := AsSlice(a); ok {
		bs, ok := AsSlice(b)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}
