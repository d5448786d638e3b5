// Package codec encodes and decodes schema documents and instance values.
// Decoded values are canonical: objects are map[string]any, arrays []any,
// integers int64 (or *big.Int when out of range) and reals float64 (or
// *big.Rat with WithDecimal). Before encoding, values that the wire format
// cannot represent are replaced through their outcasts.
package codec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/reoring/jsonskema/value"
)

var (
	ErrDuplicateKey = errors.New("codec: duplicate object key")
	ErrTrailingData = errors.New("codec: trailing data after value")
	ErrNotCanonical = errors.New("codec: value has no wire representation")
)

// Encoder converts between canonical values and a wire format.
type Encoder interface {
	Name() string
	Encode(v any) ([]byte, error)
	Decode(data []byte) (any, error)
}

// DuplicateError reports a repeated member name in a decoded document.
type DuplicateError struct {
	Pointer string
	Key     string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("codec: duplicate key %q in object at %q", e.Key, e.Pointer)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicateKey }

type options struct {
	decimal    bool
	rejectDups bool
	outcasts   []value.Outcast
}

// Option configures a codec.
type Option func(*options)

// WithDecimal decodes non-integer numbers to exact *big.Rat values.
func WithDecimal() Option { return func(o *options) { o.decimal = true } }

// WithSerializer adds outcasts applied before encoding. They take precedence
// over the default number outcasts.
func WithSerializer(outcasts ...value.Outcast) Option {
	return func(o *options) { o.outcasts = append(o.outcasts, outcasts...) }
}

// WithDuplicateKeys makes Decode fail with a *DuplicateError when an object
// repeats a member name. YAML documents always reject duplicates.
func WithDuplicateKeys() Option { return func(o *options) { o.rejectDups = true } }

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	o.outcasts = append(o.outcasts, value.Number().Outcasts()...)
	return o
}

// prepare copies v into plain maps and slices, replacing outcast values.
func (o options) prepare(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	rt := reflect.TypeOf(v)
	for _, oc := range o.outcasts {
		if oc.Type == rt {
			return oc.Convert(v), nil
		}
	}
	switch t := v.(type) {
	case bool, string, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return v, nil
	case []byte:
		return nil, fmt.Errorf("%w: %T", ErrNotCanonical, v)
	case map[string]any:
		return o.prepareMap(t)
	case []any:
		return o.prepareSlice(t)
	}
	if m, ok := value.AsMap(v); ok {
		return o.prepareMap(m)
	}
	if s, ok := value.AsSlice(v); ok {
		return o.prepareSlice(s)
	}
	return v, nil
}

func (o options) prepareMap(m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, item := range m {
		p, err := o.prepare(item)
		if err != nil {
			return nil, err
		}
		out[k] = p
	}
	return out, nil
}

func (o options) prepareSlice(s []any) ([]any, error) {
	out := make([]any, len(s))
	for i, item := range s {
		p, err := o.prepare(item)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
