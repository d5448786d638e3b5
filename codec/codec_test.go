package codec_test

import (
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/jsonskema/codec"
	"github.com/reoring/jsonskema/value"
)

func TestJSONDecodeCanonical(t *testing.T) {
	v, err := codec.JSON().Decode([]byte(`{"i": 3, "f": 2.5, "big": 123456789012345678901234567890, "s": "x", "a": [true, null]}`))
	if err != nil {
		t.Fatal(err)
	}
	m := v.(map[string]any)
	if m["i"] != int64(3) || m["f"] != 2.5 || m["s"] != "x" {
		t.Fatalf("scalars = %#v", m)
	}
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	if got, ok := m["big"].(*big.Int); !ok || got.Cmp(want) != 0 {
		t.Fatalf("big = %#v", m["big"])
	}
	if diff := cmp.Diff([]any{true, nil}, m["a"]); diff != "" {
		t.Fatalf("array (-want +got):\n%s", diff)
	}
}

func TestJSONDecimal(t *testing.T) {
	v, err := codec.JSON(codec.WithDecimal()).Decode([]byte(`0.1`))
	if err != nil {
		t.Fatal(err)
	}
	r, ok := v.(*big.Rat)
	if !ok || r.Cmp(big.NewRat(1, 10)) != 0 {
		t.Fatalf("decimal = %#v", v)
	}
	out, err := codec.JSON().Encode(r)
	if err != nil || string(out) != "0.1" {
		t.Fatalf("encode rat = %s, %v", out, err)
	}
}

func TestJSONDuplicateKeys(t *testing.T) {
	doc := []byte(`{"a": {"b": 1, "b": 2}}`)
	if _, err := codec.JSON().Decode(doc); err != nil {
		t.Fatalf("duplicates tolerated by default: %v", err)
	}
	_, err := codec.JSON(codec.WithDuplicateKeys()).Decode(doc)
	var de *codec.DuplicateError
	if !errors.As(err, &de) || de.Pointer != "/a" || de.Key != "b" || !errors.Is(err, codec.ErrDuplicateKey) {
		t.Fatalf("duplicate error = %v", err)
	}
}

func TestJSONTrailingData(t *testing.T) {
	if _, err := codec.JSON().Decode([]byte(`{} {}`)); !errors.Is(err, codec.ErrTrailingData) {
		t.Fatalf("trailing data: %v", err)
	}
}

type celsius float64

func TestSerializer(t *testing.T) {
	c := codec.JSON(codec.WithSerializer(value.Outcast{
		Type:    reflect.TypeOf(celsius(0)),
		Convert: func(v any) any { return map[string]any{"celsius": float64(v.(celsius))} },
	}))
	out, err := c.Encode(map[string]any{"t": celsius(21.5)})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"t":{"celsius":21.5}}` {
		t.Fatalf("encoded = %s", out)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	y := codec.YAML()
	v, err := y.Decode([]byte("type: object\nrequired: [a]\nproperties:\n  a: {type: integer, minimum: 1}\n  1: {}\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"type":     "object",
		"required": []any{"a"},
		"properties": map[string]any{
			"a": map[string]any{"type": "integer", "minimum": int64(1)},
			"1": map[string]any{},
		},
	}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("decoded (-want +got):\n%s", diff)
	}
	out, err := y.Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	again, err := y.Decode(out)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(v, again); diff != "" {
		t.Fatalf("round trip (-first +second):\n%s", diff)
	}
}

func TestYAMLRejectsDuplicates(t *testing.T) {
	if _, err := codec.YAML().Decode([]byte("a: 1\na: 2\n")); err == nil {
		t.Fatalf("duplicate yaml key accepted")
	}
}
