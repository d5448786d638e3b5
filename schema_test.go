package jsonskema_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	jsonskema "github.com/reoring/jsonskema"
	"github.com/reoring/jsonskema/enforce"
	"github.com/reoring/jsonskema/value"
)

const base = "file:///s.json"

func mustLoad(t *testing.T, doc string, opts ...jsonskema.SupportOption) *jsonskema.RootSchema {
	t.Helper()
	r, err := jsonskema.LoadJSON(context.Background(), []byte(doc), base, jsonskema.NewSupport(opts...))
	if err != nil {
		t.Fatalf("load %s: %v", doc, err)
	}
	return r
}

func TestOneOfExactlyOne(t *testing.T) {
	r := mustLoad(t, `{"oneOf": [{"minimum": 10, "maximum": 30}, {"minimum": 20, "maximum": 40}]}`)
	cases := []struct {
		in   int
		want bool
	}{
		{25, false},
		{11, true},
		{5, false},
		{35, true},
	}
	for _, tc := range cases {
		_, err := r.Call(tc.in)
		if (err == nil) != tc.want {
			t.Fatalf("oneOf(%d): err=%v, want valid=%v", tc.in, err, tc.want)
		}
		if err != nil && !errors.Is(err, value.ErrValueViolation) {
			t.Fatalf("oneOf(%d): expected a value violation, got %v", tc.in, err)
		}
	}
}

func TestImplicitTypes(t *testing.T) {
	r := mustLoad(t, `{"minLength": 2, "minimum": 3}`)
	for _, v := range []any{"ab", 3, 4.5, true, nil, []any{}} {
		if !r.Valid(v) {
			t.Fatalf("expected %v to be valid", v)
		}
	}
	for _, v := range []any{"a", 2, 1.5} {
		if r.Valid(v) {
			t.Fatalf("expected %v to be invalid", v)
		}
	}
}

func TestExplicitTypeMismatch(t *testing.T) {
	r := mustLoad(t, `{"type": ["string", "null"]}`)
	if !r.Valid("x") || !r.Valid(nil) {
		t.Fatalf("declared types rejected")
	}
	_, err := r.Call(1)
	if !errors.Is(err, value.ErrKindMismatch) {
		t.Fatalf("expected kind mismatch, got %v", err)
	}
}

func TestMultipleOfIsExact(t *testing.T) {
	r := mustLoad(t, `{"multipleOf": 0.1}`)
	if !r.Valid(0.3) {
		t.Fatalf("0.3 is a multiple of 0.1")
	}
	if r.Valid(0.35) {
		t.Fatalf("0.35 is not a multiple of 0.1")
	}
}

func TestEnumConstAndEquality(t *testing.T) {
	r := mustLoad(t, `{"enum": [1, "a", [1, 2], {"k": null}]}`)
	for _, v := range []any{1, 1.0, "a", []any{1, 2}, map[string]any{"k": nil}} {
		if !r.Valid(v) {
			t.Fatalf("expected %v in enum", v)
		}
	}
	for _, v := range []any{true, "b", []any{2, 1}, map[string]any{}} {
		if r.Valid(v) {
			t.Fatalf("expected %v not in enum", v)
		}
	}
	c := mustLoad(t, `{"const": false}`)
	if c.Valid(0) || !c.Valid(false) {
		t.Fatalf("const false must only accept false")
	}
}

func TestConditional(t *testing.T) {
	r := mustLoad(t, `{"if": {"type": "integer"}, "then": {"minimum": 0}, "else": {"type": "string"}}`)
	cases := map[any]bool{1: true, -1: false, "s": true, 1.5: false}
	for v, want := range cases {
		if got := r.Valid(v); got != want {
			t.Fatalf("Valid(%v) = %v, want %v", v, got, want)
		}
	}
	orphan := mustLoad(t, `{"then": false}`)
	if !orphan.Valid(1) {
		t.Fatalf("then without if must not assert")
	}
}

func TestAllOfAnyOfNot(t *testing.T) {
	r := mustLoad(t, `{"allOf": [{"minimum": 0}, {"maximum": 10}], "anyOf": [{"type": "integer"}, {"multipleOf": 0.5}], "not": {"const": 7}}`)
	cases := map[any]bool{3: true, 2.5: true, 2.25: false, 7: false, 11: false}
	for v, want := range cases {
		if got := r.Valid(v); got != want {
			t.Fatalf("Valid(%v) = %v, want %v", v, got, want)
		}
	}
}

func TestRefResolution(t *testing.T) {
	r := mustLoad(t, `{
		"definitions": {
			"pos": {"type": "integer", "minimum": 0},
			"named": {"$id": "#name", "type": "string"}
		},
		"properties": {
			"n": {"$ref": "#/definitions/pos"},
			"s": {"$ref": "#name"},
			"self": {"$ref": "#"}
		}
	}`)
	if !r.Valid(map[string]any{"n": 3, "s": "x", "self": map[string]any{"n": 0}}) {
		t.Fatalf("expected valid")
	}
	for _, v := range []any{
		map[string]any{"n": -1},
		map[string]any{"s": 1},
		map[string]any{"self": map[string]any{"n": "no"}},
	} {
		if r.Valid(v) {
			t.Fatalf("expected %v to be invalid", v)
		}
	}
}

func TestExternalRefThroughLoader(t *testing.T) {
	ctx := context.Background()
	var asked []string
	loader := func(ctx context.Context, u string) (*jsonskema.Schema, error) {
		asked = append(asked, u)
		other, err := jsonskema.New(ctx, map[string]any{"type": "string"}, "http://x/other.json", jsonskema.NewSupport())
		if err != nil {
			return nil, err
		}
		return other.Schema, nil
	}
	r, err := jsonskema.New(ctx, map[string]any{"$ref": "other.json"}, "http://x/root.json", jsonskema.NewSupport(jsonskema.WithLoader(loader)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if diff := cmp.Diff([]string{"http://x/other.json"}, asked); diff != "" {
		t.Fatalf("loads (-want +got):\n%s", diff)
	}
	if !r.Valid("s") || r.Valid(1) {
		t.Fatalf("external schema not applied")
	}
}

func TestExternalRefNotLoadable(t *testing.T) {
	ctx := context.Background()
	_, err := jsonskema.New(ctx, map[string]any{"$ref": "http://x/missing.json"}, base, jsonskema.NewSupport())
	if !errors.Is(err, jsonskema.ErrNotLoadable) {
		t.Fatalf("expected ErrNotLoadable, got %v", err)
	}
	var re *jsonskema.ResolutionError
	if !errors.As(err, &re) || re.URI != "http://x/missing.json" {
		t.Fatalf("expected a ResolutionError for the missing URI, got %#v", err)
	}

	r := mustLoad(t, `{}`)
	if _, err := r.GetSchema(ctx, "http://x/other.json", false); !errors.Is(err, jsonskema.ErrNotLoadable) {
		t.Fatalf("expected ErrNotLoadable without load, got %v", err)
	}
	if _, err := r.GetSchema(ctx, "#/nowhere", true); !errors.Is(err, jsonskema.ErrSchemaNotFound) {
		t.Fatalf("expected ErrSchemaNotFound, got %v", err)
	}
}

func TestIdentifiersAndURIs(t *testing.T) {
	r, err := jsonskema.New(context.Background(), map[string]any{
		"$id":         "http://x/r.json",
		"definitions": map[string]any{"a": map[string]any{"$id": "a.json"}},
	}, base, jsonskema.NewSupport())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []string{
		"http://x/a.json",
		"http://x/a.json#",
		"http://x/r.json",
		"http://x/r.json#",
		"http://x/r.json#/definitions/a",
	}
	if diff := cmp.Diff(want, r.URIs()); diff != "" {
		t.Fatalf("URIs (-want +got):\n%s", diff)
	}
	a, err := r.GetSchema(context.Background(), "http://x/r.json#/definitions/a", false)
	if err != nil {
		t.Fatalf("GetSchema: %v", err)
	}
	if a.URI() != "http://x/a.json" || a.BaseURI() != "http://x/a.json" || a.Pointer() != "/definitions/a" {
		t.Fatalf("identifiers: uri=%q base=%q pointer=%q", a.URI(), a.BaseURI(), a.Pointer())
	}
	if a.Ref() != "#/definitions/a" || r.AbsoluteRef("definitions", "a") != "#/definitions/a" {
		t.Fatalf("refs: %q", a.Ref())
	}
	rel, err := r.RelativeRef(a)
	if err != nil || rel != "#/definitions/a" {
		t.Fatalf("RelativeRef = %q, %v", rel, err)
	}
	if _, err := a.RelativeRef(r.Schema); err == nil {
		t.Fatalf("expected error for a non-descendant")
	}
}

func TestDuplicateIdentifiers(t *testing.T) {
	docs := []string{
		`{"definitions": {"a": {"$id": "#dup"}, "b": {"$id": "#dup", "type": "string"}}}`,
		`{"definitions": {"a": {"$id": "#dup", "type": "string"}, "b": {"$id": "#dup"}}}`,
		`{"definitions": {"a": {"$id": "other.json"}, "z": {"$id": "other.json", "minimum": 1}}}`,
		`{"definitions": {"a": {"$id": "other.json", "minimum": 1}, "z": {"$id": "other.json"}}}`,
	}
	for _, doc := range docs {
		_, err := jsonskema.LoadJSON(context.Background(), []byte(doc), "http://x/s.json", jsonskema.NewSupport())
		if !errors.Is(err, jsonskema.ErrDuplicateIdentifier) {
			t.Fatalf("%s: expected ErrDuplicateIdentifier, got %v", doc, err)
		}
		var se *jsonskema.SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("%s: expected a SchemaError, got %T", doc, err)
		}
	}
}

func TestSchemaErrors(t *testing.T) {
	cases := []struct {
		doc  string
		want error
	}{
		{`{"$schema": "http://json-schema.org/draft-04/schema#"}`, jsonskema.ErrUnsupportedDraft},
		{`{"properties": {"a": {"$schema": "http://json-schema.org/draft-07/schema#"}}}`, jsonskema.ErrUnsupportedDraft},
		{`{"$id": 3}`, jsonskema.ErrInvalidIdentifier},
		{`{"definitions": {"a": {"$id": "#1bad"}}}`, jsonskema.ErrInvalidIdentifier},
		{`{"type": "decimal"}`, jsonskema.ErrSchemaKeyword},
		{`{"minLength": -1}`, jsonskema.ErrSchemaKeyword},
		{`{"allOf": []}`, jsonskema.ErrSchemaKeyword},
		{`{"pattern": "("}`, jsonskema.ErrSchemaKeyword},
		{`{"required": [1]}`, jsonskema.ErrSchemaKeyword},
		{`{"$ref": "#/definitions/none"}`, jsonskema.ErrSchemaNotFound},
		{`{"$ref": "#"}`, jsonskema.ErrSchemaNotFound},
		{`{"definitions": {"a": {"$ref": "#/definitions/b"}, "b": {"$ref": "#/definitions/a"}}, "$ref": "#/definitions/a"}`, jsonskema.ErrSchemaNotFound},
		{`{"properties": {"x": {"$ref": "#/properties/x"}}}`, jsonskema.ErrSchemaNotFound},
		{`3`, jsonskema.ErrNotSchema},
	}
	for _, tc := range cases {
		_, err := jsonskema.LoadJSON(context.Background(), []byte(tc.doc), base, jsonskema.NewSupport())
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.doc, tc.want, err)
		}
	}
	if _, err := jsonskema.New(context.Background(), true, "relative.json", jsonskema.NewSupport()); !errors.Is(err, jsonskema.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier for a relative base, got %v", err)
	}
	if _, err := jsonskema.New(context.Background(), true, base, nil); err == nil {
		t.Fatalf("expected error for nil Support")
	}
}

func TestRefCycleRejected(t *testing.T) {
	doc := `{"definitions": {"a": {"$ref": "#/definitions/b"}, "b": {"$ref": "#/definitions/a"}}, "properties": {"p": {"$ref": "#/definitions/a"}}}`
	_, err := jsonskema.LoadJSON(context.Background(), []byte(doc), base, jsonskema.NewSupport())
	var se *jsonskema.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected a SchemaError, got %v", err)
	}
	if se.Keyword != "$ref" || !errors.Is(err, jsonskema.ErrSchemaNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBooleanSchemas(t *testing.T) {
	r := mustLoad(t, `{"properties": {"yes": true, "no": false}}`)
	if !r.Valid(map[string]any{"yes": 1}) {
		t.Fatalf("true schema rejected")
	}
	if r.Valid(map[string]any{"no": 1}) {
		t.Fatalf("false schema accepted")
	}
	f, err := jsonskema.New(context.Background(), false, base, jsonskema.NewSupport())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	iss, ok := jsonskema.AsIssues(f.Validate(1))
	if !ok || len(iss) != 1 || iss[0].Code != jsonskema.CodeSchemaFalse {
		t.Fatalf("expected one schema_false issue, got %v", iss)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := mustLoad(t, `{"type": "object", "properties": {"n": {"type": "number"}, "tags": {"items": {"type": "string"}}}}`)
	in := map[string]any{"n": 1.5, "tags": []any{"a", "b"}}
	called, err := r.Call(in)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	data, err := r.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := r.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !jsonskema.Equal(decoded, called) {
		t.Fatalf("round trip mismatch: %v vs %v", decoded, called)
	}
}

func TestDebugTrace(t *testing.T) {
	r, err := jsonskema.New(context.Background(), map[string]any{
		"$id":        "http://x/s.json",
		"type":       "object",
		"properties": map[string]any{"a": map[string]any{"type": "string"}},
	}, base, jsonskema.NewSupport())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res := jsonskema.NewResults()
	if r.Debug(map[string]any{"a": 1}, res) {
		t.Fatalf("debug reported valid")
	}
	want := jsonskema.Trace{
		"": {"http://x/s.json": {"type": true, "properties": false}},
		"/a": {"http://x/s.json#/properties/a": {"type": false}},
	}
	if diff := cmp.Diff(want, res.Trace()); diff != "" {
		t.Fatalf("trace (-want +got):\n%s", diff)
	}
	if ok, found := res.Get("/a", "http://x/s.json#/properties/a", "type"); ok || !found {
		t.Fatalf("Get = %v, %v", ok, found)
	}

	var buf bytes.Buffer
	if err := res.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "FAIL\t/a\ttype\thttp://x/s.json#/properties/a\n") {
		t.Fatalf("unexpected rendering:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("rendering to a buffer must not be colored")
	}
}

func TestDebugOneOfIsExhaustive(t *testing.T) {
	r, err := jsonskema.New(context.Background(), map[string]any{
		"$id":   "http://x/s.json",
		"oneOf": []any{map[string]any{"minimum": 0}, map[string]any{"minimum": 1}, map[string]any{"minimum": 2}},
	}, base, jsonskema.NewSupport())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res := jsonskema.NewResults()
	r.Debug(5, res)
	for i := 0; i < 3; i++ {
		u := "http://x/s.json#/oneOf/" + string(rune('0'+i))
		if ok, found := res.Get("", u, "minimum"); !ok || !found {
			t.Fatalf("branch %s not evaluated", u)
		}
	}
	if ok, _ := res.Get("", "http://x/s.json", "oneOf"); ok {
		t.Fatalf("oneOf must fail when every branch matches")
	}
}

func TestValidateIssues(t *testing.T) {
	r := mustLoad(t, `{"properties": {"name": {"type": "string", "minLength": 3}, "n": {"type": "integer"}}, "required": ["name"]}`)
	if err := r.Validate(map[string]any{"name": "abc"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.Validate(map[string]any{"name": "ab", "n": "x"})
	iss, ok := jsonskema.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %T %v", err, err)
	}
	type brief struct{ Path, Code string }
	var got []brief
	for _, it := range iss {
		got = append(got, brief{it.Path, it.Code})
	}
	want := []brief{
		{"", jsonskema.CodeInvalid},
		{"/n", jsonskema.CodeInvalidType},
		{"/name", jsonskema.CodeTooShort},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues (-want +got):\n%s", diff)
	}
	if iss[2].Rule != base+"#/properties/name" || iss[2].Message == "" {
		t.Fatalf("issue detail: %+v", iss[2])
	}
}

func TestRequiredDelete(t *testing.T) {
	r := mustLoad(t, `{"required": ["foo", "baz"]}`)
	v, err := r.Call(map[string]any{"foo": true, "baz": false})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	m := v.(*enforce.Mapping)
	if err := m.Delete("baz"); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("deleting a required key: %v", err)
	}
	if err := m.Delete("absent"); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("deleting an absent key: %v", err)
	}
	if err := m.Set("extra", 1); err != nil {
		t.Fatalf("open object rejected a new key: %v", err)
	}
	if err := m.Delete("extra"); err != nil {
		t.Fatalf("deleting an optional key: %v", err)
	}
	if r.Valid(map[string]any{"foo": true}) {
		t.Fatalf("missing required key accepted")
	}
}

func TestPatternPropertiesDefaults(t *testing.T) {
	r := mustLoad(t, `{"type": "object", "patternProperties": {"^b": {"default": 2}, "^ba": {"default": 3}}}`)
	v, err := r.Call(map[string]any{})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	m := v.(*enforce.Mapping)
	if _, err := m.Get("baz"); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("expected ambiguous default, got %v", err)
	}
	got, err := m.Get("boo")
	if err != nil {
		t.Fatalf("Get boo: %v", err)
	}
	if diff := cmp.Diff(any(int64(2)), got); diff != "" {
		t.Fatalf("default (-want +got):\n%s", diff)
	}
	if _, err := m.Get("zzz"); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("expected no default, got %v", err)
	}
}

func TestObjectMutationScreening(t *testing.T) {
	r := mustLoad(t, `{
		"properties": {"a": {"type": "integer"}},
		"patternProperties": {"^x-": {"type": "string"}},
		"additionalProperties": false,
		"propertyNames": {"maxLength": 4},
		"maxProperties": 2
	}`)
	v, err := r.Call(map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	m := v.(*enforce.Mapping)
	if err := m.Set("a", "no"); !errors.Is(err, value.ErrKindMismatch) {
		t.Fatalf("modify with a bad value: %v", err)
	}
	if err := m.Set("b", 1); !errors.Is(err, value.ErrValueViolation) {
		t.Fatalf("insert of an additional key: %v", err)
	}
	if err := m.Set("x-long", "s"); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("insert of a bad property name: %v", err)
	}
	if err := m.Set("x-a", "s"); err != nil {
		t.Fatalf("insert of a pattern key: %v", err)
	}
	if err := m.Set("x-b", "s"); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("insert beyond maxProperties: %v", err)
	}
	if err := m.Update(map[string]any{"a": 2, "x-a": 3}); !errors.Is(err, value.ErrValueViolation) {
		t.Fatalf("partial update applied: %v", err)
	}
	if got, _ := m.Lookup("a"); got != 1 {
		t.Fatalf("failed update changed a to %v", got)
	}
	if r.Valid(map[string]any{"x-long": "s"}) {
		t.Fatalf("propertyNames not applied at construction")
	}
}

func TestDependencies(t *testing.T) {
	r := mustLoad(t, `{"dependencies": {"a": ["b"], "c": {"required": ["d"]}}}`)
	cases := []struct {
		in   map[string]any
		want bool
	}{
		{map[string]any{"a": 1}, false},
		{map[string]any{"a": 1, "b": 2}, true},
		{map[string]any{"c": 1}, false},
		{map[string]any{"c": 1, "d": 2}, true},
		{map[string]any{"b": 1}, true},
	}
	for _, tc := range cases {
		if got := r.Valid(tc.in); got != tc.want {
			t.Fatalf("Valid(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	v, err := r.Call(map[string]any{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	m := v.(*enforce.Mapping)
	if err := m.Delete("b"); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("delete breaking a dependency: %v", err)
	}
	if err := m.Clear(); err != nil || m.Len() != 2 {
		t.Fatalf("Clear with dependencies must keep every key: len=%d err=%v", m.Len(), err)
	}
	if err := m.Delete("a"); err != nil {
		t.Fatalf("delete of the trigger key: %v", err)
	}
}

func TestFreeKeys(t *testing.T) {
	r := mustLoad(t, `{"required": ["id"], "minProperties": 1}`)
	v, err := r.Call(map[string]any{"id": 1, "b": 2, "a": 3})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	m := v.(*enforce.Mapping)
	k, _, err := m.PopItem()
	if err != nil || k != "a" {
		t.Fatalf("PopItem = %q, %v", k, err)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if diff := cmp.Diff([]string{"id"}, m.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
}

func TestArrayModel(t *testing.T) {
	r := mustLoad(t, `{"items": [{"type": "integer"}, {"type": "string"}], "additionalItems": false}`)
	cases := []struct {
		in   []any
		want bool
	}{
		{[]any{1}, true},
		{[]any{1, "a"}, true},
		{[]any{1, "a", 3}, false},
		{[]any{"a"}, false},
	}
	for _, tc := range cases {
		if got := r.Valid(tc.in); got != tc.want {
			t.Fatalf("Valid(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	v, err := r.Call([]any{1, "a"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	seq := v.(*enforce.Sequence)
	if seq.Len() != 2 || seq.At(1) != "a" {
		t.Fatalf("formed sequence: %v", seq.Items())
	}

	tail := mustLoad(t, `{"items": [{"type": "integer"}], "additionalItems": {"type": "string"}, "contains": {"const": "x"}}`)
	if !tail.Valid([]any{1, "x"}) || tail.Valid([]any{1, "y"}) || tail.Valid([]any{1, "x", 2}) {
		t.Fatalf("additionalItems schema or contains not applied")
	}
	open := mustLoad(t, `{"items": [{"type": "integer"}]}`)
	if !open.Valid([]any{1, "anything", nil}) {
		t.Fatalf("items without additionalItems must accept extra items")
	}
}

func TestUniqueItems(t *testing.T) {
	r := mustLoad(t, `{"uniqueItems": true, "minItems": 1, "maxItems": 3}`)
	cases := []struct {
		in   []any
		want bool
	}{
		{[]any{1, true}, true},
		{[]any{1, 1.0}, false},
		{[]any{map[string]any{"a": 1}, map[string]any{"a": 1}}, false},
		{[]any{}, false},
		{[]any{1, 2, 3, 4}, false},
	}
	for _, tc := range cases {
		if got := r.Valid(tc.in); got != tc.want {
			t.Fatalf("Valid(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFormatsAndEncodings(t *testing.T) {
	r := mustLoad(t, `{"properties": {"d": {"format": "date"}, "b": {"contentEncoding": "base64"}, "u": {"format": "unheard-of"}}}`)
	if !r.Valid(map[string]any{"d": "2024-02-29", "b": "aGk=", "u": "whatever"}) {
		t.Fatalf("valid formats rejected")
	}
	if r.Valid(map[string]any{"d": "2023-02-29"}) {
		t.Fatalf("invalid date accepted")
	}
	if r.Valid(map[string]any{"b": "not base64!"}) {
		t.Fatalf("invalid base64 accepted")
	}
	if !r.Valid(map[string]any{"d": 20240229}) {
		t.Fatalf("format must not constrain numbers")
	}
}

func TestTraits(t *testing.T) {
	type audited struct{ by string }
	r := mustLoad(t, `{"type": "object", "properties": {"list": {"type": "array"}}}`,
		jsonskema.WithTraits(base, audited{"root"}),
		jsonskema.WithTraits(base+"#/properties/list", audited{"list"}),
	)
	v, err := r.Call(map[string]any{"list": []any{1}})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	m := v.(*enforce.Mapping)
	if diff := cmp.Diff([]any{audited{"root"}}, m.Traits(), cmp.AllowUnexported(audited{})); diff != "" {
		t.Fatalf("mapping traits (-want +got):\n%s", diff)
	}
	list, _ := m.Lookup("list")
	if diff := cmp.Diff([]any{audited{"list"}}, list.(*enforce.Sequence).Traits(), cmp.AllowUnexported(audited{})); diff != "" {
		t.Fatalf("sequence traits (-want +got):\n%s", diff)
	}
}

func TestDispatchOptimiser(t *testing.T) {
	opt := jsonskema.OptimiserFunc(func(u string, root *jsonskema.RootSchema) jsonskema.Implementation {
		if u != base {
			return nil
		}
		return jsonskema.Dispatch(func(v any) (*jsonskema.Schema, error) {
			m, _ := v.(map[string]any)
			kind, _ := m["kind"].(string)
			return root.GetSchema(context.Background(), "#/definitions/"+kind, false)
		})
	})
	r := mustLoad(t, `{"definitions": {"a": {"required": ["x"]}, "b": {"required": ["y"]}}}`, jsonskema.WithOptimiser(opt))
	if !r.Valid(map[string]any{"kind": "a", "x": 1}) {
		t.Fatalf("kind a rejected")
	}
	if r.Valid(map[string]any{"kind": "a", "y": 1}) {
		t.Fatalf("kind a without x accepted")
	}
	if r.Valid(map[string]any{"kind": "c"}) {
		t.Fatalf("unknown kind accepted")
	}
}

func TestWithoutDefine(t *testing.T) {
	ctx := context.Background()
	r, err := jsonskema.New(ctx, map[string]any{"type": "string"}, base, jsonskema.NewSupport(), jsonskema.WithoutDefine())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Defined() {
		t.Fatalf("graph defined early")
	}
	if _, err := r.Call("s"); !errors.Is(err, jsonskema.ErrUndefined) {
		t.Fatalf("expected ErrUndefined, got %v", err)
	}
	if err := r.Define(ctx); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if !r.Defined() || !r.Valid("s") {
		t.Fatalf("graph not usable after Define")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	r2, err := jsonskema.New(ctx, true, base, jsonskema.NewSupport(), jsonskema.WithoutDefine())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r2.Define(cancelled); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAnnotations(t *testing.T) {
	r := mustLoad(t, `{"title": "T", "description": "D", "default": {"a": 1}}`)
	if title, ok := r.Title(); !ok || title != "T" {
		t.Fatalf("Title = %q, %v", title, ok)
	}
	if desc, ok := r.Description(); !ok || desc != "D" {
		t.Fatalf("Description = %q, %v", desc, ok)
	}
	d, ok := r.Default()
	if !ok {
		t.Fatalf("no default")
	}
	if diff := cmp.Diff(map[string]any{"a": int64(1)}, d); diff != "" {
		t.Fatalf("default (-want +got):\n%s", diff)
	}
}
