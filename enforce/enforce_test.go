package enforce_test

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/jsonskema/enforce"
	"github.com/reoring/jsonskema/value"
)

func personType(policy enforce.Policy) *enforce.MappingType {
	model := enforce.NewDictModel(map[string]enforce.Pair{
		"name": {Type: value.String(), Mandatory: true},
		"id":   {Type: value.Integer(), Constant: true},
		"age":  {Type: value.Integer(), Default: 0, HasDefault: true},
	}, policy)
	return enforce.NewMappingType("person", model, "trait")
}

func TestMappingPolicyAtConstruction(t *testing.T) {
	raw := map[string]any{"name": "ann", "extra": true}

	if _, err := personType(enforce.MustUnderstand).New(raw); !errors.Is(err, value.ErrValueViolation) {
		t.Fatalf("must-understand: want violation, got %v", err)
	}
	m, err := personType(enforce.MustIgnore).New(raw)
	if err != nil {
		t.Fatalf("must-ignore: %v", err)
	}
	if m.Has("extra") {
		t.Fatalf("must-ignore kept unmodelled key")
	}
	m, err = personType(enforce.MustAccept).New(raw)
	if err != nil {
		t.Fatalf("must-accept: %v", err)
	}
	if v, ok := m.Lookup("extra"); !ok || v != true {
		t.Fatalf("must-accept dropped unmodelled key")
	}
}

func TestMappingConstructionFailures(t *testing.T) {
	pt := personType(enforce.MustAccept)
	if _, err := pt.New(map[string]any{"age": 3}); !errors.Is(err, value.ErrValueViolation) {
		t.Fatalf("missing mandatory: %v", err)
	}
	if _, err := pt.New(map[string]any{"name": 7}); !errors.Is(err, value.ErrKindMismatch) {
		t.Fatalf("bad value kind: %v", err)
	}
	if _, err := pt.New("not a map"); !errors.Is(err, value.ErrKindMismatch) {
		t.Fatalf("non-mapping: %v", err)
	}
}

func TestMappingMutation(t *testing.T) {
	m, err := personType(enforce.MustUnderstand).New(map[string]any{"name": "ann", "id": 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Set("age", 30); err != nil {
		t.Fatalf("set age: %v", err)
	}
	if err := m.Set("age", "thirty"); !errors.Is(err, value.ErrKindMismatch) {
		t.Fatalf("set bad age: %v", err)
	}
	if got, _ := m.Lookup("age"); got != 30 {
		t.Fatalf("failed set changed storage: %v", got)
	}
	if err := m.Set("id", 2); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("modify constant: %v", err)
	}
	if err := m.Set("nickname", "a"); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("set unmodelled key: %v", err)
	}
	if err := m.Delete("name"); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("delete mandatory: %v", err)
	}
	if err := m.Delete("missing"); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("delete absent: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("len = %d", m.Len())
	}
}

func TestMappingGetDefaults(t *testing.T) {
	m, err := personType(enforce.MustUnderstand).New(map[string]any{"name": "ann"})
	if err != nil {
		t.Fatal(err)
	}
	if v, err := m.Get("age"); err != nil || v != 0 {
		t.Fatalf("default age = %v, %v", v, err)
	}
	if _, ok := m.Lookup("age"); ok {
		t.Fatalf("Lookup consulted default")
	}
	var ke *enforce.KeyError
	if _, err := m.Get("id"); !errors.As(err, &ke) || ke.Key != "id" {
		t.Fatalf("no default: %v", err)
	}
}

func TestMappingPopClearUpdate(t *testing.T) {
	m, err := personType(enforce.MustAccept).New(map[string]any{"name": "ann", "b": 1, "a": 2})
	if err != nil {
		t.Fatal(err)
	}
	k, v, err := m.PopItem()
	if err != nil || k != "a" || v != 2 {
		t.Fatalf("PopItem = %q, %v, %v", k, v, err)
	}
	if v, err := m.Pop("zzz", "dflt"); err != nil || v != "dflt" {
		t.Fatalf("Pop default = %v, %v", v, err)
	}
	if _, err := m.Pop("zzz"); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("Pop absent: %v", err)
	}
	if v, err := m.SetDefault("age", 9); err != nil || v != 9 {
		t.Fatalf("SetDefault = %v, %v", v, err)
	}

	if err := m.Update(map[string]any{"age": 10, "name": 5}); !errors.Is(err, value.ErrValueViolation) {
		t.Fatalf("bad update: %v", err)
	}
	if got, _ := m.Lookup("age"); got != 9 {
		t.Fatalf("rejected update partially applied: age=%v", got)
	}
	if err := m.Update(map[string]any{"age": 10, "c": "x"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if diff := cmp.Diff([]string{"name"}, m.Keys()); diff != "" {
		t.Fatalf("keys after clear (-want +got):\n%s", diff)
	}
	if _, _, err := m.PopItem(); !errors.Is(err, enforce.ErrKey) {
		t.Fatalf("PopItem with no free keys: %v", err)
	}
}

func TestForwardDeclaration(t *testing.T) {
	node := enforce.DeclareMapping("node")
	if _, err := node.New(map[string]any{}); err == nil {
		t.Fatalf("unbound handle formed a mapping")
	} else {
		var nd *enforce.NotDefinedError
		if !errors.As(err, &nd) {
			t.Fatalf("want NotDefinedError, got %v", err)
		}
	}
	model := enforce.NewDictModel(map[string]enforce.Pair{
		"value": {Type: value.Integer(), Mandatory: true},
		"next":  {Type: node},
	}, enforce.MustUnderstand)
	if err := node.Bind(model); err != nil {
		t.Fatal(err)
	}
	var ad *enforce.AlreadyDefinedError
	if err := node.Bind(model); !errors.As(err, &ad) {
		t.Fatalf("second bind: %v", err)
	}

	list, err := node.New(map[string]any{
		"value": 1,
		"next":  map[string]any{"value": 2},
	})
	if err != nil {
		t.Fatalf("recursive form: %v", err)
	}
	next, _ := list.Lookup("next")
	if _, ok := next.(*enforce.Mapping); !ok {
		t.Fatalf("nested value not formed: %T", next)
	}
	if _, err := node.New(map[string]any{"value": 1, "next": map[string]any{}}); !errors.Is(err, value.ErrValueViolation) {
		t.Fatalf("bad nested: %v", err)
	}
}

func TestSequenceModel(t *testing.T) {
	st := enforce.NewSequenceType("pair", &enforce.ListModel{
		Head:   []enforce.Caller{value.String()},
		Tail:   value.Integer(),
		Min:    1,
		Max:    3,
		Unique: true,
		Mode:   enforce.MustUnderstand,
	}, "seq-trait")

	s, err := st.New([]any{"a", 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 || s.At(0) != "a" {
		t.Fatalf("formed = %v", s.Items())
	}
	if diff := cmp.Diff([]any{"seq-trait"}, s.Traits()); diff != "" {
		t.Fatalf("traits (-want +got):\n%s", diff)
	}
	for _, bad := range [][]any{{}, {"a", 1, 2, 3}, {"a", "b"}, {"a", 1, 1.0}} {
		if _, err := st.New(bad); !value.Rejected(err) {
			t.Fatalf("%v accepted: %v", bad, err)
		}
	}
	got, _ := value.AsSlice(s)
	if diff := cmp.Diff([]any{"a", 1, 2}, got); diff != "" {
		t.Fatalf("AsSlice (-want +got):\n%s", diff)
	}
}

func TestSequencePolicyWithoutTail(t *testing.T) {
	head := []enforce.Caller{value.Boolean()}
	ignore := enforce.NewSequenceType("ig", &enforce.ListModel{Head: head, Max: -1, Mode: enforce.MustIgnore})
	s, err := ignore.New([]any{true, "x"})
	if err != nil || s.Len() != 1 {
		t.Fatalf("must-ignore = %v, %v", s, err)
	}
	strict := enforce.NewSequenceType("st", &enforce.ListModel{Head: head, Max: -1, Mode: enforce.MustUnderstand})
	if _, err := strict.New([]any{true, "x"}); !errors.Is(err, value.ErrValueViolation) {
		t.Fatalf("must-understand: %v", err)
	}
}

func TestMarshalJSON(t *testing.T) {
	m, err := personType(enforce.MustUnderstand).New(map[string]any{"name": "ann", "age": 4})
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"age":4,"name":"ann"}` {
		t.Fatalf("marshal = %s", b)
	}
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []enforce.Policy{enforce.MustUnderstand, enforce.MustIgnore, enforce.MustAccept} {
		got, err := enforce.ParsePolicy(p.String())
		if err != nil || got != p {
			t.Fatalf("ParsePolicy(%q) = %v, %v", p, got, err)
		}
	}
	if _, err := enforce.ParsePolicy("must-obey"); err == nil {
		t.Fatalf("unknown policy parsed")
	}
}
