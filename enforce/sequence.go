package enforce

import (
	json "github.com/goccy/go-json"

	"github.com/reoring/jsonskema/value"
)

// SequenceModel forms the items of a Sequence. Sequences are immutable once
// formed, so construction is the only screen.
type SequenceModel interface {
	Policy() Policy
	Form(items []any) ([]any, error)
}

// SequenceType is a handle to a sequence model; see MappingType.
type SequenceType struct {
	name   string
	model  SequenceModel
	traits []any
}

func DeclareSequence(name string) *SequenceType { return &SequenceType{name: name} }

func NewSequenceType(name string, model SequenceModel, traits ...any) *SequenceType {
	return &SequenceType{name: name, model: model, traits: traits}
}

func (st *SequenceType) Bind(model SequenceModel, traits ...any) error {
	if st.model != nil {
		return &AlreadyDefinedError{Name: st.name}
	}
	st.model = model
	st.traits = traits
	return nil
}

func (st *SequenceType) Name() string         { return st.name }
func (st *SequenceType) Defined() bool        { return st.model != nil }
func (st *SequenceType) Traits() []any        { return append([]any(nil), st.traits...) }
func (st *SequenceType) Model() SequenceModel { return st.model }

// New forms a Sequence from any sequence value.
func (st *SequenceType) New(v any) (*Sequence, error) {
	if st.model == nil {
		return nil, &NotDefinedError{Name: st.name}
	}
	raw, ok := value.AsSlice(v)
	if !ok {
		return nil, value.Mismatch(v, "not a sequence")
	}
	items, err := st.model.Form(raw)
	if err != nil {
		return nil, err
	}
	return &Sequence{typ: st, items: items}, nil
}

// Call implements Caller.
func (st *SequenceType) Call(v any) (any, error) {
	if s, ok := v.(*Sequence); ok && s.typ == st {
		return s, nil
	}
	return st.New(v)
}

// Sequence is an immutable, validated list.
type Sequence struct {
	typ   *SequenceType
	items []any
}

func (s *Sequence) Type() *SequenceType { return s.typ }
func (s *Sequence) Traits() []any       { return s.typ.Traits() }
func (s *Sequence) Len() int            { return len(s.items) }
func (s *Sequence) At(i int) any        { return s.items[i] }

// Items returns a copy of the items.
func (s *Sequence) Items() []any { return append([]any(nil), s.items...) }

// ToSlice is Items; it lets value.AsSlice see through the container.
func (s *Sequence) ToSlice() []any { return s.Items() }

func (s *Sequence) MarshalJSON() ([]byte, error) { return json.Marshal(s.items) }
