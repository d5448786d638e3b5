package enforce

import (
	"sort"

	json "github.com/goccy/go-json"

	"github.com/reoring/jsonskema/value"
)

// MappingModel screens the construction and mutation of a Mapping. The maps
// passed to the Screen methods are the live contents of the container and
// must not be modified.
type MappingModel interface {
	// Policy governs keys the model does not describe.
	Policy() Policy
	// Form returns the canonical contents for raw or rejects it.
	Form(raw map[string]any) (map[string]any, error)
	// Default returns the value Get falls back to for an absent key, or a
	// *KeyError.
	Default(key string) (any, error)
	// ScreenSet admits the insertion of an absent key.
	ScreenSet(m map[string]any, key string, v any) (any, error)
	// ScreenModify admits the replacement of the value at a present key.
	ScreenModify(m map[string]any, key string, v any) (any, error)
	// ScreenDelete admits the removal of a present key.
	ScreenDelete(m map[string]any, key string) error
	// ScreenUpdate admits a batch of insertions and replacements, all or
	// nothing.
	ScreenUpdate(m map[string]any, other map[string]any) (map[string]any, error)
	// FreeKeys lists the keys that may be removed together without
	// invalidating the mapping.
	FreeKeys(m map[string]any) []string
}

// MappingType is a handle to a mapping model. It can be declared before its
// model exists, which lets models refer to themselves.
type MappingType struct {
	name   string
	model  MappingModel
	traits []any
}

// DeclareMapping returns an unbound handle.
func DeclareMapping(name string) *MappingType { return &MappingType{name: name} }

// NewMappingType declares and binds a handle in one step.
func NewMappingType(name string, model MappingModel, traits ...any) *MappingType {
	return &MappingType{name: name, model: model, traits: traits}
}

// Bind attaches the model and traits to a declared handle.
func (mt *MappingType) Bind(model MappingModel, traits ...any) error {
	if mt.model != nil {
		return &AlreadyDefinedError{Name: mt.name}
	}
	mt.model = model
	mt.traits = traits
	return nil
}

func (mt *MappingType) Name() string  { return mt.name }
func (mt *MappingType) Defined() bool { return mt.model != nil }
func (mt *MappingType) Traits() []any { return append([]any(nil), mt.traits...) }

// Model returns the bound model, or nil.
func (mt *MappingType) Model() MappingModel { return mt.model }

// New forms a Mapping from any mapping value.
func (mt *MappingType) New(v any) (*Mapping, error) {
	if mt.model == nil {
		return nil, &NotDefinedError{Name: mt.name}
	}
	raw, ok := value.AsMap(v)
	if !ok {
		return nil, value.Mismatch(v, "not a mapping")
	}
	data, err := mt.model.Form(raw)
	if err != nil {
		return nil, err
	}
	return &Mapping{typ: mt, data: data}, nil
}

// Call implements Caller.
func (mt *MappingType) Call(v any) (any, error) {
	if m, ok := v.(*Mapping); ok && m.typ == mt {
		return m, nil
	}
	return mt.New(v)
}

// Mapping is a string-keyed container that re-validates every mutation
// against its model.
type Mapping struct {
	typ  *MappingType
	data map[string]any
}

func (m *Mapping) Type() *MappingType { return m.typ }
func (m *Mapping) Traits() []any      { return m.typ.Traits() }
func (m *Mapping) Len() int           { return len(m.data) }

func (m *Mapping) Has(key string) bool {
	_, ok := m.data[key]
	return ok
}

// Lookup returns the stored value without consulting defaults.
func (m *Mapping) Lookup(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

// Get returns the stored value, else the model default, else a *KeyError.
func (m *Mapping) Get(key string) (any, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return m.typ.model.Default(key)
}

// Set screens the change as a modification when key is present and as an
// insertion otherwise.
func (m *Mapping) Set(key string, v any) error {
	var (
		out any
		err error
	)
	if _, ok := m.data[key]; ok {
		out, err = m.typ.model.ScreenModify(m.data, key, v)
	} else {
		out, err = m.typ.model.ScreenSet(m.data, key, v)
	}
	if err != nil {
		return err
	}
	m.data[key] = out
	return nil
}

// Delete removes key. Removing an absent key is a *KeyError.
func (m *Mapping) Delete(key string) error {
	if _, ok := m.data[key]; !ok {
		return keyErr(key, "not present")
	}
	if err := m.typ.model.ScreenDelete(m.data, key); err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

// Clear removes every free key.
func (m *Mapping) Clear() error {
	for _, k := range m.typ.model.FreeKeys(m.data) {
		if err := m.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Pop removes key and returns its value. When key is absent the first
// default is returned instead; without one it is a *KeyError.
func (m *Mapping) Pop(key string, def ...any) (any, error) {
	v, ok := m.data[key]
	if !ok {
		if len(def) > 0 {
			return def[0], nil
		}
		return nil, keyErr(key, "not present")
	}
	if err := m.Delete(key); err != nil {
		return nil, err
	}
	return v, nil
}

// PopItem removes and returns the smallest free key.
func (m *Mapping) PopItem() (string, any, error) {
	free := m.typ.model.FreeKeys(m.data)
	if len(free) == 0 {
		return "", nil, keyErr("", "no free keys")
	}
	sort.Strings(free)
	k := free[0]
	v, err := m.Pop(k)
	if err != nil {
		return "", nil, err
	}
	return k, v, nil
}

// SetDefault returns the value at key, inserting def first when absent.
func (m *Mapping) SetDefault(key string, def any) (any, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	if err := m.Set(key, def); err != nil {
		return nil, err
	}
	return m.data[key], nil
}

// Update applies every pair of other or none of them.
func (m *Mapping) Update(other map[string]any) error {
	if len(other) == 0 {
		return nil
	}
	screened, err := m.typ.model.ScreenUpdate(m.data, other)
	if err != nil {
		return err
	}
	for k, v := range screened {
		m.data[k] = v
	}
	return nil
}

// Keys returns the keys in sorted order.
func (m *Mapping) Keys() []string {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Item is a key/value pair of a Mapping.
type Item struct {
	Key   string
	Value any
}

// Items returns the pairs sorted by key.
func (m *Mapping) Items() []Item {
	keys := m.Keys()
	out := make([]Item, len(keys))
	for i, k := range keys {
		out[i] = Item{Key: k, Value: m.data[k]}
	}
	return out
}

// ToMap returns a shallow copy of the contents.
func (m *Mapping) ToMap() map[string]any {
	out := make(map[string]any, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

func (m *Mapping) MarshalJSON() ([]byte, error) { return json.Marshal(m.data) }
