package enforce

import (
	"fmt"
	"sort"

	"github.com/reoring/jsonskema/value"
)

// Pair describes one key of a DictModel.
type Pair struct {
	// Type forms the value; nil accepts anything.
	Type Caller
	// Mandatory keys must be present and cannot be deleted.
	Mandatory bool
	// Constant keys cannot be modified once set.
	Constant bool
	// Default is returned by Get for an absent key when HasDefault is set.
	Default    any
	HasDefault bool
}

// DictModel is a MappingModel over a fixed set of described keys.
type DictModel struct {
	pairs  map[string]Pair
	policy Policy
}

func NewDictModel(pairs map[string]Pair, policy Policy) *DictModel {
	cp := make(map[string]Pair, len(pairs))
	for k, p := range pairs {
		cp[k] = p
	}
	return &DictModel{pairs: cp, policy: policy}
}

func (d *DictModel) Policy() Policy { return d.policy }

// screen forms v for key. A key without a Pair is reported as a *KeyError.
func (d *DictModel) screen(key string, v any) (any, error) {
	p, ok := d.pairs[key]
	if !ok {
		return nil, keyErr(key, "not described by the model")
	}
	if p.Type == nil {
		return v, nil
	}
	return p.Type.Call(v)
}

func (d *DictModel) Form(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for _, k := range sortedKeys(raw) {
		v := raw[k]
		if _, ok := d.pairs[k]; !ok {
			switch d.policy {
			case MustAccept:
				out[k] = v
			case MustIgnore:
			default:
				return nil, value.Violation(raw, fmt.Sprintf("value not allowed at key %q", k))
			}
			continue
		}
		formed, err := d.screen(k, v)
		if err != nil {
			if !value.Rejected(err) {
				return nil, err
			}
			f, _ := value.FailureOf(err)
			return nil, &value.Error{Failure: f, Value: raw, Reason: fmt.Sprintf("bad value at key %q", k), Err: err}
		}
		out[k] = formed
	}
	for _, k := range d.mandatory() {
		if _, ok := out[k]; !ok {
			return nil, value.Violation(raw, fmt.Sprintf("missing key %q", k))
		}
	}
	return out, nil
}

func (d *DictModel) Default(key string) (any, error) {
	if p, ok := d.pairs[key]; ok && p.HasDefault {
		return p.Default, nil
	}
	return nil, keyErr(key, "no value or default")
}

func (d *DictModel) ScreenSet(_ map[string]any, key string, v any) (any, error) {
	if _, ok := d.pairs[key]; !ok && d.policy == MustAccept {
		return v, nil
	}
	return d.screen(key, v)
}

func (d *DictModel) ScreenModify(_ map[string]any, key string, v any) (any, error) {
	p, ok := d.pairs[key]
	if !ok {
		// only reachable under must-accept
		return v, nil
	}
	if p.Constant {
		return nil, keyErr(key, "constant")
	}
	return d.screen(key, v)
}

func (d *DictModel) ScreenDelete(_ map[string]any, key string) error {
	if d.pairs[key].Mandatory {
		return keyErr(key, "mandatory")
	}
	return nil
}

func (d *DictModel) ScreenUpdate(m map[string]any, other map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(other))
	for _, k := range sortedKeys(other) {
		var (
			v   any
			err error
		)
		if _, ok := m[k]; ok {
			v, err = d.ScreenModify(m, k, other[k])
		} else {
			v, err = d.ScreenSet(m, k, other[k])
		}
		if err != nil {
			return nil, &value.Error{Failure: value.ValueViolation, Value: other, Reason: fmt.Sprintf("update rejected at key %q", k), Err: err}
		}
		out[k] = v
	}
	return out, nil
}

func (d *DictModel) FreeKeys(m map[string]any) []string {
	var out []string
	for _, k := range sortedKeys(m) {
		if !d.pairs[k].Mandatory {
			out = append(out, k)
		}
	}
	return out
}

func (d *DictModel) mandatory() []string {
	var out []string
	for k, p := range d.pairs {
		if p.Mandatory {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
