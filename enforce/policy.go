// Package enforce provides containers that stay valid under mutation. A
// Mapping or Sequence is bound to a model that screens every construction,
// access and mutation before the underlying storage is touched. A policy
// decides how elements outside the model are treated.
package enforce

import "fmt"

// Policy governs elements outside a container's model.
type Policy uint8

const (
	// MustUnderstand rejects unmodelled elements at construction and on
	// mutation.
	MustUnderstand Policy = iota
	// MustIgnore drops unmodelled elements at construction and rejects them
	// on mutation.
	MustIgnore
	// MustAccept keeps unmodelled elements and does not restrict them.
	MustAccept
)

func (p Policy) String() string {
	switch p {
	case MustUnderstand:
		return "must-understand"
	case MustIgnore:
		return "must-ignore"
	case MustAccept:
		return "must-accept"
	}
	return fmt.Sprintf("policy(%d)", uint8(p))
}

// ParsePolicy parses the textual policy names.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "must-understand":
		return MustUnderstand, nil
	case "must-ignore":
		return MustIgnore, nil
	case "must-accept":
		return MustAccept, nil
	}
	return 0, fmt.Errorf("enforce: unknown policy %q", s)
}

// Caller canonicalizes a value or rejects it. *value.Type, *MappingType and
// *SequenceType all implement Caller, so models can nest and refer to
// forward-declared types.
type Caller interface {
	Call(v any) (any, error)
}
