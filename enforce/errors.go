package enforce

import (
	"errors"
	"fmt"
)

// ErrKey is matched by every *KeyError.
var ErrKey = errors.New("enforce: key rejected")

// KeyError reports a key the model forbids outright, as opposed to a value
// that fails the model (reported as a *value.Error).
type KeyError struct {
	Key    string
	Reason string
}

func (e *KeyError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("enforce: key %q rejected", e.Key)
	}
	return fmt.Sprintf("enforce: key %q rejected: %s", e.Key, e.Reason)
}

func (e *KeyError) Is(target error) bool { return target == ErrKey }

func keyErr(key, reason string) *KeyError { return &KeyError{Key: key, Reason: reason} }

// NotDefinedError reports use of a declared type whose model is not bound.
type NotDefinedError struct{ Name string }

func (e *NotDefinedError) Error() string {
	return fmt.Sprintf("enforce: model for %q is not defined", e.Name)
}

// AlreadyDefinedError reports a second bind of a type's model.
type AlreadyDefinedError struct{ Name string }

func (e *AlreadyDefinedError) Error() string {
	return fmt.Sprintf("enforce: model for %q is already defined", e.Name)
}
