package formats

import "encoding/base64"

type encoding struct {
	name  string
	check func(string) bool
}

func (e *encoding) Name() string { return e.name }

func (e *encoding) Check(v any) bool {
	s, ok := v.(string)
	return ok && e.check(s)
}

// NewEncoding returns an Encoding from a predicate over strings.
func NewEncoding(name string, check func(string) bool) Encoding {
	return &encoding{name: name, check: check}
}

// Base64 accepts RFC 2045 base64 text with standard padding.
func Base64() Encoding {
	return NewEncoding("base64", func(s string) bool {
		_, err := base64.StdEncoding.DecodeString(s)
		return err == nil
	})
}
