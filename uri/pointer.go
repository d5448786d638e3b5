package uri

import "strings"

// KeyPath addresses an element of a decoded document by member names and
// array indices, all rendered as strings.
type KeyPath []string

// Append returns a new key path with keys appended; kp is not modified.
func (kp KeyPath) Append(keys ...string) KeyPath {
	out := make(KeyPath, 0, len(kp)+len(keys))
	out = append(out, kp...)
	return append(out, keys...)
}

// HasPrefix reports whether prefix addresses kp or one of its ancestors.
func (kp KeyPath) HasPrefix(prefix KeyPath) bool {
	if len(prefix) > len(kp) {
		return false
	}
	for i := range prefix {
		if kp[i] != prefix[i] {
			return false
		}
	}
	return true
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer renders kp as a JSON Pointer. The empty path is "".
func Pointer(kp KeyPath) string {
	if len(kp) == 0 {
		return ""
	}
	var b strings.Builder
	for _, tok := range kp {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(tok))
	}
	return b.String()
}
