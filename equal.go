package jsonskema

import "github.com/reoring/jsonskema/value"

// Equal is the equality of enum, const and uniqueItems. Numbers compare
// exactly and never equal booleans. Objects and *enforce.Mapping values are
// the same kind, as are arrays and *enforce.Sequence values; no other
// cross-kind equality holds.
func Equal(a, b any) bool { return value.Equal(a, b) }
