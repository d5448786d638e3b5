package enforce

import (
	"fmt"

	"github.com/reoring/jsonskema/value"
)

// ListModel is a SequenceModel with positional head types and a tail type for
// the remaining items. Items beyond the head when there is no tail fall under
// the policy.
type ListModel struct {
	Head []Caller
	Tail Caller
	// Min and Max bound the item count; a negative Max is unbounded.
	Min, Max int
	// Unique rejects sequences holding two equal items.
	Unique bool
	// Condition, when set, must hold for the formed items.
	Condition func(items []any) bool
	Mode      Policy
}

func (l *ListModel) Policy() Policy { return l.Mode }

func (l *ListModel) Form(items []any) ([]any, error) {
	if len(items) < l.Min {
		return nil, value.Violation(items, fmt.Sprintf("fewer than %d items", l.Min))
	}
	if l.Max >= 0 && len(items) > l.Max {
		return nil, value.Violation(items, fmt.Sprintf("more than %d items", l.Max))
	}
	out := make([]any, 0, len(items))
	for i, item := range items {
		var t Caller
		switch {
		case i < len(l.Head):
			t = l.Head[i]
		case l.Tail != nil:
			t = l.Tail
		default:
			switch l.Mode {
			case MustAccept:
				out = append(out, item)
				continue
			case MustIgnore:
				continue
			}
			return nil, value.Violation(items, fmt.Sprintf("unexpected item #%d", i))
		}
		formed, err := t.Call(item)
		if err != nil {
			if !value.Rejected(err) {
				return nil, err
			}
			f, _ := value.FailureOf(err)
			return nil, &value.Error{Failure: f, Value: items, Reason: fmt.Sprintf("bad item #%d", i), Err: err}
		}
		out = append(out, formed)
	}
	if l.Unique {
		for i := range out {
			for j := i + 1; j < len(out); j++ {
				if value.Equal(out[i], out[j]) {
					return nil, value.Violation(items, fmt.Sprintf("items #%d and #%d are equal", i, j))
				}
			}
		}
	}
	if l.Condition != nil && !l.Condition(out) {
		return nil, value.Violation(items, "condition not satisfied")
	}
	return out, nil
}
