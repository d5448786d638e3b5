package jsonskema

import (
	"sort"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reoring/jsonskema/i18n"
	"github.com/reoring/jsonskema/uri"
)

// Trace maps a value pointer to the schemas evaluated there, each to the
// outcome of its keywords.
type Trace map[string]map[string]map[string]bool

// Results collects the assertions of a debug evaluation.
type Results struct {
	keyPath uri.KeyPath
	pointer string
	trace   Trace
}

func NewResults() *Results { return &Results{trace: Trace{}} }

// PushKey descends into the member or item key of the current value.
func (r *Results) PushKey(key string) {
	r.keyPath = append(r.keyPath, key)
	r.pointer = uri.Pointer(r.keyPath)
}

// PushIndex descends into item i of the current value.
func (r *Results) PushIndex(i int) { r.PushKey(strconv.Itoa(i)) }

// PopKey returns to the parent of the current value.
func (r *Results) PopKey() {
	r.keyPath = r.keyPath[:len(r.keyPath)-1]
	r.pointer = uri.Pointer(r.keyPath)
}

// Pointer addresses the current value.
func (r *Results) Pointer() string { return r.pointer }

// Assertion records the outcome of keyword of s at the current value.
func (r *Results) Assertion(s *Schema, keyword string, ok bool) {
	bySchema, found := r.trace[r.pointer]
	if !found {
		bySchema = map[string]map[string]bool{}
		r.trace[r.pointer] = bySchema
	}
	u := s.URI()
	byKeyword, found := bySchema[u]
	if !found {
		byKeyword = map[string]bool{}
		bySchema[u] = byKeyword
	}
	byKeyword[keyword] = ok
}

// Trace returns the recorded assertions. The map is owned by r.
func (r *Results) Trace() Trace { return r.trace }

// Get reports the recorded outcome of a keyword.
func (r *Results) Get(pointer, schemaURI, keyword string) (ok, found bool) {
	ok, found = r.trace[pointer][schemaURI][keyword]
	return ok, found
}

func (r *Results) MarshalJSON() ([]byte, error) { return json.Marshal(r.trace) }

// Issues converts the failed assertions into Issues ordered by pointer,
// schema and keyword. A failed if is not an issue.
func (r *Results) Issues() Issues {
	var out Issues
	r.walk(func(pointer, schemaURI, keyword string, ok bool) {
		if ok || keyword == "if" {
			return
		}
		out = AppendIssues(out, newIssue(pointer, schemaURI, keyword, CodeOf(keyword), nil))
	})
	return out
}

// walk visits every assertion in order.
func (r *Results) walk(fn func(pointer, schemaURI, keyword string, ok bool)) {
	for _, p := range sortedKeys(r.trace) {
		bySchema := r.trace[p]
		for _, u := range sortedKeys(bySchema) {
			byKeyword := bySchema[u]
			for _, kw := range sortedKeys(byKeyword) {
				fn(p, u, kw, byKeyword[kw])
			}
		}
	}
}

func newIssue(pointer, schemaURI, keyword, code string, cause error) Issue {
	data := map[string]string{}
	var params map[string]any
	if keyword != "" {
		data["keyword"] = keyword
		params = map[string]any{"keyword": keyword}
	}
	return Issue{
		Path:    pointer,
		Code:    code,
		Message: i18n.T(code, data),
		Cause:   cause,
		Params:  params,
		Rule:    schemaURI,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
