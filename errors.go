package jsonskema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType     = "invalid_type"
	CodeRequired        = "required"
	CodeUnknownKey      = "unknown_key"
	CodeInvalidKey      = "invalid_key"
	CodeTooSmall        = "too_small"
	CodeTooBig          = "too_big"
	CodeTooShort        = "too_short"
	CodeTooLong         = "too_long"
	CodePattern         = "pattern"
	CodeInvalidEnum     = "invalid_enum"
	CodeInvalidFormat   = "invalid_format"
	CodeInvalidEncoding = "invalid_encoding"
	CodeNotMultiple     = "not_multiple"
	CodeNotUnique       = "not_unique"
	CodeUnionAmbiguous  = "union_ambiguous"
	CodeUnionNoMatch    = "union_no_match"
	CodeNegation        = "negation"
	CodeDependency      = "dependency"
	CodeContainsMissing = "contains_missing"
	CodeCondition       = "condition"
	CodeSchemaFalse     = "schema_false"
	CodeInvalid         = "invalid"
)

// keywordCodes maps a failed keyword to its issue code. Keywords not listed
// report CodeInvalid.
var keywordCodes = map[string]string{
	"type":                 CodeInvalidType,
	"required":             CodeRequired,
	"additionalProperties": CodeUnknownKey,
	"additionalItems":      CodeUnknownKey,
	"propertyNames":        CodeInvalidKey,
	"minimum":              CodeTooSmall,
	"exclusiveMinimum":     CodeTooSmall,
	"maximum":              CodeTooBig,
	"exclusiveMaximum":     CodeTooBig,
	"minLength":            CodeTooShort,
	"minItems":             CodeTooShort,
	"minProperties":        CodeTooShort,
	"maxLength":            CodeTooLong,
	"maxItems":             CodeTooLong,
	"maxProperties":        CodeTooLong,
	"pattern":              CodePattern,
	"enum":                 CodeInvalidEnum,
	"const":                CodeInvalidEnum,
	"format":               CodeInvalidFormat,
	"contentEncoding":      CodeInvalidEncoding,
	"multipleOf":           CodeNotMultiple,
	"uniqueItems":          CodeNotUnique,
	"oneOf":                CodeUnionAmbiguous,
	"anyOf":                CodeUnionNoMatch,
	"not":                  CodeNegation,
	"dependencies":         CodeDependency,
	"contains":             CodeContainsMissing,
	"then":                 CodeCondition,
	"else":                 CodeCondition,
}

// CodeOf returns the issue code reported for a failed keyword.
func CodeOf(keyword string) string {
	if c, ok := keywordCodes[keyword]; ok {
		return c
	}
	return CodeInvalid
}

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer of the value (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, format names, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"keyword": "minimum"})
	// for i18n and observability.
	Params map[string]any
	// Rule records the URI of the schema that produced this issue.
	Rule string
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Schema construction sentinels, wrapped by *SchemaError.
var (
	ErrDuplicateIdentifier = errors.New("jsonskema: duplicate schema identifier")
	ErrUnsupportedDraft    = errors.New("jsonskema: unsupported $schema")
	ErrSchemaKeyword       = errors.New("jsonskema: invalid keyword value")
	ErrInvalidIdentifier   = errors.New("jsonskema: invalid $id")
	ErrSchemaNotFound      = errors.New("jsonskema: schema not found")
	ErrURIAlreadySet       = errors.New("jsonskema: schema URI already set")
	ErrNotSchema           = errors.New("jsonskema: not a schema")
	ErrUndefined           = errors.New("jsonskema: schema not defined")
)

// Resolution sentinels, wrapped by *ResolutionError.
var (
	ErrNotLoadable  = errors.New("jsonskema: schema not loadable")
	ErrCircularLoad = errors.New("jsonskema: circular schema load")
)

// SchemaError reports a schema document that cannot be built. URI and
// Pointer locate the offending schema; Keyword is set when a single keyword
// is at fault.
type SchemaError struct {
	URI     string
	Pointer string
	Keyword string
	Err     error
}

func (e *SchemaError) Error() string {
	b := &strings.Builder{}
	b.WriteString("jsonskema: schema")
	if e.URI != "" {
		fmt.Fprintf(b, " %s", e.URI)
	} else {
		fmt.Fprintf(b, " #%s", e.Pointer)
	}
	if e.Keyword != "" {
		fmt.Fprintf(b, " (%s)", e.Keyword)
	}
	if e.Err != nil {
		fmt.Fprintf(b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ResolutionError reports a referenced schema that could not be obtained.
// Chain lists the documents being loaded, outermost first, when the failure
// happened during a nested load.
type ResolutionError struct {
	URI   string
	Chain []string
	Err   error
}

func (e *ResolutionError) Error() string {
	msg := "jsonskema: resolve " + e.URI
	if len(e.Chain) > 0 {
		msg += " (via " + strings.Join(e.Chain, " -> ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func schemaErr(s *Schema, keyword string, err error) *SchemaError {
	return &SchemaError{URI: s.URI(), Pointer: s.Pointer(), Keyword: keyword, Err: err}
}
