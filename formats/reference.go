package formats

import (
	"regexp"

	"github.com/reoring/jsonskema/uri"
)

const (
	referenceToken      = `([^~/]|~[01])*`
	jsonPointer         = `(/` + referenceToken + `)*`
	relativeJSONPointer = `(0|[1-9][0-9]*)(#|` + jsonPointer + `)`
)

// LocationIndependentID accepts plain-name fragments usable as a
// location-independent $id.
func LocationIndependentID() Format {
	return Strings("location-independent-$id", mustMatch(`^#[A-Za-z][A-Za-z0-9\-_:.]*$`))
}

func URI() Format {
	return Strings("uri", func(s string) bool {
		return uri.Split(s).Scheme != "" && uri.IsReference(s)
	})
}

func URIReference() Format { return Strings("uri-reference", uri.IsReference) }

func JSONPointer() Format {
	return Strings("json-pointer", mustMatch(`^`+jsonPointer+`$`))
}

func RelativeJSONPointer() Format {
	return Strings("relative-json-pointer", mustMatch(`^`+relativeJSONPointer+`$`))
}

// Regex accepts strings that compile as regular expressions. Go's RE2
// syntax is the dialect checked.
func Regex() Format {
	return Strings("regex", func(s string) bool {
		_, err := regexp.Compile(s)
		return err == nil
	})
}
