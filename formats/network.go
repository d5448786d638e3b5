package formats

import (
	"strings"

	"github.com/google/uuid"
)

const atextSpecials = "!#$%&'*+\\-/=?^_`{|}~"

var (
	asciiDotAtom = `[\w` + atextSpecials + `]+(\.[\w` + atextSpecials + `]+)*`
	idnDotAtom   = `[\p{L}\p{N}_` + atextSpecials + `]+(\.[\p{L}\p{N}_` + atextSpecials + `]+)*`
)

// Email accepts the RFC 5322 dot-atom form only: no comments or folding
// whitespace.
func Email() Format { return Strings("email", mustMatch(`^`+asciiDotAtom+`@`+asciiDotAtom+`$`)) }

// IdnEmail is Email with internationalized (RFC 6531) atoms.
func IdnEmail() Format { return Strings("idn-email", mustMatch(`^`+idnDotAtom+`@`+idnDotAtom+`$`)) }

// Hostname accepts RFC 1034 names of at most 253 characters, ignoring a
// trailing dot, and the root name ".".
func Hostname() Format {
	label := `([A-Za-z0-9]([A-Za-z0-9\-]{0,61}))?[A-Za-z0-9]`
	named := `((` + label + `\.)*(` + label + `\.?))`
	match := mustMatch(`^(` + named + `|\.)$`)
	return Strings("hostname", func(s string) bool {
		return match(s) && len(strings.TrimRight(s, ".")) <= 253
	})
}

func IPv4() Format {
	dec := `([0-9]|[1-9][0-9]|1[0-9][0-9]|2[0-4][0-9]|25[0-5])`
	return Strings("ipv4", mustMatch(`^((`+dec+`\.){3}`+dec+`)$`))
}

func IPv6() Format {
	expr := `((:|[0-9a-fA-F]{0,4}):)([0-9a-fA-F]{0,4}:){0,5}` +
		`((([0-9a-fA-F]{0,4}:)?(:|[0-9a-fA-F]{0,4}))|` +
		`(((25[0-5]|2[0-4][0-9]|[01]?[0-9]?[0-9])\.){3}` +
		`(25[0-5]|2[0-4][0-9]|[01]?[0-9]?[0-9])))`
	return Strings("ipv6", mustMatch(`^`+expr+`$`))
}

// UUID accepts the canonical 8-4-4-4-12 hexadecimal form.
func UUID() Format {
	return Strings("uuid", func(s string) bool {
		if len(s) != 36 {
			return false
		}
		_, err := uuid.Parse(s)
		return err == nil
	})
}
