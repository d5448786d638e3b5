// Package uri implements the absolute-URI and URI-reference rules used to
// address schemas: splitting, absolute-URI canonicalization, and the graft
// and resolve operations applied to $id and $ref values.
package uri

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNotAbsolute = errors.New("uri: not an absolute URI")
	ErrNotRef      = errors.New("uri: not a URI reference")
	ErrURNGraft    = errors.New("uri: cannot graft a path onto a URN")
)

// RFC 3986 appendix B.
var splitRE = regexp.MustCompile(`^(([^:/?#]+):)?(//([^/?#]*))?([^?#]*)(\?([^#]*))?(#(.*))?$`)

var schemeRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*$`)

// Parts are the five components of a URI reference.
type Parts struct {
	Scheme       string
	Authority    string
	HasAuthority bool
	Path         string
	Query        string
	Fragment     string
}

// Split breaks s into its components. A leading token that is not a valid
// scheme is treated as part of the path.
func Split(s string) Parts {
	m := splitRE.FindStringSubmatch(s)
	if m == nil {
		return Parts{Path: s}
	}
	p := Parts{
		Scheme:       m[2],
		Authority:    m[4],
		HasAuthority: m[3] != "",
		Path:         m[5],
		Query:        m[7],
		Fragment:     m[9],
	}
	if p.Scheme != "" && !schemeRE.MatchString(p.Scheme) {
		rest := Split(s[len(p.Scheme)+1:])
		rest.Path = p.Scheme + ":" + rest.Path
		rest.Scheme = ""
		return rest
	}
	return p
}

// String joins the components. Empty query and fragment components are
// omitted.
func (p Parts) String() string {
	var b strings.Builder
	if p.Scheme != "" {
		b.WriteString(p.Scheme)
		b.WriteByte(':')
	}
	if p.HasAuthority || p.Authority != "" {
		b.WriteString("//")
		b.WriteString(p.Authority)
		if p.Path != "" && !strings.HasPrefix(p.Path, "/") {
			b.WriteByte('/')
		}
	}
	b.WriteString(p.Path)
	if p.Query != "" {
		b.WriteByte('?')
		b.WriteString(p.Query)
	}
	if p.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(p.Fragment)
	}
	return b.String()
}

// WithoutFragment returns s with any fragment removed.
func WithoutFragment(s string) string {
	p := Split(s)
	p.Fragment = ""
	return p.String()
}

// AbsoluteURI returns s if it is an absolute URI: it has a scheme, no
// fragment and does not end in '#'. Without an authority the scheme must be
// urn or file.
func AbsoluteURI(s string) (string, error) {
	p := Split(s)
	if p.Scheme == "" || p.Fragment != "" || strings.HasSuffix(s, "#") {
		return "", fmt.Errorf("%w: %q", ErrNotAbsolute, s)
	}
	if p.Authority == "" {
		switch strings.ToLower(p.Scheme) {
		case "urn", "file":
		default:
			return "", fmt.Errorf("%w: %q", ErrNotAbsolute, s)
		}
	}
	return s, nil
}

// IsAbsolute reports whether s is an absolute URI.
func IsAbsolute(s string) bool {
	_, err := AbsoluteURI(s)
	return err == nil
}

// Cast maps any URI to its absolute form by stripping the fragment.
func Cast(s string) (string, error) {
	return AbsoluteURI(WithoutFragment(s))
}

// IsReference reports whether s is a URI reference: either a URI or a
// relative reference.
func IsReference(s string) bool {
	p := Split(s)
	if p.Scheme != "" && ((p.Authority == "" && p.Path == "") || strings.HasPrefix(p.Path, "//")) {
		return false
	}
	return true
}

// IsFragment reports whether s consists solely of a non-empty fragment.
func IsFragment(s string) bool {
	p := Split(s)
	return p.Scheme == "" && p.Authority == "" && !p.HasAuthority && p.Path == "" && p.Query == "" && p.Fragment != ""
}

// Graft grafts src into the absolute URI dst. An absolute src is returned
// as is and a fragment src returns dst. Otherwise the last segment of dst's
// path is replaced by src's path; this fails for URN destinations.
func Graft(dst, src string) (string, error) {
	if _, err := AbsoluteURI(dst); err != nil {
		return "", err
	}
	if IsAbsolute(src) {
		return src, nil
	}
	if IsFragment(src) {
		return dst, nil
	}
	return graftPath(dst, src)
}

// Resolve resolves src against the absolute URI dst. A src that is absolute
// once its fragment is ignored is returned as is. A fragment src is appended
// to dst. Otherwise it behaves like Graft and keeps the fragment of src.
func Resolve(dst, src string) (string, error) {
	if _, err := AbsoluteURI(dst); err != nil {
		return "", err
	}
	if IsAbsolute(WithoutFragment(src)) {
		return src, nil
	}
	if IsFragment(src) {
		d := Split(dst)
		d.Fragment = strings.TrimPrefix(src, "#")
		return d.String(), nil
	}
	grafted, err := graftPath(dst, src)
	if err != nil {
		return "", err
	}
	g := Split(grafted)
	g.Fragment = Split(src).Fragment
	return g.String(), nil
}

func graftPath(dst, src string) (string, error) {
	d := Split(dst)
	if strings.EqualFold(d.Scheme, "urn") {
		return "", fmt.Errorf("%w: %q onto %q", ErrURNGraft, src, dst)
	}
	s := Split(src)
	elems := strings.Split(d.Path, "/")
	elems[len(elems)-1] = strings.TrimLeft(s.Path, "/")
	d.Path = strings.Join(elems, "/")
	return d.String(), nil
}
