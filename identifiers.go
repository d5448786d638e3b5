package jsonskema

import (
	"fmt"
	"strings"

	"github.com/reoring/jsonskema/uri"
)

// Identifiers are the addresses of one schema: its key path from the root
// document, the equivalent JSON pointer, its base URI and its URI.
type Identifiers struct {
	contextBase string
	keyPath     uri.KeyPath
	pointer     string
	baseURI     string
	uri         string
}

func newIdentifiers(contextBase string, keyPath uri.KeyPath) *Identifiers {
	return &Identifiers{contextBase: contextBase, keyPath: keyPath, pointer: uri.Pointer(keyPath)}
}

func (ids *Identifiers) KeyPath() uri.KeyPath { return ids.keyPath }
func (ids *Identifiers) Pointer() string      { return ids.pointer }
func (ids *Identifiers) BaseURI() string      { return ids.baseURI }

// URI is empty until the schema is given one.
func (ids *Identifiers) URI() string { return ids.uri }

// SetURI assigns the URI once.
func (ids *Identifiers) SetURI(u string) error {
	if ids.uri != "" {
		return fmt.Errorf("%w: %q, not %q", ErrURIAlreadySet, ids.uri, u)
	}
	ids.uri = u
	return nil
}

// define checks id, the schema's $id or "", and derives the base URI and,
// for the root or a schema with an $id, the URI.
func (ids *Identifiers) define(id string, isRoot bool, support Support) error {
	if id != "" {
		if isRoot {
			if !uri.IsAbsolute(id) && !uri.IsAbsolute(strings.TrimRight(id, "#")) {
				return fmt.Errorf("%w: root $id %q is not absolute", ErrInvalidIdentifier, id)
			}
		} else {
			if !uri.IsReference(id) {
				return fmt.Errorf("%w: %q is not a URI reference", ErrInvalidIdentifier, id)
			}
			if uri.IsFragment(id) {
				if f, ok := support.Format("location-independent-$id"); ok && !f.Check(id) {
					return fmt.Errorf("%w: %q is not a location-independent identifier", ErrInvalidIdentifier, id)
				}
			}
		}
	}
	if !isRoot || id == "" {
		ids.baseURI = ids.contextBase
	} else {
		ids.baseURI = id
	}
	if isRoot || id != "" {
		p := uri.Split(ids.baseURI)
		p.Fragment = ""
		if strings.HasPrefix(id, "#") {
			p.Fragment = strings.TrimLeft(id, "#")
		}
		ids.uri = p.String()
	}
	return nil
}
