// Package dupkey finds duplicate object member names in JSON text. Decoding
// into a map silently keeps the last duplicate, so schema documents are
// scanned token by token first.
package dupkey

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/reoring/jsonskema/uri"
)

// Duplicate locates a repeated member name.
type Duplicate struct {
	// Pointer addresses the object holding the repeated name.
	Pointer string
	Key     string
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	// key is the member being read, or the next array index
	key   string
	index int
}

type scanner struct {
	stack []frame
}

func (s *scanner) path() uri.KeyPath {
	kp := make(uri.KeyPath, 0, len(s.stack))
	for i, f := range s.stack {
		if i == len(s.stack)-1 {
			break
		}
		if f.kind == kindObject {
			kp = append(kp, f.key)
		} else {
			kp = append(kp, strconv.Itoa(f.index))
		}
	}
	return kp
}

// valueDone advances the enclosing container past a complete value.
func (s *scanner) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject {
			top.expectingKey = true
		} else {
			top.index++
		}
	}
}

// Find returns the first duplicate member name in data, or nil. Syntax
// errors are returned as is.
func Find(data []byte) (*Duplicate, error) {
	return FindReader(bytes.NewReader(data))
}

// FindReader is Find over a reader; the reader is consumed.
func FindReader(r io.Reader) (*Duplicate, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	s := &scanner{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		switch v := tok.(type) {
		case j.Delim:
			switch v {
			case '{':
				s.stack = append(s.stack, frame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true})
			case '[':
				s.stack = append(s.stack, frame{kind: kindArray})
			case '}', ']':
				if n := len(s.stack); n > 0 {
					s.stack = s.stack[:n-1]
				}
				s.valueDone()
			}
		case string:
			if n := len(s.stack); n > 0 {
				top := &s.stack[n-1]
				if top.kind == kindObject && top.expectingKey {
					if _, ok := top.keys[v]; ok {
						return &Duplicate{Pointer: uri.Pointer(s.path()), Key: v}, nil
					}
					top.keys[v] = struct{}{}
					top.key = v
					top.expectingKey = false
					continue
				}
			}
			s.valueDone()
		default:
			s.valueDone()
		}
	}
}
