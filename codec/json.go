package codec

import (
	"bytes"
	"errors"
	"io"
	"math/big"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/jsonskema/internal/dupkey"
)

// JSONCodec is the JSON Encoder, backed by goccy/go-json.
type JSONCodec struct{ opts options }

func JSON(opts ...Option) *JSONCodec { return &JSONCodec{opts: newOptions(opts)} }

func (c *JSONCodec) Name() string { return "json" }

func (c *JSONCodec) Encode(v any) ([]byte, error) {
	p, err := c.opts.prepare(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// Decode parses exactly one JSON value.
func (c *JSONCodec) Decode(data []byte) (any, error) {
	if c.opts.rejectDups {
		d, err := dupkey.Find(data)
		if err != nil {
			return nil, err
		}
		if d != nil {
			return nil, &DuplicateError{Pointer: d.Pointer, Key: d.Key}
		}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return c.normalize(v), nil
}

func (c *JSONCodec) normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		return c.number(string(t))
	case map[string]any:
		for k, item := range t {
			t[k] = c.normalize(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = c.normalize(item)
		}
		return t
	}
	return v
}

func (c *JSONCodec) number(s string) any {
	if !strings.ContainsAny(s, ".eE") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if n, ok := new(big.Int).SetString(s, 10); ok {
			return n
		}
	}
	if c.opts.decimal {
		if r, ok := new(big.Rat).SetString(s); ok {
			return r
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// out of float range; keep the exact value
		if r, ok := new(big.Rat).SetString(s); ok {
			return r
		}
	}
	return f
}
