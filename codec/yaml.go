package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"

	"gopkg.in/yaml.v3"
)

// YAMLCodec is the YAML Encoder, backed by gopkg.in/yaml.v3.
type YAMLCodec struct{ opts options }

func YAML(opts ...Option) *YAMLCodec { return &YAMLCodec{opts: newOptions(opts)} }

func (c *YAMLCodec) Name() string { return "yaml" }

func (c *YAMLCodec) Encode(v any) ([]byte, error) {
	p, err := c.opts.prepare(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses exactly one YAML document.
func (c *YAMLCodec) Decode(data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
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

func (c *YAMLCodec) normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = c.normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			out[ks] = c.normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = c.normalize(item)
		}
		return out
	case int:
		return int64(t)
	case uint64:
		return new(big.Int).SetUint64(t)
	case float64:
		if c.opts.decimal {
			if r, ok := new(big.Rat).SetString(fmt.Sprint(t)); ok {
				return r
			}
		}
	}
	return v
}
