package jsonskema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reoring/jsonskema/codec"
	"github.com/reoring/jsonskema/uri"
	"github.com/reoring/jsonskema/value"
)

// RootSchema is a schema document and the graph of every schema in it,
// addressed by URI and by fragment pointer.
type RootSchema struct {
	*Schema
	support Support
	encoder codec.Encoder
	log     zerolog.Logger
	schemas map[string]*Schema
	stack   []*Schema
	defined bool
}

// New builds the schema graph for spec, a decoded schema document, whose
// base URI is initialBaseURI unless the document declares its own $id.
// Unless WithoutDefine is given, every schema is compiled before New
// returns.
func New(ctx context.Context, spec any, initialBaseURI string, support Support, opts ...Option) (*RootSchema, error) {
	if support == nil {
		return nil, errors.New("jsonskema: nil Support; use NewSupport()")
	}
	base, err := uri.AbsoluteURI(initialBaseURI)
	if err != nil {
		return nil, &SchemaError{URI: initialBaseURI, Err: fmt.Errorf("%w: initial base URI: %v", ErrInvalidIdentifier, err)}
	}
	o := newOptions(opts)
	r := &RootSchema{
		support: support,
		encoder: o.encoder,
		log:     o.logger,
		schemas: map[string]*Schema{},
	}
	s, err := newSchema(r, spec, newIdentifiers(base, nil), true)
	if err != nil {
		return nil, err
	}
	r.Schema = s
	s.root = r
	r.stack = []*Schema{s}
	if err := r.declare(s); err != nil {
		return nil, err
	}
	r.log.Debug().Str("uri", r.URI()).Int("schemas", len(r.schemas)).Msg("declared schema graph")
	if !o.define {
		return r, nil
	}
	if err := r.Define(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RootSchema) Support() Support        { return r.support }
func (r *RootSchema) Encoder() codec.Encoder  { return r.encoder }
func (r *RootSchema) Logger() *zerolog.Logger { return &r.log }

// declare registers s under its URI, its pointer and its reference from
// every enclosing base, then walks its members.
func (r *RootSchema) declare(s *Schema) error {
	if r.stack[len(r.stack)-1].BaseURI() != s.BaseURI() {
		r.stack = append(r.stack, s)
		defer func() { r.stack = r.stack[:len(r.stack)-1] }()
	}
	if u := s.URI(); u != "" {
		if _, dup := r.schemas[u]; dup {
			return schemaErr(s, "", fmt.Errorf("%w: %s", ErrDuplicateIdentifier, u))
		}
	}
	if _, dup := r.schemas[s.Ref()]; dup {
		return schemaErr(s, "", fmt.Errorf("%w: %s", ErrDuplicateIdentifier, s.Ref()))
	}
	if u := s.URI(); u != "" {
		r.schemas[u] = s
	}
	r.schemas[s.Ref()] = s
	for i := len(r.stack) - 1; i >= 0; i-- {
		scope := r.stack[i]
		rel, err := scope.RelativeRef(s)
		if err != nil {
			return schemaErr(s, "", err)
		}
		u := trimFragmentMarker(scope.BaseURI()) + rel
		if _, dup := r.schemas[u]; dup {
			return schemaErr(s, "", fmt.Errorf("%w: %s", ErrDuplicateIdentifier, u))
		}
		r.schemas[u] = s
		if s.URI() == "" {
			if err := s.ids.SetURI(u); err != nil {
				return schemaErr(s, "", err)
			}
		}
	}
	obj, ok := s.spec.(map[string]any)
	if !ok {
		return nil
	}
	for _, k := range sortedKeys(obj) {
		if err := r.walk(obj[k], s.BaseURI(), s.KeyPath().Append(k)); err != nil {
			return err
		}
	}
	return nil
}

// walk declares the schemas found in v, an element of the document at
// keyPath.
func (r *RootSchema) walk(v any, base string, keyPath uri.KeyPath) error {
	if b, ok := v.(bool); ok {
		s, err := newSchema(r, b, newIdentifiers(base, keyPath), false)
		if err != nil {
			return err
		}
		return r.declare(s)
	}
	if obj, ok := value.AsMap(v); ok {
		if !atSchema(keyPath) {
			for _, k := range sortedKeys(obj) {
				if err := r.walk(obj[k], base, keyPath.Append(k)); err != nil {
					return err
				}
			}
			return nil
		}
		if raw, ok := obj["$id"]; ok {
			id, isStr := raw.(string)
			if !isStr {
				return &SchemaError{Pointer: uri.Pointer(keyPath), Keyword: "$id", Err: fmt.Errorf("%w: $id is %T, not a string", ErrInvalidIdentifier, raw)}
			}
			grafted, err := uri.Graft(base, id)
			if err != nil {
				return &SchemaError{Pointer: uri.Pointer(keyPath), Keyword: "$id", Err: fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)}
			}
			base = grafted
		}
		s, err := newSchema(r, obj, newIdentifiers(base, keyPath), false)
		if err != nil {
			return err
		}
		return r.declare(s)
	}
	if items, ok := value.AsSlice(v); ok {
		for i, item := range items {
			if err := r.walk(item, base, keyPath.Append(strconv.Itoa(i))); err != nil {
				return err
			}
		}
	}
	return nil
}

// atSchema reports whether an object at keyPath is a schema rather than a
// map of schemas.
func atSchema(keyPath uri.KeyPath) bool {
	if len(keyPath) == 1 && keyPath[0] == "definitions" {
		return false
	}
	count := 0
	for i := len(keyPath) - 1; i >= 0; i-- {
		switch keyPath[i] {
		case "properties", "patternProperties", "dependencies":
			count++
			continue
		}
		break
	}
	return count%2 == 0
}

// Define compiles every declared schema that has no implementation yet.
func (r *RootSchema) Define(ctx context.Context) error {
	seen := map[*Schema]bool{}
	var all []*Schema
	for _, s := range r.schemas {
		if !seen[s] {
			seen[s] = true
			all = append(all, s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Pointer() < all[j].Pointer() })
	for _, s := range all {
		if s.impl != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.define(ctx, s); err != nil {
			return err
		}
	}
	for _, s := range all {
		if refCycle(s) {
			return schemaErr(s, "$ref", fmt.Errorf("%w: $ref chain never reaches a validator", ErrSchemaNotFound))
		}
	}
	r.defined = true
	r.log.Debug().Str("uri", r.URI()).Int("schemas", len(all)).Msg("defined schema graph")
	return nil
}

// refCycle reports whether following the $ref targets from s returns to a
// schema already visited.
func refCycle(s *Schema) bool {
	visited := map[*Schema]bool{}
	for cur := s; ; {
		if visited[cur] {
			return true
		}
		visited[cur] = true
		next, ok := cur.impl.(*Schema)
		if !ok || next == nil {
			return false
		}
		cur = next
	}
}

// Defined reports whether Define has completed.
func (r *RootSchema) Defined() bool { return r.defined }

func (r *RootSchema) define(ctx context.Context, s *Schema) error {
	if impl := r.support.Optimised(s.URI(), r); impl != nil {
		r.log.Debug().Str("uri", s.URI()).Msg("using optimised implementation")
		s.impl = impl
		return nil
	}
	switch s.spec {
	case true:
		s.impl = trueImpl{}
		return nil
	case false:
		s.impl = falseImpl{}
		return nil
	}
	if raw, ok := s.member("$ref"); ok {
		ref, isStr := raw.(string)
		if !isStr {
			return schemaErr(s, "$ref", fmt.Errorf("%w: $ref is %T, not a string", ErrSchemaKeyword, raw))
		}
		target, err := r.resolve(ctx, s, ref)
		if err != nil {
			return err
		}
		r.log.Debug().Str("uri", s.URI()).Str("ref", ref).Str("target", target.URI()).Msg("resolved reference")
		s.impl = target
		return nil
	}
	impl, err := r.compile(s)
	if err != nil {
		return err
	}
	s.impl = impl
	return nil
}

// resolve looks ref up as given, then resolved against the base URI of s.
func (r *RootSchema) resolve(ctx context.Context, s *Schema, ref string) (*Schema, error) {
	target, err := r.GetSchema(ctx, ref, true)
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, ErrSchemaNotFound) {
		return nil, err
	}
	resolved, rerr := uri.Resolve(s.BaseURI(), ref)
	if rerr != nil {
		return nil, schemaErr(s, "$ref", fmt.Errorf("%w: %v", ErrSchemaNotFound, rerr))
	}
	target, err = r.GetSchema(ctx, resolved, true)
	if errors.Is(err, ErrSchemaNotFound) {
		return nil, schemaErr(s, "$ref", err)
	}
	return target, err
}

// GetSchema returns the schema addressed by key, a URI or a fragment
// pointer. A key the graph does not contain is loaded through Support when
// it is an absolute URI and load is set.
func (r *RootSchema) GetSchema(ctx context.Context, key string, load bool) (*Schema, error) {
	if s, ok := r.schemas[key]; ok {
		return s, nil
	}
	doc, err := uri.Cast(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSchemaNotFound, key)
	}
	if _, ours := r.schemas[doc]; ours {
		return nil, fmt.Errorf("%w: %q", ErrSchemaNotFound, key)
	}
	if !load {
		return nil, &ResolutionError{URI: key, Err: ErrNotLoadable}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.log.Info().Str("uri", key).Msg("loading external schema")
	s, err := r.support.LoadSchema(ctx, key)
	if err != nil {
		r.log.Error().Err(err).Str("uri", key).Msg("external schema load failed")
		return nil, err
	}
	return s, nil
}

// subschema returns the declared schema at keys below s.
func (r *RootSchema) subschema(s *Schema, keys ...string) (*Schema, bool) {
	sub, ok := r.schemas[s.AbsoluteRef(keys...)]
	return sub, ok
}

// URIs lists the URI keys of the graph, sorted.
func (r *RootSchema) URIs() []string {
	var out []string
	for k := range r.schemas {
		if !strings.HasPrefix(k, "#") {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
