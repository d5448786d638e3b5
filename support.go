package jsonskema

import (
	"context"

	"github.com/reoring/jsonskema/formats"
)

// Support supplies what a schema graph needs from its environment: traits
// attached to the containers a schema forms, the format and encoding
// registries, optimised implementations and the loading of schemas the
// graph does not contain.
type Support interface {
	// Traits returns the capability values attached to containers formed by
	// the schema with the given URI.
	Traits(uri string) []any
	Format(name string) (formats.Format, bool)
	Encoding(name string) (formats.Encoding, bool)
	// Optimised returns an implementation to use in place of compiling the
	// schema with the given URI, or nil.
	Optimised(uri string, root *RootSchema) Implementation
	// LoadSchema returns the schema addressed by an absolute URI that is not
	// part of the requesting graph.
	LoadSchema(ctx context.Context, uri string) (*Schema, error)
}

// Optimiser substitutes hand-written implementations for schemas.
type Optimiser interface {
	Optimised(uri string, root *RootSchema) Implementation
}

// Loader obtains schemas outside the requesting graph.
type Loader func(ctx context.Context, uri string) (*Schema, error)

type support struct {
	traits    map[string][]any
	formats   map[string]formats.Format
	encodings map[string]formats.Encoding
	optimiser Optimiser
	loader    Loader
}

// SupportOption configures NewSupport.
type SupportOption func(*support)

// WithFormats adds formats, replacing defaults of the same name. Use
// formats.Disabled to switch a default off.
func WithFormats(fs ...formats.Format) SupportOption {
	return func(s *support) {
		for _, f := range fs {
			s.formats[f.Name()] = f
		}
	}
}

// WithEncodings adds encodings, replacing defaults of the same name.
func WithEncodings(es ...formats.Encoding) SupportOption {
	return func(s *support) {
		for _, e := range es {
			s.encodings[e.Name()] = e
		}
	}
}

// WithTraits attaches traits to containers formed by the schema at uri.
func WithTraits(uri string, traits ...any) SupportOption {
	return func(s *support) { s.traits[uri] = append(s.traits[uri], traits...) }
}

func WithOptimiser(o Optimiser) SupportOption {
	return func(s *support) { s.optimiser = o }
}

// WithLoader sets how schemas outside the graph are loaded. Without one,
// loading fails with ErrNotLoadable.
func WithLoader(l Loader) SupportOption {
	return func(s *support) { s.loader = l }
}

// NewSupport returns an immutable Support with the default formats and
// encodings.
func NewSupport(opts ...SupportOption) Support {
	s := &support{
		traits:    map[string][]any{},
		formats:   formats.Defaults(),
		encodings: formats.DefaultEncodings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *support) Traits(uri string) []any { return append([]any(nil), s.traits[uri]...) }

func (s *support) Format(name string) (formats.Format, bool) {
	f, ok := s.formats[name]
	return f, ok
}

func (s *support) Encoding(name string) (formats.Encoding, bool) {
	e, ok := s.encodings[name]
	return e, ok
}

func (s *support) Optimised(uri string, root *RootSchema) Implementation {
	if s.optimiser == nil {
		return nil
	}
	return s.optimiser.Optimised(uri, root)
}

func (s *support) LoadSchema(ctx context.Context, uri string) (*Schema, error) {
	if s.loader == nil {
		return nil, &ResolutionError{URI: uri, Err: ErrNotLoadable}
	}
	return s.loader(ctx, uri)
}

// Dispatch is an Implementation that selects the schema to apply from the
// value itself, typically by inspecting a discriminating member.
type Dispatch func(v any) (*Schema, error)

func (d Dispatch) Call(v any) (any, error) {
	s, err := d(v)
	if err != nil {
		return nil, err
	}
	return s.Call(v)
}

func (d Dispatch) Cast(v any) (any, error) {
	s, err := d(v)
	if err != nil {
		return nil, err
	}
	return s.Cast(v)
}

// Debug reports false without recording when no schema is selected.
func (d Dispatch) Debug(v any, r *Results) bool {
	s, err := d(v)
	if err != nil {
		return false
	}
	return s.Debug(v, r)
}

// OptimiserFunc adapts a function to the Optimiser interface.
type OptimiserFunc func(uri string, root *RootSchema) Implementation

func (f OptimiserFunc) Optimised(uri string, root *RootSchema) Implementation {
	return f(uri, root)
}
