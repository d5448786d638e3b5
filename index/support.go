package index

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	jsonskema "github.com/reoring/jsonskema"
	"github.com/reoring/jsonskema/uri"
)

// Support is a jsonskema.Support that loads external schemas from the
// documents of an Index. A loaded document is shared by every graph that
// references it. Support is safe for concurrent use; two goroutines loading
// the same document for the first time may both read it, and one result is
// kept.
type Support struct {
	jsonskema.Support

	fsys     fs.FS
	logger   zerolog.Logger
	rootOpts []jsonskema.Option

	mu    sync.RWMutex
	index Index
	roots map[string]*jsonskema.RootSchema
}

// loadChainKey carries the documents being loaded by the current call chain.
type loadChainKey struct{}

func loadChain(ctx context.Context) []string {
	chain, _ := ctx.Value(loadChainKey{}).([]string)
	return chain
}

// Option configures a Support.
type Option func(*Support)

// WithLogger sets the logger for document loads.
func WithLogger(l zerolog.Logger) Option { return func(s *Support) { s.logger = l } }

// WithRoot sets the options of the root schemas built for loaded documents.
func WithRoot(opts ...jsonskema.Option) Option {
	return func(s *Support) { s.rootOpts = append(s.rootOpts, opts...) }
}

// WithSupport sets the formats, encodings, traits and optimiser used for
// everything other than loading.
func WithSupport(opts ...jsonskema.SupportOption) Option {
	return func(s *Support) { s.Support = jsonskema.NewSupport(opts...) }
}

// NewSupport returns a Support loading the documents of idx from fsys.
func NewSupport(fsys fs.FS, idx Index, opts ...Option) *Support {
	s := &Support{
		Support: jsonskema.NewSupport(),
		fsys:    fsys,
		logger:  zerolog.Nop(),
		index:   idx,
		roots:   map[string]*jsonskema.RootSchema{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Index returns the current index.
func (s *Support) Index() Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// SetIndex replaces the index and forgets every loaded document.
func (s *Support) SetIndex(idx Index) {
	s.mu.Lock()
	s.index = idx
	s.roots = map[string]*jsonskema.RootSchema{}
	s.mu.Unlock()
}

func (s *Support) lookup(doc string) (file string, root *jsonskema.RootSchema, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, ok = s.index[doc]
	return file, s.roots[file], ok
}

func (s *Support) keep(file string, root *jsonskema.RootSchema) {
	s.mu.Lock()
	s.roots[file] = root
	s.mu.Unlock()
}

// LoadSchema loads the document indexed for uri and returns the schema it
// addresses. A document that is still being loaded when it is requested
// again is a circular load.
func (s *Support) LoadSchema(ctx context.Context, u string) (*jsonskema.Schema, error) {
	doc, err := uri.Cast(u)
	if err != nil {
		return nil, &jsonskema.ResolutionError{URI: u, Err: fmt.Errorf("%w: %v", jsonskema.ErrNotLoadable, err)}
	}
	file, root, ok := s.lookup(doc)
	if !ok {
		return nil, &jsonskema.ResolutionError{URI: u, Err: fmt.Errorf("%w: not in index", jsonskema.ErrNotLoadable)}
	}
	if root == nil {
		loading := loadChain(ctx)
		for _, f := range loading {
			if f == file {
				chain := append(append([]string(nil), loading...), file)
				s.logger.Error().Str("uri", u).Strs("chain", chain).Msg("circular schema load")
				return nil, &jsonskema.ResolutionError{URI: u, Chain: chain, Err: jsonskema.ErrCircularLoad}
			}
		}
		s.logger.Info().Str("uri", u).Str("path", file).Msg("loading schema document")
		nested := context.WithValue(ctx, loadChainKey{}, append(append([]string(nil), loading...), file))
		root, err = jsonskema.LoadFS(nested, s.fsys, file, s, s.rootOpts...)
		if err != nil {
			return nil, err
		}
		s.keep(file, root)
	}
	return root.GetSchema(ctx, u, false)
}

// Loaded lists the loaded documents in sorted order.
func (s *Support) Loaded() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.roots))
	for f := range s.roots {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
