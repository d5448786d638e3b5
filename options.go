package jsonskema

import (
	"github.com/rs/zerolog"

	"github.com/reoring/jsonskema/codec"
)

type options struct {
	encoder codec.Encoder
	logger  zerolog.Logger
	define  bool
}

// Option configures New.
type Option func(*options)

// WithEncoder sets the codec used by Schema.Encode and Schema.Decode. The
// default is codec.JSON().
func WithEncoder(e codec.Encoder) Option { return func(o *options) { o.encoder = e } }

// WithLogger sets the logger for graph construction events.
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.logger = l } }

// WithoutDefine stops New after declaring the graph; call Define to finish.
func WithoutDefine() Option { return func(o *options) { o.define = false } }

func newOptions(opts []Option) options {
	o := options{encoder: codec.JSON(), logger: zerolog.Nop(), define: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
