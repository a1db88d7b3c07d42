package pipeline

import (
	"log/slog"

	"github.com/arloliu/fixvec/backend"
	"github.com/arloliu/fixvec/downsample"
	"github.com/arloliu/fixvec/format"
	"github.com/arloliu/fixvec/internal/logging"
	"github.com/arloliu/fixvec/internal/options"
)

// Defaults applied to every call unless overridden.
const (
	DefaultMethod      = downsample.MinMaxLTTBName
	DefaultBitWidth    = format.Width64
	DefaultPrecision   = 4
	DefaultCompression = backend.BitPackName
)

// Option configures a single Downsample call.
type Option = options.Option[*callConfig]

// PipelineOption configures a Pipeline at construction.
type PipelineOption = options.Option[*Pipeline]

type callConfig struct {
	method        string
	downsampler   downsample.Downsampler
	width         format.BitWidth
	precision     int
	compression   string
	backend       backend.Backend
	noCompression bool
	view          format.ViewMode
}

func defaultCallConfig() callConfig {
	return callConfig{
		method:      DefaultMethod,
		width:       DefaultBitWidth,
		precision:   DefaultPrecision,
		compression: DefaultCompression,
		view:        format.ViewCompressed,
	}
}

// WithMethod selects the downsampler by registered name.
func WithMethod(name string) Option {
	return options.NoError(func(c *callConfig) {
		c.method = name
		c.downsampler = nil
	})
}

// WithDownsampler uses d instead of a registered downsampler.
func WithDownsampler(d downsample.Downsampler) Option {
	return options.NoError(func(c *callConfig) {
		c.downsampler = d
	})
}

// WithBitWidth sets the component width of the output vectors.
func WithBitWidth(width format.BitWidth) Option {
	return options.NoError(func(c *callConfig) {
		c.width = width
	})
}

// WithPrecision sets the number of fractional digits kept in the output vectors.
func WithPrecision(precision int) Option {
	return options.NoError(func(c *callConfig) {
		c.precision = precision
	})
}

// WithCompression selects the backend by registered name. The name "none"
// leaves the vectors uncompressed.
func WithCompression(name string) Option {
	return options.NoError(func(c *callConfig) {
		c.compression = name
		c.backend = nil
		c.noCompression = false
	})
}

// WithBackend compresses the output vectors with b.
func WithBackend(b backend.Backend) Option {
	return options.NoError(func(c *callConfig) {
		c.backend = b
		c.noCompression = b == nil
	})
}

// WithoutCompression leaves the output vectors uncompressed.
func WithoutCompression() Option {
	return options.NoError(func(c *callConfig) {
		c.backend = nil
		c.noCompression = true
	})
}

// WithViewMode sets the view mode of the output vectors.
func WithViewMode(mode format.ViewMode) Option {
	return options.NoError(func(c *callConfig) {
		c.view = mode
	})
}

// WithDownsamplerRegistry resolves method names through r instead of the
// default registry.
func WithDownsamplerRegistry(r *downsample.Registry) PipelineOption {
	return options.NoError(func(p *Pipeline) {
		if r != nil {
			p.downsamplers = r
		}
	})
}

// WithBackendRegistry resolves compression names through r instead of the
// default registry.
func WithBackendRegistry(r *backend.Registry) PipelineOption {
	return options.NoError(func(p *Pipeline) {
		if r != nil {
			p.backends = r
		}
	})
}

// WithLogger sets the logger. Selections and compressions are logged at debug level.
func WithLogger(l *slog.Logger) PipelineOption {
	return options.NoError(func(p *Pipeline) {
		if l != nil {
			p.logger = &logging.Logger{Logger: l}
		}
	})
}
