package fsop

import (
	"log/slog"
	"runtime"
	"strings"

	"github.com/meigma/fsop/charset"
	fsopcore "github.com/meigma/fsop/core"
	"github.com/meigma/fsop/manifest"
)

// Option configures PackDir, UnpackFile, Inspect and Batch.
type Option func(*config)

type config struct {
	logger         *slog.Logger
	progress       ProgressFunc
	overwrite      bool
	manifestName   string
	discover       bool
	updateManifest bool
	workers        int
	ext            string
	coreOpts       []fsopcore.Option
}

func newConfig(opts []Option) config {
	cfg := config{
		manifestName: manifest.DefaultName,
		ext:          fsopcore.DefaultExtension,
		workers:      runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// log returns the logger, falling back to a discard logger if nil.
func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

func (c *config) emit(ev ProgressEvent) {
	if c.progress != nil {
		c.progress(ev)
	}
}

// codecOpts returns the options passed to the core codec.
func (c *config) codecOpts() []fsopcore.Option {
	opts := make([]fsopcore.Option, 0, len(c.coreOpts)+2)
	opts = append(opts, fsopcore.WithLogger(c.logger), fsopcore.WithExtension(c.ext))
	return append(opts, c.coreOpts...)
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithProgress sets a callback for progress updates.
func WithProgress(fn ProgressFunc) Option {
	return func(c *config) {
		c.progress = fn
	}
}

// WithOverwrite allows existing output files to be replaced.
// Without it, an operation that would replace a file fails with fs.ErrExist
// before anything is written.
func WithOverwrite(enabled bool) Option {
	return func(c *config) {
		c.overwrite = enabled
	}
}

// WithManifestName sets the manifest file name inside an unpacked
// directory (default manifest.DefaultName). The extension selects the
// document format: .json, .yaml, .yml or .toml.
func WithManifestName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.manifestName = name
		}
	}
}

// WithDiscover makes PackDir append entries for shader files in the
// directory that the manifest does not reference.
func WithDiscover(enabled bool) Option {
	return func(c *config) {
		c.discover = enabled
	}
}

// WithUpdateManifest makes PackDir write discovered entries back to the
// manifest file.
func WithUpdateManifest(enabled bool) Option {
	return func(c *config) {
		c.updateManifest = enabled
	}
}

// WithWorkers sets how many Batch jobs run at once (default GOMAXPROCS).
// Values < 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = max(n, 1)
	}
}

// WithExtension sets the shader file extension, with or without the leading
// dot (default fxc).
func WithExtension(ext string) Option {
	return func(c *config) {
		if ext = strings.TrimPrefix(ext, "."); ext != "" {
			c.ext = ext
		}
	}
}

// --- Codec options (passed to core) ---

// WithResolver sets the resolver used for entry names.
func WithResolver(r *charset.Resolver) Option {
	return func(c *config) {
		c.coreOpts = append(c.coreOpts, fsopcore.WithResolver(r))
	}
}

// WithEncodingHint forces the encoding used to decode entry names.
func WithEncodingHint(e charset.Encoding) Option {
	return func(c *config) {
		c.coreOpts = append(c.coreOpts, fsopcore.WithEncodingHint(e))
	}
}

// WithFormat selects the container layout.
// Without it, or with FormatAuto, PackDir writes the layout named by the
// manifest's "format" key, and FormatTable when the key is absent.
// UnpackFile records a stream container's layout in that key.
func WithFormat(f fsopcore.Format) Option {
	return func(c *config) {
		c.coreOpts = append(c.coreOpts, fsopcore.WithFormat(f))
	}
}

// WithMaxEntries limits how many entries a container may hold.
func WithMaxEntries(n uint64) Option {
	return func(c *config) {
		c.coreOpts = append(c.coreOpts, fsopcore.WithMaxEntries(n))
	}
}

// WithDedup controls whether identical blobs share one data range.
func WithDedup(enabled bool) Option {
	return func(c *config) {
		c.coreOpts = append(c.coreOpts, fsopcore.WithDedup(enabled))
	}
}
