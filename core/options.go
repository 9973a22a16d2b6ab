package fsop

import (
	"log/slog"
	"strings"

	"github.com/meigma/fsop/charset"
)

// DefaultExtension is the file extension given to extracted shader blobs.
const DefaultExtension = "fxc"

// Format selects the container layout.
type Format uint8

const (
	// FormatTable is the versioned header + table + data layout.
	FormatTable Format = iota

	// FormatStream is the headerless layout of older FOX Engine
	// tooling: length-prefixed names and XOR-masked blobs.
	FormatStream

	// FormatAuto picks FormatTable when the magic is present and
	// FormatStream otherwise. It is only meaningful when decoding.
	FormatAuto
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatTable:
		return "table"
	case FormatStream:
		return "stream"
	case FormatAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "", "table":
		return FormatTable, true
	case "stream", "legacy":
		return FormatStream, true
	case "auto":
		return FormatAuto, true
	default:
		return FormatTable, false
	}
}

type config struct {
	resolver   *charset.Resolver
	hint       charset.Encoding
	format     Format
	formatSet  bool
	maxEntries uint64
	noDedup    bool
	ext        string
	logger     *slog.Logger
}

// Option configures encoding and decoding.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{
		maxEntries: MaxEntries,
		ext:        DefaultExtension,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.resolver == nil {
		cfg.resolver = charset.NewDefaultResolver()
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

// WithResolver sets the resolver used for entry names.
// The default is charset.NewDefaultResolver.
func WithResolver(r *charset.Resolver) Option {
	return func(c *config) {
		c.resolver = r
	}
}

// WithEncodingHint forces the encoding used to decode entry names.
// The default, charset.Auto, detects it per entry.
func WithEncodingHint(e charset.Encoding) Option {
	return func(c *config) {
		c.hint = e
	}
}

// WithFormat selects the container layout (default FormatTable).
// Pack treats FormatAuto as a request to follow the manifest's Layout.
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
		c.formatSet = true
	}
}

// WithMaxEntries lowers the entry limit below MaxEntries.
// Zero restores the default.
func WithMaxEntries(n uint64) Option {
	return func(c *config) {
		if n == 0 || n > MaxEntries {
			n = MaxEntries
		}
		c.maxEntries = n
	}
}

// WithDedup controls whether identical blobs share one data range
// (default true).
func WithDedup(enabled bool) Option {
	return func(c *config) {
		c.noDedup = !enabled
	}
}

// WithExtension sets the extension of synthesized shader file names,
// without the leading dot (default DefaultExtension).
func WithExtension(ext string) Option {
	return func(c *config) {
		if ext = strings.TrimPrefix(ext, "."); ext != "" {
			c.ext = ext
		}
	}
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
