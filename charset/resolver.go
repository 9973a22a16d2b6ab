package charset

import (
	"errors"
	"fmt"
	"slices"
)

// Config fixes the priority order used for Auto.
type Config struct {
	// Default is attempted first when encoding or decoding with Auto.
	Default Encoding

	// Alternate is attempted when Default fails.
	Alternate Encoding
}

// DefaultConfig returns Shift-JIS first, then Windows-1252.
func DefaultConfig() Config {
	return Config{Default: ShiftJIS, Alternate: Windows1252}
}

// Resolver picks encodings for entry names.
//
// A Resolver holds no mutable state and is safe for concurrent use.
type Resolver struct {
	cfg Config
}

// NewResolver validates cfg and returns a Resolver for it.
func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.Default == Auto || cfg.Alternate == Auto {
		return nil, errors.New("fsop: resolver encodings must be concrete")
	}
	if cfg.Default == cfg.Alternate {
		return nil, fmt.Errorf("fsop: resolver default and alternate are both %s", cfg.Default)
	}
	if !slices.Contains(All, cfg.Default) || !slices.Contains(All, cfg.Alternate) {
		return nil, fmt.Errorf("%w: %d/%d", ErrUnknownEncoding, cfg.Default, cfg.Alternate)
	}
	return &Resolver{cfg: cfg}, nil
}

// NewDefaultResolver returns a Resolver using DefaultConfig.
func NewDefaultResolver() *Resolver {
	return &Resolver{cfg: DefaultConfig()}
}

// Config returns the resolver's configuration.
func (r *Resolver) Config() Config {
	return r.cfg
}

// Encode converts text using hint. With Auto, the default encoding is tried
// first and the alternate only if some character is unrepresentable. The
// encoding actually used is returned.
func (r *Resolver) Encode(text string, hint Encoding) ([]byte, Encoding, error) {
	if hint != Auto {
		b, err := hint.Encode(text)
		return b, hint, err
	}
	b, err := r.cfg.Default.Encode(text)
	if err == nil {
		return b, r.cfg.Default, nil
	}
	if !errors.Is(err, ErrUnencodableText) {
		return nil, Auto, err
	}
	b, altErr := r.cfg.Alternate.Encode(text)
	if altErr != nil {
		return nil, Auto, fmt.Errorf("%w (after %s: %v)", altErr, r.cfg.Default, err)
	}
	return b, r.cfg.Alternate, nil
}

// ReadBack returns the text that Decode with Auto produces for b and reports
// whether it equals text. Bytes written with the alternate encoding read back
// differently whenever they also form valid default-encoding text.
func (r *Resolver) ReadBack(b []byte, text string) (string, bool) {
	d, err := r.Decode(b, Auto)
	if err != nil {
		return "", false
	}
	return d.Text, d.Text == text
}

// Decoded is the outcome of Resolver.Decode.
type Decoded struct {
	// Text is the decoded name.
	Text string

	// Encoding is the encoding that produced Text.
	Encoding Encoding

	// Ambiguous reports that, under Auto, the alternate encoding also
	// accepted the bytes but produced different text. Text still holds the
	// default reading.
	Ambiguous bool

	// AlternateText is the alternate reading when Ambiguous is set.
	AlternateText string
}

// Decode converts bytes to text. An explicit hint decodes strictly with that
// encoding. With Auto, the default encoding is tried first and the alternate
// second; if neither accepts the bytes the error wraps ErrUndecodableBytes.
func (r *Resolver) Decode(b []byte, hint Encoding) (Decoded, error) {
	if hint != Auto {
		s, err := hint.Decode(b)
		if err != nil {
			return Decoded{}, err
		}
		return Decoded{Text: s, Encoding: hint}, nil
	}

	s, err := r.cfg.Default.Decode(b)
	alt, altErr := r.cfg.Alternate.Decode(b)
	switch {
	case err == nil:
		d := Decoded{Text: s, Encoding: r.cfg.Default}
		if altErr == nil && alt != s {
			d.Ambiguous = true
			d.AlternateText = alt
		}
		return d, nil
	case altErr == nil:
		return Decoded{Text: alt, Encoding: r.cfg.Alternate}, nil
	default:
		return Decoded{}, fmt.Errorf("%w: % x is neither %s nor %s", ErrUndecodableBytes, b, r.cfg.Default, r.cfg.Alternate)
	}
}
