// Package charset encodes and decodes shader entry names.
//
// Container entry names carry no marker of their byte encoding. Names written
// by the game toolchain are Shift-JIS, while hand-edited containers often
// use a Western single-byte code page. A Resolver applies a fixed priority
// order so the same bytes always decode to the same text.
package charset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// Sentinel errors for name encoding.
var (
	// ErrUnencodableText is returned when text contains characters that the
	// requested encoding cannot represent.
	ErrUnencodableText = errors.New("fsop: unencodable text")

	// ErrUndecodableBytes is returned when bytes are not valid in any of the
	// attempted encodings.
	ErrUndecodableBytes = errors.New("fsop: undecodable bytes")

	// ErrUnknownEncoding is returned by Parse for identifiers outside the
	// supported set.
	ErrUnknownEncoding = errors.New("fsop: unknown encoding")
)

// Encoding identifies a byte encoding for entry names.
type Encoding uint8

const (
	// Auto selects the resolver's priority order.
	Auto Encoding = iota
	ASCII
	ShiftJIS
	Windows1252
	UTF8
)

// All lists the concrete encodings in a stable order.
var All = []Encoding{ASCII, ShiftJIS, Windows1252, UTF8}

// String returns the canonical identifier used in manifests.
func (e Encoding) String() string {
	switch e {
	case Auto:
		return "auto"
	case ASCII:
		return "ascii"
	case ShiftJIS:
		return "shift-jis"
	case Windows1252:
		return "windows-1252"
	case UTF8:
		return "utf-8"
	default:
		return "unknown"
	}
}

// Parse maps an identifier to an Encoding. Matching is case-insensitive and
// accepts common aliases. The empty string is Auto.
func Parse(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "ascii", "us-ascii":
		return ASCII, nil
	case "shift-jis", "shift_jis", "sjis", "cp932", "ms932":
		return ShiftJIS, nil
	case "windows-1252", "cp1252", "latin-1", "latin1", "iso-8859-1":
		return Windows1252, nil
	case "utf-8", "utf8":
		return UTF8, nil
	default:
		return Auto, fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
	}
}

// Encode converts text to bytes in e. Any character e cannot represent is an
// error; nothing is substituted.
func (e Encoding) Encode(text string) ([]byte, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: %q is not valid UTF-8", ErrUnencodableText, text)
	}
	if i := strings.IndexRune(text, utf8.RuneError); i >= 0 {
		return nil, fmt.Errorf("%w: replacement character at byte %d of %q", ErrUnencodableText, i, text)
	}

	switch e {
	case ASCII:
		for i, r := range text {
			if r >= utf8.RuneSelf {
				return nil, unencodable(e, text, i, r)
			}
		}
		return []byte(text), nil
	case UTF8:
		return []byte(text), nil
	case ShiftJIS, Windows1252:
		return e.encodeWith(text)
	default:
		return nil, fmt.Errorf("%w: cannot encode with %s", ErrUnknownEncoding, e)
	}
}

func (e Encoding) encodeWith(text string) ([]byte, error) {
	if e == Windows1252 {
		// C1 controls only round-trip through the five undefined code points.
		for i, r := range text {
			if isC1(r) {
				return nil, unencodable(e, text, i, r)
			}
		}
	}
	out, err := e.codec().NewEncoder().Bytes([]byte(text))
	if err == nil {
		return out, nil
	}
	enc := e.codec().NewEncoder()
	for i, r := range text {
		if _, rerr := enc.String(string(r)); rerr != nil {
			return nil, unencodable(e, text, i, r)
		}
	}
	return nil, fmt.Errorf("%w: %q in %s: %v", ErrUnencodableText, text, e, err)
}

// Decode converts bytes in e to text. Malformed sequences, undefined code
// points and replacement characters are errors.
func (e Encoding) Decode(b []byte) (string, error) {
	switch e {
	case ASCII:
		for i, c := range b {
			if c >= utf8.RuneSelf {
				return "", undecodable(e, b, i)
			}
		}
		return string(b), nil
	case UTF8:
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: % x is not valid %s", ErrUndecodableBytes, b, e)
		}
		s := string(b)
		if i := strings.IndexRune(s, utf8.RuneError); i >= 0 {
			return "", undecodable(e, b, i)
		}
		return s, nil
	case ShiftJIS, Windows1252:
		out, err := e.codec().NewDecoder().Bytes(b)
		if err != nil {
			return "", fmt.Errorf("%w: % x is not valid %s: %v", ErrUndecodableBytes, b, e, err)
		}
		s := string(out)
		for _, r := range s {
			if r == utf8.RuneError || (e == Windows1252 && isC1(r)) {
				return "", fmt.Errorf("%w: % x is not valid %s", ErrUndecodableBytes, b, e)
			}
		}
		return s, nil
	default:
		return "", fmt.Errorf("%w: cannot decode with %s", ErrUnknownEncoding, e)
	}
}

func (e Encoding) codec() encoding.Encoding {
	if e == ShiftJIS {
		return japanese.ShiftJIS
	}
	return charmap.Windows1252
}

func isC1(r rune) bool {
	return r >= 0x80 && r <= 0x9f
}

func unencodable(e Encoding, text string, i int, r rune) error {
	return fmt.Errorf("%w: %q at byte %d of %q is not representable in %s", ErrUnencodableText, r, i, text, e)
}

func undecodable(e Encoding, b []byte, i int) error {
	return fmt.Errorf("%w: byte %#02x at offset %d of % x is not valid %s", ErrUndecodableBytes, b[i], i, b, e)
}
