package fsop

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/meigma/fsop/charset"
	"github.com/meigma/fsop/manifest"
)

// Pack reads the shader files referenced by m from fsys and encodes them in
// manifest order. File paths are resolved relative to the root of fsys.
//
// The layout is the one given by WithFormat. Without it, or with FormatAuto,
// m.Layout decides and an empty Layout means FormatTable.
//
// The returned ambiguities list names that Auto decoding will not read back
// unchanged (see charset.Resolver.ReadBack); Alternate holds the text they
// will read as.
//
// Pack fails with ErrMissingSourceFile when a referenced file cannot be read,
// and with ErrEntryLimitExceeded when m has more entries than allowed.
func Pack(m *manifest.Manifest, fsys fs.FS, opts ...Option) ([]byte, []Ambiguity, error) {
	cfg := newConfig(opts)
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}
	if uint64(len(m.Entries)) > cfg.maxEntries {
		return nil, nil, fmt.Errorf("%w: manifest has %d entries, limit %d", ErrEntryLimitExceeded, len(m.Entries), cfg.maxEntries)
	}

	shaders := make([]Shader, len(m.Entries))
	for i := range m.Entries {
		e := &m.Entries[i]
		s := Shader{Name: e.Name, Encoding: m.EncodingFor(e)}
		var err error
		if s.Vertex, err = readSource(fsys, e.VertexShaderFile); err != nil {
			return nil, nil, &EntryError{Index: i, Name: e.Name, Op: "pack", Err: err}
		}
		if s.Pixel, err = readSource(fsys, e.PixelShaderFile); err != nil {
			return nil, nil, &EntryError{Index: i, Name: e.Name, Op: "pack", Err: err}
		}
		shaders[i] = s
	}
	return encode(shaders, packFormat(m, &cfg), &cfg)
}

func packFormat(m *manifest.Manifest, cfg *config) Format {
	if cfg.formatSet && cfg.format != FormatAuto {
		return cfg.format
	}
	if m.Layout == manifest.LayoutStream {
		return FormatStream
	}
	return FormatTable
}

// readSource returns nil for an empty name and a non-nil slice otherwise.
func readSource(fsys fs.FS, name string) ([]byte, error) {
	if name == "" {
		return nil, nil
	}
	p := path.Clean(filepath.ToSlash(name))
	b, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMissingSourceFile, name, err)
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

// Archive is an unpacked container.
type Archive struct {
	// Manifest lists the entries in table order with synthesized file names.
	Manifest *manifest.Manifest

	// Shaders holds the decoded entries in table order.
	Shaders []Shader

	// Files maps each synthesized file name to its blob.
	Files map[string][]byte

	// Ambiguous lists names whose bytes were valid under both resolver
	// encodings; the default encoding's reading was used.
	Ambiguous []Ambiguity
}

// Unpack decodes a container and synthesizes a manifest for it. Each present
// blob is assigned a file name from ShaderFileName, so packing the manifest
// against the extracted files reproduces the container.
//
// An entry records its name encoding in the manifest only when it differs
// from the resolver's default, which is what Auto tries first on repack.
// Likewise the manifest's Layout is set only for stream containers.
func Unpack(data []byte, opts ...Option) (*Archive, error) {
	cfg := newConfig(opts)
	shaders, ambiguous, err := decode(data, &cfg)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		Manifest:  &manifest.Manifest{Entries: make([]manifest.Entry, len(shaders))},
		Shaders:   shaders,
		Files:     make(map[string][]byte, 2*len(shaders)),
		Ambiguous: ambiguous,
	}
	if decodeFormat(data, &cfg) == FormatStream {
		a.Manifest.Layout = manifest.LayoutStream
	}
	var stems stemAllocator
	for i := range shaders {
		s := &shaders[i]
		e := manifest.Entry{Name: s.Name, Encoding: EncodingOf(s.Encoding, cfg.resolver)}
		stem := stems.next(s.Name)
		if s.Vertex != nil {
			e.VertexShaderFile = ShaderFileName(stem, SlotVertex, cfg.ext)
			a.Files[e.VertexShaderFile] = s.Vertex
		}
		if s.Pixel != nil {
			e.PixelShaderFile = ShaderFileName(stem, SlotPixel, cfg.ext)
			a.Files[e.PixelShaderFile] = s.Pixel
		}
		a.Manifest.Entries[i] = e
	}
	return a, nil
}

// EncodingOf returns the manifest hint that reproduces enc, given the
// resolver's default.
func EncodingOf(enc charset.Encoding, r *charset.Resolver) charset.Encoding {
	if enc == r.Config().Default {
		return charset.Auto
	}
	return enc
}
