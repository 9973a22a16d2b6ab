// Package manifest describes the shader entries of a container and the files
// holding their bytecode.
//
// A manifest is a structured text document: an ordered list of entries, each
// naming a shader and the vertex and pixel shader files that belong to it.
// Entry order is significant and is the order of the container's entry table.
// The package performs no file I/O.
package manifest

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/meigma/fsop/charset"
)

// DefaultName is the manifest file name written next to extracted shaders.
const DefaultName = "metadata.json"

// Sentinel errors for manifest handling.
var (
	// ErrSyntax is returned when a document is not well-formed.
	ErrSyntax = errors.New("fsop: manifest syntax error")

	// ErrSemantic is returned when a well-formed document describes an
	// invalid set of entries.
	ErrSemantic = errors.New("fsop: manifest semantic error")
)

// Entry is one named shader.
type Entry struct {
	// Name identifies the shader and is unique within a manifest.
	Name string

	// VertexShaderFile is the relative path of the vertex shader blob.
	// Empty means the entry has no vertex shader.
	VertexShaderFile string

	// PixelShaderFile is the relative path of the pixel shader blob.
	// Empty means the entry has no pixel shader.
	PixelShaderFile string

	// Encoding overrides the manifest-level encoding for this entry's name.
	Encoding charset.Encoding
}

// HasVertex reports whether the entry references a vertex shader file.
func (e *Entry) HasVertex() bool { return e.VertexShaderFile != "" }

// HasPixel reports whether the entry references a pixel shader file.
func (e *Entry) HasPixel() bool { return e.PixelShaderFile != "" }

// Container layouts a manifest can request with its "format" key.
const (
	LayoutTable  = "table"
	LayoutStream = "stream"
)

// Manifest is an ordered list of shader entries.
type Manifest struct {
	// Encoding is the default name encoding for entries without their own.
	Encoding charset.Encoding

	// Layout is the container layout to pack into, LayoutTable or
	// LayoutStream. Empty means the packer's default.
	Layout string

	// Info is a free-form note carried in the document's "_info" key.
	Info string

	// Entries in container table order.
	Entries []Entry
}

// EncodingFor returns the effective encoding hint for e.
func (m *Manifest) EncodingFor(e *Entry) charset.Encoding {
	if e.Encoding != charset.Auto {
		return e.Encoding
	}
	return m.Encoding
}

// Lookup returns the entry with the given name.
func (m *Manifest) Lookup(name string) (*Entry, bool) {
	for i := range m.Entries {
		if m.Entries[i].Name == name {
			return &m.Entries[i], true
		}
	}
	return nil, false
}

// Files returns the set of shader file paths referenced by the manifest.
func (m *Manifest) Files() map[string]struct{} {
	files := make(map[string]struct{}, 2*len(m.Entries))
	for i := range m.Entries {
		if f := m.Entries[i].VertexShaderFile; f != "" {
			files[f] = struct{}{}
		}
		if f := m.Entries[i].PixelShaderFile; f != "" {
			files[f] = struct{}{}
		}
	}
	return files
}

// Validate checks the manifest invariants: every entry has a unique,
// non-empty name and at least one shader file, every file path is local to
// the manifest's directory, and Layout is empty or a known layout.
func (m *Manifest) Validate() error {
	switch m.Layout {
	case "", LayoutTable, LayoutStream:
	default:
		return fmt.Errorf("%w: unknown container format %q", ErrSemantic, m.Layout)
	}
	seen := make(map[string]int, len(m.Entries))
	for i := range m.Entries {
		e := &m.Entries[i]
		if e.Name == "" {
			return fmt.Errorf("%w: entry %d has an empty name", ErrSemantic, i)
		}
		if prev, ok := seen[e.Name]; ok {
			return fmt.Errorf("%w: entry %d duplicates name %q of entry %d", ErrSemantic, i, e.Name, prev)
		}
		seen[e.Name] = i
		if !e.HasVertex() && !e.HasPixel() {
			return fmt.Errorf("%w: entry %d (%q) has neither vertex_shader_file nor pixel_shader_file", ErrSemantic, i, e.Name)
		}
		for _, f := range []string{e.VertexShaderFile, e.PixelShaderFile} {
			if f != "" && !filepath.IsLocal(filepath.FromSlash(f)) {
				return fmt.Errorf("%w: entry %d (%q) references non-local file %q", ErrSemantic, i, e.Name, f)
			}
		}
	}
	return nil
}
