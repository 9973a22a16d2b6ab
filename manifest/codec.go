package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/meigma/fsop/charset"
)

// Format identifies the text syntax of a manifest document.
type Format uint8

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return FormatJSON, fmt.Errorf("fsop: no manifest format for %q", path)
	}
}

// document is the on-disk shape shared by all formats.
type document struct {
	Shaders  []entryDoc `json:"shaders" yaml:"shaders" toml:"shaders"`
	Encoding string     `json:"encoding,omitempty" yaml:"encoding,omitempty" toml:"encoding,omitempty"`
	Format   string     `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty"`
	Info     string     `json:"_info,omitempty" yaml:"_info,omitempty" toml:"_info,omitempty"`
}

type entryDoc struct {
	Name             string `json:"name" yaml:"name" toml:"name"`
	VertexShaderFile string `json:"vertex_shader_file,omitempty" yaml:"vertex_shader_file,omitempty" toml:"vertex_shader_file,omitempty"`
	PixelShaderFile  string `json:"pixel_shader_file,omitempty" yaml:"pixel_shader_file,omitempty" toml:"pixel_shader_file,omitempty"`
	Encoding         string `json:"encoding,omitempty" yaml:"encoding,omitempty" toml:"encoding,omitempty"`
}

// Parse reads a manifest document. Malformed documents and unknown keys
// return an error wrapping ErrSyntax; documents that violate the manifest
// invariants return an error wrapping ErrSemantic.
//
// JSON and YAML documents may also be a bare list of entries.
func Parse(data []byte, f Format) (*Manifest, error) {
	var (
		doc document
		err error
	)
	switch f {
	case FormatJSON:
		err = decodeJSON(data, &doc)
	case FormatYAML:
		err = decodeYAML(data, &doc)
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&doc)
	default:
		return nil, fmt.Errorf("fsop: unsupported manifest format %d", f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSyntax, f, err)
	}
	return fromDocument(&doc)
}

func decodeJSON(data []byte, doc *document) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("empty document")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var err error
	if trimmed[0] == '[' {
		err = dec.Decode(&doc.Shaders)
	} else {
		err = dec.Decode(doc)
	}
	if err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after document")
	}
	return nil
}

func decodeYAML(data []byte, doc *document) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	if len(root.Content) == 0 {
		return errors.New("empty document")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if root.Content[0].Kind == yaml.SequenceNode {
		return dec.Decode(&doc.Shaders)
	}
	return dec.Decode(doc)
}

func fromDocument(doc *document) (*Manifest, error) {
	m := &Manifest{
		Layout:  doc.Format,
		Info:    doc.Info,
		Entries: make([]Entry, 0, len(doc.Shaders)),
	}
	enc, err := charset.Parse(doc.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest encoding: %v", ErrSemantic, err)
	}
	m.Encoding = enc

	for i, ed := range doc.Shaders {
		enc, err := charset.Parse(ed.Encoding)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d (%q): %v", ErrSemantic, i, ed.Name, err)
		}
		m.Entries = append(m.Entries, Entry{
			Name:             ed.Name,
			VertexShaderFile: ed.VertexShaderFile,
			PixelShaderFile:  ed.PixelShaderFile,
			Encoding:         enc,
		})
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Serialize writes m as a document in format f. Parse(Serialize(m)) yields a
// manifest equal to m for any m that passes Validate.
func Serialize(m *Manifest, f Format) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	doc := toDocument(m)

	switch f {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode json manifest: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml manifest: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml manifest: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		out, err := toml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode toml manifest: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("fsop: unsupported manifest format %d", f)
	}
}

func toDocument(m *Manifest) *document {
	doc := &document{
		Shaders: make([]entryDoc, 0, len(m.Entries)),
		Format:  m.Layout,
		Info:    m.Info,
	}
	if m.Encoding != charset.Auto {
		doc.Encoding = m.Encoding.String()
	}
	for i := range m.Entries {
		e := &m.Entries[i]
		ed := entryDoc{
			Name:             e.Name,
			VertexShaderFile: e.VertexShaderFile,
			PixelShaderFile:  e.PixelShaderFile,
		}
		if e.Encoding != charset.Auto {
			ed.Encoding = e.Encoding.String()
		}
		doc.Shaders = append(doc.Shaders, ed)
	}
	return doc
}
