package fsop

import (
	"fmt"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/fsop/charset"
	"github.com/meigma/fsop/manifest"
)

// Shader is one decoded or to-be-encoded container entry.
//
// A nil Vertex or Pixel slice is an absent slot. A non-nil empty slice is a
// present, zero-length blob.
type Shader struct {
	// Name is the entry name as text.
	Name string

	// Encoding is the name's byte encoding. When encoding, it is the hint
	// passed to the resolver (charset.Auto to let it choose); when decoding,
	// it is the encoding that was detected or forced.
	Encoding charset.Encoding

	// Vertex is the vertex shader bytecode.
	Vertex []byte

	// Pixel is the pixel shader bytecode.
	Pixel []byte
}

// validateShaders enforces the entry invariants shared by every format.
func validateShaders(shaders []Shader, cfg *config) error {
	if uint64(len(shaders)) > cfg.maxEntries {
		return fmt.Errorf("%w: %d entries, limit %d", ErrEntryLimitExceeded, len(shaders), cfg.maxEntries)
	}
	seen := make(map[string]struct{}, len(shaders))
	for i := range shaders {
		s := &shaders[i]
		var err error
		switch _, dup := seen[s.Name]; {
		case s.Name == "":
			err = fmt.Errorf("%w: empty name", manifest.ErrSemantic)
		case dup:
			err = fmt.Errorf("%w: duplicate name", manifest.ErrSemantic)
		case s.Vertex == nil && s.Pixel == nil:
			err = fmt.Errorf("%w: neither vertex nor pixel shader present", manifest.ErrSemantic)
		}
		if err != nil {
			return &EntryError{Index: i, Name: s.Name, Op: "encode", Err: err}
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

// Encode builds a container from shaders in the configured format
// (FormatTable unless WithFormat says otherwise). The output depends only on
// the input: encoding the same shaders twice yields identical bytes.
func Encode(shaders []Shader, opts ...Option) ([]byte, error) {
	cfg := newConfig(opts)
	data, _, err := encode(shaders, cfg.format, &cfg)
	return data, err
}

func encode(shaders []Shader, format Format, cfg *config) ([]byte, []Ambiguity, error) {
	if format == FormatStream {
		return encodeStream(shaders, cfg)
	}
	return encodeTable(shaders, cfg)
}

// encodeName encodes the name of shaders[i]. When the bytes will not decode
// back to the same name under Auto, the returned Ambiguity carries the text
// they will read back as.
func encodeName(shaders []Shader, i int, cfg *config) ([]byte, *Ambiguity, error) {
	s := &shaders[i]
	name, used, err := cfg.resolver.Encode(s.Name, s.Encoding)
	if err != nil {
		return nil, nil, err
	}
	if used == cfg.resolver.Config().Default {
		return name, nil, nil
	}
	back, ok := cfg.resolver.ReadBack(name, s.Name)
	if ok {
		return name, nil, nil
	}
	cfg.log().Warn("entry name will not read back unchanged",
		"index", i,
		"name", s.Name,
		"encoding", used,
		"reads_as", back)
	return name, &Ambiguity{Index: i, Name: s.Name, Alternate: back}, nil
}

// dataBuilder accumulates the data section.
type dataBuilder struct {
	data  []byte
	blobs map[digest.Digest]span
}

func (d *dataBuilder) add(b []byte) (span, error) {
	if uint64(len(d.data))+uint64(len(b)) > maxDataSize {
		return span{}, fmt.Errorf("%w: data section exceeds %d bytes", ErrSizeOverflow, uint64(maxDataSize))
	}
	s := span{off: uint32(len(d.data)), len: uint32(len(b))}
	d.data = append(d.data, b...)
	return s, nil
}

// addBlob appends b unless an identical blob was already written.
func (d *dataBuilder) addBlob(b []byte) (span, error) {
	if b == nil {
		return span{}, nil
	}
	if d.blobs == nil || len(b) == 0 {
		return d.add(b)
	}
	key := digest.FromBytes(b)
	if s, ok := d.blobs[key]; ok {
		return s, nil
	}
	s, err := d.add(b)
	if err != nil {
		return span{}, err
	}
	d.blobs[key] = s
	return s, nil
}

func encodeTable(shaders []Shader, cfg *config) ([]byte, []Ambiguity, error) {
	if err := validateShaders(shaders, cfg); err != nil {
		return nil, nil, err
	}

	var db dataBuilder
	if !cfg.noDedup {
		db.blobs = make(map[digest.Digest]span)
	}
	var ambiguous []Ambiguity
	records := make([]record, len(shaders))
	for i := range shaders {
		s := &shaders[i]
		name, amb, err := encodeName(shaders, i, cfg)
		if err != nil {
			return nil, nil, &EntryError{Index: i, Name: s.Name, Op: "encode", Err: err}
		}
		if amb != nil {
			ambiguous = append(ambiguous, *amb)
		}
		rec, err := encodeRecord(&db, name, s)
		if err != nil {
			return nil, nil, &EntryError{Index: i, Name: s.Name, Op: "encode", Err: err}
		}
		records[i] = rec
		cfg.log().Debug("encoded entry", "index", i, "name", s.Name,
			"vertex_size", rec.vertex.len, "pixel_size", rec.pixel.len)
	}

	out := make([]byte, 0, HeaderSize+RecordSize*len(records)+len(db.data))
	out = header{version: Version, count: uint32(len(records))}.appendTo(out)
	for _, rec := range records {
		out = rec.appendTo(out)
	}
	out = append(out, db.data...)

	cfg.log().Debug("container encoded", "entries", len(records), "data_size", len(db.data), "size", len(out))
	return out, ambiguous, nil
}

func encodeRecord(db *dataBuilder, name []byte, s *Shader) (record, error) {
	var (
		rec record
		err error
	)
	if rec.name, err = db.add(name); err != nil {
		return record{}, err
	}
	if rec.vertex, err = db.addBlob(s.Vertex); err != nil {
		return record{}, err
	}
	if rec.pixel, err = db.addBlob(s.Pixel); err != nil {
		return record{}, err
	}
	return rec, nil
}
