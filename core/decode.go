package fsop

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/meigma/fsop/manifest"
)

// Ambiguity records an entry name whose bytes have two readings. When
// decoding, Name is the default encoding's reading and Alternate the other
// encoding's. When packing, Name is the name as written and Alternate the
// text Auto decoding will produce instead.
type Ambiguity struct {
	Index     int
	Name      string
	Alternate string
}

// Sniff reports the layout of data: FormatTable when it starts with Magic,
// FormatStream otherwise.
func Sniff(data []byte) Format {
	if bytes.HasPrefix(data, []byte(Magic)) {
		return FormatTable
	}
	return FormatStream
}

// Decode parses a container. The whole container is validated before any
// entry is returned; on error no entries are returned.
//
// Blob slices alias data, which must not be modified while they are in use.
func Decode(data []byte, opts ...Option) ([]Shader, error) {
	cfg := newConfig(opts)
	shaders, _, err := decode(data, &cfg)
	return shaders, err
}

func decodeFormat(data []byte, cfg *config) Format {
	if cfg.format == FormatAuto {
		return Sniff(data)
	}
	return cfg.format
}

func decode(data []byte, cfg *config) ([]Shader, []Ambiguity, error) {
	format := decodeFormat(data, cfg)
	var (
		shaders []Shader
		names   [][]byte
		err     error
	)
	if format == FormatStream {
		shaders, names, err = decodeStream(data, cfg)
	} else {
		shaders, names, err = decodeTable(data, cfg)
	}
	if err != nil {
		return nil, nil, err
	}

	ambiguous, err := decodeNames(shaders, names, cfg)
	if err != nil {
		return nil, nil, err
	}
	cfg.log().Debug("container decoded", "format", format, "entries", len(shaders), "size", len(data))
	return shaders, ambiguous, nil
}

func decodeTable(data []byte, cfg *config) ([]Shader, [][]byte, error) {
	var h header
	if err := h.unmarshalBytes(data); err != nil {
		return nil, nil, err
	}
	if uint64(h.count) > cfg.maxEntries {
		return nil, nil, fmt.Errorf("%w: header declares %d entries, limit %d", ErrEntryLimitExceeded, h.count, cfg.maxEntries)
	}

	tableEnd := uint64(HeaderSize) + uint64(h.count)*RecordSize
	if tableEnd > uint64(len(data)) {
		return nil, nil, fmt.Errorf("%w: %d entries need %d bytes of header and table, have %d",
			ErrTruncatedContainer, h.count, tableEnd, len(data))
	}
	section := data[tableEnd:]
	size := uint64(len(section))

	records := make([]record, h.count)
	spans := make([]span, 0, 3*len(records))
	for i := range records {
		off := HeaderSize + i*RecordSize
		rec := readRecord(data[off : off+RecordSize])
		if err := checkRecord(rec, size); err != nil {
			return nil, nil, &EntryError{Index: i, Op: "decode", Err: err}
		}
		records[i] = rec
		spans = append(spans, rec.name, rec.vertex, rec.pixel)
	}
	if err := checkOverlap(spans); err != nil {
		return nil, nil, err
	}

	shaders := make([]Shader, len(records))
	names := make([][]byte, len(records))
	for i, rec := range records {
		names[i] = slice(section, rec.name)
		if !rec.vertex.absent() {
			shaders[i].Vertex = slice(section, rec.vertex)
		}
		if !rec.pixel.absent() {
			shaders[i].Pixel = slice(section, rec.pixel)
		}
	}
	return shaders, names, nil
}

func checkRecord(rec record, size uint64) error {
	if rec.name.len == 0 {
		return fmt.Errorf("%w: empty name at data offset %d", ErrCorruptOffset, rec.name.off)
	}
	if rec.vertex.absent() && rec.pixel.absent() {
		return fmt.Errorf("%w: neither vertex nor pixel shader present", manifest.ErrSemantic)
	}
	for _, f := range [...]struct {
		field string
		s     span
	}{{"name", rec.name}, {"vertex", rec.vertex}, {"pixel", rec.pixel}} {
		if f.s.end() > size {
			return fmt.Errorf("%w: %s range [%d, %d) exceeds data section of %d bytes",
				ErrCorruptOffset, f.field, f.s.off, f.s.end(), size)
		}
	}
	return nil
}

// checkOverlap rejects ranges that overlap without being identical.
func checkOverlap(spans []span) error {
	spans = slices.DeleteFunc(spans, func(s span) bool { return s.len == 0 })
	slices.SortFunc(spans, func(a, b span) int {
		return cmp.Or(cmp.Compare(a.off, b.off), cmp.Compare(a.len, b.len))
	})
	var reach span
	for _, s := range spans {
		if s == reach {
			continue
		}
		if uint64(s.off) < reach.end() {
			return fmt.Errorf("%w: range [%d, %d) overlaps [%d, %d)",
				ErrCorruptOffset, s.off, s.end(), reach.off, reach.end())
		}
		reach = s
	}
	return nil
}

// slice returns the bytes of s with capacity clipped so appends cannot
// clobber neighbouring data.
func slice(section []byte, s span) []byte {
	end := uint64(s.off) + uint64(s.len)
	return section[s.off:end:end]
}

// decodeNames resolves every name and rejects duplicates.
func decodeNames(shaders []Shader, names [][]byte, cfg *config) ([]Ambiguity, error) {
	var ambiguous []Ambiguity
	seen := make(map[string]int, len(shaders))
	for i := range shaders {
		d, err := cfg.resolver.Decode(names[i], cfg.hint)
		if err != nil {
			return nil, &EntryError{Index: i, Op: "decode", Err: err}
		}
		if prev, ok := seen[d.Text]; ok {
			return nil, &EntryError{Index: i, Name: d.Text, Op: "decode",
				Err: fmt.Errorf("%w: duplicate name of entry %d", manifest.ErrSemantic, prev)}
		}
		seen[d.Text] = i
		shaders[i].Name = d.Text
		shaders[i].Encoding = d.Encoding
		if d.Ambiguous {
			ambiguous = append(ambiguous, Ambiguity{Index: i, Name: d.Text, Alternate: d.AlternateText})
			cfg.log().Warn("ambiguous entry name encoding", "index", i, "name", d.Text,
				"encoding", d.Encoding, "alternate", d.AlternateText)
		}
	}
	return ambiguous, nil
}
