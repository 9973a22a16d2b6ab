package fsop

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Table format constants.
const (
	// Magic opens every table-format container.
	Magic = "FSOP"

	// Version is the only table-format version this package reads and writes.
	Version = 1

	// HeaderSize is the byte size of magic, version and entry count.
	HeaderSize = 12

	// RecordSize is the byte size of one table record.
	RecordSize = 24

	// Alignment is the boundary that header and records are sized to.
	Alignment = 4

	// PaddingByte fills any gap introduced to honor Alignment.
	PaddingByte = 0x00

	// MaxEntries is the largest entry count the header can declare.
	MaxEntries = math.MaxUint32

	maxDataSize = math.MaxUint32
)

type header struct {
	version uint32
	count   uint32
}

func (h header) appendTo(b []byte) []byte {
	b = append(b, Magic...)
	b = binary.LittleEndian.AppendUint32(b, h.version)
	return binary.LittleEndian.AppendUint32(b, h.count)
}

func (h *header) unmarshalBytes(b []byte) error {
	if len(b) < len(Magic) || string(b[:len(Magic)]) != Magic {
		n := min(len(b), len(Magic))
		return fmt.Errorf("%w: bad magic % x", ErrUnsupportedFormat, b[:n])
	}
	if len(b) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncatedContainer, HeaderSize, len(b))
	}
	h.version = binary.LittleEndian.Uint32(b[4:8])
	if h.version != Version {
		return fmt.Errorf("%w: can only read v%d containers; found v%d", ErrUnsupportedFormat, Version, h.version)
	}
	h.count = binary.LittleEndian.Uint32(b[8:12])
	return nil
}

// span is an offset+length pair relative to the data section.
type span struct {
	off uint32
	len uint32
}

func (s span) absent() bool {
	return s.off == 0 && s.len == 0
}

func (s span) end() uint64 {
	return uint64(s.off) + uint64(s.len)
}

type record struct {
	name   span
	vertex span
	pixel  span
}

func (r record) appendTo(b []byte) []byte {
	for _, s := range [...]span{r.name, r.vertex, r.pixel} {
		b = binary.LittleEndian.AppendUint32(b, s.off)
		b = binary.LittleEndian.AppendUint32(b, s.len)
	}
	return b
}

func readRecord(b []byte) record {
	_ = b[RecordSize-1]
	return record{
		name:   span{binary.LittleEndian.Uint32(b[0:4]), binary.LittleEndian.Uint32(b[4:8])},
		vertex: span{binary.LittleEndian.Uint32(b[8:12]), binary.LittleEndian.Uint32(b[12:16])},
		pixel:  span{binary.LittleEndian.Uint32(b[16:20]), binary.LittleEndian.Uint32(b[20:24])},
	}
}
