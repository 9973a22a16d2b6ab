package fsop

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Stream format constants.
const (
	// StreamMask is XORed into every blob byte of a stream container.
	StreamMask = 0x9c

	// maxStreamName is the longest encoded name, including its NUL
	// terminator, that fits the one-byte length prefix.
	maxStreamName = math.MaxUint8
)

func mask(dst, src []byte) []byte {
	for _, c := range src {
		dst = append(dst, c^StreamMask)
	}
	return dst
}

// encodeStream writes records of
//
//	name_len u8 | name (NUL terminated) | vs_len u32 | vs ^ mask | ps_len u32 | ps ^ mask
//
// Absent blobs are written with zero length.
func encodeStream(shaders []Shader, cfg *config) ([]byte, []Ambiguity, error) {
	if err := validateShaders(shaders, cfg); err != nil {
		return nil, nil, err
	}

	var (
		out       []byte
		ambiguous []Ambiguity
	)
	for i := range shaders {
		s := &shaders[i]
		name, amb, err := encodeName(shaders, i, cfg)
		if err != nil {
			return nil, nil, &EntryError{Index: i, Name: s.Name, Op: "encode", Err: err}
		}
		if amb != nil {
			ambiguous = append(ambiguous, *amb)
		}
		if len(name)+1 > maxStreamName {
			return nil, nil, &EntryError{Index: i, Name: s.Name, Op: "encode",
				Err: fmt.Errorf("%w: name is %d bytes, stream limit is %d", ErrSizeOverflow, len(name), maxStreamName-1)}
		}
		for _, b := range [][]byte{s.Vertex, s.Pixel} {
			if uint64(len(b)) > math.MaxUint32 {
				return nil, nil, &EntryError{Index: i, Name: s.Name, Op: "encode",
					Err: fmt.Errorf("%w: blob of %d bytes", ErrSizeOverflow, len(b))}
			}
		}

		out = append(out, byte(len(name)+1))
		out = append(out, name...)
		out = append(out, 0)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(s.Vertex)))
		out = mask(out, s.Vertex)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(s.Pixel)))
		out = mask(out, s.Pixel)
	}
	cfg.log().Debug("stream container encoded", "entries", len(shaders), "size", len(out))
	return out, ambiguous, nil
}

// decodeStream reads records until the end of data. Both blob slots are
// always present, possibly empty. Blobs are unmasked into fresh slices.
func decodeStream(data []byte, cfg *config) ([]Shader, [][]byte, error) {
	var (
		shaders []Shader
		names   [][]byte
	)
	for off := 0; off < len(data); {
		i := len(shaders)
		if uint64(i) >= cfg.maxEntries {
			return nil, nil, fmt.Errorf("%w: more than %d entries", ErrEntryLimitExceeded, cfg.maxEntries)
		}
		start := off

		nameLen := int(data[off])
		off++
		if nameLen == 0 {
			return nil, nil, &EntryError{Index: i, Op: "decode",
				Err: fmt.Errorf("%w: empty name at byte %d", ErrCorruptOffset, start)}
		}
		if len(data)-off < nameLen {
			return nil, nil, &EntryError{Index: i, Op: "decode",
				Err: fmt.Errorf("%w: name of %d bytes at byte %d", ErrTruncatedContainer, nameLen, off)}
		}
		name := trimNUL(data[off : off+nameLen])
		off += nameLen
		if len(name) == 0 {
			return nil, nil, &EntryError{Index: i, Op: "decode",
				Err: fmt.Errorf("%w: empty name at byte %d", ErrCorruptOffset, start)}
		}

		var blobs [2][]byte
		for slot := range blobs {
			if len(data)-off < 4 {
				return nil, nil, &EntryError{Index: i, Op: "decode",
					Err: fmt.Errorf("%w: blob length at byte %d", ErrTruncatedContainer, off)}
			}
			n := uint64(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
			if uint64(len(data)-off) < n {
				return nil, nil, &EntryError{Index: i, Op: "decode",
					Err: fmt.Errorf("%w: blob of %d bytes at byte %d", ErrTruncatedContainer, n, off)}
			}
			blobs[slot] = mask(make([]byte, 0, n), data[off:off+int(n)])
			off += int(n)
		}

		shaders = append(shaders, Shader{Vertex: blobs[0], Pixel: blobs[1]})
		names = append(names, name)
	}
	return shaders, names, nil
}

func trimNUL(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return b
}
