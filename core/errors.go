package fsop

import (
	"errors"
	"fmt"
)

// Sentinel errors for container encoding and decoding.
var (
	// ErrMissingSourceFile is returned when a manifest references a shader
	// file that cannot be read.
	ErrMissingSourceFile = errors.New("fsop: missing source file")

	// ErrEntryLimitExceeded is returned when the entry count does not fit the
	// table's count field or a configured limit.
	ErrEntryLimitExceeded = errors.New("fsop: entry limit exceeded")

	// ErrUnsupportedFormat is returned when the header magic or version is
	// not recognized.
	ErrUnsupportedFormat = errors.New("fsop: unsupported container format")

	// ErrTruncatedContainer is returned when the buffer ends before the
	// header, table or a stream record does.
	ErrTruncatedContainer = errors.New("fsop: truncated container")

	// ErrCorruptOffset is returned when a table record points outside the
	// data section or overlaps another range.
	ErrCorruptOffset = errors.New("fsop: corrupt offset")

	// ErrSizeOverflow is returned when the data section or a stream field
	// outgrows its fixed-width integer.
	ErrSizeOverflow = errors.New("fsop: size overflow")
)

// EntryError records the entry being processed when an operation failed.
type EntryError struct {
	// Index is the entry's position in the table or manifest.
	Index int

	// Name is the entry name, when known.
	Name string

	// Op is the operation that failed, such as "encode" or "decode".
	Op string

	Err error
}

func (e *EntryError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s entry %d: %v", e.Op, e.Index, e.Err)
	}
	return fmt.Sprintf("%s entry %d (%q): %v", e.Op, e.Index, e.Name, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}
