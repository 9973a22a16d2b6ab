package fsop

import (
	"github.com/meigma/fsop/charset"
	fsopcore "github.com/meigma/fsop/core"
	"github.com/meigma/fsop/manifest"
)

// Errors re-exported from core.
var (
	// ErrMissingSourceFile is returned when a manifest references a shader
	// file that cannot be read.
	ErrMissingSourceFile = fsopcore.ErrMissingSourceFile

	// ErrEntryLimitExceeded is returned when there are more entries than allowed.
	ErrEntryLimitExceeded = fsopcore.ErrEntryLimitExceeded

	// ErrUnsupportedFormat is returned when the container magic or version is not recognized.
	ErrUnsupportedFormat = fsopcore.ErrUnsupportedFormat

	// ErrTruncatedContainer is returned when a container ends early.
	ErrTruncatedContainer = fsopcore.ErrTruncatedContainer

	// ErrCorruptOffset is returned when a table record points outside the data section.
	ErrCorruptOffset = fsopcore.ErrCorruptOffset

	// ErrSizeOverflow is returned when a size value overflows.
	ErrSizeOverflow = fsopcore.ErrSizeOverflow
)

// Errors re-exported from manifest.
var (
	// ErrManifestSyntax is returned when a manifest document cannot be parsed.
	ErrManifestSyntax = manifest.ErrSyntax

	// ErrManifestSemantic is returned when a manifest parses but breaks an invariant.
	ErrManifestSemantic = manifest.ErrSemantic
)

// Errors re-exported from charset.
var (
	// ErrUnencodableText is returned when an entry name cannot be encoded.
	ErrUnencodableText = charset.ErrUnencodableText

	// ErrUndecodableBytes is returned when entry name bytes cannot be decoded.
	ErrUndecodableBytes = charset.ErrUndecodableBytes
)

// EntryError reports which entry an operation failed on.
type EntryError = fsopcore.EntryError
