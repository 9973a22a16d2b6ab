// Package fsop encodes and decodes FSOP shader containers.
//
// A container bundles named shader entries, each holding an optional vertex
// shader blob and an optional pixel shader blob. The table format (version 1)
// is laid out as follows, all integers little-endian uint32:
//
//	header   magic "FSOP" | version | entry_count
//	table    entry_count records of
//	         name_off | name_len | vs_off | vs_len | ps_off | ps_len
//	data     names and blobs referenced by the table, in table order
//
// Offsets are relative to the start of the data section. A (0, 0) blob slot
// means the blob is absent. Header and records are multiples of Alignment, so
// no padding is emitted; PaddingByte is reserved for future layouts.
//
// Blobs are opaque: the package never inspects shader bytecode. Entry names
// carry no encoding marker and are resolved with a charset.Resolver.
//
// The legacy stream format written by older FOX Engine tooling is also
// supported (see FormatStream).
package fsop
