package fsop

import (
	"context"
	"fmt"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/fsop/charset"
	fsopcore "github.com/meigma/fsop/core"
)

// Report summarizes a container without extracting it.
type Report struct {
	// Path is the inspected file.
	Path string

	// Format is the detected container layout.
	Format fsopcore.Format

	// Size is the container size in bytes.
	Size int

	// Entries in table order.
	Entries []EntryReport

	// Ambiguous lists names that decode under more than one encoding.
	Ambiguous []fsopcore.Ambiguity
}

// EntryReport describes one container entry.
type EntryReport struct {
	Index    int
	Name     string
	Encoding charset.Encoding

	// Vertex and Pixel are nil when the slot is absent.
	Vertex *BlobReport
	Pixel  *BlobReport
}

// BlobReport identifies a shader blob by size and sha256 digest.
type BlobReport struct {
	Size   int
	Digest digest.Digest
}

// Inspect decodes the container at src and reports its entries.
// The format is detected from the content unless WithFormat is given.
func Inspect(ctx context.Context, src string, opts ...Option) (*Report, error) {
	cfg := newConfig(append([]Option{WithFormat(fsopcore.FormatAuto)}, opts...))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg.emit(ProgressEvent{Stage: StageReading, Path: src})
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, err
	}
	cfg.emit(ProgressEvent{Stage: StageExtracting, Path: src, BytesTotal: uint64(len(data))})
	a, err := fsopcore.Unpack(data, cfg.codecOpts()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}

	r := &Report{
		Path:      src,
		Format:    fsopcore.Sniff(data),
		Size:      len(data),
		Entries:   make([]EntryReport, len(a.Shaders)),
		Ambiguous: a.Ambiguous,
	}
	for i := range a.Shaders {
		s := &a.Shaders[i]
		r.Entries[i] = EntryReport{
			Index:    i,
			Name:     s.Name,
			Encoding: s.Encoding,
			Vertex:   blobReport(s.Vertex),
			Pixel:    blobReport(s.Pixel),
		}
	}
	return r, nil
}

func blobReport(b []byte) *BlobReport {
	if b == nil {
		return nil
	}
	return &BlobReport{Size: len(b), Digest: digest.FromBytes(b)}
}
