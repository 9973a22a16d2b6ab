// Package testutil builds raw containers and file trees for tests.
package testutil

import (
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Record is a raw table record. Values are written verbatim, so tests can
// describe corrupt containers.
type Record struct {
	NameOff, NameLen     uint32
	VertexOff, VertexLen uint32
	PixelOff, PixelLen   uint32
}

// BuildContainer assembles a table-format container from raw parts. count is
// written to the header as given, independent of len(records).
func BuildContainer(version, count uint32, records []Record, data []byte) []byte {
	out := []byte("FSOP")
	out = binary.LittleEndian.AppendUint32(out, version)
	out = binary.LittleEndian.AppendUint32(out, count)
	for _, r := range records {
		for _, v := range [...]uint32{r.NameOff, r.NameLen, r.VertexOff, r.VertexLen, r.PixelOff, r.PixelLen} {
			out = binary.LittleEndian.AppendUint32(out, v)
		}
	}
	return append(out, data...)
}

// WriteFiles writes files below dir, creating parent directories.
func WriteFiles(tb testing.TB, dir string, files map[string][]byte) {
	tb.Helper()
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(tb, os.WriteFile(path, data, 0o600))
	}
}

// ReadFiles returns every regular file below dir keyed by slash path.
func ReadFiles(tb testing.TB, dir string) map[string][]byte {
	tb.Helper()
	files := make(map[string][]byte)
	err := fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
		if err != nil {
			return err
		}
		files[path] = data
		return nil
	})
	require.NoError(tb, err)
	return files
}
