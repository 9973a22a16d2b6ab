package atomicfile

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "out.fsop")

	require.NoError(t, WriteFile(path, []byte("data"), Options{}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o644), info.Mode().Perm())
}

func TestWriteFileOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.fsop")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	err := WriteFile(path, []byte("new"), Options{})
	require.ErrorIs(t, err, fs.ErrExist)
	got, _ := os.ReadFile(path)
	assert.Equal(t, []byte("old"), got)

	require.NoError(t, WriteFile(path, []byte("new"), Options{Overwrite: true, Perm: 0o600}))
	got, _ = os.ReadFile(path)
	assert.Equal(t, []byte("new"), got)
}

func TestStreamFailureLeavesNoTrace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.fsop")
	boom := errors.New("boom")

	err := Stream(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	}, Options{})
	require.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
