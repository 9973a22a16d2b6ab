// Package atomicfile writes files through a temp file and a rename, so a
// partially written file is never visible at its final path.
package atomicfile

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Options controls how WriteFile treats the destination.
type Options struct {
	// Perm is the mode of the final file. Zero means 0o644.
	Perm fs.FileMode

	// Overwrite allows replacing an existing file. Without it WriteFile
	// fails with fs.ErrExist.
	Overwrite bool
}

// WriteFile writes data to path. Parent directories are created as needed.
// On any failure the temp file is removed and path is left untouched.
func WriteFile(path string, data []byte, opts Options) error {
	return Stream(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}, opts)
}

// Stream is WriteFile for content produced by fill.
func Stream(path string, fill func(io.Writer) error, opts Options) error {
	if !opts.Overwrite {
		if _, err := os.Lstat(path); err == nil {
			return &fs.PathError{Op: "write", Path: path, Err: fs.ErrExist}
		}
	}
	perm := opts.Perm
	if perm == 0 {
		perm = 0o644
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".fsop-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := fill(tmp); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
