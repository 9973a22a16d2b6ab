package fsop

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	fsopcore "github.com/meigma/fsop/core"
	"github.com/meigma/fsop/internal/atomicfile"
	"github.com/meigma/fsop/manifest"
)

// ManifestInfo is the note UnpackFile stores in the manifest's _info field.
const ManifestInfo = "Edit the shader files freely. To add a shader, add an entry with " +
	"name, vertex_shader_file and pixel_shader_file. Entry order is container order."

// UnpackFile extracts the container at src into destDir: one file per
// present blob and a manifest describing them.
//
// The container is decoded and validated completely before anything is
// written. Unless WithOverwrite is set, UnpackFile fails with fs.ErrExist
// when any output file already exists, and writes nothing. Files are staged
// in a temporary directory inside destDir and moved into place only after
// all of them were written, so a failed or cancelled call leaves destDir as
// it was.
func UnpackFile(ctx context.Context, src, destDir string, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := cfg.log().With("src", src)

	mf, err := manifest.FormatFromPath(cfg.manifestName)
	if err != nil {
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
	a.Manifest.Info = ManifestInfo
	for _, amb := range a.Ambiguous {
		log.Info("entry name is ambiguous",
			"index", amb.Index,
			"name", amb.Name,
			"alternate", amb.Alternate)
	}
	for name := range a.Files {
		if strings.EqualFold(name, cfg.manifestName) {
			return nil, fmt.Errorf("%w: manifest name %q collides with shader file %q",
				manifest.ErrSemantic, cfg.manifestName, name)
		}
	}

	doc, err := manifest.Serialize(a.Manifest, mf)
	if err != nil {
		return nil, err
	}

	// Output order: blobs in manifest order, manifest last.
	names := make([]string, 0, len(a.Files)+1)
	for i := range a.Manifest.Entries {
		e := &a.Manifest.Entries[i]
		if e.HasVertex() {
			names = append(names, e.VertexShaderFile)
		}
		if e.HasPixel() {
			names = append(names, e.PixelShaderFile)
		}
	}
	names = append(names, cfg.manifestName)

	if !cfg.overwrite {
		if err := checkAbsent(destDir, names); err != nil {
			return nil, err
		}
	}

	files, err := extract(ctx, &cfg, destDir, names, func(name string) []byte {
		if b, ok := a.Files[name]; ok {
			return b
		}
		return doc
	})
	if err != nil {
		return nil, err
	}
	res := &Result{
		Path:      destDir,
		Entries:   len(a.Manifest.Entries),
		Bytes:     len(data),
		Files:     files,
		Ambiguous: a.Ambiguous,
	}

	log.Debug("unpacked container",
		"dest", destDir,
		"entries", res.Entries,
		"files", len(res.Files))
	return res, nil
}

// extract writes every name into a staging directory and then renames them
// into destDir. On failure the staging directory, any file moved so far that
// did not exist before, and destDir itself when extract created it are
// removed.
func extract(ctx context.Context, cfg *config, destDir string, names []string, content func(string) []byte) (files []string, err error) {
	_, statErr := os.Stat(destDir)
	created := errors.Is(statErr, fs.ErrNotExist)
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return nil, err
	}
	staging, err := os.MkdirTemp(destDir, ".fsop-unpack-*")
	if err != nil {
		if created {
			_ = os.Remove(destDir)
		}
		return nil, err
	}

	var moved []string
	defer func() {
		_ = os.RemoveAll(staging)
		if err == nil {
			return
		}
		for _, path := range moved {
			_ = os.Remove(path)
		}
		if created {
			_ = os.RemoveAll(destDir)
		}
	}()

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cfg.emit(ProgressEvent{
			Stage:      StageWriting,
			Path:       filepath.Join(destDir, name),
			FilesDone:  i,
			FilesTotal: len(names),
		})
		if err := atomicfile.WriteFile(filepath.Join(staging, name), content(name), atomicfile.Options{}); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files = make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(destDir, name)
		_, lerr := os.Lstat(path)
		fresh := errors.Is(lerr, fs.ErrNotExist)
		if !fresh && !cfg.overwrite {
			return nil, &fs.PathError{Op: "unpack", Path: path, Err: fs.ErrExist}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, err
		}
		if err := os.Rename(filepath.Join(staging, name), path); err != nil {
			return nil, err
		}
		if fresh {
			moved = append(moved, path)
		}
		files = append(files, path)
	}
	cfg.emit(ProgressEvent{Stage: StageWriting, FilesDone: len(names), FilesTotal: len(names)})
	return files, nil
}

func checkAbsent(dir string, names []string) error {
	for _, name := range names {
		path := filepath.Join(dir, name)
		_, err := os.Lstat(path)
		if err == nil {
			return &fs.PathError{Op: "unpack", Path: path, Err: fs.ErrExist}
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
