package fsop

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	fsopcore "github.com/meigma/fsop/core"
	"github.com/meigma/fsop/internal/atomicfile"
	"github.com/meigma/fsop/manifest"
)

// Result describes the output of PackDir or UnpackFile.
type Result struct {
	// Path is the container written by PackDir or the directory written by
	// UnpackFile.
	Path string

	// Entries is the number of entries in the container.
	Entries int

	// Bytes is the container size.
	Bytes int

	// Files lists the files written by UnpackFile, manifest last.
	Files []string

	// Discovered lists entries PackDir added from unreferenced shader files.
	Discovered []string

	// Ambiguous lists entry names UnpackFile could read under more than one
	// encoding, or names PackDir wrote that will not read back unchanged.
	Ambiguous []fsopcore.Ambiguity
}

// PackDir builds a container from an unpacked directory and writes it to
// dest.
//
// The manifest is read from the directory (see WithManifestName). With
// WithDiscover, shader files the manifest does not reference are added as
// new entries; WithUpdateManifest also writes them back to the manifest.
// Every shader file is read and every entry validated before dest is
// touched. dest is replaced only with WithOverwrite.
func PackDir(ctx context.Context, dir, dest string, opts ...Option) (*Result, error) {
	cfg := newConfig(opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := cfg.log().With("dir", dir)

	manifestPath := filepath.Join(dir, cfg.manifestName)
	mf, err := manifest.FormatFromPath(cfg.manifestName)
	if err != nil {
		return nil, err
	}
	cfg.emit(ProgressEvent{Stage: StageReading, Path: manifestPath})
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := manifest.Parse(raw, mf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", manifestPath, err)
	}

	cfg.emit(ProgressEvent{Stage: StageValidating, Path: manifestPath})
	res := &Result{Path: dest}
	dirFS := os.DirFS(dir)
	if cfg.discover {
		res.Discovered, err = discover(m, dirFS, cfg.ext, log)
		if err != nil {
			return nil, fmt.Errorf("discover shader files: %w", err)
		}
		if len(res.Discovered) > 0 {
			log.Info("discovered new entries", "count", len(res.Discovered))
		}
	}

	pfs := &packFS{ctx: ctx, fsys: dirFS, cfg: &cfg}
	for i := range m.Entries {
		if m.Entries[i].HasVertex() {
			pfs.total++
		}
		if m.Entries[i].HasPixel() {
			pfs.total++
		}
	}
	data, ambiguous, err := fsopcore.Pack(m, pfs, cfg.codecOpts()...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	res.Entries = len(m.Entries)
	res.Bytes = len(data)
	res.Ambiguous = ambiguous
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg.emit(ProgressEvent{Stage: StageWriting, Path: dest, BytesTotal: uint64(len(data))})
	if err := atomicfile.WriteFile(dest, data, atomicfile.Options{Overwrite: cfg.overwrite}); err != nil {
		return nil, err
	}
	cfg.emit(ProgressEvent{Stage: StageWriting, Path: dest, BytesDone: uint64(len(data)), BytesTotal: uint64(len(data))})

	if cfg.updateManifest && len(res.Discovered) > 0 {
		doc, err := manifest.Serialize(m, mf)
		if err != nil {
			return nil, err
		}
		cfg.emit(ProgressEvent{Stage: StageWriting, Path: manifestPath})
		if err := atomicfile.WriteFile(manifestPath, doc, atomicfile.Options{Overwrite: true}); err != nil {
			return nil, err
		}
	}
	log.Debug("packed container",
		"dest", dest,
		"entries", res.Entries,
		"bytes", res.Bytes)
	return res, nil
}
