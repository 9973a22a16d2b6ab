// Package fsop packs and unpacks FSOP shader containers on disk.
//
// An FSOP container stores an ordered list of named shader entries, each
// carrying an optional vertex shader blob and an optional pixel shader blob.
// Unpacking writes every blob to its own file next to a manifest
// (metadata.json by default) that records the entry order, the names and the
// file each blob went to. Packing reads that manifest back and rebuilds the
// container byte for byte.
//
// The byte-level codec lives in the [core] subpackage and works on buffers
// and [io/fs.FS] values. This package adds the filesystem side: atomic
// writes, overwrite protection, discovery of shader files missing from the
// manifest, progress reporting and concurrent batches.
//
// # Quick Start
//
// Extract a container:
//
//	res, err := fsop.UnpackFile(ctx, "effects.fsop", "effects_unpacked")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Entries, "entries")
//
// Rebuild it after editing the shader files:
//
//	_, err = fsop.PackDir(ctx, "effects_unpacked", "effects.fsop",
//	    fsop.WithOverwrite(true),
//	    fsop.WithDiscover(true),
//	)
//
// # Entry names
//
// Entry names are stored as raw bytes in the container. They are decoded
// with the [charset] resolver, which tries Shift-JIS before Windows-1252 by
// default. An entry whose encoding differs from the default records it in
// the manifest, so repacking produces the original bytes.
package fsop
