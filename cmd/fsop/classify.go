package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meigma/fsop"
)

const (
	containerExt   = ".fsop"
	unpackedSuffix = "_unpacked"
)

// InputKind is what an auto-mode path turned out to be.
type InputKind uint8

const (
	// InputContainer is a .fsop file to unpack.
	InputContainer InputKind = iota

	// InputDirectory is an unpacked directory to pack.
	InputDirectory
)

// String returns "container" or "directory".
func (k InputKind) String() string {
	if k == InputDirectory {
		return "directory"
	}
	return "container"
}

// Input is a classified command-line path.
type Input struct {
	Kind InputKind
	Path string
}

// classify stats path once and decides how auto mode handles it.
func classify(path string) (Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Input{}, err
	}
	switch {
	case info.IsDir():
		return Input{Kind: InputDirectory, Path: path}, nil
	case info.Mode().IsRegular() && strings.EqualFold(filepath.Ext(path), containerExt):
		return Input{Kind: InputContainer, Path: path}, nil
	default:
		return Input{}, usageError("%s is not a %s file or a directory", path, containerExt)
	}
}

// DefaultOutput returns where an input is written when no output is given:
// x.fsop unpacks to x_unpacked/, x_unpacked/ packs to x.fsop and any other
// directory d packs to d.fsop. Outputs are siblings of their input.
func (in Input) DefaultOutput() string {
	clean := filepath.Clean(in.Path)
	if in.Kind == InputContainer {
		return strings.TrimSuffix(clean, filepath.Ext(clean)) + unpackedSuffix
	}
	if base := filepath.Base(clean); base == "." || base == ".." {
		if abs, err := filepath.Abs(clean); err == nil {
			clean = abs
		}
	}
	dir, base := filepath.Split(clean)
	if stem, ok := strings.CutSuffix(base, unpackedSuffix); ok && stem != "" {
		base = stem
	}
	return filepath.Join(dir, base+containerExt)
}

// Job returns the batch job for the input.
func (in Input) Job(output string) fsop.Job {
	if output == "" {
		output = in.DefaultOutput()
	}
	mode := fsop.ModeUnpack
	if in.Kind == InputDirectory {
		mode = fsop.ModePack
	}
	return fsop.Job{Mode: mode, Input: in.Path, Output: output}
}

func describe(j fsop.Job) string {
	return fmt.Sprintf("%s %s → %s", j.Mode, j.Input, j.Output)
}
