package fsop

import (
	"io/fs"
	"log/slog"
	"slices"

	fsopcore "github.com/meigma/fsop/core"
	"github.com/meigma/fsop/manifest"
)

// Discover appends an entry to m for every {stem}_vs.{ext} / {stem}_ps.{ext}
// file in the root of fsys that m does not reference yet. New entries are
// named after their stem and appended in stem order. A stem that already
// names an entry is skipped. Discover returns the names it added.
func Discover(m *manifest.Manifest, fsys fs.FS, ext string) ([]string, error) {
	return discover(m, fsys, ext, nil)
}

func discover(m *manifest.Manifest, fsys fs.FS, ext string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dirents, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	referenced := m.Files()
	found := make(map[string]*manifest.Entry)
	for _, d := range dirents {
		if !d.Type().IsRegular() {
			continue
		}
		if _, ok := referenced[d.Name()]; ok {
			continue
		}
		stem, slot, ok := fsopcore.ParseShaderFileName(d.Name(), ext)
		if !ok {
			continue
		}
		if _, exists := m.Lookup(stem); exists {
			logger.Warn("unreferenced shader file shares an entry name, skipping",
				"file", d.Name(), "entry", stem)
			continue
		}
		e := found[stem]
		if e == nil {
			e = &manifest.Entry{Name: stem}
			found[stem] = e
		}
		if slot == fsopcore.SlotVertex {
			e.VertexShaderFile = d.Name()
		} else {
			e.PixelShaderFile = d.Name()
		}
	}

	added := make([]string, 0, len(found))
	for stem := range found {
		added = append(added, stem)
	}
	slices.Sort(added)
	for _, name := range added {
		m.Entries = append(m.Entries, *found[name])
		logger.Debug("discovered entry", "name", name)
	}
	return added, nil
}
