package fsop

import (
	"strconv"
	"strings"
)

// Slot identifies one of an entry's two blobs.
type Slot uint8

const (
	SlotVertex Slot = iota
	SlotPixel
)

// Suffix returns the file name suffix for the slot.
func (s Slot) Suffix() string {
	if s == SlotPixel {
		return "_ps"
	}
	return "_vs"
}

// String returns "vertex" or "pixel".
func (s Slot) String() string {
	if s == SlotPixel {
		return "pixel"
	}
	return "vertex"
}

// ShaderFileName returns the file name an extracted blob is written to:
// {stem}_vs.{ext} or {stem}_ps.{ext}.
func ShaderFileName(stem string, slot Slot, ext string) string {
	return stem + slot.Suffix() + "." + ext
}

// ParseShaderFileName splits a name produced by ShaderFileName. ok is false
// when name does not end in _vs.{ext} or _ps.{ext} or the stem is empty.
func ParseShaderFileName(name, ext string) (stem string, slot Slot, ok bool) {
	base, found := strings.CutSuffix(name, "."+ext)
	if !found {
		return "", 0, false
	}
	for _, s := range [...]Slot{SlotVertex, SlotPixel} {
		if stem, found := strings.CutSuffix(base, s.Suffix()); found && stem != "" {
			return stem, s, true
		}
	}
	return "", 0, false
}

const unsafeNameChars = "<>:\"/\\|?*\x00"

// SanitizeName turns an entry name into a portable file name stem. Characters
// that are invalid in Windows file names become '_', surrounding whitespace
// is trimmed and an empty result becomes "unnamed".
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(unsafeNameChars, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	switch name {
	case "", ".", "..":
		return "unnamed"
	}
	return name
}

// stemAllocator hands out unique stems. Comparison is case-insensitive so
// extracted files do not collide on case-insensitive file systems.
type stemAllocator struct {
	used map[string]struct{}
}

func (a *stemAllocator) next(name string) string {
	if a.used == nil {
		a.used = make(map[string]struct{})
	}
	base := SanitizeName(name)
	stem := base
	for n := 2; ; n++ {
		key := strings.ToLower(stem)
		if _, taken := a.used[key]; !taken {
			a.used[key] = struct{}{}
			return stem
		}
		stem = base + "-" + strconv.Itoa(n)
	}
}
