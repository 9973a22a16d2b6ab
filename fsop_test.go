package fsop

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/fsop/charset"
	fsopcore "github.com/meigma/fsop/core"
	"github.com/meigma/fsop/internal/testutil"
	"github.com/meigma/fsop/manifest"
)

func sampleShaders() []fsopcore.Shader {
	return []fsopcore.Shader{
		{Name: "Basic", Vertex: []byte{1, 2, 3, 4}, Pixel: []byte{0xaa, 0xbb}},
		{Name: "VertexOnly", Vertex: []byte("vs-bytes")},
		{Name: "Empty", Vertex: []byte{}, Pixel: []byte{9}},
		{Name: "テスト", Vertex: []byte{7, 7, 7}, Pixel: []byte{8}},
		{Name: "café", Pixel: []byte{0}},
	}
}

// writeContainer encodes the sample shaders to dir/effects.fsop.
func writeContainer(t *testing.T, dir string) (string, []byte) {
	t.Helper()
	data, err := fsopcore.Encode(sampleShaders())
	require.NoError(t, err)
	path := filepath.Join(dir, "effects.fsop")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, data
}

func TestUnpackFileWritesBlobsAndManifest(t *testing.T) {
	dir := t.TempDir()
	src, _ := writeContainer(t, dir)
	out := filepath.Join(dir, "effects_unpacked")

	res, err := UnpackFile(context.Background(), src, out)
	require.NoError(t, err)
	assert.Equal(t, out, res.Path)
	assert.Equal(t, 5, res.Entries)
	require.Len(t, res.Files, 8)
	assert.Equal(t, filepath.Join(out, manifest.DefaultName), res.Files[len(res.Files)-1])

	files := testutil.ReadFiles(t, out)
	assert.Equal(t, []byte{1, 2, 3, 4}, files["Basic_vs.fxc"])
	assert.Equal(t, []byte{0xaa, 0xbb}, files["Basic_ps.fxc"])
	assert.Equal(t, []byte("vs-bytes"), files["VertexOnly_vs.fxc"])
	assert.NotContains(t, files, "VertexOnly_ps.fxc")
	assert.Equal(t, []byte{}, files["Empty_vs.fxc"])
	assert.Equal(t, []byte{7, 7, 7}, files["テスト_vs.fxc"])
	assert.Equal(t, []byte{0}, files["café_ps.fxc"])
	assert.Len(t, files, 8)

	m, err := manifest.Parse(files[manifest.DefaultName], manifest.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, ManifestInfo, m.Info)
	require.Len(t, m.Entries, 5)
	assert.Equal(t, "テスト", m.Entries[3].Name)
	assert.Equal(t, charset.Auto, m.Entries[3].Encoding)
	assert.Equal(t, charset.Windows1252, m.Entries[4].Encoding)
}

func TestUnpackPackRoundTrip(t *testing.T) {
	for _, name := range []string{"metadata.json", "shaders.yaml", "shaders.toml"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			src, original := writeContainer(t, dir)
			out := filepath.Join(dir, "effects_unpacked")
			dest := filepath.Join(dir, "repacked.fsop")

			_, err := UnpackFile(context.Background(), src, out, WithManifestName(name))
			require.NoError(t, err)
			res, err := PackDir(context.Background(), out, dest, WithManifestName(name))
			require.NoError(t, err)
			assert.Equal(t, 5, res.Entries)
			assert.Equal(t, len(original), res.Bytes)

			got, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, original, got)
		})
	}
}

func TestUnpackFileRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src, _ := writeContainer(t, dir)
	out := filepath.Join(dir, "out")
	ctx := context.Background()

	_, err := UnpackFile(ctx, src, out)
	require.NoError(t, err)

	basic := filepath.Join(out, "Basic_vs.fxc")
	require.NoError(t, os.WriteFile(basic, []byte("edited"), 0o600))

	_, err = UnpackFile(ctx, src, out)
	require.ErrorIs(t, err, fs.ErrExist)
	edited, err := os.ReadFile(basic)
	require.NoError(t, err)
	assert.Equal(t, []byte("edited"), edited)

	_, err = UnpackFile(ctx, src, out, WithOverwrite(true))
	require.NoError(t, err)
	restored, err := os.ReadFile(basic)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, restored)
}

func TestUnpackFileCancelledMidway(t *testing.T) {
	tests := []struct {
		name     string
		existing map[string][]byte
	}{
		{"new directory", nil},
		{"existing directory", map[string][]byte{"notes.txt": []byte("keep")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src, _ := writeContainer(t, dir)
			out := filepath.Join(dir, "out")
			if tt.existing != nil {
				testutil.WriteFiles(t, out, tt.existing)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			writes := 0
			_, err := UnpackFile(ctx, src, out, WithProgress(func(ev ProgressEvent) {
				if ev.Stage == StageWriting {
					if writes++; writes == 2 {
						cancel()
					}
				}
			}))
			require.ErrorIs(t, err, context.Canceled)

			if tt.existing == nil {
				_, statErr := os.Stat(out)
				assert.ErrorIs(t, statErr, fs.ErrNotExist)
				return
			}
			assert.Equal(t, tt.existing, testutil.ReadFiles(t, out))
		})
	}
}

func TestUnpackFileManifestNameCollision(t *testing.T) {
	dir := t.TempDir()
	data, err := fsopcore.Encode([]fsopcore.Shader{{Name: "x", Vertex: []byte{1}}})
	require.NoError(t, err)
	src := filepath.Join(dir, "x.fsop")
	require.NoError(t, os.WriteFile(src, data, 0o600))
	out := filepath.Join(dir, "out")

	_, err = UnpackFile(context.Background(), src, out, WithManifestName("x_vs.json"), WithExtension("json"))
	require.ErrorIs(t, err, ErrManifestSemantic)
	_, statErr := os.Stat(out)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestPackDirReportsNamesThatUnpackDifferently(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string][]byte{
		"metadata.json": []byte(`{"shaders": [{"name": "Über", "vertex_shader_file": "u_vs.fxc"}]}`),
		"u_vs.fxc":      {1},
	})

	res, err := PackDir(context.Background(), dir, filepath.Join(dir, "out.fsop"))
	require.NoError(t, err)
	assert.Equal(t, []fsopcore.Ambiguity{{Index: 0, Name: "Über", Alternate: "ﾜber"}}, res.Ambiguous)
}

func TestUnpackFileRejectsInvalidContainer(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"bad magic", []byte("NOPE\x01\x00\x00\x00\x00\x00\x00\x00"), ErrUnsupportedFormat},
		{"truncated", []byte("FSOP\x01\x00\x00\x00\x02\x00\x00\x00"), ErrTruncatedContainer},
		{"bad offset", testutil.BuildContainer(1, 1, []testutil.Record{{NameOff: 0, NameLen: 1, VertexOff: 0, VertexLen: 9}}, []byte("A")), ErrCorruptOffset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := filepath.Join(dir, tt.name+".fsop")
			require.NoError(t, os.WriteFile(src, tt.data, 0o600))

			_, err := UnpackFile(context.Background(), src, out)
			require.ErrorIs(t, err, tt.wantErr)
			_, statErr := os.Stat(out)
			assert.ErrorIs(t, statErr, fs.ErrNotExist)
		})
	}
}

func TestUnpackFileStreamFormat(t *testing.T) {
	dir := t.TempDir()
	data, err := fsopcore.Encode(sampleShaders()[:1], fsopcore.WithFormat(fsopcore.FormatStream))
	require.NoError(t, err)
	src := filepath.Join(dir, "legacy.fsop")
	require.NoError(t, os.WriteFile(src, data, 0o600))
	out := filepath.Join(dir, "out")

	_, err = UnpackFile(context.Background(), src, out, WithFormat(fsopcore.FormatAuto))
	require.NoError(t, err)
	files := testutil.ReadFiles(t, out)
	assert.Equal(t, []byte{1, 2, 3, 4}, files["Basic_vs.fxc"])
	assert.Contains(t, string(files["metadata.json"]), `"format": "stream"`)

	tests := []struct {
		name string
		opts []Option
	}{
		{"default", nil},
		{"auto", []Option{WithFormat(fsopcore.FormatAuto)}},
		{"explicit", []Option{WithFormat(fsopcore.FormatStream)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "legacy-repacked.fsop")
			_, err := PackDir(context.Background(), out, dest, tt.opts...)
			require.NoError(t, err)
			got, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestPackDirMissingSourceFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string][]byte{
		"metadata.json": []byte(`{"shaders": [{"name": "Basic", "vertex_shader_file": "Basic_vs.fxc"}]}`),
	})
	dest := filepath.Join(dir, "out.fsop")

	_, err := PackDir(context.Background(), dir, dest)
	require.ErrorIs(t, err, ErrMissingSourceFile)

	var entryErr *EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, "Basic", entryErr.Name)

	_, statErr := os.Stat(dest)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestPackDirManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"syntax", `{"shaders": [`, ErrManifestSyntax},
		{"duplicate names", `{"shaders": [{"name": "A", "vertex_shader_file": "a"}, {"name": "A", "pixel_shader_file": "b"}]}`, ErrManifestSemantic},
		{"no files", `{"shaders": [{"name": "A"}]}`, ErrManifestSemantic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			testutil.WriteFiles(t, dir, map[string][]byte{"metadata.json": []byte(tt.doc)})
			_, err := PackDir(context.Background(), dir, filepath.Join(dir, "out.fsop"))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := PackDir(context.Background(), t.TempDir(), "out.fsop")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestPackDirRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string][]byte{
		"metadata.json": []byte(`{"shaders": [{"name": "A", "vertex_shader_file": "A_vs.fxc"}]}`),
		"A_vs.fxc":      {1},
	})
	dest := filepath.Join(dir, "out.fsop")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o600))

	_, err := PackDir(context.Background(), dir, dest)
	require.ErrorIs(t, err, fs.ErrExist)

	_, err = PackDir(context.Background(), dir, dest, WithOverwrite(true))
	require.NoError(t, err)
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	shaders, err := fsopcore.Decode(got)
	require.NoError(t, err)
	require.Len(t, shaders, 1)
	assert.Equal(t, "A", shaders[0].Name)
}

func TestPackDirCancelled(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string][]byte{
		"metadata.json": []byte(`{"shaders": [{"name": "A", "vertex_shader_file": "A_vs.fxc"}]}`),
		"A_vs.fxc":      {1},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dest := filepath.Join(dir, "out.fsop")

	_, err := PackDir(ctx, dir, dest)
	require.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(dest)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestProgressStages(t *testing.T) {
	dir := t.TempDir()
	src, _ := writeContainer(t, dir)
	out := filepath.Join(dir, "out")

	var stages []ProgressStage
	record := WithProgress(func(ev ProgressEvent) {
		if len(stages) == 0 || stages[len(stages)-1] != ev.Stage {
			stages = append(stages, ev.Stage)
		}
	})

	_, err := UnpackFile(context.Background(), src, out, record)
	require.NoError(t, err)
	assert.Equal(t, []ProgressStage{StageReading, StageExtracting, StageWriting}, stages)

	stages = nil
	_, err = PackDir(context.Background(), out, filepath.Join(dir, "re.fsop"), record)
	require.NoError(t, err)
	assert.Equal(t, []ProgressStage{StageReading, StageValidating, StagePacking, StageWriting}, stages)
}

func TestProgressStageString(t *testing.T) {
	assert.Equal(t, "reading", StageReading.String())
	assert.Equal(t, "writing", StageWriting.String())
	assert.Equal(t, "unknown", ProgressStage(99).String())
}
