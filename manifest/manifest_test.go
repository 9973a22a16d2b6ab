package manifest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/fsop/charset"
)

func sample() *Manifest {
	return &Manifest{
		Encoding: charset.ShiftJIS,
		Layout:   LayoutStream,
		Info:     "Order matters for repacking.",
		Entries: []Entry{
			{Name: "Basic", VertexShaderFile: "Basic_vs.fxc", PixelShaderFile: "Basic_ps.fxc"},
			{Name: "テスト", VertexShaderFile: "テスト_vs.fxc"},
			{Name: "café", PixelShaderFile: "sub/café_ps.fxc", Encoding: charset.Windows1252},
		},
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{
  "shaders": [
    {"name": "Basic", "vertex_shader_file": "Basic_vs.fxc", "pixel_shader_file": "Basic_ps.fxc"},
    {"name": "Glow", "pixel_shader_file": "Glow_ps.fxc", "encoding": "utf-8"}
  ],
  "_info": "Edit .fxc files freely."
}`
	m, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)

	want := &Manifest{
		Info: "Edit .fxc files freely.",
		Entries: []Entry{
			{Name: "Basic", VertexShaderFile: "Basic_vs.fxc", PixelShaderFile: "Basic_ps.fxc"},
			{Name: "Glow", PixelShaderFile: "Glow_ps.fxc", Encoding: charset.UTF8},
		},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBareList(t *testing.T) {
	m, err := Parse([]byte(`[{"name":"A","vertex_shader_file":"A_vs.fxc"}]`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "A", m.Entries[0].Name)

	m, err = Parse([]byte("- name: A\n  pixel_shader_file: A_ps.fxc\n"), FormatYAML)
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "A_ps.fxc", m.Entries[0].PixelShaderFile)
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(f.String(), func(t *testing.T) {
			want := sample()
			data, err := Serialize(want, f)
			require.NoError(t, err)

			got, err := Parse(data, f)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSerializeOmitsAuto(t *testing.T) {
	m := &Manifest{Entries: []Entry{{Name: "A", VertexShaderFile: "A_vs.fxc"}}}
	data, err := Serialize(m, FormatJSON)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "encoding")
	assert.NotContains(t, string(data), "pixel_shader_file")
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		f    Format
	}{
		{"json truncated", `{"shaders": [`, FormatJSON},
		{"json empty", "   ", FormatJSON},
		{"json unknown key", `{"shaders": [{"name": "A", "vertex_shader": "A_vs.fxc"}]}`, FormatJSON},
		{"json trailing data", `{"shaders": []} []`, FormatJSON},
		{"yaml bad indentation", "shaders:\n  - name: A\n bad: [", FormatYAML},
		{"yaml unknown key", "shaders:\n  - name: A\n    vertex: A_vs.fxc\n", FormatYAML},
		{"yaml empty", "", FormatYAML},
		{"toml malformed", "[[shaders]\nname = 1", FormatTOML},
		{"toml unknown key", "[[shaders]]\nname = \"A\"\nvs = \"A_vs.fxc\"\n", FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.f)
			require.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestParseSemanticErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no shader files", `[{"name": "A"}]`},
		{"empty name", `[{"name": "", "vertex_shader_file": "x_vs.fxc"}]`},
		{"missing name", `[{"vertex_shader_file": "x_vs.fxc"}]`},
		{"duplicate name", `[{"name": "A", "vertex_shader_file": "a.fxc"}, {"name": "A", "pixel_shader_file": "b.fxc"}]`},
		{"unknown encoding", `[{"name": "A", "vertex_shader_file": "a.fxc", "encoding": "ebcdic"}]`},
		{"unknown manifest encoding", `{"encoding": "klingon", "shaders": []}`},
		{"unknown container format", `{"format": "zip", "shaders": []}`},
		{"escaping path", `[{"name": "A", "vertex_shader_file": "../a.fxc"}]`},
		{"absolute path", `[{"name": "A", "pixel_shader_file": "/etc/a.fxc"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatJSON)
			require.ErrorIs(t, err, ErrSemantic)
		})
	}
}

func TestParseContainerFormat(t *testing.T) {
	m, err := Parse([]byte(`{"format": "stream", "shaders": [{"name": "A", "vertex_shader_file": "A_vs.fxc"}]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, LayoutStream, m.Layout)

	m.Layout = ""
	data, err := Serialize(m, FormatJSON)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"format"`)
}

func TestSerializeRejectsInvalid(t *testing.T) {
	_, err := Serialize(&Manifest{Entries: []Entry{{Name: "A"}}}, FormatJSON)
	require.ErrorIs(t, err, ErrSemantic)
}

func TestEncodingFor(t *testing.T) {
	m := sample()
	assert.Equal(t, charset.ShiftJIS, m.EncodingFor(&m.Entries[0]))
	assert.Equal(t, charset.Windows1252, m.EncodingFor(&m.Entries[2]))
}

func TestLookupAndFiles(t *testing.T) {
	m := sample()

	e, ok := m.Lookup("テスト")
	require.True(t, ok)
	assert.True(t, e.HasVertex())
	assert.False(t, e.HasPixel())

	_, ok = m.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, map[string]struct{}{
		"Basic_vs.fxc":    {},
		"Basic_ps.fxc":    {},
		"テスト_vs.fxc":      {},
		"sub/café_ps.fxc": {},
	}, m.Files())
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"metadata.json": FormatJSON,
		"shaders.YAML":  FormatYAML,
		"shaders.yml":   FormatYAML,
		"a/b/c.toml":    FormatTOML,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFromPath("metadata.txt")
	require.Error(t, err)
}
