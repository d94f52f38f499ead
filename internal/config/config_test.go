package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaphox/winzig/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, ".", cfg.Output.Indent)
	assert.True(t, cfg.Tokens.Comments)
	assert.True(t, cfg.Diagnostics.Hints)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestParse_TOML(t *testing.T) {
	data := []byte(`
[output]
format = "yaml"
indent = "  "

[tokens]
comments = false

[diagnostics]
hints = false

[log]
level = "debug"
format = "json"
`)
	cfg, err := config.Parse(data, config.FormatTOML)
	require.NoError(t, err)

	want := config.Config{
		Output:      config.Output{Format: "yaml", Indent: "  "},
		Tokens:      config.Tokens{Comments: false},
		Diagnostics: config.Diagnostics{Hints: false},
		Log:         config.Log{Level: "debug", Format: "json"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_YAML(t *testing.T) {
	data := []byte("output:\n  format: cbor\nlog:\n  level: error\n")
	cfg, err := config.Parse(data, config.FormatYAML)
	require.NoError(t, err)

	want := config.Default()
	want.Output.Format = "cbor"
	want.Log.Level = "error"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

// Keys left out keep their defaults, including siblings in the same table.
func TestParse_Partial(t *testing.T) {
	cfg, err := config.Parse([]byte("[log]\nlevel = \"info\"\n"), config.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, config.Default().Output, cfg.Output)

	for _, f := range []config.Format{config.FormatTOML, config.FormatYAML} {
		cfg, err := config.Parse(nil, f)
		require.NoError(t, err, f.String())
		assert.Equal(t, config.Default(), cfg, f.String())
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		data   string
		format config.Format
		msg    string
	}{
		{"unknown section", "[colours]\nred = true\n", config.FormatTOML, "invalid config"},
		{"unknown key", "[output]\nwidth = 3\n", config.FormatTOML, "invalid config"},
		{"wrong type", "[diagnostics]\nhints = \"yes\"\n", config.FormatTOML, "invalid config"},
		{"bad enum", "output:\n  format: xml\n", config.FormatYAML, "invalid config"},
		{"empty indent", "[output]\nindent = \"\"\n", config.FormatTOML, "invalid config"},
		{"bad log level", "log:\n  level: loud\n", config.FormatYAML, "invalid config"},
		{"toml syntax", "[output\n", config.FormatTOML, "decode toml"},
		{"yaml syntax", "output: [\n", config.FormatYAML, "decode yaml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.data), tc.format)
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, config.FormatTOML, config.DetectFormat("winzig.toml"))
	assert.Equal(t, config.FormatTOML, config.DetectFormat("winzig"))
	assert.Equal(t, config.FormatYAML, config.DetectFormat("a/b.yaml"))
	assert.Equal(t, config.FormatYAML, config.DetectFormat("B.YML"))
}

func TestDiscoverAndLoad(t *testing.T) {
	dir := t.TempDir()

	_, ok := config.Discover(dir)
	assert.False(t, ok)

	yamlPath := filepath.Join(dir, ".winzig.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("output:\n  format: json\n"), 0o644))
	path, ok := config.Discover(dir)
	require.True(t, ok)
	assert.Equal(t, yamlPath, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)

	// TOML wins when both exist.
	tomlPath := filepath.Join(dir, ".winzig.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[output]\nformat = \"yaml\"\n"), 0o644))
	path, ok = config.Discover(dir)
	require.True(t, ok)
	assert.Equal(t, tomlPath, path)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := config.Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[log]\nlevel = 3\n"), 0o644))
	_, err = config.Load(bad)
	assert.ErrorContains(t, err, bad)
	assert.ErrorContains(t, err, "invalid config")
}
