package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsc/internal/compiler"
)

const fullProject = `
project: {
	platform: "pico"
	sources: ["src/main.json", "/abs/lib.json"]
	resources: {
		tiles: "gfx/tiles.hex"
		font:  null
	}
	globals: ["score"]
	strings: ["hello"]
	syscalls: ["beep"]
	options: {
		mode:     "fast"
		platform: "meta"
	}
}
`

func TestParseProject(t *testing.T) {
	p, err := Parse("/work", FileName, []byte(fullProject))
	require.NoError(t, err)

	assert.Equal(t, "/work", p.Dir)
	assert.Equal(t, "pico", p.Platform)
	assert.Equal(t, []string{"/work/src/main.json", "/abs/lib.json"}, p.Sources)
	assert.Equal(t, []Resource{
		{Name: "font"},
		{Name: "tiles", Path: "/work/gfx/tiles.hex"},
	}, p.Resources)
	assert.Equal(t, []string{"score"}, p.Globals)
	assert.Equal(t, map[string]string{"mode": "fast", "platform": "meta"}, p.Options)
}

func TestCompilerOptions(t *testing.T) {
	p, err := Parse("/work", FileName, []byte(fullProject))
	require.NoError(t, err)

	opts := p.CompilerOptions()
	assert.Equal(t, "pico", opts.Platform(), "typed platform wins over options")
	assert.Equal(t, "fast", opts.Get("mode"))
	assert.Equal(t, []string{"score"}, opts.Globals())
	assert.Equal(t, []string{"hello"}, opts.Strings())
	assert.Equal(t, []string{"beep"}, opts.Syscalls())
	assert.Equal(t, []string{"globals", "mode", compiler.OptPlatform, "strings", "syscalls"}, opts.Keys())
}

func TestMinimalProject(t *testing.T) {
	p, err := Parse("/work", FileName, []byte(`project: sources: ["a.json"]`))
	require.NoError(t, err)
	assert.Empty(t, p.Platform)
	assert.Empty(t, p.Resources)
	assert.Empty(t, p.CompilerOptions().Keys())
}

func TestInvalidProjects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no project", `other: 1`, "no project field defined"},
		{"no sources", `project: platform: "std"`, "sources"},
		{"empty sources", `project: sources: []`, "sources"},
		{"wrong type", "project: {\n\tsources: [\"a.json\"]\n\tplatform: 3\n}", "platform"},
		{"unknown field", "project: {\n\tsources: [\"a.json\"]\n\ttarget: \"x\"\n}", "target"},
		{"bad resource", "project: {\n\tsources: [\"a.json\"]\n\tresources: r: 1\n}", "resources"},
		{"syntax", `project: {`, "project"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("/work", FileName, []byte(tt.src))
			require.Error(t, err)
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "got %T: %v", err, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	src := "package game\n\nproject: {\n\tsources: [\"main.json\"]\n\tglobals: [\"lives\"]\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(src), 0644))

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "main.json")}, p.Sources)
	assert.Equal(t, []string{"lives"}, p.Globals)
}

func TestLoadPositionsErrors(t *testing.T) {
	dir := t.TempDir()
	src := "package game\n\nproject: {\n\tsources: [\"main.json\"]\n\tplatform: 3\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(src), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.True(t, cerr.Pos.IsValid())
	assert.Contains(t, cerr.Field, "platform")
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "project", cerr.Field)
}
