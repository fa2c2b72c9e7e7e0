package lumen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/lumen/ast"
	"github.com/timewinder-dev/lumen/frontend"
	"github.com/timewinder-dev/lumen/interp"
	"github.com/timewinder-dev/lumen/vm"
)

func TestTestdata(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*"+SourceExt))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			want, err := os.ReadFile(strings.TrimSuffix(path, SourceExt) + ".out")
			require.NoError(t, err)

			prog, err := Load(path, Options{})
			require.NoError(t, err)
			var out bytes.Buffer
			_, err = prog.Run(&out)
			require.NoError(t, err)
			assert.Equal(t, string(want), out.String())
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestImageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join("testdata", "higher_order.star")
	prog, err := Load(src, Options{})
	require.NoError(t, err)

	img := filepath.Join(dir, "higher_order"+ImageExt)
	require.NoError(t, prog.WriteImage(img))

	loaded, err := Load(img, Options{})
	require.NoError(t, err)
	assert.True(t, prog.Closure.Equal(loaded.Closure))

	var out bytes.Buffer
	_, err = loaded.Run(&out)
	require.NoError(t, err)
	assert.Equal(t, "9\ntrue\n", out.String())
}

func TestBadImage(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad"+ImageExt, "not an image")
	_, err := Load(path, Options{})
	assert.ErrorIs(t, err, vm.ErrBadImage)
}

func TestInvalidImageCode(t *testing.T) {
	data, err := vm.MarshalImage(&vm.Closure{
		Code: []vm.Instruction{
			{Op: vm.LoadStringOp(0, 7)},
			{Op: vm.ReturnNoneOp()},
		},
		Registers: 1,
	})
	require.NoError(t, err)
	path := writeFile(t, t.TempDir(), "bad"+ImageExt, string(data))
	_, err = Load(path, Options{})
	assert.ErrorIs(t, err, vm.ErrBadImage)
}

func TestCompileCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prog.star", "print(1 + 1)\n")
	opts := Options{CacheDir: filepath.Join(dir, "cache"), CacheEntries: 16}

	first, err := Load(path, opts)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := Load(path, opts)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.True(t, first.Closure.Equal(second.Closure))

	// Editing the source misses the cache.
	writeFile(t, dir, "prog.star", "print(2 + 2)\n")
	third, err := Load(path, opts)
	require.NoError(t, err)
	assert.False(t, third.Cached)
}

func TestProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hello.star", "print(greeting, \", \", name)\n")
	path := writeFile(t, dir, "hello.toml", `
[cache]
dir = "cache"

[globals]
greeting = "hello"
name = "world"
`)
	prog, err := Load(path, Options{})
	require.NoError(t, err)
	require.NotNil(t, prog.Project)
	assert.Equal(t, filepath.Join(dir, "hello.star"), prog.Path)

	var out bytes.Buffer
	_, err = prog.Run(&out)
	require.NoError(t, err)
	assert.Equal(t, "hello, world\n", out.String())

	again, err := Load(path, Options{})
	require.NoError(t, err)
	assert.True(t, again.Cached)
}

func TestProjectCannotLoadItself(t *testing.T) {
	path := writeFile(t, t.TempDir(), "self.toml", "[program]\nfile = \"self.toml\"\n")
	_, err := Load(path, Options{})
	assert.ErrorContains(t, err, "names a project file")
}

func TestProjectStepLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spin.star", "x = 1\nwhile x:\n    x = x\n")
	path := writeFile(t, dir, "spin.toml", "[program]\nmax_steps = 100\n")
	prog, err := Load(path, Options{})
	require.NoError(t, err)
	_, err = prog.Run(&bytes.Buffer{})
	assert.ErrorIs(t, err, interp.ErrStepLimit)
}

func TestLoadSyntaxError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.star", "x = (\n")
	_, err := Load(path, Options{})
	var ferr *frontend.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, path, ferr.Filename)
}

func TestRuntimeErrorPosition(t *testing.T) {
	c, err := Compile("err.star", []byte("x = 1\nprint(x + \"a\")\n"))
	require.NoError(t, err)
	_, err = (&Program{Closure: c}).Run(&bytes.Buffer{})
	var rerr *interp.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ast.Pos(2, 9), rerr.Pos)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.star"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
