package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/lumen/vm"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadDefaultsProgramFile(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "hello.toml", "[log]\nlevel = \"debug\"\n")
	p, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hello.star"), p.Program.File)
	assert.Equal(t, "debug", p.Log.Level)
	assert.Empty(t, p.Cache.Dir)
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "lumen.toml", `
[program]
file = "src/main.star"
max_steps = 5000

[cache]
dir = ".cache"
entries = 64

[globals]
name = "world"
answer = 42
ratio = 0.5
enabled = true
`)
	p, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "main.star"), p.Program.File)
	assert.Equal(t, uint64(5000), p.Program.MaxSteps)
	assert.Equal(t, filepath.Join(dir, ".cache"), p.Cache.Dir)
	assert.Equal(t, 64, p.Cache.Entries)

	globals, err := p.GlobalValues()
	require.NoError(t, err)
	assert.Equal(t, map[string]vm.Value{
		"name":    vm.StrValue("world"),
		"answer":  vm.NumberValue(42),
		"ratio":   vm.NumberValue(0.5),
		"enabled": vm.BoolTrue,
	}, globals)
}

func TestAbsoluteProgramFile(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "prog.star")
	path := write(t, dir, "p.toml", "[program]\nfile = \""+filepath.ToSlash(abs)+"\"\n")
	p, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(abs), p.Program.File)
}

func TestUnknownKeysRejected(t *testing.T) {
	_, err := Parse(strings.NewReader("[program]\nentry = \"main\"\n"))
	require.ErrorContains(t, err, "program.entry")
}

func TestUnsupportedGlobal(t *testing.T) {
	p, err := Parse(strings.NewReader("[globals]\nlist = [1, 2]\n"))
	require.NoError(t, err)
	_, err = p.GlobalValues()
	assert.ErrorContains(t, err, `"list"`)
}

func TestMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProgramFileCannotBeProject(t *testing.T) {
	dir := t.TempDir()
	self := write(t, dir, "self.toml", "[program]\nfile = \"self.toml\"\n")
	_, err := LoadFromFile(self)
	require.ErrorContains(t, err, "names a project file")
	assert.ErrorContains(t, err, self)

	write(t, dir, "b.toml", "[program]\nfile = \"a.TOML\"\n")
	a := write(t, dir, "a.toml", "[program]\nfile = \"b.toml\"\n")
	_, err = LoadFromFile(a)
	assert.ErrorContains(t, err, "names a project file")
}
