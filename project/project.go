// Package project loads lumen.toml project files.
package project

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/timewinder-dev/lumen/vm"
)

type Project struct {
	Program ProgramConfig  `toml:"program"`
	Cache   CacheConfig    `toml:"cache,omitempty"`
	Log     LogConfig      `toml:"log,omitempty"`
	Globals map[string]any `toml:"globals,omitempty"`
}

type ProgramConfig struct {
	File     string `toml:"file,omitempty"`
	MaxSteps uint64 `toml:"max_steps,omitempty"`
}

type CacheConfig struct {
	Dir     string `toml:"dir,omitempty"`
	Entries int    `toml:"entries,omitempty"`
}

type LogConfig struct {
	Level string `toml:"level,omitempty"`
}

func Parse(r io.Reader) (*Project, error) {
	var out Project
	md, err := toml.NewDecoder(r).Decode(&out)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown project keys: %s", strings.Join(keys, ", "))
	}
	return &out, nil
}

// LoadFromFile parses the project at path. An empty program file defaults
// to the project name with a .star extension. Relative paths are resolved
// against the project file's directory.
func LoadFromFile(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Program.File == "" {
		base := filepath.Base(path)
		p.Program.File = strings.TrimSuffix(base, filepath.Ext(base)) + ".star"
	}
	if strings.EqualFold(filepath.Ext(p.Program.File), ".toml") {
		return nil, fmt.Errorf("%s: program.file %q names a project file, not a program", path, p.Program.File)
	}
	dir := filepath.Dir(path)
	p.Program.File = resolve(dir, p.Program.File)
	if p.Cache.Dir != "" {
		p.Cache.Dir = resolve(dir, p.Cache.Dir)
	}
	return p, nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(dir, p))
}

// GlobalValues converts the [globals] table into machine globals. Integers
// and floats become numbers; nested tables and arrays are rejected.
func (p *Project) GlobalValues() (map[string]vm.Value, error) {
	out := make(map[string]vm.Value, len(p.Globals))
	names := make([]string, 0, len(p.Globals))
	for name := range p.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch v := p.Globals[name].(type) {
		case int64:
			out[name] = vm.NumberValue(float64(v))
		case float64:
			out[name] = vm.NumberValue(v)
		case string:
			out[name] = vm.StrValue(v)
		case bool:
			out[name] = vm.BoolValue(v)
		default:
			return nil, fmt.Errorf("global %q: unsupported value of type %T", name, v)
		}
	}
	return out, nil
}
