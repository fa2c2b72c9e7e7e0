// Package lumen ties the front end, compiler, closure store and virtual
// machine together: it loads a program from source, a bytecode image or a
// project file and runs it.
package lumen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/lumen/cas"
	"github.com/timewinder-dev/lumen/frontend"
	"github.com/timewinder-dev/lumen/interp"
	"github.com/timewinder-dev/lumen/project"
	"github.com/timewinder-dev/lumen/vm"
)

const (
	SourceExt  = ".star"
	ImageExt   = ".lbc"
	ProjectExt = ".toml"
)

type Options struct {
	// CacheDir enables the compile cache when set.
	CacheDir     string
	CacheEntries int
}

type Program struct {
	// Path is the source or image file the closure came from.
	Path    string
	Closure *vm.Closure
	// Project is set when the program was loaded through a project file.
	Project *project.Project
	// Cached reports whether the closure came from the compile cache.
	Cached bool
}

// Compile parses and compiles src.
func Compile(filename string, src []byte) (*vm.Closure, error) {
	chunk, err := frontend.Parse(filename, src)
	if err != nil {
		return nil, err
	}
	return vm.Compile(chunk), nil
}

// Load reads the program at path, choosing the loader by extension.
func Load(path string, opts Options) (*Program, error) {
	switch filepath.Ext(path) {
	case ProjectExt:
		p, err := project.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		if opts.CacheDir == "" {
			opts.CacheDir = p.Cache.Dir
		}
		if opts.CacheEntries == 0 {
			opts.CacheEntries = p.Cache.Entries
		}
		prog, err := Load(p.Program.File, opts)
		if err != nil {
			return nil, err
		}
		prog.Project = p
		return prog, nil
	case ImageExt:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		c, err := vm.UnmarshalImage(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &Program{Path: path, Closure: c}, nil
	}
	return loadSource(path, opts)
}

func loadSource(path string, opts Options) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cache *cas.CompileCache
	if opts.CacheDir != "" {
		dir, err := cas.NewDirCAS(opts.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		cache = cas.NewCompileCache(cas.NewLRUCache(dir, opts.CacheEntries))
		c, ok, err := cache.Lookup(src)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("ignoring unreadable compile cache entry")
		} else if ok {
			return &Program{Path: path, Closure: c, Cached: true}, nil
		}
	}
	c, err := Compile(path, src)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		if _, err := cache.Remember(src, c); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("couldn't update compile cache")
		}
	}
	return &Program{Path: path, Closure: c}, nil
}

// NewMachine builds a machine configured from the program's project, if it
// has one.
func (p *Program) NewMachine(out io.Writer, opts ...interp.Option) (*interp.Machine, error) {
	base := []interp.Option{interp.WithOutput(out)}
	if p.Project != nil {
		globals, err := p.Project.GlobalValues()
		if err != nil {
			return nil, err
		}
		base = append(base, interp.WithGlobals(globals))
		if p.Project.Program.MaxSteps > 0 {
			base = append(base, interp.WithStepLimit(p.Project.Program.MaxSteps))
		}
	}
	return interp.NewMachine(append(base, opts...)...), nil
}

// Run executes the program with print output going to out.
func (p *Program) Run(out io.Writer, opts ...interp.Option) (vm.Value, error) {
	m, err := p.NewMachine(out, opts...)
	if err != nil {
		return nil, err
	}
	return m.Run(p.Closure)
}

// WriteImage encodes the program's closure to path.
func (p *Program) WriteImage(path string) error {
	data, err := vm.MarshalImage(p.Closure)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
