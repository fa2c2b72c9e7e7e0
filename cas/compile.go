package cas

import (
	"fmt"

	"github.com/dgryski/go-farm"
	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/lumen/vm"
)

// CompileCache remembers the closure compiled from a given source text.
// Entries are refs named by the image and compiler versions and a
// fingerprint of the source, so a cache directory can be shared between runs
// and between builds.
type CompileCache struct {
	store   RefStore
	version string
}

func NewCompileCache(store RefStore) *CompileCache {
	return &CompileCache{
		store:   store,
		version: fmt.Sprintf("v%d.%d", vm.ImageVersion, vm.CompilerVersion),
	}
}

func (c *CompileCache) sourceRef(source []byte) string {
	return fmt.Sprintf("compile/%s/%016x", c.version, farm.Fingerprint64(source))
}

// Lookup returns the cached closure for source, if any.
func (c *CompileCache) Lookup(source []byte) (*vm.Closure, bool, error) {
	name := c.sourceRef(source)
	h, ok, err := c.store.Ref(name)
	if err != nil || !ok {
		return nil, false, err
	}
	cl, err := GetClosure(c.store, h)
	if err != nil {
		return nil, false, fmt.Errorf("compile cache %s: %w", name, err)
	}
	log.Debug().Str("ref", name).Str("hash", h.String()).Msg("compile cache hit")
	return cl, true, nil
}

// Remember stores cl as the compilation of source.
func (c *CompileCache) Remember(source []byte, cl *vm.Closure) (Hash, error) {
	h, err := PutClosure(c.store, cl)
	if err != nil {
		return 0, err
	}
	name := c.sourceRef(source)
	if err := c.store.SetRef(name, h); err != nil {
		return 0, err
	}
	log.Debug().Str("ref", name).Str("hash", h.String()).Msg("compile cache store")
	return h, nil
}
