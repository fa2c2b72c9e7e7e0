// Package cas stores compiled closures by content hash. Nested closures are
// stored as separate entries and referenced by hash, so function bodies
// shared between programs are stored once.
package cas

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dgryski/go-farm"
)

type Hash uint64

func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

func ParseHash(s string) (Hash, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	return Hash(v), nil
}

// HashBytes is the content hash used by every store.
func HashBytes(data []byte) Hash {
	return Hash(farm.Hash64(data))
}

var (
	ErrNotFound        = errors.New("hash not found in CAS")
	ErrRefsUnsupported = errors.New("store does not support refs")
)

// Store holds immutable blobs addressed by HashBytes of their content.
type Store interface {
	Put(data []byte) (Hash, error)
	Get(hash Hash) ([]byte, error)
	Has(hash Hash) bool
}

// RefStore is a Store that can also bind mutable names to hashes.
type RefStore interface {
	Store
	SetRef(name string, hash Hash) error
	Ref(name string) (Hash, bool, error)
}
