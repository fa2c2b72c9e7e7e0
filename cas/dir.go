package cas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DirCAS keeps one file per entry under Root, fanned out by the first byte of
// the hash. Refs live under Root/refs.
type DirCAS struct {
	Root string
}

func NewDirCAS(root string) (*DirCAS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DirCAS{Root: root}, nil
}

func (d *DirCAS) path(hash Hash) string {
	s := hash.String()
	return filepath.Join(d.Root, "objects", s[:2], s[2:])
}

func (d *DirCAS) refPath(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid ref name %q", name)
	}
	return filepath.Join(d.Root, "refs", clean), nil
}

// writeAtomic writes data to a uniquely named temp file beside path and
// renames it into place.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(path), "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (d *DirCAS) Has(hash Hash) bool {
	_, err := os.Stat(d.path(hash))
	return err == nil
}

func (d *DirCAS) Put(data []byte) (Hash, error) {
	h := HashBytes(data)
	if d.Has(h) {
		return h, nil
	}
	if err := writeAtomic(d.path(h), data); err != nil {
		return 0, fmt.Errorf("writing %s: %w", h, err)
	}
	log.Trace().Str("hash", h.String()).Int("bytes", len(data)).Msg("cas: stored object")
	return h, nil
}

func (d *DirCAS) Get(hash Hash) ([]byte, error) {
	data, err := os.ReadFile(d.path(hash))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if HashBytes(data) != hash {
		return nil, fmt.Errorf("object %s is corrupt", hash)
	}
	return data, nil
}

func (d *DirCAS) SetRef(name string, hash Hash) error {
	p, err := d.refPath(name)
	if err != nil {
		return err
	}
	return writeAtomic(p, []byte(hash.String()+"\n"))
}

func (d *DirCAS) Ref(name string) (Hash, bool, error) {
	p, err := d.refPath(name)
	if err != nil {
		return 0, false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	h, err := ParseHash(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false, err
	}
	return h, true, nil
}
