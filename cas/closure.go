package cas

import (
	"bytes"
	"fmt"
	"io"

	msgpack "github.com/shamaton/msgpack/v2"
	"github.com/timewinder-dev/lumen/vm"
)

// ClosureRef is the stored form of a vm.Closure. Nested closures are replaced
// by the hashes of their own entries.
type ClosureRef struct {
	Code      []vm.Instruction
	Registers vm.Register
	Strings   []string
	Numbers   []float64
	Closures  []Hash
}

func (r *ClosureRef) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, r)
}

func (r *ClosureRef) Deserialize(rd io.Reader) error {
	return msgpack.UnmarshalRead(rd, r)
}

// PutClosure stores c and every closure nested in it, children first, and
// returns the hash of c's entry.
func PutClosure(s Store, c *vm.Closure) (Hash, error) {
	if c == nil {
		return 0, fmt.Errorf("cannot store nil closure")
	}
	ref := &ClosureRef{
		Code:      c.Code,
		Registers: c.Registers,
		Strings:   c.Strings,
		Numbers:   c.Numbers,
	}
	for i, sub := range c.Closures {
		h, err := PutClosure(s, sub)
		if err != nil {
			return 0, fmt.Errorf("storing closure %d: %w", i, err)
		}
		ref.Closures = append(ref.Closures, h)
	}
	var buf bytes.Buffer
	if err := ref.Serialize(&buf); err != nil {
		return 0, err
	}
	return s.Put(buf.Bytes())
}

// GetClosure rebuilds the closure stored under hash and checks that it is
// executable.
func GetClosure(s Store, hash Hash) (*vm.Closure, error) {
	c, err := getClosure(s, hash)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("closure %s: %w", hash, err)
	}
	return c, nil
}

func getClosure(s Store, hash Hash) (*vm.Closure, error) {
	data, err := s.Get(hash)
	if err != nil {
		return nil, err
	}
	ref := &ClosureRef{}
	if err := ref.Deserialize(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("decoding closure %s: %w", hash, err)
	}
	c := &vm.Closure{
		Code:      ref.Code,
		Registers: ref.Registers,
		Strings:   ref.Strings,
		Numbers:   ref.Numbers,
	}
	for i, h := range ref.Closures {
		sub, err := getClosure(s, h)
		if err != nil {
			return nil, fmt.Errorf("closure %d of %s: %w", i, hash, err)
		}
		c.Closures = append(c.Closures, sub)
	}
	return c, nil
}

// hashOnly computes entry hashes without keeping the data.
type hashOnly struct{}

func (hashOnly) Put(data []byte) (Hash, error) { return HashBytes(data), nil }
func (hashOnly) Get(hash Hash) ([]byte, error) { return nil, ErrNotFound }
func (hashOnly) Has(hash Hash) bool            { return false }

// Sum is the hash PutClosure would return for c. Equal closures always have
// equal sums.
func Sum(c *vm.Closure) (Hash, error) {
	return PutClosure(hashOnly{}, c)
}
