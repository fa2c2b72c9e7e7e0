package vm

import (
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/timewinder-dev/lumen/ast"
)

// Closure is one compiled bytecode unit: the instructions of a function body
// (or the top-level chunk) together with its constant pools. A Closure is
// never modified once the compiler hands it out, so any number of call frames
// may share it.
type Closure struct {
	Code      []Instruction
	Registers Register // frame size: highest simultaneous register count
	Strings   []string
	Numbers   []float64
	Closures  []*Closure
}

// InternalError reports malformed bytecode. The compiler never produces it,
// so it is raised with panic rather than returned.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Msg
}

func internalf(format string, args ...any) {
	panic(&InternalError{Msg: fmt.Sprintf(format, args...)})
}

func (c *Closure) At(ip int) Instruction {
	if ip < 0 || ip >= len(c.Code) {
		internalf("instruction pointer %d out of range (len %d)", ip, len(c.Code))
	}
	return c.Code[ip]
}

func (c *Closure) StringAt(addr Address) string {
	if int(addr) >= len(c.Strings) {
		internalf("string address %d out of range (len %d)", addr, len(c.Strings))
	}
	return c.Strings[addr]
}

func (c *Closure) NumberAt(addr Address) float64 {
	if int(addr) >= len(c.Numbers) {
		internalf("number address %d out of range (len %d)", addr, len(c.Numbers))
	}
	return c.Numbers[addr]
}

func (c *Closure) ClosureAt(addr Address) *Closure {
	if int(addr) >= len(c.Closures) {
		internalf("closure address %d out of range (len %d)", addr, len(c.Closures))
	}
	return c.Closures[addr]
}

// Here is the address the next written instruction will occupy.
func (c *Closure) Here() Address {
	return Address(len(c.Code))
}

func (c *Closure) write(op Op, pos ast.Position) Address {
	addr := c.Here()
	c.Code = append(c.Code, Instruction{Op: op, Pos: pos})
	return addr
}

// overwrite replaces the op at addr, keeping its source position.
func (c *Closure) overwrite(addr Address, op Op) {
	if int(addr) >= len(c.Code) {
		internalf("overwrite of address %d out of range (len %d)", addr, len(c.Code))
	}
	c.Code[addr].Op = op
}

func (c *Closure) newString(s string) Address {
	if i := slices.Index(c.Strings, s); i >= 0 {
		return Address(i)
	}
	c.Strings = append(c.Strings, s)
	return Address(len(c.Strings) - 1)
}

// newNumber deduplicates by bit pattern so that 0 and -0 stay distinct.
func (c *Closure) newNumber(n float64) Address {
	bits := math.Float64bits(n)
	for i, v := range c.Numbers {
		if math.Float64bits(v) == bits {
			return Address(i)
		}
	}
	c.Numbers = append(c.Numbers, n)
	return Address(len(c.Numbers) - 1)
}

func (c *Closure) newClosure(sub *Closure) Address {
	c.Closures = append(c.Closures, sub)
	return Address(len(c.Closures) - 1)
}

// Equal reports whether two closures have identical code, positions and
// pools, recursively.
func (c *Closure) Equal(o *Closure) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	if c.Registers != o.Registers ||
		!slices.Equal(c.Code, o.Code) ||
		!slices.Equal(c.Strings, o.Strings) ||
		len(c.Numbers) != len(o.Numbers) ||
		len(c.Closures) != len(o.Closures) {
		return false
	}
	for i := range c.Numbers {
		if math.Float64bits(c.Numbers[i]) != math.Float64bits(o.Numbers[i]) {
			return false
		}
	}
	for i := range c.Closures {
		if !c.Closures[i].Equal(o.Closures[i]) {
			return false
		}
	}
	return true
}

func (c *Closure) DebugPrint() {
	c.Disassemble(os.Stdout)
}

// Disassemble writes a listing of c and every nested closure to w.
func (c *Closure) Disassemble(w io.Writer) error {
	return c.disassemble(w, "main")
}

func (c *Closure) disassemble(w io.Writer, name string) error {
	_, err := fmt.Fprintf(w, "*** %s (registers=%d, strings=%d, numbers=%d, closures=%d)\n",
		name, c.Registers, len(c.Strings), len(c.Numbers), len(c.Closures))
	if err != nil {
		return err
	}
	for i, inst := range c.Code {
		if _, err := fmt.Fprintf(w, "  %03d: %-32s %s%s\n", i, inst.Op, inst.Pos, c.comment(inst.Op)); err != nil {
			return err
		}
	}
	for i, sub := range c.Closures {
		if err := sub.disassemble(w, fmt.Sprintf("%s/%d", name, i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Closure) comment(op Op) string {
	switch op.Code {
	case LOAD_STRING:
		if int(op.Arg) < len(c.Strings) {
			return fmt.Sprintf("  ; %q", c.Strings[op.Arg])
		}
	case LOAD_GLOBAL, STORE_GLOBAL:
		if int(op.Arg) < len(c.Strings) {
			return "  ; " + c.Strings[op.Arg]
		}
	case LOAD_NUMBER:
		if int(op.Arg) < len(c.Numbers) {
			return "  ; " + NumberValue(c.Numbers[op.Arg]).String()
		}
	}
	return ""
}
