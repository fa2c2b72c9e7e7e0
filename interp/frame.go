package interp

import (
	"fmt"

	"github.com/timewinder-dev/lumen/ast"
	"github.com/timewinder-dev/lumen/vm"
)

// CallFrame is the execution context of one active call. Its register file is
// owned exclusively by the frame.
type CallFrame struct {
	Closure   *vm.Closure
	IP        int
	Registers []vm.Value

	// Dst is the caller register receiving the return value. It is only
	// meaningful when HasDst is set.
	Dst    vm.Register
	HasDst bool
}

// NewCallFrame sizes the register file from the closure and copies args into
// the leading registers. Remaining registers start as None.
func NewCallFrame(c *vm.Closure, args []vm.Value) *CallFrame {
	regs := make([]vm.Value, int(c.Registers)+1)
	n := copy(regs, args)
	for i := n; i < len(regs); i++ {
		regs[i] = vm.None
	}
	return &CallFrame{Closure: c, Registers: regs}
}

func (f *CallFrame) Get(r vm.Register) vm.Value {
	if int(r) >= len(f.Registers) {
		panic(&vm.InternalError{Msg: fmt.Sprintf("register r%d out of range (len %d)", r, len(f.Registers))})
	}
	return f.Registers[r]
}

func (f *CallFrame) Set(r vm.Register, v vm.Value) {
	if int(r) >= len(f.Registers) {
		panic(&vm.InternalError{Msg: fmt.Sprintf("register r%d out of range (len %d)", r, len(f.Registers))})
	}
	f.Registers[r] = v
}

// Pos is the source position of the instruction about to execute.
func (f *CallFrame) Pos() ast.Position {
	if f.IP < 0 || f.IP >= len(f.Closure.Code) {
		return ast.Position{}
	}
	return f.Closure.Code[f.IP].Pos
}
