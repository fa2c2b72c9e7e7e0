package interp

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/lumen/vm"
)

type StepResult int

const (
	ContinueStep StepResult = iota
	CallStep                // a compiled callee frame was pushed
	ReturnStep              // the current frame was popped
)

func (r StepResult) String() string {
	switch r {
	case ContinueStep:
		return "Continue"
	case CallStep:
		return "Call"
	case ReturnStep:
		return "Return"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// Step executes one instruction of the current frame.
func (m *Machine) Step() (StepResult, error) {
	f := m.Frame()
	if f == nil {
		return ContinueStep, ErrNoFrame
	}
	inst := f.Closure.At(f.IP)
	op := inst.Op

	log.Trace().
		Int("depth", len(m.Stack)).
		Int("ip", f.IP).
		Stringer("op", op).
		Stringer("pos", inst.Pos).
		Msg("step")

	switch op.Code {
	case vm.NOP:
		f.IP++
	case vm.JUMP:
		f.IP = int(op.Target())
	case vm.JUMP_IF:
		if f.Get(op.A).AsBool() == !op.Flag {
			f.IP = int(op.Target())
		} else {
			f.IP++
		}
	case vm.MOVE:
		f.Set(op.A, f.Get(op.B))
		f.IP++
	case vm.LOAD_STRING:
		f.Set(op.A, vm.StrValue(f.Closure.StringAt(op.Addr())))
		f.IP++
	case vm.LOAD_NUMBER:
		f.Set(op.A, vm.NumberValue(f.Closure.NumberAt(op.Addr())))
		f.IP++
	case vm.LOAD_CLOSURE:
		f.Set(op.A, vm.NewFunction(f.Closure.ClosureAt(op.Addr())))
		f.IP++
	case vm.LOAD_GLOBAL:
		name := f.Closure.StringAt(op.Addr())
		v, ok := m.Globals[name]
		if !ok {
			v = vm.None
		}
		f.Set(op.A, v)
		f.IP++
	case vm.STORE_GLOBAL:
		m.Globals[f.Closure.StringAt(op.Addr())] = f.Get(op.A)
		f.IP++
	case vm.CALL:
		return m.call(f, inst)
	case vm.RETURN:
		m.ret(f, op)
		return ReturnStep, nil
	default:
		switch {
		case op.Code.IsBinary():
			left, right := f.Get(op.B), f.Get(op.C)
			v, err := binary(op.Code, left, right)
			if err != nil {
				return ContinueStep, &Error{Err: err, Pos: inst.Pos}
			}
			f.Set(op.A, v)
		case op.Code.IsUnary():
			v, err := unary(op.Code, f.Get(op.B))
			if err != nil {
				return ContinueStep, &Error{Err: err, Pos: inst.Pos}
			}
			f.Set(op.A, v)
		default:
			panic(&vm.InternalError{Msg: fmt.Sprintf("unknown opcode %d at ip %d", op.Code, f.IP)})
		}
		f.IP++
	}
	return ContinueStep, nil
}

// call gathers the argument block and either runs a native to completion or
// pushes a frame for a compiled callee. The caller's IP is advanced first so
// the callee returns to the next instruction.
func (m *Machine) call(f *CallFrame, inst vm.Instruction) (StepResult, error) {
	op := inst.Op
	callee := f.Get(op.A)
	fn, ok := callee.(*vm.FunctionValue)
	if !ok {
		return ContinueStep, &Error{Err: &CannotCallError{Type: callee.Type()}, Pos: inst.Pos}
	}
	args := make([]vm.Value, op.Argc())
	for i := range args {
		args[i] = f.Get(op.B + vm.Register(i))
	}
	f.IP++

	if fn.IsNative() {
		v, err := m.callNative(fn.Native, args, inst.Pos)
		if err != nil {
			log.Trace().Str("native", fn.Native.Name).Err(err).Msg("native call failed")
			return ContinueStep, &Error{Err: &CustomError{Message: err.Error(), Err: err}, Pos: inst.Pos}
		}
		if v == nil {
			v = vm.None
		}
		if op.Flag {
			f.Set(op.C, v)
		}
		return ContinueStep, nil
	}

	next := NewCallFrame(fn.Closure, args)
	next.Dst = op.C
	next.HasDst = op.Flag
	m.Stack = append(m.Stack, next)
	log.Trace().Int("depth", len(m.Stack)).Int("argc", len(args)).Msg("pushed call frame")
	return CallStep, nil
}

func (m *Machine) ret(f *CallFrame, op vm.Op) {
	var v vm.Value
	if op.Flag {
		v = f.Get(op.A)
	}
	m.Stack = m.Stack[:len(m.Stack)-1]
	m.result = v
	if caller := m.Frame(); caller != nil && f.HasDst {
		if v == nil {
			v = vm.None
		}
		caller.Set(f.Dst, v)
	}
}
