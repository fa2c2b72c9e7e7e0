package vm

import (
	"fmt"

	"github.com/timewinder-dev/lumen/ast"
)

type Register uint16

type Address uint32

// Op is a single decoded instruction. The meaning of each field depends on
// Code; see the table in opcodes.go.
type Op struct {
	Code Opcode
	A    Register
	B    Register
	C    Register
	Arg  uint32
	Flag bool
}

// Instruction pairs an Op with the source position it was compiled from.
type Instruction struct {
	Op  Op
	Pos ast.Position
}

func JumpOp(target Address) Op {
	return Op{Code: JUMP, Arg: uint32(target)}
}

// JumpIfOp branches to target iff truthiness(cond) == !not.
func JumpIfOp(not bool, cond Register, target Address) Op {
	return Op{Code: JUMP_IF, A: cond, Arg: uint32(target), Flag: not}
}

// CallOp calls fn with argc arguments starting at args and discards the result.
func CallOp(fn, args Register, argc int) Op {
	return Op{Code: CALL, A: fn, B: args, Arg: uint32(argc)}
}

// CallIntoOp is CallOp delivering the return value into dst.
func CallIntoOp(fn, args Register, argc int, dst Register) Op {
	return Op{Code: CALL, A: fn, B: args, C: dst, Arg: uint32(argc), Flag: true}
}

func ReturnOp(src Register) Op {
	return Op{Code: RETURN, A: src, Flag: true}
}

func ReturnNoneOp() Op {
	return Op{Code: RETURN}
}

func MoveOp(dst, src Register) Op {
	return Op{Code: MOVE, A: dst, B: src}
}

func LoadStringOp(dst Register, addr Address) Op {
	return Op{Code: LOAD_STRING, A: dst, Arg: uint32(addr)}
}

func LoadNumberOp(dst Register, addr Address) Op {
	return Op{Code: LOAD_NUMBER, A: dst, Arg: uint32(addr)}
}

func LoadClosureOp(dst Register, addr Address) Op {
	return Op{Code: LOAD_CLOSURE, A: dst, Arg: uint32(addr)}
}

func LoadGlobalOp(dst Register, name Address) Op {
	return Op{Code: LOAD_GLOBAL, A: dst, Arg: uint32(name)}
}

func StoreGlobalOp(src Register, name Address) Op {
	return Op{Code: STORE_GLOBAL, A: src, Arg: uint32(name)}
}

func BinaryOp(code Opcode, dst, left, right Register) Op {
	if !code.IsBinary() {
		panic(fmt.Sprintf("BinaryOp: %s is not a binary opcode", code))
	}
	return Op{Code: code, A: dst, B: left, C: right}
}

func UnaryOp(code Opcode, dst, src Register) Op {
	if !code.IsUnary() {
		panic(fmt.Sprintf("UnaryOp: %s is not a unary opcode", code))
	}
	return Op{Code: code, A: dst, B: src}
}

func (o Op) Target() Address {
	return Address(o.Arg)
}

func (o Op) Addr() Address {
	return Address(o.Arg)
}

func (o Op) Argc() int {
	return int(o.Arg)
}

func (o Op) String() string {
	switch o.Code {
	case NOP:
		return "NOP"
	case JUMP:
		return fmt.Sprintf("JUMP @%d", o.Arg)
	case JUMP_IF:
		if o.Flag {
			return fmt.Sprintf("JUMP_IF not r%d @%d", o.A, o.Arg)
		}
		return fmt.Sprintf("JUMP_IF r%d @%d", o.A, o.Arg)
	case CALL:
		if o.Flag {
			return fmt.Sprintf("CALL r%d r%d..+%d -> r%d", o.A, o.B, o.Arg, o.C)
		}
		return fmt.Sprintf("CALL r%d r%d..+%d", o.A, o.B, o.Arg)
	case RETURN:
		if o.Flag {
			return fmt.Sprintf("RETURN r%d", o.A)
		}
		return "RETURN"
	case MOVE:
		return fmt.Sprintf("MOVE r%d r%d", o.A, o.B)
	case LOAD_STRING, LOAD_NUMBER, LOAD_CLOSURE, LOAD_GLOBAL:
		return fmt.Sprintf("%s r%d #%d", o.Code, o.A, o.Arg)
	case STORE_GLOBAL:
		return fmt.Sprintf("STORE_GLOBAL #%d r%d", o.Arg, o.A)
	case NEG, NOT:
		return fmt.Sprintf("%s r%d r%d", o.Code, o.A, o.B)
	}
	if o.Code.IsBinary() {
		return fmt.Sprintf("%s r%d r%d r%d", o.Code, o.A, o.B, o.C)
	}
	return o.Code.String()
}
