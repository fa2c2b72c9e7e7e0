package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func code(ops ...Op) []Instruction {
	out := make([]Instruction, len(ops))
	for i, op := range ops {
		out[i] = Instruction{Op: op}
	}
	return out
}

func TestValidateCompiledCode(t *testing.T) {
	require.NoError(t, sampleProgram().Validate())
	require.NoError(t, Compile(chunk()).Validate())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		closure *Closure
		message string
	}{
		{
			name:    "empty code",
			closure: &Closure{},
			message: "empty code",
		},
		{
			name:    "falls off the end",
			closure: &Closure{Code: code(MoveOp(0, 0))},
			message: "does not end",
		},
		{
			name:    "string address",
			closure: &Closure{Code: code(LoadStringOp(0, 7), ReturnNoneOp()), Registers: 1},
			message: "string address 7",
		},
		{
			name:    "number address",
			closure: &Closure{Code: code(LoadNumberOp(0, 0), ReturnNoneOp())},
			message: "number address 0",
		},
		{
			name:    "closure address",
			closure: &Closure{Code: code(LoadClosureOp(0, 1), ReturnNoneOp()), Closures: []*Closure{{Code: code(ReturnNoneOp())}}},
			message: "closure address 1",
		},
		{
			name:    "global name address",
			closure: &Closure{Code: code(StoreGlobalOp(0, 0), ReturnNoneOp())},
			message: "string address 0",
		},
		{
			name:    "register",
			closure: &Closure{Code: code(MoveOp(2, 0), ReturnNoneOp()), Registers: 1},
			message: "register r2",
		},
		{
			name:    "binary register",
			closure: &Closure{Code: code(BinaryOp(ADD, 0, 0, 3), ReturnNoneOp()), Registers: 2},
			message: "register r3",
		},
		{
			name:    "return register",
			closure: &Closure{Code: code(ReturnOp(4))},
			message: "register r4",
		},
		{
			name:    "argument block",
			closure: &Closure{Code: code(CallOp(0, 1, 3), ReturnNoneOp()), Registers: 2},
			message: "argument block",
		},
		{
			name:    "call destination",
			closure: &Closure{Code: code(CallIntoOp(0, 1, 1, 9), ReturnNoneOp()), Registers: 2},
			message: "register r9",
		},
		{
			name:    "jump target",
			closure: &Closure{Code: code(JumpOp(2), ReturnNoneOp())},
			message: "jump target @2",
		},
		{
			name:    "conditional jump target",
			closure: &Closure{Code: code(JumpIfOp(true, 0, 5), ReturnNoneOp())},
			message: "jump target @5",
		},
		{
			name:    "unknown opcode",
			closure: &Closure{Code: code(Op{Code: OpcodeMax}, ReturnNoneOp())},
			message: "unknown opcode",
		},
		{
			name:    "nested closure",
			closure: &Closure{Code: code(ReturnNoneOp()), Closures: []*Closure{{Code: code(LoadStringOp(0, 0), ReturnNoneOp())}}},
			message: "main/0: ip 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.closure.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidateAcceptsBoundaries(t *testing.T) {
	c := &Closure{
		Code:      code(CallIntoOp(0, 1, 2, 2), JumpIfOp(false, 2, 0), CallOp(0, 0, 0), ReturnOp(2)),
		Registers: 2,
	}
	assert.NoError(t, c.Validate())
}
