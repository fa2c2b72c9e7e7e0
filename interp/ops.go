package interp

import (
	"fmt"
	"math"

	"github.com/timewinder-dev/lumen/vm"
)

func binary(code vm.Opcode, left, right vm.Value) (vm.Value, error) {
	switch code {
	case vm.EQ:
		return vm.BoolValue(vm.Equal(left, right)), nil
	case vm.NE:
		return vm.BoolValue(!vm.Equal(left, right)), nil
	case vm.AND:
		return vm.BoolValue(left.AsBool() && right.AsBool()), nil
	case vm.OR:
		return vm.BoolValue(left.AsBool() || right.AsBool()), nil
	}
	a, aok := left.(vm.NumberValue)
	b, bok := right.(vm.NumberValue)
	if !aok || !bok {
		return nil, &BinaryError{Op: code, Left: left.Type(), Right: right.Type()}
	}
	return numberOp(code, float64(a), float64(b)), nil
}

func numberOp(code vm.Opcode, a, b float64) vm.Value {
	switch code {
	case vm.ADD:
		return vm.NumberValue(a + b)
	case vm.SUB:
		return vm.NumberValue(a - b)
	case vm.MUL:
		return vm.NumberValue(a * b)
	case vm.DIV:
		return vm.NumberValue(a / b)
	case vm.MOD:
		return vm.NumberValue(math.Mod(a, b))
	case vm.POW:
		return vm.NumberValue(math.Pow(a, b))
	case vm.LT:
		return vm.BoolValue(a < b)
	case vm.GT:
		return vm.BoolValue(a > b)
	case vm.LE:
		return vm.BoolValue(a <= b)
	case vm.GE:
		return vm.BoolValue(a >= b)
	}
	panic(&vm.InternalError{Msg: fmt.Sprintf("%s is not a numeric operator", code)})
}

func unary(code vm.Opcode, right vm.Value) (vm.Value, error) {
	switch code {
	case vm.NOT:
		return vm.BoolValue(!right.AsBool()), nil
	case vm.NEG:
		n, ok := right.(vm.NumberValue)
		if !ok {
			return nil, &UnaryError{Op: code, Right: right.Type()}
		}
		return -n, nil
	}
	panic(&vm.InternalError{Msg: fmt.Sprintf("%s is not a unary operator", code)})
}
