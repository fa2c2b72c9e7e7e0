package interp

import (
	"errors"
	"fmt"

	"github.com/timewinder-dev/lumen/ast"
	"github.com/timewinder-dev/lumen/vm"
)

var (
	ErrNoFrame   = errors.New("no call frame")
	ErrStepLimit = errors.New("step limit exceeded")
)

// Error is a runtime error positioned at the instruction that raised it.
// Every error returned by Run has this shape.
type Error struct {
	Err error
	Pos ast.Position
}

func (e *Error) Error() string {
	if !e.Pos.IsValid() {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// BinaryError reports operands of the wrong type for an arithmetic or
// ordering operator.
type BinaryError struct {
	Op    vm.Opcode
	Left  string
	Right string
}

func (e *BinaryError) Error() string {
	return fmt.Sprintf("cannot apply %s to %s and %s", e.Op.Symbol(), e.Left, e.Right)
}

type UnaryError struct {
	Op    vm.Opcode
	Right string
}

func (e *UnaryError) Error() string {
	return fmt.Sprintf("cannot apply %s to %s", e.Op.Symbol(), e.Right)
}

type CannotCallError struct {
	Type string
}

func (e *CannotCallError) Error() string {
	return fmt.Sprintf("cannot call %s", e.Type)
}

// CustomError carries a failure raised by a native function.
type CustomError struct {
	Message string
	Err     error
}

func (e *CustomError) Error() string {
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}
