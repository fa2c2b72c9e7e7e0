package vm

import (
	"fmt"
)

// Validate checks that c and every nested closure can be executed without
// an internal fault: opcodes are known, register operands fit the frame,
// pool addresses are in range, jumps land on an instruction and control
// cannot run off the end of the code.
func (c *Closure) Validate() error {
	return c.validate("main")
}

func (c *Closure) validate(name string) error {
	if len(c.Code) == 0 {
		return fmt.Errorf("%s: empty code", name)
	}
	last := c.Code[len(c.Code)-1].Op.Code
	if last != RETURN && last != JUMP {
		return fmt.Errorf("%s: code does not end in RETURN or JUMP", name)
	}
	for ip, inst := range c.Code {
		if err := c.validateOp(inst.Op); err != nil {
			return fmt.Errorf("%s: ip %d: %w", name, ip, err)
		}
	}
	for i, sub := range c.Closures {
		if sub == nil {
			return fmt.Errorf("%s: closure %d is nil", name, i)
		}
		if err := sub.validate(fmt.Sprintf("%s/%d", name, i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Closure) validateOp(op Op) error {
	reg := func(rs ...Register) error {
		for _, r := range rs {
			if r > c.Registers {
				return fmt.Errorf("register r%d out of range (registers %d)", r, c.Registers)
			}
		}
		return nil
	}
	pool := func(kind string, n int) error {
		if int(op.Arg) >= n {
			return fmt.Errorf("%s address %d out of range (len %d)", kind, op.Arg, n)
		}
		return nil
	}
	switch {
	case op.Code >= OpcodeMax:
		return fmt.Errorf("unknown opcode %d", op.Code)
	case op.Code.IsBinary():
		return reg(op.A, op.B, op.C)
	case op.Code.IsUnary():
		return reg(op.A, op.B)
	}
	switch op.Code {
	case NOP:
		return nil
	case JUMP:
		return c.validateTarget(op)
	case JUMP_IF:
		if err := reg(op.A); err != nil {
			return err
		}
		return c.validateTarget(op)
	case CALL:
		if err := reg(op.A); err != nil {
			return err
		}
		if op.Argc() > 0 {
			if uint64(op.B)+uint64(op.Argc())-1 > uint64(c.Registers) {
				return fmt.Errorf("argument block r%d..+%d out of range (registers %d)", op.B, op.Argc(), c.Registers)
			}
		}
		if op.Flag {
			return reg(op.C)
		}
		return nil
	case RETURN:
		if op.Flag {
			return reg(op.A)
		}
		return nil
	case MOVE:
		return reg(op.A, op.B)
	case LOAD_STRING, LOAD_GLOBAL, STORE_GLOBAL:
		if err := reg(op.A); err != nil {
			return err
		}
		return pool("string", len(c.Strings))
	case LOAD_NUMBER:
		if err := reg(op.A); err != nil {
			return err
		}
		return pool("number", len(c.Numbers))
	case LOAD_CLOSURE:
		if err := reg(op.A); err != nil {
			return err
		}
		return pool("closure", len(c.Closures))
	}
	return fmt.Errorf("unknown opcode %d", op.Code)
}

func (c *Closure) validateTarget(op Op) error {
	if int(op.Target()) >= len(c.Code) {
		return fmt.Errorf("jump target @%d out of range (len %d)", op.Target(), len(c.Code))
	}
	return nil
}
