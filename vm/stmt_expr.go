package vm

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/lumen/ast"
)

// statement emits s into the current frame and reports whether it was a
// return.
func (c *Compiler) statement(s ast.Stmt) bool {
	f := c.frame()
	switch v := s.(type) {
	case *ast.BlockStmt:
		return c.block(v.Block)
	case *ast.LetStmt:
		reg := f.newLocal(v.Name.Name)
		src := c.expr(v.Expr)
		f.emit(MoveOp(reg, src), v.Position)
	case *ast.AssignStmt:
		// A global target only updates the register that shadows it; the
		// global table is not written back.
		reg := f.local(v.Name.Name, v.Name.Position)
		src := c.expr(v.Expr)
		f.emit(MoveOp(reg, src), v.Position)
	case *ast.CallStmt:
		fn := f.local(v.Name.Name, v.Name.Position)
		args := c.args(v.Args)
		f.emit(CallOp(fn, args, len(v.Args)), v.Position)
	case *ast.DefStmt:
		c.def(v)
	case *ast.IfStmt:
		cond := c.expr(v.Cond)
		check := f.emitPlaceholder(v.Position)
		c.block(v.Then)
		exit := f.emitPlaceholder(v.Position)
		elseAddr := f.closure.Here()
		if v.Else != nil {
			c.block(v.Else)
		}
		exitAddr := f.closure.Here()
		f.patchJumpIf(check, true, cond, elseAddr)
		f.patchJump(exit, exitAddr)
	case *ast.WhileStmt:
		condAddr := f.closure.Here()
		cond := c.expr(v.Cond)
		check := f.emitPlaceholder(v.Position)
		c.block(v.Body)
		f.emit(JumpOp(condAddr), v.Position)
		f.patchJumpIf(check, true, cond, f.closure.Here())
	case *ast.ReturnStmt:
		if v.Expr == nil {
			f.emit(ReturnNoneOp(), v.Position)
		} else {
			src := c.expr(v.Expr)
			f.emit(ReturnOp(src), v.Position)
		}
		return true
	default:
		panic(fmt.Sprintf("compile: unhandled statement type %T", s))
	}
	return false
}

// def binds the function name in the enclosing frame before compiling the
// body in a fresh frame. Inside the body the function's own name is free and
// therefore resolves as a global.
func (c *Compiler) def(v *ast.DefStmt) {
	outer := c.frame()
	reg := outer.newLocal(v.Name.Name)

	inner := c.pushFrame()
	for _, p := range v.Params {
		inner.newLocal(p.Name)
	}
	c.block(v.Body)
	inner.emit(ReturnNoneOp(), v.Position)
	c.popFrame()

	addr := outer.closure.newClosure(inner.closure)
	outer.emit(LoadClosureOp(reg, addr), v.Position)
	log.Debug().
		Str("name", v.Name.Name).
		Int("params", len(v.Params)).
		Int("instructions", len(inner.closure.Code)).
		Int("registers", int(inner.closure.Registers)).
		Msg("compiled function")
}

// args reserves a contiguous register block at the cursor and fills it with
// the argument values, left to right.
func (c *Compiler) args(args []ast.Expr) Register {
	f := c.frame()
	start := f.reserve(len(args))
	for i, a := range args {
		src := c.expr(a)
		f.emit(MoveOp(start+Register(i), src), a.Pos())
	}
	return start
}

var binaryOps = map[ast.BinaryOperator]Opcode{
	ast.Plus:             ADD,
	ast.Minus:            SUB,
	ast.Star:             MUL,
	ast.Slash:            DIV,
	ast.Percent:          MOD,
	ast.Exponent:         POW,
	ast.EqualEqual:       EQ,
	ast.ExclamationEqual: NE,
	ast.Less:             LT,
	ast.Greater:          GT,
	ast.LessEqual:        LE,
	ast.GreaterEqual:     GE,
	ast.Ampersand:        AND,
	ast.Pipe:             OR,
}

var unaryOps = map[ast.UnaryOperator]Opcode{
	ast.Negate:      NEG,
	ast.Exclamation: NOT,
}

// expr emits e and returns the register holding its value. Locals are
// returned in place without a copy.
func (c *Compiler) expr(e ast.Expr) Register {
	f := c.frame()
	switch v := e.(type) {
	case *ast.IdentExpr:
		return f.local(v.Name, v.Position)
	case *ast.NumberExpr:
		addr := f.closure.newNumber(v.Value)
		dst := f.newRegister()
		f.emit(LoadNumberOp(dst, addr), v.Position)
		return dst
	case *ast.StringExpr:
		addr := f.closure.newString(v.Value)
		dst := f.newRegister()
		f.emit(LoadStringOp(dst, addr), v.Position)
		return dst
	case *ast.ParenExpr:
		return c.expr(v.Expr)
	case *ast.BinaryExpr:
		// Both operands are always evaluated, including for & and |.
		dst := f.newRegister()
		left := c.expr(v.Left)
		right := c.expr(v.Right)
		f.emit(BinaryOp(binaryOps[v.Op], dst, left, right), v.Position)
		return dst
	case *ast.UnaryExpr:
		dst := f.newRegister()
		src := c.expr(v.Right)
		f.emit(UnaryOp(unaryOps[v.Op], dst, src), v.Position)
		return dst
	case *ast.CallExpr:
		dst := f.newRegister()
		fn := c.expr(v.Head)
		args := c.args(v.Args)
		f.emit(CallIntoOp(fn, args, len(v.Args), dst), v.Position)
		return dst
	}
	panic(fmt.Sprintf("compile: unhandled expression type %T", e))
}
