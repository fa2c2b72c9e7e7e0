package vm

import (
	"math"

	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/lumen/ast"
)

// Compiler lowers a syntax tree into a Closure. It keeps one frame per
// function currently being compiled; the top-level chunk is the first frame.
type Compiler struct {
	frames []*frame
}

type frame struct {
	closure *Closure
	cursor  Register
	scopes  []*scope
}

type scope struct {
	locals map[string]Register
	offset Register
}

type RefKind int

const (
	LocalRef RefKind = iota
	GlobalRef
)

// Ref is the result of resolving an identifier in the current frame.
type Ref struct {
	Kind     RefKind
	Register Register
	Name     string
}

// Label is a placeholder instruction waiting for its branch target.
type Label struct {
	addr Address
}

// CompilerVersion must be bumped whenever code generation changes, even if
// the image format does not. Compile caches key on it.
const CompilerVersion = 1

// Compile translates a chunk into its top-level Closure. Compilation cannot
// fail; the front end is expected to reject malformed input.
func Compile(chunk *ast.Chunk) *Closure {
	c := &Compiler{}
	return c.chunk(chunk)
}

func (c *Compiler) pushFrame() *frame {
	f := &frame{
		closure: &Closure{},
		scopes:  []*scope{newScope(0)},
	}
	c.frames = append(c.frames, f)
	return f
}

func (c *Compiler) popFrame() *frame {
	f := c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
	return f
}

func (c *Compiler) frame() *frame {
	return c.frames[len(c.frames)-1]
}

func newScope(offset Register) *scope {
	return &scope{locals: make(map[string]Register), offset: offset}
}

func (f *frame) pushScope() {
	f.scopes = append(f.scopes, newScope(f.cursor))
}

// popScope releases every register allocated since the matching pushScope.
func (f *frame) popScope() {
	if len(f.scopes) == 0 {
		return
	}
	s := f.scopes[len(f.scopes)-1]
	f.scopes = f.scopes[:len(f.scopes)-1]
	f.cursor = s.offset
}

func (f *frame) newRegister() Register {
	return f.reserve(1)
}

// reserve allocates n contiguous registers and returns the first.
func (f *frame) reserve(n int) Register {
	start := f.cursor
	if int(f.cursor)+n > math.MaxUint16 {
		internalf("register file overflow")
	}
	f.cursor += Register(n)
	if f.closure.Registers < f.cursor {
		f.closure.Registers = f.cursor
	}
	return start
}

func (f *frame) newLocal(name string) Register {
	r := f.newRegister()
	f.scopes[len(f.scopes)-1].locals[name] = r
	return r
}

// resolve looks name up innermost-to-outermost in this frame's scopes only.
// Enclosing frames are never consulted, so a name free in a function body
// is always global.
func (f *frame) resolve(name string) Ref {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if r, ok := f.scopes[i].locals[name]; ok {
			return Ref{Kind: LocalRef, Register: r, Name: name}
		}
	}
	return Ref{Kind: GlobalRef, Name: name}
}

// load returns the register holding ref. A global is copied into a fresh
// register by name.
func (f *frame) load(ref Ref, pos ast.Position) Register {
	if ref.Kind == LocalRef {
		return ref.Register
	}
	r := f.newRegister()
	addr := f.closure.newString(ref.Name)
	f.emit(LoadGlobalOp(r, addr), pos)
	return r
}

func (f *frame) local(name string, pos ast.Position) Register {
	return f.load(f.resolve(name), pos)
}

func (f *frame) emit(op Op, pos ast.Position) Address {
	return f.closure.write(op, pos)
}

func (f *frame) emitPlaceholder(pos ast.Position) Label {
	return Label{addr: f.emit(Op{Code: NOP}, pos)}
}

func (f *frame) patchJump(l Label, target Address) {
	f.closure.overwrite(l.addr, JumpOp(target))
}

func (f *frame) patchJumpIf(l Label, not bool, cond Register, target Address) {
	f.closure.overwrite(l.addr, JumpIfOp(not, cond, target))
}

func (c *Compiler) chunk(chunk *ast.Chunk) *Closure {
	f := c.pushFrame()
	for _, s := range chunk.Stmts {
		c.statement(s)
	}
	f.emit(ReturnNoneOp(), chunk.Position)
	c.popFrame()
	log.Debug().
		Int("instructions", len(f.closure.Code)).
		Int("registers", int(f.closure.Registers)).
		Int("closures", len(f.closure.Closures)).
		Msg("compiled chunk")
	return f.closure
}

// block compiles b in a new scope. It reports whether a return was compiled,
// in which case the rest of the block was dropped.
func (c *Compiler) block(b *ast.Block) bool {
	f := c.frame()
	f.pushScope()
	defer f.popScope()
	for _, s := range b.Stmts {
		if c.statement(s) {
			return true
		}
	}
	return false
}
