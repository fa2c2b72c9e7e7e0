// Package frontend parses Starlark-syntax source with go.starlark.net and
// lowers the subset the compiler understands into an ast.Chunk.
package frontend

import (
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/lumen/ast"
	"go.starlark.net/syntax"
)

// Error is a syntax error or a construct outside the supported subset.
type Error struct {
	Filename string
	Pos      ast.Position
	Msg      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%s: %s", e.Filename, e.Pos, e.Msg)
}

var fileOptions = syntax.FileOptions{
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// ParseFile reads and lowers the file at path.
func ParseFile(path string) (*ast.Chunk, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, src)
}

// Parse lowers src, which may be a string, []byte or io.Reader.
func Parse(filename string, src any) (*ast.Chunk, error) {
	f, err := fileOptions.Parse(filename, src, 0)
	if err != nil {
		var se syntax.Error
		if errors.As(err, &se) {
			return nil, &Error{Filename: filename, Pos: position(se.Pos), Msg: se.Msg}
		}
		return nil, err
	}
	l := &lowerer{filename: filename}
	l.pushFunction()
	stmts, err := l.statements(f.Stmts)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("file", filename).Int("statements", len(stmts)).Msg("parsed")
	return &ast.Chunk{Stmts: stmts, Position: ast.Pos(1, 1)}, nil
}

func position(p syntax.Position) ast.Position {
	return ast.Pos(int(p.Line), int(p.Col))
}

// lowerer tracks which names are declared in the open blocks of each
// function being lowered, so that `x = e` can become a declaration or an
// assignment.
type lowerer struct {
	filename  string
	functions [][]map[string]bool
}

func (l *lowerer) errorf(p syntax.Position, format string, args ...any) error {
	return &Error{Filename: l.filename, Pos: position(p), Msg: fmt.Sprintf(format, args...)}
}

func (l *lowerer) pushFunction() {
	l.functions = append(l.functions, []map[string]bool{{}})
}

func (l *lowerer) popFunction() {
	l.functions = l.functions[:len(l.functions)-1]
}

func (l *lowerer) pushBlock() {
	fn := len(l.functions) - 1
	l.functions[fn] = append(l.functions[fn], map[string]bool{})
}

func (l *lowerer) popBlock() {
	fn := len(l.functions) - 1
	l.functions[fn] = l.functions[fn][:len(l.functions[fn])-1]
}

func (l *lowerer) declare(name string) {
	blocks := l.functions[len(l.functions)-1]
	blocks[len(blocks)-1][name] = true
}

func (l *lowerer) declared(name string) bool {
	blocks := l.functions[len(l.functions)-1]
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i][name] {
			return true
		}
	}
	return false
}

func (l *lowerer) statements(in []syntax.Stmt) ([]ast.Stmt, error) {
	var out []ast.Stmt
	for _, s := range in {
		st, err := l.statement(s)
		if err != nil {
			return nil, err
		}
		if st != nil {
			out = append(out, st)
		}
	}
	return out, nil
}

func (l *lowerer) block(in []syntax.Stmt) (*ast.Block, error) {
	l.pushBlock()
	defer l.popBlock()
	stmts, err := l.statements(in)
	if err != nil {
		return nil, err
	}
	b := &ast.Block{Stmts: stmts}
	if len(in) > 0 {
		start, _ := in[0].Span()
		b.Position = position(start)
	}
	return b, nil
}

var augmented = map[syntax.Token]ast.BinaryOperator{
	syntax.PLUS_EQ:       ast.Plus,
	syntax.MINUS_EQ:      ast.Minus,
	syntax.STAR_EQ:       ast.Star,
	syntax.SLASH_EQ:      ast.Slash,
	syntax.PERCENT_EQ:    ast.Percent,
	syntax.CIRCUMFLEX_EQ: ast.Exponent,
	syntax.AMP_EQ:        ast.Ampersand,
	syntax.PIPE_EQ:       ast.Pipe,
}

// statement lowers one statement. A nil result means the statement has no
// effect and is dropped.
func (l *lowerer) statement(s syntax.Stmt) (ast.Stmt, error) {
	start, _ := s.Span()
	pos := position(start)
	switch v := s.(type) {
	case *syntax.AssignStmt:
		id, ok := v.LHS.(*syntax.Ident)
		if !ok {
			return nil, l.errorf(start, "Only assignment to a plain name is supported")
		}
		rhs, err := l.expr(v.RHS)
		if err != nil {
			return nil, err
		}
		name := ast.Ident{Name: id.Name, Position: position(id.NamePos)}
		if v.Op == syntax.EQ {
			if !l.declared(id.Name) {
				l.declare(id.Name)
				return &ast.LetStmt{Name: name, Expr: rhs, Position: pos}, nil
			}
			return &ast.AssignStmt{Name: name, Expr: rhs, Position: pos}, nil
		}
		op, ok := augmented[v.Op]
		if !ok {
			return nil, l.errorf(v.OpPos, "Unsupported assignment operator %s", v.Op)
		}
		return &ast.AssignStmt{
			Name: name,
			Expr: &ast.BinaryExpr{
				Op:       op,
				Left:     &ast.IdentExpr{Name: id.Name, Position: name.Position},
				Right:    rhs,
				Position: position(v.OpPos),
			},
			Position: pos,
		}, nil
	case *syntax.BranchStmt:
		if v.Token == syntax.PASS {
			return nil, nil
		}
		return nil, l.errorf(v.TokenPos, "%s is not supported", v.Token)
	case *syntax.DefStmt:
		return l.def(v)
	case *syntax.ExprStmt:
		switch x := v.X.(type) {
		case *syntax.Literal:
			// Docstrings and other bare literals have no effect.
			return nil, nil
		case *syntax.CallExpr:
			fn, ok := x.Fn.(*syntax.Ident)
			if !ok {
				return nil, l.errorf(start, "A call statement must name the function directly")
			}
			args, err := l.args(x.Args)
			if err != nil {
				return nil, err
			}
			return &ast.CallStmt{
				Name:     ast.Ident{Name: fn.Name, Position: position(fn.NamePos)},
				Args:     args,
				Position: pos,
			}, nil
		}
		return nil, l.errorf(start, "Expression statements other than calls are not supported")
	case *syntax.IfStmt:
		cond, err := l.expr(v.Cond)
		if err != nil {
			return nil, err
		}
		then, err := l.block(v.True)
		if err != nil {
			return nil, err
		}
		out := &ast.IfStmt{Cond: cond, Then: then, Position: pos}
		if len(v.False) > 0 {
			out.Else, err = l.block(v.False)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case *syntax.WhileStmt:
		cond, err := l.expr(v.Cond)
		if err != nil {
			return nil, err
		}
		body, err := l.block(v.Body)
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{Cond: cond, Body: body, Position: pos}, nil
	case *syntax.ReturnStmt:
		out := &ast.ReturnStmt{Position: pos}
		if v.Result != nil {
			e, err := l.expr(v.Result)
			if err != nil {
				return nil, err
			}
			out.Expr = e
		}
		return out, nil
	case *syntax.ForStmt:
		return nil, l.errorf(start, "for loops are not supported; use while")
	case *syntax.LoadStmt:
		return nil, l.errorf(start, "load is not supported")
	}
	return nil, l.errorf(start, "Unsupported statement %T", s)
}

func (l *lowerer) def(v *syntax.DefStmt) (ast.Stmt, error) {
	l.declare(v.Name.Name)
	out := &ast.DefStmt{
		Name:     ast.Ident{Name: v.Name.Name, Position: position(v.Name.NamePos)},
		Position: position(v.Def),
	}
	l.pushFunction()
	defer l.popFunction()
	for _, p := range v.Params {
		id, ok := p.(*syntax.Ident)
		if !ok {
			start, _ := p.Span()
			return nil, l.errorf(start, "Only plain parameters are supported")
		}
		l.declare(id.Name)
		out.Params = append(out.Params, ast.Ident{Name: id.Name, Position: position(id.NamePos)})
	}
	body, err := l.block(v.Body)
	if err != nil {
		return nil, err
	}
	out.Body = body
	return out, nil
}

func (l *lowerer) args(in []syntax.Expr) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(in))
	for _, a := range in {
		if b, ok := a.(*syntax.BinaryExpr); ok && b.Op == syntax.EQ {
			return nil, l.errorf(b.OpPos, "Keyword arguments are not supported")
		}
		e, err := l.expr(a)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

var binaryOps = map[syntax.Token]ast.BinaryOperator{
	syntax.PLUS:       ast.Plus,
	syntax.MINUS:      ast.Minus,
	syntax.STAR:       ast.Star,
	syntax.SLASH:      ast.Slash,
	syntax.PERCENT:    ast.Percent,
	syntax.CIRCUMFLEX: ast.Exponent,
	syntax.EQL:        ast.EqualEqual,
	syntax.NEQ:        ast.ExclamationEqual,
	syntax.LT:         ast.Less,
	syntax.GT:         ast.Greater,
	syntax.LE:         ast.LessEqual,
	syntax.GE:         ast.GreaterEqual,
	syntax.AND:        ast.Ampersand,
	syntax.AMP:        ast.Ampersand,
	syntax.OR:         ast.Pipe,
	syntax.PIPE:       ast.Pipe,
}

var unaryOps = map[syntax.Token]ast.UnaryOperator{
	syntax.MINUS: ast.Negate,
	syntax.NOT:   ast.Exclamation,
}

func (l *lowerer) expr(e syntax.Expr) (ast.Expr, error) {
	start, _ := e.Span()
	pos := position(start)
	switch v := e.(type) {
	case *syntax.Ident:
		return &ast.IdentExpr{Name: v.Name, Position: pos}, nil
	case *syntax.Literal:
		switch val := v.Value.(type) {
		case int64:
			return &ast.NumberExpr{Value: float64(val), Position: pos}, nil
		case *big.Int:
			f, _ := new(big.Float).SetInt(val).Float64()
			return &ast.NumberExpr{Value: f, Position: pos}, nil
		case float64:
			return &ast.NumberExpr{Value: val, Position: pos}, nil
		case string:
			if v.Token == syntax.BYTES {
				return nil, l.errorf(start, "Bytes literals are not supported")
			}
			return &ast.StringExpr{Value: val, Position: pos}, nil
		}
		return nil, l.errorf(start, "Unsupported literal %s", v.Raw)
	case *syntax.ParenExpr:
		inner, err := l.expr(v.X)
		if err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Expr: inner, Position: pos}, nil
	case *syntax.BinaryExpr:
		op, ok := binaryOps[v.Op]
		if !ok {
			return nil, l.errorf(v.OpPos, "Unsupported operator %s", v.Op)
		}
		left, err := l.expr(v.X)
		if err != nil {
			return nil, err
		}
		right, err := l.expr(v.Y)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: op, Left: left, Right: right, Position: position(v.OpPos)}, nil
	case *syntax.UnaryExpr:
		op, ok := unaryOps[v.Op]
		if !ok {
			return nil, l.errorf(v.OpPos, "Unsupported unary operator %s", v.Op)
		}
		right, err := l.expr(v.X)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op, Right: right, Position: position(v.OpPos)}, nil
	case *syntax.CallExpr:
		head, err := l.expr(v.Fn)
		if err != nil {
			return nil, err
		}
		args, err := l.args(v.Args)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Head: head, Args: args, Position: pos}, nil
	case *syntax.ListExpr:
		return nil, l.errorf(start, "Lists are not supported")
	case *syntax.DictExpr:
		return nil, l.errorf(start, "Dicts are not supported")
	case *syntax.TupleExpr:
		return nil, l.errorf(start, "Tuples are not supported")
	case *syntax.LambdaExpr:
		return nil, l.errorf(start, "Lambdas are not supported")
	}
	return nil, l.errorf(start, "Unsupported expression %T", e)
}
