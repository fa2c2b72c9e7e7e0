package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/lumen/ast"
)

func parse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	c, err := Parse("test.star", src)
	require.NoError(t, err)
	return c
}

func TestLetThenAssign(t *testing.T) {
	c := parse(t, "x = 1\nx = 2\nx += 3\n")
	require.Len(t, c.Stmts, 3)

	let, ok := c.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name.Name)
	assert.Equal(t, &ast.NumberExpr{Value: 1, Position: ast.Pos(1, 5)}, let.Expr)

	_, ok = c.Stmts[1].(*ast.AssignStmt)
	assert.True(t, ok)

	aug, ok := c.Stmts[2].(*ast.AssignStmt)
	require.True(t, ok)
	bin, ok := aug.Expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Plus, bin.Op)
	assert.Equal(t, "x", bin.Left.(*ast.IdentExpr).Name)
	assert.Equal(t, ast.Pos(3, 3), bin.Position)
}

func TestBlockScopedDeclarations(t *testing.T) {
	src := `
i = 0
while i < 3:
    i = i + 1
    j = i
    j = 2
`
	c := parse(t, src)
	require.Len(t, c.Stmts, 2)
	w, ok := c.Stmts[1].(*ast.WhileStmt)
	require.True(t, ok)
	require.Len(t, w.Body.Stmts, 3)
	assert.IsType(t, &ast.AssignStmt{}, w.Body.Stmts[0])
	assert.IsType(t, &ast.LetStmt{}, w.Body.Stmts[1])
	assert.IsType(t, &ast.AssignStmt{}, w.Body.Stmts[2])
}

func TestDefParamsAreDeclared(t *testing.T) {
	src := `
def add(a, b):
    """Adds."""
    a = a + b
    c = a
    return c
`
	c := parse(t, src)
	require.Len(t, c.Stmts, 1)
	d, ok := c.Stmts[0].(*ast.DefStmt)
	require.True(t, ok)
	assert.Equal(t, "add", d.Name.Name)
	require.Len(t, d.Params, 2)
	assert.Equal(t, "b", d.Params[1].Name)
	require.Len(t, d.Body.Stmts, 3)
	assert.IsType(t, &ast.AssignStmt{}, d.Body.Stmts[0])
	assert.IsType(t, &ast.LetStmt{}, d.Body.Stmts[1])
	ret, ok := d.Body.Stmts[2].(*ast.ReturnStmt)
	require.True(t, ok)
	assert.Equal(t, "c", ret.Expr.(*ast.IdentExpr).Name)
}

func TestEnclosingLocalsDoNotLeakIntoDefs(t *testing.T) {
	src := `
x = 1
def f():
    x = 2
`
	c := parse(t, src)
	d := c.Stmts[1].(*ast.DefStmt)
	assert.IsType(t, &ast.LetStmt{}, d.Body.Stmts[0])
}

func TestIfElifElse(t *testing.T) {
	src := `
if a:
    print(1)
elif b:
    print(2)
else:
    pass
`
	c := parse(t, src)
	require.Len(t, c.Stmts, 1)
	s := c.Stmts[0].(*ast.IfStmt)
	require.NotNil(t, s.Else)
	require.Len(t, s.Else.Stmts, 1)
	elif := s.Else.Stmts[0].(*ast.IfStmt)
	require.NotNil(t, elif.Else)
	assert.Empty(t, elif.Else.Stmts)
}

func TestOperators(t *testing.T) {
	c := parse(t, "v = -(1 + 2) * 3 ^ 2 == 4 and not b or c & d | e\n")
	let := c.Stmts[0].(*ast.LetStmt)
	or, ok := let.Expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Pipe, or.Op)
	call := parse(t, "f(1.5, 'hi', g(x))\n").Stmts[0].(*ast.CallStmt)
	assert.Equal(t, "f", call.Name.Name)
	require.Len(t, call.Args, 3)
	assert.Equal(t, 1.5, call.Args[0].(*ast.NumberExpr).Value)
	assert.Equal(t, "hi", call.Args[1].(*ast.StringExpr).Value)
	inner := call.Args[2].(*ast.CallExpr)
	assert.Equal(t, "g", inner.Head.(*ast.IdentExpr).Name)

	neg := parse(t, "v = not -x\n").Stmts[0].(*ast.LetStmt).Expr.(*ast.UnaryExpr)
	assert.Equal(t, ast.Exclamation, neg.Op)
	assert.Equal(t, ast.Negate, neg.Right.(*ast.UnaryExpr).Op)
}

func TestBareReturn(t *testing.T) {
	c := parse(t, "def f():\n    return\n")
	ret := c.Stmts[0].(*ast.DefStmt).Body.Stmts[0].(*ast.ReturnStmt)
	assert.Nil(t, ret.Expr)
}

func TestUnsupported(t *testing.T) {
	cases := map[string]string{
		"list":    "x = [1, 2]\n",
		"for":     "for i in y:\n    pass\n",
		"kwargs":  "f(a=1)\n",
		"index":   "x = y[0]\n",
		"break":   "while x:\n    break\n",
		"lambda":  "f = lambda: 1\n",
		"in":      "x = a in b\n",
		"method":  "a.b()\n",
		"default": "def f(a=1):\n    pass\n",
		"bare":    "x + 1\n",
	}
	for name, src := range cases {
		_, err := Parse("bad.star", src)
		var fe *Error
		require.ErrorAs(t, err, &fe, name)
		assert.Equal(t, "bad.star", fe.Filename, name)
		assert.True(t, fe.Pos.IsValid(), name)
	}
}

func TestSyntaxErrorIsPositioned(t *testing.T) {
	_, err := Parse("bad.star", "x = (1 +\n")
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "bad.star", fe.Filename)
	assert.True(t, fe.Pos.IsValid())
	assert.Contains(t, err.Error(), "bad.star:")
}
