// Package ast defines the syntax tree handed to the compiler by a front end.
// Every node carries the Position it was parsed from; positions are only
// used for diagnostics.
package ast

import "fmt"

// Position is a 1-based line/column pair. The zero value means unknown.
type Position struct {
	Line int
	Col  int
}

func Pos(line, col int) Position {
	return Position{Line: line, Col: col}
}

func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

type Node interface {
	Pos() Position
}

// Chunk is the top-level statement sequence of a source file.
type Chunk struct {
	Stmts    []Stmt
	Position Position
}

func (c *Chunk) Pos() Position { return c.Position }

// Block is a braced statement sequence. Each block opens a lexical scope.
type Block struct {
	Stmts    []Stmt
	Position Position
}

func (b *Block) Pos() Position { return b.Position }

type Ident struct {
	Name     string
	Position Position
}

func (i Ident) Pos() Position { return i.Position }

type Stmt interface {
	Node
	stmtNode()
}

type BlockStmt struct {
	Block *Block
}

type LetStmt struct {
	Name     Ident
	Expr     Expr
	Position Position
}

type AssignStmt struct {
	Name     Ident
	Expr     Expr
	Position Position
}

// CallStmt is a call whose result is discarded.
type CallStmt struct {
	Name     Ident
	Args     []Expr
	Position Position
}

type DefStmt struct {
	Name     Ident
	Params   []Ident
	Body     *Block
	Position Position
}

type IfStmt struct {
	Cond     Expr
	Then     *Block
	Else     *Block // optional
	Position Position
}

type WhileStmt struct {
	Cond     Expr
	Body     *Block
	Position Position
}

// ReturnStmt returns Expr from the current function. A nil Expr returns no
// value.
type ReturnStmt struct {
	Expr     Expr
	Position Position
}

func (s *BlockStmt) Pos() Position  { return s.Block.Position }
func (s *LetStmt) Pos() Position    { return s.Position }
func (s *AssignStmt) Pos() Position { return s.Position }
func (s *CallStmt) Pos() Position   { return s.Position }
func (s *DefStmt) Pos() Position    { return s.Position }
func (s *IfStmt) Pos() Position     { return s.Position }
func (s *WhileStmt) Pos() Position  { return s.Position }
func (s *ReturnStmt) Pos() Position { return s.Position }

func (*BlockStmt) stmtNode()  {}
func (*LetStmt) stmtNode()    {}
func (*AssignStmt) stmtNode() {}
func (*CallStmt) stmtNode()   {}
func (*DefStmt) stmtNode()    {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode() {}

type Expr interface {
	Node
	exprNode()
}

// Atom is the subset of expressions that need no operator: identifiers,
// literals and parenthesized expressions.
type Atom interface {
	Expr
	atomNode()
}

type IdentExpr struct {
	Name     string
	Position Position
}

type NumberExpr struct {
	Value    float64
	Position Position
}

type StringExpr struct {
	Value    string
	Position Position
}

type ParenExpr struct {
	Expr     Expr
	Position Position
}

type BinaryExpr struct {
	Op       BinaryOperator
	Left     Expr
	Right    Expr
	Position Position
}

type UnaryExpr struct {
	Op       UnaryOperator
	Right    Expr
	Position Position
}

type CallExpr struct {
	Head     Expr
	Args     []Expr
	Position Position
}

func (e *IdentExpr) Pos() Position  { return e.Position }
func (e *NumberExpr) Pos() Position { return e.Position }
func (e *StringExpr) Pos() Position { return e.Position }
func (e *ParenExpr) Pos() Position  { return e.Position }
func (e *BinaryExpr) Pos() Position { return e.Position }
func (e *UnaryExpr) Pos() Position  { return e.Position }
func (e *CallExpr) Pos() Position   { return e.Position }

func (*IdentExpr) exprNode()  {}
func (*NumberExpr) exprNode() {}
func (*StringExpr) exprNode() {}
func (*ParenExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}

func (*IdentExpr) atomNode()  {}
func (*NumberExpr) atomNode() {}
func (*StringExpr) atomNode() {}
func (*ParenExpr) atomNode()  {}
