// Package ast defines the typed abstract syntax tree produced by the
// parser and consumed by the compiler (spec §3 "AST Node", §4.1).
package ast

import (
	"github.com/orus-lang/orus/lang/token"
	"github.com/orus-lang/orus/lang/types"
)

// Node is implemented by every AST node.
type Node interface {
	// Span reports the start and end source positions of the node.
	Span() (start, end token.Pos)
	// Walk visits the node's children with v.
	Walk(v Visitor)
}

// Expr is implemented by every expression node. Every expression node
// carries a ValueType filled in by the compiler's type pass (spec §3
// invariant 1): it is nil until compilation assigns it.
type Expr interface {
	Node
	exprNode()
	Type() types.Type
	SetType(types.Type)
	Line() int
}

// Stmt is implemented by every statement node. Every node carries a
// source line (spec §3).
type Stmt interface {
	Node
	stmtNode()
	Line() int
}

// ExprBase is embedded by every Expr implementation to provide the
// ValueType bookkeeping and Line() uniformly. Constructed via NewExprBase
// so callers outside the package never need to name its fields.
type ExprBase struct {
	ValueType types.Type
	line      int
}

// NewExprBase returns an ExprBase carrying the given source line, ready to
// be embedded positionally in a node literal.
func NewExprBase(line int) ExprBase { return ExprBase{line: line} }

func (e *ExprBase) exprNode()            {}
func (e *ExprBase) Type() types.Type     { return e.ValueType }
func (e *ExprBase) SetType(t types.Type) { e.ValueType = t }
func (e *ExprBase) Line() int            { return e.line }

// StmtBase is embedded by every Stmt implementation.
type StmtBase struct {
	line int
}

// NewStmtBase returns a StmtBase carrying the given source line.
func NewStmtBase(line int) StmtBase { return StmtBase{line: line} }

func (s *StmtBase) stmtNode() {}
func (s *StmtBase) Line() int { return s.line }

// Chunk is the root of a parsed file or REPL entry: a list of top-level
// statements.
type Chunk struct {
	Name  string
	Stmts []Stmt
	Start token.Pos
	End   token.Pos
}

func (c *Chunk) Span() (token.Pos, token.Pos) { return c.Start, c.End }
func (c *Chunk) Walk(v Visitor) {
	for _, s := range c.Stmts {
		Walk(v, s)
	}
}

// Block is a `{ ... }` sequence of statements.
type Block struct {
	Stmts []Stmt
	Start token.Pos
	End   token.Pos
}

func (b *Block) Span() (token.Pos, token.Pos) { return b.Start, b.End }
func (b *Block) Walk(v Visitor) {
	for _, s := range b.Stmts {
		Walk(v, s)
	}
}
