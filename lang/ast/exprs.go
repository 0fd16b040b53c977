package ast

import "github.com/orus-lang/orus/lang/token"

// LiteralExpr is a numeric, string, bool, or nil literal. Value holds the
// parsed value: int64, uint64, float64, string, bool, or nil. Numeric
// literals are kept as an arbitrary-precision intermediate (the widest Go
// integer/float type) until the compiler narrows them to their target
// type (spec §9 design note on literal re-tagging).
type LiteralExpr struct {
	ExprBase
	Tok   token.Token
	Raw   string
	Value interface{}
	Pos   token.Pos
}

func (n *LiteralExpr) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *LiteralExpr) Walk(Visitor)                 {}

// VariableExpr references a named binding.
type VariableExpr struct {
	ExprBase
	Name string
	Pos  token.Pos
}

func (n *VariableExpr) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *VariableExpr) Walk(Visitor)                 {}

// BinaryExpr is a binary operator expression.
type BinaryExpr struct {
	ExprBase
	Op          token.Token
	Left, Right Expr
	OpPos       token.Pos
}

func (n *BinaryExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Left.Span()
	_, end := n.Right.Span()
	return start, end
}
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

// UnaryExpr is a prefix unary operator expression: -, not, ~.
type UnaryExpr struct {
	ExprBase
	Op    token.Token
	Right Expr
	OpPos token.Pos
}

func (n *UnaryExpr) Span() (token.Pos, token.Pos) {
	_, end := n.Right.Span()
	return n.OpPos, end
}
func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.Right) }

// TernaryExpr is `cond ? then : else`.
type TernaryExpr struct {
	ExprBase
	Cond, Then, Else Expr
	QPos             token.Pos
}

func (n *TernaryExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Cond.Span()
	_, end := n.Else.Span()
	return start, end
}
func (n *TernaryExpr) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	Walk(v, n.Else)
}

// CallExpr is a function (or method) call f(args...).
type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
	Lparen token.Pos
	Rparen token.Pos
}

func (n *CallExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Callee.Span()
	return start, n.Rparen
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Callee)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

// FieldAccessExpr is `expr.name`.
type FieldAccessExpr struct {
	ExprBase
	Target Expr
	Name   string
	DotPos token.Pos
	Pos    token.Pos // position of the field identifier
}

func (n *FieldAccessExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Target.Span()
	return start, n.Pos
}
func (n *FieldAccessExpr) Walk(v Visitor) { Walk(v, n.Target) }

// FieldSetExpr is `expr.name = value` (as an expression, so it can be
// used by compound-assignment desugaring).
type FieldSetExpr struct {
	ExprBase
	Target Expr
	Name   string
	Value  Expr
	Pos    token.Pos
}

func (n *FieldSetExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Target.Span()
	_, end := n.Value.Span()
	return start, end
}
func (n *FieldSetExpr) Walk(v Visitor) {
	Walk(v, n.Target)
	Walk(v, n.Value)
}

// ArrayLiteralExpr is `[e1, e2, ...]`.
type ArrayLiteralExpr struct {
	ExprBase
	Elems  []Expr
	Lbrack token.Pos
	Rbrack token.Pos
}

func (n *ArrayLiteralExpr) Span() (token.Pos, token.Pos) { return n.Lbrack, n.Rbrack }
func (n *ArrayLiteralExpr) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}

// IndexExpr is `expr[index]`.
type IndexExpr struct {
	ExprBase
	Target, Index Expr
	Lbrack        token.Pos
	Rbrack        token.Pos
}

func (n *IndexExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Target.Span()
	return start, n.Rbrack
}
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.Target)
	Walk(v, n.Index)
}

// ArraySetExpr is `target[index] = value`.
type ArraySetExpr struct {
	ExprBase
	Target, Index, Value Expr
	Pos                  token.Pos
}

func (n *ArraySetExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Target.Span()
	_, end := n.Value.Span()
	return start, end
}
func (n *ArraySetExpr) Walk(v Visitor) {
	Walk(v, n.Target)
	Walk(v, n.Index)
	Walk(v, n.Value)
}

// SliceExpr is `expr[lo:hi]`.
type SliceExpr struct {
	ExprBase
	Target, Lo, Hi Expr // Lo/Hi may be nil
	Lbrack         token.Pos
	Rbrack         token.Pos
}

func (n *SliceExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Target.Span()
	return start, n.Rbrack
}
func (n *SliceExpr) Walk(v Visitor) {
	Walk(v, n.Target)
	if n.Lo != nil {
		Walk(v, n.Lo)
	}
	if n.Hi != nil {
		Walk(v, n.Hi)
	}
}

// CastExpr is `expr as T`.
type CastExpr struct {
	ExprBase
	Target   Expr
	TypeName string
	AsPos    token.Pos
}

func (n *CastExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Target.Span()
	return start, n.AsPos
}
func (n *CastExpr) Walk(v Visitor) { Walk(v, n.Target) }

// StructFieldInit is one `name: expr` pair in a struct literal.
type StructFieldInit struct {
	Name  string
	Value Expr
}

// StructLiteralExpr is `Name { field: expr, ... }`.
type StructLiteralExpr struct {
	ExprBase
	StructName string
	Fields     []StructFieldInit
	Pos        token.Pos
	Rbrace     token.Pos
}

func (n *StructLiteralExpr) Span() (token.Pos, token.Pos) { return n.Pos, n.Rbrace }
func (n *StructLiteralExpr) Walk(v Visitor) {
	for _, f := range n.Fields {
		Walk(v, f.Value)
	}
}

// AssignExpr is `target = value` for every target other than an index or
// field access, which the parser turns into ArraySetExpr/FieldSetExpr
// instead (desugared compound assignments land here too). The compiler
// accepts only a VariableExpr target.
// Assignment is an expression in Orus: SET_GLOBAL leaves the
// assigned value on the stack (see DESIGN.md, Open Question resolution).
type AssignExpr struct {
	ExprBase
	Target Expr
	Value  Expr
	Pos    token.Pos
}

func (n *AssignExpr) Span() (token.Pos, token.Pos) {
	start, _ := n.Target.Span()
	_, end := n.Value.Span()
	return start, end
}
func (n *AssignExpr) Walk(v Visitor) {
	Walk(v, n.Target)
	Walk(v, n.Value)
}
