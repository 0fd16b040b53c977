package ast

import "github.com/orus-lang/orus/lang/token"

// TypeExpr is a (possibly generic) type annotation as written in source,
// e.g. `i32`, `[i32]`, `Box<T>`. Resolved to a types.Type by the compiler.
type TypeExpr struct {
	Name     string
	Elem     *TypeExpr   // set when Name == "array"
	Generics []*TypeExpr // set for Name<A, B>
}

// LetStmt is `let [mut] name [:T] = expr`.
type LetStmt struct {
	StmtBase
	Name    string
	Mut     bool
	Type    *TypeExpr // nil if not annotated
	Value   Expr
	Pos     token.Pos
	EndPos  token.Pos
	Global  bool // always false from the parser; module-level bindings are StaticStmt nodes
}

func (n *LetStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *LetStmt) Walk(v Visitor)               { Walk(v, n.Value) }

// ConstStmt is `const name [:T] = literal`.
type ConstStmt struct {
	StmtBase
	Name   string
	Type   *TypeExpr
	Value  *LiteralExpr
	Pos    token.Pos
	EndPos token.Pos
}

func (n *ConstStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *ConstStmt) Walk(v Visitor)               { Walk(v, n.Value) }

// StaticStmt is `static [mut] name [:T] = expr`, only valid at module
// top level.
type StaticStmt struct {
	StmtBase
	Name   string
	Mut    bool
	Type   *TypeExpr
	Value  Expr
	Pos    token.Pos
	EndPos token.Pos
}

func (n *StaticStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *StaticStmt) Walk(v Visitor)               { Walk(v, n.Value) }

// ExprStmt wraps an expression used as a statement (assignment, call, or
// any expression whose value is discarded).
type ExprStmt struct {
	StmtBase
	X   Expr
	Pos token.Pos
}

func (n *ExprStmt) Span() (token.Pos, token.Pos) { return n.X.Span() }
func (n *ExprStmt) Walk(v Visitor)               { Walk(v, n.X) }

// PrintStmt is `print(expr)` or `print(fmt, args...)`.
type PrintStmt struct {
	StmtBase
	Format Expr   // the first argument; must be *LiteralExpr of type string when len(Args) > 0
	Args   []Expr // additional arguments after the comma, empty for single-value print
	Pos    token.Pos
	EndPos token.Pos
}

func (n *PrintStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *PrintStmt) Walk(v Visitor) {
	Walk(v, n.Format)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

// IfBranch is one `if`/`elif` condition+block pair.
type IfBranch struct {
	Cond Expr
	Body *Block
}

// IfStmt is `if/elif/else`.
type IfStmt struct {
	StmtBase
	Branches []IfBranch
	Else     *Block // nil if no else clause
	Pos      token.Pos
	EndPos   token.Pos
}

func (n *IfStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *IfStmt) Walk(v Visitor) {
	for _, b := range n.Branches {
		Walk(v, b.Cond)
		Walk(v, b.Body)
	}
	if n.Else != nil {
		Walk(v, n.Else)
	}
}

// BlockStmt wraps a bare `{ ... }` block used as a statement.
type BlockStmt struct {
	StmtBase
	Body *Block
}

func (n *BlockStmt) Span() (token.Pos, token.Pos) { return n.Body.Span() }
func (n *BlockStmt) Walk(v Visitor)               { Walk(v, n.Body) }

// WhileStmt is `while cond { body }`.
type WhileStmt struct {
	StmtBase
	Cond   Expr
	Body   *Block
	Pos    token.Pos
	EndPos token.Pos
}

func (n *WhileStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *WhileStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}

// ForRangeStmt is `for i in start..end[..step] { body }` or
// `for i in range(start, end[, step]) { body }`; both forms produce the
// same node and desugar identically at compile time.
type ForRangeStmt struct {
	StmtBase
	Var              string
	Start, End, Step Expr // Step may be nil (defaults to 1)
	Body             *Block
	Pos              token.Pos
	EndPos           token.Pos
}

func (n *ForRangeStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *ForRangeStmt) Walk(v Visitor) {
	Walk(v, n.Start)
	Walk(v, n.End)
	if n.Step != nil {
		Walk(v, n.Step)
	}
	Walk(v, n.Body)
}

// Param is one function parameter.
type Param struct {
	Name string
	Type *TypeExpr
}

// FuncStmt is `fn name<G...>(params) [-> T] { body }`. StructName is set
// when this is an `impl` method, in which case the compiler namespaces it
// as `StructName_Name` (spec §4.2).
type FuncStmt struct {
	StmtBase
	Name       string
	StructName string // empty unless declared inside an `impl` block
	Generics   []string
	Params     []Param
	Return     *TypeExpr // nil means void
	Body       *Block
	Pos        token.Pos
	EndPos     token.Pos
}

func (n *FuncStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *FuncStmt) Walk(v Visitor)               { Walk(v, n.Body) }

// StructStmt is `struct Name<G...> { field: T, ... }`.
type StructStmt struct {
	StmtBase
	Name     string
	Generics []string
	Fields   []Param
	Pos      token.Pos
	EndPos   token.Pos
}

func (n *StructStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *StructStmt) Walk(Visitor)                 {}

// ImplStmt is `impl Name<G...> { fn ... }`.
type ImplStmt struct {
	StmtBase
	StructName string
	Generics   []string
	Methods    []*FuncStmt
	Pos        token.Pos
	EndPos     token.Pos
}

func (n *ImplStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *ImplStmt) Walk(v Visitor) {
	for _, m := range n.Methods {
		Walk(v, m)
	}
}

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	StmtBase
	Value Expr // nil for bare `return`
	Pos   token.Pos
}

func (n *ReturnStmt) Span() (token.Pos, token.Pos) {
	if n.Value != nil {
		_, end := n.Value.Span()
		return n.Pos, end
	}
	return n.Pos, n.Pos
}
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}

// BreakStmt is `break`.
type BreakStmt struct {
	StmtBase
	Pos token.Pos
}

func (n *BreakStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *BreakStmt) Walk(Visitor)                 {}

// ContinueStmt is `continue`.
type ContinueStmt struct {
	StmtBase
	Pos token.Pos
}

func (n *ContinueStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *ContinueStmt) Walk(Visitor)                 {}

// MatchArm is one `pattern => stmt` arm; Pattern == nil represents `_`.
type MatchArm struct {
	Pattern Expr
	Body    Stmt
}

// MatchStmt is `match value { pattern => stmt, _ => stmt }`.
type MatchStmt struct {
	StmtBase
	Value  Expr
	Arms   []MatchArm
	Pos    token.Pos
	EndPos token.Pos
}

func (n *MatchStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *MatchStmt) Walk(v Visitor) {
	Walk(v, n.Value)
	for _, a := range n.Arms {
		if a.Pattern != nil {
			Walk(v, a.Pattern)
		}
		Walk(v, a.Body)
	}
}

// TryStmt is `try { body } catch e { handler }`.
type TryStmt struct {
	StmtBase
	Body     *Block
	ErrName  string
	Handler  *Block
	Pos      token.Pos
	EndPos   token.Pos
}

func (n *TryStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *TryStmt) Walk(v Visitor) {
	Walk(v, n.Body)
	Walk(v, n.Handler)
}

// UseStmt is `use path::path [as alias]`.
type UseStmt struct {
	StmtBase
	Path   []string
	Alias  string // empty if no alias
	Pos    token.Pos
	EndPos token.Pos
}

func (n *UseStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.EndPos }
func (n *UseStmt) Walk(Visitor)                 {}

// ImportStmt is the desugared form of UseStmt emitted for the compiler: a
// slash-joined module path with the .orus extension (spec §4.6).
type ImportStmt struct {
	StmtBase
	ModulePath string
	Alias      string
	Pos        token.Pos
}

func (n *ImportStmt) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *ImportStmt) Walk(Visitor)                 {}
