package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orus-lang/orus/lang/ast"
	"github.com/orus-lang/orus/lang/token"
	"github.com/orus-lang/orus/lang/types"
)

func TestExprBaseTypeBookkeeping(t *testing.T) {
	n := &ast.VariableExpr{ExprBase: ast.NewExprBase(3), Name: "x"}
	require.Equal(t, 3, n.Line())
	require.Nil(t, n.Type())

	n.SetType(types.I32)
	require.Same(t, types.I32, n.Type())
}

func TestStmtBaseLine(t *testing.T) {
	s := &ast.ExprStmt{StmtBase: ast.NewStmtBase(7), X: &ast.LiteralExpr{}}
	require.Equal(t, 7, s.Line())
}

func TestBinaryExprSpanSpansOperands(t *testing.T) {
	left := &ast.LiteralExpr{Pos: token.Pos(1)}
	right := &ast.LiteralExpr{Pos: token.Pos(9)}
	bin := &ast.BinaryExpr{Op: token.PLUS, Left: left, Right: right}

	start, end := bin.Span()
	require.Equal(t, token.Pos(1), start)
	require.Equal(t, token.Pos(9), end)
}

func TestChunkWalkVisitsEveryStmt(t *testing.T) {
	chunk := &ast.Chunk{
		Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.LiteralExpr{}},
			&ast.ExprStmt{X: &ast.LiteralExpr{}},
		},
	}

	var entered, exited int
	var v ast.VisitorFunc
	v = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitEnter {
			entered++
			return v
		}
		exited++
		return v
	}
	ast.Walk(v, chunk)

	// chunk itself + 2 ExprStmt + 2 LiteralExpr = 5 nodes.
	require.Equal(t, 5, entered)
	require.Equal(t, 5, exited)
}

func TestWalkSkipsSubtreeWhenVisitReturnsNil(t *testing.T) {
	bin := &ast.BinaryExpr{
		Op:    token.PLUS,
		Left:  &ast.LiteralExpr{},
		Right: &ast.LiteralExpr{},
	}

	var visited int
	v := ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitEnter {
			visited++
		}
		return nil // never descend
	})
	ast.Walk(v, bin)
	require.Equal(t, 1, visited, "children must not be visited when Visit returns nil")
}

func TestWalkOnNilNodeIsNoop(t *testing.T) {
	called := false
	v := ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		called = true
		return nil
	})
	ast.Walk(v, nil)
	require.False(t, called)
}

func TestCallExprSpanUsesCalleeStartAndRparen(t *testing.T) {
	callee := &ast.VariableExpr{Pos: token.Pos(2)}
	call := &ast.CallExpr{Callee: callee, Rparen: token.Pos(20)}
	start, end := call.Span()
	require.Equal(t, token.Pos(2), start)
	require.Equal(t, token.Pos(20), end)
}

func TestStructLiteralWalkVisitsFieldValues(t *testing.T) {
	var seen []string
	lit := &ast.StructLiteralExpr{
		StructName: "Point",
		Fields: []ast.StructFieldInit{
			{Name: "x", Value: &ast.VariableExpr{Name: "a"}},
			{Name: "y", Value: &ast.VariableExpr{Name: "b"}},
		},
	}
	ast.Walk(ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitEnter {
			if ve, ok := n.(*ast.VariableExpr); ok {
				seen = append(seen, ve.Name)
			}
		}
		return ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
			if dir == ast.VisitEnter {
				if ve, ok := n.(*ast.VariableExpr); ok {
					seen = append(seen, ve.Name)
				}
			}
			return nil
		})
	}), lit)
	require.Equal(t, []string{"a", "b"}, seen)
}
