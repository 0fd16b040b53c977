package parser_test

import (
	"testing"

	"github.com/orus-lang/orus/lang/ast"
	"github.com/orus-lang/orus/lang/parser"
	"github.com/orus-lang/orus/lang/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	s := scanner.New("test.orus", src)
	p := parser.New("test.orus", s)
	ch := p.ParseChunk()
	require.Empty(t, p.Errs(), "unexpected parse errors")
	return ch
}

func TestParseLetAndStaticStmt(t *testing.T) {
	ch := parse(t, "static mut counter: i32 = 0\n")
	require.Len(t, ch.Stmts, 1)
	st, ok := ch.Stmts[0].(*ast.StaticStmt)
	require.True(t, ok)
	assert.Equal(t, "counter", st.Name)
	assert.True(t, st.Mut)
	require.NotNil(t, st.Type)
	assert.Equal(t, "i32", st.Type.Name)
}

func TestParseBinaryPrecedence(t *testing.T) {
	ch := parse(t, "fn f() -> i32 {\n  return 1 + 2 * 3\n}\n")
	fn := ch.Stmts[0].(*ast.FuncStmt)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	bin := ret.Value.(*ast.BinaryExpr)
	// `+` binds loosest, so its right-hand side is the `2 * 3` subtree.
	assert.Equal(t, "+", bin.Op.String())
	_, ok := bin.Right.(*ast.BinaryExpr)
	assert.True(t, ok, "expected 2 * 3 to parse as a nested BinaryExpr")
}

func TestParseAssignIsRightAssociative(t *testing.T) {
	ch := parse(t, "fn f() {\n  a = b = 1\n}\n")
	fn := ch.Stmts[0].(*ast.FuncStmt)
	es := fn.Body.Stmts[0].(*ast.ExprStmt)
	outer := es.X.(*ast.AssignExpr)
	_, ok := outer.Target.(*ast.VariableExpr)
	require.True(t, ok)
	inner, ok := outer.Value.(*ast.AssignExpr)
	require.True(t, ok, "expected b = 1 to parse as the nested assignment")
	assert.Equal(t, "b", inner.Target.(*ast.VariableExpr).Name)
}

func TestParseCompoundAssignDesugars(t *testing.T) {
	ch := parse(t, "fn f() {\n  x += 1\n}\n")
	fn := ch.Stmts[0].(*ast.FuncStmt)
	es := fn.Body.Stmts[0].(*ast.ExprStmt)
	assign := es.X.(*ast.AssignExpr)
	bin := assign.Value.(*ast.BinaryExpr)
	assert.Equal(t, "+", bin.Op.String())
}

func TestParseFieldAndIndexAssignUseDedicatedNodes(t *testing.T) {
	ch := parse(t, "fn f() {\n  p.x = 1\n  a[0] = 2\n}\n")
	fn := ch.Stmts[0].(*ast.FuncStmt)
	_, isFieldSet := fn.Body.Stmts[0].(*ast.ExprStmt).X.(*ast.FieldSetExpr)
	assert.True(t, isFieldSet)
	_, isArraySet := fn.Body.Stmts[1].(*ast.ExprStmt).X.(*ast.ArraySetExpr)
	assert.True(t, isArraySet)
}

func TestParseIfElifElse(t *testing.T) {
	ch := parse(t, "fn f() {\n  if x {\n    return 1\n  } elif y {\n    return 2\n  } else {\n    return 3\n  }\n}\n")
	fn := ch.Stmts[0].(*ast.FuncStmt)
	ifs := fn.Body.Stmts[0].(*ast.IfStmt)
	require.Len(t, ifs.Branches, 2)
	require.NotNil(t, ifs.Else)
}

func TestParseWhileAndBreakContinue(t *testing.T) {
	ch := parse(t, "fn f() {\n  while true {\n    break\n  }\n}\n")
	fn := ch.Stmts[0].(*ast.FuncStmt)
	ws := fn.Body.Stmts[0].(*ast.WhileStmt)
	require.Len(t, ws.Body.Stmts, 1)
	_, ok := ws.Body.Stmts[0].(*ast.BreakStmt)
	assert.True(t, ok)
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	s := scanner.New("test.orus", "fn f() {\n  break\n}\n")
	p := parser.New("test.orus", s)
	p.ParseChunk()
	assert.True(t, p.HadError())
}

func TestParseForRangeDotDot(t *testing.T) {
	ch := parse(t, "fn f() {\n  for i in 0..10 {\n    print(i)\n  }\n}\n")
	fn := ch.Stmts[0].(*ast.FuncStmt)
	fr := fn.Body.Stmts[0].(*ast.ForRangeStmt)
	assert.Equal(t, "i", fr.Var)
	assert.Nil(t, fr.Step)
}

func TestParseForRangeCall(t *testing.T) {
	ch := parse(t, "fn f() {\n  for i in range(0, 10, 2) {\n    print(i)\n  }\n}\n")
	fn := ch.Stmts[0].(*ast.FuncStmt)
	fr := fn.Body.Stmts[0].(*ast.ForRangeStmt)
	require.NotNil(t, fr.Step)
}

func TestParseStructAndImpl(t *testing.T) {
	ch := parse(t, "struct Point {\n  x: i32,\n  y: i32\n}\n\nimpl Point {\n  fn len(self) -> i32 {\n    return self.x\n  }\n}\n")
	require.Len(t, ch.Stmts, 2)
	ss := ch.Stmts[0].(*ast.StructStmt)
	assert.Equal(t, "Point", ss.Name)
	require.Len(t, ss.Fields, 2)
	is := ch.Stmts[1].(*ast.ImplStmt)
	require.Len(t, is.Methods, 1)
	assert.Equal(t, "Point", is.Methods[0].StructName)
}

func TestParseStructLiteral(t *testing.T) {
	ch := parse(t, "fn f() {\n  let p = Point { x: 1, y: 2 }\n}\n")
	fn := ch.Stmts[0].(*ast.FuncStmt)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	sl := let.Value.(*ast.StructLiteralExpr)
	assert.Equal(t, "Point", sl.StructName)
	require.Len(t, sl.Fields, 2)
}

func TestParseMatchStmt(t *testing.T) {
	ch := parse(t, "fn f() {\n  match x {\n    1 => print(\"one\"),\n    _ => print(\"other\")\n  }\n}\n")
	fn := ch.Stmts[0].(*ast.FuncStmt)
	ms := fn.Body.Stmts[0].(*ast.MatchStmt)
	require.Len(t, ms.Arms, 2)
	assert.Nil(t, ms.Arms[1].Pattern)
}

func TestParseTryCatch(t *testing.T) {
	ch := parse(t, "fn f() {\n  try {\n    print(1)\n  } catch e {\n    print(e)\n  }\n}\n")
	fn := ch.Stmts[0].(*ast.FuncStmt)
	ts := fn.Body.Stmts[0].(*ast.TryStmt)
	assert.Equal(t, "e", ts.ErrName)
}

func TestParseUseWithAlias(t *testing.T) {
	ch := parse(t, "use math::geometry as geo\n")
	us := ch.Stmts[0].(*ast.UseStmt)
	assert.Equal(t, []string{"math", "geometry"}, us.Path)
	assert.Equal(t, "geo", us.Alias)
}

func TestParseNumericLiteralKinds(t *testing.T) {
	ch := parse(t, "const a: i32 = 10\nconst b: u32 = 10u\nconst c: f64 = 1.5\n")
	a := ch.Stmts[0].(*ast.ConstStmt)
	if _, ok := a.Value.Value.(int64); !ok {
		t.Fatalf("expected int64, got %T", a.Value.Value)
	}
	b := ch.Stmts[1].(*ast.ConstStmt)
	if _, ok := b.Value.Value.(uint64); !ok {
		t.Fatalf("expected uint64, got %T", b.Value.Value)
	}
	c := ch.Stmts[2].(*ast.ConstStmt)
	if _, ok := c.Value.Value.(float64); !ok {
		t.Fatalf("expected float64, got %T", c.Value.Value)
	}
}

func TestLetNotAllowedAtTopLevel(t *testing.T) {
	s := scanner.New("test.orus", "let x = 1\n")
	p := parser.New("test.orus", s)
	p.ParseChunk()
	assert.True(t, p.HadError())
}
