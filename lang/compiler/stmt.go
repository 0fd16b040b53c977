package compiler

import (
	"fmt"
	"strings"

	"github.com/orus-lang/orus/lang/ast"
	"github.com/orus-lang/orus/lang/token"
	"github.com/orus-lang/orus/lang/types"
)

func (c *Compiler) compileStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		c.compileLetStmt(n)
	case *ast.ConstStmt:
		c.compileConstStmt(n)
	case *ast.StaticStmt:
		c.compileStaticStmt(n)
	case *ast.ExprStmt:
		c.compileExprStmt(n)
	case *ast.PrintStmt:
		c.compilePrintStmt(n)
	case *ast.IfStmt:
		c.compileIfStmt(n)
	case *ast.BlockStmt:
		c.compileBlock(n.Body)
	case *ast.WhileStmt:
		c.compileWhileStmt(n)
	case *ast.ForRangeStmt:
		c.compileForRangeStmt(n)
	case *ast.MatchStmt:
		c.compileMatchStmt(n)
	case *ast.TryStmt:
		c.compileTryStmt(n)
	case *ast.ReturnStmt:
		c.compileReturnStmt(n)
	case *ast.BreakStmt:
		c.compileBreakStmt(n)
	case *ast.ContinueStmt:
		c.compileContinueStmt(n)
	case *ast.UseStmt:
		c.compileUseStmt(n)
	case *ast.FuncStmt:
		c.compileFuncStmt(n)
	case *ast.StructStmt:
		// Nothing to emit: already registered by declareTopLevel.
	case *ast.ImplStmt:
		for _, m := range n.Methods {
			c.compileFuncStmt(m)
		}
	default:
		c.errorf(s.Line(), "unsupported statement")
	}
}

func (c *Compiler) compileBlock(b *ast.Block) {
	c.pushScope()
	for _, s := range b.Stmts {
		c.compileStmt(s)
	}
	c.popScope()
}

func (c *Compiler) declaredType(te *ast.TypeExpr, line int) types.Type {
	if te == nil {
		return nil
	}
	t, err := c.resolveTypeExpr(te)
	if err != nil {
		c.errorf(line, "%s", err)
		return nil
	}
	return t
}

// compileLetStmt compiles `let [mut] name [:T] = expr`, valid only inside
// a function body; module-level bindings use `static` instead (spec
// §4.1's `pub`-less top level: every top-level static/const/fn/struct is
// implicitly exported, see DESIGN.md).
func (c *Compiler) compileLetStmt(s *ast.LetStmt) {
	line := s.Line()
	if c.curFunc == nil {
		c.errorf(line, "'let' is only allowed inside a function body, use 'static' at module level")
	}
	declared := c.declaredType(s.Type, line)
	actual := c.compileExpr(s.Value, declared)
	if declared != nil && !types.Equal(declared, actual) {
		c.errorf(line, "cannot assign %s to declared type %s", actual, declared)
	}
	finalType := declared
	if finalType == nil {
		finalType = actual
	}
	slot, ok := c.declareLocal(s.Name, finalType, s.Mut, line)
	if !ok {
		return
	}
	c.emit(DEFINE_GLOBAL, line)
	c.emitByte(byte(slot), line)
}

func (c *Compiler) compileConstStmt(s *ast.ConstStmt) {
	line := s.Line()
	declared := c.declaredType(s.Type, line)
	actual := c.compileExpr(s.Value, declared)
	finalType := declared
	if finalType == nil {
		finalType = actual
	}
	slot, ok := c.declareLocal(s.Name, finalType, false, line)
	if !ok {
		return
	}
	c.emit(DEFINE_GLOBAL, line)
	c.emitByte(byte(slot), line)
	if c.curFunc == nil {
		c.globalsInfo = append(c.globalsInfo, GlobalInfo{Name: s.Name, Slot: slot, Public: true})
	}
}

func (c *Compiler) compileStaticStmt(s *ast.StaticStmt) {
	line := s.Line()
	if c.curFunc != nil {
		c.errorf(line, "'static' is only allowed at module top level")
	}
	declared := c.declaredType(s.Type, line)
	actual := c.compileExpr(s.Value, declared)
	if declared != nil && !types.Equal(declared, actual) {
		c.errorf(line, "cannot assign %s to declared type %s", actual, declared)
	}
	finalType := declared
	if finalType == nil {
		finalType = actual
	}
	slot, ok := c.declareLocal(s.Name, finalType, s.Mut, line)
	if !ok {
		return
	}
	c.emit(DEFINE_GLOBAL, line)
	c.emitByte(byte(slot), line)
	c.globalsInfo = append(c.globalsInfo, GlobalInfo{Name: s.Name, Slot: slot, Public: true})
}

func (c *Compiler) compileExprStmt(s *ast.ExprStmt) {
	c.compileExpr(s.X, nil)
	c.emit(POP, s.Line())
}

// compilePrintStmt compiles `print(expr)` directly to the single-value
// PRINT opcode. The multi-argument form desugars to a call to the
// fmt::sprintf native (PRINT itself takes exactly one value, spec §4.2's
// opcode table), then prints that formatted string.
func (c *Compiler) compilePrintStmt(s *ast.PrintStmt) {
	line := s.Line()
	if len(s.Args) == 0 {
		c.compileExpr(s.Format, nil)
		c.emit(PRINT, line)
		return
	}
	nat := c.natives["fmt::sprintf"]
	c.compileExpr(s.Format, types.String)
	for _, a := range s.Args {
		c.compileExpr(a, nil)
	}
	c.emit(CALL_NATIVE, line)
	c.emitByte(byte(nat.Index), line)
	c.emitByte(byte(1+len(s.Args)), line)
	c.emit(PRINT, line)
}

func (c *Compiler) compileIfStmt(s *ast.IfStmt) {
	line := s.Line()
	var endJumps []int
	for _, branch := range s.Branches {
		c.compileExpr(branch.Cond, types.Bool)
		next := c.emitJump(JUMP_IF_FALSE, line)
		c.emit(POP, line)
		c.compileBlock(branch.Body)
		endJumps = append(endJumps, c.emitJump(JUMP, line))
		c.patchJump(next)
		c.emit(POP, line)
	}
	if s.Else != nil {
		c.compileBlock(s.Else)
	}
	for _, j := range endJumps {
		c.patchJump(j)
	}
}

func (c *Compiler) compileWhileStmt(s *ast.WhileStmt) {
	line := s.Line()
	lc := &loopCtx{}
	c.loops = append(c.loops, lc)

	condStart := len(c.chunk.Code)
	c.compileExpr(s.Cond, types.Bool)
	exit := c.emitJump(JUMP_IF_FALSE, line)
	c.emit(POP, line)
	c.compileBlock(s.Body)
	for _, j := range lc.continueJumps {
		c.patchJump(j)
	}
	c.emitLoop(condStart, line)
	c.patchJump(exit)
	c.emit(POP, line)

	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}
	c.loops = c.loops[:len(c.loops)-1]
}

// compileForRangeStmt desugars `for i in start..end[..step] { body }` (and
// the identical `for i in range(start, end[, step])` form) into:
//
//	let i = start
//	while i < end { body; i = i + step }
//
// continue jumps land right before the increment, not at the loop head,
// because the increment code does not exist yet at the point a `continue`
// inside body is compiled (spec §4.1 desugaring note).
func (c *Compiler) compileForRangeStmt(s *ast.ForRangeStmt) {
	line := s.Line()
	c.pushScope()
	startType := c.compileExpr(s.Start, types.I32)
	slot, ok := c.declareLocal(s.Var, startType, true, line)
	if ok {
		c.emit(DEFINE_GLOBAL, line)
		c.emitByte(byte(slot), line)
	}

	lc := &loopCtx{}
	c.loops = append(c.loops, lc)

	condStart := len(c.chunk.Code)
	c.emit(GET_GLOBAL, line)
	c.emitByte(byte(slot), line)
	c.compileExpr(s.End, startType)
	opc, found := cmpOpcodes[token.LT][startType.Kind()]
	if !found {
		opc = LESS_I32
	}
	c.emit(opc, line)
	exit := c.emitJump(JUMP_IF_FALSE, line)
	c.emit(POP, line)

	c.compileBlock(s.Body)

	for _, j := range lc.continueJumps {
		c.patchJump(j)
	}
	c.emit(GET_GLOBAL, line)
	c.emitByte(byte(slot), line)
	if s.Step != nil {
		c.compileExpr(s.Step, startType)
	} else {
		c.emitIntConstant(startType, 1, line)
	}
	addOp := arithOpcodes[token.PLUS][startType.Kind()]
	c.emit(addOp, line)
	c.emit(SET_GLOBAL, line)
	c.emitByte(byte(slot), line)
	c.emit(POP, line)

	c.emitLoop(condStart, line)
	c.patchJump(exit)
	c.emit(POP, line)

	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}
	c.loops = c.loops[:len(c.loops)-1]
	c.popScope()
}

func matchTempName(line int) string { return fmt.Sprintf("$match@%d", line) }

func (c *Compiler) compileMatchStmt(s *ast.MatchStmt) {
	line := s.Line()
	valType := c.inferType(s.Value)
	c.compileExpr(s.Value, nil)
	slot, ok := c.declareLocal(matchTempName(line), valType, false, line)
	if ok {
		c.emit(DEFINE_GLOBAL, line)
		c.emitByte(byte(slot), line)
	}

	var endJumps []int
	for i, arm := range s.Arms {
		if arm.Pattern == nil {
			if i != len(s.Arms)-1 {
				c.errorf(line, "wildcard '_' arm must be the last arm in match")
			}
			c.compileStmt(arm.Body)
			continue
		}
		c.emit(GET_GLOBAL, line)
		c.emitByte(byte(slot), line)
		c.compileExpr(arm.Pattern, valType)
		c.emit(EQUAL, line)
		next := c.emitJump(JUMP_IF_FALSE, line)
		c.emit(POP, line)
		c.compileStmt(arm.Body)
		endJumps = append(endJumps, c.emitJump(JUMP, line))
		c.patchJump(next)
		c.emit(POP, line)
	}
	for _, j := range endJumps {
		c.patchJump(j)
	}
}

// compileTryStmt compiles `try { body } catch e { handler }` to
// TRY_PUSH/TRY_POP. e is declared in the TryStmt's own scope so it is
// visible to both body and handler, even though only the handler uses it
// (spec §4.4's unwinding model binds the caught value before running the
// handler regardless).
func (c *Compiler) compileTryStmt(s *ast.TryStmt) {
	line := s.Line()
	c.pushScope()
	errSlot, ok := c.declareLocal(s.ErrName, types.Error, false, line)
	if !ok {
		errSlot = 0
	}

	c.emit(TRY_PUSH, line)
	handlerPos := len(c.chunk.Code)
	c.emitUint16(0xFFFF, line)
	c.emitByte(byte(errSlot), line)

	c.compileBlock(s.Body)
	c.emit(TRY_POP, line)
	skipHandler := c.emitJump(JUMP, line)

	c.patchJump(handlerPos)
	c.compileBlock(s.Handler)
	c.patchJump(skipHandler)

	c.popScope()
}

func (c *Compiler) compileReturnStmt(s *ast.ReturnStmt) {
	line := s.Line()
	if c.curFunc == nil {
		c.errorf(line, "'return' outside function")
	}
	var actual types.Type = types.Void
	if s.Value != nil {
		var expected types.Type
		if c.curFunc != nil {
			expected = c.curFunc.Return
		}
		actual = c.compileExpr(s.Value, expected)
	} else {
		c.emit(NIL, line)
	}
	if c.curFunc != nil {
		if s.Value == nil && c.curFunc.Return.Kind() != types.KindVoid {
			c.errorf(line, "function %q must return a value of type %s", c.curFunc.Name, c.curFunc.Return)
		} else if s.Value != nil && c.curFunc.Return.Kind() != types.KindVoid && !types.Equal(actual, c.curFunc.Return) {
			c.errorf(line, "function %q returns %s, got %s", c.curFunc.Name, c.curFunc.Return, actual)
		}
	}
	c.emit(RETURN, line)
}

func (c *Compiler) compileBreakStmt(s *ast.BreakStmt) {
	line := s.Line()
	if len(c.loops) == 0 {
		c.errorf(line, "'break' outside loop")
		return
	}
	lc := c.loops[len(c.loops)-1]
	lc.breakJumps = append(lc.breakJumps, c.emitJump(JUMP, line))
}

func (c *Compiler) compileContinueStmt(s *ast.ContinueStmt) {
	line := s.Line()
	if len(c.loops) == 0 {
		c.errorf(line, "'continue' outside loop")
		return
	}
	lc := c.loops[len(c.loops)-1]
	lc.continueJumps = append(lc.continueJumps, c.emitJump(JUMP, line))
}

func joinPath(parts []string) string { return strings.Join(parts, "::") }

// compileUseStmt records a module alias. `use std::X` resolves directly
// to this compiler's native table (spec §4.6 treats the std library as
// embedded, not disk-resolved). Any other path is only remembered as an
// alias: calls of the form `alias.fn(...)` through it are not resolved and
// are reported as calls to an unknown native function.
func (c *Compiler) compileUseStmt(s *ast.UseStmt) {
	if len(s.Path) == 0 {
		return
	}
	alias := s.Alias
	if alias == "" {
		alias = s.Path[len(s.Path)-1]
	}
	if s.Path[0] == "std" && len(s.Path) > 1 {
		c.moduleAliases[alias] = joinPath(s.Path[1:])
		return
	}
	c.moduleAliases[alias] = joinPath(s.Path)
}

// compileFuncStmt emits fn's body. A leading skip-jump lets the linear
// instruction stream fall through past function bodies at top level,
// since the VM only ever reaches them via CALL (spec §4.2 "function
// bodies are emitted inline, reached only by CALL"). Parameters are
// bound in reverse argument order: the VM pushes arguments left to
// right, so the last argument is on top of the stack when the body's
// prologue starts popping them into their slots.
func (c *Compiler) compileFuncStmt(fn *ast.FuncStmt) {
	name := fn.Name
	if fn.StructName != "" {
		name = fn.StructName + "_" + fn.Name
	}
	sig, ok := c.funcs[name]
	if !ok {
		c.errorf(fn.Line(), "internal: function %q was not forward-declared", name)
		return
	}
	line := fn.Line()
	skip := c.emitJump(JUMP, line)
	sig.EntryOffset = len(c.chunk.Code)

	savedScope, savedFunc, savedGenerics := c.scope, c.curFunc, c.curGenerics
	c.scope = &scope{parent: c.top, vars: map[string]*binding{}}
	c.curFunc = sig
	c.curGenerics = genericSet(fn.Generics)

	for i := len(fn.Params) - 1; i >= 0; i-- {
		p := fn.Params[i]
		ptype := sig.ParamTypes[i]
		slot, ok := c.declareLocal(p.Name, ptype, true, line)
		if ok {
			c.emit(DEFINE_GLOBAL, line)
			c.emitByte(byte(slot), line)
		}
	}

	for _, st := range fn.Body.Stmts {
		c.compileStmt(st)
	}
	c.emit(NIL, line)
	c.emit(RETURN, line)

	c.scope = savedScope
	c.curFunc = savedFunc
	c.curGenerics = savedGenerics

	c.patchJump(skip)
}
