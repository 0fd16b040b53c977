package compiler

import (
	"math"

	"github.com/orus-lang/orus/lang/ast"
	"github.com/orus-lang/orus/lang/token"
	"github.com/orus-lang/orus/lang/types"
	"github.com/orus-lang/orus/lang/value"
)

// compileExpr compiles e, leaving exactly one value on the VM stack, and
// returns its static type. expected, when non-nil, is the type the
// surrounding context wants (a let's declared type, a parameter's
// declared type, a struct field's type): it only affects integer/float
// literal re-tagging (spec §4.1 "Literal typing"), never silent coercion
// of a non-literal expression.
func (c *Compiler) compileExpr(e ast.Expr, expected types.Type) types.Type {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return c.compileLiteral(n, expected)
	case *ast.VariableExpr:
		return c.compileVariable(n)
	case *ast.BinaryExpr:
		return c.compileBinary(n)
	case *ast.UnaryExpr:
		return c.compileUnary(n)
	case *ast.TernaryExpr:
		return c.compileTernary(n, expected)
	case *ast.CallExpr:
		return c.compileCall(n)
	case *ast.FieldAccessExpr:
		return c.compileFieldAccess(n)
	case *ast.FieldSetExpr:
		return c.compileFieldSet(n)
	case *ast.ArrayLiteralExpr:
		return c.compileArrayLiteral(n)
	case *ast.IndexExpr:
		return c.compileIndex(n)
	case *ast.ArraySetExpr:
		return c.compileArraySet(n)
	case *ast.SliceExpr:
		return c.compileSlice(n)
	case *ast.CastExpr:
		return c.compileCast(n)
	case *ast.StructLiteralExpr:
		return c.compileStructLiteral(n)
	case *ast.AssignExpr:
		return c.compileAssign(n)
	default:
		c.errorf(e.Line(), "unsupported expression")
		c.emit(NIL, e.Line())
		return types.Nil
	}
}

// inferType determines e's static type without emitting any bytecode. The
// compiler needs this before compiling either operand of a binary
// expression: since the VM stack is strictly LIFO, an implicit
// i32/u32->f64 widening conversion must be emitted right after the
// operand it applies to is pushed, which means the target type has to be
// known before the first operand is compiled at all.
func (c *Compiler) inferType(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return literalNaturalType(n)
	case *ast.VariableExpr:
		if b, ok := c.resolve(n.Name); ok {
			return b.typ
		}
		return types.Nil
	case *ast.UnaryExpr:
		if n.Op == token.NOT {
			return types.Bool
		}
		return c.inferType(n.Right)
	case *ast.BinaryExpr:
		switch n.Op {
		case token.EQEQ, token.NEQ, token.LT, token.LE, token.GT, token.GE, token.AND, token.OR:
			return types.Bool
		default:
			lt, rt := c.inferType(n.Left), c.inferType(n.Right)
			result, _, _, ok := widenNumeric(lt, rt)
			if !ok {
				return lt
			}
			return result
		}
	case *ast.TernaryExpr:
		return c.inferType(n.Then)
	case *ast.CallExpr:
		return c.inferCallType(n)
	case *ast.FieldAccessExpr:
		tt := c.inferType(n.Target)
		if st, ok := tt.(*types.StructType); ok {
			if ft := st.FieldType(n.Name); ft != nil {
				return ft
			}
		}
		return types.Nil
	case *ast.IndexExpr:
		if at, ok := c.inferType(n.Target).(*types.ArrayType); ok {
			return at.Elem
		}
		return types.Nil
	case *ast.SliceExpr:
		return c.inferType(n.Target)
	case *ast.ArrayLiteralExpr:
		var elem types.Type = types.Nil
		if len(n.Elems) > 0 {
			elem = c.inferType(n.Elems[0])
		}
		return &types.ArrayType{Elem: elem}
	case *ast.CastExpr:
		t, err := c.resolveTypeExpr(&ast.TypeExpr{Name: n.TypeName})
		if err != nil {
			return types.Nil
		}
		return t
	case *ast.StructLiteralExpr:
		if st, ok := c.structs.Lookup(n.StructName); ok {
			return st
		}
		return types.Nil
	case *ast.AssignExpr:
		return c.inferType(n.Value)
	case *ast.FieldSetExpr:
		return c.inferType(n.Value)
	case *ast.ArraySetExpr:
		return c.inferType(n.Value)
	default:
		return types.Nil
	}
}

func (c *Compiler) inferCallType(n *ast.CallExpr) types.Type {
	switch callee := n.Callee.(type) {
	case *ast.VariableExpr:
		if sig, ok := c.funcs[callee.Name]; ok {
			return sig.Return
		}
		if nat, ok := c.natives[callee.Name]; ok {
			return nat.Return
		}
		return types.Nil
	case *ast.FieldAccessExpr:
		if vexpr, isVar := callee.Target.(*ast.VariableExpr); isVar {
			if _, isLocal := c.resolve(vexpr.Name); !isLocal {
				if ns, ok := c.moduleAliases[vexpr.Name]; ok {
					if nat, ok := c.natives[ns+"::"+callee.Name]; ok {
						return nat.Return
					}
				}
			}
		}
		if st, ok := c.inferType(callee.Target).(*types.StructType); ok {
			if sig, ok := c.funcs[st.Name+"_"+callee.Name]; ok {
				return sig.Return
			}
		}
		return types.Nil
	default:
		return types.Nil
	}
}

// widenNumeric computes the common type two numeric operands must share
// before a binary op can be emitted. Exact kind matches need no
// conversion. An i32 or u32 paired with an f64 widens the non-float side
// (spec §4.1 "implicit i32/u32 -> f64 widening, nothing else implicit").
// Anything else is a type error: Orus requires exact operand types.
func widenNumeric(lt, rt types.Type) (result types.Type, convLeft, convRight, ok bool) {
	if types.Equal(lt, rt) {
		return lt, false, false, true
	}
	lk, rk := lt.Kind(), rt.Kind()
	if lk == types.KindF64 && (rk == types.KindI32 || rk == types.KindU32) {
		return types.F64, false, true, true
	}
	if rk == types.KindF64 && (lk == types.KindI32 || lk == types.KindU32) {
		return types.F64, true, false, true
	}
	return lt, false, false, false
}

// compileOperand compiles e as one operand of a binary expression with
// target as the already-decided common type, emitting the i32/u32->f64
// widening conversion immediately afterward when needsConv is set. The
// conversion must happen right here, not after the other operand is also
// compiled, because the stack is LIFO and e's value is on top only now.
func (c *Compiler) compileOperand(e ast.Expr, target types.Type, needsConv bool) {
	actual := c.compileExpr(e, target)
	if !needsConv {
		return
	}
	line := e.Line()
	switch actual.Kind() {
	case types.KindI32:
		c.emit(I32_TO_F64, line)
	case types.KindU32:
		c.emit(U32_TO_F64, line)
	}
}

var arithOpcodes = map[token.Token]map[types.Kind]Opcode{
	token.PLUS: {
		types.KindI32: ADD_I32, types.KindI64: ADD_I64,
		types.KindU32: ADD_U32, types.KindU64: ADD_U64, types.KindF64: ADD_F64,
	},
	token.MINUS: {
		types.KindI32: SUB_I32, types.KindI64: SUB_I64,
		types.KindU32: SUB_U32, types.KindU64: SUB_U64, types.KindF64: SUB_F64,
	},
	token.STAR: {
		types.KindI32: MUL_I32, types.KindI64: MUL_I64,
		types.KindU32: MUL_U32, types.KindU64: MUL_U64, types.KindF64: MUL_F64,
	},
	token.SLASH: {
		types.KindI32: DIV_I32, types.KindI64: DIV_I64,
		types.KindU32: DIV_U32, types.KindU64: DIV_U64, types.KindF64: DIV_F64,
	},
	token.PERCENT: {
		types.KindI32: MOD_I32, types.KindI64: MOD_I64,
		types.KindU32: MOD_U32, types.KindU64: MOD_U64,
	},
}

var cmpOpcodes = map[token.Token]map[types.Kind]Opcode{
	token.LT: {
		types.KindI32: LESS_I32, types.KindI64: LESS_I64,
		types.KindU32: LESS_U32, types.KindU64: LESS_U64, types.KindF64: LESS_F64,
	},
	token.LE: {
		types.KindI32: LESS_EQUAL_I32, types.KindI64: LESS_EQUAL_I64,
		types.KindU32: LESS_EQUAL_U32, types.KindU64: LESS_EQUAL_U64, types.KindF64: LESS_EQUAL_F64,
	},
	token.GT: {
		types.KindI32: GREATER_I32, types.KindI64: GREATER_I64,
		types.KindU32: GREATER_U32, types.KindU64: GREATER_U64, types.KindF64: GREATER_F64,
	},
	token.GE: {
		types.KindI32: GREATER_EQUAL_I32, types.KindI64: GREATER_EQUAL_I64,
		types.KindU32: GREATER_EQUAL_U32, types.KindU64: GREATER_EQUAL_U64, types.KindF64: GREATER_EQUAL_F64,
	},
}

var bitwiseOpcodes = map[token.Token]Opcode{
	token.AMPERSAND:  BIT_AND,
	token.PIPE:       BIT_OR,
	token.CIRCUMFLEX:  BIT_XOR,
	token.LTLT:       SHL,
	token.GTGT:       SHR,
}

var negateOpcodes = map[types.Kind]Opcode{
	types.KindI32: NEGATE_I32,
	types.KindI64: NEGATE_I64,
	types.KindU32: NEGATE_U32,
	types.KindU64: NEGATE_U64,
	types.KindF64: NEGATE_F64,
}

func (c *Compiler) compileBinary(b *ast.BinaryExpr) types.Type {
	switch b.Op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		return c.compileBinaryArith(b)
	case token.LT, token.GT, token.LE, token.GE:
		return c.compileComparison(b)
	case token.EQEQ, token.NEQ:
		return c.compileEquality(b)
	case token.AMPERSAND, token.PIPE, token.CIRCUMFLEX, token.LTLT, token.GTGT:
		return c.compileBitwise(b)
	case token.AND, token.OR:
		return c.compileLogical(b)
	default:
		c.errorf(b.Line(), "unsupported operator %s", b.Op)
		c.emit(NIL, b.Line())
		b.SetType(types.Nil)
		return types.Nil
	}
}

func (c *Compiler) compileBinaryArith(b *ast.BinaryExpr) types.Type {
	line := b.Line()
	lt, rt := c.inferType(b.Left), c.inferType(b.Right)
	if !lt.IsNumeric() || !rt.IsNumeric() {
		c.errorf(line, "operator %q requires numeric operands, got %s and %s", b.Op, lt, rt)
		c.compileExpr(b.Left, nil)
		c.compileExpr(b.Right, nil)
		c.emit(POP, line)
		c.emit(NIL, line)
		b.SetType(types.Nil)
		return types.Nil
	}
	result, convL, convR, ok := widenNumeric(lt, rt)
	if !ok {
		c.errorf(line, "operand types must match exactly, got %s and %s", lt, rt)
		result = lt
	}
	if b.Op == token.PERCENT && result.Kind() == types.KindF64 {
		c.errorf(line, "%% requires integer operands")
	}
	c.compileOperand(b.Left, result, convL)
	c.compileOperand(b.Right, result, convR)
	opc, found := arithOpcodes[b.Op][result.Kind()]
	if !found {
		c.errorf(line, "operator %q not supported for %s", b.Op, result)
		opc = NOP
	}
	c.emit(opc, line)
	b.SetType(result)
	return result
}

func (c *Compiler) compileComparison(b *ast.BinaryExpr) types.Type {
	line := b.Line()
	lt, rt := c.inferType(b.Left), c.inferType(b.Right)
	if !lt.IsNumeric() || !rt.IsNumeric() {
		c.errorf(line, "comparison %q requires numeric operands, got %s and %s", b.Op, lt, rt)
		c.compileExpr(b.Left, nil)
		c.compileExpr(b.Right, nil)
		c.emit(POP, line)
		c.emit(POP, line)
		c.emit(FALSE, line)
		b.SetType(types.Bool)
		return types.Bool
	}
	common, convL, convR, ok := widenNumeric(lt, rt)
	if !ok {
		c.errorf(line, "operand types must match exactly, got %s and %s", lt, rt)
		common = lt
	}
	c.compileOperand(b.Left, common, convL)
	c.compileOperand(b.Right, common, convR)
	opc, found := cmpOpcodes[b.Op][common.Kind()]
	if !found {
		opc = EQUAL
	}
	c.emit(opc, line)
	b.SetType(types.Bool)
	return types.Bool
}

// compileEquality compiles `==`/`!=`. Unlike arithmetic and ordering,
// equality is generic over type (spec §4.1: "== and != work on any
// matching pair of values"), so no typed dispatch table is needed.
func (c *Compiler) compileEquality(b *ast.BinaryExpr) types.Type {
	line := b.Line()
	lt, rt := c.inferType(b.Left), c.inferType(b.Right)
	var common types.Type
	convL, convR := false, false
	if lt.IsNumeric() && rt.IsNumeric() {
		var ok bool
		common, convL, convR, ok = widenNumeric(lt, rt)
		if !ok {
			c.errorf(line, "operand types must match exactly, got %s and %s", lt, rt)
			common = lt
		}
	}
	c.compileOperand(b.Left, common, convL)
	c.compileOperand(b.Right, common, convR)
	if b.Op == token.EQEQ {
		c.emit(EQUAL, line)
	} else {
		c.emit(NOT_EQUAL, line)
	}
	b.SetType(types.Bool)
	return types.Bool
}

func (c *Compiler) compileBitwise(b *ast.BinaryExpr) types.Type {
	line := b.Line()
	lt, rt := c.inferType(b.Left), c.inferType(b.Right)
	if !lt.IsInteger() || !types.Equal(lt, rt) {
		c.errorf(line, "bitwise operator %q requires matching integer operands, got %s and %s", b.Op, lt, rt)
	}
	c.compileExpr(b.Left, nil)
	c.compileExpr(b.Right, nil)
	opc := bitwiseOpcodes[b.Op]
	c.emit(opc, line)
	b.SetType(lt)
	return lt
}

// compileLogical compiles `and`/`or`. These are parsed as plain
// ast.BinaryExpr nodes (no dedicated AST node), so the compiler
// special-cases short-circuit codegen here rather than dispatching by
// node type: JUMP_IF_FALSE/JUMP_IF_TRUE do not pop their operand (spec
// §4.2), so the untaken branch needs an explicit POP before it runs.
func (c *Compiler) compileLogical(b *ast.BinaryExpr) types.Type {
	line := b.Line()
	c.compileExpr(b.Left, types.Bool)
	var shortCircuit Opcode
	if b.Op == token.AND {
		shortCircuit = JUMP_IF_FALSE
	} else {
		shortCircuit = JUMP_IF_TRUE
	}
	skip := c.emitJump(shortCircuit, line)
	c.emit(POP, line)
	c.compileExpr(b.Right, types.Bool)
	end := c.emitJump(JUMP, line)
	c.patchJump(skip)
	c.patchJump(end)
	b.SetType(types.Bool)
	return types.Bool
}

func (c *Compiler) compileUnary(u *ast.UnaryExpr) types.Type {
	line := u.Line()
	switch u.Op {
	case token.NOT:
		c.compileExpr(u.Right, types.Bool)
		c.emit(NOT, line)
		u.SetType(types.Bool)
		return types.Bool
	case token.TILDE:
		t := c.compileExpr(u.Right, nil)
		if !t.IsInteger() {
			c.errorf(line, "~ requires an integer operand, got %s", t)
		}
		c.emit(BIT_NOT, line)
		u.SetType(t)
		return t
	case token.MINUS:
		t := c.compileExpr(u.Right, nil)
		opc, ok := negateOpcodes[t.Kind()]
		if !ok {
			c.errorf(line, "unary - requires a numeric operand, got %s", t)
			opc = NEGATE_I32
		}
		c.emit(opc, line)
		u.SetType(t)
		return t
	default:
		c.errorf(line, "unsupported unary operator %s", u.Op)
		c.emit(NIL, line)
		return types.Nil
	}
}

func (c *Compiler) compileTernary(t *ast.TernaryExpr, expected types.Type) types.Type {
	line := t.Line()
	c.compileExpr(t.Cond, types.Bool)
	elseJump := c.emitJump(JUMP_IF_FALSE, line)
	c.emit(POP, line)
	thenType := c.compileExpr(t.Then, expected)
	endJump := c.emitJump(JUMP, line)
	c.patchJump(elseJump)
	c.emit(POP, line)
	elseType := c.compileExpr(t.Else, expected)
	c.patchJump(endJump)
	if !types.Equal(thenType, elseType) {
		c.errorf(line, "ternary branches must have the same type, got %s and %s", thenType, elseType)
	}
	t.SetType(thenType)
	return thenType
}

func literalNaturalType(lit *ast.LiteralExpr) types.Type {
	switch v := lit.Value.(type) {
	case nil:
		return types.Nil
	case bool:
		return types.Bool
	case string:
		return types.String
	case int64:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return types.I32
		}
		return types.I64
	case uint64:
		if v <= math.MaxUint32 {
			return types.U32
		}
		return types.U64
	case float64:
		return types.F64
	default:
		return types.Nil
	}
}

// intTarget decides the final type of a signed-integer literal, applying
// the re-tagging spec §4.1 allows: a non-negative i32 literal can retag
// to u32, any integer literal can retag to f64, and i32 can widen to i64,
// but only when an expected target type is known from context.
func (c *Compiler) intTarget(natural types.Type, raw int64, expected types.Type, line int) types.Type {
	if expected == nil || types.Equal(expected, natural) {
		return natural
	}
	switch expected.Kind() {
	case types.KindF64:
		return types.F64
	case types.KindU32:
		if natural.Kind() == types.KindI32 && raw >= 0 {
			return types.U32
		}
	case types.KindU64:
		if (natural.Kind() == types.KindI32 || natural.Kind() == types.KindI64) && raw >= 0 {
			return types.U64
		}
	case types.KindI64:
		if natural.Kind() == types.KindI32 {
			return types.I64
		}
	}
	c.errorf(line, "cannot use %s literal where %s is expected", natural, expected)
	return natural
}

func (c *Compiler) uintTarget(natural types.Type, expected types.Type, line int) types.Type {
	if expected == nil || types.Equal(expected, natural) {
		return natural
	}
	switch expected.Kind() {
	case types.KindF64:
		return types.F64
	case types.KindU64:
		if natural.Kind() == types.KindU32 {
			return types.U64
		}
	}
	c.errorf(line, "cannot use %s literal where %s is expected", natural, expected)
	return natural
}

func (c *Compiler) emitIntConstant(t types.Type, raw int64, line int) {
	var v value.Value
	switch t.Kind() {
	case types.KindI32:
		v = value.I32(int32(raw))
	case types.KindI64:
		v = value.I64(raw)
	case types.KindU32:
		v = value.U32(uint32(raw))
	case types.KindU64:
		v = value.U64(uint64(raw))
	case types.KindF64:
		v = value.F64(float64(raw))
	default:
		v = value.I64(raw)
	}
	idx := c.chunk.AddConstant(v)
	c.emit(CONSTANT, line)
	c.emitByte(byte(idx), line)
}

func (c *Compiler) emitUintConstant(t types.Type, raw uint64, line int) {
	var v value.Value
	switch t.Kind() {
	case types.KindU32:
		v = value.U32(uint32(raw))
	case types.KindU64:
		v = value.U64(raw)
	case types.KindF64:
		v = value.F64(float64(raw))
	case types.KindI64:
		v = value.I64(int64(raw))
	case types.KindI32:
		v = value.I32(int32(raw))
	default:
		v = value.U64(raw)
	}
	idx := c.chunk.AddConstant(v)
	c.emit(CONSTANT, line)
	c.emitByte(byte(idx), line)
}

func (c *Compiler) compileLiteral(lit *ast.LiteralExpr, expected types.Type) types.Type {
	line := lit.Line()
	switch v := lit.Value.(type) {
	case nil:
		c.emit(NIL, line)
		lit.SetType(types.Nil)
		return types.Nil
	case bool:
		if v {
			c.emit(TRUE, line)
		} else {
			c.emit(FALSE, line)
		}
		lit.SetType(types.Bool)
		return types.Bool
	case string:
		idx := c.chunk.AddConstant(value.Str(value.NewString(v)))
		c.emit(CONSTANT, line)
		c.emitByte(byte(idx), line)
		lit.SetType(types.String)
		return types.String
	case int64:
		natural := literalNaturalType(lit)
		target := c.intTarget(natural, v, expected, line)
		c.emitIntConstant(target, v, line)
		lit.SetType(target)
		return target
	case uint64:
		natural := literalNaturalType(lit)
		target := c.uintTarget(natural, expected, line)
		c.emitUintConstant(target, v, line)
		lit.SetType(target)
		return target
	case float64:
		idx := c.chunk.AddConstant(value.F64(v))
		c.emit(CONSTANT, line)
		c.emitByte(byte(idx), line)
		lit.SetType(types.F64)
		return types.F64
	default:
		c.errorf(line, "unsupported literal value")
		c.emit(NIL, line)
		return types.Nil
	}
}

func (c *Compiler) compileVariable(n *ast.VariableExpr) types.Type {
	if b, ok := c.resolve(n.Name); ok {
		c.emit(GET_GLOBAL, n.Line())
		c.emitByte(byte(b.slot), n.Line())
		n.SetType(b.typ)
		return b.typ
	}
	c.errorf(n.Line(), "undefined variable %q", n.Name)
	c.emit(NIL, n.Line())
	n.SetType(types.Nil)
	return types.Nil
}

func identName(e ast.Expr) (string, bool) {
	v, ok := e.(*ast.VariableExpr)
	if !ok {
		return "", false
	}
	return v.Name, true
}

func (c *Compiler) compileCall(call *ast.CallExpr) types.Type {
	line := call.Line()
	switch callee := call.Callee.(type) {
	case *ast.VariableExpr:
		if sig, ok := c.funcs[callee.Name]; ok {
			return c.compileUserCall(call, sig, nil)
		}
		if nat, ok := c.natives[callee.Name]; ok {
			return c.compileNativeCall(call, nat)
		}
		c.errorf(line, "undefined function %q", callee.Name)
		for _, a := range call.Args {
			c.compileExpr(a, nil)
		}
		c.emit(NIL, line)
		return types.Nil
	case *ast.FieldAccessExpr:
		if name, isVar := identName(callee.Target); isVar {
			if _, isLocal := c.resolve(name); !isLocal {
				if ns, isAlias := c.moduleAliases[name]; isAlias {
					qualified := ns + "::" + callee.Name
					if nat, ok := c.natives[qualified]; ok {
						return c.compileNativeCall(call, nat)
					}
					c.errorf(line, "unknown native function %q", qualified)
					c.emit(NIL, line)
					return types.Nil
				}
			}
		}
		recvType := c.inferType(callee.Target)
		st, ok := recvType.(*types.StructType)
		if !ok {
			c.errorf(line, "cannot call method %q on non-struct type %s", callee.Name, recvType)
			c.compileExpr(callee.Target, nil)
			c.emit(POP, line)
			for _, a := range call.Args {
				c.compileExpr(a, nil)
			}
			c.emit(NIL, line)
			return types.Nil
		}
		methodName := st.Name + "_" + callee.Name
		sig, ok := c.funcs[methodName]
		if !ok {
			c.errorf(line, "struct %q has no method %q", st.Name, callee.Name)
			c.emit(NIL, line)
			return types.Nil
		}
		return c.compileUserCall(call, sig, callee.Target)
	default:
		c.errorf(line, "expression is not callable")
		c.emit(NIL, line)
		return types.Nil
	}
}

// compileUserCall compiles a call to a user-declared function or method.
// receiver, when non-nil, is compiled as an implicit first argument (the
// `self` parameter a method's signature already reserved slot 0 for).
func (c *Compiler) compileUserCall(call *ast.CallExpr, sig *funcSig, receiver ast.Expr) types.Type {
	line := call.Line()
	wantArgs := len(sig.ParamTypes)
	if receiver != nil {
		wantArgs--
	}
	if len(call.Args) != wantArgs {
		c.errorf(line, "function %q expects %d argument(s), got %d", sig.Name, wantArgs, len(call.Args))
	}
	paramOffset := 0
	if receiver != nil {
		c.compileExpr(receiver, sig.ParamTypes[0])
		paramOffset = 1
	}
	for i, a := range call.Args {
		idx := i + paramOffset
		var pt types.Type
		if idx < len(sig.ParamTypes) {
			pt = sig.ParamTypes[idx]
		}
		c.compileExpr(a, pt)
	}
	c.emit(CALL, line)
	c.emitByte(byte(sig.Index), line)
	argc := len(call.Args)
	if receiver != nil {
		argc++
	}
	c.emitByte(byte(argc), line)
	call.SetType(sig.Return)
	return sig.Return
}

func (c *Compiler) compileNativeCall(call *ast.CallExpr, nat *nativeSig) types.Type {
	line := call.Line()
	if nat.ParamTypes != nil && len(call.Args) != len(nat.ParamTypes) {
		c.errorf(line, "native call expects %d argument(s), got %d", len(nat.ParamTypes), len(call.Args))
	}
	for i, a := range call.Args {
		var pt types.Type
		if nat.ParamTypes != nil && i < len(nat.ParamTypes) {
			pt = nat.ParamTypes[i]
		}
		c.compileExpr(a, pt)
	}
	c.emit(CALL_NATIVE, line)
	c.emitByte(byte(nat.Index), line)
	c.emitByte(byte(len(call.Args)), line)
	call.SetType(nat.Return)
	return nat.Return
}

func fieldIndex(st *types.StructType, name string) int {
	for i, f := range st.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (c *Compiler) compileFieldAccess(n *ast.FieldAccessExpr) types.Type {
	targetType := c.compileExpr(n.Target, nil)
	st, ok := targetType.(*types.StructType)
	if !ok {
		c.errorf(n.Line(), "cannot access field %q on non-struct type %s", n.Name, targetType)
		c.emit(POP, n.Line())
		c.emit(NIL, n.Line())
		return types.Nil
	}
	idx := fieldIndex(st, n.Name)
	if idx < 0 {
		c.errorf(n.Line(), "struct %q has no field %q", st.Name, n.Name)
		c.emit(POP, n.Line())
		c.emit(NIL, n.Line())
		return types.Nil
	}
	c.emit(GET_FIELD, n.Line())
	c.emitByte(byte(idx), n.Line())
	n.SetType(st.Fields[idx].Type)
	return st.Fields[idx].Type
}

func (c *Compiler) compileFieldSet(n *ast.FieldSetExpr) types.Type {
	targetType := c.compileExpr(n.Target, nil)
	st, ok := targetType.(*types.StructType)
	if !ok {
		c.errorf(n.Line(), "cannot set field %q on non-struct type %s", n.Name, targetType)
		c.emit(POP, n.Line())
		c.compileExpr(n.Value, nil)
		return types.Nil
	}
	idx := fieldIndex(st, n.Name)
	var ft types.Type = types.Nil
	if idx < 0 {
		c.errorf(n.Line(), "struct %q has no field %q", st.Name, n.Name)
	} else {
		ft = st.Fields[idx].Type
	}
	c.compileExpr(n.Value, ft)
	c.emit(SET_FIELD, n.Line())
	c.emitByte(byte(idx), n.Line())
	n.SetType(ft)
	return ft
}

func (c *Compiler) compileArrayLiteral(n *ast.ArrayLiteralExpr) types.Type {
	var elemType types.Type = types.Nil
	if len(n.Elems) > 0 {
		elemType = c.inferType(n.Elems[0])
	}
	for _, e := range n.Elems {
		c.compileExpr(e, elemType)
	}
	c.emit(ARRAY_LITERAL, n.Line())
	c.emitUint16(uint16(len(n.Elems)), n.Line())
	at := &types.ArrayType{Elem: elemType}
	n.SetType(at)
	return at
}

func (c *Compiler) compileIndex(n *ast.IndexExpr) types.Type {
	targetType := c.compileExpr(n.Target, nil)
	c.compileExpr(n.Index, types.I32)
	c.emit(INDEX_GET, n.Line())
	at, ok := targetType.(*types.ArrayType)
	if !ok {
		c.errorf(n.Line(), "cannot index non-array type %s", targetType)
		n.SetType(types.Nil)
		return types.Nil
	}
	n.SetType(at.Elem)
	return at.Elem
}

func (c *Compiler) compileArraySet(n *ast.ArraySetExpr) types.Type {
	targetType := c.compileExpr(n.Target, nil)
	c.compileExpr(n.Index, types.I32)
	var elemType types.Type = types.Nil
	if at, ok := targetType.(*types.ArrayType); ok {
		elemType = at.Elem
	} else {
		c.errorf(n.Line(), "cannot index non-array type %s", targetType)
	}
	c.compileExpr(n.Value, elemType)
	c.emit(INDEX_SET, n.Line())
	n.SetType(elemType)
	return elemType
}

func (c *Compiler) compileSlice(n *ast.SliceExpr) types.Type {
	targetType := c.compileExpr(n.Target, nil)
	line := n.Line()
	if n.Lo != nil {
		c.compileExpr(n.Lo, types.I32)
	} else {
		c.emitIntConstant(types.I32, 0, line)
	}
	if n.Hi != nil {
		c.compileExpr(n.Hi, types.I32)
	} else {
		// nil sentinel meaning "through the end"; the machine checks for
		// Nil on this operand before treating it as an index.
		c.emit(NIL, line)
	}
	c.emit(SLICE, line)
	n.SetType(targetType)
	return targetType
}

func castTag(t types.Type) byte {
	switch t.Kind() {
	case types.KindI32:
		return ctagI32
	case types.KindI64:
		return ctagI64
	case types.KindU32:
		return ctagU32
	case types.KindU64:
		return ctagU64
	case types.KindF64:
		return ctagF64
	case types.KindString:
		return ctagString
	case types.KindBool:
		return ctagBool
	default:
		return ctagNil
	}
}

func (c *Compiler) compileCast(n *ast.CastExpr) types.Type {
	c.compileExpr(n.Target, nil)
	dstType, err := c.resolveTypeExpr(&ast.TypeExpr{Name: n.TypeName})
	if err != nil {
		c.errorf(n.Line(), "%s", err)
		dstType = types.Nil
	}
	c.emit(CAST, n.Line())
	c.emitByte(castTag(dstType), n.Line())
	n.SetType(dstType)
	return dstType
}

func (c *Compiler) compileStructLiteral(n *ast.StructLiteralExpr) types.Type {
	line := n.Line()
	st, ok := c.structs.Lookup(n.StructName)
	if !ok {
		c.errorf(line, "undefined struct type %q", n.StructName)
		for _, f := range n.Fields {
			c.compileExpr(f.Value, nil)
		}
		c.emit(NIL, line)
		return types.Nil
	}
	values := make([]ast.Expr, len(st.Fields))
	provided := make(map[string]bool, len(n.Fields))
	for _, f := range n.Fields {
		idx := fieldIndex(st, f.Name)
		if idx < 0 {
			c.errorf(line, "struct %q has no field %q", st.Name, f.Name)
			continue
		}
		values[idx] = f.Value
		provided[f.Name] = true
	}
	for i, field := range st.Fields {
		if !provided[field.Name] {
			c.errorf(line, "missing field %q in struct literal for %q", field.Name, st.Name)
			c.emit(NIL, line)
			continue
		}
		c.compileExpr(values[i], field.Type)
	}
	nameIdx := c.chunk.AddConstant(value.Str(value.NewString(st.Name)))
	c.emit(STRUCT_LITERAL, line)
	c.emitByte(byte(nameIdx), line)
	c.emitByte(byte(len(st.Fields)), line)
	n.SetType(st)
	return st
}

func (c *Compiler) compileAssign(n *ast.AssignExpr) types.Type {
	line := n.Line()
	ve, ok := n.Target.(*ast.VariableExpr)
	if !ok {
		c.errorf(line, "invalid assignment target")
		return c.compileExpr(n.Value, nil)
	}
	b, ok := c.resolve(ve.Name)
	if !ok {
		c.errorf(line, "assignment to undefined variable %q", ve.Name)
		return c.compileExpr(n.Value, nil)
	}
	if !b.mut {
		c.errorf(line, "cannot assign to immutable binding %q", ve.Name)
	}
	c.compileExpr(n.Value, b.typ)
	c.emit(SET_GLOBAL, line)
	c.emitByte(byte(b.slot), line)
	n.SetType(b.typ)
	return b.typ
}
