package machine

import (
	"math"

	"github.com/orus-lang/orus/internal/diag"
	"github.com/orus-lang/orus/lang/compiler"
	"github.com/orus-lang/orus/lang/value"
)

// arith dispatches one of the typed ADD/SUB/MUL/DIV/MOD opcodes. The
// opcode already names both the operator and the operand width (spec
// §4.2's typed arithmetic table), so there is no runtime type check
// beyond division/modulo's zero check and signed overflow detection.
func (m *Machine) arith(op compiler.Opcode, x, y value.Value, line int) (value.Value, *diag.Error) {
	switch op {
	case compiler.ADD_I32:
		r, ok := addI32(x.AsI32(), y.AsI32())
		if !ok {
			return value.Nil, m.overflow(line)
		}
		return value.I32(r), nil
	case compiler.SUB_I32:
		r, ok := subI32(x.AsI32(), y.AsI32())
		if !ok {
			return value.Nil, m.overflow(line)
		}
		return value.I32(r), nil
	case compiler.MUL_I32:
		r, ok := mulI32(x.AsI32(), y.AsI32())
		if !ok {
			return value.Nil, m.overflow(line)
		}
		return value.I32(r), nil
	case compiler.DIV_I32:
		if y.AsI32() == 0 {
			return value.Nil, m.divByZero(line)
		}
		return value.I32(x.AsI32() / y.AsI32()), nil
	case compiler.MOD_I32:
		if y.AsI32() == 0 {
			return value.Nil, m.divByZero(line)
		}
		return value.I32(x.AsI32() % y.AsI32()), nil

	case compiler.ADD_I64:
		r, ok := addI64(x.AsI64(), y.AsI64())
		if !ok {
			return value.Nil, m.overflow(line)
		}
		return value.I64(r), nil
	case compiler.SUB_I64:
		r, ok := subI64(x.AsI64(), y.AsI64())
		if !ok {
			return value.Nil, m.overflow(line)
		}
		return value.I64(r), nil
	case compiler.MUL_I64:
		r, ok := mulI64(x.AsI64(), y.AsI64())
		if !ok {
			return value.Nil, m.overflow(line)
		}
		return value.I64(r), nil
	case compiler.DIV_I64:
		if y.AsI64() == 0 {
			return value.Nil, m.divByZero(line)
		}
		return value.I64(x.AsI64() / y.AsI64()), nil
	case compiler.MOD_I64:
		if y.AsI64() == 0 {
			return value.Nil, m.divByZero(line)
		}
		return value.I64(x.AsI64() % y.AsI64()), nil

	case compiler.ADD_U32:
		return value.U32(x.AsU32() + y.AsU32()), nil
	case compiler.SUB_U32:
		return value.U32(x.AsU32() - y.AsU32()), nil
	case compiler.MUL_U32:
		return value.U32(x.AsU32() * y.AsU32()), nil
	case compiler.DIV_U32:
		if y.AsU32() == 0 {
			return value.Nil, m.divByZero(line)
		}
		return value.U32(x.AsU32() / y.AsU32()), nil
	case compiler.MOD_U32:
		if y.AsU32() == 0 {
			return value.Nil, m.divByZero(line)
		}
		return value.U32(x.AsU32() % y.AsU32()), nil

	case compiler.ADD_U64:
		return value.U64(x.AsU64() + y.AsU64()), nil
	case compiler.SUB_U64:
		return value.U64(x.AsU64() - y.AsU64()), nil
	case compiler.MUL_U64:
		return value.U64(x.AsU64() * y.AsU64()), nil
	case compiler.DIV_U64:
		if y.AsU64() == 0 {
			return value.Nil, m.divByZero(line)
		}
		return value.U64(x.AsU64() / y.AsU64()), nil
	case compiler.MOD_U64:
		if y.AsU64() == 0 {
			return value.Nil, m.divByZero(line)
		}
		return value.U64(x.AsU64() % y.AsU64()), nil

	case compiler.ADD_F64:
		return value.F64(x.AsF64() + y.AsF64()), nil
	case compiler.SUB_F64:
		return value.F64(x.AsF64() - y.AsF64()), nil
	case compiler.MUL_F64:
		return value.F64(x.AsF64() * y.AsF64()), nil
	case compiler.DIV_F64:
		return value.F64(x.AsF64() / y.AsF64()), nil

	default:
		panic("machine: arith called with non-arithmetic opcode " + op.String())
	}
}

func (m *Machine) overflow(line int) *diag.Error {
	return diag.New(diag.RuntimeArithmeticOverflow, diag.Span{File: m.file, Line: line}, "arithmetic overflow")
}

func (m *Machine) divByZero(line int) *diag.Error {
	return diag.New(diag.RuntimeDivisionByZero, diag.Span{File: m.file, Line: line}, "division by zero")
}

func addI32(a, b int32) (int32, bool) {
	r := int64(a) + int64(b)
	if r > math.MaxInt32 || r < math.MinInt32 {
		return 0, false
	}
	return int32(r), true
}

func subI32(a, b int32) (int32, bool) {
	r := int64(a) - int64(b)
	if r > math.MaxInt32 || r < math.MinInt32 {
		return 0, false
	}
	return int32(r), true
}

func mulI32(a, b int32) (int32, bool) {
	r := int64(a) * int64(b)
	if r > math.MaxInt32 || r < math.MinInt32 {
		return 0, false
	}
	return int32(r), true
}

func addI64(a, b int64) (int64, bool) {
	r := a + b
	if (b > 0 && r < a) || (b < 0 && r > a) {
		return 0, false
	}
	return r, true
}

func subI64(a, b int64) (int64, bool) {
	r := a - b
	if (b < 0 && r < a) || (b > 0 && r > a) {
		return 0, false
	}
	return r, true
}

func mulI64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}

// negate implements NEGATE_I32/I64/U32/U64/F64. NEGATE_U32 and NEGATE_U64
// wrap around using two's complement (spec §9 open question resolution,
// see DESIGN.md): negating an unsigned value is legal and simply reuses
// Go's defined unsigned wraparound.
func negate(op compiler.Opcode, x value.Value) value.Value {
	switch op {
	case compiler.NEGATE_I32:
		return value.I32(-x.AsI32())
	case compiler.NEGATE_I64:
		return value.I64(-x.AsI64())
	case compiler.NEGATE_U32:
		return value.U32(-x.AsU32())
	case compiler.NEGATE_U64:
		return value.U64(-x.AsU64())
	case compiler.NEGATE_F64:
		return value.F64(-x.AsF64())
	default:
		panic("machine: negate called with non-negate opcode " + op.String())
	}
}

func bitNot(x value.Value) value.Value {
	switch x.Kind() {
	case value.KindI32:
		return value.I32(^x.AsI32())
	case value.KindI64:
		return value.I64(^x.AsI64())
	case value.KindU32:
		return value.U32(^x.AsU32())
	case value.KindU64:
		return value.U64(^x.AsU64())
	default:
		panic("machine: BIT_NOT on non-integer value")
	}
}

// bitwise implements BIT_AND/BIT_OR/BIT_XOR/SHL/SHR. One opcode per
// operator, not per width (see lang/compiler/opcode.go's doc comment): the
// width is recovered here from the left operand's own runtime tag.
func bitwise(op compiler.Opcode, x, y value.Value) value.Value {
	switch x.Kind() {
	case value.KindI32:
		a, b := x.AsI32(), y.AsI32()
		switch op {
		case compiler.BIT_AND:
			return value.I32(a & b)
		case compiler.BIT_OR:
			return value.I32(a | b)
		case compiler.BIT_XOR:
			return value.I32(a ^ b)
		case compiler.SHL:
			return value.I32(a << uint32(b))
		case compiler.SHR:
			return value.I32(a >> uint32(b))
		}
	case value.KindI64:
		a, b := x.AsI64(), y.AsI64()
		switch op {
		case compiler.BIT_AND:
			return value.I64(a & b)
		case compiler.BIT_OR:
			return value.I64(a | b)
		case compiler.BIT_XOR:
			return value.I64(a ^ b)
		case compiler.SHL:
			return value.I64(a << uint64(b))
		case compiler.SHR:
			return value.I64(a >> uint64(b))
		}
	case value.KindU32:
		a, b := x.AsU32(), y.AsU32()
		switch op {
		case compiler.BIT_AND:
			return value.U32(a & b)
		case compiler.BIT_OR:
			return value.U32(a | b)
		case compiler.BIT_XOR:
			return value.U32(a ^ b)
		case compiler.SHL:
			return value.U32(a << b)
		case compiler.SHR:
			return value.U32(a >> b)
		}
	case value.KindU64:
		a, b := x.AsU64(), y.AsU64()
		switch op {
		case compiler.BIT_AND:
			return value.U64(a & b)
		case compiler.BIT_OR:
			return value.U64(a | b)
		case compiler.BIT_XOR:
			return value.U64(a ^ b)
		case compiler.SHL:
			return value.U64(a << b)
		case compiler.SHR:
			return value.U64(a >> b)
		}
	}
	panic("machine: bitwise op on non-integer value")
}

func compare(op compiler.Opcode, x, y value.Value) bool {
	switch x.Kind() {
	case value.KindI32:
		a, b := x.AsI32(), y.AsI32()
		switch op {
		case compiler.LESS_I32:
			return a < b
		case compiler.LESS_EQUAL_I32:
			return a <= b
		case compiler.GREATER_I32:
			return a > b
		case compiler.GREATER_EQUAL_I32:
			return a >= b
		}
	case value.KindI64:
		a, b := x.AsI64(), y.AsI64()
		switch op {
		case compiler.LESS_I64:
			return a < b
		case compiler.LESS_EQUAL_I64:
			return a <= b
		case compiler.GREATER_I64:
			return a > b
		case compiler.GREATER_EQUAL_I64:
			return a >= b
		}
	case value.KindU32:
		a, b := x.AsU32(), y.AsU32()
		switch op {
		case compiler.LESS_U32:
			return a < b
		case compiler.LESS_EQUAL_U32:
			return a <= b
		case compiler.GREATER_U32:
			return a > b
		case compiler.GREATER_EQUAL_U32:
			return a >= b
		}
	case value.KindU64:
		a, b := x.AsU64(), y.AsU64()
		switch op {
		case compiler.LESS_U64:
			return a < b
		case compiler.LESS_EQUAL_U64:
			return a <= b
		case compiler.GREATER_U64:
			return a > b
		case compiler.GREATER_EQUAL_U64:
			return a >= b
		}
	case value.KindF64:
		a, b := x.AsF64(), y.AsF64()
		switch op {
		case compiler.LESS_F64:
			return a < b
		case compiler.LESS_EQUAL_F64:
			return a <= b
		case compiler.GREATER_F64:
			return a > b
		case compiler.GREATER_EQUAL_F64:
			return a >= b
		}
	}
	panic("machine: comparison on unsupported value kind")
}

// cast tags mirror lang/compiler/chunk.go's unexported ctagXxx constants
// byte for byte (see lang/compiler/expr.go's castTag helper, which emits
// them); the two packages cannot
// share the unexported constants directly, so the numeric convention is
// duplicated here and documented in DESIGN.md.
const (
	castTagNil byte = iota
	castTagBool
	castTagI32
	castTagI64
	castTagU32
	castTagU64
	castTagF64
	castTagString
)

func cast(v value.Value, tag byte) value.Value {
	switch tag {
	case castTagI32:
		switch v.Kind() {
		case value.KindI32:
			return v
		case value.KindI64:
			return value.I32(int32(v.AsI64()))
		case value.KindU32:
			return value.I32(int32(v.AsU32()))
		case value.KindU64:
			return value.I32(int32(v.AsU64()))
		case value.KindF64:
			return value.I32(int32(v.AsF64()))
		}
	case castTagI64:
		switch v.Kind() {
		case value.KindI64:
			return v
		case value.KindI32:
			return value.I64(int64(v.AsI32()))
		case value.KindU32:
			return value.I64(int64(v.AsU32()))
		case value.KindU64:
			return value.I64(int64(v.AsU64()))
		case value.KindF64:
			return value.I64(int64(v.AsF64()))
		}
	case castTagU32:
		switch v.Kind() {
		case value.KindU32:
			return v
		case value.KindI32:
			return value.U32(uint32(v.AsI32()))
		case value.KindI64:
			return value.U32(uint32(v.AsI64()))
		case value.KindU64:
			return value.U32(uint32(v.AsU64()))
		case value.KindF64:
			return value.U32(uint32(v.AsF64()))
		}
	case castTagU64:
		switch v.Kind() {
		case value.KindU64:
			return v
		case value.KindI32:
			return value.U64(uint64(v.AsI32()))
		case value.KindI64:
			return value.U64(uint64(v.AsI64()))
		case value.KindU32:
			return value.U64(uint64(v.AsU32()))
		case value.KindF64:
			return value.U64(uint64(v.AsF64()))
		}
	case castTagF64:
		switch v.Kind() {
		case value.KindF64:
			return v
		case value.KindI32:
			return value.F64(float64(v.AsI32()))
		case value.KindI64:
			return value.F64(float64(v.AsI64()))
		case value.KindU32:
			return value.F64(float64(v.AsU32()))
		case value.KindU64:
			return value.F64(float64(v.AsU64()))
		}
	case castTagBool:
		return value.Bool(v.AsBool())
	case castTagString:
		return v
	}
	return value.Nil
}
