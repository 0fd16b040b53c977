package register

import (
	"github.com/orus-lang/orus/internal/diag"
	"github.com/orus-lang/orus/lang/value"
)

// arith dispatches ADD/SUB/MUL/DIV by the left operand's runtime Kind,
// recovering the width the same way lang/machine's bitwise ops do (spec
// §4.5 gives one opcode per operator, not one per width, for this
// backend).
func (m *Machine) arith(op Opcode, x, y value.Value, pc int) (value.Value, *diag.Error) {
	switch x.Kind() {
	case value.KindI32:
		a, b := x.AsI32(), y.AsI32()
		switch op {
		case ADD:
			return value.I32(a + b), nil
		case SUB:
			return value.I32(a - b), nil
		case MUL:
			return value.I32(a * b), nil
		case DIV:
			if b == 0 {
				return value.Nil, m.errf(pc, "division by zero")
			}
			return value.I32(a / b), nil
		}
	case value.KindI64:
		a, b := x.AsI64(), y.AsI64()
		switch op {
		case ADD:
			return value.I64(a + b), nil
		case SUB:
			return value.I64(a - b), nil
		case MUL:
			return value.I64(a * b), nil
		case DIV:
			if b == 0 {
				return value.Nil, m.errf(pc, "division by zero")
			}
			return value.I64(a / b), nil
		}
	case value.KindU32:
		a, b := x.AsU32(), y.AsU32()
		switch op {
		case ADD:
			return value.U32(a + b), nil
		case SUB:
			return value.U32(a - b), nil
		case MUL:
			return value.U32(a * b), nil
		case DIV:
			if b == 0 {
				return value.Nil, m.errf(pc, "division by zero")
			}
			return value.U32(a / b), nil
		}
	case value.KindU64:
		a, b := x.AsU64(), y.AsU64()
		switch op {
		case ADD:
			return value.U64(a + b), nil
		case SUB:
			return value.U64(a - b), nil
		case MUL:
			return value.U64(a * b), nil
		case DIV:
			if b == 0 {
				return value.Nil, m.errf(pc, "division by zero")
			}
			return value.U64(a / b), nil
		}
	case value.KindF64:
		a, b := x.AsF64(), y.AsF64()
		switch op {
		case ADD:
			return value.F64(a + b), nil
		case SUB:
			return value.F64(a - b), nil
		case MUL:
			return value.F64(a * b), nil
		case DIV:
			return value.F64(a / b), nil
		}
	}
	return value.Nil, m.errf(pc, "arithmetic on unsupported operand kind %s", x.Kind())
}

// compare dispatches EQ/NE/LT/LE/GT/GE. EQ/NE use value.Equal (structural),
// the ordering comparisons dispatch by width like arith above.
func (m *Machine) compare(op Opcode, x, y value.Value) bool {
	switch op {
	case EQ:
		return value.Equal(x, y)
	case NE:
		return !value.Equal(x, y)
	}
	switch x.Kind() {
	case value.KindI32:
		a, b := x.AsI32(), y.AsI32()
		switch op {
		case LT:
			return a < b
		case LE:
			return a <= b
		case GT:
			return a > b
		case GE:
			return a >= b
		}
	case value.KindI64:
		a, b := x.AsI64(), y.AsI64()
		switch op {
		case LT:
			return a < b
		case LE:
			return a <= b
		case GT:
			return a > b
		case GE:
			return a >= b
		}
	case value.KindU32:
		a, b := x.AsU32(), y.AsU32()
		switch op {
		case LT:
			return a < b
		case LE:
			return a <= b
		case GT:
			return a > b
		case GE:
			return a >= b
		}
	case value.KindU64:
		a, b := x.AsU64(), y.AsU64()
		switch op {
		case LT:
			return a < b
		case LE:
			return a <= b
		case GT:
			return a > b
		case GE:
			return a >= b
		}
	case value.KindF64:
		a, b := x.AsF64(), y.AsF64()
		switch op {
		case LT:
			return a < b
		case LE:
			return a <= b
		case GT:
			return a > b
		case GE:
			return a >= b
		}
	}
	return false
}
