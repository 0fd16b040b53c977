package register_test

import (
	"testing"

	"github.com/orus-lang/orus/lang/machine/register"
	"github.com/orus-lang/orus/lang/value"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	p := &register.Program{
		Constants: []value.Value{value.I32(3), value.I32(4)},
		Instrs: []register.Instruction{
			{Op: register.LOAD_CONST, Dst: 1, Src1: 0, Src2: 0},
			{Op: register.LOAD_CONST, Dst: 2, Src1: 0, Src2: 1},
			{Op: register.ADD, Dst: 0, Src1: 1, Src2: 2},
			{Op: register.HALT},
		},
	}
	m := register.New()
	result, err := m.Run("test", p)
	require.NoError(t, err)
	require.Equal(t, int32(7), result.AsI32())
}

func TestJumpLoop(t *testing.T) {
	// r0 = 0; r1 = 1; r2 = 5 (limit)
	// loop (index 3): r3 = r0 < r2; if !r3 jump to 7; r0 = r0 + r1; jump to 3
	p := &register.Program{
		Constants: []value.Value{value.I32(0), value.I32(1), value.I32(5)},
		Instrs: []register.Instruction{
			{Op: register.LOAD_CONST, Dst: 0, Src1: 0, Src2: 0}, // 0: r0 = 0
			{Op: register.LOAD_CONST, Dst: 1, Src1: 0, Src2: 1}, // 1: r1 = 1
			{Op: register.LOAD_CONST, Dst: 2, Src1: 0, Src2: 2}, // 2: r2 = 5
			{Op: register.LT, Dst: 3, Src1: 0, Src2: 2},         // 3: r3 = r0 < r2
			{Op: register.JZ, Dst: 0, Src1: 3, Src2: 7},         // 4: if !r3 jump to 7
			{Op: register.ADD, Dst: 0, Src1: 0, Src2: 1},        // 5: r0 += r1
			{Op: register.JMP, Src1: 0, Src2: 3},                // 6: jump to 3
			{Op: register.HALT},                                 // 7
		},
	}
	m := register.New()
	result, err := m.Run("test", p)
	require.NoError(t, err)
	require.Equal(t, int32(5), result.AsI32())
}

func TestDivisionByZero(t *testing.T) {
	p := &register.Program{
		Constants: []value.Value{value.I32(1), value.I32(0)},
		Instrs: []register.Instruction{
			{Op: register.LOAD_CONST, Dst: 1, Src1: 0, Src2: 0},
			{Op: register.LOAD_CONST, Dst: 2, Src1: 0, Src2: 1},
			{Op: register.DIV, Dst: 0, Src1: 1, Src2: 2},
			{Op: register.HALT},
		},
	}
	m := register.New()
	_, err := m.Run("test", p)
	require.Error(t, err)
}

func TestCallIsUnimplemented(t *testing.T) {
	p := &register.Program{
		Instrs: []register.Instruction{
			{Op: register.CALL},
		},
	}
	m := register.New()
	_, err := m.Run("test", p)
	require.Error(t, err)
}
