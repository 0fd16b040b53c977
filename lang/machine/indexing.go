package machine

import (
	"github.com/orus-lang/orus/internal/diag"
	"github.com/orus-lang/orus/lang/value"
)

func (m *Machine) outOfBounds(line, idx, length int) *diag.Error {
	return diag.New(diag.RuntimeIndexOutOfBounds, diag.Span{File: m.file, Line: line},
		"index %d out of bounds for array of length %d", idx, length)
}

func (m *Machine) indexGet(arr, idx value.Value, line int) (value.Value, *diag.Error) {
	a := arr.AsArray()
	i := int(idx.AsI32())
	if i < 0 || i >= len(a.Elems) {
		return value.Nil, m.outOfBounds(line, i, len(a.Elems))
	}
	return a.Elems[i], nil
}

func (m *Machine) indexSet(arr, idx, v value.Value, line int) *diag.Error {
	a := arr.AsArray()
	i := int(idx.AsI32())
	if i < 0 || i >= len(a.Elems) {
		return m.outOfBounds(line, i, len(a.Elems))
	}
	a.Elems[i] = v
	return nil
}

// slice implements the SLICE opcode. hi may be value.Nil, meaning "through
// the end" (see lang/compiler's compileSlice doc comment).
func (m *Machine) slice(arr, lo, hi value.Value, line int) (value.Value, *diag.Error) {
	a := arr.AsArray()
	loI := int(lo.AsI32())
	hiI := len(a.Elems)
	if !hi.IsNil() {
		hiI = int(hi.AsI32())
	}
	if loI < 0 || hiI > len(a.Elems) || loI > hiI {
		return value.Nil, m.outOfBounds(line, loI, len(a.Elems))
	}
	elems := append([]value.Value(nil), a.Elems[loI:hiI]...)
	return value.Arr(m.newArray(elems)), nil
}
