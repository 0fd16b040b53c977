package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orus-lang/orus/lang/value"
)

func TestHeaderMarkAndNext(t *testing.T) {
	s := value.NewString("x")
	require.False(t, s.Marked())
	s.SetMarked(true)
	require.True(t, s.Marked())

	require.Nil(t, s.Next())
	other := value.NewString("y")
	s.SetNext(other)
	require.Same(t, other, s.Next())
}

func TestObjKinds(t *testing.T) {
	require.Equal(t, value.ObjStringKind, value.NewString("").Kind())
	require.Equal(t, value.ObjArrayKind, value.NewArray(nil).Kind())
	require.Equal(t, value.ObjErrorKind, value.NewError("RuntimeUnknown", "boom", "f.orus", 1, 2).Kind())
	require.Equal(t, value.ObjStructKind, value.NewStruct("T", nil).Kind())
}

func TestErrorObjString(t *testing.T) {
	withLoc := value.NewError("RuntimeDivisionByZero", "divide by zero", "f.orus", 3, 5)
	require.Equal(t, "f.orus:3:5: RuntimeDivisionByZero: divide by zero", withLoc.String())

	noLoc := value.NewError("RuntimeUnknown", "boom", "", 0, 0)
	require.Equal(t, "RuntimeUnknown: boom", noLoc.String())
}

func TestSizesGrowWithContent(t *testing.T) {
	short := value.NewString("a")
	long := value.NewString("aaaaaaaaaa")
	require.Less(t, short.Size(), long.Size())

	smallArr := value.NewArray([]value.Value{value.I32(1)})
	bigArr := value.NewArray([]value.Value{value.I32(1), value.I32(2), value.I32(3)})
	require.Less(t, smallArr.Size(), bigArr.Size())
}
