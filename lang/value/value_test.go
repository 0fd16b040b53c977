package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orus-lang/orus/lang/value"
)

func TestPrimitiveRoundTrips(t *testing.T) {
	require.Equal(t, value.KindNil, value.Nil.Kind())
	require.True(t, value.Nil.IsNil())

	require.True(t, value.Bool(true).AsBool())
	require.False(t, value.Bool(false).AsBool())

	require.Equal(t, int32(-7), value.I32(-7).AsI32())
	require.Equal(t, int64(-7), value.I64(-7).AsI64())
	require.Equal(t, uint32(7), value.U32(7).AsU32())
	require.Equal(t, uint64(7), value.U64(7).AsU64())
	require.Equal(t, 3.5, value.F64(3.5).AsF64())
}

func TestStringRender(t *testing.T) {
	cases := []struct {
		v    value.Value
		want string
	}{
		{value.Nil, "nil"},
		{value.Bool(true), "true"},
		{value.I32(42), "42"},
		{value.I64(-42), "-42"},
		{value.U32(9), "9"},
		{value.U64(9), "9"},
		{value.F64(1.5), "1.5"},
		{value.Str(value.NewString("hi")), "hi"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.v.String())
	}
}

func TestArrayAndStructRender(t *testing.T) {
	arr := value.Arr(value.NewArray([]value.Value{value.I32(1), value.I32(2)}))
	require.Equal(t, "[1, 2]", arr.String())

	s := value.Struct(value.NewStruct("Point", []value.Value{value.I32(1), value.I32(2)}))
	require.Equal(t, "Point{1, 2}", s.String())
}

func TestEqualStructuralForPrimitivesAndStrings(t *testing.T) {
	require.True(t, value.Equal(value.I32(5), value.I32(5)))
	require.False(t, value.Equal(value.I32(5), value.I32(6)))
	require.False(t, value.Equal(value.I32(5), value.I64(5)), "different kinds are never equal")

	a := value.Str(value.NewString("abc"))
	b := value.Str(value.NewString("abc"))
	require.True(t, value.Equal(a, b), "strings compare by content")
}

func TestEqualIdentityForHeapCompounds(t *testing.T) {
	elems := []value.Value{value.I32(1)}
	arrObj := value.NewArray(elems)
	a := value.Arr(arrObj)
	b := value.Arr(arrObj)
	c := value.Arr(value.NewArray(elems))

	require.True(t, value.Equal(a, b), "same underlying object")
	require.False(t, value.Equal(a, c), "distinct objects with equal contents are not equal")
}

func TestAsAccessorsPanicOnWrongKind(t *testing.T) {
	require.Panics(t, func() { value.I32(1).AsString() })
}
