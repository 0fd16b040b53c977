package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orus-lang/orus/lang/types"
)

func TestByNamePrimitives(t *testing.T) {
	cases := map[string]types.Type{
		"nil":    types.Nil,
		"bool":   types.Bool,
		"i32":    types.I32,
		"i64":    types.I64,
		"u32":    types.U32,
		"u64":    types.U64,
		"f64":    types.F64,
		"string": types.String,
		"void":   types.Void,
		"error":  types.Error,
	}
	for name, want := range cases {
		got, ok := types.ByName(name)
		require.True(t, ok, name)
		require.Same(t, want, got)
	}

	_, ok := types.ByName("not-a-type")
	require.False(t, ok)
}

func TestNumericAndIntegerClassification(t *testing.T) {
	require.True(t, types.I32.IsNumeric())
	require.True(t, types.I32.IsInteger())
	require.True(t, types.F64.IsNumeric())
	require.False(t, types.F64.IsInteger())
	require.False(t, types.String.IsNumeric())
	require.False(t, types.Bool.IsInteger())
}

func TestArrayTypeEquality(t *testing.T) {
	a := &types.ArrayType{Elem: types.I32}
	b := &types.ArrayType{Elem: types.I32}
	c := &types.ArrayType{Elem: types.F64}

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.Equal(t, "[i32]", a.String())
}

func TestFuncTypeEquality(t *testing.T) {
	f1 := &types.FuncType{Return: types.I32, Params: []types.Type{types.I32, types.F64}}
	f2 := &types.FuncType{Return: types.I32, Params: []types.Type{types.I32, types.F64}}
	f3 := &types.FuncType{Return: types.F64, Params: []types.Type{types.I32, types.F64}}

	require.True(t, f1.Equal(f2))
	require.False(t, f1.Equal(f3))
	require.Equal(t, "fn(i32, f64) -> i32", f1.String())
}

func TestStructTypeEqualityAndFieldType(t *testing.T) {
	point := &types.StructType{
		Name: "Point",
		Fields: []types.Field{
			{Name: "x", Type: types.I32},
			{Name: "y", Type: types.I32},
		},
	}
	same := &types.StructType{
		Name: "Point",
		Fields: []types.Field{
			{Name: "x", Type: types.I32},
			{Name: "y", Type: types.I32},
		},
	}
	different := &types.StructType{
		Name: "Point",
		Fields: []types.Field{
			{Name: "x", Type: types.I32},
			{Name: "y", Type: types.F64},
		},
	}

	require.True(t, point.Equal(same))
	require.False(t, point.Equal(different))
	require.Equal(t, types.I32, point.FieldType("x"))
	require.Nil(t, point.FieldType("z"))
}

func TestGenericStructInstantiate(t *testing.T) {
	tArg := &types.GenericType{Name: "T"}
	box := &types.StructType{
		Name:     "Box",
		Fields:   []types.Field{{Name: "value", Type: tArg}},
		Generics: []types.Type{tArg},
	}

	inst := types.Instantiate(box, []*types.GenericType{tArg}, []types.Type{types.I32})
	require.Equal(t, "Box<i32>", inst.String())
	require.Same(t, types.I32, inst.FieldType("value"))
	// The template itself is untouched.
	require.Equal(t, "value", box.Fields[0].Name)
}

func TestFreeEqualHandlesNil(t *testing.T) {
	require.True(t, types.Equal(nil, nil))
	require.False(t, types.Equal(types.I32, nil))
	require.False(t, types.Equal(nil, types.I32))
	require.True(t, types.Equal(types.I32, types.I32))
}
