package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orus-lang/orus/lang/types"
)

func TestRegistryDeclareAndLookup(t *testing.T) {
	r := types.NewRegistry()
	point := &types.StructType{Name: "Point", Fields: []types.Field{{Name: "x", Type: types.I32}}}

	require.True(t, r.Declare(point))
	got, ok := r.Lookup("Point")
	require.True(t, ok)
	require.Same(t, point, got)

	_, ok = r.Lookup("Missing")
	require.False(t, ok)
}

func TestRegistryRejectsDuplicateName(t *testing.T) {
	r := types.NewRegistry()
	first := &types.StructType{Name: "Dup"}
	second := &types.StructType{Name: "Dup", Fields: []types.Field{{Name: "x", Type: types.I32}}}

	require.True(t, r.Declare(first))
	require.False(t, r.Declare(second))

	got, _ := r.Lookup("Dup")
	require.Same(t, first, got, "second Declare must not overwrite the first")
}

func TestRegistryNamesAreSorted(t *testing.T) {
	r := types.NewRegistry()
	for _, name := range []string{"Zebra", "Apple", "Mango"} {
		require.True(t, r.Declare(&types.StructType{Name: name}))
	}
	require.Equal(t, []string{"Apple", "Mango", "Zebra"}, r.Names())
}
