package compiler

import "github.com/orus-lang/orus/lang/types"

// nativeSig is the compile-time signature of a VM-provided native
// function, reached through `use std::<module>` plus a qualified call
// (spec §4.6 treats `std::*` as embedded rather than disk-resolved).
// ParamTypes of nil means the native is variadic and the compiler skips
// arity checking (used by fmt::sprintf, which takes a format string plus
// a caller-determined number of arguments).
type nativeSig struct {
	Index      int
	ParamTypes []types.Type
	Return     types.Type
}

// builtinNatives enumerates every std module the compiler resolves
// directly to CALL_NATIVE, matching the corresponding runtime table the
// machine package registers at startup. The index here and the index
// registered at runtime must agree; see lang/machine's native table.
func builtinNatives() map[string]*nativeSig {
	f64, str, i32 := types.F64, types.String, types.I32

	defs := []struct {
		name   string
		params []types.Type
		ret    types.Type
	}{
		// fmt::sprintf backs the multi-argument form of `print`: the
		// compiler desugars `print(fmt, a, b)` into a call to this native
		// followed by a single-value PRINT of the result.
		{"fmt::sprintf", nil, str},

		{"math::sqrt", []types.Type{f64}, f64},
		{"math::abs", []types.Type{f64}, f64},
		{"math::floor", []types.Type{f64}, f64},
		{"math::ceil", []types.Type{f64}, f64},
		{"math::pow", []types.Type{f64, f64}, f64},
		{"math::min", []types.Type{f64, f64}, f64},
		{"math::max", []types.Type{f64, f64}, f64},

		{"string::len", []types.Type{str}, i32},
		{"string::upper", []types.Type{str}, str},
		{"string::lower", []types.Type{str}, str},
		{"string::trim", []types.Type{str}, str},

		{"io::read_line", nil, str},
		{"time::now", nil, f64},
	}
	m := make(map[string]*nativeSig, len(defs))
	for i, d := range defs {
		m[d.name] = &nativeSig{Index: i, ParamTypes: d.params, Return: d.ret}
	}
	return m
}
