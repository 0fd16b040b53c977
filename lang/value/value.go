// Package value implements Orus's runtime Value representation and heap
// object kinds (spec §3 "Value", "Heap Object"). It is a leaf package: the
// compiler's constant pool and the VM's stack both hold value.Value, but
// this package depends on neither.
//
// The teacher represents runtime values as an interface implemented by many
// concrete Go types dispatched through polymorphic methods (Binary, Attr,
// Compare...), because its source language is dynamically typed. Orus is
// statically typed: the compiler already knows every operand's type when it
// emits a typed opcode (ADD_I32 vs ADD_F64), so the VM never needs dynamic
// dispatch to decide *how* to add two values, only to sanity-check that the
// operand it popped really is the type the opcode expects. A lean tagged
// struct is therefore kept instead of the teacher's per-kind interface
// hierarchy (see DESIGN.md).
package value

import (
	"fmt"
	"strconv"
)

// Kind discriminates the variant of a Value at runtime.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindI32
	KindI64
	KindU32
	KindU64
	KindF64
	KindString
	KindArray
	KindError
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindF64:
		return "f64"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindError:
		return "error"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Value is a tagged union over nil, bool, the four integer widths, f64, and
// heap-allocated string/array/error/struct values (spec §3). Primitive
// variants are carried by value in bits; heap variants carry a pointer to
// an Object sharing the allocation list rooted at the VM.
type Value struct {
	kind Kind
	bits uint64 // bool/i32/i64/u32/u64/f64, reinterpreted per kind
	obj  Object // non-nil iff kind is KindString/KindArray/KindError/KindStruct
}

// Nil is the singleton nil value.
var Nil = Value{kind: KindNil}

func Bool(b bool) Value {
	var bits uint64
	if b {
		bits = 1
	}
	return Value{kind: KindBool, bits: bits}
}

func I32(v int32) Value { return Value{kind: KindI32, bits: uint64(uint32(v))} }
func I64(v int64) Value { return Value{kind: KindI64, bits: uint64(v)} }
func U32(v uint32) Value { return Value{kind: KindU32, bits: uint64(v)} }
func U64(v uint64) Value { return Value{kind: KindU64, bits: v} }
func F64(v float64) Value {
	return Value{kind: KindF64, bits: floatBits(v)}
}

func Str(obj *StringObj) Value   { return Value{kind: KindString, obj: obj} }
func Arr(obj *ArrayObj) Value    { return Value{kind: KindArray, obj: obj} }
func Err(obj *ErrorObj) Value    { return Value{kind: KindError, obj: obj} }
func Struct(obj *StructObj) Value { return Value{kind: KindStruct, obj: obj} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNil() bool  { return v.kind == KindNil }
func (v Value) AsBool() bool { return v.bits != 0 }
func (v Value) AsI32() int32 { return int32(uint32(v.bits)) }
func (v Value) AsI64() int64 { return int64(v.bits) }
func (v Value) AsU32() uint32 { return uint32(v.bits) }
func (v Value) AsU64() uint64 { return v.bits }
func (v Value) AsF64() float64 { return floatFromBits(v.bits) }
func (v Value) Obj() Object { return v.obj }

func (v Value) AsString() *StringObj { return v.obj.(*StringObj) }
func (v Value) AsArray() *ArrayObj   { return v.obj.(*ArrayObj) }
func (v Value) AsError() *ErrorObj   { return v.obj.(*ErrorObj) }
func (v Value) AsStruct() *StructObj { return v.obj.(*StructObj) }

// String renders v for `print` and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.AsBool())
	case KindI32:
		return strconv.FormatInt(int64(v.AsI32()), 10)
	case KindI64:
		return strconv.FormatInt(v.AsI64(), 10)
	case KindU32:
		return strconv.FormatUint(uint64(v.AsU32()), 10)
	case KindU64:
		return strconv.FormatUint(v.AsU64(), 10)
	case KindF64:
		return strconv.FormatFloat(v.AsF64(), 'g', -1, 64)
	case KindString:
		return v.AsString().Data
	case KindArray:
		return v.AsArray().String()
	case KindError:
		return v.AsError().String()
	case KindStruct:
		return v.AsStruct().String()
	default:
		return fmt.Sprintf("<value kind %d>", v.kind)
	}
}

// Equal implements spec §3's equality rule: structural for primitives and
// strings, identity for arrays/errors/structs.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindString:
		return a.AsString().Data == b.AsString().Data
	case KindArray, KindError, KindStruct:
		return a.obj == b.obj
	default:
		return a.bits == b.bits
	}
}
