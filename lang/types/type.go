// Package types implements Orus's static type system: primitive
// singletons, array/function/struct/generic compound types, structural
// equality, and a process-free registry for interning struct types by
// name (spec §3 "Type").
package types

import (
	"strings"
)

// Kind discriminates the variant of a Type.
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
	KindVoid
	KindArray
	KindFunction
	KindStruct
	KindGeneric
	KindError
)

// Type is implemented by every type variant in spec §3.
type Type interface {
	Kind() Kind
	String() string
	// Equal reports whether t and other denote the same type: same kind and
	// recursively equal components.
	Equal(other Type) bool
	// IsNumeric reports whether values of this type support arithmetic.
	IsNumeric() bool
	// IsInteger reports whether values of this type are one of the integer
	// kinds (i32, i64, u32, u64).
	IsInteger() bool
}

// primitive is the concrete representation of every non-compound Type.
// Primitive types are process-wide singletons (spec §3).
type primitive struct {
	kind Kind
	name string
}

func (p *primitive) Kind() Kind   { return p.kind }
func (p *primitive) String() string { return p.name }
func (p *primitive) Equal(other Type) bool {
	op, ok := other.(*primitive)
	return ok && op.kind == p.kind
}
func (p *primitive) IsNumeric() bool {
	switch p.kind {
	case KindI32, KindI64, KindU32, KindU64, KindF64:
		return true
	default:
		return false
	}
}
func (p *primitive) IsInteger() bool {
	switch p.kind {
	case KindI32, KindI64, KindU32, KindU64:
		return true
	default:
		return false
	}
}

// Process-wide primitive singletons.
var (
	Nil    Type = &primitive{KindNil, "nil"}
	Bool   Type = &primitive{KindBool, "bool"}
	I32    Type = &primitive{KindI32, "i32"}
	I64    Type = &primitive{KindI64, "i64"}
	U32    Type = &primitive{KindU32, "u32"}
	U64    Type = &primitive{KindU64, "u64"}
	F64    Type = &primitive{KindF64, "f64"}
	String Type = &primitive{KindString, "string"}
	Void   Type = &primitive{KindVoid, "void"}
	// Error is the static type of a caught exception binding (`catch e`);
	// spec §3 lists "error" as a Value variant but names no corresponding
	// static type, so this fills that gap the way the other primitive
	// singletons are declared.
	Error Type = &primitive{KindError, "error"}
)

// ByName resolves a primitive type name to its singleton, used by the
// parser/compiler when parsing a type annotation (e.g. "i32", "f64").
func ByName(name string) (Type, bool) {
	switch name {
	case "nil":
		return Nil, true
	case "bool":
		return Bool, true
	case "i32":
		return I32, true
	case "i64":
		return I64, true
	case "u32":
		return U32, true
	case "u64":
		return U64, true
	case "f64":
		return F64, true
	case "string":
		return String, true
	case "void":
		return Void, true
	case "error":
		return Error, true
	default:
		return nil, false
	}
}

// ArrayType is array(element).
type ArrayType struct {
	Elem Type
}

func (a *ArrayType) Kind() Kind      { return KindArray }
func (a *ArrayType) String() string  { return "[" + a.Elem.String() + "]" }
func (a *ArrayType) IsNumeric() bool { return false }
func (a *ArrayType) IsInteger() bool { return false }
func (a *ArrayType) Equal(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && a.Elem.Equal(o.Elem)
}

// FuncType is function(return, params...).
type FuncType struct {
	Return Type
	Params []Type
}

func (f *FuncType) Kind() Kind      { return KindFunction }
func (f *FuncType) IsNumeric() bool { return false }
func (f *FuncType) IsInteger() bool { return false }
func (f *FuncType) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return "fn(" + strings.Join(parts, ", ") + ") -> " + f.Return.String()
}
func (f *FuncType) Equal(other Type) bool {
	o, ok := other.(*FuncType)
	if !ok || len(f.Params) != len(o.Params) || !f.Return.Equal(o.Return) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Equal(o.Params[i]) {
			return false
		}
	}
	return true
}

// Field is one member of a StructType.
type Field struct {
	Name string
	Type Type
}

// StructType is struct(name, fields, generics). Struct types are interned
// by name in a Registry; two StructType values are equal iff they are the
// same pointer (after interning) or their name, fields and generic
// arguments all match.
type StructType struct {
	Name     string
	Fields   []Field
	Generics []Type // instantiated type arguments, empty for a non-generic struct
}

func (s *StructType) Kind() Kind      { return KindStruct }
func (s *StructType) IsNumeric() bool { return false }
func (s *StructType) IsInteger() bool { return false }
func (s *StructType) String() string {
	if len(s.Generics) == 0 {
		return s.Name
	}
	parts := make([]string, len(s.Generics))
	for i, g := range s.Generics {
		parts[i] = g.String()
	}
	return s.Name + "<" + strings.Join(parts, ", ") + ">"
}
func (s *StructType) Equal(other Type) bool {
	o, ok := other.(*StructType)
	if !ok || s.Name != o.Name || len(s.Fields) != len(o.Fields) || len(s.Generics) != len(o.Generics) {
		return false
	}
	for i := range s.Fields {
		if s.Fields[i].Name != o.Fields[i].Name || !s.Fields[i].Type.Equal(o.Fields[i].Type) {
			return false
		}
	}
	for i := range s.Generics {
		if !s.Generics[i].Equal(o.Generics[i]) {
			return false
		}
	}
	return true
}

// FieldType returns the type of the named field, or nil if absent.
func (s *StructType) FieldType(name string) Type {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}

// GenericType is a placeholder type parameter, e.g. the `T` in
// `struct Box<T> { value: T }` before instantiation.
type GenericType struct {
	Name string
}

func (g *GenericType) Kind() Kind      { return KindGeneric }
func (g *GenericType) String() string  { return g.Name }
func (g *GenericType) IsNumeric() bool { return false }
func (g *GenericType) IsInteger() bool { return false }
func (g *GenericType) Equal(other Type) bool {
	o, ok := other.(*GenericType)
	return ok && g.Name == o.Name
}

// Instantiate substitutes each generic parameter of a struct template with
// the matching type argument and returns a fresh struct type. len(args)
// must equal len(tmpl.Generics).
func Instantiate(tmpl *StructType, generics []*GenericType, args []Type) *StructType {
	subst := make(map[string]Type, len(generics))
	for i, g := range generics {
		subst[g.Name] = args[i]
	}
	sub := func(t Type) Type {
		if g, ok := t.(*GenericType); ok {
			if r, ok := subst[g.Name]; ok {
				return r
			}
		}
		return t
	}
	fields := make([]Field, len(tmpl.Fields))
	for i, f := range tmpl.Fields {
		fields[i] = Field{Name: f.Name, Type: sub(f.Type)}
	}
	return &StructType{Name: tmpl.Name, Fields: fields, Generics: args}
}

// Equal is a free function equivalent of Type.Equal, handy when either
// operand might be nil.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}
