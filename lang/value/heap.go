package value

import (
	"fmt"
	"math"
	"strings"
)

func floatBits(f float64) uint64    { return math.Float64bits(f) }
func floatFromBits(b uint64) float64 { return math.Float64frombits(b) }

// ObjKind discriminates the variant of a heap Object (spec §3 "Heap
// Object").
type ObjKind uint8

const (
	ObjStringKind ObjKind = iota
	ObjArrayKind
	ObjErrorKind
	ObjStructKind
)

// Header is embedded by every heap object. marked and next are owned by the
// collector: marked flips during the mark phase and next threads the
// allocation list rooted at the machine (spec §3: "common header {kind,
// marked, next}").
type Header struct {
	ObjKind ObjKind
	marked  bool
	next    Object
}

func (h *Header) Kind() ObjKind  { return h.ObjKind }
func (h *Header) Marked() bool   { return h.marked }
func (h *Header) SetMarked(m bool) { h.marked = m }
func (h *Header) Next() Object   { return h.next }
func (h *Header) SetNext(o Object) { h.next = o }

// Object is implemented by every heap-allocated value kind.
type Object interface {
	Kind() ObjKind
	Marked() bool
	SetMarked(bool)
	Next() Object
	SetNext(Object)
	Size() int
	String() string
}

// StringObj is an immutable byte sequence (spec: "immutable byte sequence
// plus length, not NUL-terminated in semantics").
type StringObj struct {
	Header
	Data string
}

func NewString(s string) *StringObj { return &StringObj{Header: Header{ObjKind: ObjStringKind}, Data: s} }
func (s *StringObj) Size() int      { return 16 + len(s.Data) }
func (s *StringObj) String() string { return s.Data }

// ArrayObj is a fixed-length resizable sequence of Value.
type ArrayObj struct {
	Header
	Elems []Value
}

func NewArray(elems []Value) *ArrayObj { return &ArrayObj{Header: Header{ObjKind: ObjArrayKind}, Elems: elems} }
func (a *ArrayObj) Size() int          { return 24 + 16*len(a.Elems) }
func (a *ArrayObj) String() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ErrorObj is a runtime error value: kind tag, message, source location
// (spec: "kind tag, message string, source location").
type ErrorObj struct {
	Header
	ErrKind string // diag.Kind.String(), kept as a string to avoid an import cycle with internal/diag
	Message string
	File    string
	Line    int
	Column  int
}

func NewError(kind, msg, file string, line, col int) *ErrorObj {
	return &ErrorObj{Header: Header{ObjKind: ObjErrorKind}, ErrKind: kind, Message: msg, File: file, Line: line, Column: col}
}
func (e *ErrorObj) Size() int { return 48 + len(e.Message) + len(e.File) }
func (e *ErrorObj) String() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %s", e.ErrKind, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Column, e.ErrKind, e.Message)
}

// StructObj is an instance of a declared struct type: a name (for display
// and reflection) and its field values in declared-field order. Field
// access is compiled to a positional GET_FIELD/SET_FIELD by the compiler,
// which knows the static field order, so no name->index map is needed here.
type StructObj struct {
	Header
	TypeName string
	Fields   []Value
}

func NewStruct(typeName string, fields []Value) *StructObj {
	return &StructObj{Header: Header{ObjKind: ObjStructKind}, TypeName: typeName, Fields: fields}
}
func (s *StructObj) Size() int { return 24 + 16*len(s.Fields) }
func (s *StructObj) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.String()
	}
	return s.TypeName + "{" + strings.Join(parts, ", ") + "}"
}
